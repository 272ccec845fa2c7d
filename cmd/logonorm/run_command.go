package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"logonorm/internal/config"
	"logonorm/internal/history"
	"logonorm/internal/logging"
	"logonorm/internal/notifications"
	"logonorm/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var noAI bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve logo files against the catalog and rename them",
		Long: "Scan every configured sport directory, match file names against the catalog,\n" +
			"rename confident matches, and queue the rest for `logonorm review`.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := ctx.newPipeline(!noAI)
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			hist, err := ctx.openHistory()
			if err != nil {
				logging.WarnWithContext(logger, "run history unavailable", "history_unavailable",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
					logging.String(logging.FieldImpact, "this run cannot be undone with --run"),
				)
				hist = nil
			} else {
				defer hist.Close()
			}

			runner, err := ctx.newRunner(pipeline, hist)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, runErr := runner.Run(signalCtx)
			notifyRun(cmd.Context(), ctx.configValue(), logger, summary, runErr)
			if summary.RunID == "" {
				return runErr
			}
			printRunSummary(cmd.OutOrStdout(), summary)
			return runErr
		},
	}

	cmd.Flags().BoolVar(&noAI, "no-ai", false, "Skip AI matching and queue unmatched files for review")
	return cmd
}

func printRunSummary(out io.Writer, s workflow.Summary) {
	view := tableView{
		columns: []column{
			{header: "Sport"},
			{header: "Status"},
			{header: "Files", align: alignRight},
			{header: "Exact", align: alignRight},
			{header: "AI", align: alignRight},
			{header: "Manual", align: alignRight},
			{header: "Settled", align: alignRight},
			{header: "Queued", align: alignRight},
			{header: "Errors", align: alignRight},
		},
	}
	for _, c := range s.Resolution.Categories {
		view.rows = append(view.rows, []string{
			c.Sport,
			string(c.Status),
			strconv.Itoa(c.Files),
			strconv.Itoa(c.Exact),
			strconv.Itoa(c.AIAccepted),
			strconv.Itoa(c.Manual),
			strconv.Itoa(c.Settled),
			strconv.Itoa(c.Queued),
			strconv.Itoa(len(c.Failures)),
		})
	}
	if len(view.rows) > 0 {
		fmt.Fprintln(out, view.render())
	}

	fmt.Fprintf(out, "Run %s %s in %s: renamed %d, unchanged %d, failed %d, queued %d\n",
		shortID(s.RunID),
		s.Status,
		s.Duration.Round(time.Millisecond),
		s.Renamed(),
		len(s.Plan.Unchanged),
		s.Failed(),
		s.Queued(),
	)
	for _, f := range s.Result.Failures {
		fmt.Fprintf(out, "  rename failed: %s -> %s: %v\n", f.Step.Source, f.Step.Target, f.Err)
	}
	for _, c := range s.Resolution.Categories {
		for _, f := range c.Failures {
			fmt.Fprintf(out, "  %s (%s): %v\n", c.Sport, f.Kind, f.Err)
		}
	}
	if s.Queued() > 0 {
		fmt.Fprintf(out, "%d file(s) need a decision; run `logonorm review`.\n", s.Queued())
	}
	if s.Status == history.StatusCancelled {
		fmt.Fprintln(out, "Run was interrupted; completed renames were recorded and can be undone.")
	}
}

func notifyRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, s workflow.Summary, runErr error) {
	svc := notifications.NewService(cfg.Notifications)
	var err error
	if s.RunID == "" && runErr != nil {
		err = svc.NotifyError(ctx, runErr, "run")
	} else {
		err = svc.NotifyRunCompleted(ctx, notifications.RunReport{
			RunID:     s.RunID,
			Renamed:   s.Renamed(),
			Failed:    s.Failed(),
			Queued:    s.Queued(),
			Duration:  s.Duration,
			Cancelled: s.Status == history.StatusCancelled,
		})
	}
	if err != nil {
		logging.WarnWithContext(logger, "notification not sent", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "run summary was not pushed"),
		)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
