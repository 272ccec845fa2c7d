package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"logonorm/internal/overrides"
	"logonorm/internal/review"
)

func newReviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "review",
		Short: "Triage files the last run could not resolve",
		Long: "Walk the review queue one file at a time: ignore it, type a name, accept the\n" +
			"AI suggestion, or skip. Decisions are saved to the override files and applied\n" +
			"by the next `logonorm run`.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			ws := ctx.workspace()
			unlock, err := ws.Lock()
			if err != nil {
				return err
			}
			defer func() { _ = unlock() }()

			items, err := review.NewStore(ws.ReviewReportPath()).Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			store := overrides.NewStore(ws.CustomMappingsPath(), ws.IgnoreListPath(), logger)
			if len(review.Unhandled(items, store.Load())) == 0 {
				fmt.Fprintln(out, "Review queue is empty.")
				return nil
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			prompter := review.NewTerminalPrompter(cmd.InOrStdin(), out, shouldColorize(out))
			tally, err := review.NewSession(store, logger).Run(signalCtx, items, prompter)

			fmt.Fprintln(out)
			switch {
			case tally.Interrupted:
				fmt.Fprintln(out, "Review interrupted; decisions so far were saved.")
			case tally.Quit:
				fmt.Fprintln(out, "Review stopped; decisions so far were saved.")
			}
			fmt.Fprintf(out, "Ignored %d, renamed %d, deferred %d, remaining %d\n",
				tally.Ignored, tally.Overridden, tally.Deferred, tally.Remaining)
			if tally.Ignored+tally.Overridden > 0 {
				fmt.Fprintln(out, "Run `logonorm run` to apply the new decisions.")
			}
			return err
		},
	}
}
