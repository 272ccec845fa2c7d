package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer hist.Close()

			runner, err := ctx.newRunner(nil, hist)
			if err != nil {
				return err
			}
			runs, err := runner.Runs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}

			view := tableView{
				columns: []column{
					{header: "Run"},
					{header: "Started"},
					{header: "Duration", align: alignRight},
					{header: "Status"},
					{header: "Renamed", align: alignRight},
					{header: "Failed", align: alignRight},
					{header: "Queued", align: alignRight},
				},
			}
			for _, run := range runs {
				duration := "-"
				if run.FinishedAt != nil {
					duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
				}
				view.rows = append(view.rows, []string{
					shortID(run.ID),
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					duration,
					string(run.Status),
					strconv.Itoa(run.Renamed),
					strconv.Itoa(run.Failed),
					strconv.Itoa(run.Queued),
				})
			}
			fmt.Fprintln(out, view.render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	return cmd
}
