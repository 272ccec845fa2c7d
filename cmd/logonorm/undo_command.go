package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"logonorm/internal/rename"
	"logonorm/internal/workflow"
)

func newUndoCommand(ctx *commandContext) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Revert the renames of the latest run, or of --run ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := ctx.openHistory()
			if err != nil {
				if runID != "" {
					return err
				}
				hist = nil
			} else {
				defer hist.Close()
			}
			runner, err := ctx.newRunner(nil, hist)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			outcome, err := runner.Undo(cmd.Context(), runID)
			if errors.Is(err, workflow.ErrNothingToUndo) {
				fmt.Fprintln(out, "Nothing to undo.")
				return nil
			}
			if len(outcome.Report.Entries) == 0 {
				return err
			}

			report := outcome.Report
			var problems [][]string
			for _, e := range report.Entries {
				if e.Status == rename.StatusReverted {
					continue
				}
				detail := ""
				if e.Err != nil {
					detail = e.Err.Error()
				}
				problems = append(problems, []string{string(e.Status), e.NewPath, e.OldPath, detail})
			}
			if len(problems) > 0 {
				fmt.Fprintln(out, tableView{
					columns: []column{{header: "Status"}, {header: "Current"}, {header: "Original"}, {header: "Detail"}},
					rows:    problems,
				}.render())
			}
			label := "latest run"
			if outcome.RunID != "" {
				label = "run " + shortID(outcome.RunID)
			}
			fmt.Fprintf(out, "Undo of %s: reverted %d, missing %d, conflict %d, failed %d\n",
				label,
				report.Count(rename.StatusReverted),
				report.Count(rename.StatusMissing),
				report.Count(rename.StatusConflict),
				report.Count(rename.StatusFailed),
			)
			return err
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID (or unique prefix of at least 8 characters) to revert")
	return cmd
}
