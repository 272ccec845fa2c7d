package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"logonorm/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify directories and service credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			view := tableView{columns: []column{{header: "Check"}, {header: "Result"}, {header: "Detail"}}}
			for _, r := range results {
				status := "FAIL"
				if r.Passed {
					status = "ok"
				}
				view.rows = append(view.rows, []string{r.Name, status, r.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), view.render())

			if !preflight.Passed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
