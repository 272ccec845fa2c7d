package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"logonorm/internal/review"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize the review queue by sport",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := review.NewStore(ctx.workspace().ReviewReportPath()).Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Review queue is empty.")
				return nil
			}

			counts := tableView{
				columns: []column{{header: "Sport"}, {header: "Files", align: alignRight}},
				footer:  []string{"Total", strconv.Itoa(len(items))},
			}
			for _, c := range review.Summarize(items) {
				counts.rows = append(counts.rows, []string{c.Sport, strconv.Itoa(c.Count)})
			}
			fmt.Fprintln(out, counts.render())

			if !showFiles {
				return nil
			}
			files := tableView{
				columns: []column{
					{header: "Sport"},
					{header: "File"},
					{header: "Suggestion"},
					{header: "Confidence", align: alignRight},
					{header: "Reason"},
				},
			}
			for _, item := range items {
				files.rows = append(files.rows, []string{
					item.Sport,
					filepath.Base(item.File),
					item.Suggestion(),
					strconv.FormatFloat(item.Confidence, 'f', 2, 64),
					item.Reason,
				})
			}
			fmt.Fprintln(out, files.render())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showFiles, "files", "f", false, "List every queued file")
	return cmd
}
