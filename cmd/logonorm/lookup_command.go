package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"logonorm/internal/catalog"
	"logonorm/internal/config"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <sport> <query>",
		Short: "Search the catalog for team and league names",
		Long: "Search the catalog entities of a sport. <sport> is either a configured sport\n" +
			"directory (\"Basketball\") or a catalog sport identifier (\"BASKETBALL\").",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.catalogClient()
			if err != nil {
				return err
			}
			sportID := resolveSportID(cfg.Sports, args[0])
			query := strings.Join(args[1:], " ")

			teams, teamErr := client.FetchTeams(cmd.Context(), sportID)
			leagues, leagueErr := client.FetchLeagues(cmd.Context(), sportID)
			fetchErr := errors.Join(teamErr, leagueErr)
			if fetchErr != nil && len(teams)+len(leagues) == 0 {
				return fmt.Errorf("fetch catalog for %s: %w", sportID, fetchErr)
			}

			out := cmd.OutOrStdout()
			if fetchErr != nil {
				fmt.Fprintf(out, "warning: catalog incomplete: %v\n", fetchErr)
			}
			hits := catalog.Search(teams, leagues, query)
			if len(hits) == 0 {
				fmt.Fprintf(out, "No %s entities match %q.\n", sportID, query)
				return nil
			}
			view := tableView{
				columns: []column{{header: "Kind"}, {header: "Official name"}, {header: "Matched"}, {header: "ID"}},
			}
			for _, h := range hits {
				view.rows = append(view.rows, []string{string(h.Kind), h.Canonical, h.Matched, h.EntityID})
			}
			fmt.Fprintln(out, view.render())
			return nil
		},
	}
}

// resolveSportID maps a configured directory name to its sport id; anything
// else is taken as an id.
func resolveSportID(sports []config.Sport, arg string) string {
	arg = strings.TrimSpace(arg)
	for _, s := range sports {
		if strings.EqualFold(s.Dir, arg) {
			return s.SportID
		}
	}
	return strings.ToUpper(arg)
}
