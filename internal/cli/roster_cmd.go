package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/officedhq/officed/internal/config"
	"github.com/officedhq/officed/internal/roster"
)

func newRosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Inspect the agent roster",
	}
	cmd.AddCommand(newRosterListCmd())
	return cmd
}

func newRosterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			rosterPath := cfg.Office.RosterPath
			if rosterPath == "" {
				rosterPath = paths.Roster
			}
			ros, err := roster.Load(rosterPath)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tDEPARTMENT\tBACKEND\tROLE")
			for _, a := range ros.All() {
				role := ""
				switch {
				case a.Director:
					role = "director"
				case a.Coordinator:
					role = "coordinator"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%s\n", a.ID, a.Name, a.Department, a.Backend, a.Model, role)
			}
			return w.Flush()
		},
	}
}
