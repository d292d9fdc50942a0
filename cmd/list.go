package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List configured storages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeFn, err := a.newManager()
			if err != nil {
				return err
			}
			defer closeFn()

			rows, err := m.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(a.out, "No storages configured.")
				return nil
			}

			// Use tabwriter to print pretty columns
			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			for _, r := range rows {
				name := r.Name
				if r.Default {
					name += " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, r.Type, r.ContainerName)
			}
			return w.Flush()
		},
	}
}
