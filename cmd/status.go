package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sarth-shah20/stasis-storage/internal/lifecycle"
)

func newStatusCmd(a *app) *cobra.Command {
	var probe bool

	cmd := &cobra.Command{
		Use:   "status [name]",
		Short: "Show the container state of storages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeFn, err := a.newManager()
			if err != nil {
				return err
			}
			defer closeFn()

			rows, err := m.Status(cmd.Context(), nameArg(args), probe)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
			header := "NAME\tTYPE\tCONTAINER\tSTATE\tIP"
			if probe {
				header += "\tPROBE"
			}
			fmt.Fprintln(w, header)

			for _, r := range rows {
				name := r.Name
				if r.Default {
					name += " (default)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s", name, r.Type, r.ContainerName, stateString(r.State), orDash(r.IP))
				if probe {
					fmt.Fprintf(w, "\t%s", orDash(r.Probe))
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&probe, "probe", false, "check that running storages answer on their protocol")
	return cmd
}

func stateString(state string) string {
	switch state {
	case lifecycle.StateRunning:
		return color.GreenString(state)
	case lifecycle.StateStopped:
		return color.YellowString(state)
	}
	return state
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
