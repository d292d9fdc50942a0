package cmd

import (
	"github.com/spf13/cobra"
)

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop [name]",
		Short: "Stop a storage, keeping its data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeFn, err := a.newManager()
			if err != nil {
				return err
			}
			defer closeFn()

			return m.Stop(cmd.Context(), nameArg(args))
		},
	}
}
