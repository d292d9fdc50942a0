package cmd

import (
	"github.com/spf13/cobra"
)

func newStartCmd(a *app) *cobra.Command {
	var restart bool

	cmd := &cobra.Command{
		Use:   "start [name]",
		Short: "Start a storage (the default one when no name is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeFn, err := a.newManager()
			if err != nil {
				return err
			}
			defer closeFn()

			return m.Start(cmd.Context(), nameArg(args), restart)
		},
	}

	cmd.Flags().BoolVarP(&restart, "restart", "r", false, "recreate the container to apply upgraded settings")
	return cmd
}
