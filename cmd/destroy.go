package cmd

import (
	"github.com/spf13/cobra"
)

func newDestroyCmd(a *app) *cobra.Command {
	var yes, force bool

	cmd := &cobra.Command{
		Use:   "destroy <name>",
		Short: "Remove a storage, its container and its volume",
		Long: `Remove a storage, its container and its volume.

A volume set with "upgrade --volume" is kept. The default storage is only
destroyed with --force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeFn, err := a.newManager()
			if err != nil {
				return err
			}
			defer closeFn()

			return m.Destroy(cmd.Context(), args[0], yes, force)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "allow destroying the default storage")
	return cmd
}
