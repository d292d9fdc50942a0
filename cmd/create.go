package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarth-shah20/stasis-storage/internal/lifecycle"
	"github.com/sarth-shah20/stasis-storage/internal/storage"
)

func newCreateCmd(a *app) *cobra.Command {
	var props lifecycle.CreateProps
	var typ string

	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Add a storage to the configuration",
		Long: `Add a storage to the configuration without starting it.

Values that are not given as arguments or flags are asked for.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props.Name = nameArg(args)
			if typ != "" {
				t, err := storage.ParseType(typ)
				if err != nil {
					return err
				}
				props.Type = t
			}

			m, closeFn, err := a.newManager()
			if err != nil {
				return err
			}
			defer closeFn()

			_, err = m.Create(cmd.Context(), props)
			return err
		},
	}

	cmd.Flags().StringVarP(&typ, "type", "t", "", "storage type: minio or redis")
	cmd.Flags().StringVarP(&props.Username, "username", "u", "", "root user (minio)")
	cmd.Flags().StringVarP(&props.Password, "password", "p", "", "root password (minio)")
	return cmd
}
