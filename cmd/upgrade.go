package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sarth-shah20/stasis-storage/internal/lifecycle"
)

func newUpgradeCmd(a *app) *cobra.Command {
	var volume, image, imageName, imageVersion string

	cmd := &cobra.Command{
		Use:   "upgrade [name]",
		Short: "Change the image or volume of a storage",
		Long: `Change the image or volume of a storage.

The running container is not touched. Run "start --restart" to apply the
new settings.`,
		Example: `  stasis-storage upgrade s1 --image-version RELEASE.2024-06-04T19-20-08Z
  stasis-storage upgrade --image quay.io/minio/minio:latest
  stasis-storage upgrade s1 --volume my-data`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props := lifecycle.UpgradeProps{Name: nameArg(args)}

			// Only flags given on the command line are applied, so an
			// explicit empty --volume resets the override.
			flags := cmd.Flags()
			if flags.Changed("volume") {
				props.Volume = &volume
			}
			if flags.Changed("image") {
				props.Image = &image
			}
			if flags.Changed("image-name") {
				props.ImageName = &imageName
			}
			if flags.Changed("image-version") {
				props.ImageVersion = &imageVersion
			}

			m, closeFn, err := a.newManager()
			if err != nil {
				return err
			}
			defer closeFn()

			_, err = m.Upgrade(cmd.Context(), props)
			return err
		},
	}

	cmd.Flags().StringVar(&volume, "volume", "", "docker volume holding the data (empty resets to the default)")
	cmd.Flags().StringVar(&image, "image", "", "full image reference, replaces name and version")
	cmd.Flags().StringVar(&imageName, "image-name", "", "image repository")
	cmd.Flags().StringVar(&imageVersion, "image-version", "", "image tag or sha256 digest")
	return cmd
}
