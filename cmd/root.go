package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sarth-shah20/stasis-storage/internal/config"
	"github.com/sarth-shah20/stasis-storage/internal/docker"
	"github.com/sarth-shah20/stasis-storage/internal/lifecycle"
	"github.com/sarth-shah20/stasis-storage/internal/logging"
	"github.com/sarth-shah20/stasis-storage/internal/probe"
	"github.com/sarth-shah20/stasis-storage/internal/prompt"
	"github.com/sarth-shah20/stasis-storage/internal/proxy"
	"github.com/sarth-shah20/stasis-storage/internal/storage"
	"github.com/sarth-shah20/stasis-storage/internal/store"
)

// Set at build time with -ldflags "-X .../cmd.version=...".
var (
	version = "dev"
	commit  = "none"
)

// app holds what PersistentPreRunE loads for the subcommands.
type app struct {
	settings *config.Settings
	logger   *zap.Logger
	fs       afero.Fs

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// interactive reports whether prompts can be shown.
	interactive func() bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{
		logger:      zap.NewNop(),
		fs:          afero.NewOsFs(),
		in:          in,
		out:         out,
		errOut:      errOut,
		interactive: prompt.IsInteractive,
	}
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "stasis-storage",
		Short: "Stasis storage: MinIO and Redis storages for local workspaces",
		// Errors are printed once by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,
		// PersistentPreRunE runs before ANY command (create, start, etc.)
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			logger, err := logging.New(a.errOut, settings.Log.Level, settings.Log.Format)
			if err != nil {
				return err
			}
			a.settings = settings
			a.logger = logger
			logger.Debug("settings loaded", zap.String("data_dir", settings.DataDir), zap.String("network", settings.Network))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "settings file (default $HOME/.stasis/storage.yaml)")
	flags.String("data-dir", "", "directory holding config.json (default $HOME/.stasis/plugins/storage)")
	flags.String("log-level", "", "log level: debug, info, warn or error (default warn)")
	flags.Bool("no-input", false, "never prompt, fail when a value is missing")

	rootCmd.AddCommand(
		newCreateCmd(a),
		newDestroyCmd(a),
		newUpgradeCmd(a),
		newListCmd(a),
		newStartCmd(a),
		newStopCmd(a),
		newUseCmd(a),
		newStatusCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the command line and prints the error, if any, to stderr.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		return err
	}
	return nil
}

// prompter returns a terminal prompter unless input is disabled or stdin is
// not a terminal.
func (a *app) prompter() lifecycle.Prompter {
	if a.settings.NoInput || !a.interactive() {
		return prompt.None{}
	}
	return prompt.NewTerminal(a.in, a.out)
}

// newManager wires the lifecycle manager to docker, the proxy and the config
// document in the data directory. The returned func releases the docker client.
func (a *app) newManager() (*lifecycle.Manager, func(), error) {
	s := a.settings

	dm, err := docker.NewManager(docker.Options{
		Host:          s.Docker.Host,
		MinAPIVersion: s.Docker.MinAPIVersion,
		Out:           a.out,
		Logger:        a.logger,
	})
	if err != nil {
		return nil, nil, err
	}

	px := proxy.New(dm, proxy.Config{
		Container: s.Proxy.Container,
		Image:     s.Proxy.Image,
		Port:      s.Proxy.Port,
		Network:   s.Network,
	}, a.logger)

	m := lifecycle.New(
		store.NewFilePersister(a.fs, s.DataDir),
		dm,
		px,
		a.prompter(),
		lifecycle.WithLogger(a.logger),
		lifecycle.WithOutput(a.out),
		lifecycle.WithNetwork(s.Network),
		lifecycle.WithProber(storage.TypeMinio, probe.MinIO{Timeout: s.Probe.Timeout}),
	)
	closeFn := func() {
		if err := dm.Close(); err != nil {
			a.logger.Debug("closing docker client", zap.Error(err))
		}
	}
	return m, closeFn, nil
}

// nameArg returns the optional storage name argument.
func nameArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
