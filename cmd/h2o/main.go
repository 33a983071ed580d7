package main

import (
	"fmt"
	"os"

	cloudcmd "h2o/cmd/h2o/cloud"
	"h2o/cmd/h2o/cmdutil"
	contextcmd "h2o/cmd/h2o/context"
	democmd "h2o/cmd/h2o/demo"
	"h2o/internal/buildinfo"
	"h2o/internal/logging"
	"h2o/internal/ui"

	"github.com/spf13/cobra"
)

func main() {
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		debug         bool
		noInteraction bool
		flags         cmdutil.Flags
	)

	root := &cobra.Command{
		Use:           "h2o",
		Short:         "Client and interactive demos for an H2O server",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ui.ConfigureInteraction(noInteraction)

			env, err := cmdutil.Env()
			if err != nil {
				return err
			}
			level := env.LogLevel
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&noInteraction, "no-interaction", false, "Never prompt and disable colour")

	// Connection flags, available to all subcommands.
	root.PersistentFlags().StringVar(&flags.URL, "url", "", "H2O server URL (default from context or "+cmdutil.DefaultURL+")")
	root.PersistentFlags().StringVar(&flags.Context, "context", "", "Context name to use")

	root.AddCommand(democmd.Cmd(&flags))
	root.AddCommand(cloudcmd.Cmd(&flags))
	root.AddCommand(contextcmd.Cmd())
	return root
}
