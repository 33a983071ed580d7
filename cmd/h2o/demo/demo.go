package democmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"h2o/cmd/h2o/cmdutil"
	"h2o/internal/console"
	"h2o/internal/demo"
	"h2o/internal/demos"
	"h2o/internal/ui"
	"h2o/sdk"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type runFlags struct {
	noInteractive bool
	noEcho        bool
	skipInit      bool
	dataDir       string
}

// Cmd returns the "h2o demo" command. Each catalogued demo is a subcommand.
func Cmd(flags *cmdutil.Flags) *cobra.Command {
	var rf runFlags

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run an interactive H2O demo",
		Long: `Run a scripted demo against an H2O server. Before every step the demo
prints the code it is about to run and waits for a key; press q to stop.`,
	}
	cmd.PersistentFlags().BoolVar(&rf.noInteractive, "no-interactive", false, "Do not pause between steps")
	cmd.PersistentFlags().BoolVar(&rf.noEcho, "no-echo", false, "Do not print the code of each step")
	cmd.PersistentFlags().BoolVar(&rf.skipInit, "skip-init", false, "Skip connecting to the server (testing mode)")
	cmd.PersistentFlags().StringVar(&rf.dataDir, "data-dir", "", "Directory holding prostate.csv (default $H2O_DATA_DIR or ./"+demos.DefaultDataDir+")")

	// The catalogue only needs a backend to build sequences; names and
	// titles are the same for every backend.
	catalogue := demos.NewCatalogue(&demos.Backend{})
	for _, name := range catalogue.Names() {
		cmd.AddCommand(runCmd(flags, &rf, name, catalogue.Title(name)))
	}
	cmd.AddCommand(listCmd(catalogue))
	return cmd
}

func listCmd(catalogue *demos.Catalogue) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available demos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rows [][]string
			for _, name := range catalogue.Names() {
				rows = append(rows, []string{name, catalogue.Title(name)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"NAME", "DEMO"}, rows))
			return nil
		},
	}
}

func runCmd(flags *cmdutil.Flags, rf *runFlags, name, title string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: "Demo of H2O's " + title,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), flags, rf, name)
		},
	}
}

func run(ctx context.Context, w io.Writer, flags *cmdutil.Flags, rf *runFlags, name string, opts ...sdk.ClientOption) error {
	client, err := cmdutil.NewClient(flags, opts...)
	if err != nil {
		return err
	}
	env, err := cmdutil.Env()
	if err != nil {
		return err
	}
	dataDir := rf.dataDir
	if dataDir == "" {
		dataDir = env.DataDir
	}

	backend := &demos.Backend{Client: client, DataDir: dataDir, Out: w}
	seq, err := demos.NewCatalogue(backend).Lookup(name)
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(ui.NewStepLogger(slog.Default())))
	defer func() {
		if err := tp.Shutdown(context.WithoutCancel(ctx)); err != nil {
			slog.Debug("Shut down tracer provider.", "err", err)
		}
	}()

	interactive := !rf.noInteractive && ui.CanReadKeys()
	if !rf.noInteractive && !interactive {
		slog.Debug("Stdin is not a terminal, running without pauses.")
	}

	_, err = demo.Run(ctx, w, seq, demo.Options{
		Interactive: interactive,
		Echo:        !rf.noEcho,
		Testing:     rf.skipInit,
		Keys:        console.Stdin(),
		Tracer:      tp.Tracer("h2o/demo"),
	})
	return err
}
