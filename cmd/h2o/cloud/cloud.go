package cloudcmd

import (
	"fmt"
	"strconv"
	"time"

	"h2o/cmd/h2o/cmdutil"
	"h2o/internal/ui"

	"github.com/spf13/cobra"
)

// Cmd returns the parent "h2o cloud" command.
func Cmd(flags *cmdutil.Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cloud",
		Short: "Inspect the H2O cluster",
	}
	cmd.AddCommand(statusCmd(flags))
	return cmd
}

func statusCmd(flags *cmdutil.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show cluster status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cloud, err := cmdutil.Connect(cmd.Context(), flags)
			if err != nil {
				return err
			}

			locked := "no"
			if cloud.Locked {
				locked = "yes"
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValues("  ",
				ui.KV("Name", cloud.Name),
				ui.KV("URL", client.URL()),
				ui.KV("Version", cloud.Version),
				ui.KV("Nodes", strconv.Itoa(cloud.Size)),
				ui.KV("Healthy", ui.SuccessStyle.Render("yes")),
				ui.KV("Locked", locked),
				ui.KV("Uptime", (time.Duration(cloud.Uptime)*time.Millisecond).String()),
			))
			return nil
		},
	}
}
