package contextcmd

import (
	"fmt"
	"sort"

	"h2o/config"
	"h2o/internal/ui"

	"github.com/spf13/cobra"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(cfg.Contexts) == 0 {
				fmt.Fprintln(out, ui.InfoMsg("No contexts configured."))
				return nil
			}

			names := make([]string, 0, len(cfg.Contexts))
			for name := range cfg.Contexts {
				names = append(names, name)
			}
			sort.Strings(names)

			var rows [][]string
			for _, name := range names {
				c := cfg.Contexts[name]

				current := ""
				if name == cfg.CurrentContext {
					current = "*"
				}
				auth := ""
				if c.Username != "" {
					auth = c.Username
				}
				rows = append(rows, []string{current, name, c.URL, auth})
			}

			fmt.Fprintln(out, ui.Table([]string{"", "NAME", "URL", "USER"}, rows))
			return nil
		},
	}
}
