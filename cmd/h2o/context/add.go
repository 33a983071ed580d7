package contextcmd

import (
	"fmt"
	"net/url"

	"h2o/config"
	"h2o/internal/ui"

	"github.com/spf13/cobra"
)

func addCmd() *cobra.Command {
	var (
		serverURL string
		username  string
		password  string
		use       bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if serverURL == "" {
				return fmt.Errorf("--server is required")
			}
			if u, err := url.Parse(serverURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("--server %q must be an http or https URL", serverURL)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cfg.Set(name, config.Context{
				URL:      serverURL,
				Username: username,
				Password: password,
			})
			if use || cfg.CurrentContext == "" {
				cfg.CurrentContext = name
			}

			if err := cfg.Save(); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMsg("Context %s saved.", ui.Bold(name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "H2O server URL (e.g. http://localhost:54321)")
	cmd.Flags().StringVar(&username, "username", "", "Basic auth user")
	cmd.Flags().StringVar(&password, "password", "", "Basic auth password")
	cmd.Flags().BoolVar(&use, "use", false, "Make it the current context")
	return cmd
}
