// init.go implements the "xpost init" command which writes config.yaml.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xpost-dev/xpost/internal/config"
)

func newInitCmd() *cobra.Command {
	var (
		apiURL string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml",
		Long: `Create the xpost state directory (~/.xpost, or $XPOST_HOME) with a
config.yaml holding the backend URL and view defaults.`,
		Annotations: map[string]string{skipBootstrap: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			path := filepath.Join(dir, "config.yaml")
			if _, statErr := os.Stat(path); statErr == nil && !force {
				fmt.Fprintf(out, "Warning: %s already exists.\n", path)
				fmt.Fprint(out, "Overwrite? [y/N]: ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.TrimSpace(strings.ToLower(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(out, "Aborted.")
					return nil
				}
			}

			cfg := config.DefaultConfig()
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.WriteConfig(dir, cfg); err != nil {
				return err
			}

			fmt.Fprintf(out, "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "", "Backend base URL (default "+config.DefaultBaseURL+")")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config without asking")

	return cmd
}
