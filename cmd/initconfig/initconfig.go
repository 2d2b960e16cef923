// Package initconfig implements the "init" subcommand, writing the
// embedded default config.yaml to the first default config path.
package initconfig

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/raextract/internal/conf"
)

// Command builds the "init" subcommand.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config.yaml to the user config directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := conf.CreateDefaultConfigFile(); err != nil {
				return fmt.Errorf("writing default config: %w", err)
			}
			fmt.Println("wrote default config.yaml")
			return nil
		},
	}
}
