// Package version implements the "version" subcommand.
package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/raextract/internal/buildinfo"
)

// Command builds the "version" subcommand.
func Command(build *buildinfo.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("raextract %s (built %s, system %s)\n", build.GetVersion(), build.GetBuildDate(), build.GetSystemID())
			return nil
		},
	}
}
