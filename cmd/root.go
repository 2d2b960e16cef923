// Package cmd wires the cobra command tree to the conf/pipeline
// packages. root.go builds the root command and its persistent flags.
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/raextract/cmd/initconfig"
	"github.com/tphakala/raextract/cmd/run"
	"github.com/tphakala/raextract/cmd/transcode"
	"github.com/tphakala/raextract/cmd/version"
	"github.com/tphakala/raextract/internal/buildinfo"
	"github.com/tphakala/raextract/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "raextract",
		Short: "Extract embedded audio payloads from a game-client cache",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		log.Printf("error setting up flags: %v\n", err)
	}

	runCmd := run.Command(settings)
	versionCmd := version.Command(build)
	initCmd := initconfig.Command()
	transcodeCmd := transcode.Command(settings)

	rootCmd.AddCommand(runCmd, versionCmd, initCmd, transcodeCmd)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags global to the command line interface.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Input.Root, "input", viper.GetString("input.root"), "Path to the cache input_root")
	rootCmd.PersistentFlags().StringVar(&settings.Output.Root, "output", viper.GetString("output.root"), "Path to the output_root")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
