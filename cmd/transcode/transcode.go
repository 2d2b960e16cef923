// Package transcode implements the "transcode" subcommand: runs
// component H standalone over an already-extracted output tree,
// independent of a fresh extraction pass.
package transcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/raextract/internal/conf"
	"github.com/tphakala/raextract/internal/logging"
	"github.com/tphakala/raextract/internal/stats"
	"github.com/tphakala/raextract/internal/transcode"
)

// Command builds the "transcode" subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcode",
		Short: "Transcode an already-extracted output tree to another codec",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscode(settings)
		},
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.Transcode.Codec, "codec", viper.GetString("transcode.codec"), "Transcode target codec: mp3, wav, flac, aac, m4a")
	cmd.Flags().IntVar(&settings.Transcode.Workers, "workers", viper.GetInt("transcode.workers"), "Transcode worker pool size (0 = auto)")
	cmd.Flags().StringVar(&settings.Tools.EncoderBinary, "encoder-binary", viper.GetString("tools.encoderbinary"), "Transcode encoder binary")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

func runTranscode(settings *conf.Settings) error {
	settings.Transcode.Enabled = true
	logging.Init(settings.Logging.Path)
	log := logging.ForComponent("cmd-transcode")

	cfg, err := settings.Build()
	if err != nil {
		return fmt.Errorf("building run config: %w", err)
	}
	if cfg.Transcode == nil {
		return fmt.Errorf("transcode: no codec configured")
	}

	st := stats.New(time.Now())
	audioRoot := filepath.Join(cfg.OutputRoot, "Audio")
	report := transcode.Run(context.Background(), cfg, audioRoot, st, log)

	fmt.Printf("converted=%d failed=%d skipped=%d\n", report.Converted, report.Failed, report.SkippedConverted)
	return nil
}
