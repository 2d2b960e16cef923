// Package run implements the "run" subcommand: it loads settings,
// builds a RunConfig, and drives one pipeline run to completion.
package run

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tphakala/raextract/internal/conf"
	"github.com/tphakala/raextract/internal/logging"
	"github.com/tphakala/raextract/internal/pipeline"
	"github.com/tphakala/raextract/internal/rtypes"
)

// consoleProgress renders ProgressEvent values to stdout on one
// rewritten line, matching the teacher's file-command progress style.
type consoleProgress struct{}

func (consoleProgress) OnProgress(e rtypes.ProgressEvent) {
	fmt.Printf("\r[%s] processed=%d items/s=%.1f elapsed=%.0fs", e.Phase, e.ProcessedSoFar, e.ItemsPerSecond, e.ElapsedSeconds)
}

// Command builds the "run" subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one extraction pass over input_root",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtraction(settings)
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
	cmd.Flags().IntVar(&settings.Processing.Workers, "workers", viper.GetInt("processing.workers"), "Worker pool size (0 = auto)")
	cmd.Flags().StringVar(&settings.Processing.Classification, "classification", viper.GetString("processing.classification"), "Bucketing mode: duration or size")
	cmd.Flags().BoolVar(&settings.Input.ScanIndexDB, "scan-index-db", viper.GetBool("input.scanindexdb"), "Also scan input_root/index.db")
	cmd.Flags().StringVar(&settings.Dedup.ProcessedSetPath, "processed-set", viper.GetString("dedup.processedsetpath"), "Path to the processed-source set JSON file")
	cmd.Flags().BoolVar(&settings.Transcode.Enabled, "transcode", viper.GetBool("transcode.enabled"), "Enable the post-extraction transcode pass")
	cmd.Flags().StringVar(&settings.Transcode.Codec, "transcode-codec", viper.GetString("transcode.codec"), "Transcode target codec: mp3, wav, flac, aac, m4a")
	cmd.Flags().StringVar(&settings.Tools.ProbeBinary, "probe-binary", viper.GetString("tools.probebinary"), "Duration probe binary")
	cmd.Flags().StringVar(&settings.Tools.EncoderBinary, "encoder-binary", viper.GetString("tools.encoderbinary"), "Transcode encoder binary")
	cmd.Flags().StringSliceVar(&settings.Input.ExcludeGlobs, "exclude", viper.GetStringSlice("input.excludeglobs"), "Glob pattern to exclude from enumeration (repeatable)")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}

func runExtraction(settings *conf.Settings) error {
	logging.Init(settings.Logging.Path)
	log := logging.ForComponent("cmd-run")

	cfg, err := settings.Build()
	if err != nil {
		return fmt.Errorf("building run config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

	pl, err := pipeline.New(cfg, consoleProgress{}, time.Now(), log)
	if err != nil {
		return fmt.Errorf("initializing pipeline: %w", err)
	}

	go func() {
		sig := <-sigChan
		fmt.Printf("\nreceived signal %v, initiating graceful shutdown...\n", sig)
		pl.Cancel()
		cancel()
	}()

	report, err := pl.Run(ctx, cfg)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Printf("phase=%s processed=%d duplicates_content=%d already_processed_source=%d errors=%d duration=%.1fs files_per_second=%.1f\n",
		report.Phase, report.Processed, report.DuplicatesContent, report.AlreadyProcessedSource, report.Errors,
		report.DurationSeconds, report.FilesPerSecond)
	if report.Transcode != nil {
		fmt.Printf("transcode: converted=%d failed=%d skipped=%d\n",
			report.Transcode.Converted, report.Transcode.Failed, report.Transcode.SkippedConverted)
	}
	return nil
}
