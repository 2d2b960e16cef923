// conf/config.go
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/tphakala/raextract/internal/cpuspec"
	"github.com/tphakala/raextract/internal/rtypes"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings is the viper-backed configuration surface. It is a superset
// of rtypes.RunConfig: wider (accepts operator-friendly strings like
// "duration" for classification mode) and mutable until Build narrows
// it into an immutable RunConfig.
type Settings struct {
	Debug bool // true to enable debug-level logging

	Input struct {
		Root         string   // root directory of the cache to scan
		ScanIndexDB  bool     // whether to include the conventional index DB in enumeration
		ExcludeGlobs []string // filepath.Match patterns excluded from the walk
	}

	Output struct {
		Root string // root directory the structured output tree is written under
	}

	Processing struct {
		Workers        int    // extraction worker pool size, 0 = auto
		Classification string // "duration" or "size"
	}

	Dedup struct {
		ProcessedSetPath string // path to the persisted processed-source set
	}

	Transcode struct {
		Enabled     bool
		Codec       string // mp3, wav, flac, aac, m4a
		QualityHint string
		Workers     int // 0 = auto
	}

	Tools struct {
		ProbeBinary   string // ffprobe-compatible binary name or path
		EncoderBinary string // ffmpeg-compatible binary name or path
	}

	Sentry struct {
		DSN string
	}

	Logging LogConfig
}

// LogConfig mirrors the teacher's per-module logging block, narrowed to
// the single application log this extractor writes.
type LogConfig struct {
	Level    string // debug, info, warn, error
	Path     string // directory the lumberjack-rotated app.log is written under
	MaxSize  int    // megabytes before rotation
	MaxAge   int    // days to retain rotated logs
	Compress bool
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configuration from the first discovered config.yaml,
// falling back to the embedded default, then layers environment
// variable overrides on top.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return nil, fmt.Errorf("conf: default config paths: %w", err)
	}
	for _, path := range configPaths {
		v.AddConfigPath(path)
	}

	setDefaultConfig(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			data, readErr := fs.ReadFile(configFiles, "config.yaml")
			if readErr != nil {
				return nil, fmt.Errorf("conf: embedded config.yaml missing: %w", readErr)
			}
			if err := v.ReadConfig(newEmbeddedReader(data)); err != nil {
				return nil, fmt.Errorf("conf: reading embedded default config: %w", err)
			}
		} else {
			return nil, fmt.Errorf("conf: reading config file: %w", err)
		}
	}

	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("conf: binding environment variables: %w", err)
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("conf: unmarshaling config into struct: %w", err)
	}

	settingsInstance = settings
	return settings, nil
}

// GetSettings returns the most recently loaded settings, or nil before
// the first Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Build validates Settings and narrows it into the immutable
// rtypes.RunConfig the pipeline actually runs with.
func (s *Settings) Build() (*rtypes.RunConfig, error) {
	workers := s.Processing.Workers
	if workers <= 0 {
		workers = cpuspec.DefaultWorkers()
	}

	cfg := &rtypes.RunConfig{
		InputRoot:        s.Input.Root,
		OutputRoot:       s.Output.Root,
		Workers:          workers,
		ScanIndexDB:      s.Input.ScanIndexDB,
		ProcessedSetPath: s.Dedup.ProcessedSetPath,
		ProbeBinary:      s.Tools.ProbeBinary,
		EncoderBinary:    s.Tools.EncoderBinary,
		PathExcludeGlobs: append([]string(nil), s.Input.ExcludeGlobs...),
		SentryDSN:        s.Sentry.DSN,
	}

	switch s.Processing.Classification {
	case "", "duration":
		cfg.Classification = rtypes.ClassifyByDuration
	case "size":
		cfg.Classification = rtypes.ClassifyBySize
	default:
		return nil, fmt.Errorf("conf: unknown processing.classification %q", s.Processing.Classification)
	}

	if s.Transcode.Enabled {
		codec, err := parseCodec(s.Transcode.Codec)
		if err != nil {
			return nil, err
		}
		transcodeWorkers := s.Transcode.Workers
		if transcodeWorkers <= 0 {
			transcodeWorkers = cpuspec.DefaultTranscodeWorkers()
		}
		cfg.Transcode = &rtypes.TranscodeConfig{
			Codec:       codec,
			QualityHint: s.Transcode.QualityHint,
			Workers:     transcodeWorkers,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("conf: invalid run config: %w", err)
	}
	return cfg, nil
}

func parseCodec(name string) (rtypes.Codec, error) {
	switch name {
	case "mp3":
		return rtypes.CodecMP3, nil
	case "wav":
		return rtypes.CodecWAV, nil
	case "flac":
		return rtypes.CodecFLAC, nil
	case "aac":
		return rtypes.CodecAAC, nil
	case "m4a":
		return rtypes.CodecM4A, nil
	default:
		return "", fmt.Errorf("conf: unknown transcode.codec %q", name)
	}
}

// CreateDefaultConfigFile writes the embedded default config.yaml to
// the first default config path, used by the "init" subcommand in
// cmd/initconfig.
func CreateDefaultConfigFile() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("conf: default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("conf: reading embedded config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("conf: creating config directory: %w", err)
	}
	return os.WriteFile(configPath, data, 0o644) //nolint:gosec // matches teacher's accepted mode
}
