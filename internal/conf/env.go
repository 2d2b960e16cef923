// conf/env.go environment variable bindings for Settings
package conf

import "github.com/spf13/viper"

// envBinding pairs a viper config key with the environment variable
// that overrides it.
type envBinding struct {
	ConfigKey string
	EnvVar    string
}

func getEnvBindings() []envBinding {
	return []envBinding{
		{"input.root", "RAEXTRACT_INPUT_ROOT"},
		{"input.scanindexdb", "RAEXTRACT_SCAN_INDEX_DB"},
		{"output.root", "RAEXTRACT_OUTPUT_ROOT"},
		{"processing.workers", "RAEXTRACT_WORKERS"},
		{"processing.classification", "RAEXTRACT_CLASSIFICATION"},
		{"dedup.processedsetpath", "RAEXTRACT_PROCESSED_SET_PATH"},
		{"transcode.enabled", "RAEXTRACT_TRANSCODE_ENABLED"},
		{"transcode.codec", "RAEXTRACT_TRANSCODE_CODEC"},
		{"transcode.workers", "RAEXTRACT_TRANSCODE_WORKERS"},
		{"tools.probebinary", "RAEXTRACT_PROBE_BINARY"},
		{"tools.encoderbinary", "RAEXTRACT_ENCODER_BINARY"},
		{"sentry.dsn", "RAEXTRACT_SENTRY_DSN"},
		{"logging.level", "RAEXTRACT_LOG_LEVEL"},
		{"debug", "RAEXTRACT_DEBUG"},
	}
}

// bindEnvVars registers each binding with viper so environment
// variables take precedence over the config file and defaults.
func bindEnvVars(v *viper.Viper) error {
	for _, b := range getEnvBindings() {
		if err := v.BindEnv(b.ConfigKey, b.EnvVar); err != nil {
			return err
		}
	}
	return nil
}
