// conf/defaults.go default values for settings
package conf

import "github.com/spf13/viper"

// setDefaultConfig seeds viper with the same defaults shipped in the
// embedded config.yaml, so env-var-only deployments still get sane
// behavior without a config file on disk.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("input.root", "")
	v.SetDefault("input.scanindexdb", false)
	v.SetDefault("input.excludeglobs", []string{})

	v.SetDefault("output.root", "")

	v.SetDefault("processing.workers", 0)
	v.SetDefault("processing.classification", "duration")

	v.SetDefault("dedup.processedsetpath", "processed_set.json")

	v.SetDefault("transcode.enabled", false)
	v.SetDefault("transcode.codec", "mp3")
	v.SetDefault("transcode.qualityhint", "")
	v.SetDefault("transcode.workers", 0)

	v.SetDefault("tools.probebinary", "ffprobe")
	v.SetDefault("tools.encoderbinary", "ffmpeg")

	v.SetDefault("sentry.dsn", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "logs/raextract.log")
	v.SetDefault("logging.maxsize", 100)
	v.SetDefault("logging.maxage", 28)
	v.SetDefault("logging.compress", false)
}
