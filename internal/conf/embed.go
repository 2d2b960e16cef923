package conf

import "bytes"

// embeddedReader returns a fresh reader over the embedded config.yaml
// bytes for viper.ReadConfig, so a first run with no config file on
// disk still gets sane defaults instead of an error.
func newEmbeddedReader(data []byte) *bytes.Reader {
	return bytes.NewReader(data)
}
