package conf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/raextract/internal/conf"
	"github.com/tphakala/raextract/internal/rtypes"
)

func validSettings() *conf.Settings {
	s := &conf.Settings{}
	s.Input.Root = "/cache"
	s.Output.Root = "/out"
	s.Processing.Classification = "duration"
	s.Dedup.ProcessedSetPath = "/out/processed_set.json"
	s.Tools.ProbeBinary = "ffprobe"
	s.Tools.EncoderBinary = "ffmpeg"
	return s
}

func TestBuildAppliesAutoWorkers(t *testing.T) {
	s := validSettings()
	s.Processing.Workers = 0

	cfg, err := s.Build()
	require.NoError(t, err)
	assert.Greater(t, cfg.Workers, 0)
	assert.Equal(t, rtypes.ClassifyByDuration, cfg.Classification)
}

func TestBuildRejectsUnknownClassification(t *testing.T) {
	s := validSettings()
	s.Processing.Classification = "bogus"

	_, err := s.Build()
	require.Error(t, err)
}

func TestBuildWiresTranscodeConfig(t *testing.T) {
	s := validSettings()
	s.Transcode.Enabled = true
	s.Transcode.Codec = "flac"
	s.Transcode.Workers = 4

	cfg, err := s.Build()
	require.NoError(t, err)
	require.NotNil(t, cfg.Transcode)
	assert.Equal(t, rtypes.CodecFLAC, cfg.Transcode.Codec)
	assert.Equal(t, 4, cfg.Transcode.Workers)
}

func TestBuildRejectsUnknownCodec(t *testing.T) {
	s := validSettings()
	s.Transcode.Enabled = true
	s.Transcode.Codec = "opus"

	_, err := s.Build()
	require.Error(t, err)
}

func TestBuildRequiresInputRoot(t *testing.T) {
	s := validSettings()
	s.Input.Root = ""

	_, err := s.Build()
	require.Error(t, err)
}
