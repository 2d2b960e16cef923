package transcode_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/raextract/internal/rtypes"
	"github.com/tphakala/raextract/internal/transcode"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingSink struct {
	converted, failed, skipped int
}

func (s *countingSink) IncrConverted()        { s.converted++ }
func (s *countingSink) IncrFailed()           { s.failed++ }
func (s *countingSink) IncrSkippedConverted() { s.skipped++ }

func TestRunSkipsWhenEncoderMissing(t *testing.T) {
	audioRoot := t.TempDir()
	bucketDir := filepath.Join(audioRoot, "short_5-15s")
	require.NoError(t, os.MkdirAll(bucketDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bucketDir, "clip1.ogg"), []byte("OggS..."), 0o644))

	cfg := &rtypes.RunConfig{
		OutputRoot: filepath.Dir(audioRoot),
		EncoderBinary: "raextract-nonexistent-encoder-binary",
		Transcode: &rtypes.TranscodeConfig{
			Codec:   rtypes.CodecMP3,
			Workers: 2,
		},
	}
	sink := &countingSink{}

	report := transcode.Run(context.Background(), cfg, audioRoot, sink, discardLogger())

	assert.Equal(t, int64(0), report.Converted)
	assert.Equal(t, int64(1), report.SkippedConverted)
	assert.Equal(t, 1, sink.skipped)
}

func ffmpegAvailable(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not available, skipping integration test")
	}
	return path
}

func TestRunEncodesRealFile(t *testing.T) {
	ffmpegPath := ffmpegAvailable(t)

	audioRoot := t.TempDir()
	bucketDir := filepath.Join(audioRoot, "short_5-15s")
	require.NoError(t, os.MkdirAll(bucketDir, 0o755))
	srcPath := filepath.Join(bucketDir, "tone.ogg")

	cmd := exec.Command(ffmpegPath, "-y", "-f", "lavfi", "-i", "sine=frequency=440:duration=1", "-c:a", "libvorbis", srcPath)
	require.NoError(t, cmd.Run())

	outputRoot := t.TempDir()
	cfg := &rtypes.RunConfig{
		OutputRoot: outputRoot,
		Transcode: &rtypes.TranscodeConfig{
			Codec:   rtypes.CodecMP3,
			Workers: 2,
		},
	}
	sink := &countingSink{}

	report := transcode.Run(context.Background(), cfg, audioRoot, sink, discardLogger())

	require.Equal(t, int64(1), report.Converted)
	assert.FileExists(t, filepath.Join(outputRoot, "Audio_MP3", "short_5-15s", "tone.mp3"))
}

func TestRunLogsCapturedStderrOnEncodeFailure(t *testing.T) {
	ffmpegAvailable(t)

	audioRoot := t.TempDir()
	bucketDir := filepath.Join(audioRoot, "short_5-15s")
	require.NoError(t, os.MkdirAll(bucketDir, 0o755))
	// Not a real ogg file: ffmpeg will fail to probe it and write a
	// message to stderr that the transcode stage must capture.
	require.NoError(t, os.WriteFile(filepath.Join(bucketDir, "broken.ogg"), []byte("not audio"), 0o644))

	outputRoot := t.TempDir()
	cfg := &rtypes.RunConfig{
		OutputRoot: outputRoot,
		Transcode: &rtypes.TranscodeConfig{
			Codec:   rtypes.CodecMP3,
			Workers: 2,
		},
	}
	sink := &countingSink{}

	report := transcode.Run(context.Background(), cfg, audioRoot, sink, discardLogger())

	assert.Equal(t, int64(1), report.Failed)

	data, err := os.ReadFile(filepath.Join(outputRoot, "logs", "extraction_errors.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "broken.ogg")
	assert.Contains(t, string(data), "transcode failed")
}
