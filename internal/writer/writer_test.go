package writer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/raextract/internal/classifier"
	"github.com/tphakala/raextract/internal/rtypes"
	"github.com/tphakala/raextract/internal/writer"
)

func newSizeWriter(t *testing.T, outputRoot string) *writer.Writer {
	t.Helper()
	c := classifier.New(rtypes.ClassifyBySize, "ffprobe")
	return writer.New(outputRoot, "20260731_000000", c)
}

func TestEmitWritesUnderBucketDirectory(t *testing.T) {
	outputRoot := t.TempDir()
	w := newSizeWriter(t, outputRoot)
	payload := rtypes.NewPayload(rtypes.FormatOgg, []byte("OggS0123456789"))

	path, ok := w.Emit(context.Background(), "entry1", payload)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(outputRoot, "Audio", string(rtypes.BucketUltraSmall), "entry1.ogg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload.Bytes, data)

	entries, err := os.ReadDir(outputRoot)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "temp_")
	}
}

func TestEmitDisambiguatesOnCollision(t *testing.T) {
	outputRoot := t.TempDir()
	w := newSizeWriter(t, outputRoot)
	payload := rtypes.NewPayload(rtypes.FormatOgg, []byte("OggS0123456789"))

	path1, ok := w.Emit(context.Background(), "dup", payload)
	require.True(t, ok)

	path2, ok := w.Emit(context.Background(), "dup", payload)
	require.True(t, ok)

	assert.NotEqual(t, path1, path2)
	assert.Contains(t, path2, "20260731_000000")
}
