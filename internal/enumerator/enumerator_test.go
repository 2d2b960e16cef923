package enumerator_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/raextract/internal/enumerator"
	"github.com/tphakala/raextract/internal/rtypes"
)

type noopSink struct {
	errs  int
	bytes int64
}

func (s *noopSink) IncrErrors()          { s.errs++ }
func (s *noopSink) AddInputBytes(n int64) { s.bytes += n }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func drain(ch <-chan rtypes.SourceLocator) []string {
	var paths []string
	for loc := range ch {
		paths = append(paths, loc.Path)
	}
	return paths
}

func TestEnumerateSkipsSmallAndOggAndOutputRoot(t *testing.T) {
	root := t.TempDir()
	outputRoot := filepath.Join(root, "out")
	require.NoError(t, os.MkdirAll(outputRoot, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(root, "good.bin"), []byte("0123456789extra"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "tiny.bin"), []byte("123"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "already.ogg"), []byte("0123456789extra"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(outputRoot, "leftover.bin"), []byte("0123456789extra"), 0o644))

	cfg := &rtypes.RunConfig{InputRoot: root, OutputRoot: outputRoot}
	sink := &noopSink{}

	paths := drain(enumerator.Enumerate(context.Background(), cfg, sink, discardLogger()))

	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "good.bin"), paths[0])
	assert.Equal(t, int64(len("0123456789extra")), sink.bytes)
}

func TestEnumerateHonorsExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	outputRoot := filepath.Join(root, "out")

	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.bin"), []byte("0123456789extra"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.tmp"), []byte("0123456789extra"), 0o644))

	cfg := &rtypes.RunConfig{InputRoot: root, OutputRoot: outputRoot, PathExcludeGlobs: []string{"*.tmp"}}
	sink := &noopSink{}

	paths := drain(enumerator.Enumerate(context.Background(), cfg, sink, discardLogger()))

	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(root, "keep.bin"), paths[0])
}

func TestEnumerateSkipsIndexDBWhenDisabled(t *testing.T) {
	root := t.TempDir()
	outputRoot := filepath.Join(root, "out")
	cfg := &rtypes.RunConfig{InputRoot: root, OutputRoot: outputRoot, ScanIndexDB: false}
	sink := &noopSink{}

	paths := drain(enumerator.Enumerate(context.Background(), cfg, sink, discardLogger()))
	assert.Empty(t, paths)
	assert.Zero(t, sink.errs)
}
