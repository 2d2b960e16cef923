package dedup_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/raextract/internal/dedup"
	"github.com/tphakala/raextract/internal/rtypes"
)

func TestProcessedSetLoadMissingIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_set.json")

	ps, err := dedup.LoadProcessedSet(path)
	require.NoError(t, err)
	assert.Equal(t, 0, ps.Len())
	assert.False(t, ps.IsProcessed("deadbeef"))
}

func TestProcessedSetMarkAndPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_set.json")

	ps, err := dedup.LoadProcessedSet(path)
	require.NoError(t, err)

	ps.MarkProcessed("fp-one")
	ps.MarkProcessed("fp-two")
	ps.MarkProcessed("fp-one")
	require.Equal(t, 2, ps.Len())

	require.NoError(t, ps.Persist())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fp-one")
	assert.Contains(t, string(data), "fp-two")

	reloaded, err := dedup.LoadProcessedSet(path)
	require.NoError(t, err)
	assert.True(t, reloaded.IsProcessed("fp-one"))
	assert.True(t, reloaded.IsProcessed("fp-two"))
	assert.False(t, reloaded.IsProcessed("fp-three"))
}

func TestProcessedSetPersistLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "processed_set.json")

	ps, err := dedup.LoadProcessedSet(path)
	require.NoError(t, err)
	ps.MarkProcessed("fp")
	require.NoError(t, ps.Persist())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "processed_set.json", entries[0].Name())
}

func TestContentSetFirstInsertWins(t *testing.T) {
	cs := dedup.NewContentSet()

	assert.True(t, cs.Insert("abc"))
	assert.False(t, cs.Insert("abc"))
	assert.True(t, cs.Insert("def"))
	assert.Equal(t, 2, cs.Len())
}

func TestSourceFingerprintStableForUnchangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	fp1, err := dedup.SourceFingerprint(rtypes.NewDiskLocator(path))
	require.NoError(t, err)
	fp2, err := dedup.SourceFingerprint(rtypes.NewDiskLocator(path))
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func TestSourceFingerprintMissingFile(t *testing.T) {
	_, err := dedup.SourceFingerprint(rtypes.NewDiskLocator(filepath.Join(t.TempDir(), "missing.bin")))
	assert.Error(t, err)
}

func TestSourceFingerprintIndexRowStableAcrossRematerialization(t *testing.T) {
	dir := t.TempDir()
	firstPath := filepath.Join(dir, "db_temp_run1")
	require.NoError(t, os.WriteFile(firstPath, []byte("payload"), 0o644))

	fp1, err := dedup.SourceFingerprint(rtypes.NewIndexRowLocator("deadbeef", firstPath))
	require.NoError(t, err)

	// db_temp is removed and the row re-materialized to a new path with a
	// fresh mtime on the next run; the fingerprint must still match since
	// it is derived from id_hex, not the temp file's path or mtime.
	secondPath := filepath.Join(dir, "db_temp_run2")
	require.NoError(t, os.WriteFile(secondPath, []byte("payload"), 0o644))

	fp2, err := dedup.SourceFingerprint(rtypes.NewIndexRowLocator("deadbeef", secondPath))
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
}
