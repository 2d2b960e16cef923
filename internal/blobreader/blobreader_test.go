package blobreader_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/raextract/internal/blobreader"
	"github.com/tphakala/raextract/internal/rtypes"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLocateAudioPlainOgg(t *testing.T) {
	dir := t.TempDir()
	data := append([]byte("OggS"), bytes.Repeat([]byte{0x01}, 32)...)
	path := writeFile(t, dir, "plain.bin", data)

	payload, ok := blobreader.LocateAudio(path)
	require.True(t, ok)
	assert.Equal(t, rtypes.FormatOgg, payload.Format)
	assert.Equal(t, data, payload.Bytes)
}

func TestLocateAudioOggBehindID3(t *testing.T) {
	dir := t.TempDir()
	var data []byte
	data = append(data, []byte("ID3")...)
	data = append(data, bytes.Repeat([]byte{0x00}, 20)...)
	data = append(data, []byte("OggS")...)
	data = append(data, bytes.Repeat([]byte{0x02}, 32)...)
	path := writeFile(t, dir, "id3ogg.bin", data)

	payload, ok := blobreader.LocateAudio(path)
	require.True(t, ok)
	assert.Equal(t, rtypes.FormatOgg, payload.Format)
	assert.True(t, bytes.HasPrefix(payload.Bytes, []byte("OggS")))
}

func TestLocateAudioMP3BehindID3(t *testing.T) {
	dir := t.TempDir()
	var data []byte
	data = append(data, []byte("ID3")...)
	data = append(data, bytes.Repeat([]byte{0x00}, 20)...)
	path := writeFile(t, dir, "id3mp3.bin", data)

	payload, ok := blobreader.LocateAudio(path)
	require.True(t, ok)
	assert.Equal(t, rtypes.FormatMP3, payload.Format)
	assert.True(t, bytes.HasPrefix(payload.Bytes, []byte("ID3")))
}

func TestLocateAudioFrameSync(t *testing.T) {
	dir := t.TempDir()
	data := append([]byte{0x00, 0x00}, 0xFF, 0xFB)
	data = append(data, bytes.Repeat([]byte{0x03}, 32)...)
	path := writeFile(t, dir, "frame.bin", data)

	payload, ok := blobreader.LocateAudio(path)
	require.True(t, ok)
	assert.Equal(t, rtypes.FormatMP3, payload.Format)
	assert.Equal(t, byte(0xFF), payload.Bytes[0])
}

func TestLocateAudioGzipFallback(t *testing.T) {
	dir := t.TempDir()
	inner := append([]byte("OggS"), bytes.Repeat([]byte{0x04}, 32)...)

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(inner)
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := writeFile(t, dir, "wrapped.gz", buf.Bytes())

	payload, ok := blobreader.LocateAudio(path)
	require.True(t, ok)
	assert.Equal(t, rtypes.FormatOgg, payload.Format)
}

func TestLocateAudioUnrecognized(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "junk.bin", bytes.Repeat([]byte{0x77}, 64))

	_, ok := blobreader.LocateAudio(path)
	assert.False(t, ok)
}

func TestLocateAudioMissingFile(t *testing.T) {
	_, ok := blobreader.LocateAudio("/nonexistent/path/does-not-exist")
	assert.False(t, ok)
}
