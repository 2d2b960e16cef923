// Package blobreader implements the blob reader & audio locator
// (component B): given a candidate file, it recognizes and isolates
// an embedded Ogg or MP3 stream. Failures are soft — LocateAudio never
// returns an error, only a found/not-found result — since an
// unrecognized blob is an expected, common outcome, not a fault.
package blobreader

import (
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/tphakala/raextract/internal/rtypes"
)

// headerBlockSize is how much of the file is read up front to search
// for a header; most payloads are recognized without reading further.
const headerBlockSize = 4096

// gzipFallbackCap bounds the gzip fallback path so a pathological
// input can't force an unbounded read.
const gzipFallbackCap = 1 << 20 // 1 MiB

const (
	oggMagic = "OggS"
	id3Magic = "ID3"
)

// LocateAudio implements §4.B's algorithm. It returns the recognized
// payload and true, or a zero Payload and false if no audio stream
// could be found or the file could not be read.
func LocateAudio(path string) (rtypes.Payload, bool) {
	f, err := os.Open(path) //nolint:gosec // path comes from the enumerator's own walk
	if err != nil {
		return rtypes.Payload{}, false
	}
	defer f.Close()

	header := make([]byte, headerBlockSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return rtypes.Payload{}, false
	}
	header = header[:n]

	if payload, ok := scanForHeader(header, func() ([]byte, error) {
		return readRemainder(f)
	}); ok {
		return payload, true
	}

	return gzipFallback(path)
}

// readRemainder returns the entire file's bytes, re-reading from the
// start since f's cursor has already advanced past the header block.
func readRemainder(f *os.File) ([]byte, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return io.ReadAll(f)
}

// scanForHeader implements steps 2-4 of §4.B against header (the
// first 4 KiB), calling wholeFile lazily only when a match needs the
// rest of the file.
func scanForHeader(header []byte, wholeFile func() ([]byte, error)) (rtypes.Payload, bool) {
	if k := bytes.Index(header, []byte(oggMagic)); k >= 0 {
		data, err := wholeFile()
		if err != nil || k >= len(data) {
			return rtypes.Payload{}, false
		}
		return rtypes.NewPayload(rtypes.FormatOgg, data[k:]), true
	}

	if j := bytes.Index(header, []byte(id3Magic)); j >= 0 {
		data, err := wholeFile()
		if err != nil || j >= len(data) {
			return rtypes.Payload{}, false
		}
		if k := bytes.Index(data[j:], []byte(oggMagic)); k >= 0 {
			return rtypes.NewPayload(rtypes.FormatOgg, data[j+k:]), true
		}
		return rtypes.NewPayload(rtypes.FormatMP3, data[j:]), true
	}

	if i := frameSyncIndex(header); i >= 0 {
		data, err := wholeFile()
		if err != nil || i >= len(data) {
			return rtypes.Payload{}, false
		}
		return rtypes.NewPayload(rtypes.FormatMP3, data[i:]), true
	}

	return rtypes.Payload{}, false
}

// frameSyncIndex finds the first MP3 frame-sync pair: 0xFF followed by
// a byte whose top three bits are set.
func frameSyncIndex(data []byte) int {
	for i := 0; i+1 < len(data); i++ {
		if data[i] == 0xFF && data[i+1]&0xE0 == 0xE0 {
			return i
		}
	}
	return -1
}

// gzipFallback implements §4.B step 5: read the file bounded to
// gzipFallbackCap, attempt gzip decompression, and re-run the header
// scan against the decompressed buffer.
func gzipFallback(path string) (rtypes.Payload, bool) {
	f, err := os.Open(path) //nolint:gosec // path comes from the enumerator's own walk
	if err != nil {
		return rtypes.Payload{}, false
	}
	defer f.Close()

	bounded := io.LimitReader(f, gzipFallbackCap)
	raw, err := io.ReadAll(bounded)
	if err != nil {
		return rtypes.Payload{}, false
	}

	gz, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return rtypes.Payload{}, false
	}
	defer gz.Close()

	decompressed, err := io.ReadAll(gz)
	if err != nil {
		return rtypes.Payload{}, false
	}

	headerLen := headerBlockSize
	if headerLen > len(decompressed) {
		headerLen = len(decompressed)
	}

	return scanForHeader(decompressed[:headerLen], func() ([]byte, error) {
		return decompressed, nil
	})
}
