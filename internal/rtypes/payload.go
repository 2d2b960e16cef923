package rtypes

import "crypto/md5" //nolint:gosec // content identity only, not security-sensitive

// Format identifies which audio container the blob reader recognized.
type Format string

const (
	FormatOgg Format = "ogg"
	FormatMP3 Format = "mp3"
)

// Payload is a contiguous byte range beginning at a recognized audio
// header, owned by the worker that produced it until it is handed to
// the writer.
type Payload struct {
	Bytes      []byte
	Format     Format
	ContentMD5 [16]byte
}

// NewPayload computes the content hash and wraps bytes as a Payload.
// The header is not checked here; see HasValidHeader.
func NewPayload(format Format, data []byte) Payload {
	return Payload{
		Bytes:      data,
		Format:     format,
		ContentMD5: md5.Sum(data), //nolint:gosec // dedup key, not a security boundary
	}
}

// Len reports the payload size in bytes, used by the size classifier.
func (p Payload) Len() int {
	return len(p.Bytes)
}

// MD5Hex renders the content hash as the hex string the content set
// keys on.
func (p Payload) MD5Hex() string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 32)
	for i, b := range p.ContentMD5 {
		buf[i*2] = hexDigits[b>>4]
		buf[i*2+1] = hexDigits[b&0x0f]
	}
	return string(buf)
}

const minPayloadLen = 10

// HasValidHeader reports whether data begins with a recognized audio
// header per spec.md §4.B: OggS, ID3, or an MP3 frame-sync pair.
func HasValidHeader(data []byte) bool {
	if len(data) < minPayloadLen {
		return false
	}
	if hasOggHeader(data) || hasID3Header(data) {
		return true
	}
	return hasFrameSync(data, 0)
}

func hasOggHeader(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "OggS"
}

func hasID3Header(data []byte) bool {
	return len(data) >= 3 && string(data[:3]) == "ID3"
}

// hasFrameSync reports an MP3 frame-sync pair (0xFF followed by a
// byte whose top three bits are set) at offset i.
func hasFrameSync(data []byte, i int) bool {
	return i >= 0 && i+1 < len(data) && data[i] == 0xFF && data[i+1]&0xE0 == 0xE0
}
