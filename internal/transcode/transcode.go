// Package transcode implements the optional post-pass (component H):
// it walks the structured output tree for extracted .ogg files and
// fans them out to an external encoder, mirroring each bucket
// subpath under a codec-named sibling directory.
package transcode

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	apperrors "github.com/tphakala/raextract/internal/errors"
	"github.com/tphakala/raextract/internal/logging"
	"github.com/tphakala/raextract/internal/rtypes"
)

// encodeTimeout bounds a single ffmpeg invocation, per §4.H: a
// pathological input must never stall the whole transcode pass.
const encodeTimeout = 30 * time.Second

// Sink receives per-file transcode outcomes. *stats.Stats satisfies
// this directly.
type Sink interface {
	IncrConverted()
	IncrFailed()
	IncrSkippedConverted()
}

// codecArgs maps a codec to the ffmpeg audio-codec flags and output
// extension §4.H specifies.
func codecArgs(codec rtypes.Codec) (args []string, ext string, ok bool) {
	switch codec {
	case rtypes.CodecMP3:
		return []string{"-codec:a", "libmp3lame", "-b:a", "192k"}, ".mp3", true
	case rtypes.CodecWAV:
		return []string{"-codec:a", "pcm_s16le"}, ".wav", true
	case rtypes.CodecFLAC:
		return []string{"-codec:a", "flac"}, ".flac", true
	case rtypes.CodecAAC:
		return []string{"-codec:a", "aac", "-b:a", "128k"}, ".aac", true
	case rtypes.CodecM4A:
		return []string{"-codec:a", "aac", "-b:a", "128k"}, ".m4a", true
	default:
		return nil, "", false
	}
}

// Run walks audioRoot for .ogg files and transcodes each into
// <output_root>/Audio_<CODEC>/<bucket>/<name><ext>, bounded to
// cfg.Transcode.Workers concurrent ffmpeg invocations. A missing
// encoder binary fails fast: the extraction results returned by the
// caller are unaffected, but the transcode report shows zero
// conversions.
func Run(ctx context.Context, cfg *rtypes.RunConfig, audioRoot string, sink Sink, log *slog.Logger) *rtypes.TranscodeReport {
	tc := cfg.Transcode
	report := &rtypes.TranscodeReport{}

	binary := strings.TrimSpace(cfg.EncoderBinary)
	if binary == "" {
		binary = "ffmpeg"
	}
	destRoot := filepath.Join(cfg.OutputRoot, "Audio_"+strings.ToUpper(string(tc.Codec)))

	var oggFiles []string
	walkErr := filepath.Walk(audioRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // per-entry errors never abort the walk
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".ogg") {
			oggFiles = append(oggFiles, path)
		}
		return nil
	})
	if walkErr != nil {
		log.Error("transcode: walking audio tree failed", "error",
			apperrors.Newf("walking %s: %w", audioRoot, walkErr).
				Component("transcode").
				Category(apperrors.CategoryTranscode).
				Build())
		return report
	}

	if _, err := exec.LookPath(binary); err != nil {
		log.Error("transcode: encoder binary not found, skipping pass", "binary", binary, "error", err)
		for range oggFiles {
			sink.IncrSkippedConverted()
		}
		report.SkippedConverted = int64(len(oggFiles))
		return report
	}

	args, ext, ok := codecArgs(tc.Codec)
	if !ok {
		log.Error("transcode: unknown codec, skipping pass", "codec", tc.Codec)
		for range oggFiles {
			sink.IncrSkippedConverted()
		}
		report.SkippedConverted = int64(len(oggFiles))
		return report
	}

	var converted, failed atomic.Int64

	sem := semaphore.NewWeighted(int64(tc.Workers))
	var wg sync.WaitGroup
	for _, src := range oggFiles {
		if ctx.Err() != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			defer sem.Release(1)
			encodeOne(ctx, binary, args, ext, audioRoot, destRoot, cfg.OutputRoot, src, sink, log, &converted, &failed)
		}(src)
	}
	wg.Wait()

	report.Converted = converted.Load()
	report.Failed = failed.Load()
	return report
}

func encodeOne(ctx context.Context, binary string, args []string, ext, audioRoot, destRoot, outputRoot, src string, sink Sink, log *slog.Logger, converted, failed *atomic.Int64) {
	rel, err := filepath.Rel(audioRoot, src)
	if err != nil {
		sink.IncrFailed()
		failed.Add(1)
		return
	}
	dst := filepath.Join(destRoot, strings.TrimSuffix(rel, filepath.Ext(rel))+ext)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		sink.IncrFailed()
		failed.Add(1)
		log.Warn("transcode: creating destination directory failed", "path", dst, "error", err)
		return
	}

	encodeCtx, cancel := context.WithTimeout(ctx, encodeTimeout)
	defer cancel()

	// §6's exact invocation order: -i <input> -y -loglevel error <codec
	// args...> <output>.
	cmdArgs := []string{"-i", src, "-y", "-loglevel", "error"}
	cmdArgs = append(cmdArgs, args...)
	cmdArgs = append(cmdArgs, dst)
	cmd := exec.CommandContext(encodeCtx, binary, cmdArgs...) //nolint:gosec // binary name comes from RunConfig, trusted at the process boundary

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		sink.IncrFailed()
		failed.Add(1)
		captured := strings.TrimSpace(stderr.String())
		log.Warn("transcode: encoding failed", "src", src, "error", err, "stderr", captured)
		message := fmt.Sprintf("transcode failed: %v: %s", err, captured)
		if logErr := logging.LogExtractionError(outputRoot, src, message); logErr != nil {
			log.Warn("transcode: writing extraction error log failed", "error", logErr)
		}
		return
	}

	sink.IncrConverted()
	converted.Add(1)
}
