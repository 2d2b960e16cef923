// Package classifier implements component E: it decides the output
// bucket for a payload, either from its raw size or, for duration
// mode, by shelling out to an external probe tool against the
// writer's temp file.
package classifier

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/tphakala/raextract/internal/rtypes"
)

// probeTimeout bounds the duration probe subprocess per §4.E: a
// misbehaving audio file must never stall a worker indefinitely.
const probeTimeout = 5 * time.Second

// Classifier buckets payloads by duration or size, per cfg.Classification.
type Classifier struct {
	mode   rtypes.Classification
	binary string
}

// New builds a Classifier for the run's configured mode and probe binary.
func New(mode rtypes.Classification, probeBinary string) *Classifier {
	bin := strings.TrimSpace(probeBinary)
	if bin == "" {
		bin = "ffprobe"
	}
	return &Classifier{mode: mode, binary: bin}
}

// BucketFor implements §4.E's bucket_for contract. tempPath is the
// writer's already-flushed temp file, used for the duration probe so
// the classifier never re-reads payload.Bytes from memory.
func (c *Classifier) BucketFor(ctx context.Context, payload rtypes.Payload, tempPath string) rtypes.Bucket {
	if c.mode == rtypes.ClassifyBySize {
		return rtypes.BucketForSize(payload.Len())
	}
	return rtypes.BucketForDuration(c.probeDuration(ctx, tempPath))
}

// probeDuration invokes the external probe tool and returns the
// decoded duration in seconds, or 0 (mapping to the first duration
// bucket) on any non-zero exit, empty output, parse failure, or
// timeout — probe failure is never treated as a data error.
func (c *Classifier) probeDuration(ctx context.Context, path string) time.Duration {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(probeCtx, c.binary, //nolint:gosec // binary name comes from RunConfig, trusted at the process boundary
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return 0
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
