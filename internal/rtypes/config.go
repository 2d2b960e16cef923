// Package rtypes holds the immutable data model shared by every
// extractor component: RunConfig in, RunReport out, with the
// locator/payload/bucket shapes that flow between them.
package rtypes

import "fmt"

// Classification selects how recovered payloads are routed into buckets.
type Classification string

const (
	ClassifyByDuration Classification = "by_duration"
	ClassifyBySize     Classification = "by_size"
)

// Codec is a transcode target understood by the transcode stage.
type Codec string

const (
	CodecMP3  Codec = "mp3"
	CodecWAV  Codec = "wav"
	CodecFLAC Codec = "flac"
	CodecAAC  Codec = "aac"
	CodecM4A  Codec = "m4a"
)

// TranscodeConfig enables the optional post-pass in §4.H.
type TranscodeConfig struct {
	Codec       Codec
	QualityHint string
	Workers     int
}

// RunConfig is the immutable input to one run. It is owned by the
// orchestrator for the duration of the run and referenced read-only
// by every component.
type RunConfig struct {
	InputRoot        string
	OutputRoot       string
	Workers          int
	Classification   Classification
	ScanIndexDB      bool
	Transcode        *TranscodeConfig
	ProcessedSetPath string

	// ProbeBinary/EncoderBinary name the external tools from §6.
	ProbeBinary   string
	EncoderBinary string

	// PathExcludeGlobs supplements §4.A's mandatory output_root
	// exclusion with caller-supplied glob patterns (SPEC_FULL §C.3).
	PathExcludeGlobs []string

	// SentryDSN, if set, routes Failed-transition infra errors to
	// Sentry (SPEC_FULL §B). Empty disables this entirely.
	SentryDSN string
}

// Validate enforces the structural invariants RunConfig promises.
func (c *RunConfig) Validate() error {
	if c.InputRoot == "" {
		return fmt.Errorf("rtypes: input_root is required")
	}
	if c.OutputRoot == "" {
		return fmt.Errorf("rtypes: output_root is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("rtypes: workers must be positive, got %d", c.Workers)
	}
	switch c.Classification {
	case ClassifyByDuration, ClassifyBySize:
	default:
		return fmt.Errorf("rtypes: unknown classification %q", c.Classification)
	}
	if c.ProcessedSetPath == "" {
		return fmt.Errorf("rtypes: processed_set_path is required")
	}
	if c.Transcode != nil {
		if c.Transcode.Workers <= 0 {
			return fmt.Errorf("rtypes: transcode.workers must be positive, got %d", c.Transcode.Workers)
		}
		switch c.Transcode.Codec {
		case CodecMP3, CodecWAV, CodecFLAC, CodecAAC, CodecM4A:
		default:
			return fmt.Errorf("rtypes: unknown transcode codec %q", c.Transcode.Codec)
		}
	}
	return nil
}
