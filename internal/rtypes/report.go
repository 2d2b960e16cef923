package rtypes

import "time"

// Phase is the pipeline's run-level state, per §4.G's state machine.
type Phase string

const (
	PhaseScanning    Phase = "scanning"
	PhaseProcessing  Phase = "processing"
	PhaseTranscoding Phase = "transcoding"
	PhaseDone        Phase = "done"
	PhaseCancelled   Phase = "cancelled"
	PhaseFailed      Phase = "failed"
)

// ProgressEvent is pushed to the host process at a bounded frequency
// (≤10Hz aggregate, enforced by internal/progress).
type ProgressEvent struct {
	Phase          Phase
	ProcessedSoFar int64
	Total          int64
	ElapsedSeconds float64
	ItemsPerSecond float64
}

// TranscodeReport summarizes the optional transcode stage.
type TranscodeReport struct {
	Converted        int64
	Failed           int64
	SkippedConverted int64
}

// RunReport is the final, immutable summary of one run.
type RunReport struct {
	Processed             int64
	DuplicatesContent     int64
	AlreadyProcessedSource int64
	Errors                int64
	OutputDir             string
	DurationSeconds       float64
	FilesPerSecond        float64
	Transcode             *TranscodeReport

	// InputRootBytes is the sum of sizes of all enumerated disk
	// entries, added per SPEC_FULL §C.2 for reporting only; the core
	// never deletes or modifies cache entries.
	InputRootBytes int64

	Phase     Phase
	StartedAt time.Time
}
