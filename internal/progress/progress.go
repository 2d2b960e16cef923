// Package progress implements the rate-limited progress event
// emitter used by the pipeline orchestrator: emits never block
// workers beyond a trylock, and the aggregate emit rate never
// exceeds the §6 bound of 10 Hz.
package progress

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/tphakala/raextract/internal/rtypes"
)

// maxEventsPerSecond is the §4.G/§6 aggregate emit-rate bound.
const maxEventsPerSecond = 10

// Emitter gates ProgressEvent delivery to a Sink at a bounded rate,
// always letting the final event for a phase transition through.
type Emitter struct {
	limiter *rate.Limiter
	sink    Sink
	started time.Time
}

// Sink receives emitted progress events. The pipeline orchestrator's
// caller supplies one (a CLI progress bar, a log line, a no-op).
type Sink interface {
	OnProgress(rtypes.ProgressEvent)
}

// New builds an Emitter bound to sink, started at now.
func New(sink Sink, now time.Time) *Emitter {
	return &Emitter{
		limiter: rate.NewLimiter(rate.Limit(maxEventsPerSecond), 1),
		sink:    sink,
		started: now,
	}
}

// Try emits the event if the rate limiter currently allows it,
// without blocking the caller.
func (e *Emitter) Try(phase rtypes.Phase, processedSoFar, total int64) {
	if !e.limiter.Allow() {
		return
	}
	e.emit(phase, processedSoFar, total)
}

// Force emits the event unconditionally, bypassing the rate limit.
// Used for phase transitions (Scanning→Processing, →Done, etc.),
// which must never be dropped.
func (e *Emitter) Force(phase rtypes.Phase, processedSoFar, total int64) {
	e.emit(phase, processedSoFar, total)
}

func (e *Emitter) emit(phase rtypes.Phase, processedSoFar, total int64) {
	elapsed := time.Since(e.started).Seconds()
	var itemsPerSecond float64
	if elapsed > 0 {
		itemsPerSecond = float64(processedSoFar) / elapsed
	}
	e.sink.OnProgress(rtypes.ProgressEvent{
		Phase:          phase,
		ProcessedSoFar: processedSoFar,
		Total:          total,
		ElapsedSeconds: elapsed,
		ItemsPerSecond: itemsPerSecond,
	})
}
