// Package stats implements component I: the run's atomic counters,
// exposed both for the progress emitter's snapshots and, via
// prometheus.Collector, to a host-owned metrics registry.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats holds per-field atomic counters for one run. Snapshot reads
// are consistent per counter, not cross-counter atomic, which is
// sufficient for progress rendering per §4.I.
type Stats struct {
	processed              atomic.Int64
	duplicatesContent      atomic.Int64
	alreadyProcessedSource atomic.Int64
	errors                 atomic.Int64

	converted        atomic.Int64
	failed           atomic.Int64
	skippedConverted atomic.Int64

	inputBytes atomic.Int64

	startedAt   time.Time
	lastUpdated atomic.Int64 // unix nanoseconds
}

// New returns a Stats with its start time set to now.
func New(now time.Time) *Stats {
	s := &Stats{startedAt: now}
	s.lastUpdated.Store(now.UnixNano())
	return s
}

func (s *Stats) touch() {
	s.lastUpdated.Store(time.Now().UnixNano())
}

func (s *Stats) IncrProcessed()              { s.processed.Add(1); s.touch() }
func (s *Stats) IncrDuplicatesContent()      { s.duplicatesContent.Add(1); s.touch() }
func (s *Stats) IncrAlreadyProcessedSource() { s.alreadyProcessedSource.Add(1); s.touch() }
func (s *Stats) IncrErrors()                 { s.errors.Add(1); s.touch() }

func (s *Stats) IncrConverted()        { s.converted.Add(1); s.touch() }
func (s *Stats) IncrFailed()           { s.failed.Add(1); s.touch() }
func (s *Stats) IncrSkippedConverted() { s.skippedConverted.Add(1); s.touch() }

// AddInputBytes accumulates the size of one enumerated loose file,
// satisfying enumerator.ErrorSink for reporting only; nothing in the
// run is ever deleted or modified based on this total.
func (s *Stats) AddInputBytes(n int64) { s.inputBytes.Add(n); s.touch() }

func (s *Stats) Processed() int64              { return s.processed.Load() }
func (s *Stats) DuplicatesContent() int64      { return s.duplicatesContent.Load() }
func (s *Stats) AlreadyProcessedSource() int64 { return s.alreadyProcessedSource.Load() }
func (s *Stats) Errors() int64                 { return s.errors.Load() }
func (s *Stats) Converted() int64              { return s.converted.Load() }
func (s *Stats) Failed() int64                 { return s.failed.Load() }
func (s *Stats) SkippedConverted() int64       { return s.skippedConverted.Load() }
func (s *Stats) InputBytes() int64             { return s.inputBytes.Load() }

// StartedAt returns the run's monotonic start time.
func (s *Stats) StartedAt() time.Time { return s.startedAt }

// LastUpdated returns the timestamp of the most recent counter increment.
func (s *Stats) LastUpdated() time.Time {
	return time.Unix(0, s.lastUpdated.Load())
}

// ItemsPerSecond reports the processed-item throughput since start.
func (s *Stats) ItemsPerSecond() float64 {
	elapsed := time.Since(s.startedAt).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(s.Processed()) / elapsed
}

var (
	processedDesc   = prometheus.NewDesc("raextract_processed_total", "Payloads successfully extracted and written.", nil, nil)
	duplicatesDesc  = prometheus.NewDesc("raextract_duplicates_content_total", "Payloads skipped as content duplicates within the run.", nil, nil)
	alreadyDoneDesc = prometheus.NewDesc("raextract_already_processed_source_total", "Sources skipped because a prior run already processed them.", nil, nil)
	errorsDesc      = prometheus.NewDesc("raextract_errors_total", "Per-item or per-entry errors encountered during the run.", nil, nil)
	convertedDesc   = prometheus.NewDesc("raextract_transcode_converted_total", "Files successfully transcoded.", nil, nil)
	failedDesc      = prometheus.NewDesc("raextract_transcode_failed_total", "Files that failed to transcode.", nil, nil)
	skippedDesc     = prometheus.NewDesc("raextract_transcode_skipped_total", "Transcode attempts skipped entirely.", nil, nil)
)

// Describe implements prometheus.Collector.
func (s *Stats) Describe(ch chan<- *prometheus.Desc) {
	ch <- processedDesc
	ch <- duplicatesDesc
	ch <- alreadyDoneDesc
	ch <- errorsDesc
	ch <- convertedDesc
	ch <- failedDesc
	ch <- skippedDesc
}

// Collect implements prometheus.Collector. The host process owns
// registering Stats with its own registry and starting an HTTP
// server; this package never does either.
func (s *Stats) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(processedDesc, prometheus.CounterValue, float64(s.Processed()))
	ch <- prometheus.MustNewConstMetric(duplicatesDesc, prometheus.CounterValue, float64(s.DuplicatesContent()))
	ch <- prometheus.MustNewConstMetric(alreadyDoneDesc, prometheus.CounterValue, float64(s.AlreadyProcessedSource()))
	ch <- prometheus.MustNewConstMetric(errorsDesc, prometheus.CounterValue, float64(s.Errors()))
	ch <- prometheus.MustNewConstMetric(convertedDesc, prometheus.CounterValue, float64(s.Converted()))
	ch <- prometheus.MustNewConstMetric(failedDesc, prometheus.CounterValue, float64(s.Failed()))
	ch <- prometheus.MustNewConstMetric(skippedDesc, prometheus.CounterValue, float64(s.SkippedConverted()))
}
