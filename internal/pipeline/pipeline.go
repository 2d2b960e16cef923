// Package pipeline implements component G: the run orchestrator. It
// wires the enumerator, blob reader, dedup layer, classifier, and
// writer into a bounded worker pool, drives the §4.G state machine,
// and produces the final RunReport.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tphakala/raextract/internal/blobreader"
	"github.com/tphakala/raextract/internal/classifier"
	"github.com/tphakala/raextract/internal/dedup"
	"github.com/tphakala/raextract/internal/enumerator"
	apperrors "github.com/tphakala/raextract/internal/errors"
	"github.com/tphakala/raextract/internal/logging"
	"github.com/tphakala/raextract/internal/progress"
	"github.com/tphakala/raextract/internal/rtypes"
	"github.com/tphakala/raextract/internal/stats"
	"github.com/tphakala/raextract/internal/transcode"
	"github.com/tphakala/raextract/internal/writer"
)

// timeFormat is the run_ts layout shared by every temp and
// disambiguated target name the writer produces in this run.
const timeFormat = "20060102_150405"

// dequeueTimeout bounds how long a worker waits on an empty queue
// before checking for cancellation and end-of-stream, per §4.G's
// scheduling contract.
const dequeueTimeout = 5 * time.Second

// Pipeline owns every per-run component and drives them to completion.
type Pipeline struct {
	log *slog.Logger

	outputRoot   string
	processedSet *dedup.ProcessedSet
	contentSet   *dedup.ContentSet
	stats        *stats.Stats
	progress     *progress.Emitter
	writer       *writer.Writer
	classifier   *classifier.Classifier

	cancelled atomic.Bool
}

// ProgressSink is satisfied by whatever the caller wants progress
// events delivered to; pass progress.Sink-compatible values straight
// through, or a no-op for headless runs.
type ProgressSink = progress.Sink

// New builds a Pipeline ready to Run cfg. now is the run's start
// time, used both for run_ts formatting and elapsed-time accounting.
func New(cfg *rtypes.RunConfig, sink ProgressSink, now time.Time, log *slog.Logger) (*Pipeline, error) {
	reporter, err := apperrors.InitSentryReporter(cfg.SentryDSN)
	if err != nil {
		log.Warn("pipeline: sentry init failed, continuing without telemetry", "error", err)
	} else {
		apperrors.SetTelemetryReporter(reporter)
	}

	processedSet, err := dedup.LoadProcessedSet(cfg.ProcessedSetPath)
	if err != nil {
		ee := apperrors.Newf("loading processed set: %w", err).
			Component("pipeline").
			Category(apperrors.CategoryInfra).
			Build()
		apperrors.Report(ee)
		return nil, ee
	}

	st := stats.New(now)
	c := classifier.New(cfg.Classification, cfg.ProbeBinary)
	runTS := now.Format(timeFormat)

	return &Pipeline{
		log:          log,
		outputRoot:   cfg.OutputRoot,
		processedSet: processedSet,
		contentSet:   dedup.NewContentSet(),
		stats:        st,
		progress:     progress.New(sink, now),
		writer:       writer.New(cfg.OutputRoot, runTS, c),
		classifier:   c,
	}, nil
}

// Cancel requests cooperative shutdown: in-flight items finish, no
// new items are started, and the processed set is still persisted.
func (p *Pipeline) Cancel() {
	p.cancelled.Store(true)
}

// Run drives the full extraction, and optional transcode, run to
// completion and returns the final report. Run never returns a
// Go error for per-item failures; only a startup fault (cannot
// create output_root, cannot start the worker pool) produces one,
// alongside a report in PhaseFailed.
func (p *Pipeline) Run(ctx context.Context, cfg *rtypes.RunConfig) (*rtypes.RunReport, error) {
	startedAt := p.stats.StartedAt()

	if err := os.MkdirAll(cfg.OutputRoot, 0o755); err != nil {
		ee := apperrors.Newf("creating output root: %w", err).
			Component("pipeline").
			Category(apperrors.CategoryInfra).
			Build()
		apperrors.Report(ee)
		return p.failedReport(startedAt), ee
	}

	p.progress.Force(rtypes.PhaseScanning, 0, 0)

	locators := enumerator.Enumerate(ctx, cfg, p.stats, p.log)

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Workers; i++ {
		group.Go(func() error {
			p.worker(groupCtx, locators)
			return nil
		})
	}
	p.progress.Force(rtypes.PhaseProcessing, 0, 0)
	_ = group.Wait()

	phase := rtypes.PhaseDone
	if p.cancelled.Load() || ctx.Err() != nil {
		phase = rtypes.PhaseCancelled
	}

	if err := p.processedSet.Persist(); err != nil {
		ee := apperrors.Newf("persisting processed set: %w", err).
			Component("pipeline").
			Category(apperrors.CategoryPersistence).
			Build()
		apperrors.Report(ee)
		p.log.Error("pipeline: persisting processed set failed", "error", err)
		p.stats.IncrErrors()
	}

	var transcodeReport *rtypes.TranscodeReport
	if phase == rtypes.PhaseDone && cfg.Transcode != nil && p.stats.Processed() > 0 {
		p.progress.Force(rtypes.PhaseTranscoding, 0, 0)
		transcodeReport = transcode.Run(ctx, cfg, filepath.Join(cfg.OutputRoot, "Audio"), p.stats, p.log)
	}

	// db_temp holds files materialized from index-database rows; once
	// extraction (and any transcode pass) is done, nothing reads them
	// again, and spec leaves their cleanup to the implementer.
	if err := os.RemoveAll(filepath.Join(cfg.OutputRoot, "db_temp")); err != nil {
		p.log.Warn("pipeline: removing db_temp failed", "error", err)
	}

	p.progress.Force(phase, p.stats.Processed(), p.stats.Processed())

	return p.report(phase, startedAt, cfg.OutputRoot, transcodeReport), nil
}

// Stats exposes the run's live counters, e.g. for registration with a
// host-owned prometheus registry.
func (p *Pipeline) Stats() *stats.Stats { return p.stats }

// worker pops locators off the queue until it is closed or the
// run is cancelled, processing each one independently. A per-item
// failure never stops the worker.
func (p *Pipeline) worker(ctx context.Context, locators <-chan rtypes.SourceLocator) {
	for {
		if p.cancelled.Load() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case loc, ok := <-locators:
			if !ok {
				return
			}
			p.processOne(ctx, loc)
			p.progress.Try(rtypes.PhaseProcessing, p.stats.Processed(), 0)
		case <-time.After(dequeueTimeout):
			// idle tick: re-check cancellation/ctx above
		}
	}
}

// processOne implements §4.G's literal per-item pipeline steps 1-4.
// ProcessedSet.mark_processed is called only from step 4's success
// branch: a non-audio or duplicate-content source is left unmarked,
// so a rerun re-evaluates it rather than silently remembering a
// negative result that was never actually written.
func (p *Pipeline) processOne(ctx context.Context, loc rtypes.SourceLocator) {
	// Step 1: fingerprint + already-processed check.
	fp, err := dedup.SourceFingerprint(loc)
	if err != nil {
		p.stats.IncrErrors()
		p.logError(loc.Path, fmt.Sprintf("fingerprinting source failed: %v", err))
		return
	}

	if p.processedSet.IsProcessed(fp) {
		p.log.Debug("pipeline: source already processed, skipping", "path", loc.Path, "fingerprint", fp)
		p.stats.IncrAlreadyProcessedSource()
		return
	}

	// Step 2: locate and validate the audio payload.
	payload, found := blobreader.LocateAudio(loc.Path)
	if !found || !rtypes.HasValidHeader(payload.Bytes) {
		return
	}

	// Step 3: content-level dedup.
	if !p.contentSet.Insert(payload.MD5Hex()) {
		p.stats.IncrDuplicatesContent()
		return
	}

	// Step 4: write, then mark processed only on success.
	basename := sourceBasename(loc.Path)
	if _, ok := p.writer.Emit(ctx, basename, payload); !ok {
		p.stats.IncrErrors()
		p.logError(loc.Path, "writing payload failed")
		return
	}

	p.stats.IncrProcessed()
	p.processedSet.MarkProcessed(fp)
}

// logError appends one line to <output_root>/logs/extraction_errors.log
// per §6's error-log contract, in addition to the structured log line
// every caller already emits.
func (p *Pipeline) logError(sourcePath, message string) {
	p.log.Warn("pipeline: "+message, "path", sourcePath)
	if err := logging.LogExtractionError(p.outputRoot, sourcePath, message); err != nil {
		p.log.Warn("pipeline: writing extraction error log failed", "error", err)
	}
}

// sourceBasename strips the extension from a locator's path, leaving
// the stem the writer uses to build its output filename.
func sourceBasename(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func (p *Pipeline) failedReport(startedAt time.Time) *rtypes.RunReport {
	return p.report(rtypes.PhaseFailed, startedAt, "", nil)
}

func (p *Pipeline) report(phase rtypes.Phase, startedAt time.Time, outputDir string, tr *rtypes.TranscodeReport) *rtypes.RunReport {
	elapsed := time.Since(startedAt).Seconds()
	var perSecond float64
	if elapsed > 0 {
		perSecond = float64(p.stats.Processed()) / elapsed
	}
	return &rtypes.RunReport{
		Processed:              p.stats.Processed(),
		DuplicatesContent:      p.stats.DuplicatesContent(),
		AlreadyProcessedSource: p.stats.AlreadyProcessedSource(),
		Errors:                 p.stats.Errors(),
		OutputDir:              outputDir,
		DurationSeconds:        elapsed,
		FilesPerSecond:         perSecond,
		Transcode:              tr,
		InputRootBytes:         p.stats.InputBytes(),
		Phase:                  phase,
		StartedAt:              startedAt,
	}
}
