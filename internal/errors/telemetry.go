package errors

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
)

// TelemetryReporter reports enhanced errors to an external system.
type TelemetryReporter interface {
	ReportError(ee *EnhancedError)
	IsEnabled() bool
}

// SentryReporter implements TelemetryReporter for Sentry, used when
// RunConfig.SentryDSN is set.
type SentryReporter struct {
	enabled bool
}

// InitSentryReporter initializes the Sentry SDK with dsn and returns a
// reporter. A blank dsn disables reporting entirely.
func InitSentryReporter(dsn string) (*SentryReporter, error) {
	if dsn == "" {
		return &SentryReporter{enabled: false}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		return nil, fmt.Errorf("initializing sentry client: %w", err)
	}
	return &SentryReporter{enabled: true}, nil
}

func (sr *SentryReporter) IsEnabled() bool { return sr != nil && sr.enabled }

// ReportError sends an unreported error to Sentry, tagged by component
// and category for grouping.
func (sr *SentryReporter) ReportError(ee *EnhancedError) {
	if sr == nil || !sr.enabled || ee.IsReported() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.Component)
		scope.SetTag("category", string(ee.Category))
		for key, value := range ee.GetContext() {
			scope.SetContext(key, map[string]any{"value": value})
		}
		scope.SetLevel(levelForCategory(ee.Category))
		scope.SetFingerprint([]string{ee.Component, string(ee.Category)})
		sentry.CaptureException(ee.Err)
	})
	ee.MarkReported()
}

func levelForCategory(category ErrorCategory) sentry.Level {
	switch category {
	case CategoryInfra, CategoryPersistence:
		return sentry.LevelError
	case CategoryEnumerate, CategoryBlobRead, CategoryClassify, CategoryWrite, CategoryTranscode:
		return sentry.LevelWarning
	default:
		return sentry.LevelError
	}
}

var (
	globalReporter     TelemetryReporter
	globalReporterMu   sync.RWMutex
	hasActiveReporting atomic.Bool
)

// SetTelemetryReporter installs the reporter used by Report.
func SetTelemetryReporter(reporter TelemetryReporter) {
	globalReporterMu.Lock()
	globalReporter = reporter
	globalReporterMu.Unlock()
	hasActiveReporting.Store(reporter != nil && reporter.IsEnabled())
}

// Report sends ee to the installed telemetry reporter, if any. Safe to
// call unconditionally from every Failed-transition path: it is a
// no-op when no reporter is installed.
func Report(ee *EnhancedError) {
	if !hasActiveReporting.Load() {
		return
	}
	globalReporterMu.RLock()
	reporter := globalReporter
	globalReporterMu.RUnlock()
	if reporter != nil && reporter.IsEnabled() {
		reporter.ReportError(ee)
	}
}
