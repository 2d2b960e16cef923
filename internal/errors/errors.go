// Package errors provides a small enhanced-error builder used across
// the extractor so every counted failure (§7's error taxonomy) carries
// a component, a category, and structured context for the log line
// that reports it.
package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
	"sync"
	"time"
)

// ErrorCategory groups errors for §7's taxonomy and for log filtering.
type ErrorCategory string

const (
	CategoryEnumerate   ErrorCategory = "enumerate"
	CategoryBlobRead    ErrorCategory = "blob-read"
	CategoryClassify    ErrorCategory = "classify"
	CategoryWrite       ErrorCategory = "write"
	CategoryPersistence ErrorCategory = "persistence"
	CategoryTranscode   ErrorCategory = "transcode"
	CategoryInfra       ErrorCategory = "infra"
	CategoryGeneric     ErrorCategory = "generic"
)

// ComponentUnknown is used when no component was set on the builder.
const ComponentUnknown = "unknown"

// EnhancedError wraps an error with component/category/context
// metadata for structured logging.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Context   map[string]any
	Timestamp time.Time

	mu       sync.RWMutex
	reported bool
}

func (ee *EnhancedError) Error() string { return ee.Err.Error() }

func (ee *EnhancedError) Unwrap() error { return ee.Err }

func (ee *EnhancedError) Is(target error) bool {
	if other, ok := target.(*EnhancedError); ok {
		return ee.Category == other.Category
	}
	return stderrors.Is(ee.Err, target)
}

// GetContext returns a copy of the error's context map.
func (ee *EnhancedError) GetContext() map[string]any {
	ee.mu.RLock()
	defer ee.mu.RUnlock()
	if ee.Context == nil {
		return nil
	}
	cp := make(map[string]any, len(ee.Context))
	maps.Copy(cp, ee.Context)
	return cp
}

// MarkReported records that this error has already been sent to
// optional external telemetry (Sentry), preventing duplicate reports.
func (ee *EnhancedError) MarkReported() {
	ee.mu.Lock()
	defer ee.mu.Unlock()
	ee.reported = true
}

// IsReported reports whether MarkReported has been called.
func (ee *EnhancedError) IsReported() bool {
	ee.mu.RLock()
	defer ee.mu.RUnlock()
	return ee.reported
}

// ErrorBuilder is a fluent constructor for EnhancedError.
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New starts a builder wrapping err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

// Newf starts a builder wrapping a formatted error.
func Newf(format string, args ...any) *ErrorBuilder {
	return New(fmt.Errorf(format, args...))
}

// Component names the subsystem the error occurred in (enumerator,
// blobreader, dedup, classifier, writer, pipeline, transcode).
func (eb *ErrorBuilder) Component(component string) *ErrorBuilder {
	eb.component = component
	return eb
}

// Category sets the error's §7 taxonomy bucket.
func (eb *ErrorBuilder) Category(category ErrorCategory) *ErrorBuilder {
	eb.category = category
	return eb
}

// Context attaches one key/value pair of structured context.
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any)
	}
	eb.context[key] = value
	return eb
}

// FileContext attaches the source path and size involved in the error.
func (eb *ErrorBuilder) FileContext(path string, size int64) *ErrorBuilder {
	if path != "" {
		eb.Context("path", path)
	}
	if size > 0 {
		eb.Context("size_bytes", size)
	}
	return eb
}

// Build finalizes the EnhancedError.
func (eb *ErrorBuilder) Build() *EnhancedError {
	component := eb.component
	if component == "" {
		component = ComponentUnknown
	}
	category := eb.category
	if category == "" {
		category = CategoryGeneric
	}
	return &EnhancedError{
		Err:       eb.err,
		Component: component,
		Category:  category,
		Context:   eb.context,
		Timestamp: time.Now(),
	}
}

// Is delegates to the standard library for plain error comparisons.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As delegates to the standard library.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Unwrap delegates to the standard library.
func Unwrap(err error) error { return stderrors.Unwrap(err) }

// Join delegates to the standard library.
func Join(errs ...error) error { return stderrors.Join(errs...) }

// IsCategory reports whether err is an *EnhancedError of category cat.
func IsCategory(err error, cat ErrorCategory) bool {
	var ee *EnhancedError
	if stderrors.As(err, &ee) {
		return ee.Category == cat
	}
	return false
}
