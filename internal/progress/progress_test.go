package progress_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/raextract/internal/progress"
	"github.com/tphakala/raextract/internal/rtypes"
)

type recordingSink struct {
	events []rtypes.ProgressEvent
}

func (s *recordingSink) OnProgress(e rtypes.ProgressEvent) {
	s.events = append(s.events, e)
}

func TestTryRespectsRateLimit(t *testing.T) {
	sink := &recordingSink{}
	e := progress.New(sink, time.Now())

	e.Try(rtypes.PhaseProcessing, 1, 10)
	e.Try(rtypes.PhaseProcessing, 2, 10)
	e.Try(rtypes.PhaseProcessing, 3, 10)

	require.Len(t, sink.events, 1)
	assert.Equal(t, int64(1), sink.events[0].ProcessedSoFar)
}

func TestForceAlwaysEmits(t *testing.T) {
	sink := &recordingSink{}
	e := progress.New(sink, time.Now())

	e.Try(rtypes.PhaseProcessing, 1, 10)
	e.Force(rtypes.PhaseDone, 10, 10)
	e.Force(rtypes.PhaseDone, 10, 10)

	require.Len(t, sink.events, 3)
	assert.Equal(t, rtypes.PhaseDone, sink.events[2].Phase)
}
