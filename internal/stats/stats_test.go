package stats_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/tphakala/raextract/internal/stats"
)

func TestCountersIncrement(t *testing.T) {
	s := stats.New(time.Now())

	s.IncrProcessed()
	s.IncrProcessed()
	s.IncrDuplicatesContent()
	s.IncrAlreadyProcessedSource()
	s.IncrErrors()
	s.IncrConverted()
	s.IncrFailed()
	s.IncrSkippedConverted()
	s.AddInputBytes(1024)
	s.AddInputBytes(512)

	assert.Equal(t, int64(2), s.Processed())
	assert.Equal(t, int64(1), s.DuplicatesContent())
	assert.Equal(t, int64(1), s.AlreadyProcessedSource())
	assert.Equal(t, int64(1), s.Errors())
	assert.Equal(t, int64(1), s.Converted())
	assert.Equal(t, int64(1), s.Failed())
	assert.Equal(t, int64(1), s.SkippedConverted())
	assert.Equal(t, int64(1536), s.InputBytes())
}

func TestItemsPerSecondZeroBeforeElapsedTime(t *testing.T) {
	s := stats.New(time.Now().Add(time.Second))
	assert.Equal(t, float64(0), s.ItemsPerSecond())
}

func TestCollectorExposesAllMetrics(t *testing.T) {
	s := stats.New(time.Now())
	s.IncrProcessed()

	count := testutil.CollectAndCount(s)
	assert.Equal(t, 7, count)
}
