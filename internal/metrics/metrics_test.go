package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// histogramSampleCount returns how many observations o has recorded.
func histogramSampleCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, o.(prometheus.Metric).Write(m))
	return m.GetHistogram().GetSampleCount()
}

func TestQueryDuration_ObserveIncreasesCount(t *testing.T) {
	before := histogramSampleCount(t, QueryDuration.WithLabelValues("ok"))
	QueryDuration.WithLabelValues("ok").Observe(0.001)
	after := histogramSampleCount(t, QueryDuration.WithLabelValues("ok"))
	assert.Equal(t, before+1, after)
}

func TestCacheHitsAndMisses_AreIndependentCounters(t *testing.T) {
	beforeHits := testutil.ToFloat64(CacheHits)
	beforeMisses := testutil.ToFloat64(CacheMisses)

	CacheHits.Inc()
	CacheHits.Inc()
	CacheMisses.Inc()

	assert.Equal(t, beforeHits+2, testutil.ToFloat64(CacheHits))
	assert.Equal(t, beforeMisses+1, testutil.ToFloat64(CacheMisses))
}

func TestSetAppInfo_SetsGaugeToOne(t *testing.T) {
	SetAppInfo("test", "abc123", "2026-08-01")
	assert.Equal(t, float64(1), testutil.ToFloat64(AppInfo.WithLabelValues("test", "abc123", "2026-08-01")))
}

func TestBatchGroupSize_ObserveDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		BatchGroupSize.Observe(5)
		BatchGroupsTotal.Inc()
	})
}

func TestQueryCandidatesTotal_TracksSingleAndBatchIndependently(t *testing.T) {
	beforeSingle := histogramSampleCount(t, QueryCandidatesTotal.WithLabelValues("single"))
	beforeBatch := histogramSampleCount(t, QueryCandidatesTotal.WithLabelValues("batch"))

	QueryCandidatesTotal.WithLabelValues("single").Observe(3)
	QueryCandidatesTotal.WithLabelValues("batch").Observe(7)

	assert.Equal(t, beforeSingle+1, histogramSampleCount(t, QueryCandidatesTotal.WithLabelValues("single")))
	assert.Equal(t, beforeBatch+1, histogramSampleCount(t, QueryCandidatesTotal.WithLabelValues("batch")))
}

func TestIndexLeafOverflowTotal_SetReflectsLatestValue(t *testing.T) {
	IndexLeafOverflowTotal.Set(4)
	assert.Equal(t, float64(4), testutil.ToFloat64(IndexLeafOverflowTotal))
}

func TestIndexInsertErrorsAndIngestRowsSkipped_AreWired(t *testing.T) {
	beforeErrors := testutil.ToFloat64(IndexInsertErrors)
	beforeSkipped := testutil.ToFloat64(IngestRowsSkipped.WithLabelValues("non-numeric Latitude"))

	IndexInsertErrors.Inc()
	IngestRowsSkipped.WithLabelValues("non-numeric Latitude").Inc()

	assert.Equal(t, beforeErrors+1, testutil.ToFloat64(IndexInsertErrors))
	assert.Equal(t, beforeSkipped+1, testutil.ToFloat64(IngestRowsSkipped.WithLabelValues("non-numeric Latitude")))
}
