package query

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vjayram/uask/internal/metrics"
	"github.com/vjayram/uask/internal/spatial"
)

func buildCorpus(t *testing.T) *spatial.Index {
	t.Helper()
	idx := spatial.New(spatial.Rectangle{MinLat: 0, MinLon: 0, MaxLat: 200, MaxLon: 200}, 10)
	require.True(t, idx.Add(1, spatial.Point{Lat: 10, Lon: 10}, []string{"voice"}, "a"))
	require.True(t, idx.Add(2, spatial.Point{Lat: 12, Lon: 10}, []string{"voice", "back"}, "b"))
	require.True(t, idx.Add(3, spatial.Point{Lat: 50, Lon: 50}, []string{"voice"}, "c"))
	return idx
}

func idsOf(results []Result) []int64 {
	out := make([]int64, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}

func TestEngine_Resolve_Scenario1_NegativeExcludesCloserMatch(t *testing.T) {
	idx := buildCorpus(t)
	e := New(idx)

	res, err := e.Resolve(SpatialQuery{
		Location:         spatial.Point{Lat: 10, Lon: 10},
		PositiveKeywords: []string{"voice"},
		NegativeKeywords: []string{"back"},
		K:                2,
		LambdaFactor:     0.5,
		Radius:           100,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, idsOf(res))
}

func TestEngine_Resolve_Scenario2_NoNegativesKeepsCloserMatch(t *testing.T) {
	idx := buildCorpus(t)
	e := New(idx)

	res, err := e.Resolve(SpatialQuery{
		Location:         spatial.Point{Lat: 10, Lon: 10},
		PositiveKeywords: []string{"voice"},
		K:                2,
		LambdaFactor:     0.5,
		Radius:           100,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, idsOf(res))
}

func TestEngine_Resolve_Scenario3_TopKTruncation(t *testing.T) {
	idx := spatial.New(spatial.Rectangle{MinLat: 0, MinLon: 0, MaxLat: 20, MaxLon: 20}, 10)
	for i := int64(0); i < 10; i++ {
		require.True(t, idx.Add(i, spatial.Point{Lat: float64(i), Lon: float64(i)}, []string{"food"}, ""))
	}
	e := New(idx)

	res, err := e.Resolve(SpatialQuery{
		Location:         spatial.Point{Lat: 0, Lon: 0},
		PositiveKeywords: []string{"food"},
		K:                3,
		LambdaFactor:     1.0,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 1, 2}, idsOf(res))
}

func TestEngine_Resolve_Scenario4_RangePrune(t *testing.T) {
	idx := spatial.New(spatial.Rectangle{MinLat: 0, MinLon: 0, MaxLat: 500, MaxLon: 500}, 10)
	require.True(t, idx.Add(1, spatial.Point{Lat: 100, Lon: 100}, []string{"x"}, ""))
	e := New(idx)

	// Default radius (unset → 10) prunes the only object away.
	res, err := e.Resolve(SpatialQuery{
		Location:         spatial.Point{Lat: 0, Lon: 0},
		PositiveKeywords: []string{"x"},
		K:                5,
		LambdaFactor:     0.5,
	})
	require.NoError(t, err)
	assert.Empty(t, res)

	// An explicit radius of 200 reaches it.
	res, err = e.Resolve(SpatialQuery{
		Location:         spatial.Point{Lat: 0, Lon: 0},
		PositiveKeywords: []string{"x"},
		K:                5,
		LambdaFactor:     0.5,
		Radius:           200,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, idsOf(res))
}

func TestEngine_Resolve_FewerThanKReturnsAll(t *testing.T) {
	idx := buildCorpus(t)
	e := New(idx)

	res, err := e.Resolve(SpatialQuery{
		Location:         spatial.Point{Lat: 10, Lon: 10},
		PositiveKeywords: []string{"voice"},
		K:                100,
		LambdaFactor:     0.5,
		Radius:           100,
	})
	require.NoError(t, err)
	assert.Len(t, res, 3)
}

func TestEngine_Resolve_EmptyPositiveYieldsEmpty(t *testing.T) {
	idx := buildCorpus(t)
	e := New(idx)

	res, err := e.Resolve(SpatialQuery{
		Location:     spatial.Point{Lat: 10, Lon: 10},
		K:            2,
		LambdaFactor: 0.5,
	})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestEngine_Resolve_ScoresAreMonotonicNonIncreasing(t *testing.T) {
	idx := spatial.New(spatial.Rectangle{MinLat: 0, MinLon: 0, MaxLat: 100, MaxLon: 100}, 10)
	for i := int64(0); i < 30; i++ {
		require.True(t, idx.Add(i, spatial.Point{Lat: float64(i % 10), Lon: float64((i * 3) % 10)}, []string{"k"}, ""))
	}
	e := New(idx)

	res, err := e.Resolve(SpatialQuery{
		Location:         spatial.Point{Lat: 5, Lon: 5},
		PositiveKeywords: []string{"k"},
		K:                10,
		LambdaFactor:     0.5,
	})
	require.NoError(t, err)
	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].Score, res[i].Score)
	}
}

func TestEngine_Resolve_InvalidQuery(t *testing.T) {
	idx := buildCorpus(t)
	e := New(idx)

	_, err := e.Resolve(SpatialQuery{Location: spatial.Point{}, PositiveKeywords: []string{"voice"}, K: 0, LambdaFactor: 0.5})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = e.Resolve(SpatialQuery{Location: spatial.Point{}, PositiveKeywords: []string{"voice"}, K: 1, LambdaFactor: 1.5})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

// histogramSampleCount returns how many observations o has recorded.
func histogramSampleCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, o.(prometheus.Metric).Write(m))
	return m.GetHistogram().GetSampleCount()
}

func TestEngine_Resolve_RecordsCandidateCountMetric(t *testing.T) {
	idx := buildCorpus(t)
	e := New(idx)
	before := histogramSampleCount(t, metrics.QueryCandidatesTotal.WithLabelValues("single"))

	_, err := e.Resolve(SpatialQuery{
		Location:         spatial.Point{Lat: 10, Lon: 10},
		PositiveKeywords: []string{"voice"},
		K:                2,
		LambdaFactor:     0.5,
		Radius:           100,
	})

	require.NoError(t, err)
	assert.Equal(t, before+1, histogramSampleCount(t, metrics.QueryCandidatesTotal.WithLabelValues("single")))
}
