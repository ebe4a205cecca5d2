package querygen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_ProducesRequestedCount(t *testing.T) {
	g := New(42)
	qs, err := g.Generate(10, 2, 1, 5, 0.5)
	require.NoError(t, err)
	assert.Len(t, qs, 10)
}

func TestGenerate_KeywordCountsMatchRequest(t *testing.T) {
	g := New(1)
	qs, err := g.Generate(5, 3, 2, 10, 0.3)
	require.NoError(t, err)
	for _, q := range qs {
		assert.Len(t, q.PositiveKeywords, 3)
		assert.Len(t, q.NegativeKeywords, 2)
	}
}

func TestGenerate_PositiveAndNegativeNeverOverlap(t *testing.T) {
	g := New(7)
	qs, err := g.Generate(20, 4, 4, 5, 0.5)
	require.NoError(t, err)
	for _, q := range qs {
		neg := make(map[string]bool, len(q.NegativeKeywords))
		for _, kw := range q.NegativeKeywords {
			neg[kw] = true
		}
		for _, kw := range q.PositiveKeywords {
			assert.False(t, neg[kw], "keyword %q appeared in both positive and negative sets", kw)
		}
	}
}

func TestGenerate_LocationsWithinConfiguredRange(t *testing.T) {
	g := New(3)
	g.LatRange = [2]float64{0, 10}
	g.LonRange = [2]float64{0, 10}
	qs, err := g.Generate(50, 1, 1, 1, 0.5)
	require.NoError(t, err)
	for _, q := range qs {
		assert.GreaterOrEqual(t, q.Location.Lat, 0.0)
		assert.LessOrEqual(t, q.Location.Lat, 10.0)
		assert.GreaterOrEqual(t, q.Location.Lon, 0.0)
		assert.LessOrEqual(t, q.Location.Lon, 10.0)
	}
}

func TestGenerate_RejectsOversizedKeywordRequest(t *testing.T) {
	g := New(9)
	g.Keywords = []string{"a", "b", "c"}
	_, err := g.Generate(1, 2, 2, 1, 0.5)
	assert.Error(t, err)
}

func TestGenerate_DeterministicGivenSameSeed(t *testing.T) {
	a, _ := New(99).Generate(5, 2, 1, 3, 0.4)
	b, _ := New(99).Generate(5, 2, 1, 3, 0.4)
	assert.Equal(t, a, b)
}
