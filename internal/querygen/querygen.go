// Package querygen implements the synthetic query generator
// (component G): randomized SpatialQuery workloads for exercising the
// single-query and batch engines under the benchmark harness.
package querygen

import (
	"fmt"
	"math/rand"

	"github.com/vjayram/uask/internal/query"
	"github.com/vjayram/uask/internal/spatial"
)

// defaultKeywords mirrors the vocabulary the original benchmark drew
// from (original_source/benchmark/query_gen.py) — a fixed pool of
// plausible point-of-interest terms, sampled without replacement per
// query.
var defaultKeywords = []string{
	"restaurant", "food", "voice", "closed", "back", "open", "park", "hotel",
	"shop", "store", "market", "school", "hospital", "bank", "cafe", "bar",
	"club", "gym", "library", "theater", "cinema", "museum", "parking",
	"zoo", "garden", "pool", "beach", "lake", "river", "mountain", "forest",
	"road", "bridge", "building", "house", "apartment", "office", "factory",
}

// Generator produces randomized SpatialQuery workloads over a bounded
// coordinate range.
type Generator struct {
	Rand     *rand.Rand
	Keywords []string
	LatRange [2]float64
	LonRange [2]float64
}

// New constructs a Generator seeded from seed, using the default
// keyword pool and a [-90,90]x[-180,180] coordinate range.
func New(seed int64) *Generator {
	return &Generator{
		Rand:     rand.New(rand.NewSource(seed)),
		Keywords: defaultKeywords,
		LatRange: [2]float64{-90, 90},
		LonRange: [2]float64{-180, 180},
	}
}

// Generate produces n queries, each with nPos distinct positive
// keywords and nNeg distinct negative keywords drawn from the
// generator's pool, a fixed k and lambda. nPos+nNeg must not exceed
// len(Keywords).
func (g *Generator) Generate(n, nPos, nNeg, k int, lambda float64) ([]query.SpatialQuery, error) {
	if nPos+nNeg > len(g.Keywords) {
		return nil, fmt.Errorf("querygen: nPos+nNeg (%d) exceeds keyword pool size (%d)", nPos+nNeg, len(g.Keywords))
	}

	queries := make([]query.SpatialQuery, 0, n)
	for i := 0; i < n; i++ {
		sample := g.sampleDistinct(nPos + nNeg)
		queries = append(queries, query.SpatialQuery{
			QueryID: fmt.Sprintf("gen-%d", i),
			Location: spatial.Point{
				Lat: g.uniform(g.LatRange),
				Lon: g.uniform(g.LonRange),
			},
			PositiveKeywords: sample[:nPos],
			NegativeKeywords: sample[nPos : nPos+nNeg],
			K:                k,
			LambdaFactor:     lambda,
		})
	}
	return queries, nil
}

func (g *Generator) uniform(r [2]float64) float64 {
	return r[0] + g.Rand.Float64()*(r[1]-r[0])
}

// sampleDistinct returns n distinct keywords from the pool via a
// Fisher-Yates partial shuffle, so positive and negative keyword sets
// for one query never overlap.
func (g *Generator) sampleDistinct(n int) []string {
	pool := make([]string, len(g.Keywords))
	copy(pool, g.Keywords)
	g.Rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:n]
}
