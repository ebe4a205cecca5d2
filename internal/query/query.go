// Package query implements the single-query top-k engine (component D):
// candidate retrieval against the spatial index, predicate filtering,
// and a bounded min-heap that keeps only the k best-scoring candidates.
package query

import (
	"errors"
	"fmt"

	"github.com/vjayram/uask/internal/metrics"
	"github.com/vjayram/uask/internal/spatial"
)

// ErrInvalidQuery is returned when a SpatialQuery violates its own
// contract (k < 1, lambda outside [0,1]) — a query-time error that
// surfaces to the caller, unlike ingest's silent OutOfBounds drop (spec
// §7).
var ErrInvalidQuery = errors.New("query: invalid query")

// SpatialQuery is the request descriptor (spec §3). Radius is the
// get_candidates search radius; zero means "use the index default"
// (spec §4.B: default radius 10), not "search nothing" — a caller
// wanting the literal default simply leaves it unset.
type SpatialQuery struct {
	QueryID          string        `json:"query_id"`
	Location         spatial.Point `json:"location"`
	PositiveKeywords []string      `json:"positive_keywords"`
	NegativeKeywords []string      `json:"negative_keywords"`
	K                int           `json:"k"`
	LambdaFactor     float64       `json:"lambda_factor"`
	Radius           float64       `json:"radius,omitempty"`
}

// EffectiveRadius resolves the get_candidates search radius this query
// will actually use: Radius if set, else the index default. Exported so
// the batch engine can size its shared retrieval rectangle and its
// per-query re-filter using the exact same radius single-query
// resolution would use (spec §8 invariant 4).
func (q SpatialQuery) EffectiveRadius() float64 {
	if q.Radius <= 0 {
		return spatial.DefaultRadius
	}
	return q.Radius
}

// Validate checks the invariants SpatialQuery promises: k >= 1, lambda in
// [0,1]. Malformed locations are not rejected here — NaN/Inf coordinates
// simply never intersect any rectangle and fall out of every range
// query naturally.
func (q SpatialQuery) Validate() error {
	if q.K < 1 {
		return fmt.Errorf("%w: k must be >= 1, got %d", ErrInvalidQuery, q.K)
	}
	if q.LambdaFactor < 0 || q.LambdaFactor > 1 {
		return fmt.Errorf("%w: lambda_factor must be in [0,1], got %f", ErrInvalidQuery, q.LambdaFactor)
	}
	return nil
}

// Result is one ranked hit.
type Result struct {
	ID       int64         `json:"id"`
	Score    float64       `json:"score"`
	Location spatial.Point `json:"location"`
	FullText string        `json:"full_text"`
}

// Engine resolves SpatialQuery values against a built Index.
type Engine struct {
	Index *spatial.Index
}

// New constructs an Engine over idx.
func New(idx *spatial.Index) *Engine {
	return &Engine{Index: idx}
}

// Resolve executes q: fetch candidates via GetCandidates, score each,
// and return the top k in descending score order (spec §4.D). Fewer
// than k candidates returns all of them; an empty positive list yields
// an empty candidate set and thus an empty result, not an error.
func (e *Engine) Resolve(q SpatialQuery) ([]Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	positive := spatial.NewKeywordSet(q.PositiveKeywords)
	negative := spatial.NewKeywordSet(q.NegativeKeywords)
	candidates := e.Index.GetCandidates(q.Location, positive, negative, q.EffectiveRadius())
	metrics.QueryCandidatesTotal.WithLabelValues("single").Observe(float64(len(candidates)))

	return RankTopK(q, e.Index, sortedIDs(candidates)), nil
}

// RankTopK scores every id in candidateIDs against q with the shared
// blended-score function and drains a size-k heap in descending score
// order. It is exported so the batch engine can rank a pre-filtered,
// per-query candidate list with the exact same ranking code path the
// single-query engine uses — the only way to guarantee batch and single
// resolution can never disagree (spec §8 invariant 4).
func RankTopK(q SpatialQuery, idx *spatial.Index, candidateIDs []int64) []Result {
	h := newTopKHeap(q.K)
	for _, id := range candidateIDs {
		obj, ok := idx.Object(id)
		if !ok {
			continue
		}
		h.offer(scoreObject(q, obj))
	}
	return h.drain()
}
