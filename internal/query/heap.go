package query

import (
	"container/heap"
	"sort"

	"github.com/vjayram/uask/internal/scoring"
	"github.com/vjayram/uask/internal/spatial"
)

// sortedIDs returns the keys of candidates in ascending order, so
// top-k resolution never depends on Go's randomized map iteration order
// (spec §8 invariant 3/4: deterministic given deterministic ingest).
func sortedIDs(candidates map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// scoreObject scores obj against q using the shared blended-score
// function (component C), so single-query and batch resolution can never
// disagree on a candidate's rank (spec §8 invariant 4).
func scoreObject(q SpatialQuery, obj spatial.GeoObject) Result {
	return Result{
		ID:       obj.ID,
		Score:    scoring.Score(q.Location, obj, q.PositiveKeywords, q.LambdaFactor),
		Location: obj.Location,
		FullText: obj.FullText,
	}
}

// resultHeap is a container/heap min-heap over Result.Score, with ties
// broken by ascending id so output is deterministic given a deterministic
// ingest order (spec §4.D edge cases, §8 invariant 3).
type resultHeap []Result

func (h resultHeap) Len() int { return len(h) }
func (h resultHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].ID > h[j].ID // higher id sorts as "smaller" so it evicts first on ties
}
func (h resultHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) { *h = append(*h, x.(Result)) }
func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// topKHeap maintains at most k results, keeping the k highest-scoring
// ones seen so far (spec §4.D: replace the minimum only if the new score
// is strictly greater).
type topKHeap struct {
	k int
	h resultHeap
}

func newTopKHeap(k int) *topKHeap {
	return &topKHeap{k: k, h: make(resultHeap, 0, k)}
}

func (t *topKHeap) offer(r Result) {
	if t.k <= 0 {
		return
	}
	if t.h.Len() < t.k {
		heap.Push(&t.h, r)
		return
	}
	if r.Score > t.h[0].Score {
		heap.Pop(&t.h)
		heap.Push(&t.h, r)
	}
}

// drain empties the heap into a slice ordered by descending score (ties
// by ascending id), without mutating the heap's ordering guarantees
// along the way.
func (t *topKHeap) drain() []Result {
	out := make([]Result, len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
