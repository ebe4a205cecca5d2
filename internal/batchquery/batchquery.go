// Package batchquery implements the batched query engine (component E):
// it groups a query workload by spatial proximity and then by
// keyword-set similarity, fetches one shared candidate pool per group,
// and resolves every member query against that pool reusing the
// single-query engine's scoring and top-k code.
package batchquery

import (
	"math"
	"sort"

	"github.com/vjayram/uask/internal/metrics"
	"github.com/vjayram/uask/internal/query"
	"github.com/vjayram/uask/internal/spatial"
)

const (
	// DefaultLocationThreshold is T_loc: queries within this distance
	// are candidates for the same spatial cluster.
	DefaultLocationThreshold = 10.0

	// DefaultKeywordThreshold is T_kw: the minimum Jaccard similarity of
	// positive-keyword sets for two queries to share a keyword cluster.
	DefaultKeywordThreshold = 0.5

	// smallBatchCutover is the largest workload size for which the
	// cheaper greedy single-linkage pass is used instead of
	// agglomerative clustering.
	smallBatchCutover = 25
)

// Engine resolves a workload of queries against a built Index, batching
// shared work across queries that are close in space and keyword
// content.
type Engine struct {
	Index             *spatial.Index
	LocationThreshold float64
	KeywordThreshold  float64
}

// New constructs an Engine with the default thresholds (spec §4.E).
func New(idx *spatial.Index) *Engine {
	return &Engine{
		Index:             idx,
		LocationThreshold: DefaultLocationThreshold,
		KeywordThreshold:  DefaultKeywordThreshold,
	}
}

// ProcessBatch resolves every query in queries and returns a mapping
// from QueryID to its ranked results. maxClusterSize, when > 0, caps
// the size of any spatial cluster, splitting oversize ones into
// contiguous chunks in enumeration order (spec §4.E).
func (e *Engine) ProcessBatch(queries []query.SpatialQuery, maxClusterSize int) map[string][]query.Result {
	results := make(map[string][]query.Result, len(queries))
	if len(queries) == 0 {
		return results
	}

	singleEngine := query.New(e.Index)

	for _, group := range e.groupQueries(queries, maxClusterSize) {
		if len(group) == 1 {
			q := queries[group[0]]
			res, err := singleEngine.Resolve(q)
			if err != nil {
				results[q.QueryID] = nil
				continue
			}
			results[q.QueryID] = res
			continue
		}
		e.resolveGroup(queries, group, results)
	}

	return results
}

// groupQueries runs the two-stage grouping: spatial clustering, then
// keyword-similarity clustering within each spatial cluster. Each
// returned group is a list of indices into queries.
func (e *Engine) groupQueries(queries []query.SpatialQuery, maxClusterSize int) [][]int {
	if len(queries) <= 1 {
		return [][]int{indicesOf(queries)}
	}

	spatialClusters := e.clusterByLocation(queries, maxClusterSize)

	var final [][]int
	for _, sc := range spatialClusters {
		if len(sc) <= 1 {
			final = append(final, sc)
			continue
		}
		final = append(final, e.clusterByKeywords(queries, sc)...)
	}
	return final
}

func indicesOf(queries []query.SpatialQuery) []int {
	idx := make([]int, len(queries))
	for i := range queries {
		idx[i] = i
	}
	return idx
}

// clusterByLocation implements stage 1 (spec §4.E): greedy single
// linkage for small workloads, complete-linkage agglomerative
// clustering cut at LocationThreshold for larger ones.
func (e *Engine) clusterByLocation(queries []query.SpatialQuery, maxClusterSize int) [][]int {
	var clusters [][]int
	if len(queries) <= smallBatchCutover {
		clusters = e.greedyLocationClusters(queries)
	} else {
		clusters = e.agglomerativeLocationClusters(queries)
	}

	if maxClusterSize <= 0 {
		return clusters
	}
	return splitOversize(clusters, maxClusterSize)
}

// greedyLocationClusters walks queries in order, joining each to the
// first existing cluster whose representative (its first member) is
// within the threshold, else opening a new cluster.
func (e *Engine) greedyLocationClusters(queries []query.SpatialQuery) [][]int {
	var clusters [][]int
	for i, q := range queries {
		assigned := false
		for ci, cluster := range clusters {
			rep := queries[cluster[0]]
			if euclidean(q.Location, rep.Location) <= e.LocationThreshold {
				clusters[ci] = append(cluster, i)
				assigned = true
				break
			}
		}
		if !assigned {
			clusters = append(clusters, []int{i})
		}
	}
	return clusters
}

// agglomerativeLocationClusters merges clusters whose complete-linkage
// distance (the maximum pairwise distance between their members) is
// smallest, stopping once the smallest available merge distance
// exceeds the threshold. Every query starts in its own singleton
// cluster.
func (e *Engine) agglomerativeLocationClusters(queries []query.SpatialQuery) [][]int {
	clusters := make([][]int, len(queries))
	for i := range queries {
		clusters[i] = []int{i}
	}

	for {
		bestI, bestJ, bestDist := -1, -1, -1.0
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				d := completeLinkageDistance(queries, clusters[i], clusters[j])
				if bestI == -1 || d < bestDist {
					bestI, bestJ, bestDist = i, j, d
				}
			}
		}
		if bestI == -1 || bestDist > e.LocationThreshold {
			break
		}
		merged := append(append([]int{}, clusters[bestI]...), clusters[bestJ]...)
		next := make([][]int, 0, len(clusters)-1)
		for k, c := range clusters {
			if k != bestI && k != bestJ {
				next = append(next, c)
			}
		}
		clusters = append(next, merged)
	}
	return clusters
}

func completeLinkageDistance(queries []query.SpatialQuery, a, b []int) float64 {
	max := -1.0
	for _, i := range a {
		for _, j := range b {
			d := euclidean(queries[i].Location, queries[j].Location)
			if d > max {
				max = d
			}
		}
	}
	return max
}

func splitOversize(clusters [][]int, maxSize int) [][]int {
	var out [][]int
	for _, c := range clusters {
		for i := 0; i < len(c); i += maxSize {
			end := i + maxSize
			if end > len(c) {
				end = len(c)
			}
			out = append(out, c[i:end])
		}
	}
	return out
}

// clusterByKeywords implements stage 2 (spec §4.E): a graph over the
// spatial cluster's queries with edges where positive-keyword Jaccard
// similarity meets KeywordThreshold, emitted as its connected
// components. indices are into the outer queries slice; the returned
// groups use the same index space.
func (e *Engine) clusterByKeywords(queries []query.SpatialQuery, indices []int) [][]int {
	n := len(indices)
	adj := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a := spatial.NewKeywordSet(queries[indices[i]].PositiveKeywords)
			b := spatial.NewKeywordSet(queries[indices[j]].PositiveKeywords)
			if jaccard(a, b) >= e.KeywordThreshold {
				adj[i] = append(adj[i], j)
				adj[j] = append(adj[j], i)
			}
		}
	}

	visited := make([]bool, n)
	var groups [][]int
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		queue := []int{i}
		visited[i] = true
		var component []int
		for len(queue) > 0 {
			node := queue[0]
			queue = queue[1:]
			component = append(component, indices[node])
			for _, nb := range adj[node] {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		groups = append(groups, component)
	}
	return groups
}

// jaccard returns the Jaccard similarity of two keyword sets; two
// empty sets are defined as identical (similarity 1), per spec §4.E.
func jaccard(a, b spatial.KeywordSet) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	inter := 0
	for w := range a {
		if b.Has(w) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0.0
	}
	return float64(inter) / float64(union)
}

func euclidean(a, b spatial.Point) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// resolveGroup performs the unified-retrieval-then-per-query-filter
// pass (spec §4.E) for a group with more than one member.
func (e *Engine) resolveGroup(queries []query.SpatialQuery, group []int, results map[string][]query.Result) {
	rect, positiveSuperset, commonNegative := e.unifiedParameters(queries, group)

	poolIDs := e.Index.QueryRange(rect)
	sort.Slice(poolIDs, func(i, j int) bool { return poolIDs[i] < poolIDs[j] })

	pool := make(map[int64]spatial.GeoObject, len(poolIDs))
	for _, id := range poolIDs {
		obj, ok := e.Index.Object(id)
		if !ok {
			continue
		}
		if positiveSuperset.IntersectsAny(obj.Keywords) && !commonNegative.IntersectsAny(obj.Keywords) {
			pool[id] = obj
		}
	}

	pooledIDs := make([]int64, 0, len(pool))
	for id := range pool {
		pooledIDs = append(pooledIDs, id)
	}
	sort.Slice(pooledIDs, func(i, j int) bool { return pooledIDs[i] < pooledIDs[j] })

	for _, gi := range group {
		q := queries[gi]
		if err := q.Validate(); err != nil {
			results[q.QueryID] = nil
			continue
		}
		positive := spatial.NewKeywordSet(q.PositiveKeywords)
		negative := spatial.NewKeywordSet(q.NegativeKeywords)
		own := spatial.Square(q.Location, q.EffectiveRadius())

		var candidateIDs []int64
		for _, id := range pooledIDs {
			obj := pool[id]
			// The shared pool was fetched over the group's expanded
			// rectangle; re-apply this query's own search square so a
			// member with a small radius never sees a candidate that
			// only another member's wider radius pulled in (spec §8
			// invariant 4: batch must agree with single resolution).
			if !own.Contains(obj.Location) {
				continue
			}
			if negative.IntersectsAny(obj.Keywords) {
				continue
			}
			if !positive.IntersectsAny(obj.Keywords) {
				continue
			}
			candidateIDs = append(candidateIDs, id)
		}
		metrics.QueryCandidatesTotal.WithLabelValues("batch").Observe(float64(len(candidateIDs)))

		results[q.QueryID] = query.RankTopK(q, e.Index, candidateIDs)
	}
}

// unifiedParameters derives the shared search rectangle, positive
// keyword union, and common negative keyword intersection for a group
// (spec §4.E "Unified retrieval per group").
func (e *Engine) unifiedParameters(queries []query.SpatialQuery, group []int) (spatial.Rectangle, spatial.KeywordSet, spatial.KeywordSet) {
	first := queries[group[0]]
	minLat, minLon := first.Location.Lat, first.Location.Lon
	maxLat, maxLon := first.Location.Lat, first.Location.Lon
	maxRadius := first.EffectiveRadius()

	positiveSuperset := spatial.NewKeywordSet(nil)
	commonNegative := spatial.NewKeywordSet(first.NegativeKeywords)

	for i, gi := range group {
		q := queries[gi]
		if q.Location.Lat < minLat {
			minLat = q.Location.Lat
		}
		if q.Location.Lat > maxLat {
			maxLat = q.Location.Lat
		}
		if q.Location.Lon < minLon {
			minLon = q.Location.Lon
		}
		if q.Location.Lon > maxLon {
			maxLon = q.Location.Lon
		}
		if r := q.EffectiveRadius(); r > maxRadius {
			maxRadius = r
		}
		for w := range spatial.NewKeywordSet(q.PositiveKeywords) {
			positiveSuperset[w] = struct{}{}
		}
		if i == 0 {
			continue
		}
		intersectInPlace(commonNegative, spatial.NewKeywordSet(q.NegativeKeywords))
	}

	rect := spatial.Rectangle{
		MinLat: minLat - maxRadius,
		MinLon: minLon - maxRadius,
		MaxLat: maxLat + maxRadius,
		MaxLon: maxLon + maxRadius,
	}
	return rect, positiveSuperset, commonNegative
}

// intersectInPlace removes from a every member not also present in b.
func intersectInPlace(a, b spatial.KeywordSet) {
	for w := range a {
		if !b.Has(w) {
			delete(a, w)
		}
	}
}
