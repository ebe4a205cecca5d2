package spatial

import (
	"sort"
	"sync"
	"time"

	"github.com/mmcloughlin/geohash"

	"github.com/vjayram/uask/internal/metrics"
	"github.com/vjayram/uask/pkg/utils"
)

// batchGeohashPrecision controls the locality bucket size used by
// AddBatch. Five characters is roughly a 5km x 5km cell — fine enough
// to group nearby records, coarse enough that a modest corpus doesn't
// explode into one bucket per record.
const batchGeohashPrecision = 5

// Index is the spatial-textual index: a quadtree root, the universe
// bounds it was built with, and the authoritative id -> GeoObject table.
// Every query resolves candidates through the quadtree and then reads
// their payload out of objects.
type Index struct {
	mu       sync.RWMutex
	root     *QuadNode
	bounds   Rectangle
	capacity int
	objects  map[int64]GeoObject
	meta     Metadata
	logger   *utils.Logger
}

// New builds an empty index over bounds with the given per-leaf
// capacity (spec §4.B `new`). Drop events are logged via
// pkg/utils's default logger until SetLogger attaches a
// request-scoped one.
func New(bounds Rectangle, capacity int) *Index {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	now := time.Now()
	return &Index{
		root:     NewQuadNode(bounds, capacity),
		bounds:   bounds,
		capacity: capacity,
		objects:  make(map[int64]GeoObject),
		meta: Metadata{
			CreatedAt: now,
			UpdatedAt: now,
			Bounds:    bounds,
		},
		logger: utils.Default(),
	}
}

// SetLogger replaces the logger used for drop-path warnings.
func (idx *Index) SetLogger(logger *utils.Logger) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.logger = logger
}

// Bounds returns the index's universe rectangle.
func (idx *Index) Bounds() Rectangle { return idx.bounds }

// Capacity returns the per-leaf capacity the index was built with.
func (idx *Index) Capacity() int { return idx.capacity }

// Len returns the number of objects currently indexed.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.objects)
}

// Metadata returns a snapshot of the index's bookkeeping fields.
func (idx *Index) Metadata() Metadata {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	m := idx.meta
	m.TotalObjects = len(idx.objects)
	return m
}

// Object resolves a candidate id to its authoritative record.
func (idx *Index) Object(id int64) (GeoObject, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	obj, ok := idx.objects[id]
	return obj, ok
}

// Add inserts one object into the quadtree and registers it in the
// objects table. It returns false — and drops the object, logging a
// warning through the index's logger and counting it in
// metrics.IndexInsertErrors — when location lies outside the index's
// bounds (spec §4.B, §7 OutOfBounds). Re-adding an existing id overwrites it
// deterministically: the object is first removed from its old leaf slot
// by location, then reinserted at the new one.
func (idx *Index) Add(id int64, location Point, keywords []string, fullText string) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.addLocked(id, location, keywords, fullText)
}

func (idx *Index) addLocked(id int64, location Point, keywords []string, fullText string) bool {
	if !idx.bounds.Contains(location) {
		idx.meta.OutOfBoundsDrops++
		metrics.IndexInsertErrors.Inc()
		idx.logger.WithField("id", id).WithField("lat", location.Lat).WithField("lon", location.Lon).
			Warnf("OutOfBounds: dropping object %d outside index bounds", id)
		return false
	}

	if old, exists := idx.objects[id]; exists {
		idx.root.remove(id, old.Location)
	}

	placed, overflowed := idx.root.insert(id, location)
	if !placed {
		// Bounds check above already guarantees this can't happen; kept
		// as a defensive fallback against float edge cases.
		idx.meta.OutOfBoundsDrops++
		metrics.IndexInsertErrors.Inc()
		idx.logger.WithField("id", id).Warnf("OutOfBounds: dropping object %d, quadtree insert rejected it", id)
		return false
	}
	if overflowed {
		idx.meta.MaxLeafOverflow++
		metrics.IndexLeafOverflowTotal.Set(float64(idx.meta.MaxLeafOverflow))
	}

	idx.objects[id] = GeoObject{
		ID:       id,
		Location: location,
		Keywords: NewKeywordSet(keywords),
		FullText: fullText,
	}
	idx.meta.UpdatedAt = time.Now()
	return true
}

// AddBatch ingests many records at once. It sorts by (lat, lon) and then
// flushes in geohash-keyed buckets so nearby records are inserted
// together, giving the resulting tree better locality than input order
// would; for records with distinct ids the observable query result is
// identical to inserting them one at a time via Add in any order (spec
// §4.B). When ids repeat, the copy inserted last in that bucketed
// order wins. It returns the number of records actually placed.
func (idx *Index) AddBatch(records []Record) int {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Location.Lat != sorted[j].Location.Lat {
			return sorted[i].Location.Lat < sorted[j].Location.Lat
		}
		return sorted[i].Location.Lon < sorted[j].Location.Lon
	})

	buckets := make(map[string][]Record)
	var keys []string
	for _, r := range sorted {
		key := geohash.EncodeWithPrecision(r.Location.Lat, r.Location.Lon, batchGeohashPrecision)
		if _, ok := buckets[key]; !ok {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], r)
	}
	sort.Strings(keys)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	placed := 0
	for _, key := range keys {
		for _, r := range buckets[key] {
			if idx.addLocked(r.ID, r.Location, r.Keywords, r.FullText) {
				placed++
			}
		}
	}
	return placed
}

// GetCandidates retrieves the axis-aligned square [location ± radius],
// keeps ids whose keyword set intersects positive, then discards any id
// whose keyword set also intersects negative (spec §4.B). radius <= 0
// falls back to DefaultRadius.
func (idx *Index) GetCandidates(location Point, positive, negative KeywordSet, radius float64) map[int64]struct{} {
	if radius <= 0 {
		radius = DefaultRadius
	}

	idx.mu.RLock()
	result := make(map[int64]struct{})
	if len(positive) > 0 {
		ids := idx.root.queryRange(Square(location, radius), nil)
		for _, id := range ids {
			obj, ok := idx.objects[id]
			if !ok || !obj.Keywords.IntersectsAny(positive) {
				continue
			}
			if len(negative) > 0 && obj.Keywords.IntersectsAny(negative) {
				continue
			}
			result[id] = struct{}{}
		}
	}
	idx.mu.RUnlock()
	return result
}

// QueryRange returns every id whose location lies in rect — component
// A's primitive, re-exported on Index for callers (e.g. the batch
// engine) that need the raw rectangle search without the keyword
// predicate GetCandidates applies.
func (idx *Index) QueryRange(rect Rectangle) []int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.root.queryRange(rect, nil)
}
