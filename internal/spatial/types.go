// Package spatial implements the region-quadtree spatial-textual index:
// the quadtree node (component A) and the index that owns it together
// with the authoritative object table (component B).
package spatial

import "time"

// Point is a geographic coordinate in (lat, lon) order, matching the
// rest of the data model — no altitude, no projection.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Rectangle is an axis-aligned, closed-on-all-sides region. MinLat/MinLon
// must be <= MaxLat/MaxLon respectively; callers that build one by hand
// are responsible for the invariant, the zero value is degenerate.
type Rectangle struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// Contains reports whether p lies within r, inclusive on every edge.
func (r Rectangle) Contains(p Point) bool {
	return p.Lat >= r.MinLat && p.Lat <= r.MaxLat &&
		p.Lon >= r.MinLon && p.Lon <= r.MaxLon
}

// Intersects reports whether r and other share any point.
func (r Rectangle) Intersects(other Rectangle) bool {
	return !(r.MaxLat < other.MinLat || r.MinLat > other.MaxLat ||
		r.MaxLon < other.MinLon || r.MinLon > other.MaxLon)
}

// Width returns the longitude extent of r.
func (r Rectangle) Width() float64 { return r.MaxLon - r.MinLon }

// Height returns the latitude extent of r.
func (r Rectangle) Height() float64 { return r.MaxLat - r.MinLat }

// ShorterSide returns the smaller of Width/Height, used against the
// geometric subdivision floor.
func (r Rectangle) ShorterSide() float64 {
	w, h := r.Width(), r.Height()
	if w < h {
		return w
	}
	return h
}

// Midpoint returns the center of r.
func (r Rectangle) Midpoint() (midLat, midLon float64) {
	return (r.MinLat + r.MaxLat) / 2, (r.MinLon + r.MaxLon) / 2
}

// Square returns the axis-aligned square [center ± radius] on every
// side — this is the shape get_candidates actually searches, not a
// circle (spec open question, preserved per the design note).
func Square(center Point, radius float64) Rectangle {
	return Rectangle{
		MinLat: center.Lat - radius,
		MinLon: center.Lon - radius,
		MaxLat: center.Lat + radius,
		MaxLon: center.Lon + radius,
	}
}

// KeywordSet is a plain set of keyword strings; membership is the only
// relation ever tested against it.
type KeywordSet map[string]struct{}

// NewKeywordSet collapses a slice of keywords into a set, discarding
// duplicates.
func NewKeywordSet(words []string) KeywordSet {
	ks := make(KeywordSet, len(words))
	for _, w := range words {
		ks[w] = struct{}{}
	}
	return ks
}

// Has reports whether w is a member.
func (ks KeywordSet) Has(w string) bool {
	_, ok := ks[w]
	return ok
}

// IntersectsAny reports whether ks shares any member with other.
func (ks KeywordSet) IntersectsAny(other KeywordSet) bool {
	small, big := ks, other
	if len(big) < len(small) {
		small, big = big, small
	}
	for w := range small {
		if _, ok := big[w]; ok {
			return true
		}
	}
	return false
}

// Slice returns the set's members as a slice, in map iteration order.
func (ks KeywordSet) Slice() []string {
	out := make([]string, 0, len(ks))
	for w := range ks {
		out = append(out, w)
	}
	return out
}

// GeoObject is the atomic indexed record.
type GeoObject struct {
	ID       int64      `json:"id"`
	Location Point      `json:"location"`
	Keywords KeywordSet `json:"keywords"`
	FullText string     `json:"full_text"`
}

// Record is the pre-assignment form of a GeoObject used by loaders —
// identical fields, kept distinct so ingestion code never has to
// construct a GeoObject by hand before validating it.
type Record struct {
	ID       int64
	Location Point
	Keywords []string
	FullText string
}

// Metadata describes an index snapshot.
type Metadata struct {
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
	Bounds            Rectangle `json:"bounds"`
	TotalObjects      int       `json:"total_objects"`
	MaxLeafOverflow   int       `json:"max_leaf_overflow"`
	OutOfBoundsDrops  int       `json:"out_of_bounds_drops"`
}
