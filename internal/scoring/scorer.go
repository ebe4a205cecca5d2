// Package scoring implements the pure blended score (component C): a
// convex combination of spatial proximity and positive-keyword overlap.
// It is consumed by both the single-query engine and the batch engine so
// the two can never disagree on how a candidate is ranked.
package scoring

import (
	"math"

	"github.com/vjayram/uask/internal/spatial"
)

// spatialDivisor and the additive 1 below are design constants of the
// source system kept bit-for-bit: they bound spatial_score (potentially
// negative for distant points) without being a real unit conversion.
const spatialDivisor = 100.0

// Score computes λ·spatial_score + (1-λ)·textual_score for object o
// against query location q with positive keyword list positive. Distance
// is plain Euclidean on (lat, lon) — no great-circle correction (spec
// §4.C). textual_score counts multiplicity by positive, not by o's
// keyword set: a keyword present in both positive and o counts once per
// occurrence in positive (duplicates in positive, though callers
// normally de-duplicate it, would count twice — this mirrors the source
// formula literally).
func Score(q spatial.Point, o spatial.GeoObject, positive []string, lambda float64) float64 {
	dLat := q.Lat - o.Location.Lat
	dLon := q.Lon - o.Location.Lon
	dist := math.Sqrt(dLat*dLat + dLon*dLon)
	spatialScore := 1 - dist/spatialDivisor

	var textualScore float64
	for _, w := range positive {
		if o.Keywords.Has(w) {
			textualScore++
		}
	}

	return lambda*spatialScore + (1-lambda)*textualScore
}
