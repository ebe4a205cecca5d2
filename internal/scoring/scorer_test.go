package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vjayram/uask/internal/spatial"
)

func obj(lat, lon float64, keywords ...string) spatial.GeoObject {
	return spatial.GeoObject{
		Location: spatial.Point{Lat: lat, Lon: lon},
		Keywords: spatial.NewKeywordSet(keywords),
	}
}

func TestScore_LambdaOneIsPureSpatial(t *testing.T) {
	q := spatial.Point{Lat: 0, Lon: 0}
	o := obj(30, 40, "food") // distance 50

	got := Score(q, o, []string{"food"}, 1.0)
	assert.InDelta(t, 1-50.0/spatialDivisor, got, 1e-9)
}

func TestScore_LambdaZeroIsPureTextual(t *testing.T) {
	q := spatial.Point{Lat: 0, Lon: 0}
	o := obj(30, 40, "food", "drink")

	got := Score(q, o, []string{"food", "drink", "parking"}, 0.0)
	assert.InDelta(t, 2.0, got, 1e-9)
}

func TestScore_BlendsBothTerms(t *testing.T) {
	q := spatial.Point{Lat: 0, Lon: 0}
	o := obj(0, 0, "food")

	got := Score(q, o, []string{"food"}, 0.5)
	// distance 0 -> spatial_score 1; one keyword match -> textual_score 1.
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestScore_FarDistantObjectYieldsNegativeSpatialTerm(t *testing.T) {
	q := spatial.Point{Lat: 0, Lon: 0}
	o := obj(300, 0, "x")

	got := Score(q, o, []string{"x"}, 1.0)
	assert.Less(t, got, 0.0)
}

func TestScore_NonMatchingKeywordsContributeZero(t *testing.T) {
	q := spatial.Point{Lat: 0, Lon: 0}
	o := obj(0, 0, "food")

	got := Score(q, o, []string{"parking"}, 0.0)
	assert.Equal(t, 0.0, got)
}

func TestScore_DuplicatePositiveKeywordsCountMultiply(t *testing.T) {
	q := spatial.Point{Lat: 0, Lon: 0}
	o := obj(0, 0, "food")

	got := Score(q, o, []string{"food", "food"}, 0.0)
	assert.Equal(t, 2.0, got)
}
