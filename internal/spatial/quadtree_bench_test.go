package spatial

import "testing"

// BenchmarkQuadNode_Insert measures raw insert throughput at the
// production-recommended capacity (spec §4.A).
func BenchmarkQuadNode_Insert(b *testing.B) {
	bounds := Rectangle{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}
	n := NewQuadNode(bounds, DefaultCapacity)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lat := float64(i%18000)/100 - 90
		lon := float64(i%36000)/100 - 180
		n.insert(int64(i), Point{Lat: lat, Lon: lon})
	}
}

// BenchmarkQuadNode_QueryRange measures range-query cost over a fixed
// 10,000-object tree.
func BenchmarkQuadNode_QueryRange(b *testing.B) {
	bounds := Rectangle{MinLat: -90, MinLon: -180, MaxLat: 90, MaxLon: 180}
	n := NewQuadNode(bounds, DefaultCapacity)
	for i := 0; i < 10000; i++ {
		lat := float64(i%18000)/100 - 90
		lon := float64(i%36000)/100 - 180
		n.insert(int64(i), Point{Lat: lat, Lon: lon})
	}
	query := Rectangle{MinLat: -10, MinLon: -10, MaxLat: 10, MaxLon: 10}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n.queryRange(query, nil)
	}
}
