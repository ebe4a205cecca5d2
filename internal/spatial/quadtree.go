package spatial

const (
	// DefaultCapacity is the recommended production leaf fill target
	// (spec §4.A, §6).
	DefaultCapacity = 1000

	// GeometricFloor is the minimum bounds shorter-side below which
	// subdivision is skipped and a leaf is allowed to overflow instead
	// (spec §4.A, §6). Units are lat/lon degrees.
	GeometricFloor = 1e-4

	// DefaultRadius is the default get_candidates search radius in
	// lat/lon units (spec §4.B, §6).
	DefaultRadius = 10.0
)

// leafEntry is the minimal per-object tuple kept inside a leaf: the id
// for authoritative lookup and the location needed to route it during
// insert/split/remove and to test it against a range query without a
// map lookup per candidate. Keywords and full text are *not* duplicated
// here — they live only in Index.objects, trading a cache miss on the
// cold path for half the per-leaf memory (spec §9 design note).
type leafEntry struct {
	ID  int64
	Loc Point
}

// QuadNode is a region of the plane: either a leaf holding up to
// capacity entries, or an internal node with exactly four children in
// SW, SE, NW, NE order. A node never reverts from internal back to
// leaf — there is no merge.
type QuadNode struct {
	bounds   Rectangle
	capacity int

	entries  []leafEntry // populated only while this node is a leaf
	children [4]*QuadNode // nil while this node is a leaf
}

// NewQuadNode constructs a leaf node covering bounds.
func NewQuadNode(bounds Rectangle, capacity int) *QuadNode {
	return &QuadNode{bounds: bounds, capacity: capacity}
}

// Bounds returns the node's region.
func (n *QuadNode) Bounds() Rectangle { return n.bounds }

func (n *QuadNode) isLeaf() bool { return n.children[0] == nil }

// insert places (id, loc) somewhere in this subtree. It reports whether
// the point was placed (false only if loc lies outside n.bounds) and
// whether placing it caused a leaf to overflow past capacity because the
// geometric floor blocked subdivision.
func (n *QuadNode) insert(id int64, loc Point) (placed, overflowed bool) {
	if !n.bounds.Contains(loc) {
		return false, false
	}

	if !n.isLeaf() {
		for _, c := range n.children {
			if placed, overflowed = c.insert(id, loc); placed {
				return true, overflowed
			}
		}
		// Every point accepted by n.bounds is accepted by at least one
		// child, since the four closed children's bounds together cover
		// n.bounds (a point on a shared edge is accepted by each child
		// touching it; the loop above takes the first). Reaching here
		// means a boundary edge case slipped through float comparison.
		// Fall back to the first child.
		return n.children[0].insert(id, loc)
	}

	if len(n.entries) < n.capacity {
		n.entries = append(n.entries, leafEntry{ID: id, Loc: loc})
		return true, false
	}

	if n.bounds.ShorterSide() < GeometricFloor {
		// Subdivision would produce degenerate children; let the leaf
		// overflow rather than recurse forever on coincident points.
		n.entries = append(n.entries, leafEntry{ID: id, Loc: loc})
		return true, true
	}

	n.split()
	return n.insert(id, loc)
}

// split turns a leaf into an internal node, redistributing its entries
// into four new children in SW, SE, NW, NE order.
func (n *QuadNode) split() {
	midLat, midLon := n.bounds.Midpoint()

	sw := Rectangle{MinLat: n.bounds.MinLat, MinLon: n.bounds.MinLon, MaxLat: midLat, MaxLon: midLon}
	se := Rectangle{MinLat: midLat, MinLon: n.bounds.MinLon, MaxLat: n.bounds.MaxLat, MaxLon: midLon}
	nw := Rectangle{MinLat: n.bounds.MinLat, MinLon: midLon, MaxLat: midLat, MaxLon: n.bounds.MaxLon}
	ne := Rectangle{MinLat: midLat, MinLon: midLon, MaxLat: n.bounds.MaxLat, MaxLon: n.bounds.MaxLon}

	n.children = [4]*QuadNode{
		NewQuadNode(sw, n.capacity),
		NewQuadNode(se, n.capacity),
		NewQuadNode(nw, n.capacity),
		NewQuadNode(ne, n.capacity),
	}

	old := n.entries
	n.entries = nil
	for _, e := range old {
		for _, c := range n.children {
			if placed, _ := c.insert(e.ID, e.Loc); placed {
				break
			}
		}
	}
}

// remove deletes the (id, loc) entry, routing by the same first-accepting
// -child rule insert used, so it finds whichever leaf insert actually
// placed the entry in.
func (n *QuadNode) remove(id int64, loc Point) bool {
	if !n.bounds.Contains(loc) {
		return false
	}

	if !n.isLeaf() {
		for _, c := range n.children {
			if c.remove(id, loc) {
				return true
			}
		}
		return false
	}

	for i, e := range n.entries {
		if e.ID == id {
			n.entries = append(n.entries[:i], n.entries[i+1:]...)
			return true
		}
	}
	return false
}

// queryRange appends the id of every stored descendant whose location
// lies in rect. Traversal uses an explicit work stack instead of
// recursion so deep trees (many coincident points forced past the
// geometric floor) cannot blow the host stack (spec §4.A, §9).
func (n *QuadNode) queryRange(rect Rectangle, out []int64) []int64 {
	stack := make([]*QuadNode, 0, 32)
	stack = append(stack, n)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !cur.bounds.Intersects(rect) {
			continue
		}

		if cur.isLeaf() {
			for _, e := range cur.entries {
				if rect.Contains(e.Loc) {
					out = append(out, e.ID)
				}
			}
			continue
		}

		for _, c := range cur.children {
			stack = append(stack, c)
		}
	}

	return out
}

// countEntries returns the number of (id, loc) tuples stored anywhere in
// this subtree, walking iteratively for the same stack-exhaustion reason
// as queryRange.
func (n *QuadNode) countEntries() int {
	stack := []*QuadNode{n}
	total := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.isLeaf() {
			total += len(cur.entries)
			continue
		}
		for _, c := range cur.children {
			stack = append(stack, c)
		}
	}
	return total
}
