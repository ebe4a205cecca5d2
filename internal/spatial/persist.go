package spatial

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vjayram/uask/pkg/utils"
)

const (
	metadataFile = "metadata.json"
	objectsFile  = "objects.gob"
	treeFile     = "spatial_index.gob"
)

// persistedObject is the on-disk shape of a GeoObject: KeywordSet is a
// map and gob round-trips maps fine, but we flatten it to a slice so the
// dump doesn't depend on map key ordering being stable across versions.
type persistedObject struct {
	Location Point
	Keywords []string
	FullText string
}

// persistedNode is the on-disk shape of a QuadNode: a recursive variant
// tag plus either a leaf's entries or four children.
type persistedNode struct {
	Bounds   Rectangle
	Capacity int
	Leaf     bool
	Entries  []leafEntry
	Children [4]*persistedNode
}

// persistedIndex bundles the tree and capacity/bounds needed to
// reconstruct an Index; the objects table is written to its own file so
// it can be decoded independently of tree shape.
type persistedIndex struct {
	Bounds   Rectangle
	Capacity int
	Root     *persistedNode
}

func toPersistedNode(n *QuadNode) *persistedNode {
	if n == nil {
		return nil
	}
	pn := &persistedNode{
		Bounds:   n.bounds,
		Capacity: n.capacity,
		Leaf:     n.isLeaf(),
	}
	if pn.Leaf {
		pn.Entries = n.entries
		return pn
	}
	for i, c := range n.children {
		pn.Children[i] = toPersistedNode(c)
	}
	return pn
}

func fromPersistedNode(pn *persistedNode) *QuadNode {
	if pn == nil {
		return nil
	}
	n := &QuadNode{bounds: pn.Bounds, capacity: pn.Capacity}
	if pn.Leaf {
		n.entries = pn.Entries
		return n
	}
	for i, c := range pn.Children {
		n.children[i] = fromPersistedNode(c)
	}
	return n
}

// Save writes metadata.json plus binary dumps of the objects map and the
// quadtree to directory, creating it if necessary (spec §4.B, §6).
func (idx *Index) Save(directory string) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("%w: create directory: %v", ErrIO, err)
	}

	meta := idx.meta
	meta.TotalObjects = len(idx.objects)
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal metadata: %v", ErrIO, err)
	}
	if err := os.WriteFile(filepath.Join(directory, metadataFile), metaBytes, 0o644); err != nil {
		return fmt.Errorf("%w: write metadata: %v", ErrIO, err)
	}

	persistedObjects := make(map[int64]persistedObject, len(idx.objects))
	for id, obj := range idx.objects {
		persistedObjects[id] = persistedObject{
			Location: obj.Location,
			Keywords: obj.Keywords.Slice(),
			FullText: obj.FullText,
		}
	}
	var objBuf bytes.Buffer
	if err := gob.NewEncoder(&objBuf).Encode(persistedObjects); err != nil {
		return fmt.Errorf("%w: encode objects: %v", ErrIO, err)
	}
	if err := os.WriteFile(filepath.Join(directory, objectsFile), objBuf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: write objects: %v", ErrIO, err)
	}

	pi := persistedIndex{Bounds: idx.bounds, Capacity: idx.capacity, Root: toPersistedNode(idx.root)}
	var treeBuf bytes.Buffer
	if err := gob.NewEncoder(&treeBuf).Encode(pi); err != nil {
		return fmt.Errorf("%w: encode tree: %v", ErrIO, err)
	}
	if err := os.WriteFile(filepath.Join(directory, treeFile), treeBuf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: write tree: %v", ErrIO, err)
	}

	return nil
}

// Load reconstructs an index previously written by Save. It fails with
// ErrIndexNotFound when metadata.json is absent, and with ErrIndexCorrupt
// when a dump exists but cannot be decoded (spec §4.B, §7).
func Load(directory string) (*Index, error) {
	metaBytes, err := os.ReadFile(filepath.Join(directory, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, directory)
		}
		return nil, fmt.Errorf("%w: read metadata: %v", ErrIO, err)
	}

	var meta Metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("%w: decode metadata: %v", ErrIndexCorrupt, err)
	}

	objBytes, err := os.ReadFile(filepath.Join(directory, objectsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: read objects: %v", ErrIO, err)
	}
	var persistedObjects map[int64]persistedObject
	if err := gob.NewDecoder(bytes.NewReader(objBytes)).Decode(&persistedObjects); err != nil {
		return nil, fmt.Errorf("%w: decode objects: %v", ErrIndexCorrupt, err)
	}

	treeBytes, err := os.ReadFile(filepath.Join(directory, treeFile))
	if err != nil {
		return nil, fmt.Errorf("%w: read tree: %v", ErrIO, err)
	}
	var pi persistedIndex
	if err := gob.NewDecoder(bytes.NewReader(treeBytes)).Decode(&pi); err != nil {
		return nil, fmt.Errorf("%w: decode tree: %v", ErrIndexCorrupt, err)
	}

	objects := make(map[int64]GeoObject, len(persistedObjects))
	for id, po := range persistedObjects {
		objects[id] = GeoObject{
			ID:       id,
			Location: po.Location,
			Keywords: NewKeywordSet(po.Keywords),
			FullText: po.FullText,
		}
	}

	idx := &Index{
		root:     fromPersistedNode(pi.Root),
		bounds:   pi.Bounds,
		capacity: pi.Capacity,
		objects:  objects,
		meta:     meta,
		logger:   utils.Default(),
	}
	if idx.root == nil {
		return nil, fmt.Errorf("%w: empty tree dump", ErrIndexCorrupt)
	}
	return idx, nil
}
