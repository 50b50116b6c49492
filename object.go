package ffs

import "sync"

// IDNone is the sentinel 32-bit identifier meaning "absent parent",
// "absent owning inode", or "this area is the scratch area" depending on
// context (spec.md section 3).
const IDNone uint32 = 0xFFFFFFFF

// AreaIdxNone is the sentinel runtime area-table index stored on dummy
// objects, which are not backed by any area.
const AreaIdxNone = -1

// objType discriminates the two kinds of object sharing the index.
type objType uint8

const (
	objTypeInode objType = iota + 1
	objTypeBlock
)

func (t objType) String() string {
	switch t {
	case objTypeInode:
		return "inode"
	case objTypeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// object is the common header every index entry carries, mirroring
// mynewt's ffs_object: an id, a sequence number, a type tag and the
// runtime area it was last read from (AreaIdxNone for dummies).
type object struct {
	id      uint32
	seq     uint32
	typ     objType
	areaIdx int
}

func (o *object) ID() uint32     { return o.id }
func (o *object) Seq() uint32    { return o.seq }
func (o *object) AreaIdx() int   { return o.areaIdx }
func (o *object) Type() objType  { return o.typ }

// index is the single hash table keyed by id holding every live inode and
// block (spec.md section 3, "Object index"). Removing an id only drops it
// from the index; the caller returns the object to its pool.
type index struct {
	mu      sync.RWMutex
	byID    map[uint32]*object
	inodes  map[uint32]*Inode
	blocks  map[uint32]*Block
}

func newIndex() *index {
	return &index{
		byID:   make(map[uint32]*object),
		inodes: make(map[uint32]*Inode),
		blocks: make(map[uint32]*Block),
	}
}

func (ix *index) insertInode(in *Inode) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.byID[in.id] = &in.object
	ix.inodes[in.id] = in
}

func (ix *index) insertBlock(b *Block) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.byID[b.id] = &b.object
	ix.blocks[b.id] = b
}

func (ix *index) findInode(id uint32) (*Inode, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	in, ok := ix.inodes[id]
	if !ok {
		return nil, ErrEnoent
	}
	return in, nil
}

func (ix *index) findBlock(id uint32) (*Block, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	b, ok := ix.blocks[id]
	if !ok {
		return nil, ErrEnoent
	}
	return b, nil
}

func (ix *index) removeInode(id uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.byID, id)
	delete(ix.inodes, id)
}

func (ix *index) removeBlock(id uint32) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.byID, id)
	delete(ix.blocks, id)
}

// forEachObject snapshots the ids currently present and invokes fn for
// each, so that fn is free to remove the current element from the index
// (spec.md section 4.H requires the sweep be safe against this).
func (ix *index) forEachObject(fn func(o *object)) {
	ix.mu.RLock()
	ids := make([]uint32, 0, len(ix.byID))
	for id := range ix.byID {
		ids = append(ids, id)
	}
	ix.mu.RUnlock()

	for _, id := range ids {
		ix.mu.RLock()
		o, ok := ix.byID[id]
		ix.mu.RUnlock()
		if !ok {
			continue // already removed by an earlier callback
		}
		fn(o)
	}
}

func (ix *index) len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byID)
}
