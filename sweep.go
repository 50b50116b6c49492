package ffs

// deleteIfTrash removes o from the index and returns its storage to its
// pool if it is tombstoned or a surviving dummy (spec.md section 4.H /
// ffs_delete_if_trash). It reports whether it deleted anything.
func (fsys *FS) deleteIfTrash(o *object) bool {
	switch o.typ {
	case objTypeInode:
		in, err := fsys.idx.findInode(o.id)
		if err != nil {
			return false
		}
		if in.flags.Has(InodeDeleted) || in.flags.Has(InodeDummy) {
			fsys.deleteInodeFromRAM(in)
			return true
		}
		return false

	case objTypeBlock:
		b, err := fsys.idx.findBlock(o.id)
		if err != nil {
			return false
		}
		if b.flags.Has(BlockDeleted) || b.flags.Has(BlockDummy) || b.inode == nil {
			fsys.deleteBlockFromRAM(b)
			return true
		}
		return false

	default:
		return false
	}
}

// deleteInodeFromRAM unlinks in from its parent, orphans its children,
// deletes every data block it owns, and releases it back to the inode
// pool. Deleting the owned blocks here takes a dummy owner inode and its
// dependent blocks out together, whichever of them the sweep visits first
// (spec.md section 8, boundary scenario 6). Orphaned child inodes stay in
// the index with no parent link.
func (fsys *FS) deleteInodeFromRAM(in *Inode) {
	removeChild(in)
	for _, child := range in.children {
		child.parent = nil
	}
	for _, b := range in.blocks {
		b.inode = nil
		fsys.deleteBlockFromRAM(b)
	}
	in.blocks = nil
	fsys.idx.removeInode(in.id)
	fsys.freeInode(in)
}

// deleteBlockFromRAM unlinks b from its owning inode's block list and
// releases it back to the block pool.
func (fsys *FS) deleteBlockFromRAM(b *Block) {
	if b.inode != nil {
		blocks := b.inode.blocks
		for i, bb := range blocks {
			if bb == b {
				b.inode.blocks = append(blocks[:i], blocks[i+1:]...)
				break
			}
		}
		b.inode = nil
	}
	fsys.idx.removeBlock(b.id)
	fsys.freeBlock(b)
}

// sweep performs a single pass over the entire index, deleting tombstoned
// and dummy objects in place (spec.md section 4.H). Iteration captures the
// full id set up front so it is safe against removal of the current
// element, per the index's forEachObject contract.
func (fsys *FS) sweep() {
	fsys.idx.forEachObject(func(o *object) {
		fsys.deleteIfTrash(o)
	})
}
