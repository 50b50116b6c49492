package ffs

// blockGetsReplaced mirrors inodeGetsReplaced for data blocks (spec.md
// section 4.E decision table).
func blockGetsReplaced(existing *Block, seq uint32) (bool, error) {
	if existing.flags.Has(BlockDummy) {
		return true, nil
	}
	if existing.seq < seq {
		return true, nil
	}
	if existing.seq == seq {
		return false, ErrCorrupt
	}
	return false, nil
}

// insertBlock appends b to inode's block list and sets b's owning-inode
// back-pointer (spec.md section 9, "insert a block into a file inode").
func insertBlock(inode *Inode, b *Block) {
	inode.blocks = append(inode.blocks, b)
	b.inode = inode
}

// restoreBlock merges one disk data-block record into the index (spec.md
// section 4.E).
func (fsys *FS) restoreBlock(db *DiskBlock, areaIdx int, offset uint32) error {
	var b *Block

	existing, err := fsys.idx.findBlock(db.ID)
	switch err {
	case nil:
		doReplace, rc := blockGetsReplaced(existing, db.Seq)
		if rc != nil {
			return rc
		}
		if doReplace {
			existing.initFromDisk(db, areaIdx, offset)
		}
		b = existing

	case ErrEnoent:
		b, err = fsys.allocBlock()
		if err != nil {
			return ErrEnomem
		}
		b.initFromDisk(db, areaIdx, offset)
		fsys.idx.insertBlock(b)

		inode, ierr := fsys.idx.findInode(db.InodeID)
		if ierr == ErrEnoent {
			inode, ierr = fsys.restoreDummyInode(db.InodeID, false)
		}
		if ierr != nil {
			fsys.idx.removeBlock(b.id)
			fsys.freeBlock(b)
			return ierr
		}
		insertBlock(inode, b)

	default:
		return ErrCorrupt
	}

	fsys.updateNextID(b.id)

	return nil
}
