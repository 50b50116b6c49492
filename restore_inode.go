package ffs

// restoreDummyInode synthesizes a placeholder inode reserving id's slot in
// the index, referenced by some other object that was scanned before it
// (spec.md section 4.D, "Why dummies").
func (fsys *FS) restoreDummyInode(id uint32, isDir bool) (*Inode, error) {
	in, err := fsys.allocInode()
	if err != nil {
		return nil, ErrEnomem
	}

	in.object = object{id: id, areaIdx: AreaIdxNone, typ: objTypeInode}
	in.refcnt = 1
	in.flags = InodeDummy
	if isDir {
		in.flags |= InodeDirectory
	}

	fsys.idx.insertInode(in)
	fsys.updateNextID(id)

	return in, nil
}

// inodeGetsReplaced implements the decision table of spec.md section 4.D:
// whether a freshly read disk record should overwrite an already-indexed
// inode, and whether that is even legal.
func inodeGetsReplaced(existing *Inode, seq uint32) (bool, error) {
	if existing.flags.Has(InodeDummy) {
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

// addChild links child under parent's child list and sets child's parent
// back-pointer (spec.md section 9, "insert/remove a child from a
// directory inode").
func addChild(parent, child *Inode) {
	parent.children = append(parent.children, child)
	child.parent = parent
}

// removeChild detaches child from its current parent's child list, if
// any.
func removeChild(child *Inode) {
	parent := child.parent
	if parent == nil {
		return
	}
	for i, c := range parent.children {
		if c == child {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	child.parent = nil
}

// restoreInode merges one disk inode record into the index (spec.md
// section 4.D).
func (fsys *FS) restoreInode(di *DiskInode, areaIdx int, offset uint32) error {
	var in *Inode
	var isNew bool
	doAdd := true

	existing, err := fsys.idx.findInode(di.ID)
	switch err {
	case nil:
		var rc error
		doAdd, rc = inodeGetsReplaced(existing, di.Seq)
		if rc != nil {
			return rc
		}
		if doAdd {
			if existing.parent != nil {
				removeChild(existing)
			}
			existing.initFromDisk(di, areaIdx, offset)
		}
		in = existing

	case ErrEnoent:
		in, err = fsys.allocInode()
		if err != nil {
			return ErrEnomem
		}
		isNew = true
		in.initFromDisk(di, areaIdx, offset)
		in.refcnt = 1
		fsys.idx.insertInode(in)

	default:
		return ErrCorrupt
	}

	if doAdd {
		if di.ParentID != IDNone {
			parent, perr := fsys.idx.findInode(di.ParentID)
			if perr == ErrEnoent {
				parent, perr = fsys.restoreDummyInode(di.ParentID, true)
			}
			if perr != nil {
				if isNew {
					fsys.idx.removeInode(in.id)
					fsys.freeInode(in)
				}
				return perr
			}
			addChild(parent, in)
		}

		if in.IsRoot() {
			fsys.rootDir = in
		}
	}

	fsys.updateNextID(in.id)

	return nil
}
