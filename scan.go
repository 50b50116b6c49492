package ffs

// scanArea sequentially walks one area, merging each record into the
// index via restoreInode/restoreBlock until it runs out of written
// records (spec.md section 4.F). Forward progress is always at least one
// record's header size, so termination is bounded by the area's length.
func (fsys *FS) scanArea(areaIdx int) error {
	area := &fsys.areas[areaIdx]
	area.Cur = diskAreaHeaderSize

	for {
		obj, err := readDiskObject(fsys, areaIdx, area.Cur)
		switch err {
		case nil:
			if err := fsys.restoreObject(obj); err != nil {
				return err
			}
			area.Cur += obj.size

		case ErrEmpty, ErrRange:
			return nil

		default:
			return err
		}
	}
}

// restoreObject dispatches a decoded disk record to the inode or block
// merge logic (spec.md section 4's "D/E" fan-out).
func (fsys *FS) restoreObject(obj *diskObject) error {
	switch obj.typ {
	case objTypeInode:
		return fsys.restoreInode(obj.inode, obj.areaIdx, obj.offset)
	case objTypeBlock:
		return fsys.restoreBlock(obj.block, obj.areaIdx, obj.offset)
	default:
		return ErrCorrupt
	}
}
