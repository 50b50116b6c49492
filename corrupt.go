package ffs

import "errors"

// AreaFormatter reclaims an area as a blank scratch area during
// corrupt-scratch repair (spec.md section 4.G step 4). It is the "area
// subsystem" collaborator spec.md section 1 calls out as deliberately out
// of scope for the restore core proper; this module ships a default
// implementation so repair is runnable without a caller-supplied one.
type AreaFormatter interface {
	FormatArea(fsys *FS, areaIdx int) error
}

// defaultAreaFormatter writes a fresh scratch header through the Flash's
// optional FlashWriter capability.
type defaultAreaFormatter struct{}

func (defaultAreaFormatter) FormatArea(fsys *FS, areaIdx int) error {
	fw, ok := fsys.flash.(FlashWriter)
	if !ok {
		return errors.New("ffs: flash does not support the writes corrupt-scratch repair requires")
	}
	area := fsys.areas[areaIdx]
	da := &DiskArea{Magic: AreaMagic, AreaID: IDNone, GcSeq: area.GcSeq + 1}
	return fw.WriteAt(area.Offset, da.encode(byteOrder))
}

// repairCorruptScratch resolves the one legal reason RestoreFull can reach
// here with no scratch area at all: garbage collection was interrupted
// after the original scratch area was reformatted with a real area_id (the
// copy destination) but before the area it copied from could itself be
// reformatted into the new scratch area, leaving two areas sharing one
// area_id (spec.md section 4.G, grounded on ffs_restore_corrupt_flash).
//
// dupPair holds the runtime indices of that pair, or is nil if the area
// scan found no such collision — in which case there is simply no usable
// scratch area and nothing to repair.
//
// Unlike ffs_restore_corrupt_flash, which scans both areas and then
// invalidates every object attributed to the loser, this implementation
// never scans the loser at all: since garbage collection preserves id and
// seq when copying a live object, the loser's content is either identical
// to what the winner already holds or strictly older, so it can contribute
// nothing a plain scan of the winner wouldn't already supersede.
func (fsys *FS) repairCorruptScratch(report *RestoreReport, dupPair []int) (good, bad int, err error) {
	if len(dupPair) != 2 {
		return AreaIdxNone, AreaIdxNone, ErrNoScratch
	}

	a, b := dupPair[0], dupPair[1]
	switch {
	case fsys.areas[a].GcSeq > fsys.areas[b].GcSeq:
		good, bad = a, b
	case fsys.areas[b].GcSeq > fsys.areas[a].GcSeq:
		good, bad = b, a
	default:
		// Equal gc_seq leaves no way to tell which copy is newer.
		return AreaIdxNone, AreaIdxNone, ErrCorrupt
	}

	fsys.logger.Printf("ffs: areas %d and %d share area_id %d, an interrupted GC cycle; "+
		"keeping %d (gc_seq=%d) and reclaiming %d (gc_seq=%d) as scratch",
		a, b, fsys.areas[good].AreaID, good, fsys.areas[good].GcSeq, bad, fsys.areas[bad].GcSeq)

	if fsys.captureForensics {
		if snap, ferr := fsys.snapshotArea(bad); ferr == nil {
			report.BadScratchSnapshot = snap
		}
	}

	if err := fsys.scanArea(good); err != nil {
		return AreaIdxNone, AreaIdxNone, err
	}

	if err := fsys.formatter.FormatArea(fsys, bad); err != nil {
		return AreaIdxNone, AreaIdxNone, err
	}
	fsys.areas[bad].AreaID = IDNone
	fsys.areas[bad].GcSeq = fsys.areas[good].GcSeq + 1
	fsys.areas[bad].Cur = diskAreaHeaderSize
	fsys.scratchAreaIdx = bad

	return good, bad, nil
}
