package ffs

// validateScratch enforces spec.md section 4.I step 4: a scratch area must
// exist, and must be large enough to absorb the contents of the largest
// non-scratch area (the worst case a future garbage-collection cycle would
// have to copy into it).
func (fsys *FS) validateScratch() error {
	if fsys.scratchAreaIdx == AreaIdxNone {
		return ErrNoScratch
	}

	var maxOther uint32
	for i, area := range fsys.areas {
		if i == fsys.scratchAreaIdx {
			continue
		}
		if area.Length > maxOther {
			maxOther = area.Length
		}
	}

	if fsys.areas[fsys.scratchAreaIdx].Length < maxOther {
		return ErrScratchTooSmall
	}
	return nil
}

// validateRoot enforces spec.md section 4.I step 6: restore must have
// located a root directory inode. When several root records were scanned,
// the last one restored is the one kept in rootDir.
func (fsys *FS) validateRoot() error {
	if fsys.rootDir == nil {
		return ErrNoRoot
	}
	return nil
}

// setMaxBlockDataSize derives the largest data-block payload the
// filesystem will support from the smallest area's usable size (spec.md
// section 4.I step 5): a data block, including its header, must fit
// within any one area alongside that area's own header.
func (fsys *FS) setMaxBlockDataSize() {
	min := uint32(0)
	for i, area := range fsys.areas {
		usable := area.Length - diskAreaHeaderSize
		if i == 0 || usable < min {
			min = usable
		}
	}
	if min < diskBlockHeaderSize {
		fsys.maxBlockData = 0
		return
	}
	fsys.maxBlockData = min - diskBlockHeaderSize
}
