package ffs

import (
	"log"
)

// FS is the restore core's process-wide state, made explicit as a handle
// per spec.md section 9 ("encapsulate them in a filesystem handle passed
// explicitly to every operation"). A single FS is not safe for concurrent
// RestoreFull calls (spec.md section 5); concurrent read-only access via
// walk.go, after a successful restore, is fine.
type FS struct {
	flash Flash

	areas          []Area
	scratchAreaIdx int
	rootDir        *Inode
	nextID         uint32
	maxBlockData   uint32

	idx       *index
	inodes    *inodePool
	blocks    *blockPool

	logger    *log.Logger
	formatter AreaFormatter

	captureForensics bool
	lastReport       *RestoreReport
}

// Open constructs an FS bound to flash, ready for RestoreFull.
func Open(flash Flash, opts ...Option) *FS {
	fsys := &FS{
		flash:          flash,
		scratchAreaIdx: AreaIdxNone,
		idx:            newIndex(),
		inodes:         newInodePool(0),
		blocks:         newBlockPool(0),
		logger:         log.Default(),
		formatter:      defaultAreaFormatter{},
	}
	for _, opt := range opts {
		opt(fsys)
	}
	return fsys
}

// reset clears all process-wide state, run at the start of RestoreFull and
// again on any error exit (spec.md section 4.I steps 1 and 7).
func (fsys *FS) reset() {
	fsys.areas = nil
	fsys.scratchAreaIdx = AreaIdxNone
	fsys.rootDir = nil
	fsys.nextID = 0
	fsys.maxBlockData = 0
	fsys.idx = newIndex()
	fsys.inodes.reset()
	fsys.blocks.reset()
}

// RootDir returns the filesystem's root directory inode. Valid only after
// a successful RestoreFull.
func (fsys *FS) RootDir() *Inode { return fsys.rootDir }

// NextID returns the next identifier that will be assigned to a newly
// created object. Valid only after a successful RestoreFull.
func (fsys *FS) NextID() uint32 { return fsys.nextID }

// ScratchAreaIdx returns the runtime area-table index of the scratch area.
func (fsys *FS) ScratchAreaIdx() int { return fsys.scratchAreaIdx }

// NumAreas returns how many areas are currently part of the filesystem.
func (fsys *FS) NumAreas() int { return len(fsys.areas) }

// Area returns a copy of the runtime area descriptor at idx.
func (fsys *FS) Area(idx int) Area { return fsys.areas[idx] }

// MaxBlockDataSize returns the largest data-block payload the filesystem
// will support, derived from the smallest area's size (spec.md section
// 4.I step 5).
func (fsys *FS) MaxBlockDataSize() uint32 { return fsys.maxBlockData }

// ObjectCount returns the number of live inodes and blocks in the index.
// Useful for diagnostics (cmd/ffsrestore) and for tests asserting the
// post-sweep state of a restored filesystem.
func (fsys *FS) ObjectCount() int { return fsys.idx.len() }

// LastReport returns diagnostics from the most recent successful
// RestoreFull call, including a forensic snapshot if corrupt-scratch repair
// ran and forensics capture was enabled (forensics.go). It is nil until a
// call succeeds; a failed call leaves the previous report in place.
func (fsys *FS) LastReport() *RestoreReport { return fsys.lastReport }

// updateNextID maintains the invariant next_id > o.id for every restored
// object (spec.md section 8).
func (fsys *FS) updateNextID(id uint32) {
	if id >= fsys.nextID {
		fsys.nextID = id + 1
	}
}

func (fsys *FS) allocInode() (*Inode, error) { return fsys.inodes.alloc() }
func (fsys *FS) freeInode(in *Inode)         { fsys.inodes.release(in) }
func (fsys *FS) allocBlock() (*Block, error) { return fsys.blocks.alloc() }
func (fsys *FS) freeBlock(b *Block)          { fsys.blocks.release(b) }

// RestoreReport carries diagnostics from a RestoreFull call: which repair
// path ran, and (if forensics capture was enabled) a gzip snapshot of a
// reclaimed bad scratch area (forensics.go).
type RestoreReport struct {
	NumAreas           int
	ScratchAreaIdx     int
	RepairedScratch    bool
	GoodScratchAreaIdx int
	BadScratchAreaIdx  int
	BadScratchSnapshot []byte // gzip-compressed raw bytes of the bad area, if captured
}

// RestoreFull searches for a valid filesystem among areaDescs and, on
// success, leaves fsys populated with the restored object graph (spec.md
// section 4.I). areaDescs need not be terminated with a sentinel entry the
// way the C API requires — the Go slice length serves that purpose.
func (fsys *FS) RestoreFull(areaDescs []AreaDesc) error {
	fsys.reset()

	report := &RestoreReport{ScratchAreaIdx: AreaIdxNone}

	// byAreaID groups the runtime indices of non-scratch areas by their
	// declared area_id. Ordinarily every group has exactly one member; a
	// group of two is the signature an interrupted garbage-collection
	// cycle leaves behind (spec.md section 4.G) and is resolved below
	// instead of being scanned here.
	byAreaID := make(map[uint32][]int)

	for _, desc := range areaDescs {
		da, err := parseAreaHeader(fsys.flash, desc.Offset)
		if err != nil {
			if err == ErrCorrupt {
				// Unparseable header: skip this candidate area silently,
				// it may just not be part of the filesystem.
				continue
			}
			fsys.reset()
			return err
		}

		if da.AreaID == IDNone && fsys.scratchAreaIdx != AreaIdxNone {
			// Never allow more than one scratch area (spec.md section
			// 4.I step 2).
			continue
		}

		areaIdx := len(fsys.areas)
		fsys.areas = append(fsys.areas, Area{
			Offset: desc.Offset,
			Length: desc.Length,
			Cur:    diskAreaHeaderSize,
			GcSeq:  da.GcSeq,
			AreaID: da.AreaID,
		})

		if da.AreaID == IDNone {
			fsys.scratchAreaIdx = areaIdx
			continue
		}

		byAreaID[da.AreaID] = append(byAreaID[da.AreaID], areaIdx)
	}

	// Partition the collision, if any, out of the normal scan.
	var dupPair []int
	for _, idxs := range byAreaID {
		if len(idxs) == 1 {
			continue
		}
		if len(idxs) > 2 || fsys.scratchAreaIdx != AreaIdxNone || dupPair != nil {
			// More than two areas sharing an id, a scratch area already
			// present alongside a collision, or a second colliding group:
			// none of these match the single interrupted-GC shape, so
			// they can only be corruption (spec.md section 9, open
			// question b).
			fsys.reset()
			return ErrCorrupt
		}
		dupPair = idxs
	}

	for _, idxs := range byAreaID {
		if len(idxs) != 1 {
			continue
		}
		if err := fsys.scanArea(idxs[0]); err != nil {
			fsys.reset()
			return err
		}
	}

	if fsys.scratchAreaIdx == AreaIdxNone {
		good, bad, err := fsys.repairCorruptScratch(report, dupPair)
		if err != nil {
			fsys.reset()
			return err
		}
		report.RepairedScratch = true
		report.GoodScratchAreaIdx = good
		report.BadScratchAreaIdx = bad
	}

	if err := fsys.validateScratch(); err != nil {
		fsys.reset()
		return err
	}

	fsys.sweep()

	if err := fsys.validateRoot(); err != nil {
		fsys.reset()
		return err
	}

	fsys.setMaxBlockDataSize()

	report.NumAreas = len(fsys.areas)
	report.ScratchAreaIdx = fsys.scratchAreaIdx
	fsys.lastReport = report

	return nil
}
