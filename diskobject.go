package ffs

import (
	"encoding/binary"
)

// Disk record magic values (spec.md section 6). ErasedWord is what a
// freshly erased NOR/NAND cell reads back as.
const (
	InodeMagic uint32 = uint32('F') | uint32('F')<<8 | uint32('S')<<16 | uint32('I')<<24
	BlockMagic uint32 = uint32('F') | uint32('F')<<8 | uint32('S')<<16 | uint32('B')<<24
	ErasedWord uint32 = 0xFFFFFFFF
)

// byteOrder is the wire byte order used throughout the on-disk format.
var byteOrder = binary.LittleEndian

// diskObject is the result of the disk-object reader (spec.md section
// 4.C): a typed record plus its on-disk size and the location it was read
// from.
type diskObject struct {
	typ     objType
	inode   *DiskInode
	block   *DiskBlock
	areaIdx int
	offset  uint32
	size    uint32
}

// areaReader is an io.Reader pulling sequential bytes from one area
// through FS.readArea, so binary.Read/io.ReadFull can be used directly
// against flash the way the teacher's tableReader reads sequentially
// through a decompressed table (tablereader.go).
type areaReader struct {
	fsys    *FS
	areaIdx int
	pos     uint32
}

func (r *areaReader) Read(p []byte) (int, error) {
	if err := r.fsys.readArea(r.areaIdx, r.pos, p); err != nil {
		return 0, err
	}
	r.pos += uint32(len(p))
	return len(p), nil
}

// readDiskObject recognizes and decodes the record at (areaIdx, offset):
// an inode record, a block record, or erased flash (spec.md section 4.C).
//
// Per the open question in spec.md section 9(a): an error reading the
// magic word or the record's fixed header is reported unmodified (treated
// by the area scanner as end-of-area, i.e. success); an error reading the
// variable-length payload whose length the header just declared is
// reported as ErrCorrupt, since at that point the header looked valid but
// promised bytes the area does not have.
func readDiskObject(fsys *FS, areaIdx int, offset uint32) (*diskObject, error) {
	var magicBuf [4]byte
	if err := fsys.readArea(areaIdx, offset, magicBuf[:]); err != nil {
		return nil, err
	}
	magic := byteOrder.Uint32(magicBuf[:])

	r := &areaReader{fsys: fsys, areaIdx: areaIdx, pos: offset + 4}

	switch magic {
	case InodeMagic:
		hdr, err := decodeDiskInodeHeader(r, byteOrder)
		if err != nil {
			return nil, err
		}
		name, err := readInodeFilename(r, hdr)
		if err != nil {
			return nil, ErrCorrupt
		}
		di := &DiskInode{diskInodeHeader: hdr, Filename: name}
		return &diskObject{
			typ:     objTypeInode,
			inode:   di,
			areaIdx: areaIdx,
			offset:  offset,
			size:    di.diskSize(),
		}, nil

	case BlockMagic:
		hdr, err := decodeDiskBlockHeader(r, byteOrder)
		if err != nil {
			return nil, err
		}
		data, err := readBlockPayload(r, hdr)
		if err != nil {
			return nil, ErrCorrupt
		}
		db := &DiskBlock{diskBlockHeader: hdr, Data: data}
		return &diskObject{
			typ:     objTypeBlock,
			block:   db,
			areaIdx: areaIdx,
			offset:  offset,
			size:    db.diskSize(),
		}, nil

	case ErasedWord:
		return nil, ErrEmpty

	default:
		return nil, ErrCorrupt
	}
}
