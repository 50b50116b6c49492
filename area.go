package ffs

import (
	"bytes"
	"encoding/binary"
)

// AreaMagic identifies the start of a valid area header.
const AreaMagic uint32 = uint32('F') | uint32('F') << 8 | uint32('S') << 16 | uint32('A') << 24

// diskAreaHeaderSize is the fixed size of an on-flash area header (spec.md
// section 6).
const diskAreaHeaderSize = 4 + 4 + 4

// DiskArea is the fixed header found at the start of every area.
type DiskArea struct {
	Magic  uint32
	AreaID uint32 // IDNone denotes a scratch area
	GcSeq  uint32
}

func (da *DiskArea) encode(order binary.ByteOrder) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, order, da.Magic)
	binary.Write(&buf, order, da.AreaID)
	binary.Write(&buf, order, da.GcSeq)
	return buf.Bytes()
}

// AreaDesc describes one candidate area supplied by the caller of
// RestoreFull: its absolute flash offset and byte length (spec.md section
// 6, "on-flash area layout").
type AreaDesc struct {
	Offset uint32
	Length uint32
}

// Area is the runtime representation of a recognized area (spec.md
// section 3).
type Area struct {
	Offset uint32
	Length uint32
	Cur    uint32 // write cursor; after restore, points past the last record read
	GcSeq  uint32
	AreaID uint32 // IDNone if this is the scratch area
}

// parseAreaHeader reads and decodes the fixed header at the given absolute
// flash offset (spec.md section 4.B). It never reads area contents.
func parseAreaHeader(flash Flash, offset uint32) (*DiskArea, error) {
	buf := make([]byte, diskAreaHeaderSize)
	if err := flash.ReadAt(offset, buf); err != nil {
		return nil, err
	}

	r := bytes.NewReader(buf)
	da := &DiskArea{}
	if err := binary.Read(r, binary.LittleEndian, &da.Magic); err != nil {
		return nil, err
	}
	if da.Magic != AreaMagic {
		return nil, ErrCorrupt
	}
	if err := binary.Read(r, binary.LittleEndian, &da.AreaID); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &da.GcSeq); err != nil {
		return nil, err
	}

	return da, nil
}

// readArea reads len(buf) bytes starting at localOffset within the area at
// areaIdx in fsys's area table, enforcing the area's declared length
// (spec.md section 4.A: a read crossing the area boundary returns
// ErrRange rather than reaching into the next area).
func (fsys *FS) readArea(areaIdx int, localOffset uint32, buf []byte) error {
	area := fsys.areas[areaIdx]
	if uint64(localOffset)+uint64(len(buf)) > uint64(area.Length) {
		return ErrRange
	}
	return fsys.flash.ReadAt(area.Offset+localOffset, buf)
}

// readAreaAll reads the full declared contents of an area, used by the
// corrupt-scratch repair path to snapshot a bad area before it is
// reformatted (forensics.go).
func (fsys *FS) readAreaAll(areaIdx int) ([]byte, error) {
	area := fsys.areas[areaIdx]
	buf := make([]byte, area.Length)
	if err := fsys.flash.ReadAt(area.Offset, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
