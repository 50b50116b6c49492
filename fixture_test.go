package ffs_test

import (
	"encoding/binary"

	"github.com/kclabs/ffs"
)

// areaBuilder assembles one area's raw bytes record by record, the way a
// real flash image accumulates writes; used by every scenario in
// fs_test.go to synthesize just enough of the wire format (spec.md
// section 6) to drive RestoreFull without needing a real writer.
type areaBuilder struct {
	buf []byte
	pos uint32
}

func newArea(size uint32, areaID, gcSeq uint32) *areaBuilder {
	b := &areaBuilder{buf: make([]byte, size)}
	for i := range b.buf {
		b.buf[i] = 0xFF
	}
	da := diskArea(areaID, gcSeq)
	copy(b.buf, da)
	b.pos = uint32(len(da))
	return b
}

func diskArea(areaID, gcSeq uint32) []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:], ffs.AreaMagic)
	binary.LittleEndian.PutUint32(buf[4:], areaID)
	binary.LittleEndian.PutUint32(buf[8:], gcSeq)
	return buf
}

func (b *areaBuilder) writeInode(id, seq, parentID uint32, flags ffs.InodeFlags, name string) {
	rec := make([]byte, 0, 19+len(name))
	rec = appendU32(rec, ffs.InodeMagic)
	rec = appendU32(rec, id)
	rec = appendU32(rec, seq)
	rec = appendU32(rec, parentID)
	rec = append(rec, byte(flags))
	rec = appendU16(rec, uint16(len(name)))
	rec = append(rec, name...)
	b.write(rec)
}

func (b *areaBuilder) writeBlock(id, seq, inodeID uint32, flags ffs.BlockFlags, data []byte) {
	rec := make([]byte, 0, 19+len(data))
	rec = appendU32(rec, ffs.BlockMagic)
	rec = appendU32(rec, id)
	rec = appendU32(rec, seq)
	rec = appendU32(rec, inodeID)
	rec = append(rec, byte(flags))
	rec = appendU16(rec, uint16(len(data)))
	rec = append(rec, data...)
	b.write(rec)
}

func (b *areaBuilder) write(rec []byte) {
	copy(b.buf[b.pos:], rec)
	b.pos += uint32(len(rec))
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// image combines several areas into one MemFlash plus the AreaDesc list
// RestoreFull expects.
func image(areas ...*areaBuilder) (*ffs.MemFlash, []ffs.AreaDesc) {
	var total uint32
	for _, a := range areas {
		total += uint32(len(a.buf))
	}
	flash := ffs.NewMemFlash(total)
	descs := make([]ffs.AreaDesc, len(areas))
	var offset uint32
	for i, a := range areas {
		flash.WriteAt(offset, a.buf)
		descs[i] = ffs.AreaDesc{Offset: offset, Length: uint32(len(a.buf))}
		offset += uint32(len(a.buf))
	}
	return flash, descs
}
