package ffs_test

import (
	"encoding/binary"
	"testing"

	"github.com/kclabs/ffs"
)

// areaHeaderLen and inodeHeaderLen mirror the fixed-size wire layout
// (spec.md section 6); scanArea itself treats these as opaque byte counts,
// but the tests need them to place a truncation at an exact spot.
const (
	areaHeaderLen  = 12 // magic + area_id + gc_seq
	inodeHeaderLen = 19 // magic + id + seq + parent_id + flags + filename_len
)

func rawAreaHeader(areaID, gcSeq uint32) []byte {
	buf := make([]byte, areaHeaderLen)
	binary.LittleEndian.PutUint32(buf[0:], ffs.AreaMagic)
	binary.LittleEndian.PutUint32(buf[4:], areaID)
	binary.LittleEndian.PutUint32(buf[8:], gcSeq)
	return buf
}

// rawInodeRecord assembles a full, well-formed inode record: a valid magic
// and fixed header declaring filenameLen bytes of filename, followed by
// filenameLen bytes of actual filename data (which may be shorter than
// declared, to simulate a record whose header promises more than the area
// holds).
func rawInodeRecord(id, seq, parentID uint32, flags ffs.InodeFlags, filenameLen uint16, filename []byte) []byte {
	rec := make([]byte, 0, inodeHeaderLen+len(filename))
	rec = appendU32(rec, ffs.InodeMagic)
	rec = appendU32(rec, id)
	rec = appendU32(rec, seq)
	rec = appendU32(rec, parentID)
	rec = append(rec, byte(flags))
	rec = appendU16(rec, filenameLen)
	rec = append(rec, filename...)
	return rec
}

// TestScanAreaHeaderTruncationIsCleanEndOfArea covers open question (a) in
// spec.md section 9: a record whose fixed header itself runs past the end
// of the area (here, cut off between parent_id and flags) is the ordinary
// signature of "no more records were ever written here", not corruption.
// RestoreFull must succeed, keeping only the records fully read before the
// cut.
func TestScanAreaHeaderTruncationIsCleanEndOfArea(t *testing.T) {
	root := rawInodeRecord(1, 1, ffs.IDNone, ffs.InodeDirectory, 0, nil)

	main := append([]byte{}, rawAreaHeader(1, 1)...)
	main = append(main, root...)
	// Append a second record's header, but truncate the area right after
	// parent_id, before the flags/filename_len fields can be read.
	second := rawInodeRecord(2, 1, 1, 0, 0, nil)
	cut := 4 + 4 + 4 + 4 // magic + id + seq + parent_id
	main = append(main, second[:cut]...)

	mainLen := uint32(len(main))
	scratch := newArea(256, ffs.IDNone, 0)

	flash := ffs.NewMemFlash(mainLen + 256)
	flash.WriteAt(0, main)
	flash.WriteAt(mainLen, scratch.buf)

	descs := []ffs.AreaDesc{
		{Offset: 0, Length: mainLen},
		{Offset: mainLen, Length: 256},
	}

	fsys := ffs.Open(flash)
	if err := fsys.RestoreFull(descs); err != nil {
		t.Fatalf("expected a header-truncated tail to be treated as end-of-area, got: %v", err)
	}

	root2 := fsys.RootDir()
	if root2 == nil {
		t.Fatal("expected a root directory")
	}
	if len(root2.Children()) != 0 {
		t.Errorf("expected no children (the truncated second record must not appear), got %v", childNames(root2))
	}
}

// TestScanAreaPayloadTruncationIsCorrupt covers the other side of open
// question (a): a record whose fixed header was read in full and declares a
// filename length the area cannot actually satisfy. Unlike a header-phase
// cutoff, this is a stronger corruption signal (the header looked valid and
// promised bytes that are not there), and must surface as ErrCorrupt rather
// than being swallowed as a clean end-of-area.
func TestScanAreaPayloadTruncationIsCorrupt(t *testing.T) {
	root := rawInodeRecord(1, 1, ffs.IDNone, ffs.InodeDirectory, 0, nil)

	main := append([]byte{}, rawAreaHeader(1, 1)...)
	main = append(main, root...)
	// A second record whose header is fully present and declares 50 bytes
	// of filename, but the area ends immediately after the header.
	second := rawInodeRecord(2, 1, 1, 0, 50, nil)
	main = append(main, second...)

	mainLen := uint32(len(main))
	scratch := newArea(256, ffs.IDNone, 0)

	flash := ffs.NewMemFlash(mainLen + 256)
	flash.WriteAt(0, main)
	flash.WriteAt(mainLen, scratch.buf)

	descs := []ffs.AreaDesc{
		{Offset: 0, Length: mainLen},
		{Offset: mainLen, Length: 256},
	}

	fsys := ffs.Open(flash)
	err := fsys.RestoreFull(descs)
	if err != ffs.ErrCorrupt {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
