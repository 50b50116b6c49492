package ffs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// diskInodeHeaderSize is the fixed portion of an on-disk inode record,
// before the variable-length filename (spec.md section 6).
const diskInodeHeaderSize = 4 + 4 + 4 + 4 + 1 + 2

// diskInodeHeader is the fixed header of an on-disk inode record.
type diskInodeHeader struct {
	Magic       uint32
	ID          uint32
	Seq         uint32
	ParentID    uint32
	Flags       InodeFlags
	FilenameLen uint16
}

// DiskInode is a fully decoded on-disk inode record (header plus
// filename), as produced by the disk-object reader (spec.md section 4.C).
type DiskInode struct {
	diskInodeHeader
	Filename []byte
}

// Inode is the in-RAM representation of a file or directory (spec.md
// section 3).
type Inode struct {
	object

	parentID uint32
	filename []byte
	flags    InodeFlags
	refcnt   uint32
	offset   uint32

	parent   *Inode
	children []*Inode
	blocks   []*Block
}

func (in *Inode) ParentID() uint32    { return in.parentID }
func (in *Inode) Filename() string    { return string(in.filename) }
func (in *Inode) Flags() InodeFlags   { return in.flags }
func (in *Inode) IsDir() bool         { return in.flags.Has(InodeDirectory) }
func (in *Inode) IsRoot() bool        { return in.parentID == IDNone && in.IsDir() }
func (in *Inode) Children() []*Inode  { return in.children }
func (in *Inode) DataBlocks() []*Block {
	return in.blocks
}

func (in *Inode) String() string {
	return fmt.Sprintf("inode(id=%d,seq=%d,parent=%d,name=%q,flags=%s)",
		in.id, in.seq, in.parentID, in.filename, in.flags)
}

// decodeDiskInodeHeader parses the fixed-size portion of an on-disk inode
// record whose magic word has already been consumed from r. Errors here
// mean the area ran out of written records (spec.md section 9, open
// question a) and are left as-is for the caller to treat as end-of-area.
func decodeDiskInodeHeader(r io.Reader, order binary.ByteOrder) (diskInodeHeader, error) {
	hdr := diskInodeHeader{Magic: InodeMagic}

	if err := binary.Read(r, order, &hdr.ID); err != nil {
		return hdr, err
	}
	if err := binary.Read(r, order, &hdr.Seq); err != nil {
		return hdr, err
	}
	if err := binary.Read(r, order, &hdr.ParentID); err != nil {
		return hdr, err
	}
	if err := binary.Read(r, order, &hdr.Flags); err != nil {
		return hdr, err
	}
	if err := binary.Read(r, order, &hdr.FilenameLen); err != nil {
		return hdr, err
	}

	return hdr, nil
}

// readInodeFilename reads the variable-length filename declared by hdr. A
// failure here means the header's own declared length runs past the area,
// a stronger corruption signal than simply running out of records (spec.md
// section 9, open question a); the caller reports ErrCorrupt for it.
func readInodeFilename(r io.Reader, hdr diskInodeHeader) ([]byte, error) {
	name := make([]byte, hdr.FilenameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, err
	}
	return name, nil
}

// decodeDiskInode parses a full on-disk inode record (header and
// filename) in one call, without the two-phase split diskobject.go relies
// on for truncation classification.
func decodeDiskInode(r io.Reader, order binary.ByteOrder) (*DiskInode, error) {
	hdr, err := decodeDiskInodeHeader(r, order)
	if err != nil {
		return nil, err
	}
	name, err := readInodeFilename(r, hdr)
	if err != nil {
		return nil, err
	}
	return &DiskInode{diskInodeHeader: hdr, Filename: name}, nil
}

// encode serializes the inode record back to its on-disk form.
func (di *DiskInode) encode(order binary.ByteOrder) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, order, di.Magic)
	binary.Write(&buf, order, di.ID)
	binary.Write(&buf, order, di.Seq)
	binary.Write(&buf, order, di.ParentID)
	binary.Write(&buf, order, di.Flags)
	binary.Write(&buf, order, uint16(len(di.Filename)))
	buf.Write(di.Filename)
	return buf.Bytes()
}

// diskSize returns the on-disk size of the record (spec.md section 4.C).
func (di *DiskInode) diskSize() uint32 {
	return diskInodeHeaderSize + uint32(len(di.Filename))
}

// initFromDisk (re)initializes in's content from a decoded disk record,
// in place. Used both to populate a freshly allocated inode and to
// overwrite a superseding or dummy one; callers are responsible for
// detaching any existing parent linkage first.
func (in *Inode) initFromDisk(di *DiskInode, areaIdx int, offset uint32) {
	in.object.id = di.ID
	in.object.seq = di.Seq
	in.object.typ = objTypeInode
	in.object.areaIdx = areaIdx
	in.parentID = di.ParentID
	in.filename = append([]byte(nil), di.Filename...)
	in.flags = di.Flags
	in.offset = offset
}
