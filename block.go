package ffs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// diskBlockHeaderSize is the fixed portion of an on-disk data-block
// record, before the variable-length payload (spec.md section 6).
const diskBlockHeaderSize = 4 + 4 + 4 + 4 + 1 + 2

type diskBlockHeader struct {
	Magic    uint32
	ID       uint32
	Seq      uint32
	InodeID  uint32
	Flags    BlockFlags
	DataLen  uint16
}

// DiskBlock is a fully decoded on-disk data-block record.
type DiskBlock struct {
	diskBlockHeader
	Data []byte
}

// Block is the in-RAM representation of a data block (spec.md section 3).
// Block payloads are not copied into RAM; the block remembers where on
// flash its data lives so readers can fetch it lazily (see walk.go).
type Block struct {
	object

	inodeID uint32
	dataLen uint32
	flags   BlockFlags
	offset  uint32

	inode *Inode
}

func (b *Block) InodeID() uint32  { return b.inodeID }
func (b *Block) DataLen() uint32  { return b.dataLen }
func (b *Block) Flags() BlockFlags { return b.flags }
func (b *Block) Inode() *Inode    { return b.inode }

func (b *Block) String() string {
	return fmt.Sprintf("block(id=%d,seq=%d,inode=%d,len=%d,flags=%s)",
		b.id, b.seq, b.inodeID, b.dataLen, b.flags)
}

// decodeDiskBlockHeader mirrors decodeDiskInodeHeader for block records.
func decodeDiskBlockHeader(r io.Reader, order binary.ByteOrder) (diskBlockHeader, error) {
	hdr := diskBlockHeader{Magic: BlockMagic}

	if err := binary.Read(r, order, &hdr.ID); err != nil {
		return hdr, err
	}
	if err := binary.Read(r, order, &hdr.Seq); err != nil {
		return hdr, err
	}
	if err := binary.Read(r, order, &hdr.InodeID); err != nil {
		return hdr, err
	}
	if err := binary.Read(r, order, &hdr.Flags); err != nil {
		return hdr, err
	}
	if err := binary.Read(r, order, &hdr.DataLen); err != nil {
		return hdr, err
	}

	return hdr, nil
}

// readBlockPayload reads the variable-length data payload declared by hdr.
func readBlockPayload(r io.Reader, hdr diskBlockHeader) ([]byte, error) {
	data := make([]byte, hdr.DataLen)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

func decodeDiskBlock(r io.Reader, order binary.ByteOrder) (*DiskBlock, error) {
	hdr, err := decodeDiskBlockHeader(r, order)
	if err != nil {
		return nil, err
	}
	data, err := readBlockPayload(r, hdr)
	if err != nil {
		return nil, err
	}
	return &DiskBlock{diskBlockHeader: hdr, Data: data}, nil
}

func (db *DiskBlock) encode(order binary.ByteOrder) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, order, db.Magic)
	binary.Write(&buf, order, db.ID)
	binary.Write(&buf, order, db.Seq)
	binary.Write(&buf, order, db.InodeID)
	binary.Write(&buf, order, db.Flags)
	binary.Write(&buf, order, uint16(len(db.Data)))
	buf.Write(db.Data)
	return buf.Bytes()
}

func (db *DiskBlock) diskSize() uint32 {
	return diskBlockHeaderSize + uint32(len(db.Data))
}

// initFromDisk (re)initializes b's content from a decoded disk record, in
// place, mirroring Inode.initFromDisk.
func (b *Block) initFromDisk(db *DiskBlock, areaIdx int, offset uint32) {
	b.object.id = db.ID
	b.object.seq = db.Seq
	b.object.typ = objTypeBlock
	b.object.areaIdx = areaIdx
	b.inodeID = db.InodeID
	b.dataLen = uint32(db.DataLen)
	b.flags = db.Flags
	b.offset = offset
}
