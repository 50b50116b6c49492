package ffs

import (
	"bytes"
	"io"
	"os"
)

// Flash is the raw read primitive the restore core consumes (spec.md
// section 4.A / section 1, "deliberately out of scope"). It addresses the
// medium linearly by absolute offset; area-relative bounds checking is
// layered on top by FS.readArea. Implementations must fill buf entirely
// or return an error — partial reads are not a supported outcome.
type Flash interface {
	ReadAt(offset uint32, buf []byte) error
}

// FlashWriter is an optional capability a Flash implementation may offer,
// consumed only by the default AreaFormatter (corrupt.go) to write a
// blank area header during corrupt-scratch repair (spec.md section 4.G
// step 4) or by initial test-fixture setup. It is deliberately not part
// of Flash itself: most of the restore core never writes anything.
type FlashWriter interface {
	WriteAt(offset uint32, data []byte) error
}

// MemFlash is an in-memory Flash backed by a single byte slice, standing
// in for the hardware flash driver in tests (spec.md section 1 calls the
// flash primitive an external collaborator; this is the default
// collaborator this module ships so restore is runnable and testable
// without real hardware).
type MemFlash struct {
	buf []byte
}

// NewMemFlash creates a MemFlash of the given total size, pre-erased to
// 0xFF (the convention real NOR/NAND flash uses for erased cells).
func NewMemFlash(size uint32) *MemFlash {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0xFF
	}
	return &MemFlash{buf: buf}
}

// WriteAt injects bytes directly into the backing buffer: used by test
// fixture construction and by the default area formatter (corrupt.go).
// RestoreFull itself never calls it on filesystem content, per spec.md's
// non-goal that restore does not write user data — only a reformatted
// scratch area's blank header passes through it.
func (m *MemFlash) WriteAt(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(m.buf)) {
		return &FlashError{Off: offset, Err: io.ErrUnexpectedEOF}
	}
	copy(m.buf[offset:], data)
	return nil
}

func (m *MemFlash) ReadAt(offset uint32, buf []byte) error {
	if uint64(offset)+uint64(len(buf)) > uint64(len(m.buf)) {
		return &FlashError{Off: offset, Err: io.ErrUnexpectedEOF}
	}
	copy(buf, m.buf[offset:])
	return nil
}

// FileFlash is a Flash backed by an *os.File, for operating on a real
// flash image dump in place. The cmd tools read the whole image into memory
// and use BufferFlash instead.
type FileFlash struct {
	f *os.File
}

// NewFileFlash wraps an already-open file. The caller retains ownership
// and is responsible for closing it.
func NewFileFlash(f *os.File) *FileFlash {
	return &FileFlash{f: f}
}

func (ff *FileFlash) ReadAt(offset uint32, buf []byte) error {
	n, err := ff.f.ReadAt(buf, int64(offset))
	if err != nil && !(err == io.EOF && n == len(buf)) {
		return &FlashError{Off: offset, Err: err}
	}
	return nil
}

// WriteAt lets the default area formatter reformat a reclaimed scratch
// area on a real flash image file.
func (ff *FileFlash) WriteAt(offset uint32, data []byte) error {
	if _, err := ff.f.WriteAt(data, int64(offset)); err != nil {
		return &FlashError{Off: offset, Err: err}
	}
	return nil
}

// BufferFlash adapts an in-memory io.ReaderAt (e.g. bytes.NewReader output
// from decompressing an .xz-packaged image) to Flash.
type BufferFlash struct {
	r *bytes.Reader
}

func NewBufferFlash(data []byte) *BufferFlash {
	return &BufferFlash{r: bytes.NewReader(data)}
}

func (bf *BufferFlash) ReadAt(offset uint32, buf []byte) error {
	n, err := bf.r.ReadAt(buf, int64(offset))
	if err != nil && !(err == io.EOF && n == len(buf)) {
		return &FlashError{Off: offset, Err: err}
	}
	return nil
}
