package ffs

import (
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// Walk adapts a restored FS to io/fs.FS, read-only, for debug tooling
// (cmd/ffsmount) and for tests that want to assert on the restored tree
// with stdlib path helpers instead of walking Inode/Block by hand. It is
// not part of the restore core itself (spec.md section 1 scopes restore to
// rebuilding the in-RAM graph, not serving file content), grounded on the
// teacher's file.go/dir.go convenience layer over its own inode graph.
type Walk struct {
	fsys *FS
}

// NewWalk wraps a successfully restored FS for read-only traversal.
func NewWalk(fsys *FS) *Walk {
	return &Walk{fsys: fsys}
}

var _ fs.FS = (*Walk)(nil)
var _ fs.StatFS = (*Walk)(nil)

func (w *Walk) resolve(name string) (*Inode, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	root := w.fsys.RootDir()
	if root == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if name == "." {
		return root, nil
	}

	cur := root
	for _, part := range strings.Split(name, "/") {
		if !cur.IsDir() {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		var next *Inode
		for _, child := range cur.Children() {
			if child.Filename() == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		cur = next
	}
	return cur, nil
}

// Open implements fs.FS.
func (w *Walk) Open(name string) (fs.File, error) {
	in, err := w.resolve(name)
	if err != nil {
		return nil, err
	}
	if in.IsDir() {
		return &dirFile{ino: in, name: name}, nil
	}
	return &regFile{
		SectionReader: io.NewSectionReader(&blockReader{fsys: w.fsys, ino: in}, 0, fileSize(in)),
		ino:           in,
		name:          name,
	}, nil
}

// Stat implements fs.StatFS without opening the file first.
func (w *Walk) Stat(name string) (fs.FileInfo, error) {
	in, err := w.resolve(name)
	if err != nil {
		return nil, err
	}
	return &fileinfo{ino: in, name: path.Base(name)}, nil
}

// fileSize sums the declared length of every data block owned by in, in
// restore order; see blockReader's doc comment for the ordering caveat.
func fileSize(in *Inode) int64 {
	var total int64
	for _, b := range in.DataBlocks() {
		total += int64(b.DataLen())
	}
	return total
}

// blockReader concatenates an inode's data blocks into a single byte
// stream. It orders blocks the way restore encountered them (the order
// they were appended to Inode.blocks by restore_block.go), which is the
// best ordering the restore core alone can offer: the on-disk format
// carries no explicit within-file block index, so a debug mount is only
// as faithful as that insertion order.
type blockReader struct {
	fsys *FS
	ino  *Inode
}

func (br *blockReader) ReadAt(p []byte, off int64) (int, error) {
	blocks := br.ino.DataBlocks()
	var base int64
	n := 0
	for _, b := range blocks {
		blen := int64(b.DataLen())
		if off >= base+blen {
			base += blen
			continue
		}
		if len(p) == 0 {
			break
		}
		start := off - base
		if start < 0 {
			start = 0
		}
		data, err := br.fsys.readBlockData(b)
		if err != nil {
			return n, err
		}
		copied := copy(p, data[start:])
		n += copied
		p = p[copied:]
		off += int64(copied)
		base += blen
		if len(p) == 0 {
			break
		}
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// readBlockData fetches one data block's payload straight from flash; the
// restore core never copies payloads into RAM (spec.md section 3).
func (fsys *FS) readBlockData(b *Block) ([]byte, error) {
	buf := make([]byte, b.DataLen())
	if err := fsys.readArea(b.AreaIdx(), b.offset+diskBlockHeaderSize, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

type regFile struct {
	*io.SectionReader
	ino  *Inode
	name string
}

var _ fs.File = (*regFile)(nil)

func (f *regFile) Stat() (fs.FileInfo, error) { return &fileinfo{ino: f.ino, name: path.Base(f.name)}, nil }
func (f *regFile) Close() error               { return nil }

type dirFile struct {
	ino     *Inode
	name    string
	entries []fs.DirEntry
	pos     int
}

var _ fs.ReadDirFile = (*dirFile)(nil)

func (d *dirFile) Stat() (fs.FileInfo, error) { return &fileinfo{ino: d.ino, name: path.Base(d.name)}, nil }
func (d *dirFile) Read(p []byte) (int, error) { return 0, &fs.PathError{Op: "read", Path: d.name, Err: fs.ErrInvalid} }
func (d *dirFile) Close() error               { return nil }

func (d *dirFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if d.entries == nil {
		children := d.ino.Children()
		entries := make([]fs.DirEntry, 0, len(children))
		for _, c := range children {
			entries = append(entries, &fileinfo{ino: c, name: c.Filename()})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
		d.entries = entries
	}

	if n <= 0 {
		rest := d.entries[d.pos:]
		d.pos = len(d.entries)
		return rest, nil
	}
	if d.pos >= len(d.entries) {
		return nil, io.EOF
	}
	end := d.pos + n
	if end > len(d.entries) {
		end = len(d.entries)
	}
	out := d.entries[d.pos:end]
	d.pos = end
	return out, nil
}

type fileinfo struct {
	ino  *Inode
	name string
}

var _ fs.FileInfo = (*fileinfo)(nil)
var _ fs.DirEntry = (*fileinfo)(nil)

func (fi *fileinfo) Name() string { return fi.name }
func (fi *fileinfo) Size() int64  { return fileSize(fi.ino) }
func (fi *fileinfo) Mode() fs.FileMode {
	if fi.ino.IsDir() {
		return fs.ModeDir | 0o555
	}
	return 0o444
}
func (fi *fileinfo) ModTime() time.Time { return time.Time{} }
func (fi *fileinfo) IsDir() bool        { return fi.ino.IsDir() }
func (fi *fileinfo) Sys() any           { return fi.ino }
func (fi *fileinfo) Type() fs.FileMode  { return fi.Mode().Type() }
func (fi *fileinfo) Info() (fs.FileInfo, error) { return fi, nil }
