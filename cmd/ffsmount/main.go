// Command ffsmount mounts a restored flash filesystem image read-only via
// FUSE, for interactive inspection with ordinary shell tools.
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"strconv"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fuse"
	fusefs "github.com/hanwen/go-fuse/v2/fs"
	"github.com/kclabs/ffs"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "usage: ffsmount <image> <area-size> <mountpoint>")
		os.Exit(1)
	}

	imagePath := os.Args[1]
	areaSize, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil {
		log.Fatalf("invalid area size: %s", err)
	}
	mountpoint := os.Args[3]

	raw, err := os.ReadFile(imagePath)
	if err != nil {
		log.Fatalf("reading image: %s", err)
	}

	total := uint32(len(raw))
	n := total / uint32(areaSize)
	descs := make([]ffs.AreaDesc, n)
	for i := range descs {
		descs[i] = ffs.AreaDesc{Offset: uint32(i) * uint32(areaSize), Length: uint32(areaSize)}
	}

	fsys := ffs.Open(ffs.NewBufferFlash(raw))
	if err := fsys.RestoreFull(descs); err != nil {
		log.Fatalf("restore failed: %s", err)
	}

	root := &fuseNode{walk: ffs.NewWalk(fsys), path: "."}
	server, err := fusefs.Mount(mountpoint, root, &fusefs.Options{
		MountOptions: fuse.MountOptions{
			FsName:   "ffs",
			Name:     "ffs",
			Debug:    false,
			ReadOnly: true,
		},
	})
	if err != nil {
		log.Fatalf("mount failed: %s", err)
	}

	log.Printf("mounted %s at %s (read-only)", imagePath, mountpoint)
	server.Wait()
}

// fuseNode bridges a restored filesystem's read-only io/fs.FS view
// (walk.go) to go-fuse's high-level Inode API, grounded on the teacher's
// inode_fuse.go Lookup/OpenDir/ReadDir trio but built on the modern
// fusefs.Inode embedding style rather than the raw fuse.RawFileSystem
// interface the teacher's build-tagged file used.
type fuseNode struct {
	fusefs.Inode
	walk *ffs.Walk
	path string
}

var _ fusefs.NodeLookuper = (*fuseNode)(nil)
var _ fusefs.NodeReaddirer = (*fuseNode)(nil)
var _ fusefs.NodeOpener = (*fuseNode)(nil)
var _ fusefs.NodeReader = (*fuseNode)(nil)
var _ fusefs.NodeGetattrer = (*fuseNode)(nil)

func (n *fuseNode) childPath(name string) string {
	if n.path == "." {
		return name
	}
	return path.Join(n.path, name)
}

func (n *fuseNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fusefs.Inode, syscall.Errno) {
	childPath := n.childPath(name)
	info, err := n.walk.Stat(childPath)
	if err != nil {
		return nil, syscall.ENOENT
	}

	fillAttr(&out.Attr, info)
	out.SetEntryTimeout(time.Second)
	out.SetAttrTimeout(time.Second)

	mode := uint32(fuse.S_IFREG)
	if info.IsDir() {
		mode = fuse.S_IFDIR
	}
	child := n.NewInode(ctx, &fuseNode{walk: n.walk, path: childPath}, fusefs.StableAttr{Mode: mode})
	return child, 0
}

func (n *fuseNode) Readdir(ctx context.Context) (fusefs.DirStream, syscall.Errno) {
	entries, err := fs.ReadDir(n.walk, n.path)
	if err != nil {
		return nil, syscall.ENOENT
	}

	list := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		mode := uint32(fuse.S_IFREG)
		if e.IsDir() {
			mode = fuse.S_IFDIR
		}
		list = append(list, fuse.DirEntry{Name: e.Name(), Mode: mode})
	}
	return fusefs.NewListDirStream(list), 0
}

func (n *fuseNode) Getattr(ctx context.Context, f fusefs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	info, err := n.walk.Stat(n.path)
	if err != nil {
		return syscall.ENOENT
	}
	fillAttr(&out.Attr, info)
	return 0
}

func (n *fuseNode) Open(ctx context.Context, flags uint32) (fusefs.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}
	f, err := n.walk.Open(n.path)
	if err != nil {
		return nil, 0, syscall.ENOENT
	}
	return &fuseFile{f: f}, fuse.FOPEN_KEEP_CACHE, 0
}

func (n *fuseNode) Read(ctx context.Context, f fusefs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	fh, ok := f.(*fuseFile)
	if !ok {
		return nil, syscall.EIO
	}
	ra, ok := fh.f.(interface {
		ReadAt(p []byte, off int64) (int, error)
	})
	if !ok {
		return nil, syscall.EIO
	}
	n2, err := ra.ReadAt(dest, off)
	if err != nil && n2 == 0 {
		return nil, syscall.EIO
	}
	return fuse.ReadResultData(dest[:n2]), 0
}

type fuseFile struct {
	f fs.File
}

func fillAttr(attr *fuse.Attr, info fs.FileInfo) {
	attr.Size = uint64(info.Size())
	attr.Mode = uint32(info.Mode().Perm())
	if info.IsDir() {
		attr.Mode |= fuse.S_IFDIR
	} else {
		attr.Mode |= fuse.S_IFREG
	}
}
