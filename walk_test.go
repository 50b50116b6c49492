package ffs_test

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/kclabs/ffs"
)

func TestWalkServesRestoredTree(t *testing.T) {
	main := newArea(256, 1, 1)
	main.writeInode(1, 1, ffs.IDNone, ffs.InodeDirectory, "")
	main.writeInode(2, 1, 1, ffs.InodeDirectory, "dir")
	main.writeInode(3, 1, 1, 0, "root.txt")
	main.writeInode(4, 1, 2, 0, "nested.txt")
	main.writeBlock(10, 1, 4, 0, []byte("hello"))
	scratch := newArea(256, ffs.IDNone, 0)

	flash, descs := image(main, scratch)
	fsys := ffs.Open(flash)
	if err := fsys.RestoreFull(descs); err != nil {
		t.Fatalf("RestoreFull: %v", err)
	}

	w := ffs.NewWalk(fsys)

	entries, err := fs.ReadDir(w, ".")
	if err != nil {
		t.Fatalf("ReadDir(.): %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 root entries, got %d", len(entries))
	}

	data, err := fs.ReadFile(w, "dir/nested.txt")
	if err != nil {
		t.Fatalf("ReadFile(dir/nested.txt): %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("expected file contents %q, got %q", "hello", data)
	}

	if err := fstest.TestFS(w, "root.txt", "dir", "dir/nested.txt"); err != nil {
		t.Errorf("fstest.TestFS: %v", err)
	}
}

func TestWalkOpenMissingFile(t *testing.T) {
	main := newArea(256, 1, 1)
	main.writeInode(1, 1, ffs.IDNone, ffs.InodeDirectory, "")
	scratch := newArea(256, ffs.IDNone, 0)

	flash, descs := image(main, scratch)
	fsys := ffs.Open(flash)
	if err := fsys.RestoreFull(descs); err != nil {
		t.Fatalf("RestoreFull: %v", err)
	}

	w := ffs.NewWalk(fsys)
	if _, err := w.Open("nope.txt"); err == nil {
		t.Error("expected an error opening a nonexistent file")
	}
}
