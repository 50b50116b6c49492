package ffs_test

import (
	"testing"

	"github.com/kclabs/ffs"
)

// TestParseAreaHeaderRejectsBadMagic covers an unparseable area header:
// RestoreFull silently skips the area itself (it may simply not be part of
// the filesystem), but skipping it here leaves no area at all, which is
// the same no-scratch, no-collision shape as
// TestRestoreNoScratchNoCollisionIsUnrecoverable and so still surfaces as
// ErrNoScratch overall.
func TestParseAreaHeaderRejectsBadMagic(t *testing.T) {
	flash := ffs.NewMemFlash(64)
	flash.WriteAt(0, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0})

	fsys := ffs.Open(flash)
	err := fsys.RestoreFull([]ffs.AreaDesc{{Offset: 0, Length: 64}})
	if err != ffs.ErrNoScratch {
		t.Fatalf("expected ErrNoScratch, got %v", err)
	}
}

func TestParseAreaHeaderFlashError(t *testing.T) {
	flash := ffs.NewMemFlash(8) // too small to even hold one header
	fsys := ffs.Open(flash)
	err := fsys.RestoreFull([]ffs.AreaDesc{{Offset: 0, Length: 64}})
	if err == nil {
		t.Fatal("expected an error reading past the end of a too-small backing store")
	}
}
