package ffs_test

import (
	"testing"

	"github.com/kclabs/ffs"
)

func TestInodeFlagsOperations(t *testing.T) {
	testCases := []struct {
		flag     ffs.InodeFlags
		expected string
	}{
		{ffs.InodeDeleted, "DELETED"},
		{ffs.InodeDummy, "DUMMY"},
		{ffs.InodeDirectory, "DIRECTORY"},
		{ffs.InodeDeleted | ffs.InodeDirectory, "DELETED|DIRECTORY"},
		{0, ""},
	}

	for _, tc := range testCases {
		if got := tc.flag.String(); got != tc.expected {
			t.Errorf("flag %d: expected %q, got %q", tc.flag, tc.expected, got)
		}
	}

	flags := ffs.InodeDummy | ffs.InodeDirectory
	if !flags.Has(ffs.InodeDummy) {
		t.Errorf("flags should have DUMMY")
	}
	if !flags.Has(ffs.InodeDirectory) {
		t.Errorf("flags should have DIRECTORY")
	}
	if flags.Has(ffs.InodeDeleted) {
		t.Errorf("flags should not have DELETED")
	}
}

func TestBlockFlagsOperations(t *testing.T) {
	testCases := []struct {
		flag     ffs.BlockFlags
		expected string
	}{
		{ffs.BlockDeleted, "DELETED"},
		{ffs.BlockDummy, "DUMMY"},
		{ffs.BlockDeleted | ffs.BlockDummy, "DELETED|DUMMY"},
		{0, ""},
	}

	for _, tc := range testCases {
		if got := tc.flag.String(); got != tc.expected {
			t.Errorf("flag %d: expected %q, got %q", tc.flag, tc.expected, got)
		}
	}
}
