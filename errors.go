package ffs

import (
	"errors"
	"fmt"
)

// Package-specific error variables, usable with errors.Is(). They mirror
// the error taxonomy of spec.md section 6.
var (
	// ErrCorrupt is returned when the on-flash data violates an invariant
	// the format requires: a bad magic value, two records sharing an
	// (id, seq) pair, or an unrecoverable scratch-area ambiguity.
	ErrCorrupt = errors.New("ffs: corrupt filesystem")

	// ErrEnomem is returned when an inode or block allocator pool is
	// exhausted.
	ErrEnomem = errors.New("ffs: out of memory")

	// ErrEnoent is returned by object-index lookups that miss. It never
	// escapes a successful restore; it drives dummy-object synthesis.
	ErrEnoent = errors.New("ffs: object not found")

	// ErrEmpty indicates a read encountered erased flash (0xFFFFFFFF).
	// Internal to the disk-object reader and area scanner.
	ErrEmpty = errors.New("ffs: erased flash")

	// ErrRange indicates a read would cross the declared length of an
	// area. Internal to the area scanner, where it terminates a scan
	// successfully.
	ErrRange = errors.New("ffs: read past area end")

	// ErrNoScratch is returned when no area in the supplied set can serve
	// as the scratch area, even after corrupt-scratch repair.
	ErrNoScratch = errors.New("ffs: no usable scratch area")

	// ErrNoRoot is returned when restore completes without finding a root
	// directory.
	ErrNoRoot = errors.New("ffs: no root directory")

	// ErrScratchTooSmall is returned when the discovered scratch area is
	// not large enough to hold the largest non-scratch area's contents.
	ErrScratchTooSmall = errors.New("ffs: scratch area too small")
)

// FlashError wraps an I/O failure surfaced by the underlying Flash
// implementation, so callers can tell "the medium failed" apart from
// "the format was invalid" while still unwrapping to the original error.
type FlashError struct {
	Area int
	Off  uint32
	Err  error
}

func (e *FlashError) Error() string {
	return fmt.Sprintf("ffs: flash read error at area %d offset %d: %s", e.Area, e.Off, e.Err)
}

func (e *FlashError) Unwrap() error {
	return e.Err
}
