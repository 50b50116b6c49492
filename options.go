package ffs

import "log"

// Option configures an FS at construction time (spec.md section 9's
// process-wide state is otherwise all fixed at Open time, mirroring the
// teacher's functional-option configuration surface).
type Option func(*FS)

// WithInodeCapacity bounds the number of inodes the restore core will
// allocate before returning ErrEnomem. Zero (the default) means unbounded.
func WithInodeCapacity(n int) Option {
	return func(fsys *FS) {
		fsys.inodes = newInodePool(n)
	}
}

// WithBlockCapacity bounds the number of data blocks the restore core will
// allocate before returning ErrEnomem. Zero (the default) means unbounded.
func WithBlockCapacity(n int) Option {
	return func(fsys *FS) {
		fsys.blocks = newBlockPool(n)
	}
}

// WithLogger overrides the *log.Logger used for restore diagnostics. The
// default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(fsys *FS) {
		fsys.logger = l
	}
}

// WithAreaFormatter overrides the collaborator used to reformat a reclaimed
// bad-scratch area during corrupt-scratch repair (spec.md section 4.G step
// 4). The default issues a blank area header through FlashWriter.
func WithAreaFormatter(f AreaFormatter) Option {
	return func(fsys *FS) {
		fsys.formatter = f
	}
}

// WithForensics enables capturing a gzip snapshot of a reclaimed bad
// scratch area into RestoreReport.BadScratchSnapshot before it is
// reformatted (forensics.go). Disabled by default since it requires a
// full extra area read.
func WithForensics(enabled bool) Option {
	return func(fsys *FS) {
		fsys.captureForensics = enabled
	}
}
