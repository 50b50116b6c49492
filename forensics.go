package ffs

import (
	"bytes"

	"github.com/klauspost/compress/gzip"
)

// snapshotArea captures the full raw contents of an area, gzip-compressed,
// for RestoreReport.BadScratchSnapshot before corrupt-scratch repair
// reformats it out from under the caller. Forensics capture is opt-in
// (WithForensics) since it costs a full extra area read on every repair.
func (fsys *FS) snapshotArea(areaIdx int) ([]byte, error) {
	raw, err := fsys.readAreaAll(areaIdx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(raw); err != nil {
		gw.Close()
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
