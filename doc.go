// Package ffs restores an in-RAM filesystem graph from a set of flash
// areas written by a log-structured flash filesystem.
//
// The primary entry point is Open, followed by (*FS).RestoreFull, which
// scans every supplied area, merges superseding and dummy-placeholder
// records into an object index, repairs an interrupted garbage-collection
// cycle if one is found, and validates the result before returning. Walk
// adapts a restored FS to io/fs.FS for read-only inspection.
package ffs
