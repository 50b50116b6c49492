// Command ffsrestore restores a filesystem image from a raw or .xz
// compressed flash image dump and reports what it found.
package main

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kclabs/ffs"
	"github.com/ulikunitz/xz"
)

const usage = `ffsrestore - flash filesystem restore CLI tool

Usage:
  ffsrestore info  <image> --area-size <bytes>              Restore and print a summary
  ffsrestore ls    <image> --area-size <bytes> [<path>]      List files under <path>
  ffsrestore cat   <image> --area-size <bytes> <file>        Print a file's contents
  ffsrestore help                                            Show this help message

The image is split into equal-sized areas of --area-size bytes starting at
offset 0; a trailing partial area, if any, is ignored. A path ending in
.xz is transparently decompressed before restore.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	if cmd == "help" {
		fmt.Println(usage)
		return
	}

	if len(os.Args) < 3 {
		fmt.Println("Error: missing image path")
		fmt.Println(usage)
		os.Exit(1)
	}

	imagePath := os.Args[2]
	rest := os.Args[3:]

	areaSize, rest, err := popAreaSize(rest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	fsys, err := restoreImage(imagePath, areaSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to restore %q: %s\n", imagePath, err)
		os.Exit(1)
	}

	switch cmd {
	case "info":
		showInfo(fsys)
	case "ls":
		path := "."
		if len(rest) > 0 {
			path = rest[0]
		}
		if err := listFiles(fsys, path); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	case "cat":
		if len(rest) < 1 {
			fmt.Println("Error: missing file path")
			os.Exit(1)
		}
		if err := catFile(fsys, rest[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Error: unknown command %q\n", cmd)
		fmt.Println(usage)
		os.Exit(1)
	}
}

func popAreaSize(args []string) (uint32, []string, error) {
	for i, a := range args {
		if a == "--area-size" {
			if i+1 >= len(args) {
				return 0, nil, fmt.Errorf("--area-size requires a value")
			}
			n, err := strconv.ParseUint(args[i+1], 10, 32)
			if err != nil {
				return 0, nil, fmt.Errorf("invalid --area-size: %w", err)
			}
			out := append(append([]string{}, args[:i]...), args[i+2:]...)
			return uint32(n), out, nil
		}
	}
	return 0, nil, fmt.Errorf("missing required --area-size flag")
}

func restoreImage(path string, areaSize uint32) (*ffs.FS, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".xz") {
		zr, err := xz.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		decoded, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("xz: %w", err)
		}
		raw = decoded
	}

	if areaSize == 0 || uint32(len(raw)) < areaSize {
		return nil, fmt.Errorf("image too small for area size %d", areaSize)
	}

	numAreas := uint32(len(raw)) / areaSize
	descs := make([]ffs.AreaDesc, numAreas)
	for i := range descs {
		descs[i] = ffs.AreaDesc{Offset: uint32(i) * areaSize, Length: areaSize}
	}

	flash := ffs.NewBufferFlash(raw)
	fsys := ffs.Open(flash, ffs.WithForensics(true))
	if err := fsys.RestoreFull(descs); err != nil {
		return nil, err
	}
	return fsys, nil
}

func showInfo(fsys *ffs.FS) {
	report := fsys.LastReport()

	fmt.Println("Flash Filesystem Restore Report")
	fmt.Println("================================")
	fmt.Printf("Areas:              %d\n", report.NumAreas)
	fmt.Printf("Scratch area:       %d\n", report.ScratchAreaIdx)
	fmt.Printf("Max block payload:  %d bytes\n", fsys.MaxBlockDataSize())
	fmt.Printf("Next object id:     %d\n", fsys.NextID())
	fmt.Printf("Live objects:       %d\n", fsys.ObjectCount())
	if report.RepairedScratch {
		fmt.Println()
		fmt.Println("Repaired an interrupted garbage-collection cycle:")
		fmt.Printf("  good area: %d, bad area: %d\n", report.GoodScratchAreaIdx, report.BadScratchAreaIdx)
		if len(report.BadScratchSnapshot) > 0 {
			fmt.Printf("  captured a %d byte gzip snapshot of the reclaimed area\n", len(report.BadScratchSnapshot))
		}
	}

	var fileCount, dirCount int
	countTree(ffs.NewWalk(fsys), ".", &fileCount, &dirCount)
	fmt.Println()
	fmt.Printf("Directories:        %d\n", dirCount)
	fmt.Printf("Regular files:      %d\n", fileCount)
}

func countTree(w *ffs.Walk, dir string, fileCount, dirCount *int) {
	entries, err := fs.ReadDir(w, dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		sub := entry.Name()
		if dir != "." {
			sub = dir + "/" + sub
		}
		if entry.IsDir() {
			*dirCount++
			countTree(w, sub, fileCount, dirCount)
		} else {
			*fileCount++
		}
	}
}

func listFiles(fsys *ffs.FS, dirPath string) error {
	w := ffs.NewWalk(fsys)
	entries, err := fs.ReadDir(w, dirPath)
	if err != nil {
		return fmt.Errorf("failed to read directory %q: %w", dirPath, err)
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to stat %q: %s\n", entry.Name(), err)
			continue
		}
		typeChar := "-"
		if info.IsDir() {
			typeChar = "d"
		}
		fmt.Printf("%s%s %8d %s %s\n", typeChar, info.Mode().String()[1:], info.Size(),
			info.ModTime().Format(time.Kitchen), entry.Name())
	}
	return nil
}

func catFile(fsys *ffs.FS, filePath string) error {
	w := ffs.NewWalk(fsys)
	data, err := fs.ReadFile(w, filePath)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", filePath, err)
	}
	_, err = os.Stdout.Write(data)
	return err
}
