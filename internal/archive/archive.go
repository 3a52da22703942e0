// Package archive snapshots a site export into a ZIP file before it is
// restructured, so a bad rename run can be recovered by hand.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

// Snapshot writes every directory and file below root into the ZIP archive
// outFile, skipping entries named in skip. The archive itself is never added,
// even when it is created inside root.
//
// Entry names are slash-separated paths relative to root. Files are
// compressed with DEFLATE; directory entries are kept so empty directories
// survive a restore. It returns the number of files written. On failure no
// partial archive is left behind.
func Snapshot(root, outFile string, skip []string) (int, error) {
	t, err := tree.Scan(root, skip)
	if err != nil {
		return 0, err
	}
	if len(t.Unreadable) > 0 {
		return 0, fmt.Errorf("failed to archive %s: %d unreadable directories", t.Root, len(t.Unreadable))
	}

	absOut, err := filepath.Abs(outFile)
	if err != nil {
		return 0, fmt.Errorf("failed to get absolute path: %w", err)
	}

	log.Printf("Archiving %s to %s...", t.Root, absOut)

	if err := os.MkdirAll(filepath.Dir(absOut), 0755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	zipFile, err := os.Create(absOut)
	if err != nil {
		return 0, fmt.Errorf("failed to create zip file: %w", err)
	}

	files, size, err := writeTree(zipFile, t, absOut)
	if closeErr := zipFile.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close zip file: %w", closeErr)
	}
	if err != nil {
		os.Remove(absOut)
		return 0, err
	}

	log.Printf("Successfully created: %s (%d files, %s)", absOut, files, humanize.Bytes(uint64(size)))
	return files, nil
}

// writeTree streams the entries of t into a ZIP archive on w, leaving out
// the archive's own path.
func writeTree(w io.Writer, t *tree.Tree, absOut string) (files int, size int64, err error) {
	zipWriter := zip.NewWriter(w)
	defer func() {
		if closeErr := zipWriter.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to finalize zip file: %w", closeErr)
		}
	}()

	for _, rel := range t.Dirs {
		if _, err := addEntry(zipWriter, t.Abs(rel), rel); err != nil {
			return files, size, fmt.Errorf("failed to archive %s: %w", rel, err)
		}
	}

	for _, rel := range t.Files {
		p := t.Abs(rel)
		if p == absOut {
			continue
		}
		n, err := addEntry(zipWriter, p, rel)
		if err != nil {
			return files, size, fmt.Errorf("failed to archive %s: %w", rel, err)
		}
		files++
		size += n
	}
	return files, size, nil
}

// addEntry writes one tree entry and returns the number of content bytes
// stored for it.
func addEntry(zw *zip.Writer, path, rel string) (int64, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return 0, err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, err
	}
	header.Name = rel

	if info.IsDir() {
		header.Name += "/"
	} else {
		header.Method = zip.Deflate
	}

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, nil
	}

	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(path)
		if err != nil {
			return 0, err
		}
		n, err := io.WriteString(writer, target)
		return int64(n), err
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	return io.Copy(writer, file)
}
