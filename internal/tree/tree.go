// Package tree walks a static site export and lists its directories and files
// as slash-separated paths relative to the export root.
package tree

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultSkip lists the directory names excluded from traversal when no
// configuration overrides it.
var DefaultSkip = []string{".git", "tools"}

// Tree is a snapshot of the entries below Root.
type Tree struct {
	// Root is the absolute path of the export root.
	Root string
	// Dirs holds every directory except the root, depth-ascending.
	Dirs []string
	// Files holds every non-directory entry, depth-ascending.
	Files []string
	// Skipped holds the entries left out because their name is in the
	// skip-set. They still occupy their names on disk.
	Skipped []string
	// Unreadable holds the directories whose contents could not be listed.
	// They appear in Dirs, but nothing below them does.
	Unreadable []string
}

// Scan walks root and collects its directories and files, skipping any entry
// that has a path component listed in skip.
// Entries of equal depth are ordered lexically so repeated scans of the same
// tree always produce the same order. A subdirectory that cannot be read is
// logged and recorded in Unreadable; only a root that cannot be walked is an
// error.
func Scan(root string, skip []string) (*Tree, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	return scanFS(absRoot, os.DirFS(absRoot), skip)
}

func scanFS(absRoot string, fsys fs.FS, skip []string) (*Tree, error) {
	skipSet := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipSet[name] = true
	}

	t := &Tree{Root: absRoot}
	err := fs.WalkDir(fsys, ".", func(rel string, d fs.DirEntry, err error) error {
		if rel == "." {
			return err
		}
		if err != nil {
			log.Printf("Error reading %s: %v", rel, err)
			t.Unreadable = append(t.Unreadable, rel)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if skipSet[d.Name()] {
			t.Skipped = append(t.Skipped, rel)
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			t.Dirs = append(t.Dirs, rel)
		} else {
			t.Files = append(t.Files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", absRoot, err)
	}

	SortByDepth(t.Dirs)
	SortByDepth(t.Files)
	SortByDepth(t.Skipped)
	return t, nil
}

// HTMLFiles returns the HTML documents of the tree in lexical order.
func (t *Tree) HTMLFiles() []string {
	var docs []string
	for _, f := range t.Files {
		if IsHTML(f) {
			docs = append(docs, f)
		}
	}
	sort.Strings(docs)
	return docs
}

// Abs converts a relative path of the tree into an absolute filesystem path.
func (t *Tree) Abs(rel string) string {
	return Join(t.Root, rel)
}

// Join joins a slash-separated relative path onto an OS root path.
func Join(root, rel string) string {
	if rel == "" || rel == "." {
		return root
	}
	return filepath.Join(root, filepath.FromSlash(rel))
}

// IsHTML reports whether name looks like an HTML document.
func IsHTML(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	return ext == ".html" || ext == ".htm"
}

// Depth returns the number of components in a relative path.
// The root (".") has depth 0.
func Depth(rel string) int {
	if rel == "" || rel == "." {
		return 0
	}
	return strings.Count(rel, "/") + 1
}

// Parent returns the parent of a relative path, "." for top-level entries.
func Parent(rel string) string {
	return path.Dir(rel)
}

// SortByDepth orders relative paths depth-ascending, lexically within a depth.
func SortByDepth(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		di, dj := Depth(paths[i]), Depth(paths[j])
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})
}
