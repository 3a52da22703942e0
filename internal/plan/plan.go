// Package plan computes rename plans for a site export: the mapping from every
// old relative path to its new relative path, decided before anything on disk
// changes.
//
// A Plan always lists directory entries before file entries, and within each
// kind orders entries depth-ascending, so a parent is always planned (and
// later renamed) before anything inside it.
package plan

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

// Kind tells directory entries from file entries.
type Kind int

const (
	// Dir marks a directory entry.
	Dir Kind = iota
	// File marks a file entry.
	File
)

func (k Kind) String() string {
	if k == Dir {
		return "dir"
	}
	return "file"
}

// Entry maps one old relative path to its planned new relative path.
type Entry struct {
	Old  string
	New  string
	Kind Kind
}

// Pair is an old -> new path substitution.
type Pair struct {
	Old string
	New string
}

// Plan is an ordered set of rename entries.
type Plan struct {
	entries []Entry
	dirs    map[string]string
	files   map[string]string
	origins map[string]string

	// Unmapped lists tree entries the plan leaves where they are because no
	// rule covered them. Directories carry a trailing slash.
	Unmapped []string
	// Missing lists rule keys that matched nothing in the tree.
	Missing []string
}

func newPlan(entries []Entry) *Plan {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Kind != b.Kind {
			return a.Kind == Dir
		}
		da, db := tree.Depth(a.Old), tree.Depth(b.Old)
		if da != db {
			return da < db
		}
		return a.Old < b.Old
	})

	p := &Plan{
		entries: entries,
		dirs:    make(map[string]string),
		files:   make(map[string]string),
		origins: make(map[string]string),
	}
	for _, e := range entries {
		if e.Kind == Dir {
			p.dirs[e.Old] = e.New
		} else {
			p.files[e.Old] = e.New
		}
		p.origins[e.New] = e.Old
	}
	return p
}

// Len returns the number of entries.
func (p *Plan) Len() int {
	return len(p.entries)
}

// Entries returns all entries: directories first, then files, each
// depth-ascending.
func (p *Plan) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// Dirs returns the directory entries in rename order.
func (p *Plan) Dirs() []Entry {
	return p.filter(func(e Entry) bool { return e.Kind == Dir })
}

// Files returns the file entries in rename order.
func (p *Plan) Files() []Entry {
	return p.filter(func(e Entry) bool { return e.Kind == File })
}

func (p *Plan) filter(keep func(Entry) bool) []Entry {
	var out []Entry
	for _, e := range p.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// Changed returns the directory and file pairs whose path actually changes.
func (p *Plan) Changed() []Pair {
	return p.changed(func(Entry) bool { return true })
}

// ChangedFiles returns the file pairs whose path actually changes.
func (p *Plan) ChangedFiles() []Pair {
	return p.changed(func(e Entry) bool { return e.Kind == File })
}

func (p *Plan) changed(keep func(Entry) bool) []Pair {
	var out []Pair
	for _, e := range p.entries {
		if e.Old != e.New && keep(e) {
			out = append(out, Pair{Old: e.Old, New: e.New})
		}
	}
	return out
}

// Translate maps an old relative path to where it lives once the plan has
// been applied. Paths below a renamed directory follow their closest renamed
// ancestor; paths the plan does not touch come back unchanged.
func (p *Plan) Translate(old string) string {
	if n, ok := p.files[old]; ok {
		return n
	}
	return follow(old, p.dirs)
}

// Origin is the inverse of Translate for paths of the renamed tree.
func (p *Plan) Origin(current string) string {
	if o, ok := p.origins[current]; ok {
		return o
	}
	inverse := make(map[string]string, len(p.dirs))
	for o, n := range p.dirs {
		inverse[n] = o
	}
	return follow(current, inverse)
}

func follow(rel string, dirs map[string]string) string {
	if n, ok := dirs[rel]; ok {
		return n
	}
	for dir := tree.Parent(rel); dir != "." && dir != "/"; dir = tree.Parent(dir) {
		if n, ok := dirs[dir]; ok {
			return n + rel[len(dir):]
		}
	}
	return rel
}

// Validate checks the ordering invariant: directories before files and every
// planned directory before any entry below it.
func (p *Plan) Validate() error {
	seen := make(map[string]bool, len(p.dirs))
	sawFile := false
	for i, e := range p.entries {
		if e.Kind == Dir && sawFile {
			return fmt.Errorf("entry %d (%s): directory planned after a file", i, e.Old)
		}
		if e.Kind == File {
			sawFile = true
		}
		for dir := tree.Parent(e.Old); dir != "."; dir = tree.Parent(dir) {
			if _, planned := p.dirs[dir]; planned && !seen[dir] {
				return fmt.Errorf("entry %d (%s): parent %s is planned later", i, e.Old, dir)
			}
		}
		if e.Kind == Dir {
			seen[e.Old] = true
		}
	}
	return nil
}

func joinRel(parent, name string) string {
	if parent == "" || parent == "." {
		return name
	}
	return path.Join(parent, name)
}

// dirKey renders a directory path the way tables and reports write it.
func dirKey(rel string) string {
	return strings.TrimSuffix(rel, "/") + "/"
}
