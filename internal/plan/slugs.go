package plan

import (
	"path"
	"strings"

	"github.com/f4ah6o/sitetidy-go/internal/slug"
	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

// namespace tracks the names already claimed inside each new parent directory.
type namespace map[string]map[string]bool

func (ns namespace) taken(parent, name string) bool {
	return ns[parent][name]
}

// claim reserves the first free name stem+ext, stem-2+ext, ... in parent.
func (ns namespace) claim(parent, stem, ext string) string {
	if ns[parent] == nil {
		ns[parent] = make(map[string]bool)
	}
	name := stem + ext
	for n := 2; ns[parent][name]; n++ {
		name = slug.WithSuffix(stem, ext, n)
	}
	ns[parent][name] = true
	return name
}

// reserve marks name as occupied in parent without planning anything.
func (ns namespace) reserve(parent, name string) {
	if ns[parent] == nil {
		ns[parent] = make(map[string]bool)
	}
	ns[parent][name] = true
}

// newParent returns the planned location of rel's parent directory.
func newParent(dirNew map[string]string, rel string) string {
	parent := tree.Parent(rel)
	if n, ok := dirNew[parent]; ok {
		return n
	}
	return parent
}

type candidate struct {
	rel  string
	kind Kind
	stem string
	ext  string
}

func (c candidate) identity() bool {
	return c.stem+c.ext == path.Base(c.rel)
}

// FromSlugs plans a slug for every directory and file of the tree.
//
// The tree is processed one depth level at a time so each entry's new parent
// is already known. Within a level, entries whose name is already a slug
// claim it first, which keeps an existing clean name from being taken by a
// sibling that merely slugifies to the same string. The remaining directories
// and then files claim names in lexical order, appending -2, -3, ... on
// collision. Entries left out of the scan by the skip-set stay where they
// are, so their names are reserved before anything else claims one.
func FromSlugs(t *tree.Tree) *Plan {
	dirNew := map[string]string{".": "."}
	ns := make(namespace)

	reserved := make(map[int][]string)
	for _, rel := range t.Skipped {
		d := tree.Depth(rel)
		reserved[d] = append(reserved[d], rel)
	}

	levels := make(map[int][]candidate)
	maxDepth := 0
	for _, rel := range t.Dirs {
		d := tree.Depth(rel)
		levels[d] = append(levels[d], candidate{rel: rel, kind: Dir, stem: slug.Make(path.Base(rel))})
		maxDepth = max(maxDepth, d)
	}
	for _, rel := range t.Files {
		d := tree.Depth(rel)
		stem, ext := slug.SplitExt(path.Base(rel))
		levels[d] = append(levels[d], candidate{rel: rel, kind: File, stem: slug.Make(stem), ext: strings.ToLower(ext)})
		maxDepth = max(maxDepth, d)
	}

	var entries []Entry
	assign := func(c candidate) {
		parentNew := newParent(dirNew, c.rel)
		newRel := joinRel(parentNew, ns.claim(parentNew, c.stem, c.ext))
		if c.kind == Dir {
			dirNew[c.rel] = newRel
		}
		entries = append(entries, Entry{Old: c.rel, New: newRel, Kind: c.kind})
	}

	for d := 1; d <= maxDepth; d++ {
		for _, rel := range reserved[d] {
			ns.reserve(newParent(dirNew, rel), path.Base(rel))
		}

		var rest []candidate
		for _, c := range levels[d] {
			parentNew := newParent(dirNew, c.rel)
			if c.identity() && !ns.taken(parentNew, c.stem+c.ext) {
				assign(c)
			} else {
				rest = append(rest, c)
			}
		}
		// Directories precede files in t, so rest keeps that order.
		for _, c := range rest {
			assign(c)
		}
	}

	return newPlan(entries)
}
