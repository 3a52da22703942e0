package plan

import (
	"fmt"
	"path"
	"strings"

	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

// Rule maps one old relative path to a new one. Directory rules end in "/"
// on the From side.
type Rule struct {
	From string `toml:"from" yaml:"from"`
	To   string `toml:"to" yaml:"to"`
}

// Table is a hand-written, ordered list of rename rules.
type Table []Rule

// IsDir reports whether the rule renames a directory.
func (r Rule) IsDir() bool {
	return strings.HasSuffix(r.From, "/")
}

// Validate reports empty or duplicate keys.
func (t Table) Validate() error {
	seen := make(map[string]bool, len(t))
	for i, r := range t {
		from := cleanRel(r.From)
		if from == "" || cleanRel(r.To) == "" {
			return fmt.Errorf("rename rule %d: from and to must both be set", i+1)
		}
		key := from
		if r.IsDir() {
			key = dirKey(from)
		}
		if seen[key] {
			return fmt.Errorf("rename rule %d: duplicate entry for %q", i+1, r.From)
		}
		seen[key] = true
	}
	return nil
}

func (t Table) index() (dirs, files map[string]string) {
	dirs = make(map[string]string)
	files = make(map[string]string)
	for _, r := range t {
		if r.IsDir() {
			dirs[cleanRel(r.From)] = cleanRel(r.To)
		} else {
			files[cleanRel(r.From)] = cleanRel(r.To)
		}
	}
	return dirs, files
}

// FromTable plans renames from an explicit table. Tree entries without a rule
// stay in place and are listed in Unmapped; rules that match nothing are
// listed in Missing. The table is trusted: targets are not checked for
// collisions.
func FromTable(t *tree.Tree, table Table) (*Plan, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	dirRules, fileRules := table.index()

	var entries []Entry
	var unmapped []string
	used := make(map[string]bool)

	for _, rel := range t.Dirs {
		if to, ok := dirRules[rel]; ok {
			entries = append(entries, Entry{Old: rel, New: to, Kind: Dir})
			used[dirKey(rel)] = true
		} else {
			unmapped = append(unmapped, dirKey(rel))
		}
	}
	for _, rel := range t.Files {
		if to, ok := fileRules[rel]; ok {
			entries = append(entries, Entry{Old: rel, New: to, Kind: File})
			used[rel] = true
		} else {
			unmapped = append(unmapped, rel)
		}
	}

	p := newPlan(entries)
	p.Unmapped = unmapped
	for _, r := range table {
		key := cleanRel(r.From)
		if r.IsDir() {
			key = dirKey(key)
		}
		if !used[key] {
			p.Missing = append(p.Missing, r.From)
		}
	}
	return p, nil
}

// cleanRel normalizes a table path to the tree's slash-separated form.
func cleanRel(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = path.Clean(strings.TrimPrefix(p, "./"))
	if p == "." {
		return ""
	}
	return p
}

// Plan builds a plan from the rules alone, without looking at a tree. It is
// used to rewrite links after the renames were already carried out.
func (t Table) Plan() *Plan {
	entries := make([]Entry, 0, len(t))
	for _, r := range t {
		kind := File
		if r.IsDir() {
			kind = Dir
		}
		entries = append(entries, Entry{Old: cleanRel(r.From), New: cleanRel(r.To), Kind: kind})
	}
	return newPlan(entries)
}
