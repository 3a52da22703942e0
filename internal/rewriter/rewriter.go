// Package rewriter updates the internal links of HTML documents after files
// and directories of the export have been renamed.
package rewriter

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/f4ah6o/sitetidy-go/internal/linkcheck"
	"github.com/f4ah6o/sitetidy-go/internal/plan"
	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

// Mode selects how links are found and rewritten.
type Mode string

const (
	// ModeSubstring replaces every literal and percent-encoded occurrence of
	// an old root-relative path anywhere in the document text. It does not
	// parse HTML and can over-match when an old path is a substring of
	// unrelated text.
	ModeSubstring Mode = "substring"
	// ModeResolve rewrites only href and src attribute values, resolving each
	// against the document's original location and re-relativizing it from
	// the document's new location.
	ModeResolve Mode = "resolve"
)

// ParseMode validates a mode name; the empty string selects ModeSubstring.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeSubstring:
		return ModeSubstring, nil
	case ModeResolve:
		return ModeResolve, nil
	}
	return "", fmt.Errorf("invalid rewrite mode: %s. Must be 'substring' or 'resolve'", s)
}

// Options configures a Rewriter.
type Options struct {
	// Skip lists directory names excluded from the scan.
	Skip []string
	// Mode selects the rewriting strategy.
	Mode Mode
	// DryRun reports which documents would change without writing them.
	DryRun bool
}

// Result reports what a rewrite did.
type Result struct {
	// Files is the number of HTML documents scanned.
	Files int
	// Rewritten lists the documents that changed, relative to the root.
	Rewritten []string
}

// Rewriter rewrites links in the HTML documents of a tree.
type Rewriter struct {
	opts Options
}

// New creates a Rewriter.
func New(opts Options) *Rewriter {
	if opts.Mode == "" {
		opts.Mode = ModeSubstring
	}
	return &Rewriter{opts: opts}
}

// Rewrite applies substring substitution of pairs to every HTML document
// under root. Longer old paths are substituted first so a file path is
// replaced before the directory prefix it contains.
func (r *Rewriter) Rewrite(root string, pairs []plan.Pair) (*Result, error) {
	subs := substitutions(pairs)
	return r.each(root, func(_ string, content string) string {
		for _, s := range subs {
			content = strings.ReplaceAll(content, s.Old, s.New)
		}
		return content
	})
}

// RewritePlan rewrites links after p has been applied to root. In substring
// mode it substitutes pairs; in resolve mode it uses the whole plan.
func (r *Rewriter) RewritePlan(root string, p *plan.Plan, pairs []plan.Pair) (*Result, error) {
	if r.opts.Mode != ModeResolve {
		return r.Rewrite(root, pairs)
	}
	return r.each(root, func(rel, content string) string {
		return resolveLinks(content, p.Origin(rel), rel, p)
	})
}

// each runs fn over every HTML document and writes back those it changed.
func (r *Rewriter) each(root string, fn func(rel, content string) string) (*Result, error) {
	t, err := tree.Scan(root, r.opts.Skip)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for _, rel := range t.HTMLFiles() {
		res.Files++
		p := t.Abs(rel)

		info, err := os.Stat(p)
		if err != nil {
			return res, fmt.Errorf("failed to stat %s: %w", rel, err)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return res, fmt.Errorf("failed to read %s: %w", rel, err)
		}

		content := string(data)
		updated := fn(rel, content)
		if updated == content {
			continue
		}

		if r.opts.DryRun {
			log.Printf("Would fix: %s", rel)
		} else {
			if err := os.WriteFile(p, []byte(updated), info.Mode().Perm()); err != nil {
				return res, fmt.Errorf("failed to write %s: %w", rel, err)
			}
			log.Printf("Fixed: %s", rel)
		}
		res.Rewritten = append(res.Rewritten, rel)
	}
	return res, nil
}

// substitutions expands pairs into ordered plain and percent-encoded
// replacements.
func substitutions(pairs []plan.Pair) []plan.Pair {
	sorted := append([]plan.Pair(nil), pairs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Old) != len(sorted[j].Old) {
			return len(sorted[i].Old) > len(sorted[j].Old)
		}
		return sorted[i].Old < sorted[j].Old
	})

	var subs []plan.Pair
	for _, p := range sorted {
		if p.Old == p.New || p.Old == "" {
			continue
		}
		subs = append(subs, p)
		if enc := Quote(p.Old); enc != p.Old {
			subs = append(subs, plan.Pair{Old: enc, New: Quote(p.New)})
		}
	}
	return subs
}

var attrRe = regexp.MustCompile(`\b(href|src)="([^"]*)"`)

// resolveLinks rewrites the href and src values of a document that moved
// from oldRel to newRel.
func resolveLinks(content, oldRel, newRel string, p *plan.Plan) string {
	oldDir, newDir := path.Dir(oldRel), path.Dir(newRel)

	return attrRe.ReplaceAllStringFunc(content, func(m string) string {
		sub := attrRe.FindStringSubmatch(m)
		value := sub[2]
		if updated, ok := resolveLink(value, oldDir, newDir, p); ok {
			return sub[1] + `="` + updated + `"`
		}
		return m
	})
}

func resolveLink(value, oldDir, newDir string, p *plan.Plan) (string, bool) {
	if value == "" || !linkcheck.IsInternal(value) || hasScheme(value) || strings.HasPrefix(value, "//") {
		return "", false
	}

	target, suffix := value, ""
	if i := strings.IndexAny(value, "?#"); i >= 0 {
		target, suffix = value[:i], value[i:]
	}
	if target == "" {
		return "", false
	}

	encoded := strings.Contains(target, "%")
	decoded := linkcheck.Unquote(target)
	if path.IsAbs(decoded) {
		return "", false
	}

	oldTarget := path.Join(oldDir, decoded)
	if oldTarget == ".." || strings.HasPrefix(oldTarget, "../") {
		return "", false
	}
	newTarget := p.Translate(oldTarget)
	if newTarget == oldTarget && newDir == oldDir {
		return "", false
	}

	rel, err := filepath.Rel(filepath.FromSlash(newDir), filepath.FromSlash(newTarget))
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if strings.HasSuffix(decoded, "/") {
		if rel == "." {
			rel = "./"
		} else {
			rel += "/"
		}
	}
	if encoded {
		rel = Quote(rel)
	}

	updated := rel + suffix
	return updated, updated != value
}

// hasScheme reports whether link starts with a URL scheme such as data: or
// javascript:.
func hasScheme(link string) bool {
	for i, c := range link {
		switch {
		case c == ':':
			return i > 0
		case c == '/' || c == '?' || c == '#':
			return false
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return false
}
