// Package linkcheck validates the internal links of a static site export.
//
// Every HTML document under the root is scanned for href values that point
// into the export; each is resolved against the document's directory and
// checked for existence. A second pass flags links that still carry
// percent-encoding, which usually means a file was not renamed to a clean
// slug. An optional third pass verifies #fragment targets.
package linkcheck

import (
	"log"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/f4ah6o/sitetidy-go/internal/htmldoc"
	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

// ExistenceCache memoizes filesystem existence checks for a single run.
// It must not outlive the run: any change to the tree makes it stale.
type ExistenceCache struct {
	known map[string]bool
}

// NewExistenceCache returns an empty cache.
func NewExistenceCache() *ExistenceCache {
	return &ExistenceCache{known: make(map[string]bool)}
}

// Exists reports whether p exists, consulting the filesystem once per path.
func (c *ExistenceCache) Exists(p string) bool {
	if ok, hit := c.known[p]; hit {
		return ok
	}
	_, err := os.Stat(p)
	c.known[p] = err == nil
	return c.known[p]
}

// anchorCacheSize bounds how many parsed documents keep their anchor sets in
// memory during a fragment pass.
const anchorCacheSize = 512

// anchorCache holds the ids and anchor names of HTML targets. A document is
// parsed again only after it was evicted.
type anchorCache struct {
	anchors *lru.Cache[string, map[string]bool]
}

func newAnchorCache() *anchorCache {
	cache, err := lru.New[string, map[string]bool](anchorCacheSize)
	if err != nil {
		panic(err)
	}
	return &anchorCache{anchors: cache}
}

// has reports whether the document at p defines fragment. ok is false when
// the document could not be parsed.
func (c *anchorCache) has(p, fragment string) (found, ok bool) {
	ids, hit := c.anchors.Get(p)
	if !hit {
		ids = loadAnchors(p)
		c.anchors.Add(p, ids)
	}
	if ids == nil {
		return false, false
	}
	return ids[fragment], true
}

func loadAnchors(p string) map[string]bool {
	raw, err := os.ReadFile(p)
	if err != nil {
		log.Printf("Warning: could not read %s: %v", p, err)
		return nil
	}
	content, err := htmldoc.Decode(raw)
	if err != nil {
		log.Printf("Warning: could not decode %s: %v", p, err)
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		log.Printf("Warning: could not parse %s: %v", p, err)
		return nil
	}

	ids := make(map[string]bool)
	doc.Find("[id]").Each(func(_ int, s *goquery.Selection) {
		if id, exists := s.Attr("id"); exists {
			ids[id] = true
		}
	})
	doc.Find("a[name]").Each(func(_ int, s *goquery.Selection) {
		if name, exists := s.Attr("name"); exists {
			ids[name] = true
		}
	})
	return ids
}

// Checker scans a tree for broken internal links.
type Checker struct {
	// Skip lists directory names excluded from the scan.
	Skip []string
	// Resolver turns links into filesystem paths.
	Resolver Resolver
	// Fragments enables the #fragment pass.
	Fragments bool
}

// New creates a Checker with the default skip-set.
func New() *Checker {
	return &Checker{Skip: tree.DefaultSkip}
}

type scannedDoc struct {
	rel   string
	links []Link
}

// Check scans every HTML document under root in sorted order and returns the
// report. Unreadable documents and directories are logged, counted in
// ReadErrors and skipped; Check only fails when root itself cannot be walked.
func (c *Checker) Check(root string) (*Report, error) {
	t, err := tree.Scan(root, c.Skip)
	if err != nil {
		return nil, err
	}
	docs := t.HTMLFiles()
	log.Printf("Found %d HTML files", len(docs))

	rep := &Report{
		Root:             t.Root,
		Files:            len(docs),
		ReadErrors:       len(t.Unreadable),
		FragmentsChecked: c.Fragments,
	}
	exists := NewExistenceCache()
	anchors := newAnchorCache()
	var scanned []scannedDoc

	for _, rel := range docs {
		doc, err := htmldoc.Load(t.Root, rel)
		if err != nil {
			log.Printf("Error reading %s: %v", rel, err)
			rep.ReadErrors++
			continue
		}

		links := ExtractLinks(doc.Content)
		rep.Links += len(links)
		scanned = append(scanned, scannedDoc{rel: rel, links: links})

		for _, l := range links {
			target, fragment, ok := c.Resolver.Target(doc.Path, l.Raw)
			if !ok {
				continue
			}
			if !exists.Exists(target) {
				rep.Broken = append(rep.Broken, BrokenLink{
					File:    rel,
					Line:    l.Line,
					Link:    l.Raw,
					Decoded: Unquote(l.Raw),
					Target:  target,
				})
				continue
			}
			if c.Fragments && fragment != "" && tree.IsHTML(target) {
				if found, parsed := anchors.has(target, fragment); parsed && !found {
					rep.MissingAnchors = append(rep.MissingAnchors, MissingAnchor{
						File:     rel,
						Line:     l.Line,
						Link:     l.Raw,
						Target:   target,
						Fragment: fragment,
					})
				}
			}
		}
	}

	for _, s := range scanned {
		for _, l := range s.links {
			if strings.Contains(l.Raw, "%") && !strings.HasPrefix(l.Raw, "http") {
				rep.Encoded = append(rep.Encoded, EncodedLink{
					File:    s.rel,
					Line:    l.Line,
					Link:    l.Raw,
					Decoded: Unquote(l.Raw),
				})
			}
		}
	}

	return rep, nil
}
