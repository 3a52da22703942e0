// Package renamer applies a rename plan to the filesystem.
//
// Directories are moved shallowest first and each entry's current location is
// re-derived from the already renamed parent, so nested renames never act on a
// stale path. The batch is not transactional: the first failure stops it and
// leaves earlier moves in place.
package renamer

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/f4ah6o/sitetidy-go/internal/plan"
	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

// ErrTargetExists is returned when a rename target is occupied by an
// unrelated entry.
var ErrTargetExists = errors.New("target already exists")

// Options controls Apply.
type Options struct {
	// DryRun logs the moves without touching the filesystem.
	DryRun bool
}

// Result reports what Apply did.
type Result struct {
	// Moved lists the moves performed (or, in dry-run mode, planned), as
	// current -> target relative paths.
	Moved []plan.Pair
	// Unchanged counts entries already at their target.
	Unchanged int
}

// Apply renames every entry of p below root.
func Apply(root string, p *plan.Plan, opts Options) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid plan: %w", err)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	l := &locator{moved: make(map[string]string)}
	res := &Result{}

	for _, e := range p.Entries() {
		current := l.current(e.Old)
		if e.Kind == plan.Dir {
			l.moved[e.Old] = e.New
		}

		if current == e.New {
			res.Unchanged++
			continue
		}

		if opts.DryRun {
			log.Printf("Would rename: %s -> %s", current, e.New)
		} else {
			if err := move(tree.Join(absRoot, current), tree.Join(absRoot, e.New)); err != nil {
				return res, fmt.Errorf("failed to rename %s to %s: %w", current, e.New, err)
			}
			log.Printf("Renamed: %s -> %s", current, e.New)
		}
		res.Moved = append(res.Moved, plan.Pair{Old: current, New: e.New})
	}

	return res, nil
}

// locator tracks where directories live while a plan is being applied.
type locator struct {
	moved map[string]string
}

// current returns the present location of an original relative path: its
// parent's location (after any rename already applied) joined with its own
// original name.
func (l *locator) current(rel string) string {
	if rel == "." {
		return "."
	}
	parent := tree.Parent(rel)
	if parent == "." {
		return path.Base(rel)
	}
	return path.Join(l.dir(parent), path.Base(rel))
}

func (l *locator) dir(rel string) string {
	if n, ok := l.moved[rel]; ok {
		return n
	}
	return l.current(rel)
}

func move(from, to string) error {
	src, err := os.Lstat(from)
	if err != nil {
		return err
	}
	if dst, err := os.Lstat(to); err == nil {
		// A case-only rename on a case-insensitive filesystem sees the
		// source under the target name.
		if !os.SameFile(src, dst) {
			return fmt.Errorf("%s: %w", to, ErrTargetExists)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	return os.Rename(from, to)
}
