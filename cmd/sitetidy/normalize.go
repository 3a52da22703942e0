package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/f4ah6o/sitetidy-go/internal/archive"
	"github.com/f4ah6o/sitetidy-go/internal/config"
	"github.com/f4ah6o/sitetidy-go/internal/plan"
	"github.com/f4ah6o/sitetidy-go/internal/renamer"
	"github.com/f4ah6o/sitetidy-go/internal/rewriter"
	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

// normalizeFlags are shared by slugify, rename and rewrite.
type normalizeFlags struct {
	commonFlags
	dryRun  bool
	backup  string
	mode    string
	mapFile string
}

func (n *normalizeFlags) register(fs *flag.FlagSet, withRename bool) {
	n.commonFlags.register(fs)
	fs.BoolVar(&n.dryRun, "dry-run", false, "Show what would change without touching any file")
	fs.StringVar(&n.mode, "mode", "", "Link rewrite mode: substring or resolve (default: config mode or substring)")
	if withRename {
		fs.StringVar(&n.backup, "backup", "", "Write a ZIP snapshot of the root to this file before renaming")
	}
}

func (n *normalizeFlags) rewriterFor(cfg *config.Config) *rewriter.Rewriter {
	name := n.mode
	if name == "" {
		name = cfg.Rewrite.Mode
	}
	mode, err := rewriter.ParseMode(name)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return rewriter.New(rewriter.Options{Skip: cfg.Skip, Mode: mode, DryRun: n.dryRun})
}

// table returns the rename table from -map, falling back to the config file.
func (n *normalizeFlags) table(cfg *config.Config) plan.Table {
	if n.mapFile != "" {
		t, err := config.LoadTable(n.mapFile)
		if err != nil {
			log.Fatalf("Error: %v", err)
		}
		return t
	}
	if len(cfg.Rename) == 0 {
		log.Fatalf("Error: no rename table: pass -map FILE or add [[rename]] entries to %s", config.DefaultFile)
	}
	return cfg.Rename
}

func runSlugify(args []string) {
	fs := flag.NewFlagSet("slugify", flag.ExitOnError)

	var n normalizeFlags
	n.register(fs, true)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sitetidy slugify [options]

Rename every directory and file under the root to an ASCII slug
("Ünlü Başlık.html" -> "unlu-baslik.html"), then rewrite the links of all
HTML documents to the new file names.

Options:
`)
		fs.PrintDefaults()
	}

	fs.Parse(args)
	cfg := n.load()

	t, err := tree.Scan(cfg.Root, cfg.Skip)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	p := plan.FromSlugs(t)
	log.Printf("Planned %d directories and %d files", len(p.Dirs()), len(p.Files()))

	executeNormalize(cfg, &n, p, p.ChangedFiles())
}

func runRename(args []string) {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)

	var n normalizeFlags
	n.register(fs, true)
	fs.StringVar(&n.mapFile, "map", "", "Rename table (.toml, .yaml or .yml); defaults to [[rename]] in the config")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sitetidy rename [-map FILE] [options]

Rename directories and files according to an explicit table, then rewrite
the links of all HTML documents. Directory entries end in "/":

  rename:
    - from: "Eski Klasör/"
      to: "eski-klasor/"
    - from: "Eski Klasör/Sayfa 1.html"
      to: "eski-klasor/sayfa-1.html"

Options:
`)
		fs.PrintDefaults()
	}

	fs.Parse(args)
	cfg := n.load()
	table := n.table(cfg)

	t, err := tree.Scan(cfg.Root, cfg.Skip)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	p, err := plan.FromTable(t, table)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	for _, key := range p.Missing {
		log.Printf("Warning: rename entry matches nothing in the tree: %s", key)
	}
	if len(p.Unmapped) > 0 {
		log.Printf("Warning: %d entries have no rename entry and stay in place", len(p.Unmapped))
		for _, rel := range p.Unmapped {
			log.Printf("  unmapped: %s", rel)
		}
	}

	executeNormalize(cfg, &n, p, p.Changed())
}

func runRewrite(args []string) {
	fs := flag.NewFlagSet("rewrite", flag.ExitOnError)

	var n normalizeFlags
	n.register(fs, false)
	fs.StringVar(&n.mapFile, "map", "", "Rename table (.toml, .yaml or .yml); defaults to [[rename]] in the config")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sitetidy rewrite [-map FILE] [options]

Rewrite the links of all HTML documents for renames that already happened.
Nothing is renamed.

Options:
`)
		fs.PrintDefaults()
	}

	fs.Parse(args)
	cfg := n.load()
	p := n.table(cfg).Plan()

	res, err := n.rewriterFor(cfg).RewritePlan(cfg.Root, p, p.Changed())
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	printRewriteSummary(res, n.dryRun)
}

// executeNormalize backs up, renames and rewrites for a computed plan.
func executeNormalize(cfg *config.Config, n *normalizeFlags, p *plan.Plan, pairs []plan.Pair) {
	rw := n.rewriterFor(cfg)

	if n.backup != "" {
		if n.dryRun {
			log.Printf("Would archive %s to %s", cfg.Root, n.backup)
		} else if _, err := archive.Snapshot(cfg.Root, n.backup, cfg.Skip); err != nil {
			log.Fatalf("Failed to create backup: %v", err)
		}
	}

	log.Println("Step 1: Renaming...")
	res, err := renamer.Apply(cfg.Root, p, renamer.Options{DryRun: n.dryRun})
	if err != nil {
		log.Fatalf("Rename failed: %v", err)
	}
	log.Printf("%d renamed, %d already in place", len(res.Moved), res.Unchanged)

	if n.dryRun {
		// The tree is untouched, so rewriting would look for documents
		// under their new names.
		log.Printf("Step 2: Skipping link rewrite (%d path changes would be applied)", len(pairs))
		return
	}

	log.Println("Step 2: Rewriting links...")
	rewritten, err := rw.RewritePlan(cfg.Root, p, pairs)
	if err != nil {
		log.Fatalf("Rewrite failed: %v", err)
	}
	printRewriteSummary(rewritten, false)
}

func printRewriteSummary(res *rewriter.Result, dryRun bool) {
	verb := "Updated"
	if dryRun {
		verb = "Would update"
	}
	fmt.Printf("\n✅ %s %d of %d HTML files\n", verb, len(res.Rewritten), res.Files)
}
