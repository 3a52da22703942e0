package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/f4ah6o/sitetidy-go/internal/linkcheck"
)

func runCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)

	var (
		common    commonFlags
		jsonOut   bool
		fragments bool
		strict    bool
	)
	common.register(fs)
	fs.BoolVar(&jsonOut, "json", false, "Output the report as JSON")
	fs.BoolVar(&fragments, "fragments", false, "Also verify that #fragment targets exist")
	fs.BoolVar(&strict, "strict", false, "Exit with status 1 when broken links are found")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: sitetidy check [options]

Scan every HTML document under the root, resolve each internal href and
report links whose target does not exist, followed by links that still
carry percent-encoding.

Options:
`)
		fs.PrintDefaults()
	}

	fs.Parse(args)
	cfg := common.load()

	checker := linkcheck.New()
	checker.Skip = cfg.Skip
	checker.Fragments = fragments || cfg.Check.Fragments
	checker.Resolver.UnescapeEntities = cfg.Check.UnescapeEntities

	if !jsonOut {
		log.Printf("Scanning HTML files in %s...", cfg.Root)
	}

	report, err := checker.Check(cfg.Root)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	if jsonOut {
		if err := report.WriteJSON(os.Stdout); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
	} else {
		report.Print(os.Stdout)
	}

	if strict && !report.OK() {
		os.Exit(1)
	}
}
