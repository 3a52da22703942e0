// Package main is the entry point for the sitetidy tool.
// sitetidy maintains a static HTML site export: it renames files and
// directories into clean slugs, rewrites internal links to match, and checks
// that every internal link still resolves.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/f4ah6o/sitetidy-go/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	subcommand := os.Args[1]

	switch subcommand {
	case "check":
		runCheck(os.Args[2:])
	case "slugify":
		runSlugify(os.Args[2:])
	case "rename":
		runRename(os.Args[2:])
	case "rewrite":
		runRewrite(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `sitetidy - Tidy up a static HTML site export

sitetidy renames files and directories with non-ASCII, URL-encoded or
generated names into clean slugs, rewrites internal links to match, and
validates that every internal link resolves.

Usage:
  sitetidy check   [options]
  sitetidy slugify [options]
  sitetidy rename  -map FILE [options]
  sitetidy rewrite -map FILE [options]
  sitetidy serve   [options]
  sitetidy help

Commands:
  check       Report broken and URL-encoded internal links
  slugify     Rename every directory and file to an ASCII slug and fix links
  rename      Rename entries from an explicit table and fix links
  rewrite     Fix links for renames that were already carried out
  serve       Serve the export over HTTP for a manual look
  help        Show this help message

Examples:
  sitetidy check -root site
  sitetidy slugify -root site -backup site-before.zip
  sitetidy rename -root site -map renames.yaml -dry-run
  sitetidy rewrite -root site -map renames.toml -mode resolve

Settings are read from sitetidy.toml in the current directory (or -config).
Command line flags override the file.

For more information on a command, use:
  sitetidy <command> -h
`)
}

// commonFlags are shared by every subcommand that works on a tree.
type commonFlags struct {
	root       string
	configPath string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.root, "root", "", "Root directory of the site export (default: config root or .)")
	fs.StringVar(&c.configPath, "config", "", "Path to the configuration file (default: "+config.DefaultFile+" if present)")
}

// load reads the configuration and applies the -root override.
func (c *commonFlags) load() *config.Config {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	if c.root != "" {
		cfg.Root = c.root
	}

	if info, err := os.Stat(cfg.Root); err != nil || !info.IsDir() {
		log.Fatalf("Error: root directory not found: %s", cfg.Root)
	}
	return cfg
}
