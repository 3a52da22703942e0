package linkcheck

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	// ANSI colors for terminal output
	colorHeader  = color.New(color.FgHiMagenta, color.Bold)
	colorBold    = color.New(color.Bold)
	colorSuccess = color.New(color.FgGreen, color.Bold)
	colorError   = color.New(color.FgRed)
	colorWarning = color.New(color.FgYellow)
)

const ruleWidth = 80

// BrokenLink is an internal link whose target does not exist.
type BrokenLink struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Link    string `json:"link"`
	Decoded string `json:"decoded"`
	Target  string `json:"target"`
}

// EncodedLink is an internal link that still contains percent-escapes.
type EncodedLink struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Link    string `json:"link"`
	Decoded string `json:"decoded"`
}

// MissingAnchor is a link whose #fragment is not defined by its target.
type MissingAnchor struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Link     string `json:"link"`
	Target   string `json:"target"`
	Fragment string `json:"fragment"`
}

// Report is the outcome of one Check run.
type Report struct {
	Root           string          `json:"root"`
	Files          int             `json:"files"`
	Links          int             `json:"links"`
	ReadErrors     int             `json:"read_errors"`
	Broken         []BrokenLink    `json:"broken"`
	Encoded        []EncodedLink   `json:"encoded"`
	MissingAnchors []MissingAnchor `json:"missing_anchors,omitempty"`

	FragmentsChecked bool `json:"-"`
}

// OK reports whether every internal link resolved.
func (r *Report) OK() bool {
	return len(r.Broken) == 0
}

// Print writes the human-readable report to w.
func (r *Report) Print(w io.Writer) {
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(w, rule)
	colorHeader.Fprintln(w, "LINK CHECK REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	if r.OK() {
		colorSuccess.Fprintln(w, "SUCCESS! All links are valid!")
		fmt.Fprintf(w, "\nTotal HTML files: %d\n", r.Files)
		fmt.Fprintf(w, "Total links checked: %d\n", r.Links)
	} else {
		r.printBroken(w)
	}

	r.printEncoded(w)
	if r.FragmentsChecked {
		r.printAnchors(w)
	}
}

func (r *Report) printBroken(w io.Writer) {
	colorError.Fprintf(w, "Found %d broken link(s):\n", len(r.Broken))

	files := groupOrder(len(r.Broken), func(i int) string { return r.Broken[i].File })
	for _, file := range files {
		fmt.Fprintln(w)
		colorBold.Fprintf(w, "📄 %s\n", file)
		fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
		for _, b := range r.Broken {
			if b.File != file {
				continue
			}
			fmt.Fprintf(w, "  Line %4d: %s\n", b.Line, b.Link)
			if b.Link != b.Decoded {
				fmt.Fprintf(w, "              Decoded: %s\n", b.Decoded)
			}
			fmt.Fprintf(w, "              Target: %s\n", b.Target)
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", ruleWidth))
	fmt.Fprintf(w, "\nTotal broken links: %d\n", len(r.Broken))
	fmt.Fprintf(w, "Files with issues: %d\n", len(files))
	fmt.Fprintf(w, "Total files checked: %d\n", r.Files)
	fmt.Fprintf(w, "Total links checked: %d\n", r.Links)
}

func (r *Report) printEncoded(w io.Writer) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	colorHeader.Fprintln(w, "CHECKING FOR URL-ENCODED LINKS")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	if len(r.Encoded) == 0 {
		colorSuccess.Fprintln(w, "No URL-encoded internal links found!")
		return
	}

	colorWarning.Fprintf(w, "Found %d URL-encoded link(s):\n", len(r.Encoded))
	files := groupOrder(len(r.Encoded), func(i int) string { return r.Encoded[i].File })
	for _, file := range files {
		fmt.Fprintln(w)
		colorBold.Fprintln(w, file)
		fmt.Fprintln(w, strings.Repeat("-", ruleWidth))
		for _, e := range r.Encoded {
			if e.File != file {
				continue
			}
			fmt.Fprintf(w, "  Line %4d:\n", e.Line)
			fmt.Fprintf(w, "    Encoded: %s\n", e.Link)
			fmt.Fprintf(w, "    Decoded: %s\n", e.Decoded)
			fmt.Fprintln(w)
		}
	}
}

func (r *Report) printAnchors(w io.Writer) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	colorHeader.Fprintln(w, "CHECKING FRAGMENT TARGETS")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	if len(r.MissingAnchors) == 0 {
		colorSuccess.Fprintln(w, "All fragment targets found!")
		return
	}

	colorWarning.Fprintf(w, "Found %d link(s) to missing anchors:\n\n", len(r.MissingAnchors))
	for _, a := range r.MissingAnchors {
		fmt.Fprintf(w, "  %s:%d: %s (no id %q in %s)\n", a.File, a.Line, a.Link, a.Fragment, a.Target)
	}
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// groupOrder returns the distinct keys of n items in first-seen order. Items
// are produced in sorted file order, so this is also sorted.
func groupOrder(n int, key func(int) string) []string {
	var keys []string
	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		k := key(i)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	return keys
}
