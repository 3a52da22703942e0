package rewriter

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/f4ah6o/sitetidy-go/internal/plan"
	"github.com/f4ah6o/sitetidy-go/internal/renamer"
	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"plain/path-name_1.html": "plain/path-name_1.html",
		"old name.html":          "old%20name.html",
		"Ünlü Başlık.html":       "%C3%9Cnl%C3%BC%20Ba%C5%9Fl%C4%B1k.html",
		"a&b=c+d.html":           "a%26b%3Dc%2Bd.html",
		"dir/(1)~x.html":         "dir/%281%29~x.html",
	}
	for in, want := range tests {
		if got := Quote(in); got != want {
			t.Errorf("Quote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeSubstring {
		t.Errorf("ParseMode(\"\") = %v, %v", m, err)
	}
	if m, err := ParseMode("resolve"); err != nil || m != ModeResolve {
		t.Errorf("ParseMode(resolve) = %v, %v", m, err)
	}
	if _, err := ParseMode("fuzzy"); err == nil {
		t.Error("ParseMode(fuzzy) should fail")
	}
}

func TestRewriteSubstring(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", `<a href="Ünlü Başlık.html">plain</a>
<a href="%C3%9Cnl%C3%BC%20Ba%C5%9Fl%C4%B1k.html#top">encoded</a>`)
	writeFile(t, root, "untouched.html", `<a href="other.html">o</a>`)

	pairs := []plan.Pair{{Old: "Ünlü Başlık.html", New: "unlu-baslik.html"}}
	res, err := New(Options{}).Rewrite(root, pairs)
	if err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}

	want := `<a href="unlu-baslik.html">plain</a>
<a href="unlu-baslik.html#top">encoded</a>`
	if got := readFile(t, root, "index.html"); got != want {
		t.Errorf("index.html =\n%s\nwant\n%s", got, want)
	}
	if res.Files != 2 || !reflect.DeepEqual(res.Rewritten, []string{"index.html"}) {
		t.Errorf("Result = %+v", res)
	}
}

func TestRewriteLongestFirst(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", `<a href="Eski Klasör/Sayfa.html">s</a><a href="Eski Klasör/">d</a>`)

	pairs := []plan.Pair{
		{Old: "Eski Klasör", New: "eski-klasor"},
		{Old: "Eski Klasör/Sayfa.html", New: "eski-klasor/sayfa.html"},
	}
	if _, err := New(Options{}).Rewrite(root, pairs); err != nil {
		t.Fatalf("Rewrite() error: %v", err)
	}

	want := `<a href="eski-klasor/sayfa.html">s</a><a href="eski-klasor/">d</a>`
	if got := readFile(t, root, "index.html"); got != want {
		t.Errorf("index.html = %s, want %s", got, want)
	}
}

func TestRewriteSubstringOverMatches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", `<p>see a.html</p><a href="data.html">d</a>`)

	if _, err := New(Options{}).Rewrite(root, []plan.Pair{{Old: "a.html", New: "b.html"}}); err != nil {
		t.Fatal(err)
	}
	// Blind substitution also hits "data.html"; resolve mode exists for this.
	want := `<p>see b.html</p><a href="datb.html">d</a>`
	if got := readFile(t, root, "index.html"); got != want {
		t.Errorf("index.html = %s, want %s", got, want)
	}
}

func TestRewriteDryRun(t *testing.T) {
	root := t.TempDir()
	original := `<a href="old.html">x</a>`
	writeFile(t, root, "index.html", original)

	res, err := New(Options{DryRun: true}).Rewrite(root, []plan.Pair{{Old: "old.html", New: "new.html"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Rewritten) != 1 {
		t.Errorf("Rewritten = %v, want index.html", res.Rewritten)
	}
	if got := readFile(t, root, "index.html"); got != original {
		t.Errorf("dry run modified the file: %s", got)
	}
}

func TestSlugRenameAndRewrite(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Ünlü Başlık.html", `<h1>Başlık</h1>`)
	writeFile(t, root, "index.html", `<a href="Ünlü Başlık.html">1</a><a href="%C3%9Cnl%C3%BC%20Ba%C5%9Fl%C4%B1k.html">2</a>`)

	tr, err := tree.Scan(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	p := plan.FromSlugs(tr)
	if _, err := renamer.Apply(root, p, renamer.Options{}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if _, err := New(Options{}).RewritePlan(root, p, p.ChangedFiles()); err != nil {
		t.Fatalf("RewritePlan() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "unlu-baslik.html")); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	want := `<a href="unlu-baslik.html">1</a><a href="unlu-baslik.html">2</a>`
	if got := readFile(t, root, "index.html"); got != want {
		t.Errorf("index.html = %s, want %s", got, want)
	}
}

func TestRewriteResolveAfterFlattening(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.html", `<a href="Rehber/Alt/Sayfa%201.html#x">deep</a> <img src="Rehber/logo.png"> <a href="https://x.test/Rehber/">ext</a>`)
	writeFile(t, root, "Rehber/Alt/Sayfa 1.html", `<a href="../../index.html">home</a><a href="../logo.png">logo</a><a href="Diğer.html">sib</a><a href="data.html">d</a>`)
	writeFile(t, root, "Rehber/Alt/Diğer.html", "")
	writeFile(t, root, "Rehber/Alt/data.html", "")
	writeFile(t, root, "Rehber/logo.png", "")

	tr, err := tree.Scan(root, nil)
	if err != nil {
		t.Fatal(err)
	}
	table := plan.Table{
		{From: "Rehber/", To: "guide/"},
		{From: "Rehber/Alt/Sayfa 1.html", To: "guide/page-1.html"},
		{From: "Rehber/Alt/Diğer.html", To: "guide/other.html"},
	}
	p, err := plan.FromTable(tr, table)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := renamer.Apply(root, p, renamer.Options{}); err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	rw := New(Options{Mode: ModeResolve})
	res, err := rw.RewritePlan(root, p, p.Changed())
	if err != nil {
		t.Fatalf("RewritePlan() error: %v", err)
	}
	if len(res.Rewritten) != 2 {
		t.Errorf("Rewritten = %v, want index.html and guide/page-1.html", res.Rewritten)
	}

	wantIndex := `<a href="guide/page-1.html#x">deep</a> <img src="guide/logo.png"> <a href="https://x.test/Rehber/">ext</a>`
	if got := readFile(t, root, "index.html"); got != wantIndex {
		t.Errorf("index.html =\n%s\nwant\n%s", got, wantIndex)
	}

	wantPage := `<a href="../index.html">home</a><a href="logo.png">logo</a><a href="other.html">sib</a><a href="Alt/data.html">d</a>`
	if got := readFile(t, root, "guide/page-1.html"); got != wantPage {
		t.Errorf("guide/page-1.html =\n%s\nwant\n%s", got, wantPage)
	}
}

func TestHasScheme(t *testing.T) {
	tests := map[string]bool{
		"data:image/png;base64,xx": true,
		"javascript:void(0)":       true,
		"page.html":                false,
		"dir/a:b.html":             false,
		":odd":                     false,
		"1abc:x":                   false,
	}
	for in, want := range tests {
		if got := hasScheme(in); got != want {
			t.Errorf("hasScheme(%q) = %v, want %v", in, got, want)
		}
	}
	if strings.Contains(Quote("a/b"), "%2F") {
		t.Error("Quote must keep slashes")
	}
}
