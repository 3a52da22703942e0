package plan

import (
	"reflect"
	"testing"

	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

func newTree(dirs, files []string) *tree.Tree {
	tree.SortByDepth(dirs)
	tree.SortByDepth(files)
	return &tree.Tree{Root: "/site", Dirs: dirs, Files: files}
}

func newNames(p *Plan) map[string]string {
	out := make(map[string]string)
	for _, e := range p.Entries() {
		out[e.Old] = e.New
	}
	return out
}

func TestFromSlugs(t *testing.T) {
	tr := newTree(
		[]string{"HPLC Kılavuzu", "HPLC Kılavuzu/Alt Klasör", ".well-known"},
		[]string{
			"Ünlü Başlık.html",
			"HPLC Kılavuzu/Sorun Çözme 118b67.html",
			"HPLC Kılavuzu/Alt Klasör/Kolon.CSV",
			"HPLC Kılavuzu/Yedek.tar.gz",
			"index.html",
		},
	)

	p := FromSlugs(tr)
	want := map[string]string{
		"HPLC Kılavuzu":                         "hplc-kilavuzu",
		"HPLC Kılavuzu/Alt Klasör":              "hplc-kilavuzu/alt-klasor",
		".well-known":                           "well-known",
		"Ünlü Başlık.html":                      "unlu-baslik.html",
		"HPLC Kılavuzu/Sorun Çözme 118b67.html": "hplc-kilavuzu/sorun-cozme-118b67.html",
		"HPLC Kılavuzu/Alt Klasör/Kolon.CSV":    "hplc-kilavuzu/alt-klasor/kolon.csv",
		"HPLC Kılavuzu/Yedek.tar.gz":            "hplc-kilavuzu/yedek.tar.gz",
		"index.html":                            "index.html",
	}
	if got := newNames(p); !reflect.DeepEqual(got, want) {
		t.Errorf("FromSlugs() =\n%v\nwant\n%v", got, want)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	if n := len(p.Changed()); n != 7 {
		t.Errorf("len(Changed()) = %d, want 7", n)
	}
	if n := len(p.ChangedFiles()); n != 4 {
		t.Errorf("len(ChangedFiles()) = %d, want 4", n)
	}
}

func TestFromSlugsCollisions(t *testing.T) {
	tests := []struct {
		name  string
		dirs  []string
		files []string
		want  map[string]string
	}{
		{
			name:  "second colliding name gets -2",
			files: []string{"ÜNLÜ.html", "Ünlü.html"},
			want: map[string]string{
				"ÜNLÜ.html": "unlu.html",
				"Ünlü.html": "unlu-2.html",
			},
		},
		{
			name:  "existing slug keeps its name",
			files: []string{"A Page.html", "a-page.html"},
			want: map[string]string{
				"A Page.html": "a-page-2.html",
				"a-page.html": "a-page.html",
			},
		},
		{
			name:  "directories and files share a namespace",
			dirs:  []string{"Docs"},
			files: []string{"docs"},
			want: map[string]string{
				"Docs": "docs-2",
				"docs": "docs",
			},
		},
		{
			name:  "suffix skips names already taken",
			files: []string{"a-2.html", "A.html", "a.html", "a!.html"},
			want: map[string]string{
				"a-2.html": "a-2.html",
				"a.html":   "a.html",
				"A.html":   "a-3.html",
				"a!.html":  "a-4.html",
			},
		},
		{
			name:  "same slug in different parents does not collide",
			dirs:  []string{"x", "y"},
			files: []string{"x/Ö.html", "y/Ö.html"},
			want: map[string]string{
				"x":        "x",
				"y":        "y",
				"x/Ö.html": "x/o.html",
				"y/Ö.html": "y/o.html",
			},
		},
		{
			name:  "children follow the parent's new name",
			dirs:  []string{"Ä", "A", "Ä/Sub"},
			files: []string{"Ä/Sub/F.html"},
			want: map[string]string{
				"A":            "a",
				"Ä":            "a-2",
				"Ä/Sub":        "a-2/sub",
				"Ä/Sub/F.html": "a-2/sub/f.html",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := FromSlugs(newTree(tt.dirs, tt.files))
			if got := newNames(p); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromSlugs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromSlugsReservesSkippedNames(t *testing.T) {
	tr := newTree(
		[]string{"Tools", "Docs", "Docs/Tools"},
		[]string{"Tools/page.html", "Docs/Tools/a.html", ".GIT"},
	)
	tr.Skipped = []string{".git", "tools", "Docs/tools"}

	want := map[string]string{
		"Tools":             "tools-2",
		"Tools/page.html":   "tools-2/page.html",
		"Docs":              "docs",
		"Docs/Tools":        "docs/tools-2",
		"Docs/Tools/a.html": "docs/tools-2/a.html",
		".GIT":              "git",
	}
	p := FromSlugs(tr)
	if got := newNames(p); !reflect.DeepEqual(got, want) {
		t.Errorf("FromSlugs() = %v, want %v", got, want)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestPlanOrdering(t *testing.T) {
	tr := newTree(
		[]string{"b", "a", "a/x", "a/x/y", "c/z", "c"},
		[]string{"a/x/y/f.html", "top.html", "a/g.html"},
	)
	p := FromSlugs(tr)

	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	entries := p.Entries()
	sawFile := false
	lastDepth := map[Kind]int{}
	for _, e := range entries {
		if e.Kind == File {
			sawFile = true
		} else if sawFile {
			t.Fatalf("directory %s listed after a file", e.Old)
		}
		if d := tree.Depth(e.Old); d < lastDepth[e.Kind] {
			t.Fatalf("%s (depth %d) listed after depth %d", e.Old, d, lastDepth[e.Kind])
		} else {
			lastDepth[e.Kind] = d
		}
	}
}

func TestValidateRejectsChildBeforeParent(t *testing.T) {
	p := &Plan{
		entries: []Entry{
			{Old: "a/b", New: "a/b", Kind: Dir},
			{Old: "a", New: "x", Kind: Dir},
		},
		dirs: map[string]string{"a": "x", "a/b": "a/b"},
	}
	if err := p.Validate(); err == nil {
		t.Error("Validate() should reject a child planned before its parent")
	}

	p = &Plan{
		entries: []Entry{
			{Old: "f.html", New: "f.html", Kind: File},
			{Old: "a", New: "x", Kind: Dir},
		},
		dirs: map[string]string{"a": "x"},
	}
	if err := p.Validate(); err == nil {
		t.Error("Validate() should reject a directory planned after a file")
	}
}

func TestTranslateAndOrigin(t *testing.T) {
	tr := newTree(
		[]string{"Eski", "Eski/İç"},
		[]string{"Eski/İç/Sayfa.html", "Eski/Resim.png"},
	)
	p := FromSlugs(tr)

	tests := []struct {
		old, new string
	}{
		{"Eski", "eski"},
		{"Eski/İç", "eski/ic"},
		{"Eski/İç/Sayfa.html", "eski/ic/sayfa.html"},
		{"Eski/Resim.png", "eski/resim.png"},
		{"Eski/İç/not-in-plan.pdf", "eski/ic/not-in-plan.pdf"},
		{"elsewhere/x.html", "elsewhere/x.html"},
	}
	for _, tt := range tests {
		if got := p.Translate(tt.old); got != tt.new {
			t.Errorf("Translate(%q) = %q, want %q", tt.old, got, tt.new)
		}
		if got := p.Origin(tt.new); got != tt.old {
			t.Errorf("Origin(%q) = %q, want %q", tt.new, got, tt.old)
		}
	}
}

func TestFromTable(t *testing.T) {
	tr := newTree(
		[]string{"HPLC Kılavuzu", "HPLC Kılavuzu/Alt", "Other"},
		[]string{
			"HPLC Kılavuzu 118b.html",
			"HPLC Kılavuzu/Rehber 106b.html",
			"HPLC Kılavuzu/Alt/Kolon.csv",
			"Other/keep.html",
		},
	)
	table := Table{
		{From: "HPLC Kılavuzu 118b.html", To: "hplc-guide.html"},
		{From: "HPLC Kılavuzu/", To: "hplc-guide/"},
		{From: "HPLC Kılavuzu/Rehber 106b.html", To: "hplc-guide/info-guide.html"},
		{From: "HPLC Kılavuzu/Alt/", To: "hplc-guide/sub/"},
		{From: "HPLC Kılavuzu/Alt/Kolon.csv", To: "hplc-guide/sub/column.csv"},
		{From: "Gone/", To: "gone/"},
	}

	p, err := FromTable(tr, table)
	if err != nil {
		t.Fatalf("FromTable() error: %v", err)
	}

	want := map[string]string{
		"HPLC Kılavuzu":                  "hplc-guide",
		"HPLC Kılavuzu/Alt":              "hplc-guide/sub",
		"HPLC Kılavuzu 118b.html":        "hplc-guide.html",
		"HPLC Kılavuzu/Rehber 106b.html": "hplc-guide/info-guide.html",
		"HPLC Kılavuzu/Alt/Kolon.csv":    "hplc-guide/sub/column.csv",
	}
	if got := newNames(p); !reflect.DeepEqual(got, want) {
		t.Errorf("FromTable() = %v, want %v", got, want)
	}

	wantUnmapped := []string{"Other/", "Other/keep.html"}
	if !reflect.DeepEqual(p.Unmapped, wantUnmapped) {
		t.Errorf("Unmapped = %v, want %v", p.Unmapped, wantUnmapped)
	}
	if !reflect.DeepEqual(p.Missing, []string{"Gone/"}) {
		t.Errorf("Missing = %v, want [Gone/]", p.Missing)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		wantErr bool
	}{
		{"ok", Table{{From: "a.html", To: "b.html"}, {From: "a/", To: "b/"}}, false},
		{"empty to", Table{{From: "a.html", To: ""}}, true},
		{"duplicate", Table{{From: "a.html", To: "b.html"}, {From: "./a.html", To: "c.html"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.table.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTablePlan(t *testing.T) {
	table := Table{
		{From: "Rehber/Alt/Sayfa 1.html", To: "guide/page-1.html"},
		{From: "./Rehber/", To: "guide/"},
	}
	p := table.Plan()

	want := []Entry{
		{Old: "Rehber", New: "guide", Kind: Dir},
		{Old: "Rehber/Alt/Sayfa 1.html", New: "guide/page-1.html", Kind: File},
	}
	if got := p.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
	if got := p.Translate("Rehber/Alt/data.html"); got != "guide/Alt/data.html" {
		t.Errorf("Translate() = %q", got)
	}
	if got := p.Origin("guide/page-1.html"); got != "Rehber/Alt/Sayfa 1.html" {
		t.Errorf("Origin() = %q", got)
	}
}
