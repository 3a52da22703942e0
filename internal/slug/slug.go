// Package slug turns arbitrary file and directory names into lowercase ASCII
// slugs that are safe in both filesystem paths and URLs.
package slug

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholder is returned when nothing of the input survives slugification.
const Placeholder = "item"

// maxExtSegments bounds the extension chain kept by SplitExt (".tar.gz").
const maxExtSegments = 2

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
	extSegRe   = regexp.MustCompile(`^[A-Za-z0-9]{1,5}$`)

	// Letters without a canonical decomposition that would otherwise be
	// dropped entirely by the ASCII filter.
	folder = strings.NewReplacer(
		"ı", "i",
		"ß", "ss",
		"ø", "o", "Ø", "O",
		"ł", "l", "Ł", "L",
		"đ", "d", "Đ", "D",
		"æ", "ae", "Æ", "AE",
		"œ", "oe", "Œ", "OE",
		"þ", "th", "Þ", "TH",
		"ð", "d", "Ð", "D",
	)
)

// Make converts text into a slug: accents are decomposed and stripped,
// remaining non-ASCII is dropped, letters are lowercased and every run of
// other characters becomes a single hyphen. Make is idempotent on slugs.
func Make(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, folder.Replace(text))
	if err != nil {
		decomposed = text
	}

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r <= unicode.MaxASCII {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	s := strings.Trim(nonAlnumRe.ReplaceAllString(b.String(), "-"), "-")
	if s == "" {
		return Placeholder
	}
	return s
}

// SplitExt splits a file name into its stem and its extension chain, e.g.
// "backup.tar.gz" -> ("backup", ".tar.gz"). An extension segment is a short
// alphanumeric run containing at least one letter; a leading dot (".htaccess")
// never starts an extension.
func SplitExt(name string) (stem, ext string) {
	stem = name
	for i := 0; i < maxExtSegments; i++ {
		dot := strings.LastIndex(stem, ".")
		if dot <= 0 {
			break
		}
		seg := stem[dot+1:]
		if !extSegRe.MatchString(seg) || !strings.ContainsFunc(seg, unicode.IsLetter) {
			break
		}
		stem = stem[:dot]
	}
	return stem, name[len(stem):]
}

// File slugifies a file name, keeping its lowercased extension chain.
func File(name string) string {
	stem, ext := SplitExt(name)
	return Make(stem) + strings.ToLower(ext)
}

// WithSuffix appends a numeric collision suffix to a slugified file or
// directory name, before its extension chain: ("a", ".html", 2) -> "a-2.html".
func WithSuffix(stem, ext string, n int) string {
	if n < 2 {
		return stem + ext
	}
	return stem + "-" + strconv.Itoa(n) + ext
}
