package linkcheck

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Link is an href value found in a document.
type Link struct {
	// Raw is the attribute value as written.
	Raw string `json:"link"`
	// Line is the 1-based line the href appears on.
	Line int `json:"line"`
}

var hrefRe = regexp.MustCompile(`href="([^"]+)"`)

// externalPrefixes mark links that never point into the export.
var externalPrefixes = []string{"http://", "https://", "#", "mailto:", "tel:"}

// IsInternal reports whether link may refer to a file of the export.
func IsInternal(link string) bool {
	for _, prefix := range externalPrefixes {
		if strings.HasPrefix(link, prefix) {
			return false
		}
	}
	return true
}

// ExtractLinks returns every internal href="..." value of content with the
// number of the line it appears on. This is a lexical scan, so malformed
// markup is tolerated and attribute context is not checked.
func ExtractLinks(content string) []Link {
	var links []Link
	for i, line := range strings.Split(content, "\n") {
		for _, m := range hrefRe.FindAllStringSubmatch(line, -1) {
			if IsInternal(m[1]) {
				links = append(links, Link{Raw: m[1], Line: i + 1})
			}
		}
	}
	return links
}

// Unquote percent-decodes s. Malformed escapes are kept as written and
// decoded bytes that are not valid UTF-8 become U+FFFD, so decoding never
// fails.
func Unquote(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			buf = append(buf, unhex(s[i+1])<<4|unhex(s[i+2]))
			i += 2
			continue
		}
		buf = append(buf, s[i])
	}
	if !utf8.Valid(buf) {
		return strings.ToValidUTF8(string(buf), "\uFFFD")
	}
	return string(buf)
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}

// Resolver maps links to filesystem paths.
type Resolver struct {
	// UnescapeEntities decodes HTML character references (&amp;, &#x27;)
	// before percent-decoding, the way a browser reads attribute values.
	UnescapeEntities bool
}

// Resolve returns the absolute path link points to when read from the
// document at docPath. It returns false for links that are empty once their
// fragment is removed.
func (r Resolver) Resolve(docPath, link string) (string, bool) {
	target, _, ok := r.Target(docPath, link)
	return target, ok
}

// Target is Resolve that also returns the decoded fragment, if any.
func (r Resolver) Target(docPath, link string) (target, fragment string, ok bool) {
	if r.UnescapeEntities {
		link = html.UnescapeString(link)
	}
	decoded := Unquote(link)
	if i := strings.Index(decoded, "#"); i >= 0 {
		decoded, fragment = decoded[:i], decoded[i+1:]
	}
	if decoded == "" {
		return "", "", false
	}

	p := filepath.FromSlash(decoded)
	if !filepath.IsAbs(p) {
		p = filepath.Join(filepath.Dir(docPath), p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		abs = filepath.Clean(p)
	}
	return abs, fragment, true
}
