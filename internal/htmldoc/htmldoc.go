// Package htmldoc loads the HTML documents of a site export.
// Documents that declare a legacy charset in a <meta> tag are decoded to UTF-8
// so that link scanning sees the same characters a browser would.
package htmldoc

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/f4ah6o/sitetidy-go/internal/tree"
)

// Document is an HTML file of the export.
type Document struct {
	// Path is the absolute filesystem path.
	Path string
	// RelPath is the slash-separated path relative to the export root.
	RelPath string
	// Content is the decoded document text.
	Content string
}

var (
	metaCharsetRe = regexp.MustCompile(`(?i)<meta[^>]+charset=["']?([^"'\s>;]+)`)
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}
)

// Load reads the document at rel below root.
func Load(root, rel string) (*Document, error) {
	p := tree.Join(root, rel)
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}

	content, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", rel, err)
	}

	return &Document{Path: p, RelPath: rel, Content: content}, nil
}

// Decode converts raw HTML bytes to a string using the charset declared in
// the document, defaulting to UTF-8. Content that is neither valid in its
// declared charset nor valid UTF-8 is rejected.
func Decode(body []byte) (string, error) {
	if bytes.HasPrefix(body, utf8BOM) {
		body = body[len(utf8BOM):]
	} else if enc := encodingFromMeta(body); enc != nil {
		return decodeWithEncoding(body, enc)
	}

	if !utf8.Valid(body) {
		return "", fmt.Errorf("content is not valid UTF-8 and declares no charset")
	}
	return string(body), nil
}

// encodingFromMeta finds a charset declaration in the raw bytes. Both
// <meta charset="..."> and the http-equiv Content-Type form carry a
// "charset=" token, so one pattern covers them. UTF-8 yields nil.
func encodingFromMeta(body []byte) encoding.Encoding {
	m := metaCharsetRe.FindSubmatch(body)
	if len(m) < 2 {
		return nil
	}
	enc, err := htmlindex.Get(string(m[1]))
	if err != nil || enc == unicode.UTF8 {
		return nil
	}
	return enc
}

func decodeWithEncoding(body []byte, enc encoding.Encoding) (string, error) {
	reader := transform.NewReader(bytes.NewReader(body), enc.NewDecoder())
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
