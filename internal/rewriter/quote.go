package rewriter

import "strings"

const upperhex = "0123456789ABCDEF"

// Quote percent-encodes s the way browsers and most static site exporters
// write non-ASCII file names into links: every byte except ASCII letters,
// digits, "_.-~" and "/" becomes %XX with uppercase hex digits.
// url.PathEscape is not used because it also escapes "/" and leaves
// sub-delimiters such as "&" and "=" alone.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldKeep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func shouldKeep(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '_' || c == '.' || c == '-' || c == '~' || c == '/':
		return true
	}
	return false
}
