package theme

import (
	"path"
	"strings"
)

const (
	pageSuffix     = ".md"
	wikiLinkPrefix = "../wiki/"
)

// ParseURL turns a page path into a link relative to the wiki root:
// "Foo.Bar.md" becomes "../wiki/Foo.Bar".
func ParseURL(url string) string {
	return wikiLinkPrefix + strings.TrimSuffix(url, pageSuffix)
}

// uriReserved are the characters EncodeURI leaves untouched besides
// ASCII letters and digits.
const uriReserved = ";,/?:@&=+$-_.!~*'()#"

// EncodeURI percent-encodes s the way ECMAScript's encodeURI does: every
// byte outside letters, digits and uriReserved is escaped as UTF-8.
func EncodeURI(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnescaped(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isURIUnescaped(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte(uriReserved, c) != -1
}

// relativeURL returns the path from page from to page to, both relative to
// the output root.
func relativeURL(from, to string) string {
	if to == "" {
		return ""
	}
	fromDir := path.Dir(from)
	if fromDir == "." {
		return to
	}
	fromParts := strings.Split(fromDir, "/")
	toParts := strings.Split(to, "/")

	common := 0
	for common < len(fromParts) && common < len(toParts)-1 && fromParts[common] == toParts[common] {
		common++
	}
	var rel []string
	for i := common; i < len(fromParts); i++ {
		rel = append(rel, "..")
	}
	rel = append(rel, toParts[common:]...)
	return strings.Join(rel, "/")
}
