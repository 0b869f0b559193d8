package bucketfs

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// IsValidPath reports whether p can be used as an object key in a URL path.
// It rejects:
//   - empty, ".", and "/" paths
//   - leading or trailing "/"
//   - ".." (path traversal) and "//" (empty segments)
//   - "." segments
//   - the characters \ ? # ~
//   - invalid UTF-8, control characters, DEL, and whitespace
func IsValidPath(p string) bool {
	switch {
	case p == "", p == "/", p == ".":
		return false
	case strings.HasPrefix(p, "/"), strings.HasSuffix(p, "/"):
		return false
	case strings.Contains(p, ".."), strings.Contains(p, "//"):
		return false
	case strings.ContainsAny(p, `\?#~`):
		return false
	case !utf8.ValidString(p):
		return false
	case strings.HasPrefix(p, "./"), strings.Contains(p, "/./"), strings.HasSuffix(p, "/."):
		return false
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f || unicode.IsSpace(r) {
			return false
		}
	}

	return true
}
