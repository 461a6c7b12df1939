package quote

import (
	"regexp"
	"strings"
)

var nonAlnumRegex = regexp.MustCompile(`[^a-z0-9\s]`)

// NormalizeCompanyName lowercases, removes everything that is not a
// letter, digit or space, and trims surrounding whitespace. The result
// is used only for matching, never written back. Normalizing an
// already-normalized name yields the same string.
func NormalizeCompanyName(name string) string {
	normalized := nonAlnumRegex.ReplaceAllString(strings.ToLower(name), "")
	return strings.TrimSpace(normalized)
}
