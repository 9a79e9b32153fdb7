package compare

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Separator joins the two tool identifiers of a comparison slug.
const Separator = "-vs-"

// Normalize canonicalizes user input: Unicode NFKC, case folding and
// trimming of whitespace and slashes.
func Normalize(slug string) string {
	s := strings.TrimSpace(slug)
	s = strings.Trim(s, "/")
	s = norm.NFKC.String(s)
	return strings.TrimSpace(cases.Fold().String(s))
}

// Split returns the two halves of "a-vs-b". ok is false unless the slug
// contains exactly one separator with non-empty halves.
func Split(slug string) (left, right string, ok bool) {
	if strings.Count(slug, Separator) != 1 {
		return "", "", false
	}
	left, right, _ = strings.Cut(slug, Separator)
	if left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

// pairKey identifies an unordered pair of tools.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}
