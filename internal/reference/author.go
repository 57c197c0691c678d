package reference

import (
	"strings"
	"unicode"
)

// FormatAuthorName renders an author name in "Last, F." form.
//
// A name containing a comma is read as "Last, Given"; otherwise the last
// whitespace-separated token is the surname. A single-letter given name is
// abbreviated with a trailing period, longer given names are kept as written.
// Single-token names are returned unchanged.
func FormatAuthorName(name string) string {
	name = strings.TrimSpace(name)
	if strings.Contains(name, ",") {
		parts := strings.Split(name, ",")
		last := strings.TrimSpace(parts[0])
		given := strings.TrimSpace(parts[1])
		return joinLastGiven(last, given)
	}

	parts := strings.Fields(name)
	if len(parts) < 2 {
		return name
	}
	last := parts[len(parts)-1]
	given := strings.Join(parts[:len(parts)-1], " ")
	return joinLastGiven(last, given)
}

func joinLastGiven(last, given string) string {
	switch {
	case given == "":
		return last
	case len([]rune(given)) == 1:
		return last + ", " + given + "."
	default:
		return last + ", " + given
	}
}

// NormalizeAuthor reduces an author name to a comparison form: lower case,
// punctuation removed, whitespace collapsed.
func NormalizeAuthor(name string) string {
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(name))
	return strings.Join(strings.Fields(stripped), " ")
}

// NormalizeAuthors applies NormalizeAuthor to every name, keeping order.
func NormalizeAuthors(names []string) []string {
	res := make([]string, len(names))
	for i, n := range names {
		res[i] = NormalizeAuthor(n)
	}
	return res
}
