package apa

import (
	"strconv"
	"strings"

	"github.com/textlab/textlab/internal/reference"
)

const (
	noDate = "n.d."

	// Above this many authors an in-text citation collapses to "First et al.".
	maxCitationAuthors = 5
)

// Citation generates the parenthetical in-text citation for p.
// The result is never empty.
func Citation(p reference.Parsed) string {
	p = p.Normalize()

	if len(p.Authors) == 0 {
		return citationWithoutAuthors(p)
	}

	names := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		names[i] = reference.FormatAuthorName(a)
	}

	var who string
	switch n := len(names); {
	case n == 1:
		who = names[0]
	case n == 2:
		who = names[0] + " & " + names[1]
	case n <= maxCitationAuthors:
		who = strings.Join(names[:n-1], ", ") + ", & " + names[n-1]
	default:
		who = names[0] + " et al."
	}
	return "(" + who + ", " + yearOrNoDate(p.Year) + ")"
}

// citationWithoutAuthors falls back to the citation key. With no year either,
// the key is returned verbatim since it is usually already parenthesized.
func citationWithoutAuthors(p reference.Parsed) string {
	key := p.CitationKey
	switch {
	case p.Year == nil && key != "":
		return key
	case p.Year == nil:
		return "(" + noDate + ")"
	case key != "":
		return "(" + key + ", " + strconv.Itoa(*p.Year) + ")"
	default:
		return "(" + noDate + ", " + strconv.Itoa(*p.Year) + ")"
	}
}

func yearOrNoDate(year *int) string {
	if year == nil {
		return noDate
	}
	return strconv.Itoa(*year)
}
