package apa

import (
	"strings"
	"time"

	"github.com/textlab/textlab/internal/reference"
)

const (
	// Reference lists spell out up to this many authors.
	maxListedAuthors = 7
	// Longer lists keep this many before "et al.".
	truncatedAuthors = 6

	retrievedDateLayout = "January 2, 2006"
)

// Reference generates the reference-list entry for p, dispatching on its type.
func Reference(p reference.Parsed) string {
	return defaultEngine.Reference(p)
}

func formatReference(p reference.Parsed, now func() time.Time) string {
	p = p.Normalize()
	switch p.Type {
	case reference.TypeBook:
		return formatBook(p)
	case reference.TypeArticle:
		return formatArticle(p)
	case reference.TypeWeb, reference.TypeWebsite:
		return formatWeb(p, now)
	case reference.TypeChapter:
		return formatChapter(p)
	default:
		return formatGeneric(p)
	}
}

// AuthorList renders authors for a reference-list entry.
func AuthorList(authors []string) string {
	switch n := len(authors); {
	case n == 0:
		return ""
	case n == 1:
		return reference.FormatAuthorName(authors[0])
	case n == 2:
		return reference.FormatAuthorName(authors[0]) + " & " + reference.FormatAuthorName(authors[1])
	case n <= maxListedAuthors:
		names := formatNames(authors)
		return strings.Join(names[:n-1], ", ") + ", & " + names[n-1]
	default:
		return strings.Join(formatNames(authors[:truncatedAuthors]), ", ") + " et al."
	}
}

func formatNames(authors []string) []string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = reference.FormatAuthorName(a)
	}
	return names
}

// entry collects the segments of a reference and joins them with spaces,
// skipping empty ones.
type entry []string

func (e *entry) add(s string) {
	if s = strings.TrimSpace(s); s != "" {
		*e = append(*e, s)
	}
}

// sentence adds s terminated by exactly one period.
func (e *entry) sentence(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	if !strings.HasSuffix(s, ".") && !strings.HasSuffix(s, "?") && !strings.HasSuffix(s, "!") {
		s += "."
	}
	*e = append(*e, s)
}

func (e entry) String() string {
	return strings.Join(e, " ")
}

func dated(year *int) string {
	return "(" + yearOrNoDate(year) + ")."
}

func formatBook(p reference.Parsed) string {
	var e entry
	e.add(AuthorList(p.Authors))
	e.add(dated(p.Year))
	e.sentence(p.Title)
	switch {
	case p.Publisher != "" && p.Location != "":
		e.sentence(p.Location + ": " + p.Publisher)
	case p.Publisher != "":
		e.sentence(p.Publisher)
	}
	return e.String()
}

func formatArticle(p reference.Parsed) string {
	var e entry
	e.add(AuthorList(p.Authors))
	e.add(dated(p.Year))
	e.sentence(p.Title)

	var tail []string
	if p.Source != "" {
		tail = append(tail, p.Source)
	}
	if p.Source != "" && p.Volume != "" {
		vol := p.Volume
		if p.Issue != "" {
			vol += "(" + p.Issue + ")"
		}
		tail = append(tail, vol)
	}
	if p.Pages != "" {
		tail = append(tail, p.Pages)
	}
	e.sentence(strings.Join(tail, ", "))
	e.add(doiLink(p.DOI))
	return e.String()
}

func doiLink(doi string) string {
	switch {
	case doi == "":
		return ""
	case strings.HasPrefix(strings.ToLower(doi), "http"):
		return doi
	default:
		return "https://doi.org/" + doi
	}
}

func formatWeb(p reference.Parsed, now func() time.Time) string {
	site := p.SiteName
	if site == "" {
		site = p.Source
	}

	var e entry
	if len(p.Authors) > 0 {
		e.add(AuthorList(p.Authors))
	} else {
		e.add(site)
	}

	switch {
	case p.Year != nil:
		e.add(dated(p.Year))
	case p.RetrievedDate != "":
		e.add("(" + p.RetrievedDate + ").")
	default:
		e.add("(" + now().Format(retrievedDateLayout) + ").")
	}

	e.sentence(p.Title)
	if len(p.Authors) > 0 {
		e.sentence(site)
	}
	e.add(p.URL)
	return e.String()
}

func formatChapter(p reference.Parsed) string {
	book := p.BookTitle
	if book == "" {
		book = p.Source
	}

	var e entry
	e.add(AuthorList(p.Authors))
	e.add(dated(p.Year))
	e.sentence(p.Title)

	if book != "" {
		in := "In "
		if eds := AuthorList(p.Editors); eds != "" {
			in += eds + " " + editorLabel(len(p.Editors)) + ", "
		}
		in += book
		if p.Pages != "" {
			in += " (pp. " + p.Pages + ")"
		}
		e.sentence(in)
	}
	e.sentence(p.Publisher)
	return e.String()
}

func editorLabel(n int) string {
	if n == 1 {
		return "(Ed.)"
	}
	return "(Eds.)"
}

func formatGeneric(p reference.Parsed) string {
	var e entry
	e.add(AuthorList(p.Authors))
	e.add(dated(p.Year))
	e.sentence(p.Title)
	e.sentence(p.Source)
	return e.String()
}
