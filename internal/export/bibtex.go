// Package export converts parsed references to and from BibTeX.
package export

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/textlab/textlab/internal/reference"
)

// ToBibTeX renders one reference as a BibTeX entry under key.
func ToBibTeX(key string, p reference.Parsed) string {
	p = p.Normalize()
	entryType := entryTypeFor(p.Type)

	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", entryType, key)

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "  %s = {%s},\n", name, value)
		}
	}

	if len(p.Authors) > 0 {
		field("author", escapeLatex(strings.Join(p.Authors, " and ")))
	}
	if len(p.Editors) > 0 {
		field("editor", escapeLatex(strings.Join(p.Editors, " and ")))
	}
	field("title", escapeLatex(p.Title))

	switch entryType {
	case "article":
		field("journal", escapeLatex(p.Source))
	case "incollection":
		field("booktitle", escapeLatex(firstNonEmpty(p.BookTitle, p.Source)))
	case "misc":
		field("howpublished", escapeLatex(firstNonEmpty(p.SiteName, p.Source)))
	}

	field("publisher", escapeLatex(p.Publisher))
	field("address", escapeLatex(p.Location))
	if p.Year != nil {
		field("year", strconv.Itoa(*p.Year))
	}
	field("volume", p.Volume)
	field("number", p.Issue)
	field("pages", strings.Replace(p.Pages, "-", "--", 1))
	field("doi", p.DOI)
	field("url", p.URL)
	field("urldate", p.RetrievedDate)

	b.WriteString("}\n")
	return b.String()
}

// ToBibTeXList renders refs as BibTeX entries separated by blank lines.
// Each entry uses its RefKey when set, otherwise a generated key; generated
// keys are made unique with a letter suffix.
func ToBibTeXList(refs []reference.Parsed) string {
	used := make(map[string]int, len(refs))
	entries := make([]string, 0, len(refs))
	for _, p := range refs {
		key := p.RefKey
		if key == "" {
			key = CiteKey(p)
			if n := used[key]; n > 0 {
				used[key] = n + 1
				key += suffix(n)
			} else {
				used[key] = 1
			}
		}
		entries = append(entries, ToBibTeX(key, p))
	}
	return strings.Join(entries, "\n")
}

// suffix maps 1, 2, ... to "a", "b", ... and continues with "aa" after "z".
func suffix(n int) string {
	var s []byte
	for n > 0 {
		n--
		s = append([]byte{byte('a' + n%26)}, s...)
		n /= 26
	}
	return string(s)
}

// CiteKey builds a key from the first author's surname and the year, e.g.
// "smith2020". References without authors use "anon" and without a year
// "nd".
func CiteKey(p reference.Parsed) string {
	name := "anon"
	if len(p.Authors) > 0 {
		last, _, _ := strings.Cut(reference.FormatAuthorName(p.Authors[0]), ",")
		if s := keyChars(last); s != "" {
			name = s
		}
	}
	year := "nd"
	if p.Year != nil {
		year = strconv.Itoa(*p.Year)
	}
	return name + year
}

func keyChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return -1
	}, s)
}

func entryTypeFor(t reference.Type) string {
	switch t {
	case reference.TypeArticle:
		return "article"
	case reference.TypeBook:
		return "book"
	case reference.TypeChapter:
		return "incollection"
	default:
		return "misc"
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var latexReplacer = strings.NewReplacer(
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// escapeLatex escapes LaTeX special characters.
func escapeLatex(s string) string {
	return latexReplacer.Replace(s)
}
