package export

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/textlab/textlab/internal/reference"
)

// Entry is one BibTeX entry. Field names are lower case.
type Entry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// ParseBibTeX reads every entry from r. @string macros are expanded in bare
// values; @comment and @preamble blocks are skipped.
func ParseBibTeX(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bibtex: %w", err)
	}
	p := &bibParser{src: string(data), macros: map[string]string{}}
	return p.parse()
}

// ParseBibTeXFile parses the .bib file at path.
func ParseBibTeXFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseBibTeX(f)
}

type bibParser struct {
	src    string
	pos    int
	macros map[string]string
}

func (p *bibParser) parse() ([]Entry, error) {
	var entries []Entry
	for {
		at := strings.IndexByte(p.src[p.pos:], '@')
		if at < 0 {
			return entries, nil
		}
		p.pos += at + 1

		typ := strings.ToLower(p.ident())
		p.skipSpace()
		if p.eof() || (p.peek() != '{' && p.peek() != '(') {
			continue
		}
		closer := byte('}')
		if p.peek() == '(' {
			closer = ')'
		}
		p.pos++

		switch typ {
		case "comment", "preamble":
			if err := p.skipBlock(closer); err != nil {
				return nil, err
			}
		case "string":
			fields, err := p.fields(closer)
			if err != nil {
				return nil, err
			}
			for k, v := range fields {
				p.macros[k] = v
			}
		default:
			e, err := p.entry(typ, closer)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
}

func (p *bibParser) entry(typ string, closer byte) (Entry, error) {
	p.skipSpace()
	start := p.pos
	for !p.eof() && p.peek() != ',' && p.peek() != closer {
		p.pos++
	}
	key := strings.TrimSpace(p.src[start:p.pos])
	if p.eof() {
		return Entry{}, fmt.Errorf("bibtex entry %q: unterminated", key)
	}
	if p.peek() == closer {
		p.pos++
		return Entry{Type: typ, Key: key, Fields: map[string]string{}}, nil
	}
	p.pos++

	fields, err := p.fields(closer)
	if err != nil {
		return Entry{}, fmt.Errorf("bibtex entry %q: %w", key, err)
	}
	return Entry{Type: typ, Key: key, Fields: fields}, nil
}

// fields reads "name = value" pairs up to and including closer.
func (p *bibParser) fields(closer byte) (map[string]string, error) {
	fields := map[string]string{}
	for {
		p.skipSpace()
		for !p.eof() && p.peek() == ',' {
			p.pos++
			p.skipSpace()
		}
		if p.eof() {
			return nil, fmt.Errorf("unexpected end of input")
		}
		if p.peek() == closer {
			p.pos++
			return fields, nil
		}

		name := strings.ToLower(p.ident())
		if name == "" {
			return nil, fmt.Errorf("expected field name at offset %d", p.pos)
		}
		p.skipSpace()
		if p.eof() || p.peek() != '=' {
			return nil, fmt.Errorf("field %q: expected '='", name)
		}
		p.pos++

		value, err := p.value(closer)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields[name] = value
	}
}

// value reads a braced, quoted or bare value, joining parts concatenated
// with '#'.
func (p *bibParser) value(closer byte) (string, error) {
	var b strings.Builder
	for {
		p.skipSpace()
		if p.eof() {
			return "", fmt.Errorf("missing value")
		}
		switch c := p.peek(); c {
		case '{':
			p.pos++
			s, err := p.until('}')
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case '"':
			p.pos++
			s, err := p.until('"')
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		default:
			start := p.pos
			for !p.eof() && p.peek() != ',' && p.peek() != closer && p.peek() != '#' && !isSpace(p.peek()) {
				p.pos++
			}
			tok := p.src[start:p.pos]
			if m, ok := p.macros[strings.ToLower(tok)]; ok {
				tok = m
			}
			b.WriteString(tok)
		}

		p.skipSpace()
		if p.eof() || p.peek() != '#' {
			return b.String(), nil
		}
		p.pos++
	}
}

// until reads to the matching end delimiter, keeping nested braces.
func (p *bibParser) until(end byte) (string, error) {
	start := p.pos
	depth := 0
	for ; !p.eof(); p.pos++ {
		switch c := p.peek(); {
		case c == '\\':
			p.pos++
		case c == '{':
			depth++
		case c == end && depth == 0:
			s := p.src[start:p.pos]
			p.pos++
			return s, nil
		case c == '}':
			depth--
		}
	}
	return "", fmt.Errorf("unterminated value")
}

func (p *bibParser) skipBlock(closer byte) error {
	if _, err := p.until(closer); err != nil {
		return fmt.Errorf("unterminated block: %w", err)
	}
	return nil
}

func (p *bibParser) ident() string {
	start := p.pos
	for !p.eof() {
		c := rune(p.peek())
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '_' && c != '-' && c != ':' && c != '.' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *bibParser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.pos++
	}
}

func (p *bibParser) eof() bool  { return p.pos >= len(p.src) }
func (p *bibParser) peek() byte { return p.src[p.pos] }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Parsed converts the entry to a reference record keyed by the entry key.
func (e Entry) Parsed() reference.Parsed {
	f := func(name string) string { return cleanValue(e.Fields[name]) }

	p := reference.Parsed{
		RefKey:        e.Key,
		Authors:       splitNames(e.Fields["author"]),
		Editors:       splitNames(e.Fields["editor"]),
		Title:         f("title"),
		Publisher:     f("publisher"),
		Location:      f("address"),
		Volume:        f("volume"),
		Issue:         f("number"),
		Pages:         strings.ReplaceAll(f("pages"), "--", "-"),
		DOI:           normalizeDOI(f("doi")),
		URL:           f("url"),
		RetrievedDate: f("urldate"),
	}
	if y, err := strconv.Atoi(f("year")); err == nil {
		p.Year = &y
	}

	switch e.Type {
	case "article":
		p.Type = reference.TypeArticle
		p.Source = f("journal")
	case "book", "booklet":
		p.Type = reference.TypeBook
	case "incollection", "inbook", "inproceedings", "conference":
		p.Type = reference.TypeChapter
		p.BookTitle = f("booktitle")
		p.Source = p.BookTitle
	case "online", "www", "webpage", "electronic":
		p.Type = reference.TypeWeb
	default:
		p.Type = reference.TypeOther
		p.Source = f("howpublished")
		if p.URL != "" {
			p.Type = reference.TypeWeb
			p.SiteName = p.Source
		}
	}
	if p.Source == "" && p.Type == reference.TypeWeb {
		p.Source = f("organization")
		p.SiteName = p.Source
	}
	return p.Normalize()
}

// splitNames splits a BibTeX name list on " and " and renders each name as
// "Last, F.".
func splitNames(field string) []string {
	field = cleanValue(field)
	if field == "" {
		return nil
	}
	var names []string
	for _, n := range strings.Split(field, " and ") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, apaName(n))
		}
	}
	return names
}

// apaName turns "Smith, John Paul" or "John Paul Smith" into "Smith, J. P.".
// Single-token names are kept as given.
func apaName(name string) string {
	var last, given string
	if l, g, ok := strings.Cut(name, ","); ok {
		last, given = strings.TrimSpace(l), strings.TrimSpace(g)
	} else {
		parts := strings.Fields(name)
		if len(parts) < 2 {
			return name
		}
		last = parts[len(parts)-1]
		given = strings.Join(parts[:len(parts)-1], " ")
	}
	if given == "" {
		return last
	}

	var initials []string
	for _, g := range strings.Fields(given) {
		r := []rune(strings.TrimSuffix(g, "."))
		if len(r) == 0 {
			continue
		}
		initials = append(initials, string(unicode.ToUpper(r[0]))+".")
	}
	return last + ", " + strings.Join(initials, " ")
}

var unescapeReplacer = strings.NewReplacer(
	`\&`, "&",
	`\%`, "%",
	`\$`, "$",
	`\#`, "#",
	`\_`, "_",
	`\{`, "{",
	`\}`, "}",
	`\textasciitilde{}`, "~",
	`\textasciicircum{}`, "^",
)

// cleanValue undoes LaTeX escapes, drops grouping braces and collapses
// whitespace.
func cleanValue(s string) string {
	s = unescapeReplacer.Replace(s)
	s = strings.NewReplacer("{", "", "}", "").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Index records the keys and DOIs of existing BibTeX entries so new entries
// can be checked for duplicates.
type Index struct {
	Keys map[string]bool
	// DOIs maps normalized DOIs to entry keys.
	DOIs map[string]string
}

// NewIndex builds an index over entries.
func NewIndex(entries []Entry) *Index {
	idx := &Index{Keys: make(map[string]bool), DOIs: make(map[string]string)}
	for _, e := range entries {
		idx.Keys[e.Key] = true
		if doi := normalizeDOI(cleanValue(e.Fields["doi"])); doi != "" {
			idx.DOIs[strings.ToLower(doi)] = e.Key
		}
	}
	return idx
}

// LoadIndex indexes the .bib file at path. A missing file gives an empty
// index.
func LoadIndex(path string) (*Index, error) {
	entries, err := ParseBibTeXFile(path)
	if os.IsNotExist(err) {
		return NewIndex(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return NewIndex(entries), nil
}

// HasEntry reports whether an entry with the same DOI, or failing that the
// same key, is already indexed.
func (idx *Index) HasEntry(key, doi string) bool {
	if doi = normalizeDOI(doi); doi != "" {
		if _, ok := idx.DOIs[strings.ToLower(doi)]; ok {
			return true
		}
	}
	return idx.Keys[key]
}

// Add records a key and DOI.
func (idx *Index) Add(key, doi string) {
	idx.Keys[key] = true
	if doi = normalizeDOI(doi); doi != "" {
		idx.DOIs[strings.ToLower(doi)] = key
	}
}

// normalizeDOI strips resolver prefixes from a DOI, keeping its case.
func normalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "doi.org/", "DOI:", "doi:"} {
		doi = strings.TrimPrefix(doi, prefix)
	}
	return strings.TrimSpace(doi)
}

// AppendToBibFile appends BibTeX content to path, creating it if needed.
func AppendToBibFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString("\n" + content)
	return err
}
