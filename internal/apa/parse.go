package apa

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/textlab/textlab/internal/reference"
)

const (
	maxParsedAuthors = 5
	minTitleLength   = 10
)

var (
	doiPattern     = regexp.MustCompile(`(?i)10\.\d{4,}/\S+`)
	urlPattern     = regexp.MustCompile(`(?i)https?://\S+`)
	yearPattern    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	authorPattern  = regexp.MustCompile(`[A-Z][a-z]+,?(?:\s+[A-Z]\.?)+`)
	sourcePattern  = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\s+(?:Journal|Review|Magazine)`)
	volumePattern  = regexp.MustCompile(`(\d+)\s*\((\d+)\)`)
	pagesPattern   = regexp.MustCompile(`(\d+)\s*[-–]\s*(\d+)`)
	sentenceEndPat = regexp.MustCompile(`\.\s`)
)

// Parse extracts structured fields from a free-text reference.
//
// Parsing is best effort and never fails: fields that cannot be found keep
// their zero value and the type defaults to book. The passes run in a fixed
// order because the author and title passes are bounded by the year position.
func Parse(raw string) reference.Parsed {
	p := reference.Parsed{
		Authors: []string{},
		Type:    reference.TypeBook,
	}

	p.DOI = extractDOI(raw)
	if u := extractURL(raw); u != "" {
		p.URL = u
		p.Type = reference.TypeWeb
	}

	year, yearStart, yearEnd := extractYear(raw)
	if yearStart >= 0 {
		p.Year = reference.YearPtr(year)
	}

	authorSection := authorSection(raw, yearStart)
	p.Authors = extractAuthors(authorSection)

	if yearStart >= 0 {
		p.Title = extractTitle(raw, len(authorSection), yearStart)
		if p.Title == "" {
			p.Title = titleAfterYear(raw, yearEnd)
		}
	}

	if source, ok := extractSource(raw); ok {
		p.Type = reference.TypeArticle
		p.Source = source
	}

	p.Volume, p.Issue = extractVolumeIssue(raw)
	p.Pages = extractPages(raw)

	return p
}

func extractDOI(raw string) string {
	return doiPattern.FindString(raw)
}

func extractURL(raw string) string {
	return urlPattern.FindString(raw)
}

// extractYear returns the first plausible publication year and its byte
// offsets. start is -1 when no year is present.
func extractYear(raw string) (year, start, end int) {
	loc := yearPattern.FindStringIndex(raw)
	if loc == nil {
		return 0, -1, -1
	}
	year, _ = strconv.Atoi(raw[loc[0]:loc[1]])
	return year, loc[0], loc[1]
}

// authorSection returns the prefix of raw that may hold author names: the
// text before the year, cut after the first sentence-ending period. Periods
// that close an initial and are followed by a comma do not end the section.
func authorSection(raw string, yearStart int) string {
	before := raw
	if yearStart >= 0 {
		before = raw[:yearStart]
	}
	if loc := sentenceEndPat.FindStringIndex(before); loc != nil {
		return before[:loc[0]+1]
	}
	return before
}

func extractAuthors(section string) []string {
	matches := authorPattern.FindAllString(section, maxParsedAuthors)
	if matches == nil {
		return []string{}
	}
	return matches
}

// extractTitle takes the text between the author section and the year.
// Fragments of minTitleLength characters or fewer are rejected.
func extractTitle(raw string, from, yearStart int) string {
	if from >= yearStart {
		return ""
	}
	title := strings.TrimLeft(raw[from:yearStart], ".,;: \t\n")
	title = strings.TrimRight(title, "( \t\n")
	return acceptTitle(title)
}

// titleAfterYear reads the sentence that follows "(Year)." in APA-shaped
// input, used when nothing usable sits between the authors and the year.
func titleAfterYear(raw string, yearEnd int) string {
	if yearEnd < 0 || yearEnd >= len(raw) {
		return ""
	}
	rest := raw[yearEnd:]
	// "(2020, January 15)." carries the date up to the closing parenthesis
	if closing := strings.IndexByte(rest, ')'); closing >= 0 {
		if stop := sentenceEndPat.FindStringIndex(rest); stop == nil || closing < stop[0] {
			rest = rest[closing+1:]
		}
	}
	rest = strings.TrimLeft(rest, ").,;: \t\n")
	if loc := sentenceEndPat.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	return acceptTitle(strings.TrimRight(rest, ". \t\n"))
}

func acceptTitle(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= minTitleLength {
		return ""
	}
	return s
}

func extractSource(raw string) (string, bool) {
	if !strings.Contains(raw, "Journal") && !strings.Contains(raw, "Review") {
		return "", false
	}
	return sourcePattern.FindString(raw), true
}

func extractVolumeIssue(raw string) (volume, issue string) {
	m := volumePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

func extractPages(raw string) string {
	m := pagesPattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return m[1] + "-" + m[2]
}
