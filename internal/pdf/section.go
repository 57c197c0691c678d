package pdf

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// optional numbering such as "7." or "VII" before the heading word
	sectionStartPat = regexp.MustCompile(`(?i)^(?:\d+\.?\s+|[IVX]+\.?\s+)?(references|reference list|bibliography|works cited|literature cited)\s*:?$`)
	sectionEndPat   = regexp.MustCompile(`(?i)^(?:\d+\.?\s+|[IVX]+\.?\s+)?(appendix|appendices|acknowledge?ments?|supplementary (?:material|information)|author notes?)\b`)

	// "Smith, J." / "van Dijk, T. A." / "O'Neil, K."
	authorStartPat = regexp.MustCompile(`^(?:[a-z]+\s+)*\p{Lu}[\p{L}'’-]+,\s+\p{Lu}\.`)
	// "[12] ..." or "12. ..."
	numberedStartPat = regexp.MustCompile(`^(?:\[\d+\]|\d+\.)\s+`)
)

// ReferenceSection returns the text after the last reference-list heading,
// up to the next end-matter heading. The last heading is used so a table of
// contents entry is not mistaken for the section itself.
func ReferenceSection(text string) (string, bool) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if sectionStartPat.MatchString(strings.TrimSpace(line)) {
			start = i
		}
	}
	if start < 0 {
		return "", false
	}

	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if sectionEndPat.MatchString(strings.TrimSpace(lines[i])) {
			end = i
			break
		}
	}
	return strings.Join(lines[start+1:end], "\n"), true
}

// SplitEntries breaks a reference section into one string per entry.
//
// A new entry begins at a blank line, at a line that opens with an author
// ("Surname, I.") or at a numbered marker. Other lines continue the current
// entry; a line ending in a hyphen is joined to a following lower-case line
// without a space. Numbered markers are stripped.
func SplitEntries(section string) []string {
	var (
		entries []string
		cur     strings.Builder
	)
	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			entries = append(entries, s)
		}
		cur.Reset()
	}

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}

		if loc := numberedStartPat.FindStringIndex(line); loc != nil {
			flush()
			line = line[loc[1]:]
		} else if authorStartPat.MatchString(line) && endsEntry(cur.String()) {
			flush()
		}

		prev := cur.String()
		switch {
		case prev == "":
		case strings.HasSuffix(prev, "-") && startsLower(line):
			trimmed := strings.TrimSuffix(prev, "-")
			cur.Reset()
			cur.WriteString(trimmed)
		default:
			cur.WriteByte(' ')
		}
		cur.WriteString(line)
	}
	flush()
	return entries
}

// endsEntry reports whether the accumulated text could be a complete entry,
// so that an author-like line after it starts a new one. An entry that ends
// mid-list ("Smith, J., &") keeps absorbing author lines.
func endsEntry(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	return !strings.HasSuffix(s, "&") && !strings.HasSuffix(s, ",") && !strings.HasSuffix(s, " and")
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}
