package apa

import (
	"strings"

	"github.com/textlab/textlab/internal/reference"
)

// Format is the encoding of an assembled reference list.
type Format string

const (
	FormatText  Format = "text"
	FormatHTML  Format = "html"
	FormatLaTeX Format = "latex"
)

// ParseFormat maps a format name to a Format. Unknown names yield FormatText.
func ParseFormat(s string) Format {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatLaTeX:
		return f
	default:
		return FormatText
	}
}

// ReferenceList formats every reference and wraps each entry with the
// hanging-indent markup of the requested format, one entry per line.
func ReferenceList(refs []reference.Parsed, format Format) string {
	return defaultEngine.ReferenceList(refs, format)
}

func wrapEntry(entry string, format Format) string {
	switch ParseFormat(string(format)) {
	case FormatHTML:
		return `<p style="text-indent: -36px; padding-left: 36px;">` + entry + `</p>`
	case FormatLaTeX:
		return `\hangindent=36pt ` + entry + `\\`
	default:
		return "\t" + entry
	}
}
