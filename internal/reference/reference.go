// Package reference defines the core domain types for citations and references.
package reference

import "strings"

// Type is the kind of work a reference points to.
type Type string

const (
	TypeBook    Type = "book"
	TypeArticle Type = "article"
	TypeWeb     Type = "web"
	TypeWebsite Type = "website"
	TypeChapter Type = "chapter"
	TypeOther   Type = "other"
)

// ParseType converts a loosely typed string to a Type.
// Empty and unrecognized values fall back to TypeBook.
func ParseType(s string) Type {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeBook, TypeArticle, TypeWeb, TypeWebsite, TypeChapter, TypeOther:
		return t
	default:
		return TypeBook
	}
}

// Parsed is the structured form of a single reference.
// It is a value type: formatting functions never modify it.
type Parsed struct {
	Authors   []string `json:"authors"`
	Year      *int     `json:"year"` // nil means "no date"
	Title     string   `json:"title"`
	Source    string   `json:"source"` // Journal, site or publisher display name
	Type      Type     `json:"type"`
	DOI       string   `json:"doi"`
	URL       string   `json:"url"`
	Publisher string   `json:"publisher"`
	Volume    string   `json:"volume"`
	Issue     string   `json:"issue"`
	Pages     string   `json:"pages"`

	// Join keys between a citation and its reference (exact match).
	CitationKey string `json:"citation_key,omitempty"`
	RefKey      string `json:"ref_key,omitempty"`

	// Used only by some reference-list templates.
	Location      string   `json:"location,omitempty"`
	Editors       []string `json:"editors,omitempty"`
	BookTitle     string   `json:"book_title,omitempty"`
	SiteName      string   `json:"site_name,omitempty"`
	RetrievedDate string   `json:"retrieved_date,omitempty"`
}

// Normalize returns a copy with defaults applied: a recognized lower-case type
// and a non-nil author list.
func (p Parsed) Normalize() Parsed {
	p.Type = ParseType(string(p.Type))
	if p.Authors == nil {
		p.Authors = []string{}
	}
	return p
}

// HasYear reports whether the reference carries a publication year.
func (p Parsed) HasYear() bool {
	return p.Year != nil
}

// YearPtr returns a pointer to y, for building Parsed values.
func YearPtr(y int) *int {
	return &y
}

// Citation is an in-text citation as stored for a document.
type Citation struct {
	CitationKey  string  `json:"citation_key"`
	CitationText string  `json:"citation_text"`
	Parsed       *Parsed `json:"parsed,omitempty"`
}

// Reference is a reference-list entry as stored for a document.
type Reference struct {
	RefKey  string  `json:"ref_key"`
	RefText string  `json:"ref_text"`
	Parsed  *Parsed `json:"parsed,omitempty"`
}

// Authors returns the parsed author list, or nil when nothing was parsed.
func (c Citation) Authors() []string {
	if c.Parsed == nil {
		return nil
	}
	return c.Parsed.Authors
}

// Year returns the parsed year, or nil when absent.
func (c Citation) Year() *int {
	if c.Parsed == nil {
		return nil
	}
	return c.Parsed.Year
}

// Authors returns the parsed author list, or nil when nothing was parsed.
func (r Reference) Authors() []string {
	if r.Parsed == nil {
		return nil
	}
	return r.Parsed.Authors
}

// Year returns the parsed year, or nil when absent.
func (r Reference) Year() *int {
	if r.Parsed == nil {
		return nil
	}
	return r.Parsed.Year
}
