package apa

import (
	"slices"

	"github.com/textlab/textlab/internal/reference"
)

const (
	issueNoReference = "No matching reference found"
	issueNoCitation  = "No matching citation found"
	issueMismatch    = "Authors or year mismatch between citation and reference"
)

// MissingReference is an in-text citation whose key has no reference.
type MissingReference struct {
	CitationKey  string `json:"citation_key"`
	CitationText string `json:"citation_text"`
	Issue        string `json:"issue"`
}

// UnusedReference is a reference whose key is never cited.
type UnusedReference struct {
	RefKey  string `json:"ref_key"`
	RefText string `json:"ref_text"`
	Issue   string `json:"issue"`
}

// ImperfectMatch pairs a citation and a reference that share a key but
// disagree on authors or year. Authors and years are reported as given.
type ImperfectMatch struct {
	CitationKey      string   `json:"citation_key"`
	RefKey           string   `json:"ref_key"`
	CitationAuthors  []string `json:"citation_authors"`
	ReferenceAuthors []string `json:"reference_authors"`
	CitationYear     *int     `json:"citation_year"`
	ReferenceYear    *int     `json:"reference_year"`
	Issue            string   `json:"issue"`
}

// ValidationResult holds the findings of a coherence check.
// All three slices are non-nil so they encode as JSON arrays.
type ValidationResult struct {
	CitationsWithoutReference  []MissingReference `json:"citations_without_reference"`
	ReferencesWithoutCitations []UnusedReference  `json:"references_without_citations"`
	ImperfectMatches           []ImperfectMatch   `json:"imperfect_matches"`
}

// Summary counts the findings of a validation run.
type Summary struct {
	TotalCitations             int  `json:"total_citations"`
	TotalReferences            int  `json:"total_references"`
	CitationsWithoutReference  int  `json:"citations_without_reference"`
	ReferencesWithoutCitations int  `json:"references_without_citations"`
	ImperfectMatches           int  `json:"imperfect_matches"`
	Coherent                   bool `json:"coherent"`
}

// Findings returns the total number of problems found.
func (r ValidationResult) Findings() int {
	return len(r.CitationsWithoutReference) + len(r.ReferencesWithoutCitations) + len(r.ImperfectMatches)
}

// Summary counts the findings against the number of inputs supplied.
func (r ValidationResult) Summary(totalCitations, totalReferences int) Summary {
	return Summary{
		TotalCitations:             totalCitations,
		TotalReferences:            totalReferences,
		CitationsWithoutReference:  len(r.CitationsWithoutReference),
		ReferencesWithoutCitations: len(r.ReferencesWithoutCitations),
		ImperfectMatches:           len(r.ImperfectMatches),
		Coherent:                   r.Findings() == 0,
	}
}

// keyed maps keys to records with last-write-wins semantics while
// remembering the order in which each key was first seen.
type keyed[T any] struct {
	order []string
	byKey map[string]T
}

func newKeyed[T any](n int) *keyed[T] {
	return &keyed[T]{byKey: make(map[string]T, n)}
}

func (k *keyed[T]) put(key string, v T) {
	if key == "" {
		return
	}
	if _, ok := k.byKey[key]; !ok {
		k.order = append(k.order, key)
	}
	k.byKey[key] = v
}

// Validate checks that every citation has a reference and every reference is
// cited, pairing them by exact key. Duplicate keys collapse to the last
// record; records with an empty key are ignored.
func Validate(citations []reference.Citation, references []reference.Reference) ValidationResult {
	res := ValidationResult{
		CitationsWithoutReference:  []MissingReference{},
		ReferencesWithoutCitations: []UnusedReference{},
		ImperfectMatches:           []ImperfectMatch{},
	}

	cits := newKeyed[reference.Citation](len(citations))
	for _, c := range citations {
		cits.put(c.CitationKey, c)
	}
	refs := newKeyed[reference.Reference](len(references))
	for _, r := range references {
		refs.put(r.RefKey, r)
	}

	for _, key := range cits.order {
		if _, ok := refs.byKey[key]; !ok {
			c := cits.byKey[key]
			res.CitationsWithoutReference = append(res.CitationsWithoutReference, MissingReference{
				CitationKey:  key,
				CitationText: c.CitationText,
				Issue:        issueNoReference,
			})
		}
	}

	for _, key := range refs.order {
		if _, ok := cits.byKey[key]; !ok {
			r := refs.byKey[key]
			res.ReferencesWithoutCitations = append(res.ReferencesWithoutCitations, UnusedReference{
				RefKey:  key,
				RefText: r.RefText,
				Issue:   issueNoCitation,
			})
		}
	}

	for _, key := range cits.order {
		r, ok := refs.byKey[key]
		if !ok {
			continue
		}
		c := cits.byKey[key]
		if sameAuthors(c.Authors(), r.Authors()) && sameYear(c.Year(), r.Year()) {
			continue
		}
		res.ImperfectMatches = append(res.ImperfectMatches, ImperfectMatch{
			CitationKey:      key,
			RefKey:           key,
			CitationAuthors:  nonNil(c.Authors()),
			ReferenceAuthors: nonNil(r.Authors()),
			CitationYear:     c.Year(),
			ReferenceYear:    r.Year(),
			Issue:            issueMismatch,
		})
	}

	return res
}

func sameAuthors(a, b []string) bool {
	return slices.Equal(reference.NormalizeAuthors(a), reference.NormalizeAuthors(b))
}

func sameYear(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
