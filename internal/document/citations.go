package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/textlab/textlab/internal/apa"
	"github.com/textlab/textlab/internal/reference"
	"github.com/textlab/textlab/internal/storage"
)

// AddCitation stores an in-text citation. When parsed is nil the citation
// text is run through the reference parser.
func (s *Service) AddCitation(ctx context.Context, user *storage.User, docID, key, text string, parsed *reference.Parsed) (*storage.Citation, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: citation_key is required", ErrInvalidInput)
	}
	if _, err := s.editable(ctx, user, docID); err != nil {
		return nil, err
	}

	c := &storage.Citation{
		DocumentID: docID,
		Citation: reference.Citation{
			CitationKey:  key,
			CitationText: text,
			Parsed:       s.parsedOrParse(parsed, text),
		},
	}
	if err := s.store.AddCitation(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddReference stores a reference-list entry. When parsed is nil the
// reference text is run through the reference parser.
func (s *Service) AddReference(ctx context.Context, user *storage.User, docID, key, text string, parsed *reference.Parsed) (*storage.Reference, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: ref_key is required", ErrInvalidInput)
	}
	if _, err := s.editable(ctx, user, docID); err != nil {
		return nil, err
	}

	r := &storage.Reference{
		DocumentID: docID,
		Reference: reference.Reference{
			RefKey:  key,
			RefText: text,
			Parsed:  s.parsedOrParse(parsed, text),
		},
	}
	if err := s.store.AddReference(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) parsedOrParse(parsed *reference.Parsed, text string) *reference.Parsed {
	var p reference.Parsed
	switch {
	case parsed != nil:
		p = parsed.Normalize()
	case strings.TrimSpace(text) != "":
		p = s.engine.Parse(text)
	default:
		return nil
	}
	return &p
}

// Citations lists a readable document's citations in insertion order.
func (s *Service) Citations(ctx context.Context, user *storage.User, docID string) ([]storage.Citation, error) {
	if _, err := s.Get(ctx, user, docID); err != nil {
		return nil, err
	}
	cits, err := s.store.ListCitations(ctx, docID)
	if err != nil {
		return nil, err
	}
	if cits == nil {
		cits = []storage.Citation{}
	}
	return cits, nil
}

// References lists a readable document's references in insertion order.
// A non-empty query restricts the result to full-text matches.
func (s *Service) References(ctx context.Context, user *storage.User, docID, query string) ([]storage.Reference, error) {
	if _, err := s.Get(ctx, user, docID); err != nil {
		return nil, err
	}

	var (
		refs []storage.Reference
		err  error
	)
	if strings.TrimSpace(query) != "" {
		refs, err = s.store.SearchReferences(ctx, docID, query, 0)
	} else {
		refs, err = s.store.ListReferences(ctx, docID)
	}
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []storage.Reference{}
	}
	return refs, nil
}

// DeleteCitation removes one citation from an editable document.
func (s *Service) DeleteCitation(ctx context.Context, user *storage.User, docID, citationID string) error {
	if _, err := s.editable(ctx, user, docID); err != nil {
		return err
	}
	return mapStoreErr(s.store.DeleteCitation(ctx, docID, citationID))
}

// DeleteReference removes one reference from an editable document.
func (s *Service) DeleteReference(ctx context.Context, user *storage.User, docID, refID string) error {
	if _, err := s.editable(ctx, user, docID); err != nil {
		return err
	}
	return mapStoreErr(s.store.DeleteReference(ctx, docID, refID))
}

// ValidationReport is the outcome of a coherence check over a document.
type ValidationReport struct {
	apa.ValidationResult
	Summary apa.Summary `json:"summary"`
}

// Validate checks the document's citations against its references.
func (s *Service) Validate(ctx context.Context, user *storage.User, docID string) (*ValidationReport, error) {
	cits, err := s.Citations(ctx, user, docID)
	if err != nil {
		return nil, err
	}
	refs, err := s.store.ListReferences(ctx, docID)
	if err != nil {
		return nil, err
	}

	in := make([]reference.Citation, len(cits))
	for i, c := range cits {
		in[i] = c.Citation
	}
	rs := make([]reference.Reference, len(refs))
	for i, r := range refs {
		rs[i] = r.Reference
	}

	res := s.engine.Validate(in, rs)
	summary := res.Summary(len(cits), len(refs))
	s.log.Info("validation completed",
		"document_id", docID,
		"citations_without_reference", summary.CitationsWithoutReference,
		"references_without_citations", summary.ReferencesWithoutCitations,
		"imperfect_matches", summary.ImperfectMatches,
	)
	return &ValidationReport{ValidationResult: res, Summary: summary}, nil
}

// ReferenceList formats the parsed records of a document's stored
// references, in storage order. References without parsed data are parsed
// from their text.
func (s *Service) ReferenceList(ctx context.Context, user *storage.User, docID string, format apa.Format) (string, int, error) {
	refs, err := s.References(ctx, user, docID, "")
	if err != nil {
		return "", 0, err
	}

	parsed := make([]reference.Parsed, 0, len(refs))
	for _, r := range refs {
		if r.Parsed != nil {
			parsed = append(parsed, *r.Parsed)
			continue
		}
		parsed = append(parsed, s.engine.Parse(r.RefText))
	}
	return s.engine.ReferenceList(parsed, format), len(parsed), nil
}
