// Package apa implements APA 7 citation handling: parsing free-text
// references, generating in-text citations and reference-list entries, and
// checking that citations and references agree.
//
// Every operation is a pure function of its inputs. An Engine only carries the
// clock used for web retrieval dates and is safe for concurrent use.
package apa

import (
	"strings"
	"time"

	"github.com/textlab/textlab/internal/reference"
)

// Engine bundles the APA operations. The zero value is ready to use.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// OptClock sets the clock used when a web reference lacks both a year and an
// explicit retrieval date.
func OptClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine with the given options applied.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = &Engine{}

func (e *Engine) clock() func() time.Time {
	if e == nil || e.now == nil {
		return time.Now
	}
	return e.now
}

// Parse extracts structured fields from a free-text reference.
func (e *Engine) Parse(raw string) reference.Parsed {
	return Parse(raw)
}

// Citation generates the in-text citation for p.
func (e *Engine) Citation(p reference.Parsed) string {
	return Citation(p)
}

// Reference generates the reference-list entry for p.
func (e *Engine) Reference(p reference.Parsed) string {
	return formatReference(p, e.clock())
}

// ReferenceList formats refs in order, wrapped for the given format.
func (e *Engine) ReferenceList(refs []reference.Parsed, format Format) string {
	entries := make([]string, len(refs))
	for i, p := range refs {
		entries[i] = wrapEntry(e.Reference(p), format)
	}
	return strings.Join(entries, "\n")
}

// Validate checks citations against references.
func (e *Engine) Validate(citations []reference.Citation, references []reference.Reference) ValidationResult {
	return Validate(citations, references)
}
