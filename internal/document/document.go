// Package document implements document management on top of storage: access
// rules, versioning, citations and references, and the APA operations that
// run over a document's stored records.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/textlab/textlab/internal/apa"
	"github.com/textlab/textlab/internal/logger"
	"github.com/textlab/textlab/internal/storage"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrForbidden    = errors.New("access denied")
	ErrInvalidInput = errors.New("invalid input")
)

// Store is the persistence the document service needs.
type Store interface {
	CreateDocument(ctx context.Context, doc *storage.Document) error
	GetDocument(ctx context.Context, id string) (*storage.Document, error)
	ListDocuments(ctx context.Context, ownerID string, includePublic bool, opts storage.ListOptions) ([]storage.Document, error)
	ListAllDocuments(ctx context.Context, opts storage.ListOptions) ([]storage.Document, error)
	UpdateDocument(ctx context.Context, doc *storage.Document, snapshot string) error
	DeleteDocument(ctx context.Context, id string) error
	ListVersions(ctx context.Context, documentID string) ([]storage.Version, error)

	AddCitation(ctx context.Context, c *storage.Citation) error
	ListCitations(ctx context.Context, documentID string) ([]storage.Citation, error)
	DeleteCitation(ctx context.Context, documentID, id string) error

	AddReference(ctx context.Context, r *storage.Reference) error
	ListReferences(ctx context.Context, documentID string) ([]storage.Reference, error)
	SearchReferences(ctx context.Context, documentID, query string, limit int) ([]storage.Reference, error)
	DeleteReference(ctx context.Context, documentID, id string) error
}

// Service applies access rules and runs the citation engine over stored
// documents.
type Service struct {
	store  Store
	engine *apa.Engine
	log    *logger.Logger
}

// NewService creates a document service. A nil engine or logger gets a
// usable default.
func NewService(store Store, engine *apa.Engine, log *logger.Logger) *Service {
	if engine == nil {
		engine = apa.New()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{store: store, engine: engine, log: log}
}

// Engine returns the citation engine used by the service.
func (s *Service) Engine() *apa.Engine {
	return s.engine
}

// CanAccess reports whether user may read doc: public documents, their owner
// and admins.
func CanAccess(doc *storage.Document, user *storage.User) bool {
	return doc.IsPublic || CanEdit(doc, user)
}

// CanEdit reports whether user may modify doc: its owner and admins.
func CanEdit(doc *storage.Document, user *storage.User) bool {
	if user == nil {
		return false
	}
	return doc.OwnerID == user.ID || user.IsAdmin()
}

// CreateInput holds the fields of a new document.
type CreateInput struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
	IsPublic bool           `json:"is_public"`
}

// UpdateInput holds optional changes; nil fields are left unchanged.
type UpdateInput struct {
	Title    *string        `json:"title"`
	Content  *string        `json:"content"`
	Metadata map[string]any `json:"metadata"`
	IsPublic *bool          `json:"is_public"`
}

// Create stores a new document owned by user.
func (s *Service) Create(ctx context.Context, user *storage.User, in CreateInput) (*storage.Document, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	doc := &storage.Document{
		OwnerID:  user.ID,
		Title:    title,
		Content:  in.Content,
		Metadata: in.Metadata,
		IsPublic: in.IsPublic,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}
	s.log.Info("document created", "document_id", doc.ID, "owner_id", user.ID)
	return doc, nil
}

// Get returns a document the user may read.
func (s *Service) Get(ctx context.Context, user *storage.User, id string) (*storage.Document, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanAccess(doc, user) {
		return nil, ErrForbidden
	}
	return doc, nil
}

// List returns the user's documents and public documents, newest first.
// Admins see every document.
func (s *Service) List(ctx context.Context, user *storage.User, limit, offset int) ([]storage.Document, error) {
	opts := storage.ListOptions{Limit: limit, Offset: offset}
	var (
		docs []storage.Document
		err  error
	)
	if user.IsAdmin() {
		docs, err = s.store.ListAllDocuments(ctx, opts)
	} else {
		docs, err = s.store.ListDocuments(ctx, user.ID, true, opts)
	}
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []storage.Document{}
	}
	return docs, nil
}

// Update applies the non-nil fields of in. The previous content is kept as a
// version when it was non-empty and changes.
func (s *Service) Update(ctx context.Context, user *storage.User, id string, in UpdateInput) (*storage.Document, error) {
	doc, err := s.editable(ctx, user, id)
	if err != nil {
		return nil, err
	}

	var snapshot string
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		doc.Title = title
	}
	if in.Content != nil && *in.Content != doc.Content {
		snapshot = doc.Content
		doc.Content = *in.Content
	}
	if in.Metadata != nil {
		doc.Metadata = in.Metadata
	}
	if in.IsPublic != nil {
		doc.IsPublic = *in.IsPublic
	}

	if err := s.store.UpdateDocument(ctx, doc, snapshot); err != nil {
		return nil, mapStoreErr(err)
	}
	s.log.Info("document updated", "document_id", doc.ID, "versioned", snapshot != "")
	return doc, nil
}

// Share sets whether the document is publicly readable.
func (s *Service) Share(ctx context.Context, user *storage.User, id string, public bool) (*storage.Document, error) {
	return s.Update(ctx, user, id, UpdateInput{IsPublic: &public})
}

// Delete removes a document and everything attached to it.
func (s *Service) Delete(ctx context.Context, user *storage.User, id string) error {
	if _, err := s.editable(ctx, user, id); err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	s.log.Info("document deleted", "document_id", id)
	return nil
}

// Versions lists the saved versions of a readable document, newest first.
func (s *Service) Versions(ctx context.Context, user *storage.User, id string) ([]storage.Version, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return nil, err
	}
	versions, err := s.store.ListVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []storage.Version{}
	}
	return versions, nil
}

func (s *Service) load(ctx context.Context, id string) (*storage.Document, error) {
	doc, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return doc, nil
}

func (s *Service) editable(ctx context.Context, user *storage.User, id string) (*storage.Document, error) {
	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanEdit(doc, user) {
		return nil, ErrForbidden
	}
	return doc, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
