package document

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textlab/textlab/internal/apa"
	"github.com/textlab/textlab/internal/reference"
	"github.com/textlab/textlab/internal/storage"
)

type fixture struct {
	svc   *Service
	owner *storage.User
	other *storage.User
	admin *storage.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := storage.OpenDB(filepath.Join(t.TempDir(), "doc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mk := func(email string, role storage.Role) *storage.User {
		u := &storage.User{Email: email, FullName: email, PasswordHash: "x", Role: role}
		require.NoError(t, db.CreateUser(context.Background(), u))
		return u
	}
	return fixture{
		svc:   NewService(db, nil, nil),
		owner: mk("owner@example.com", storage.RoleStudent),
		other: mk("other@example.com", storage.RoleTeacher),
		admin: mk("admin@example.com", storage.RoleAdmin),
	}
}

func ptr[T any](v T) *T { return &v }

func TestAccessRules(t *testing.T) {
	owner := &storage.User{ID: "u1", Role: storage.RoleStudent}
	other := &storage.User{ID: "u2", Role: storage.RoleStudent}
	admin := &storage.User{ID: "u3", Role: storage.RoleAdmin}

	private := &storage.Document{OwnerID: "u1"}
	public := &storage.Document{OwnerID: "u1", IsPublic: true}

	tests := []struct {
		name      string
		doc       *storage.Document
		user      *storage.User
		canAccess bool
		canEdit   bool
	}{
		{"owner private", private, owner, true, true},
		{"other private", private, other, false, false},
		{"admin private", private, admin, true, true},
		{"other public", public, other, true, false},
		{"nil user public", public, nil, true, false},
		{"nil user private", private, nil, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.canAccess, CanAccess(tt.doc, tt.user))
			assert.Equal(t, tt.canEdit, CanEdit(tt.doc, tt.user))
		})
	}
}

func TestCreateGetList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Create(ctx, f.owner, CreateInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	doc, err := f.svc.Create(ctx, f.owner, CreateInput{Title: "Thesis", Content: "draft"})
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, doc.OwnerID)

	_, err = f.svc.Get(ctx, f.other, doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := f.svc.Get(ctx, f.admin, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thesis", got.Title)

	_, err = f.svc.Get(ctx, f.owner, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)

	docs, err := f.svc.List(ctx, f.other, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = f.svc.Share(ctx, f.owner, doc.ID, true)
	require.NoError(t, err)

	docs, err = f.svc.List(ctx, f.other, 0, 0)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = f.svc.Update(ctx, f.other, doc.ID, UpdateInput{Title: ptr("Stolen")})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateVersions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc, err := f.svc.Create(ctx, f.owner, CreateInput{Title: "Essay"})
	require.NoError(t, err)

	// Empty content is not snapshotted.
	_, err = f.svc.Update(ctx, f.owner, doc.ID, UpdateInput{Content: ptr("first")})
	require.NoError(t, err)
	versions, err := f.svc.Versions(ctx, f.owner, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)

	updated, err := f.svc.Update(ctx, f.owner, doc.ID, UpdateInput{Content: ptr("second")})
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Content)
	assert.Equal(t, "Essay", updated.Title)

	versions, err = f.svc.Versions(ctx, f.owner, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "first", versions[0].Content)

	_, err = f.svc.Update(ctx, f.owner, doc.ID, UpdateInput{Title: ptr("")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc, err := f.svc.Create(ctx, f.owner, CreateInput{Title: "Gone"})
	require.NoError(t, err)
	_, err = f.svc.AddReference(ctx, f.owner, doc.ID, "smith2020", "Smith, J. (2020). A title that is long enough.", nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Delete(ctx, f.other, doc.ID), ErrForbidden)
	require.NoError(t, f.svc.Delete(ctx, f.owner, doc.ID))

	_, err = f.svc.Get(ctx, f.owner, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, f.owner, doc.ID), ErrNotFound)
}

func TestCitationsAndReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc, err := f.svc.Create(ctx, f.owner, CreateInput{Title: "Review"})
	require.NoError(t, err)

	_, err = f.svc.AddCitation(ctx, f.owner, doc.ID, " ", "(Smith, 2020)", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.AddReference(ctx, f.other, doc.ID, "smith2020", "x", nil)
	assert.ErrorIs(t, err, ErrForbidden)

	raw := "Smith, J., & Jones, M. (2020). Introduction to Psychology. American Journal of Science, 45(3), 123-145."
	ref, err := f.svc.AddReference(ctx, f.owner, doc.ID, "smith2020", raw, nil)
	require.NoError(t, err)
	require.NotNil(t, ref.Parsed)
	assert.Equal(t, []string{"Smith, J.", "Jones, M."}, ref.Parsed.Authors)

	given := &reference.Parsed{Authors: []string{"Smith, J.", "Jones, M."}, Year: reference.YearPtr(2020)}
	cit, err := f.svc.AddCitation(ctx, f.owner, doc.ID, "smith2020", "(Smith & Jones, 2020)", given)
	require.NoError(t, err)
	assert.Equal(t, 2020, *cit.Parsed.Year)

	cits, err := f.svc.Citations(ctx, f.owner, doc.ID)
	require.NoError(t, err)
	assert.Len(t, cits, 1)

	refs, err := f.svc.References(ctx, f.owner, doc.ID, "psychology")
	require.NoError(t, err)
	assert.Len(t, refs, 1)

	refs, err = f.svc.References(ctx, f.owner, doc.ID, "chemistry")
	require.NoError(t, err)
	assert.Empty(t, refs)

	assert.ErrorIs(t, f.svc.DeleteCitation(ctx, f.owner, doc.ID, "missing"), ErrNotFound)
	require.NoError(t, f.svc.DeleteCitation(ctx, f.owner, doc.ID, cit.ID))
	cits, err = f.svc.Citations(ctx, f.owner, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, cits)

	require.NoError(t, f.svc.DeleteReference(ctx, f.owner, doc.ID, ref.ID))
	refs, err = f.svc.References(ctx, f.owner, doc.ID, "")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc, err := f.svc.Create(ctx, f.owner, CreateInput{Title: "Paper"})
	require.NoError(t, err)

	smith := &reference.Parsed{Authors: []string{"Smith, J."}, Year: reference.YearPtr(2020)}
	_, err = f.svc.AddCitation(ctx, f.owner, doc.ID, "smith2020", "(Smith, 2020)", smith)
	require.NoError(t, err)
	_, err = f.svc.AddCitation(ctx, f.owner, doc.ID, "doe2019", "(Doe, 2019)",
		&reference.Parsed{Authors: []string{"Doe, A."}, Year: reference.YearPtr(2019)})
	require.NoError(t, err)
	_, err = f.svc.AddReference(ctx, f.owner, doc.ID, "smith2020", "", smith)
	require.NoError(t, err)
	_, err = f.svc.AddReference(ctx, f.owner, doc.ID, "lee2018", "",
		&reference.Parsed{Authors: []string{"Lee, K."}, Year: reference.YearPtr(2018)})
	require.NoError(t, err)

	report, err := f.svc.Validate(ctx, f.owner, doc.ID)
	require.NoError(t, err)
	require.Len(t, report.CitationsWithoutReference, 1)
	assert.Equal(t, "doe2019", report.CitationsWithoutReference[0].CitationKey)
	require.Len(t, report.ReferencesWithoutCitations, 1)
	assert.Equal(t, "lee2018", report.ReferencesWithoutCitations[0].RefKey)
	assert.Empty(t, report.ImperfectMatches)
	assert.Equal(t, 2, report.Summary.TotalCitations)
	assert.False(t, report.Summary.Coherent)

	_, err = f.svc.Validate(ctx, f.other, doc.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReferenceList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc, err := f.svc.Create(ctx, f.owner, CreateInput{Title: "Paper", IsPublic: true})
	require.NoError(t, err)

	p := reference.Parsed{
		Authors:   []string{"Smith, J."},
		Year:      reference.YearPtr(2020),
		Title:     "A book",
		Type:      reference.TypeBook,
		Publisher: "Press",
	}
	_, err = f.svc.AddReference(ctx, f.owner, doc.ID, "smith2020", "", &p)
	require.NoError(t, err)

	list, n, err := f.svc.ReferenceList(ctx, f.other, doc.ID, apa.FormatText)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, apa.ReferenceList([]reference.Parsed{p}, apa.FormatText), list)
}
