package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const selectDocumentFields = `id, owner_id, title, content, metadata_json, is_public, created_at, updated_at`

// CreateDocument inserts doc, assigning its ID and timestamps.
func (d *DB) CreateDocument(ctx context.Context, doc *Document) error {
	now := d.now().UTC()
	doc.ID = uuid.NewString()
	doc.CreatedAt, doc.UpdatedAt = now, now

	meta, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, title, content, metadata_json, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.OwnerID, doc.Title, doc.Content, meta, doc.IsPublic, toUnix(now), toUnix(now),
	)
	if err != nil {
		return fmt.Errorf("creating document: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (d *DB) GetDocument(ctx context.Context, id string) (*Document, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectDocumentFields+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	return doc, nil
}

// ListDocuments returns the documents owned by ownerID, newest first.
// With includePublic, public documents of other owners are listed too.
// An empty ownerID with includePublic lists only public documents.
func (d *DB) ListDocuments(ctx context.Context, ownerID string, includePublic bool, opts ListOptions) ([]Document, error) {
	query := `SELECT ` + selectDocumentFields + ` FROM documents WHERE owner_id = ?`
	if includePublic {
		query += ` OR is_public = 1`
	}
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`

	rows, err := d.db.QueryContext(ctx, query, ownerID, opts.limit(), opts.offset())
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// ListAllDocuments returns every document, newest first.
func (d *DB) ListAllDocuments(ctx context.Context, opts ListOptions) ([]Document, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+selectDocumentFields+` FROM documents ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`,
		opts.limit(), opts.offset())
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, *doc)
	}
	return docs, rows.Err()
}

// UpdateDocument writes the mutable fields of doc and bumps UpdatedAt.
// When snapshot is non-empty it is stored as a version in the same
// transaction.
func (d *DB) UpdateDocument(ctx context.Context, doc *Document, snapshot string) error {
	meta, err := marshalMetadata(doc.Metadata)
	if err != nil {
		return err
	}
	now := d.now().UTC()

	err = d.withTx(ctx, func(tx *sql.Tx) error {
		if snapshot != "" {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO document_versions (id, document_id, content, created_at)
				VALUES (?, ?, ?, ?)`,
				uuid.NewString(), doc.ID, snapshot, toUnix(now),
			); err != nil {
				return fmt.Errorf("saving version: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE documents
			SET title = ?, content = ?, metadata_json = ?, is_public = ?, updated_at = ?
			WHERE id = ?`,
			doc.Title, doc.Content, meta, doc.IsPublic, toUnix(now), doc.ID,
		)
		if err != nil {
			return fmt.Errorf("updating document %s: %w", doc.ID, err)
		}
		return requireAffected(res, doc.ID)
	})
	if err != nil {
		return err
	}
	doc.UpdatedAt = now
	return nil
}

// DeleteDocument removes a document with its versions, citations and
// references.
func (d *DB) DeleteDocument(ctx context.Context, id string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM document_versions WHERE document_id = ?`,
			`DELETE FROM citations WHERE document_id = ?`,
			`DELETE FROM refs_fts WHERE document_id = ?`,
			`DELETE FROM refs WHERE document_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("deleting document %s children: %w", id, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting document %s: %w", id, err)
		}
		return requireAffected(res, id)
	})
}

// ListVersions returns the saved versions of a document, newest first.
func (d *DB) ListVersions(ctx context.Context, documentID string) ([]Version, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, document_id, content, created_at
		FROM document_versions WHERE document_id = ?
		ORDER BY created_at DESC, rowid DESC`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		var v Version
		var created int64
		if err := rows.Scan(&v.ID, &v.DocumentID, &v.Content, &created); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		v.CreatedAt = fromUnix(created)
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func scanDocument(s scanner) (*Document, error) {
	var doc Document
	var meta sql.NullString
	var created, updated int64
	err := s.Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.Content, &meta, &doc.IsPublic, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if meta.Valid && meta.String != "" {
		if err := json.Unmarshal([]byte(meta.String), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata for %s: %w", doc.ID, err)
		}
	}
	doc.CreatedAt = fromUnix(created)
	doc.UpdatedAt = fromUnix(updated)
	return &doc, nil
}

func marshalMetadata(m map[string]any) (sql.NullString, error) {
	if len(m) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding metadata: %w", err)
	}
	return nullableStringValue(string(data)), nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
