package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/textlab/textlab/internal/reference"
)

// AddCitation stores a citation for its document, assigning ID and timestamp.
func (d *DB) AddCitation(ctx context.Context, c *Citation) error {
	parsed, err := marshalParsed(c.Parsed)
	if err != nil {
		return err
	}
	now := d.now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO citations (id, document_id, citation_key, citation_text, parsed_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.DocumentID, c.CitationKey, c.CitationText, parsed, toUnix(now),
	)
	if err != nil {
		return fmt.Errorf("adding citation %s: %w", c.CitationKey, err)
	}
	return nil
}

// ListCitations returns a document's citations in insertion order.
func (d *DB) ListCitations(ctx context.Context, documentID string) ([]Citation, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, document_id, citation_key, citation_text, parsed_json, created_at
		FROM citations WHERE document_id = ?
		ORDER BY created_at, rowid`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing citations: %w", err)
	}
	defer rows.Close()

	var cits []Citation
	for rows.Next() {
		var c Citation
		var parsed sql.NullString
		var created int64
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.CitationKey, &c.CitationText, &parsed, &created); err != nil {
			return nil, fmt.Errorf("scanning citation: %w", err)
		}
		if c.Parsed, err = unmarshalParsed(parsed); err != nil {
			return nil, fmt.Errorf("citation %s: %w", c.ID, err)
		}
		c.CreatedAt = fromUnix(created)
		cits = append(cits, c)
	}
	return cits, rows.Err()
}

// DeleteCitation removes a citation belonging to documentID.
func (d *DB) DeleteCitation(ctx context.Context, documentID, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM citations WHERE id = ? AND document_id = ?`, id, documentID)
	if err != nil {
		return fmt.Errorf("deleting citation %s: %w", id, err)
	}
	return requireAffected(res, id)
}

// AddReference stores a reference for its document and indexes it for search.
func (d *DB) AddReference(ctx context.Context, r *Reference) error {
	parsed, err := marshalParsed(r.Parsed)
	if err != nil {
		return err
	}
	now := d.now().UTC()
	r.ID = uuid.NewString()
	r.CreatedAt = now

	return d.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO refs (id, document_id, ref_key, ref_text, parsed_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.DocumentID, r.RefKey, r.RefText, parsed, toUnix(now),
		); err != nil {
			return fmt.Errorf("adding reference %s: %w", r.RefKey, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO refs_fts (id, document_id, ref_text, authors_text)
			VALUES (?, ?, ?, ?)`,
			r.ID, r.DocumentID, r.RefText, strings.Join(r.Authors(), ", "),
		); err != nil {
			return fmt.Errorf("indexing reference %s: %w", r.RefKey, err)
		}
		return nil
	})
}

const selectRefFields = `id, document_id, ref_key, ref_text, parsed_json, created_at`

// ListReferences returns a document's references in insertion order.
func (d *DB) ListReferences(ctx context.Context, documentID string) ([]Reference, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+selectRefFields+`
		FROM refs WHERE document_id = ?
		ORDER BY created_at, rowid`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing references: %w", err)
	}
	defer rows.Close()

	return scanReferences(rows)
}

// SearchReferences runs a full-text query over a document's reference texts
// and authors.
func (d *DB) SearchReferences(ctx context.Context, documentID, query string, limit int) ([]Reference, error) {
	ftsQuery := prepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT `+selectRefFields+`
		FROM refs
		WHERE document_id = ?
		  AND id IN (SELECT id FROM refs_fts WHERE refs_fts MATCH ?)
		ORDER BY created_at, rowid
		LIMIT ?`, documentID, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching references: %w", err)
	}
	defer rows.Close()

	return scanReferences(rows)
}

// DeleteReference removes a reference belonging to documentID.
func (d *DB) DeleteReference(ctx context.Context, documentID, id string) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM refs WHERE id = ? AND document_id = ?`, id, documentID)
		if err != nil {
			return fmt.Errorf("deleting reference %s: %w", id, err)
		}
		if err := requireAffected(res, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM refs_fts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("unindexing reference %s: %w", id, err)
		}
		return nil
	})
}

func scanReferences(rows *sql.Rows) ([]Reference, error) {
	var refs []Reference
	for rows.Next() {
		var r Reference
		var parsed sql.NullString
		var created int64
		var err error
		if err = rows.Scan(&r.ID, &r.DocumentID, &r.RefKey, &r.RefText, &parsed, &created); err != nil {
			return nil, fmt.Errorf("scanning reference: %w", err)
		}
		if r.Parsed, err = unmarshalParsed(parsed); err != nil {
			return nil, fmt.Errorf("reference %s: %w", r.ID, err)
		}
		r.CreatedAt = fromUnix(created)
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

func marshalParsed(p *reference.Parsed) (sql.NullString, error) {
	if p == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encoding parsed reference: %w", err)
	}
	return nullableStringValue(string(data)), nil
}

func unmarshalParsed(s sql.NullString) (*reference.Parsed, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var p reference.Parsed
	if err := json.Unmarshal([]byte(s.String), &p); err != nil {
		return nil, fmt.Errorf("decoding parsed reference: %w", err)
	}
	return &p, nil
}
