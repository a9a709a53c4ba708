package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
)

type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// InitSchema creates the documents table when it does not exist yet.
func (c *Catalog) InitSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS documents (
 id           VARCHAR(64) PRIMARY KEY,
 filename     VARCHAR(255) NOT NULL,
 content_type VARCHAR(128) NOT NULL,
 size         BIGINT NOT NULL,
 created_at   DATETIME(6) NOT NULL,
 updated_at   DATETIME(6) NOT NULL,
 checksum     CHAR(64) NOT NULL,
 tags         JSON NOT NULL,
 attributes   JSON NOT NULL
);`
	_, err := c.db.ExecContext(ctx, q)
	return err
}

// Put insert Metadata record. No upsert: documents are immutable.
func (c *Catalog) Put(ctx context.Context, meta *domain.Metadata) error {
	tags, err := json.Marshal(meta.Tags)
	if err != nil {
		return fmt.Errorf("%w: encoding tags: %v", domain.ErrStorage, err)
	}
	attrs, err := json.Marshal(meta.Attributes)
	if err != nil {
		return fmt.Errorf("%w: encoding attributes: %v", domain.ErrStorage, err)
	}

	created := meta.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := meta.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	const q = `
INSERT INTO documents
(id, filename, content_type, size, created_at, updated_at, checksum, tags, attributes)
VALUES (?,?,?,?,?,?,?,?,?);`
	_, err = c.db.ExecContext(ctx, q,
		meta.ID, meta.Filename, meta.ContentType, meta.Size,
		created, updated, meta.Checksum, string(tags), string(attrs),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting metadata: %v", domain.ErrStorage, err)
	}
	return nil
}

// Get by ID
func (c *Catalog) Get(ctx context.Context, id domain.DocID) (*domain.Metadata, error) {
	const q = `
SELECT id, filename, content_type, size, created_at, updated_at, checksum, tags, attributes
FROM documents
WHERE id=? LIMIT 1;`
	meta, err := scanMetadata(c.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying metadata: %v", domain.ErrStorage, err)
	}
	return meta, nil
}

// Search loads all rows ordered by id and filters in memory; tag and
// attribute match semantics live in the domain, not in SQL.
func (c *Catalog) Search(ctx context.Context, tags []string, attrs map[string]any) ([]*domain.Reference, error) {
	const q = `
SELECT id, filename, content_type, size, created_at, updated_at, checksum, tags, attributes
FROM documents ORDER BY id ASC;`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: scanning catalog: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var out []*domain.Reference
	for rows.Next() {
		meta, err := scanMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
		}
		if !meta.HasTags(tags) || !meta.MatchesAttributes(attrs) {
			continue
		}
		out = append(out, &domain.Reference{
			ID:       meta.ID,
			Location: c.Location(meta.ID),
			Metadata: *meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating rows: %v", domain.ErrStorage, err)
	}
	return out, nil
}

func (c *Catalog) Location(id domain.DocID) string {
	return "mysql:documents/" + string(id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMetadata(r rowScanner) (*domain.Metadata, error) {
	var meta domain.Metadata
	var tagsJSON, attrsJSON string
	if err := r.Scan(
		&meta.ID, &meta.Filename, &meta.ContentType, &meta.Size,
		&meta.CreatedAt, &meta.UpdatedAt, &meta.Checksum, &tagsJSON, &attrsJSON,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tagsJSON), &meta.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if err := json.Unmarshal([]byte(attrsJSON), &meta.Attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	return &meta, nil
}
