package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
)

type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog { return &Catalog{db: db} }

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

// InitSchema creates the documents table when it does not exist yet.
func (c *Catalog) InitSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS documents (
 id           TEXT PRIMARY KEY,
 filename     TEXT NOT NULL,
 content_type TEXT NOT NULL,
 size         BIGINT NOT NULL,
 created_at   TIMESTAMPTZ NOT NULL,
 updated_at   TIMESTAMPTZ NOT NULL,
 checksum     TEXT NOT NULL,
 tags         JSONB NOT NULL,
 attributes   JSONB NOT NULL
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

	const q = `
INSERT INTO documents
(id, filename, content_type, size, created_at, updated_at, checksum, tags, attributes)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);`
	_, err = c.db.ExecContext(ctx, q,
		meta.ID, meta.Filename, meta.ContentType, meta.Size,
		meta.CreatedAt, meta.UpdatedAt, meta.Checksum, string(tags), string(attrs),
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
WHERE id=$1 LIMIT 1;`
	meta, err := scanMetadata(c.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: querying metadata: %v", domain.ErrStorage, err)
	}
	return meta, nil
}

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
	return "postgres:documents/" + string(id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMetadata(r rowScanner) (*domain.Metadata, error) {
	var meta domain.Metadata
	var tagsJSON, attrsJSON []byte
	if err := r.Scan(
		&meta.ID, &meta.Filename, &meta.ContentType, &meta.Size,
		&meta.CreatedAt, &meta.UpdatedAt, &meta.Checksum, &tagsJSON, &attrsJSON,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(tagsJSON, &meta.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if err := json.Unmarshal(attrsJSON, &meta.Attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	return &meta, nil
}
