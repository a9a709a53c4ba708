package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
)

// Catalog is an embedded SQLite metadata index, for single-node deployments.
type Catalog struct {
	db *sqlx.DB
}

func New(dbPath string) (*Catalog, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("connecting to sqlite: %w", err)
	}
	c := &Catalog{db: db}
	if err := c.initSchema(); err != nil {
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return c, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) initSchema() error {
	const q = `
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	filename     TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size         INTEGER NOT NULL,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL,
	checksum     TEXT NOT NULL,
	tags         TEXT NOT NULL,
	attributes   TEXT NOT NULL
);`
	_, err := c.db.Exec(q)
	return err
}

type row struct {
	ID          string    `db:"id"`
	Filename    string    `db:"filename"`
	ContentType string    `db:"content_type"`
	Size        int64     `db:"size"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	Checksum    string    `db:"checksum"`
	Tags        string    `db:"tags"`
	Attributes  string    `db:"attributes"`
}

func (r *row) toMetadata() (*domain.Metadata, error) {
	meta := &domain.Metadata{
		ID:          domain.DocID(r.ID),
		Filename:    r.Filename,
		ContentType: r.ContentType,
		Size:        r.Size,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Checksum:    r.Checksum,
	}
	if err := json.Unmarshal([]byte(r.Tags), &meta.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if err := json.Unmarshal([]byte(r.Attributes), &meta.Attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	return meta, nil
}

// Put inserts metadata. Documents are immutable, so a duplicate id is an error.
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
INSERT INTO documents (id, filename, content_type, size, created_at, updated_at, checksum, tags, attributes)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);`
	_, err = c.db.ExecContext(ctx, q,
		meta.ID, meta.Filename, meta.ContentType, meta.Size,
		meta.CreatedAt, meta.UpdatedAt, meta.Checksum, string(tags), string(attrs),
	)
	if err != nil {
		return fmt.Errorf("%w: inserting metadata: %v", domain.ErrStorage, err)
	}
	return nil
}

func (c *Catalog) Get(ctx context.Context, id domain.DocID) (*domain.Metadata, error) {
	const q = `
SELECT id, filename, content_type, size, created_at, updated_at, checksum, tags, attributes
FROM documents WHERE id = ? LIMIT 1;`

	var r row
	if err := c.db.GetContext(ctx, &r, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%w: querying metadata: %v", domain.ErrStorage, err)
	}
	return r.toMetadata()
}

// Search loads rows ordered by id and applies the tag/attribute filters as a
// linear scan; tags and attributes live in JSON columns, so the match
// semantics stay in one place (the domain) instead of SQL dialects.
func (c *Catalog) Search(ctx context.Context, tags []string, attrs map[string]any) ([]*domain.Reference, error) {
	const q = `
SELECT id, filename, content_type, size, created_at, updated_at, checksum, tags, attributes
FROM documents ORDER BY id ASC;`

	var rows []row
	if err := c.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("%w: scanning catalog: %v", domain.ErrStorage, err)
	}

	var out []*domain.Reference
	for i := range rows {
		meta, err := rows[i].toMetadata()
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
	return out, nil
}

func (c *Catalog) Location(id domain.DocID) string {
	return "sqlite:documents/" + string(id)
}
