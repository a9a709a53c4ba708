package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := New(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

func sqliteMeta(id string, tags []string, attrs map[string]any) *domain.Metadata {
	if tags == nil {
		tags = []string{}
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	return &domain.Metadata{
		ID:          domain.DocID(id),
		Filename:    id + ".txt",
		ContentType: "text/plain",
		Size:        42,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		UpdatedAt:   time.Now().UTC().Truncate(time.Second),
		Checksum:    "deadbeef",
		Tags:        tags,
		Attributes:  attrs,
	}
}

func TestSQLiteCatalogPutGet(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()

	meta := sqliteMeta("doc-1", []string{"marine"}, map[string]any{"domain": "climate"})
	require.NoError(t, cat.Put(ctx, meta))

	got, err := cat.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, meta.ID, got.ID)
	assert.Equal(t, meta.Filename, got.Filename)
	assert.Equal(t, meta.Checksum, got.Checksum)
	assert.Equal(t, []string{"marine"}, got.Tags)
	assert.Equal(t, "climate", got.Attributes["domain"])
}

func TestSQLiteCatalogGetUnknown(t *testing.T) {
	cat := newTestCatalog(t)

	_, err := cat.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteCatalogDuplicateIDRejected(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()

	meta := sqliteMeta("doc-1", nil, nil)
	require.NoError(t, cat.Put(ctx, meta))

	err := cat.Put(ctx, meta)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestSQLiteCatalogSearchFiltersAndOrder(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.Put(ctx, sqliteMeta("doc-3", []string{"climate"}, map[string]any{"domain": "climate"})))
	require.NoError(t, cat.Put(ctx, sqliteMeta("doc-1", []string{"climate", "marine"}, map[string]any{"domain": "climate"})))
	require.NoError(t, cat.Put(ctx, sqliteMeta("doc-2", []string{"quantum"}, map[string]any{"domain": "quantum"})))

	// Unfiltered search comes back ascending by id.
	refs, err := cat.Search(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, domain.DocID("doc-1"), refs[0].ID)
	assert.Equal(t, domain.DocID("doc-2"), refs[1].ID)
	assert.Equal(t, domain.DocID("doc-3"), refs[2].ID)

	// Tag subset.
	refs, err = cat.Search(ctx, []string{"climate", "marine"}, nil)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, domain.DocID("doc-1"), refs[0].ID)

	// Attribute equality.
	refs, err = cat.Search(ctx, nil, map[string]any{"domain": "quantum"})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, domain.DocID("doc-2"), refs[0].ID)
}

func TestSQLiteCatalogSearchNumericAttribute(t *testing.T) {
	cat := newTestCatalog(t)
	ctx := context.Background()

	require.NoError(t, cat.Put(ctx, sqliteMeta("doc-1", nil, map[string]any{"year": 2020})))
	require.NoError(t, cat.Put(ctx, sqliteMeta("doc-2", nil, map[string]any{"year": 2021})))

	// The JSON column decodes numbers as float64; an int filter still matches.
	refs, err := cat.Search(ctx, nil, map[string]any{"year": 2020})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, domain.DocID("doc-1"), refs[0].ID)
}
