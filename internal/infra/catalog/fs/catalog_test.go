package fs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
)

func testMeta(id string, tags []string, attrs map[string]any) *domain.Metadata {
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
		Size:        10,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
		Checksum:    "abc",
		Tags:        tags,
		Attributes:  attrs,
	}
}

func TestCatalogPutGet(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	meta := testMeta("doc-1", []string{"climate"}, map[string]any{"domain": "climate"})
	require.NoError(t, cat.Put(ctx, meta))

	got, err := cat.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, meta.ID, got.ID)
	assert.Equal(t, meta.Filename, got.Filename)
	assert.Equal(t, meta.Tags, got.Tags)
	assert.Equal(t, "climate", got.Attributes["domain"])
}

func TestCatalogGetUnknown(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = cat.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogSearchTagSubset(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cat.Put(ctx, testMeta("doc-1", []string{"climate", "marine"}, nil)))
	require.NoError(t, cat.Put(ctx, testMeta("doc-2", []string{"climate"}, nil)))
	require.NoError(t, cat.Put(ctx, testMeta("doc-3", []string{"quantum"}, nil)))

	refs, err := cat.Search(ctx, []string{"climate"}, nil)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, domain.DocID("doc-1"), refs[0].ID)
	assert.Equal(t, domain.DocID("doc-2"), refs[1].ID)

	// Every filter tag must be on the document.
	refs, err = cat.Search(ctx, []string{"climate", "marine"}, nil)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, domain.DocID("doc-1"), refs[0].ID)
}

func TestCatalogSearchAttributes(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cat.Put(ctx, testMeta("doc-1", nil, map[string]any{"domain": "climate"})))
	require.NoError(t, cat.Put(ctx, testMeta("doc-2", nil, map[string]any{"domain": "quantum"})))
	require.NoError(t, cat.Put(ctx, testMeta("doc-3", nil, nil)))

	refs, err := cat.Search(ctx, nil, map[string]any{"domain": "climate"})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, domain.DocID("doc-1"), refs[0].ID)

	// Documents without the key never match.
	refs, err = cat.Search(ctx, nil, map[string]any{"missing": "x"})
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestCatalogSearchNumericAttribute(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// An int attribute persisted as JSON comes back as float64; an int
	// filter value must still match it.
	require.NoError(t, cat.Put(ctx, testMeta("doc-1", nil, map[string]any{"year": 2020})))
	require.NoError(t, cat.Put(ctx, testMeta("doc-2", nil, map[string]any{"year": 2021})))

	refs, err := cat.Search(ctx, nil, map[string]any{"year": 2020})
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, domain.DocID("doc-1"), refs[0].ID)
}

func TestCatalogSearchEmptyFiltersReturnsAllOrdered(t *testing.T) {
	cat, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	// Insert out of lexical order; search must come back ascending by id.
	require.NoError(t, cat.Put(ctx, testMeta("doc-3", nil, nil)))
	require.NoError(t, cat.Put(ctx, testMeta("doc-1", nil, nil)))
	require.NoError(t, cat.Put(ctx, testMeta("doc-2", nil, nil)))

	refs, err := cat.Search(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, domain.DocID("doc-1"), refs[0].ID)
	assert.Equal(t, domain.DocID("doc-2"), refs[1].ID)
	assert.Equal(t, domain.DocID("doc-3"), refs[2].ID)
}
