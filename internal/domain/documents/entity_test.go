package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasTags(t *testing.T) {
	meta := Metadata{Tags: []string{"climate", "marine", "research"}}

	assert.True(t, meta.HasTags(nil), "empty filter matches everything")
	assert.True(t, meta.HasTags([]string{"climate"}))
	assert.True(t, meta.HasTags([]string{"marine", "research"}))
	assert.False(t, meta.HasTags([]string{"quantum"}))
	assert.False(t, meta.HasTags([]string{"climate", "quantum"}), "all filter tags must be present")
}

func TestMatchesAttributes(t *testing.T) {
	meta := Metadata{Attributes: map[string]any{
		"domain": "climate",
		"year":   2024,
		"labels": []string{"a", "b"},
	}}

	assert.True(t, meta.MatchesAttributes(nil))
	assert.True(t, meta.MatchesAttributes(map[string]any{"domain": "climate"}))
	assert.True(t, meta.MatchesAttributes(map[string]any{"labels": []string{"a", "b"}}))
	assert.False(t, meta.MatchesAttributes(map[string]any{"domain": "quantum"}))
	// A key the document does not carry never matches.
	assert.False(t, meta.MatchesAttributes(map[string]any{"missing": "x"}))
}

func TestMatchesAttributesAcrossJSONShapes(t *testing.T) {
	// Attributes loaded from a catalog carry decoded-JSON types.
	meta := Metadata{Attributes: map[string]any{
		"year":   float64(2020),
		"labels": []any{"a", "b"},
	}}

	// Filter values as a caller writes them must still match.
	assert.True(t, meta.MatchesAttributes(map[string]any{"year": 2020}))
	assert.True(t, meta.MatchesAttributes(map[string]any{"labels": []string{"a", "b"}}))
	assert.False(t, meta.MatchesAttributes(map[string]any{"year": 2021}))

	// And the reverse direction: in-memory int against a float filter.
	fresh := Metadata{Attributes: map[string]any{"year": 2020}}
	assert.True(t, fresh.MatchesAttributes(map[string]any{"year": float64(2020)}))
}

func TestNewDocID(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 45, 123456789, time.UTC)
	content := []byte("ocean temperature data")

	id1 := NewDocID(content, now)
	id2 := NewDocID(content, now)

	// Identical content stored twice must yield distinct ids.
	assert.NotEqual(t, id1, id2)

	// Timestamp component is the UTC wall clock.
	assert.True(t, len(id1) > 0)
	assert.Contains(t, string(id1), "20240301T123045.123456789_")

	// Hash component is stable for identical content.
	assert.Equal(t, string(id1)[len(id1)-16:], string(id2)[len(id2)-16:])
}

func TestChecksum(t *testing.T) {
	a := Checksum([]byte("hello"))
	b := Checksum([]byte("hello"))
	c := Checksum([]byte("world"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
