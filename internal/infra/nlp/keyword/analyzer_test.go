package keyword

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
	"github.com/bryanwahyu/agentic-rag/internal/domain/pipeline"
)

type stubSource struct {
	content map[domain.DocID][]byte
	err     error
}

func (s *stubSource) RetrieveDocument(ctx context.Context, id domain.DocID) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	b, ok := s.content[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

func textRef(id, filename string, tags []string, attrs map[string]any) *domain.Reference {
	return &domain.Reference{
		ID: domain.DocID(id),
		Metadata: domain.Metadata{
			ID:          domain.DocID(id),
			Filename:    filename,
			ContentType: "text/plain",
			Tags:        tags,
			Attributes:  attrs,
		},
	}
}

const oceanDoc = `Ocean Temperature Report

Rising sea temperatures affect marine ecosystems worldwide.

Key observations:
- Average ocean temperature rose 0.6 degrees
- Coral reef bleaching accelerated
* Species migration patterns shifted

Conclusions: warming trends will continue without intervention.`

func TestAnalyzeTextDocument(t *testing.T) {
	src := &stubSource{content: map[domain.DocID][]byte{"doc-1": []byte(oceanDoc)}}
	a := NewAnalyzer(src)

	ref := textRef("doc-1", "ocean.txt", []string{"climate"}, map[string]any{"domain": "climate"})
	res, err := a.Analyze(context.Background(), ref)
	require.NoError(t, err)

	assert.False(t, res.Binary)
	assert.Equal(t, oceanDoc, res.Content)
	assert.Equal(t, "climate", res.Context.Domain)
	assert.Equal(t, "Ocean Temperature Report", res.Context.Summary)
	assert.Equal(t, []string{
		"Average ocean temperature rose 0.6 degrees",
		"Coral reef bleaching accelerated",
		"Species migration patterns shifted",
	}, res.Context.KeyPoints)
	assert.Equal(t, "warming trends will continue without intervention.", res.Context.Conclusions)

	// domain + tag + topic relationships
	assert.Contains(t, res.Relationships, pipeline.Relationship{Type: "domain", Value: "climate"})
	assert.Contains(t, res.Relationships, pipeline.Relationship{Type: "tag", Value: "climate"})
	assert.Contains(t, res.Relationships, pipeline.Relationship{Type: "topic", Value: "temperature"})
	assert.Contains(t, res.Relationships, pipeline.Relationship{Type: "topic", Value: "ocean"})

	assert.Equal(t, "doc-1", res.Metadata["doc_id"])
	assert.Equal(t, "ocean.txt", res.Metadata["filename"])
}

func TestAnalyzeMissingContentIsInBand(t *testing.T) {
	a := NewAnalyzer(&stubSource{})

	ref := textRef("gone", "gone.txt", nil, nil)
	res, err := a.Analyze(context.Background(), ref)
	require.NoError(t, err, "retrieval failure must not surface as an error")

	assert.Equal(t, "Error: Content not found for gone.txt", res.Content)
	assert.False(t, res.Binary)
	assert.Empty(t, res.Context.Summary, "placeholder content is not analyzed")
}

func TestAnalyzeRetrievalErrorIsInBand(t *testing.T) {
	a := NewAnalyzer(&stubSource{err: errors.New("disk on fire")})

	res, err := a.Analyze(context.Background(), textRef("doc-1", "x.txt", nil, nil))
	require.NoError(t, err)
	assert.Contains(t, res.Content, "Error retrieving content")
	assert.Contains(t, res.Content, "disk on fire")
}

func TestAnalyzeBinaryDocument(t *testing.T) {
	src := &stubSource{content: map[domain.DocID][]byte{"img": {0xFF, 0xD8, 0xFF}}}
	a := NewAnalyzer(src)

	ref := textRef("img", "photo.jpg", []string{"media"}, nil)
	ref.Metadata.ContentType = "image/jpeg"

	res, err := a.Analyze(context.Background(), ref)
	require.NoError(t, err)
	assert.True(t, res.Binary)
	assert.Empty(t, res.Content)
	assert.Empty(t, res.Context.Summary)
	// Tag relationships survive, topic extraction does not run.
	assert.Contains(t, res.Relationships, pipeline.Relationship{Type: "tag", Value: "media"})
	for _, r := range res.Relationships {
		assert.NotEqual(t, "topic", r.Type)
	}
}

func TestAnalyzeUnknownDomain(t *testing.T) {
	src := &stubSource{content: map[domain.DocID][]byte{"d": []byte("plain text")}}
	a := NewAnalyzer(src)

	res, err := a.Analyze(context.Background(), textRef("d", "d.txt", nil, nil))
	require.NoError(t, err)
	assert.Equal(t, "unknown", res.Context.Domain)
}
