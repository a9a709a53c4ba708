package keyword

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/agentic-rag/internal/domain/pipeline"
)

func analysis(domain, summary string, points []string, conclusions string) *pipeline.DocAnalysis {
	return &pipeline.DocAnalysis{
		Content: "some content",
		Context: pipeline.DocContext{
			Domain:      domain,
			ContentType: "text/plain",
			Summary:     summary,
			KeyPoints:   points,
			Conclusions: conclusions,
		},
		Relationships: []pipeline.Relationship{{Type: "domain", Value: domain}},
		Metadata:      map[string]any{"filename": domain + ".txt"},
	}
}

func TestSynthesizeEmptyCorpus(t *testing.T) {
	s := NewSynthesizer()
	cls := &pipeline.Classification{Domains: []string{"climate"}, Confidence: 1.0}

	res, err := s.Synthesize(context.Background(), cls, nil, "ocean temperature")
	require.NoError(t, err)

	assert.Equal(t, pipeline.StatusCompleted, res.Status)
	assert.Equal(t, NoInformationFound, res.Data)
	assert.Equal(t, 0.0, res.Metadata["confidence"])
	assert.Empty(t, res.Metadata["sources"])
}

func TestSynthesizeRendersFindings(t *testing.T) {
	s := NewSynthesizer()
	cls := &pipeline.Classification{Domains: []string{"climate"}, Confidence: 1.0}
	docs := []*pipeline.DocAnalysis{
		analysis("climate", "A summary.", []string{"Ocean temperature rose", "Species moved north"}, ""),
	}

	res, err := s.Synthesize(context.Background(), cls, docs, "tell me about the data")
	require.NoError(t, err)

	out, ok := res.Data.(string)
	require.True(t, ok)
	assert.Contains(t, out, "Based on analysis of climate research:")
	assert.Contains(t, out, "Key findings:")
	assert.Contains(t, out, "- Ocean temperature rose")
	assert.Contains(t, out, "- Species moved north")
}

func TestSynthesizeFocusFiltersKeyPoints(t *testing.T) {
	s := NewSynthesizer()
	cls := &pipeline.Classification{Domains: []string{"climate"}, Confidence: 1.0}
	docs := []*pipeline.DocAnalysis{
		analysis("climate", "A summary.", []string{
			"Ocean temperature rose 0.6 degrees",
			"Fish populations declined",
		}, ""),
	}

	res, err := s.Synthesize(context.Background(), cls, docs, "how much warming has the temperature shown?")
	require.NoError(t, err)

	out := res.Data.(string)
	assert.Contains(t, out, "Temperature-related findings:")
	assert.Contains(t, out, "- Ocean temperature rose 0.6 degrees")
	assert.NotContains(t, out, "Fish populations declined")
}

func TestSynthesizeConclusionsFocus(t *testing.T) {
	s := NewSynthesizer()
	cls := &pipeline.Classification{Domains: []string{"climate"}, Confidence: 1.0}
	docs := []*pipeline.DocAnalysis{
		analysis("climate", "A summary.", []string{"Point one"}, "Warming will continue."),
	}

	res, err := s.Synthesize(context.Background(), cls, docs, "what are the key conclusions?")
	require.NoError(t, err)

	out := res.Data.(string)
	assert.Contains(t, out, "Key conclusions:")
	assert.Contains(t, out, "- Warming will continue.")
}

func TestSynthesizeDeduplicates(t *testing.T) {
	s := NewSynthesizer()
	cls := &pipeline.Classification{Domains: []string{"climate"}, Confidence: 1.0}
	docs := []*pipeline.DocAnalysis{
		analysis("climate", "Shared summary.", []string{"Shared point"}, ""),
		analysis("climate", "Shared summary.", []string{"Shared point"}, ""),
	}

	res, err := s.Synthesize(context.Background(), cls, docs, "tell me everything")
	require.NoError(t, err)

	out := res.Data.(string)
	assert.Equal(t, 1, strings.Count(out, "Shared point"))
	assert.Equal(t, 1, strings.Count(out, "Based on analysis of climate research:"))
}

func TestSynthesizeSkipsBinaryDocs(t *testing.T) {
	s := NewSynthesizer()
	cls := &pipeline.Classification{Domains: []string{"climate"}, Confidence: 1.0}
	docs := []*pipeline.DocAnalysis{
		{Binary: true, Metadata: map[string]any{"filename": "photo.jpg"}},
	}

	res, err := s.Synthesize(context.Background(), cls, docs, "tell me everything")
	require.NoError(t, err)

	assert.Equal(t, NoInformationFound, res.Data)
	// Binary docs still count as sources, they just contribute no text.
	assert.Equal(t, []string{"photo.jpg"}, res.Metadata["sources"])
}

func TestSynthesisConfidence(t *testing.T) {
	cls := &pipeline.Classification{Domains: []string{"climate", "quantum"}, Confidence: 0.9}

	// One rich doc over two domains: coverage 0.5, quality 1.0.
	docs := []*pipeline.DocAnalysis{
		analysis("climate", "Summary.", []string{"p"}, ""),
	}
	assert.InDelta(t, 0.9*0.5*1.0, synthesisConfidence(docs, cls), 1e-9)

	// No summary and no relationships lowers the quality factor.
	poor := []*pipeline.DocAnalysis{{Content: "text only"}}
	assert.InDelta(t, 0.9*0.5*0.4, synthesisConfidence(poor, cls), 1e-9)

	assert.Equal(t, 0.0, synthesisConfidence(nil, cls))
}
