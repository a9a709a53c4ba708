package keyword

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	domain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
	"github.com/bryanwahyu/agentic-rag/internal/domain/pipeline"
)

// ContentSource is the slice of the document facade the analyzer needs.
type ContentSource interface {
	RetrieveDocument(ctx context.Context, id domain.DocID) ([]byte, error)
}

var relatedTopics = []keywordSet{
	{"temperature", []string{"temperature", "warming", "heat"}},
	{"biodiversity", []string{"biodiversity", "species", "ecosystem"}},
	{"coral", []string{"coral", "reef"}},
	{"ocean", []string{"ocean", "sea", "marine"}},
}

var conclusionsRe = regexp.MustCompile(`(?is)conclusions?:(.+?)(?:\n\n|$)`)

// Analyzer extracts summary, key points, conclusions and relationships from
// one document.
type Analyzer struct {
	Docs ContentSource
}

func NewAnalyzer(docs ContentSource) *Analyzer {
	return &Analyzer{Docs: docs}
}

// Analyze never fails because of the document itself: content-retrieval
// errors are encoded as placeholder content so one bad document cannot abort
// a batch.
func (a *Analyzer) Analyze(ctx context.Context, ref *domain.Reference) (*pipeline.DocAnalysis, error) {
	meta := map[string]any{
		"doc_id":       string(ref.ID),
		"filename":     ref.Metadata.Filename,
		"content_type": ref.Metadata.ContentType,
		"tags":         ref.Metadata.Tags,
		"domain":       docDomain(ref),
	}

	content, binary := a.retrieveContent(ctx, ref)

	dctx := pipeline.DocContext{
		Domain:      docDomain(ref),
		ContentType: ref.Metadata.ContentType,
		KeyPoints:   []string{},
	}
	if !binary {
		extractContext(content, &dctx)
	}

	return &pipeline.DocAnalysis{
		Content:       content,
		Binary:        binary,
		Context:       dctx,
		Relationships: a.identifyRelationships(content, binary, ref),
		Metadata:      meta,
	}, nil
}

// retrieveContent fetches the document bytes. Failures come back as a
// descriptive placeholder string, not an error.
func (a *Analyzer) retrieveContent(ctx context.Context, ref *domain.Reference) (string, bool) {
	raw, err := a.Docs.RetrieveDocument(ctx, ref.ID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Sprintf("Error: Content not found for %s", ref.Metadata.Filename), false
	}
	if err != nil {
		return fmt.Sprintf("Error retrieving content: %v", err), false
	}
	if strings.HasPrefix(ref.Metadata.ContentType, "text/") {
		return string(raw), false
	}
	return "", true
}

func extractContext(content string, dctx *pipeline.DocContext) {
	// Summary: first non-empty paragraph.
	for _, p := range strings.Split(content, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			dctx.Summary = p
			break
		}
	}

	// Key points: bulleted or numbered lines.
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "•") || strings.HasPrefix(line, "-") ||
			strings.HasPrefix(line, "*") || (line[0] >= '0' && line[0] <= '9') {
			dctx.KeyPoints = append(dctx.KeyPoints, strings.TrimLeft(line, "•-* "))
		}
	}

	// Conclusions: text after a "Conclusions:" heading up to the next blank
	// line or end of text.
	if m := conclusionsRe.FindStringSubmatch(content); m != nil {
		dctx.Conclusions = strings.TrimSpace(m[1])
	}
}

func (a *Analyzer) identifyRelationships(content string, binary bool, ref *domain.Reference) []pipeline.Relationship {
	rels := []pipeline.Relationship{{Type: "domain", Value: docDomain(ref)}}
	for _, t := range ref.Metadata.Tags {
		rels = append(rels, pipeline.Relationship{Type: "tag", Value: t})
	}
	if !binary {
		lower := strings.ToLower(content)
		for _, topic := range relatedTopics {
			if containsAny(lower, topic.Keywords) {
				rels = append(rels, pipeline.Relationship{Type: "topic", Value: topic.Name})
			}
		}
	}
	return rels
}

func docDomain(ref *domain.Reference) string {
	if d, ok := ref.Metadata.Attributes["domain"].(string); ok && d != "" {
		return d
	}
	return "unknown"
}
