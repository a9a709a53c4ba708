package pipeline

import (
	"context"

	"github.com/bryanwahyu/agentic-rag/internal/domain/documents"
)

// QueryClassifier port: query string → domains, intents, tags, context.
// The keyword implementation is a stand-in; anything satisfying the output
// contract (NLP, embeddings) can be substituted.
type QueryClassifier interface {
	Classify(ctx context.Context, query string) (*Classification, error)
}

// ContentAnalyzer port: one document → extracted analysis.
// Implementations must contain content-retrieval failures inside the returned
// DocAnalysis as placeholder content. A non-nil error is reserved for
// implementation-internal faults; the coordinator converts those to
// placeholders too, so one bad document never aborts a batch.
type ContentAnalyzer interface {
	Analyze(ctx context.Context, ref *documents.Reference) (*DocAnalysis, error)
}

// Synthesizer port: (classification, per-document analyses, raw query) →
// attributed answer with confidence.
type Synthesizer interface {
	Synthesize(ctx context.Context, c *Classification, docs []*DocAnalysis, rawQuery string) (*Result, error)
}
