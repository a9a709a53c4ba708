// Package keyword holds the reference classifier, analyzer and synthesizer.
// They run on fixed keyword tables and exist to exercise the pipeline
// contracts; a real NLP backend can replace any of them without touching the
// coordinator or the document catalog.
package keyword

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/agentic-rag/internal/domain/pipeline"
)

// keywordSet keeps table iteration order fixed so classification output is
// deterministic (a map would randomize domain order and, with it, search and
// source order).
type keywordSet struct {
	Name     string
	Keywords []string
}

var defaultDomains = []keywordSet{
	{"quantum", []string{"quantum", "qubit", "superposition", "entanglement"}},
	{"artificial", []string{"ai", "artificial intelligence", "machine learning", "neural network"}},
	{"climate", []string{"climate", "weather", "temperature", "greenhouse", "ocean", "marine"}},
}

var defaultDomainTags = map[string][]string{
	"quantum":    {"quantum", "physics"},
	"artificial": {"ai", "machine-learning"},
	"climate":    {"climate", "environment", "marine"},
}

var defaultIntents = []keywordSet{
	{"compare", []string{"compare", "contrast", "difference", "versus", "vs"}},
	{"explain", []string{"explain", "describe", "what is", "how does", "what are"}},
	{"analyze", []string{"analyze", "examine", "investigate"}},
	{"solve", []string{"solve", "address", "handle", "fix"}},
	{"impact", []string{"impact", "effect", "affect", "influence"}},
}

var defaultFocus = []keywordSet{
	{"temperature", []string{"temperature", "warming", "heat"}},
	{"biodiversity", []string{"biodiversity", "species", "ecosystem"}},
	{"coral", []string{"coral", "reef"}},
	{"ocean", []string{"ocean", "sea", "marine"}},
	{"climate", []string{"climate", "weather", "atmospheric"}},
}

// Classifier maps a query onto a closed domain taxonomy and intent vocabulary.
type Classifier struct {
	Domains    []keywordSet
	DomainTags map[string][]string
	Intents    []keywordSet
	Focus      []keywordSet
	Now        func() time.Time
}

func NewClassifier() *Classifier {
	return &Classifier{
		Domains:    defaultDomains,
		DomainTags: defaultDomainTags,
		Intents:    defaultIntents,
		Focus:      defaultFocus,
		Now:        time.Now,
	}
}

func (c *Classifier) Classify(ctx context.Context, query string) (*pipeline.Classification, error) {
	q := strings.ToLower(query)

	domains := matchAll(q, c.Domains)
	tags := c.tagsFor(domains)
	intents := matchAll(q, c.Intents)
	if len(intents) == 0 {
		intents = []string{"explain"} // default intent
	}

	qctx := pipeline.QueryContext{
		QueryType:  "single_domain",
		Complexity: "simple",
		Focus:      matchFirst(q, c.Focus, "general"),
	}
	if strings.Contains(q, "compare") {
		qctx.QueryType = "comparison"
	}
	if len(strings.Fields(query)) > 10 {
		qctx.Complexity = "complex"
	}

	subtasks := make([]pipeline.Task, 0, len(domains))
	for i, d := range domains {
		subtasks = append(subtasks, pipeline.Task{
			ID:        fmt.Sprintf("analyze_domain_%s_%d", d, i),
			Kind:      "document_analysis",
			Payload:   map[string]any{"domain": d},
			Priority:  1,
			CreatedAt: c.Now(),
		})
	}

	// Base 0.7, +0.1 for each non-empty component, capped at 1.0.
	confidence := 0.7
	if len(subtasks) > 0 {
		confidence += 0.1
	}
	if len(intents) > 0 {
		confidence += 0.1
	}
	confidence += 0.1 // context is always populated
	if confidence > 1.0 {
		confidence = 1.0
	}

	return &pipeline.Classification{
		Domains:    domains,
		Intents:    intents,
		Tags:       tags,
		Context:    qctx,
		Subtasks:   subtasks,
		Confidence: confidence,
	}, nil
}

// tagsFor expands matched domains into tags, first-seen order, deduplicated.
func (c *Classifier) tagsFor(domains []string) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, d := range domains {
		for _, t := range c.DomainTags[d] {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

func matchAll(q string, sets []keywordSet) []string {
	var out []string
	for _, set := range sets {
		if containsAny(q, set.Keywords) {
			out = append(out, set.Name)
		}
	}
	return out
}

func matchFirst(q string, sets []keywordSet, fallback string) string {
	for _, set := range sets {
		if containsAny(q, set.Keywords) {
			return set.Name
		}
	}
	return fallback
}

func containsAny(q string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}
