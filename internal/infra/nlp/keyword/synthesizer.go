package keyword

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/agentic-rag/internal/domain/pipeline"
)

// NoInformationFound is rendered when synthesis produced nothing beyond an
// optional domain preamble.
const NoInformationFound = "No relevant information found for this specific query."

// focusAreas drives key-point filtering against the raw query.
var focusAreas = []keywordSet{
	{"temperature", []string{"temperature", "warming", "heat"}},
	{"biodiversity", []string{"biodiversity", "species", "ecosystem"}},
	{"coral", []string{"coral", "reef"}},
	{"ocean", []string{"ocean", "sea", "marine"}},
	{"conclusions", []string{"conclusion", "summary", "findings"}},
}

// responseFocus drives section rendering; its conclusions entry also matches
// "key" ("key findings", "key conclusions").
var responseFocus = []keywordSet{
	{"temperature", []string{"temperature", "warming", "heat"}},
	{"biodiversity", []string{"biodiversity", "species", "ecosystem"}},
	{"coral", []string{"coral", "reef"}},
	{"ocean", []string{"ocean", "sea", "marine"}},
	{"conclusions", []string{"conclusion", "summary", "findings", "key"}},
}

var focusHeadings = map[string]string{
	"temperature":  "Temperature-related findings:",
	"biodiversity": "Biodiversity impacts:",
	"coral":        "Coral reef impacts:",
}

// Synthesizer integrates per-document analyses into one attributed answer.
type Synthesizer struct {
	Now func() time.Time
}

func NewSynthesizer() *Synthesizer {
	return &Synthesizer{Now: time.Now}
}

type docInfo struct {
	summary       string
	domain        string
	keyPoints     []string
	conclusions   string
	relationships []pipeline.Relationship
}

type integrated struct {
	domains     []string
	summaries   []string
	mainPoints  []string
	conclusions []string
	focus       string
}

func (s *Synthesizer) Synthesize(ctx context.Context, c *pipeline.Classification, docs []*pipeline.DocAnalysis, rawQuery string) (*pipeline.Result, error) {
	info := extractRelevantInfo(docs, rawQuery)
	integ := integrate(info, rawQuery)
	response := renderResponse(integ)
	confidence := synthesisConfidence(docs, c)

	sources := make([]string, 0, len(docs))
	for _, d := range docs {
		name, _ := d.Metadata["filename"].(string)
		sources = append(sources, name)
	}

	return &pipeline.Result{
		TaskID:      fmt.Sprintf("synthesis_%s", uuid.NewString()),
		Status:      pipeline.StatusCompleted,
		Data:        response,
		CompletedAt: s.Now(),
		Metadata: map[string]any{
			"confidence": confidence,
			"sources":    sources,
		},
	}, nil
}

// extractRelevantInfo collects the text analyses, filtering key points down
// to the query's focus areas when any were detected.
func extractRelevantInfo(docs []*pipeline.DocAnalysis, rawQuery string) []docInfo {
	q := strings.ToLower(rawQuery)
	var active []keywordSet
	for _, f := range focusAreas {
		if containsAny(q, f.Keywords) {
			active = append(active, f)
		}
	}

	var out []docInfo
	for _, d := range docs {
		if d.Binary {
			continue
		}
		info := docInfo{
			summary:       d.Context.Summary,
			domain:        d.Context.Domain,
			keyPoints:     d.Context.KeyPoints,
			conclusions:   d.Context.Conclusions,
			relationships: d.Relationships,
		}
		if len(active) > 0 {
			var filtered []string
			for _, p := range info.keyPoints {
				pl := strings.ToLower(p)
				for _, f := range active {
					if containsAny(pl, f.Keywords) {
						filtered = append(filtered, p)
						break
					}
				}
			}
			info.keyPoints = filtered
		}
		out = append(out, info)
	}
	return out
}

// integrate merges per-document info. Dedup is exact-string, first-seen order.
func integrate(info []docInfo, rawQuery string) integrated {
	out := integrated{focus: matchFirst(strings.ToLower(rawQuery), responseFocus, "general")}

	seenDomain := map[string]struct{}{}
	seenSummary := map[string]struct{}{}
	seenPoint := map[string]struct{}{}
	seenConclusion := map[string]struct{}{}

	for _, in := range info {
		if in.domain != "" {
			if _, ok := seenDomain[in.domain]; !ok {
				seenDomain[in.domain] = struct{}{}
				out.domains = append(out.domains, in.domain)
			}
		}
		if in.summary != "" {
			if _, ok := seenSummary[in.summary]; !ok {
				seenSummary[in.summary] = struct{}{}
				out.summaries = append(out.summaries, in.summary)
			}
		}
		for _, p := range in.keyPoints {
			if _, ok := seenPoint[p]; !ok {
				seenPoint[p] = struct{}{}
				out.mainPoints = append(out.mainPoints, p)
			}
		}
		if in.conclusions != "" {
			if _, ok := seenConclusion[in.conclusions]; !ok {
				seenConclusion[in.conclusions] = struct{}{}
				out.conclusions = append(out.conclusions, in.conclusions)
			}
		}
	}
	return out
}

func renderResponse(in integrated) string {
	var parts []string

	if len(in.domains) > 0 {
		parts = append(parts, fmt.Sprintf("Based on analysis of %s research:", strings.Join(in.domains, ", ")))
	}

	switch in.focus {
	case "temperature", "biodiversity", "coral":
		var points []string
		keywords := keywordsFor(in.focus)
		for _, p := range in.mainPoints {
			if containsAny(strings.ToLower(p), keywords) {
				points = append(points, p)
			}
		}
		if len(points) > 0 {
			parts = append(parts, "\n"+focusHeadings[in.focus])
			for _, p := range points {
				parts = append(parts, "- "+p)
			}
		}
	case "conclusions":
		parts = append(parts, "\nKey conclusions:")
		items := in.conclusions
		if len(items) == 0 {
			items = in.mainPoints
		}
		for _, c := range items {
			parts = append(parts, "- "+c)
		}
	default:
		if len(in.mainPoints) > 0 {
			parts = append(parts, "\nKey findings:")
			for _, p := range in.mainPoints {
				parts = append(parts, "- "+p)
			}
		}
	}

	// Nothing rendered beyond the domain preamble.
	if len(parts) <= 1 {
		parts = append(parts, NoInformationFound)
	}
	return strings.Join(parts, "\n")
}

func keywordsFor(focus string) []string {
	for _, f := range responseFocus {
		if f.Name == focus {
			return f.Keywords
		}
	}
	return nil
}

// synthesisConfidence = classifier confidence × document coverage ×
// average content quality.
func synthesisConfidence(docs []*pipeline.DocAnalysis, c *pipeline.Classification) float64 {
	if len(docs) == 0 {
		return 0.0
	}

	docFactor := 0.5
	if len(c.Domains) > 0 {
		docFactor = float64(len(docs)) / float64(len(c.Domains))
		if docFactor > 1.0 {
			docFactor = 1.0
		}
	}

	var total float64
	for _, d := range docs {
		var score float64
		if !d.Binary && strings.TrimSpace(d.Content) != "" {
			score += 0.4
		}
		if d.Context.Summary != "" {
			score += 0.3
		}
		if len(d.Relationships) > 0 {
			score += 0.3
		}
		total += score
	}
	contentFactor := total / float64(len(docs))

	return c.Confidence * docFactor * contentFactor
}
