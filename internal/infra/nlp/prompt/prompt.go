package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/agentic-rag/internal/domain/pipeline"
)

// GetAnalyzerSystemPrompt provides strict directions and schema for JSON output.
func GetAnalyzerSystemPrompt() string {
	return `You are a document analyst. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- summary is the document's main point in one or two sentences.
- key_points is an array of short factual statements taken from the document.
- conclusions holds the document's stated conclusions, or an empty string when it has none.
- topics is an array of short lowercase topic labels found in the document.

Schema (example with empty values):
{
  "summary": "<string>",
  "key_points": ["<string>"],
  "conclusions": "<string>",
  "topics": ["<string>"]
}`
}

// GetAnalyzerUserPrompt builds the user message around one document.
func GetAnalyzerUserPrompt(filename, content string) string {
	return fmt.Sprintf("Analyze the document %q and respond with the JSON per schema.\n\n%s", filename, content)
}

// GetSynthesizerSystemPrompt directs the model to answer from the supplied
// analyses only, with source attribution.
func GetSynthesizerSystemPrompt() string {
	return `You are a research assistant. Answer the user's question using only the document analyses supplied in the prompt. Do not invent facts. When nothing in the analyses answers the question, say exactly: "No relevant information found for this specific query." Keep the answer short and cite findings as bullet points.`
}

// GetSynthesizerUserPrompt packs the query and the per-document analyses
// into one compact user message.
func GetSynthesizerUserPrompt(query string, docs []*pipeline.DocAnalysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", query)
	for i, d := range docs {
		name, _ := d.Metadata["filename"].(string)
		fmt.Fprintf(&b, "Document %d (%s, domain %s):\n", i+1, name, d.Context.Domain)
		if d.Context.Summary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", d.Context.Summary)
		}
		for _, p := range d.Context.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		if d.Context.Conclusions != "" {
			fmt.Fprintf(&b, "Conclusions: %s\n", d.Context.Conclusions)
		}
		b.WriteString("\n")
	}
	return b.String()
}
