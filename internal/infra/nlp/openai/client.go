package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/agentic-rag/internal/infra/nlp/prompt"

	docdomain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
	"github.com/bryanwahyu/agentic-rag/internal/domain/pipeline"
)

const maxTokens = 2048

// ContentSource is the slice of the document facade the analyzer needs.
type ContentSource interface {
	RetrieveDocument(ctx context.Context, id docdomain.DocID) ([]byte, error)
}

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

func (c *Client) chat(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	model := c.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
			return "", fmt.Errorf("%w: %v", pipeline.ErrQuotaExceeded, err)
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	return resp.Choices[0].Message.Content, nil
}

// Analyzer is a ContentAnalyzer backed by a chat model. It honors the same
// contract as the keyword analyzer: retrieval failures become placeholder
// content, never an error.
type Analyzer struct {
	Client *Client
	Docs   ContentSource
}

func NewAnalyzer(client *Client, docs ContentSource) *Analyzer {
	return &Analyzer{Client: client, Docs: docs}
}

type analyzerOutput struct {
	Summary     string   `json:"summary"`
	KeyPoints   []string `json:"key_points"`
	Conclusions string   `json:"conclusions"`
	Topics      []string `json:"topics"`
}

func (a *Analyzer) Analyze(ctx context.Context, ref *docdomain.Reference) (*pipeline.DocAnalysis, error) {
	meta := map[string]any{
		"doc_id":       string(ref.ID),
		"filename":     ref.Metadata.Filename,
		"content_type": ref.Metadata.ContentType,
		"tags":         ref.Metadata.Tags,
		"domain":       docDomain(ref),
	}
	dctx := pipeline.DocContext{
		Domain:      docDomain(ref),
		ContentType: ref.Metadata.ContentType,
		KeyPoints:   []string{},
	}

	raw, err := a.Docs.RetrieveDocument(ctx, ref.ID)
	if err != nil {
		content := fmt.Sprintf("Error retrieving content: %v", err)
		if errors.Is(err, docdomain.ErrNotFound) {
			content = fmt.Sprintf("Error: Content not found for %s", ref.Metadata.Filename)
		}
		return &pipeline.DocAnalysis{
			Content:       content,
			Context:       dctx,
			Relationships: baseRelationships(ref),
			Metadata:      meta,
		}, nil
	}

	if !strings.HasPrefix(ref.Metadata.ContentType, "text/") {
		return &pipeline.DocAnalysis{
			Binary:        true,
			Context:       dctx,
			Relationships: baseRelationships(ref),
			Metadata:      meta,
		}, nil
	}
	content := string(raw)

	out, err := a.Client.chat(ctx,
		prompt.GetAnalyzerSystemPrompt(),
		prompt.GetAnalyzerUserPrompt(ref.Metadata.Filename, content),
		true,
	)
	if err != nil {
		return nil, err
	}

	var parsed analyzerOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, fmt.Errorf("decoding analyzer output: %w", err)
	}

	dctx.Summary = parsed.Summary
	if parsed.KeyPoints != nil {
		dctx.KeyPoints = parsed.KeyPoints
	}
	dctx.Conclusions = parsed.Conclusions

	rels := baseRelationships(ref)
	for _, t := range parsed.Topics {
		rels = append(rels, pipeline.Relationship{Type: "topic", Value: t})
	}

	return &pipeline.DocAnalysis{
		Content:       content,
		Context:       dctx,
		Relationships: rels,
		Metadata:      meta,
	}, nil
}

// Synthesizer is a Synthesizer backed by a chat model. Confidence uses the
// same coverage/quality formula as the keyword synthesizer so the two
// backends are interchangeable.
type Synthesizer struct {
	Client *Client
	Now    func() time.Time
}

func NewSynthesizer(client *Client) *Synthesizer {
	return &Synthesizer{Client: client, Now: time.Now}
}

func (s *Synthesizer) Synthesize(ctx context.Context, c *pipeline.Classification, docs []*pipeline.DocAnalysis, rawQuery string) (*pipeline.Result, error) {
	response, err := s.Client.chat(ctx,
		prompt.GetSynthesizerSystemPrompt(),
		prompt.GetSynthesizerUserPrompt(rawQuery, docs),
		false,
	)
	if err != nil {
		return nil, err
	}

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
			"confidence": confidence(docs, c),
			"sources":    sources,
		},
	}, nil
}

func confidence(docs []*pipeline.DocAnalysis, c *pipeline.Classification) float64 {
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
	return c.Confidence * docFactor * (total / float64(len(docs)))
}

func baseRelationships(ref *docdomain.Reference) []pipeline.Relationship {
	rels := []pipeline.Relationship{{Type: "domain", Value: docDomain(ref)}}
	for _, t := range ref.Metadata.Tags {
		rels = append(rels, pipeline.Relationship{Type: "tag", Value: t})
	}
	return rels
}

func docDomain(ref *docdomain.Reference) string {
	if d, ok := ref.Metadata.Attributes["domain"].(string); ok && d != "" {
		return d
	}
	return "unknown"
}
