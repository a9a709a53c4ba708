package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/agentic-rag/internal/application"
	docdomain "github.com/bryanwahyu/agentic-rag/internal/domain/documents"
	domain "github.com/bryanwahyu/agentic-rag/internal/domain/pipeline"
)

// DocumentSource is the slice of the document facade the coordinator needs.
type DocumentSource interface {
	Search(ctx context.Context, tags []string, attrs map[string]any) ([]*docdomain.Reference, error)
	GetReference(ctx context.Context, id docdomain.DocID) (*docdomain.Reference, error)
}

// Coordinator orchestrates one query end to end: classify, resolve candidate
// documents, fan analyzer tasks out concurrently, synthesize, attach
// provenance. ProcessQuery never propagates a pipeline failure as an error;
// failures become a failed Result.
type Coordinator struct {
	Docs       DocumentSource
	Classifier domain.QueryClassifier
	Analyzer   domain.ContentAnalyzer
	Synth      domain.Synthesizer
	Clock      application.Clock
	Logger     *log.Logger
	Monitor    *Monitor

	// MaxConcurrency caps concurrent analyzer tasks; 0 means unbounded.
	MaxConcurrency int
	// QueryTimeout bounds one request; 0 disables enforcement.
	QueryTimeout time.Duration
}

func NewCoordinator(docs DocumentSource, cls domain.QueryClassifier, an domain.ContentAnalyzer, syn domain.Synthesizer, clock application.Clock, logger *log.Logger, monitor *Monitor) *Coordinator {
	if clock == nil {
		clock = application.SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	if monitor == nil {
		monitor = NewMonitor()
	}
	return &Coordinator{
		Docs:       docs,
		Classifier: cls,
		Analyzer:   an,
		Synth:      syn,
		Clock:      clock,
		Logger:     logger,
		Monitor:    monitor,
	}
}

func (c *Coordinator) resources() domain.Resources {
	timeout := c.QueryTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return domain.Resources{
		MemoryLimit: 1 << 30, // 1 GiB
		CPULimit:    0.8,
		Timeout:     timeout,
	}
}

// ProcessQuery runs the full pipeline and always returns a Result with a
// definite status.
func (c *Coordinator) ProcessQuery(ctx context.Context, query string) *domain.Result {
	start := c.Clock.Now()
	requestID := uuid.NewString()

	execCtx := domain.ExecutionContext{
		StartTime: start,
		Resources: c.resources(),
		Metadata:  map[string]any{"request_id": requestID},
	}

	if c.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.QueryTimeout)
		defer cancel()
	}

	result, err := c.run(ctx, query, &execCtx)
	elapsed := c.Clock.Now().Sub(start)
	if err != nil {
		c.Logger.Printf("query failed request_id=%s err=%v", requestID, err)
		c.Monitor.RecordQuery(elapsed, true)
		return &domain.Result{
			TaskID:      fmt.Sprintf("query_processing_%s", requestID),
			Status:      domain.StatusFailed,
			Data:        nil,
			Error:       fmt.Errorf("%w: %v", domain.ErrOrchestration, err).Error(),
			CompletedAt: c.Clock.Now(),
			Metadata:    map[string]any{"request_id": requestID},
		}
	}

	c.Monitor.RecordQuery(elapsed, false)
	return result
}

func (c *Coordinator) run(ctx context.Context, query string, execCtx *domain.ExecutionContext) (*domain.Result, error) {
	// 1. Classify.
	c.Logger.Printf("starting query analysis request_id=%s", execCtx.Metadata["request_id"])
	classification, err := c.Classifier.Classify(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("classifying query: %w", err)
	}

	// 2-3. Resolve and deduplicate candidate documents.
	refs, err := c.findRelevantDocuments(ctx, classification)
	if err != nil {
		return nil, fmt.Errorf("finding documents: %w", err)
	}
	refs = dedupByID(refs)

	// 4. One analysis task per document, no dependencies.
	plan := c.buildPlan(refs)

	// 5. Fan out, join all.
	analyses, err := c.executePlan(ctx, plan, refs)
	if err != nil {
		return nil, err
	}

	// 6. Synthesize.
	c.Logger.Printf("synthesizing final response request_id=%s docs=%d", execCtx.Metadata["request_id"], len(analyses))
	result, err := c.Synth.Synthesize(ctx, classification, analyses, query)
	if err != nil {
		return nil, fmt.Errorf("synthesizing response: %w", err)
	}

	// 7. Attach provenance metadata.
	confidence, _ := result.Metadata["confidence"].(float64)
	sources := make([]string, 0, len(refs))
	for _, ref := range refs {
		sources = append(sources, ref.Metadata.Filename)
	}
	result.Status = domain.StatusCompleted
	result.Metadata = map[string]any{
		"confidence":      confidence,
		"sources":         sources,
		"completion_time": c.Clock.Now().Format(time.RFC3339Nano),
		"request_id":      execCtx.Metadata["request_id"],
	}
	return result, nil
}

// findRelevantDocuments resolves candidates with a three-tier fallback, each
// tier attempted only when the previous one came back empty: domain
// attribute search, then tag search, then everything.
func (c *Coordinator) findRelevantDocuments(ctx context.Context, cls *domain.Classification) ([]*docdomain.Reference, error) {
	var refs []*docdomain.Reference
	for _, d := range cls.Domains {
		found, err := c.Docs.Search(ctx, nil, map[string]any{"domain": d})
		if err != nil {
			return nil, err
		}
		refs = append(refs, found...)
	}

	if len(refs) == 0 && len(cls.Tags) > 0 {
		found, err := c.Docs.Search(ctx, cls.Tags, nil)
		if err != nil {
			return nil, err
		}
		refs = append(refs, found...)
	}

	if len(refs) == 0 {
		found, err := c.Docs.Search(ctx, nil, nil)
		if err != nil {
			return nil, err
		}
		refs = append(refs, found...)
	}
	return refs, nil
}

func dedupByID(refs []*docdomain.Reference) []*docdomain.Reference {
	seen := make(map[docdomain.DocID]struct{}, len(refs))
	out := refs[:0]
	for _, r := range refs {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func (c *Coordinator) buildPlan(refs []*docdomain.Reference) *domain.Plan {
	now := c.Clock.Now()
	tasks := make([]domain.Task, 0, len(refs))
	for _, ref := range refs {
		tasks = append(tasks, domain.Task{
			ID:        fmt.Sprintf("analyze_%s", ref.ID),
			Kind:      "document_analysis",
			Payload:   map[string]any{"doc_id": string(ref.ID)},
			Priority:  1,
			CreatedAt: now,
		})
	}
	return &domain.Plan{
		Tasks:             tasks,
		EstimatedDuration: time.Duration(len(tasks)) * 2 * time.Second,
		CreatedAt:         now,
	}
}

// executePlan runs every analysis task concurrently and joins them with an
// all-complete barrier. The joined slice preserves plan order regardless of
// completion order. A task's failure is converted in-task to placeholder
// content; the join itself never fails because one document did.
func (c *Coordinator) executePlan(ctx context.Context, plan *domain.Plan, refs []*docdomain.Reference) ([]*domain.DocAnalysis, error) {
	analyses := make([]*domain.DocAnalysis, len(plan.Tasks))

	var sem chan struct{}
	if c.MaxConcurrency > 0 {
		sem = make(chan struct{}, c.MaxConcurrency)
	}

	var wg sync.WaitGroup
	for i := range plan.Tasks {
		wg.Add(1)
		go func(i int, ref *docdomain.Reference) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			a, err := c.Analyzer.Analyze(ctx, ref)
			if err != nil || a == nil {
				a = placeholderAnalysis(ref, err)
			}
			analyses[i] = a
		}(i, refs[i])
	}
	wg.Wait()

	// A timed-out request becomes a failed Result rather than a partial
	// answer built from placeholder content.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("executing plan: %w", err)
	}
	return analyses, nil
}

// placeholderAnalysis stands in for an analyzer that returned an error; the
// failure stays in-band so the batch completes.
func placeholderAnalysis(ref *docdomain.Reference, err error) *domain.DocAnalysis {
	d := "unknown"
	if v, ok := ref.Metadata.Attributes["domain"].(string); ok && v != "" {
		d = v
	}
	return &domain.DocAnalysis{
		Content: fmt.Sprintf("Error retrieving content: %v", err),
		Context: domain.DocContext{
			Domain:      d,
			ContentType: ref.Metadata.ContentType,
			KeyPoints:   []string{},
		},
		Relationships: []domain.Relationship{},
		Metadata: map[string]any{
			"doc_id":   string(ref.ID),
			"filename": ref.Metadata.Filename,
		},
	}
}
