package pipeline

import (
	"time"
)

// Status enum
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task is one unit of work in an execution plan.
type Task struct {
	ID        string         `json:"id"`
	Kind      string         `json:"kind"`
	Payload   map[string]any `json:"payload"`
	Priority  int            `json:"priority"`
	CreatedAt time.Time      `json:"created_at"`
}

// Plan is an ordered set of independent tasks. Document-analysis tasks carry
// no inter-task dependencies, so the plan is just the list plus an estimate.
type Plan struct {
	Tasks             []Task        `json:"tasks"`
	EstimatedDuration time.Duration `json:"estimated_duration"`
	CreatedAt         time.Time     `json:"created_at"`
}

// Result is the single outward-facing envelope of a processed query.
// A Result always has a definite status; it is never partially constructed.
type Result struct {
	TaskID      string         `json:"task_id"`
	Status      Status         `json:"status"`
	Data        any            `json:"data"`
	Error       string         `json:"error,omitempty"`
	CompletedAt time.Time      `json:"completed_at"`
	Metadata    map[string]any `json:"metadata"`
}

// QueryContext value object
type QueryContext struct {
	QueryType  string `json:"query_type"`
	Complexity string `json:"complexity"`
	Focus      string `json:"focus"`
}

// Classification is the classifier's view of a query.
type Classification struct {
	Domains    []string     `json:"domains"`
	Intents    []string     `json:"intents"`
	Tags       []string     `json:"tags"`
	Context    QueryContext `json:"context"`
	Subtasks   []Task       `json:"subtasks"`
	Confidence float64      `json:"confidence"`
}

// Relationship links a document to a tag, domain or detected topic.
type Relationship struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// DocContext holds what the analyzer extracted from one document.
type DocContext struct {
	Domain      string   `json:"domain"`
	ContentType string   `json:"content_type"`
	Summary     string   `json:"summary,omitempty"`
	KeyPoints   []string `json:"key_points"`
	Conclusions string   `json:"conclusions,omitempty"`
}

// DocAnalysis is the analyzer's output for one document. When content
// retrieval fails, Content holds a descriptive placeholder string instead;
// the analysis itself is still a normal value, never an error.
type DocAnalysis struct {
	Content       string         `json:"content"`
	Binary        bool           `json:"binary"`
	Context       DocContext     `json:"context"`
	Relationships []Relationship `json:"relationships"`
	Metadata      map[string]any `json:"metadata"`
}

// Resources declares the per-request budget. Enforcement beyond the query
// timeout is a collaborator concern.
type Resources struct {
	MemoryLimit int64         `json:"memory_limit"`
	CPULimit    float64       `json:"cpu_limit"`
	Timeout     time.Duration `json:"timeout"`
}

// ExecutionContext is threaded through one query's pipeline run.
type ExecutionContext struct {
	StartTime time.Time      `json:"start_time"`
	Resources Resources      `json:"resources"`
	Metadata  map[string]any `json:"metadata"`
}
