package pipeline

import "errors"

// ErrOrchestration marks failures caught at the coordinator boundary.
// ProcessQuery converts them into a failed Result instead of returning them.
var ErrOrchestration = errors.New("orchestration error")

// ErrQuotaExceeded indicates the NLP provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("nlp quota exceeded")
