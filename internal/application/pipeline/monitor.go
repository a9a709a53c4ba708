package pipeline

import (
	"sync"
	"time"
)

// Monitor records per-query latency and failure counts.
type Monitor struct {
	mu        sync.Mutex
	latencies []time.Duration
	total     uint64
	failed    uint64
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) RecordQuery(d time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies = append(m.latencies, d)
	m.total++
	if failed {
		m.failed++
	}
}

// Summary returns the metrics exposed by the system facade.
func (m *Monitor) Summary() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	var avg float64
	if len(m.latencies) > 0 {
		var sum time.Duration
		for _, d := range m.latencies {
			sum += d
		}
		avg = sum.Seconds() / float64(len(m.latencies))
	}
	return map[string]any{
		"avg_query_latency_seconds": avg,
		"queries_total":             m.total,
		"queries_failed":            m.failed,
	}
}
