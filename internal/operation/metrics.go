package operation

import (
	"context"
	"sync"
	"time"
)

// Item outcomes reported to observers.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// ItemOutcome describes how one input item was processed.
type ItemOutcome struct {
	API       API
	Resource  string
	Operation string
	ItemIndex int
	Outcome   string
	Records   int
	Duration  time.Duration
	Err       error
}

// Observer receives one notification per processed item.
type Observer interface {
	ItemCompleted(ctx context.Context, outcome ItemOutcome)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, outcome ItemOutcome)

// ItemCompleted calls f.
func (f ObserverFunc) ItemCompleted(ctx context.Context, outcome ItemOutcome) {
	f(ctx, outcome)
}

// Summary tallies item outcomes of a run.
type Summary struct {
	Items     int
	Succeeded int
	Failed    int
	Skipped   int
	Records   int
	Duration  time.Duration
}

// SummaryCollector is an Observer that aggregates a Summary.
type SummaryCollector struct {
	mu      sync.Mutex
	summary Summary
}

// NewSummaryCollector creates an empty collector.
func NewSummaryCollector() *SummaryCollector {
	return &SummaryCollector{}
}

// ItemCompleted records an outcome.
func (c *SummaryCollector) ItemCompleted(_ context.Context, outcome ItemOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.summary.Items++
	c.summary.Records += outcome.Records
	c.summary.Duration += outcome.Duration

	switch outcome.Outcome {
	case OutcomeSuccess:
		c.summary.Succeeded++
	case OutcomeError:
		c.summary.Failed++
	case OutcomeSkipped:
		c.summary.Skipped++
	}
}

// Summary returns a copy of the aggregated counts.
func (c *SummaryCollector) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summary
}
