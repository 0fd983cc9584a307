package contract

import "context"

// Pipeline acquires content for one reference and turns it into a summary.
type Pipeline interface {
	Acquire(ctx context.Context, reference string) Result
}

// Summarizer converts raw extracted text into the three-section summary.
type Summarizer interface {
	Summarize(ctx context.Context, text string, sourceType string) Result
}

// Dispatcher routes a tool call by name to its pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, name string, args map[string]any) Result
}
