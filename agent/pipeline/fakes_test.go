package pipeline

import (
	"context"
	"errors"
	"sync"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
)

type summarizeCall struct {
	text       string
	sourceType string
}

type fakeSummarizer struct {
	mu    sync.Mutex
	calls []summarizeCall
	fail  string
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string, sourceType string) contractx.Result {
	f.mu.Lock()
	f.calls = append(f.calls, summarizeCall{text: text, sourceType: sourceType})
	f.mu.Unlock()
	if f.fail != "" {
		return contractx.Fail(f.fail)
	}
	return contractx.OK("summary of " + text)
}

func (f *fakeSummarizer) lastCall() summarizeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return summarizeCall{}
	}
	return f.calls[len(f.calls)-1]
}

type extractorFunc func(ctx context.Context, url string) (string, error)

func (f extractorFunc) Extract(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

type fakeCaptions struct {
	texts []string
	err   error
	ids   []string
}

func (f *fakeCaptions) Captions(ctx context.Context, videoID string) ([]string, error) {
	f.ids = append(f.ids, videoID)
	return f.texts, f.err
}

type fakeAnalyzer struct {
	out   string
	err   error
	calls int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, url string) (string, error) {
	f.calls++
	return f.out, f.err
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	f.calls++
	return f.text, f.err
}

var errUpstream = errors.New("upstream unavailable")
