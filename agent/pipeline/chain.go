// Package pipeline turns a URL or an audio file into a structured summary.
//
// Each pipeline runs an ordered chain of acquisition strategies, stops at the
// first one that yields non-empty text and hands that text to the summarizer.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
	execlogx "github.com/tanpawarit/omega-summarizer/agent/execlog"
	summarizex "github.com/tanpawarit/omega-summarizer/agent/summarize"
	metricsx "github.com/tanpawarit/omega-summarizer/pkg/metrics"
)

// Strategy is one way of acquiring text for a reference.
type Strategy struct {
	// Name is the stable metric label.
	Name string
	// Label is the human-facing name used in logs and source types.
	Label string
	Run   func(ctx context.Context, reference string) (string, error)
}

// ExhaustedError is returned when every strategy of a chain failed.
type ExhaustedError struct {
	// Last is the error of the final strategy attempted.
	Last error
	// All holds every strategy error in attempt order.
	All error
}

func (e *ExhaustedError) Error() string {
	if e.All == nil {
		return "no acquisition strategy configured"
	}
	return e.All.Error()
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

type chain struct {
	pipeline   string
	strategies []Strategy
}

func newChain(pipeline string, strategies ...Strategy) chain {
	kept := make([]Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s.Run != nil {
			kept = append(kept, s)
		}
	}
	return chain{pipeline: pipeline, strategies: kept}
}

// run tries each strategy in order. Strategies never run concurrently.
func (c chain) run(ctx context.Context, reference string) (string, Strategy, error) {
	elog := execlogx.FromContext(ctx)

	var all, last error
	for _, s := range c.strategies {
		elog.Working(c.pipeline, fmt.Sprintf("Trying %s", s.Label))

		content, err := s.Run(ctx, reference)
		content = strings.TrimSpace(content)

		switch {
		case err != nil:
			metricsx.StrategyAttempts.WithLabelValues(c.pipeline, s.Name, metricsx.OutcomeFail).Inc()
			elog.Error(c.pipeline, fmt.Sprintf("%s failed: %v", s.Label, err))
		case content == "":
			err = fmt.Errorf("%w: %s returned no content", contractx.ErrEmptyExtraction, s.Label)
			metricsx.StrategyAttempts.WithLabelValues(c.pipeline, s.Name, metricsx.OutcomeEmpty).Inc()
			elog.Error(c.pipeline, fmt.Sprintf("%s returned no content", s.Label))
		default:
			metricsx.StrategyAttempts.WithLabelValues(c.pipeline, s.Name, metricsx.OutcomeOK).Inc()
			elog.Success(c.pipeline, fmt.Sprintf("%s extracted %d chars", s.Label, len(content)))
			return content, s, nil
		}

		all = multierr.Append(all, fmt.Errorf("%s: %w", s.Label, err))
		last = err
	}

	return "", Strategy{}, &ExhaustedError{Last: last, All: all}
}

// attemptErrors lists every strategy error of an exhausted chain.
func attemptErrors(err error) []error {
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) && exhausted.All != nil {
		return multierr.Errors(exhausted.All)
	}
	if err == nil {
		return nil
	}
	return []error{err}
}

// lastError returns the error of the final strategy attempted.
func lastError(err error) error {
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) && exhausted.Last != nil {
		return exhausted.Last
	}
	return err
}

// finalize guarantees that successful summaries carry the three sections.
func finalize(res contractx.Result) contractx.Result {
	if !res.IsOK() {
		return res
	}
	return contractx.OK(summarizex.EnsureStructure(res.Text()))
}
