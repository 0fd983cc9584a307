package contract

import (
	"fmt"
	"strings"
)

const (
	// FailureMarker prefixes the rendered text of every failed Result.
	FailureMarker = "❌"
	// WarningMarker prefixes input warnings produced before any run starts.
	WarningMarker = "⚠️"
)

// Result is the outcome of a pipeline, a tool dispatch or an orchestrator run.
// The zero value is a failure with an empty diagnostic.
type Result struct {
	ok   bool
	text string
}

// OK wraps a successful summary. Text carrying the failure marker cannot be a
// success and is turned into a failure instead.
func OK(text string) Result {
	if IsFailureText(text) {
		return ParseResult(text)
	}
	return Result{ok: true, text: text}
}

// Fail wraps a diagnostic. A leading marker in reason is not duplicated.
func Fail(reason string) Result {
	reason = strings.TrimSpace(reason)
	reason = strings.TrimSpace(strings.TrimPrefix(reason, FailureMarker))
	return Result{ok: false, text: reason}
}

func Failf(format string, args ...any) Result {
	return Fail(fmt.Sprintf(format, args...))
}

// ParseResult rebuilds a Result from rendered text.
func ParseResult(text string) Result {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, FailureMarker) || strings.HasPrefix(trimmed, WarningMarker) {
		return Fail(trimmed)
	}
	return Result{ok: true, text: text}
}

func (r Result) IsOK() bool {
	return r.ok
}

// Text is the summary for successes and the bare diagnostic for failures.
func (r Result) Text() string {
	return r.text
}

// String renders the user-facing text; failures carry FailureMarker.
func (r Result) String() string {
	if r.ok {
		return r.text
	}
	if strings.HasPrefix(r.text, WarningMarker) {
		return r.text
	}
	if r.text == "" {
		return FailureMarker
	}
	return FailureMarker + " " + r.text
}

// IsFailureText reports whether rendered text signals a failure or warning.
func IsFailureText(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, FailureMarker) || strings.HasPrefix(trimmed, WarningMarker)
}
