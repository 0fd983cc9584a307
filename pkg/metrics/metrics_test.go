package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOutcome(t *testing.T) {
	t.Parallel()

	if got := Outcome(true); got != OutcomeOK {
		t.Fatalf("Outcome(true) = %q", got)
	}
	if got := Outcome(false); got != OutcomeFail {
		t.Fatalf("Outcome(false) = %q", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	t.Parallel()

	StrategyAttempts.WithLabelValues("test_pipeline", "test_strategy", OutcomeOK).Inc()

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), `omega_strategy_attempts_total{outcome="ok",pipeline="test_pipeline",strategy="test_strategy"}`) {
		t.Fatalf("metrics output missing strategy counter:\n%s", body)
	}
}
