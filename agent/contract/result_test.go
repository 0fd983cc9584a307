package contract

import (
	"strings"
	"testing"
)

func TestResultMarkerEquivalence(t *testing.T) {
	t.Parallel()

	cases := []Result{
		OK("## 🎯 Quick Take\nfine"),
		Fail("something broke"),
		Fail("❌ already marked"),
		Failf("tool=%s failed", "article_tool"),
		OK("❌ looks like a failure"),
		Fail(""),
		{},
	}
	for _, r := range cases {
		rendered := r.String()
		if r.IsOK() == IsFailureText(rendered) {
			t.Fatalf("marker equivalence broken for %q (ok=%v)", rendered, r.IsOK())
		}
	}
}

func TestFailDoesNotDuplicateMarker(t *testing.T) {
	t.Parallel()

	r := Fail("❌ Unknown tool: x")
	if got := r.String(); got != "❌ Unknown tool: x" {
		t.Fatalf("String() = %q", got)
	}
	if r.Text() != "Unknown tool: x" {
		t.Fatalf("Text() = %q", r.Text())
	}
}

func TestParseResultRoundTrip(t *testing.T) {
	t.Parallel()

	fail := Fail("boom")
	if got := ParseResult(fail.String()); got.IsOK() || got.Text() != "boom" {
		t.Fatalf("ParseResult(fail) = %#v", got)
	}

	ok := OK("summary")
	if got := ParseResult(ok.String()); !got.IsOK() || got.Text() != "summary" {
		t.Fatalf("ParseResult(ok) = %#v", got)
	}

	warn := ParseResult("⚠️ Please enter a URL")
	if warn.IsOK() {
		t.Fatal("warning text must parse as failure")
	}
	if !strings.HasPrefix(warn.String(), WarningMarker) {
		t.Fatalf("warning rendering lost its marker: %q", warn.String())
	}
}
