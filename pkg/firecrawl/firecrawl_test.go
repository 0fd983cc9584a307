package firecrawl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestScrapeSendsMarkdownRequest(t *testing.T) {
	t.Parallel()

	var got scrapeRequest
	var auth, path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		auth = r.Header.Get("Authorization")
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		fmt.Fprint(w, `{"success":true,"data":{"markdown":"# Title\nbody","metadata":{"title":"Title"}}}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "fc-key", BaseURL: server.URL}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	page, err := client.Scrape(context.Background(), "https://example.com/post")
	if err != nil {
		t.Fatalf("Scrape() error = %v", err)
	}
	if page.Markdown != "# Title\nbody" || page.Title != "Title" {
		t.Fatalf("unexpected page: %#v", page)
	}
	if auth != "Bearer fc-key" {
		t.Fatalf("Authorization = %q", auth)
	}
	if path != "/v1/scrape" {
		t.Fatalf("path = %q", path)
	}
	if got.URL != "https://example.com/post" || len(got.Formats) != 1 || got.Formats[0] != "markdown" {
		t.Fatalf("unexpected request: %#v", got)
	}
}

func TestScrapeHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"success":false,"error":"Insufficient credits"}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "fc-key", BaseURL: server.URL}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.Scrape(context.Background(), "https://example.com")
	if err == nil || !strings.Contains(err.Error(), "status=402") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestScrapeEmptyMarkdown(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"data":{"markdown":"  "}}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{APIKey: "fc-key", BaseURL: server.URL}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Scrape(context.Background(), "https://example.com"); !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestScrapeUnsuccessfulAndMalformed(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		body string
		want string
	}{
		{name: "unsuccessful", body: `{"success":false,"error":"URL is blocked"}`, want: "URL is blocked"},
		{name: "unsuccessful without message", body: `{"success":false}`, want: "scrape was not successful"},
		{name: "malformed", body: `{"success":tru`, want: "decode scrape response"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			t.Cleanup(server.Close)

			client, err := NewClient(Config{APIKey: "fc-key", BaseURL: server.URL}, WithHTTPClient(server.Client()))
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}
			if _, err := client.Scrape(context.Background(), "https://example.com"); err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Scrape() error = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error without api key")
	}
}
