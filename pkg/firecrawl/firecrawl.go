package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	defaultBaseURL       = "https://api.firecrawl.dev"
	maxResponseSizeBytes = 16 << 20
)

var ErrNoContent = errors.New("firecrawl returned no markdown")

type Config struct {
	APIKey  string        `envconfig:"FIRE_CRAWL_KEY"`
	BaseURL string        `envconfig:"FIRE_CRAWL_BASE_URL" default:"https://api.firecrawl.dev"`
	Timeout time.Duration `envconfig:"FIRE_CRAWL_TIMEOUT" default:"45s"`
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// Client calls the Firecrawl scrape endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

// Page is the scraped document.
type Page struct {
	Markdown string
	Title    string
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("firecrawl api key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid firecrawl url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}

	client := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Scrape fetches target as markdown.
func (c *Client) Scrape(ctx context.Context, target string) (Page, error) {
	if strings.TrimSpace(target) == "" {
		return Page{}, errors.New("empty scrape url")
	}

	body, err := json.Marshal(scrapeRequest{
		URL:             target,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return Page{}, fmt.Errorf("marshal scrape request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("build scrape request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("execute scrape request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return Page{}, fmt.Errorf("read scrape response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return Page{}, fmt.Errorf("firecrawl http status=%d body=%s", resp.StatusCode, truncate(string(raw), 300))
	}

	if !gjson.ValidBytes(raw) {
		return Page{}, fmt.Errorf("decode scrape response: invalid json body=%s", truncate(string(raw), 300))
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.Get("success").Bool() {
		msg := parsed.Get("error").String()
		if msg == "" {
			msg = "scrape was not successful"
		}
		return Page{}, errors.New(msg)
	}
	markdown := parsed.Get("data.markdown").String()
	if strings.TrimSpace(markdown) == "" {
		return Page{}, ErrNoContent
	}

	return Page{
		Markdown: markdown,
		Title:    parsed.Get("data.metadata.title").String(),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
