package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/omega-summarizer/agent/contract"
	"github.com/tanpawarit/omega-summarizer/pkg/firecrawl"
)

const articlePipeline = "article_tool"

// Extractor fetches a web page and returns its main text.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Scraper is the hosted scraping service.
type Scraper interface {
	Scrape(ctx context.Context, url string) (firecrawl.Page, error)
}

// FirecrawlStrategy scrapes through the hosted service. A nil scraper means
// the service is not configured and the strategy fails without a request.
func FirecrawlStrategy(s Scraper) Strategy {
	return Strategy{
		Name:  "firecrawl",
		Label: "Firecrawl",
		Run: func(ctx context.Context, url string) (string, error) {
			if s == nil {
				return "", fmt.Errorf("%w: FIRE_CRAWL_KEY is not set", contractx.ErrConfig)
			}
			page, err := s.Scrape(ctx, url)
			if err != nil {
				if errors.Is(err, firecrawl.ErrNoContent) {
					return "", nil
				}
				return "", err
			}
			return page.Markdown, nil
		},
	}
}

// ReadabilityStrategy downloads the page directly and extracts readable text.
func ReadabilityStrategy(e Extractor) Strategy {
	return extractorStrategy("readability", "Readability", e)
}

// BrowserStrategy renders the page in a headless browser before extraction.
func BrowserStrategy(e Extractor) Strategy {
	return extractorStrategy("browser", "Headless Browser", e)
}

func extractorStrategy(name, label string, e Extractor) Strategy {
	if e == nil {
		return Strategy{}
	}
	return Strategy{Name: name, Label: label, Run: e.Extract}
}

// Article summarizes web articles.
type Article struct {
	chain      chain
	summarizer contractx.Summarizer
}

var _ contractx.Pipeline = (*Article)(nil)

func NewArticle(summarizer contractx.Summarizer, strategies ...Strategy) *Article {
	return &Article{
		chain:      newChain(articlePipeline, strategies...),
		summarizer: summarizer,
	}
}

func (a *Article) Acquire(ctx context.Context, url string) contractx.Result {
	url = strings.TrimSpace(url)
	if url == "" {
		return contractx.Fail("No article URL was provided.")
	}
	if a.summarizer == nil {
		return contractx.Fail("Summarizer is not configured.")
	}

	content, strategy, err := a.chain.run(ctx, url)
	if err != nil {
		last := lastError(err)
		if last == nil || errors.Is(last, contractx.ErrEmptyExtraction) {
			return contractx.Failf("Could not extract content from %s. The page might be protected or have no readable text.", url)
		}
		return contractx.Failf("Article scraping failed with all strategies: %v.", last)
	}

	content = Truncate(content, MaxArticleChars)
	sourceType := fmt.Sprintf("web article (extracted via %s)", strategy.Label)
	return finalize(a.summarizer.Summarize(ctx, content, sourceType))
}
