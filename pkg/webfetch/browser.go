package webfetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders the page in headless Chrome before extraction, for
// pages whose text only appears after scripts run.
type BrowserFetcher struct {
	Timeout time.Duration
}

func NewBrowserFetcher(cfg Config) *BrowserFetcher {
	timeout := cfg.BrowserTimeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &BrowserFetcher{Timeout: timeout}
}

func (f *BrowserFetcher) Extract(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := parseURL(rawURL)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(userAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	if err := chromedp.Run(bctx,
		chromedp.Navigate(pageURL.String()),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}

	return extractReadable([]byte(html), pageURL)
}
