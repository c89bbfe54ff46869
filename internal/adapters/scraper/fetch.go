package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxPageBytes   = 5 << 20
	viewportWidth  = 1366
	viewportHeight = 900
)

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// StaticFetcher is a plain GET with a short timeout.
type StaticFetcher struct {
	client  *http.Client
	timeout time.Duration
}

func NewStaticFetcher(client *http.Client, timeout time.Duration) *StaticFetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &StaticFetcher{client: client, timeout: timeout}
}

func (f *StaticFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// RenderedFetcher loads the page in a headless browser so script-built
// content is present. The browser is started per fetch and always shut down
// before Fetch returns.
type RenderedFetcher struct {
	timeout time.Duration
	settle  time.Duration
	opts    []chromedp.ExecAllocatorOption
}

func NewRenderedFetcher(timeout, settle time.Duration) *RenderedFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if settle < 0 {
		settle = 0
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	return &RenderedFetcher{timeout: timeout, settle: settle, opts: opts}
}

func (f *RenderedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, f.opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()
	defer chromedp.Cancel(browserCtx)

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(viewportWidth, viewportHeight),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", url, err)
	}
	return html, nil
}
