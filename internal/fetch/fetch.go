package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/mlisowski/eventsnap/internal/source"
)

const (
	UserAgent          = "eventsnap/1.0 (github.com/mlisowski/eventsnap)"
	DefaultTimeout     = 45 * time.Second
	DefaultConcurrency = 3

	// MinContentLength is the minimum rendered text length for a plain
	// HTTP response to count as real content. Shorter bodies are assumed
	// to be script-gated shells and go through the browser.
	MinContentLength = 500
)

// Options configures a Fetcher.
type Options struct {
	// Timeout bounds the whole attempt for one source, including browser
	// rendering. Zero means DefaultTimeout.
	Timeout time.Duration
	// Concurrency bounds the worker pool. Zero means DefaultConcurrency.
	Concurrency int
	// DisableBrowser skips headless rendering entirely; script-gated pages
	// then surface as short bodies and usually zero extracted events.
	DisableBrowser bool
}

// Result is the outcome of fetching one source. Transient: the pipeline
// discards it after extraction.
type Result struct {
	Source  source.Source
	HTML    string
	Elapsed time.Duration
	Err     error
}

// Fetcher retrieves page markup per source.
type Fetcher struct {
	client *http.Client
	opts   Options
}

// New creates a Fetcher, filling in option defaults.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
	}
}

// FetchAll fetches every source through a bounded worker pool and returns
// one Result per source in registry order. Per-source failures are carried
// in Result.Err; FetchAll itself never fails.
func (f *Fetcher) FetchAll(ctx context.Context, sources []source.Source) []Result {
	results := make([]Result, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.opts.Concurrency)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, src)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes the pool.
	_ = g.Wait()

	return results
}

// fetchOne retrieves a single source: HTTP first, browser rendering when
// the body looks script-gated.
func (f *Fetcher) fetchOne(ctx context.Context, src source.Source) Result {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	html, err := f.fetchHTTP(ctx, src.URL)
	if err == nil && !f.opts.DisableBrowser && ShouldUseBrowser(html) {
		html, err = renderPage(ctx, src.URL)
	}

	return Result{Source: src, HTML: html, Elapsed: time.Since(start), Err: err}
}

// fetchHTTP performs a plain GET against the source URL.
func (f *Fetcher) fetchHTTP(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return string(body), nil
}

// ShouldUseBrowser reports whether a fetched body is too thin to contain
// listings, indicating a page that renders its content with JavaScript.
func ShouldUseBrowser(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return true
	}
	return len(strings.TrimSpace(doc.Text())) < MinContentLength
}
