package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	maxScrolls      = 10
	scrollStep      = 800
	scrollPause     = time.Second
	maxStallScrolls = 3
)

// renderPage loads a source in a headless browser and returns the rendered
// HTML. The page is scrolled to trigger lazy listing load before capture.
// Requires Chrome/Chromium on the host.
func renderPage(ctx context.Context, url string) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(UserAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(2*time.Second),
		chromedp.ActionFunc(dismissOverlays),
		chromedp.ActionFunc(scrollForListings),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return html, nil
}

// dismissOverlays clicks through cookie-consent and login overlays. Best
// effort: a missing overlay is not an error.
func dismissOverlays(ctx context.Context) error {
	_ = chromedp.Click(`div[aria-label="Allow all cookies"], button[title*="Accept"], button[id*="accept"]`,
		chromedp.NodeVisible).Do(ctx)
	_ = chromedp.Click(`div[aria-label="Close"]`, chromedp.NodeVisible).Do(ctx)
	return nil
}

// scrollForListings scrolls the page in steps until the document stops
// growing, so lazily-loaded listings make it into the captured HTML.
func scrollForListings(ctx context.Context) error {
	lastHeight := 0
	stalls := 0

	for i := 0; i < maxScrolls; i++ {
		if err := chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", scrollStep), nil).Do(ctx); err != nil {
			return err
		}
		if err := chromedp.Sleep(scrollPause).Do(ctx); err != nil {
			return err
		}

		var height int
		if err := chromedp.Evaluate("document.body.scrollHeight", &height).Do(ctx); err != nil {
			return err
		}
		if height == lastHeight {
			stalls++
			if stalls >= maxStallScrolls {
				return nil
			}
		} else {
			stalls = 0
		}
		lastHeight = height
	}
	return nil
}
