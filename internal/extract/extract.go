package extract

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mlisowski/eventsnap/internal/event"
	"github.com/mlisowski/eventsnap/internal/source"
)

// noLocation is the place used when a listing carries no venue text.
const noLocation = "No location"

// Listing is a raw extracted fragment before date resolution. Fallback
// parsers return Listings so the extractor applies the same date and link
// normalization to every path.
type Listing struct {
	Title    string
	DateText string
	Place    string
	Link     string
}

// FallbackParser recovers a listing from a fragment the selectors could
// not fully parse. Errors mean the fragment stays skipped.
type FallbackParser interface {
	ParseListing(ctx context.Context, fragment string) (Listing, error)
}

// Stats counts per-page extraction outcomes. Skips are expected noise and
// only surface here, never as errors.
type Stats struct {
	Listings  int
	Extracted int
	Skipped   int
}

// Extractor turns fetched markup into events.
type Extractor struct {
	sel      Selectors
	now      event.CalendarDate
	fallback FallbackParser
}

// New creates an Extractor resolving implicit years against the given run
// date. A zero Selectors value selects the defaults.
func New(sel Selectors, now event.CalendarDate) *Extractor {
	if sel.IsZero() {
		sel = DefaultSelectors()
	}
	return &Extractor{sel: sel, now: now}
}

// WithFallback attaches a fallback parser consulted for listings the
// selectors miss.
func (x *Extractor) WithFallback(p FallbackParser) *Extractor {
	x.fallback = p
	return x
}

// Extract parses one source's markup into events. Individual listing
// failures are silent skips counted in Stats; only unreadable markup is an
// error.
func (x *Extractor) Extract(ctx context.Context, html string, src source.Source) ([]event.Event, Stats, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, Stats{}, err
	}

	events := make([]event.Event, 0)
	stats := Stats{}

	doc.Find(x.sel.Container).Each(func(i int, container *goquery.Selection) {
		stats.Listings++

		listing, ok := x.parseListing(container)
		if !ok && x.fallback != nil {
			listing, ok = x.parseWithFallback(ctx, container)
		}
		if !ok {
			stats.Skipped++
			return
		}

		date, err := event.ParseEventDate(listing.DateText, x.now)
		if err != nil {
			stats.Skipped++
			return
		}

		events = append(events, event.Event{
			Title:       strings.TrimSpace(listing.Title),
			Link:        x.resolveLink(listing.Link, src.URL),
			Place:       listing.Place,
			Date:        date,
			Categories:  src.Categories,
			SourceURL:   src.URL,
			SourceOrder: src.Order,
		})
		stats.Extracted++
	})

	return events, stats, nil
}

// parseListing pulls the raw fields out of one listing container. A
// listing without a title or link is unusable.
func (x *Extractor) parseListing(container *goquery.Selection) (Listing, bool) {
	title := strings.TrimSpace(container.Find(x.sel.Title).First().Text())
	if title == "" {
		return Listing{}, false
	}

	link, exists := container.Find(x.sel.Link).First().Attr("href")
	if !exists || strings.TrimSpace(link) == "" {
		return Listing{}, false
	}

	return Listing{
		Title:    title,
		DateText: strings.TrimSpace(container.Find(x.sel.Date).First().Text()),
		Place:    x.parsePlace(container),
		Link:     link,
	}, true
}

// parsePlace takes the venue's own text, stopping at the first nested
// span (the upstream markup appends attendance counts there).
func (x *Extractor) parsePlace(container *goquery.Selection) string {
	var b strings.Builder
	container.Find(x.sel.Place).First().Contents().EachWithBreak(func(i int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "span" {
			return false
		}
		if goquery.NodeName(s) == "#text" {
			b.WriteString(s.Text())
		}
		return true
	})

	place := strings.TrimSpace(b.String())
	if place == "" {
		return noLocation
	}
	return place
}

// parseWithFallback hands the listing's markup to the fallback parser.
func (x *Extractor) parseWithFallback(ctx context.Context, container *goquery.Selection) (Listing, bool) {
	fragment, err := goquery.OuterHtml(container)
	if err != nil {
		return Listing{}, false
	}

	listing, err := x.fallback.ParseListing(ctx, fragment)
	if err != nil || strings.TrimSpace(listing.Title) == "" || strings.TrimSpace(listing.Link) == "" {
		return Listing{}, false
	}
	if listing.Place == "" {
		listing.Place = noLocation
	}
	return listing, true
}

// resolveLink makes a listing link absolute against its source page and
// canonicalizes it.
func (x *Extractor) resolveLink(link, sourceURL string) string {
	base, err := url.Parse(sourceURL)
	if err != nil {
		return event.CanonicalLink(link)
	}
	ref, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return event.CanonicalLink(link)
	}
	return event.CanonicalLink(base.ResolveReference(ref).String())
}
