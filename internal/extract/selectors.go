package extract

// Selectors names the CSS paths used to locate listings and their fields
// inside a rendered page.
type Selectors struct {
	// Container matches one listing wrapper per event.
	Container string
	// Title, Link, Date, Place are resolved relative to the container.
	Title string
	Link  string
	Date  string
	Place string
}

// DefaultSelectors returns the selector set for the upstream events pages.
// The obfuscated class chains track the upstream markup and are the first
// thing to update when extraction suddenly yields zero listings.
func DefaultSelectors() Selectors {
	return Selectors{
		Container: "div.x6s0dn4.x1lq5wgf.xgqcy7u.x9f619",
		Title:     "span.html-span.xdj266r",
		Link:      `a[href*="/events/"]`,
		Date:      "span.x1lliihq.xuxw1ft",
		Place:     "div.x1gslohp > div:first-child",
	}
}

// IsZero reports whether no selectors were configured.
func (s Selectors) IsZero() bool {
	return s == Selectors{}
}
