package event

import (
	"net/url"
	"strings"
)

// Event is the canonical unit produced by the extractor. Immutable once
// created. Date is always fully resolved; the upstream display format never
// leaks past extraction.
type Event struct {
	Title      string       `json:"title"`
	Link       string       `json:"link"`
	Place      string       `json:"place"`
	Date       CalendarDate `json:"date"`
	Categories []string     `json:"categories,omitempty"`
	SourceURL  string       `json:"source_url,omitempty"`

	// SourceOrder is the registry position of the originating source, used
	// as the deterministic tie-break when sorting within a date group. Not
	// serialized; it is reconstructed per run from the registry.
	SourceOrder int `json:"-"`
}

// DedupKey returns the identity used for cross-source deduplication:
// date, whitespace/case-normalized title, and canonical link.
func (e Event) DedupKey() string {
	return e.Date.String() + "|" + NormalizeTitle(e.Title) + "|" + CanonicalLink(e.Link)
}

// NormalizeTitle lowercases a title and collapses runs of whitespace, so
// cosmetic differences between sources don't defeat deduplication.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// trackingParams are query parameters that only carry click attribution.
var trackingParams = map[string]bool{
	"fbclid":   true,
	"gclid":    true,
	"igshid":   true,
	"mibextid": true,
	"ref":      true,
	"refsrc":   true,
}

// CanonicalLink strips tracking query parameters and the fragment from a
// link. Links that fail to parse are returned trimmed but otherwise
// untouched.
func CanonicalLink(link string) string {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil {
		return link
	}

	q := u.Query()
	for name := range q {
		if trackingParams[name] || strings.HasPrefix(name, "utm_") {
			q.Del(name)
		}
	}
	u.RawQuery = q.Encode()
	u.Fragment = ""

	return u.String()
}
