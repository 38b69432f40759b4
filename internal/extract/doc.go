// Package extract parses fetched page markup into canonical event records.
//
// Extraction is selector-driven: a Selectors value names the CSS paths for
// the listing container and its title, link, date, and place fields, with
// defaults matching the upstream page structure. Listings missing a title,
// a link, or a parseable date are skipped silently; malformed individual
// listings are expected noise, not errors. An optional fallback parser can
// recover listings the selectors miss.
package extract
