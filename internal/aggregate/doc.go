// Package aggregate merges extracted events from all sources into the
// canonical per-date mapping.
//
// The merge deduplicates on (date, normalized title, canonical link) with
// first-seen-wins, groups survivors by calendar date, and orders every
// level deterministically: date keys ascending, events within a date by
// source registration order then case-folded title. Past dates are dropped
// unless the IncludePast policy flag is set. Repeated runs over identical
// input produce identical output.
package aggregate
