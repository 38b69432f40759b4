// Package event provides the canonical event record and calendar-date types
// shared across the scraping pipeline.
//
// An Event is created by the extractor and immutable afterwards. Events are
// keyed by CalendarDate, a year-month-day value with no time-of-day
// component that round-trips losslessly through its ISO string form
// (2006-01-02). The package also owns the upstream date-text parsing rules,
// including two-digit year expansion and nearest-future resolution for
// dates whose year is omitted, and the title/link normalization used for
// deduplication.
package event
