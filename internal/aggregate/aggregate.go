package aggregate

import (
	"sort"

	"github.com/mlisowski/eventsnap/internal/event"
)

// Options controls one aggregation pass. Now is the run date, injected so
// past-date filtering never reads ambient process time.
type Options struct {
	Now         event.CalendarDate
	IncludePast bool
}

// EventsByDate is the ordered per-date mapping. Invariants: Dates is
// strictly ascending; every event under Groups[d] has Date == d; no event
// appears under more than one key.
type EventsByDate struct {
	Dates  []event.CalendarDate
	Groups map[event.CalendarDate][]event.Event
}

// Total returns the number of events across all dates.
func (g EventsByDate) Total() int {
	n := 0
	for _, events := range g.Groups {
		n += len(events)
	}
	return n
}

// Aggregate merges events from all sources into an EventsByDate. Input
// order only matters for first-seen-wins deduplication; the output order
// is fully determined by the sort keys.
func Aggregate(events []event.Event, opts Options) EventsByDate {
	groups := make(map[event.CalendarDate][]event.Event)
	seen := make(map[string]bool)

	for _, evt := range events {
		if !opts.IncludePast && evt.Date.Before(opts.Now) {
			continue
		}

		key := evt.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		groups[evt.Date] = append(groups[evt.Date], evt)
	}

	dates := make([]event.CalendarDate, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})

	for _, d := range dates {
		group := groups[d]
		sort.SliceStable(group, func(i, j int) bool {
			return lessInGroup(group[i], group[j])
		})
	}

	return EventsByDate{Dates: dates, Groups: groups}
}

// lessInGroup is the deterministic in-group order: source registration
// order, then case-folded title.
func lessInGroup(a, b event.Event) bool {
	if a.SourceOrder != b.SourceOrder {
		return a.SourceOrder < b.SourceOrder
	}
	return event.NormalizeTitle(a.Title) < event.NormalizeTitle(b.Title)
}
