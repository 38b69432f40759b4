package aggregate

import (
	"reflect"
	"testing"
	"time"

	"github.com/mlisowski/eventsnap/internal/event"
)

var runDate = event.NewCalendarDate(2024, time.June, 1)

func evt(title, link string, date event.CalendarDate, sourceOrder int) event.Event {
	return event.Event{
		Title:       title,
		Link:        link,
		Place:       "No location",
		Date:        date,
		SourceOrder: sourceOrder,
	}
}

func TestAggregate_GroupsAndSorts(t *testing.T) {
	june5 := event.NewCalendarDate(2024, time.June, 5)
	june9 := event.NewCalendarDate(2024, time.June, 9)

	input := []event.Event{
		evt("Open Mic", "https://e/3", june9, 1),
		evt("Jazz Night", "https://e/1", june5, 0),
		evt("Blues Jam", "https://e/2", june5, 1),
		evt("Acoustic Set", "https://e/4", june5, 1),
	}

	got := Aggregate(input, Options{Now: runDate})

	wantDates := []event.CalendarDate{june5, june9}
	if !reflect.DeepEqual(got.Dates, wantDates) {
		t.Fatalf("Dates = %v, want %v", got.Dates, wantDates)
	}

	// Within June 5: source order first, then case-folded title.
	wantTitles := []string{"Jazz Night", "Acoustic Set", "Blues Jam"}
	titles := make([]string, 0, len(got.Groups[june5]))
	for _, e := range got.Groups[june5] {
		titles = append(titles, e.Title)
	}
	if !reflect.DeepEqual(titles, wantTitles) {
		t.Errorf("June 5 order = %v, want %v", titles, wantTitles)
	}

	if got.Total() != 4 {
		t.Errorf("Total() = %d, want 4", got.Total())
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	june5 := event.NewCalendarDate(2024, time.June, 5)
	input := []event.Event{
		evt("B", "https://e/2", june5, 1),
		evt("A", "https://e/1", june5, 0),
		evt("C", "https://e/3", june5.AddDays(3), 0),
	}

	first := Aggregate(input, Options{Now: runDate})
	second := Aggregate(input, Options{Now: runDate})

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated aggregation over identical input differs")
	}
}

func TestAggregate_Deduplicates(t *testing.T) {
	june5 := event.NewCalendarDate(2024, time.June, 5)

	tests := []struct {
		name  string
		input []event.Event
		want  int
	}{
		{
			name: "Identical event from two sources kept once",
			input: []event.Event{
				evt("Jazz Night", "https://e/1", june5, 0),
				evt("Jazz Night", "https://e/1", june5, 1),
			},
			want: 1,
		},
		{
			name: "Title case and whitespace variants collapse",
			input: []event.Event{
				evt("Jazz Night", "https://e/1", june5, 0),
				evt("JAZZ  NIGHT", "https://e/1", june5, 1),
			},
			want: 1,
		},
		{
			name: "Tracking-parameter link variants collapse",
			input: []event.Event{
				evt("Jazz Night", "https://e/1", june5, 0),
				evt("Jazz Night", "https://e/1?utm_source=share", june5, 1),
			},
			want: 1,
		},
		{
			name: "Same title on different dates kept",
			input: []event.Event{
				evt("Jazz Night", "https://e/1", june5, 0),
				evt("Jazz Night", "https://e/1", june5.AddDays(7), 0),
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Aggregate(tt.input, Options{Now: runDate})
			if got.Total() != tt.want {
				t.Errorf("Total() = %d, want %d", got.Total(), tt.want)
			}
		})
	}
}

func TestAggregate_FirstSeenWins(t *testing.T) {
	june5 := event.NewCalendarDate(2024, time.June, 5)

	first := evt("Jazz Night", "https://e/1", june5, 0)
	first.Place = "Blue Note Club"
	duplicate := evt("JAZZ NIGHT", "https://e/1", june5, 1)
	duplicate.Place = "Somewhere Else"

	got := Aggregate([]event.Event{first, duplicate}, Options{Now: runDate})

	group := got.Groups[june5]
	if len(group) != 1 || group[0].Place != "Blue Note Club" {
		t.Errorf("kept %+v, want first-seen occurrence", group)
	}
}

func TestAggregate_Idempotent(t *testing.T) {
	june5 := event.NewCalendarDate(2024, time.June, 5)
	input := []event.Event{
		evt("Jazz Night", "https://e/1", june5, 0),
		evt("Open Mic", "https://e/2", june5.AddDays(1), 1),
	}

	once := Aggregate(input, Options{Now: runDate})
	doubled := Aggregate(append(append([]event.Event{}, input...), input...), Options{Now: runDate})

	if !reflect.DeepEqual(once, doubled) {
		t.Error("aggregating a verbatim-duplicated sequence changed the output")
	}
}

func TestAggregate_PastDates(t *testing.T) {
	past := event.NewCalendarDate(2024, time.May, 20)
	today := runDate
	future := event.NewCalendarDate(2024, time.June, 5)

	input := []event.Event{
		evt("Old Show", "https://e/1", past, 0),
		evt("Today Show", "https://e/2", today, 0),
		evt("Future Show", "https://e/3", future, 0),
	}

	t.Run("Default drops strictly past dates", func(t *testing.T) {
		got := Aggregate(input, Options{Now: runDate})
		if got.Total() != 2 {
			t.Errorf("Total() = %d, want 2 (today and future kept)", got.Total())
		}
		if _, ok := got.Groups[past]; ok {
			t.Error("past date survived default policy")
		}
	})

	t.Run("IncludePast retains history", func(t *testing.T) {
		got := Aggregate(input, Options{Now: runDate, IncludePast: true})
		if got.Total() != 3 {
			t.Errorf("Total() = %d, want 3", got.Total())
		}
	})
}

func TestAggregate_Empty(t *testing.T) {
	got := Aggregate(nil, Options{Now: runDate})
	if len(got.Dates) != 0 || got.Total() != 0 {
		t.Errorf("Aggregate(nil) = %+v, want empty mapping", got)
	}
}
