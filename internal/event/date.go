package event

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the serialized form of a CalendarDate. ISO keys sort
// lexically in chronological order, which keeps serialized date maps
// ordered without extra bookkeeping.
const DateLayout = "2006-01-02"

// CalendarDate is a year-month-day value with no time-of-day component,
// used as the grouping key for events.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate builds a CalendarDate from its components. It does not
// validate that the combination exists on the calendar; use makeDate for
// parsed input.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Year: year, Month: month, Day: day}
}

// DateOf truncates a time.Time to its calendar date.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseCalendarDate parses the ISO form produced by String.
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// String returns the ISO form, e.g. "2024-06-05".
func (d CalendarDate) String() string {
	return d.Time().Format(DateLayout)
}

// Time returns the date at midnight UTC.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether the date is the zero value.
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// Before reports whether d is strictly earlier than other.
func (d CalendarDate) Before(other CalendarDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// AddDays returns the date shifted by the given number of days.
func (d CalendarDate) AddDays(days int) CalendarDate {
	return DateOf(d.Time().AddDate(0, 0, days))
}

// MarshalJSON encodes the date as its ISO string.
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the ISO string form.
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// months maps lowercase three-letter month abbreviations to month numbers.
var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var (
	// "05/06/24", "05/06/2024", "05/06"
	numericDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2}|\d{4}))?$`)
	// "mar 15", "mar 15 2026"
	monthNamePattern = regexp.MustCompile(`^([a-z]{3,9})\.?\s+(\d{1,2})(?:\s+(\d{4}))?$`)
)

// ParseEventDate converts upstream date text to a CalendarDate. The text
// comes in day/month/year form ("05/06/24", two-digit years expand into the
// current century), relative form ("today", "tomorrow", "happening now"),
// or month-name form ("Mar 15", "Fri, Mar 15 at 8:00 PM CET"). When the
// year is absent the event recurs annually and only month/day are
// authoritative, so the result is the nearest occurrence on or after the
// run date. Returns an error when nothing matches; callers treat that as a
// skip, not a failure.
func ParseEventDate(text string, today CalendarDate) (CalendarDate, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return CalendarDate{}, fmt.Errorf("empty date text")
	}

	switch {
	case strings.Contains(s, "happening now"), strings.Contains(s, "today"):
		return today, nil
	case strings.Contains(s, "tomorrow"):
		return today.AddDays(1), nil
	}

	// Drop the time portion ("... at 8:00 PM CET") and a leading weekday
	// ("fri, mar 15").
	if i := strings.Index(s, " at "); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ","); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)

	if m := numericDatePattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		monthNum, _ := strconv.Atoi(m[2])
		if monthNum < 1 || monthNum > 12 {
			return CalendarDate{}, fmt.Errorf("invalid month in %q", text)
		}
		month := time.Month(monthNum)

		if m[3] == "" {
			return nextOccurrence(month, day, today)
		}

		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += today.Year / 100 * 100
		}
		d, ok := makeDate(year, month, day)
		if !ok {
			return CalendarDate{}, fmt.Errorf("invalid date %q", text)
		}
		return d, nil
	}

	if m := monthNamePattern.FindStringSubmatch(s); m != nil {
		month, ok := months[m[1][:3]]
		if !ok {
			return CalendarDate{}, fmt.Errorf("unknown month in %q", text)
		}
		day, _ := strconv.Atoi(m[2])

		if m[3] == "" {
			return nextOccurrence(month, day, today)
		}

		year, _ := strconv.Atoi(m[3])
		d, ok := makeDate(year, month, day)
		if !ok {
			return CalendarDate{}, fmt.Errorf("invalid date %q", text)
		}
		return d, nil
	}

	return CalendarDate{}, fmt.Errorf("unrecognized date text %q", text)
}

// nextOccurrence resolves a month/day with no year to the nearest date on
// or after today. A month/day equal to today resolves to today itself. For
// Feb 29 the search rolls forward to the next leap year.
func nextOccurrence(month time.Month, day int, today CalendarDate) (CalendarDate, error) {
	for year := today.Year; year <= today.Year+4; year++ {
		d, ok := makeDate(year, month, day)
		if !ok {
			continue
		}
		if !d.Before(today) {
			return d, nil
		}
	}
	return CalendarDate{}, fmt.Errorf("no upcoming occurrence of %d/%d", day, int(month))
}

// makeDate validates that the components form a real calendar date.
// time.Date normalizes overflow (Feb 30 becomes Mar 2), so a changed
// component means the input was invalid.
func makeDate(year int, month time.Month, day int) (CalendarDate, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return CalendarDate{}, false
	}
	return DateOf(t), true
}
