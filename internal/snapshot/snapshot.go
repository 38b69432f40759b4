package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mlisowski/eventsnap/internal/aggregate"
	"github.com/mlisowski/eventsnap/internal/event"
)

// SnapshotFile is the published snapshot name within the data directory.
const SnapshotFile = "events.json"

var (
	// ErrMissing is returned by Load when no snapshot has ever been written.
	ErrMissing = errors.New("snapshot missing")
	// ErrCorrupt is returned by Load when the stored document cannot be
	// decoded back into the canonical schema.
	ErrCorrupt = errors.New("snapshot corrupt")
)

// Snapshot is the serialized form of one run's output.
type Snapshot struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Events      map[string][]event.Event `json:"events"`
}

// Store persists snapshots in a data directory. One writer at a time; the
// outer scheduler serializes runs.
type Store struct {
	dataDir string
}

// New creates a Store rooted at dataDir, creating the directory if needed.
// A leading ~/ expands to the user's home directory.
func New(dataDir string) (*Store, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Store{dataDir: dataDir}, nil
}

// Path returns the location of the published snapshot file.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, SnapshotFile)
}

// Save atomically replaces the published snapshot with the given mapping.
// The document is written to a temp file in the same directory and renamed
// into place, so readers only ever see complete snapshots.
func (s *Store) Save(groups aggregate.EventsByDate, generatedAt time.Time) error {
	snap := Snapshot{
		GeneratedAt: generatedAt.UTC(),
		Events:      make(map[string][]event.Event, len(groups.Dates)),
	}
	for _, d := range groups.Dates {
		snap.Events[d.String()] = groups.Groups[d]
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, ".events-*.json")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("setting snapshot permissions: %w", err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publishing snapshot: %w", err)
	}
	return nil
}

// Load reads the published snapshot. Returns ErrMissing when none has ever
// been written and ErrCorrupt (wrapped with detail) when the document does
// not decode into the canonical schema.
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissing
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if snap.Events == nil {
		snap.Events = make(map[string][]event.Event)
	}

	if err := validate(&snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &snap, nil
}

// LoadEvents reconstructs the in-memory EventsByDate from the published
// snapshot, with date keys in chronological order.
func (s *Store) LoadEvents() (aggregate.EventsByDate, time.Time, error) {
	snap, err := s.Load()
	if err != nil {
		return aggregate.EventsByDate{}, time.Time{}, err
	}

	groups := aggregate.EventsByDate{
		Dates:  make([]event.CalendarDate, 0, len(snap.Events)),
		Groups: make(map[event.CalendarDate][]event.Event, len(snap.Events)),
	}
	for key, events := range snap.Events {
		d, err := event.ParseCalendarDate(key)
		if err != nil {
			// validate already rejected malformed keys; kept for safety.
			return aggregate.EventsByDate{}, time.Time{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		groups.Dates = append(groups.Dates, d)
		groups.Groups[d] = events
	}
	sort.Slice(groups.Dates, func(i, j int) bool {
		return groups.Dates[i].Before(groups.Dates[j])
	})

	return groups, snap.GeneratedAt, nil
}

// validate rejects documents that break the canonical schema: malformed
// date keys, events missing a title, or events filed under the wrong key.
func validate(snap *Snapshot) error {
	for key, events := range snap.Events {
		d, err := event.ParseCalendarDate(key)
		if err != nil {
			return fmt.Errorf("malformed date key %q", key)
		}
		for _, evt := range events {
			if strings.TrimSpace(evt.Title) == "" {
				return fmt.Errorf("event without title under %q", key)
			}
			if evt.Date != d {
				return fmt.Errorf("event %q filed under %q but dated %s", evt.Title, key, evt.Date)
			}
		}
	}
	return nil
}
