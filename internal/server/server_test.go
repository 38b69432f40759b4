package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlisowski/eventsnap/internal/aggregate"
	"github.com/mlisowski/eventsnap/internal/event"
	"github.com/mlisowski/eventsnap/internal/snapshot"
)

func newTestServer(t *testing.T) (*Server, *snapshot.Store) {
	t.Helper()
	store, err := snapshot.New(t.TempDir())
	require.NoError(t, err)
	return New(store), store
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_EventsMissingSnapshot(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/api/events")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "no snapshot")
}

func TestServer_Events(t *testing.T) {
	s, store := newTestServer(t)

	june5 := event.NewCalendarDate(2024, time.June, 5)
	groups := aggregate.EventsByDate{
		Dates: []event.CalendarDate{june5},
		Groups: map[event.CalendarDate][]event.Event{
			june5: {{Title: "Jazz Night", Link: "https://facebook.com/events/123", Place: "Blue Note Club", Date: june5}},
		},
	}
	generatedAt := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(groups, generatedAt))

	rec := get(t, s, "/api/events")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap snapshot.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.True(t, snap.GeneratedAt.Equal(generatedAt))
	require.Contains(t, snap.Events, "2024-06-05")
	assert.Equal(t, "Jazz Night", snap.Events["2024-06-05"][0].Title)
}

func TestServer_EventsSeesNewPublish(t *testing.T) {
	s, store := newTestServer(t)

	june5 := event.NewCalendarDate(2024, time.June, 5)
	groups := aggregate.EventsByDate{
		Dates: []event.CalendarDate{june5},
		Groups: map[event.CalendarDate][]event.Event{
			june5: {{Title: "Jazz Night", Link: "https://e/1", Place: "P", Date: june5}},
		},
	}

	rec := get(t, s, "/api/events")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, store.Save(groups, time.Now()))

	rec = get(t, s, "/api/events")
	assert.Equal(t, http.StatusOK, rec.Code, "a publish after startup must be visible without restart")
}

func TestServer_EventsCorruptSnapshot(t *testing.T) {
	s, store := newTestServer(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("{ not json"), 0644))

	rec := get(t, s, "/api/events")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "corrupt")
}
