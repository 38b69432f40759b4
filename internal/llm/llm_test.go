package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ParseListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		assert.False(t, req.Stream)
		assert.Contains(t, req.Prompt, "Jazz Night")

		fmt.Fprint(w, `{"response": "{\"date_time\":\"05/06/24\",\"title\":\"Jazz Night\",\"place\":\"Blue Note Club\",\"url\":\"https://facebook.com/events/123\"}"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	listing, err := c.ParseListing(context.Background(), `<div><b>Jazz Night</b></div>`)

	require.NoError(t, err)
	assert.Equal(t, "Jazz Night", listing.Title)
	assert.Equal(t, "05/06/24", listing.DateText)
	assert.Equal(t, "Blue Note Club", listing.Place)
	assert.Equal(t, "https://facebook.com/events/123", listing.Link)
}

func TestClient_ParseListing_InvalidModelOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"response": "Sure! Here is the JSON you asked for..."}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ParseListing(context.Background(), "<div></div>")
	assert.Error(t, err)
}

func TestClient_ParseListing_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ParseListing(context.Background(), "<div></div>")
	assert.Error(t, err)
}

func TestClient_ParseListing_TruncatesFragment(t *testing.T) {
	var promptLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		promptLen = len(req.Prompt)
		fmt.Fprint(w, `{"response": "{\"title\":\"x\",\"date_time\":\"today\",\"url\":\"https://e/1\"}"}`)
	}))
	defer srv.Close()

	fragment := strings.Repeat("x", 10*maxFragmentLen)
	_, err := New(srv.URL).ParseListing(context.Background(), fragment)

	require.NoError(t, err)
	assert.Less(t, promptLen, len(promptTemplate)+maxFragmentLen+1)
}
