// Package llm provides a fallback listing parser backed by a local Ollama
// endpoint. It is consulted only for fragments the selector-based extractor
// misses; any failure leaves the fragment skipped.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mlisowski/eventsnap/internal/extract"
)

const (
	DefaultModel   = "tinydolphin"
	defaultTimeout = 60 * time.Second

	// maxFragmentLen truncates fragments before prompting; the model runs
	// on constrained hardware.
	maxFragmentLen = 1500
)

const promptTemplate = `Extract these fields from HTML as JSON:
{
  "date_time": "extracted date/time",
  "title": "event title",
  "place": "event location",
  "url": "event URL"
}

HTML content: %s

Return ONLY valid JSON without any formatting or comments:`

// Client talks to the Ollama generate API.
type Client struct {
	url        string
	model      string
	httpClient *http.Client
}

// New creates a Client for the given generate endpoint, e.g.
// http://localhost:11434/api/generate.
func New(url string) *Client {
	return &Client{
		url:   url,
		model: DefaultModel,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// WithModel overrides the default model name.
func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type listingPayload struct {
	DateTime string `json:"date_time"`
	Title    string `json:"title"`
	Place    string `json:"place"`
	URL      string `json:"url"`
}

// ParseListing asks the model to pull event fields out of a listing
// fragment. Implements extract.FallbackParser.
func (c *Client) ParseListing(ctx context.Context, fragment string) (extract.Listing, error) {
	if len(fragment) > maxFragmentLen {
		fragment = fragment[:maxFragmentLen]
	}

	reqBody, err := json.Marshal(generateRequest{
		Model:   c.model,
		Prompt:  fmt.Sprintf(promptTemplate, fragment),
		Stream:  false,
		Options: map[string]any{"temperature": 0.1},
	})
	if err != nil {
		return extract.Listing{}, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return extract.Listing{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return extract.Listing{}, fmt.Errorf("calling model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return extract.Listing{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return extract.Listing{}, fmt.Errorf("decoding response: %w", err)
	}

	var payload listingPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(gen.Response)), &payload); err != nil {
		return extract.Listing{}, fmt.Errorf("model returned invalid JSON: %w", err)
	}

	return extract.Listing{
		Title:    payload.Title,
		DateText: payload.DateTime,
		Place:    payload.Place,
		Link:     payload.URL,
	}, nil
}
