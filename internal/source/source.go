package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// ErrNoSources is returned when the registry contains no usable rows.
// Fatal: a run with nothing to scrape is a configuration error.
var ErrNoSources = errors.New("no sources configured")

// ConfigError describes an invalid registry row.
type ConfigError struct {
	Row    int
	URL    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("source row %d (%s): %s", e.Row, e.URL, e.Reason)
}

// Source is one upstream page configured for scraping. Immutable once
// loaded. Order is the registry position, used downstream as the
// deterministic tie-break for event ordering.
type Source struct {
	URL        string
	Categories []string
	Order      int
}

// LoadFile loads the registry from a CSV file.
func LoadFile(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source list: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load reads registry rows from r. A header row whose first field is "url"
// is tolerated and skipped. Rows must carry a well-formed http(s) URL;
// category labels are trimmed and empty labels dropped.
func Load(r io.Reader) ([]Source, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	sources := make([]Source, 0)
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading source list: %w", err)
		}
		row++

		if len(record) == 0 {
			continue
		}
		rawURL := strings.TrimSpace(record[0])
		if rawURL == "" {
			continue
		}
		if row == 1 && strings.EqualFold(rawURL, "url") {
			continue
		}

		if reason, ok := validateURL(rawURL); !ok {
			return nil, &ConfigError{Row: row, URL: rawURL, Reason: reason}
		}

		sources = append(sources, Source{
			URL:        rawURL,
			Categories: parseCategories(record[1:]),
			Order:      len(sources),
		})
	}

	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	return sources, nil
}

// validateURL checks that a registry URL is an absolute http(s) URL.
func validateURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Sprintf("malformed URL: %v", err), false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Sprintf("unsupported scheme %q", u.Scheme), false
	}
	if u.Host == "" {
		return "missing host", false
	}
	return "", true
}

// parseCategories flattens the remaining fields into category labels.
// Labels may be comma-joined within a single quoted field or spread across
// unquoted fields; both arrive here the same way.
func parseCategories(fields []string) []string {
	categories := make([]string, 0)
	for _, field := range fields {
		for _, label := range strings.Split(field, ",") {
			label = strings.TrimSpace(label)
			if label != "" {
				categories = append(categories, label)
			}
		}
	}
	return categories
}
