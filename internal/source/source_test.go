package source

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want []Source
	}{
		{
			name: "Single source with comma-joined categories",
			csv:  "https://facebook.com/jazzclub,\"music,live\"\n",
			want: []Source{
				{URL: "https://facebook.com/jazzclub", Categories: []string{"music", "live"}, Order: 0},
			},
		},
		{
			name: "Header row skipped",
			csv:  "url,categories\nhttps://facebook.com/jazzclub,music\n",
			want: []Source{
				{URL: "https://facebook.com/jazzclub", Categories: []string{"music"}, Order: 0},
			},
		},
		{
			name: "Multiple sources keep registry order",
			csv:  "https://facebook.com/a,music\nhttps://facebook.com/b,theater\n",
			want: []Source{
				{URL: "https://facebook.com/a", Categories: []string{"music"}, Order: 0},
				{URL: "https://facebook.com/b", Categories: []string{"theater"}, Order: 1},
			},
		},
		{
			name: "Category labels trimmed and empties dropped",
			csv:  "https://facebook.com/a,\" music , , live \"\n",
			want: []Source{
				{URL: "https://facebook.com/a", Categories: []string{"music", "live"}, Order: 0},
			},
		},
		{
			name: "Duplicate categories kept as-is",
			csv:  "https://facebook.com/a,\"music,music\"\n",
			want: []Source{
				{URL: "https://facebook.com/a", Categories: []string{"music", "music"}, Order: 0},
			},
		},
		{
			name: "Source without categories",
			csv:  "https://facebook.com/a\n",
			want: []Source{
				{URL: "https://facebook.com/a", Categories: []string{}, Order: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(strings.NewReader(tt.csv))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Load() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoad_Empty(t *testing.T) {
	for _, csv := range []string{"", "url,categories\n", "\n\n"} {
		if _, err := Load(strings.NewReader(csv)); !errors.Is(err, ErrNoSources) {
			t.Errorf("Load(%q) error = %v, want ErrNoSources", csv, err)
		}
	}
}

func TestLoad_MalformedURL(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"Relative URL", "events/jazzclub,music\n"},
		{"Unsupported scheme", "ftp://example.com/a,music\n"},
		{"Scheme only", "https://,music\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.csv))

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Load() error = %v, want *ConfigError", err)
			}
			if cfgErr.Row != 1 {
				t.Errorf("ConfigError.Row = %d, want 1", cfgErr.Row)
			}
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile("testdata/does-not-exist.csv"); err == nil {
		t.Error("LoadFile() expected error for missing file")
	}
}
