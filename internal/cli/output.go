package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mlisowski/eventsnap/internal/pipeline"
)

// OutputFormat specifies the report format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// WriteReport writes the run report in the specified format
func WriteReport(w io.Writer, report *pipeline.Report, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeText(w, report, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs the report as JSON
func writeJSON(w io.Writer, report *pipeline.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// writeText outputs the report as human-readable text
func writeText(w io.Writer, report *pipeline.Report, verbose bool) error {
	fmt.Fprintf(w, "Checked %d sources at %s\n", report.Sources, report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  %d succeeded, %d failed\n", report.Succeeded, len(report.Failures))
	fmt.Fprintf(w, "  %d events across %d dates\n", report.Events, report.Dates)
	fmt.Fprintf(w, "  snapshot: %s\n", report.SnapshotPath)

	if len(report.Failures) > 0 && verbose {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Failed sources:")
		for _, f := range report.Failures {
			fmt.Fprintf(w, "  %s: %s\n", f.URL, f.Reason)
		}
	}

	if report.Events == 0 {
		fmt.Fprintln(w, "No upcoming events found.")
	}

	return nil
}
