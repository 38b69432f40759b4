package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mlisowski/eventsnap/internal/aggregate"
	"github.com/mlisowski/eventsnap/internal/event"
	"github.com/mlisowski/eventsnap/internal/extract"
	"github.com/mlisowski/eventsnap/internal/fetch"
	"github.com/mlisowski/eventsnap/internal/llm"
	"github.com/mlisowski/eventsnap/internal/logger"
	"github.com/mlisowski/eventsnap/internal/snapshot"
	"github.com/mlisowski/eventsnap/internal/source"
)

// Fetcher retrieves markup for all sources. Satisfied by *fetch.Fetcher;
// tests substitute fakes.
type Fetcher interface {
	FetchAll(ctx context.Context, sources []source.Source) []fetch.Result
}

// Options configures one run. Now is the run clock, injected so past-date
// filtering and implicit-year resolution are deterministic under test.
type Options struct {
	SourcesPath string
	DataDir     string
	Now         time.Time
	IncludePast bool

	Fetch     fetch.Options
	Selectors extract.Selectors
	// LLMURL enables the fallback listing parser when non-empty.
	LLMURL string

	// Fetcher overrides the default fetcher; nil builds one from Fetch.
	Fetcher Fetcher
}

// SourceFailure records one source the run could not use.
type SourceFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Report summarizes a completed run. Per-source failures only affect
// coverage, never the run's overall success.
type Report struct {
	GeneratedAt  time.Time       `json:"generated_at"`
	Sources      int             `json:"sources"`
	Succeeded    int             `json:"succeeded"`
	Failures     []SourceFailure `json:"failures,omitempty"`
	Events       int             `json:"events"`
	Dates        int             `json:"dates"`
	SnapshotPath string          `json:"snapshot_path"`
}

// Run executes one full pipeline pass and publishes the snapshot. The
// returned error is non-nil only on total failure: a registry error, a
// cancelled context, or a store failure.
func Run(ctx context.Context, opts Options) (*Report, error) {
	runStart := time.Now()
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	runDate := event.DateOf(opts.Now)

	sources, err := source.LoadFile(opts.SourcesPath)
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}
	logger.Info("Starting run", logger.Fields{
		"sources":  len(sources),
		"run_date": runDate.String(),
	})
	logger.SetGauge("run.sources", float64(len(sources)))

	store, err := snapshot.New(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = fetch.New(opts.Fetch)
	}

	extractor := extract.New(opts.Selectors, runDate)
	if opts.LLMURL != "" {
		extractor = extractor.WithFallback(llm.New(opts.LLMURL))
	}

	results := fetcher.FetchAll(ctx, sources)
	if err := ctx.Err(); err != nil {
		// Cancelled mid-run: discard everything, never publish partially.
		return nil, fmt.Errorf("run cancelled: %w", err)
	}

	report := &Report{
		GeneratedAt:  opts.Now.UTC(),
		Sources:      len(sources),
		SnapshotPath: store.Path(),
	}

	collected := make([]event.Event, 0)
	for _, res := range results {
		logger.RecordTiming("fetch.duration", res.Elapsed)

		if res.Err != nil {
			report.Failures = append(report.Failures, SourceFailure{
				URL:    res.Source.URL,
				Reason: res.Err.Error(),
			})
			logger.Warn("Source fetch failed", logger.Fields{
				"source": res.Source.URL,
				"reason": res.Err.Error(),
			})
			logger.IncrCounter("fetch.failures")
			continue
		}

		events, stats, err := extractor.Extract(ctx, res.HTML, res.Source)
		if err != nil {
			report.Failures = append(report.Failures, SourceFailure{
				URL:    res.Source.URL,
				Reason: fmt.Sprintf("parsing markup: %v", err),
			})
			logger.Warn("Source markup unreadable", logger.Fields{
				"source": res.Source.URL,
			})
			continue
		}
		logger.AddCounter("events.extracted", int64(stats.Extracted))
		logger.AddCounter("events.skipped", int64(stats.Skipped))
		logger.Debug("Source extracted", logger.Fields{
			"source":    res.Source.URL,
			"listings":  stats.Listings,
			"extracted": stats.Extracted,
			"skipped":   stats.Skipped,
		})

		// A page that renders but exposes no listings usually means the
		// upstream structure changed; treat it like a fetch failure.
		if len(events) == 0 {
			report.Failures = append(report.Failures, SourceFailure{
				URL:    res.Source.URL,
				Reason: "no events extracted",
			})
			logger.Warn("No events extracted", logger.Fields{
				"source": res.Source.URL,
			})
			continue
		}

		report.Succeeded++
		collected = append(collected, events...)
	}

	groups := aggregate.Aggregate(collected, aggregate.Options{
		Now:         runDate,
		IncludePast: opts.IncludePast,
	})
	report.Events = groups.Total()
	report.Dates = len(groups.Dates)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled: %w", err)
	}
	if err := store.Save(groups, opts.Now); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}

	logger.RecordTiming("run.duration", time.Since(runStart))
	logger.Info("Run complete", logger.Fields{
		"events":   report.Events,
		"dates":    report.Dates,
		"failures": len(report.Failures),
		"snapshot": report.SnapshotPath,
	})

	return report, nil
}
