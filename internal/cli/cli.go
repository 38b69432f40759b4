package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mlisowski/eventsnap/internal/extract"
	"github.com/mlisowski/eventsnap/internal/fetch"
	"github.com/mlisowski/eventsnap/internal/logger"
	"github.com/mlisowski/eventsnap/internal/pipeline"
	"github.com/mlisowski/eventsnap/internal/server"
	"github.com/mlisowski/eventsnap/internal/snapshot"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagSources     string
	flagDataDir     string
	flagIncludePast bool
	flagTimeout     time.Duration
	flagConcurrency int
	flagNoBrowser   bool
	flagLLMURL      string
	flagFormat      string
	flagVerbose     bool

	flagAddr string
)

// NewRootCmd creates the root command with its subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eventsnap",
		Short: "Scrape event listings into a date-keyed snapshot",
		Long: `eventsnap collects event listings from configured upstream pages,
normalizes them into a per-date mapping, and publishes one atomic JSON
snapshot per run. A separate serve command exposes the latest snapshot
over HTTP for rendering.`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd())
	root.AddCommand(newServeCmd())

	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one full pipeline run and publish the snapshot",
		RunE:  runPipeline,
	}

	cmd.Flags().StringVar(&flagSources, "sources", envOr("EVENTSNAP_SOURCES", "sources.csv"), "CSV file of (url, categories) rows")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", envOr("EVENTSNAP_DATA_DIR", "~/.local/share/eventsnap"), "Data directory for snapshots")
	cmd.Flags().BoolVar(&flagIncludePast, "include-past", false, "Retain events whose date already passed")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", fetch.DefaultTimeout, "Per-source fetch timeout")
	cmd.Flags().IntVar(&flagConcurrency, "concurrency", fetch.DefaultConcurrency, "Concurrent source fetches")
	cmd.Flags().BoolVar(&flagNoBrowser, "no-browser", false, "Disable headless-browser rendering")
	cmd.Flags().StringVar(&flagLLMURL, "llm-url", os.Getenv("EVENTSNAP_LLM_URL"), "Ollama generate endpoint for fallback listing parsing")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Report format: text or json")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the published snapshot over HTTP",
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&flagAddr, "addr", envOr("EVENTSNAP_ADDR", ":8080"), "Listen address")
	cmd.Flags().StringVar(&flagDataDir, "data-dir", envOr("EVENTSNAP_DATA_DIR", "~/.local/share/eventsnap"), "Data directory for snapshots")

	return cmd
}

func runPipeline(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	report, err := pipeline.Run(cmd.Context(), pipeline.Options{
		SourcesPath: flagSources,
		DataDir:     flagDataDir,
		Now:         time.Now(),
		IncludePast: flagIncludePast,
		Fetch: fetch.Options{
			Timeout:        flagTimeout,
			Concurrency:    flagConcurrency,
			DisableBrowser: flagNoBrowser,
		},
		Selectors: extract.DefaultSelectors(),
		LLMURL:    flagLLMURL,
	})
	if err != nil {
		return err
	}

	return WriteReport(os.Stdout, report, format, flagVerbose)
}

func runServe(cmd *cobra.Command, args []string) error {
	store, err := snapshot.New(flagDataDir)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}

	return server.New(store).Start(flagAddr)
}

// envOr returns the environment value for key, or fallback when unset.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
