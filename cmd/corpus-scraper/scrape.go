package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Caia-Tech/bilingual-corpus/internal/procurement/scraping"
	"github.com/Caia-Tech/bilingual-corpus/internal/storage"
	"github.com/Caia-Tech/bilingual-corpus/pkg/document"
	"github.com/Caia-Tech/bilingual-corpus/pkg/ratelimit"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// DefaultSite is scraped when no site is named
const DefaultSite = "dev-blog"

type scrapeOptions struct {
	max        int
	delay      time.Duration
	timeout    time.Duration
	retries    int
	strict     bool
	datasetDir string
	jsonlPath  string
	noVersion  bool
}

func newScrapeCommand(a *app) *cobra.Command {
	opts := &scrapeOptions{}

	cmd := &cobra.Command{
		Use:   "scrape [site]",
		Short: "Scrape one site family and export the collected pairs",
		Example: `  corpus-scraper scrape
  corpus-scraper scrape blogs-tw --max 50 --delay 500ms
  corpus-scraper scrape dev-blog --strict --no-version`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := DefaultSite
			if len(args) == 1 {
				name = args[0]
			}
			return a.scrape(cmd, name, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.max, "max", 0, "maximum number of articles to discover")
	flags.DurationVar(&opts.delay, "delay", 0, "pause after each candidate pair")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout")
	flags.IntVar(&opts.retries, "retries", 0, "retries for transient fetch failures")
	flags.BoolVar(&opts.strict, "strict", false, "drop pairs that contain placeholder text")
	flags.StringVar(&opts.datasetDir, "dataset-dir", "", "dataset snapshot directory")
	flags.StringVar(&opts.jsonlPath, "jsonl", "", "JSON-lines output file")
	flags.BoolVar(&opts.noVersion, "no-version", false, "do not commit the snapshot to git")
	return cmd
}

func (a *app) scrape(cmd *cobra.Command, name string, opts *scrapeOptions) error {
	cfg := a.config
	site, err := cfg.Site(name)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("max") {
		site.MaxArticles = opts.max
	}
	if flags.Changed("delay") {
		site.Delay = opts.delay
	}
	if flags.Changed("timeout") {
		cfg.Fetch.Timeout = opts.timeout
	}
	if flags.Changed("retries") {
		cfg.Fetch.MaxRetries = opts.retries
	}
	if opts.strict {
		cfg.Policy = document.PolicyStrict
	}
	if flags.Changed("dataset-dir") {
		site.Output.DatasetDir = opts.datasetDir
	}
	if flags.Changed("jsonl") {
		site.Output.JSONLPath = opts.jsonlPath
	}
	if opts.noVersion {
		site.Output.Versioned = false
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := storage.NewSimpleMetricsCollector()
	fetcher := scraping.NewFetcher(cfg.Fetch, site.Headers, nil)
	svc, err := scraping.NewService(
		site,
		cfg.Policy,
		fetcher,
		ratelimit.NewThrottle(site.Delay),
		storage.NewDatasetExporter(site.Output, metrics),
	)
	if err != nil {
		return err
	}

	log.Info().
		Str("site", site.Name).
		Str("listing_url", site.ListingURL).
		Int("max_articles", site.MaxArticles).
		Dur("delay", site.Delay).
		Str("policy", string(cfg.Policy)).
		Msg("Starting scrape")

	report, err := svc.Run(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			log.Warn().Msg("Scrape interrupted, nothing exported")
		}
		return err
	}

	for backend, ops := range metrics.GetMetricsSummary() {
		for op, stats := range ops {
			log.Debug().
				Str("backend", backend).
				Str("operation", op).
				Int("count", stats.Count).
				Dur("total", time.Duration(stats.TotalDuration)).
				Msg("Storage metrics")
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "site:       %s\n", report.Site)
	fmt.Fprintf(out, "discovered: %d\n", report.Discovered)
	fmt.Fprintf(out, "kept:       %d\n", report.Kept)
	fmt.Fprintf(out, "dropped:    %d\n", report.Dropped)
	fmt.Fprintf(out, "skipped:    %d\n", report.Skipped)
	fmt.Fprintf(out, "duration:   %s\n", report.Duration.Round(time.Millisecond))
	if report.Kept > 0 {
		fmt.Fprintf(out, "dataset:    %s\n", report.DatasetDir)
		fmt.Fprintf(out, "jsonl:      %s\n", report.JSONLPath)
		if report.Commit != "" {
			fmt.Fprintf(out, "commit:     %s\n", report.Commit)
		}
	}
	return nil
}
