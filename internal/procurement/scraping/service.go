package scraping

import (
	"context"
	"fmt"
	"time"

	"github.com/Caia-Tech/bilingual-corpus/internal/storage"
	"github.com/Caia-Tech/bilingual-corpus/pkg/document"
	"github.com/Caia-Tech/bilingual-corpus/pkg/logging"
	"github.com/Caia-Tech/bilingual-corpus/pkg/pipeline"
	"github.com/Caia-Tech/bilingual-corpus/pkg/ratelimit"
	"github.com/rs/zerolog"
)

//go:generate mockgen -source=service.go -destination=mocks/exporter_mock.go -package=mocks

// Exporter persists a finished dataset
type Exporter interface {
	Export(ctx context.Context, ds *document.Dataset) (*storage.ExportResult, error)
}

// RunReport summarizes one scraping run
type RunReport struct {
	Site       string        `json:"site"`
	Discovered int           `json:"discovered"`
	Attempted  int           `json:"attempted"`
	Kept       int           `json:"kept"`
	Dropped    int           `json:"dropped"` // extraction failed or pair rejected
	Skipped    int           `json:"skipped"` // no sibling URL
	Duration   time.Duration `json:"duration"`
	DatasetDir string        `json:"dataset_dir,omitempty"`
	JSONLPath  string        `json:"jsonl_path,omitempty"`
	Commit     string        `json:"commit,omitempty"`
}

// Service runs the discover, pair, extract and export pipeline for one site.
type Service struct {
	site       *pipeline.SiteConfig
	policy     document.KeepPolicy
	discoverer *LinkDiscoverer
	pairer     Pairer
	extractor  *ArticleExtractor
	throttle   *ratelimit.Throttle
	exporter   Exporter
	logger     zerolog.Logger
}

// NewService wires a service for site. Requests go through fetcher and the
// throttle enforces the pause between candidates.
func NewService(
	site *pipeline.SiteConfig,
	policy document.KeepPolicy,
	fetcher *Fetcher,
	throttle *ratelimit.Throttle,
	exporter Exporter,
) (*Service, error) {
	if err := site.Validate(); err != nil {
		return nil, fmt.Errorf("site %s: %w", site.Name, err)
	}

	discoverer, err := NewLinkDiscoverer(fetcher, site)
	if err != nil {
		return nil, err
	}
	pairer, err := NewPairer(site.Pairing)
	if err != nil {
		return nil, err
	}
	if throttle == nil {
		throttle = ratelimit.NewThrottle(site.Delay)
	}

	return &Service{
		site:       site,
		policy:     policy,
		discoverer: discoverer,
		pairer:     pairer,
		extractor:  NewArticleExtractor(fetcher, site),
		throttle:   throttle,
		exporter:   exporter,
		logger:     logging.GetPipelineLogger(site.Name, "service"),
	}, nil
}

// Run scrapes the site and exports the collected pairs. A run that collects
// nothing writes nothing and is not an error. Cancelling ctx stops the run
// before the next candidate; pairs collected so far are not exported.
func (s *Service) Run(ctx context.Context) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{Site: s.site.Name}

	pairs, err := s.Collect(ctx, report)
	report.Duration = time.Since(start)
	if err != nil {
		return report, err
	}

	if len(pairs) == 0 {
		s.logger.Warn().
			Int("discovered", report.Discovered).
			Int("dropped", report.Dropped).
			Int("skipped", report.Skipped).
			Msg("No pairs collected, nothing to export")
		return report, nil
	}

	ds, err := document.NewDataset(s.site.Output.DatasetName, pairs)
	if err != nil {
		return report, fmt.Errorf("failed to build dataset: %w", err)
	}

	result, err := s.exporter.Export(ctx, ds)
	report.Duration = time.Since(start)
	if err != nil {
		return report, err
	}
	report.DatasetDir = result.DatasetDir
	report.JSONLPath = result.JSONLPath
	report.Commit = result.Commit

	s.logger.Info().
		Int("kept", report.Kept).
		Int("dropped", report.Dropped).
		Int("skipped", report.Skipped).
		Dur("duration", report.Duration).
		Msg("Scrape completed")
	return report, nil
}

// Collect discovers candidates and returns the pairs that survived
// extraction, in discovery order. report counts are updated as it goes.
func (s *Service) Collect(ctx context.Context, report *RunReport) ([]document.ArticlePair, error) {
	links := s.discoverer.Discover(ctx, s.site.MaxArticles)
	report.Discovered = len(links)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pairs []document.ArticlePair
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		zhURL := string(link)
		enURL, err := s.pairer.Translate(zhURL, LocaleZH, LocaleEN)
		if err != nil {
			report.Skipped++
			s.logger.Debug().Err(err).Str("url", zhURL).Msg("No sibling URL, skipping")
			continue
		}

		report.Attempted++
		pair, err := s.scrapePair(ctx, zhURL, enURL)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		switch {
		case err == nil:
			pairs = append(pairs, pair)
			report.Kept++
			s.logger.Info().
				Int("index", i+1).
				Int("total", len(links)).
				Str("zh_url", zhURL).
				Str("en_url", enURL).
				Msg("Collected pair")
		default:
			report.Dropped++
			s.logger.Info().
				Err(err).
				Str("zh_url", zhURL).
				Str("en_url", enURL).
				Msg("Dropped pair")
		}

		if err := s.throttle.Pause(ctx); err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

// scrapePair extracts both sides in the site's order. Both pages are
// requested even when the first fails.
func (s *Service) scrapePair(ctx context.Context, zhURL, enURL string) (document.ArticlePair, error) {
	first, second := zhURL, enURL
	if s.site.Extraction.Order == pipeline.OrderENFirst {
		first, second = enURL, zhURL
	}

	a, errA := s.extractor.Extract(ctx, first)
	if ctx.Err() != nil {
		return document.ArticlePair{}, ctx.Err()
	}
	b, errB := s.extractor.Extract(ctx, second)
	if errA != nil {
		return document.ArticlePair{}, errA
	}
	if errB != nil {
		return document.ArticlePair{}, errB
	}

	zh, en := a, b
	if s.site.Extraction.Order == pipeline.OrderENFirst {
		zh, en = b, a
	}
	return document.NewPair(en, zh, s.policy)
}
