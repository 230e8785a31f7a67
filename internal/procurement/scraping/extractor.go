package scraping

import (
	"context"

	"github.com/Caia-Tech/bilingual-corpus/pkg/document"
	"github.com/Caia-Tech/bilingual-corpus/pkg/extractor"
	"github.com/Caia-Tech/bilingual-corpus/pkg/logging"
	"github.com/Caia-Tech/bilingual-corpus/pkg/pipeline"
	"github.com/rs/zerolog"
)

// ArticleExtractor fetches an article page and pulls out its title and body.
type ArticleExtractor struct {
	fetcher *Fetcher
	config  pipeline.ExtractionConfig
	logger  zerolog.Logger
}

// NewArticleExtractor creates an extractor for one site family.
func NewArticleExtractor(fetcher *Fetcher, site *pipeline.SiteConfig) *ArticleExtractor {
	return &ArticleExtractor{
		fetcher: fetcher,
		config:  site.Extraction,
		logger:  logging.GetPipelineLogger(site.Name, "extraction"),
	}
}

// Extract fetches url and returns its record. A failed fetch or parse is
// logged and returned as an error; it never panics.
func (e *ArticleExtractor) Extract(ctx context.Context, url string) (*document.ArticleRecord, error) {
	body, err := e.fetcher.Get(ctx, url)
	if err != nil {
		e.logger.Warn().Err(err).Str("url", url).Msg("Failed to fetch article")
		return nil, err
	}

	record, err := e.ParseArticle(url, body)
	if err != nil {
		e.logger.Warn().Err(err).Str("url", url).Msg("Failed to parse article")
		return nil, err
	}
	return record, nil
}

// ParseArticle extracts a record from an article page body.
func (e *ArticleExtractor) ParseArticle(url string, body []byte) (*document.ArticleRecord, error) {
	doc, err := extractor.Parse(body)
	if err != nil {
		return nil, err
	}

	record := &document.ArticleRecord{URL: url}

	if title, ok := extractor.FirstText(doc, e.config.TitleSelector); ok {
		record.Title = document.Extracted(title)
	} else {
		record.Title = document.Placeholder(document.NoTitleFound)
	}

	if content, ok := extractor.ContainerText(doc, e.config.ContentSelector); ok {
		record.Content = document.Extracted(content)
	} else if e.config.MissingContent == pipeline.MissingContentDocument {
		record.Content = document.Extracted(extractor.DocumentText(doc))
	} else {
		record.Content = document.Placeholder(document.NoContentFound)
	}

	e.logger.Debug().
		Str("url", url).
		Bool("title_placeholder", record.Title.Sentinel).
		Bool("content_placeholder", record.Content.Sentinel).
		Int("content_chars", len(record.Content.Text)).
		Msg("Extracted article")
	return record, nil
}
