package scraping

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Caia-Tech/bilingual-corpus/pkg/document"
	"github.com/Caia-Tech/bilingual-corpus/pkg/extractor"
	"github.com/Caia-Tech/bilingual-corpus/pkg/logging"
	"github.com/Caia-Tech/bilingual-corpus/pkg/pipeline"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// LinkDiscoverer finds article links on a site's listing page.
type LinkDiscoverer struct {
	fetcher *Fetcher
	site    *pipeline.SiteConfig
	origin  *url.URL
	logger  zerolog.Logger
}

// NewLinkDiscoverer creates a discoverer for site.
func NewLinkDiscoverer(fetcher *Fetcher, site *pipeline.SiteConfig) (*LinkDiscoverer, error) {
	origin, err := url.Parse(site.Origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", site.Origin, err)
	}

	return &LinkDiscoverer{
		fetcher: fetcher,
		site:    site,
		origin:  origin,
		logger:  logging.GetPipelineLogger(site.Name, "discovery"),
	}, nil
}

// Discover returns up to limit article links from the listing page, in
// document order and without duplicates. Fetch and parse failures are logged
// and yield an empty result.
func (d *LinkDiscoverer) Discover(ctx context.Context, limit int) []document.ArticleLink {
	if limit <= 0 {
		return nil
	}

	body, err := d.fetcher.Get(ctx, d.site.ListingURL)
	if err != nil {
		d.logger.Warn().Err(err).Str("url", d.site.ListingURL).Msg("Failed to fetch listing page")
		return nil
	}

	doc, err := extractor.Parse(body)
	if err != nil {
		d.logger.Warn().Err(err).Str("url", d.site.ListingURL).Msg("Failed to parse listing page")
		return nil
	}

	links := d.ExtractLinks(doc, limit)
	d.logger.Info().
		Str("url", d.site.ListingURL).
		Str("strategy", d.site.Discovery.Strategy).
		Int("links", len(links)).
		Int("limit", limit).
		Msg("Discovered article links")
	return links
}

// ExtractLinks applies the site's discovery strategy to a parsed listing page.
func (d *LinkDiscoverer) ExtractLinks(doc *goquery.Document, limit int) []document.ArticleLink {
	if limit <= 0 {
		return nil
	}

	set := newLinkSet(limit)
	switch d.site.Discovery.Strategy {
	case pipeline.StrategyStructural:
		doc.Find(d.site.Discovery.ArticleSelector).EachWithBreak(func(_ int, article *goquery.Selection) bool {
			href, ok := article.Find("a[href]").First().Attr("href")
			if ok {
				if link, ok := d.resolve(href, false); ok {
					set.add(link)
				}
			}
			return !set.full()
		})

	case pipeline.StrategyPattern:
		doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			if strings.Contains(href, d.site.Discovery.LinkPattern) {
				if link, ok := d.resolve(href, true); ok {
					set.add(link)
				}
			}
			return !set.full()
		})

	default:
		d.logger.Error().Str("strategy", d.site.Discovery.Strategy).Msg("Unknown discovery strategy")
	}

	return set.links
}

// resolve turns href into an absolute http(s) URL against the site origin.
// With sameOrigin, links to any other host are rejected.
func (d *LinkDiscoverer) resolve(href string, sameOrigin bool) (document.ArticleLink, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		d.logger.Debug().Err(err).Str("href", href).Msg("Skipping unparsable link")
		return "", false
	}

	abs := d.origin.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if sameOrigin && !strings.EqualFold(abs.Host, d.origin.Host) {
		return "", false
	}
	abs.Fragment = ""
	abs.RawFragment = ""

	return document.ArticleLink(abs.String()), true
}

// linkSet keeps links in insertion order and drops repeats.
type linkSet struct {
	limit int
	seen  map[document.ArticleLink]struct{}
	links []document.ArticleLink
}

func newLinkSet(limit int) *linkSet {
	return &linkSet{
		limit: limit,
		seen:  make(map[document.ArticleLink]struct{}),
	}
}

func (s *linkSet) add(link document.ArticleLink) {
	if s.full() {
		return
	}
	if _, dup := s.seen[link]; dup {
		return
	}
	s.seen[link] = struct{}{}
	s.links = append(s.links, link)
}

func (s *linkSet) full() bool {
	return len(s.links) >= s.limit
}
