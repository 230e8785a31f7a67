package pipeline

import (
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/Caia-Tech/bilingual-corpus/pkg/document"
	"github.com/Caia-Tech/bilingual-corpus/pkg/logging"
)

// Link discovery strategies
const (
	StrategyStructural = "structural" // first link of each article block
	StrategyPattern    = "pattern"    // every link whose href contains a marker
)

// URL pairing rules
const (
	RulePathPrefix = "path_prefix"
	RuleOrigin     = "origin"
)

// Behavior when the content container is missing
const (
	MissingContentSentinel = "sentinel"
	MissingContentDocument = "document"
)

// Extraction orders
const (
	OrderZHFirst = "zh_first"
	OrderENFirst = "en_first"
)

// DefaultUserAgent mimics a desktop browser
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// Config holds complete scraper configuration
type Config struct {
	Logging *logging.LogConfig     `mapstructure:"logging"`
	Fetch   FetchConfig            `mapstructure:"fetch"`
	Policy  document.KeepPolicy    `mapstructure:"policy"`
	Sites   map[string]*SiteConfig `mapstructure:"sites"`
}

// FetchConfig holds HTTP client settings shared by every site
type FetchConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"` // 0 disables retry
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// SiteConfig parameterizes the pipeline for one site family
type SiteConfig struct {
	Name        string            `mapstructure:"-"`
	ListingURL  string            `mapstructure:"listing_url"`
	Origin      string            `mapstructure:"origin"`
	Headers     map[string]string `mapstructure:"headers"`
	MaxArticles int               `mapstructure:"max_articles"`
	Delay       time.Duration     `mapstructure:"delay"`
	Discovery   DiscoveryConfig   `mapstructure:"discovery"`
	Pairing     PairingConfig     `mapstructure:"pairing"`
	Extraction  ExtractionConfig  `mapstructure:"extraction"`
	Output      OutputConfig      `mapstructure:"output"`
}

// DiscoveryConfig selects how article links are found on the listing page
type DiscoveryConfig struct {
	Strategy        string `mapstructure:"strategy"`
	ArticleSelector string `mapstructure:"article_selector"` // structural only
	LinkPattern     string `mapstructure:"link_pattern"`     // pattern only
}

// PairingConfig selects how a URL is mapped to the sibling locale
type PairingConfig struct {
	Rule     string `mapstructure:"rule"`
	ZHPrefix string `mapstructure:"zh_prefix"`
	ENPrefix string `mapstructure:"en_prefix"`
	ZHOrigin string `mapstructure:"zh_origin"`
	ENOrigin string `mapstructure:"en_origin"`
}

// ExtractionConfig holds article page selectors
type ExtractionConfig struct {
	TitleSelector   string `mapstructure:"title_selector"`
	ContentSelector string `mapstructure:"content_selector"`
	MissingContent  string `mapstructure:"missing_content"`
	Order           string `mapstructure:"order"`
}

// OutputConfig holds export destinations
type OutputConfig struct {
	DatasetName string `mapstructure:"dataset_name"`
	DatasetDir  string `mapstructure:"dataset_dir"`
	JSONLPath   string `mapstructure:"jsonl_path"`
	Versioned   bool   `mapstructure:"versioned"` // commit each snapshot with git
}

// DefaultConfig returns the built-in site families
func DefaultConfig() *Config {
	return &Config{
		Logging: logging.DefaultLogConfig(),
		Fetch: FetchConfig{
			Timeout:        30 * time.Second,
			MaxRetries:     0,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     10 * time.Second,
		},
		Policy: document.PolicyLenient,
		Sites: map[string]*SiteConfig{
			"dev-blog": DevBlogSite(),
			"blogs-tw": BlogsTWSite(),
		},
	}
}

// DevBlogSite is the NVIDIA developer blog, whose locales share one origin
// and differ by path prefix.
func DevBlogSite() *SiteConfig {
	return &SiteConfig{
		Name:       "dev-blog",
		ListingURL: "https://developer.nvidia.com/zh-cn/blog",
		Origin:     "https://developer.nvidia.com",
		Headers: map[string]string{
			"User-Agent":      DefaultUserAgent,
			"Accept-Language": "en-US,en;q=0.9,zh-CN;q=0.8,zh;q=0.7",
		},
		MaxArticles: 100,
		Delay:       2 * time.Second,
		Discovery: DiscoveryConfig{
			Strategy:        StrategyStructural,
			ArticleSelector: "article",
		},
		Pairing: PairingConfig{
			Rule:     RulePathPrefix,
			ZHPrefix: "/zh-cn/blog/",
			ENPrefix: "/blog/",
		},
		Extraction: ExtractionConfig{
			TitleSelector:   "h1",
			ContentSelector: "div.post-content",
			MissingContent:  MissingContentSentinel,
			Order:           OrderZHFirst,
		},
		Output: OutputConfig{
			DatasetName: "nvidia_dev_blog_dataset",
			DatasetDir:  "nvidia_dev_blog_dataset",
			JSONLPath:   "nvidia_zh_cn_en_us_dev_blog_dataset.jsonl",
			Versioned:   true,
		},
	}
}

// BlogsTWSite is the NVIDIA corporate blog, mirrored on a Taiwanese origin.
func BlogsTWSite() *SiteConfig {
	return &SiteConfig{
		Name:       "blogs-tw",
		ListingURL: "https://blogs.nvidia.com.tw/",
		Origin:     "https://blogs.nvidia.com.tw",
		Headers: map[string]string{
			"User-Agent": DefaultUserAgent,
		},
		MaxArticles: 1000,
		Delay:       1 * time.Second,
		Discovery: DiscoveryConfig{
			Strategy:    StrategyPattern,
			LinkPattern: "/blog/",
		},
		Pairing: PairingConfig{
			Rule:     RuleOrigin,
			ZHOrigin: "https://blogs.nvidia.com.tw",
			ENOrigin: "https://blogs.nvidia.com",
		},
		Extraction: ExtractionConfig{
			TitleSelector:   "h1",
			ContentSelector: "div.entry-content",
			MissingContent:  MissingContentDocument,
			Order:           OrderENFirst,
		},
		Output: OutputConfig{
			DatasetName: "nvidia_blog_dataset",
			DatasetDir:  "nvidia_blog_dataset",
			JSONLPath:   "nvidia_blog_dataset.jsonl",
			Versioned:   true,
		},
	}
}

// Site returns the named site family
func (c *Config) Site(name string) (*SiteConfig, error) {
	site, ok := c.Sites[name]
	if !ok {
		return nil, fmt.Errorf("unknown site %q (configured: %v)", name, c.SiteNames())
	}
	return site, nil
}

// SiteNames returns configured site keys in sorted order
func (c *Config) SiteNames() []string {
	names := make([]string, 0, len(c.Sites))
	for name := range c.Sites {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	switch c.Policy {
	case document.PolicyLenient, document.PolicyStrict:
	default:
		return fmt.Errorf("unknown keep policy %q", c.Policy)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch timeout cannot be negative")
	}
	if c.Fetch.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if len(c.Sites) == 0 {
		return fmt.Errorf("no sites configured")
	}
	for _, name := range c.SiteNames() {
		if err := c.Sites[name].Validate(); err != nil {
			return fmt.Errorf("site %s: %w", name, err)
		}
	}
	return nil
}

// Validate checks one site family for errors
func (s *SiteConfig) Validate() error {
	if err := requireAbsolute("listing_url", s.ListingURL); err != nil {
		return err
	}
	if err := requireAbsolute("origin", s.Origin); err != nil {
		return err
	}
	if s.MaxArticles < 0 {
		return fmt.Errorf("max_articles cannot be negative")
	}
	if s.Delay < 0 {
		return fmt.Errorf("delay cannot be negative")
	}

	switch s.Discovery.Strategy {
	case StrategyStructural:
		if s.Discovery.ArticleSelector == "" {
			return fmt.Errorf("structural discovery requires article_selector")
		}
	case StrategyPattern:
		if s.Discovery.LinkPattern == "" {
			return fmt.Errorf("pattern discovery requires link_pattern")
		}
	default:
		return fmt.Errorf("unknown discovery strategy %q", s.Discovery.Strategy)
	}

	switch s.Pairing.Rule {
	case RulePathPrefix:
		if s.Pairing.ZHPrefix == "" || s.Pairing.ENPrefix == "" {
			return fmt.Errorf("path_prefix pairing requires zh_prefix and en_prefix")
		}
	case RuleOrigin:
		if err := requireAbsolute("zh_origin", s.Pairing.ZHOrigin); err != nil {
			return err
		}
		if err := requireAbsolute("en_origin", s.Pairing.ENOrigin); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown pairing rule %q", s.Pairing.Rule)
	}

	if s.Extraction.TitleSelector == "" || s.Extraction.ContentSelector == "" {
		return fmt.Errorf("title_selector and content_selector are required")
	}
	switch s.Extraction.MissingContent {
	case MissingContentSentinel, MissingContentDocument:
	default:
		return fmt.Errorf("unknown missing_content policy %q", s.Extraction.MissingContent)
	}
	switch s.Extraction.Order {
	case OrderZHFirst, OrderENFirst:
	default:
		return fmt.Errorf("unknown extraction order %q", s.Extraction.Order)
	}

	if s.Output.DatasetName == "" || s.Output.DatasetDir == "" || s.Output.JSONLPath == "" {
		return fmt.Errorf("dataset_name, dataset_dir and jsonl_path are required")
	}
	return nil
}

func requireAbsolute(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must have a host", field)
	}
	return nil
}
