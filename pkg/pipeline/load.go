package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. CORPUS_FETCH_TIMEOUT=10s
const EnvPrefix = "CORPUS"

// Load reads configuration from path, or from corpus.yaml in the working
// directory or ./config when path is empty. A missing default file is not an
// error; values fall back to DefaultConfig. Environment variables override
// both.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("corpus")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	for name, site := range cfg.Sites {
		site.Name = name
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every default leaf so that a config file or the
// environment can override single keys of a site without restating it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output_file", cfg.Logging.OutputFile)
	v.SetDefault("logging.console", cfg.Logging.Console)

	v.SetDefault("fetch.timeout", cfg.Fetch.Timeout)
	v.SetDefault("fetch.max_retries", cfg.Fetch.MaxRetries)
	v.SetDefault("fetch.initial_backoff", cfg.Fetch.InitialBackoff)
	v.SetDefault("fetch.max_backoff", cfg.Fetch.MaxBackoff)

	v.SetDefault("policy", string(cfg.Policy))

	for name, site := range cfg.Sites {
		prefix := "sites." + name + "."
		v.SetDefault(prefix+"listing_url", site.ListingURL)
		v.SetDefault(prefix+"origin", site.Origin)
		v.SetDefault(prefix+"max_articles", site.MaxArticles)
		v.SetDefault(prefix+"delay", site.Delay)
		for header, value := range site.Headers {
			v.SetDefault(prefix+"headers."+header, value)
		}

		v.SetDefault(prefix+"discovery.strategy", site.Discovery.Strategy)
		v.SetDefault(prefix+"discovery.article_selector", site.Discovery.ArticleSelector)
		v.SetDefault(prefix+"discovery.link_pattern", site.Discovery.LinkPattern)

		v.SetDefault(prefix+"pairing.rule", site.Pairing.Rule)
		v.SetDefault(prefix+"pairing.zh_prefix", site.Pairing.ZHPrefix)
		v.SetDefault(prefix+"pairing.en_prefix", site.Pairing.ENPrefix)
		v.SetDefault(prefix+"pairing.zh_origin", site.Pairing.ZHOrigin)
		v.SetDefault(prefix+"pairing.en_origin", site.Pairing.ENOrigin)

		v.SetDefault(prefix+"extraction.title_selector", site.Extraction.TitleSelector)
		v.SetDefault(prefix+"extraction.content_selector", site.Extraction.ContentSelector)
		v.SetDefault(prefix+"extraction.missing_content", site.Extraction.MissingContent)
		v.SetDefault(prefix+"extraction.order", site.Extraction.Order)

		v.SetDefault(prefix+"output.dataset_name", site.Output.DatasetName)
		v.SetDefault(prefix+"output.dataset_dir", site.Output.DatasetDir)
		v.SetDefault(prefix+"output.jsonl_path", site.Output.JSONLPath)
		v.SetDefault(prefix+"output.versioned", site.Output.Versioned)
	}
}
