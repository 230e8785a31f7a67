package scraping

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Caia-Tech/bilingual-corpus/pkg/pipeline"
)

// Locale identifies one side of a locale pair.
type Locale string

const (
	LocaleZH Locale = "zh-cn"
	LocaleEN Locale = "en-us"
)

// Pairer maps an article URL to the same article in another locale. Pairing
// is a best-effort transliteration; it never touches the network.
type Pairer interface {
	Translate(rawURL string, from, to Locale) (string, error)
}

// NewPairer builds the rule named by config.
func NewPairer(config pipeline.PairingConfig) (Pairer, error) {
	switch config.Rule {
	case pipeline.RulePathPrefix:
		return &PathPrefixRule{ZH: config.ZHPrefix, EN: config.ENPrefix}, nil
	case pipeline.RuleOrigin:
		return NewOriginRule(config.ZHOrigin, config.ENOrigin)
	default:
		return nil, fmt.Errorf("unknown pairing rule %q", config.Rule)
	}
}

// PathPrefixRule pairs sites that share an origin and differ by the leading
// path segment, e.g. /zh-cn/blog/x and /blog/x. URLs whose path does not
// start with the source prefix are returned unchanged.
type PathPrefixRule struct {
	ZH string
	EN string
}

func (r *PathPrefixRule) prefix(l Locale) (string, error) {
	switch l {
	case LocaleZH:
		return r.ZH, nil
	case LocaleEN:
		return r.EN, nil
	}
	return "", fmt.Errorf("unknown locale %q", l)
}

// Translate swaps the path prefix of rawURL from one locale to the other.
func (r *PathPrefixRule) Translate(rawURL string, from, to Locale) (string, error) {
	fromPrefix, err := r.prefix(from)
	if err != nil {
		return "", err
	}
	toPrefix, err := r.prefix(to)
	if err != nil {
		return "", err
	}
	if from == to {
		return rawURL, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL, nil
	}

	// Operate on the raw string so the rest of the URL keeps its exact encoding
	origin := u.Scheme + "://" + u.Host
	rest, ok := strings.CutPrefix(rawURL, origin)
	if !ok {
		return rawURL, nil
	}
	tail, ok := strings.CutPrefix(rest, fromPrefix)
	if !ok {
		return rawURL, nil
	}
	return origin + toPrefix + tail, nil
}

// OriginRule pairs mirrored sites that keep the same path under different
// origins. A URL on neither origin has no pair.
type OriginRule struct {
	zh *url.URL
	en *url.URL
}

// NewOriginRule creates an origin rule from two absolute origins.
func NewOriginRule(zhOrigin, enOrigin string) (*OriginRule, error) {
	zh, err := parseOrigin(zhOrigin)
	if err != nil {
		return nil, err
	}
	en, err := parseOrigin(enOrigin)
	if err != nil {
		return nil, err
	}
	return &OriginRule{zh: zh, en: en}, nil
}

func parseOrigin(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin %q must be absolute", raw)
	}
	return u, nil
}

func (r *OriginRule) origin(l Locale) (*url.URL, error) {
	switch l {
	case LocaleZH:
		return r.zh, nil
	case LocaleEN:
		return r.en, nil
	}
	return nil, fmt.Errorf("unknown locale %q", l)
}

// Translate moves rawURL onto the other locale's origin, keeping path, query
// and fragment. It returns ErrNoPair when rawURL is not on the source origin.
func (r *OriginRule) Translate(rawURL string, from, to Locale) (string, error) {
	src, err := r.origin(from)
	if err != nil {
		return "", err
	}
	dst, err := r.origin(to)
	if err != nil {
		return "", err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNoPair, rawURL, err)
	}
	if !strings.EqualFold(u.Host, src.Host) {
		return "", fmt.Errorf("%w: %s is not on %s", ErrNoPair, rawURL, src.Host)
	}
	if from == to {
		return rawURL, nil
	}

	out := *u
	out.Scheme = dst.Scheme
	out.Host = dst.Host
	return out.String(), nil
}
