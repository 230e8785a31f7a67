package scraping

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Caia-Tech/bilingual-corpus/pkg/logging"
	"github.com/Caia-Tech/bilingual-corpus/pkg/pipeline"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// MaxPageSize caps how much of a response body is read.
const MaxPageSize = 10 * 1024 * 1024

// Fetcher issues GET requests with a fixed browser-like header set.
type Fetcher struct {
	client  *http.Client
	headers http.Header
	config  pipeline.FetchConfig
	logger  zerolog.Logger
}

// NewFetcher creates a fetcher. A nil client gets one with config.Timeout.
func NewFetcher(config pipeline.FetchConfig, headers map[string]string, client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	h := make(http.Header, len(headers))
	for k, v := range headers {
		h.Set(k, v)
	}

	return &Fetcher{
		client:  client,
		headers: h,
		config:  config,
		logger:  logging.GetLogger("fetcher"),
	}
}

// Get returns the body of url. Any failure is wrapped in ErrFetchFailed.
// Transport errors and 429/5xx responses are retried up to
// config.MaxRetries times with exponential backoff.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	attempts := 0

	body, err := backoff.RetryNotifyWithData(func() ([]byte, error) {
		attempts++
		return f.attempt(ctx, url)
	}, f.policy(ctx), func(err error, wait time.Duration) {
		f.logger.Warn().
			Err(err).
			Str("url", url).
			Int("attempt", attempts).
			Dur("retry_in", wait).
			Msg("Fetch failed, retrying")
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	f.logger.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Int("attempts", attempts).
		Dur("duration", time.Since(start)).
		Msg("Fetched page")
	return body, nil
}

func (f *Fetcher) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.config.InitialBackoff
	b.MaxInterval = f.config.MaxBackoff
	b.MaxElapsedTime = 0

	var retries uint64
	if f.config.MaxRetries > 0 {
		retries = uint64(f.config.MaxRetries)
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, retries), ctx)
}

func (f *Fetcher) attempt(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	for k, v := range f.headers {
		req.Header[k] = v
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

		statusErr := &StatusError{URL: url, StatusCode: resp.StatusCode}
		if statusErr.Retryable() {
			return nil, statusErr
		}
		return nil, backoff.Permanent(statusErr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxPageSize+1))
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > MaxPageSize {
		return nil, backoff.Permanent(fmt.Errorf("%w: %s exceeds %d bytes", ErrPageTooLarge, url, MaxPageSize))
	}
	return body, nil
}
