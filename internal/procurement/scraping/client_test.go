package scraping

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Caia-Tech/bilingual-corpus/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcherSendsHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(testFetchConfig(), pipeline.DevBlogSite().Headers, nil)
	body, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, pipeline.DefaultUserAgent, gotUA)
	assert.Equal(t, "en-US,en;q=0.9,zh-CN;q=0.8,zh;q=0.7", gotLang)
}

func TestFetcherLowercaseHeaderKeys(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	f := NewFetcher(testFetchConfig(), map[string]string{"user-agent": "corpus-test"}, nil)
	_, err := f.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "corpus-test", gotUA)
}

func TestFetcherDoesNotRetryByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(testFetchConfig(), nil, nil)
	_, err := f.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetcherRetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("finally"))
	}))
	defer srv.Close()

	config := testFetchConfig()
	config.MaxRetries = 3
	body, err := NewFetcher(config, nil, nil).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "finally", string(body))
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetcherDoesNotRetryClientErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	config := testFetchConfig()
	config.MaxRetries = 3
	_, err := NewFetcher(config, nil, nil).Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, int32(1), hits.Load())
}

func TestFetcherHonorsCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(testFetchConfig(), nil, nil).Get(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcherRetriesClientTimeout(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
			return
		}
		_, _ = w.Write([]byte("recovered"))
	}))
	defer srv.Close()

	config := testFetchConfig()
	config.Timeout = 50 * time.Millisecond
	config.MaxRetries = 1
	body, err := NewFetcher(config, nil, nil).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(body))
	assert.Equal(t, int32(2), hits.Load())
}

func TestFetcherRejectsOversizedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("a"), MaxPageSize+1))
	}))
	defer srv.Close()

	_, err := NewFetcher(testFetchConfig(), nil, nil).Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, ErrPageTooLarge)
}

func TestFetcherAcceptsPageAtLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("a"), MaxPageSize))
	}))
	defer srv.Close()

	body, err := NewFetcher(testFetchConfig(), nil, nil).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, MaxPageSize)
}

func TestStatusErrorRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusNotFound, false},
		{http.StatusForbidden, false},
		{http.StatusMovedPermanently, false},
	}
	for _, tt := range tests {
		err := &StatusError{URL: "https://example.com", StatusCode: tt.code}
		assert.Equal(t, tt.want, err.Retryable(), tt.code)
	}
}
