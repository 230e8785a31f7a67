package scraping

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/Caia-Tech/bilingual-corpus/pkg/pipeline"
)

func testFetchConfig() pipeline.FetchConfig {
	return pipeline.FetchConfig{
		Timeout:        5 * time.Second,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

// devBlogSite points the dev-blog family at a test server.
func devBlogSite(t *testing.T, origin string) *pipeline.SiteConfig {
	t.Helper()
	site := pipeline.DevBlogSite()
	site.ListingURL = origin + "/zh-cn/blog"
	site.Origin = origin
	site.Delay = 0
	site.MaxArticles = 10
	site.Output = testOutput(t, site.Output.DatasetName)
	return site
}

// blogsTWSite points the blogs-tw family at two test servers.
func blogsTWSite(t *testing.T, zhOrigin, enOrigin string) *pipeline.SiteConfig {
	t.Helper()
	site := pipeline.BlogsTWSite()
	site.ListingURL = zhOrigin + "/"
	site.Origin = zhOrigin
	site.Pairing.ZHOrigin = zhOrigin
	site.Pairing.ENOrigin = enOrigin
	site.Delay = 0
	site.MaxArticles = 10
	site.Output = testOutput(t, site.Output.DatasetName)
	return site
}

func testOutput(t *testing.T, name string) pipeline.OutputConfig {
	dir := t.TempDir()
	return pipeline.OutputConfig{
		DatasetName: name,
		DatasetDir:  filepath.Join(dir, name),
		JSONLPath:   filepath.Join(dir, name+".jsonl"),
	}
}

// pageServer serves fixed bodies by path; unknown paths are 404.
func pageServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func articleHTML(title, body string) string {
	return `<html><head><title>` + title + `</title></head><body><h1>` + title +
		`</h1><div class="post-content"><p>` + body + `</p></div></body></html>`
}
