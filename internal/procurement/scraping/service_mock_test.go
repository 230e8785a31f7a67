package scraping

import (
	"context"
	"errors"
	"testing"

	"github.com/Caia-Tech/bilingual-corpus/internal/procurement/scraping/mocks"
	"github.com/Caia-Tech/bilingual-corpus/internal/storage"
	"github.com/Caia-Tech/bilingual-corpus/pkg/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func mockedService(t *testing.T, exporter Exporter) (*Service, string) {
	t.Helper()
	srv := pageServer(t, map[string]string{
		"/zh-cn/blog":    devListing,
		"/zh-cn/blog/a/": articleHTML("标题 A", "内容 A"),
		"/blog/a/":       articleHTML("Title A", "Content A"),
		"/zh-cn/blog/b/": articleHTML("标题 B", "内容 B"),
		"/blog/b/":       articleHTML("Title B", "Content B"),
	})
	site := devBlogSite(t, srv.URL)

	svc, err := NewService(site, document.PolicyLenient, NewFetcher(testFetchConfig(), nil, nil), nil, exporter)
	require.NoError(t, err)
	return svc, srv.URL
}

func TestRunHandsOrderedDatasetToExporter(t *testing.T) {
	ctrl := gomock.NewController(t)
	exporter := mocks.NewMockExporter(ctrl)
	svc, origin := mockedService(t, exporter)

	exporter.EXPECT().
		Export(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, ds *document.Dataset) (*storage.ExportResult, error) {
			assert.Equal(t, "nvidia_dev_blog_dataset", ds.Name())
			pairs := ds.Pairs()
			require.Len(t, pairs, 2)
			assert.Equal(t, origin+"/zh-cn/blog/a/", pairs[0].ZHURL)
			assert.Equal(t, origin+"/blog/b/", pairs[1].ENURL)
			return &storage.ExportResult{DatasetDir: "dir", JSONLPath: "out.jsonl", Rows: 2, Commit: "abc123"}, nil
		}).
		Times(1)

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Kept)
	assert.Equal(t, "dir", report.DatasetDir)
	assert.Equal(t, "out.jsonl", report.JSONLPath)
	assert.Equal(t, "abc123", report.Commit)
}

func TestRunPropagatesExportFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	exporter := mocks.NewMockExporter(ctrl)
	svc, _ := mockedService(t, exporter)

	diskFull := errors.New("disk full")
	exporter.EXPECT().Export(gomock.Any(), gomock.Any()).Return(nil, diskFull)

	report, err := svc.Run(context.Background())
	assert.ErrorIs(t, err, diskFull)
	require.NotNil(t, report)
	assert.Equal(t, 2, report.Kept)
}
