package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/Caia-Tech/bilingual-corpus/pkg/document"
)

// JSONLWriter exports a dataset as one JSON object per line
type JSONLWriter struct {
	path    string
	metrics MetricsCollector
}

// NewJSONLWriter creates a writer for path. The file is replaced on every write.
func NewJSONLWriter(path string, metrics MetricsCollector) *JSONLWriter {
	return &JSONLWriter{path: path, metrics: metrics}
}

// Backend returns the backend label used in metrics
func (w *JSONLWriter) Backend() string { return "jsonl" }

// Write replaces the JSONL file with the dataset rows and returns its path
func (w *JSONLWriter) Write(ctx context.Context, ds *document.Dataset) (string, error) {
	start := time.Now()
	err := w.write(ctx, ds)
	recordMetric(w.metrics, "export", w.Backend(), start, err)
	if err != nil {
		return "", err
	}
	return w.path, nil
}

func (w *JSONLWriter) write(ctx context.Context, ds *document.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeFileAtomic(w.path, func(out io.Writer) error {
		_, err := EncodeJSONL(out, ds.Pairs())
		return err
	})
}

// EncodeJSONL writes pairs as UTF-8 JSON lines in column order. Non-ASCII and
// HTML characters are written literally. It returns the number of bytes written.
func EncodeJSONL(w io.Writer, pairs []document.ArticlePair) (int64, error) {
	cw := &countingWriter{w: w}
	enc := json.NewEncoder(cw)
	enc.SetEscapeHTML(false)

	for i, p := range pairs {
		if err := enc.Encode(p); err != nil {
			return cw.n, fmt.Errorf("failed to encode row %d: %w", i, err)
		}
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
