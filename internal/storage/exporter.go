package storage

import (
	"context"
	"fmt"

	"github.com/Caia-Tech/bilingual-corpus/pkg/document"
	"github.com/Caia-Tech/bilingual-corpus/pkg/logging"
	"github.com/Caia-Tech/bilingual-corpus/pkg/pipeline"
	"github.com/rs/zerolog"
)

// ExportResult reports where a dataset was written
type ExportResult struct {
	DatasetDir  string
	JSONLPath   string
	Rows        int
	Fingerprint string
	Commit      string
}

// DatasetExporter writes the snapshot directory and then the JSONL file.
type DatasetExporter struct {
	snapshot *SnapshotWriter
	jsonl    *JSONLWriter
	logger   zerolog.Logger
}

// NewDatasetExporter creates an exporter for a site's output settings.
func NewDatasetExporter(output pipeline.OutputConfig, metrics MetricsCollector) *DatasetExporter {
	return &DatasetExporter{
		snapshot: NewSnapshotWriter(output.DatasetDir, output.Versioned, metrics),
		jsonl:    NewJSONLWriter(output.JSONLPath, metrics),
		logger:   logging.GetLogger("exporter"),
	}
}

// Export writes ds to both destinations. The JSONL file is only written once
// the snapshot succeeded.
func (e *DatasetExporter) Export(ctx context.Context, ds *document.Dataset) (*ExportResult, error) {
	snap, err := e.snapshot.WriteSnapshot(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("snapshot export failed: %w", err)
	}
	e.logger.Info().
		Str("dir", snap.Dir).
		Int("rows", snap.Rows).
		Int64("bytes", snap.Bytes).
		Str("commit", snap.Commit).
		Msg("Dataset saved")

	path, err := e.jsonl.Write(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("jsonl export failed: %w", err)
	}
	e.logger.Info().Str("path", path).Int("rows", ds.Len()).Msg("Dataset exported to JSONL")

	return &ExportResult{
		DatasetDir:  snap.Dir,
		JSONLPath:   path,
		Rows:        ds.Len(),
		Fingerprint: snap.Fingerprint,
		Commit:      snap.Commit,
	}, nil
}
