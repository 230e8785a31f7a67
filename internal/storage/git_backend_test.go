package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitVersionerLogsWithStorageFields(t *testing.T) {
	original := log.Logger
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(originalLevel)
	})

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0644))

	_, err := NewGitVersioner(nil).Commit(context.Background(), dir, "first", time.Now())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"storage_operation":"commit"`)
	assert.Contains(t, buf.String(), `"backend":"git"`)
	assert.Contains(t, buf.String(), `"message":"Committed snapshot"`)
}
