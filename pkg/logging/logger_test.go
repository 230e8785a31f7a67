package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerWritesFile(t *testing.T) {
	original := log.Logger
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(originalLevel)
	})

	path := filepath.Join(t.TempDir(), "logs", "scraper.log")
	err := SetupLogger(&LogConfig{Level: "info", Format: "json", OutputFile: path})
	require.NoError(t, err)

	logger := GetPipelineLogger("dev-blog", "discovery")
	logger.Info().Int("links", 3).Msg("Discovered links")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"pipeline":"dev-blog"`)
	assert.Contains(t, string(data), `"stage":"discovery"`)
	assert.Contains(t, string(data), `"links":3`)
}

func TestSetupLoggerRejectsBadConfig(t *testing.T) {
	original := log.Logger
	originalLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = original
		zerolog.SetGlobalLevel(originalLevel)
	})

	assert.Error(t, SetupLogger(&LogConfig{Level: "loud", Console: true}))
	assert.Error(t, SetupLogger(&LogConfig{Level: "info", Format: "xml", Console: true}))
}
