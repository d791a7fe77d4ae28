package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/donations/internal/config"
)

func TestLevelRouter(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := zerolog.New(levelRouter{stdout: &out, stderr: &errOut})

	logger.Info().Msg("hello")
	logger.Warn().Msg("careful")
	logger.Error().Msg("broken")

	assert.Contains(t, out.String(), "hello")
	assert.Contains(t, out.String(), "careful")
	assert.NotContains(t, out.String(), "broken")
	assert.Contains(t, errOut.String(), "broken")
	assert.NotContains(t, errOut.String(), "hello")
}

func TestSetupLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donations.log")

	logger, cleanup, err := setupLogger(config.LogConfig{Level: zerolog.WarnLevel, Format: "json", File: path})
	require.NoError(t, err)

	logger.Info().Msg("filtered")
	logger.Warn().Msg("kept")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"kept"`)
	assert.NotContains(t, string(data), "filtered")
}
