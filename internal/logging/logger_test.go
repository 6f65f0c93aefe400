package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestNewWithFile_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twentyfive.log")

	logger, closer, err := NewWithFile(slog.LevelInfo, path)
	require.NoError(t, err)

	logger.Info("committed", "instance_id", "inst", "error", "none")
	logger.Debug("filtered out")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"committed"`)
	assert.Contains(t, string(raw), `"err":"none"`)
	assert.NotContains(t, string(raw), "filtered out")
}
