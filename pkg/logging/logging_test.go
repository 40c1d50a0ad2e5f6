package logging

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerboseLevel(t *testing.T) {
	var buf bytes.Buffer

	logger, closer, err := New(Options{Output: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("shown", "channel", 5)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "channel=5")

	buf.Reset()
	logger, _, err = New(Options{Output: &buf, Verbose: true})
	require.NoError(t, err)
	logger.Debug("ping", "channel", 7)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "channel=7")
}

func TestLogFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "nrf24.log")

	logger, closer, err := New(Options{Output: &buf, File: path})
	require.NoError(t, err)

	logger.Info("packet", "length", 4)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "length=4")
	assert.Contains(t, buf.String(), "length=4")
}

func TestDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}
