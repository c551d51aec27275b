package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"voidfield/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voidfield.log")
	logger, err := New(config.LoggingConfig{Level: "warn", File: path}, false)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", zap.Int("tick", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"shown"`)
	require.Contains(t, string(data), `"tick":3`)
	require.NotContains(t, string(data), "hidden")
}

func TestVerboseForcesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voidfield.log")
	logger, err := New(config.LoggingConfig{Level: "error", File: path}, true)
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"}, false)
	require.Error(t, err)
}
