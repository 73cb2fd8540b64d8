package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corhyn.log")
	l, err := NewLogger(LoggingConfig{Level: "info", Format: "json", OutputPath: path})
	require.NoError(t, err)

	l.WithTaskID(7).Info("session started", zap.Int64("duration_minutes", 3))
	l.Debug("filtered out")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"session started"`)
	assert.Contains(t, out, `"task_id":7`)
	assert.Contains(t, out, `"duration_minutes":3`)
	assert.NotContains(t, out, "filtered out")
}

func TestNewLoggerInvalidLevelFallsBackToWarn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corhyn.log")
	l, err := NewLogger(LoggingConfig{Level: "loud", Format: "text", OutputPath: path})
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "hidden"))
	assert.True(t, strings.Contains(string(data), "shown"))
}

func TestNewLoggerBadPath(t *testing.T) {
	_, err := NewLogger(LoggingConfig{Level: "info", OutputPath: "/nonexistent/dir/corhyn.log"})
	assert.Error(t, err)
}

func TestDefaultAndSetDefault(t *testing.T) {
	assert.NotNil(t, Default())

	nop := Nop()
	SetDefault(nop)
	assert.Same(t, nop, Default())
}
