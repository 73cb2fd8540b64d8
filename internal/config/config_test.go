package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the search paths at an empty directory so a developer's
// own config.yaml cannot leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.OutputPath)
	assert.Equal(t, 25, cfg.Pomodoro.WorkMinutes)
	assert.Equal(t, 5, cfg.Pomodoro.ShortBreakMinutes)
	assert.Equal(t, 15, cfg.Pomodoro.LongBreakMinutes)
	assert.Equal(t, 4, cfg.Pomodoro.Rounds)
	assert.Equal(t, 480, cfg.Report.DailyGoalMinutes)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.Equal(t, "corhyn.db", filepath.Base(cfg.Database.Path))
	assert.Equal(t, 25*time.Minute, cfg.Pomodoro.Work())
}

func TestLoadFromFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	yaml := `
database:
  path: /tmp/corhyn-test.db
pomodoro:
  workMinutes: 50
  rounds: 2
export:
  format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadWithPath(dir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/corhyn-test.db", cfg.Database.Path)
	assert.Equal(t, 50, cfg.Pomodoro.WorkMinutes)
	assert.Equal(t, 2, cfg.Pomodoro.Rounds)
	assert.Equal(t, 5, cfg.Pomodoro.ShortBreakMinutes)
	assert.Equal(t, "json", cfg.Export.Format)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CORHYN_DB", "/tmp/env.db")
	t.Setenv("CORHYN_POMODORO_WORK_MINUTES", "30")
	t.Setenv("CORHYN_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
	assert.Equal(t, 30, cfg.Pomodoro.WorkMinutes)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	yaml := `
logging:
  level: chatty
pomodoro:
  workMinutes: 0
export:
  format: xml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	_, err := LoadWithPath(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "pomodoro.workMinutes")
	assert.Contains(t, err.Error(), "export.format")
}

func TestLoadMalformedFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("pomodoro: [unclosed"), 0o644))

	_, err := LoadWithPath(dir)
	assert.Error(t, err)
}
