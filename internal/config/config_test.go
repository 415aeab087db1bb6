package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndDerivedPaths(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Setenv("DATA_DIR", dir)
	t.Setenv("NATS_URL", "nats://example:4222")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 1920, cfg.MainWidth)
	assert.Equal(t, 640, cfg.AnalysisWidth)
	assert.Equal(t, 1000, cfg.MaxEvents)
	assert.True(t, cfg.MonitorOnStart)
	assert.Equal(t, filepath.Join(dir, "captures"), cfg.CaptureDir)
	assert.Equal(t, filepath.Join(dir, "settings.yaml"), cfg.SettingsFile)
	assert.Equal(t, filepath.Join(dir, "events.db"), cfg.EventsDB)
	assert.Equal(t, "nats://example:4222", cfg.NatsURL)
}

func TestLoad_RejectsAnalysisLargerThanMain(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MAIN_WIDTH", "640")
	t.Setenv("MAIN_HEIGHT", "480")
	t.Setenv("ANALYSIS_WIDTH", "1280")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MinioNeedsCredentials(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MINIO_ENABLED", "true")

	_, err := Load()
	assert.Error(t, err)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
