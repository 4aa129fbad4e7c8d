package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis_api.toml")
	cfg := DefaultAnalysisAPIConfig()
	require.NoError(t, LoadFrom(path, &cfg))
	assert.FileExists(t, path)

	var reloaded AnalysisAPIConfig
	require.NoError(t, LoadFrom(path, &reloaded))
	assert.Equal(t, DefaultAnalysisAPIConfig(), reloaded)
}

func TestLoadFromKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis_api.toml")
	content := "source = \"file\"\nexport_file = \"/tmp/export_oct_14.json\"\nwindow_size = 6\ntimezone = \"UTC\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultAnalysisAPIConfig()
	require.NoError(t, LoadFrom(path, &cfg))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "file", cfg.Source)
	assert.Equal(t, 6, cfg.WindowSize)
	assert.Equal(t, 3, cfg.HorizonDays)
	assert.Equal(t, 9040, cfg.ListenPort)
}

func TestLoadAnalysisAPIConfigFromConfigDir(t *testing.T) {
	t.Setenv("IGNYTE_CONFIG_DIR", t.TempDir())

	require.NoError(t, LoadAnalysisAPIConfig())
	require.NotNil(t, ActiveAnalysisAPIConfig)
	assert.Equal(t, "sqlite", ActiveAnalysisAPIConfig.Source)

	require.NoError(t, LoadReadingCollectorConfig())
	require.NotNil(t, ActiveReadingCollectorConfig)
	assert.Equal(t, "serial", ActiveReadingCollectorConfig.Transport)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AnalysisAPIConfig)
		valid  bool
	}{
		{"defaults", func(c *AnalysisAPIConfig) {}, true},
		{"firebase without url", func(c *AnalysisAPIConfig) { c.Source = "firebase" }, false},
		{"file without path", func(c *AnalysisAPIConfig) { c.Source = "file" }, false},
		{"unknown source", func(c *AnalysisAPIConfig) { c.Source = "ftp" }, false},
		{"reversed hours", func(c *AnalysisAPIConfig) { c.DayStartHour = 21 }, false},
		{"bad timezone", func(c *AnalysisAPIConfig) { c.Timezone = "Mars/Olympus" }, false},
		{"threshold below cadence", func(c *AnalysisAPIConfig) {
			c.CadenceMinutes = 10
			c.GapThresholdMinutes = 6
		}, false},
		{"threshold equal to cadence", func(c *AnalysisAPIConfig) {
			c.CadenceMinutes = 5
			c.GapThresholdMinutes = 5
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAnalysisAPIConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := DefaultAnalysisAPIConfig()
	cfg.Source = "file"
	cfg.Timezone = "Mars/Olympus"

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "export_file")
	assert.Contains(t, err.Error(), "Mars/Olympus")
}

func TestPipelineOptions(t *testing.T) {
	cfg := DefaultAnalysisAPIConfig()
	cfg.Timezone = "UTC"
	cfg.CadenceMinutes = 10
	cfg.GapThresholdMinutes = 12
	cfg.WindowSize = 4

	opts := cfg.PipelineOptions()
	assert.Equal(t, 4, opts.WindowSize)
	assert.Equal(t, 10*time.Minute, opts.GapPolicy.Cadence)
	assert.Equal(t, 12*time.Minute, opts.GapPolicy.Threshold)
	assert.Equal(t, time.UTC, opts.Hours.Location)
	assert.Equal(t, 9, opts.Hours.DayStart)
	assert.Equal(t, 20, opts.Hours.NightStart)
	assert.Equal(t, 300*time.Second, cfg.RefreshInterval())
}
