package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/NotCoffee418/ignyte_sensor/pkg/daynight"
	"github.com/NotCoffee418/ignyte_sensor/pkg/gapdetector"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pathing"
	"github.com/NotCoffee418/ignyte_sensor/pkg/pipeline"
)

var (
	ActiveAnalysisAPIConfig      *AnalysisAPIConfig
	ActiveReadingCollectorConfig *ReadingCollectorConfig
)

var ErrInvalidConfig = errors.New("invalid config")

func DefaultAnalysisAPIConfig() AnalysisAPIConfig {
	return AnalysisAPIConfig{
		ListenAddress:       "0.0.0.0",
		ListenPort:          9040,
		Source:              "sqlite",
		Device:              "esp32_01",
		RefreshSeconds:      300,
		WindowSize:          10,
		HorizonDays:         3,
		CadenceMinutes:      5,
		GapThresholdMinutes: 6,
		MaxMissingRecords:   gapdetector.DefaultMaxMissing,
		DayStartHour:        9,
		NightStartHour:      20,
	}
}

func DefaultReadingCollectorConfig() ReadingCollectorConfig {
	return ReadingCollectorConfig{
		Transport:     "serial",
		SerialDevice:  "/dev/ttyUSB0",
		Baudrate:      115200,
		MQTTBroker:    "tcp://localhost:1883",
		MQTTTopic:     "ignyte/esp32_01/readings",
		MQTTClientID:  "ignyte-reading-collector",
		RetentionDays: 0,
	}
}

func LoadAnalysisAPIConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "analysis_api.toml")
	cfg := DefaultAnalysisAPIConfig()
	if err := LoadFrom(configPath, &cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ActiveAnalysisAPIConfig = &cfg
	return nil
}

func LoadReadingCollectorConfig() error {
	configPath := filepath.Join(pathing.GetConfigDir(), "reading_collector.toml")
	cfg := DefaultReadingCollectorConfig()
	if err := LoadFrom(configPath, &cfg); err != nil {
		return err
	}
	if cfg.Transport != "serial" && cfg.Transport != "mqtt" {
		return fmt.Errorf("%w: unknown transport %q", ErrInvalidConfig, cfg.Transport)
	}
	ActiveReadingCollectorConfig = &cfg
	return nil
}

// LoadFrom decodes the TOML file at path into cfg.
// When the file does not exist, cfg is written to path as the default.
func LoadFrom(path string, cfg any) error {
	// Create default if not exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfgFile, err := os.Create(path)
		if err != nil {
			return err
		}
		defer cfgFile.Close()
		return toml.NewEncoder(cfgFile).Encode(cfg)
	}

	// Load existing config, keys missing from the file keep their defaults
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	return nil
}

// Validate reports every problem in the config at once.
func (c *AnalysisAPIConfig) Validate() error {
	var errs []error
	switch c.Source {
	case "sqlite":
	case "file":
		if c.ExportFile == "" {
			errs = append(errs, errors.New("export_file is required for source \"file\""))
		}
	case "firebase":
		if c.FirebaseURL == "" {
			errs = append(errs, errors.New("firebase_url is required for source \"firebase\""))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown source %q", c.Source))
	}
	if c.DayStartHour < 0 || c.NightStartHour > 24 || c.DayStartHour > c.NightStartHour {
		errs = append(errs, fmt.Errorf("day hours %d-%d", c.DayStartHour, c.NightStartHour))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.CadenceMinutes > 0 && c.GapThresholdMinutes > 0 && c.GapThresholdMinutes < c.CadenceMinutes {
		errs = append(errs, fmt.Errorf("gap_threshold_minutes %d is below cadence_minutes %d",
			c.GapThresholdMinutes, c.CadenceMinutes))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *AnalysisAPIConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// PipelineOptions converts the analysis settings for pipeline.Run.
func (c *AnalysisAPIConfig) PipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.WindowSize = c.WindowSize
	opts.HorizonDays = c.HorizonDays
	if c.CadenceMinutes > 0 {
		opts.GapPolicy.Cadence = time.Duration(c.CadenceMinutes) * time.Minute
	}
	if c.GapThresholdMinutes > 0 {
		opts.GapPolicy.Threshold = time.Duration(c.GapThresholdMinutes) * time.Minute
	}
	loc, err := c.Location()
	if err != nil {
		loc = time.Local
	}
	opts.Hours = daynight.Hours{
		DayStart:   c.DayStartHour,
		NightStart: c.NightStartHour,
		Location:   loc,
	}
	return opts
}

func (c *AnalysisAPIConfig) RefreshInterval() time.Duration {
	if c.RefreshSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.RefreshSeconds) * time.Second
}
