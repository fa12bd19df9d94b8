package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/benz9527/xindex/observability"
)

var (
	ErrInvalidWorkers  = errors.New("index.workers must not be negative")
	ErrInvalidLogLevel = errors.New("log.level must be one of debug, info, warn, error")
	ErrInvalidEncoder  = errors.New("log.encoder must be json or text")
	ErrInvalidStyle    = errors.New("output.style must be one of default, light, rounded, markdown")
	ErrInvalidInterval = errors.New("metrics.interval and metrics.timeout must be positive")
)

// Config is the top-level configuration of the xindex CLI.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Index   IndexConfig   `mapstructure:"index"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Output  OutputConfig  `mapstructure:"output"`
}

// IndexConfig controls how the interval index is built.
type IndexConfig struct {
	Multiset bool `mapstructure:"multiset"`
	// Workers is the size of the parallel drain pool, 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Encoder string `mapstructure:"encoder"`
	// File appends the log to this path instead of stderr.
	File string `mapstructure:"file"`
}

type MetricsConfig struct {
	Exporter string        `mapstructure:"exporter"`
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type OutputConfig struct {
	Style string `mapstructure:"style"`
	// Limit caps the printed rows, 0 prints everything.
	Limit int `mapstructure:"limit"`
}

var (
	logLevels    = []string{"debug", "info", "warn", "error"}
	logEncoders  = []string{"json", "text"}
	outputStyles = []string{"default", "light", "rounded", "markdown"}
)

func (cfg *Config) Validate() error {
	if cfg.Index.Workers < 0 {
		return ErrInvalidWorkers
	}
	if !slices.Contains(logLevels, strings.ToLower(cfg.Log.Level)) {
		return ErrInvalidLogLevel
	}
	if !slices.Contains(logEncoders, strings.ToLower(cfg.Log.Encoder)) {
		return ErrInvalidEncoder
	}
	if !slices.Contains(outputStyles, strings.ToLower(cfg.Output.Style)) {
		return ErrInvalidStyle
	}
	if _, err := observability.ParseExporterKind(cfg.Metrics.Exporter); err != nil {
		return fmt.Errorf("metrics.exporter: %w", err)
	}
	if cfg.Metrics.Interval <= 0 || cfg.Metrics.Timeout <= 0 {
		return ErrInvalidInterval
	}
	return nil
}

// ExporterConfig maps the metrics section onto the observability module.
func (cfg *Config) ExporterConfig() observability.ExporterConfig {
	kind, _ := observability.ParseExporterKind(cfg.Metrics.Exporter)
	return observability.ExporterConfig{
		Kind:         kind,
		Interval:     cfg.Metrics.Interval,
		Timeout:      cfg.Metrics.Timeout,
		RuntimeStats: "xindex",
	}
}
