package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// configName is the config file name without extension.
	configName = ".xindex"
	configType = "yaml"
	// envPrefix is the environment variable prefix for xindex settings.
	envPrefix       = "XINDEX"
	envKeySeparator = "_"
)

const (
	DefaultIndexMultiset   = true
	DefaultIndexWorkers    = 0
	DefaultLogLevel        = "warn"
	DefaultLogEncoder      = "text"
	DefaultLogFile         = ""
	DefaultMetricsExporter = "none"
	DefaultMetricsInterval = 10 * time.Second
	DefaultMetricsTimeout  = 5 * time.Second
	DefaultOutputStyle     = "default"
	DefaultOutputLimit     = 0
)

// Load reads the configuration from file, env vars and defaults, in
// increasing order of precedence the defaults, the config file, the env
// and finally the values already bound into v (flags).
// If configPath is empty, .xindex.yaml is searched in CWD and $HOME.
// A missing config file is not an error.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("index.multiset", DefaultIndexMultiset)
	v.SetDefault("index.workers", DefaultIndexWorkers)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.encoder", DefaultLogEncoder)
	v.SetDefault("log.file", DefaultLogFile)

	v.SetDefault("metrics.exporter", DefaultMetricsExporter)
	v.SetDefault("metrics.interval", DefaultMetricsInterval)
	v.SetDefault("metrics.timeout", DefaultMetricsTimeout)

	v.SetDefault("output.style", DefaultOutputStyle)
	v.SetDefault("output.limit", DefaultOutputLimit)
}
