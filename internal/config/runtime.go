package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/llm-d/snc-bounds/internal/logging"
)

// EnvPrefix prefixes every environment variable read by LoadRuntimeConfig,
// e.g. SNC_LOG_LEVEL.
const EnvPrefix = "SNC"

// Runtime configuration keys. They double as flag names.
const (
	KeyLogLevel    = "log-level"
	KeyLogFormat   = "log-format"
	KeyWorkers     = "workers"
	KeyMetricsAddr = "metrics-addr"
	KeyMetricsFile = "metrics-file"
	KeyOutput      = "out"
)

// RuntimeConfig holds process settings that are not part of a scenario.
type RuntimeConfig struct {
	// LogLevel is info, debug or trace.
	LogLevel string `mapstructure:"log-level"`
	// LogFormat is json, console or pretty.
	LogFormat string `mapstructure:"log-format"`
	// Workers bounds the Monte-Carlo trials evaluated in parallel.
	Workers int `mapstructure:"workers"`
	// MetricsAddr serves Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr string `mapstructure:"metrics-addr"`
	// MetricsFile receives a text dump of the metrics registry on exit.
	MetricsFile string `mapstructure:"metrics-file"`
	// Output is the CSV path written by the montecarlo command.
	Output string `mapstructure:"out"`
}

// DefaultRuntimeConfig returns the settings used when nothing overrides them.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		LogLevel:  "info",
		LogFormat: logging.FormatConsole,
		Workers:   runtime.NumCPU(),
		Output:    "results.csv",
	}
}

// Validate checks for invalid runtime values.
func (c *RuntimeConfig) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case logging.FormatJSON, logging.FormatConsole, logging.FormatPretty:
	default:
		return fmt.Errorf("log-format must be json, console or pretty, got %q", c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.Output == "" {
		return errors.New("out must not be empty")
	}
	return nil
}

// NewViper returns a viper instance reading SNC_* variables on top of the
// runtime defaults.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := DefaultRuntimeConfig()
	v.SetDefault(KeyLogLevel, defaults.LogLevel)
	v.SetDefault(KeyLogFormat, defaults.LogFormat)
	v.SetDefault(KeyWorkers, defaults.Workers)
	v.SetDefault(KeyMetricsAddr, defaults.MetricsAddr)
	v.SetDefault(KeyMetricsFile, defaults.MetricsFile)
	v.SetDefault(KeyOutput, defaults.Output)
	return v
}

// LoadRuntimeConfig resolves the runtime configuration. flags may be nil;
// an empty configFile skips the file layer.
func LoadRuntimeConfig(v *viper.Viper, flags *pflag.FlagSet, configFile string) (RuntimeConfig, error) {
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return RuntimeConfig{}, fmt.Errorf("binding flags: %w", err)
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return RuntimeConfig{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg RuntimeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("decoding runtime config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, fmt.Errorf("invalid runtime config: %w", err)
	}
	return cfg, nil
}
