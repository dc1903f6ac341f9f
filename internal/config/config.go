// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
)

// Config holds the whole application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Runner  RunnerConfig  `mapstructure:"runner" yaml:"runner"`
	Healing HealingConfig `mapstructure:"healing" yaml:"healing"`
}

// LoggerConfig configures the zap logger and its rotating file sink.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig maps log levels to terminal colors for the console encoder.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// RunnerConfig configures how the external console runner is located and
// supervised.
type RunnerConfig struct {
	// Executable is the bare binary name used as the last-resort PATH lookup.
	Executable string `mapstructure:"executable" yaml:"executable"`
	// SearchPaths are probed in order for the executable; entries may start
	// with "~" which is expanded to the user's home directory.
	SearchPaths       []string      `mapstructure:"search_paths" yaml:"search_paths"`
	ExecutionTimeout  time.Duration `mapstructure:"execution_timeout" yaml:"execution_timeout"`
	StatusDelaySec    int           `mapstructure:"status_delay_sec" yaml:"status_delay_sec"`
	SupportedBrowsers []string      `mapstructure:"supported_browsers" yaml:"supported_browsers"`
}

// HealingConfig is the per-project locator self-healing policy. It is loaded
// from the project's healing config file at the start of each healing call,
// with hard-coded defaults applied when the file is absent or malformed.
type HealingConfig struct {
	Enabled             bool                      `mapstructure:"enabled" json:"enabled"`
	ConfidenceThreshold float64                   `mapstructure:"confidence_threshold" json:"confidence_threshold"`
	MaxHealingAttempts  int                       `mapstructure:"max_healing_attempts" json:"max_healing_attempts"`
	ReportFailures      bool                      `mapstructure:"report_failures" json:"report_failures"`
	AutoUpdateObjects   bool                      `mapstructure:"auto_update_objects" json:"auto_update_objects"`
	Strategies          []schemas.HealingStrategy `mapstructure:"strategies" json:"strategies"`
}

// NewDefaultConfig creates a configuration populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "testpilot")
	v.SetDefault("logger.log_file", "testpilot.log")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Runner --
	v.SetDefault("runner.executable", "katalonc")
	v.SetDefault("runner.search_paths", []string{
		"~/Katalon_Studio_Engine/katalonc",
		"/opt/katalon/katalonc",
		"/usr/local/bin/katalonc",
		"/Applications/Katalon Studio.app/Contents/MacOS/katalonc",
	})
	v.SetDefault("runner.execution_timeout", 30*time.Minute)
	v.SetDefault("runner.status_delay_sec", 15)
	v.SetDefault("runner.supported_browsers", []string{
		"Chrome", "Chrome (headless)", "Firefox", "Edge", "Safari",
	})

	// -- Healing --
	v.SetDefault("healing.enabled", true)
	v.SetDefault("healing.confidence_threshold", 0.8)
	v.SetDefault("healing.max_healing_attempts", 3)
	v.SetDefault("healing.report_failures", true)
	v.SetDefault("healing.auto_update_objects", false)
}

// NewConfigFromViper creates a configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Runner.Executable == "" {
		return fmt.Errorf("runner.executable must not be empty")
	}
	if c.Runner.ExecutionTimeout <= 0 {
		return fmt.Errorf("runner.execution_timeout must be positive")
	}
	if len(c.Runner.SupportedBrowsers) == 0 {
		return fmt.Errorf("runner.supported_browsers must not be empty")
	}
	if err := c.Healing.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks the healing policy bounds.
func (c *HealingConfig) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("healing.confidence_threshold must be in [0,1], got %v", c.ConfidenceThreshold)
	}
	if c.MaxHealingAttempts < 0 {
		return fmt.Errorf("healing.max_healing_attempts must not be negative")
	}
	for _, s := range c.Strategies {
		if s.Name == "" {
			return fmt.Errorf("healing strategy with empty name")
		}
	}
	return nil
}
