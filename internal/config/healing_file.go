// File: internal/config/healing_file.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

// Per-project file names for the healing subsystem.
const (
	HealingConfigFile  = "healing-config.json"
	HealingHistoryFile = "healing-history.json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultHealingConfig returns the hard-coded healing policy used when the
// project has no healing config file or the file is malformed. The empty
// strategy list means "use the built-in catalog".
func DefaultHealingConfig() HealingConfig {
	return HealingConfig{
		Enabled:             true,
		ConfidenceThreshold: 0.8,
		MaxHealingAttempts:  3,
		ReportFailures:      true,
		AutoUpdateObjects:   false,
	}
}

// LoadHealingConfig reads the project's healing config file. A missing or
// unparseable file falls back to DefaultHealingConfig rather than failing;
// healing should degrade, not break the caller.
func LoadHealingConfig(projectPath string) HealingConfig {
	data, err := os.ReadFile(filepath.Join(projectPath, HealingConfigFile))
	if err != nil {
		return DefaultHealingConfig()
	}

	cfg := DefaultHealingConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultHealingConfig()
	}
	if err := cfg.Validate(); err != nil {
		return DefaultHealingConfig()
	}
	return cfg
}

// SaveHealingConfig writes the healing policy to the project's healing
// config file, creating the project directory if needed.
func SaveHealingConfig(projectPath string, cfg HealingConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid healing config: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling healing config: %w", err)
	}
	if err := os.MkdirAll(projectPath, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}
	return os.WriteFile(filepath.Join(projectPath, HealingConfigFile), data, 0o644)
}
