// File: internal/config/config_test.go
package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
	"github.com/testpilot-qa/testpilot-cli/internal/config"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := config.NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "testpilot", cfg.Logger.ServiceName)
	assert.Equal(t, "katalonc", cfg.Runner.Executable)
	assert.NotEmpty(t, cfg.Runner.SearchPaths)
	assert.Contains(t, cfg.Runner.SupportedBrowsers, "Chrome")
	assert.True(t, cfg.Healing.Enabled)
	assert.Equal(t, 0.8, cfg.Healing.ConfidenceThreshold)

	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsBadThreshold(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Healing.ConfidenceThreshold = 1.5
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveTimeout(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Runner.ExecutionTimeout = 0
	assert.Error(t, cfg.Validate())
}

func TestHealingConfig_FileRoundTrip(t *testing.T) {
	project := t.TempDir()

	original := config.HealingConfig{
		Enabled:             true,
		ConfidenceThreshold: 0.72,
		MaxHealingAttempts:  5,
		ReportFailures:      false,
		AutoUpdateObjects:   true,
		Strategies: []schemas.HealingStrategy{
			{Name: "css_conversion", Priority: 90, Enabled: true, Tag: schemas.TagCSSConversion},
			{Name: "xpath_optimization", Priority: 80, Enabled: false, Tag: schemas.TagXPathOptimization},
		},
	}

	require.NoError(t, config.SaveHealingConfig(project, original))
	reloaded := config.LoadHealingConfig(project)

	if diff := cmp.Diff(original, reloaded); diff != "" {
		t.Fatalf("healing config did not round-trip (-want +got):\n%s", diff)
	}
}

func TestLoadHealingConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg := config.LoadHealingConfig(t.TempDir())

	defaults := config.DefaultHealingConfig()
	assert.Equal(t, defaults.Enabled, cfg.Enabled)
	assert.Equal(t, defaults.ConfidenceThreshold, cfg.ConfidenceThreshold)
	assert.Equal(t, defaults.MaxHealingAttempts, cfg.MaxHealingAttempts)
	assert.Equal(t, defaults.ReportFailures, cfg.ReportFailures)
	assert.Equal(t, defaults.AutoUpdateObjects, cfg.AutoUpdateObjects)
}

func TestLoadHealingConfig_MalformedFileFallsBackToDefaults(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(project, config.HealingConfigFile),
		[]byte("not json at all"), 0o644))

	cfg := config.LoadHealingConfig(project)
	assert.Equal(t, config.DefaultHealingConfig().ConfidenceThreshold, cfg.ConfidenceThreshold)
}

func TestLoadHealingConfig_OutOfRangeThresholdFallsBackToDefaults(t *testing.T) {
	project := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(project, config.HealingConfigFile),
		[]byte(`{"enabled":true,"confidence_threshold":7}`), 0o644))

	cfg := config.LoadHealingConfig(project)
	assert.Equal(t, 0.8, cfg.ConfidenceThreshold)
}
