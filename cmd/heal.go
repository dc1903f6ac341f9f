// File: cmd/heal.go
package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
	"github.com/testpilot-qa/testpilot-cli/internal/config"
	"github.com/testpilot-qa/testpilot-cli/internal/healing"
	"github.com/testpilot-qa/testpilot-cli/internal/objectrepo"
	"github.com/testpilot-qa/testpilot-cli/internal/observability"
)

// newHealCmd creates the heal command: attempt to repair one broken locator
// using the project's healing policy.
func newHealCmd() *cobra.Command {
	var (
		projectPath string
		objectName  string
		kindStr     string
		value       string
	)

	cmd := &cobra.Command{
		Use:   "heal",
		Short: "Attempt to heal a broken UI-element locator.",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := schemas.SelectorKind(kindStr)
			if !kind.Valid() {
				return fmt.Errorf("unknown selector kind %q", kindStr)
			}

			logger := observability.GetLogger()
			healCfg := config.LoadHealingConfig(projectPath)
			ledger := healing.NewLedger(logger, filepath.Join(projectPath, config.HealingHistoryFile))
			repo := objectrepo.New(projectPath, logger)

			engine, err := healing.NewEngine(logger, ledger, repo)
			if err != nil {
				return err
			}

			attempt, err := engine.Heal(objectName, schemas.NewLocator(kind, value), kind, healCfg)
			if errors.Is(err, schemas.ErrHealingDisabled) {
				return fmt.Errorf("healing is disabled for this project; enable it in %s", config.HealingConfigFile)
			}
			if err != nil {
				return err
			}

			if attempt.Succeeded {
				cmd.Printf("Healed %s via %s (confidence %.2f): %s=%s\n",
					objectName, attempt.StrategyName, attempt.Confidence,
					attempt.HealedLocator.Kind, attempt.HealedLocator.Value)
			} else {
				cmd.Printf("Could not heal %s; keeping original locator %s=%s\n",
					objectName, attempt.OriginalLocator.Kind, attempt.OriginalLocator.Value)
				if attempt.ErrorMessage != "" {
					cmd.Printf("Last strategy error: %s\n", attempt.ErrorMessage)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project", "", "path to the test project")
	cmd.Flags().StringVar(&objectName, "object", "", "name of the test object with the broken locator")
	cmd.Flags().StringVar(&kindStr, "kind", "xpath", "selector kind of the broken locator")
	cmd.Flags().StringVar(&value, "value", "", "the broken locator value")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("object")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}
