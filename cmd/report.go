// File: cmd/report.go
package cmd

import (
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/testpilot-qa/testpilot-cli/internal/config"
	"github.com/testpilot-qa/testpilot-cli/internal/healing"
	"github.com/testpilot-qa/testpilot-cli/internal/observability"
)

// newReportCmd creates the report command: print the aggregate healing
// effectiveness report for a project.
func newReportCmd() *cobra.Command {
	var (
		projectPath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the locator self-healing effectiveness report.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			ledger := healing.NewLedger(logger, filepath.Join(projectPath, config.HealingHistoryFile))
			report := ledger.Report()

			if asJSON {
				data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				cmd.Println(string(data))
				return nil
			}

			cmd.Printf("Healing attempts: %d (%d succeeded, %d failed)\n",
				report.TotalAttempts, report.SuccessCount, report.FailureCount)
			if report.SuccessCount > 0 {
				cmd.Printf("Average confidence of successes: %.2f\n", report.AverageConfidence)
			}
			if len(report.TopStrategies) > 0 {
				cmd.Printf("Top strategies: %v\n", report.TopStrategies)
			}
			for _, rec := range report.Recommendations {
				cmd.Printf("- %s\n", rec)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectPath, "project", "", "path to the test project")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the report as JSON")
	_ = cmd.MarkFlagRequired("project")

	return cmd
}
