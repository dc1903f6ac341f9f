// File: cmd/run.go
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
	"github.com/testpilot-qa/testpilot-cli/internal/observability"
	"github.com/testpilot-qa/testpilot-cli/internal/runner"
)

// consoleSink forwards runner output chunks straight to stdout so the user
// sees the runner's progress live.
type consoleSink struct{}

func (consoleSink) Write(runID string, chunk []byte) {
	_, _ = os.Stdout.Write(chunk)
}

// newRunCmd creates the run command: execute a test suite or suite
// collection through the external runner and summarize the results.
func newRunCmd() *cobra.Command {
	var req schemas.ExecutionRequest

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a test suite or suite collection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()

			sup, err := runner.NewSupervisor(appCfg.Runner, logger, consoleSink{})
			if err != nil {
				return err
			}

			outcome, err := sup.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			collector := runner.NewCollector(logger)
			results := collector.Collect(outcome.ReportFolder)
			artifacts := collector.Artifacts(outcome.ReportFolder)

			printRunSummary(cmd, outcome, results, artifacts)

			if !outcome.Succeeded {
				logger.Warn("Test execution reported failures",
					zap.String("run_id", outcome.RunID),
					zap.Int("exit_code", outcome.ExitCode),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ProjectPath, "project", "", "path to the test project")
	cmd.Flags().StringVar(&req.SuitePath, "suite", "", "suite (.ts) or suite collection (.tsc) path, relative to the project")
	cmd.Flags().StringVar(&req.Browser, "browser", "Chrome", "browser to run against")
	cmd.Flags().StringVar(&req.ExecutionProfile, "profile", "default", "execution profile")
	cmd.Flags().BoolVar(&req.Headless, "headless", false, "run the browser headless")
	cmd.Flags().StringVar(&req.WindowSize, "window-size", "", "browser window size, e.g. 1920,1080")
	cmd.Flags().StringVar(&req.ReportFolder, "report-folder", "", "report folder (default <project>/Reports/<run id>)")
	cmd.Flags().BoolVar(&req.ConsoleLogEnabled, "console-log", false, "enable the runner's console log")
	cmd.Flags().IntVar(&req.RetryCount, "retry", 0, "retry count for failed tests")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("suite")

	return cmd
}

func printRunSummary(cmd *cobra.Command, outcome schemas.ExecutionOutcome, results []schemas.TestOutcome, artifacts schemas.RunArtifacts) {
	counts := map[schemas.TestStatus]int{}
	for _, r := range results {
		counts[r.Status]++
	}

	cmd.Printf("Run %s finished with exit code %d\n", outcome.RunID, outcome.ExitCode)
	if len(results) > 0 {
		cmd.Printf("Tests: %d passed, %d failed, %d error, %d skipped\n",
			counts[schemas.StatusPassed], counts[schemas.StatusFailed],
			counts[schemas.StatusError], counts[schemas.StatusSkipped])
		for _, r := range results {
			if r.Status == schemas.StatusFailed || r.Status == schemas.StatusError {
				msg := r.ErrorMessage
				if msg == "" {
					msg = string(r.Status)
				}
				cmd.Printf("  %s: %s\n", r.Name, msg)
			}
		}
	}
	if artifacts.ReportPath != "" {
		cmd.Printf("Report: %s\n", artifacts.ReportPath)
	}
	if artifacts.LogPath != "" {
		cmd.Printf("Log: %s\n", artifacts.LogPath)
	}
	if len(artifacts.Screenshots) > 0 {
		cmd.Printf("Screenshots: %d\n", len(artifacts.Screenshots))
	}
}
