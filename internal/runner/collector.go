// File: internal/runner/collector.go
// Description: Parses the runner's structured report into normalized per-test
// outcomes. Best-effort by design: a failed run may never have written a
// report, and the exit code already conveys that failure.

package runner

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
)

// Report file names the runner writes into the run's report folder.
const (
	junitReportName = "JUnit_Report.xml"
	consoleLogName  = "console.log"
)

// Collector reads runner report folders.
type Collector struct {
	logger *zap.Logger
}

// NewCollector creates a collector; a nil logger is replaced with a no-op.
func NewCollector(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{logger: logger.Named("collector")}
}

// Collect parses the JUnit-style report in the run's report folder. A
// missing or unparseable report yields an empty list, never an error.
func (c *Collector) Collect(reportFolder string) []schemas.TestOutcome {
	reportPath := filepath.Join(reportFolder, junitReportName)

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(reportPath); err != nil {
		c.logger.Debug("No parseable report for run",
			zap.String("path", reportPath),
			zap.Error(err),
		)
		return nil
	}

	var outcomes []schemas.TestOutcome
	for _, tc := range doc.FindElements("//testcase") {
		outcome := schemas.TestOutcome{
			Name:       tc.SelectAttrValue("name", ""),
			Status:     schemas.StatusPassed,
			DurationMs: durationMs(tc.SelectAttrValue("time", "")),
		}
		switch {
		case tc.SelectElement("failure") != nil:
			outcome.Status = schemas.StatusFailed
			outcome.ErrorMessage = elementMessage(tc.SelectElement("failure"))
		case tc.SelectElement("error") != nil:
			outcome.Status = schemas.StatusError
			outcome.ErrorMessage = elementMessage(tc.SelectElement("error"))
		case tc.SelectElement("skipped") != nil:
			outcome.Status = schemas.StatusSkipped
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

// Artifacts discovers the on-disk artifacts in the run's report folder.
// Paths are included only when the file exists; nothing here is an error.
func (c *Collector) Artifacts(folder string) schemas.RunArtifacts {
	var artifacts schemas.RunArtifacts
	if p := filepath.Join(folder, junitReportName); fileExists(p) {
		artifacts.ReportPath = p
	}
	if p := filepath.Join(folder, consoleLogName); fileExists(p) {
		artifacts.LogPath = p
	}
	if shots, err := filepath.Glob(filepath.Join(folder, "*.png")); err == nil && len(shots) > 0 {
		artifacts.Screenshots = shots
	}
	return artifacts
}

// durationMs normalizes a JUnit time attribute (seconds, possibly
// fractional) to whole milliseconds.
func durationMs(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return int64(math.Round(seconds * 1000))
}

func elementMessage(el *etree.Element) string {
	if el == nil {
		return ""
	}
	if msg := el.SelectAttrValue("message", ""); msg != "" {
		return msg
	}
	return strings.TrimSpace(el.Text())
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
