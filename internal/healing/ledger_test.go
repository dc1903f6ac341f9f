// File: internal/healing/ledger_test.go
package healing_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
	"github.com/testpilot-qa/testpilot-cli/internal/healing"
)

func attempt(object, strategy string, succeeded bool, confidence float64) schemas.HealingAttempt {
	a := schemas.HealingAttempt{
		ObjectName:      object,
		OriginalLocator: schemas.NewLocator(schemas.SelectorXPath, "//old"),
		HealedLocator:   schemas.NewLocator(schemas.SelectorXPath, "//new"),
		Confidence:      confidence,
		Timestamp:       time.Now().UTC(),
		Succeeded:       succeeded,
	}
	if succeeded {
		a.StrategyName = strategy
	} else {
		a.HealedLocator = a.OriginalLocator
	}
	return a
}

func TestLedger_FIFOBound(t *testing.T) {
	ledger := healing.NewLedger(zap.NewNop(), "")

	for i := 0; i < healing.MaxLedgerEntries+50; i++ {
		ledger.Record(attempt(fmt.Sprintf("obj-%d", i), "css_conversion", true, 0.9))
	}

	require.Equal(t, healing.MaxLedgerEntries, ledger.Len())

	report := ledger.Report()
	assert.Equal(t, healing.MaxLedgerEntries, report.TotalAttempts)

	// The oldest entries were dropped: the most recent attempt is the last
	// one recorded.
	recent := report.RecentAttempts
	require.Len(t, recent, 10)
	assert.Equal(t, fmt.Sprintf("obj-%d", healing.MaxLedgerEntries+49), recent[9].ObjectName)
	assert.Equal(t, fmt.Sprintf("obj-%d", healing.MaxLedgerEntries+40), recent[0].ObjectName)
}

func TestReport_EmptyLedger(t *testing.T) {
	ledger := healing.NewLedger(zap.NewNop(), "")

	report := ledger.Report()
	assert.Zero(t, report.TotalAttempts)
	assert.Zero(t, report.SuccessCount)
	require.Len(t, report.Recommendations, 1)
	assert.Contains(t, report.Recommendations[0], "Enable locator self-healing")
}

func TestReport_HighSuccessRateRecommendsAutoUpdate(t *testing.T) {
	ledger := healing.NewLedger(zap.NewNop(), "")

	// 85 successes out of 100: rate 0.85 > 0.8.
	for i := 0; i < 85; i++ {
		ledger.Record(attempt("obj", "css_conversion", true, 0.82))
	}
	for i := 0; i < 15; i++ {
		ledger.Record(attempt("obj", "", false, 0))
	}

	report := ledger.Report()
	assert.Equal(t, 100, report.TotalAttempts)
	assert.Equal(t, 85, report.SuccessCount)
	assert.Equal(t, 15, report.FailureCount)
	assert.InDelta(t, 0.82, report.AverageConfidence, 1e-9)

	assert.True(t, hasRecommendationContaining(report, "auto_update_objects"),
		"expected the auto-update recommendation, got %v", report.Recommendations)
}

func TestReport_LowSuccessRateRecommendsReview(t *testing.T) {
	ledger := healing.NewLedger(zap.NewNop(), "")

	for i := 0; i < 3; i++ {
		ledger.Record(attempt("obj", "css_conversion", true, 0.9))
	}
	for i := 0; i < 7; i++ {
		ledger.Record(attempt("obj", "", false, 0))
	}

	report := ledger.Report()
	assert.True(t, hasRecommendationContaining(report, "below 50%"))
}

func TestReport_RecentFailureBurst(t *testing.T) {
	ledger := healing.NewLedger(zap.NewNop(), "")

	// Plenty of old successes, then a burst of recent failures: overall rate
	// stays above 0.5 but 11 of the last 20 failed.
	for i := 0; i < 40; i++ {
		ledger.Record(attempt("obj", "css_conversion", true, 0.9))
	}
	for i := 0; i < 11; i++ {
		ledger.Record(attempt("obj", "", false, 0))
	}

	report := ledger.Report()
	assert.True(t, hasRecommendationContaining(report, "recent application changes"))
}

func TestReport_TopStrategiesRankedWithStableTies(t *testing.T) {
	ledger := healing.NewLedger(zap.NewNop(), "")

	ledger.Record(attempt("a", "text_matching", true, 0.75))
	ledger.Record(attempt("b", "css_conversion", true, 0.9))
	ledger.Record(attempt("c", "css_conversion", true, 0.9))
	ledger.Record(attempt("d", "xpath_optimization", true, 0.8))
	ledger.Record(attempt("e", "attribute_fallback", true, 0.85))

	report := ledger.Report()
	require.Len(t, report.TopStrategies, 3)
	assert.Equal(t, "css_conversion", report.TopStrategies[0])
	// text_matching, xpath_optimization and attribute_fallback all tie at
	// one success; first seen wins.
	assert.Equal(t, "text_matching", report.TopStrategies[1])
	assert.Equal(t, "xpath_optimization", report.TopStrategies[2])

	assert.True(t, hasRecommendationContaining(report, `"css_conversion"`))
}

func TestLedger_HistoryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "healing-history.json")

	ledger := healing.NewLedger(zap.NewNop(), path)
	ledger.Record(attempt("loginBtn", "css_conversion", true, 0.9))
	ledger.Record(attempt("navBar", "", false, 0))

	reloaded := healing.NewLedger(zap.NewNop(), path)
	require.Equal(t, 2, reloaded.Len())

	report := reloaded.Report()
	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	assert.Equal(t, "loginBtn", report.RecentAttempts[0].ObjectName)
}

func TestLedger_CorruptHistoryFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "healing-history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	ledger := healing.NewLedger(zap.NewNop(), path)
	assert.Zero(t, ledger.Len())
}

func hasRecommendationContaining(report schemas.HealingReport, substr string) bool {
	for _, rec := range report.Recommendations {
		if strings.Contains(rec, substr) {
			return true
		}
	}
	return false
}
