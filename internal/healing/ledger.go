// File: internal/healing/ledger.go
package healing

import (
	"fmt"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
)

// MaxLedgerEntries bounds the healing history; the oldest attempts are
// dropped first once the bound is exceeded.
const MaxLedgerEntries = 1000

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Ledger is the bounded, append-only history of healing attempts for one
// project. Appends serialize behind a mutex so concurrent healing calls are
// safe. When a history path is set, every append rewrites the file with the
// truncated history.
type Ledger struct {
	mu       sync.Mutex
	attempts []schemas.HealingAttempt
	path     string
	logger   *zap.Logger
}

// NewLedger creates a ledger backed by the given history file. An empty path
// keeps the ledger in memory only. An existing history file is loaded,
// keeping at most the most recent MaxLedgerEntries entries; a corrupt file
// is treated as empty.
func NewLedger(logger *zap.Logger, historyPath string) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{
		path:   historyPath,
		logger: logger.Named("ledger"),
	}
	l.load()
	return l
}

func (l *Ledger) load() {
	if l.path == "" {
		return
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		return
	}
	var attempts []schemas.HealingAttempt
	if err := json.Unmarshal(data, &attempts); err != nil {
		l.logger.Warn("Healing history file is corrupt, starting fresh",
			zap.String("path", l.path), zap.Error(err))
		return
	}
	if len(attempts) > MaxLedgerEntries {
		attempts = attempts[len(attempts)-MaxLedgerEntries:]
	}
	l.attempts = attempts
}

// Record appends an attempt, enforcing the FIFO bound, and persists the
// history when a path is configured.
func (l *Ledger) Record(attempt schemas.HealingAttempt) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.attempts = append(l.attempts, attempt)
	if len(l.attempts) > MaxLedgerEntries {
		// Copy rather than reslice so the dropped prefix can be collected.
		trimmed := make([]schemas.HealingAttempt, MaxLedgerEntries)
		copy(trimmed, l.attempts[len(l.attempts)-MaxLedgerEntries:])
		l.attempts = trimmed
	}
	l.persistLocked()
}

// Len returns the current number of retained attempts.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.attempts)
}

func (l *Ledger) persistLocked() {
	if l.path == "" {
		return
	}
	data, err := json.MarshalIndent(l.attempts, "", "  ")
	if err != nil {
		l.logger.Warn("Failed to marshal healing history", zap.Error(err))
		return
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		l.logger.Warn("Failed to write healing history",
			zap.String("path", l.path), zap.Error(err))
	}
}

// Report derives the aggregate healing statistics and recommendations over
// the retained history.
func (l *Ledger) Report() schemas.HealingReport {
	l.mu.Lock()
	defer l.mu.Unlock()

	report := schemas.HealingReport{
		TotalAttempts: len(l.attempts),
	}

	var confidenceSum float64
	successByStrategy := map[string]int{}
	var strategyOrder []string
	for _, a := range l.attempts {
		if !a.Succeeded {
			report.FailureCount++
			continue
		}
		report.SuccessCount++
		confidenceSum += a.Confidence
		if _, seen := successByStrategy[a.StrategyName]; !seen {
			strategyOrder = append(strategyOrder, a.StrategyName)
		}
		successByStrategy[a.StrategyName]++
	}
	if report.SuccessCount > 0 {
		report.AverageConfidence = confidenceSum / float64(report.SuccessCount)
	}

	report.TopStrategies = topStrategies(successByStrategy, strategyOrder, 3)

	recent := l.attempts
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	report.RecentAttempts = append([]schemas.HealingAttempt(nil), recent...)

	report.Recommendations = l.recommendationsLocked(report, successByStrategy, strategyOrder)
	return report
}

// topStrategies ranks strategy names by success count descending, ties
// broken by first-seen order, returning at most n names.
func topStrategies(counts map[string]int, order []string, n int) []string {
	ranked := append([]string(nil), order...)
	// Insertion sort keeps the first-seen order stable on equal counts.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && counts[ranked[j]] > counts[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// recommendationsLocked applies the deterministic advice rules in order.
// Every matching rule contributes; an empty ledger short-circuits to the
// single bootstrap recommendation.
func (l *Ledger) recommendationsLocked(report schemas.HealingReport, counts map[string]int, order []string) []string {
	if report.TotalAttempts == 0 {
		return []string{
			"No healing data collected yet. Enable locator self-healing and run your test suites to start building history.",
		}
	}

	var recs []string
	rate := float64(report.SuccessCount) / float64(report.TotalAttempts)

	if rate < 0.5 {
		recs = append(recs, "Healing success rate is below 50%. Review how your test objects identify elements; brittle locators heal poorly.")
	}
	if rate > 0.8 {
		recs = append(recs, "Healing succeeds more than 80% of the time. Consider enabling auto_update_objects to persist healed locators automatically.")
	}

	recentWindow := l.attempts
	if len(recentWindow) > 20 {
		recentWindow = recentWindow[len(recentWindow)-20:]
	}
	recentFailures := 0
	for _, a := range recentWindow {
		if !a.Succeeded {
			recentFailures++
		}
	}
	if recentFailures > 10 {
		recs = append(recs, "More than 10 of the last 20 healing attempts failed. Review recent application changes; the UI may have shifted significantly.")
	}

	if best := bestStrategy(counts, order); best != "" {
		recs = append(recs, fmt.Sprintf("Strategy %q has healed the most locators (%d). Consider raising its priority.", best, counts[best]))
	}
	return recs
}

// bestStrategy returns the single strategy with the most successes, ties
// broken by first-seen order, or "" when nothing has succeeded.
func bestStrategy(counts map[string]int, order []string) string {
	best := ""
	bestCount := 0
	for _, name := range order {
		if counts[name] > bestCount {
			best = name
			bestCount = counts[name]
		}
	}
	return best
}
