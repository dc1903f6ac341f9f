// File: api/schemas/healing.go
package schemas

import "time"

// StrategyTag identifies which locator transform a strategy runs.
type StrategyTag string

const (
	TagAttributeFallback   StrategyTag = "attribute_fallback"
	TagXPathOptimization   StrategyTag = "xpath_optimization"
	TagCSSConversion       StrategyTag = "css_conversion"
	TagTextMatching        StrategyTag = "text_matching"
	TagRelativePositioning StrategyTag = "relative_positioning"
	TagVisualRecognition   StrategyTag = "visual_recognition"
)

// HealingStrategy is one entry in the strategy registry. Higher priority
// strategies are tried first; ties keep registration order.
type HealingStrategy struct {
	Name     string      `json:"name" mapstructure:"name"`
	Priority int         `json:"priority" mapstructure:"priority"`
	Enabled  bool        `json:"enabled" mapstructure:"enabled"`
	Tag      StrategyTag `json:"tag" mapstructure:"tag"`
}

// HealingAttempt is the record of one healing invocation. It is created once
// by the healing engine and never mutated afterwards.
type HealingAttempt struct {
	ObjectName      string    `json:"object_name"`
	OriginalLocator Locator   `json:"original_locator"`
	HealedLocator   Locator   `json:"healed_locator"`
	// StrategyName is empty when no strategy met the confidence threshold.
	StrategyName    string    `json:"strategy_name,omitempty"`
	Confidence      float64   `json:"confidence"`
	Timestamp       time.Time `json:"timestamp"`
	Succeeded       bool      `json:"succeeded"`
	ErrorMessage    string    `json:"error_message,omitempty"`
}

// HealingReport is the aggregate view the ledger derives over its history.
type HealingReport struct {
	TotalAttempts     int              `json:"total_attempts"`
	SuccessCount      int              `json:"success_count"`
	FailureCount      int              `json:"failure_count"`
	AverageConfidence float64          `json:"average_confidence"`
	TopStrategies     []string         `json:"top_strategies"`
	RecentAttempts    []HealingAttempt `json:"recent_attempts"`
	Recommendations   []string         `json:"recommendations"`
}

// SuccessRate returns successes over total, or 0 for an empty report.
func (r HealingReport) SuccessRate() float64 {
	if r.TotalAttempts == 0 {
		return 0
	}
	return float64(r.SuccessCount) / float64(r.TotalAttempts)
}
