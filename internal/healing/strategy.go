// File: internal/healing/strategy.go
package healing

import (
	"sort"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
	"github.com/testpilot-qa/testpilot-cli/internal/config"
)

// DefaultStrategies returns the built-in strategy catalog. Priorities mirror
// the heuristic confidence each transform produces, so the most promising
// rewrites are tried first.
func DefaultStrategies() []schemas.HealingStrategy {
	return []schemas.HealingStrategy{
		{Name: "css_conversion", Priority: 90, Enabled: true, Tag: schemas.TagCSSConversion},
		{Name: "attribute_fallback", Priority: 85, Enabled: true, Tag: schemas.TagAttributeFallback},
		{Name: "xpath_optimization", Priority: 80, Enabled: true, Tag: schemas.TagXPathOptimization},
		{Name: "text_matching", Priority: 75, Enabled: true, Tag: schemas.TagTextMatching},
		{Name: "relative_positioning", Priority: 70, Enabled: true, Tag: schemas.TagRelativePositioning},
		// Image-based matching needs baseline screenshots, so it ships
		// disabled until the project is set up for it.
		{Name: "visual_recognition", Priority: 30, Enabled: false, Tag: schemas.TagVisualRecognition},
	}
}

// SelectEnabled filters the configured strategies to the enabled ones and
// orders them by priority descending, preserving registration order on ties.
// An empty strategy list falls back to the built-in catalog. Pure function;
// the input config is never mutated.
func SelectEnabled(cfg config.HealingConfig) []schemas.HealingStrategy {
	src := cfg.Strategies
	if len(src) == 0 {
		src = DefaultStrategies()
	}

	out := make([]schemas.HealingStrategy, 0, len(src))
	for _, s := range src {
		if s.Enabled {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
