// File: internal/healing/transforms.go
package healing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
)

// Each transform takes the broken locator's value and selector kind and
// proposes a candidate locator with a heuristic confidence. A transform that
// does not apply to the locator's shape returns confidence 0 with no error;
// the engine then moves on to the next strategy.
//
// The confidences are fixed constants. A deployment with a live browser
// would replace them with scores from actual DOM probing.

var (
	positionalPredicateRe = regexp.MustCompile(`\[\d+\]`)
	textPredicateRe       = regexp.MustCompile(`\[\s*text\(\)\s*=\s*'([^']*)'\s*\]`)
	exactIDPredicateRe    = regexp.MustCompile(`\[@id\s*=\s*'([^']*)'\]`)
	xpathIDSelectorRe     = regexp.MustCompile(`^//?[\w*-]*\[@id\s*=\s*'([^']+)'\]$`)
	xpathClassSelectorRe  = regexp.MustCompile(`^//?[\w*-]*\[@class\s*=\s*'([^']+)'\]$`)
)

// attributeFallbacks maps a selector kind to the ordered list of kinds worth
// trying when the original attribute stopped matching. Kinds absent from the
// map have no sensible attribute substitute.
var attributeFallbacks = map[schemas.SelectorKind][]schemas.SelectorKind{
	schemas.SelectorID:       {schemas.SelectorName, schemas.SelectorClass},
	schemas.SelectorName:     {schemas.SelectorID, schemas.SelectorClass},
	schemas.SelectorClass:    {schemas.SelectorID, schemas.SelectorName},
	schemas.SelectorLinkText: {schemas.SelectorPartialLinkText},
	schemas.SelectorTag:      {schemas.SelectorClass},
}

// applyTransform dispatches to the transform identified by tag. An unknown
// tag is the only error condition; shape mismatches return confidence 0.
func applyTransform(tag schemas.StrategyTag, value string, kind schemas.SelectorKind) (schemas.Locator, float64, error) {
	switch tag {
	case schemas.TagAttributeFallback:
		return attributeFallback(value, kind)
	case schemas.TagXPathOptimization:
		return xpathOptimization(value, kind)
	case schemas.TagCSSConversion:
		return cssConversion(value, kind)
	case schemas.TagTextMatching:
		return textMatching(value, kind)
	case schemas.TagRelativePositioning:
		return relativePositioning(value, kind)
	case schemas.TagVisualRecognition:
		return visualRecognition(value, kind)
	default:
		return schemas.Locator{}, 0, fmt.Errorf("unknown strategy tag %q", tag)
	}
}

// attributeFallback proposes the same value under the first fallback kind
// for the original kind. Without DOM probing the first candidate is as good
// a guess as any.
func attributeFallback(value string, kind schemas.SelectorKind) (schemas.Locator, float64, error) {
	fallbacks, ok := attributeFallbacks[kind]
	if !ok || len(fallbacks) == 0 {
		return schemas.Locator{}, 0, nil
	}
	return schemas.NewLocator(fallbacks[0], value), 0.85, nil
}

// xpathOptimization simplifies a brittle XPath: positional predicates and
// exact text() nodes are stripped, and exact @id matches are loosened to
// contains() so minor id suffix churn no longer breaks the match.
func xpathOptimization(value string, kind schemas.SelectorKind) (schemas.Locator, float64, error) {
	if !isXPathShaped(value, kind) {
		return schemas.Locator{}, 0, nil
	}

	optimized := positionalPredicateRe.ReplaceAllString(value, "")
	optimized = textPredicateRe.ReplaceAllString(optimized, "")
	optimized = exactIDPredicateRe.ReplaceAllString(optimized, "[contains(@id,'$1')]")

	return schemas.NewLocator(schemas.SelectorXPath, optimized), 0.8, nil
}

// cssConversion rewrites a simple single-predicate XPath into the equivalent
// CSS selector. Only exact @id and @class forms convert; anything richer
// stays with the XPath strategies.
func cssConversion(value string, kind schemas.SelectorKind) (schemas.Locator, float64, error) {
	if !isXPathShaped(value, kind) {
		return schemas.Locator{}, 0, nil
	}

	if m := xpathIDSelectorRe.FindStringSubmatch(value); m != nil {
		return schemas.NewLocator(schemas.SelectorCSS, "#"+m[1]), 0.9, nil
	}
	if m := xpathClassSelectorRe.FindStringSubmatch(value); m != nil {
		// Multi-class attributes become a compound class selector.
		classes := strings.Fields(m[1])
		return schemas.NewLocator(schemas.SelectorCSS, "."+strings.Join(classes, ".")), 0.85, nil
	}
	return schemas.Locator{}, 0, nil
}

// textMatching loosens an exact text()='...' predicate into contains(), so
// whitespace and decoration changes around the text stop breaking the match.
func textMatching(value string, kind schemas.SelectorKind) (schemas.Locator, float64, error) {
	if !isXPathShaped(value, kind) || !textPredicateRe.MatchString(value) {
		return schemas.Locator{}, 0, nil
	}

	rewritten := textPredicateRe.ReplaceAllString(value, "[contains(text(), '$1')]")
	return schemas.NewLocator(schemas.SelectorXPath, rewritten), 0.75, nil
}

// relativePositioning re-anchors an absolute XPath under its deepest two
// segments, cutting the dependency on the full document structure.
func relativePositioning(value string, kind schemas.SelectorKind) (schemas.Locator, float64, error) {
	if !isXPathShaped(value, kind) || !strings.HasPrefix(value, "/") || strings.HasPrefix(value, "//") {
		return schemas.Locator{}, 0, nil
	}

	segments := strings.Split(strings.Trim(value, "/"), "/")
	if len(segments) < 2 {
		return schemas.Locator{}, 0, nil
	}
	anchored := "//" + strings.Join(segments[len(segments)-2:], "/")
	return schemas.NewLocator(schemas.SelectorXPath, anchored), 0.7, nil
}

// visualRecognition is a placeholder for image-based matching. It returns
// the original locator with a confidence low enough to lose against any
// usual threshold.
func visualRecognition(value string, kind schemas.SelectorKind) (schemas.Locator, float64, error) {
	return schemas.NewLocator(kind, value), 0.3, nil
}

func isXPathShaped(value string, kind schemas.SelectorKind) bool {
	if kind != schemas.SelectorXPath {
		return false
	}
	return strings.HasPrefix(value, "/") || strings.HasPrefix(value, "(")
}
