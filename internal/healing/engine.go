// File: internal/healing/engine.go
// Description: The locator self-healing engine. Given a locator that stopped
// matching, it runs the enabled strategies in priority order and accepts the
// first candidate that meets the configured confidence threshold.

package healing

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/testpilot-qa/testpilot-cli/api/schemas"
	"github.com/testpilot-qa/testpilot-cli/internal/config"
)

// Engine runs healing strategies and records the outcome in the ledger.
// It is stateless per call; concurrent Heal invocations are safe because the
// ledger serializes its own appends.
type Engine struct {
	logger *zap.Logger
	ledger *Ledger
	repo   schemas.ObjectRepository
}

// NewEngine creates a healing engine. The object repository may be nil when
// auto-update is not in use; logger and ledger must be provided.
func NewEngine(logger *zap.Logger, ledger *Ledger, repo schemas.ObjectRepository) (*Engine, error) {
	if logger == nil || ledger == nil {
		return nil, fmt.Errorf("cannot initialize healing engine with nil logger or ledger")
	}
	return &Engine{
		logger: logger.Named("healing"),
		ledger: ledger,
		repo:   repo,
	}, nil
}

// Heal attempts to repair a broken locator. It returns ErrHealingDisabled
// without recording anything when the config disables healing. Otherwise it
// always returns a HealingAttempt: succeeded with the first strategy whose
// confidence met the threshold, or failed with the original locator as the
// identity fallback.
func (e *Engine) Heal(objectName string, original schemas.Locator, kind schemas.SelectorKind, cfg config.HealingConfig) (schemas.HealingAttempt, error) {
	if !cfg.Enabled {
		return schemas.HealingAttempt{}, schemas.ErrHealingDisabled
	}

	attempt := schemas.HealingAttempt{
		ObjectName:      objectName,
		OriginalLocator: original,
		HealedLocator:   original,
		Timestamp:       time.Now().UTC(),
	}

	var transformErr string
	for _, strat := range SelectEnabled(cfg) {
		candidate, confidence, err := applyTransform(strat.Tag, original.Value, kind)
		if err != nil {
			// A broken transform is not fatal to the call; treat it as
			// confidence 0 and keep going.
			transformErr = fmt.Sprintf("strategy %s: %v", strat.Name, err)
			e.logger.Warn("Healing strategy failed",
				zap.String("object", objectName),
				zap.String("strategy", strat.Name),
				zap.Error(err),
			)
			continue
		}
		if confidence > 0 && confidence >= cfg.ConfidenceThreshold {
			attempt.Succeeded = true
			attempt.StrategyName = strat.Name
			attempt.HealedLocator = candidate
			attempt.Confidence = confidence
			break
		}
	}

	if !attempt.Succeeded {
		attempt.ErrorMessage = transformErr
	}

	if attempt.Succeeded {
		e.logger.Info("Locator healed",
			zap.String("object", objectName),
			zap.String("strategy", attempt.StrategyName),
			zap.Float64("confidence", attempt.Confidence),
			zap.String("healed_value", attempt.HealedLocator.Value),
		)
		if cfg.AutoUpdateObjects {
			e.autoUpdate(objectName, attempt.HealedLocator)
		}
	} else {
		e.logger.Info("Locator healing failed",
			zap.String("object", objectName),
			zap.String("original_value", original.Value),
		)
	}

	if attempt.Succeeded || cfg.ReportFailures {
		e.ledger.Record(attempt)
	}
	return attempt, nil
}

// autoUpdate persists the healed locator through the object repository.
// Persistence failure does not change the attempt's outcome; the healed
// locator is still returned to the caller.
func (e *Engine) autoUpdate(objectName string, healed schemas.Locator) {
	if e.repo == nil {
		e.logger.Warn("auto_update_objects is enabled but no object repository is configured",
			zap.String("object", objectName))
		return
	}
	if err := e.repo.SetLocator(objectName, healed); err != nil {
		e.logger.Warn("Failed to persist healed locator",
			zap.String("object", objectName),
			zap.Error(err),
		)
	}
}
