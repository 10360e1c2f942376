// Content moderation detector: uses a provider's moderation endpoint and
// maps per-category scores to block/warn decisions.
//
// Resolves confidence_threshold/block_categories/warn_categories from
// nested or flat config, defaults on_error to "allow" so a provider outage
// degrades gracefully, and ships a default block_categories list covering
// the provider's highest-severity flags.
package detectors

import (
	"context"
	"fmt"
	"strings"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
	"github.com/virtualsteve-star/stinger-sub000/internal/provider"
)

// ContentModeration implements the content_moderation guardrail type.
type ContentModeration struct {
	guardrail.Base
	provider            provider.Provider
	confidenceThreshold float64
	blockCategories     map[string]bool
	warnCategories      map[string]bool
	onError             string
}

// NewContentModeration is the factory for content_moderation. p may be nil
// if no provider/API key is configured, in which case analysis defers to
// on_error.
func NewContentModeration(name string, priority int, cfg map[string]interface{}, p provider.Provider) (guardrail.Guardrail, error) {
	nested, _ := cfg["config"].(map[string]interface{})

	blockCats := stringListFrom(cfg, nested, "block_categories")
	if len(blockCats) == 0 {
		blockCats = []string{"hate", "harassment", "self_harm", "sexual", "violence"}
	}
	warnCats := stringListFrom(cfg, nested, "warn_categories")

	c := &ContentModeration{
		Base:                guardrail.NewBase(name, guardrail.TypeContentModeration, priority, true),
		provider:            p,
		confidenceThreshold: floatFrom(cfg, nested, "confidence_threshold", 0.7),
		blockCategories:     toLowerSet(blockCats),
		warnCategories:      toLowerSet(warnCats),
		onError:             onErrorOrDefault(cfg, nested, "allow"),
	}
	if err := validateConfig(name, cfg, nested, c.GetValidationRules()); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ContentModeration) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	if !c.Enabled() {
		return guardrail.Result{
			Reason:        "Filter disabled",
			Details:       map[string]interface{}{},
			GuardrailName: c.Name(),
			GuardrailType: c.Type(),
			RiskLevel:     guardrail.RiskLow,
		}, nil
	}

	if c.provider == nil {
		return c.onErrorResult("no moderation provider configured"), nil
	}

	result, err := c.provider.Moderate(ctx, content)
	if err != nil {
		return c.onErrorResult(err.Error()), nil
	}

	var blockedCats, warnedCats []string
	maxScore := 0.0
	for cat, score := range result.CategoryScores {
		if score > maxScore {
			maxScore = score
		}
		if score < c.confidenceThreshold {
			continue
		}
		lower := strings.ToLower(cat)
		if c.blockCategories[lower] {
			blockedCats = append(blockedCats, cat)
		} else if c.warnCategories[lower] {
			warnedCats = append(warnedCats, cat)
		}
	}

	if len(blockedCats) > 0 {
		return guardrail.Result{
			Blocked:    true,
			Confidence: maxScore,
			Reason:     fmt.Sprintf("Content moderation blocked categories: %s", strings.Join(blockedCats, ", ")),
			Details: map[string]interface{}{
				"blocked_categories": blockedCats,
				"category_scores":    result.CategoryScores,
				"method":             "moderation_api",
			},
			GuardrailName: c.Name(),
			GuardrailType: c.Type(),
			RiskLevel:     guardrail.RiskHigh,
		}, nil
	}

	if len(warnedCats) > 0 {
		return guardrail.Result{
			Confidence: maxScore,
			Reason:     fmt.Sprintf("Content moderation flagged categories for warning: %s", strings.Join(warnedCats, ", ")),
			Details: map[string]interface{}{
				"warned_categories": warnedCats,
				"category_scores":   result.CategoryScores,
				"method":            "moderation_api",
			},
			GuardrailName: c.Name(),
			GuardrailType: c.Type(),
			RiskLevel:     guardrail.RiskMedium,
		}, nil
	}

	return guardrail.Result{
		Reason:        "Content passed moderation",
		Details:       map[string]interface{}{"category_scores": result.CategoryScores, "method": "moderation_api"},
		GuardrailName: c.Name(),
		GuardrailType: c.Type(),
		RiskLevel:     guardrail.RiskLow,
	}, nil
}

func (c *ContentModeration) onErrorResult(cause string) guardrail.Result {
	blocked := c.onError == "block"
	risk := guardrail.RiskMedium
	if blocked {
		risk = guardrail.RiskHigh
	}
	return guardrail.Result{
		Blocked:       blocked,
		Reason:        fmt.Sprintf("Content moderation unavailable: %s", cause),
		Details:       map[string]interface{}{"error": cause, "method": "moderation_api"},
		GuardrailName: c.Name(),
		GuardrailType: c.Type(),
		RiskLevel:     risk,
	}
}

func (c *ContentModeration) IsAvailable() bool { return c.Enabled() && c.provider != nil }

func (c *ContentModeration) GetConfig() map[string]interface{} {
	return map[string]interface{}{
		"enabled":              c.Enabled(),
		"confidence_threshold": c.confidenceThreshold,
		"block_categories":     keysOf(c.blockCategories),
		"warn_categories":      keysOf(c.warnCategories),
		"on_error":             c.onError,
	}
}

func (c *ContentModeration) UpdateConfig(cfg map[string]interface{}) error {
	if v, ok := asFloat(cfg["confidence_threshold"]); ok {
		c.confidenceThreshold = v
	}
	if v, ok := cfg["on_error"].(string); ok {
		c.onError = v
	}
	return nil
}

func (c *ContentModeration) GetValidationRules() []guardrail.ValidationRule {
	zero, one := 0.0, 1.0
	return []guardrail.ValidationRule{
		{Key: "confidence_threshold", Type: guardrail.KindFloat, Min: &zero, Max: &one},
		{Key: "on_error", Type: guardrail.KindString, Enum: []string{"allow", "warn", "block"}},
	}
}
