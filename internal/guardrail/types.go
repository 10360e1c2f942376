// Package guardrail defines the pluggable detector contract, the
// type/factory registry, and the pipeline executor that runs detectors in
// priority-grouped, concurrent stages.
//
// A guardrail can analyze content, report whether it's currently available,
// and expose/update its own configuration and validation rules, mirroring
// the capability set a content-safety detector needs regardless of what
// it's checking for.
package guardrail

import (
	"context"
	"fmt"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
)

// Type is the closed enumeration of guardrail kinds this gateway supports.
type Type string

const (
	TypeContentModeration Type = "content_moderation"
	TypePromptInjection   Type = "prompt_injection"
	TypeKeywordBlock      Type = "keyword_block"
	TypeKeywordList       Type = "keyword_list"
	TypeRegex             Type = "regex"
	TypeLength            Type = "length"
	TypeURL               Type = "url"
	TypePassThrough       Type = "pass_through"
	TypeTopic             Type = "topic"

	TypeSimplePII    Type = "simple_pii_detection"
	TypeAIPII        Type = "ai_pii_detection"
	TypeSimpleToxic  Type = "simple_toxicity_detection"
	TypeAIToxic      Type = "ai_toxicity_detection"
	TypeSimpleCodeGen Type = "simple_code_generation"
	TypeAICodeGen    Type = "ai_code_generation"
)

// RiskLevel is the closed enumeration of result risk levels.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Action is the derived or configured action for a result.
type Action string

const (
	ActionAllow Action = "allow"
	ActionWarn  Action = "warn"
	ActionBlock Action = "block"
)

// Result is the immutable outcome of a single guardrail's analysis.
type Result struct {
	Blocked         bool
	Confidence      float64
	Reason          string
	Details         map[string]interface{}
	GuardrailName   string
	GuardrailType   Type
	RiskLevel       RiskLevel
	Indicators      []string
	ModifiedContent *string
}

// ResolveAction derives allow/block/warn from a result plus the guardrail's
// configured on_error/on_block action: allow when the result isn't
// blocked, otherwise the configured action (block by default, or warn).
func (r Result) ResolveAction(configured Action) Action {
	if !r.Blocked {
		return ActionAllow
	}
	if configured == ActionWarn {
		return ActionWarn
	}
	return ActionBlock
}

// Guardrail is the uniform contract every concrete detector implements.
type Guardrail interface {
	Name() string
	Type() Type
	Priority() int
	Enabled() bool
	SetEnabled(bool)

	// Analyze is the only behavior-bearing operation. It must be total: no
	// panics escape a correctly constructed guardrail. Callers needing the
	// "never raises" guarantee against arbitrary failures (including panics
	// in third-party code called from Analyze) should call AnalyzeSafe
	// instead.
	Analyze(ctx context.Context, content string, conv *conversation.Conversation) (Result, error)

	IsAvailable() bool
	GetConfig() map[string]interface{}
	UpdateConfig(map[string]interface{}) error
	GetValidationRules() []ValidationRule
}

// Factory builds a Guardrail instance from a config map.
type Factory func(name string, priority int, config map[string]interface{}) (Guardrail, error)

// AnalyzeSafe wraps Analyze so that any error or panic becomes a
// conservative blocked=true, high/medium-risk result carrying the sanitized
// error message, instead of propagating the failure or silently allowing
// the content through.
func AnalyzeSafe(ctx context.Context, g Guardrail, content string, conv *conversation.Conversation, sanitize func(error, string) string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("panic in guardrail %s: %v", g.Name(), r)
			if sanitize != nil {
				msg = sanitize(fmt.Errorf("%v", r), g.Name())
			}
			result = Result{
				Blocked:       true,
				Confidence:    0,
				Reason:        msg,
				Details:       map[string]interface{}{"error": msg, "method": "panic_recovery"},
				GuardrailName: g.Name(),
				GuardrailType: g.Type(),
				RiskLevel:     RiskHigh,
			}
		}
	}()

	res, err := g.Analyze(ctx, content, conv)
	if err != nil {
		msg := err.Error()
		if sanitize != nil {
			msg = sanitize(err, g.Name())
		}
		return Result{
			Blocked:       true,
			Confidence:    0,
			Reason:        msg,
			Details:       map[string]interface{}{"error": msg, "method": "error_recovery"},
			GuardrailName: g.Name(),
			GuardrailType: g.Type(),
			RiskLevel:     RiskMedium,
		}
	}
	return res
}

// Base provides the common name/type/priority/enabled bookkeeping so
// concrete detectors only need to embed it and implement Analyze,
// IsAvailable, GetConfig/UpdateConfig, and GetValidationRules.
type Base struct {
	name     string
	typ      Type
	priority int
	enabled  bool
}

// NewBase constructs the common guardrail bookkeeping fields.
func NewBase(name string, typ Type, priority int, enabled bool) Base {
	return Base{name: name, typ: typ, priority: priority, enabled: enabled}
}

func (b *Base) Name() string      { return b.name }
func (b *Base) Type() Type        { return b.typ }
func (b *Base) Priority() int     { return b.priority }
func (b *Base) Enabled() bool     { return b.enabled }
func (b *Base) SetEnabled(v bool) { b.enabled = v }
