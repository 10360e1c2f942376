// Shared base for the AI-backed detectors (PII, toxicity, code generation):
// formats a detection-specific prompt, requests a structured JSON verdict
// from the provider, and falls back to the corresponding Simple detector on
// malformed JSON or provider failure.
//
// The analyze flow is centralized here: check disabled/no-provider first,
// then parse the provider's JSON response using a subclass-supplied field
// mapping, blocking when detected && confidence >= threshold. Fallback is
// never silent: a result that fell back to the regex detector always
// carries details.fallback / details.fallback_reason and an
// "AI failed (...), using regex fallback" reason prefix.
package detectors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
	"github.com/virtualsteve-star/stinger-sub000/internal/provider"
)

type aiVerdict struct {
	Detected   bool     `json:"detected"`
	Categories []string `json:"categories"`
	PIITypes   []string `json:"pii_types"`
	Confidence float64  `json:"confidence"`
	Details    string   `json:"details"`
}

func (v aiVerdict) categoryList(field string) []string {
	if field == "pii_types" {
		return v.PIITypes
	}
	return v.Categories
}

// baseAIDetector composes an AI call over a fixed prompt template with a
// regex-based fallback of the same shape.
type baseAIDetector struct {
	guardrail.Base
	provider            provider.Provider
	promptTemplate      string
	categoriesField     string
	confidenceThreshold float64
	onError             string
	label               string
	fallback            guardrail.Guardrail
}

func (a *baseAIDetector) analyzeWithAI(ctx context.Context, content string) (guardrail.Result, error) {
	if !a.Enabled() {
		return guardrail.Result{
			Reason:        fmt.Sprintf("AI %s filter disabled", a.label),
			Details:       map[string]interface{}{"method": "ai", "enabled": false},
			GuardrailName: a.Name(),
			GuardrailType: a.Type(),
			RiskLevel:     guardrail.RiskLow,
		}, nil
	}

	if a.provider == nil {
		return a.fallbackResult(ctx, content, fmt.Errorf("no AI provider configured"))
	}

	prompt := strings.ReplaceAll(a.promptTemplate, "{content}", content)
	resp, err := a.provider.Complete(ctx, provider.CompletionRequest{
		Messages: []provider.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return a.fallbackResult(ctx, content, err)
	}

	var verdict aiVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(resp.Content)), &verdict); err != nil {
		return a.fallbackResult(ctx, content, fmt.Errorf("malformed AI response: %w", err))
	}

	categories := verdict.categoryList(a.categoriesField)
	blocked := verdict.Detected && verdict.Confidence >= a.confidenceThreshold

	reason := fmt.Sprintf("No %s detected (AI)", a.label)
	if verdict.Detected {
		reason = fmt.Sprintf("%s detected (AI): %s", a.label, strings.Join(categories, ", "))
	}

	risk := guardrail.RiskLow
	if blocked {
		risk = guardrail.RiskHigh
	}

	return guardrail.Result{
		Blocked:    blocked,
		Confidence: verdict.Confidence,
		Reason:     reason,
		Details: map[string]interface{}{
			fmt.Sprintf("detected_%s", a.categoriesField): categories,
			"confidence": verdict.Confidence,
			"method":     "ai",
			"model":      a.provider.Name(),
		},
		GuardrailName: a.Name(),
		GuardrailType: a.Type(),
		RiskLevel:     risk,
	}, nil
}

func (a *baseAIDetector) fallbackResult(ctx context.Context, content string, cause error) (guardrail.Result, error) {
	if a.fallback == nil {
		blocked := a.onError == "block"
		risk := guardrail.RiskMedium
		if blocked {
			risk = guardrail.RiskHigh
		}
		return guardrail.Result{
			Blocked:       blocked,
			Reason:        fmt.Sprintf("AI failed (%v), no fallback available", cause),
			Details:       map[string]interface{}{"error": cause.Error(), "method": "ai_fallback_failed"},
			GuardrailName: a.Name(),
			GuardrailType: a.Type(),
			RiskLevel:     risk,
		}, nil
	}

	fallbackRes, err := a.fallback.Analyze(ctx, content, nil)
	if err != nil {
		blocked := a.onError == "block"
		return guardrail.Result{
			Blocked:       blocked,
			Reason:        fmt.Sprintf("AI failed (%v), regex fallback also failed: %v", cause, err),
			Details:       map[string]interface{}{"error": err.Error(), "method": "ai_fallback_failed"},
			GuardrailName: a.Name(),
			GuardrailType: a.Type(),
			RiskLevel:     guardrail.RiskHigh,
		}, nil
	}

	fallbackRes.Reason = fmt.Sprintf("AI failed (%v), using regex fallback: %s", cause, fallbackRes.Reason)
	fallbackRes.GuardrailName = a.Name()
	fallbackRes.GuardrailType = a.Type()
	if fallbackRes.Details == nil {
		fallbackRes.Details = map[string]interface{}{}
	}
	fallbackRes.Details["fallback"] = true
	fallbackRes.Details["fallback_reason"] = cause.Error()
	return fallbackRes, nil
}

func (a *baseAIDetector) IsAvailable() bool { return a.Enabled() && a.provider != nil }

func (a *baseAIDetector) GetConfig() map[string]interface{} {
	return map[string]interface{}{
		"enabled":              a.Enabled(),
		"confidence_threshold": a.confidenceThreshold,
		"on_error":             a.onError,
	}
}

func (a *baseAIDetector) UpdateConfig(cfg map[string]interface{}) error {
	if v, ok := cfg["enabled"].(bool); ok {
		a.SetEnabled(v)
	}
	if v, ok := asFloat(cfg["confidence_threshold"]); ok {
		a.confidenceThreshold = v
	}
	if v, ok := cfg["on_error"].(string); ok {
		a.onError = v
	}
	return nil
}

func (a *baseAIDetector) GetValidationRules() []guardrail.ValidationRule {
	zero, one := 0.0, 1.0
	return []guardrail.ValidationRule{
		{Key: "confidence_threshold", Type: guardrail.KindFloat, Min: &zero, Max: &one},
		{Key: "on_error", Type: guardrail.KindString, Enum: []string{"allow", "warn", "block"}},
	}
}

const piiPromptTemplate = `You are a data privacy specialist. Analyze the following text and identify any Personally Identifiable Information (PII).

Respond with a JSON object: {"detected": bool, "pii_types": [string], "confidence": float, "details": string}.

Text to analyze: {content}`

const toxicityPromptTemplate = `You are a content safety specialist. Analyze the following text for toxic, harassing, or threatening content.

Respond with a JSON object: {"detected": bool, "categories": [string], "confidence": float, "details": string}.

Text to analyze: {content}`

const codeGenPromptTemplate = `You are a security reviewer. Analyze the following text for generated code that performs sensitive operations (shell execution, network access, filesystem mutation, credential access).

Respond with a JSON object: {"detected": bool, "categories": [string], "confidence": float, "details": string}.

Text to analyze: {content}`

// AIPII implements ai_pii_detection.
type AIPII struct{ baseAIDetector }

// NewAIPII is the factory for ai_pii_detection. p may be nil (no provider
// configured), in which case every call falls back to the regex detector.
func NewAIPII(name string, priority int, cfg map[string]interface{}, p provider.Provider) (guardrail.Guardrail, error) {
	nested, _ := cfg["config"].(map[string]interface{})
	fallback, err := NewSimplePII(name+"_fallback", priority, cfg)
	if err != nil {
		return nil, err
	}
	d := &AIPII{baseAIDetector{
		Base:                guardrail.NewBase(name, guardrail.TypeAIPII, priority, true),
		provider:            p,
		promptTemplate:      piiPromptTemplate,
		categoriesField:     "pii_types",
		confidenceThreshold: floatFrom(cfg, nested, "confidence_threshold", 0.8),
		onError:             onErrorOrDefault(cfg, nested, "allow"),
		label:               "PII",
		fallback:            fallback,
	}}
	if err := validateConfig(name, cfg, nested, d.GetValidationRules()); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *AIPII) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	return d.analyzeWithAI(ctx, content)
}

// AIToxicity implements ai_toxicity_detection.
type AIToxicity struct{ baseAIDetector }

// NewAIToxicity is the factory for ai_toxicity_detection.
func NewAIToxicity(name string, priority int, cfg map[string]interface{}, p provider.Provider) (guardrail.Guardrail, error) {
	nested, _ := cfg["config"].(map[string]interface{})
	fallback, err := NewSimpleToxicity(name+"_fallback", priority, cfg)
	if err != nil {
		return nil, err
	}
	d := &AIToxicity{baseAIDetector{
		Base:                guardrail.NewBase(name, guardrail.TypeAIToxic, priority, true),
		provider:            p,
		promptTemplate:      toxicityPromptTemplate,
		categoriesField:     "categories",
		confidenceThreshold: floatFrom(cfg, nested, "confidence_threshold", 0.7),
		onError:             onErrorOrDefault(cfg, nested, "allow"),
		label:               "toxicity",
		fallback:            fallback,
	}}
	if err := validateConfig(name, cfg, nested, d.GetValidationRules()); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *AIToxicity) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	return d.analyzeWithAI(ctx, content)
}

// AICodeGeneration implements ai_code_generation.
type AICodeGeneration struct{ baseAIDetector }

// NewAICodeGeneration is the factory for ai_code_generation.
func NewAICodeGeneration(name string, priority int, cfg map[string]interface{}, p provider.Provider) (guardrail.Guardrail, error) {
	nested, _ := cfg["config"].(map[string]interface{})
	fallback, err := NewSimpleCodeGeneration(name+"_fallback", priority, cfg)
	if err != nil {
		return nil, err
	}
	d := &AICodeGeneration{baseAIDetector{
		Base:                guardrail.NewBase(name, guardrail.TypeAICodeGen, priority, true),
		provider:            p,
		promptTemplate:      codeGenPromptTemplate,
		categoriesField:     "categories",
		confidenceThreshold: floatFrom(cfg, nested, "confidence_threshold", 0.7),
		onError:             onErrorOrDefault(cfg, nested, "allow"),
		label:               "code generation",
		fallback:            fallback,
	}}
	if err := validateConfig(name, cfg, nested, d.GetValidationRules()); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *AICodeGeneration) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	return d.analyzeWithAI(ctx, content)
}

func onErrorOrDefault(flat, nested map[string]interface{}, def string) string {
	if v, ok := firstString(flat, nested, "on_error"); ok {
		return v
	}
	return def
}
