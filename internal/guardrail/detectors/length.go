// Length detector: enforces min_length/max_length on the UTF-8 byte length
// of the content.
//
// Has no upstream reference implementation to port; built directly against
// the shared Result shape used across the other detectors in this package.
package detectors

import (
	"context"
	"fmt"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
)

// Length implements the length guardrail type.
type Length struct {
	guardrail.Base
	minLength int
	maxLength int
}

// NewLength is the factory for the length type.
func NewLength(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	nested, _ := cfg["config"].(map[string]interface{})

	minLen := intFrom(cfg, nested, "min_length", 0)
	maxLen := intFrom(cfg, nested, "max_length", 0)

	var extra []string
	if minLen == 0 && maxLen == 0 {
		extra = append(extra, "at least one of min_length or max_length must be set")
	}
	if maxLen > 0 && minLen > maxLen {
		extra = append(extra, fmt.Sprintf("min_length (%d) exceeds max_length (%d)", minLen, maxLen))
	}

	l := &Length{
		Base:      guardrail.NewBase(name, guardrail.TypeLength, priority, true),
		minLength: minLen,
		maxLength: maxLen,
	}
	if err := validateConfig(name, cfg, nested, l.GetValidationRules(), extra...); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Length) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	n := len(content)

	if l.minLength > 0 && n < l.minLength {
		return guardrail.Result{
			Blocked:       true,
			Confidence:    1.0,
			Reason:        fmt.Sprintf("Content too short: %d bytes, minimum %d", n, l.minLength),
			Details:       map[string]interface{}{"length": n, "min_length": l.minLength, "max_length": l.maxLength},
			GuardrailName: l.Name(),
			GuardrailType: l.Type(),
			RiskLevel:     guardrail.RiskMedium,
		}, nil
	}
	if l.maxLength > 0 && n > l.maxLength {
		return guardrail.Result{
			Blocked:       true,
			Confidence:    1.0,
			Reason:        fmt.Sprintf("Content too long: %d bytes, maximum %d", n, l.maxLength),
			Details:       map[string]interface{}{"length": n, "min_length": l.minLength, "max_length": l.maxLength},
			GuardrailName: l.Name(),
			GuardrailType: l.Type(),
			RiskLevel:     guardrail.RiskMedium,
		}, nil
	}

	return guardrail.Result{
		Reason:        "Length within bounds",
		Details:       map[string]interface{}{"length": n, "min_length": l.minLength, "max_length": l.maxLength},
		GuardrailName: l.Name(),
		GuardrailType: l.Type(),
		RiskLevel:     guardrail.RiskLow,
	}, nil
}

func (l *Length) IsAvailable() bool { return true }

func (l *Length) GetConfig() map[string]interface{} {
	return map[string]interface{}{
		"name":       l.Name(),
		"type":       string(l.Type()),
		"enabled":    l.Enabled(),
		"min_length": l.minLength,
		"max_length": l.maxLength,
	}
}

func (l *Length) UpdateConfig(cfg map[string]interface{}) error {
	if v, ok := asFloat(cfg["min_length"]); ok {
		l.minLength = int(v)
	}
	if v, ok := asFloat(cfg["max_length"]); ok {
		l.maxLength = int(v)
	}
	return nil
}

func (l *Length) GetValidationRules() []guardrail.ValidationRule {
	zero := 0.0
	return []guardrail.ValidationRule{
		{Key: "min_length", Type: guardrail.KindInt, Min: &zero},
		{Key: "max_length", Type: guardrail.KindInt, Min: &zero},
	}
}
