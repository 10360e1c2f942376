// PassThrough always allows content. Used in pipeline configs to occupy a
// stage position (e.g. during staged rollout of a stricter replacement)
// without blocking anything.
package detectors

import (
	"context"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
)

// PassThrough implements the pass_through guardrail type.
type PassThrough struct {
	guardrail.Base
}

// NewPassThrough is the factory for the pass_through type.
func NewPassThrough(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	return &PassThrough{Base: guardrail.NewBase(name, guardrail.TypePassThrough, priority, true)}, nil
}

func (p *PassThrough) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	return guardrail.Result{
		Reason:        "pass_through always allows",
		Details:       map[string]interface{}{},
		GuardrailName: p.Name(),
		GuardrailType: p.Type(),
		RiskLevel:     guardrail.RiskLow,
	}, nil
}

func (p *PassThrough) IsAvailable() bool                    { return true }
func (p *PassThrough) GetConfig() map[string]interface{}    { return map[string]interface{}{"enabled": p.Enabled()} }
func (p *PassThrough) UpdateConfig(map[string]interface{}) error { return nil }
func (p *PassThrough) GetValidationRules() []guardrail.ValidationRule { return nil }
