package guardrail

import (
	"context"
	"strings"
	"testing"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/ratelimit"
	"github.com/virtualsteve-star/stinger-sub000/internal/validation"
)

// fixedResultGuardrail returns a caller-controlled Blocked/Confidence result,
// letting pipeline tests exercise aggregation without real detector logic.
type fixedResultGuardrail struct {
	Base
	blocked    bool
	confidence float64
}

func (f *fixedResultGuardrail) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (Result, error) {
	reason := "allowed"
	if f.blocked {
		reason = f.Name() + " blocked the content"
	} else if f.confidence >= 0.5 {
		reason = f.Name() + " flagged the content"
	}
	return Result{
		Blocked:       f.blocked,
		Confidence:    f.confidence,
		Reason:        reason,
		GuardrailName: f.Name(),
		GuardrailType: f.Type(),
	}, nil
}
func (f *fixedResultGuardrail) IsAvailable() bool                          { return true }
func (f *fixedResultGuardrail) GetConfig() map[string]interface{}          { return nil }
func (f *fixedResultGuardrail) UpdateConfig(map[string]interface{}) error  { return nil }
func (f *fixedResultGuardrail) GetValidationRules() []ValidationRule       { return nil }

func newBlockingFactory(blocked bool, confidence float64) Factory {
	return func(name string, priority int, cfg map[string]interface{}) (Guardrail, error) {
		return &fixedResultGuardrail{
			Base:       NewBase(name, TypeKeywordBlock, priority, true),
			blocked:    blocked,
			confidence: confidence,
		}, nil
	}
}

func TestPipelineAggregatesBlockAcrossGuardrails(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(TypeKeywordBlock, newBlockingFactory(true, 1.0))
	r.RegisterFactory(TypeRegex, newBlockingFactory(false, 0.9))

	p, err := BuildPipeline(r, PipelineConfig{
		Input: []Config{
			{Name: "blocker", Type: TypeKeywordBlock, Enabled: true},
			{Name: "warner", Type: TypeRegex, Enabled: true},
		},
	}, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verdict, err := p.ExecuteInput(context.Background(), "some content", CheckOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Blocked {
		t.Fatal("expected pipeline to be blocked when any guardrail blocks")
	}
	if len(verdict.Reasons) != 1 {
		t.Fatalf("expected exactly one blocking reason, got %v", verdict.Reasons)
	}
	if len(verdict.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", verdict.Warnings)
	}
	if len(verdict.Details) != 2 {
		t.Fatalf("expected details for both guardrails, got %d", len(verdict.Details))
	}
}

func TestPipelineRunsEveryGuardrailByDefault(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(TypeKeywordBlock, newBlockingFactory(true, 1.0))

	p, err := BuildPipeline(r, PipelineConfig{
		Input: []Config{
			{Name: "first-blocker", Type: TypeKeywordBlock, Enabled: true, Config: map[string]interface{}{"priority": 1}},
			{Name: "second-blocker", Type: TypeKeywordBlock, Enabled: true, Config: map[string]interface{}{"priority": 2}},
		},
	}, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verdict, err := p.ExecuteInput(context.Background(), "content", CheckOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(verdict.Reasons) != 2 {
		t.Fatalf("expected both blocking guardrails to run (no stop on first block), got %v", verdict.Reasons)
	}
}

func TestPipelineShortCircuitStopsAfterFirstBlockingGroup(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(TypeKeywordBlock, newBlockingFactory(true, 1.0))

	p, err := BuildPipeline(r, PipelineConfig{
		ShortCircuit: true,
		Input: []Config{
			{Name: "first-blocker", Type: TypeKeywordBlock, Enabled: true, Config: map[string]interface{}{"priority": 1}},
			{Name: "second-blocker", Type: TypeKeywordBlock, Enabled: true, Config: map[string]interface{}{"priority": 2}},
		},
	}, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verdict, err := p.ExecuteInput(context.Background(), "content", CheckOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(verdict.Reasons) != 1 {
		t.Fatalf("expected short_circuit to stop after the first blocking priority group, got %v", verdict.Reasons)
	}
}

func TestPipelineInputValidationBlocksOversizedContent(t *testing.T) {
	r := NewRegistry()
	limits := validation.DefaultLimits()
	limits.MaxPromptLength = 10
	v := validation.NewValidator(limits)

	p, err := BuildPipeline(r, PipelineConfig{}, nil, nil, v, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	verdict, err := p.ExecuteInput(context.Background(), strings.Repeat("x", 100), CheckOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Blocked {
		t.Fatal("expected oversized content to be blocked by input validation")
	}
}

func TestPipelineGlobalRateLimitShortCircuits(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(TypeKeywordBlock, newBlockingFactory(false, 0))

	limiter := ratelimit.New(ratelimit.Limits{PerMinute: 1, PerHour: 100, PerDay: 1000}, nil)
	p, err := BuildPipeline(r, PipelineConfig{
		Input: []Config{{Name: "noop", Type: TypeKeywordBlock, Enabled: true}},
	}, limiter, nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts := CheckOptions{APIKey: "key-a"}
	if _, err := p.ExecuteInput(context.Background(), "one", opts); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	verdict, err := p.ExecuteInput(context.Background(), "two", opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Blocked {
		t.Fatal("expected second request within the same minute to exceed the per-minute limit")
	}
	if len(verdict.Reasons) != 1 || !strings.Contains(verdict.Reasons[0], "Global rate limit exceeded") {
		t.Fatalf("expected a global rate limit reason, got %v", verdict.Reasons)
	}
}

func TestBuildPipelineSurfacesConstructionErrorsUnlessOnErrorAllow(t *testing.T) {
	r := NewRegistry()

	if _, err := BuildPipeline(r, PipelineConfig{
		Input: []Config{{Name: "missing-type", Type: Type("nope"), Enabled: true}},
	}, nil, nil, nil, nil); err == nil {
		t.Fatal("expected unknown type to surface as a pipeline construction error")
	}

	p, err := BuildPipeline(r, PipelineConfig{
		Input: []Config{{Name: "missing-type", Type: Type("nope"), Enabled: true, OnError: ActionAllow}},
	}, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("expected on_error=allow entry to be skipped rather than error, got %v", err)
	}
	if len(p.Input.Guardrails) != 0 {
		t.Fatal("expected the skipped entry to not appear in the stage")
	}
}
