package guardrail

import (
	"context"
	"testing"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
)

type stubGuardrail struct {
	Base
}

func (s *stubGuardrail) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (Result, error) {
	return Result{GuardrailName: s.Name(), GuardrailType: s.Type()}, nil
}
func (s *stubGuardrail) IsAvailable() bool                    { return true }
func (s *stubGuardrail) GetConfig() map[string]interface{}    { return nil }
func (s *stubGuardrail) UpdateConfig(map[string]interface{}) error { return nil }
func (s *stubGuardrail) GetValidationRules() []ValidationRule { return nil }

func stubFactory(name string, priority int, cfg map[string]interface{}) (Guardrail, error) {
	return &stubGuardrail{Base: NewBase(name, TypeKeywordBlock, priority, true)}, nil
}

func TestCreateGuardrailMissingNameOrType(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(TypeKeywordBlock, stubFactory)

	if _, err := r.CreateGuardrail(Config{Type: TypeKeywordBlock}); err == nil {
		t.Fatal("expected error for missing name")
	}
	if _, err := r.CreateGuardrail(Config{Name: "x"}); err == nil {
		t.Fatal("expected error for missing type")
	}
}

func TestCreateGuardrailUnknownTypeListsValidTypes(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(TypeKeywordBlock, stubFactory)

	_, err := r.CreateGuardrail(Config{Name: "x", Type: Type("nonsense")})
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	typeErr, ok := err.(*InvalidGuardrailTypeError)
	if !ok {
		t.Fatalf("expected *InvalidGuardrailTypeError, got %T", err)
	}
	if len(typeErr.ValidTypes) != 1 || typeErr.ValidTypes[0] != string(TypeKeywordBlock) {
		t.Fatalf("unexpected valid types: %v", typeErr.ValidTypes)
	}
}

func TestLoadAllAggregatesErrorsAndReturnsPartial(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(TypeKeywordBlock, stubFactory)

	configs := []Config{
		{Name: "good-one", Type: TypeKeywordBlock, Enabled: true},
		{Name: "bad-type", Type: Type("nope")},
		{Name: "good-two", Type: TypeKeywordBlock, Enabled: true},
	}

	built, err := r.LoadAll(configs)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(built) != 2 {
		t.Fatalf("expected 2 successfully built guardrails, got %d", len(built))
	}
}

func TestRegisterGetUnregisterClear(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory(TypeKeywordBlock, stubFactory)

	g, err := r.CreateGuardrail(Config{Name: "block-a", Type: TypeKeywordBlock, Enabled: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.RegisterGuardrail(g)

	if _, ok := r.Get("block-a"); !ok {
		t.Fatal("expected to find registered guardrail")
	}
	if len(r.GetByType(TypeKeywordBlock)) != 1 {
		t.Fatal("expected one guardrail of type keyword_block")
	}

	r.Unregister("block-a")
	if _, ok := r.Get("block-a"); ok {
		t.Fatal("expected guardrail to be gone after Unregister")
	}

	r.RegisterGuardrail(g)
	r.Clear()
	if len(r.GetByType(TypeKeywordBlock)) != 0 {
		t.Fatal("expected Clear to remove all guardrails")
	}
}
