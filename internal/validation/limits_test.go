package validation

import (
	"strings"
	"testing"
	"time"
)

func TestValidateContentSizeCaps(t *testing.T) {
	v := NewValidator(DefaultLimits())
	v.Limits.MaxPromptLength = 10

	err := v.ValidateContent("this is far too long for the cap", KindPrompt)
	if err == nil {
		t.Fatal("expected size-cap error")
	}
}

func TestValidateContentExcessiveRepetition(t *testing.T) {
	v := NewValidator(DefaultLimits())
	content := strings.Repeat("a", 200)

	if err := v.ValidateContent(content, KindInput); err == nil {
		t.Fatal("expected excessive repetition to be rejected")
	}
}

func TestValidateContentAllowsNormalText(t *testing.T) {
	v := NewValidator(DefaultLimits())
	if err := v.ValidateContent("just a normal sentence about nothing in particular.", KindInput); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateContentRejectsNullByte(t *testing.T) {
	v := NewValidator(DefaultLimits())
	if err := v.ValidateContent("hello\x00world", KindInput); err == nil {
		t.Fatal("expected null byte rejection")
	}
}

func TestValidateConversationLimits(t *testing.T) {
	v := NewValidator(DefaultLimits())
	v.Limits.MaxConversationTurns = 2

	err := v.ValidateConversation(ConversationUsage{TurnCount: 3, CreatedAt: time.Now()})
	if err == nil {
		t.Fatal("expected turn-count violation")
	}
}

func TestValidatePipelineConfiguration(t *testing.T) {
	v := NewValidator(DefaultLimits())
	v.Limits.MaxFiltersPerPipeline = 1

	if err := v.ValidatePipelineConfiguration(PipelineShape{GuardrailCount: 2}); err == nil {
		t.Fatal("expected too-many-guardrails violation")
	}
}

func TestValidateKeywordList(t *testing.T) {
	v := NewValidator(DefaultLimits())
	v.Limits.MaxKeywordListSize = 1

	if err := v.ValidateKeywordList([]string{"a", "b"}); err == nil {
		t.Fatal("expected too-many-keywords violation")
	}
}
