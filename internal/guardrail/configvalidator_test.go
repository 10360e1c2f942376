package guardrail

import "testing"

func TestConfigValidatorRequiredKeyMissing(t *testing.T) {
	v := NewConfigValidator([]ValidationRule{
		{Key: "patterns", Required: true, Type: KindList},
	})

	ok, errs := v.Validate(map[string]interface{}{})
	if ok || len(errs) != 1 {
		t.Fatalf("expected one violation for missing required key, got ok=%v errs=%v", ok, errs)
	}
}

func TestConfigValidatorAggregatesMultipleViolations(t *testing.T) {
	zero, one := 0.0, 1.0
	v := NewConfigValidator([]ValidationRule{
		{Key: "mode", Type: KindString, Enum: []string{"allow", "deny"}},
		{Key: "confidence_threshold", Type: KindFloat, Min: &zero, Max: &one},
	})

	ok, errs := v.Validate(map[string]interface{}{
		"mode":                 "bogus",
		"confidence_threshold": 1.5,
	})
	if ok {
		t.Fatal("expected validation to fail")
	}
	if len(errs) != 2 {
		t.Fatalf("expected both violations aggregated in one pass, got %v", errs)
	}
}

func TestConfigValidatorWrongType(t *testing.T) {
	v := NewConfigValidator([]ValidationRule{
		{Key: "max_length", Type: KindInt},
	})

	ok, errs := v.Validate(map[string]interface{}{"max_length": "not a number"})
	if ok || len(errs) != 1 {
		t.Fatalf("expected a type violation, got ok=%v errs=%v", ok, errs)
	}
}

func TestConfigValidatorPasses(t *testing.T) {
	zero := 0.0
	v := NewConfigValidator([]ValidationRule{
		{Key: "min_length", Type: KindInt, Min: &zero},
	})

	ok, errs := v.Validate(map[string]interface{}{"min_length": 10})
	if !ok || len(errs) != 0 {
		t.Fatalf("expected no violations, got ok=%v errs=%v", ok, errs)
	}
}
