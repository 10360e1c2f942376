// Config validation: rule-driven, aggregated-error validation run by every
// guardrail constructor before it accepts its config. Each guardrail
// exposes its own list of ValidationRules; a ConfigValidator consumes them
// and fails construction fast with every violated rule listed at once,
// rather than one at a time — see DESIGN.md.
package guardrail

import "fmt"

// Kind constrains the expected Go type of a config value.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
	KindList   Kind = "list"
)

// ValidationRule describes one constraint on a single config key.
type ValidationRule struct {
	Key      string
	Required bool
	Type     Kind
	Enum     []string
	Min      *float64
	Max      *float64
}

// ConfigValidator runs a rule set against a decoded config map.
type ConfigValidator struct {
	Rules []ValidationRule
}

// NewConfigValidator builds a validator from the given rules.
func NewConfigValidator(rules []ValidationRule) *ConfigValidator {
	return &ConfigValidator{Rules: rules}
}

// Validate checks cfg against every rule, aggregating all failures rather
// than stopping at the first one.
func (v *ConfigValidator) Validate(cfg map[string]interface{}) (bool, []string) {
	var errs []string

	for _, rule := range v.Rules {
		value, present := cfg[rule.Key]

		if !present {
			if rule.Required {
				errs = append(errs, fmt.Sprintf("missing required key %q", rule.Key))
			}
			continue
		}

		if !checkKind(value, rule.Type) {
			errs = append(errs, fmt.Sprintf("key %q must be of type %s", rule.Key, rule.Type))
			continue
		}

		if len(rule.Enum) > 0 {
			if s, ok := value.(string); ok && !contains(rule.Enum, s) {
				errs = append(errs, fmt.Sprintf("key %q must be one of %v, got %q", rule.Key, rule.Enum, s))
			}
		}

		if rule.Min != nil || rule.Max != nil {
			if num, ok := asFloat(value); ok {
				if rule.Min != nil && num < *rule.Min {
					errs = append(errs, fmt.Sprintf("key %q must be >= %v, got %v", rule.Key, *rule.Min, num))
				}
				if rule.Max != nil && num > *rule.Max {
					errs = append(errs, fmt.Sprintf("key %q must be <= %v, got %v", rule.Key, *rule.Max, num))
				}
			}
		}
	}

	return len(errs) == 0, errs
}

func checkKind(value interface{}, kind Kind) bool {
	switch kind {
	case KindString:
		_, ok := value.(string)
		return ok
	case KindInt, KindFloat:
		_, ok := asFloat(value)
		return ok
	case KindBool:
		_, ok := value.(bool)
		return ok
	case KindList:
		switch value.(type) {
		case []interface{}, []string:
			return true
		default:
			return false
		}
	default:
		return true
	}
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

// ConfigurationError is returned when required factory-level config fields
// (name/type) are missing.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// InvalidGuardrailTypeError is returned when a config names an unregistered
// type, and lists the types that are registered.
type InvalidGuardrailTypeError struct {
	Type       string
	ValidTypes []string
}

func (e *InvalidGuardrailTypeError) Error() string {
	return fmt.Sprintf("invalid guardrail type %q, valid types: %v", e.Type, e.ValidTypes)
}
