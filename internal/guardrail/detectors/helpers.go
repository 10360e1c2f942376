// Package detectors implements the concrete guardrail types: keyword_list,
// keyword_block, regex, length, url, topic, the Simple* regex-category
// detectors, the AI-backed variants, content moderation, and pass_through.
//
// Every detector's config arrives with an optional nested "config" map
// alongside top-level fields; these helpers resolve a key by checking the
// nested map first, then falling back to the flat map.
package detectors

import (
	"fmt"
	"strings"

	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
)

func firstString(flat, nested map[string]interface{}, key string) (string, bool) {
	if nested != nil {
		if v, ok := nested[key].(string); ok && v != "" {
			return v, true
		}
	}
	if v, ok := flat[key].(string); ok {
		return v, true
	}
	return "", false
}

func boolFrom(flat, nested map[string]interface{}, key string, def bool) bool {
	if nested != nil {
		if v, ok := nested[key].(bool); ok {
			return v
		}
	}
	if v, ok := flat[key].(bool); ok {
		return v
	}
	return def
}

func floatFrom(flat, nested map[string]interface{}, key string, def float64) float64 {
	if nested != nil {
		if v, ok := asFloat(nested[key]); ok {
			return v
		}
	}
	if v, ok := asFloat(flat[key]); ok {
		return v
	}
	return def
}

func intFrom(flat, nested map[string]interface{}, key string, def int) int {
	return int(floatFrom(flat, nested, key, float64(def)))
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

func stringListFrom(flat, nested map[string]interface{}, key string) []string {
	var raw interface{}
	if nested != nil {
		if v, ok := nested[key]; ok {
			raw = v
		}
	}
	if raw == nil {
		raw = flat[key]
	}
	switch v := raw.(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// validateConfig runs the merged flat+nested config view through a
// ConfigValidator built from rules, folds in any caller-supplied cross-field
// violations (checks a ValidationRule can't express, like min<max or a
// regex failing to compile), and returns one aggregated error naming every
// violation found. Returns nil if nothing failed.
func validateConfig(name string, flat, nested map[string]interface{}, rules []guardrail.ValidationRule, extra ...string) error {
	merged := make(map[string]interface{}, len(flat)+len(nested))
	for k, v := range flat {
		merged[k] = v
	}
	for k, v := range nested {
		merged[k] = v
	}

	_, errs := guardrail.NewConfigValidator(rules).Validate(merged)
	errs = append(errs, extra...)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s: invalid config: %s", name, strings.Join(errs, "; "))
}
