// Regex detector: compiles each configured pattern once through a security
// validator, then matches under a time bound.
//
// Go's regexp package is RE2-based and therefore already immune to the
// catastrophic-backtracking class a hand-rolled safety validator would
// normally exist to prevent (no backtracking engine, no exponential
// blowup), so validatePattern only rejects pathological *authoring* shapes
// (nested quantifiers, excessive alternation) as defense in depth, and
// matchWithTimeout keeps a time-bound contract even though RE2 matching is
// already linear in input length.
package detectors

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
)

var nestedQuantifier = regexp.MustCompile(`\([^)]*[+*]\)[+*]`)

const maxAlternations = 50

func validatePattern(pattern string) (bool, string) {
	if nestedQuantifier.MatchString(pattern) {
		return false, "nested quantifiers can cause catastrophic backtracking"
	}
	if strings.Count(pattern, "|") > maxAlternations {
		return false, fmt.Sprintf("pattern has more than %d alternations", maxAlternations)
	}
	return true, ""
}

type compiledPattern struct {
	source   string
	compiled *regexp.Regexp
	skipped  bool
}

// Regex implements the regex guardrail type.
type Regex struct {
	guardrail.Base
	patterns      []compiledPattern
	action        string
	caseSensitive bool
	matchTimeout  time.Duration
}

// NewRegex is the factory for the regex type.
func NewRegex(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	nested, _ := cfg["config"].(map[string]interface{})

	rawPatterns := stringListFrom(cfg, nested, "patterns")
	action, _ := firstString(cfg, nested, "action")
	if action == "" {
		action = "block"
	}
	caseSensitive := boolFrom(cfg, nested, "case_sensitive", true)

	r := &Regex{
		Base:          guardrail.NewBase(name, guardrail.TypeRegex, priority, true),
		action:        action,
		caseSensitive: caseSensitive,
		matchTimeout:  100 * time.Millisecond,
	}

	var extra []string
	for _, p := range rawPatterns {
		safe, reason := validatePattern(p)
		if !safe {
			extra = append(extra, fmt.Sprintf("unsafe regex pattern %q: %s", p, reason))
			continue
		}

		source := p
		if !caseSensitive {
			source = "(?i)" + p
		}
		compiled, err := regexp.Compile(source)
		if err != nil {
			extra = append(extra, fmt.Sprintf("invalid regex pattern %q: %v", p, err))
			continue
		}
		r.patterns = append(r.patterns, compiledPattern{source: p, compiled: compiled})
	}

	if err := validateConfig(name, cfg, nested, r.GetValidationRules(), extra...); err != nil {
		return nil, err
	}
	return r, nil
}

// matchWithTimeout runs re.MatchString on content but gives up after the
// detector's configured bound, marking the pattern skipped rather than
// letting a pathological input stall the pipeline.
func (r *Regex) matchWithTimeout(re *regexp.Regexp, content string) (matched bool, timedOut bool) {
	done := make(chan bool, 1)
	go func() { done <- re.MatchString(content) }()
	select {
	case m := <-done:
		return m, false
	case <-time.After(r.matchTimeout):
		return false, true
	}
}

func (r *Regex) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	if content == "" || len(r.patterns) == 0 {
		return guardrail.Result{
			Reason:        "No content or patterns to match",
			Details:       map[string]interface{}{"patterns_count": len(r.patterns)},
			GuardrailName: r.Name(),
			GuardrailType: r.Type(),
			RiskLevel:     guardrail.RiskLow,
		}, nil
	}

	var matched []string
	var skipped []string
	for _, p := range r.patterns {
		m, timedOut := r.matchWithTimeout(p.compiled, content)
		if timedOut {
			skipped = append(skipped, p.source)
			continue
		}
		if m {
			matched = append(matched, p.source)
		}
	}

	if len(matched) > 0 {
		return guardrail.Result{
			Blocked:    true,
			Confidence: 1.0,
			Reason:     fmt.Sprintf("Matched patterns: %s", strings.Join(matched, ", ")),
			Details: map[string]interface{}{
				"matched_patterns": matched,
				"skipped_patterns": skipped,
				"total_patterns":   len(r.patterns),
				"action":           r.action,
			},
			GuardrailName: r.Name(),
			GuardrailType: r.Type(),
			RiskLevel:     guardrail.RiskHigh,
		}, nil
	}

	return guardrail.Result{
		Reason: "No pattern matches found",
		Details: map[string]interface{}{
			"matched_patterns": []string{},
			"skipped_patterns": skipped,
			"total_patterns":   len(r.patterns),
		},
		GuardrailName: r.Name(),
		GuardrailType: r.Type(),
		RiskLevel:     guardrail.RiskLow,
	}, nil
}

func (r *Regex) IsAvailable() bool { return true }

func (r *Regex) GetConfig() map[string]interface{} {
	sources := make([]string, len(r.patterns))
	for i, p := range r.patterns {
		sources[i] = p.source
	}
	return map[string]interface{}{
		"name":           r.Name(),
		"type":           string(r.Type()),
		"enabled":        r.Enabled(),
		"patterns":       sources,
		"action":         r.action,
		"case_sensitive": r.caseSensitive,
	}
}

func (r *Regex) UpdateConfig(cfg map[string]interface{}) error {
	if v, ok := cfg["action"].(string); ok {
		r.action = v
	}
	return nil
}

func (r *Regex) GetValidationRules() []guardrail.ValidationRule {
	return []guardrail.ValidationRule{
		{Key: "patterns", Required: true, Type: guardrail.KindList},
		{Key: "action", Type: guardrail.KindString, Enum: []string{"block", "allow", "warn"}},
		{Key: "case_sensitive", Type: guardrail.KindBool},
	}
}
