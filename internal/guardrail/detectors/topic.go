// Topic detector: allow-list / deny-list gating over literal substrings or
// regex patterns, with deny-priority "both" mode.
//
// mode allow/deny/both semantics: confidence is matched_count /
// total_count, deny takes priority over allow in "both" mode, and matching
// respects case_sensitive and use_regex flags.
package detectors

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
)

// Topic implements the topic guardrail type.
type Topic struct {
	guardrail.Base
	mode                string
	confidenceThreshold float64
	allowTopics         []string
	denyTopics          []string
	allowPatterns       []*regexp.Regexp
	denyPatterns        []*regexp.Regexp
}

// NewTopic is the factory for the topic type.
func NewTopic(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	nested, _ := cfg["config"].(map[string]interface{})

	mode, _ := firstString(cfg, nested, "mode")
	if mode == "" {
		mode = "deny"
	}

	caseSensitive := boolFrom(cfg, nested, "case_sensitive", false)
	useRegex := boolFrom(cfg, nested, "use_regex", false)
	threshold := floatFrom(cfg, nested, "confidence_threshold", 0.5)

	allowTopics := stringListFrom(cfg, nested, "allow_topics")
	denyTopics := stringListFrom(cfg, nested, "deny_topics")

	var extra []string
	if mode != "allow" && mode != "deny" && mode != "both" {
		extra = append(extra, fmt.Sprintf("mode must be one of allow/deny/both, got %q", mode))
	}

	allowPatterns, err := compileTopics(allowTopics, useRegex, caseSensitive)
	if err != nil {
		extra = append(extra, fmt.Sprintf("invalid allow_topics: %v", err))
	}
	denyPatterns, err := compileTopics(denyTopics, useRegex, caseSensitive)
	if err != nil {
		extra = append(extra, fmt.Sprintf("invalid deny_topics: %v", err))
	}

	t := &Topic{
		Base:                guardrail.NewBase(name, guardrail.TypeTopic, priority, true),
		mode:                mode,
		confidenceThreshold: threshold,
		allowTopics:         allowTopics,
		denyTopics:          denyTopics,
		allowPatterns:       allowPatterns,
		denyPatterns:        denyPatterns,
	}
	if err := validateConfig(name, cfg, nested, t.GetValidationRules(), extra...); err != nil {
		return nil, err
	}
	return t, nil
}

func compileTopics(topics []string, useRegex, caseSensitive bool) ([]*regexp.Regexp, error) {
	prefix := ""
	if !caseSensitive {
		prefix = "(?i)"
	}
	out := make([]*regexp.Regexp, 0, len(topics))
	for _, t := range topics {
		source := t
		if !useRegex {
			source = regexp.QuoteMeta(t)
		}
		re, err := regexp.Compile(prefix + source)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func findTopicMatches(content string, patterns []*regexp.Regexp, topics []string) []string {
	var matched []string
	for i, re := range patterns {
		if re.MatchString(content) {
			matched = append(matched, topics[i])
		}
	}
	return matched
}

func (t *Topic) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	if content == "" {
		return guardrail.Result{
			Reason:        "Empty content",
			Details:       map[string]interface{}{"mode": t.mode},
			GuardrailName: t.Name(),
			GuardrailType: t.Type(),
			RiskLevel:     guardrail.RiskLow,
		}, nil
	}

	allowMatches := findTopicMatches(content, t.allowPatterns, t.allowTopics)
	denyMatches := findTopicMatches(content, t.denyPatterns, t.denyTopics)

	blocked := false
	reason := "no matches"
	confidence := 0.0

	switch t.mode {
	case "allow":
		if len(allowMatches) == 0 {
			blocked, reason, confidence = true, "Content does not match any allowed topics", 1.0
		} else {
			reason = fmt.Sprintf("Content matches allowed topics: %s", strings.Join(allowMatches, ", "))
			confidence = ratio(len(allowMatches), len(t.allowTopics))
		}
	case "deny":
		if len(denyMatches) > 0 {
			confidence = ratio(len(denyMatches), len(t.denyTopics))
			if confidence >= t.confidenceThreshold {
				blocked = true
				reason = fmt.Sprintf("Content matches denied topics: %s", strings.Join(denyMatches, ", "))
			} else {
				reason = fmt.Sprintf("Confidence %.2f below threshold %.2f", confidence, t.confidenceThreshold)
			}
		} else {
			reason = "Content does not match any denied topics"
		}
	case "both":
		if len(denyMatches) > 0 {
			blocked = true
			reason = fmt.Sprintf("Content matches denied topics: %s", strings.Join(denyMatches, ", "))
			confidence = ratio(len(denyMatches), len(t.denyTopics))
		} else if len(t.allowTopics) > 0 && len(allowMatches) == 0 {
			blocked = true
			reason = "Content does not match any allowed topics"
			confidence = 1.0
		} else {
			reason = "Content passes both allow and deny checks"
			if len(t.allowTopics) > 0 {
				confidence = ratio(len(allowMatches), len(t.allowTopics))
			}
		}
	}

	risk := guardrail.RiskLow
	if blocked {
		risk = guardrail.RiskHigh
	}

	return guardrail.Result{
		Blocked:    blocked,
		Confidence: confidence,
		Reason:     reason,
		Details: map[string]interface{}{
			"mode":          t.mode,
			"allow_matches": allowMatches,
			"deny_matches":  denyMatches,
		},
		GuardrailName: t.Name(),
		GuardrailType: t.Type(),
		RiskLevel:     risk,
	}, nil
}

func ratio(matched, total int) float64 {
	if total == 0 {
		total = 1
	}
	r := float64(matched) / float64(total)
	if r > 1.0 {
		return 1.0
	}
	return r
}

func (t *Topic) IsAvailable() bool { return true }

func (t *Topic) GetConfig() map[string]interface{} {
	return map[string]interface{}{
		"name":                  t.Name(),
		"type":                  string(t.Type()),
		"enabled":               t.Enabled(),
		"mode":                  t.mode,
		"allow_topics":          t.allowTopics,
		"deny_topics":           t.denyTopics,
		"confidence_threshold":  t.confidenceThreshold,
	}
}

func (t *Topic) UpdateConfig(cfg map[string]interface{}) error {
	if v, ok := asFloat(cfg["confidence_threshold"]); ok {
		t.confidenceThreshold = v
	}
	return nil
}

func (t *Topic) GetValidationRules() []guardrail.ValidationRule {
	zero, one := 0.0, 1.0
	return []guardrail.ValidationRule{
		{Key: "mode", Type: guardrail.KindString, Enum: []string{"allow", "deny", "both"}},
		{Key: "confidence_threshold", Type: guardrail.KindFloat, Min: &zero, Max: &one},
		{Key: "allow_topics", Type: guardrail.KindList},
		{Key: "deny_topics", Type: guardrail.KindList},
	}
}
