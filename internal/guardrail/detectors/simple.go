// Simple* detectors: regex-based detection over a closed set of categories,
// each with a curated pattern list and a confidence formula of
// min(cap, base + per-match increment).
//
// Unknown categories are dropped with a warning rather than failing
// construction; a category blocks when its max per-match confidence meets
// or exceeds the configured threshold. codeGenPatterns has no upstream
// reference implementation to port from, so its pattern list is authored
// directly from the category's description — see DESIGN.md.
package detectors

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
)

type categoryPatterns map[string][]*regexp.Regexp

var piiPatterns = categoryPatterns{
	"ssn":             compileAll(`\b\d{3}-?\d{2}-?\d{4}\b`),
	"credit_card":     compileAll(`\b\d{4}[- ]?\d{4}[- ]?\d{4}[- ]?\d{4}\b`),
	"email":           compileAll(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	"phone":           compileAll(`\b(\+\d{1,2}\s?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}\b`),
	"ip_address":      compileAll(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`),
	"driver_license":  compileAll(`\b[A-Z]{1,2}\d{6,8}\b`),
	"passport":        compileAll(`\b[A-Z]{1,2}\d{6,9}\b`),
	"bank_account":    compileAll(`\b\d{8,17}\b`),
}

var highConfidencePII = map[string]bool{"ssn": true, "credit_card": true, "email": true, "phone": true}

var toxicityPatterns = categoryPatterns{
	"hate_speech": compileAll(
		`(?i)\b(nazi|fascist|racist|bigot|homophobe|transphobe)\b`,
		`(?i)\b(kill\s+all|exterminate|genocide|ethnic\s+cleansing)\b`,
		`(?i)\b(white\s+supremacy|aryan|master\s+race)\b`,
	),
	"harassment": compileAll(
		`(?i)\b(stalk|harass|bully|intimidate|threaten)\b`,
		`(?i)\byou\s*'?re\s+(stupid|worthless|ugly)\b`,
		`(?i)\b(go\s+die|kill\s+yourself|commit\s+suicide)\b`,
	),
	"threats": compileAll(
		`(?i)\bi\s+will\s+(kill|hurt|destroy)\b`,
		`(?i)\byou\s+will\s+(die|pay|regret)\b`,
		`(?i)\b(i\s+hope\s+you\s+die|i\s+wish\s+you\s+were\s+dead)\b`,
	),
	"sexual_harassment": compileAll(
		`(?i)\b(sexual|nude|porn|explicit)\b.*\b(harass|assault|abuse)\b`,
		`(?i)\b(rape|molest|grope|fondle)\b`,
	),
	"violence": compileAll(
		`(?i)\b(punch|hit|beat|attack|fight|violence)\b`,
		`(?i)\b(gun|shoot|bomb|explode|terrorist)\b`,
		`(?i)\b(murder|assassinate|execute|lynch)\b`,
	),
}

var codeGenPatterns = categoryPatterns{
	"shell_execution": compileAll(
		`(?i)\b(os\.system|subprocess\.(run|call|Popen)|exec\(|eval\()`,
		"```(?:bash|sh|shell)",
	),
	"network_access": compileAll(
		`(?i)\b(urllib|requests\.(get|post)|socket\.connect|curl\s+-)`,
	),
	"file_system": compileAll(
		`(?i)\b(open\(.*["'][wa]["']|shutil\.rmtree|os\.remove|os\.unlink)`,
	),
	"code_block": compileAll(
		"```(?:python|javascript|go|java|ruby|php|perl)",
	),
	"credential_access": compileAll(
		`(?i)\b(getenv|os\.environ|read_key|private_key|aws_secret)`,
	),
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// SimpleCategory implements SimplePII/SimpleToxicity/SimpleCodeGeneration:
// all three share identical matching and scoring logic over different
// category maps.
type SimpleCategory struct {
	guardrail.Base
	patterns            categoryPatterns
	enabledCategories   []string
	confidenceThreshold float64
	onError             string
	label               string
	highConfidence      map[string]bool
}

func newSimpleCategory(name string, priority int, typ guardrail.Type, cfg map[string]interface{}, patterns categoryPatterns, defaultThreshold float64, label string, highConf map[string]bool) (guardrail.Guardrail, error) {
	nested, _ := cfg["config"].(map[string]interface{})

	requested := stringListFrom(cfg, nested, "categories")
	if len(requested) == 0 {
		for cat := range patterns {
			requested = append(requested, cat)
		}
	}

	var valid []string
	for _, cat := range requested {
		if _, ok := patterns[cat]; ok {
			valid = append(valid, cat)
		} else {
			log.Printf("warning: %s: unknown category %q ignored", name, cat)
		}
	}

	onError, _ := firstString(cfg, nested, "on_error")
	if onError == "" {
		onError = "block"
	}

	s := &SimpleCategory{
		Base:                guardrail.NewBase(name, typ, priority, true),
		patterns:            patterns,
		enabledCategories:   valid,
		confidenceThreshold: floatFrom(cfg, nested, "confidence_threshold", defaultThreshold),
		onError:             onError,
		label:               label,
		highConfidence:      highConf,
	}
	if err := validateConfig(name, cfg, nested, s.GetValidationRules()); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSimplePII is the factory for simple_pii_detection.
func NewSimplePII(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	return newSimpleCategory(name, priority, guardrail.TypeSimplePII, cfg, piiPatterns, 0.8, "PII", highConfidencePII)
}

// NewSimpleToxicity is the factory for simple_toxicity_detection.
func NewSimpleToxicity(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	return newSimpleCategory(name, priority, guardrail.TypeSimpleToxic, cfg, toxicityPatterns, 0.7, "toxicity", nil)
}

// NewSimpleCodeGeneration is the factory for simple_code_generation.
func NewSimpleCodeGeneration(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	return newSimpleCategory(name, priority, guardrail.TypeSimpleCodeGen, cfg, codeGenPatterns, 0.7, "code generation", nil)
}

func (s *SimpleCategory) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	if !s.Enabled() {
		return guardrail.Result{
			Reason:        fmt.Sprintf("%s detection filter disabled", s.label),
			Details:       map[string]interface{}{"method": "regex", "enabled": false},
			GuardrailName: s.Name(),
			GuardrailType: s.Type(),
			RiskLevel:     guardrail.RiskLow,
		}, nil
	}

	var detected []string
	scores := map[string]float64{}

	for _, cat := range s.enabledCategories {
		matchCount := 0
		for _, re := range s.patterns[cat] {
			matchCount += len(re.FindAllString(content, -1))
		}
		if matchCount == 0 {
			continue
		}
		detected = append(detected, cat)
		base, inc, cap := 0.5, 0.1, 0.9
		if s.highConfidence != nil && s.highConfidence[cat] {
			base, inc, cap = 0.8, 0.05, 0.95
		}
		score := base + float64(matchCount)*inc
		if score > cap {
			score = cap
		}
		scores[cat] = score
	}

	if len(detected) == 0 {
		return guardrail.Result{
			Reason:        fmt.Sprintf("No %s detected (regex)", s.label),
			Details:       map[string]interface{}{"detected": []string{}, "confidence_scores": map[string]float64{}, "method": "regex"},
			GuardrailName: s.Name(),
			GuardrailType: s.Type(),
			RiskLevel:     guardrail.RiskLow,
		}, nil
	}

	maxConfidence := 0.0
	for _, v := range scores {
		if v > maxConfidence {
			maxConfidence = v
		}
	}
	blocked := maxConfidence >= s.confidenceThreshold

	risk := guardrail.RiskMedium
	if blocked {
		risk = guardrail.RiskHigh
	}

	return guardrail.Result{
		Blocked:    blocked,
		Confidence: maxConfidence,
		Reason:     fmt.Sprintf("%s detected (regex): %s", s.label, strings.Join(detected, ", ")),
		Details: map[string]interface{}{
			"detected":          detected,
			"confidence_scores": scores,
			"method":            "regex",
		},
		GuardrailName: s.Name(),
		GuardrailType: s.Type(),
		RiskLevel:     risk,
	}, nil
}

func (s *SimpleCategory) IsAvailable() bool { return s.Enabled() }

func (s *SimpleCategory) GetConfig() map[string]interface{} {
	return map[string]interface{}{
		"enabled":              s.Enabled(),
		"categories":           s.enabledCategories,
		"confidence_threshold": s.confidenceThreshold,
		"on_error":             s.onError,
	}
}

func (s *SimpleCategory) UpdateConfig(cfg map[string]interface{}) error {
	if v, ok := cfg["enabled"].(bool); ok {
		s.SetEnabled(v)
	}
	if v := stringListFrom(cfg, nil, "categories"); v != nil {
		s.enabledCategories = v
	}
	if v, ok := asFloat(cfg["confidence_threshold"]); ok {
		s.confidenceThreshold = v
	}
	if v, ok := cfg["on_error"].(string); ok {
		s.onError = v
	}
	return nil
}

func (s *SimpleCategory) GetValidationRules() []guardrail.ValidationRule {
	zero, one := 0.0, 1.0
	return []guardrail.ValidationRule{
		{Key: "categories", Type: guardrail.KindList},
		{Key: "confidence_threshold", Type: guardrail.KindFloat, Min: &zero, Max: &one},
		{Key: "on_error", Type: guardrail.KindString, Enum: []string{"allow", "warn", "block"}},
	}
}
