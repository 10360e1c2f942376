// KeywordList / KeywordBlock detectors: exact substring matching against an
// inline or file-backed keyword list.
//
// File lines starting with "#" are treated as comments; file-backed
// keywords take precedence over inline ones; matching respects a
// case_sensitive flag; empty content never blocks.
package detectors

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
)

// Keyword implements both keyword_list and keyword_block: the two spec types
// share identical matching semantics and differ only in name/config origin.
type Keyword struct {
	guardrail.Base
	keywords      []string
	caseSensitive bool
}

func newKeyword(name string, priority int, typ guardrail.Type, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	nested, _ := cfg["config"].(map[string]interface{})

	caseSensitive := boolFrom(cfg, nested, "case_sensitive", false)

	inline := stringListFrom(cfg, nested, "keywords")
	keywordsFile, _ := firstString(cfg, nested, "keywords_file")

	var keywords []string
	if keywordsFile != "" {
		fileKeywords, err := loadKeywordsFromFile(cfg, keywordsFile)
		if err != nil {
			// File loading failure falls back to inline keywords only, matching
			// keyword_list.py's behavior of logging a warning and continuing.
			log.Printf("warning: keywords file %q not loaded, using inline keywords only: %v", keywordsFile, err)
			keywords = inline
		} else {
			seen := make(map[string]bool, len(fileKeywords))
			keywords = append(keywords, fileKeywords...)
			for _, k := range fileKeywords {
				seen[k] = true
			}
			for _, k := range inline {
				if !seen[k] {
					keywords = append(keywords, k)
				}
			}
		}
	} else {
		keywords = inline
	}

	var extra []string
	if len(keywords) == 0 {
		extra = append(extra, "no keywords provided (set 'keywords' or 'keywords_file')")
	}

	if !caseSensitive {
		for i, k := range keywords {
			keywords[i] = strings.ToLower(k)
		}
	}

	k := &Keyword{
		Base:          guardrail.NewBase(name, typ, priority, true),
		keywords:      keywords,
		caseSensitive: caseSensitive,
	}
	if err := validateConfig(name, cfg, nested, k.GetValidationRules(), extra...); err != nil {
		return nil, err
	}
	return k, nil
}

// NewKeywordList is the factory for the keyword_list type.
func NewKeywordList(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	return newKeyword(name, priority, guardrail.TypeKeywordList, cfg)
}

// NewKeywordBlock is the factory for the keyword_block type.
func NewKeywordBlock(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	return newKeyword(name, priority, guardrail.TypeKeywordBlock, cfg)
}

func loadKeywordsFromFile(cfg map[string]interface{}, path string) ([]string, error) {
	dir, _ := cfg["_config_dir"].(string)
	if dir == "" {
		dir = "."
	}
	resolved := filepath.Join(dir, path)

	f, err := os.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("opening keywords file %s: %w", resolved, err)
	}
	defer f.Close()

	var keywords []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		keywords = append(keywords, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading keywords file %s: %w", resolved, err)
	}
	return keywords, nil
}

func (k *Keyword) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	if content == "" {
		return guardrail.Result{
			Blocked:       false,
			Reason:        "No content to analyze",
			Details:       map[string]interface{}{"keywords_count": len(k.keywords)},
			GuardrailName: k.Name(),
			GuardrailType: k.Type(),
			RiskLevel:     guardrail.RiskLow,
		}, nil
	}

	checkAgainst := content
	if !k.caseSensitive {
		checkAgainst = strings.ToLower(content)
	}

	var matched []string
	for _, kw := range k.keywords {
		if strings.Contains(checkAgainst, kw) {
			matched = append(matched, kw)
		}
	}

	if len(matched) > 0 {
		return guardrail.Result{
			Blocked:    true,
			Confidence: 1.0,
			Reason:     fmt.Sprintf("Blocked keywords found: %s", strings.Join(matched, ", ")),
			Details: map[string]interface{}{
				"matched_keywords": matched,
				"total_keywords":   len(k.keywords),
				"case_sensitive":   k.caseSensitive,
			},
			GuardrailName: k.Name(),
			GuardrailType: k.Type(),
			RiskLevel:     guardrail.RiskHigh,
		}, nil
	}

	return guardrail.Result{
		Blocked:       false,
		Reason:        "No keyword matches found",
		Details:       map[string]interface{}{"matched_keywords": []string{}, "total_keywords": len(k.keywords), "case_sensitive": k.caseSensitive},
		GuardrailName: k.Name(),
		GuardrailType: k.Type(),
		RiskLevel:     guardrail.RiskLow,
	}, nil
}

func (k *Keyword) IsAvailable() bool { return true }

func (k *Keyword) GetConfig() map[string]interface{} {
	return map[string]interface{}{
		"name":           k.Name(),
		"type":           string(k.Type()),
		"enabled":        k.Enabled(),
		"keywords":       k.keywords,
		"case_sensitive": k.caseSensitive,
	}
}

func (k *Keyword) UpdateConfig(cfg map[string]interface{}) error {
	if v, ok := cfg["case_sensitive"].(bool); ok {
		k.caseSensitive = v
	}
	if v := stringListFrom(cfg, nil, "keywords"); len(v) > 0 {
		k.keywords = v
	}
	return nil
}

func (k *Keyword) GetValidationRules() []guardrail.ValidationRule {
	return []guardrail.ValidationRule{
		{Key: "keywords", Type: guardrail.KindList},
		{Key: "keywords_file", Type: guardrail.KindString},
		{Key: "case_sensitive", Type: guardrail.KindBool},
	}
}
