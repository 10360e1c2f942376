// URL detector: extracts URLs from content and blocks on domain allow/deny
// lists, matching the exact host only (no subdomain expansion).
//
// Has no upstream reference implementation to port; built directly against
// the shared Result shape used across the other regex-style detectors in
// this package.
package detectors

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
)

var urlPattern = regexp.MustCompile(`(?i)\b(?:https?|ftp)://[^\s/$.?#].[^\s]*`)

// URL implements the url guardrail type.
type URL struct {
	guardrail.Base
	blockedDomains map[string]bool
	allowedDomains map[string]bool
	hasAllowList   bool
}

// NewURL is the factory for the url type.
func NewURL(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
	nested, _ := cfg["config"].(map[string]interface{})

	blocked := stringListFrom(cfg, nested, "blocked_domains")
	allowed := stringListFrom(cfg, nested, "allowed_domains")

	u := &URL{
		Base:           guardrail.NewBase(name, guardrail.TypeURL, priority, true),
		blockedDomains: toLowerSet(blocked),
		allowedDomains: toLowerSet(allowed),
		hasAllowList:   len(allowed) > 0,
	}
	if err := validateConfig(name, cfg, nested, u.GetValidationRules()); err != nil {
		return nil, err
	}
	return u, nil
}

func toLowerSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, i := range items {
		out[strings.ToLower(i)] = true
	}
	return out
}

func extractHost(rawURL string) string {
	withoutScheme := rawURL
	if idx := strings.Index(rawURL, "://"); idx != -1 {
		withoutScheme = rawURL[idx+3:]
	}
	end := strings.IndexAny(withoutScheme, "/?#")
	authority := withoutScheme
	if end != -1 {
		authority = withoutScheme[:end]
	}
	if at := strings.LastIndex(authority, "@"); at != -1 {
		authority = authority[at+1:]
	}
	host := authority
	if colon := strings.LastIndex(authority, ":"); colon != -1 {
		host = authority[:colon]
	}
	return strings.ToLower(host)
}

func (u *URL) Analyze(ctx context.Context, content string, conv *conversation.Conversation) (guardrail.Result, error) {
	matches := urlPattern.FindAllString(content, -1)
	if len(matches) == 0 {
		return guardrail.Result{
			Reason:        "No URLs found in content",
			Details:       map[string]interface{}{"urls_found": []string{}},
			GuardrailName: u.Name(),
			GuardrailType: u.Type(),
			RiskLevel:     guardrail.RiskLow,
		}, nil
	}

	var blockedHosts []string
	hosts := make([]string, 0, len(matches))
	for _, m := range matches {
		host := extractHost(m)
		hosts = append(hosts, host)

		if u.blockedDomains[host] {
			blockedHosts = append(blockedHosts, host)
			continue
		}
		if u.hasAllowList && !u.allowedDomains[host] {
			blockedHosts = append(blockedHosts, host)
		}
	}

	if len(blockedHosts) > 0 {
		return guardrail.Result{
			Blocked:    true,
			Confidence: 1.0,
			Reason:     fmt.Sprintf("URL(s) from disallowed domain(s): %s", strings.Join(blockedHosts, ", ")),
			Details: map[string]interface{}{
				"urls_found":    hosts,
				"blocked_hosts": blockedHosts,
			},
			GuardrailName: u.Name(),
			GuardrailType: u.Type(),
			RiskLevel:     guardrail.RiskHigh,
		}, nil
	}

	return guardrail.Result{
		Reason:        "All URLs from allowed domains",
		Details:       map[string]interface{}{"urls_found": hosts, "blocked_hosts": []string{}},
		GuardrailName: u.Name(),
		GuardrailType: u.Type(),
		RiskLevel:     guardrail.RiskLow,
	}, nil
}

func (u *URL) IsAvailable() bool { return true }

func (u *URL) GetConfig() map[string]interface{} {
	return map[string]interface{}{
		"name":            u.Name(),
		"type":            string(u.Type()),
		"enabled":         u.Enabled(),
		"blocked_domains": keysOf(u.blockedDomains),
		"allowed_domains": keysOf(u.allowedDomains),
	}
}

func keysOf(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func (u *URL) UpdateConfig(cfg map[string]interface{}) error {
	if v := stringListFrom(cfg, nil, "blocked_domains"); v != nil {
		u.blockedDomains = toLowerSet(v)
	}
	if v := stringListFrom(cfg, nil, "allowed_domains"); v != nil {
		u.allowedDomains = toLowerSet(v)
		u.hasAllowList = len(v) > 0
	}
	return nil
}

func (u *URL) GetValidationRules() []guardrail.ValidationRule {
	return []guardrail.ValidationRule{
		{Key: "blocked_domains", Type: guardrail.KindList},
		{Key: "allowed_domains", Type: guardrail.KindList},
	}
}
