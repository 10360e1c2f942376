// RegisterAll wires every concrete detector's factory into a Registry. It
// takes an explicit provider dependency rather than reaching for a
// package-global one, so a caller can swap providers per pipeline.
package detectors

import (
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
	"github.com/virtualsteve-star/stinger-sub000/internal/provider"
)

// RegisterAll registers every built-in guardrail type's factory on r. p is
// the provider used by content_moderation and the AI-backed detectors; it
// may be nil, in which case those detectors run in fallback/on_error mode
// only.
func RegisterAll(r *guardrail.Registry, p provider.Provider) {
	r.RegisterFactory(guardrail.TypeKeywordList, NewKeywordList)
	r.RegisterFactory(guardrail.TypeKeywordBlock, NewKeywordBlock)
	r.RegisterFactory(guardrail.TypeRegex, NewRegex)
	r.RegisterFactory(guardrail.TypeLength, NewLength)
	r.RegisterFactory(guardrail.TypeURL, NewURL)
	r.RegisterFactory(guardrail.TypeTopic, NewTopic)
	r.RegisterFactory(guardrail.TypePassThrough, NewPassThrough)

	r.RegisterFactory(guardrail.TypeSimplePII, NewSimplePII)
	r.RegisterFactory(guardrail.TypeSimpleToxic, NewSimpleToxicity)
	r.RegisterFactory(guardrail.TypeSimpleCodeGen, NewSimpleCodeGeneration)

	r.RegisterFactory(guardrail.TypeAIPII, func(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
		return NewAIPII(name, priority, cfg, p)
	})
	r.RegisterFactory(guardrail.TypeAIToxic, func(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
		return NewAIToxicity(name, priority, cfg, p)
	})
	r.RegisterFactory(guardrail.TypeAICodeGen, func(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
		return NewAICodeGeneration(name, priority, cfg, p)
	})
	r.RegisterFactory(guardrail.TypeContentModeration, func(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
		return NewContentModeration(name, priority, cfg, p)
	})
	r.RegisterFactory(guardrail.TypePromptInjection, func(name string, priority int, cfg map[string]interface{}) (guardrail.Guardrail, error) {
		return NewInjection(name, priority, cfg, p)
	})
}
