// Pipeline executor: builds input/output stages from config, runs every
// enabled guardrail in priority-grouped concurrent batches, and aggregates
// their results into a single verdict.
//
// Guardrails are grouped by priority, sorted ascending, and each group runs
// concurrently via an errgroup. Every enabled guardrail runs regardless of
// earlier blocks unless the pipeline-level short_circuit flag is set, in
// which case evaluation stops as soon as a priority group produces a block
// (see DESIGN.md for the reasoning behind making this configurable).
package guardrail

import (
	"context"
	"fmt"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/virtualsteve-star/stinger-sub000/internal/audit"
	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/ratelimit"
	"github.com/virtualsteve-star/stinger-sub000/internal/validation"
)

// StageType distinguishes the pipeline's two stages.
type StageType string

const (
	StageInput  StageType = "input"
	StageOutput StageType = "output"
)

// Stage is an ordered sequence of constructed guardrails.
type Stage struct {
	Type       StageType
	Guardrails []Guardrail
}

// Verdict is the aggregated outcome returned to callers.
type Verdict struct {
	Blocked      bool
	Warnings     []string
	Reasons      []string
	Details      map[string]Result
	PipelineType StageType
}

// Sanitize is the function signature the pipeline uses to scrub error
// strings before they reach a caller or audit event (errsanitize.Handler's
// SafeErrorMessage, wired in by the caller so this package stays free of a
// direct errsanitize dependency cycle concern).
type Sanitize func(err error, context string) string

// Pipeline owns the input/output stages plus the cross-cutting collaborators
// every evaluation consults: the registry that built the stages, the rate
// limiter, the audit trail, and the input validator.
type Pipeline struct {
	Input  Stage
	Output Stage

	Registry  *Registry
	RateLimit *ratelimit.Limiter
	Audit     *audit.Trail
	Validator *validation.Validator
	Sanitize  Sanitize

	ShortCircuit bool
}

// PipelineConfig is the decoded shape of the "pipeline:" section of the
// configuration file.
type PipelineConfig struct {
	Input        []Config
	Output       []Config
	ShortCircuit bool
}

// BuildPipeline constructs both stages from cfg via r's factories, in
// declared order. An entry whose factory fails to construct surfaces as an
// init error unless that entry's
// own on_error is "allow", in which case it is skipped (logged, not
// silently dropped into the stage).
func BuildPipeline(r *Registry, cfg PipelineConfig, rl *ratelimit.Limiter, at *audit.Trail, v *validation.Validator, sanitize Sanitize) (*Pipeline, error) {
	input, err := buildStage(r, StageInput, cfg.Input)
	if err != nil {
		return nil, err
	}
	output, err := buildStage(r, StageOutput, cfg.Output)
	if err != nil {
		return nil, err
	}

	if v != nil {
		shape := validation.PipelineShape{GuardrailCount: len(input.Guardrails) + len(output.Guardrails)}
		if err := v.ValidatePipelineConfiguration(shape); err != nil {
			return nil, err
		}
	}

	return &Pipeline{
		Input:        input,
		Output:       output,
		Registry:     r,
		RateLimit:    rl,
		Audit:        at,
		Validator:    v,
		Sanitize:     sanitize,
		ShortCircuit: cfg.ShortCircuit,
	}, nil
}

func buildStage(r *Registry, typ StageType, entries []Config) (Stage, error) {
	stage := Stage{Type: typ}
	var errs []string

	for _, cfg := range entries {
		g, err := r.CreateGuardrail(cfg)
		if err != nil {
			if cfg.OnError == ActionAllow {
				log.Printf("guardrail: skipping %s stage entry %q (on_error=allow): %v", typ, cfg.Name, err)
				continue
			}
			errs = append(errs, fmt.Sprintf("%s stage entry %q: %v", typ, cfg.Name, err))
			continue
		}
		stage.Guardrails = append(stage.Guardrails, g)
	}

	if len(errs) > 0 {
		return Stage{}, fmt.Errorf("pipeline %s stage construction failed: %v", typ, errs)
	}
	return stage, nil
}

// CheckOptions carries the optional per-call inputs to Check: an identity
// key for the global rate limiter, a role for limit overrides, and a
// conversation for conversation-aware detectors and conversation-level rate
// limiting.
type CheckOptions struct {
	APIKey string
	Role   string
	Conv   *conversation.Conversation
}

// ExecuteInput runs the input stage.
func (p *Pipeline) ExecuteInput(ctx context.Context, content string, opts CheckOptions) (Verdict, error) {
	return p.check(ctx, p.Input, content, validation.KindPrompt, opts)
}

// ExecuteOutput runs the output stage, the output-side counterpart to
// ExecuteInput.
func (p *Pipeline) ExecuteOutput(ctx context.Context, content string, opts CheckOptions) (Verdict, error) {
	return p.check(ctx, p.Output, content, validation.KindResponse, opts)
}

func (p *Pipeline) check(ctx context.Context, stage Stage, content string, kind validation.ContentKind, opts CheckOptions) (Verdict, error) {
	verdict := Verdict{Details: map[string]Result{}, PipelineType: stage.Type}

	// Step 1: content-size validation.
	if p.Validator != nil {
		if err := p.Validator.ValidateContent(content, kind); err != nil {
			reason := fmt.Sprintf("Input validation failed: %s", p.sanitize(err, "input_validation"))
			verdict.Blocked = true
			verdict.Reasons = append(verdict.Reasons, reason)
			p.auditDecision("validation", audit.DecisionBlock, reason, nil, opts)
			return verdict, nil
		}
	}

	// Step 2: global rate limit.
	if p.RateLimit != nil && opts.APIKey != "" {
		res := p.RateLimit.CheckAndRecord(opts.APIKey, opts.Role, nil)
		if res.Exceeded {
			reason := fmt.Sprintf("Global rate limit exceeded: %s", res.Reason)
			verdict.Blocked = true
			verdict.Reasons = append(verdict.Reasons, reason)
			verdict.Details["global_rate_limit"] = Result{
				Blocked: true, Reason: reason, RiskLevel: RiskHigh,
				Details: map[string]interface{}{"exceeded_limits": res.ExceededLimits},
			}
			p.auditDecision("global_rate_limit", audit.DecisionBlock, reason, nil, opts)
			return verdict, nil
		}
	}

	// Step 3: conversation rate limits.
	if opts.Conv != nil {
		status := opts.Conv.CheckRateLimit("request")
		if status.Exceeded {
			reason := fmt.Sprintf("Conversation rate limit exceeded: %s", status.Reason)
			verdict.Blocked = true
			verdict.Reasons = append(verdict.Reasons, reason)
			p.auditDecision("conversation_rate_limit", audit.DecisionBlock, reason, nil, opts)
			return verdict, nil
		}
	}

	// Step 4: run every enabled guardrail in priority-grouped stages.
	results, err := p.executeStage(ctx, stage, content, opts.Conv)
	if err != nil {
		return verdict, err
	}

	for _, r := range results {
		verdict.Details[r.GuardrailName] = r
		decision := audit.DecisionAllow
		switch {
		case r.Blocked:
			verdict.Blocked = true
			verdict.Reasons = append(verdict.Reasons, r.Reason)
			decision = audit.DecisionBlock
		case r.Confidence >= 0.5:
			verdict.Warnings = append(verdict.Warnings, r.Reason)
			decision = audit.DecisionWarn
		}
		conf := r.Confidence
		p.auditDecision(r.GuardrailName, decision, r.Reason, &conf, opts)
	}

	return verdict, nil
}

// executeStage groups guardrails by priority (ascending = higher priority
// first), runs each group concurrently via errgroup, and continues to the
// next group regardless of this group's outcome unless ShortCircuit is set
// and this group produced a block.
func (p *Pipeline) executeStage(ctx context.Context, stage Stage, content string, conv *conversation.Conversation) ([]Result, error) {
	groups := map[int][]Guardrail{}
	for _, g := range stage.Guardrails {
		if !g.Enabled() {
			continue
		}
		groups[g.Priority()] = append(groups[g.Priority()], g)
	}

	var priorities []int
	for pr := range groups {
		priorities = append(priorities, pr)
	}
	sort.Ints(priorities)

	var all []Result
	for _, pr := range priorities {
		groupResults, err := p.executeGroup(ctx, groups[pr], content, conv)
		if err != nil {
			return all, err
		}
		all = append(all, groupResults...)

		if p.ShortCircuit {
			for _, r := range groupResults {
				if r.Blocked {
					return all, nil
				}
			}
		}
	}
	return all, nil
}

func (p *Pipeline) executeGroup(ctx context.Context, guardrails []Guardrail, content string, conv *conversation.Conversation) ([]Result, error) {
	results := make([]Result, len(guardrails))
	g, gctx := errgroup.WithContext(ctx)

	for i, gr := range guardrails {
		i, gr := i, gr
		g.Go(func() error {
			results[i] = AnalyzeSafe(gctx, gr, content, conv, p.Sanitize)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (p *Pipeline) sanitize(err error, context string) string {
	if p.Sanitize != nil {
		return p.Sanitize(err, context)
	}
	return err.Error()
}

func (p *Pipeline) auditDecision(name string, decision audit.Decision, reason string, confidence *float64, opts CheckOptions) {
	if p.Audit == nil {
		return
	}
	convID := ""
	if opts.Conv != nil {
		convID = opts.Conv.ID
	}
	p.Audit.LogGuardrailDecision(name, decision, reason, confidence, "", "", convID)
}
