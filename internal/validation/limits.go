// Package validation enforces the resource-exhaustion and config-shape
// limits shared by every component in the gateway. The optional
// system-resource checks use runtime.MemStats since no richer
// process/system-metrics library is available in this module's dependency
// pool (see DESIGN.md).
package validation

import (
	"fmt"
	"runtime"
	"time"
)

// Limits mirrors ValidationLimits from the reference implementation.
type Limits struct {
	MaxInputLength          int
	MaxPromptLength         int
	MaxResponseLength       int
	MaxLineLength           int
	MaxConversationTurns    int
	MaxConversationMemoryMB float64
	MaxConversationAgeHours float64
	MaxMemoryUsageMB        float64
	MaxFiltersPerPipeline   int
	MaxPipelineDepth        int
	MaxConfigFileSizeKB     int
	MaxKeywordListSize      int
	MaxRegexPatterns        int
	MaxRequestsPerMinute    int
	MaxRequestsPerHour      int
}

// DefaultLimits matches the constants baked into ValidationLimits().
func DefaultLimits() Limits {
	return Limits{
		MaxInputLength:          100 * 1024,
		MaxPromptLength:         50 * 1024,
		MaxResponseLength:       50 * 1024,
		MaxLineLength:           10 * 1024,
		MaxConversationTurns:    50,
		MaxConversationMemoryMB: 100,
		MaxConversationAgeHours: 24,
		MaxMemoryUsageMB:        500,
		MaxFiltersPerPipeline:   20,
		MaxPipelineDepth:        10,
		MaxConfigFileSizeKB:     1024,
		MaxKeywordListSize:      10000,
		MaxRegexPatterns:        100,
		MaxRequestsPerMinute:    1000,
		MaxRequestsPerHour:      10000,
	}
}

// ContentKind selects which size ceiling applies to a piece of content.
type ContentKind string

const (
	KindInput    ContentKind = "input"
	KindPrompt   ContentKind = "prompt"
	KindResponse ContentKind = "response"
)

// Error reports a single validation failure, matching the reference's
// ValidationError semantics (a recoverable, caller-visible condition).
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func newErr(format string, args ...interface{}) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Validator runs the configured Limits against content, conversations, and
// pipeline configuration shapes.
type Validator struct {
	Limits          Limits
	memoryBaselineB uint64
}

// NewValidator builds a Validator, recording current memory usage as the
// baseline for ValidateSystemResources.
func NewValidator(limits Limits) *Validator {
	return &Validator{Limits: limits, memoryBaselineB: currentMemoryBytes()}
}

func currentMemoryBytes() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// ValidateContent enforces size caps, the per-line DoS guard, null-byte
// rejection, and the excessive-repetition heuristic.
func (v *Validator) ValidateContent(content string, kind ContentKind) error {
	size := len(content) // byte length of the UTF-8 encoding

	var cap int
	switch kind {
	case KindPrompt:
		cap = v.Limits.MaxPromptLength
	case KindResponse:
		cap = v.Limits.MaxResponseLength
	default:
		cap = v.Limits.MaxInputLength
	}
	if size > cap {
		return newErr("%s too large: %d bytes > %d bytes", kind, size, cap)
	}

	for i, line := range splitLines(content) {
		if len(line) > v.Limits.MaxLineLength {
			return newErr("%s line %d too long: %d > %d characters", kind, i, len(line), v.Limits.MaxLineLength)
		}
	}

	if hasExcessiveRepetition(content, 0.8) {
		return newErr("%s contains excessive repetition", kind)
	}

	for _, r := range content {
		if r == 0 {
			return newErr("%s contains null bytes", kind)
		}
	}

	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, r := range s {
		if r == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func hasExcessiveRepetition(content string, threshold float64) bool {
	runes := []rune(content)
	if len(runes) < 100 {
		return false
	}
	counts := make(map[rune]int, len(runes))
	for _, r := range runes {
		counts[r]++
	}
	max := 0
	for _, c := range counts {
		if c > max {
			max = c
		}
	}
	return float64(max)/float64(len(runes)) > threshold
}

// ConversationUsage is the subset of Conversation state the validator needs
// in order to enforce turn/memory/age limits without importing the
// conversation package. Neither package imports the other; conversation
// reaches the validator through its LimitsChecker interface.
type ConversationUsage struct {
	TurnCount     int
	MemoryUsageMB float64
	CreatedAt     time.Time
}

// ValidateConversation enforces turn count, memory, and age limits.
func (v *Validator) ValidateConversation(u ConversationUsage) error {
	if u.TurnCount > v.Limits.MaxConversationTurns {
		return newErr("too many conversation turns: %d > %d", u.TurnCount, v.Limits.MaxConversationTurns)
	}
	if u.MemoryUsageMB > v.Limits.MaxConversationMemoryMB {
		return newErr("conversation memory too large: %.1fMB > %.1fMB", u.MemoryUsageMB, v.Limits.MaxConversationMemoryMB)
	}
	ageHours := time.Since(u.CreatedAt).Hours()
	if ageHours > v.Limits.MaxConversationAgeHours {
		return newErr("conversation too old: %.1fh > %.1fh", ageHours, v.Limits.MaxConversationAgeHours)
	}
	return nil
}

// ValidateConversationUsage adapts ValidateConversation to the narrower
// (turnCount, memoryUsageMB, createdAt) shape conversation.LimitsChecker
// expects, so a *Validator can be plugged into a Conversation directly via
// SetLimitsChecker without the conversation package importing validation.
func (v *Validator) ValidateConversationUsage(turnCount int, memoryUsageMB float64, createdAt time.Time) error {
	return v.ValidateConversation(ConversationUsage{
		TurnCount:     turnCount,
		MemoryUsageMB: memoryUsageMB,
		CreatedAt:     createdAt,
	})
}

// PipelineShape is the minimal view of a pipeline config needed to check
// structural limits.
type PipelineShape struct {
	GuardrailCount   int
	RegexPatternSums int
}

// ValidatePipelineConfiguration enforces the max-guardrails and
// max-regex-patterns ceilings.
func (v *Validator) ValidatePipelineConfiguration(shape PipelineShape) error {
	if shape.GuardrailCount > v.Limits.MaxFiltersPerPipeline {
		return newErr("too many guardrails: %d > %d", shape.GuardrailCount, v.Limits.MaxFiltersPerPipeline)
	}
	if shape.RegexPatternSums > v.Limits.MaxRegexPatterns {
		return newErr("too many regex patterns: %d > %d", shape.RegexPatternSums, v.Limits.MaxRegexPatterns)
	}
	return nil
}

// ValidateKeywordList enforces keyword-list count and per-keyword length.
func (v *Validator) ValidateKeywordList(keywords []string) error {
	if len(keywords) > v.Limits.MaxKeywordListSize {
		return newErr("too many keywords: %d > %d", len(keywords), v.Limits.MaxKeywordListSize)
	}
	for i, kw := range keywords {
		if len(kw) > 1000 {
			return newErr("keyword %d too long: %d > 1000 characters", i, len(kw))
		}
	}
	return nil
}

// ValidateSystemResources is best-effort: Go has no bundled CPU-percent
// sampler in this module's dependency pool, so only the memory delta is
// checked, matching the reference's "missing measurement libraries silently
// disable them" fallback for CPU.
func (v *Validator) ValidateSystemResources() error {
	deltaMB := float64(currentMemoryBytes()-v.memoryBaselineB) / (1024 * 1024)
	if deltaMB > v.Limits.MaxMemoryUsageMB {
		return newErr("memory usage too high: %.1fMB > %.1fMB", deltaMB, v.Limits.MaxMemoryUsageMB)
	}
	return nil
}
