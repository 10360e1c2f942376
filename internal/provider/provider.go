// Package provider defines the narrow LLM provider adapter used by the
// AI-backed detectors and the prompt-injection detector.
//
// The interface exposes only Complete, Moderate and Name so alternate providers
// can be swapped behind the same contract without carrying along HTTP-proxy
// concerns (base URL discovery, endpoint routing, request/response
// transforms) this module has no use for — see DESIGN.md.
package provider

import "context"

// Message is one chat turn in a completion request.
type Message struct {
	Role    string
	Content string
}

// CompletionRequest is the input to Complete.
type CompletionRequest struct {
	Messages    []Message
	Model       string
	Temperature float64
	MaxTokens   int
}

// CompletionResponse is the output of Complete.
type CompletionResponse struct {
	Content      string
	Model        string
	Usage        Usage
	FinishReason string
}

// Usage reports token accounting for a completion call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ModerationResult is the output of Moderate.
type ModerationResult struct {
	Flagged        bool
	Categories     map[string]bool
	CategoryScores map[string]float64
}

// Provider is the narrow interface every AI-backed detector and the
// prompt-injection detector depend on.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	Moderate(ctx context.Context, content string) (ModerationResult, error)
	Name() string
}
