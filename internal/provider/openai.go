// OpenAI adapter implementing the narrow provider.Provider interface: a
// raw net/http client against OpenAI's REST API for both chat completion
// and the moderation endpoint, with category-based blocking decisions left
// to the caller.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAI is a provider.Provider backed by OpenAI's chat completion and
// moderation REST endpoints.
type OpenAI struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewOpenAI builds an OpenAI provider. If baseURL is empty, the public API
// endpoint is used.
func NewOpenAI(apiKey, baseURL string, timeout time.Duration) *OpenAI {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAI{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *OpenAI) Name() string { return "openai" }

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []chatMsg `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMsg `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete calls POST /v1/chat/completions.
func (p *OpenAI) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	messages := make([]chatMsg, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = chatMsg{Role: m.Role, Content: m.Content}
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("encoding completion request: %w", err)
	}

	var out chatCompletionResponse
	if err := p.post(ctx, "/v1/chat/completions", body, &out); err != nil {
		return CompletionResponse{}, err
	}

	if len(out.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("openai completion returned no choices")
	}

	return CompletionResponse{
		Content:      out.Choices[0].Message.Content,
		Model:        out.Model,
		FinishReason: out.Choices[0].FinishReason,
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}, nil
}

type moderationRequest struct {
	Input string `json:"input"`
}

type moderationResponse struct {
	Results []struct {
		Flagged        bool               `json:"flagged"`
		Categories      map[string]bool    `json:"categories"`
		CategoryScores map[string]float64 `json:"category_scores"`
	} `json:"results"`
}

// Moderate calls POST /v1/moderations, grounded directly on
// internal/guardrails/openai/moderation.go's callModerationAPI shape.
func (p *OpenAI) Moderate(ctx context.Context, content string) (ModerationResult, error) {
	body, err := json.Marshal(moderationRequest{Input: content})
	if err != nil {
		return ModerationResult{}, fmt.Errorf("encoding moderation request: %w", err)
	}

	var out moderationResponse
	if err := p.post(ctx, "/v1/moderations", body, &out); err != nil {
		return ModerationResult{}, err
	}
	if len(out.Results) == 0 {
		return ModerationResult{}, fmt.Errorf("openai moderation returned no results")
	}

	r := out.Results[0]
	return ModerationResult{
		Flagged:        r.Flagged,
		Categories:     r.Categories,
		CategoryScores: r.CategoryScores,
	}, nil
}

func (p *OpenAI) post(ctx context.Context, path string, body []byte, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request to %s: %w", path, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response from %s: %w", path, err)
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}
