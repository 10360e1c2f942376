// Package handlers exposes the gateway's guardrail pipeline over HTTP.
//
// CheckHandler is the mux's request entry point: it answers "is this
// content safe" directly against the pipeline rather than forwarding the
// request to an upstream provider and relaying its response.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/virtualsteve-star/stinger-sub000/internal/conversation"
	"github.com/virtualsteve-star/stinger-sub000/internal/errsanitize"
	"github.com/virtualsteve-star/stinger-sub000/internal/guardrail"
	"github.com/virtualsteve-star/stinger-sub000/internal/validation"
)

// checkRequest is the request body for both check endpoints.
type checkRequest struct {
	Content        string `json:"content"`
	APIKey         string `json:"api_key"`
	Role           string `json:"role"`
	ConversationID string `json:"conversation_id"`
}

// checkResponse mirrors guardrail.Verdict as wire JSON.
type checkResponse struct {
	Blocked  bool                       `json:"blocked"`
	Reasons  []string                   `json:"reasons,omitempty"`
	Warnings []string                   `json:"warnings,omitempty"`
	Details  map[string]guardrail.Result `json:"details,omitempty"`
}

// CheckHandler serves the pipeline's input/output evaluation endpoints.
type CheckHandler struct {
	pipeline  *guardrail.Pipeline
	sanitizer *errsanitize.Handler
	limits    *validation.Validator

	mu            sync.Mutex
	conversations map[string]*conversation.Conversation
}

// NewCheckHandler builds a handler around an already-constructed pipeline.
// limits may be nil, in which case conversations it creates enforce no
// turn/memory/age caps of their own.
func NewCheckHandler(p *guardrail.Pipeline, sanitizer *errsanitize.Handler, limits *validation.Validator) *CheckHandler {
	return &CheckHandler{
		pipeline:      p,
		sanitizer:     sanitizer,
		limits:        limits,
		conversations: make(map[string]*conversation.Conversation),
	}
}

// HandleInput serves POST /v1/guardrails/check.
func (h *CheckHandler) HandleInput(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.pipeline.ExecuteInput)
}

// HandleOutput serves POST /v1/guardrails/check/output.
func (h *CheckHandler) HandleOutput(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.pipeline.ExecuteOutput)
}

type executeFunc func(ctx context.Context, content string, opts guardrail.CheckOptions) (guardrail.Verdict, error)

func (h *CheckHandler) handle(w http.ResponseWriter, r *http.Request, exec executeFunc) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, err, "decoding request body")
		return
	}

	opts := guardrail.CheckOptions{APIKey: req.APIKey, Role: req.Role}
	if req.ConversationID != "" {
		opts.Conv = h.conversationFor(req.ConversationID)
	}

	verdict, err := exec(r.Context(), req.Content, opts)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err, "evaluating pipeline")
		return
	}

	if opts.Conv != nil && !verdict.Blocked && verdict.PipelineType == guardrail.StageInput {
		_ = opts.Conv.AddPrompt(req.Content)
		opts.Conv.AnnotateLastTurn(map[string]interface{}{
			"guardrail_results": map[string]interface{}{
				"blocked":  verdict.Blocked,
				"reasons":  verdict.Reasons,
				"warnings": verdict.Warnings,
			},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if verdict.Blocked {
		w.WriteHeader(http.StatusForbidden)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(checkResponse{
		Blocked:  verdict.Blocked,
		Reasons:  verdict.Reasons,
		Warnings: verdict.Warnings,
		Details:  verdict.Details,
	})
}

func (h *CheckHandler) conversationFor(id string) *conversation.Conversation {
	h.mu.Lock()
	defer h.mu.Unlock()
	conv, ok := h.conversations[id]
	if !ok {
		conv = conversation.HumanAI(id)
		if h.limits != nil {
			conv.SetLimitsChecker(h.limits)
		}
		h.conversations[id] = conv
	}
	return conv
}

func (h *CheckHandler) writeError(w http.ResponseWriter, status int, err error, op string) {
	msg := err.Error()
	if h.sanitizer != nil {
		msg = h.sanitizer.SafeErrorMessage(err, op, false)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
