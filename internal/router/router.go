// Package router wires the gateway's HTTP mux and middleware chain.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/virtualsteve-star/stinger-sub000/internal/handlers"
	"github.com/virtualsteve-star/stinger-sub000/internal/middleware"
)

// Router builds the gateway's HTTP handler.
type Router struct {
	check   *handlers.CheckHandler
	capture *middleware.CaptureMiddleware
}

// New creates a router around an already-built CheckHandler. capture may be
// nil, in which case no request/response bodies are audit-logged.
func New(check *handlers.CheckHandler, capture *middleware.CaptureMiddleware) *Router {
	return &Router{check: check, capture: capture}
}

// Handler returns the gateway's HTTP handler with the full middleware chain
// applied.
func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/guardrails/check", r.check.HandleInput)
	mux.HandleFunc("/v1/guardrails/check/output", r.check.HandleOutput)
	mux.HandleFunc("/health", r.healthHandler)
	mux.HandleFunc("/status", r.statusHandler)

	chain := []func(http.Handler) http.Handler{
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS,
		middleware.ContentType,
	}
	if r.capture != nil {
		chain = append(chain, r.capture.Capture)
	}

	return middleware.ApplyChain(mux, chain...)
}

func (r *Router) healthHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}

func (r *Router) statusHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "running"})
}
