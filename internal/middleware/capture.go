package middleware

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/virtualsteve-star/stinger-sub000/internal/audit"
)

// requestIDKey is the context key the capture middleware stores the
// per-request ID under, so downstream handlers can thread it into
// guardrail audit events.
type requestIDKey struct{}

// RequestID extracts the request ID stashed in ctx by Capture, if any.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// CaptureMiddleware records request/response bodies into the audit trail.
type CaptureMiddleware struct {
	trail            *audit.Trail
	maxBodySize      int
	sensitiveHeaders map[string]bool
	skipHealthCheck  bool
}

// CaptureConfig holds configuration for the capture middleware.
type CaptureConfig struct {
	Trail           *audit.Trail
	MaxBodySize     int // maximum body size to capture, in bytes
	SkipHealthCheck bool
}

// NewCaptureMiddleware creates a new capture middleware.
func NewCaptureMiddleware(cfg CaptureConfig) *CaptureMiddleware {
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 64 * 1024
	}
	return &CaptureMiddleware{
		trail:       cfg.Trail,
		maxBodySize: cfg.MaxBodySize,
		sensitiveHeaders: map[string]bool{
			"authorization": true,
			"x-api-key":     true,
			"cookie":        true,
			"x-auth-token":  true,
		},
		skipHealthCheck: cfg.SkipHealthCheck,
	}
}

// Capture wraps an HTTP handler to log request/response bodies through the
// audit trail.
func (c *CaptureMiddleware) Capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c.trail == nil {
			next.ServeHTTP(w, r)
			return
		}
		if c.skipHealthCheck && (r.URL.Path == "/health" || r.URL.Path == "/status") {
			next.ServeHTTP(w, r)
			return
		}

		requestID := uuid.New().String()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		var requestBody string
		if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
			if body, err := c.captureBody(r.Body); err == nil {
				requestBody = body
				r.Body = io.NopCloser(strings.NewReader(requestBody))
			}
		}
		if requestBody != "" {
			c.trail.LogPrompt(requestBody, requestID, "", "", "")
		}

		capture := &captureResponseWriter{ResponseWriter: w, statusCode: http.StatusOK, body: &bytes.Buffer{}, maxBodySize: c.maxBodySize}
		next.ServeHTTP(capture, r)

		if capture.body.Len() > 0 {
			c.trail.LogResponse(capture.body.String(), requestID, "", "", "")
		}
	})
}

// captureBody reads body up to the configured size limit.
func (c *CaptureMiddleware) captureBody(body io.ReadCloser) (string, error) {
	defer body.Close()
	buf := &bytes.Buffer{}
	if _, err := buf.ReadFrom(io.LimitReader(body, int64(c.maxBodySize))); err != nil {
		return "", err
	}
	captured := buf.String()
	if buf.Len() >= c.maxBodySize {
		captured += "\n... [TRUNCATED]"
	}
	return captured, nil
}

// captureResponseWriter wraps http.ResponseWriter to capture the response
// body while still writing it through to the client.
type captureResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	body        *bytes.Buffer
	maxBodySize int
}

func (w *captureResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *captureResponseWriter) Write(data []byte) (int, error) {
	n, err := w.ResponseWriter.Write(data)
	if w.body.Len()+len(data) <= w.maxBodySize {
		w.body.Write(data)
	} else if w.body.Len() < w.maxBodySize {
		remaining := w.maxBodySize - w.body.Len()
		w.body.Write(data[:remaining])
		w.body.WriteString("\n... [TRUNCATED]")
	}
	return n, err
}

func (w *captureResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *captureResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("hijacking not supported")
}
