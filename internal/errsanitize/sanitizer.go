// Package errsanitize rewrites outward-facing error strings in production
// environments so that paths, stack frames and secrets never reach a
// caller, while keeping the full error recoverable by ID for operators.
package errsanitize

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Handler sanitizes error messages according to the detected environment.
type Handler struct {
	mu         sync.Mutex
	production bool
	registry   map[string]string
}

// New builds a Handler, detecting production vs. development from the
// environment the same way error_handling.py does.
func New() *Handler {
	return &Handler{
		production: detectProduction(),
		registry:   make(map[string]string),
	}
}

func detectProduction() bool {
	envLike := func(key string) bool {
		v := strings.ToLower(os.Getenv(key))
		return v == "production" || v == "prod"
	}

	strongIndicators := []bool{
		envLike("ENVIRONMENT"),
		envLike("ENV"),
		envLike("STAGE"),
		envLike("DEPLOYMENT_ENV"),
		envLike("PYTHON_ENV"),
		os.Getenv("DYNO") != "",
		os.Getenv("AWS_EXECUTION_ENV") != "",
		os.Getenv("WEBSITE_SITE_NAME") != "",
		os.Getenv("GOOGLE_CLOUD_PROJECT") != "",
	}
	for _, v := range strongIndicators {
		if v {
			return true
		}
	}

	if os.Getenv("CONTAINER") != "" &&
		os.Getenv("DEBUG") == "" && os.Getenv("DEVELOPMENT") == "" && os.Getenv("DEV_MODE") == "" {
		return true
	}

	return false
}

// IsProduction reports whether the handler detected a production environment.
func (h *Handler) IsProduction() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.production
}

// SafeErrorMessage returns a message safe to show a caller. In development it
// passes the original error through unchanged; in production it returns a
// generic "<context> failed [Error ID: xxxxxxxx]" string and stores the full
// detail in the handler's registry for later lookup by ID.
func (h *Handler) SafeErrorMessage(err error, context string, includeType bool) string {
	if context == "" {
		context = "operation"
	}

	h.mu.Lock()
	production := h.production
	h.mu.Unlock()

	if !production {
		return fmt.Sprintf("%s failed: %s", context, err.Error())
	}

	id := h.generateErrorID()
	msg := fmt.Sprintf("%s failed", context)
	if includeType {
		msg += fmt.Sprintf(" (%s)", errorKind(err))
	}
	msg += fmt.Sprintf(" [Error ID: %s]", id)

	h.recordError(id, err)
	return msg
}

func errorKind(err error) string {
	return fmt.Sprintf("%T", err)
}

func (h *Handler) generateErrorID() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func (h *Handler) recordError(id string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.registry[id] = err.Error()
}

// GetErrorByID returns the full error text previously recorded under id, for
// authorized debugging.
func (h *Handler) GetErrorByID(id string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	v, ok := h.registry[id]
	return v, ok
}

// SanitizePath collapses a path to its base name in production; it is a
// no-op in development.
func (h *Handler) SanitizePath(path string) string {
	if !h.IsProduction() {
		return path
	}
	return filepath.Base(path)
}

var (
	stackFramePattern = regexp.MustCompile(`File "[^"]+", line \d+`)
	unixPathPattern   = regexp.MustCompile(`/\S+`)
	winPathPattern    = regexp.MustCompile(`[A-Z]:\\\S+`)

	sensitivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)api[_-]?keys?["']?\s*[:=]\s*["']?\S+`),
		regexp.MustCompile(`(?i)password["']?\s*[:=]\s*["']?\S+`),
		regexp.MustCompile(`(?i)secret["']?\s*[:=]\s*["']?\S+`),
		regexp.MustCompile(`(?i)token["']?\s*[:=]\s*["']?\S+`),
		regexp.MustCompile(`(?i)secret\s+\w+`),
		regexp.MustCompile(`(?i)\w*secret\w*`),
		regexp.MustCompile(`sk-[a-zA-Z0-9]+`),
	}
)

// SanitizeErrorString strips file paths, stack frames, and secret-shaped
// substrings out of a raw error string. Used both standalone and as part of
// SanitizeDetails.
func (h *Handler) SanitizeErrorString(s string) string {
	s = stackFramePattern.ReplaceAllString(s, "File [path], line [number]")
	s = unixPathPattern.ReplaceAllString(s, "[path]")
	s = winPathPattern.ReplaceAllString(s, "[path]")
	for _, p := range sensitivePatterns {
		s = p.ReplaceAllString(s, "[redacted]")
	}
	return s
}

// redactedKeys are detail keys whose values are always fully redacted rather
// than pattern-scrubbed.
var redactedKeys = map[string]bool{
	"stack_trace": true,
	"api_key":     true,
	"password":    true,
	"secret":      true,
	"token":       true,
}

// safeKeys pass through untouched — they never carry sensitive content.
var safeKeys = map[string]bool{
	"error_id":  true,
	"timestamp": true,
	"context":   true,
}

// SanitizeDetails sanitizes a details map the same way error_handling.py's
// sanitize_error_details does: safe keys pass through, "error" strings and
// path-like keys are scrubbed, fully sensitive keys are redacted, everything
// else either gets string-sanitized or replaced with a placeholder.
func (h *Handler) SanitizeDetails(details map[string]interface{}) map[string]interface{} {
	if !h.IsProduction() {
		return details
	}

	out := make(map[string]interface{}, len(details))
	for key, value := range details {
		lowerKey := strings.ToLower(key)
		switch {
		case safeKeys[lowerKey]:
			out[key] = value
		case lowerKey == "error":
			if s, ok := value.(string); ok {
				out[key] = h.SanitizeErrorString(s)
			} else {
				out[key] = "[redacted]"
			}
		case strings.Contains(lowerKey, "path"):
			if s, ok := value.(string); ok {
				out[key] = h.SanitizePath(s)
			} else {
				out[key] = "[redacted]"
			}
		case redactedKeys[lowerKey]:
			out[key] = "[redacted]"
		default:
			if s, ok := value.(string); ok {
				out[key] = h.SanitizeErrorString(s)
			} else {
				out[key] = "[redacted]"
			}
		}
	}
	return out
}
