package errsanitize

import (
	"errors"
	"os"
	"strings"
	"testing"
)

func withProductionEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENVIRONMENT", "production")
}

func TestSafeErrorMessageDevelopmentPassesThrough(t *testing.T) {
	h := New()
	h.production = false

	err := errors.New("disk failure at /home/alice/secret.txt")
	msg := h.SafeErrorMessage(err, "loading config", false)

	if !strings.Contains(msg, "/home/alice/secret.txt") {
		t.Fatalf("expected development message to include raw detail, got %q", msg)
	}
}

func TestSafeErrorMessageProductionSanitizes(t *testing.T) {
	withProductionEnv(t)
	h := New()
	h.production = true

	err := errors.New("failed reading /home/alice/.ssh/id_rsa with sk-abc123XYZ")
	msg := h.SafeErrorMessage(err, "loading config", false)

	if strings.Contains(msg, "/home/alice") || strings.Contains(msg, "sk-abc123XYZ") {
		t.Fatalf("production message leaked sensitive content: %q", msg)
	}
	if !strings.Contains(msg, "loading config failed") || !strings.Contains(msg, "[Error ID:") {
		t.Fatalf("production message missing expected shape: %q", msg)
	}

	// Error ID must be exactly 8 hex characters.
	idx := strings.Index(msg, "[Error ID: ")
	id := msg[idx+len("[Error ID: ") : len(msg)-1]
	if len(id) != 8 {
		t.Fatalf("expected 8-char error id, got %q", id)
	}

	if full, ok := h.GetErrorByID(id); !ok || !strings.Contains(full, "sk-abc123XYZ") {
		t.Fatalf("expected full error retrievable by id, got %q ok=%v", full, ok)
	}
}

func TestSanitizeErrorStringStripsSecrets(t *testing.T) {
	h := New()
	h.production = true

	out := h.SanitizeErrorString(`token="abcd1234" at /usr/local/bin/app, File "app.py", line 42`)
	for _, leak := range []string{"abcd1234", "/usr/local", "line 42"} {
		if strings.Contains(out, leak) {
			t.Fatalf("sanitized string still contains %q: %q", leak, out)
		}
	}
}

func TestSanitizeDetailsRedactsSensitiveKeys(t *testing.T) {
	h := New()
	h.production = true

	in := map[string]interface{}{
		"error_id": "abcd1234",
		"api_key":  "sk-real-key",
		"path":     "/home/bob/file.txt",
		"note":     "plain text",
	}
	out := h.SanitizeDetails(in)

	if out["error_id"] != "abcd1234" {
		t.Fatalf("safe key was altered: %v", out["error_id"])
	}
	if out["api_key"] != "[redacted]" {
		t.Fatalf("sensitive key not redacted: %v", out["api_key"])
	}
	if out["path"] != "file.txt" {
		t.Fatalf("path not collapsed to basename: %v", out["path"])
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
