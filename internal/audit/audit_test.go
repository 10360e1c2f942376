package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAsyncFlushWritesEventsInOrder(t *testing.T) {
	t.Setenv("DEV", "1")
	dir := t.TempDir()
	dest := filepath.Join(dir, "audit.log")

	trail, err := Enable(Config{
		Destination:   dest,
		RedactPIISet:  true,
		RedactPII:     false,
		BufferSize:    5,
		BatchSize:     5,
		FlushInterval: 200 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	defer trail.Close()

	for i := 0; i < 7; i++ {
		trail.LogPrompt("prompt-"+string(rune('a'+i)), "req-1", "user-1", "", "")
	}

	time.Sleep(700 * time.Millisecond)

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}

	lines := splitNonEmptyLines(string(data))
	// one extra line for the audit_trail_enabled event emitted by Enable.
	if len(lines) < 7 {
		t.Fatalf("expected at least 7 lines, got %d: %q", len(lines), string(data))
	}

	stats, _ := trail.GetStats()
	if stats.Queued < 7 {
		t.Fatalf("expected queued >= 7, got %d", stats.Queued)
	}
	if stats.Dropped != 0 {
		t.Fatalf("expected zero drops under normal operation, got %d", stats.Dropped)
	}

	var prompts []string
	for _, line := range lines {
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("line not valid JSON: %v: %q", err, line)
		}
		if ev.EventType == EventUserPrompt {
			prompts = append(prompts, ev.Prompt)
		}
	}
	if len(prompts) != 7 {
		t.Fatalf("expected 7 prompt events, got %d: %v", len(prompts), prompts)
	}
	for i, p := range prompts {
		if want := "prompt-" + string(rune('a'+i)); p != want {
			t.Fatalf("prompt event %d out of order: got %q, want %q", i, p, want)
		}
	}
}

func TestQueryFiltersByConversationID(t *testing.T) {
	t.Setenv("DEV", "1")
	dir := t.TempDir()
	dest := filepath.Join(dir, "audit.log")

	trail, err := Enable(Config{Destination: dest, RedactPIISet: true, RedactPII: false, BatchSize: 1, FlushInterval: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	defer trail.Close()

	trail.LogPrompt("hello", "req-1", "user-1", "", "conv-a")
	trail.LogPrompt("world", "req-2", "user-2", "", "conv-b")

	time.Sleep(200 * time.Millisecond)

	records, err := trail.Query(Filter{ConversationID: "conv-a"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(records) != 1 || records[0].Prompt != "hello" {
		t.Fatalf("unexpected query result: %+v", records)
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	t.Setenv("DEV", "1")
	dir := t.TempDir()
	dest := filepath.Join(dir, "audit.log")

	trail, err := Enable(Config{Destination: dest, RedactPIISet: true, RedactPII: false, BatchSize: 1, FlushInterval: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	defer trail.Close()

	trail.LogPrompt("one", "r1", "u1", "", "")
	trail.LogPrompt("two", "r2", "u1", "", "")
	time.Sleep(200 * time.Millisecond)

	exportPath := filepath.Join(dir, "export.json")
	count, err := trail.ExportJSON(Filter{UserID: "u1"}, exportPath)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	var decoded []Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(decoded) != count {
		t.Fatalf("total_records mismatch: export has %d, reported %d", len(decoded), count)
	}
}

func TestRedactPIIMasksEmailAndSSN(t *testing.T) {
	out := redactPII("Contact me at person@example.com or SSN 123-45-6789")
	if out == "Contact me at person@example.com or SSN 123-45-6789" {
		t.Fatal("expected PII to be redacted")
	}
}

func splitNonEmptyLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if line := s[start:i]; line != "" {
				out = append(out, line)
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
