// Postgres compliance-archive sink for the audit trail: batches Event rows
// into a single prepared-statement insert under one transaction per flush.
// Optional — wired in only when a Postgres URL is configured.
package audit

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresSink batches audit events into a "audit_events" table.
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink opens a connection pool against connectionURL and ensures
// the destination table exists.
func NewPostgresSink(connectionURL string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", connectionURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres audit sink: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres audit sink: %w", err)
	}

	const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id SERIAL PRIMARY KEY,
	ts TIMESTAMPTZ NOT NULL,
	event_type TEXT NOT NULL,
	request_id TEXT,
	user_id TEXT,
	session_id TEXT,
	conversation_id TEXT,
	prompt TEXT,
	response TEXT,
	guardrail_name TEXT,
	decision TEXT,
	reason TEXT,
	confidence DOUBLE PRECISION,
	rule_triggered TEXT
)`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("ensuring audit_events table: %w", err)
	}

	return &PostgresSink{db: db}, nil
}

// Write batches the given events into a single transaction, using a
// prepared statement the same way postgres.go's SaveRequestLogsBatch does.
func (s *PostgresSink) Write(events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning audit batch transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO audit_events
			(ts, event_type, request_id, user_id, session_id, conversation_id,
			 prompt, response, guardrail_name, decision, reason, confidence, rule_triggered)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`)
	if err != nil {
		return fmt.Errorf("preparing audit batch insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(
			ev.Timestamp, string(ev.EventType), ev.RequestID, ev.UserID, ev.SessionID, ev.ConversationID,
			ev.Prompt, ev.Response, ev.GuardrailName, string(ev.Decision), ev.Reason, ev.Confidence, ev.RuleTriggered,
		); err != nil {
			return fmt.Errorf("inserting audit event: %w", err)
		}
	}

	return tx.Commit()
}

// Close releases the underlying connection pool.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
