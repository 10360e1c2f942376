// Package conversation implements the ordered prompt/response turn model
// used by the conversation-aware prompt-injection detector and by
// conversation-scoped rate limiting.
package conversation

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn is one prompt-response exchange. Response is nil until the model has
// replied, making the turn "incomplete."
type Turn struct {
	Timestamp    time.Time              `json:"timestamp"`
	Prompt       string                 `json:"prompt"`
	Response     *string                `json:"response,omitempty"`
	Speaker      string                 `json:"speaker"`
	Listener     string                 `json:"listener"`
	SpeakerType  string                 `json:"speaker_type"`
	ListenerType string                 `json:"listener_type"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// Complete reports whether the turn has a response.
func (t Turn) Complete() bool { return t.Response != nil }

// RateLimitConfig configures the rolling windows used by CheckRateLimit.
type RateLimitConfig struct {
	TurnsPerMinute int
	TurnsPerHour   int
}

// LimitsChecker is satisfied by *validation.Validator; kept as a narrow
// interface here so this package does not import validation directly,
// avoiding a dependency the conversation model does not otherwise need.
type LimitsChecker interface {
	ValidateConversationUsage(turnCount int, memoryUsageMB float64, createdAt time.Time) error
}

// Conversation is an ordered, in-memory sequence of turns between two
// participants. All mutation is serialized by mu, matching the reference's
// per-conversation lock.
type Conversation struct {
	mu sync.Mutex

	ID           string
	Initiator    string
	Responder    string
	InitiatorTyp string
	ResponderTyp string
	ModelInfo    map[string]interface{}
	Metadata     map[string]interface{}
	Turns        []Turn
	CreatedAt    time.Time
	LastActivity time.Time

	rateLimit RateLimitConfig
	checker   LimitsChecker
}

// New creates a conversation between initiator and responder.
func New(initiator, initiatorType, responder, responderType string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:           uuid.New().String(),
		Initiator:    initiator,
		InitiatorTyp: initiatorType,
		Responder:    responder,
		ResponderTyp: responderType,
		Metadata:     make(map[string]interface{}),
		CreatedAt:    now,
		LastActivity: now,
		rateLimit:    RateLimitConfig{TurnsPerMinute: 60, TurnsPerHour: 600},
	}
}

// HumanAI is the classmethod equivalent of Conversation.human_ai.
func HumanAI(userID string) *Conversation {
	return New(userID, "human", "assistant", "ai")
}

// SetLimitsChecker wires an external validation.Validator-shaped checker
// used by AddTurn to enforce conversation-level resource limits.
func (c *Conversation) SetLimitsChecker(checker LimitsChecker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checker = checker
}

// estimateMemoryMB approximates (sum of UTF-8 lengths) * 1.5, converted to MB.
func (c *Conversation) estimateMemoryMB() float64 {
	var total int
	for _, t := range c.Turns {
		total += len(t.Prompt)
		if t.Response != nil {
			total += len(*t.Response)
		}
	}
	return float64(total) * 1.5 / (1024 * 1024)
}

// AddExchange appends a complete prompt+response turn in one call.
func (c *Conversation) AddExchange(prompt, response string) error {
	return c.AddTurn(prompt, &response)
}

// AddTurn appends a new turn, validating conversation limits first if a
// checker is configured.
func (c *Conversation) AddTurn(prompt string, response *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.checker != nil {
		if err := c.checker.ValidateConversationUsage(len(c.Turns)+1, c.estimateMemoryMB(), c.CreatedAt); err != nil {
			return err
		}
	}

	now := time.Now()
	c.Turns = append(c.Turns, Turn{
		Timestamp:    now,
		Prompt:       prompt,
		Response:     response,
		Speaker:      c.Initiator,
		Listener:     c.Responder,
		SpeakerType:  c.InitiatorTyp,
		ListenerType: c.ResponderTyp,
	})
	c.LastActivity = now
	return nil
}

// AddPrompt appends an incomplete turn (prompt only).
func (c *Conversation) AddPrompt(prompt string) error {
	return c.AddTurn(prompt, nil)
}

// AnnotateLastTurn attaches metadata to the most recently added turn. It is
// a no-op on an empty conversation. Used to record the guardrail verdict a
// turn's content produced, so a conversation-aware detector scoring a later
// turn (see the prompt-injection detector's context serialization) can see
// prior blocks/warnings instead of just the raw prompt/response text.
func (c *Conversation) AnnotateLastTurn(metadata map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Turns) == 0 {
		return
	}
	c.Turns[len(c.Turns)-1].Metadata = metadata
}

// AddResponse completes the trailing incomplete turn. It is an error to call
// this when there is no trailing incomplete turn.
func (c *Conversation) AddResponse(response string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.Turns) == 0 || c.Turns[len(c.Turns)-1].Complete() {
		return fmt.Errorf("add_response requires a trailing incomplete turn")
	}
	c.Turns[len(c.Turns)-1].Response = &response
	c.LastActivity = time.Now()
	return nil
}

// GetHistory returns up to limit most recent turns (all turns if limit <= 0).
func (c *Conversation) GetHistory(limit int) []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	if limit <= 0 || limit >= len(c.Turns) {
		out := make([]Turn, len(c.Turns))
		copy(out, c.Turns)
		return out
	}
	out := make([]Turn, limit)
	copy(out, c.Turns[len(c.Turns)-limit:])
	return out
}

// GetCompleteTurns returns only turns that have a response.
func (c *Conversation) GetCompleteTurns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Turn
	for _, t := range c.Turns {
		if t.Complete() {
			out = append(out, t)
		}
	}
	return out
}

// GetIncompleteTurns returns turns awaiting a response (at most one, by
// invariant, but the reference returns a list).
func (c *Conversation) GetIncompleteTurns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []Turn
	for _, t := range c.Turns {
		if !t.Complete() {
			out = append(out, t)
		}
	}
	return out
}

// GetTurnCount returns the number of turns.
func (c *Conversation) GetTurnCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Turns)
}

// GetDuration returns the elapsed time between creation and last activity.
func (c *Conversation) GetDuration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.LastActivity.Sub(c.CreatedAt)
}

// RateLimitAction is accepted by CheckRateLimit but does not change its
// result, and CheckRateLimit emits no log line for any action.
type RateLimitAction string

const (
	ActionBlock RateLimitAction = "block"
	ActionWarn  RateLimitAction = "warn"
	ActionLog   RateLimitAction = "log"
)

// RateLimitStatus is the result of CheckRateLimit.
type RateLimitStatus struct {
	Exceeded bool
	Reason   string
}

// CheckRateLimit evaluates the conversation's own turn-rate windows (60s,
// 3600s), independent of the process-wide ratelimit.Limiter.
func (c *Conversation) CheckRateLimit(action RateLimitAction) RateLimitStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var perMinute, perHour int
	for _, t := range c.Turns {
		if now.Sub(t.Timestamp) <= time.Minute {
			perMinute++
		}
		if now.Sub(t.Timestamp) <= time.Hour {
			perHour++
		}
	}

	var fired []string
	if c.rateLimit.TurnsPerMinute > 0 && perMinute >= c.rateLimit.TurnsPerMinute {
		fired = append(fired, "turns_per_minute")
	}
	if c.rateLimit.TurnsPerHour > 0 && perHour >= c.rateLimit.TurnsPerHour {
		fired = append(fired, "turns_per_hour")
	}

	if len(fired) == 0 {
		return RateLimitStatus{Exceeded: false}
	}

	reason := "conversation rate limit exceeded: "
	for i, w := range fired {
		if i > 0 {
			reason += ", "
		}
		reason += w
	}
	return RateLimitStatus{Exceeded: true, Reason: reason}
}

// SetRateLimit overrides the conversation's turn-rate windows.
func (c *Conversation) SetRateLimit(cfg RateLimitConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rateLimit = cfg
}

// dto is the JSON wire shape used by ToJSON/FromJSON (Go equivalent of
// to_dict/from_dict).
type dto struct {
	ID           string                 `json:"conversation_id"`
	Initiator    string                 `json:"initiator"`
	InitiatorTyp string                 `json:"initiator_type"`
	Responder    string                 `json:"responder"`
	ResponderTyp string                 `json:"responder_type"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Turns        []Turn                 `json:"turns"`
	CreatedAt    time.Time              `json:"created_at"`
	LastActivity time.Time              `json:"last_activity"`
}

// ToJSON serializes the conversation for round-trip persistence.
func (c *Conversation) ToJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return json.Marshal(dto{
		ID:           c.ID,
		Initiator:    c.Initiator,
		InitiatorTyp: c.InitiatorTyp,
		Responder:    c.Responder,
		ResponderTyp: c.ResponderTyp,
		Metadata:     c.Metadata,
		Turns:        c.Turns,
		CreatedAt:    c.CreatedAt,
		LastActivity: c.LastActivity,
	})
}

// FromJSON rebuilds a Conversation from ToJSON output.
func FromJSON(data []byte) (*Conversation, error) {
	var d dto
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding conversation: %w", err)
	}
	return &Conversation{
		ID:           d.ID,
		Initiator:    d.Initiator,
		InitiatorTyp: d.InitiatorTyp,
		Responder:    d.Responder,
		ResponderTyp: d.ResponderTyp,
		Metadata:     d.Metadata,
		Turns:        d.Turns,
		CreatedAt:    d.CreatedAt,
		LastActivity: d.LastActivity,
		rateLimit:    RateLimitConfig{TurnsPerMinute: 60, TurnsPerHour: 600},
	}, nil
}
