package conversation

import (
	"testing"
	"time"
)

func TestAddExchangeThenHistory(t *testing.T) {
	c := HumanAI("user-1")

	if err := c.AddExchange("hello", "hi there"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.GetTurnCount() != 1 {
		t.Fatalf("expected 1 turn, got %d", c.GetTurnCount())
	}

	history := c.GetHistory(0)
	if len(history) != 1 || history[0].Prompt != "hello" || *history[0].Response != "hi there" {
		t.Fatalf("unexpected history: %+v", history)
	}
}

func TestAddPromptThenAddResponse(t *testing.T) {
	c := HumanAI("user-1")

	if err := c.AddPrompt("question"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.GetIncompleteTurns()) != 1 {
		t.Fatal("expected one incomplete turn")
	}

	if err := c.AddResponse("answer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.GetIncompleteTurns()) != 0 {
		t.Fatal("expected zero incomplete turns after response")
	}
	if len(c.GetCompleteTurns()) != 1 {
		t.Fatal("expected one complete turn")
	}
}

func TestAddResponseWithoutPendingTurnFails(t *testing.T) {
	c := HumanAI("user-1")
	if err := c.AddResponse("orphan"); err == nil {
		t.Fatal("expected error when there is no trailing incomplete turn")
	}
}

func TestToJSONFromJSONRoundTrip(t *testing.T) {
	c := HumanAI("user-1")
	_ = c.AddExchange("a", "b")
	_ = c.AddExchange("c", "d")

	data, err := c.ToJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	restored, err := FromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if restored.GetTurnCount() != 2 {
		t.Fatalf("expected 2 turns after round trip, got %d", restored.GetTurnCount())
	}
}

func TestLimitsCheckerRejectsAddTurn(t *testing.T) {
	c := HumanAI("user-1")
	c.SetLimitsChecker(rejectingChecker{})

	if err := c.AddExchange("x", "y"); err == nil {
		t.Fatal("expected the configured limits checker to reject the turn")
	}
}

type rejectingChecker struct{}

func (rejectingChecker) ValidateConversationUsage(turnCount int, memoryUsageMB float64, createdAt time.Time) error {
	return errAlways
}

var errAlways = &testError{"limit exceeded"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
