// ABOUTME: Tests for round-dropping curation and the response validator's marker classes.

package curate

import (
	"testing"

	"github.com/2389-research/bytecraft/core"
)

func TestCurateDropsRoundWithOnlyFailedAssistantTurns(t *testing.T) {
	turns := []core.Turn{
		core.NewTurn("s1", core.RoleUser, "do the thing"),
		core.NewTurn("s1", core.RoleAssistant, "[ERROR] could not comply"),
	}
	result := Curate(turns)
	if len(result.Turns) != 0 {
		t.Fatalf("expected both turns dropped, got %d", len(result.Turns))
	}
	if result.Stats.RoundsDropped != 1 {
		t.Fatalf("expected 1 round dropped, got %d", result.Stats.RoundsDropped)
	}
}

func TestCurateKeepsRoundWithAtLeastOneValidAssistantTurn(t *testing.T) {
	turns := []core.Turn{
		core.NewTurn("s1", core.RoleUser, "do the thing"),
		core.NewTurn("s1", core.RoleAssistant, "[ERROR] could not comply"),
		core.NewTurn("s1", core.RoleAssistant, "actually, here is a full working answer"),
	}
	result := Curate(turns)
	if len(result.Turns) != 3 {
		t.Fatalf("expected all 3 turns kept, got %d", len(result.Turns))
	}
	if result.Stats.RoundsDropped != 0 {
		t.Fatalf("expected 0 rounds dropped, got %d", result.Stats.RoundsDropped)
	}
}

func TestCuratePassesThroughSystemAndToolTurns(t *testing.T) {
	turns := []core.Turn{
		core.NewTurn("s1", core.RoleSystem, "you are a helpful assistant"),
		core.NewTurn("s1", core.RoleUser, "do the thing"),
		core.NewTurn("s1", core.RoleAssistant, "FAILED"),
	}
	result := Curate(turns)
	if len(result.Turns) != 1 || result.Turns[0].Type != core.RoleSystem {
		t.Fatalf("expected only the system turn to survive, got %+v", result.Turns)
	}
}

func TestCurateIsIdempotent(t *testing.T) {
	turns := []core.Turn{
		core.NewTurn("s1", core.RoleUser, "do the thing"),
		core.NewTurn("s1", core.RoleAssistant, "FAILED"),
		core.NewTurn("s1", core.RoleUser, "do another thing"),
		core.NewTurn("s1", core.RoleAssistant, "here is the full completed response"),
	}
	once := Curate(turns)
	twice := Curate(once.Turns)
	if len(once.Turns) != len(twice.Turns) {
		t.Fatalf("curate not idempotent: once=%d twice=%d", len(once.Turns), len(twice.Turns))
	}
}

func TestValidateRejectsTooShortContent(t *testing.T) {
	turn := core.NewTurn("s1", core.RoleAssistant, "ok")
	if ok, reason := Validate(turn); ok || reason != ReasonTooShort {
		t.Fatalf("expected ReasonTooShort, got ok=%v reason=%v", ok, reason)
	}
}

func TestValidateRejectsInProgressMarker(t *testing.T) {
	turn := core.NewTurn("s1", core.RoleAssistant, "Thinking... let me figure this out")
	if ok, reason := Validate(turn); ok || reason != ReasonInProgress {
		t.Fatalf("expected ReasonInProgress, got ok=%v reason=%v", ok, reason)
	}
}

func TestValidateRejectsInvalidJSONPrefix(t *testing.T) {
	turn := core.NewTurn("s1", core.RoleAssistant, "{not valid json at all")
	if ok, reason := Validate(turn); ok || reason != ReasonInvalidJSON {
		t.Fatalf("expected ReasonInvalidJSON, got ok=%v reason=%v", ok, reason)
	}
}

func TestValidateAcceptsValidJSON(t *testing.T) {
	turn := core.NewTurn("s1", core.RoleAssistant, `{"answer": "forty-two", "confidence": 0.9}`)
	if ok, _ := Validate(turn); !ok {
		t.Fatalf("expected valid JSON content to pass")
	}
}

func TestValidateRejectsPathologicalRepetition(t *testing.T) {
	content := "spam spam spam spam spam spam spam spam spam spam done"
	turn := core.NewTurn("s1", core.RoleAssistant, content)
	if ok, reason := Validate(turn); ok || reason != ReasonRepetition {
		t.Fatalf("expected ReasonRepetition, got ok=%v reason=%v", ok, reason)
	}
}

func TestValidateAcceptsOrdinaryResponse(t *testing.T) {
	turn := core.NewTurn("s1", core.RoleAssistant, "Here is a complete, well formed answer to your question.")
	if ok, reason := Validate(turn); !ok {
		t.Fatalf("expected ordinary response to pass, got reason=%v", reason)
	}
}
