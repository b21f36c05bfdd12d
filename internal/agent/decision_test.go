package agent

import (
	"testing"

	"poker-platform/internal/game"
)

func viewWith(valid []game.PlayerAction, callAmt, minRaise, maxRaise int64) game.PlayerView {
	return game.PlayerView{
		ValidActions:   valid,
		CallAmount:     callAmt,
		MinRaiseAmount: minRaise,
		MaxRaiseAmount: maxRaise,
	}
}

func TestValidateDecisionPassesThroughLegalAction(t *testing.T) {
	view := viewWith([]game.PlayerAction{game.ActionFold, game.ActionCall, game.ActionRaise}, 50, 100, 1000)
	got := validateDecision(view, Decision{Action: game.ActionCall})
	if got.Action != game.ActionCall || got.Amount != 50 {
		t.Fatalf("expected CALL clamped to callAmount 50, got %+v", got)
	}
}

func TestValidateDecisionClampsOversizedRaise(t *testing.T) {
	view := viewWith([]game.PlayerAction{game.ActionFold, game.ActionCall, game.ActionRaise}, 50, 100, 1000)
	got := validateDecision(view, Decision{Action: game.ActionRaise, Amount: 999999})
	if got.Action != game.ActionRaise || got.Amount != 1000 {
		t.Fatalf("expected RAISE clamped to maxRaiseAmount 1000, got %+v", got)
	}
}

func TestValidateDecisionFallsBackRaiseToCall(t *testing.T) {
	view := viewWith([]game.PlayerAction{game.ActionFold, game.ActionCall}, 50, 100, 1000)
	got := validateDecision(view, Decision{Action: game.ActionRaise, Amount: 200})
	if got.Action != game.ActionCall || got.Amount != 50 {
		t.Fatalf("expected fallback to CALL, got %+v", got)
	}
}

func TestValidateDecisionFallsBackThroughToFold(t *testing.T) {
	view := viewWith([]game.PlayerAction{game.ActionFold}, 50, 100, 1000)
	got := validateDecision(view, Decision{Action: game.ActionRaise, Amount: 200})
	if got.Action != game.ActionFold {
		t.Fatalf("expected fallback all the way to FOLD, got %+v", got)
	}
}

func TestValidateDecisionCheckFallsBackToCall(t *testing.T) {
	view := viewWith([]game.PlayerAction{game.ActionFold, game.ActionCall}, 20, 40, 1000)
	got := validateDecision(view, Decision{Action: game.ActionCheck})
	if got.Action != game.ActionCall || got.Amount != 20 {
		t.Fatalf("expected CHECK to fall back to CALL, got %+v", got)
	}
}

func TestValidateDecisionAllInUsesMaxRaise(t *testing.T) {
	view := viewWith([]game.PlayerAction{game.ActionFold, game.ActionAllIn}, 500, 500, 500)
	got := validateDecision(view, Decision{Action: game.ActionAllIn})
	if got.Amount != 500 {
		t.Fatalf("expected ALL_IN amount to equal remaining stack 500, got %d", got.Amount)
	}
}

func TestParseDecisionActionUnknownDefaultsToFold(t *testing.T) {
	if got := parseDecisionAction("not-a-real-action"); got != game.ActionFold {
		t.Fatalf("expected unknown action string to default to FOLD, got %s", got)
	}
}
