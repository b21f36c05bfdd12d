package agent

import "poker-platform/internal/game"

// fallbackCascade maps an illegal or unavailable action onto the next
// best legal one, per the registry's decision-validation rules.
var fallbackCascade = map[game.PlayerAction][]game.PlayerAction{
	game.ActionRaise: {game.ActionCall, game.ActionCheck, game.ActionFold},
	game.ActionCall:  {game.ActionCheck, game.ActionFold},
	game.ActionCheck: {game.ActionCall, game.ActionFold},
	game.ActionAllIn: {game.ActionCall, game.ActionCheck, game.ActionFold},
}

func containsAction(actions []game.PlayerAction, a game.PlayerAction) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

func clampInt64(v, lo, hi int64) int64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// validateDecision maps the raw decision onto a legal action/amount
// pair for view, applying the fallback cascade and amount clamping.
func validateDecision(view game.PlayerView, d Decision) Decision {
	action := d.Action
	if !containsAction(view.ValidActions, action) {
		action = game.ActionFold
		for _, next := range fallbackCascade[d.Action] {
			if containsAction(view.ValidActions, next) {
				action = next
				break
			}
		}
		if !containsAction(view.ValidActions, action) && containsAction(view.ValidActions, game.ActionFold) {
			action = game.ActionFold
		}
	}

	amount := int64(0)
	switch action {
	case game.ActionCall:
		amount = view.CallAmount
	case game.ActionRaise:
		amount = clampInt64(d.Amount, view.MinRaiseAmount, view.MaxRaiseAmount)
	case game.ActionAllIn:
		amount = view.MaxRaiseAmount
	}

	return Decision{Action: action, Amount: amount, Reasoning: d.Reasoning}
}

// parseDecisionAction maps an incoming action string, defaulting to
// FOLD for anything unrecognised so validateDecision always has a
// concrete starting point to fall back from.
func parseDecisionAction(s string) game.PlayerAction {
	a, ok := game.ParsePlayerAction(s)
	if !ok {
		return game.ActionFold
	}
	return a
}
