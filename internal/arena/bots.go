package arena

import (
	"poker-platform/internal/game"
	"poker-platform/pkg/rng"
)

// Archetype is a fixed bot personality drawn round-robin when an
// arena table is filled out with bots.
type Archetype int8

const (
	ArchetypeTightPassive Archetype = iota
	ArchetypeTightAggressive
	ArchetypeLoosePassive
	ArchetypeLooseAggressive
	ArchetypeRandom
)

func (a Archetype) String() string {
	names := [...]string{"TIGHT_PASSIVE", "TIGHT_AGGRESSIVE", "LOOSE_PASSIVE", "LOOSE_AGGRESSIVE", "RANDOM"}
	if int(a) < len(names) {
		return names[a]
	}
	return "UNKNOWN"
}

// Archetypes lists every archetype in round-robin assignment order.
var Archetypes = []Archetype{
	ArchetypeTightPassive,
	ArchetypeTightAggressive,
	ArchetypeLoosePassive,
	ArchetypeLooseAggressive,
	ArchetypeRandom,
}

// actionWeights assigns a relative weight to each candidate action
// for a single archetype/phase combination.
type actionWeights struct {
	fold, check, call, raise float64
}

// phaseWeights holds one actionWeights per betting phase; index with
// phaseWeightIndex.
type phaseWeights [4]actionWeights

func phaseWeightIndex(phase game.GamePhase) int {
	switch phase {
	case game.PhasePreflop:
		return 0
	case game.PhaseFlop:
		return 1
	case game.PhaseTurn:
		return 2
	default:
		return 3
	}
}

var archetypeWeights = map[Archetype]phaseWeights{
	ArchetypeTightPassive: {
		{fold: 6, check: 3, call: 2, raise: 0.2},
		{fold: 5, check: 4, call: 2, raise: 0.2},
		{fold: 5, check: 4, call: 2, raise: 0.2},
		{fold: 5, check: 4, call: 2, raise: 0.2},
	},
	ArchetypeTightAggressive: {
		{fold: 5, check: 1, call: 1, raise: 2},
		{fold: 4, check: 1, call: 1, raise: 2.5},
		{fold: 3, check: 1, call: 1, raise: 3},
		{fold: 3, check: 1, call: 1, raise: 3.5},
	},
	ArchetypeLoosePassive: {
		{fold: 1, check: 4, call: 5, raise: 0.3},
		{fold: 1, check: 4, call: 5, raise: 0.3},
		{fold: 1, check: 4, call: 5, raise: 0.3},
		{fold: 1, check: 4, call: 5, raise: 0.3},
	},
	ArchetypeLooseAggressive: {
		{fold: 1, check: 1, call: 2, raise: 4},
		{fold: 1, check: 1, call: 2, raise: 4.5},
		{fold: 1, check: 1, call: 2, raise: 5},
		{fold: 1, check: 1, call: 2, raise: 5.5},
	},
	ArchetypeRandom: {
		{fold: 1, check: 1, call: 1, raise: 1},
		{fold: 1, check: 1, call: 1, raise: 1},
		{fold: 1, check: 1, call: 1, raise: 1},
		{fold: 1, check: 1, call: 1, raise: 1},
	},
}

// raiseSizing returns the raise-to level an archetype prefers, given
// the minimum and maximum legal raise-to levels and the current pot.
func raiseSizing(a Archetype, pot, minRaiseTo, maxRaiseTo int64, draw float64) int64 {
	var target int64
	switch a {
	case ArchetypeTightAggressive:
		target = minRaiseTo
	case ArchetypeLooseAggressive:
		multiplier := 1.5 + draw*1.5 // 1.5x-3x pot
		target = int64(float64(pot) * multiplier)
	case ArchetypeRandom:
		span := maxRaiseTo - minRaiseTo
		if span > 0 {
			target = minRaiseTo + int64(draw*float64(span))
		} else {
			target = minRaiseTo
		}
	default:
		target = pot
	}
	if target < minRaiseTo {
		target = minRaiseTo
	}
	if target > maxRaiseTo {
		target = maxRaiseTo
	}
	return target
}

// BotDecider samples an action for an archetype bot from a PlayerView.
type BotDecider struct {
	source *rng.System
}

// NewBotDecider builds a decider backed by source. A nil source uses
// the process-wide default.
func NewBotDecider(source *rng.System) *BotDecider {
	if source == nil {
		source = rng.Default()
	}
	return &BotDecider{source: source}
}

func (b *BotDecider) randFloat() float64 {
	return float64(b.source.RandomUint64()%1_000_000) / 1_000_000.0
}

// Decide samples an action for archetype a given view, falling back
// through the cascade when the sampled action isn't currently legal.
func (b *BotDecider) Decide(a Archetype, view game.PlayerView) (game.PlayerAction, int64) {
	weights := archetypeWeights[a][phaseWeightIndex(view.Phase)]
	total := weights.fold + weights.check + weights.call + weights.raise
	draw := b.randFloat() * total

	action := game.ActionFold
	switch {
	case draw < weights.fold:
		action = game.ActionFold
	case draw < weights.fold+weights.check:
		action = game.ActionCheck
	case draw < weights.fold+weights.check+weights.call:
		action = game.ActionCall
	default:
		action = game.ActionRaise
	}

	if !containsAction(view.ValidActions, action) {
		action = fallbackFor(action, view.ValidActions)
	}

	amount := int64(0)
	switch action {
	case game.ActionCall:
		amount = view.CallAmount
	case game.ActionRaise:
		pot := potTotal(view)
		amount = raiseSizing(a, pot, view.MinRaiseAmount, view.MaxRaiseAmount, b.randFloat())
	case game.ActionAllIn:
		amount = view.MaxRaiseAmount
	}

	return action, amount
}

func potTotal(view game.PlayerView) int64 {
	var total int64
	for _, p := range view.Pots {
		total += p.Amount
	}
	if total == 0 {
		total = view.CurrentBet
	}
	return total
}

func containsAction(actions []game.PlayerAction, a game.PlayerAction) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

var botFallbackCascade = map[game.PlayerAction][]game.PlayerAction{
	game.ActionRaise: {game.ActionCall, game.ActionCheck, game.ActionFold},
	game.ActionCall:  {game.ActionCheck, game.ActionFold},
	game.ActionCheck: {game.ActionCall, game.ActionFold},
	game.ActionAllIn: {game.ActionCall, game.ActionCheck, game.ActionFold},
}

func fallbackFor(action game.PlayerAction, valid []game.PlayerAction) game.PlayerAction {
	for _, next := range botFallbackCascade[action] {
		if containsAction(valid, next) {
			return next
		}
	}
	return game.ActionFold
}
