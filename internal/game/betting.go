package game

// activeSeats returns seats with status ACTIVE (still owed a decision
// this street), in seat-index order.
func activeSeats(state *TableState) []*Seat {
	var out []*Seat
	for _, s := range state.Seats {
		if s.isActive() {
			out = append(out, s)
		}
	}
	return out
}

// inHandSeats returns seats still live in the hand: not folded, not
// empty, not sitting out (i.e. ACTIVE or ALL_IN).
func inHandSeats(state *TableState) []*Seat {
	var out []*Seat
	for _, s := range state.Seats {
		if s.isInHand() {
			out = append(out, s)
		}
	}
	return out
}

// callAmount returns how much more the seat must contribute to match
// the current bet.
func callAmount(state *TableState, seat *Seat) int64 {
	toCall := state.CurrentBet - seat.BetThisRound
	if toCall < 0 {
		return 0
	}
	return toCall
}

// minRaiseAmount returns the minimum legal raise-to level.
func minRaiseAmount(state *TableState) int64 {
	return state.CurrentBet + state.MinRaise
}

// maxRaiseAmount returns the maximum legal raise-to level (shove).
func maxRaiseAmount(state *TableState, seat *Seat) int64 {
	return seat.BetThisRound + seat.Stack
}

// validActions derives the legal actions for seat given the current
// betting state, per the §4.2 table.
func validActions(state *TableState, seat *Seat) []PlayerAction {
	toCall := callAmount(state, seat)
	actions := []PlayerAction{ActionFold}

	switch {
	case toCall <= 0:
		actions = append(actions, ActionCheck)
		if seat.Stack > 0 {
			actions = append(actions, ActionRaise)
		}
	case toCall >= seat.Stack:
		actions = append(actions, ActionAllIn)
	default:
		actions = append(actions, ActionCall)
		if seat.Stack > toCall {
			actions = append(actions, ActionRaise)
		}
		actions = append(actions, ActionAllIn)
	}
	return actions
}

func containsAction(actions []PlayerAction, a PlayerAction) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}

// clampInt64 restricts v to [lo, hi].
func clampInt64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// processAction mutates state and seat to apply a validated action,
// per the §4.2 process-action rules. The caller is responsible for
// turn/phase validation before calling this.
func processAction(state *TableState, seat *Seat, action PlayerAction, amount int64) error {
	allowed := validActions(state, seat)
	if !containsAction(allowed, action) {
		return &RulesError{SeatIndex: seat.Index, Action: action, Reason: "not a legal action for this seat"}
	}

	reopened := false

	switch action {
	case ActionFold:
		seat.Status = SeatFolded

	case ActionCheck:
		// no state change beyond hasActed below

	case ActionCall:
		contribution := minInt64(callAmount(state, seat), seat.Stack)
		seat.Stack -= contribution
		seat.BetThisRound += contribution
		seat.BetThisHand += contribution
		if seat.Stack == 0 {
			seat.Status = SeatAllIn
		}

	case ActionRaise:
		target := clampInt64(amount, minRaiseAmount(state), maxRaiseAmount(state, seat))
		if hi := maxRaiseAmount(state, seat); target > hi {
			target = hi
		}
		increment := target - seat.BetThisRound
		contribution := increment
		seat.Stack -= contribution
		seat.BetThisRound = target
		seat.BetThisHand += contribution
		if seat.Stack == 0 {
			seat.Status = SeatAllIn
		}
		raiseSize := target - state.CurrentBet
		if raiseSize >= state.MinRaise {
			state.MinRaise = raiseSize
			reopened = true
		}
		state.CurrentBet = target

	case ActionAllIn:
		contribution := seat.Stack
		newBet := seat.BetThisRound + contribution
		seat.Stack = 0
		seat.BetThisRound = newBet
		seat.BetThisHand += contribution
		seat.Status = SeatAllIn
		if newBet > state.CurrentBet {
			increment := newBet - state.CurrentBet
			if increment >= state.MinRaise {
				state.MinRaise = increment
				reopened = true
			}
			state.CurrentBet = newBet
		}
	}

	if reopened {
		for _, s := range state.Seats {
			if s.isActive() && s.Index != seat.Index {
				s.HasActed = false
			}
		}
	}
	seat.HasActed = true

	return nil
}

// isRoundComplete reports whether every ACTIVE seat has acted and
// matched the current bet.
func isRoundComplete(state *TableState) bool {
	actives := activeSeats(state)
	if len(actives) == 0 {
		return true
	}
	for _, s := range actives {
		if !(s.HasActed && s.BetThisRound >= state.CurrentBet) {
			return false
		}
	}
	return true
}

// isHandOverEarly reports whether at most one non-folded, non-empty,
// non-sitting-out seat remains.
func isHandOverEarly(state *TableState) bool {
	return len(inHandSeats(state)) <= 1
}

// shouldSkipToShowdown reports whether more than one seat remains in
// the hand but at most one of them still owes a decision (the rest
// are all-in).
func shouldSkipToShowdown(state *TableState) bool {
	inHand := inHandSeats(state)
	if len(inHand) <= 1 {
		return false
	}
	return len(activeSeats(state)) <= 1
}

// resetStreet zeroes per-street betting fields on ACTIVE and ALL_IN
// seats ahead of the next betting round.
func resetStreet(state *TableState) {
	for _, s := range state.Seats {
		if s.Status == SeatActive || s.Status == SeatAllIn {
			s.BetThisRound = 0
			s.HasActed = false
		}
	}
	state.CurrentBet = 0
	state.MinRaise = state.Config.BigBlind
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
