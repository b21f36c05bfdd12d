package game

// buildClockwiseOrder returns the seat indices with status ACTIVE, in
// clockwise order starting at startIdx.
func buildClockwiseOrder(state *TableState, startIdx int) []int {
	n := len(state.Seats)
	var order []int
	for i := 0; i < n; i++ {
		idx := (startIdx + i) % n
		if state.Seats[idx].isActive() {
			order = append(order, idx)
		}
	}
	return order
}

// positionLabelsFor returns the §3 position labels for n active seats,
// in clockwise order starting at the dealer button.
func positionLabelsFor(n int) []Position {
	switch n {
	case 2:
		return []Position{PositionBTN, PositionBB}
	case 3:
		return []Position{PositionBTN, PositionSB, PositionBB}
	case 4:
		return []Position{PositionBTN, PositionSB, PositionBB, PositionCO}
	case 5:
		return []Position{PositionBTN, PositionSB, PositionBB, PositionUTG, PositionCO}
	case 6:
		return []Position{PositionBTN, PositionSB, PositionBB, PositionUTG, PositionUTG1, PositionCO}
	default:
		return nil
	}
}

func assignPositionsFromOrder(state *TableState, order []int) {
	labels := positionLabelsFor(len(order))
	for i, idx := range order {
		if i < len(labels) {
			state.Seats[idx].Position = labels[i]
		} else {
			state.Seats[idx].Position = PositionNone
		}
	}
}

// nextActiveSeatIndex finds the next ACTIVE seat clockwise from
// fromIdx, wrapping around the table. Returns fromIdx if none found.
func nextActiveSeatIndex(state *TableState, fromIdx int) int {
	n := len(state.Seats)
	for i := 1; i <= n; i++ {
		idx := (fromIdx + i) % n
		if state.Seats[idx].isActive() {
			return idx
		}
	}
	return fromIdx
}

func activeSeatIndices(state *TableState) []int {
	var out []int
	for i, s := range state.Seats {
		if s.isActive() {
			out = append(out, i)
		}
	}
	return out
}

// firstActorSeatIndex derives the first seat to act for phase, per
// §4.2: heads-up preflop the dealer/SB acts first; preflop with more
// than two dealt-in seats, first active clockwise from BB; postflop,
// first active clockwise from the dealer button. Seats that already
// folded or went all-in between deal and this call are skipped.
func firstActorSeatIndex(state *TableState, phase GamePhase) int {
	order := state.dealtInOrder
	n := len(order)
	if n == 0 {
		return -1
	}

	var startPos int
	if phase == PhasePreflop {
		if n == 2 {
			startPos = 0
		} else {
			startPos = 3 % n
		}
	} else {
		startPos = 1 % n
	}

	for i := 0; i < n; i++ {
		idx := order[(startPos+i)%n]
		if state.Seats[idx].isActive() {
			return idx
		}
	}
	return -1
}
