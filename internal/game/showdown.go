package game

import (
	"poker-platform/pkg/card"
	"poker-platform/pkg/handeval"
)

// foldWinShares awards every pot to the single remaining seat when
// all others have folded before showdown, per §4.4's short-circuit.
func foldWinShares(state *TableState) []WinnerShare {
	inHand := inHandSeats(state)
	if len(inHand) != 1 {
		return nil
	}
	winner := inHand[0]

	var total int64
	for _, p := range state.Pots {
		total += p.Amount
	}
	winner.Stack += total

	return []WinnerShare{{
		PlayerID:    winner.PlayerID,
		PlayerName:  winner.PlayerName,
		Amount:      total,
		Description: "Opponents folded",
	}}
}

// resolveShowdown evaluates every non-folded seat's best hand and
// distributes each pot to its winner(s), mutating seat stacks and
// returning the per-winner shares for the HandResult.
func resolveShowdown(state *TableState) ([]WinnerShare, error) {
	hands := make(map[string]handeval.EvaluatedHand)
	for _, s := range state.Seats {
		if s.Status == SeatFolded || s.isEmpty() || len(s.HoleCards) != 2 {
			continue
		}
		combined := append(append([]card.Card{}, s.HoleCards...), state.CommunityCards...)
		h, err := handeval.Evaluate(combined)
		if err != nil {
			return nil, err
		}
		hands[s.PlayerID] = h
	}

	shares := make(map[string]*WinnerShare)
	order := make([]string, 0, len(hands))

	for _, pot := range state.Pots {
		var contenders []string
		for pid := range pot.Eligible {
			if _, ok := hands[pid]; ok {
				contenders = append(contenders, pid)
			}
		}
		if len(contenders) == 0 {
			continue
		}

		best := hands[contenders[0]]
		winners := []string{contenders[0]}
		for _, pid := range contenders[1:] {
			h := hands[pid]
			switch handeval.CompareHands(h, best) {
			case 1:
				best = h
				winners = []string{pid}
			case 0:
				winners = append(winners, pid)
			}
		}

		share := pot.Amount / int64(len(winners))
		remainder := pot.Amount % int64(len(winners))
		for i, pid := range winners {
			amount := share
			if i == 0 {
				amount += remainder
			}
			seatForPlayer(state, pid).Stack += amount

			if existing, ok := shares[pid]; ok {
				existing.Amount += amount
			} else {
				seat := seatForPlayer(state, pid)
				shares[pid] = &WinnerShare{
					PlayerID:    pid,
					PlayerName:  seat.PlayerName,
					Amount:      amount,
					Description: best.Description,
				}
				order = append(order, pid)
			}
		}
	}

	result := make([]WinnerShare, 0, len(order))
	for _, pid := range order {
		result = append(result, *shares[pid])
	}
	return result, nil
}

func seatForPlayer(state *TableState, playerID string) *Seat {
	for _, s := range state.Seats {
		if s.PlayerID == playerID {
			return s
		}
	}
	return nil
}
