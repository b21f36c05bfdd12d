package game

import "sort"

// computeSidePots partitions the hand's contributions into side pots
// per §4.3: level boundaries are the distinct positive betThisHand
// values, and each pot's eligible set is every non-folded seat whose
// contribution reached that boundary. Consecutive pots with identical
// eligible sets are merged into one.
func computeSidePots(state *TableState) []Pot {
	boundarySet := make(map[int64]bool)
	for _, s := range state.Seats {
		if s.BetThisHand > 0 {
			boundarySet[s.BetThisHand] = true
		}
	}
	if len(boundarySet) == 0 {
		return nil
	}

	boundaries := make([]int64, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i] < boundaries[j] })

	var pots []Pot
	p := int64(0)
	for _, b := range boundaries {
		var amount int64
		eligible := make(map[string]bool)
		var eligibleOrder []string
		for _, s := range state.Seats {
			if s.isEmpty() {
				continue
			}
			contribution := clampLevel(s.BetThisHand, p, b)
			amount += contribution

			if s.BetThisHand >= b && s.Status != SeatFolded {
				if !eligible[s.PlayerID] {
					eligible[s.PlayerID] = true
					eligibleOrder = append(eligibleOrder, s.PlayerID)
				}
			}
		}
		if amount > 0 && len(eligible) > 0 {
			pots = append(pots, Pot{Amount: amount, Eligible: eligible, PlayerIDs: eligibleOrder})
		}
		p = b
	}

	return mergeConsecutivePots(pots)
}

func clampLevel(betThisHand, p, b int64) int64 {
	upper := minInt64(betThisHand, b)
	lower := minInt64(betThisHand, p)
	contribution := upper - lower
	if contribution < 0 {
		return 0
	}
	return contribution
}

// mergeConsecutivePots folds adjacent pots with identical eligible
// player sets into a single pot, preserving iteration order.
func mergeConsecutivePots(pots []Pot) []Pot {
	if len(pots) == 0 {
		return pots
	}
	merged := []Pot{pots[0]}
	for _, p := range pots[1:] {
		last := &merged[len(merged)-1]
		if sameEligible(last.Eligible, p.Eligible) {
			last.Amount += p.Amount
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

func sameEligible(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
