package game

import "testing"

func TestThreeWayAllInSidePots(t *testing.T) {
	a := &Seat{Index: 0, PlayerID: "A", Status: SeatAllIn, BetThisHand: 300}
	b := &Seat{Index: 1, PlayerID: "B", Status: SeatAllIn, BetThisHand: 200}
	c := &Seat{Index: 2, PlayerID: "C", Status: SeatAllIn, BetThisHand: 100}
	state := &TableState{Seats: []*Seat{a, b, c}}

	pots := computeSidePots(state)
	if len(pots) != 3 {
		t.Fatalf("expected 3 pots, got %d: %+v", len(pots), pots)
	}

	var total int64
	for _, p := range pots {
		total += p.Amount
	}
	if total != 600 {
		t.Fatalf("expected pots to sum to 600, got %d", total)
	}

	if pots[0].Amount != 300 || len(pots[0].Eligible) != 3 {
		t.Fatalf("expected first pot {300, {A,B,C}}, got %+v", pots[0])
	}
	if pots[1].Amount != 200 || len(pots[1].Eligible) != 2 || !pots[1].Eligible["A"] || !pots[1].Eligible["B"] {
		t.Fatalf("expected second pot {200, {A,B}}, got %+v", pots[1])
	}
	if pots[2].Amount != 100 || len(pots[2].Eligible) != 1 || !pots[2].Eligible["A"] {
		t.Fatalf("expected third pot {100, {A}}, got %+v", pots[2])
	}
}

func TestSidePotEligibilityShrinksMonotonically(t *testing.T) {
	a := &Seat{Index: 0, PlayerID: "A", Status: SeatAllIn, BetThisHand: 300}
	b := &Seat{Index: 1, PlayerID: "B", Status: SeatAllIn, BetThisHand: 200}
	c := &Seat{Index: 2, PlayerID: "C", Status: SeatAllIn, BetThisHand: 100}
	state := &TableState{Seats: []*Seat{a, b, c}}

	pots := computeSidePots(state)
	for i := 1; i < len(pots); i++ {
		for pid := range pots[i].Eligible {
			if !pots[i-1].Eligible[pid] {
				t.Fatalf("pot %d eligible set is not a subset of pot %d's", i, i-1)
			}
		}
	}
}

func TestSidePotExcludesFoldedContribution(t *testing.T) {
	a := &Seat{Index: 0, PlayerID: "A", Status: SeatFolded, BetThisHand: 50}
	b := &Seat{Index: 1, PlayerID: "B", Status: SeatAllIn, BetThisHand: 100}
	state := &TableState{Seats: []*Seat{a, b}}

	pots := computeSidePots(state)
	if len(pots) != 1 {
		t.Fatalf("expected 1 pot (both levels are eligible only to B and merge), got %d: %+v", len(pots), pots)
	}
	if pots[0].Amount != 150 {
		t.Fatalf("expected pot amount 150 (A's 50 dead money + B's 100), got %d", pots[0].Amount)
	}
	if len(pots[0].Eligible) != 1 || !pots[0].Eligible["B"] {
		t.Fatalf("expected only B eligible since A folded, got %+v", pots[0].Eligible)
	}
}

func TestMergeConsecutivePotsWithSameEligibility(t *testing.T) {
	pots := []Pot{
		{Amount: 100, Eligible: map[string]bool{"A": true, "B": true}},
		{Amount: 50, Eligible: map[string]bool{"A": true, "B": true}},
		{Amount: 30, Eligible: map[string]bool{"A": true}},
	}
	merged := mergeConsecutivePots(pots)
	if len(merged) != 2 {
		t.Fatalf("expected 2 pots after merge, got %d: %+v", len(merged), merged)
	}
	if merged[0].Amount != 150 {
		t.Fatalf("expected merged first pot amount 150, got %d", merged[0].Amount)
	}
}

func TestComputeSidePotsEmptyWhenNoContributions(t *testing.T) {
	a := &Seat{Index: 0, PlayerID: "A", Status: SeatActive}
	state := &TableState{Seats: []*Seat{a}}
	if pots := computeSidePots(state); pots != nil {
		t.Fatalf("expected no pots with zero contributions, got %+v", pots)
	}
}
