package arena

import "testing"

func TestInMemoryLeaderboardAccumulatesStats(t *testing.T) {
	lb := NewInMemoryLeaderboard()
	lb.RecordHand("p1", 100, true)
	lb.RecordHand("p1", -50, false)
	lb.RecordHand("p2", 50, true)

	snap := lb.Snapshot(SortByHands)
	if len(snap) != 2 {
		t.Fatalf("expected 2 tracked players, got %d", len(snap))
	}

	var p1 PlayerStats
	for _, s := range snap {
		if s.PlayerID == "p1" {
			p1 = s
		}
	}
	if p1.Hands != 2 || p1.Wins != 1 || p1.Profit != 50 {
		t.Fatalf("unexpected p1 stats: %+v", p1)
	}
}

func TestInMemoryLeaderboardSortsByProfit(t *testing.T) {
	lb := NewInMemoryLeaderboard()
	lb.RecordHand("low", 10, true)
	lb.RecordHand("high", 1000, true)

	snap := lb.Snapshot(SortByProfit)
	if snap[0].PlayerID != "high" {
		t.Fatalf("expected high-profit player first, got %+v", snap)
	}
}

func TestInMemoryLeaderboardSortsByWinRate(t *testing.T) {
	lb := NewInMemoryLeaderboard()
	lb.RecordHand("grinder", 5, true)
	lb.RecordHand("grinder", 5, true)
	lb.RecordHand("grinder", -5, false)
	lb.RecordHand("allstar", 5, true)

	snap := lb.Snapshot(SortByWinRate)
	if snap[0].PlayerID != "allstar" {
		t.Fatalf("expected the 100%% win-rate player first, got %+v", snap)
	}
}
