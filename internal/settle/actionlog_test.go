package settle

import (
	"testing"

	"poker-platform/internal/game"
)

func TestLeafHashDeterministicOverSameRecords(t *testing.T) {
	records := []game.MultiActionRecord{
		{PlayerID: "p1", Action: game.ActionCall, Amount: 10, Phase: game.PhasePreflop, TimestampMs: 1000},
		{PlayerID: "p2", Action: game.ActionRaise, Amount: 30, Phase: game.PhaseFlop, TimestampMs: 2000},
	}
	h1 := LeafHash(records)
	h2 := LeafHash(records)
	if h1 != h2 {
		t.Fatal("expected LeafHash to be deterministic over identical records")
	}
}

func TestLeafHashDiffersOnContentChange(t *testing.T) {
	base := []game.MultiActionRecord{
		{PlayerID: "p1", Action: game.ActionCall, Amount: 10, Phase: game.PhasePreflop, TimestampMs: 1000},
	}
	changed := []game.MultiActionRecord{
		{PlayerID: "p1", Action: game.ActionCall, Amount: 11, Phase: game.PhasePreflop, TimestampMs: 1000},
	}
	if LeafHash(base) == LeafHash(changed) {
		t.Fatal("expected differing action amounts to produce differing leaf hashes")
	}
}

func TestLeafHashEmptyRecordsIsStable(t *testing.T) {
	h1 := LeafHash(nil)
	h2 := LeafHash([]game.MultiActionRecord{})
	if h1 != h2 {
		t.Fatal("expected empty action records to hash identically regardless of nil vs empty slice")
	}
}
