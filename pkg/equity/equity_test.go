package equity

import (
	"testing"

	"poker-platform/pkg/card"
	"poker-platform/pkg/rng"
)

func testSource(t *testing.T) *rng.System {
	t.Helper()
	sys, err := rng.NewSystemWithSeed([]byte("equity-test-seed-1234567890123"))
	if err != nil {
		t.Fatalf("rng.NewSystemWithSeed: %v", err)
	}
	return sys
}

func TestPocketAcesDominatesRandomHand(t *testing.T) {
	hero := []card.Card{card.New(card.RankA, card.SuitSpades), card.New(card.RankA, card.SuitHearts)}
	res, err := Estimate(testSource(t), hero, nil, 1, 1000)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.Equity < 0.7 {
		t.Fatalf("expected pocket aces to hold >70%% equity heads-up, got %f", res.Equity)
	}
}

func TestEquityDecreasesWithMoreOpponents(t *testing.T) {
	hero := []card.Card{card.New(card.RankA, card.SuitSpades), card.New(card.RankK, card.SuitSpades)}
	oneOpp, err := Estimate(testSource(t), hero, nil, 1, 1500)
	if err != nil {
		t.Fatalf("Estimate(1): %v", err)
	}
	fourOpp, err := Estimate(testSource(t), hero, nil, 4, 1500)
	if err != nil {
		t.Fatalf("Estimate(4): %v", err)
	}
	if fourOpp.Equity >= oneOpp.Equity {
		t.Fatalf("expected equity vs 4 opponents (%f) to be lower than vs 1 (%f)", fourOpp.Equity, oneOpp.Equity)
	}
}

func TestEstimateRejectsBadInput(t *testing.T) {
	source := testSource(t)
	if _, err := Estimate(source, []card.Card{card.New(card.RankA, card.SuitSpades)}, nil, 1, 100); err == nil {
		t.Fatal("expected error for single hero card")
	}
	hero := []card.Card{card.New(card.RankA, card.SuitSpades), card.New(card.RankK, card.SuitSpades)}
	if _, err := Estimate(source, hero, nil, 0, 100); err == nil {
		t.Fatal("expected error for zero opponents")
	}
	if _, err := Estimate(source, hero, nil, 6, 100); err == nil {
		t.Fatal("expected error for too many opponents")
	}
}

func TestEstimateWithFullBoard(t *testing.T) {
	hero := []card.Card{card.New(card.RankA, card.SuitSpades), card.New(card.RankA, card.SuitHearts)}
	community := []card.Card{
		card.New(card.RankA, card.SuitClubs), card.New(card.RankK, card.SuitDiamonds),
		card.New(card.Rank2, card.SuitClubs), card.New(card.Rank7, card.SuitHearts), card.New(card.Rank9, card.SuitSpades),
	}
	res, err := Estimate(testSource(t), hero, community, 1, 500)
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if res.Equity < 0.9 {
		t.Fatalf("expected trip aces on a dry board to dominate, got %f", res.Equity)
	}
}

func TestPotOdds(t *testing.T) {
	if got := PotOdds(0, 100); got != 0 {
		t.Fatalf("expected 0 pot odds for a free call, got %f", got)
	}
	if got := PotOdds(50, 50); got != 0.5 {
		t.Fatalf("expected 0.5 pot odds for call=pot, got %f", got)
	}
}
