package handeval

import (
	"testing"

	"poker-platform/pkg/card"
)

func mustEval(t *testing.T, cards []card.Card) EvaluatedHand {
	t.Helper()
	h, err := Evaluate(cards)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return h
}

func c(rank card.Rank, suit card.Suit) card.Card { return card.New(rank, suit) }

func TestCategories(t *testing.T) {
	cases := []struct {
		name  string
		cards []card.Card
		want  Category
	}{
		{
			"royal flush",
			[]card.Card{c(card.RankA, card.SuitSpades), c(card.RankK, card.SuitSpades), c(card.RankQ, card.SuitSpades), c(card.RankJ, card.SuitSpades), c(card.Rank10, card.SuitSpades)},
			StraightFlush,
		},
		{
			"wheel straight flush",
			[]card.Card{c(card.RankA, card.SuitHearts), c(card.Rank2, card.SuitHearts), c(card.Rank3, card.SuitHearts), c(card.Rank4, card.SuitHearts), c(card.Rank5, card.SuitHearts)},
			StraightFlush,
		},
		{
			"quads",
			[]card.Card{c(card.RankK, card.SuitClubs), c(card.RankK, card.SuitDiamonds), c(card.RankK, card.SuitHearts), c(card.RankK, card.SuitSpades), c(card.Rank2, card.SuitSpades)},
			FourOfAKind,
		},
		{
			"full house",
			[]card.Card{c(card.RankQ, card.SuitClubs), c(card.RankQ, card.SuitDiamonds), c(card.RankQ, card.SuitHearts), c(card.Rank4, card.SuitSpades), c(card.Rank4, card.SuitClubs)},
			FullHouse,
		},
		{
			"flush",
			[]card.Card{c(card.Rank2, card.SuitClubs), c(card.Rank5, card.SuitClubs), c(card.Rank9, card.SuitClubs), c(card.RankJ, card.SuitClubs), c(card.RankA, card.SuitClubs)},
			Flush,
		},
		{
			"wheel straight",
			[]card.Card{c(card.RankA, card.SuitClubs), c(card.Rank2, card.SuitDiamonds), c(card.Rank3, card.SuitHearts), c(card.Rank4, card.SuitSpades), c(card.Rank5, card.SuitClubs)},
			Straight,
		},
		{
			"trips",
			[]card.Card{c(card.Rank7, card.SuitClubs), c(card.Rank7, card.SuitDiamonds), c(card.Rank7, card.SuitHearts), c(card.Rank2, card.SuitSpades), c(card.Rank9, card.SuitClubs)},
			ThreeOfAKind,
		},
		{
			"two pair",
			[]card.Card{c(card.Rank7, card.SuitClubs), c(card.Rank7, card.SuitDiamonds), c(card.Rank3, card.SuitHearts), c(card.Rank3, card.SuitSpades), c(card.Rank9, card.SuitClubs)},
			TwoPair,
		},
		{
			"pair",
			[]card.Card{c(card.Rank7, card.SuitClubs), c(card.Rank7, card.SuitDiamonds), c(card.Rank3, card.SuitHearts), c(card.Rank5, card.SuitSpades), c(card.Rank9, card.SuitClubs)},
			Pair,
		},
		{
			"high card",
			[]card.Card{c(card.Rank2, card.SuitClubs), c(card.Rank5, card.SuitDiamonds), c(card.Rank9, card.SuitHearts), c(card.RankJ, card.SuitSpades), c(card.RankA, card.SuitClubs)},
			HighCard,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := mustEval(t, tc.cards)
			if h.Category != tc.want {
				t.Fatalf("got category %v, want %v", h.Category, tc.want)
			}
		})
	}
}

func TestSevenCardPicksBest(t *testing.T) {
	cards := []card.Card{
		c(card.RankA, card.SuitSpades), c(card.RankK, card.SuitSpades),
		c(card.RankQ, card.SuitSpades), c(card.RankJ, card.SuitSpades), c(card.Rank10, card.SuitSpades),
		c(card.Rank2, card.SuitClubs), c(card.Rank3, card.SuitDiamonds),
	}
	h := mustEval(t, cards)
	if h.Category != StraightFlush {
		t.Fatalf("expected straight flush from 7 cards, got %v", h.Category)
	}
}

func TestCompareHandsOrdering(t *testing.T) {
	pair := mustEval(t, []card.Card{
		c(card.Rank7, card.SuitClubs), c(card.Rank7, card.SuitDiamonds),
		c(card.Rank3, card.SuitHearts), c(card.Rank5, card.SuitSpades), c(card.Rank9, card.SuitClubs),
	})
	trips := mustEval(t, []card.Card{
		c(card.Rank7, card.SuitClubs), c(card.Rank7, card.SuitDiamonds), c(card.Rank7, card.SuitHearts),
		c(card.Rank2, card.SuitSpades), c(card.Rank9, card.SuitClubs),
	})
	if CompareHands(pair, trips) != -1 {
		t.Fatal("expected pair to rank below trips")
	}
	if CompareHands(trips, pair) != 1 {
		t.Fatal("expected trips to rank above pair")
	}
	if CompareHands(pair, pair) != 0 {
		t.Fatal("expected equal hands to compare equal")
	}
}

func TestHigherKickerBreaksTie(t *testing.T) {
	lowKicker := mustEval(t, []card.Card{
		c(card.Rank7, card.SuitClubs), c(card.Rank7, card.SuitDiamonds),
		c(card.Rank3, card.SuitHearts), c(card.Rank5, card.SuitSpades), c(card.Rank9, card.SuitClubs),
	})
	highKicker := mustEval(t, []card.Card{
		c(card.Rank7, card.SuitHearts), c(card.Rank7, card.SuitSpades),
		c(card.Rank3, card.SuitDiamonds), c(card.Rank5, card.SuitClubs), c(card.RankA, card.SuitHearts),
	})
	if CompareHands(lowKicker, highKicker) != -1 {
		t.Fatal("expected ace kicker to beat 9 kicker at same pair")
	}
}

func TestInvalidCardCount(t *testing.T) {
	if _, err := Evaluate([]card.Card{c(card.Rank2, card.SuitClubs)}); err == nil {
		t.Fatal("expected error for too few cards")
	}
}
