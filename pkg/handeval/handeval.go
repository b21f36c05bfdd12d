// Package handeval ranks poker hands of 5 to 7 cards, picking the best
// 5-card combination and producing a comparable strength value.
package handeval

import (
	"fmt"
	"sort"

	"poker-platform/pkg/card"
)

// Category is the standard poker hand category ordering, low to high.
type Category int8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

func (c Category) String() string {
	names := [...]string{
		"High Card", "Pair", "Two Pair", "Three of a Kind", "Straight",
		"Flush", "Full House", "Four of a Kind", "Straight Flush",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return "Unknown"
}

// EvaluatedHand is the outcome of ranking a hand: its category, a
// tie-breaking Rank (higher wins within and across categories), and a
// human-readable Description.
type EvaluatedHand struct {
	Category    Category
	Rank        int64
	Description string
	Best        []card.Card
}

// Evaluate ranks the best 5-card hand obtainable from the given 5 to 7
// cards.
func Evaluate(cards []card.Card) (EvaluatedHand, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return EvaluatedHand{}, fmt.Errorf("handeval: need 5-7 cards, got %d", len(cards))
	}

	best := EvaluatedHand{Rank: -1}
	for _, combo := range combinations(cards, 5) {
		h := evaluateFive(combo)
		if h.Rank > best.Rank {
			best = h
		}
	}
	return best, nil
}

// CompareHands returns -1, 0, or 1 as a compares below, equal to, or
// above b.
func CompareHands(a, b EvaluatedHand) int {
	switch {
	case a.Rank < b.Rank:
		return -1
	case a.Rank > b.Rank:
		return 1
	default:
		return 0
	}
}

func combinations(cards []card.Card, k int) [][]card.Card {
	n := len(cards)
	if k > n {
		return nil
	}
	var result [][]card.Card
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]card.Card, k)
		for i, v := range idx {
			combo[i] = cards[v]
		}
		result = append(result, combo)

		i := k - 1
		for i >= 0 && idx[i] == i+n-k {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return result
}

func evaluateFive(cards []card.Card) EvaluatedHand {
	ranks := make([]int, 5)
	suits := make([]int, 5)
	for i, c := range cards {
		ranks[i] = int(c.Rank)
		suits[i] = int(c.Suit)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))

	flush := isFlush(suits)
	straightHigh, isStraight := straightHighCard(ranks)

	counts := rankCounts(ranks)

	switch {
	case isStraight && flush:
		return EvaluatedHand{
			Category:    StraightFlush,
			Rank:        packRank(StraightFlush, straightHigh),
			Description: fmt.Sprintf("Straight Flush, %s high", card.Rank(straightHigh)),
			Best:        cards,
		}
	case counts[0].count == 4:
		return EvaluatedHand{
			Category:    FourOfAKind,
			Rank:        packRank(FourOfAKind, counts[0].rank, counts[1].rank),
			Description: fmt.Sprintf("Four of a Kind, %ss", card.Rank(counts[0].rank)),
			Best:        cards,
		}
	case counts[0].count == 3 && counts[1].count == 2:
		return EvaluatedHand{
			Category:    FullHouse,
			Rank:        packRank(FullHouse, counts[0].rank, counts[1].rank),
			Description: fmt.Sprintf("Full House, %ss over %ss", card.Rank(counts[0].rank), card.Rank(counts[1].rank)),
			Best:        cards,
		}
	case flush:
		return EvaluatedHand{
			Category:    Flush,
			Rank:        packRank(Flush, ranks[0], ranks[1], ranks[2], ranks[3], ranks[4]),
			Description: fmt.Sprintf("Flush, %s high", card.Rank(ranks[0])),
			Best:        cards,
		}
	case isStraight:
		return EvaluatedHand{
			Category:    Straight,
			Rank:        packRank(Straight, straightHigh),
			Description: fmt.Sprintf("Straight, %s high", card.Rank(straightHigh)),
			Best:        cards,
		}
	case counts[0].count == 3:
		return EvaluatedHand{
			Category:    ThreeOfAKind,
			Rank:        packRank(ThreeOfAKind, counts[0].rank, counts[1].rank, counts[2].rank),
			Description: fmt.Sprintf("Three of a Kind, %ss", card.Rank(counts[0].rank)),
			Best:        cards,
		}
	case counts[0].count == 2 && counts[1].count == 2:
		return EvaluatedHand{
			Category:    TwoPair,
			Rank:        packRank(TwoPair, counts[0].rank, counts[1].rank, counts[2].rank),
			Description: fmt.Sprintf("Two Pair, %ss and %ss", card.Rank(counts[0].rank), card.Rank(counts[1].rank)),
			Best:        cards,
		}
	case counts[0].count == 2:
		return EvaluatedHand{
			Category:    Pair,
			Rank:        packRank(Pair, counts[0].rank, counts[1].rank, counts[2].rank, counts[3].rank),
			Description: fmt.Sprintf("Pair of %ss", card.Rank(counts[0].rank)),
			Best:        cards,
		}
	default:
		return EvaluatedHand{
			Category:    HighCard,
			Rank:        packRank(HighCard, ranks[0], ranks[1], ranks[2], ranks[3], ranks[4]),
			Description: fmt.Sprintf("High Card, %s", card.Rank(ranks[0])),
			Best:        cards,
		}
	}
}

func isFlush(suits []int) bool {
	for _, s := range suits[1:] {
		if s != suits[0] {
			return false
		}
	}
	return true
}

// straightHighCard detects a straight among 5 distinct ranks (ranks
// must be sorted descending), returning the high card rank (treating
// A-2-3-4-5 as a 5-high "wheel" straight) and whether one was found.
func straightHighCard(ranks []int) (int, bool) {
	unique := make([]int, 0, 5)
	seen := make(map[int]bool)
	for _, r := range ranks {
		if !seen[r] {
			seen[r] = true
			unique = append(unique, r)
		}
	}
	if len(unique) != 5 {
		return 0, false
	}
	if unique[0]-unique[4] == 4 {
		return unique[0], true
	}
	// wheel: A,5,4,3,2
	if unique[0] == int(card.RankA) && unique[1] == int(card.Rank5) &&
		unique[2] == int(card.Rank4) && unique[3] == int(card.Rank3) && unique[4] == int(card.Rank2) {
		return int(card.Rank5), true
	}
	return 0, false
}

type rankCount struct {
	rank  int
	count int
}

// rankCounts groups ranks by frequency, sorted by count desc then rank
// desc, so counts[0] is always the primary grouping for the category
// checks above.
func rankCounts(ranks []int) []rankCount {
	freq := make(map[int]int)
	for _, r := range ranks {
		freq[r]++
	}
	out := make([]rankCount, 0, len(freq))
	for r, c := range freq {
		out = append(out, rankCount{rank: r, count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].rank > out[j].rank
	})
	for len(out) < 5 {
		out = append(out, rankCount{})
	}
	return out
}

// packRank folds a category plus up to 5 tie-break ranks into a single
// comparable integer: category dominates, then each tie-break digit in
// order of significance.
func packRank(cat Category, tiebreaks ...int) int64 {
	rank := int64(cat)
	for _, t := range tiebreaks {
		rank = rank*16 + int64(t)
	}
	for i := len(tiebreaks); i < 5; i++ {
		rank = rank * 16
	}
	return rank
}
