// Package equity estimates multiway hand equity via Monte Carlo
// simulation, plus a plain pot-odds helper.
package equity

import (
	"fmt"

	"poker-platform/pkg/card"
	"poker-platform/pkg/handeval"
	"poker-platform/pkg/rng"
)

const DefaultIterations = 3000

// Result is the outcome of an equity simulation: the hero's share of
// wins, ties, and losses across the simulated runouts.
type Result struct {
	Iterations int
	Wins       int
	Ties       int
	Losses     int
	Equity     float64
}

// Estimate runs a Monte Carlo simulation of the hero's hand against
// nOpponents random hands over the remaining community cards, using
// iterations runouts (DefaultIterations when iterations <= 0).
// nOpponents must be in [1, 5].
func Estimate(source *rng.System, hero []card.Card, community []card.Card, nOpponents, iterations int) (Result, error) {
	if len(hero) != 2 {
		return Result{}, fmt.Errorf("equity: hero must hold exactly 2 cards, got %d", len(hero))
	}
	if len(community) > 5 {
		return Result{}, fmt.Errorf("equity: community cannot exceed 5 cards, got %d", len(community))
	}
	if nOpponents < 1 || nOpponents > 5 {
		return Result{}, fmt.Errorf("equity: nOpponents must be in [1,5], got %d", nOpponents)
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	if source == nil {
		source = rng.Default()
	}

	known := make([]card.Card, 0, 2+len(community))
	known = append(known, hero...)
	known = append(known, community...)

	result := Result{Iterations: iterations}
	cardsNeeded := (5 - len(community)) + nOpponents*2

	for i := 0; i < iterations; i++ {
		deck := card.FullDeckExcluding(source, known)
		if deck.Remaining() < cardsNeeded {
			return Result{}, fmt.Errorf("equity: not enough cards remaining to simulate %d opponents", nOpponents)
		}

		draw, err := deck.Deal(cardsNeeded)
		if err != nil {
			return Result{}, err
		}

		board := append(append([]card.Card{}, community...), draw[:5-len(community)]...)
		oppCards := draw[5-len(community):]

		heroHand, err := handeval.Evaluate(append(append([]card.Card{}, hero...), board...))
		if err != nil {
			return Result{}, err
		}

		bestOppRank := int64(-1)
		for o := 0; o < nOpponents; o++ {
			opp := oppCards[o*2 : o*2+2]
			oppHand, err := handeval.Evaluate(append(append([]card.Card{}, opp...), board...))
			if err != nil {
				return Result{}, err
			}
			if oppHand.Rank > bestOppRank {
				bestOppRank = oppHand.Rank
			}
		}

		switch {
		case heroHand.Rank > bestOppRank:
			result.Wins++
		case heroHand.Rank == bestOppRank:
			result.Ties++
		default:
			result.Losses++
		}
	}

	result.Equity = (float64(result.Wins) + float64(result.Ties)/2) / float64(result.Iterations)
	return result, nil
}

// PotOdds returns the fraction of the resulting pot a call of
// callAmount represents, i.e. the equity break-even point.
func PotOdds(callAmount, potAmount int64) float64 {
	if callAmount <= 0 {
		return 0
	}
	total := potAmount + callAmount
	if total <= 0 {
		return 0
	}
	return float64(callAmount) / float64(total)
}
