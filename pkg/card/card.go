// Package card implements the 52-card deck used by the table state
// machine: value types for rank/suit and a shuffled deck with deal
// primitives.
package card

import (
	"fmt"

	"poker-platform/pkg/rng"
)

// Rank enumeration, numeric value 2..14.
type Rank int8

const (
	Rank2 Rank = iota + 2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJ
	RankQ
	RankK
	RankA
)

func (r Rank) String() string {
	names := map[Rank]string{
		Rank2: "2", Rank3: "3", Rank4: "4", Rank5: "5", Rank6: "6",
		Rank7: "7", Rank8: "8", Rank9: "9", Rank10: "T",
		RankJ: "J", RankQ: "Q", RankK: "K", RankA: "A",
	}
	if s, ok := names[r]; ok {
		return s
	}
	return "?"
}

// Suit enumeration.
type Suit int8

const (
	SuitClubs Suit = iota
	SuitDiamonds
	SuitHearts
	SuitSpades
)

func (s Suit) String() string {
	names := []string{"c", "d", "h", "s"}
	if s >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "?"
}

// Card is a value object: a rank paired with a suit.
type Card struct {
	Rank Rank
	Suit Suit
}

// New creates a card from rank and suit.
func New(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// ID maps a card onto 0..51 for compact storage/set membership.
func (c Card) ID() int {
	return int(c.Rank-Rank2)*4 + int(c.Suit)
}

// FromID is the inverse of ID.
func FromID(id int) Card {
	return Card{Rank: Rank(id/4) + Rank2, Suit: Suit(id % 4)}
}

func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// Deck is the 52-card pack plus the cursor of undealt cards.
type Deck struct {
	cards []Card
	rng   *rng.System
}

// NewDeck builds a full, reset deck using the given CSPRNG source.
// A nil source falls back to a process-wide default, matching
// pkg/rng.System's intended use as a shared shuffle source.
func NewDeck(source *rng.System) *Deck {
	if source == nil {
		source = rng.Default()
	}
	d := &Deck{rng: source}
	d.Reset()
	return d
}

// Reset restores the deck to all 52 cards, unshuffled.
func (d *Deck) Reset() {
	d.cards = make([]Card, 52)
	for i := 0; i < 52; i++ {
		d.cards[i] = FromID(i)
	}
}

// Shuffle performs an in-place Fisher-Yates shuffle driven by the
// deck's CSPRNG source.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.RandomInt(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the next n cards from the top of the deck.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, fmt.Errorf("card: deck exhausted, requested %d have %d", n, len(d.cards))
	}
	out := d.cards[:n]
	d.cards = d.cards[n:]
	return out, nil
}

// DealOne removes and returns the top card.
func (d *Deck) DealOne() (Card, error) {
	cards, err := d.Deal(1)
	if err != nil {
		return Card{}, err
	}
	return cards[0], nil
}

// Remove drops specific cards from the undealt portion of the deck,
// used to build a deck excluding already-known cards.
func (d *Deck) Remove(known ...Card) {
	if len(known) == 0 {
		return
	}
	exclude := make(map[int]bool, len(known))
	for _, c := range known {
		exclude[c.ID()] = true
	}
	kept := d.cards[:0]
	for _, c := range d.cards {
		if !exclude[c.ID()] {
			kept = append(kept, c)
		}
	}
	d.cards = kept
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// FullDeckExcluding returns a freshly shuffled deck of the 52 cards
// minus the given known cards, used by the equity estimator to draw
// opponent hands and remaining community cards.
func FullDeckExcluding(source *rng.System, known []Card) *Deck {
	d := NewDeck(source)
	d.Remove(known...)
	d.Shuffle()
	return d
}
