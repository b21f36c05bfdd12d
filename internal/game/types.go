// Package game implements the table state machine: seating, dealing,
// betting rounds, side pots, showdown resolution, and turn timers for
// a single fixed-ruleset Texas Hold'em table.
package game

import (
	"time"

	"poker-platform/pkg/card"
)

// SeatStatus is the lifecycle state of a single seat.
type SeatStatus int8

const (
	SeatEmpty SeatStatus = iota
	SeatWaiting
	SeatActive
	SeatFolded
	SeatAllIn
	SeatSittingOut
)

func (s SeatStatus) String() string {
	names := [...]string{"EMPTY", "WAITING", "ACTIVE", "FOLDED", "ALL_IN", "SITTING_OUT"}
	if int(s) < len(names) {
		return names[s]
	}
	return "UNKNOWN"
}

// Position labels a seat relative to the dealer button.
type Position int8

const (
	PositionNone Position = iota
	PositionBTN
	PositionSB
	PositionBB
	PositionUTG
	PositionUTG1
	PositionCO
)

func (p Position) String() string {
	names := [...]string{"", "BTN", "SB", "BB", "UTG", "UTG1", "CO"}
	if int(p) < len(names) {
		return names[p]
	}
	return "UNKNOWN"
}

// GamePhase is the hand lifecycle phase.
type GamePhase int8

const (
	PhaseWaiting GamePhase = iota
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseShowdown
	PhaseComplete
)

func (p GamePhase) String() string {
	names := [...]string{"WAITING", "PREFLOP", "FLOP", "TURN", "RIVER", "SHOWDOWN", "COMPLETE"}
	if int(p) < len(names) {
		return names[p]
	}
	return "UNKNOWN"
}

func (p GamePhase) isBetting() bool {
	return p == PhasePreflop || p == PhaseFlop || p == PhaseTurn || p == PhaseRiver
}

// PlayerAction is a submitted or recorded player action.
type PlayerAction int8

const (
	ActionFold PlayerAction = iota
	ActionCheck
	ActionCall
	ActionRaise
	ActionAllIn
)

func (a PlayerAction) String() string {
	names := [...]string{"FOLD", "CHECK", "CALL", "RAISE", "ALL_IN"}
	if int(a) < len(names) {
		return names[a]
	}
	return "UNKNOWN"
}

// ParsePlayerAction maps an incoming action string onto the enum. The
// second return value is false for unrecognised strings.
func ParsePlayerAction(s string) (PlayerAction, bool) {
	switch s {
	case "FOLD":
		return ActionFold, true
	case "CHECK":
		return ActionCheck, true
	case "CALL":
		return ActionCall, true
	case "RAISE":
		return ActionRaise, true
	case "ALL_IN":
		return ActionAllIn, true
	default:
		return 0, false
	}
}

// TableConfig parameterises a table's rules.
type TableConfig struct {
	TableID         string
	TableName       string
	MaxPlayers      int
	SmallBlind      int64
	BigBlind        int64
	StartingStack   int64
	ActionTimeoutMs int64
}

// DefaultActionTimeoutMs is applied when a config omits it.
const DefaultActionTimeoutMs = 30000

func (c *TableConfig) applyDefaults() {
	if c.ActionTimeoutMs <= 0 {
		c.ActionTimeoutMs = DefaultActionTimeoutMs
	}
}

func (c TableConfig) validate() error {
	if c.MaxPlayers < 2 || c.MaxPlayers > 6 {
		return ErrInvalidConfig("maxPlayers must be in [2,6]")
	}
	if c.SmallBlind <= 0 {
		return ErrInvalidConfig("smallBlind must be positive")
	}
	if c.BigBlind < 2*c.SmallBlind {
		return ErrInvalidConfig("bigBlind must be at least 2x smallBlind")
	}
	if c.StartingStack <= 0 {
		return ErrInvalidConfig("startingStack must be positive")
	}
	return nil
}

// Seat is one position at the table.
type Seat struct {
	Index        int
	Status       SeatStatus
	PlayerID     string
	PlayerName   string
	Stack        int64
	Position     Position
	HoleCards    []card.Card
	BetThisRound int64
	BetThisHand  int64
	HasActed     bool
}

func (s *Seat) isEmpty() bool {
	return s.Status == SeatEmpty
}

func (s *Seat) isActive() bool {
	return s.Status == SeatActive
}

func (s *Seat) isInHand() bool {
	return s.Status != SeatEmpty && s.Status != SeatFolded && s.Status != SeatSittingOut
}

// Pot is one side pot segment.
type Pot struct {
	Amount    int64
	Eligible  map[string]bool
	PlayerIDs []string
}

// MultiActionRecord is a single logged player action.
type MultiActionRecord struct {
	PlayerID    string
	PlayerName  string
	Action      PlayerAction
	Amount      int64
	Phase       GamePhase
	SeatIndex   int
	TimestampMs int64
}

// WinnerShare is a winner's share of one pot at showdown.
type WinnerShare struct {
	PlayerID    string
	PlayerName  string
	Amount      int64
	Description string
}

// HandResult summarises the outcome of a completed hand.
type HandResult struct {
	HandNumber int64
	Winners    []WinnerShare
	Pots       []Pot
}

// TableState is the full internal state of the table.
type TableState struct {
	Config            TableConfig
	Seats             []*Seat
	DealerButtonIndex int
	Phase             GamePhase
	CommunityCards    []card.Card
	Pots              []Pot
	CurrentBet        int64
	MinRaise          int64
	ActivePlayerIndex int
	HandNumber        int64
	ActionHistory     []MultiActionRecord

	pendingFlop  []card.Card
	pendingTurn  card.Card
	pendingRiver card.Card
	deck         *card.Deck
	phaseStart   time.Time
	dealtInOrder []int
}

// PlayerView is the per-seat public projection of TableState.
type PlayerView struct {
	TableID           string
	Phase             GamePhase
	CommunityCards    []card.Card
	Pots              []Pot
	CurrentBet        int64
	MinRaise          int64
	ActivePlayerIndex int
	HandNumber        int64
	Seats             []SeatView
	HeroSeatIndex     int
	HeroHoleCards     []card.Card
	ValidActions      []PlayerAction
	CallAmount        int64
	MinRaiseAmount    int64
	MaxRaiseAmount    int64
}

// SeatView is the opponent-safe projection of a Seat.
type SeatView struct {
	Index        int
	Status       SeatStatus
	PlayerID     string
	PlayerName   string
	Stack        int64
	Position     Position
	HasHoleCards bool
	BetThisRound int64
	BetThisHand  int64
	HasActed     bool
}
