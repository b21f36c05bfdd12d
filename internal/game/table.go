package game

import (
	"sync"

	"github.com/coder/quartz"

	"poker-platform/pkg/card"
	"poker-platform/pkg/rng"
)

// Table is the state machine for a single fixed-ruleset Hold'em game.
// All mutating operations take the table's lock, making the state
// machine single-threaded over its own state regardless of how many
// goroutines call into it concurrently.
type Table struct {
	mu        sync.RWMutex
	state     TableState
	bus       *eventBus
	timer     *TurnTimer
	clock     quartz.Clock
	rngSource *rng.System
}

// Option configures a Table at construction time.
type Option func(*Table)

// WithClock injects a quartz.Clock for the turn timer, for
// deterministic tests. Production tables use quartz.NewReal().
func WithClock(c quartz.Clock) Option {
	return func(t *Table) { t.clock = c }
}

// WithRNGSource injects a deck shuffle source, for deterministic
// tests. Production tables use pkg/rng's process-wide default.
func WithRNGSource(s *rng.System) Option {
	return func(t *Table) { t.rngSource = s }
}

// NewTable constructs a table in the WAITING phase with all seats
// empty.
func NewTable(config TableConfig, opts ...Option) (*Table, error) {
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	seats := make([]*Seat, config.MaxPlayers)
	for i := range seats {
		seats[i] = &Seat{Index: i, Status: SeatEmpty}
	}

	t := &Table{
		state: TableState{
			Config:   config,
			Seats:    seats,
			Phase:    PhaseWaiting,
			MinRaise: config.BigBlind,
		},
		bus: newEventBus(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = quartz.NewReal()
	}
	if t.rngSource == nil {
		t.rngSource = rng.Default()
	}
	t.timer = NewTurnTimer(t.clock)

	return t, nil
}

// ID returns the table's configured identifier.
func (t *Table) ID() string {
	return t.state.Config.TableID
}

// Subscribe registers a new event listener and returns its channel
// and an unsubscribe handle. Subscription is synchronous, so a caller
// that subscribes immediately before DealNewHand cannot miss the
// HAND_START it emits.
func (t *Table) Subscribe(buffer int) (<-chan Event, int) {
	return t.bus.subscribe(buffer)
}

// Unsubscribe removes a listener registered via Subscribe.
func (t *Table) Unsubscribe(id int) {
	t.bus.unsubscribe(id)
}

// Destroy cancels any armed turn timer. Safe to call multiple times.
func (t *Table) Destroy() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer.Cancel()
}

// GetState returns a deep copy of the table's current state.
func (t *Table) GetState() TableState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.copyState()
}

func (t *Table) copyState() TableState {
	s := t.state
	s.Seats = make([]*Seat, len(t.state.Seats))
	for i, seat := range t.state.Seats {
		cp := *seat
		cp.HoleCards = append([]card.Card{}, seat.HoleCards...)
		s.Seats[i] = &cp
	}
	s.CommunityCards = append([]card.Card{}, t.state.CommunityCards...)
	s.Pots = append([]Pot{}, t.state.Pots...)
	s.ActionHistory = append([]MultiActionRecord{}, t.state.ActionHistory...)
	s.deck = nil
	s.pendingFlop = nil
	s.dealtInOrder = append([]int{}, t.state.dealtInOrder...)
	return s
}

// GetPlayerView returns the sanitised projection of state visible to
// playerID, including validActions/callAmount/raise bounds if it is
// currently that seat's turn.
func (t *Table) GetPlayerView(playerID string) (PlayerView, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	hero := t.seatForPlayerLocked(playerID)
	if hero == nil {
		return PlayerView{}, ErrPlayerNotFound
	}

	view := PlayerView{
		TableID:           t.state.Config.TableID,
		Phase:             t.state.Phase,
		CommunityCards:    append([]card.Card{}, t.state.CommunityCards...),
		Pots:              append([]Pot{}, t.state.Pots...),
		CurrentBet:        t.state.CurrentBet,
		MinRaise:          t.state.MinRaise,
		ActivePlayerIndex: t.state.ActivePlayerIndex,
		HandNumber:        t.state.HandNumber,
		HeroSeatIndex:     hero.Index,
		HeroHoleCards:     append([]card.Card{}, hero.HoleCards...),
	}

	for _, s := range t.state.Seats {
		view.Seats = append(view.Seats, SeatView{
			Index: s.Index, Status: s.Status, PlayerID: s.PlayerID, PlayerName: s.PlayerName,
			Stack: s.Stack, Position: s.Position, HasHoleCards: len(s.HoleCards) == 2,
			BetThisRound: s.BetThisRound, BetThisHand: s.BetThisHand, HasActed: s.HasActed,
		})
	}

	if t.state.Phase.isBetting() && hero.Index == t.state.ActivePlayerIndex {
		view.ValidActions = validActions(&t.state, hero)
		view.CallAmount = callAmount(&t.state, hero)
		view.MinRaiseAmount = minRaiseAmount(&t.state)
		view.MaxRaiseAmount = maxRaiseAmount(&t.state, hero)
	}

	return view, nil
}

// CanStartHand reports whether a new hand can be dealt: the table is
// idle and at least two seats have chips.
func (t *Table) CanStartHand() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.canStartHandLocked()
}

func (t *Table) canStartHandLocked() bool {
	if t.state.Phase != PhaseWaiting && t.state.Phase != PhaseComplete {
		return false
	}
	return t.countEligibleLocked() >= 2
}

func (t *Table) countEligibleLocked() int {
	count := 0
	for _, s := range t.state.Seats {
		if !s.isEmpty() && s.Stack > 0 {
			count++
		}
	}
	return count
}

// SeatPlayer fills the first empty seat with playerID at status
// WAITING. Idempotent: re-seating an already-seated player returns
// its existing index unchanged.
func (t *Table) SeatPlayer(playerID, name string, stack int64) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if seat := t.seatForPlayerLocked(playerID); seat != nil {
		return seat.Index, nil
	}

	for _, s := range t.state.Seats {
		if s.isEmpty() {
			s.Status = SeatWaiting
			s.PlayerID = playerID
			s.PlayerName = name
			s.Stack = stack
			return s.Index, nil
		}
	}
	return -1, ErrTableFull
}

// RemovePlayer drops a seated player: FOLDED if a hand is in
// progress, otherwise cleared to EMPTY.
func (t *Table) RemovePlayer(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat := t.seatForPlayerLocked(playerID)
	if seat == nil {
		return ErrPlayerNotFound
	}
	if t.state.Phase.isBetting() {
		seat.Status = SeatFolded
	} else {
		*seat = Seat{Index: seat.Index, Status: SeatEmpty}
	}
	return nil
}

func (t *Table) seatForPlayerLocked(playerID string) *Seat {
	for _, s := range t.state.Seats {
		if !s.isEmpty() && s.PlayerID == playerID {
			return s
		}
	}
	return nil
}

// DealNewHand starts a new hand: rotates the button, assigns
// positions, deals hole cards, posts blinds, and arms the first turn.
func (t *Table) DealNewHand() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Phase != PhaseWaiting && t.state.Phase != PhaseComplete {
		return ErrHandInProgress
	}
	if t.countEligibleLocked() < 2 {
		return ErrNotEnoughPlayers
	}

	t.state.HandNumber++
	t.state.Phase = PhasePreflop
	t.state.CommunityCards = nil
	t.state.Pots = nil
	t.state.ActionHistory = nil
	t.state.MinRaise = t.state.Config.BigBlind
	t.state.CurrentBet = 0

	for _, s := range t.state.Seats {
		if s.isEmpty() {
			continue
		}
		if s.Stack > 0 {
			s.Status = SeatActive
			s.HoleCards = nil
			s.BetThisRound = 0
			s.BetThisHand = 0
			s.HasActed = false
			s.Position = PositionNone
		} else {
			s.Status = SeatSittingOut
		}
	}

	if t.state.HandNumber == 1 {
		actives := activeSeatIndices(&t.state)
		t.state.DealerButtonIndex = actives[t.rngSource.RandomInt(len(actives))]
	} else {
		t.state.DealerButtonIndex = nextActiveSeatIndex(&t.state, t.state.DealerButtonIndex)
	}

	order := buildClockwiseOrder(&t.state, t.state.DealerButtonIndex)
	assignPositionsFromOrder(&t.state, order)
	t.state.dealtInOrder = order

	deck := card.NewDeck(t.rngSource)
	deck.Shuffle()
	if err := dealHoleCardsRoundRobin(&t.state, order, deck); err != nil {
		return err
	}

	if _, err := deck.DealOne(); err != nil { // burn
		return err
	}
	flop, err := deck.Deal(3)
	if err != nil {
		return err
	}
	t.state.pendingFlop = flop

	if _, err := deck.DealOne(); err != nil { // burn
		return err
	}
	turnCard, err := deck.DealOne()
	if err != nil {
		return err
	}
	t.state.pendingTurn = turnCard

	if _, err := deck.DealOne(); err != nil { // burn
		return err
	}
	riverCard, err := deck.DealOne()
	if err != nil {
		return err
	}
	t.state.pendingRiver = riverCard

	t.collectBlindsLocked(order)

	t.state.ActivePlayerIndex = firstActorSeatIndex(&t.state, PhasePreflop)

	t.bus.publish(Event{Type: EventHandStart, TableID: t.state.Config.TableID, HandNumber: t.state.HandNumber})
	t.bus.publish(Event{Type: EventPhaseChange, TableID: t.state.Config.TableID, HandNumber: t.state.HandNumber, Phase: PhasePreflop})
	t.emitPlayerTurnLocked()
	t.armTimerLocked()

	return nil
}

func dealHoleCardsRoundRobin(state *TableState, order []int, deck *card.Deck) error {
	n := len(order)
	if n == 0 {
		return nil
	}
	for round := 0; round < 2; round++ {
		for i := 0; i < n; i++ {
			idx := order[(1+i)%n]
			c, err := deck.DealOne()
			if err != nil {
				return err
			}
			state.Seats[idx].HoleCards = append(state.Seats[idx].HoleCards, c)
		}
	}
	return nil
}

// collectBlindsLocked posts the small and big blind. currentBet is
// set to the configured big blind regardless of a short stack's
// actual posted amount, per §4.6 step 6.
func (t *Table) collectBlindsLocked(order []int) {
	var sbIdx, bbIdx int
	if len(order) == 2 {
		sbIdx, bbIdx = order[0], order[1]
	} else {
		sbIdx, bbIdx = order[1], order[2]
	}

	postBlind(t.state.Seats[sbIdx], t.state.Config.SmallBlind)
	postBlind(t.state.Seats[bbIdx], t.state.Config.BigBlind)
	t.state.CurrentBet = t.state.Config.BigBlind
}

func postBlind(s *Seat, blind int64) {
	amount := blind
	if s.Stack < amount {
		amount = s.Stack
	}
	s.Stack -= amount
	s.BetThisRound = amount
	s.BetThisHand = amount
	if s.Stack == 0 {
		s.Status = SeatAllIn
	}
}

// ProcessAction validates and applies a player's action, advancing
// the turn or the phase as needed. Illegal submissions return an
// error without mutating state.
func (t *Table) ProcessAction(playerID string, action PlayerAction, amount int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.Phase.isBetting() {
		return ErrNotBettingPhase
	}
	seat := t.seatForPlayerLocked(playerID)
	if seat == nil {
		return ErrPlayerNotFound
	}
	if seat.Index != t.state.ActivePlayerIndex {
		return ErrNotYourTurn
	}

	if err := processAction(&t.state, seat, action, amount); err != nil {
		return err
	}
	t.timer.Cancel()

	record := MultiActionRecord{
		PlayerID: seat.PlayerID, PlayerName: seat.PlayerName, Action: action,
		Amount: amount, Phase: t.state.Phase, SeatIndex: seat.Index,
		TimestampMs: t.clock.Now().UnixMilli(),
	}
	t.state.ActionHistory = append(t.state.ActionHistory, record)
	t.bus.publish(Event{
		Type: EventPlayerAction, TableID: t.state.Config.TableID, HandNumber: t.state.HandNumber,
		Phase: t.state.Phase, SeatIndex: seat.Index, Action: &record,
	})

	if isHandOverEarly(&t.state) {
		t.state.Pots = computeSidePots(&t.state)
		t.finishHandLocked(foldWinShares(&t.state))
		return nil
	}

	if isRoundComplete(&t.state) {
		return t.advancePhaseLocked()
	}

	t.advanceToNextActiveLocked()
	t.emitPlayerTurnLocked()
	t.armTimerLocked()
	return nil
}

func (t *Table) advanceToNextActiveLocked() {
	order := t.state.dealtInOrder
	n := len(order)
	pos := -1
	for i, idx := range order {
		if idx == t.state.ActivePlayerIndex {
			pos = i
			break
		}
	}
	if pos == -1 {
		return
	}
	for i := 1; i <= n; i++ {
		idx := order[(pos+i)%n]
		if t.state.Seats[idx].isActive() {
			t.state.ActivePlayerIndex = idx
			return
		}
	}
}

// advancePhaseLocked recomputes side pots and street state, then
// either resolves showdown or reveals the next street.
func (t *Table) advancePhaseLocked() error {
	t.state.Pots = computeSidePots(&t.state)
	resetStreet(&t.state)

	if shouldSkipToShowdown(&t.state) {
		t.runOutBoardLocked()
		return t.resolveShowdownLocked()
	}

	switch t.state.Phase {
	case PhasePreflop:
		if len(t.state.pendingFlop) != 3 {
			panic("game: missing precomputed flop cards")
		}
		t.state.Phase = PhaseFlop
		t.state.CommunityCards = append(t.state.CommunityCards, t.state.pendingFlop...)
		t.state.pendingFlop = nil
	case PhaseFlop:
		t.state.Phase = PhaseTurn
		t.state.CommunityCards = append(t.state.CommunityCards, t.state.pendingTurn)
	case PhaseTurn:
		t.state.Phase = PhaseRiver
		t.state.CommunityCards = append(t.state.CommunityCards, t.state.pendingRiver)
	case PhaseRiver:
		return t.resolveShowdownLocked()
	default:
		return nil
	}

	t.bus.publish(Event{Type: EventPhaseChange, TableID: t.state.Config.TableID, HandNumber: t.state.HandNumber, Phase: t.state.Phase})

	next := firstActorSeatIndex(&t.state, t.state.Phase)
	if next == -1 {
		return t.advancePhaseLocked()
	}
	t.state.ActivePlayerIndex = next
	t.emitPlayerTurnLocked()
	t.armTimerLocked()
	return nil
}

func (t *Table) runOutBoardLocked() {
	switch t.state.Phase {
	case PhasePreflop:
		t.state.CommunityCards = append(t.state.CommunityCards, t.state.pendingFlop...)
		t.state.CommunityCards = append(t.state.CommunityCards, t.state.pendingTurn, t.state.pendingRiver)
	case PhaseFlop:
		t.state.CommunityCards = append(t.state.CommunityCards, t.state.pendingTurn, t.state.pendingRiver)
	case PhaseTurn:
		t.state.CommunityCards = append(t.state.CommunityCards, t.state.pendingRiver)
	}
	t.state.pendingFlop = nil
}

func (t *Table) resolveShowdownLocked() error {
	t.state.Phase = PhaseShowdown
	shares, err := resolveShowdown(&t.state)
	if err != nil {
		return err
	}
	t.finishHandLocked(shares)
	return nil
}

func (t *Table) finishHandLocked(shares []WinnerShare) {
	t.timer.Cancel()

	result := HandResult{HandNumber: t.state.HandNumber, Winners: shares, Pots: t.state.Pots}
	t.state.Phase = PhaseComplete

	for _, s := range t.state.Seats {
		if s.isEmpty() || s.Status == SeatSittingOut {
			continue
		}
		if s.Stack == 0 {
			s.Status = SeatSittingOut
		} else {
			s.Status = SeatWaiting
		}
	}

	t.bus.publish(Event{
		Type: EventHandComplete, TableID: t.state.Config.TableID,
		HandNumber: t.state.HandNumber, Result: &result,
	})

	if !t.canStartHandLocked() {
		t.bus.publish(Event{Type: EventWaitingForPlayers, TableID: t.state.Config.TableID, HandNumber: t.state.HandNumber})
	}
}

func (t *Table) emitPlayerTurnLocked() {
	t.bus.publish(Event{
		Type: EventPlayerTurn, TableID: t.state.Config.TableID,
		HandNumber: t.state.HandNumber, Phase: t.state.Phase, SeatIndex: t.state.ActivePlayerIndex,
	})
}

func (t *Table) armTimerLocked() {
	seat := t.state.Seats[t.state.ActivePlayerIndex]
	playerID := seat.PlayerID
	timeoutMs := t.state.Config.ActionTimeoutMs
	t.timer.Start(timeoutMs, func() {
		t.handleTimerExpiry(playerID)
	})
}

// handleTimerExpiry synthesises the default action (CHECK if legal,
// else FOLD) on behalf of a player who missed their deadline.
func (t *Table) handleTimerExpiry(playerID string) {
	t.mu.Lock()
	seat := t.seatForPlayerLocked(playerID)
	if seat == nil || !t.state.Phase.isBetting() || seat.Index != t.state.ActivePlayerIndex {
		t.mu.Unlock()
		return
	}
	actions := validActions(&t.state, seat)
	action := ActionFold
	if containsAction(actions, ActionCheck) {
		action = ActionCheck
	}
	t.mu.Unlock()

	_ = t.ProcessAction(playerID, action, 0)
}
