// Package arena runs unattended hands across a pool of tables,
// dispatching each seat's turn to either a registered agent or an
// archetypal bot decider, and feeding completed hands to a
// leaderboard and (when configured) a settlement pipeline.
package arena

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"poker-platform/internal/agent"
	"poker-platform/internal/game"
	"poker-platform/internal/tablemgr"
)

var ErrAlreadyRunning = errors.New("arena: already running")

// Config parameterises one arena run.
type Config struct {
	BotCount        int
	MaxHands        int
	TableCount      int
	SmallBlind      int64
	BigBlind        int64
	StartingStack   int64
	ActionTimeoutMs int64
	ActionDelayMs   int64
	HandDelayMs     int64
	PhaseDelayMs    int64
}

const (
	DefaultActionDelayMs = 800
	DefaultHandDelayMs   = 2000
	DefaultPhaseDelayMs  = 500
)

func (c *Config) applyDefaults() {
	if c.TableCount <= 0 {
		c.TableCount = 1
	}
	if c.TableCount > 4 {
		c.TableCount = 4
	}
	if c.ActionDelayMs <= 0 {
		c.ActionDelayMs = DefaultActionDelayMs
	}
	if c.HandDelayMs <= 0 {
		c.HandDelayMs = DefaultHandDelayMs
	}
	if c.PhaseDelayMs <= 0 {
		c.PhaseDelayMs = DefaultPhaseDelayMs
	}
	if c.ActionTimeoutMs <= 0 {
		c.ActionTimeoutMs = game.DefaultActionTimeoutMs
	}
}

// Status reports the arena's current run state.
type Status struct {
	Running    bool
	HandsTotal int64
	TableCount int
}

// HandSink receives a completed hand's result for settlement, if the
// arena was built with one configured.
type HandSink interface {
	PushHandResult(tableID string, result game.HandResult, actions []game.MultiActionRecord)
}

// Arena orchestrates per-table hand loops under one errgroup that
// shares a single cancellable context; Stop cancels it.
type Arena struct {
	manager     *tablemgr.Manager
	registry    *agent.Registry
	leaderboard LeaderboardRecorder
	botDecider  *BotDecider
	sink        HandSink

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc

	handsTotal atomic.Int64
}

// NewArena wires the collaborators an arena run needs. sink may be
// nil when settlement is not configured.
func NewArena(manager *tablemgr.Manager, registry *agent.Registry, leaderboard LeaderboardRecorder, botDecider *BotDecider, sink HandSink) *Arena {
	if leaderboard == nil {
		leaderboard = NewInMemoryLeaderboard()
	}
	if botDecider == nil {
		botDecider = NewBotDecider(nil)
	}
	return &Arena{
		manager:     manager,
		registry:    registry,
		leaderboard: leaderboard,
		botDecider:  botDecider,
		sink:        sink,
	}
}

// Start creates tableCount tables, seats bots, and launches one hand
// loop per table. Rejected if already running.
func (a *Arena) Start(config Config) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	config.applyDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.running = true
	a.handsTotal.Store(0)
	a.mu.Unlock()

	perTableMax := (config.MaxHands + config.TableCount - 1) / config.TableCount
	if config.MaxHands <= 0 {
		perTableMax = 0 // unbounded
	}

	group, gctx := errgroup.WithContext(ctx)
	for i := 0; i < config.TableCount; i++ {
		tableID := fmt.Sprintf("arena-%d", i+1)
		table, err := a.manager.CreateTable(game.TableConfig{
			TableID:         tableID,
			TableName:       tableID,
			MaxPlayers:      6,
			SmallBlind:      config.SmallBlind,
			BigBlind:        config.BigBlind,
			StartingStack:   config.StartingStack,
			ActionTimeoutMs: config.ActionTimeoutMs,
		})
		if err != nil {
			cancel()
			return err
		}
		seatBots(table, config.BotCount, config.StartingStack)

		group.Go(func() error {
			a.runTableLoop(gctx, table, config, perTableMax)
			return nil
		})
	}

	go func() {
		_ = group.Wait()
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	return nil
}

// Stop cancels the run's context. Each table loop returns at its next
// check of that context, including the waits inside a hand, so a hand
// in progress is not played out by the arena.
func (a *Arena) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// GetStatus reports whether the arena is running and the aggregate
// hand count across all tables.
func (a *Arena) GetStatus() Status {
	a.mu.Lock()
	running := a.running
	a.mu.Unlock()
	return Status{
		Running:    running,
		HandsTotal: a.handsTotal.Load(),
		TableCount: a.manager.Count(),
	}
}

// GetLeaderboard returns the current standings ordered by sortBy.
func (a *Arena) GetLeaderboard(sortBy SortBy) []PlayerStats {
	return a.leaderboard.Snapshot(sortBy)
}

func seatBots(table *game.Table, botCount int, startingStack int64) {
	for i := 0; i < botCount; i++ {
		playerID := fmt.Sprintf("%s-bot-%d", table.ID(), i+1)
		archetype := Archetypes[i%len(Archetypes)]
		name := fmt.Sprintf("%s Bot %d", archetype, i+1)
		if _, err := table.SeatPlayer(playerID, name, startingStack); err != nil {
			return
		}
	}
}

// runTableLoop is the per-table hand loop described in the arena's
// dispatch rules: subscribe before dealing, dispatch PLAYER_TURN to
// an agent or bot, and record HAND_COMPLETE before pacing into the
// next hand.
func (a *Arena) runTableLoop(ctx context.Context, table *game.Table, config Config, maxHands int) {
	handCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if maxHands > 0 && handCount >= maxHands {
			return
		}
		if !table.CanStartHand() {
			return
		}

		events, subID := table.Subscribe(64)
		if err := table.DealNewHand(); err != nil {
			table.Unsubscribe(subID)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		handDone := a.driveHand(ctx, table, events, config)
		table.Unsubscribe(subID)
		handCount++
		a.handsTotal.Add(1)

		if !handDone {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(config.HandDelayMs) * time.Millisecond):
		}
	}
}

// driveHand consumes events for a single hand until HAND_COMPLETE,
// dispatching PLAYER_TURN events to the right decision source.
// Returns false if the context was cancelled mid-hand.
func (a *Arena) driveHand(ctx context.Context, table *game.Table, events <-chan game.Event, config Config) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			switch ev.Type {
			case game.EventPlayerTurn:
				a.dispatchTurn(ctx, table, ev, config)
			case game.EventHandComplete:
				a.recordHandComplete(table, ev)
				return true
			}
		}
	}
}

func (a *Arena) dispatchTurn(ctx context.Context, table *game.Table, ev game.Event, config Config) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(config.ActionDelayMs) * time.Millisecond):
	}

	state := table.GetState()
	if ev.SeatIndex < 0 || ev.SeatIndex >= len(state.Seats) {
		return
	}
	seat := state.Seats[ev.SeatIndex]
	playerID := seat.PlayerID
	if playerID == "" {
		return
	}

	view, err := table.GetPlayerView(playerID)
	if err != nil {
		return
	}

	var action game.PlayerAction
	var amount int64

	if snap, err := a.registry.GetAgentByPlayerId(playerID); err == nil {
		d := a.registry.RequestDecision(ctx, snap.ID, playerID, table.ID(), view.HandNumber, view, config.ActionTimeoutMs)
		action, amount = d.Action, d.Amount
	} else {
		archetype := archetypeForBotID(playerID)
		action, amount = a.botDecider.Decide(archetype, view)
	}

	if current, err := table.GetPlayerView(playerID); err != nil || current.ActivePlayerIndex != ev.SeatIndex {
		return
	}
	_ = table.ProcessAction(playerID, action, amount)
}

func (a *Arena) recordHandComplete(table *game.Table, ev game.Event) {
	if ev.Result == nil {
		return
	}
	state := table.GetState()
	winnings := make(map[string]int64)
	for _, w := range ev.Result.Winners {
		winnings[w.PlayerID] += w.Amount
	}
	for _, s := range state.Seats {
		if s.PlayerID == "" || len(s.HoleCards) != 2 {
			continue
		}
		won := winnings[s.PlayerID]
		a.leaderboard.RecordHand(s.PlayerID, won-s.BetThisHand, won > 0)
	}
	if a.sink != nil {
		a.sink.PushHandResult(table.ID(), *ev.Result, state.ActionHistory)
	}
}

// archetypeForBotID recovers a stable archetype from a bot's
// generated player id (round-robin assignment at seating time).
func archetypeForBotID(playerID string) Archetype {
	var n int
	_, err := fmt.Sscanf(lastSegment(playerID), "%d", &n)
	if err != nil || n <= 0 {
		return ArchetypeRandom
	}
	return Archetypes[(n-1)%len(Archetypes)]
}

func lastSegment(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '-' {
			return s[i+1:]
		}
	}
	return s
}
