// Package settle accumulates completed hands per room, flushes them in
// batches with a keccak-256 Merkle commitment over the action log, and
// publishes the result to Kafka for downstream persistence.
package settle

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"

	"poker-platform/internal/game"
	"poker-platform/internal/storage"
)

// Config controls batching and retry behaviour.
type Config struct {
	BatchSize       int
	FlushIntervalMs int64
	RetryCount      int
	RetryDelayMs    int64
}

// DefaultConfig matches the teacher's conservative defaults for
// batch-oriented external writes.
func DefaultConfig() Config {
	return Config{
		BatchSize:       20,
		FlushIntervalMs: 5000,
		RetryCount:      3,
		RetryDelayMs:    1000,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.FlushIntervalMs <= 0 {
		c.FlushIntervalMs = d.FlushIntervalMs
	}
	if c.RetryCount <= 0 {
		c.RetryCount = d.RetryCount
	}
	if c.RetryDelayMs <= 0 {
		c.RetryDelayMs = d.RetryDelayMs
	}
}

// ErrorHandler observes a batch that exhausted its retries. The batch's
// hands are not retried further; there is no auto-reconciliation.
type ErrorHandler func(roomID string, handNumbers []int64, err error)

type pendingHand struct {
	handNumber int64
	result     game.HandResult
	actions    []game.MultiActionRecord
}

type roomBatch struct {
	hands []pendingHand
	timer *quartz.Timer
}

// Settler accumulates HandResults per room and flushes them as
// SettlementRecords once a size or time trigger fires.
type Settler struct {
	config    Config
	store     storage.SettlementStore
	archive   storage.ActionLogArchive
	publisher *KafkaPublisher
	clock     quartz.Clock
	onError   ErrorHandler

	mu    sync.Mutex
	rooms map[string]*roomBatch
}

// NewSettler builds a Settler. A nil clock falls back to
// quartz.NewReal(); publisher and archive may be nil if that sink isn't
// wired. A nil onError is a no-op.
func NewSettler(config Config, store storage.SettlementStore, archive storage.ActionLogArchive, publisher *KafkaPublisher, clock quartz.Clock, onError ErrorHandler) *Settler {
	config.applyDefaults()
	if clock == nil {
		clock = quartz.NewReal()
	}
	if onError == nil {
		onError = func(string, []int64, error) {}
	}
	return &Settler{
		config:    config,
		store:     store,
		archive:   archive,
		publisher: publisher,
		clock:     clock,
		onError:   onError,
		rooms:     make(map[string]*roomBatch),
	}
}

// PushHandResult accumulates one completed hand's result and action log
// for roomID. Safe for concurrent callers across different rooms; a
// single room's pushes are serialised.
func (s *Settler) PushHandResult(roomID string, result game.HandResult, actions []game.MultiActionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.rooms[roomID]
	if room == nil {
		room = &roomBatch{}
		s.rooms[roomID] = room
	}
	room.hands = append(room.hands, pendingHand{
		handNumber: result.HandNumber,
		result:     result,
		actions:    actions,
	})

	if len(room.hands) >= s.config.BatchSize {
		s.flushLocked(roomID)
		return
	}

	s.armInactivityTimerLocked(roomID, room)
}

// FinalizeRoom flushes whatever is pending for roomID immediately, even
// a partial batch, and disarms its inactivity timer.
func (s *Settler) FinalizeRoom(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room := s.rooms[roomID]
	if room == nil || len(room.hands) == 0 {
		return
	}
	s.flushLocked(roomID)
}

func (s *Settler) armInactivityTimerLocked(roomID string, room *roomBatch) {
	if room.timer != nil {
		room.timer.Stop()
	}
	room.timer = s.clock.AfterFunc(msToDuration(s.config.FlushIntervalMs), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if r := s.rooms[roomID]; r != nil && len(r.hands) > 0 {
			s.flushLocked(roomID)
		}
	})
}

func msToDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// flushLocked builds and persists a SettlementRecord for roomID's
// pending hands. Must be called with s.mu held.
func (s *Settler) flushLocked(roomID string) {
	room := s.rooms[roomID]
	if room == nil || len(room.hands) == 0 {
		return
	}
	if room.timer != nil {
		room.timer.Stop()
		room.timer = nil
	}

	hands := room.hands
	room.hands = nil

	record := buildSettlementRecord(roomID, hands, s.clock.Now())
	entries := buildActionLogEntries(roomID, hands)

	go s.persist(roomID, record, entries)
}

func (s *Settler) persist(roomID string, record storage.SettlementRecord, entries []storage.ActionLogEntry) {
	ctx := context.Background()

	var lastErr error
	for attempt := 1; attempt <= s.config.RetryCount; attempt++ {
		lastErr = s.attemptPersist(ctx, record, entries)
		if lastErr == nil {
			return
		}
		if attempt < s.config.RetryCount {
			time.Sleep(msToDuration(s.config.RetryDelayMs * int64(attempt)))
		}
	}

	s.onError(roomID, record.HandNumbers, fmt.Errorf("settlement persist exhausted %d attempts: %w", s.config.RetryCount, lastErr))
}

func (s *Settler) attemptPersist(ctx context.Context, record storage.SettlementRecord, entries []storage.ActionLogEntry) error {
	if s.store != nil {
		if err := s.store.SaveSettlement(ctx, record); err != nil {
			return fmt.Errorf("save settlement: %w", err)
		}
	}
	if s.archive != nil && len(entries) > 0 {
		if err := s.archive.ArchiveActions(ctx, entries); err != nil {
			return fmt.Errorf("archive actions: %w", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(record); err != nil {
			return fmt.Errorf("publish settlement: %w", err)
		}
	}
	return nil
}

func buildSettlementRecord(roomID string, hands []pendingHand, now time.Time) storage.SettlementRecord {
	sessionID := keccak256([]byte(fmt.Sprintf("%s|%d", roomID, now.UnixMilli())))

	handNumbers := make([]int64, len(hands))
	winnersPerHand := make([][]string, len(hands))
	amountsPerHand := make([][]int64, len(hands))
	actionLogHashes := make([][32]byte, len(hands))

	net := make(map[string]int64)

	for i, h := range hands {
		handNumbers[i] = h.handNumber

		winners := make([]string, len(h.result.Winners))
		amounts := make([]int64, len(h.result.Winners))
		for j, w := range h.result.Winners {
			winners[j] = w.PlayerID
			amounts[j] = w.Amount
			net[w.PlayerID] += w.Amount
		}
		winnersPerHand[i] = winners
		amountsPerHand[i] = amounts

		for _, a := range h.actions {
			net[a.PlayerID] -= a.Amount
		}

		actionLogHashes[i] = LeafHash(h.actions)
	}

	players := make([]string, 0, len(net))
	for playerID, delta := range net {
		if delta == 0 {
			continue
		}
		players = append(players, playerID)
	}
	sort.Strings(players)

	chipDeltas := make([]int64, len(players))
	for i, playerID := range players {
		chipDeltas[i] = net[playerID]
	}

	leaves := make([]Hash, 0, len(actionLogHashes))
	for _, h := range actionLogHashes {
		if h != (Hash{}) {
			leaves = append(leaves, h)
		}
	}

	return storage.SettlementRecord{
		SessionID:       sessionID,
		HandNumbers:     handNumbers,
		WinnersPerHand:  winnersPerHand,
		AmountsPerHand:  amountsPerHand,
		ActionLogHashes: actionLogHashes,
		Players:         players,
		ChipDeltas:      chipDeltas,
		MerkleRoot:      MerkleRoot(leaves),
		CreatedAt:       now,
	}
}

func buildActionLogEntries(roomID string, hands []pendingHand) []storage.ActionLogEntry {
	var entries []storage.ActionLogEntry
	for _, h := range hands {
		for _, a := range h.actions {
			entries = append(entries, storage.ActionLogEntry{
				RoomID:      roomID,
				PlayerID:    a.PlayerID,
				Action:      a.Action.String(),
				Amount:      a.Amount,
				Phase:       a.Phase.String(),
				TimestampMs: a.TimestampMs,
			})
		}
	}
	return entries
}
