// Package storage persists settlement batches and action-log
// archives produced by internal/settle. Two narrow interfaces keep
// the settler decoupled from which concrete database backs each
// concern.
package storage

import (
	"context"
	"time"
)

// SettlementRecord is the persisted form of one flushed batch, per
// the settlement record layout.
type SettlementRecord struct {
	SessionID       [32]byte
	HandNumbers     []int64
	WinnersPerHand  [][]string
	AmountsPerHand  [][]int64
	ActionLogHashes [][32]byte
	Players         []string
	ChipDeltas      []int64
	MerkleRoot      [32]byte
	CreatedAt       time.Time
}

// SettlementStore persists settlement batches for later audit and
// reconciliation. Grounded on the teacher's Postgres session store
// shape, retargeted from session bookkeeping to settlement records.
type SettlementStore interface {
	SaveSettlement(ctx context.Context, record SettlementRecord) error
	GetSettlement(ctx context.Context, sessionID [32]byte) (*SettlementRecord, error)
	ListSettlements(ctx context.Context, since time.Time, limit int) ([]SettlementRecord, error)
}

// ActionLogEntry is one archived action, denormalised for columnar
// storage.
type ActionLogEntry struct {
	RoomID      string
	PlayerID    string
	Action      string
	Amount      int64
	Phase       string
	TimestampMs int64
}

// ActionLogArchive persists the full per-action history independent
// of the Merkle commitment, for dispute resolution and analytics.
// Grounded on the teacher's ClickHouse analytics sink.
type ActionLogArchive interface {
	ArchiveActions(ctx context.Context, entries []ActionLogEntry) error
	QueryRoomActions(ctx context.Context, roomID string, limit int) ([]ActionLogEntry, error)
}
