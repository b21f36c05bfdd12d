// Package postgres persists settlement batches with lib/pq, the same
// driver and query style the teacher used for its session store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"poker-platform/internal/storage"
)

// SettlementPostgresStorage implements storage.SettlementStore for PostgreSQL.
type SettlementPostgresStorage struct {
	db *sql.DB
}

// NewSettlementPostgresStorage creates a new PostgreSQL settlement store.
func NewSettlementPostgresStorage(db *sql.DB) *SettlementPostgresStorage {
	return &SettlementPostgresStorage{db: db}
}

// SaveSettlement persists one flushed settlement batch.
func (s *SettlementPostgresStorage) SaveSettlement(ctx context.Context, record storage.SettlementRecord) error {
	query := `
		INSERT INTO settlements (
			session_id, hand_numbers, winners_per_hand, amounts_per_hand,
			action_log_hashes, players, chip_deltas, merkle_root, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (session_id) DO NOTHING
	`

	winners, err := encodeHandGroups(record.WinnersPerHand)
	if err != nil {
		return err
	}
	amounts, err := encodeAmountGroups(record.AmountsPerHand)
	if err != nil {
		return err
	}
	hashes := make([][]byte, len(record.ActionLogHashes))
	for i, h := range record.ActionLogHashes {
		hashes[i] = h[:]
	}

	_, err = s.db.ExecContext(ctx, query,
		record.SessionID[:],
		pq.Int64Array(record.HandNumbers),
		winners,
		amounts,
		pq.ByteaArray(hashes),
		pq.StringArray(record.Players),
		pq.Int64Array(record.ChipDeltas),
		record.MerkleRoot[:],
		record.CreatedAt,
	)
	return err
}

// GetSettlement retrieves a settlement batch by session ID.
func (s *SettlementPostgresStorage) GetSettlement(ctx context.Context, sessionID [32]byte) (*storage.SettlementRecord, error) {
	query := `
		SELECT session_id, hand_numbers, winners_per_hand, amounts_per_hand,
		       action_log_hashes, players, chip_deltas, merkle_root, created_at
		FROM settlements
		WHERE session_id = $1
	`

	row := s.db.QueryRowContext(ctx, query, sessionID[:])
	record, err := scanSettlementRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return record, err
}

// ListSettlements retrieves settlement batches created since the given time.
func (s *SettlementPostgresStorage) ListSettlements(ctx context.Context, since time.Time, limit int) ([]storage.SettlementRecord, error) {
	query := `
		SELECT session_id, hand_numbers, winners_per_hand, amounts_per_hand,
		       action_log_hashes, players, chip_deltas, merkle_root, created_at
		FROM settlements
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []storage.SettlementRecord
	for rows.Next() {
		record, err := scanSettlementRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// CreateSettlementTable creates the settlements table if it doesn't exist.
func (s *SettlementPostgresStorage) CreateSettlementTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS settlements (
			session_id BYTEA PRIMARY KEY,
			hand_numbers BIGINT[] NOT NULL,
			winners_per_hand TEXT[] NOT NULL,
			amounts_per_hand TEXT[] NOT NULL,
			action_log_hashes BYTEA[] NOT NULL,
			players TEXT[] NOT NULL,
			chip_deltas BIGINT[] NOT NULL,
			merkle_root BYTEA NOT NULL,
			created_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_settlements_created_at ON settlements(created_at);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSettlementRow(row rowScanner) (*storage.SettlementRecord, error) {
	record := &storage.SettlementRecord{}
	var sessionID, merkleRoot []byte
	var handNumbers pq.Int64Array
	var winners, amounts pq.StringArray
	var hashes pq.ByteaArray
	var players pq.StringArray
	var chipDeltas pq.Int64Array

	err := row.Scan(
		&sessionID,
		&handNumbers,
		&winners,
		&amounts,
		&hashes,
		&players,
		&chipDeltas,
		&merkleRoot,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	copy(record.SessionID[:], sessionID)
	copy(record.MerkleRoot[:], merkleRoot)
	record.HandNumbers = []int64(handNumbers)
	record.Players = []string(players)
	record.ChipDeltas = []int64(chipDeltas)

	record.WinnersPerHand, err = decodeHandGroups([]string(winners))
	if err != nil {
		return nil, err
	}
	record.AmountsPerHand, err = decodeAmountGroups([]string(amounts))
	if err != nil {
		return nil, err
	}
	record.ActionLogHashes = make([][32]byte, len(hashes))
	for i, h := range hashes {
		copy(record.ActionLogHashes[i][:], h)
	}

	return record, nil
}

// encodeHandGroups serialises each hand's winner list as a Postgres text
// array literal, one element per hand.
func encodeHandGroups(groups [][]string) (pq.StringArray, error) {
	out := make(pq.StringArray, len(groups))
	for i, g := range groups {
		literal, err := pq.StringArray(g).Value()
		if err != nil {
			return nil, err
		}
		out[i] = literal.(string)
	}
	return out, nil
}

func decodeHandGroups(encoded []string) ([][]string, error) {
	out := make([][]string, len(encoded))
	for i, e := range encoded {
		g, err := parsePQStringArray(e)
		if err != nil {
			return nil, fmt.Errorf("decode hand group %d: %w", i, err)
		}
		out[i] = g
	}
	return out, nil
}

func encodeAmountGroups(groups [][]int64) (pq.StringArray, error) {
	out := make(pq.StringArray, len(groups))
	for i, g := range groups {
		strs := make([]string, len(g))
		for j, v := range g {
			strs[j] = fmt.Sprintf("%d", v)
		}
		literal, err := pq.StringArray(strs).Value()
		if err != nil {
			return nil, err
		}
		out[i] = literal.(string)
	}
	return out, nil
}

func decodeAmountGroups(encoded []string) ([][]int64, error) {
	out := make([][]int64, len(encoded))
	for i, e := range encoded {
		strs, err := parsePQStringArray(e)
		if err != nil {
			return nil, fmt.Errorf("decode amount group %d: %w", i, err)
		}
		vals := make([]int64, len(strs))
		for j, s := range strs {
			if _, err := fmt.Sscanf(s, "%d", &vals[j]); err != nil {
				return nil, fmt.Errorf("decode amount %q: %w", s, err)
			}
		}
		out[i] = vals
	}
	return out, nil
}

// parsePQStringArray parses a Postgres array literal produced by
// pq.StringArray.Value back into its elements.
func parsePQStringArray(literal string) ([]string, error) {
	var arr pq.StringArray
	if err := arr.Scan(literal); err != nil {
		return nil, err
	}
	return []string(arr), nil
}
