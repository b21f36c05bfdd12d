package storage

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// ClickHouseConfig holds ClickHouse connection configuration.
type ClickHouseConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Database     string        `yaml:"database"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	Secure       bool          `yaml:"secure"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	ConnTimeout  time.Duration `yaml:"conn_timeout"`
}

// ClickHouseActionLog implements ActionLogArchive for ClickHouse, batching
// every action across every room into one columnar table.
type ClickHouseActionLog struct {
	db clickhouse.Conn
}

// NewClickHouseActionLog opens a ClickHouse connection and verifies it.
func NewClickHouseActionLog(ctx context.Context, config ClickHouseConfig) (*ClickHouseActionLog, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", config.Host, config.Port)},
		Auth: clickhouse.Auth{
			Database: config.Database,
			Username: config.Username,
			Password: config.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		TLS: &tls.Config{InsecureSkipVerify: config.Secure},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseActionLog{db: conn}, nil
}

// CreateTables creates the action log table if it doesn't exist.
func (ch *ClickHouseActionLog) CreateTables(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS action_log (
		room_id String,
		player_id String,
		action String,
		amount Int64,
		phase String,
		timestamp_ms Int64
	) ENGINE = MergeTree()
	ORDER BY (room_id, timestamp_ms)`

	return ch.db.Exec(ctx, query)
}

// ArchiveActions inserts a batch of action log entries in one round trip.
func (ch *ClickHouseActionLog) ArchiveActions(ctx context.Context, entries []ActionLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch, err := ch.db.PrepareBatch(ctx, "INSERT INTO action_log")
	if err != nil {
		return fmt.Errorf("prepare action log batch: %w", err)
	}

	for _, e := range entries {
		if err := batch.Append(e.RoomID, e.PlayerID, e.Action, e.Amount, e.Phase, e.TimestampMs); err != nil {
			return fmt.Errorf("append action log entry: %w", err)
		}
	}

	return batch.Send()
}

// QueryRoomActions retrieves the most recent actions archived for a room.
func (ch *ClickHouseActionLog) QueryRoomActions(ctx context.Context, roomID string, limit int) ([]ActionLogEntry, error) {
	query := `
		SELECT room_id, player_id, action, amount, phase, timestamp_ms
		FROM action_log
		WHERE room_id = ?
		ORDER BY timestamp_ms DESC
		LIMIT ?
	`

	rows, err := ch.db.Query(ctx, query, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []ActionLogEntry
	for rows.Next() {
		var e ActionLogEntry
		if err := rows.Scan(&e.RoomID, &e.PlayerID, &e.Action, &e.Amount, &e.Phase, &e.TimestampMs); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the ClickHouse connection.
func (ch *ClickHouseActionLog) Close() error {
	return ch.db.Close()
}

// Ping checks if the connection is alive.
func (ch *ClickHouseActionLog) Ping(ctx context.Context) error {
	return ch.db.Ping(ctx)
}
