// Package tablemgr owns the tableId -> *game.Table mapping, the one
// registry instance every table loop and REST handler shares.
package tablemgr

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"poker-platform/internal/game"
)

var (
	ErrDuplicateTableID = errors.New("tablemgr: table id already exists")
	ErrTableNotFound     = errors.New("tablemgr: table not found")
)

// Manager is a mutex-guarded map over live tables, mirroring the
// teacher's engine-registry shape retargeted to table lifecycle
// instead of rules-engine lifecycle.
type Manager struct {
	mu     sync.RWMutex
	tables map[string]*game.Table

	practiceSeq atomic.Int64
}

// NewManager constructs an empty table manager.
func NewManager() *Manager {
	return &Manager{tables: make(map[string]*game.Table)}
}

// CreateTable registers a new table under config.TableID. Fails if
// the id is already taken.
func (m *Manager) CreateTable(config game.TableConfig, opts ...game.Option) (*game.Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tables[config.TableID]; exists {
		return nil, ErrDuplicateTableID
	}

	table, err := game.NewTable(config, opts...)
	if err != nil {
		return nil, err
	}
	m.tables[config.TableID] = table
	return table, nil
}

// CreatePracticeTable assigns an auto-incrementing id to config and
// creates it, for quick bot-filled tables with no caller-chosen id.
func (m *Manager) CreatePracticeTable(config game.TableConfig, opts ...game.Option) (*game.Table, error) {
	for {
		n := m.practiceSeq.Add(1)
		id := fmt.Sprintf("practice-%d", n)

		m.mu.RLock()
		_, taken := m.tables[id]
		m.mu.RUnlock()
		if taken {
			continue
		}

		config.TableID = id
		return m.CreateTable(config, opts...)
	}
}

// GetTable looks up a table by id.
func (m *Manager) GetTable(tableID string) (*game.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	table, ok := m.tables[tableID]
	if !ok {
		return nil, ErrTableNotFound
	}
	return table, nil
}

// ListTables returns every currently registered table.
func (m *Manager) ListTables() []*game.Table {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*game.Table, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, t)
	}
	return out
}

// RemoveTable destroys and unregisters a table. Returns
// ErrTableNotFound if no table has that id, including on a repeat call.
func (m *Manager) RemoveTable(tableID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	table, ok := m.tables[tableID]
	if !ok {
		return ErrTableNotFound
	}
	table.Destroy()
	delete(m.tables, tableID)
	return nil
}

// RemoveAllTables destroys and unregisters every table.
func (m *Manager) RemoveAllTables() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, table := range m.tables {
		table.Destroy()
		delete(m.tables, id)
	}
}

// Count returns the number of currently registered tables.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}
