package tablemgr

import (
	"testing"

	"poker-platform/internal/game"
)

func testConfig(id string) game.TableConfig {
	return game.TableConfig{
		TableID:       id,
		TableName:     "Test Table",
		MaxPlayers:    6,
		SmallBlind:    5,
		BigBlind:      10,
		StartingStack: 1000,
	}
}

func TestCreateTableAndGet(t *testing.T) {
	m := NewManager()
	table, err := m.CreateTable(testConfig("t1"))
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	got, err := m.GetTable("t1")
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}
	if got != table {
		t.Fatal("expected GetTable to return the same instance CreateTable returned")
	}
}

func TestCreateTableRejectsDuplicateID(t *testing.T) {
	m := NewManager()
	if _, err := m.CreateTable(testConfig("dup")); err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if _, err := m.CreateTable(testConfig("dup")); err != ErrDuplicateTableID {
		t.Fatalf("expected ErrDuplicateTableID, got %v", err)
	}
}

func TestGetTableNotFound(t *testing.T) {
	m := NewManager()
	if _, err := m.GetTable("nope"); err != ErrTableNotFound {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
}

func TestCreatePracticeTableAutoIncrements(t *testing.T) {
	m := NewManager()
	a, err := m.CreatePracticeTable(testConfig(""))
	if err != nil {
		t.Fatalf("CreatePracticeTable: %v", err)
	}
	b, err := m.CreatePracticeTable(testConfig(""))
	if err != nil {
		t.Fatalf("CreatePracticeTable: %v", err)
	}
	if a.ID() == b.ID() {
		t.Fatalf("expected distinct auto-incremented ids, got %q twice", a.ID())
	}
}

func TestListTablesReflectsRegisteredTables(t *testing.T) {
	m := NewManager()
	m.CreateTable(testConfig("t1"))
	m.CreateTable(testConfig("t2"))

	if got := len(m.ListTables()); got != 2 {
		t.Fatalf("expected 2 tables listed, got %d", got)
	}
}

func TestRemoveTableUnregisters(t *testing.T) {
	m := NewManager()
	m.CreateTable(testConfig("t1"))

	if err := m.RemoveTable("t1"); err != nil {
		t.Fatalf("RemoveTable: %v", err)
	}
	if _, err := m.GetTable("t1"); err != ErrTableNotFound {
		t.Fatalf("expected table to be gone after removal, got %v", err)
	}
}

func TestRemoveAllTablesClearsEverything(t *testing.T) {
	m := NewManager()
	m.CreateTable(testConfig("t1"))
	m.CreateTable(testConfig("t2"))

	m.RemoveAllTables()
	if m.Count() != 0 {
		t.Fatalf("expected 0 tables after RemoveAllTables, got %d", m.Count())
	}
}
