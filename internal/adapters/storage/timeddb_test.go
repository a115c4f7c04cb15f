package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingObserver struct {
	mu  sync.Mutex
	ops []string
}

func (r *recordingObserver) ObserveQuery(op string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *recordingObserver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

// TestTimedDB_ObservesEveryCall verifies each wrapped method reports to the observer.
func TestTimedDB_ObservesEveryCall(t *testing.T) {
	db := openTestDB(t)
	obs := &recordingObserver{}
	tdb := NewTimedDB(db, zap.NewNop(), obs, time.Second)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id FROM test")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()

	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q, want hello", val)
	}

	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	tx.Rollback()

	if obs.count() != 5 {
		t.Errorf("observed %d calls, want 5", obs.count())
	}
}

// TestTimedDB_WarnsOnSlowQuery verifies the slow-query warning carries the event field.
func TestTimedDB_WarnsOnSlowQuery(t *testing.T) {
	db := openTestDB(t)
	core, logs := observer.New(zap.WarnLevel)
	tdb := NewTimedDB(db, zap.New(core), nil, time.Nanosecond)

	if _, err := tdb.ExecContext(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}

	entries := logs.FilterMessage("slow query").All()
	if len(entries) != 1 {
		t.Fatalf("slow query warnings = %d, want 1", len(entries))
	}
	if entries[0].ContextMap()["event"] != "slow_query" {
		t.Errorf("event field = %v", entries[0].ContextMap()["event"])
	}
}
