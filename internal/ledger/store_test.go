package ledger

import (
	"math"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "usage.db"))
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AppendAndLoad(t *testing.T) {
	store := openTestStore(t)

	now := time.Now().UTC().Truncate(time.Millisecond)
	entries := []Entry{
		{Timestamp: now, ModelID: "model-a", TokensUsed: 1000, CostIncurred: 0.25, QualityScore: 8},
		{Timestamp: now.Add(time.Second), ModelID: "model-b", TokensUsed: 2000, CostIncurred: 0.50, QualityScore: 6},
	}
	for _, e := range entries {
		if err := store.Append(e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	loaded, err := store.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries() error = %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("len(loaded) = %d, want 2", len(loaded))
	}
	if loaded[0].ModelID != "model-a" || loaded[1].ModelID != "model-b" {
		t.Errorf("load order = [%s, %s], want append order", loaded[0].ModelID, loaded[1].ModelID)
	}
	if !loaded[0].Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", loaded[0].Timestamp, now)
	}

	summary, err := store.LoadSummary()
	if err != nil {
		t.Fatalf("LoadSummary() error = %v", err)
	}
	if summary.CallCount != 2 {
		t.Errorf("CallCount = %d, want 2", summary.CallCount)
	}
	if math.Abs(summary.TotalCost-0.75) > 1e-9 {
		t.Errorf("TotalCost = %v, want 0.75", summary.TotalCost)
	}
	if math.Abs(summary.AverageQuality-7) > 1e-9 {
		t.Errorf("AverageQuality = %v, want 7", summary.AverageQuality)
	}
}

func TestStore_EmptySummary(t *testing.T) {
	store := openTestStore(t)
	summary, err := store.LoadSummary()
	if err != nil {
		t.Fatalf("LoadSummary() error = %v", err)
	}
	if summary.CallCount != 0 || summary.TotalCost != 0 || summary.AverageQuality != 0 {
		t.Errorf("empty summary = %+v, want zero values", summary)
	}
}

func TestStore_Clear(t *testing.T) {
	store := openTestStore(t)
	if err := store.Append(Entry{Timestamp: time.Now(), ModelID: "model-a", QualityScore: 5}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	loaded, err := store.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries() error = %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("len(loaded) = %d after Clear, want 0", len(loaded))
	}
}

func TestStore_AsLedgerSink(t *testing.T) {
	store := openTestStore(t)
	l := New(store)
	l.Record(Entry{ModelID: "model-a", TokensUsed: 100, CostIncurred: 0.1, QualityScore: 7})

	loaded, err := store.LoadEntries()
	if err != nil {
		t.Fatalf("LoadEntries() error = %v", err)
	}
	if len(loaded) != 1 || loaded[0].ModelID != "model-a" {
		t.Errorf("persisted entries = %+v, want one model-a entry", loaded)
	}
}
