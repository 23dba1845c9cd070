package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recordkit/recstamp/internal/record"
)

func setupTestStorage(t *testing.T) (*BoltDBStorage, func()) {
	dir, err := os.MkdirTemp("", "recstamp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}

	dbPath := filepath.Join(dir, "test.db")
	storage := NewBoltDBStorage(&BoltOptions{
		Path: dbPath,
	})

	if err := storage.Open(); err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}

	cleanup := func() {
		storage.Close()
		os.RemoveAll(dir)
	}

	return storage, cleanup
}

func createTestRun(source string, records int, startedAt time.Time) *RunInfo {
	return &RunInfo{
		ID:         uuid.NewString(),
		Source:     source,
		Records:    records,
		Output:     record.JSON,
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(5 * time.Millisecond),
	}
}

func TestBoltDBStorage_CreateAndGetRun(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	run := createTestRun("records.json", 3, time.Now())

	if err := storage.CreateRun(ctx, run); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	retrieved, err := storage.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}

	if retrieved.ID != run.ID {
		t.Errorf("Retrieved run ID does not match: got %s, want %s", retrieved.ID, run.ID)
	}
	if retrieved.Source != run.Source {
		t.Errorf("Source: got %s, want %s", retrieved.Source, run.Source)
	}
	if retrieved.Records != run.Records {
		t.Errorf("Records: got %d, want %d", retrieved.Records, run.Records)
	}
}

func TestBoltDBStorage_GetMissingRun(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := storage.GetRun(context.Background(), "no-such-run")
	if err == nil {
		t.Fatal("Expected error for missing run")
	}
	if !IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestBoltDBStorage_ListRunsNewestFirst(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	base := time.Now()
	oldest := createTestRun("a.json", 1, base.Add(-2*time.Hour))
	middle := createTestRun("b.json", 2, base.Add(-1*time.Hour))
	newest := createTestRun("c.json", 3, base)

	for _, run := range []*RunInfo{middle, oldest, newest} {
		if err := storage.CreateRun(ctx, run); err != nil {
			t.Fatalf("Failed to create run: %v", err)
		}
	}

	runs, err := storage.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != newest.ID || runs[2].ID != oldest.ID {
		t.Errorf("Runs not sorted newest first: %s, %s, %s",
			runs[0].Source, runs[1].Source, runs[2].Source)
	}

	limited, err := storage.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list runs with limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 runs with limit, got %d", len(limited))
	}
}

func TestBoltDBStorage_DeleteRun(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	run := createTestRun("records.json", 1, time.Now())

	if err := storage.CreateRun(ctx, run); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}
	if err := storage.DeleteRun(ctx, run.ID); err != nil {
		t.Fatalf("Failed to delete run: %v", err)
	}
	if _, err := storage.GetRun(ctx, run.ID); !IsNotFound(err) {
		t.Errorf("Expected not-found after delete, got %v", err)
	}

	if err := storage.DeleteRun(ctx, run.ID); !IsNotFound(err) {
		t.Errorf("Expected not-found deleting twice, got %v", err)
	}
}

func TestBoltDBStorage_ClearRuns(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := storage.CreateRun(ctx, createTestRun("records.json", i, time.Now())); err != nil {
			t.Fatalf("Failed to create run: %v", err)
		}
	}

	if err := storage.ClearRuns(ctx); err != nil {
		t.Fatalf("Failed to clear runs: %v", err)
	}

	runs, err := storage.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list runs after clear: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Expected no runs after clear, got %d", len(runs))
	}
}

func TestBoltDBStorage_TotalRecords(t *testing.T) {
	storage, cleanup := setupTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	for _, n := range []int{2, 3, 5} {
		if err := storage.CreateRun(ctx, createTestRun("records.json", n, time.Now())); err != nil {
			t.Fatalf("Failed to create run: %v", err)
		}
	}

	total, err := storage.TotalRecords(ctx)
	if err != nil {
		t.Fatalf("Failed to total records: %v", err)
	}
	if total != 10 {
		t.Errorf("TotalRecords: got %d, want 10", total)
	}
}

func TestBoltDBStorage_Persistence(t *testing.T) {
	dir, err := os.MkdirTemp("", "recstamp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(dir)

	dbPath := filepath.Join(dir, "test.db")
	ctx := context.Background()
	run := createTestRun("records.json", 4, time.Now())

	first := NewBoltDBStorage(&BoltOptions{Path: dbPath})
	if err := first.Open(); err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	if err := first.CreateRun(ctx, run); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Failed to close storage: %v", err)
	}

	second := NewBoltDBStorage(&BoltOptions{Path: dbPath})
	if err := second.Open(); err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	defer second.Close()

	retrieved, err := second.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get run after reopen: %v", err)
	}
	if retrieved.Records != run.Records {
		t.Errorf("Records after reopen: got %d, want %d", retrieved.Records, run.Records)
	}
}
