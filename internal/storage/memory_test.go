package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStorage_Basic(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	if err := storage.Open(); err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	defer storage.Close()

	run := createTestRun("stdin", 2, time.Now())
	if err := storage.CreateRun(ctx, run); err != nil {
		t.Fatalf("Failed to create run: %v", err)
	}

	retrieved, err := storage.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if retrieved.Source != "stdin" {
		t.Errorf("Source: got %s, want stdin", retrieved.Source)
	}

	if _, err := storage.GetRun(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestMemoryStorage_ListAndClear(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	if err := storage.Open(); err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	defer storage.Close()

	base := time.Now()
	newest := createTestRun("new.json", 1, base)
	oldest := createTestRun("old.json", 1, base.Add(-time.Hour))

	for _, run := range []*RunInfo{oldest, newest} {
		if err := storage.CreateRun(ctx, run); err != nil {
			t.Fatalf("Failed to create run: %v", err)
		}
	}

	runs, err := storage.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != newest.ID {
		t.Errorf("Expected newest run first, got %s", runs[0].Source)
	}

	total, err := storage.TotalRecords(ctx)
	if err != nil {
		t.Fatalf("Failed to total records: %v", err)
	}
	if total != 2 {
		t.Errorf("TotalRecords: got %d, want 2", total)
	}

	if err := storage.ClearRuns(ctx); err != nil {
		t.Fatalf("Failed to clear runs: %v", err)
	}
	runs, err = storage.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list runs after clear: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("Expected no runs after clear, got %d", len(runs))
	}
}
