package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/recordkit/recstamp/internal/utils/logger"
	"go.uber.org/zap"
)

// MemoryStorage is an in-memory implementation of RunStorage, used in tests
// and when history is disabled
type MemoryStorage struct {
	mu   sync.RWMutex
	runs map[string]*RunInfo
}

// NewMemoryStorage creates a new in-memory run store
func NewMemoryStorage() RunStorage {
	return &MemoryStorage{
		runs: make(map[string]*RunInfo),
	}
}

// Open initializes the storage
func (s *MemoryStorage) Open() error {
	logger.Debug("Opening memory storage")
	return nil
}

// Close closes the storage
func (s *MemoryStorage) Close() error {
	logger.Debug("Closing memory storage")
	return nil
}

// CreateRun stores a new run in the history
func (s *MemoryStorage) CreateRun(ctx context.Context, run *RunInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Debug("Recording run in memory", zap.String("id", run.ID))
	s.runs[run.ID] = run
	return nil
}

// GetRun retrieves a run by its ID
func (s *MemoryStorage) GetRun(ctx context.Context, runID string) (*RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, ErrRunNotFound{RunID: runID}
	}

	return run, nil
}

// ListRuns retrieves runs ordered newest first
func (s *MemoryStorage) ListRuns(ctx context.Context, limit int) ([]*RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]*RunInfo, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	return runs, nil
}

// DeleteRun removes a run from the history
func (s *MemoryStorage) DeleteRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[runID]; !ok {
		return ErrRunNotFound{RunID: runID}
	}

	delete(s.runs, runID)
	return nil
}

// ClearRuns removes all runs from the history
func (s *MemoryStorage) ClearRuns(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = make(map[string]*RunInfo)
	return nil
}

// TotalRecords returns the sum of record counts across all stored runs
func (s *MemoryStorage) TotalRecords(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, run := range s.runs {
		total += run.Records
	}
	return total, nil
}
