package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/recordkit/recstamp/internal/utils/logger"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	// DefaultBoltFilePath is the default path for the BoltDB file
	DefaultBoltFilePath = "recstamp-history.db"

	// DefaultBoltFileMode is the default file mode for the BoltDB file
	DefaultBoltFileMode = 0600

	// DefaultBoltTimeout is the default timeout for BoltDB operations
	DefaultBoltTimeout = 1 * time.Second
)

// runBucket is the bucket where run history is stored
var runBucket = []byte("runs")

// BoltDBStorage implements the RunStorage interface using BoltDB
type BoltDBStorage struct {
	db      *bolt.DB
	path    string
	options *BoltOptions
}

// BoltOptions configures the BoltDB storage
type BoltOptions struct {
	// Path to the BoltDB file
	Path string
	// File mode for the BoltDB file
	FileMode os.FileMode
	// Timeout for BoltDB operations
	Timeout time.Duration
}

// NewBoltDBStorage creates a new BoltDBStorage with the given options
func NewBoltDBStorage(opts *BoltOptions) *BoltDBStorage {
	if opts == nil {
		opts = &BoltOptions{}
	}

	if opts.Path == "" {
		opts.Path = DefaultBoltFilePath
	}
	if opts.FileMode == 0 {
		opts.FileMode = DefaultBoltFileMode
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultBoltTimeout
	}

	return &BoltDBStorage{
		path:    opts.Path,
		options: opts,
	}
}

// Open initializes the BoltDB database
func (s *BoltDBStorage) Open() error {
	logger.Debug("Opening history database", zap.String("path", s.path))

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for database: %w", err)
	}

	db, err := bolt.Open(s.path, s.options.FileMode, &bolt.Options{Timeout: s.options.Timeout})
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	s.db = db

	err = s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runBucket)
		if err != nil {
			return fmt.Errorf("failed to create runs bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		s.db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	return nil
}

// Close closes the BoltDB database
func (s *BoltDBStorage) Close() error {
	if s.db != nil {
		logger.Debug("Closing history database")
		return s.db.Close()
	}
	return nil
}

// CreateRun stores a new run in the history
func (s *BoltDBStorage) CreateRun(ctx context.Context, run *RunInfo) error {
	logger.Debug("Recording run", zap.String("id", run.ID))
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runBucket)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}

		data, err := json.Marshal(run)
		if err != nil {
			return fmt.Errorf("failed to marshal run: %w", err)
		}

		if err := b.Put([]byte(run.ID), data); err != nil {
			return fmt.Errorf("failed to store run: %w", err)
		}
		return nil
	})
}

// GetRun retrieves a run by its ID
func (s *BoltDBStorage) GetRun(ctx context.Context, runID string) (*RunInfo, error) {
	var run *RunInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(runBucket)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}

		data := b.Get([]byte(runID))
		if data == nil {
			return ErrRunNotFound{RunID: runID}
		}

		run = &RunInfo{}
		if err := json.Unmarshal(data, run); err != nil {
			return fmt.Errorf("failed to unmarshal run: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns retrieves runs ordered newest first
func (s *BoltDBStorage) ListRuns(ctx context.Context, limit int) ([]*RunInfo, error) {
	var runs []*RunInfo
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(runBucket)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}

		return b.ForEach(func(k, v []byte) error {
			run := &RunInfo{}
			if err := json.Unmarshal(v, run); err != nil {
				return fmt.Errorf("failed to unmarshal run %s: %w", k, err)
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, err
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
func (s *BoltDBStorage) DeleteRun(ctx context.Context, runID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runBucket)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}

		if b.Get([]byte(runID)) == nil {
			return ErrRunNotFound{RunID: runID}
		}

		return b.Delete([]byte(runID))
	})
}

// ClearRuns removes all runs from the history
func (s *BoltDBStorage) ClearRuns(ctx context.Context) error {
	logger.Debug("Clearing run history")
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(runBucket); err != nil {
			return fmt.Errorf("failed to delete runs bucket: %w", err)
		}
		if _, err := tx.CreateBucket(runBucket); err != nil {
			return fmt.Errorf("failed to recreate runs bucket: %w", err)
		}
		return nil
	})
}

// TotalRecords returns the sum of record counts across all stored runs
func (s *BoltDBStorage) TotalRecords(ctx context.Context) (int, error) {
	total := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(runBucket)
		if b == nil {
			return fmt.Errorf("runs bucket not found")
		}

		return b.ForEach(func(k, v []byte) error {
			run := &RunInfo{}
			if err := json.Unmarshal(v, run); err != nil {
				return fmt.Errorf("failed to unmarshal run %s: %w", k, err)
			}
			total += run.Records
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
