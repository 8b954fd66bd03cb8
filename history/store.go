package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"stillreel/models"

	pebble "github.com/cockroachdb/pebble"
)

var errNotOpen = errors.New("history store not initialized")

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// RunRecord is one finished CreateVideo call.
type RunRecord struct {
	ID         string          `json:"id"`
	Outcome    Outcome         `json:"outcome"`
	Step       string          `json:"step,omitempty"`  // failing step, empty on success
	Error      string          `json:"error,omitempty"` // underlying cause
	Image      models.SlotInfo `json:"image"`
	Audio      models.SlotInfo `json:"audio"`
	ArtifactID string          `json:"artifact_id,omitempty"`
	OutputSize int             `json:"output_size,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
}

func (r RunRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store persists run records in pebble, keyed by run id. It is safe for
// concurrent use; calls after Close return an error.
type Store struct {
	mu sync.RWMutex
	db *pebble.DB
}

// Open opens (or creates) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Record stores rec, replacing any record with the same id.
func (s *Store) Record(rec RunRecord) error {
	if s == nil {
		return errNotOpen
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return errNotOpen
	}
	if rec.ID == "" {
		return errors.New("run record without id")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal run record: %w", err)
	}
	return s.db.Set([]byte(rec.ID), data, pebble.Sync)
}

// Get returns the record for id, or nil if there is none.
func (s *Store) Get(id string) (*RunRecord, error) {
	if s == nil {
		return nil, errNotOpen
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errNotOpen
	}

	data, closer, err := s.db.Get([]byte(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	defer closer.Close()

	var rec RunRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run record: %w", err)
	}
	return &rec, nil
}

func (s *Store) Delete(id string) error {
	if s == nil {
		return errNotOpen
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return errNotOpen
	}
	return s.db.Delete([]byte(id), pebble.Sync)
}

// List returns every record, newest first.
func (s *Store) List() ([]RunRecord, error) {
	if s == nil {
		return nil, errNotOpen
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errNotOpen
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	var records []RunRecord
	for iter.First(); iter.Valid(); iter.Next() {
		var rec RunRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue // Skip invalid records
		}
		records = append(records, rec)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records, nil
}

// CleanupOlderThan removes records that finished before now-maxAge and
// returns how many were removed.
func (s *Store) CleanupOlderThan(maxAge time.Duration) (int, error) {
	if s == nil {
		return 0, errNotOpen
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, errNotOpen
	}

	cutoff := time.Now().Add(-maxAge)
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return 0, err
	}

	var keysToDelete [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		var rec RunRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			continue
		}
		if rec.FinishedAt.Before(cutoff) {
			key := make([]byte, len(iter.Key()))
			copy(key, iter.Key())
			keysToDelete = append(keysToDelete, key)
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	for _, key := range keysToDelete {
		if err := batch.Delete(key, nil); err != nil {
			return 0, fmt.Errorf("failed to delete old run record: %w", err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return 0, fmt.Errorf("failed to commit cleanup: %w", err)
	}
	return len(keysToDelete), nil
}

// CheckHealth performs a read against the database.
func (s *Store) CheckHealth() error {
	if s == nil {
		return errNotOpen
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return errNotOpen
	}

	_, closer, err := s.db.Get([]byte("__health_check__"))
	if err != nil && !errors.Is(err, pebble.ErrNotFound) {
		return fmt.Errorf("database health check failed: %w", err)
	}
	if closer != nil {
		closer.Close()
	}
	return nil
}
