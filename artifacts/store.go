package artifacts

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"stillreel/logger"
	"stillreel/models"

	"github.com/google/uuid"
)

// URLPrefix is where routes serves live artifacts.
const URLPrefix = "/artifacts/"

var (
	ErrNotFound = errors.New("artifact not found")
	ErrEmpty    = errors.New("artifact is empty")
)

type entry struct {
	meta models.Artifact
	data []byte
}

// Store keeps published artifacts in memory until they are released.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{entries: make(map[string]entry), now: time.Now}
}

// Publish stores data and returns a reference to it.
func (s *Store) Publish(data []byte, contentType string) (models.Artifact, error) {
	if len(data) == 0 {
		return models.Artifact{}, ErrEmpty
	}

	id := uuid.NewString()
	a := models.Artifact{
		ID:          id,
		URL:         fmt.Sprintf("%s%s.mp4", URLPrefix, id),
		ContentType: contentType,
		Size:        len(data),
		CreatedAt:   s.now(),
	}

	s.mu.Lock()
	s.entries[id] = entry{meta: a, data: data}
	s.mu.Unlock()

	logger.Debugf("artifact %s published (%d bytes)", id, len(data))
	return a, nil
}

// Open returns a live artifact and its bytes. Callers must not modify the slice.
func (s *Store) Open(id string) (models.Artifact, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return models.Artifact{}, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.meta, e.data, nil
}

// Release drops an artifact. Unknown ids are ignored.
func (s *Store) Release(id string) {
	s.mu.Lock()
	_, ok := s.entries[id]
	delete(s.entries, id)
	s.mu.Unlock()

	if ok {
		logger.Debugf("artifact %s released", id)
	}
}

// Len reports the number of live artifacts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close releases everything.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]entry)
}
