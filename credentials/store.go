package credentials

import (
	"encoding/json"
	"errors"
	"fmt"

	"stillreel/logger"
	"stillreel/utils"

	"github.com/cockroachdb/pebble"
)

// Store keeps export credentials (S3 keys, GCS service accounts, SFTP logins)
// under random hex keys that callers pass back on export.
type Store struct {
	db *pebble.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := pebble.Open(dbPath, &pebble.Options{})
	if err != nil {
		logger.Errorf("Failed to open credentials DB: %v", err)
		return nil, fmt.Errorf("open credentials store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Store saves creds under a freshly generated key and returns the key.
func (s *Store) Store(creds map[string]string) (string, error) {
	if len(creds) == 0 {
		return "", errors.New("no credentials given")
	}
	key, err := utils.GenerateRandomHex(16)
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	if err := s.Put(key, creds); err != nil {
		return "", err
	}
	return key, nil
}

// Put saves creds under key, replacing what was there.
func (s *Store) Put(key string, creds map[string]string) error {
	encoded, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	return s.db.Set([]byte(key), encoded, pebble.Sync)
}

// Get returns the credentials for key. Unknown keys return pebble.ErrNotFound.
func (s *Store) Get(key string) (map[string]string, error) {
	value, closer, err := s.db.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	creds := make(map[string]string)
	if err := json.Unmarshal(value, &creds); err != nil {
		return nil, fmt.Errorf("decode credentials: %w", err)
	}
	return creds, nil
}

func (s *Store) Delete(key string) error {
	return s.db.Delete([]byte(key), pebble.Sync)
}
