package credentials

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/pebble"
)

func TestStoreGetDelete(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "credentials.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	key, err := s.Store(map[string]string{"accessKey": "AKIA", "secretKey": "shh", "region": "eu-west-1", "bucket": "clips"})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("unexpected key %q", key)
	}

	creds, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if creds["bucket"] != "clips" || creds["secretKey"] != "shh" {
		t.Fatalf("unexpected creds %v", creds)
	}

	if err := s.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(key); !errors.Is(err, pebble.ErrNotFound) {
		t.Fatalf("Get after delete err = %v, want ErrNotFound", err)
	}
}

func TestStoreRejectsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "credentials.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.Store(nil); err == nil {
		t.Fatal("expected error for empty credentials")
	}
}
