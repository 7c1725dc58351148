// ABOUTME: bbolt-backed snapshot persistence for the conversation store.
// ABOUTME: The whole collection lives as one JSON array under a fixed key.

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	snapshotBucket = []byte("jplx13")
	snapshotKey    = []byte("conversations")
)

// Snapshot abstracts the durable local slot the store mirrors itself into.
type Snapshot interface {
	Load() ([]Conversation, error)
	Save(conversations []Conversation) error
	Clear() error
	Close() error
}

// BoltSnapshot persists the conversation collection in a bbolt file.
type BoltSnapshot struct {
	db *bolt.DB
}

// OpenBoltSnapshot opens (creating if needed) the snapshot database at path.
func OpenBoltSnapshot(path string) (*BoltSnapshot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening snapshot db: %w", err)
	}
	return &BoltSnapshot{db: db}, nil
}

// Load reads and decodes the persisted conversation array. A missing bucket
// or key yields an empty collection, not an error. Serialized RFC3339 dates
// revive through JSON decoding; a message missing its timestamp gets the
// deserialization moment (lossy, matches the historical behavior).
func (s *BoltSnapshot) Load() ([]Conversation, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(snapshotBucket)
		if b == nil {
			return nil
		}
		if v := b.Get(snapshotKey); v != nil {
			raw = make([]byte, len(v))
			copy(raw, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var conversations []Conversation
	if err := json.Unmarshal(raw, &conversations); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	now := time.Now()
	for i := range conversations {
		for j := range conversations[i].Messages {
			if conversations[i].Messages[j].Timestamp.IsZero() {
				conversations[i].Messages[j].Timestamp = now
			}
		}
	}
	return conversations, nil
}

// Save serializes the full collection and writes it under the fixed key.
func (s *BoltSnapshot) Save(conversations []Conversation) error {
	raw, err := json.Marshal(conversations)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(snapshotBucket)
		if err != nil {
			return err
		}
		return b.Put(snapshotKey, raw)
	})
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Clear erases the persisted slot entirely.
func (s *BoltSnapshot) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(snapshotBucket)
		if b == nil {
			return nil
		}
		return b.Delete(snapshotKey)
	})
	if err != nil {
		return fmt.Errorf("clearing snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BoltSnapshot) Close() error {
	return s.db.Close()
}
