// Package dedup tracks already-harvested article URLs in a local bbolt file
// so repeat fetch cycles skip work before touching the database.
package dedup

import (
	"crypto/sha1" //nolint:gosec // non-cryptographic key derivation
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var seenBucket = []byte("seen_urls")

// Store is a persistent set of seen article URLs.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the dedup database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open dedup store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(seenBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init dedup bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Seen reports whether the URL was marked in a previous cycle.
func (s *Store) Seen(url string) (bool, error) {
	var seen bool
	err := s.db.View(func(tx *bolt.Tx) error {
		seen = tx.Bucket(seenBucket).Get(urlKey(url)) != nil
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("read dedup store: %w", err)
	}
	return seen, nil
}

// MarkSeen records the URL with the current timestamp.
func (s *Store) MarkSeen(url string) error {
	now := []byte(time.Now().UTC().Format(time.RFC3339))
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(seenBucket).Put(urlKey(url), now)
	})
	if err != nil {
		return fmt.Errorf("write dedup store: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func urlKey(url string) []byte {
	sum := sha1.Sum([]byte(strings.TrimSpace(url))) //nolint:gosec
	return []byte(hex.EncodeToString(sum[:]))
}
