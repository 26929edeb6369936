package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samvad-hq/samvad-api-helper/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	exchangeBucket   = "exchanges"
	expiryValueBytes = 8
	maxRecentLimit   = 500
)

// boltJournal implements a Journal backed by BoltDB. Keys are time-ordered
// exchange ids; values are an 8-byte expiry (unix milliseconds) followed by
// the JSON summary.
type boltJournal struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Journal.
func openBolt(path string, opts Options) (Journal, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(exchangeBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	j := &boltJournal{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	j.lastCleanup.Store(time.Now().Unix())
	return j, nil
}

// Close closes the BoltDB journal.
func (b *boltJournal) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record stores ex under its id.
func (b *boltJournal) Record(ex domain.Exchange) error {
	if b == nil || b.db == nil {
		return nil
	}
	if ex.ID == "" {
		return fmt.Errorf("exchange id is empty")
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshal exchange: %w", err)
	}
	buf := make([]byte, expiryValueBytes, expiryValueBytes+len(payload))
	binary.BigEndian.PutUint64(buf, uint64(now.Add(b.entryTTL).UnixMilli()))
	buf = append(buf, payload...)

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(exchangeBucket))
		if bucket == nil {
			return fmt.Errorf("exchange bucket missing")
		}
		return bucket.Put([]byte(ex.ID), buf)
	})
}

// Recent returns up to limit unexpired exchanges, newest first.
func (b *boltJournal) Recent(limit int) ([]domain.Exchange, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	now := time.Now()
	out := make([]domain.Exchange, 0, limit)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(exchangeBucket))
		if bucket == nil {
			return fmt.Errorf("exchange bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < limit; k, v = cursor.Prev() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				continue
			}
			var ex domain.Exchange
			if err := json.Unmarshal(v[expiryValueBytes:], &ex); err != nil {
				return fmt.Errorf("decode exchange %s: %w", k, err)
			}
			out = append(out, ex)
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid unbounded growth.
func (b *boltJournal) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(exchangeBucket))
		if bucket == nil {
			return fmt.Errorf("exchange bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeExpiry decodes the expiry time prefixing a stored value.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	ms := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
