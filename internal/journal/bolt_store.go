package journal

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	failureBucket    = "failures"
	expiryValueBytes = 8
	recordedAtBytes  = 8
	headerBytes      = expiryValueBytes + recordedAtBytes
)

// boltStore implements a Store backed by BoltDB. Values are laid out as
// expiry (unix seconds) | recorded-at (unix nanos) | payload.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	ttl             time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(failureBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		ttl:             opts.TTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record stores payload under id, replacing any previous entry.
func (b *boltStore) Record(id string, payload []byte) error {
	if b == nil || b.db == nil {
		return nil
	}
	if id == "" {
		return fmt.Errorf("journal entry id is empty")
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(failureBucket))
		if bucket == nil {
			return fmt.Errorf("failure bucket missing")
		}
		buf := make([]byte, headerBytes+len(payload))
		binary.BigEndian.PutUint64(buf[:expiryValueBytes], uint64(now.Add(b.ttl).Unix()))
		binary.BigEndian.PutUint64(buf[expiryValueBytes:headerBytes], uint64(now.UnixNano()))
		copy(buf[headerBytes:], payload)
		return bucket.Put([]byte(id), buf)
	})
}

// List returns live entries, oldest first. Expired entries are dropped.
func (b *boltStore) List() ([]Entry, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	type listed struct {
		entry      Entry
		recordedAt int64
	}
	var out []listed
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(failureBucket))
		if bucket == nil {
			return fmt.Errorf("failure bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, recordedAt, ok := decodeHeader(v)
			if !ok || !expiry.After(now) {
				if err := cursor.Delete(); err != nil {
					return err
				}
				continue
			}
			payload := append([]byte(nil), v[headerBytes:]...)
			out = append(out, listed{
				entry:      Entry{ID: string(k), Payload: payload, ExpiresAt: expiry},
				recordedAt: recordedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].recordedAt < out[j].recordedAt })
	entries := make([]Entry, len(out))
	for i := range out {
		entries[i] = out[i].entry
	}
	return entries, nil
}

// maybeCleanupExpired removes expired entries on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
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
		bucket := tx.Bucket([]byte(failureBucket))
		if bucket == nil {
			return fmt.Errorf("failure bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, _, ok := decodeHeader(v)
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

// decodeHeader decodes the expiry and recording time from a stored value.
func decodeHeader(value []byte) (time.Time, int64, bool) {
	if len(value) < headerBytes {
		return time.Time{}, 0, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, 0, false
	}
	recordedAt := int64(binary.BigEndian.Uint64(value[expiryValueBytes:headerBytes]))
	return time.Unix(unix, 0), recordedAt, true
}
