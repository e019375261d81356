package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	boltBucket  = "appdata"
	boltSlotKey = "editorial_db"

	// boltLockTimeout bounds the wait for another process's file lock.
	boltLockTimeout = 5 * time.Second
)

// ErrSlotClosed is returned by a BoltSlot used after Close.
var ErrSlotClosed = errors.New("document slot is closed")

// BoltSlot keeps the document under a single key of a bbolt file.
//
// The file is opened per operation: reads take bbolt's shared lock, writes the exclusive
// one, and neither is held between calls. Several desk processes, such as a long-running
// watch next to one-shot edits, can therefore use the same slot.
type BoltSlot struct {
	path  string
	quota int64

	mu     sync.RWMutex
	closed bool
}

// OpenBoltSlot prepares the slot file at path, creating it if needed.
// A quota of zero or less means unlimited.
func OpenBoltSlot(path string, quota int64) (*BoltSlot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create slot directory: %w", err)
	}

	b := &BoltSlot{path: path, quota: quota}
	err := b.update(context.Background(), func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return b, nil
}

// Read implements Slot.
func (b *BoltSlot) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrSlotClosed
	}

	db, err := bolt.Open(b.path, 0o600, &bolt.Options{ReadOnly: true, Timeout: b.timeout(ctx)})
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}
	defer db.Close()

	var data []byte
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucket))
		if bucket == nil {
			return ErrSlotEmpty
		}
		v := bucket.Get([]byte(boltSlotKey))
		if v == nil {
			return ErrSlotEmpty
		}
		// Values are only valid for the life of the transaction.
		data = slices.Clone(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Write implements Slot. The put runs in one bolt transaction, so readers see either
// the previous document or the new one.
func (b *BoltSlot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkQuota(data, b.quota); err != nil {
		return err
	}

	return b.update(ctx, func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(boltBucket))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(boltSlotKey), data)
	})
}

// Close implements Slot. Later reads and writes fail with ErrSlotClosed.
func (b *BoltSlot) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *BoltSlot) update(ctx context.Context, fn func(*bolt.Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrSlotClosed
	}

	db, err := bolt.Open(b.path, 0o600, &bolt.Options{Timeout: b.timeout(ctx)})
	if err != nil {
		return fmt.Errorf("failed to open bolt db: %w", err)
	}

	if err := db.Update(fn); err != nil {
		_ = db.Close()
		return err
	}
	return db.Close()
}

// timeout is the lock wait for one operation, shortened to ctx's deadline when it has one.
func (b *BoltSlot) timeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 && left < boltLockTimeout {
			return left
		}
	}
	return boltLockTimeout
}
