// Package media stores large image payloads (author photos, imprint logos, branding) as
// data URLs, outside the desk document so they never count against its quota.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/sync/singleflight"

	domainerrors "github.com/inkwellpress/editorial-desk/internal/errors"
)

// Fixed system keys. Entity images use the owning entity's ID as key.
const (
	KeyBrandLogo = "brand_logo"
	KeyFavicon   = "favicon"
)

const keyPrefix = "media:"

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("media store is closed")

// Store is a key to data-URL store backed by badger.
// The database is opened lazily on first use; concurrent first callers share a single open.
type Store struct {
	path   string
	logger *slog.Logger

	group singleflight.Group

	mu     sync.RWMutex
	db     *badger.DB
	closed bool

	opens atomic.Int32 // successful opens, for tests
}

// New creates a Store that will open its database at path. An empty path keeps blobs in memory.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{path: path, logger: logger}
}

// handle returns the open database, opening it if needed. A failed open is not cached,
// so the next caller retries.
func (s *Store) handle(ctx context.Context) (*badger.DB, error) {
	s.mu.RLock()
	db, closed := s.db, s.closed
	s.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}
	if db != nil {
		return db, nil
	}

	ch := s.group.DoChan("open", func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return nil, ErrClosed
		}
		if s.db != nil {
			return s.db, nil
		}

		db, err := openBadger(s.path)
		if err != nil {
			s.logger.Error("Failed to open media store", "path", s.path, "error", err)
			return nil, err
		}
		s.opens.Add(1)
		s.db = db
		s.logger.Info("Media store opened", "path", s.path)
		return db, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*badger.DB), nil
	}
}

func openBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Blobs are written rarely; durability over throughput
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return db, nil
}

// Close closes the database if it was opened. Further operations return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Get returns the data URL stored under key. A missing key returns ok=false and no error.
func (s *Store) Get(ctx context.Context, key string) (dataURL string, ok bool, err error) {
	db, err := s.handle(ctx)
	if err != nil {
		return "", false, err
	}

	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		dataURL, ok = string(val), true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("get media %q: %w", key, err)
	}
	return dataURL, ok, nil
}

// Save stores dataURL under key, replacing any previous blob.
func (s *Store) Save(ctx context.Context, key, dataURL string) error {
	if key == "" {
		return domainerrors.Validation("media key cannot be empty")
	}
	if !strings.HasPrefix(dataURL, "data:") {
		return domainerrors.Validationf("media %q is not a data URL", key)
	}

	db, err := s.handle(ctx)
	if err != nil {
		return err
	}

	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), []byte(dataURL))
	})
	if err != nil {
		return fmt.Errorf("save media %q: %w", key, err)
	}
	s.logger.Debug("Media saved", "key", key, "bytes", len(dataURL))
	return nil
}

// Delete removes the blob under each key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}

	err = db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			if err := txn.Delete([]byte(keyPrefix + key)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete media %v: %w", keys, err)
	}
	return nil
}

// GetAll returns every stored blob keyed by its logical key.
func (s *Store) GetAll(ctx context.Context) (map[string]string, error) {
	db, err := s.handle(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out[strings.TrimPrefix(string(item.Key()), keyPrefix)] = string(val)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	return out, nil
}

// Clear removes every blob.
func (s *Store) Clear(ctx context.Context) error {
	db, err := s.handle(ctx)
	if err != nil {
		return err
	}
	if err := db.DropPrefix([]byte(keyPrefix)); err != nil {
		return fmt.Errorf("clear media: %w", err)
	}
	s.logger.Info("Media store cleared")
	return nil
}

// ResetBranding removes the brand logo and favicon.
func (s *Store) ResetBranding(ctx context.Context) error {
	return s.Delete(ctx, KeyBrandLogo, KeyFavicon)
}
