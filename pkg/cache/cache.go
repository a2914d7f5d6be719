// Package cache provides a Badger-backed key-value store with lifecycle coordination.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/JaimeStill/emotive/pkg/lifecycle"
)

// ErrClosed indicates an operation on a cache that has been shut down.
var ErrClosed = errors.New("cache closed")

// System stores opaque values by key.
type System interface {
	// Start registers the value log GC loop and close-on-shutdown hook.
	Start(lc *lifecycle.Coordinator) error
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key []byte) ([]byte, bool, error)
	// Set stores value under key with the configured TTL.
	Set(ctx context.Context, key, value []byte) error
	// DropPrefix removes every key beginning with prefix.
	DropPrefix(ctx context.Context, prefix []byte) error
	// Count returns the number of keys beginning with prefix.
	Count(ctx context.Context, prefix []byte) (int, error)
	// Close releases the store. Safe to call more than once.
	Close() error
}

type store struct {
	db       *badger.DB
	logger   *slog.Logger
	ttl      time.Duration
	gc       time.Duration
	inMemory bool
}

// New opens the Badger store described by cfg.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithLoggingLevel(badger.ERROR)
	if cfg.IsInMemory() {
		opts = badger.DefaultOptions("").
			WithInMemory(true).
			WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	return &store{
		db:       db,
		logger:   logger.With("system", "cache"),
		ttl:      cfg.TTLDuration(),
		gc:       cfg.GCIntervalDuration(),
		inMemory: cfg.IsInMemory(),
	}, nil
}

func (s *store) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting cache", "in_memory", s.inMemory, "ttl", s.ttl)

	lc.OnShutdown(func() {
		ticker := time.NewTicker(s.gc)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				s.logger.Info("closing cache")
				if err := s.Close(); err != nil {
					s.logger.Error("cache close failed", "error", err)
				}
				return
			case <-ticker.C:
				s.collect()
			}
		}
	})

	return nil
}

// collect runs value log GC until Badger reports nothing left to rewrite.
func (s *store) collect() {
	if s.inMemory {
		return
	}
	for {
		if err := s.db.RunValueLogGC(0.5); err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("cache gc failed", "error", err)
			}
			return
		}
	}
}

func (s *store) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		return nil, false, nil
	case errors.Is(err, badger.ErrDBClosed):
		return nil, false, ErrClosed
	case err != nil:
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return value, true, nil
}

func (s *store) Set(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, value)
		if s.ttl > 0 {
			entry = entry.WithTTL(s.ttl)
		}
		return txn.SetEntry(entry)
	})

	switch {
	case errors.Is(err, badger.ErrDBClosed):
		return ErrClosed
	case err != nil:
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (s *store) DropPrefix(ctx context.Context, prefix []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.DropPrefix(prefix); err != nil {
		return fmt.Errorf("cache drop prefix %q: %w", prefix, err)
	}

	s.logger.Info("cache prefix dropped", "prefix", string(prefix))
	return nil
}

func (s *store) Count(ctx context.Context, prefix []byte) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("cache count: %w", err)
	}
	return n, nil
}

func (s *store) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}
