// Package badgerstore provides BadgerDB-backed implementations of the
// rollup and counter repositories. Values are JSON-encoded; keys sort by
// username then date so range reads are a single prefix scan.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/vitalflow/analytics/internal/models"
	"github.com/vitalflow/analytics/internal/repository"
)

const (
	rollupPrefix  = "rollup/"
	counterPrefix = "counter/"
)

// Config holds BadgerDB configuration.
type Config struct {
	// Path to the database directory.
	Path string

	// InMemory mode, for testing.
	InMemory bool
}

// Store wraps a single Badger database shared by the rollup and counter
// repositories.
type Store struct {
	db *badger.DB
}

// New opens a Badger database tuned for the small-value, point-read
// workload of rollup storage. Memory limits are deliberately conservative:
// rollup records are a few hundred bytes and the working set is tiny.
func New(cfg Config) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)

	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	opts = opts.
		WithCompression(options.Snappy).
		WithNumVersionsToKeep(1).
		WithMemTableSize(16 << 20).
		WithNumMemtables(3).
		WithBlockCacheSize(8 << 20).
		WithIndexCacheSize(4 << 20).
		WithMaxLevels(4).
		WithNumCompactors(1).
		WithValueThreshold(1024).
		WithValueLogFileSize(64 << 20).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	return &Store{db: db}, nil
}

// Rollups returns the rollup repository view over the store. The store's
// Close releases the database both views share.
func (s *Store) Rollups() repository.RollupRepository {
	return &rollupRepo{db: s.db}
}

// Counters returns the counter repository view over the store.
func (s *Store) Counters() repository.CounterRepository {
	return &counterRepo{db: s.db}
}

// Close shuts down the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func rollupKey(username string, date time.Time) []byte {
	return []byte(rollupPrefix + username + "/" + models.NormalizeDate(date).Format(models.DateLayout))
}

func counterKey(username string) []byte {
	return []byte(counterPrefix + username)
}

type rollupRepo struct {
	db *badger.DB
}

func (r *rollupRepo) Get(ctx context.Context, username string, date time.Time) (*models.DailyRollup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rollup *models.DailyRollup
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rollupKey(username, date))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decoded models.DailyRollup
			if err := json.Unmarshal(val, &decoded); err != nil {
				return fmt.Errorf("failed to decode rollup: %w", err)
			}
			rollup = &decoded
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read rollup: %w", err)
	}
	return rollup, nil
}

func (r *rollupRepo) Upsert(ctx context.Context, rollup *models.DailyRollup) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rollup.UpdatedAt = time.Now().UTC()
	value, err := json.Marshal(rollup)
	if err != nil {
		return fmt.Errorf("failed to encode rollup: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(rollupKey(rollup.Username, rollup.Date), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write rollup: %w", err)
	}
	return nil
}

func (r *rollupRepo) GetPreviousDay(ctx context.Context, username string, date time.Time) (*models.DailyRollup, error) {
	return r.Get(ctx, username, models.NormalizeDate(date).AddDate(0, 0, -1))
}

func (r *rollupRepo) GetRange(ctx context.Context, username string, since, until time.Time) ([]models.DailyRollup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	since = models.NormalizeDate(since)
	until = models.NormalizeDate(until)
	prefix := []byte(rollupPrefix + username + "/")

	var result []models.DailyRollup
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// Keys under one username sort by date, so iteration order is
		// already ascending.
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rollup models.DailyRollup
				if err := json.Unmarshal(val, &rollup); err != nil {
					return fmt.Errorf("failed to decode rollup: %w", err)
				}
				if rollup.Date.Before(since) || rollup.Date.After(until) {
					return nil
				}
				result = append(result, rollup)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rollups: %w", err)
	}
	return result, nil
}

type counterRepo struct {
	db *badger.DB
}

func (r *counterRepo) Get(ctx context.Context, username string) (*models.LifetimeStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var stats *models.LifetimeStats
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(counterKey(username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decoded models.LifetimeStats
			if err := json.Unmarshal(val, &decoded); err != nil {
				return fmt.Errorf("failed to decode counter: %w", err)
			}
			stats = &decoded
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read counter: %w", err)
	}
	return stats, nil
}

func (r *counterRepo) Upsert(ctx context.Context, stats *models.LifetimeStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode counter: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(counterKey(stats.Username), value)
	})
	if err != nil {
		return fmt.Errorf("failed to write counter: %w", err)
	}
	return nil
}
