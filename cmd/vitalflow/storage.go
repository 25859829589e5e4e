package main

import (
	"fmt"

	"github.com/vitalflow/analytics/internal/config"
	"github.com/vitalflow/analytics/internal/repository"
	"github.com/vitalflow/analytics/internal/repository/badgerstore"
)

// openStorage builds the repository pair for the configured backend. The
// returned closer releases the underlying database; for the memory backend
// it is a no-op.
func openStorage(cfg *config.Config) (repository.RollupRepository, repository.CounterRepository, func() error, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return memoryStorage()
	case "badger":
		store, err := badgerstore.New(badgerstore.Config{Path: cfg.Storage.Path})
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open storage: %w", err)
		}
		return store.Rollups(), store.Counters(), store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func memoryStorage() (repository.RollupRepository, repository.CounterRepository, func() error, error) {
	return repository.NewMemoryRollupRepository(),
		repository.NewMemoryCounterRepository(),
		func() error { return nil },
		nil
}
