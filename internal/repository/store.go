package repository

import (
	"context"
	"errors"
	"fmt"

	"finwiz/internal/models"
	"finwiz/pkg/config"
	"finwiz/pkg/postgres"

	"go.uber.org/zap"
)

// ErrStorageUnavailable wraps failures to reach the backing database.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store is the process-wide handle to transaction storage. It is safe for
// concurrent use and read-only after construction.
type Store interface {
	// EnsureSchema applies any pending schema migrations.
	EnsureSchema(ctx context.Context) error
	// Ping runs a no-op query against storage.
	Ping(ctx context.Context) error
	// Acquire checks out a session bound to one unit of work. The caller
	// must call Release on it.
	Acquire(ctx context.Context) (Session, error)
	Close() error
}

// Session is a single checked-out storage connection. It is not safe for
// concurrent use.
type Session interface {
	ListTransactions(ctx context.Context) ([]*models.Transaction, error)
	// CreateTransaction inserts atomically and returns the row with its id.
	CreateTransaction(ctx context.Context, tx models.NewTransaction) (*models.Transaction, error)
	// Release returns the session to its pool. Calling it more than once is a no-op.
	Release()
}

// NewStore builds the store selected by cfg.Backend.
func NewStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, &cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool, postgres.MigrationURL(&cfg.Database), logger), nil
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath, logger)
	case config.BackendMemory:
		logger.Warn("Using in-memory storage, transactions are lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
