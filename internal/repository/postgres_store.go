package repository

import (
	"context"
	"fmt"
	"time"

	"finwiz/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var transactionColumns = []string{"id", "date", "description", "amount", "category"}

// PostgresStore keeps transactions in PostgreSQL through a pgx pool.
type PostgresStore struct {
	db           *pgxpool.Pool
	migrationURL string
	logger       *zap.Logger
}

func NewPostgresStore(db *pgxpool.Pool, migrationURL string, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:           db,
		migrationURL: migrationURL,
		logger:       logger,
	}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	return migratePostgres(s.migrationURL)
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %v", ErrStorageUnavailable, err)
	}
	return &postgresSession{conn: conn, logger: s.logger}, nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

type postgresSession struct {
	conn     *pgxpool.Conn
	logger   *zap.Logger
	released bool
}

func (s *postgresSession) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns...).
		From("transactions").
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		var date time.Time
		if err := rows.Scan(&tx.ID, &date, &tx.Description, &tx.Amount, &tx.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date = models.DateOf(date)
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

func (s *postgresSession) CreateTransaction(ctx context.Context, in models.NewTransaction) (*models.Transaction, error) {
	query := squirrel.Insert("transactions").
		Columns("date", "description", "amount", "category").
		Values(in.Date.Time, in.Description, in.Amount, in.Category).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	created := &models.Transaction{
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
	}

	err = pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, sql, args...).Scan(&created.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	s.logger.Debug("Transaction created", zap.Int64("id", created.ID))

	return created, nil
}

func (s *postgresSession) Release() {
	if s.released {
		return
	}
	s.released = true
	s.conn.Release()
}
