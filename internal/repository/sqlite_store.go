package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finwiz/internal/models"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps transactions in a local SQLite file. Dates are stored
// as ISO text.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// ErrInMemorySQLite is returned for ":memory:" paths: every connection would
// see its own empty database.
var ErrInMemorySQLite = errors.New("sqlite backend needs a file path, use the memory backend instead of :memory:")

// sqliteDSN adds the pragmas every connection needs. Each session holds its
// own connection, so writers wait on the lock instead of failing with
// SQLITE_BUSY, and transactions take the write lock up front.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}

func NewSQLiteStore(path string, logger *zap.Logger) (*SQLiteStore, error) {
	if isInMemorySQLite(path) {
		return nil, ErrInMemorySQLite
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	logger.Info("SQLite database opened", zap.String("path", path))

	return &SQLiteStore{
		db:     db,
		path:   path,
		logger: logger,
	}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	return migrateSQLite(s.path)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Acquire(ctx context.Context) (Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %v", ErrStorageUnavailable, err)
	}
	return &sqliteSession{conn: conn, logger: s.logger}, nil
}

func isInMemorySQLite(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:") || strings.Contains(path, "mode=memory")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type sqliteSession struct {
	conn     *sql.Conn
	logger   *zap.Logger
	released bool
}

func (s *sqliteSession) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	query, args, err := squirrel.Select(transactionColumns...).
		From("transactions").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		var (
			tx       models.Transaction
			date     string
			category sql.NullString
		)
		if err := rows.Scan(&tx.ID, &date, &tx.Description, &tx.Amount, &category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if tx.Date, err = models.ParseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", tx.ID, err)
		}
		if category.Valid {
			tx.Category = &category.String
		}
		transactions = append(transactions, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

func (s *sqliteSession) CreateTransaction(ctx context.Context, in models.NewTransaction) (*models.Transaction, error) {
	query, args, err := squirrel.Insert("transactions").
		Columns("date", "description", "amount", "category").
		Values(in.Date.String(), in.Description, in.Amount, in.Category).
		ToSql()
	if err != nil {
		return nil, err
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read inserted id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Debug("Transaction created", zap.Int64("id", id))

	return &models.Transaction{
		ID:          id,
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    in.Category,
	}, nil
}

func (s *sqliteSession) Release() {
	if s.released {
		return
	}
	s.released = true
	if err := s.conn.Close(); err != nil {
		s.logger.Warn("Failed to release sqlite connection", zap.Error(err))
	}
}
