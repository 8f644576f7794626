package repository

import (
	"context"
	"sync"

	"finwiz/internal/models"
)

// MemoryStore keeps transactions in process memory. It backs local runs
// without a database and the HTTP tests.
type MemoryStore struct {
	mu           sync.Mutex
	transactions []models.Transaction
	nextID       int64
	openSessions int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) EnsureSchema(ctx context.Context) error { return nil }

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Acquire(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.openSessions++
	s.mu.Unlock()
	return &memorySession{store: s}, nil
}

func (s *MemoryStore) Close() error { return nil }

// OpenSessions reports how many acquired sessions have not been released.
func (s *MemoryStore) OpenSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openSessions
}

type memorySession struct {
	store    *MemoryStore
	released bool
}

func (s *memorySession) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]*models.Transaction, 0, len(s.store.transactions))
	for i := range s.store.transactions {
		tx := s.store.transactions[i]
		out = append(out, &tx)
	}
	return out, nil
}

func (s *memorySession) CreateTransaction(ctx context.Context, in models.NewTransaction) (*models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var category *string
	if in.Category != nil {
		c := *in.Category
		category = &c
	}
	tx := models.Transaction{
		ID:          s.store.nextID,
		Date:        in.Date,
		Description: in.Description,
		Amount:      in.Amount,
		Category:    category,
	}
	s.store.nextID++
	s.store.transactions = append(s.store.transactions, tx)

	return &tx, nil
}

func (s *memorySession) Release() {
	if s.released {
		return
	}
	s.released = true
	s.store.mu.Lock()
	s.store.openSessions--
	s.store.mu.Unlock()
}
