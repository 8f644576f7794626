package main

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"finwiz/internal/dto"
	"finwiz/internal/models"
	"finwiz/internal/repository"

	"go.uber.org/zap"
)

const embeddedSourceName = "embedded:sample_transactions.json"

// BatchCategorizer labels descriptions in a single call.
type BatchCategorizer interface {
	CategorizeBatch(ctx context.Context, descriptions []string) ([]models.Categorization, error)
}

// Source is a named batch of transactions to seed.
type Source struct {
	Name string
	Hash string
	Rows []models.NewTransaction
}

// SeededSource records how far a source got. Rows counts the leading rows
// already inserted; Complete is set once all of them are in.
type SeededSource struct {
	Name     string    `json:"name"`
	Hash     string    `json:"hash"`
	Rows     int       `json:"rows"`
	Complete bool      `json:"complete"`
	SeededAt time.Time `json:"seeded_at"`
}

// CacheData stores the sources seeded so far, keyed by name.
type CacheData struct {
	Sources map[string]SeededSource `json:"sources"`
}

type Seeder struct {
	store       repository.Store
	categorizer BatchCategorizer // nil disables AI categorization
	cacheFile   string
	force       bool
	logger      *zap.Logger
}

// loadSource reads path, or the embedded sample set when path is empty.
func loadSource(path string, embedded []byte) (*Source, error) {
	name := embeddedSourceName
	data := embedded

	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		name = path
	}

	rows, err := parseTransactions(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	return &Source{
		Name: name,
		Hash: fmt.Sprintf("%x", md5.Sum(data)),
		Rows: rows,
	}, nil
}

func parseTransactions(data []byte) ([]models.NewTransaction, error) {
	var raw []dto.TransactionCreate
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	rows := make([]models.NewTransaction, 0, len(raw))
	for i, r := range raw {
		if r.Date == nil || r.Description == nil || r.Amount == nil {
			return nil, fmt.Errorf("row %d: date, description and amount are required", i)
		}
		rows = append(rows, r.ToModel())
	}
	return rows, nil
}

// Seed categorizes the uncategorized rows of src and inserts them in one
// storage session. A run that failed part way is resumed from the first row
// it did not insert. It returns the number of rows inserted.
func (s *Seeder) Seed(ctx context.Context, src *Source) (int, error) {
	cache, err := loadCache(s.cacheFile)
	if err != nil {
		s.logger.Warn("Failed to load cache, will seed anyway", zap.Error(err))
		cache = &CacheData{Sources: make(map[string]SeededSource)}
	}

	start := 0
	if cached, exists := cache.Sources[src.Name]; exists && cached.Hash == src.Hash && !s.force {
		if cached.Complete {
			s.logger.Info("Source already seeded, skipping",
				zap.String("source", src.Name),
				zap.Time("seeded_at", cached.SeededAt),
			)
			return 0, nil
		}
		start = min(cached.Rows, len(src.Rows))
		s.logger.Info("Resuming partially seeded source",
			zap.String("source", src.Name),
			zap.Int("already_inserted", start),
		)
	}

	rows := src.Rows[start:]
	s.categorize(ctx, rows)

	session, err := s.store.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer session.Release()

	inserted := 0
	var insertErr error
	for _, row := range rows {
		tx, err := session.CreateTransaction(ctx, row)
		if err != nil {
			insertErr = fmt.Errorf("failed to insert %q: %w", row.Description, err)
			break
		}
		inserted++
		s.logger.Debug("Transaction inserted", zap.Int64("id", tx.ID), zap.String("description", tx.Description))
	}

	cache.Sources[src.Name] = SeededSource{
		Name:     src.Name,
		Hash:     src.Hash,
		Rows:     start + inserted,
		Complete: insertErr == nil,
		SeededAt: time.Now(),
	}
	if err := saveCache(s.cacheFile, cache); err != nil {
		s.logger.Warn("Failed to save cache", zap.Error(err))
	}

	return inserted, insertErr
}

// categorize fills in missing categories in place. Failures are logged and
// the affected rows stay uncategorized.
func (s *Seeder) categorize(ctx context.Context, rows []models.NewTransaction) {
	if s.categorizer == nil {
		return
	}

	var pending []string
	for _, row := range rows {
		if row.Category == nil {
			pending = append(pending, row.Description)
		}
	}
	if len(pending) == 0 {
		return
	}

	results, err := s.categorizer.CategorizeBatch(ctx, pending)
	if err != nil {
		s.logger.Warn("Batch categorization failed, inserting rows uncategorized",
			zap.Int("rows", len(pending)),
			zap.Error(err),
		)
		return
	}

	byDescription := make(map[string]string, len(results))
	for _, r := range results {
		byDescription[r.Description] = r.Category
	}

	for i := range rows {
		if rows[i].Category != nil {
			continue
		}
		if category, ok := byDescription[rows[i].Description]; ok {
			rows[i].Category = &category
		}
	}

	s.logger.Info("Categorized seed rows", zap.Int("requested", len(pending)), zap.Int("returned", len(results)))
}

func loadCache(cacheFile string) (*CacheData, error) {
	cache := &CacheData{
		Sources: make(map[string]SeededSource),
	}

	data, err := os.ReadFile(cacheFile)
	if errors.Is(err, os.ErrNotExist) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(data) == 0 {
		return cache, nil
	}

	if err := json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}
	if cache.Sources == nil {
		cache.Sources = make(map[string]SeededSource)
	}

	return cache, nil
}

func saveCache(cacheFile string, cache *CacheData) error {
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}
