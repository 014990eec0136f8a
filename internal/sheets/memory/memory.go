// Package memory is an in-process transaction feed for local runs and tests.
package memory

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"scadenze/internal/core"
	"scadenze/internal/importer"
	"scadenze/internal/recurring"
)

// SeedFile is the CSV read by NewFromFiles.
const SeedFile = "transactions.csv"

type Store struct {
	mu    sync.RWMutex
	items map[string]core.Transaction
	hints recurring.Hints
}

func New(txs ...core.Transaction) *Store {
	s := &Store{items: make(map[string]core.Transaction, len(txs)), hints: recurring.Hints{}}
	for _, t := range txs {
		s.items[t.ID] = t
	}
	return s
}

// NewFromFiles seeds the store from <base>/transactions.csv. A missing or
// unreadable file yields an empty store.
func NewFromFiles(base string) *Store {
	path := filepath.Join(base, SeedFile)
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Cannot open memory seed file", "path", path, "error", err)
		}
		return New()
	}
	defer f.Close()

	res, err := importer.ReadCSV(f)
	if err != nil {
		slog.Warn("Cannot read memory seed file", "path", path, "error", err)
	}
	slog.Info("Memory store seeded", "path", path, "transactions", len(res.Transactions), "skipped", len(res.Skipped))
	return New(res.Transactions...)
}

// UpsertTransaction stores t, reporting whether it was new.
func (s *Store) UpsertTransaction(_ context.Context, t core.Transaction) (bool, error) {
	if err := t.Validate(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.items[t.ID]
	s.items[t.ID] = t
	return !exists, nil
}

// DeleteTransaction removes a transaction, reporting whether it existed.
func (s *Store) DeleteTransaction(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.items[id]
	delete(s.items, id)
	return exists, nil
}

// ListTransactionsSince returns a copy of the matching transactions ordered
// by date, then id.
func (s *Store) ListTransactionsSince(_ context.Context, since core.Date) ([]core.Transaction, error) {
	s.mu.RLock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, t := range s.items {
		if !t.OccurredOn.Before(since.Time) {
			out = append(out, t)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredOn.Equal(out[j].OccurredOn.Time) {
			return out[i].OccurredOn.Before(out[j].OccurredOn.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Len returns the number of stored transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// ReadHints returns a copy of the stored hints.
func (s *Store) ReadHints(_ context.Context) (recurring.Hints, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(recurring.Hints, len(s.hints))
	for k, v := range s.hints {
		out[k] = v
	}
	return out, nil
}

// WriteHints merges hints into the store.
func (s *Store) WriteHints(_ context.Context, hints recurring.Hints) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range hints {
		s.hints[k] = v
	}
	return nil
}
