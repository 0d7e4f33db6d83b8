// Package memory provides in-memory implementations of the storage
// interfaces, used by tests and the single-run CLI path.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
	"github.com/abirkan1/eod-backtest/internal/storage"
)

// BarStore is an in-memory implementation of storage.BarStore.
type BarStore struct {
	mu   sync.RWMutex
	data map[string][]domain.Bar // keyed by symbol, kept sorted by date
}

// NewBarStore creates a new in-memory bar store.
func NewBarStore() *BarStore {
	return &BarStore{data: make(map[string][]domain.Bar)}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

// InsertBulk adds bars for a symbol. Fails the entire batch on any
// duplicate (symbol, date).
func (s *BarStore) InsertBulk(_ context.Context, symbol string, bars []domain.Bar) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := make(map[int64]struct{}, len(s.data[symbol]))
	for _, b := range s.data[symbol] {
		existing[b.Date.Unix()] = struct{}{}
	}
	for _, b := range bars {
		if _, dup := existing[b.Date.Unix()]; dup {
			return storage.ErrDuplicateKey
		}
		existing[b.Date.Unix()] = struct{}{}
	}

	merged := append(append([]domain.Bar(nil), s.data[symbol]...), bars...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	s.data[symbol] = merged
	return nil
}

// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
func (s *BarStore) GetBySymbol(_ context.Context, symbol string) ([]domain.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.Bar(nil), s.data[symbol]...), nil
}

// GetByDateRange retrieves bars within [start, end] inclusive.
func (s *BarStore) GetByDateRange(_ context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Bar, 0)
	for _, b := range s.data[symbol] {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// Symbols lists all symbols with stored bars, sorted ASC.
func (s *BarStore) Symbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.data))
	for sym := range s.data {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out, nil
}
