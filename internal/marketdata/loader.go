// Package marketdata acquires, caches and validates EOD bar series. The
// engine itself never does I/O; everything here runs strictly before a
// backtest.
package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
	"github.com/abirkan1/eod-backtest/internal/storage"
)

// Loader errors.
var (
	// ErrNoData is returned when a symbol has no usable bars in the
	// requested range. Callers skip the instrument, not the run.
	ErrNoData = errors.New("no usable price data")

	// ErrBadRecord is returned for a malformed row in a source file.
	ErrBadRecord = errors.New("malformed bar record")
)

// Loader fetches the bar series for one symbol within [start, end].
type Loader interface {
	Load(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)
}

// StoreLoader adapts a storage.BarStore to the Loader interface.
type StoreLoader struct {
	store storage.BarStore
}

// NewStoreLoader creates a Loader backed by a bar store.
func NewStoreLoader(store storage.BarStore) *StoreLoader {
	return &StoreLoader{store: store}
}

// Compile-time interface check.
var _ Loader = (*StoreLoader)(nil)

// Load fetches bars from the store and validates them.
func (l *StoreLoader) Load(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	bars, err := l.store.GetByDateRange(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	return Normalize(bars)
}
