// Package storage defines the persistence interfaces for bar series and
// trade records, with in-memory, PostgreSQL and ClickHouse backends.
package storage

import (
	"context"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

// BarStore provides access to per-symbol EOD bar storage.
type BarStore interface {
	// InsertBulk adds bars for a symbol. Fails the entire batch on any
	// duplicate (symbol, date).
	InsertBulk(ctx context.Context, symbol string, bars []domain.Bar) error

	// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
	// Returns an empty slice when the symbol has no bars.
	GetBySymbol(ctx context.Context, symbol string) ([]domain.Bar, error)

	// GetByDateRange retrieves bars for a symbol within [start, end]
	// (inclusive), ordered by date ASC.
	GetByDateRange(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error)

	// Symbols lists all symbols with stored bars, sorted ASC.
	Symbols(ctx context.Context) ([]string, error)
}

// TradeStore provides access to closed-trade storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any
	// duplicate.
	InsertBulk(ctx context.Context, trades []*domain.Trade) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.Trade, error)

	// GetBySymbol retrieves all trades for a symbol, ordered by exit date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Trade, error)

	// GetAll retrieves every trade, ordered by exit date ASC then trade_id.
	GetAll(ctx context.Context) ([]*domain.Trade, error)
}
