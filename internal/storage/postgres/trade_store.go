package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/abirkan1/eod-backtest/internal/domain"
	"github.com/abirkan1/eod-backtest/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const insertTradeSQL = `
	INSERT INTO trades (
		trade_id, symbol, entry_date, exit_date,
		entry_price, exit_price, quantity,
		gross_pnl, costs, net_pnl,
		bars_held, exit_reason
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7,
		$8, $9, $10,
		$11, $12
	)
`

const selectTradeSQL = `
	SELECT trade_id, symbol, entry_date, exit_date,
	       entry_price, exit_price, quantity,
	       gross_pnl, costs, net_pnl,
	       bars_held, exit_reason
	FROM trades
`

// Insert adds a new trade. Returns ErrDuplicateKey if trade_id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertTradeSQL,
		t.TradeID, t.Symbol, t.EntryDate, t.ExitDate,
		t.EntryPrice, t.ExitPrice, t.Quantity,
		t.GrossPnL, t.Costs, t.NetPnL,
		t.BarsHeld, t.ExitReason,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// InsertBulk adds multiple trades atomically inside one transaction. Fails
// the entire batch on any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertTradeSQL,
			t.TradeID, t.Symbol, t.EntryDate, t.ExitDate,
			t.EntryPrice, t.ExitPrice, t.Quantity,
			t.GrossPnL, t.Costs, t.NetPnL,
			t.BarsHeld, t.ExitReason,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert trade %s: %w", t.TradeID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.Trade, error) {
	row := s.pool.QueryRow(ctx, selectTradeSQL+" WHERE trade_id = $1", tradeID)

	t, err := scanTrade(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// GetBySymbol retrieves all trades for a symbol, ordered by exit date ASC.
func (s *TradeStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.Trade, error) {
	rows, err := s.pool.Query(ctx,
		selectTradeSQL+" WHERE symbol = $1 ORDER BY exit_date ASC, trade_id ASC", symbol)
	if err != nil {
		return nil, fmt.Errorf("query trades by symbol: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetAll retrieves every trade, ordered by exit date ASC then trade_id.
func (s *TradeStore) GetAll(ctx context.Context) ([]*domain.Trade, error) {
	rows, err := s.pool.Query(ctx, selectTradeSQL+" ORDER BY exit_date ASC, trade_id ASC")
	if err != nil {
		return nil, fmt.Errorf("query all trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	err := row.Scan(
		&t.TradeID, &t.Symbol, &t.EntryDate, &t.ExitDate,
		&t.EntryPrice, &t.ExitPrice, &t.Quantity,
		&t.GrossPnL, &t.Costs, &t.NetPnL,
		&t.BarsHeld, &t.ExitReason,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTrades(rows pgx.Rows) ([]*domain.Trade, error) {
	out := make([]*domain.Trade, 0)
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trades: %w", err)
	}
	return out, nil
}
