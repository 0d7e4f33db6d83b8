// Command report renders a markdown or CSV report from a persisted trade
// ledger. Equity-derived metrics (CAGR, Sharpe, drawdown) need the equity
// curve from the run itself and report as undefined here.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/abirkan1/eod-backtest/internal/domain"
	"github.com/abirkan1/eod-backtest/internal/metrics"
	"github.com/abirkan1/eod-backtest/internal/reporting"
	"github.com/abirkan1/eod-backtest/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string (required)")
	symbol := flag.String("symbol", "", "Restrict to one symbol (optional)")
	asCSV := flag.Bool("csv", false, "Emit trades CSV instead of a summary")

	flag.Parse()

	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, *postgresDSN)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	defer pool.Close()

	store := postgres.NewTradeStore(pool)

	var refs []*domain.Trade
	if *symbol != "" {
		refs, err = store.GetBySymbol(ctx, *symbol)
	} else {
		refs, err = store.GetAll(ctx)
	}
	if err != nil {
		logger.Fatalf("load trades: %v", err)
	}

	trades := make([]domain.Trade, len(refs))
	for i, t := range refs {
		trades[i] = *t
	}

	if *asCSV {
		fmt.Print(reporting.RenderTradesCSV(trades))
		return
	}

	summary := metrics.Compute(trades, nil)
	for _, kv := range summary.Flat() {
		fmt.Printf("%-16s %v\n", kv.Key, kv.Value)
	}
}
