// Command backtest runs one strategy configuration over a symbol universe
// and reports the trade ledger, equity curve and summary metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
	"github.com/abirkan1/eod-backtest/internal/engine"
	"github.com/abirkan1/eod-backtest/internal/marketdata"
	"github.com/abirkan1/eod-backtest/internal/reporting"
	"github.com/abirkan1/eod-backtest/internal/signal"
	"github.com/abirkan1/eod-backtest/internal/storage/clickhouse"
	"github.com/abirkan1/eod-backtest/internal/storage/migrations"
	"github.com/abirkan1/eod-backtest/internal/storage/postgres"
)

const flagDateLayout = "2006-01-02"

func main() {
	// Universe and range
	symbolsFlag := flag.String("symbols", "NIFTY,BANKNIFTY", "Comma-separated symbol universe")
	fromFlag := flag.String("from", "", "Start date YYYY-MM-DD (required)")
	toFlag := flag.String("to", "", "End date YYYY-MM-DD (required)")

	// Data source
	dataDir := flag.String("data-dir", "data", "Directory of per-symbol CSV bar files")
	cacheDir := flag.String("cache-dir", "", "On-disk cache directory (empty disables caching)")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "Load bars from ClickHouse instead of CSV files")

	// Entry rule
	useBreakout := flag.Bool("breakout", false, "Enable breakout entry condition")
	breakoutN := flag.Int("breakout-n", 20, "Breakout lookback bars")
	useTrend := flag.Bool("trend", true, "Enable EMA trend entry condition")
	emaFast := flag.Int("ema-fast", 21, "Fast EMA period")
	emaSlow := flag.Int("ema-slow", 55, "Slow EMA period")
	useRSI := flag.Bool("rsi", false, "Enable RSI entry condition")
	rsiPeriod := flag.Int("rsi-period", 14, "RSI period")
	rsiThreshold := flag.Float64("rsi-threshold", 55, "RSI entry threshold")

	// Exit rule
	trendFlip := flag.Bool("trend-flip", false, "Enable trend-flip exit")
	stoploss := flag.Bool("stoploss", true, "Enable percentage stoploss exit")
	stoplossPct := flag.Float64("stoploss-pct", 0.02, "Stoploss fraction of entry price")
	timeExit := flag.Bool("time-exit", false, "Enable time-based exit")
	timeExitBars := flag.Int("time-exit-bars", 20, "Bars held before time exit")
	atrTrailing := flag.Bool("atr-trailing", true, "Enable ATR trailing stop exit")
	atrPeriod := flag.Int("atr-period", 14, "ATR period")
	atrMult := flag.Float64("atr-mult", 3.0, "ATR trail multiple")

	// Simulation
	capital := flag.Float64("capital", 500000, "Capital per trade (fixed notional)")
	maxParallel := flag.Int("max-parallel", 2, "Max simultaneous open positions")
	slippageBPS := flag.Float64("slippage-bps", 2, "Slippage in basis points per fill")
	brokerage := flag.Float64("brokerage", 20, "Brokerage per order")
	rankByMomentum := flag.Bool("rank-by-momentum", true, "Rank same-day entry candidates by RSI")

	// Output
	outDir := flag.String("out-dir", "", "Write trades/equity/metrics/monthly CSV files here")
	markdown := flag.Bool("markdown", false, "Print full markdown report instead of metrics")
	postgresDSN := flag.String("postgres-dsn", "", "Persist the trade ledger to PostgreSQL")

	flag.Parse()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	if *fromFlag == "" || *toFlag == "" {
		logger.Fatal("--from and --to are required")
	}
	from, err := time.ParseInLocation(flagDateLayout, *fromFlag, time.UTC)
	if err != nil {
		logger.Fatalf("invalid --from: %v", err)
	}
	to, err := time.ParseInLocation(flagDateLayout, *toFlag, time.UTC)
	if err != nil {
		logger.Fatalf("invalid --to: %v", err)
	}

	symbols := splitSymbols(*symbolsFlag)
	if len(symbols) == 0 {
		logger.Fatal("--symbols must name at least one instrument")
	}

	entryCfg := domain.EntryConfig{
		UseBreakout: *useBreakout, BreakoutN: *breakoutN,
		UseTrend: *useTrend, EMAFast: *emaFast, EMASlow: *emaSlow,
		UseRSI: *useRSI, RSIPeriod: *rsiPeriod, RSIThreshold: *rsiThreshold,
	}
	exitCfg := domain.ExitConfig{
		TrendFlip: *trendFlip,
		Stoploss:  *stoploss, StoplossPct: *stoplossPct,
		TimeExit: *timeExit, TimeExitBars: *timeExitBars,
		ATRTrailing: *atrTrailing, ATRPeriod: *atrPeriod, ATRMult: *atrMult,
	}
	simCfg := domain.SimConfig{
		CapitalPerTrade: *capital, MaxParallel: *maxParallel,
		SlippageBPS: *slippageBPS, BrokeragePerOrder: *brokerage,
		RankByMomentum: *rankByMomentum,
	}
	if err := entryCfg.Validate(); err != nil {
		logger.Fatalf("entry config: %v", err)
	}

	ctx := context.Background()

	// Data loading happens strictly before the engine runs.
	var loader marketdata.Loader = marketdata.NewCSVLoader(*dataDir)
	if *clickhouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		loader = marketdata.NewStoreLoader(clickhouse.NewBarStore(conn))
	}
	if *cacheDir != "" {
		loader = marketdata.NewCachedLoader(loader, *cacheDir)
	}

	inputs := make([]engine.Input, 0, len(symbols))
	for _, sym := range symbols {
		bars, err := loader.Load(ctx, sym, from, to)
		if err != nil {
			// An unusable instrument is skipped, not fatal for the run.
			logger.Printf("skipping %s: %v", sym, err)
			continue
		}
		inputs = append(inputs, engine.Input{
			Instrument: domain.Instrument{Symbol: sym, Bars: bars},
			Signals:    signal.Build(bars, entryCfg, exitCfg),
		})
	}
	if len(inputs) == 0 {
		logger.Fatal("no instrument has usable data in the requested range")
	}

	result, err := engine.Run(inputs, exitCfg, simCfg)
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}
	logger.Printf("run complete: %d trades, %d equity points, %d open positions",
		len(result.Trades), len(result.Equity), len(result.Open))

	report := reporting.Build(symbols, result, time.Now().UTC())

	if *markdown {
		fmt.Print(reporting.RenderMarkdown(report))
	} else {
		for _, kv := range report.Summary.Flat() {
			fmt.Printf("%-16s %v\n", kv.Key, kv.Value)
		}
	}

	if *outDir != "" {
		if err := writeOutputs(*outDir, report); err != nil {
			logger.Fatalf("write outputs: %v", err)
		}
		logger.Printf("wrote CSV outputs to %s", *outDir)
	}

	if *postgresDSN != "" {
		if err := persistTrades(ctx, *postgresDSN, result.Trades); err != nil {
			logger.Fatalf("persist trades: %v", err)
		}
		logger.Printf("persisted %d trades", len(result.Trades))
	}
}

func splitSymbols(s string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(s, ",") {
		if sym := strings.TrimSpace(part); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

func writeOutputs(dir string, r *reporting.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	files := map[string]string{
		"trades.csv":  reporting.RenderTradesCSV(r.Trades),
		"equity.csv":  reporting.RenderEquityCSV(r.Equity),
		"metrics.csv": reporting.RenderMetricsCSV(r.Summary),
		"monthly.csv": reporting.RenderMonthlyCSV(r.Monthly),
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func persistTrades(ctx context.Context, dsn string, trades []domain.Trade) error {
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return err
	}

	store := postgres.NewTradeStore(pool)
	refs := make([]*domain.Trade, len(trades))
	for i := range trades {
		refs[i] = &trades[i]
	}
	return store.InsertBulk(ctx, refs)
}
