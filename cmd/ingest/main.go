// Command ingest loads per-symbol CSV bar files into ClickHouse, applying
// the schema first. Optionally patches the forming bar from a live quote
// feed before writing.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/abirkan1/eod-backtest/internal/marketdata"
	"github.com/abirkan1/eod-backtest/internal/observability"
	"github.com/abirkan1/eod-backtest/internal/storage/clickhouse"
	"github.com/abirkan1/eod-backtest/internal/storage/migrations"
)

func main() {
	dataDir := flag.String("data-dir", "data", "Directory of per-symbol CSV bar files")
	symbolsFlag := flag.String("symbols", "", "Comma-separated symbols to ingest (required)")
	fromFlag := flag.String("from", "1990-01-01", "Start date YYYY-MM-DD")
	toFlag := flag.String("to", "2100-01-01", "End date YYYY-MM-DD")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string (required)")
	feedEndpoint := flag.String("feed", "", "Websocket quote feed endpoint (optional)")
	feedWait := flag.Duration("feed-wait", 5*time.Second, "How long to collect quotes before patching")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")

	flag.Parse()

	logger := log.New(os.Stderr, "[ingest] ", log.LstdFlags)

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("metrics server error: %v", err)
			}
		}()
	}

	if *symbolsFlag == "" {
		logger.Fatal("--symbols is required")
	}
	if *clickhouseDSN == "" {
		logger.Fatal("--clickhouse-dsn is required")
	}
	from, err := time.ParseInLocation("2006-01-02", *fromFlag, time.UTC)
	if err != nil {
		logger.Fatalf("invalid --from: %v", err)
	}
	to, err := time.ParseInLocation("2006-01-02", *toFlag, time.UTC)
	if err != nil {
		logger.Fatalf("invalid --to: %v", err)
	}

	symbols := make([]string, 0)
	for _, part := range strings.Split(*symbolsFlag, ",") {
		if sym := strings.TrimSpace(part); sym != "" {
			symbols = append(symbols, sym)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("received signal %v, shutting down", sig)
		cancel()
	}()

	conn, err := clickhouse.NewConn(ctx, *clickhouseDSN)
	if err != nil {
		logger.Fatalf("connect to clickhouse: %v", err)
	}
	defer conn.Close()

	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	var feed *marketdata.Feed
	if *feedEndpoint != "" {
		feed, err = marketdata.NewFeed(ctx, *feedEndpoint, symbols, nil)
		if err != nil {
			logger.Fatalf("connect quote feed: %v", err)
		}
		defer feed.Close()
		logger.Printf("collecting quotes for %v", *feedWait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(*feedWait):
		}
	}

	loader := marketdata.NewCSVLoader(*dataDir)
	store := clickhouse.NewBarStore(conn)

	for _, sym := range symbols {
		bars, err := loader.Load(ctx, sym, from, to)
		if err != nil {
			logger.Printf("skipping %s: %v", sym, err)
			observability.RecordInstrumentSkipped("load")
			continue
		}
		if feed != nil {
			if q, ok := feed.Latest(sym); ok {
				bars = marketdata.PatchForming(bars, q)
				observability.RecordQuoteReceived(sym)
			}
		}
		start := time.Now()
		err = store.InsertBulk(ctx, sym, bars)
		observability.RecordDBQuery("clickhouse", "insert_bars", time.Since(start).Seconds(), err)
		if err != nil {
			observability.RecordIngestError("insert")
			logger.Fatalf("insert %s: %v", sym, err)
		}
		observability.RecordBarsIngested(sym, len(bars))
		logger.Printf("ingested %s: %d bars", sym, len(bars))
	}
	observability.DefaultMetrics.LastSuccessfulIngest.Set(float64(time.Now().Unix()))
}
