// Package reporting renders run output as delimited text and markdown.
package reporting

import (
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
	"github.com/abirkan1/eod-backtest/internal/engine"
	"github.com/abirkan1/eod-backtest/internal/metrics"
)

// Report is the assembled output of one backtest run.
type Report struct {
	GeneratedAt time.Time
	Symbols     []string

	DateRangeStart time.Time
	DateRangeEnd   time.Time

	Summary metrics.Summary
	Monthly *metrics.MonthlyTable

	Trades []domain.Trade
	Equity []domain.EquityPoint
	Open   []engine.OpenPosition
}

// Build assembles a report from engine output.
func Build(symbols []string, result *engine.Result, now time.Time) *Report {
	r := &Report{
		GeneratedAt: now,
		Symbols:     symbols,
		Summary:     metrics.Compute(result.Trades, result.Equity),
		Monthly:     metrics.MonthlyReturns(result.Equity),
		Trades:      result.Trades,
		Equity:      result.Equity,
		Open:        result.Open,
	}
	if len(result.Equity) > 0 {
		r.DateRangeStart = result.Equity[0].Date
		r.DateRangeEnd = result.Equity[len(result.Equity)-1].Date
	}
	return r
}
