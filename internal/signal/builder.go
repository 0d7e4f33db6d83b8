// Package signal turns rule templates into per-bar boolean columns.
//
// All columns are computed on bar closes only; the engine consumes them for
// execution at the next bar's open. Undefined indicator values during
// warm-up evaluate as false, never as errors.
package signal

import (
	"math"

	"github.com/abirkan1/eod-backtest/internal/domain"
	"github.com/abirkan1/eod-backtest/internal/indicator"
)

// Frame holds the signal columns for one instrument, aligned
// index-for-index with its bar series.
type Frame struct {
	// Entry is the AND of all enabled entry conditions. All false when no
	// condition is enabled.
	Entry []bool

	// RuleExit is the OR of enabled structural exit conditions (those
	// computable without entry context). Contextual exits (stoploss, time,
	// trail) live in the engine.
	RuleExit []bool

	// Momentum is the RSI column used for entry-candidate ranking. NaN when
	// RSI is not part of the rule set or still warming up.
	Momentum []float64

	// ATR backs the trailing stop. Nil when ATR trailing is disabled.
	ATR []float64
}

// Build computes the signal frame for one instrument.
func Build(bars []domain.Bar, entry domain.EntryConfig, exit domain.ExitConfig) *Frame {
	n := len(bars)
	f := &Frame{
		Entry:    make([]bool, n),
		RuleExit: make([]bool, n),
		Momentum: make([]float64, n),
	}
	for i := range f.Momentum {
		f.Momentum[i] = math.NaN()
	}
	if n == 0 {
		return f
	}

	closes := indicator.Closes(bars)

	// Trend-flip exits reuse the entry EMA periods.
	var emaFast, emaSlow []float64
	if (entry.UseTrend || exit.TrendFlip) && entry.EMAFast >= 1 && entry.EMASlow >= 1 {
		emaFast = indicator.EMA(closes, entry.EMAFast)
		emaSlow = indicator.EMA(closes, entry.EMASlow)
	}

	var rollHigh []float64
	if entry.UseBreakout {
		rollHigh = indicator.RollingHigh(bars, entry.BreakoutN)
	}

	var rsi []float64
	if entry.UseRSI {
		rsi = indicator.RSI(closes, entry.RSIPeriod)
		copy(f.Momentum, rsi)
	}

	anyEntry := entry.UseBreakout || entry.UseTrend || entry.UseRSI
	for i := 0; i < n; i++ {
		if anyEntry {
			// NaN comparisons are false, so warm-up bars drop out here.
			ok := true
			if entry.UseBreakout {
				ok = ok && bars[i].Close > rollHigh[i]
			}
			if entry.UseTrend {
				ok = ok && emaFast != nil && emaFast[i] > emaSlow[i]
			}
			if entry.UseRSI {
				ok = ok && rsi[i] > entry.RSIThreshold
			}
			f.Entry[i] = ok
		}

		if exit.TrendFlip && emaFast != nil {
			f.RuleExit[i] = emaFast[i] < emaSlow[i]
		}
	}

	if exit.ATRTrailing {
		f.ATR = indicator.ATR(bars, exit.ATRPeriod)
	}

	return f
}
