// Package engine is the backtesting core: a deterministic, single-threaded
// walk of every instrument's bar series along the union date axis,
// evaluating signals on closes and filling orders at next-bar opens.
//
// Evaluation order per date: mark-to-market, then exits across all
// instruments, then entry admission against the freed slot count. The
// portfolio-wide open-position count never exceeds MaxParallel.
package engine

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
	"github.com/abirkan1/eod-backtest/internal/idhash"
	"github.com/abirkan1/eod-backtest/internal/signal"
)

// Engine errors.
var (
	// ErrSignalMismatch is returned when a signal frame is missing or not
	// aligned with its instrument's bar series.
	ErrSignalMismatch = errors.New("signal frame does not align with bar series")
)

// Input pairs one instrument with its precomputed signal frame.
type Input struct {
	Instrument domain.Instrument
	Signals    *signal.Frame
}

// OpenPosition describes a position still open when the series ends. Its
// exit order, if any, was discarded for lack of a next bar.
type OpenPosition struct {
	Symbol     string
	EntryDate  time.Time
	EntryPrice float64
	Quantity   float64
	BarsHeld   int
}

// Result is the full output of one run: the closed-trade ledger ordered by
// exit date, one equity point per union trading date, and any positions
// left open.
type Result struct {
	Trades []domain.Trade
	Equity []domain.EquityPoint
	Open   []OpenPosition
}

// Run executes the backtest. Identical inputs always yield an identical
// result: instruments are processed in input order, dates ascending, and
// entry ranking uses a stable sort.
//
// Equity accounting is continuous mark-to-market:
// equity = (base + realized + unrealized) / base,
// base = MaxParallel * CapitalPerTrade.
func Run(inputs []Input, exit domain.ExitConfig, sim domain.SimConfig) (*Result, error) {
	if err := exit.Validate(); err != nil {
		return nil, err
	}
	if err := sim.Validate(); err != nil {
		return nil, err
	}
	for _, in := range inputs {
		f := in.Signals
		n := len(in.Instrument.Bars)
		if f == nil || len(f.Entry) != n || len(f.RuleExit) != n || len(f.Momentum) != n {
			return nil, ErrSignalMismatch
		}
		if f.ATR != nil && len(f.ATR) != n {
			return nil, ErrSignalMismatch
		}
	}

	axis := unionDates(inputs)

	positions := make([]position, len(inputs))
	for i := range positions {
		positions[i].reset()
	}
	cursors := make([]int, len(inputs))
	barAt := make([]int, len(inputs)) // index of each instrument's bar at the current date, -1 if absent

	base := float64(sim.MaxParallel) * sim.CapitalPerTrade
	realized := 0.0

	res := &Result{
		Trades: make([]domain.Trade, 0),
		Equity: make([]domain.EquityPoint, 0, len(axis)),
	}

	for _, t := range axis {
		// Advance cursors; a date absent from an instrument's series is
		// simply skipped for that instrument.
		for i, in := range inputs {
			barAt[i] = -1
			bars := in.Instrument.Bars
			if cursors[i] < len(bars) && bars[cursors[i]].Date.Equal(t) {
				barAt[i] = cursors[i]
				cursors[i]++
			}
		}

		// 1. Mark-to-market at close of t.
		unrealized := 0.0
		for i := range inputs {
			p := &positions[i]
			if p.open && barAt[i] >= 0 {
				p.lastClose = inputs[i].Instrument.Bars[barAt[i]].Close
			}
			unrealized += p.unrealized()
		}
		res.Equity = append(res.Equity, domain.EquityPoint{
			Date:   t,
			Equity: (base + realized + unrealized) / base,
		})

		// 2. Exits first, freeing capacity for the same cycle.
		for i := range inputs {
			idx := barAt[i]
			p := &positions[i]
			if idx < 0 || !p.open {
				continue
			}
			bars := inputs[i].Instrument.Bars
			f := inputs[i].Signals

			atr := math.NaN()
			if f.ATR != nil {
				atr = f.ATR[idx]
			}
			reason := p.evaluateExit(bars[idx].Close, atr, f.RuleExit[idx], exit)
			if reason == "" {
				continue
			}
			if idx+1 >= len(bars) {
				// No next open to execute against: order discarded, the
				// position stays open and unrealized.
				continue
			}
			next := bars[idx+1]
			trade := closeTrade(inputs[i].Instrument.Symbol, p, next, reason, sim)
			realized += trade.NetPnL
			res.Trades = append(res.Trades, trade)
			p.reset()
		}

		// 3-4. Rank entry candidates against the available slots.
		openCount := 0
		for i := range positions {
			if positions[i].open {
				openCount++
			}
		}
		slots := sim.MaxParallel - openCount
		if slots <= 0 {
			continue
		}

		candidates := make([]int, 0, len(inputs))
		for i := range inputs {
			idx := barAt[i]
			if idx < 0 || positions[i].open {
				continue
			}
			if !inputs[i].Signals.Entry[idx] {
				continue
			}
			if idx+1 >= len(inputs[i].Instrument.Bars) {
				continue // no next bar to fill at
			}
			candidates = append(candidates, i)
		}
		if sim.RankByMomentum {
			sort.SliceStable(candidates, func(a, b int) bool {
				return momentumScore(inputs[candidates[a]], barAt[candidates[a]]) >
					momentumScore(inputs[candidates[b]], barAt[candidates[b]])
			})
		}
		if len(candidates) > slots {
			// Unranked candidates are dropped for this cycle, not queued.
			candidates = candidates[:slots]
		}

		// 5. Fill admitted entries at the instrument's next open.
		for _, i := range candidates {
			next := inputs[i].Instrument.Bars[barAt[i]+1]
			positions[i].enter(fillBuy(next.Open, sim), next.Date, sim)
		}
	}

	sort.SliceStable(res.Trades, func(a, b int) bool {
		return res.Trades[a].ExitDate.Before(res.Trades[b].ExitDate)
	})

	for i := range positions {
		p := &positions[i]
		if p.open {
			res.Open = append(res.Open, OpenPosition{
				Symbol:     inputs[i].Instrument.Symbol,
				EntryDate:  p.entryDate,
				EntryPrice: p.entryPrice,
				Quantity:   p.quantity,
				BarsHeld:   p.barsHeld,
			})
		}
	}

	return res, nil
}

// defaultMomentum stands in for candidates whose RSI column is undefined,
// ranking them behind any overbought candidate but ahead of weak ones.
const defaultMomentum = 50.0

func momentumScore(in Input, idx int) float64 {
	m := in.Signals.Momentum[idx]
	if math.IsNaN(m) {
		return defaultMomentum
	}
	return m
}

// closeTrade fills the exit at the next bar's open and builds the immutable
// trade record.
func closeTrade(symbol string, p *position, next domain.Bar, reason string, sim domain.SimConfig) domain.Trade {
	exitPrice := fillSell(next.Open, sim)
	gross := (exitPrice - p.entryPrice) * p.quantity
	costs := roundTripCost(sim)
	return domain.Trade{
		TradeID:    idhash.ComputeTradeID(symbol, p.entryDate, next.Date),
		Symbol:     symbol,
		EntryDate:  p.entryDate,
		ExitDate:   next.Date,
		EntryPrice: p.entryPrice,
		ExitPrice:  exitPrice,
		Quantity:   p.quantity,
		GrossPnL:   gross,
		Costs:      costs,
		NetPnL:     gross - costs,
		BarsHeld:   p.barsHeld,
		ExitReason: reason,
	}
}

// unionDates merges every instrument's trading dates into one ascending,
// deduplicated axis.
func unionDates(inputs []Input) []time.Time {
	seen := make(map[int64]time.Time)
	for _, in := range inputs {
		for _, b := range in.Instrument.Bars {
			seen[b.Date.Unix()] = b.Date
		}
	}
	axis := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		axis = append(axis, d)
	}
	sort.Slice(axis, func(i, j int) bool { return axis[i].Before(axis[j]) })
	return axis
}
