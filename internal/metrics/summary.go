// Package metrics derives read-only performance views from the trade
// ledger and equity curve. Numeric degeneracies (no losing trades, too few
// return samples, non-positive elapsed time) resolve to NaN rather than
// propagating infinities or panicking.
package metrics

import (
	"math"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

// tradingDaysPerYear annualizes the Sharpe ratio.
const tradingDaysPerYear = 252

// minSharpeSamples is the fewest daily returns accepted before Sharpe is
// reported as undefined.
const minSharpeSamples = 3

// Summary is the flat performance report over one backtest run.
// Percentage fields are already scaled (WinRatePct 55 means 55%).
// NaN marks an undefined value.
type Summary struct {
	CAGRPct        float64
	MaxDrawdownPct float64 // most negative peak-to-trough excursion, in %
	Trades         int
	WinRatePct     float64
	ProfitFactor   float64
	AvgWin         float64
	AvgLoss        float64
	Expectancy     float64 // mean net P&L per trade
	Sharpe         float64
}

// Compute builds the summary from a closed-trade ledger and the
// mark-to-market equity series. An empty ledger is a valid outcome: counts
// and rates report zero, undefined ratios report NaN.
func Compute(trades []domain.Trade, equity []domain.EquityPoint) Summary {
	s := Summary{
		Trades:       len(trades),
		CAGRPct:      cagrPct(equity),
		Sharpe:       sharpe(equity),
		ProfitFactor: math.NaN(),
		AvgWin:       math.NaN(),
		AvgLoss:      math.NaN(),
		Expectancy:   math.NaN(),
	}
	s.MaxDrawdownPct = maxDrawdownPct(equity)

	if len(trades) == 0 {
		return s
	}

	var winSum, lossSum, netSum float64
	var wins, losses int
	for _, t := range trades {
		netSum += t.NetPnL
		if t.NetPnL > 0 {
			winSum += t.NetPnL
			wins++
		} else {
			lossSum += t.NetPnL
			losses++
		}
	}

	s.WinRatePct = 100 * float64(wins) / float64(len(trades))
	s.Expectancy = netSum / float64(len(trades))
	if wins > 0 {
		s.AvgWin = winSum / float64(wins)
	}
	if losses > 0 {
		s.AvgLoss = lossSum / float64(losses)
		s.ProfitFactor = winSum / math.Abs(lossSum)
	}
	return s
}

// KeyValue is one entry of the flat metrics mapping, in report order.
type KeyValue struct {
	Key   string
	Value float64
}

// Flat returns the summary as an ordered key-value mapping for rendering.
func (s Summary) Flat() []KeyValue {
	return []KeyValue{
		{"CAGR %", s.CAGRPct},
		{"MaxDrawdown %", s.MaxDrawdownPct},
		{"Trades", float64(s.Trades)},
		{"WinRate %", s.WinRatePct},
		{"ProfitFactor", s.ProfitFactor},
		{"AvgWin", s.AvgWin},
		{"AvgLoss", s.AvgLoss},
		{"Expectancy", s.Expectancy},
		{"Sharpe", s.Sharpe},
	}
}

// cagrPct computes the compound annual growth rate of the equity series,
// NaN when fewer than two points or non-positive elapsed time.
func cagrPct(equity []domain.EquityPoint) float64 {
	if len(equity) < 2 {
		return math.NaN()
	}
	first, last := equity[0], equity[len(equity)-1]
	years := last.Date.Sub(first.Date).Hours() / 24 / 365.25
	if years <= 0 || first.Equity <= 0 || last.Equity <= 0 {
		return math.NaN()
	}
	return 100 * (math.Pow(last.Equity/first.Equity, 1/years) - 1)
}

// maxDrawdownPct is the most negative excursion below the running equity
// peak, in percent. Zero for a non-decreasing curve, NaN when empty.
func maxDrawdownPct(equity []domain.EquityPoint) float64 {
	if len(equity) == 0 {
		return math.NaN()
	}
	peak := equity[0].Equity
	worst := 0.0
	for _, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := p.Equity/peak - 1
			if dd < worst {
				worst = dd
			}
		}
	}
	return 100 * worst
}

// sharpe annualizes mean/stddev of daily equity returns. NaN with fewer
// than minSharpeSamples returns or near-zero variance.
func sharpe(equity []domain.EquityPoint) float64 {
	rets := dailyReturns(equity)
	if len(rets) < minSharpeSamples {
		return math.NaN()
	}
	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))

	// Sample standard deviation (n-1 denominator).
	sumSq := 0.0
	for _, r := range rets {
		d := r - mean
		sumSq += d * d
	}
	std := math.Sqrt(sumSq / float64(len(rets)-1))
	if std < 1e-12 {
		return math.NaN()
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}

func dailyReturns(equity []domain.EquityPoint) []float64 {
	if len(equity) < 2 {
		return nil
	}
	rets := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			continue
		}
		rets = append(rets, equity[i].Equity/prev-1)
	}
	return rets
}
