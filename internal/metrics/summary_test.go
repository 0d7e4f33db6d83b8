package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

func day(i int) time.Time {
	return time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func curve(values ...float64) []domain.EquityPoint {
	pts := make([]domain.EquityPoint, len(values))
	for i, v := range values {
		pts[i] = domain.EquityPoint{Date: day(i), Equity: v}
	}
	return pts
}

func tradeWithPnL(pnl float64) domain.Trade {
	return domain.Trade{
		Symbol:    "NIFTY",
		EntryDate: day(0),
		ExitDate:  day(5),
		NetPnL:    pnl,
	}
}

func TestCompute_EmptyLedger(t *testing.T) {
	s := Compute(nil, nil)

	if s.Trades != 0 {
		t.Errorf("Trades = %d, want 0", s.Trades)
	}
	if s.WinRatePct != 0 {
		t.Errorf("WinRatePct = %v, want 0", s.WinRatePct)
	}
	for name, v := range map[string]float64{
		"CAGRPct":        s.CAGRPct,
		"MaxDrawdownPct": s.MaxDrawdownPct,
		"ProfitFactor":   s.ProfitFactor,
		"AvgWin":         s.AvgWin,
		"AvgLoss":        s.AvgLoss,
		"Expectancy":     s.Expectancy,
		"Sharpe":         s.Sharpe,
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s = %v, want NaN", name, v)
		}
	}
}

func TestCompute_TradeStats(t *testing.T) {
	trades := []domain.Trade{
		tradeWithPnL(100),
		tradeWithPnL(300),
		tradeWithPnL(-100),
		tradeWithPnL(-100),
	}
	s := Compute(trades, nil)

	if s.Trades != 4 {
		t.Errorf("Trades = %d, want 4", s.Trades)
	}
	if s.WinRatePct != 50 {
		t.Errorf("WinRatePct = %v, want 50", s.WinRatePct)
	}
	if s.ProfitFactor != 2 {
		t.Errorf("ProfitFactor = %v, want 2", s.ProfitFactor)
	}
	if s.AvgWin != 200 {
		t.Errorf("AvgWin = %v, want 200", s.AvgWin)
	}
	if s.AvgLoss != -100 {
		t.Errorf("AvgLoss = %v, want -100", s.AvgLoss)
	}
	if s.Expectancy != 50 {
		t.Errorf("Expectancy = %v, want 50", s.Expectancy)
	}
}

// A zero-PnL trade counts as a loss for the win rate.
func TestCompute_ZeroPnLCountsAsLoss(t *testing.T) {
	s := Compute([]domain.Trade{tradeWithPnL(0), tradeWithPnL(10)}, nil)
	if s.WinRatePct != 50 {
		t.Errorf("WinRatePct = %v, want 50", s.WinRatePct)
	}
}

func TestCompute_NoLossesProfitFactorUndefined(t *testing.T) {
	s := Compute([]domain.Trade{tradeWithPnL(10), tradeWithPnL(20)}, nil)
	if !math.IsNaN(s.ProfitFactor) {
		t.Errorf("ProfitFactor = %v, want NaN with no losing trades", s.ProfitFactor)
	}
	if !math.IsNaN(s.AvgLoss) {
		t.Errorf("AvgLoss = %v, want NaN", s.AvgLoss)
	}
	if s.WinRatePct != 100 {
		t.Errorf("WinRatePct = %v, want 100", s.WinRatePct)
	}
}

func TestMaxDrawdown(t *testing.T) {
	// Peak 1.2, trough 0.9: drawdown 25%.
	dd := maxDrawdownPct(curve(1.0, 1.2, 0.9, 1.1))
	if math.Abs(dd-(-25)) > 1e-9 {
		t.Errorf("maxDrawdownPct = %v, want -25", dd)
	}
}

func TestMaxDrawdown_MonotoneCurveIsZero(t *testing.T) {
	if dd := maxDrawdownPct(curve(1.0, 1.05, 1.1)); dd != 0 {
		t.Errorf("maxDrawdownPct = %v, want 0", dd)
	}
}

func TestCAGR(t *testing.T) {
	// Doubling over exactly one year.
	equity := []domain.EquityPoint{
		{Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), Equity: 1.0},
		{Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(365.25 * 24 * float64(time.Hour))), Equity: 2.0},
	}
	got := cagrPct(equity)
	if math.Abs(got-100) > 1e-6 {
		t.Errorf("cagrPct = %v, want 100", got)
	}
}

func TestCAGR_SinglePointUndefined(t *testing.T) {
	if got := cagrPct(curve(1.0)); !math.IsNaN(got) {
		t.Errorf("cagrPct = %v, want NaN", got)
	}
}

func TestSharpe_FlatCurveUndefined(t *testing.T) {
	if got := sharpe(curve(1, 1, 1, 1, 1)); !math.IsNaN(got) {
		t.Errorf("sharpe = %v, want NaN for zero variance", got)
	}
}

func TestSharpe_TooFewSamplesUndefined(t *testing.T) {
	if got := sharpe(curve(1, 1.01, 1.02)); !math.IsNaN(got) {
		t.Errorf("sharpe = %v, want NaN for %d returns", got, 2)
	}
}

func TestSharpe_Sign(t *testing.T) {
	up := sharpe(curve(1, 1.01, 1.025, 1.03, 1.05))
	if math.IsNaN(up) || up <= 0 {
		t.Errorf("sharpe = %v, want positive for a rising curve", up)
	}
	down := sharpe(curve(1, 0.99, 0.975, 0.97, 0.95))
	if math.IsNaN(down) || down >= 0 {
		t.Errorf("sharpe = %v, want negative for a falling curve", down)
	}
}

func TestFlat_OrderAndKeys(t *testing.T) {
	want := []string{
		"CAGR %", "MaxDrawdown %", "Trades", "WinRate %",
		"ProfitFactor", "AvgWin", "AvgLoss", "Expectancy", "Sharpe",
	}
	kv := Summary{Trades: 7}.Flat()
	if len(kv) != len(want) {
		t.Fatalf("len = %d, want %d", len(kv), len(want))
	}
	for i, k := range want {
		if kv[i].Key != k {
			t.Errorf("key[%d] = %q, want %q", i, kv[i].Key, k)
		}
	}
	if kv[2].Value != 7 {
		t.Errorf("Trades value = %v, want 7", kv[2].Value)
	}
}
