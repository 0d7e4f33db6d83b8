// Package indicator computes derived series from OHLCV bars.
//
// Every function returns a slice aligned index-for-index with its input,
// with math.NaN() during the warm-up window. All outputs are causal: the
// value at index i depends only on inputs at or before i.
package indicator

import (
	"math"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

// Closes extracts the close column from a bar series.
func Closes(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// SMA is the simple moving average over period bars.
func SMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period < 1 || len(values) < period {
		return out
	}
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// EMA is the exponential moving average over period bars, seeded with the
// SMA of the first period values.
func EMA(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period < 1 || len(values) < period {
		return out
	}
	alpha := 2.0 / float64(period+1)

	seed := 0.0
	for i := 0; i < period; i++ {
		seed += values[i]
	}
	prev := seed / float64(period)
	out[period-1] = prev

	for i := period; i < len(values); i++ {
		prev = alpha*values[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// RSI is Wilder's relative strength index over period bars. A zero average
// loss maps to 100.
func RSI(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period < 1 || len(values) <= period {
		return out
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		d := values[i] - values[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)

	n := float64(period)
	for i := period + 1; i < len(values); i++ {
		d := values[i] - values[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*(n-1) + gain) / n
		avgLoss = (avgLoss*(n-1) + loss) / n
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// ATR is Wilder's average true range over period bars, seeded with the
// simple mean of the first period true ranges.
func ATR(bars []domain.Bar, period int) []float64 {
	out := nanSlice(len(bars))
	if period < 1 || len(bars) <= period {
		return out
	}

	tr := make([]float64, len(bars))
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < len(bars); i++ {
		hl := bars[i].High - bars[i].Low
		hc := math.Abs(bars[i].High - bars[i-1].Close)
		lc := math.Abs(bars[i].Low - bars[i-1].Close)
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}

	seed := 0.0
	for i := 1; i <= period; i++ {
		seed += tr[i]
	}
	prev := seed / float64(period)
	out[period] = prev

	n := float64(period)
	for i := period + 1; i < len(bars); i++ {
		prev = (prev*(n-1) + tr[i]) / n
		out[i] = prev
	}
	return out
}

// RollingHigh returns, at each index, the highest high of the previous
// lookback bars, excluding the current bar. Used for breakout entries
// (Close[t] > max(High[t-N..t-1])).
func RollingHigh(bars []domain.Bar, lookback int) []float64 {
	out := nanSlice(len(bars))
	if lookback < 1 {
		return out
	}
	for i := lookback; i < len(bars); i++ {
		hi := bars[i-lookback].High
		for j := i - lookback + 1; j < i; j++ {
			if bars[j].High > hi {
				hi = bars[j].High
			}
		}
		out[i] = hi
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
