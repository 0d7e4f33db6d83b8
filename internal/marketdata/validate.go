package marketdata

import (
	"math"
	"sort"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

// Normalize sorts bars ascending by date, drops duplicate dates (first
// occurrence wins) and rows with non-finite or non-positive prices, and
// truncates dates to UTC midnight. Returns ErrNoData when nothing usable
// remains; callers treat that as "skip this instrument", not as fatal.
func Normalize(bars []domain.Bar) ([]domain.Bar, error) {
	out := make([]domain.Bar, 0, len(bars))
	for _, b := range bars {
		if !validBar(b) {
			continue
		}
		b.Date = b.Date.UTC().Truncate(24 * time.Hour)
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })

	dedup := out[:1]
	for _, b := range out[1:] {
		if b.Date.Equal(dedup[len(dedup)-1].Date) {
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup, nil
}

func validBar(b domain.Bar) bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return false
		}
	}
	if math.IsNaN(b.Volume) || b.Volume < 0 {
		return false
	}
	return !b.Date.IsZero()
}
