package metrics

import (
	"math"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

// MonthlyTable is the year-by-month grid of percentage returns, built from
// month-end equity values. Cells with no defined return hold NaN.
type MonthlyTable struct {
	Years []int // ascending
	// Cells[year][month-1] is the month's return in percent.
	Cells map[int][12]float64
}

// MonthlyReturns resamples the equity curve to month-end values and
// computes month-over-month percentage returns. Months inside the covered
// range with no trading days are forward-filled from the previous
// month-end, yielding a 0% return rather than a gap. The first month has
// no prior reference and stays NaN.
func MonthlyReturns(equity []domain.EquityPoint) *MonthlyTable {
	table := &MonthlyTable{Cells: make(map[int][12]float64)}
	if len(equity) == 0 {
		return table
	}

	// Month-end equity: last observation in each calendar month.
	type monthKey struct{ year, month int }
	ends := make(map[monthKey]float64)
	for _, p := range equity {
		ends[monthKey{p.Date.Year(), int(p.Date.Month())}] = p.Equity
	}

	first := equity[0].Date
	last := equity[len(equity)-1].Date

	prev := math.NaN()
	for y, m := first.Year(), int(first.Month()); ; {
		cur, ok := ends[monthKey{y, m}]
		if !ok {
			cur = prev // forward-fill across non-trading buckets
		}

		ret := math.NaN()
		if !math.IsNaN(prev) && prev != 0 && !math.IsNaN(cur) {
			ret = 100 * (cur/prev - 1)
		}
		setCell(table, y, m, ret)
		prev = cur

		if y == last.Year() && m == int(last.Month()) {
			break
		}
		m++
		if m > 12 {
			m = 1
			y++
		}
	}
	return table
}

func setCell(t *MonthlyTable, year, month int, value float64) {
	row, ok := t.Cells[year]
	if !ok {
		t.Years = append(t.Years, year)
		for i := range row {
			row[i] = math.NaN()
		}
	}
	row[month-1] = value
	t.Cells[year] = row
}

// MonthName renders a 1-based month index as its short English name, for
// report headers.
func MonthName(month int) string {
	return time.Month(month).String()[:3]
}
