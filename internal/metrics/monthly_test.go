package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

func pt(y int, m time.Month, d int, eq float64) domain.EquityPoint {
	return domain.EquityPoint{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Equity: eq}
}

func TestMonthlyReturns_Basic(t *testing.T) {
	equity := []domain.EquityPoint{
		pt(2023, time.January, 10, 1.00),
		pt(2023, time.January, 31, 1.10),
		pt(2023, time.February, 15, 1.05),
		pt(2023, time.February, 28, 1.21),
		pt(2023, time.March, 31, 1.21),
	}
	table := MonthlyReturns(equity)

	if len(table.Years) != 1 || table.Years[0] != 2023 {
		t.Fatalf("Years = %v, want [2023]", table.Years)
	}
	row := table.Cells[2023]

	// January has no prior month-end.
	if !math.IsNaN(row[0]) {
		t.Errorf("Jan = %v, want NaN", row[0])
	}
	// February: 1.21/1.10 - 1 = 10%.
	if math.Abs(row[1]-10) > 1e-9 {
		t.Errorf("Feb = %v, want 10", row[1])
	}
	// March: flat.
	if math.Abs(row[2]) > 1e-9 {
		t.Errorf("Mar = %v, want 0", row[2])
	}
	// Months outside the covered range stay NaN.
	if !math.IsNaN(row[3]) {
		t.Errorf("Apr = %v, want NaN", row[3])
	}
}

// A month with no trading days inside the range forward-fills the previous
// month-end, reporting 0% rather than a gap.
func TestMonthlyReturns_GapMonthForwardFills(t *testing.T) {
	equity := []domain.EquityPoint{
		pt(2023, time.January, 31, 1.0),
		pt(2023, time.March, 31, 1.2),
	}
	row := MonthlyReturns(equity).Cells[2023]

	if math.Abs(row[1]) > 1e-9 {
		t.Errorf("Feb = %v, want 0 (forward-filled)", row[1])
	}
	if math.Abs(row[2]-20) > 1e-9 {
		t.Errorf("Mar = %v, want 20", row[2])
	}
}

func TestMonthlyReturns_YearBoundary(t *testing.T) {
	equity := []domain.EquityPoint{
		pt(2022, time.December, 30, 1.0),
		pt(2023, time.January, 31, 1.05),
	}
	table := MonthlyReturns(equity)

	if len(table.Years) != 2 || table.Years[0] != 2022 || table.Years[1] != 2023 {
		t.Fatalf("Years = %v, want [2022 2023]", table.Years)
	}
	if got := table.Cells[2023][0]; math.Abs(got-5) > 1e-9 {
		t.Errorf("Jan 2023 = %v, want 5", got)
	}
}

func TestMonthlyReturns_Empty(t *testing.T) {
	table := MonthlyReturns(nil)
	if len(table.Years) != 0 || len(table.Cells) != 0 {
		t.Errorf("table = %+v, want empty", table)
	}
}

func TestMonthName(t *testing.T) {
	if got := MonthName(1); got != "Jan" {
		t.Errorf("MonthName(1) = %q, want Jan", got)
	}
	if got := MonthName(12); got != "Dec" {
		t.Errorf("MonthName(12) = %q, want Dec", got)
	}
}
