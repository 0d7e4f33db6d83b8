package reporting

import (
	"fmt"
	"math"
	"strings"

	"github.com/abirkan1/eod-backtest/internal/domain"
	"github.com/abirkan1/eod-backtest/internal/metrics"
)

// dateLayout is the date format for all delimited output.
const dateLayout = "2006-01-02"

// RenderTradesCSV renders the trade ledger as CSV, ordered as given.
func RenderTradesCSV(trades []domain.Trade) string {
	var sb strings.Builder

	sb.WriteString("trade_id,symbol,entry_date,exit_date,entry_price,exit_price,quantity,")
	sb.WriteString("gross_pnl,costs,net_pnl,bars_held,exit_reason\n")

	for _, t := range trades {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.4f,%.4f,%.6f,%.2f,%.2f,%.2f,%d,%s\n",
			t.TradeID,
			t.Symbol,
			t.EntryDate.Format(dateLayout),
			t.ExitDate.Format(dateLayout),
			t.EntryPrice,
			t.ExitPrice,
			t.Quantity,
			t.GrossPnL,
			t.Costs,
			t.NetPnL,
			t.BarsHeld,
			t.ExitReason,
		))
	}

	return sb.String()
}

// RenderEquityCSV renders the equity curve as CSV.
func RenderEquityCSV(equity []domain.EquityPoint) string {
	var sb strings.Builder

	sb.WriteString("date,equity\n")
	for _, p := range equity {
		sb.WriteString(fmt.Sprintf("%s,%.6f\n", p.Date.Format(dateLayout), p.Equity))
	}

	return sb.String()
}

// RenderMetricsCSV renders the flat summary mapping as CSV. Undefined
// values render as empty cells.
func RenderMetricsCSV(s metrics.Summary) string {
	var sb strings.Builder

	sb.WriteString("metric,value\n")
	for _, kv := range s.Flat() {
		sb.WriteString(fmt.Sprintf("%s,%s\n", kv.Key, csvNumber(kv.Value)))
	}

	return sb.String()
}

// RenderMonthlyCSV renders the year-by-month returns grid as CSV, one row
// per year. Undefined cells render empty.
func RenderMonthlyCSV(t *metrics.MonthlyTable) string {
	var sb strings.Builder

	sb.WriteString("year")
	for m := 1; m <= 12; m++ {
		sb.WriteString("," + metrics.MonthName(m))
	}
	sb.WriteString("\n")

	for _, year := range t.Years {
		row := t.Cells[year]
		sb.WriteString(fmt.Sprintf("%d", year))
		for m := 0; m < 12; m++ {
			sb.WriteString("," + csvNumber(row[m]))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func csvNumber(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.2f", v)
}
