package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/abirkan1/eod-backtest/internal/metrics"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Backtest Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Universe: %s\n\n", strings.Join(r.Symbols, ", ")))
	if !r.DateRangeStart.IsZero() {
		sb.WriteString(fmt.Sprintf("Range: %s to %s\n\n",
			r.DateRangeStart.Format(dateLayout), r.DateRangeEnd.Format(dateLayout)))
	}

	// Summary metrics
	sb.WriteString("## Performance\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	for _, kv := range r.Summary.Flat() {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", kv.Key, mdNumber(kv.Value)))
	}
	sb.WriteString("\n")

	// Monthly returns
	if len(r.Monthly.Years) > 0 {
		sb.WriteString("## Monthly Returns (%)\n\n")
		sb.WriteString("| Year |")
		for m := 1; m <= 12; m++ {
			sb.WriteString(" " + metrics.MonthName(m) + " |")
		}
		sb.WriteString("\n|------|")
		for m := 1; m <= 12; m++ {
			sb.WriteString("-----|")
		}
		sb.WriteString("\n")
		for _, year := range r.Monthly.Years {
			row := r.Monthly.Cells[year]
			sb.WriteString(fmt.Sprintf("| %d |", year))
			for m := 0; m < 12; m++ {
				sb.WriteString(" " + mdNumber(row[m]) + " |")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	// Trades
	sb.WriteString(fmt.Sprintf("## Trades (%d)\n\n", len(r.Trades)))
	if len(r.Trades) > 0 {
		sb.WriteString("| Symbol | Entry | Exit | Entry Px | Exit Px | Net P&L | Bars | Reason |\n")
		sb.WriteString("|--------|-------|------|----------|---------|---------|------|--------|\n")
		for _, t := range r.Trades {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.2f | %.2f | %.2f | %d | %s |\n",
				t.Symbol,
				t.EntryDate.Format(dateLayout),
				t.ExitDate.Format(dateLayout),
				t.EntryPrice,
				t.ExitPrice,
				t.NetPnL,
				t.BarsHeld,
				t.ExitReason,
			))
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("No trades produced.\n\n")
	}

	// Positions left open when the series ended
	if len(r.Open) > 0 {
		sb.WriteString("## Open Positions\n\n")
		sb.WriteString("| Symbol | Entry | Entry Px | Quantity | Bars Held |\n")
		sb.WriteString("|--------|-------|----------|----------|-----------|\n")
		for _, p := range r.Open {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.2f | %.6f | %d |\n",
				p.Symbol, p.EntryDate.Format(dateLayout), p.EntryPrice, p.Quantity, p.BarsHeld))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func mdNumber(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
