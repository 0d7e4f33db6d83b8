package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

// csvDateLayout is the date format used in bar CSV files.
const csvDateLayout = "2006-01-02"

// CSVLoader reads per-symbol bar files named <dir>/<SYMBOL>.csv with a
// date,open,high,low,close,volume header.
type CSVLoader struct {
	dir string
}

// NewCSVLoader creates a loader rooted at dir.
func NewCSVLoader(dir string) *CSVLoader {
	return &CSVLoader{dir: dir}
}

// Compile-time interface check.
var _ Loader = (*CSVLoader)(nil)

// Load reads, filters and validates the symbol's file. A missing file maps
// to ErrNoData so the caller can skip the instrument.
func (l *CSVLoader) Load(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	path := filepath.Join(l.dir, symbol+".csv")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	bars, err := ReadBarsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	filtered := bars[:0]
	for _, b := range bars {
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		filtered = append(filtered, b)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Normalize(filtered)
}

// ReadBarsCSV parses a date,open,high,low,close,volume CSV stream. The
// header row is required; column order is fixed.
func ReadBarsCSV(r io.Reader) ([]domain.Bar, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 6 || !strings.EqualFold(strings.TrimSpace(header[0]), "date") {
		return nil, fmt.Errorf("%w: unexpected header %v", ErrBadRecord, header)
	}

	bars := make([]domain.Bar, 0)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		b, err := parseBar(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// WriteBarsCSV renders bars in the same format ReadBarsCSV accepts.
func WriteBarsCSV(w io.Writer, bars []domain.Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		rec := []string{
			b.Date.Format(csvDateLayout),
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func parseBar(rec []string) (domain.Bar, error) {
	if len(rec) < 6 {
		return domain.Bar{}, fmt.Errorf("%w: want 6 fields, got %d", ErrBadRecord, len(rec))
	}
	date, err := time.ParseInLocation(csvDateLayout, strings.TrimSpace(rec[0]), time.UTC)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
		}
		vals[i] = v
	}
	return domain.Bar{
		Date:   date,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
