package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

// CachedLoader wraps a Loader with an on-disk CSV cache keyed by symbol and
// requested range, so repeated runs over the same window avoid refetching.
type CachedLoader struct {
	inner Loader
	dir   string
}

// NewCachedLoader creates a cache rooted at dir on top of inner.
func NewCachedLoader(inner Loader, dir string) *CachedLoader {
	return &CachedLoader{inner: inner, dir: dir}
}

// Compile-time interface check.
var _ Loader = (*CachedLoader)(nil)

// Load serves from the cache file when present, otherwise delegates to the
// inner loader and writes the result through. Cache read errors fall back
// to the inner loader rather than failing the run.
func (l *CachedLoader) Load(ctx context.Context, symbol string, start, end time.Time) ([]domain.Bar, error) {
	path := l.cachePath(symbol, start, end)

	if f, err := os.Open(path); err == nil {
		bars, readErr := ReadBarsCSV(f)
		f.Close()
		if readErr == nil {
			return Normalize(bars)
		}
		// Corrupt cache entry: refetch and overwrite.
	}

	bars, err := l.inner.Load(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}

	if err := l.write(path, bars); err != nil {
		return nil, fmt.Errorf("write cache %s: %w", path, err)
	}
	return bars, nil
}

func (l *CachedLoader) cachePath(symbol string, start, end time.Time) string {
	name := fmt.Sprintf("%s_%s_%s.csv",
		symbol, start.Format(csvDateLayout), end.Format(csvDateLayout))
	return filepath.Join(l.dir, name)
}

func (l *CachedLoader) write(path string, bars []domain.Bar) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(l.dir, ".cache-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteBarsCSV(tmp, bars); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
