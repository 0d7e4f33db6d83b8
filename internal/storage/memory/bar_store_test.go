package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
	"github.com/abirkan1/eod-backtest/internal/storage"
)

func testBar(day int, close_ float64) domain.Bar {
	base := time.Date(2023, 4, 3, 0, 0, 0, 0, time.UTC)
	return domain.Bar{
		Date:   base.AddDate(0, 0, day),
		Open:   close_,
		High:   close_ + 1,
		Low:    close_ - 1,
		Close:  close_,
		Volume: 1000,
	}
}

func TestBarStore_InsertAndGet(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, "NIFTY", []domain.Bar{testBar(1, 101), testBar(0, 100)})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetBySymbol(ctx, "NIFTY")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d bars, want 2", len(got))
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Error("bars not ordered by date")
	}
}

func TestBarStore_DuplicateDateFailsBatch(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "NIFTY", []domain.Bar{testBar(0, 100)}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err := store.InsertBulk(ctx, "NIFTY", []domain.Bar{testBar(1, 101), testBar(0, 99)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}

	got, _ := store.GetBySymbol(ctx, "NIFTY")
	if len(got) != 1 {
		t.Errorf("failed batch left %d bars, want 1", len(got))
	}
}

func TestBarStore_EmptySymbolRejected(t *testing.T) {
	store := NewBarStore()
	err := store.InsertBulk(context.Background(), "", []domain.Bar{testBar(0, 100)})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestBarStore_GetByDateRange(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	bars := []domain.Bar{testBar(0, 100), testBar(1, 101), testBar(2, 102), testBar(3, 103)}
	if err := store.InsertBulk(ctx, "NIFTY", bars); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByDateRange(ctx, "NIFTY", bars[1].Date, bars[2].Date)
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(got) != 2 || got[0].Close != 101 || got[1].Close != 102 {
		t.Errorf("got %+v, want bars 1 and 2 (inclusive bounds)", got)
	}
}

func TestBarStore_Symbols(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	for _, sym := range []string{"NIFTY", "BANKNIFTY"} {
		if err := store.InsertBulk(ctx, sym, []domain.Bar{testBar(0, 100)}); err != nil {
			t.Fatalf("InsertBulk %s failed: %v", sym, err)
		}
	}

	got, err := store.Symbols(ctx)
	if err != nil {
		t.Fatalf("Symbols failed: %v", err)
	}
	if len(got) != 2 || got[0] != "BANKNIFTY" || got[1] != "NIFTY" {
		t.Errorf("Symbols = %v, want sorted [BANKNIFTY NIFTY]", got)
	}
}

func TestBarStore_UnknownSymbolIsEmpty(t *testing.T) {
	store := NewBarStore()
	got, err := store.GetBySymbol(context.Background(), "ABSENT")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d bars, want 0", len(got))
	}
}
