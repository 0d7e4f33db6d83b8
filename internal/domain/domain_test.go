package domain

import (
	"errors"
	"testing"
	"time"
)

func TestInstrumentDateRange(t *testing.T) {
	var empty Instrument
	start, end := empty.DateRange()
	if !start.IsZero() || !end.IsZero() {
		t.Errorf("empty series range = %v..%v, want zero values", start, end)
	}

	d1 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 5)
	in := Instrument{Symbol: "NIFTY", Bars: []Bar{{Date: d1}, {Date: d2}}}
	start, end = in.DateRange()
	if !start.Equal(d1) || !end.Equal(d2) {
		t.Errorf("range = %v..%v, want %v..%v", start, end, d1, d2)
	}
}

func TestEntryConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  EntryConfig
		ok   bool
	}{
		{"all disabled", EntryConfig{}, true},
		{"breakout ok", EntryConfig{UseBreakout: true, BreakoutN: 20}, true},
		{"breakout bad lookback", EntryConfig{UseBreakout: true, BreakoutN: 0}, false},
		{"trend ok", EntryConfig{UseTrend: true, EMAFast: 21, EMASlow: 55}, true},
		{"trend missing periods", EntryConfig{UseTrend: true}, false},
		{"rsi bad period", EntryConfig{UseRSI: true, RSIPeriod: 0}, false},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidEntryConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidEntryConfig", tc.name, err)
		}
	}
}

func TestExitConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  ExitConfig
		ok   bool
	}{
		{"all disabled", ExitConfig{}, true},
		{"stoploss ok", ExitConfig{Stoploss: true, StoplossPct: 0.02}, true},
		{"stoploss zero pct", ExitConfig{Stoploss: true}, false},
		{"time exit ok", ExitConfig{TimeExit: true, TimeExitBars: 20}, true},
		{"time exit zero bars", ExitConfig{TimeExit: true}, false},
		{"trailing ok", ExitConfig{ATRTrailing: true, ATRPeriod: 14, ATRMult: 3}, true},
		{"trailing zero mult", ExitConfig{ATRTrailing: true, ATRPeriod: 14}, false},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidExitConfig) {
			t.Errorf("%s: err = %v, want ErrInvalidExitConfig", tc.name, err)
		}
	}
}

func TestSimConfigValidate(t *testing.T) {
	good := SimConfig{CapitalPerTrade: 500000, MaxParallel: 2, SlippageBPS: 2, BrokeragePerOrder: 20}
	if err := good.Validate(); err != nil {
		t.Errorf("unexpected error %v", err)
	}

	bad := []SimConfig{
		{CapitalPerTrade: 0, MaxParallel: 2},
		{CapitalPerTrade: 500000, MaxParallel: 0},
		{CapitalPerTrade: 500000, MaxParallel: 2, SlippageBPS: -1},
		{CapitalPerTrade: 500000, MaxParallel: 2, BrokeragePerOrder: -1},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidSimConfig) {
			t.Errorf("case %d: err = %v, want ErrInvalidSimConfig", i, err)
		}
	}
}
