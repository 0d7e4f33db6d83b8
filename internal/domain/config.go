package domain

import "errors"

// Config validation errors.
var (
	ErrInvalidEntryConfig = errors.New("invalid entry config")
	ErrInvalidExitConfig  = errors.New("invalid exit config")
	ErrInvalidSimConfig   = errors.New("invalid simulation config")
)

// EntryConfig selects and parameterizes entry conditions. The entry signal
// is the logical AND of all enabled conditions; with none enabled it is
// always false.
type EntryConfig struct {
	UseBreakout bool
	BreakoutN   int // lookback for highest-high breakout

	UseTrend bool
	EMAFast  int
	EMASlow  int

	UseRSI       bool
	RSIPeriod    int
	RSIThreshold float64
}

// Validate checks parameter bounds for the enabled conditions.
func (c EntryConfig) Validate() error {
	if c.UseBreakout && c.BreakoutN < 1 {
		return ErrInvalidEntryConfig
	}
	if c.UseTrend && (c.EMAFast < 1 || c.EMASlow < 1) {
		return ErrInvalidEntryConfig
	}
	if c.UseRSI && c.RSIPeriod < 1 {
		return ErrInvalidEntryConfig
	}
	return nil
}

// ExitConfig selects and parameterizes exit conditions. The exit is the
// logical OR of all enabled conditions; precedence between simultaneously
// true conditions is fixed by the engine.
type ExitConfig struct {
	TrendFlip bool // structural: EMA fast < EMA slow

	Stoploss    bool
	StoplossPct float64 // fraction of entry price, e.g. 0.02

	TimeExit     bool
	TimeExitBars int // exit after holding this many bars

	ATRTrailing bool
	ATRPeriod   int
	ATRMult     float64
}

// Validate checks parameter bounds for the enabled conditions.
func (c ExitConfig) Validate() error {
	if c.Stoploss && c.StoplossPct <= 0 {
		return ErrInvalidExitConfig
	}
	if c.TimeExit && c.TimeExitBars < 1 {
		return ErrInvalidExitConfig
	}
	if c.ATRTrailing && (c.ATRPeriod < 1 || c.ATRMult <= 0) {
		return ErrInvalidExitConfig
	}
	return nil
}

// SimConfig parameterizes execution and portfolio behavior.
type SimConfig struct {
	CapitalPerTrade   float64 // fixed notional per position
	MaxParallel       int     // hard cap on simultaneous open positions
	SlippageBPS       float64 // basis points against the trader on every fill
	BrokeragePerOrder float64 // flat cost per order, two orders per round trip

	// RankByMomentum ranks same-day entry candidates by RSI descending when
	// slots are scarce; false keeps pure input order.
	RankByMomentum bool
}

// Validate checks parameter bounds.
func (c SimConfig) Validate() error {
	if c.CapitalPerTrade <= 0 || c.MaxParallel < 1 {
		return ErrInvalidSimConfig
	}
	if c.SlippageBPS < 0 || c.BrokeragePerOrder < 0 {
		return ErrInvalidSimConfig
	}
	return nil
}
