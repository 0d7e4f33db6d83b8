package domain

import "time"

// Trade is an immutable record of one closed round trip, created when an
// exit order fills. Prices are fill prices after slippage adjustment.
type Trade struct {
	TradeID string // deterministic hash
	Symbol  string

	EntryDate  time.Time
	ExitDate   time.Time
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64 // capital_per_trade / entry fill price, fractional

	GrossPnL float64 // (exit - entry) * quantity
	Costs    float64 // 2 * brokerage_per_order
	NetPnL   float64 // gross - costs

	BarsHeld   int
	ExitReason string // reason code
}

// Exit reason codes, in evaluation precedence order.
const (
	ExitReasonRuleExit     = "RuleExit"
	ExitReasonTimeExit     = "TimeExit"
	ExitReasonStoploss     = "Stoploss"
	ExitReasonTrailingStop = "TrailingStop"
)

// EquityPoint is one sample of the portfolio equity curve, normalized so a
// flat portfolio sits at 1.0.
type EquityPoint struct {
	Date   time.Time
	Equity float64
}
