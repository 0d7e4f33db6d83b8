package engine

import (
	"math"
	"time"

	"github.com/abirkan1/eod-backtest/internal/domain"
)

// position is the per-instrument state machine: FLAT or OPEN. One position
// value exists per instrument for the life of the run, reused across trade
// cycles.
type position struct {
	open       bool
	entryPrice float64 // fill price after slippage
	entryDate  time.Time
	barsHeld   int
	trail      float64 // NaN until the first finite ATR while open
	quantity   float64
	lastClose  float64 // last seen close, carries equity across calendar gaps
}

// reset returns the position to FLAT.
func (p *position) reset() {
	*p = position{trail: math.NaN()}
}

// enter transitions FLAT -> OPEN with entry context captured at the fill.
func (p *position) enter(fillPrice float64, fillDate time.Time, cfg domain.SimConfig) {
	p.open = true
	p.entryPrice = fillPrice
	p.entryDate = fillDate
	p.barsHeld = 0
	p.trail = math.NaN()
	p.quantity = cfg.CapitalPerTrade / fillPrice
	p.lastClose = fillPrice
}

// evaluateExit runs one bar of the OPEN state: increment bars-held, ratchet
// the trail, then check exit reasons by precedence. Returns the matched exit
// reason, or "" to stay open.
//
// close_ is the bar's close; atr is the ATR at this bar (NaN while warming
// up), only consulted when ATR trailing is enabled; ruleExit is the
// structural exit column at this bar.
func (p *position) evaluateExit(close_, atr float64, ruleExit bool, exit domain.ExitConfig) string {
	p.barsHeld++
	p.lastClose = close_

	if exit.ATRTrailing && !math.IsNaN(atr) {
		candidate := close_ - exit.ATRMult*atr
		// The trail only ratchets upward, never downward.
		if math.IsNaN(p.trail) || candidate > p.trail {
			p.trail = candidate
		}
	}

	switch {
	case ruleExit:
		return domain.ExitReasonRuleExit
	case exit.TimeExit && p.barsHeld >= exit.TimeExitBars:
		return domain.ExitReasonTimeExit
	case exit.Stoploss && close_ <= p.entryPrice*(1-exit.StoplossPct):
		return domain.ExitReasonStoploss
	case exit.ATRTrailing && !math.IsNaN(p.trail) && close_ <= p.trail:
		return domain.ExitReasonTrailingStop
	}
	return ""
}

// unrealized is the open P&L marked at the last seen close.
func (p *position) unrealized() float64 {
	if !p.open {
		return 0
	}
	return (p.lastClose - p.entryPrice) * p.quantity
}
