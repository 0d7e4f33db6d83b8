package engine

import "github.com/abirkan1/eod-backtest/internal/domain"

// fillBuy applies slippage against the buyer:
// net = raw * (1 + slippage_bps/10000).
func fillBuy(raw float64, cfg domain.SimConfig) float64 {
	return raw * (1 + cfg.SlippageBPS/10000)
}

// fillSell applies slippage against the seller:
// net = raw * (1 - slippage_bps/10000).
func fillSell(raw float64, cfg domain.SimConfig) float64 {
	return raw * (1 - cfg.SlippageBPS/10000)
}

// roundTripCost is the total brokerage for one closed trade, one order per
// side.
func roundTripCost(cfg domain.SimConfig) float64 {
	return 2 * cfg.BrokeragePerOrder
}
