package engine

import (
	"tickbet/internal/market"
	"tickbet/internal/pkg/trading"
)

// orderPlan prices stop-loss and take-profit off the entry side of the book,
// with the ratio signs flipped for shorts.
func (e *Engine) orderPlan(sym market.SymbolSnapshot, side market.PositionSide, volume float64) market.OrderPlan {
	price := sym.Ask
	dir := 1.0
	if side == market.SideShort {
		price = sym.Bid
		dir = -1.0
	}
	return market.OrderPlan{
		Symbol:     sym.Symbol,
		Side:       side,
		Volume:     volume,
		StopLoss:   trading.RoundPrice(price*(1-dir*e.cfg.StopLossRatio), sym.Digits),
		TakeProfit: trading.RoundPrice(price*(1+dir*e.cfg.TakeProfitRatio), sym.Digits),
	}
}

// TrailingStop recomputes a trailing stop from the current quote. The stop
// only ever tightens: for a long the new stop must sit above the existing
// one, for a short below it. The bool reports whether to apply the update.
func (e *Engine) TrailingStop(pos market.Position, sym market.SymbolSnapshot) (float64, bool) {
	r := e.cfg.TrailingStopRatio
	if r <= 0 {
		return pos.StopLoss, false
	}
	switch pos.Side {
	case market.SideLong:
		newStop := trading.RoundPrice(sym.Bid*(1-r), sym.Digits)
		if pos.StopLoss == 0 || newStop > pos.StopLoss {
			return newStop, true
		}
	case market.SideShort:
		newStop := trading.RoundPrice(sym.Ask*(1+r), sym.Digits)
		if pos.StopLoss == 0 || newStop < pos.StopLoss {
			return newStop, true
		}
	}
	return pos.StopLoss, false
}
