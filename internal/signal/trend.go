package signal

import (
	"tickbet/internal/market"

	talib "github.com/markcheno/go-talib"
)

// TrendFilter classifies the longer-horizon direction of a candle window by
// comparing a fast and a slow EMA of the closes.
type TrendFilter struct {
	fast int
	slow int
}

func NewTrendFilter(fast, slow int) *TrendFilter {
	if fast < 2 {
		fast = 2
	}
	if slow <= fast {
		slow = fast * 2
	}
	return &TrendFilter{fast: fast, slow: slow}
}

// Direction returns SideLong for an up trend, SideShort for a down trend and
// SideNone when the window is too short or the EMAs coincide.
func (f *TrendFilter) Direction(candles []market.Candle) market.PositionSide {
	closes := market.CandleCloses(candles)
	if len(closes) <= f.slow {
		return market.SideNone
	}
	fast := talib.Ema(closes, f.fast)
	slow := talib.Ema(closes, f.slow)
	last := len(closes) - 1
	switch {
	case fast[last] > slow[last]:
		return market.SideLong
	case fast[last] < slow[last]:
		return market.SideShort
	default:
		return market.SideNone
	}
}
