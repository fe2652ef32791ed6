package engine

import (
	"math"

	"tickbet/internal/market"
	"tickbet/internal/pkg/trading"
)

type sizing struct {
	unitMargin  float64
	unitVolume  float64
	availMargin float64
	availVolume float64
}

// computeSizing derives the unit order volume and the volume the free margin
// can still support, both as whole multiples of the symbol's minimum volume.
func (e *Engine) computeSizing(snap market.CycleSnapshot) sizing {
	minVol := snap.Symbol.MinVolume
	askMargin := snap.MinMargin.Ask
	if minVol <= 0 || askMargin <= 0 {
		return sizing{}
	}

	var sz sizing
	if e.cfg.FixedVolume > 0 {
		sz.unitVolume = trading.FloorToStep(e.cfg.FixedVolume, minVol)
	} else {
		unitLots := math.Ceil(snap.Account.Balance * e.cfg.UnitMarginRatio / askMargin)
		if unitLots > 0 {
			sz.unitVolume = trading.CeilToStep(unitLots*minVol, minVol)
		}
	}
	sz.unitMargin = askMargin * float64(trading.Lots(sz.unitVolume, minVol))

	sz.availMargin = snap.Account.MarginFree - snap.Account.Balance*e.cfg.PreservedMarginRatio
	if sz.availMargin < 0 {
		sz.availMargin = 0
	}
	availLots := math.Floor(sz.availMargin / askMargin)
	sz.availVolume = trading.FloorToStep(availLots*minVol, minVol)
	return sz
}

func floorVolume(volume, minVolume float64) float64 {
	return trading.FloorToStep(volume, minVolume)
}
