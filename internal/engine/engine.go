// Package engine fuses the statistical signal, position state, margin
// constraints and market-quality filters into one trading decision per
// evaluation cycle.
package engine

import (
	"fmt"
	"sort"
	"strings"

	"tickbet/internal/betting"
	"tickbet/internal/logger"
	"tickbet/internal/market"
	"tickbet/internal/signal"

	talib "github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/stat"
)

type Config struct {
	UnitMarginRatio      float64
	PreservedMarginRatio float64
	FixedVolume          float64
	InitVolume           float64
	TakeProfitRatio      float64
	StopLossRatio        float64
	TrailingStopRatio    float64
	MaxSpreadRatio       float64
	VolumeEmaSpan        int
	QuietQuantile        float64
	TrendFast            int
	TrendSlow            int
	MinTicks             int
}

// Decision is the outcome of one evaluation cycle. Close lists positions to
// flatten before Plan (if any) is submitted; Volume is the volume actually
// requested (0 when no order goes out).
type Decision struct {
	Act     signal.Act
	State   string
	Volume  float64
	Close   []market.Position
	Plan    *market.OrderPlan
	Verdict signal.Verdict
}

type Engine struct {
	cfg      Config
	betting  *betting.System
	detector *signal.Detector
	trend    *signal.TrendFilter
}

func New(cfg Config, bs *betting.System, det *signal.Detector) *Engine {
	return &Engine{
		cfg:      cfg,
		betting:  bs,
		detector: det,
		trend:    signal.NewTrendFilter(cfg.TrendFast, cfg.TrendSlow),
	}
}

func (e *Engine) minTicks() int {
	if e.cfg.MinTicks > 0 {
		return e.cfg.MinTicks
	}
	return e.detector.MinTicks()
}

// Evaluate runs the gate chain in priority order; the first matching gate
// decides the cycle.
func (e *Engine) Evaluate(snap market.CycleSnapshot) Decision {
	book := market.BuildPositionBook(snap.Positions)
	held := book.DominantSide()

	if len(snap.Ticks) < e.minTicks() {
		return Decision{Act: signal.ActNone, State: "NO TICK"}
	}

	v := e.detector.Detect(snap.Ticks, held)
	trend := e.trend.Direction(snap.Rates)
	sigDir := actSide(v.Act)

	if held != market.SideNone &&
		(v.Act == signal.ActClosing || (sigDir != market.SideNone && trend != market.SideNone && trend != sigDir)) {
		return Decision{
			Act:     signal.ActClosing,
			State:   "CLOSING",
			Close:   snap.Positions,
			Verdict: v,
		}
	}

	if snap.Account.Equity == 0 || snap.Account.Balance == 0 {
		return Decision{Act: signal.ActNone, State: "NO BALANCE", Verdict: v}
	}

	if held != market.SideNone && (sigDir == held || sigDir == market.SideNone) {
		state := fmt.Sprintf("%s %g", strings.ToUpper(held.String()), book.VolumeOf(held))
		return Decision{Act: signal.ActNone, State: state, Verdict: v}
	}

	sz := e.computeSizing(snap)
	logger.Debugf("engine: unit_margin=%g unit_volume=%g avail_volume=%g",
		sz.unitMargin, sz.unitVolume, sz.availVolume)
	if sz.unitMargin >= snap.Account.MarginFree || sz.unitVolume == 0 ||
		snap.Account.Balance*e.cfg.PreservedMarginRatio >= snap.Account.MarginFree {
		return Decision{Act: signal.ActNone, State: "LACK OF FUNDS", Verdict: v}
	}

	if e.cfg.MaxSpreadRatio > 0 && spreadRatio(snap.Symbol) >= e.cfg.MaxSpreadRatio {
		return Decision{Act: signal.ActNone, State: "OVER-SPREAD", Verdict: v}
	}

	if v.Act != signal.ActClosing && e.quietMarket(snap.Rates) {
		return Decision{Act: signal.ActNone, State: "LOW VOLUME", Verdict: v}
	}

	if sigDir == market.SideNone {
		return Decision{Act: signal.ActNone, State: "-", Verdict: v}
	}

	if trend != market.SideNone && trend != sigDir {
		return Decision{Act: signal.ActNone, State: "CONTRARY TREND", Verdict: v}
	}

	return e.openDecision(snap, v, book, held, sigDir, sz)
}

func (e *Engine) openDecision(snap market.CycleSnapshot, v signal.Verdict,
	book market.PositionBook, held, side market.PositionSide, sz sizing) Decision {

	bet := e.betting.VolumeByPL(sz.unitVolume, snap.Deals, e.cfg.InitVolume)
	volume := bet
	if sz.availVolume < volume {
		volume = sz.availVolume
	}
	if held == side {
		volume -= book.VolumeOf(held)
	}
	volume = floorVolume(volume, snap.Symbol.MinVolume)
	logger.Debugf("engine: bet_volume=%g order_volume=%g", bet, volume)

	if volume <= 0 {
		return Decision{Act: v.Act, State: "SKIP ORDER", Verdict: v}
	}

	var closes []market.Position
	if held != market.SideNone && held != side {
		closes = snap.Positions
	}
	plan := e.orderPlan(snap.Symbol, side, volume)
	return Decision{
		Act:     v.Act,
		State:   "OPEN " + strings.ToUpper(side.String()),
		Volume:  volume,
		Close:   closes,
		Plan:    &plan,
		Verdict: v,
	}
}

func spreadRatio(sym market.SymbolSnapshot) float64 {
	mid := (sym.Ask + sym.Bid) / 2
	if mid == 0 {
		return 0
	}
	return (sym.Ask - sym.Bid) / mid
}

// quietMarket flags a market whose candle-volume EMA sits below a quantile
// of that EMA's own history.
func (e *Engine) quietMarket(candles []market.Candle) bool {
	span := e.cfg.VolumeEmaSpan
	if span < 2 || e.cfg.QuietQuantile <= 0 {
		return false
	}
	vols := market.CandleVolumes(candles)
	if len(vols) <= span {
		return false
	}
	ema := talib.Ema(vols, span)
	hist := append([]float64(nil), ema[span-1:]...)
	sort.Float64s(hist)
	threshold := stat.Quantile(e.cfg.QuietQuantile, stat.Empirical, hist, nil)
	return ema[len(ema)-1] < threshold
}

func actSide(act signal.Act) market.PositionSide {
	switch act {
	case signal.ActLong:
		return market.SideLong
	case signal.ActShort:
		return market.SideShort
	default:
		return market.SideNone
	}
}
