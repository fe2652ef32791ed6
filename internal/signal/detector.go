// Package signal turns a tick window into a directional trading verdict
// backed by exponentially weighted return statistics.
package signal

import (
	"fmt"
	"math"

	"tickbet/internal/market"

	"gonum.org/v1/gonum/stat/distuv"
)

// Act is the detector's verdict for one evaluation.
type Act string

const (
	ActLong    Act = "long"
	ActShort   Act = "short"
	ActClosing Act = "closing"
	ActNone    Act = "none"
)

// Interval is a two-sided confidence interval around an EWM estimate.
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Verdict carries the act plus the statistics it was derived from.
type Verdict struct {
	Act     Act      `json:"act"`
	LrrEMA  float64  `json:"lrr_ema"`
	LrrCI   Interval `json:"lrr_ci"`
	SrEMA   float64  `json:"sr_ema"`
	SrCI    Interval `json:"sr_ci"`
	Summary string   `json:"summary"`
}

// Config parameterizes the detector. LrrSpan drives the log-return-rate
// estimator, SrSpan the risk-adjusted estimator; SignificanceLevel sets the
// two-sided Student-t interval width.
type Config struct {
	LrrSpan           int
	SrSpan            int
	SignificanceLevel float64
	AdjustBySpread    bool
}

type Detector struct {
	lrrSpan        int
	srSpan         int
	alpha          float64
	adjustBySpread bool
}

func NewDetector(cfg Config) (*Detector, error) {
	if cfg.LrrSpan < 2 {
		return nil, fmt.Errorf("signal: lrr_span must be >= 2, got %d", cfg.LrrSpan)
	}
	if cfg.SrSpan < 2 {
		return nil, fmt.Errorf("signal: sr_span must be >= 2, got %d", cfg.SrSpan)
	}
	if cfg.SignificanceLevel <= 0 || cfg.SignificanceLevel >= 1 {
		return nil, fmt.Errorf("signal: significance_level must be in (0, 1), got %g", cfg.SignificanceLevel)
	}
	return &Detector{
		lrrSpan:        cfg.LrrSpan,
		srSpan:         cfg.SrSpan,
		alpha:          cfg.SignificanceLevel,
		adjustBySpread: cfg.AdjustBySpread,
	}, nil
}

// MinTicks is the smallest window the detector considers sufficient.
func (d *Detector) MinTicks() int {
	if d.lrrSpan > d.srSpan {
		return d.lrrSpan + 1
	}
	return d.srSpan + 1
}

// Detect evaluates one tick window against the currently held side.
func (d *Detector) Detect(ticks []market.Tick, side market.PositionSide) Verdict {
	rates, penalties := d.returnRates(ticks)

	lrrMean, lrrVar := market.EwmMoments(rates, float64(d.lrrSpan))
	lrrSE := stdErr(lrrVar, float64(d.lrrSpan))
	lrrCI := d.tInterval(lrrMean, lrrSE, float64(d.lrrSpan-1))

	sr := riskAdjusted(rates, penalties, d.srSpan)
	srMean, srVar := market.EwmMoments(sr, float64(d.srSpan))
	srSE := stdErr(srVar, float64(d.srSpan))
	srCI := d.tInterval(srMean, srSE, float64(d.srSpan-1))

	act := decide(lrrMean, lrrCI, srMean, srCI, side)
	v := Verdict{
		Act:    act,
		LrrEMA: lrrMean,
		LrrCI:  lrrCI,
		SrEMA:  srMean,
		SrCI:   srCI,
	}
	v.Summary = fmt.Sprintf(
		"LRR:%11.8f[%11.8f,%11.8f] SR:%9.4f[%9.4f,%9.4f] -> %7s",
		lrrMean, lrrCI.Lower, lrrCI.Upper, srMean, srCI.Lower, srCI.Upper, act,
	)
	return v
}

// returnRates computes per-tick log-return rates (per second) and the
// spread-cost penalty factor bid/ask at each step. Both slices have one
// entry per tick pair; degenerate steps are NaN.
func (d *Detector) returnRates(ticks []market.Tick) (rates, penalties []float64) {
	if len(ticks) < 2 {
		return nil, nil
	}
	rates = make([]float64, 0, len(ticks)-1)
	penalties = make([]float64, 0, len(ticks)-1)
	prevMid := ticks[0].Mid()
	prevTime := ticks[0].Time
	for _, t := range ticks[1:] {
		mid := t.Mid()
		elapsed := t.Time.Sub(prevTime).Seconds()
		rate := math.NaN()
		if elapsed > 0 && mid > 0 && prevMid > 0 {
			rate = math.Log(mid/prevMid) / elapsed
			if d.adjustBySpread {
				rate *= 1 - t.SpreadRatio()
			}
		}
		penalty := math.NaN()
		if t.Ask > 0 {
			penalty = t.Bid / t.Ask
		}
		rates = append(rates, rate)
		penalties = append(penalties, penalty)
		prevMid = mid
		prevTime = t.Time
	}
	return rates, penalties
}

// riskAdjusted maps return rates to a Sharpe-like series: the spread-cost
// adjusted profit/loss ratio divided by the trailing volatility of the rate.
func riskAdjusted(rates, penalties []float64, window int) []float64 {
	sd := market.RollingStd(rates, window)
	out := make([]float64, len(rates))
	for i, r := range rates {
		if math.IsNaN(r) || math.IsNaN(penalties[i]) || math.IsNaN(sd[i]) || sd[i] <= 0 {
			out[i] = math.NaN()
			continue
		}
		plr := (math.Exp(r) - 1) * penalties[i]
		out[i] = plr / sd[i]
	}
	return out
}

func stdErr(variance, span float64) float64 {
	if math.IsNaN(variance) || variance < 0 {
		return math.NaN()
	}
	return math.Sqrt(variance / span)
}

func (d *Detector) tInterval(mean, se, df float64) Interval {
	if math.IsNaN(mean) {
		return Interval{Lower: math.NaN(), Upper: math.NaN()}
	}
	if math.IsNaN(se) || se == 0 {
		return Interval{Lower: mean, Upper: mean}
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	q := t.Quantile(1 - d.alpha/2)
	return Interval{Lower: mean - q*se, Upper: mean + q*se}
}

func decide(lrrMean float64, lrrCI Interval, srMean float64, srCI Interval, side market.PositionSide) Act {
	switch {
	case (srCI.Lower > 0 && lrrCI.Upper > 0) || (lrrCI.Lower > 0 && srCI.Upper > 0):
		return ActLong
	case (srCI.Upper < 0 && lrrCI.Lower < 0) || (lrrCI.Upper < 0 && srCI.Lower < 0):
		return ActShort
	case side == market.SideShort && ((srMean > 0 && lrrMean > 0) || srCI.Lower > 0 || lrrCI.Lower > 0):
		return ActClosing
	case side == market.SideLong && ((srMean < 0 && lrrMean < 0) || srCI.Upper < 0 || lrrCI.Upper < 0):
		return ActClosing
	default:
		return ActNone
	}
}
