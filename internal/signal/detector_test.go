package signal

import (
	"math"
	"testing"
	"time"

	"tickbet/internal/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	d, err := NewDetector(Config{LrrSpan: 20, SrSpan: 20, SignificanceLevel: 0.01})
	require.NoError(t, err)
	return d
}

// tickSeries builds ticks one second apart whose log-mid increases by the
// given increments, with a constant two-pip half spread around the mid.
func tickSeries(start time.Time, first float64, increments []float64) []market.Tick {
	logMid := math.Log(first)
	ticks := make([]market.Tick, 0, len(increments)+1)
	for i := 0; i <= len(increments); i++ {
		if i > 0 {
			logMid += increments[i-1]
		}
		mid := math.Exp(logMid)
		ticks = append(ticks, market.Tick{
			Time:   start.Add(time.Duration(i) * time.Second),
			Bid:    mid - 0.0002,
			Ask:    mid + 0.0002,
			Volume: 1,
		})
	}
	return ticks
}

func TestDetectRisingSeriesGoesLong(t *testing.T) {
	d := newTestDetector(t)
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	increments := make([]float64, 200)
	for i := range increments {
		if i%2 == 0 {
			increments[i] = 0.0012
		} else {
			increments[i] = 0.0008
		}
	}
	v := d.Detect(tickSeries(start, 1.0, increments), market.SideNone)
	assert.Equal(t, ActLong, v.Act, v.Summary)
	assert.Greater(t, v.LrrCI.Lower, 0.0)
	assert.Greater(t, v.SrEMA, 0.0)
}

func TestDetectFallingSeriesGoesShort(t *testing.T) {
	d := newTestDetector(t)
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	increments := make([]float64, 200)
	for i := range increments {
		if i%2 == 0 {
			increments[i] = -0.0012
		} else {
			increments[i] = -0.0008
		}
	}
	v := d.Detect(tickSeries(start, 1.0, increments), market.SideNone)
	assert.Equal(t, ActShort, v.Act, v.Summary)
	assert.Less(t, v.LrrCI.Upper, 0.0)
}

func TestDetectFlatSeriesStaysQuiet(t *testing.T) {
	d := newTestDetector(t)
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	v := d.Detect(tickSeries(start, 1.0, make([]float64, 100)), market.SideNone)
	// zero variance must not produce a degenerate trigger
	assert.Equal(t, ActNone, v.Act, v.Summary)
	assert.InDelta(t, 0.0, v.LrrEMA, 1e-12)
}

func TestDetectEmptyWindow(t *testing.T) {
	d := newTestDetector(t)
	v := d.Detect(nil, market.SideNone)
	assert.Equal(t, ActNone, v.Act)
	assert.True(t, math.IsNaN(v.LrrEMA))
	assert.True(t, math.IsNaN(v.SrEMA))
}

func TestDetectClosingWhileShort(t *testing.T) {
	d := newTestDetector(t)
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	// mildly positive drift with noise wide enough that the open interval
	// straddles zero on the SR side but the held short is against the mean
	increments := make([]float64, 120)
	for i := range increments {
		switch i % 3 {
		case 0:
			increments[i] = 0.0030
		case 1:
			increments[i] = -0.0006
		default:
			increments[i] = 0.0012
		}
	}
	vNone := d.Detect(tickSeries(start, 1.0, increments), market.SideNone)
	vShort := d.Detect(tickSeries(start, 1.0, increments), market.SideShort)
	if vNone.Act == ActNone {
		assert.Equal(t, ActClosing, vShort.Act, vShort.Summary)
	} else {
		// drift strong enough to clear the intervals outright
		assert.Equal(t, ActLong, vNone.Act, vNone.Summary)
	}
}

func TestTrendFilterDirection(t *testing.T) {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	up := make([]market.Candle, 60)
	down := make([]market.Candle, 60)
	for i := range up {
		ts := base.Add(time.Duration(i) * time.Minute)
		up[i] = market.Candle{Time: ts, Close: 100 + float64(i)}
		down[i] = market.Candle{Time: ts, Close: 200 - float64(i)}
	}
	f := NewTrendFilter(5, 20)
	assert.Equal(t, market.SideLong, f.Direction(up))
	assert.Equal(t, market.SideShort, f.Direction(down))
	assert.Equal(t, market.SideNone, f.Direction(up[:10]))
}
