package market

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThinTicksFoldsDuplicateTimestamps(t *testing.T) {
	t0 := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Second)
	in := []Tick{
		{Time: t0, Bid: 1.0, Ask: 1.1},
		{Time: t0, Bid: 1.2, Ask: 1.3},
		{Time: t0, Bid: 1.4, Ask: 1.5},
		{Time: t1, Bid: 1.6, Ask: 1.7},
	}
	out := ThinTicks(in)

	require.Len(t, out, 2)
	assert.Equal(t, 1.4, out[0].Bid)
	assert.Equal(t, 1.5, out[0].Ask)
	assert.Equal(t, 3.0, out[0].Volume)
	assert.Equal(t, 1.0, out[1].Volume)
}

func TestThinTicksEmpty(t *testing.T) {
	assert.Nil(t, ThinTicks(nil))
}

func TestSpreadRatio(t *testing.T) {
	tick := Tick{Bid: 99, Ask: 101}
	assert.Equal(t, 100.0, tick.Mid())
	assert.Equal(t, 2.0, tick.Spread())
	assert.InDelta(t, 0.02, tick.SpreadRatio(), 1e-12)
	assert.Zero(t, Tick{Bid: -1, Ask: 1}.SpreadRatio())
}

func TestEwmMomentsTwoSamples(t *testing.T) {
	// span 3 gives decay 0.5: weights 0.5 and 1 on [0, 1].
	mean, variance := EwmMoments([]float64{0, 1}, 3)
	assert.InDelta(t, 2.0/3.0, mean, 1e-12)
	assert.InDelta(t, 0.5, variance, 1e-12)
}

func TestEwmMomentsConstantSeries(t *testing.T) {
	mean, variance := EwmMoments([]float64{2, 2, 2, 2}, 5)
	assert.InDelta(t, 2.0, mean, 1e-12)
	assert.InDelta(t, 0.0, variance, 1e-12)
}

func TestEwmMomentsSkipsNaN(t *testing.T) {
	mean, variance := EwmMoments([]float64{math.NaN(), 1, math.NaN()}, 5)
	assert.Equal(t, 1.0, mean)
	assert.True(t, math.IsNaN(variance))
}

func TestEwmMomentsEmpty(t *testing.T) {
	mean, variance := EwmMoments(nil, 5)
	assert.True(t, math.IsNaN(mean))
	assert.True(t, math.IsNaN(variance))
}

func TestRollingStd(t *testing.T) {
	out := RollingStd([]float64{1, 2, 3, 4}, 2)
	require.Len(t, out, 4)
	assert.True(t, math.IsNaN(out[0]))
	for _, v := range out[1:] {
		assert.InDelta(t, math.Sqrt(0.5), v, 1e-12)
	}
}

func TestPositionBookDominantSide(t *testing.T) {
	book := BuildPositionBook([]Position{
		{Side: SideLong, Volume: 0.3},
		{Side: SideShort, Volume: 0.1},
		{Side: SideLong, Volume: 0.2},
	})
	assert.InDelta(t, 0.5, book.LongVolume, 1e-12)
	assert.InDelta(t, 0.1, book.ShortVolume, 1e-12)
	assert.Equal(t, SideLong, book.DominantSide())
	assert.InDelta(t, 0.5, book.VolumeOf(SideLong), 1e-12)
}

func TestPositionBookEqualVolumesHaveNoDominantSide(t *testing.T) {
	book := BuildPositionBook([]Position{
		{Side: SideLong, Volume: 0.2},
		{Side: SideShort, Volume: 0.2},
	})
	assert.Equal(t, SideNone, book.DominantSide())
	assert.Equal(t, SideNone, PositionBook{}.DominantSide())
}

func TestEntryDealsFilters(t *testing.T) {
	deals := []Deal{
		{Type: DealBuy, Entry: true, Profit: 1},
		{Type: DealSell, Entry: false, Profit: 2},
		{Type: DealOther, Entry: true, Profit: 3},
		{Type: DealSell, Entry: true, Profit: 4},
	}
	out := EntryDeals(deals)
	require.Len(t, out, 2)
	assert.Equal(t, 1.0, out[0].Profit)
	assert.Equal(t, 4.0, out[1].Profit)
}

func TestGranularity(t *testing.T) {
	assert.Equal(t, time.Minute, GranularityM1.Duration())
	assert.Equal(t, 4*time.Hour, GranularityH4.Duration())
	assert.True(t, GranularityD1.Valid())
	assert.False(t, Granularity("M7").Valid())
}

func TestSideOpposite(t *testing.T) {
	assert.Equal(t, SideShort, SideLong.Opposite())
	assert.Equal(t, SideLong, SideShort.Opposite())
	assert.Equal(t, SideNone, SideNone.Opposite())
}
