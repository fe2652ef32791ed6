package trader

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"tickbet/internal/betting"
	"tickbet/internal/engine"
	"tickbet/internal/market"
	"tickbet/internal/signal"
	"tickbet/internal/terminal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTerminal serves canned market data and records every order it
// receives. failures is a script consumed one entry per cycle at the first
// terminal call.
type fakeTerminal struct {
	failures     []error
	accountCalls int
	positions    []market.Position
	submitted    []terminal.OrderRequest
	checked      []terminal.OrderRequest
	modified     []string
}

func (f *fakeTerminal) AccountSnapshot(ctx context.Context) (market.AccountSnapshot, error) {
	f.accountCalls++
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		if err != nil {
			return market.AccountSnapshot{}, err
		}
	}
	return market.AccountSnapshot{Balance: 100000, Equity: 100000, MarginFree: 100000}, nil
}

func (f *fakeTerminal) SymbolSnapshot(ctx context.Context, symbol string) (market.SymbolSnapshot, error) {
	return market.SymbolSnapshot{Symbol: symbol, MinVolume: 0.01, Digits: 3, Bid: 1.2200, Ask: 1.2204}, nil
}

func (f *fakeTerminal) Positions(ctx context.Context, symbol string) ([]market.Position, error) {
	return f.positions, nil
}

func (f *fakeTerminal) Orders(ctx context.Context, symbol string) ([]market.Order, error) {
	return nil, nil
}

func (f *fakeTerminal) MinMargin(ctx context.Context, symbol string, side market.PositionSide) (float64, error) {
	return 50, nil
}

func (f *fakeTerminal) HistoryDeals(ctx context.Context, symbol string, from, to time.Time) ([]market.Deal, error) {
	return nil, nil
}

func (f *fakeTerminal) Ticks(ctx context.Context, symbol string, from, to time.Time) ([]market.Tick, error) {
	return risingTicks(200, 0.001), nil
}

func (f *fakeTerminal) Rates(ctx context.Context, symbol string, granularity market.Granularity, count int) ([]market.Candle, error) {
	return flatVolumeCandles(60, 1), nil
}

func (f *fakeTerminal) SubmitOrder(ctx context.Context, req terminal.OrderRequest) (terminal.OrderResult, error) {
	f.submitted = append(f.submitted, req)
	return terminal.OrderResult{Retcode: terminal.RetcodeDone, Ticket: "t1"}, nil
}

func (f *fakeTerminal) CheckOrder(ctx context.Context, req terminal.OrderRequest) (terminal.OrderResult, error) {
	f.checked = append(f.checked, req)
	return terminal.OrderResult{Retcode: terminal.RetcodeCheckOK}, nil
}

func (f *fakeTerminal) ModifyPosition(ctx context.Context, symbol, ticket string, stopLoss, takeProfit float64) error {
	f.modified = append(f.modified, ticket)
	return nil
}

func risingTicks(n int, rate float64) []market.Tick {
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	logMid := 0.0
	ticks := make([]market.Tick, n)
	for i := range ticks {
		if i > 0 {
			step := rate * 1.2
			if i%2 == 0 {
				step = rate * 0.8
			}
			logMid += step
		}
		mid := math.Exp(logMid)
		ticks[i] = market.Tick{
			Time:   start.Add(time.Duration(i) * time.Second),
			Bid:    mid - 0.0002,
			Ask:    mid + 0.0002,
			Volume: 1,
		}
	}
	return ticks
}

func flatVolumeCandles(n int, slope float64) []market.Candle {
	base := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	out := make([]market.Candle, n)
	for i := range out {
		c := 100 + slope*float64(i)
		out[i] = market.Candle{Time: base.Add(time.Duration(i) * time.Minute), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	return out
}

type captureRecorder struct {
	symbols []string
	last    engine.Decision
}

func (r *captureRecorder) Record(symbol string, sym market.SymbolSnapshot, dec engine.Decision) {
	r.symbols = append(r.symbols, symbol)
	r.last = dec
}

func testTrader(t *testing.T, term terminal.Terminal, dryRun bool) *Trader {
	t.Helper()
	bs, err := betting.New("constant", false)
	require.NoError(t, err)
	det, err := signal.NewDetector(signal.Config{LrrSpan: 20, SrSpan: 20, SignificanceLevel: 0.01})
	require.NoError(t, err)
	eng := engine.New(engine.Config{
		UnitMarginRatio:      0.01,
		PreservedMarginRatio: 0.01,
		TakeProfitRatio:      0.01,
		StopLossRatio:        0.01,
		TrailingStopRatio:    0.01,
		MaxSpreadRatio:       0.01,
		VolumeEmaSpan:        5,
		QuietQuantile:        0.5,
		TrendFast:            5,
		TrendSlow:            20,
	}, bs, det)
	return New(Config{
		Symbols:      []string{"EURUSD"},
		Interval:     time.Millisecond,
		RetryCount:   2,
		HistoryHours: 1,
		TickSeconds:  300,
		Granularity:  market.GranularityM1,
		RateCount:    60,
		DryRun:       dryRun,
		Quiet:        true,
	}, term, eng)
}

func TestCycleSubmitsOpenOrder(t *testing.T) {
	term := &fakeTerminal{}
	tr := testTrader(t, term, false)
	rec := &captureRecorder{}
	tr.SetRecorder(rec)

	require.NoError(t, tr.cycle(context.Background(), "EURUSD"))

	require.Len(t, term.submitted, 1)
	assert.Empty(t, term.checked)
	req := term.submitted[0]
	assert.Equal(t, market.SideLong, req.Side)
	assert.InDelta(t, 0.2, req.Volume, 1e-9)
	assert.Greater(t, req.TakeProfit, req.StopLoss)

	require.Equal(t, []string{"EURUSD"}, rec.symbols)
	assert.Equal(t, "OPEN LONG", rec.last.State)
}

func TestCycleDryRunChecksOnly(t *testing.T) {
	term := &fakeTerminal{}
	tr := testTrader(t, term, true)

	require.NoError(t, tr.cycle(context.Background(), "EURUSD"))

	assert.Empty(t, term.submitted)
	require.Len(t, term.checked, 1)
	assert.Equal(t, market.SideLong, term.checked[0].Side)
}

func TestCycleRetriesTransientFailure(t *testing.T) {
	term := &fakeTerminal{failures: []error{terminal.NewResponseError("AccountSnapshot", "timeout")}}
	tr := testTrader(t, term, false)

	require.NoError(t, tr.cycleWithRetry(context.Background(), "EURUSD"))
	assert.Equal(t, 2, term.accountCalls)
}

func TestCycleAbortsAfterRetryBudget(t *testing.T) {
	term := &fakeTerminal{failures: []error{
		terminal.NewResponseError("AccountSnapshot", "timeout"),
		terminal.NewResponseError("AccountSnapshot", "timeout"),
		terminal.NewResponseError("AccountSnapshot", "timeout"),
	}}
	tr := testTrader(t, term, false)

	err := tr.cycleWithRetry(context.Background(), "EURUSD")
	require.Error(t, err)
	assert.True(t, terminal.IsResponse(err))
	assert.Equal(t, 3, term.accountCalls)
}

func TestCycleFatalOnNonResponseError(t *testing.T) {
	term := &fakeTerminal{failures: []error{errors.New("boom")}}
	tr := testTrader(t, term, false)

	err := tr.cycleWithRetry(context.Background(), "EURUSD")
	require.Error(t, err)
	assert.False(t, terminal.IsResponse(err))
	assert.Equal(t, 1, term.accountCalls)
}

func TestCycleTightensTrailingStop(t *testing.T) {
	term := &fakeTerminal{positions: []market.Position{{
		Ticket:    "p1",
		Symbol:    "EURUSD",
		Side:      market.SideLong,
		Volume:    1,
		OpenPrice: 1.0,
	}}}
	tr := testTrader(t, term, false)
	rec := &captureRecorder{}
	tr.SetRecorder(rec)

	require.NoError(t, tr.cycle(context.Background(), "EURUSD"))

	assert.Empty(t, term.submitted)
	assert.Equal(t, []string{"p1"}, term.modified)
	assert.Equal(t, "LONG 1", rec.last.State)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	term := &fakeTerminal{}
	tr := testTrader(t, term, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := tr.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
