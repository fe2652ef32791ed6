// Package paper implements the terminal interface against an in-memory
// simulated market: a seeded random-walk quote per symbol plus simple
// account and margin bookkeeping. It lets the full decision loop run end to
// end without touching any broker.
package paper

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"tickbet/internal/market"
	"tickbet/internal/terminal"

	"github.com/google/uuid"
)

const contractSize = 100000

var _ terminal.Terminal = (*Terminal)(nil)

type Config struct {
	InitialBalance float64
	Leverage       float64
	SpreadRatio    float64
	Drift          float64
	Volatility     float64
	MinVolume      float64
	Digits         int
	Seed           int64
	// StartPrices seeds the walk per symbol; unknown symbols start at 1.0.
	StartPrices map[string]float64
}

func (c *Config) applyDefaults() {
	if c.InitialBalance <= 0 {
		c.InitialBalance = 100000
	}
	if c.Leverage <= 0 {
		c.Leverage = 100
	}
	if c.SpreadRatio <= 0 {
		c.SpreadRatio = 0.0001
	}
	if c.Volatility <= 0 {
		c.Volatility = 0.0002
	}
	if c.MinVolume <= 0 {
		c.MinVolume = 0.01
	}
	if c.Digits <= 0 {
		c.Digits = 5
	}
}

type walk struct {
	rng   *rand.Rand
	price float64
}

type Terminal struct {
	mu        sync.Mutex
	cfg       Config
	balance   float64
	walks     map[string]*walk
	positions map[string][]market.Position
	deals     map[string][]market.Deal
}

func New(cfg Config) *Terminal {
	cfg.applyDefaults()
	return &Terminal{
		cfg:       cfg,
		balance:   cfg.InitialBalance,
		walks:     make(map[string]*walk),
		positions: make(map[string][]market.Position),
		deals:     make(map[string][]market.Deal),
	}
}

func (t *Terminal) walkFor(symbol string) *walk {
	if w, ok := t.walks[symbol]; ok {
		return w
	}
	h := fnv.New64a()
	h.Write([]byte(symbol))
	w := &walk{
		rng:   rand.New(rand.NewSource(t.cfg.Seed ^ int64(h.Sum64()))),
		price: 1.0,
	}
	if p, ok := t.cfg.StartPrices[symbol]; ok && p > 0 {
		w.price = p
	}
	t.walks[symbol] = w
	return w
}

func (w *walk) step(drift, vol float64) float64 {
	w.price *= math.Exp(drift + vol*w.rng.NormFloat64())
	return w.price
}

func (t *Terminal) quote(symbol string) (bid, ask float64) {
	w := t.walkFor(symbol)
	half := w.price * t.cfg.SpreadRatio / 2
	return w.price - half, w.price + half
}

func (t *Terminal) AccountSnapshot(ctx context.Context) (market.AccountSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	used, unrealized := t.exposure()
	return market.AccountSnapshot{
		Balance:    t.balance,
		Equity:     t.balance + unrealized,
		MarginFree: t.balance + unrealized - used,
	}, nil
}

// exposure returns used margin and unrealized P/L over all open positions.
func (t *Terminal) exposure() (used, unrealized float64) {
	for symbol, positions := range t.positions {
		bid, ask := t.quote(symbol)
		for _, p := range positions {
			used += p.OpenPrice * contractSize * p.Volume / t.cfg.Leverage
			if p.Side == market.SideLong {
				unrealized += (bid - p.OpenPrice) * contractSize * p.Volume
			} else {
				unrealized += (p.OpenPrice - ask) * contractSize * p.Volume
			}
		}
	}
	return used, unrealized
}

func (t *Terminal) SymbolSnapshot(ctx context.Context, symbol string) (market.SymbolSnapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bid, ask := t.quote(symbol)
	return market.SymbolSnapshot{
		Symbol:    symbol,
		MinVolume: t.cfg.MinVolume,
		Digits:    t.cfg.Digits,
		Bid:       bid,
		Ask:       ask,
	}, nil
}

func (t *Terminal) Positions(ctx context.Context, symbol string) ([]market.Position, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]market.Position(nil), t.positions[symbol]...), nil
}

func (t *Terminal) Orders(ctx context.Context, symbol string) ([]market.Order, error) {
	// market orders fill immediately, so nothing ever rests
	return nil, nil
}

func (t *Terminal) MinMargin(ctx context.Context, symbol string, side market.PositionSide) (float64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bid, ask := t.quote(symbol)
	price := ask
	if side == market.SideShort {
		price = bid
	}
	return price * contractSize * t.cfg.MinVolume / t.cfg.Leverage, nil
}

func (t *Terminal) HistoryDeals(ctx context.Context, symbol string, from, to time.Time) ([]market.Deal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]market.Deal, 0, len(t.deals[symbol]))
	for _, d := range t.deals[symbol] {
		if d.Time.Before(from) || d.Time.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (t *Terminal) Ticks(ctx context.Context, symbol string, from, to time.Time) ([]market.Tick, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	seconds := int(to.Sub(from).Seconds())
	if seconds <= 0 {
		return nil, terminal.NewResponseError("Ticks", "empty time range")
	}
	w := t.walkFor(symbol)
	ticks := make([]market.Tick, 0, seconds)
	for i := 0; i < seconds; i++ {
		price := w.step(t.cfg.Drift, t.cfg.Volatility)
		half := price * t.cfg.SpreadRatio / 2
		ticks = append(ticks, market.Tick{
			Time:   from.Add(time.Duration(i) * time.Second),
			Bid:    price - half,
			Ask:    price + half,
			Volume: 1,
		})
	}
	return market.ThinTicks(ticks), nil
}

func (t *Terminal) Rates(ctx context.Context, symbol string, granularity market.Granularity, count int) ([]market.Candle, error) {
	if !granularity.Valid() {
		return nil, terminal.NewResponseError("Rates", fmt.Sprintf("unknown granularity %s", granularity))
	}
	if count <= 0 {
		return nil, terminal.NewResponseError("Rates", "count must be positive")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	w := t.walkFor(symbol)
	bucket := granularity.Duration()
	end := time.Now().UTC().Truncate(bucket)
	start := end.Add(-time.Duration(count) * bucket)
	candles := make([]market.Candle, 0, count)
	for i := 0; i < count; i++ {
		open := w.price
		high, low := open, open
		for s := 0; s < 4; s++ {
			p := w.step(t.cfg.Drift, t.cfg.Volatility)
			if p > high {
				high = p
			}
			if p < low {
				low = p
			}
		}
		candles = append(candles, market.Candle{
			Time:   start.Add(time.Duration(i) * bucket),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  w.price,
			Volume: 50 + float64(w.rng.Intn(100)),
		})
	}
	return candles, nil
}

func (t *Terminal) SubmitOrder(ctx context.Context, req terminal.OrderRequest) (terminal.OrderResult, error) {
	return t.execute(req, false)
}

func (t *Terminal) CheckOrder(ctx context.Context, req terminal.OrderRequest) (terminal.OrderResult, error) {
	return t.execute(req, true)
}

func (t *Terminal) ModifyPosition(ctx context.Context, symbol, ticket string, stopLoss, takeProfit float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	positions := t.positions[symbol]
	for i := range positions {
		if positions[i].Ticket == ticket {
			positions[i].StopLoss = stopLoss
			positions[i].TakeProfit = takeProfit
			return nil
		}
	}
	return terminal.NewResponseError("ModifyPosition", "position not found")
}

func (t *Terminal) execute(req terminal.OrderRequest, checkOnly bool) (terminal.OrderResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if req.Volume <= 0 {
		res := terminal.OrderResult{Retcode: -1, Comment: "invalid volume"}
		return res, terminal.NewResponseError("SubmitOrder", res.Comment)
	}
	if req.Position != "" {
		return t.closePosition(req, checkOnly)
	}
	return t.openPosition(req, checkOnly)
}

func (t *Terminal) openPosition(req terminal.OrderRequest, checkOnly bool) (terminal.OrderResult, error) {
	bid, ask := t.quote(req.Symbol)
	price := ask
	if req.Side == market.SideShort {
		price = bid
	}
	used, unrealized := t.exposure()
	needed := price * contractSize * req.Volume / t.cfg.Leverage
	if needed > t.balance+unrealized-used {
		res := terminal.OrderResult{Retcode: -1, Comment: "no money"}
		return res, terminal.NewResponseError("SubmitOrder", res.Comment)
	}
	if checkOnly {
		return terminal.OrderResult{Retcode: terminal.RetcodeCheckOK, Comment: "check ok"}, nil
	}
	ticket := uuid.NewString()
	t.positions[req.Symbol] = append(t.positions[req.Symbol], market.Position{
		Ticket:     ticket,
		Symbol:     req.Symbol,
		Side:       req.Side,
		Volume:     req.Volume,
		OpenPrice:  price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
	})
	dealType := market.DealBuy
	if req.Side == market.SideShort {
		dealType = market.DealSell
	}
	// profit on the entry deal is settled when the position closes
	t.deals[req.Symbol] = append(t.deals[req.Symbol], market.Deal{
		Time:   time.Now().UTC(),
		Type:   dealType,
		Volume: req.Volume,
		Entry:  true,
	})
	return terminal.OrderResult{Retcode: terminal.RetcodeDone, Ticket: ticket, Comment: "done"}, nil
}

func (t *Terminal) closePosition(req terminal.OrderRequest, checkOnly bool) (terminal.OrderResult, error) {
	positions := t.positions[req.Symbol]
	idx := -1
	for i, p := range positions {
		if p.Ticket == req.Position {
			idx = i
			break
		}
	}
	if idx < 0 {
		res := terminal.OrderResult{Retcode: -1, Comment: "position not found"}
		return res, terminal.NewResponseError("SubmitOrder", res.Comment)
	}
	if checkOnly {
		return terminal.OrderResult{Retcode: terminal.RetcodeCheckOK, Comment: "check ok"}, nil
	}
	pos := positions[idx]
	bid, ask := t.quote(req.Symbol)
	var profit float64
	var dealType market.DealType
	if pos.Side == market.SideLong {
		profit = (bid - pos.OpenPrice) * contractSize * pos.Volume
		dealType = market.DealSell
	} else {
		profit = (pos.OpenPrice - ask) * contractSize * pos.Volume
		dealType = market.DealBuy
	}
	t.balance += profit
	t.positions[req.Symbol] = append(positions[:idx], positions[idx+1:]...)
	t.settleEntryDeal(req.Symbol, pos, profit)
	t.deals[req.Symbol] = append(t.deals[req.Symbol], market.Deal{
		Time:   time.Now().UTC(),
		Type:   dealType,
		Volume: pos.Volume,
		Profit: profit,
		Entry:  false,
	})
	return terminal.OrderResult{Retcode: terminal.RetcodeDone, Ticket: pos.Ticket, Comment: "done"}, nil
}

// settleEntryDeal backfills the realized profit onto the most recent open
// entry deal of the same type and volume so bet sizing sees completed
// trades.
func (t *Terminal) settleEntryDeal(symbol string, pos market.Position, profit float64) {
	wantType := market.DealBuy
	if pos.Side == market.SideShort {
		wantType = market.DealSell
	}
	deals := t.deals[symbol]
	for i := len(deals) - 1; i >= 0; i-- {
		d := deals[i]
		if d.Entry && d.Type == wantType && d.Profit == 0 && d.Volume == pos.Volume {
			deals[i].Profit = profit
			return
		}
	}
}
