// Package trader runs the sequential per-symbol evaluation loop. Symbols
// share one account's margin budget, so evaluation stays strictly ordered;
// the loop itself is the serialization discipline.
package trader

import (
	"context"
	"fmt"
	"time"

	"tickbet/internal/engine"
	"tickbet/internal/logger"
	"tickbet/internal/market"
	"tickbet/internal/terminal"
)

type Config struct {
	Symbols      []string
	Interval     time.Duration
	RetryCount   int
	HistoryHours float64
	TickSeconds  float64
	Granularity  market.Granularity
	RateCount    int
	DryRun       bool
	Quiet        bool
}

// Recorder receives the outcome of every completed cycle, e.g. for the live
// HTTP state endpoint.
type Recorder interface {
	Record(symbol string, sym market.SymbolSnapshot, dec engine.Decision)
}

// Notifier pushes human-readable trade events somewhere external.
type Notifier interface {
	SendText(text string) error
}

type Trader struct {
	cfg      Config
	term     terminal.Terminal
	eng      *engine.Engine
	recorder Recorder
	notifier Notifier
	nowFn    func() time.Time
}

func New(cfg Config, term terminal.Terminal, eng *engine.Engine) *Trader {
	return &Trader{cfg: cfg, term: term, eng: eng, nowFn: time.Now}
}

func (t *Trader) SetRecorder(r Recorder) { t.recorder = r }
func (t *Trader) SetNotifier(n Notifier) { t.notifier = n }

// Run evaluates every configured symbol in list order, sleeps the
// configured interval and starts over. A cycle that keeps failing after the
// configured retries aborts the whole run.
func (t *Trader) Run(ctx context.Context) error {
	logger.Infof("trader: started symbols=%v interval=%s dry_run=%v",
		t.cfg.Symbols, t.cfg.Interval, t.cfg.DryRun)
	for {
		for _, symbol := range t.cfg.Symbols {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := t.cycleWithRetry(ctx, symbol); err != nil {
				t.notifyf("tickbet aborted: %v", err)
				return err
			}
		}
		timer := time.NewTimer(t.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (t *Trader) cycleWithRetry(ctx context.Context, symbol string) error {
	for attempt := 0; ; attempt++ {
		err := t.cycle(ctx, symbol)
		if err == nil {
			return nil
		}
		if !terminal.IsResponse(err) || attempt >= t.cfg.RetryCount {
			return fmt.Errorf("cycle for %s: %w", symbol, err)
		}
		logger.Warnf("trader: transient failure for %s (attempt %d/%d): %v",
			symbol, attempt+1, t.cfg.RetryCount, err)
	}
}

// cycle refreshes all snapshots, evaluates the engine once and acts on the
// decision. Everything is recomputed from the terminal; no state survives
// between cycles.
func (t *Trader) cycle(ctx context.Context, symbol string) error {
	snap, err := t.refresh(ctx, symbol)
	if err != nil {
		return err
	}
	dec := t.eng.Evaluate(snap)
	logger.Debugf("trader: %s act=%s state=%q volume=%g", symbol, dec.Act, dec.State, dec.Volume)

	for _, p := range dec.Close {
		req := terminal.OrderRequest{
			Symbol:   symbol,
			Side:     p.Side.Opposite(),
			Volume:   p.Volume,
			Position: p.Ticket,
			Comment:  "closing",
		}
		if err := t.sendOrder(ctx, req); err != nil {
			return err
		}
		t.notifyf("tickbet %s: closed %s %g", symbol, p.Side, p.Volume)
	}

	if dec.Plan != nil {
		req := terminal.OrderRequest{
			Symbol:     dec.Plan.Symbol,
			Side:       dec.Plan.Side,
			Volume:     dec.Plan.Volume,
			StopLoss:   dec.Plan.StopLoss,
			TakeProfit: dec.Plan.TakeProfit,
			Comment:    "signal entry",
		}
		if err := t.sendOrder(ctx, req); err != nil {
			return err
		}
		t.notifyf("tickbet %s: opened %s %g (sl=%g tp=%g)",
			symbol, dec.Plan.Side, dec.Plan.Volume, dec.Plan.StopLoss, dec.Plan.TakeProfit)
	}

	if len(dec.Close) == 0 && dec.Plan == nil {
		if err := t.maintainStops(ctx, snap); err != nil {
			return err
		}
	}

	t.printStateLine(symbol, snap.Symbol, dec)
	if t.recorder != nil {
		t.recorder.Record(symbol, snap.Symbol, dec)
	}
	return nil
}

func (t *Trader) refresh(ctx context.Context, symbol string) (market.CycleSnapshot, error) {
	now := t.nowFn().UTC()
	var snap market.CycleSnapshot
	snap.Time = now

	account, err := t.term.AccountSnapshot(ctx)
	if err != nil {
		return snap, fmt.Errorf("account snapshot: %w", err)
	}
	sym, err := t.term.SymbolSnapshot(ctx, symbol)
	if err != nil {
		return snap, fmt.Errorf("symbol snapshot: %w", err)
	}
	positions, err := t.term.Positions(ctx, symbol)
	if err != nil {
		return snap, fmt.Errorf("positions: %w", err)
	}
	askMargin, err := t.term.MinMargin(ctx, symbol, market.SideLong)
	if err != nil {
		return snap, fmt.Errorf("ask margin: %w", err)
	}
	bidMargin, err := t.term.MinMargin(ctx, symbol, market.SideShort)
	if err != nil {
		return snap, fmt.Errorf("bid margin: %w", err)
	}
	to := now.Add(time.Second)
	deals, err := t.term.HistoryDeals(ctx, symbol, now.Add(-time.Duration(t.cfg.HistoryHours*float64(time.Hour))), to)
	if err != nil {
		return snap, fmt.Errorf("history deals: %w", err)
	}
	ticks, err := t.term.Ticks(ctx, symbol, now.Add(-time.Duration(t.cfg.TickSeconds*float64(time.Second))), to)
	if err != nil {
		return snap, fmt.Errorf("ticks: %w", err)
	}
	rates, err := t.term.Rates(ctx, symbol, t.cfg.Granularity, t.cfg.RateCount)
	if err != nil {
		return snap, fmt.Errorf("rates: %w", err)
	}

	snap.Account = account
	snap.Symbol = sym
	snap.Positions = positions
	snap.MinMargin = market.MarginQuote{Ask: askMargin, Bid: bidMargin}
	snap.Deals = deals
	snap.Ticks = market.ThinTicks(ticks)
	snap.Rates = rates
	return snap, nil
}

func (t *Trader) sendOrder(ctx context.Context, req terminal.OrderRequest) error {
	var (
		res terminal.OrderResult
		err error
	)
	if t.cfg.DryRun {
		res, err = t.term.CheckOrder(ctx, req)
	} else {
		res, err = t.term.SubmitOrder(ctx, req)
	}
	if err != nil {
		return err
	}
	logger.Infof("trader: order %s %s %g retcode=%d comment=%q",
		req.Symbol, req.Side, req.Volume, res.Retcode, res.Comment)
	return nil
}

// maintainStops tightens trailing stops on open positions when no order
// went out this cycle.
func (t *Trader) maintainStops(ctx context.Context, snap market.CycleSnapshot) error {
	for _, p := range snap.Positions {
		newStop, ok := t.eng.TrailingStop(p, snap.Symbol)
		if !ok {
			continue
		}
		if err := t.term.ModifyPosition(ctx, p.Symbol, p.Ticket, newStop, p.TakeProfit); err != nil {
			return fmt.Errorf("trailing stop: %w", err)
		}
		logger.Debugf("trader: trailing stop %s %s -> %g", p.Symbol, p.Ticket, newStop)
	}
	return nil
}

func (t *Trader) printStateLine(symbol string, sym market.SymbolSnapshot, dec engine.Decision) {
	if t.cfg.Quiet {
		return
	}
	summary := dec.Verdict.Summary
	if summary == "" {
		summary = "-"
	}
	fmt.Printf("|%-10s| B/A:%11.5f/%11.5f |%-15s| %s\n",
		symbol, sym.Bid, sym.Ask, dec.State, summary)
}

func (t *Trader) notifyf(format string, v ...any) {
	if t.notifier == nil {
		return
	}
	if err := t.notifier.SendText(fmt.Sprintf(format, v...)); err != nil {
		logger.Warnf("trader: notify failed: %v", err)
	}
}
