// Package app wires the configuration into a running trader process.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tickbet/internal/betting"
	"tickbet/internal/config"
	"tickbet/internal/engine"
	"tickbet/internal/logger"
	"tickbet/internal/market"
	"tickbet/internal/notifier"
	"tickbet/internal/signal"
	"tickbet/internal/terminal/paper"
	"tickbet/internal/trader"
	livehttp "tickbet/internal/transport/http/live"
)

type App struct {
	cfg    *config.Config
	trader *trader.Trader
	server *livehttp.Server
}

// New builds the full collaborator graph from a validated configuration.
func New(cfg *config.Config) (*App, error) {
	bs, err := betting.New(cfg.Betting.Strategy, cfg.Betting.Strict)
	if err != nil {
		return nil, fmt.Errorf("betting system: %w", err)
	}
	det, err := signal.NewDetector(signal.Config{
		LrrSpan:           cfg.Signal.LrrSpan,
		SrSpan:            cfg.Signal.SrSpan,
		SignificanceLevel: cfg.Signal.SignificanceLevel,
		AdjustBySpread:    cfg.Signal.AdjustBySpread,
	})
	if err != nil {
		return nil, fmt.Errorf("signal detector: %w", err)
	}
	eng := engine.New(engine.Config{
		UnitMarginRatio:      cfg.Trade.UnitMarginRatio,
		PreservedMarginRatio: cfg.Trade.PreservedMarginRatio,
		TakeProfitRatio:      cfg.Order.TakeProfitRatio,
		StopLossRatio:        cfg.Order.StopLossRatio,
		TrailingStopRatio:    cfg.Order.TrailingStopRatio,
		MaxSpreadRatio:       cfg.Filter.MaxSpreadRatio,
		VolumeEmaSpan:        cfg.Filter.VolumeEmaSpan,
		QuietQuantile:        cfg.Filter.QuietQuantile,
		TrendFast:            cfg.Filter.TrendFast,
		TrendSlow:            cfg.Filter.TrendSlow,
		FixedVolume:          cfg.Trade.FixedVolume,
		InitVolume:           cfg.Betting.InitVolume,
	}, bs, det)

	term := paper.New(paper.Config{
		InitialBalance: cfg.Paper.Balance,
		Leverage:       cfg.Paper.Leverage,
		SpreadRatio:    cfg.Paper.SpreadRatio,
		Volatility:     cfg.Paper.Volatility,
		MinVolume:      cfg.Paper.MinVolume,
		Digits:         cfg.Paper.Digits,
		Seed:           cfg.Paper.Seed,
	})

	tr := trader.New(trader.Config{
		Symbols:      cfg.Trade.Symbols,
		Interval:     time.Duration(cfg.Trade.IntervalSeconds * float64(time.Second)),
		RetryCount:   cfg.Trade.RetryCount,
		HistoryHours: cfg.Trade.HistoryHours,
		TickSeconds:  cfg.Trade.TickSeconds,
		Granularity:  market.Granularity(cfg.Trade.Granularity),
		RateCount:    cfg.Trade.RateCount,
		DryRun:       cfg.App.DryRun,
		Quiet:        cfg.App.Quiet,
	}, term, eng)

	state := livehttp.NewState()
	tr.SetRecorder(state)
	if cfg.Notify.Telegram.Enabled {
		tr.SetNotifier(notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID))
	}

	srv, err := livehttp.NewServer(cfg.App.HTTPAddr, state)
	if err != nil {
		return nil, fmt.Errorf("live http server: %w", err)
	}
	return &App{cfg: cfg, trader: tr, server: srv}, nil
}

// Run serves HTTP and drives the trading loop until either fails or ctx is
// cancelled.
func (a *App) Run(ctx context.Context) error {
	logger.Infof("app: starting env=%s http=%s", a.cfg.App.Env, a.server.Addr())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.server.Start(ctx)
	})
	g.Go(func() error {
		err := a.trader.Run(ctx)
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}
