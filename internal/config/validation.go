package config

import (
	"fmt"

	"tickbet/internal/betting"
	"tickbet/internal/market"
)

func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Trade.validate(); err != nil {
		return err
	}
	if err := c.Betting.validate(); err != nil {
		return err
	}
	if err := c.Signal.validate(); err != nil {
		return err
	}
	if err := c.Filter.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	switch a.LogLevel {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("app.log_level must be one of debug/info/warn/error, got %q", a.LogLevel)
}

func (t *TradeConfig) validate() error {
	if len(t.Symbols) == 0 {
		return fmt.Errorf("trade.symbols requires at least one symbol")
	}
	for _, s := range t.Symbols {
		if s == "" {
			return fmt.Errorf("trade.symbols contains an empty symbol")
		}
	}
	if g := market.Granularity(t.Granularity); !g.Valid() {
		return fmt.Errorf("trade.granularity %q is not supported", t.Granularity)
	}
	if t.UnitMarginRatio >= 1 {
		return fmt.Errorf("trade.unit_margin_ratio must be below 1, got %g", t.UnitMarginRatio)
	}
	if t.PreservedMarginRatio >= 1 {
		return fmt.Errorf("trade.preserved_margin_ratio must be below 1, got %g", t.PreservedMarginRatio)
	}
	if t.FixedVolume < 0 {
		return fmt.Errorf("trade.fixed_volume cannot be negative, got %g", t.FixedVolume)
	}
	return nil
}

func (b *BettingConfig) validate() error {
	if _, err := betting.ParseStrategy(b.Strategy); err != nil {
		return fmt.Errorf("betting.strategy: %w", err)
	}
	if b.InitVolume < 0 {
		return fmt.Errorf("betting.init_volume cannot be negative, got %g", b.InitVolume)
	}
	return nil
}

func (s *SignalConfig) validate() error {
	if s.LrrSpan <= 1 {
		return fmt.Errorf("signal.lrr_span must exceed 1, got %d", s.LrrSpan)
	}
	if s.SrSpan <= 1 {
		return fmt.Errorf("signal.sr_span must exceed 1, got %d", s.SrSpan)
	}
	if s.SignificanceLevel <= 0 || s.SignificanceLevel >= 1 {
		return fmt.Errorf("signal.significance_level must be in (0, 1), got %g", s.SignificanceLevel)
	}
	return nil
}

func (f *FilterConfig) validate() error {
	if f.QuietQuantile < 0 || f.QuietQuantile > 1 {
		return fmt.Errorf("filter.quiet_quantile must be in [0, 1], got %g", f.QuietQuantile)
	}
	if f.TrendFast >= f.TrendSlow {
		return fmt.Errorf("filter.trend_fast (%d) must be below filter.trend_slow (%d)", f.TrendFast, f.TrendSlow)
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	tg := n.Telegram
	if tg.Enabled && (tg.BotToken == "" || tg.ChatID == "") {
		return fmt.Errorf("notify.telegram requires bot_token and chat_id when enabled")
	}
	return nil
}
