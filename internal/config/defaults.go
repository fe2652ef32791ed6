package config

const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppHTTPAddr     = ":9981"
	defaultAppLogMaxSizeMB = 50
	defaultAppLogBackups   = 3

	defaultTradeInterval     = 1.0
	defaultTradeRetryCount   = 1
	defaultTradeHistoryHours = 24.0
	defaultTradeTickSeconds  = 300.0
	defaultTradeGranularity  = "M1"
	defaultTradeRateCount    = 120
	defaultTradeUnitMargin   = 0.01
	defaultTradePreserved    = 0.01

	defaultBettingStrategy = "constant"

	defaultSignalSpan  = 60
	defaultSignalAlpha = 0.01

	defaultFilterMaxSpread = 0.01
	defaultFilterEmaSpan   = 60
	defaultFilterQuantile  = 0.2
	defaultFilterTrendFast = 12
	defaultFilterTrendSlow = 26

	defaultOrderTakeProfit = 0.01
	defaultOrderStopLoss   = 0.01
	defaultOrderTrailing   = 0.005

	defaultPaperBalance    = 100000.0
	defaultPaperLeverage   = 100.0
	defaultPaperSpread     = 0.0001
	defaultPaperVolatility = 0.0002
	defaultPaperMinVolume  = 0.01
	defaultPaperDigits     = 5
)

func (c *Config) applyDefaults() {
	c.App.applyDefaults()
	c.Trade.applyDefaults()
	c.Betting.applyDefaults()
	c.Signal.applyDefaults()
	c.Filter.applyDefaults()
	c.Order.applyDefaults()
	c.Paper.applyDefaults()
}

func (a *AppConfig) applyDefaults() {
	if a.Env == "" {
		a.Env = defaultAppEnv
	}
	if a.LogLevel == "" {
		a.LogLevel = defaultAppLogLevel
	}
	if a.HTTPAddr == "" {
		a.HTTPAddr = defaultAppHTTPAddr
	}
	if a.LogMaxSizeMB <= 0 {
		a.LogMaxSizeMB = defaultAppLogMaxSizeMB
	}
	if a.LogMaxBackups <= 0 {
		a.LogMaxBackups = defaultAppLogBackups
	}
}

func (t *TradeConfig) applyDefaults() {
	if t.IntervalSeconds <= 0 {
		t.IntervalSeconds = defaultTradeInterval
	}
	if t.RetryCount <= 0 {
		t.RetryCount = defaultTradeRetryCount
	}
	if t.HistoryHours <= 0 {
		t.HistoryHours = defaultTradeHistoryHours
	}
	if t.TickSeconds <= 0 {
		t.TickSeconds = defaultTradeTickSeconds
	}
	if t.Granularity == "" {
		t.Granularity = defaultTradeGranularity
	}
	if t.RateCount <= 0 {
		t.RateCount = defaultTradeRateCount
	}
	if t.UnitMarginRatio <= 0 {
		t.UnitMarginRatio = defaultTradeUnitMargin
	}
	if t.PreservedMarginRatio <= 0 {
		t.PreservedMarginRatio = defaultTradePreserved
	}
}

func (b *BettingConfig) applyDefaults() {
	if b.Strategy == "" {
		b.Strategy = defaultBettingStrategy
	}
}

func (s *SignalConfig) applyDefaults() {
	if s.LrrSpan <= 0 {
		s.LrrSpan = defaultSignalSpan
	}
	if s.SrSpan <= 0 {
		s.SrSpan = defaultSignalSpan
	}
	if s.SignificanceLevel <= 0 {
		s.SignificanceLevel = defaultSignalAlpha
	}
}

func (f *FilterConfig) applyDefaults() {
	if f.MaxSpreadRatio <= 0 {
		f.MaxSpreadRatio = defaultFilterMaxSpread
	}
	if f.VolumeEmaSpan <= 0 {
		f.VolumeEmaSpan = defaultFilterEmaSpan
	}
	if f.QuietQuantile <= 0 {
		f.QuietQuantile = defaultFilterQuantile
	}
	if f.TrendFast <= 0 {
		f.TrendFast = defaultFilterTrendFast
	}
	if f.TrendSlow <= 0 {
		f.TrendSlow = defaultFilterTrendSlow
	}
}

func (o *OrderConfig) applyDefaults() {
	if o.TakeProfitRatio <= 0 {
		o.TakeProfitRatio = defaultOrderTakeProfit
	}
	if o.StopLossRatio <= 0 {
		o.StopLossRatio = defaultOrderStopLoss
	}
	if o.TrailingStopRatio <= 0 {
		o.TrailingStopRatio = defaultOrderTrailing
	}
}

func (p *PaperConfig) applyDefaults() {
	if p.Balance <= 0 {
		p.Balance = defaultPaperBalance
	}
	if p.Leverage <= 0 {
		p.Leverage = defaultPaperLeverage
	}
	if p.SpreadRatio <= 0 {
		p.SpreadRatio = defaultPaperSpread
	}
	if p.Volatility <= 0 {
		p.Volatility = defaultPaperVolatility
	}
	if p.MinVolume <= 0 {
		p.MinVolume = defaultPaperMinVolume
	}
	if p.Digits <= 0 {
		p.Digits = defaultPaperDigits
	}
}
