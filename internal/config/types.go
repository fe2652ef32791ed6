package config

// Config is the full runtime configuration, loaded from one YAML file.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Trade   TradeConfig   `yaml:"trade"`
	Betting BettingConfig `yaml:"betting"`
	Signal  SignalConfig  `yaml:"signal"`
	Filter  FilterConfig  `yaml:"filter"`
	Order   OrderConfig   `yaml:"order"`
	Notify  NotifyConfig  `yaml:"notify"`
	Paper   PaperConfig   `yaml:"paper"`
}

type AppConfig struct {
	Env           string `yaml:"env"`
	LogLevel      string `yaml:"log_level"`
	HTTPAddr      string `yaml:"http_addr"`
	LogPath       string `yaml:"log_path"`
	LogMaxSizeMB  int    `yaml:"log_max_size_mb"`
	LogMaxBackups int    `yaml:"log_max_backups"`
	Quiet         bool   `yaml:"quiet"`
	DryRun        bool   `yaml:"dry_run"`
}

type TradeConfig struct {
	Symbols              []string `yaml:"symbols"`
	IntervalSeconds      float64  `yaml:"interval_seconds"`
	RetryCount           int      `yaml:"retry_count"`
	HistoryHours         float64  `yaml:"history_hours"`
	TickSeconds          float64  `yaml:"tick_seconds"`
	Granularity          string   `yaml:"granularity"`
	RateCount            int      `yaml:"rate_count"`
	UnitMarginRatio      float64  `yaml:"unit_margin_ratio"`
	PreservedMarginRatio float64  `yaml:"preserved_margin_ratio"`
	FixedVolume          float64  `yaml:"fixed_volume"`
}

type BettingConfig struct {
	Strategy   string  `yaml:"strategy"`
	Strict     bool    `yaml:"strict"`
	InitVolume float64 `yaml:"init_volume"`
}

type SignalConfig struct {
	LrrSpan           int     `yaml:"lrr_span"`
	SrSpan            int     `yaml:"sr_span"`
	SignificanceLevel float64 `yaml:"significance_level"`
	AdjustBySpread    bool    `yaml:"adjust_by_spread"`
}

type FilterConfig struct {
	MaxSpreadRatio float64 `yaml:"max_spread_ratio"`
	VolumeEmaSpan  int     `yaml:"volume_ema_span"`
	QuietQuantile  float64 `yaml:"quiet_quantile"`
	TrendFast      int     `yaml:"trend_fast"`
	TrendSlow      int     `yaml:"trend_slow"`
}

type OrderConfig struct {
	TakeProfitRatio   float64 `yaml:"take_profit_ratio"`
	StopLossRatio     float64 `yaml:"stop_loss_ratio"`
	TrailingStopRatio float64 `yaml:"trailing_stop_ratio"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// PaperConfig feeds the simulated terminal.
type PaperConfig struct {
	Balance     float64 `yaml:"balance"`
	Leverage    float64 `yaml:"leverage"`
	SpreadRatio float64 `yaml:"spread_ratio"`
	Volatility  float64 `yaml:"volatility"`
	MinVolume   float64 `yaml:"min_volume"`
	Digits      int     `yaml:"digits"`
	Seed        int64   `yaml:"seed"`
}
