package market

import "time"

type AccountSnapshot struct {
	Balance    float64 `json:"balance"`
	Equity     float64 `json:"equity"`
	MarginFree float64 `json:"margin_free"`
}

type SymbolSnapshot struct {
	Symbol    string  `json:"symbol"`
	MinVolume float64 `json:"min_volume"`
	Digits    int     `json:"digits"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
}

// MarginQuote carries the margin required for one minimum-volume unit,
// quoted per side.
type MarginQuote struct {
	Ask float64 `json:"ask"`
	Bid float64 `json:"bid"`
}

func (m MarginQuote) Mid() float64 {
	return (m.Ask + m.Bid) / 2
}

// CycleSnapshot is the immutable per-cycle input to the decision engine,
// rebuilt from the terminal on every evaluation.
type CycleSnapshot struct {
	Time      time.Time
	Account   AccountSnapshot
	Symbol    SymbolSnapshot
	Positions []Position
	MinMargin MarginQuote
	Deals     []Deal
	Ticks     []Tick
	Rates     []Candle
}
