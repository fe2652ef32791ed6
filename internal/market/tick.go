package market

import "time"

// Tick is a single bid/ask quote. Volume counts the raw ticks folded into
// this row when the series has been thinned to one row per timestamp.
type Tick struct {
	Time   time.Time `json:"time"`
	Bid    float64   `json:"bid"`
	Ask    float64   `json:"ask"`
	Volume float64   `json:"volume"`
}

func (t Tick) Mid() float64 {
	return (t.Ask + t.Bid) / 2
}

func (t Tick) Spread() float64 {
	return t.Ask - t.Bid
}

// SpreadRatio is the spread relative to the mid price.
func (t Tick) SpreadRatio() float64 {
	mid := t.Mid()
	if mid == 0 {
		return 0
	}
	return t.Spread() / mid
}

// ThinTicks folds duplicate timestamps into a single row keeping the last
// quote and accumulating the tick count into Volume. Input must be ordered
// by timestamp.
func ThinTicks(ticks []Tick) []Tick {
	if len(ticks) == 0 {
		return nil
	}
	out := make([]Tick, 0, len(ticks))
	for _, t := range ticks {
		if t.Volume <= 0 {
			t.Volume = 1
		}
		if n := len(out); n > 0 && out[n-1].Time.Equal(t.Time) {
			t.Volume += out[n-1].Volume
			out[n-1] = t
			continue
		}
		out = append(out, t)
	}
	return out
}
