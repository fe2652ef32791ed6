package market

import "time"

type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Granularity names a candle bucket size ("M1", "M5", "H1", ...).
type Granularity string

const (
	GranularityM1  Granularity = "M1"
	GranularityM5  Granularity = "M5"
	GranularityM15 Granularity = "M15"
	GranularityH1  Granularity = "H1"
	GranularityH4  Granularity = "H4"
	GranularityD1  Granularity = "D1"
)

func (g Granularity) Duration() time.Duration {
	switch g {
	case GranularityM1:
		return time.Minute
	case GranularityM5:
		return 5 * time.Minute
	case GranularityM15:
		return 15 * time.Minute
	case GranularityH1:
		return time.Hour
	case GranularityH4:
		return 4 * time.Hour
	case GranularityD1:
		return 24 * time.Hour
	default:
		return 0
	}
}

func (g Granularity) Valid() bool {
	return g.Duration() > 0
}

func CandleCloses(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func CandleVolumes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
