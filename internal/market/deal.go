package market

import "time"

type DealType int

const (
	DealOther DealType = iota
	DealBuy
	DealSell
)

func (d DealType) String() string {
	switch d {
	case DealBuy:
		return "buy"
	case DealSell:
		return "sell"
	default:
		return "other"
	}
}

// Deal is a closed trade fill. Entry marks fills that opened or added to a
// position; only buy/sell entry deals participate in bet sizing.
type Deal struct {
	Time   time.Time `json:"time"`
	Type   DealType  `json:"type"`
	Volume float64   `json:"volume"`
	Profit float64   `json:"profit"`
	Entry  bool      `json:"entry"`
}

// EntryDeals filters to buy/sell entry fills, preserving order.
func EntryDeals(deals []Deal) []Deal {
	out := make([]Deal, 0, len(deals))
	for _, d := range deals {
		if d.Entry && (d.Type == DealBuy || d.Type == DealSell) {
			out = append(out, d)
		}
	}
	return out
}
