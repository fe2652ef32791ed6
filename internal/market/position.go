package market

type PositionSide int

const (
	SideNone PositionSide = iota
	SideLong
	SideShort
)

func (s PositionSide) String() string {
	switch s {
	case SideLong:
		return "long"
	case SideShort:
		return "short"
	default:
		return "none"
	}
}

// Opposite returns the other trading side; SideNone maps to itself.
func (s PositionSide) Opposite() PositionSide {
	switch s {
	case SideLong:
		return SideShort
	case SideShort:
		return SideLong
	default:
		return SideNone
	}
}

type Position struct {
	Ticket     string       `json:"ticket"`
	Symbol     string       `json:"symbol"`
	Side       PositionSide `json:"side"`
	Volume     float64      `json:"volume"`
	OpenPrice  float64      `json:"open_price"`
	StopLoss   float64      `json:"stop_loss"`
	TakeProfit float64      `json:"take_profit"`
}

// PositionBook aggregates same-symbol positions per side.
type PositionBook struct {
	LongVolume  float64
	ShortVolume float64
}

func BuildPositionBook(positions []Position) PositionBook {
	var book PositionBook
	for _, p := range positions {
		switch p.Side {
		case SideLong:
			book.LongVolume += p.Volume
		case SideShort:
			book.ShortVolume += p.Volume
		}
	}
	return book
}

// DominantSide is whichever side carries strictly greater volume; equal
// volumes (including both zero) have no dominant side.
func (b PositionBook) DominantSide() PositionSide {
	switch {
	case b.LongVolume > b.ShortVolume:
		return SideLong
	case b.ShortVolume > b.LongVolume:
		return SideShort
	default:
		return SideNone
	}
}

func (b PositionBook) VolumeOf(side PositionSide) float64 {
	switch side {
	case SideLong:
		return b.LongVolume
	case SideShort:
		return b.ShortVolume
	default:
		return 0
	}
}

// Order is a pending (not yet filled) order at the terminal.
type Order struct {
	Ticket string       `json:"ticket"`
	Symbol string       `json:"symbol"`
	Side   PositionSide `json:"side"`
	Volume float64      `json:"volume"`
	Price  float64      `json:"price"`
}

// OrderPlan is a sized order ready for submission.
type OrderPlan struct {
	Symbol     string       `json:"symbol"`
	Side       PositionSide `json:"side"`
	Volume     float64      `json:"volume"`
	StopLoss   float64      `json:"stop_loss"`
	TakeProfit float64      `json:"take_profit"`
}
