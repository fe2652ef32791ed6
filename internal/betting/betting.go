// Package betting sizes the next order from the outcome of the most recent
// completed trade, following a configured staking strategy.
package betting

import (
	"fmt"
	"strings"

	"tickbet/internal/logger"
	"tickbet/internal/market"
)

// Strategy is the closed set of supported staking strategies.
type Strategy int

const (
	Martingale Strategy = iota
	Paroli
	DAlembert
	Pyramid
	OscarsGrind
	Constant
)

var strategyNames = map[Strategy]string{
	Martingale:  "Martingale",
	Paroli:      "Paroli",
	DAlembert:   "d'Alembert",
	Pyramid:     "Pyramid",
	OscarsGrind: "Oscar's grind",
	Constant:    "Constant",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func normalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "'", "")
	return strings.ReplaceAll(name, " ", "")
}

// ParseStrategy matches a strategy name ignoring case, apostrophes and
// spaces ("oscars grind" and "Oscar's grind" are the same strategy).
func ParseStrategy(name string) (Strategy, error) {
	want := normalizeName(name)
	for s, canonical := range strategyNames {
		if normalizeName(canonical) == want {
			return s, nil
		}
	}
	return 0, fmt.Errorf("invalid strategy: %s", name)
}

// Outcome is the tri-state result of the most recent completed trade.
type Outcome int

const (
	Undetermined Outcome = iota
	Won
	Lost
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "undetermined"
	}
}

// System computes order volumes from deal history. Strict selects the
// conservative win determination that nets a trailing positive run against
// the loss run preceding it.
type System struct {
	strategy Strategy
	strict   bool
}

func New(strategy string, strict bool) (*System, error) {
	s, err := ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	return &System{strategy: s, strict: strict}, nil
}

func (b *System) Strategy() Strategy { return b.strategy }

// VolumeByPL derives the next order volume from the symbol's entry-deal
// history. With no usable history it falls back to the last known volume,
// then initVolume, then unitVolume.
func (b *System) VolumeByPL(unitVolume float64, deals []market.Deal, initVolume float64) float64 {
	entries := market.EntryDeals(deals)
	var lastVolume float64
	if len(entries) > 0 {
		lastVolume = entries[len(entries)-1].Volume
	}
	logger.Debugf("betting: last_volume=%g entries=%d", lastVolume, len(entries))
	if len(entries) == 0 {
		return firstPositive(lastVolume, initVolume, unitVolume)
	}
	pl := make([]float64, len(entries))
	for i, d := range entries {
		pl[i] = d.Profit
	}
	wonLast := b.determineOutcome(pl)
	logger.Debugf("betting: won_last=%s", wonLast)
	return b.nextVolume(unitVolume, initVolume, lastVolume, wonLast, allTimeHigh(pl))
}

func (b *System) determineOutcome(pl []float64) Outcome {
	last := pl[len(pl)-1]
	switch {
	case last < 0:
		return Lost
	case last == 0:
		return Undetermined
	case !b.strict:
		return Won
	}
	// Strict: net the trailing positive run against the loss run right
	// before it. A positive last trade can score won or undetermined here,
	// never lost.
	latestProfit := last
	var latestLoss float64
	inLossRun := false
	for i := len(pl) - 2; i >= 0; i-- {
		p := pl[i]
		if inLossRun {
			if p > 0 {
				break
			}
			latestLoss -= p
			continue
		}
		if p > 0 {
			latestProfit += p
		} else {
			inLossRun = true
			latestLoss -= p
		}
	}
	if latestProfit > latestLoss {
		return Won
	}
	return Undetermined
}

// allTimeHigh reports whether the running maximum of the cumulative P/L is
// first achieved at the last index.
func allTimeHigh(pl []float64) bool {
	var cum, best float64
	bestIdx := 0
	for i, p := range pl {
		cum += p
		if i == 0 || cum > best {
			best = cum
			bestIdx = i
		}
	}
	return bestIdx == len(pl)-1
}

func (b *System) nextVolume(unitVolume, initVolume, lastVolume float64, wonLast Outcome, atHigh bool) float64 {
	if wonLast == Undetermined {
		return firstPositive(lastVolume, initVolume, unitVolume)
	}
	won := wonLast == Won
	switch b.strategy {
	case Martingale:
		if won {
			return unitVolume
		}
		return lastVolume * 2
	case Paroli:
		if won {
			return lastVolume * 2
		}
		return unitVolume
	case DAlembert:
		if won {
			return unitVolume
		}
		return lastVolume + unitVolume
	case Pyramid:
		if !won {
			return lastVolume + unitVolume
		}
		if lastVolume < unitVolume {
			return lastVolume
		}
		return lastVolume - unitVolume
	case OscarsGrind:
		if atHigh {
			return firstPositive(initVolume, unitVolume)
		}
		if won {
			return lastVolume + unitVolume
		}
		return lastVolume
	case Constant:
		return unitVolume
	default:
		panic(fmt.Sprintf("invalid strategy: %d", b.strategy))
	}
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
