// Package trading provides order arithmetic helpers.
package trading

import (
	"math"

	"github.com/shopspring/decimal"
)

// FloorToStep floors volume to a whole multiple of step. Decimal arithmetic
// keeps broker volume steps like 0.01 exact.
func FloorToStep(volume, step float64) float64 {
	if volume <= 0 || step <= 0 {
		return 0
	}
	v := decimal.NewFromFloat(volume)
	s := decimal.NewFromFloat(step)
	lots := v.Div(s).Floor()
	f, _ := lots.Mul(s).Float64()
	return f
}

// CeilToStep rounds volume up to a whole multiple of step.
func CeilToStep(volume, step float64) float64 {
	if volume <= 0 || step <= 0 {
		return 0
	}
	v := decimal.NewFromFloat(volume)
	s := decimal.NewFromFloat(step)
	lots := v.Div(s).Ceil()
	f, _ := lots.Mul(s).Float64()
	return f
}

// Lots counts whole step units contained in volume.
func Lots(volume, step float64) int {
	if volume <= 0 || step <= 0 {
		return 0
	}
	lots := decimal.NewFromFloat(volume).Div(decimal.NewFromFloat(step)).Floor()
	return int(lots.IntPart())
}

// RoundPrice rounds a price to the symbol's digit precision.
func RoundPrice(price float64, digits int) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	if digits < 0 {
		digits = 0
	}
	f, _ := decimal.NewFromFloat(price).Round(int32(digits)).Float64()
	return f
}
