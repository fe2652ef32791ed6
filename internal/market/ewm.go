package market

import "math"

// EwmMoments computes the exponentially weighted mean and unbiased variance
// of xs with decay expressed as a span (alpha = 2/(span+1)). NaN samples are
// skipped. Returns NaN moments when no finite sample exists, and NaN
// variance when fewer than two finite samples exist.
func EwmMoments(xs []float64, span float64) (mean, variance float64) {
	if span < 1 {
		span = 1
	}
	alpha := 2 / (span + 1)
	decay := 1 - alpha

	var sw, sw2, sx float64
	w := 1.0
	for i := len(xs) - 1; i >= 0; i-- {
		x := xs[i]
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		sw += w
		sw2 += w * w
		sx += w * x
		w *= decay
	}
	if sw == 0 {
		return math.NaN(), math.NaN()
	}
	mean = sx / sw

	var sq float64
	w = 1.0
	for i := len(xs) - 1; i >= 0; i-- {
		x := xs[i]
		if math.IsNaN(x) || math.IsInf(x, 0) {
			continue
		}
		d := x - mean
		sq += w * d * d
		w *= decay
	}
	denom := sw*sw - sw2
	if denom <= 0 {
		return mean, math.NaN()
	}
	return mean, sq * sw / denom
}

// RollingStd returns the trailing sample standard deviation of xs over the
// given window at each index. Entries with fewer than two finite samples in
// the window are NaN.
func RollingStd(xs []float64, window int) []float64 {
	if window < 2 {
		window = 2
	}
	out := make([]float64, len(xs))
	for i := range xs {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		var n int
		var sum float64
		for _, x := range xs[lo : i+1] {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			n++
			sum += x
		}
		if n < 2 {
			out[i] = math.NaN()
			continue
		}
		m := sum / float64(n)
		var sq float64
		for _, x := range xs[lo : i+1] {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				continue
			}
			d := x - m
			sq += d * d
		}
		out[i] = math.Sqrt(sq / float64(n-1))
	}
	return out
}
