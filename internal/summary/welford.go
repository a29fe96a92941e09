package summary

import "math"

// Welford accumulates a running mean and variance in one pass.
type Welford struct {
	count int
	mean  float64
	m2    float64
}

// Add folds one observation into the accumulator.
func (w *Welford) Add(x float64) {
	w.count++
	delta := x - w.mean
	w.mean += delta / float64(w.count)
	delta2 := x - w.mean
	w.m2 += delta * delta2
}

// Count returns the number of observations.
func (w *Welford) Count() int { return w.count }

// Mean returns the running mean, 0 when empty.
func (w *Welford) Mean() float64 { return w.mean }

// StdDev returns the sample standard deviation; it is 0 below two observations.
func (w *Welford) StdDev() float64 {
	if w.count < 2 {
		return 0
	}
	return math.Sqrt(w.m2 / float64(w.count-1))
}
