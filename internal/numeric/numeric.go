// Package numeric collects small gonum-backed helpers used by the train and
// sampled3d packages, grounded on gonum.org/v1/gonum/floats and
// gonum.org/v1/gonum/stat the way the teacher's internal packages wrap
// third-party numerics behind narrow helpers.
package numeric

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MeanStdDev returns the population mean and sample standard deviation of
// xs, falling back to a stddev of 1 when xs is constant so callers can use
// the result directly as a scaling factor without guarding against
// division by zero themselves.
func MeanStdDev(xs []float64) (mean, std float64) {
	mean, std = stat.MeanStdDev(xs, nil)
	if std == 0 {
		std = 1
	}
	return mean, std
}

// CumulativeSum returns the running total of xs, used by the multi-stream
// train solver to accumulate per-stream mass rates across a stage.
func CumulativeSum(xs []float64) []float64 {
	out := make([]float64, len(xs))
	floats.CumSum(out, xs)
	return out
}

// Sum returns the total of xs.
func Sum(xs []float64) float64 {
	return floats.Sum(xs)
}

// AllClose reports whether a and b are within absTol of one another,
// mirroring the floating point tolerance checks used throughout the stage
// convergence loops.
func AllClose(a, b, absTol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= absTol
}

// MaxAbs returns the largest absolute value in xs, used to guard relative
// tolerance checks against a zero reference value.
func MaxAbs(xs []float64) float64 {
	max := 0.0
	for _, x := range xs {
		a := absOf(x)
		if a > max {
			max = a
		}
	}
	return max
}

func absOf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
