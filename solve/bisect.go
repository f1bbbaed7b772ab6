package solve

import "fmt"

// MaxBisectIterations bounds the boolean-predicate bisection per spec §9.
const MaxBisectIterations = 100

// MaximizeWhere finds the largest x in [lo, hi] for which condition(x) is
// true, assuming condition is true on [lo, x*] and false on (x*, hi] for
// some threshold x* (grounded on the original
// maximize_x_given_boolean_condition_function helper used to search for
// maximum standard rate and choked inlet pressure). If condition(lo) is
// false, no x in the range satisfies it and an error is returned.
func MaximizeWhere(condition func(float64) bool, lo, hi, tolerance float64) (float64, error) {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	if !condition(lo) {
		return 0, fmt.Errorf("solve: condition is false at lower bound %g, no feasible x in range", lo)
	}
	if condition(hi) {
		return hi, nil
	}
	for i := 0; i < MaxBisectIterations; i++ {
		mid := (lo + hi) / 2
		if condition(mid) {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo < tolerance*maxAbs(1, hi) {
			break
		}
	}
	return lo, nil
}

func maxAbs(a, b float64) float64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}
