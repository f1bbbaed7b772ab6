package chart

import "sort"

// interp1D performs piecewise-linear interpolation of ys over xs at x, with
// constant extrapolation at the endpoints. xs may be ascending or
// descending (but must be monotone); this mirrors scipy's interp1d with
// bounds_error=False and fill_value pinned to the two endpoint y values,
// which is the extrapolation behavior every chart interpolator in spec §3
// relies on.
func interp1D(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if n == 1 {
		return ys[0]
	}
	ascending := xs[n-1] >= xs[0]
	if ascending {
		if x <= xs[0] {
			return ys[0]
		}
		if x >= xs[n-1] {
			return ys[n-1]
		}
		i := sort.Search(n, func(i int) bool { return xs[i] >= x })
		x0, x1 := xs[i-1], xs[i]
		y0, y1 := ys[i-1], ys[i]
		if x1 == x0 {
			return y0
		}
		t := (x - x0) / (x1 - x0)
		return y0 + t*(y1-y0)
	}
	if x >= xs[0] {
		return ys[0]
	}
	if x <= xs[n-1] {
		return ys[n-1]
	}
	i := sort.Search(n, func(i int) bool { return xs[i] <= x })
	x0, x1 := xs[i-1], xs[i]
	y0, y1 := ys[i-1], ys[i]
	if x1 == x0 {
		return y0
	}
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}

// sortedByX returns copies of xs, ys sorted ascending by xs, for boundary
// functions that are assembled out of order (e.g. max-speed curve points
// sorted by head rather than by rate).
func sortedByX(xs, ys []float64) ([]float64, []float64) {
	n := len(xs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	sx := make([]float64, n)
	sy := make([]float64, n)
	for i, j := range idx {
		sx[i] = xs[j]
		sy[i] = ys[j]
	}
	return sx, sy
}
