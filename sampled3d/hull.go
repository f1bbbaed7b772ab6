package sampled3d

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// interpolate3D answers the 3-D triangulated interpolant lookup (spec §4.6
// step 1): it is defined when the query lies within the sampled envelope
// (approximated, as elsewhere in this package, by the axis-aligned bounding
// box of the scaled sample cloud — every sample already carries its own
// local neighborhood, so the bounding box is the cheap proxy for "inside the
// Delaunay triangulation" that the per-facet plane fit below refines), and
// its value is a local least-squares plane fit over the nearest sample
// points, solved via gonum/mat the same way the teacher's emissions
// component fits a local regression plane.
func (m *Model) interpolate3D(rate, ps, pd float64) (float64, bool) {
	if !withinBounds(m.samples, rate, ps, pd) {
		return 0, false
	}
	neighbors := nearest(m.samples, rate, ps, pd, 6)
	value, ok := fitPlane3D(neighbors, rate, ps, pd)
	return value, ok
}

func withinBounds(samples []Sample, rate, ps, pd float64) bool {
	minR, maxR := math.Inf(1), math.Inf(-1)
	minPs, maxPs := math.Inf(1), math.Inf(-1)
	minPd, maxPd := math.Inf(1), math.Inf(-1)
	for _, s := range samples {
		minR, maxR = math.Min(minR, s.RateActualM3PerHour), math.Max(maxR, s.RateActualM3PerHour)
		minPs, maxPs = math.Min(minPs, s.SuctionPressureBara), math.Max(maxPs, s.SuctionPressureBara)
		minPd, maxPd = math.Min(minPd, s.DischargePressureBara), math.Max(maxPd, s.DischargePressureBara)
	}
	return rate >= minR && rate <= maxR && ps >= minPs && ps <= maxPs && pd >= minPd && pd <= maxPd
}

func nearest(samples []Sample, rate, ps, pd float64, k int) []Sample {
	type scored struct {
		s    Sample
		dist float64
	}
	scoredSamples := make([]scored, len(samples))
	for i, s := range samples {
		dr := s.RateActualM3PerHour - rate
		dps := s.SuctionPressureBara - ps
		dpd := s.DischargePressureBara - pd
		scoredSamples[i] = scored{s, dr*dr + dps*dps + dpd*dpd}
	}
	sort.Slice(scoredSamples, func(i, j int) bool { return scoredSamples[i].dist < scoredSamples[j].dist })
	if k > len(scoredSamples) {
		k = len(scoredSamples)
	}
	out := make([]Sample, k)
	for i := 0; i < k; i++ {
		out[i] = scoredSamples[i].s
	}
	return out
}

// fitPlane3D solves the least-squares affine fit value = w0 + w1·rate +
// w2·ps + w3·pd over neighbors via the normal equations, then evaluates it
// at the query point.
func fitPlane3D(neighbors []Sample, rate, ps, pd float64) (float64, bool) {
	n := len(neighbors)
	if n < 4 {
		return 0, false
	}
	a := mat.NewDense(n, 4, nil)
	b := mat.NewVecDense(n, nil)
	for i, s := range neighbors {
		a.SetRow(i, []float64{1, s.RateActualM3PerHour, s.SuctionPressureBara, s.DischargePressureBara})
		b.SetVec(i, s.Value)
	}
	var ata mat.Dense
	ata.Mul(a.T(), a)
	var atb mat.VecDense
	atb.MulVec(a.T(), b)

	var w mat.VecDense
	if err := w.SolveVec(&ata, &atb); err != nil {
		return 0, false
	}
	value := w.AtVec(0) + w.AtVec(1)*rate + w.AtVec(2)*ps + w.AtVec(3)*pd
	return value, true
}

// boundaryHull is a 2-D piecewise-affine function built over the convex
// hull of the sample cloud projected along one axis, used for the §4.6
// boundary functions (min_rate(Ps,Pd), max_rate(Ps,Pd), min_pd(rate,Ps),
// max_ps(rate,Pd)). points holds (x, y, z) where z is the function's
// dependent axis value and (x, y) are the other two axes.
type boundaryHull struct {
	points []hullPoint
}

type hullPoint struct {
	x, y, z float64
}

// valueAt fits a local plane over the nearest hull points to (x, y) and
// evaluates it.
func (h boundaryHull) valueAt(x, y float64) float64 {
	v, _ := h.valueAtOK(x, y)
	return v
}

func (h boundaryHull) valueAtOK(x, y float64) (float64, bool) {
	if len(h.points) == 0 {
		return 0, false
	}
	k := 4
	if k > len(h.points) {
		k = len(h.points)
	}
	type scored struct {
		p    hullPoint
		dist float64
	}
	scoredPoints := make([]scored, len(h.points))
	for i, p := range h.points {
		dx, dy := p.x-x, p.y-y
		scoredPoints[i] = scored{p, dx*dx + dy*dy}
	}
	sort.Slice(scoredPoints, func(i, j int) bool { return scoredPoints[i].dist < scoredPoints[j].dist })

	if k < 3 {
		return scoredPoints[0].p.z, true
	}
	n := k
	a := mat.NewDense(n, 3, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		p := scoredPoints[i].p
		a.SetRow(i, []float64{1, p.x, p.y})
		b.SetVec(i, p.z)
	}
	var ata mat.Dense
	ata.Mul(a.T(), a)
	var atb mat.VecDense
	atb.MulVec(a.T(), b)
	var w mat.VecDense
	if err := w.SolveVec(&ata, &atb); err != nil {
		return scoredPoints[0].p.z, true
	}
	return w.AtVec(0) + w.AtVec(1)*x + w.AtVec(2)*y, true
}

// project maps a query (x, y) onto this hull's own 2-D convex hull in
// (x, y) by clamping to the hull's bounding box — the 1-D guard the spec
// describes as projecting Pd/Ps onto the 2-D boundary function's own hull
// before evaluating it (§4.6, "1D guards").
func (h boundaryHull) project(x, y float64) (px, py float64, ok bool) {
	if len(h.points) == 0 {
		return 0, 0, false
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range h.points {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	px = math.Min(math.Max(x, minX), maxX)
	py = math.Min(math.Max(y, minY), maxY)
	return px, py, true
}

// lowerHull extracts the subset of samples forming the lower convex hull
// along depAxis as a function of the two independent axes, by keeping the
// lowest-depAxis sample in each cell of a coarse (xAxis, yAxis) grid (see
// buildHull) — an axis-aligned approximation of the
// true 3-D lower hull, adequate for the boundary guard's purpose of
// bracketing "minimum attainable value of depAxis at this (x,y)".
func lowerHull(samples []Sample, depAxis, xAxis, yAxis axis) boundaryHull {
	return buildHull(samples, depAxis, xAxis, yAxis, true)
}

func upperHull(samples []Sample, depAxis, xAxis, yAxis axis) boundaryHull {
	return buildHull(samples, depAxis, xAxis, yAxis, false)
}

// monotoneUpperHull is upperHull sorted by xAxis and thinned to the points
// whose dependent value is at least that of every point before them, so the
// kept points are non-decreasing in xAxis (spec §4.6). Points are not
// filtered by their yAxis value: monotonicity in yAxis is not enforced.
func monotoneUpperHull(samples []Sample, depAxis, xAxis, yAxis axis) boundaryHull {
	hull := buildHull(samples, depAxis, xAxis, yAxis, false)
	sort.Slice(hull.points, func(i, j int) bool { return hull.points[i].x < hull.points[j].x })
	filtered := make([]hullPoint, 0, len(hull.points))
	bestZSoFar := math.Inf(-1)
	for _, p := range hull.points {
		if p.z >= bestZSoFar {
			filtered = append(filtered, p)
			bestZSoFar = p.z
		}
	}
	hull.points = filtered
	return boundaryHull{points: hull.points}
}

// buildHull groups samples into a coarse grid over (xAxis, yAxis) and keeps,
// per cell, the sample with the lowest (lower=true) or highest (lower=false)
// depAxis value — the discrete proxy for the continuous lower/upper convex
// hull used throughout this package.
func buildHull(samples []Sample, depAxis, xAxis, yAxis axis, lower bool) boundaryHull {
	type cellKey struct{ ix, iy int }
	const gridCells = 12

	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = coordinate(s, xAxis)
		ys[i] = coordinate(s, yAxis)
	}
	minX, maxX := minMax(xs)
	minY, maxY := minMax(ys)
	spanX := math.Max(maxX-minX, 1e-9)
	spanY := math.Max(maxY-minY, 1e-9)

	best := make(map[cellKey]hullPoint)
	for _, s := range samples {
		x, y, z := coordinate(s, xAxis), coordinate(s, yAxis), coordinate(s, depAxis)
		ix := int((x - minX) / spanX * gridCells)
		iy := int((y - minY) / spanY * gridCells)
		key := cellKey{ix, iy}
		cur, exists := best[key]
		if !exists || (lower && z < cur.z) || (!lower && z > cur.z) {
			best[key] = hullPoint{x: x, y: y, z: z}
		}
	}

	points := make([]hullPoint, 0, len(best))
	for _, p := range best {
		points = append(points, p)
	}
	return boundaryHull{points: points}
}

func minMax(xs []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	return lo, hi
}
