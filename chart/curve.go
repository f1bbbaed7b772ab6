package chart

import (
	"fmt"
	"math"

	"github.com/processcore/compressor/internal/engineerr"
)

// Curve is a single compressor/pump chart curve at a fixed shaft speed
// (spec §3 CompressorChartCurve). Rate, head and efficiency vectors are
// equal length and rate is strictly ascending.
type Curve struct {
	RateActualM3PerHour      []float64
	PolytropicHeadJoulePerKg []float64
	EfficiencyFraction       []float64
	SpeedRPM                 float64
}

// NewCurve validates and constructs a Curve.
func NewCurve(rate, head, efficiency []float64, speedRPM float64) (*Curve, error) {
	n := len(rate)
	if n < 2 {
		return nil, fmt.Errorf("chart: curve must have at least 2 points, got %d", n)
	}
	if len(head) != n || len(efficiency) != n {
		return nil, fmt.Errorf("chart: rate/head/efficiency vectors must be equal length")
	}
	for i := 1; i < n; i++ {
		if rate[i] <= rate[i-1] {
			return nil, engineerr.Newf("chart", "rate must be strictly ascending, got %v at index %d", rate, i)
		}
	}
	for i, e := range efficiency {
		if e <= 0 || e > 1 {
			return nil, fmt.Errorf("chart: efficiency[%d]=%g must be in (0,1]", i, e)
		}
	}
	for i, h := range head {
		if h < 0 {
			return nil, fmt.Errorf("chart: head[%d]=%g must be >= 0", i, h)
		}
	}
	if speedRPM < 0 {
		return nil, fmt.Errorf("chart: speed must be >= 0, got %g", speedRPM)
	}
	return &Curve{
		RateActualM3PerHour:      append([]float64(nil), rate...),
		PolytropicHeadJoulePerKg: append([]float64(nil), head...),
		EfficiencyFraction:       append([]float64(nil), efficiency...),
		SpeedRPM:                 speedRPM,
	}, nil
}

func (c *Curve) MinimumRate() float64 { return c.RateActualM3PerHour[0] }
func (c *Curve) MaximumRate() float64 { return c.RateActualM3PerHour[len(c.RateActualM3PerHour)-1] }

// HeadAt interpolates head(rate).
func (c *Curve) HeadAt(rate float64) float64 {
	return interp1D(c.RateActualM3PerHour, c.PolytropicHeadJoulePerKg, rate)
}

// EfficiencyAt interpolates efficiency(rate).
func (c *Curve) EfficiencyAt(rate float64) float64 {
	return interp1D(c.RateActualM3PerHour, c.EfficiencyFraction, rate)
}

// RateAtHead interpolates the inverse rate(head); head is typically
// (but not required to be) monotonically decreasing with rate.
func (c *Curve) RateAtHead(head float64) float64 {
	return interp1D(c.PolytropicHeadJoulePerKg, c.RateActualM3PerHour, head)
}

// IsFullyEfficient reports whether every sample on the curve is 100%
// efficient, letting callers skip the distance-weighted interpolation
// entirely (spec §4.2).
func (c *Curve) IsFullyEfficient() bool {
	for _, e := range c.EfficiencyFraction {
		if e != 1 {
			return false
		}
	}
	return true
}

// closestPointOnPolyline returns the point on the curve's (rate, head)
// polyline closest to (qRate, qHead), along with the corresponding rate
// value (used to look up efficiency at that projected point).
func (c *Curve) closestPointOnPolyline(qRate, qHead float64) (rate, head float64) {
	best := math.Inf(1)
	for i := 0; i < len(c.RateActualM3PerHour)-1; i++ {
		x0, y0 := c.RateActualM3PerHour[i], c.PolytropicHeadJoulePerKg[i]
		x1, y1 := c.RateActualM3PerHour[i+1], c.PolytropicHeadJoulePerKg[i+1]
		px, py, _ := closestPointOnSegment(qRate, qHead, x0, y0, x1, y1)
		d := math.Hypot(qRate-px, qHead-py)
		if d < best {
			best = d
			rate, head = px, py
		}
	}
	return
}

func closestPointOnSegment(qx, qy, x0, y0, x1, y1 float64) (px, py, t float64) {
	dx, dy := x1-x0, y1-y0
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return x0, y0, 0
	}
	t = ((qx-x0)*dx + (qy-y0)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return x0 + t*dx, y0 + t*dy, t
}

// DistanceAndEfficiencyAt returns the signed planar distance from (rate,
// head) to this curve's polyline (negative when the query point lies below
// the curve, positive when above — spec §4.2) and the efficiency at the
// closest point on the curve.
func (c *Curve) DistanceAndEfficiencyAt(rate, head float64) (distance, efficiency float64) {
	px, py := c.closestPointOnPolyline(rate, head)
	d := math.Hypot(rate-px, head-py)
	if py > head {
		d = -d
	}
	return d, c.EfficiencyAt(px)
}

// AdjustForControlMargin trims the left part of the curve (rates below
// minRate + marginFraction*(maxRate-minRate)) and recomputes head/
// efficiency at the new minimum rate by linear interpolation (spec §3
// control_margin, grounded on chart.py's adjust_for_control_margin).
func (c *Curve) AdjustForControlMargin(marginFraction float64) *Curve {
	if marginFraction <= 0 {
		cp := *c
		return &cp
	}
	span := c.MaximumRate() - c.MinimumRate()
	newMinRate := c.MinimumRate() + span*marginFraction

	newHead := interp1D(c.RateActualM3PerHour, c.PolytropicHeadJoulePerKg, newMinRate)
	newEfficiency := interp1D(c.RateActualM3PerHour, c.EfficiencyFraction, newMinRate)

	rates := []float64{newMinRate}
	heads := []float64{newHead}
	effs := []float64{newEfficiency}
	for i, r := range c.RateActualM3PerHour {
		if r > newMinRate {
			rates = append(rates, r)
			heads = append(heads, c.PolytropicHeadJoulePerKg[i])
			effs = append(effs, c.EfficiencyFraction[i])
		}
	}
	return &Curve{
		RateActualM3PerHour:      rates,
		PolytropicHeadJoulePerKg: heads,
		EfficiencyFraction:       effs,
		SpeedRPM:                 c.SpeedRPM,
	}
}
