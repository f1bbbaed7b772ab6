package chart

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// VariableSpeedChart is an ordered collection of Curves at increasing shaft
// speeds (spec §3 VariableSpeedChart). Capacity and efficiency at any
// operating point are derived from the envelope formed by the minimum- and
// maximum-speed curves. The polytropic head a stage works with at a given
// speed also comes from this chart (HeadAt); the stage's Campbell relation
// turns that head into a pressure ratio.
type VariableSpeedChart struct {
	Curves                []*Curve
	ControlMarginFraction *float64
}

// NewVariableSpeedChart sorts curves ascending by speed and validates that
// no two curves share a speed.
func NewVariableSpeedChart(curves []*Curve) (*VariableSpeedChart, error) {
	if len(curves) < 1 {
		return nil, fmt.Errorf("chart: variable speed chart requires at least 1 curve")
	}
	sorted := append([]*Curve(nil), curves...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].SpeedRPM < sorted[j].SpeedRPM })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].SpeedRPM == sorted[i-1].SpeedRPM {
			return nil, fmt.Errorf("chart: duplicate curve speed %g", sorted[i].SpeedRPM)
		}
	}
	return &VariableSpeedChart{Curves: sorted}, nil
}

// WithControlMargin returns a new chart with AdjustForControlMargin applied
// to every curve, which moves each curve's minimum flow point to the right
// (spec §4.2 control margin).
func (v *VariableSpeedChart) WithControlMargin(marginFraction float64) *VariableSpeedChart {
	adjusted := make([]*Curve, len(v.Curves))
	for i, c := range v.Curves {
		adjusted[i] = c.AdjustForControlMargin(marginFraction)
	}
	return &VariableSpeedChart{Curves: adjusted, ControlMarginFraction: &marginFraction}
}

func (v *VariableSpeedChart) MinSpeedCurve() *Curve { return v.Curves[0] }
func (v *VariableSpeedChart) MaxSpeedCurve() *Curve { return v.Curves[len(v.Curves)-1] }
func (v *VariableSpeedChart) MinSpeed() float64     { return v.MinSpeedCurve().SpeedRPM }
func (v *VariableSpeedChart) MaxSpeed() float64     { return v.MaxSpeedCurve().SpeedRPM }

func (v *VariableSpeedChart) IsFullyEfficient() bool {
	for _, c := range v.Curves {
		if !c.IsFullyEfficient() {
			return false
		}
	}
	return true
}

// GetCurveBySpeed returns the curve at exactly the given speed, if present.
func (v *VariableSpeedChart) GetCurveBySpeed(speed float64) (*Curve, bool) {
	for _, c := range v.Curves {
		if c.SpeedRPM == speed {
			return c, true
		}
	}
	return nil, false
}

// ClosestCurveBelowSpeed returns the highest-speed curve with speed <= the
// given speed, or nil if none exists.
func (v *VariableSpeedChart) ClosestCurveBelowSpeed(speed float64) *Curve {
	var best *Curve
	for _, c := range v.Curves {
		if c.SpeedRPM <= speed && (best == nil || c.SpeedRPM > best.SpeedRPM) {
			best = c
		}
	}
	return best
}

// ClosestCurveAboveSpeed returns the lowest-speed curve with speed >= the
// given speed, or nil if none exists.
func (v *VariableSpeedChart) ClosestCurveAboveSpeed(speed float64) *Curve {
	var best *Curve
	for _, c := range v.Curves {
		if c.SpeedRPM >= speed && (best == nil || c.SpeedRPM < best.SpeedRPM) {
			best = c
		}
	}
	return best
}

// MinimumRateAsFunctionOfHead interpolates along the 2-point line joining
// the minimum-speed curve's and maximum-speed curve's minimum-rate points
// (grounded on chart.py's minimum_rate_as_function_of_head).
func (v *VariableSpeedChart) MinimumRateAsFunctionOfHead(head float64) float64 {
	lo, hi := v.MinSpeedCurve(), v.MaxSpeedCurve()
	headAtLo := lo.HeadAt(lo.MinimumRate())
	headAtHi := hi.HeadAt(hi.MinimumRate())
	heads := []float64{headAtLo, headAtHi}
	rates := []float64{lo.MinimumRate(), hi.MinimumRate()}
	sh, sr := sortedByX(heads, rates)
	return interp1D(sh, sr, head)
}

// MaximumRateAsFunctionOfHead interpolates the maximum-speed curve's own
// (head, rate) pairs, re-sorted ascending by head.
func (v *VariableSpeedChart) MaximumRateAsFunctionOfHead(head float64) float64 {
	hi := v.MaxSpeedCurve()
	sh, sr := sortedByX(hi.PolytropicHeadJoulePerKg, hi.RateActualM3PerHour)
	return interp1D(sh, sr, head)
}

// MinimumHeadAsFunctionOfRate follows the minimum-speed curve up to its
// maximum rate, then extends via a stonewall segment to the maximum-speed
// curve's top-rate point (grounded on chart.py's
// minimum_head_as_function_of_rate).
func (v *VariableSpeedChart) MinimumHeadAsFunctionOfRate(rate float64) float64 {
	lo, hi := v.MinSpeedCurve(), v.MaxSpeedCurve()
	if rate <= lo.MaximumRate() {
		return lo.HeadAt(rate)
	}
	x0, y0 := lo.MaximumRate(), lo.HeadAt(lo.MaximumRate())
	x1, y1 := hi.MaximumRate(), hi.HeadAt(hi.MaximumRate())
	if x1 == x0 {
		return y0
	}
	t := (rate - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}

// MaximumHeadAsFunctionOfRate is simply the maximum-speed curve's head(rate).
func (v *VariableSpeedChart) MaximumHeadAsFunctionOfRate(rate float64) float64 {
	return v.MaxSpeedCurve().HeadAt(rate)
}

// MinimumRateAsFunctionOfSpeed interpolates each curve's minimum rate across
// the speed axis.
func (v *VariableSpeedChart) MinimumRateAsFunctionOfSpeed(speed float64) float64 {
	speeds := make([]float64, len(v.Curves))
	rates := make([]float64, len(v.Curves))
	for i, c := range v.Curves {
		speeds[i] = c.SpeedRPM
		rates[i] = c.MinimumRate()
	}
	return interp1D(speeds, rates, speed)
}

// MaximumRateAsFunctionOfSpeed interpolates each curve's maximum rate across
// the speed axis.
func (v *VariableSpeedChart) MaximumRateAsFunctionOfSpeed(speed float64) float64 {
	speeds := make([]float64, len(v.Curves))
	rates := make([]float64, len(v.Curves))
	for i, c := range v.Curves {
		speeds[i] = c.SpeedRPM
		rates[i] = c.MaximumRate()
	}
	return interp1D(speeds, rates, speed)
}

// HeadAt returns the head a compressor wheel running at speed produces at
// rate, obtained from the fan-law single-speed-equivalent projection of
// whichever real curve is closest in speed (spec §4.3: the stage evaluator's only
// chart-head lookup).
func (v *VariableSpeedChart) HeadAt(rate, speed float64) (float64, error) {
	equivalent, err := v.SingleSpeedEquivalent(speed)
	if err != nil {
		return 0, err
	}
	return equivalent.HeadAt(rate), nil
}

// MinimumRateAtSpeed is an alias for MinimumRateAsFunctionOfSpeed, used by
// the stage evaluator's ASV k-factor calculation.
func (v *VariableSpeedChart) MinimumRateAtSpeed(speed float64) float64 {
	return v.MinimumRateAsFunctionOfSpeed(speed)
}

// MaximumRateAtSpeed is an alias for MaximumRateAsFunctionOfSpeed, used by
// the train solver's maximum-standard-rate bracket (spec §4.4.4).
func (v *VariableSpeedChart) MaximumRateAtSpeed(speed float64) float64 {
	return v.MaximumRateAsFunctionOfSpeed(speed)
}

// EfficiencyAt interpolates efficiency at (rate, head) using a scaled,
// signed-distance weighted blend of the two curves nearest the point in the
// rate/head plane (grounded on chart.py's
// efficiency_as_function_of_rate_and_head). Rate and head are scaled by
// their pooled mean/stddev across all curves before distances are compared,
// so the two axes contribute comparably regardless of their physical units.
func (v *VariableSpeedChart) EfficiencyAt(rate, head float64) float64 {
	if v.IsFullyEfficient() {
		return 1.0
	}
	var allRates, allHeads []float64
	for _, c := range v.Curves {
		allRates = append(allRates, c.RateActualM3PerHour...)
		allHeads = append(allHeads, c.PolytropicHeadJoulePerKg...)
	}
	rateMean, rateStd := stat.MeanStdDev(allRates, nil)
	headMean, headStd := stat.MeanStdDev(allHeads, nil)
	if rateStd == 0 {
		rateStd = 1
	}
	if headStd == 0 {
		headStd = 1
	}
	scaledRate := (rate - rateMean) / rateStd
	scaledHead := (head - headMean) / headStd

	var aboveCurve, belowCurve *Curve
	aboveDist, belowDist := math.Inf(1), math.Inf(1)
	var aboveEff, belowEff float64

	for _, c := range v.Curves {
		scaledXs := make([]float64, len(c.RateActualM3PerHour))
		scaledYs := make([]float64, len(c.PolytropicHeadJoulePerKg))
		for i := range scaledXs {
			scaledXs[i] = (c.RateActualM3PerHour[i] - rateMean) / rateStd
			scaledYs[i] = (c.PolytropicHeadJoulePerKg[i] - headMean) / headStd
		}
		scaled := &Curve{RateActualM3PerHour: scaledXs, PolytropicHeadJoulePerKg: scaledYs, EfficiencyFraction: c.EfficiencyFraction, SpeedRPM: c.SpeedRPM}
		d, eff := scaled.DistanceAndEfficiencyAt(scaledRate, scaledHead)
		if d <= 0 && -d < aboveDist {
			aboveDist, aboveCurve, aboveEff = -d, c, eff
		}
		if d >= 0 && d < belowDist {
			belowDist, belowCurve, belowEff = d, c, eff
		}
	}

	switch {
	case aboveCurve == nil && belowCurve == nil:
		return v.Curves[0].EfficiencyFraction[0]
	case aboveCurve == nil:
		return belowEff
	case belowCurve == nil:
		return aboveEff
	case aboveDist+belowDist == 0:
		return aboveEff
	default:
		alpha := belowDist / (aboveDist + belowDist)
		return alpha*aboveEff + (1-alpha)*belowEff
	}
}

// EvaluateCapacity classifies (rate, head) against the envelope without
// extrapolating below the minimum head boundary, for parity with
// SingleSpeedChart.EvaluateCapacity.
func (v *VariableSpeedChart) EvaluateCapacity(rate, head float64) CapacityResult {
	return v.EvaluateCapacityAndExtrapolateBelowMinimum(rate, head, false)
}

// EvaluateCapacityAndExtrapolateBelowMinimum classifies (rate, head) against
// the chart envelope (spec §4.2). When extrapolateHeadsBelowMinimum is true,
// a head below MinimumHeadAsFunctionOfRate is treated as on-curve rather
// than infeasible, mirroring chart.py's handling of trains whose actual
// required head falls under the chart's lower boundary.
func (v *VariableSpeedChart) EvaluateCapacityAndExtrapolateBelowMinimum(rate, head float64, extrapolateHeadsBelowMinimum bool) CapacityResult {
	minRate := v.MinimumRateAsFunctionOfHead(head)
	maxRate := v.MaximumRateAsFunctionOfHead(head)
	maxHead := v.MaximumHeadAsFunctionOfRate(rate)
	minHead := v.MinimumHeadAsFunctionOfRate(rate)

	result := CapacityResult{Rate: rate, Head: head, CorrectedRate: rate, CorrectedHead: head}
	if rate < minRate {
		result.RateHasRecirculation = true
		result.CorrectedRate = minRate
	}
	if rate > maxRate {
		result.RateExceedsMaximum = true
	}
	if head > maxHead {
		result.HeadExceedsMaximum = true
	}
	if head < minHead && extrapolateHeadsBelowMinimum {
		result.PressureIsChoked = true
		result.CorrectedHead = minHead
	}
	return result
}

// SingleSpeedEquivalent projects the chart onto a single synthetic curve at
// the given speed using the fan affinity laws (rate scales linearly with
// speed, head scales with speed squared, efficiency is preserved along
// corresponding points) applied to whichever real curve is closest in speed,
// per spec §9's single-speed-equivalent open question.
func (v *VariableSpeedChart) SingleSpeedEquivalent(speed float64) (*Curve, error) {
	if c, ok := v.GetCurveBySpeed(speed); ok {
		cp := *c
		return &cp, nil
	}
	below := v.ClosestCurveBelowSpeed(speed)
	above := v.ClosestCurveAboveSpeed(speed)
	var reference *Curve
	switch {
	case below == nil:
		reference = above
	case above == nil:
		reference = below
	case speed-below.SpeedRPM <= above.SpeedRPM-speed:
		reference = below
	default:
		reference = above
	}
	if reference == nil {
		return nil, fmt.Errorf("chart: no curves available to build single-speed equivalent")
	}
	ratio := speed / reference.SpeedRPM
	rates := make([]float64, len(reference.RateActualM3PerHour))
	heads := make([]float64, len(reference.PolytropicHeadJoulePerKg))
	for i := range rates {
		rates[i] = reference.RateActualM3PerHour[i] * ratio
		heads[i] = reference.PolytropicHeadJoulePerKg[i] * ratio * ratio
	}
	return NewCurve(rates, heads, reference.EfficiencyFraction, speed)
}
