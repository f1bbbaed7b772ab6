// Package sampled3d implements the tabulated compressor/pump model of spec
// §4.6: a scattered cloud of sampled (rate, P_suction, P_discharge,
// function_value) points, queried through a 3-D interpolation with convex-hull
// boundary projections standing in for ASV recirculation, downstream choking
// and upstream choking whenever a query point falls outside the sampled
// envelope.
package sampled3d

import (
	"fmt"
	"math"

	"github.com/processcore/compressor/internal/numeric"
)

// Sample is one (rate, Ps, Pd) → value row of the source table.
type Sample struct {
	RateActualM3PerHour float64
	SuctionPressureBara float64
	DischargePressureBara float64
	Value               float64
}

// Model is the evaluable tabulated engine built from a set of Samples
// (spec §4.6).
type Model struct {
	samples   []Sample
	rateScale float64

	minRateHull boundaryHull // lower convex hull in the rate direction
	maxRateHull boundaryHull // monotone sub-hull of the upper rate hull
	minPdHull   boundaryHull // lower hull in the Pd direction
	maxPsHull   boundaryHull // upper hull in the Ps direction
}

// New builds a Model from samples, optionally rescaling the rate axis so all
// three axes have comparable magnitude (spec §4.6 "Setup").
func New(samples []Sample, rescaleRateAxis bool) (*Model, error) {
	if len(samples) < 4 {
		return nil, fmt.Errorf("sampled3d: need at least 4 samples to triangulate, got %d", len(samples))
	}

	rates := make([]float64, len(samples))
	ps := make([]float64, len(samples))
	pd := make([]float64, len(samples))
	for i, s := range samples {
		rates[i] = s.RateActualM3PerHour
		ps[i] = s.SuctionPressureBara
		pd[i] = s.DischargePressureBara
	}

	scale := 1.0
	if rescaleRateAxis {
		meanRate := numeric.Sum(rates) / float64(len(rates))
		meanPs := numeric.Sum(ps) / float64(len(ps))
		meanPd := numeric.Sum(pd) / float64(len(pd))
		if meanPs+meanPd != 0 {
			scale = math.Round(2 * meanRate / (meanPs + meanPd))
			if scale == 0 {
				scale = 1
			}
		}
	}

	scaled := make([]Sample, len(samples))
	for i, s := range samples {
		scaled[i] = Sample{
			RateActualM3PerHour:   s.RateActualM3PerHour / scale,
			SuctionPressureBara:   s.SuctionPressureBara,
			DischargePressureBara: s.DischargePressureBara,
			Value:                 s.Value,
		}
	}

	m := &Model{samples: scaled, rateScale: scale}
	m.minRateHull = lowerHull(scaled, axisRate, axisPs, axisPd)
	m.maxRateHull = monotoneUpperHull(scaled, axisRate, axisPs, axisPd)
	m.minPdHull = lowerHull(scaled, axisPd, axisRate, axisPs)
	m.maxPsHull = upperHull(scaled, axisPs, axisRate, axisPd)
	return m, nil
}

// axis identifies which of (rate, Ps, Pd) a boundaryHull is built against.
type axis int

const (
	axisRate axis = iota
	axisPs
	axisPd
)

func coordinate(s Sample, a axis) float64 {
	switch a {
	case axisRate:
		return s.RateActualM3PerHour
	case axisPs:
		return s.SuctionPressureBara
	default:
		return s.DischargePressureBara
	}
}

// Evaluate queries the model at (rate, Ps, Pd) (spec §4.6 "Evaluation").
// It first tries the 3-D triangulated interpolant; if the point lies
// outside the sampled envelope it is projected onto the boundary in turn
// (rate, then Pd, then Ps) and re-evaluated against the corresponding 2-D
// boundary function. math.NaN() is returned if no projection lands inside
// the envelope.
func (m *Model) Evaluate(rateActualM3PerHour, suctionPressureBara, dischargePressureBara float64) float64 {
	rate := rateActualM3PerHour / m.rateScale

	if v, ok := m.interpolate3D(rate, suctionPressureBara, dischargePressureBara); ok {
		return v
	}

	// (a) Rate projection: lift Pd to the min-Pd-of-Ps boundary, lower Ps
	// to the max-Ps-of-Pd boundary, then read off the minimum-rate facet.
	if psProj, pdProj, ok := m.minRateHull.project(suctionPressureBara, dischargePressureBara); ok {
		minRate := m.minRateHull.valueAt(psProj, pdProj)
		if rate < minRate+epsilonRate {
			return m.minRateHull.valueAt(psProj, pdProj)
		}
	}

	// (b) Pd projection: lift rate to the min-rate-of-Ps boundary, lower
	// Ps to the max-Ps-of-rate boundary, then read off the minimum-Pd
	// facet.
	if rateProj, psProj, ok := m.minPdHull.project(rate, suctionPressureBara); ok {
		minPd := m.minPdHull.valueAt(rateProj, psProj)
		if dischargePressureBara < minPd {
			return m.minPdHull.valueAt(rateProj, psProj)
		}
	}

	// (c) Ps projection: lift rate and Pd to their upper-Ps-hull
	// boundaries, then read off the maximum-Ps facet.
	if rateProj, pdProj, ok := m.maxPsHull.project(rate, dischargePressureBara); ok {
		maxPs := m.maxPsHull.valueAt(rateProj, pdProj)
		if suctionPressureBara > maxPs {
			return m.maxPsHull.valueAt(rateProj, pdProj)
		}
	}

	return math.NaN()
}

// epsilonRate guards the rate-projection boundary check against numerical
// noise (spec §4.6 step a, "original rate < min_rate(Ps,Pd) + ε").
const epsilonRate = 1e-6

// GetMaxRate projects (Ps, Pd) onto the upper-rate hull's feasible region
// and evaluates the max_rate 2-D function, rescaling back to the caller's
// rate units (spec §4.6 get_max_rate).
func (m *Model) GetMaxRate(suctionPressureBara, dischargePressureBara float64) (float64, error) {
	ps, pd, _ := m.maxRateHull.project(suctionPressureBara, dischargePressureBara)
	rate, ok := m.maxRateHull.valueAtOK(ps, pd)
	if !ok {
		return 0, fmt.Errorf("sampled3d: (Ps=%g, Pd=%g) outside the maximum-rate hull", suctionPressureBara, dischargePressureBara)
	}
	return rate * m.rateScale, nil
}
