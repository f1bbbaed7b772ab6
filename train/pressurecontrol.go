package train

import (
	"fmt"
	"math"

	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/solve"
	"github.com/processcore/compressor/stage"
	"github.com/processcore/compressor/unit"
)

// applyPressureControl reconciles a train's free-running operating point at
// speedRPM with target by applying the configured PressureControl strategy
// (spec §4.4.3).
func (t *Train) applyPressureControl(inletStream *fluid.Stream, massRateKgPerHour, speedRPM, target float64) (Result, error) {
	switch t.cfg.PressureControl {
	case UpstreamChoke:
		return t.applyUpstreamChoke(inletStream, massRateKgPerHour, speedRPM, target)
	case DownstreamChoke:
		return t.applyDownstreamChoke(inletStream, massRateKgPerHour, speedRPM, target)
	case IndividualASVRate:
		return t.applyIndividualASVRate(inletStream, massRateKgPerHour, speedRPM, target)
	case IndividualASVPressure, CommonASV:
		return t.applySingleSpeedEquivalentControl(inletStream, massRateKgPerHour, speedRPM, target)
	default:
		return Result{}, fmt.Errorf("train: pressure control %s is not set", t.cfg.PressureControl)
	}
}

// applyUpstreamChoke reduces the inlet pressure ahead of stage 1 until the
// train's discharge pressure equals target.
func (t *Train) applyUpstreamChoke(inletStream *fluid.Stream, massRateKgPerHour, speedRPM, target float64) (Result, error) {
	lowerBound := unit.StandardPressureBara + t.cfg.Stages[0].PressureDropAheadBara()
	upperBound := inletStream.Conditions().PressureBara

	f := func(p float64) float64 {
		choked, err := chokeInletTo(inletStream, p)
		if err != nil {
			return math.NaN()
		}
		result, err := t.evaluateAtSpeed(choked, massRateKgPerHour, speedRPM, 0, 0)
		if err != nil {
			return math.NaN()
		}
		return result.OutletStream.Conditions().PressureBara - target
	}
	root, err := solve.Brent(f, lowerBound, upperBound, unit.PressureCalculationTolerance)
	if err != nil {
		return Result{}, err
	}
	choked, err := chokeInletTo(inletStream, root.X)
	if err != nil {
		return Result{}, err
	}
	result, err := t.evaluateAtSpeed(choked, massRateKgPerHour, speedRPM, 0, 0)
	if err != nil {
		return Result{}, err
	}
	// The reported inlet stream keeps the original suction pressure; only
	// the first stage's own inlet reflects the choked value.
	result.InletStream = inletStream
	if root.Converged {
		result.TargetPressureStatus = TargetPressuresMet
	} else {
		result.TargetPressureStatus = TargetDischargePressureTooLow
		result.Valid = false
	}
	return result, nil
}

func chokeInletTo(inletStream *fluid.Stream, pressureBara float64) (*fluid.Stream, error) {
	conditions, err := fluid.NewProcessConditions(pressureBara, inletStream.Conditions().TemperatureKelvin)
	if err != nil {
		return nil, err
	}
	return inletStream.FlashTo(conditions, false)
}

// applyDownstreamChoke leaves the train at its free-running operating point
// and reports target as the discharge pressure, valid only if the
// computed discharge already meets or exceeds target.
func (t *Train) applyDownstreamChoke(inletStream *fluid.Stream, massRateKgPerHour, speedRPM, target float64) (Result, error) {
	result, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, speedRPM, 0, 0)
	if err != nil {
		return Result{}, err
	}
	computed := result.OutletStream.Conditions().PressureBara
	if computed < target {
		result.TargetPressureStatus = TargetDischargePressureTooHigh
		result.Valid = false
		return result, nil
	}
	reported, err := chokeInletTo(result.OutletStream, target)
	if err != nil {
		return Result{}, err
	}
	result.OutletStreamBeforeChoking = result.OutletStream
	result.OutletStream = reported
	result.TargetPressureStatus = TargetPressuresMet
	return result, nil
}

// applyIndividualASVRate root-finds a uniform ASV rate fraction across every
// stage so that the train's discharge pressure equals target.
func (t *Train) applyIndividualASVRate(inletStream *fluid.Stream, massRateKgPerHour, speedRPM, target float64) (Result, error) {
	atFull, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, speedRPM, 1, 0)
	if err != nil {
		return Result{}, err
	}
	if atFull.OutletStream.Conditions().PressureBara > target {
		atFull.TargetPressureStatus = TargetDischargePressureTooLow
		atFull.Valid = false
		return atFull, nil
	}

	f := func(fraction float64) float64 {
		result, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, speedRPM, fraction, 0)
		if err != nil {
			return math.NaN()
		}
		return result.OutletStream.Conditions().PressureBara - target
	}
	root, err := solve.Brent(f, 0, 1, unit.PressureCalculationTolerance)
	if err != nil {
		return Result{}, err
	}
	result, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, speedRPM, root.X, 0)
	if err != nil {
		return Result{}, err
	}
	result.TargetPressureStatus = TargetPressuresMet
	return result, nil
}

// applySingleSpeedEquivalentControl projects every stage's chart to a
// single-speed curve at speedRPM and delegates to the ASV-rate root-find on
// that projected train (spec §4.4.3: INDIVIDUAL_ASV_PRESSURE and COMMON_ASV
// both reduce to the single-speed ASV control once the chart is frozen at
// the current speed).
func (t *Train) applySingleSpeedEquivalentControl(inletStream *fluid.Stream, massRateKgPerHour, speedRPM, target float64) (Result, error) {
	projectedStages := make([]*stage.Stage, len(t.cfg.Stages))
	for i, s := range t.cfg.Stages {
		projected, err := s.ProjectToSpeed(speedRPM)
		if err != nil {
			return Result{}, err
		}
		projectedStages[i] = projected
	}
	projectedTrain, err := New(Config{
		Stages:                           projectedStages,
		PressureControl:                  IndividualASVRate,
		MaximumPowerMegawatt:             t.cfg.MaximumPowerMegawatt,
		EnergyAdjustmentFactor:           t.cfg.EnergyAdjustmentFactor,
		EnergyAdjustmentConstantMegawatt: t.cfg.EnergyAdjustmentConstantMegawatt,
	})
	if err != nil {
		return Result{}, err
	}
	return projectedTrain.evaluateSingleSpeed(inletStream, massRateKgPerHour, target)
}
