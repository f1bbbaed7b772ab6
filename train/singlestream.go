package train

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/internal/engineerr"
	"github.com/processcore/compressor/solve"
	"github.com/processcore/compressor/stage"
	"github.com/processcore/compressor/unit"
)

// Config describes a single-stream compressor train: an ordered sequence of
// stages sharing one shaft (spec §3 Train, §4.4).
type Config struct {
	Stages                           []*stage.Stage
	PressureControl                  PressureControl
	MaximumPowerMegawatt             *float64
	MaximumDischargePressureBara     *float64
	EnergyAdjustmentFactor           float64
	EnergyAdjustmentConstantMegawatt float64
}

// Train evaluates a Config at operating points (spec §4.4). fluidModel is
// set on trains built through NewSingleSpeedTrain, NewVariableSpeedTrain or
// NewTrainWithFluidModel and backs the core Evaluate/EvaluateBatch entry points (spec §6).
type Train struct {
	cfg        Config
	ctx        *EvaluationContext
	log        *logrus.Entry
	fluidModel *fluid.FluidModel
}

// New validates cfg and constructs a Train.
func New(cfg Config) (*Train, error) {
	if len(cfg.Stages) == 0 {
		return nil, engineerr.New("train", fmt.Errorf("at least one stage is required"))
	}
	if cfg.EnergyAdjustmentFactor == 0 {
		cfg.EnergyAdjustmentFactor = 1
	}
	return &Train{
		cfg: cfg,
		ctx: NewEvaluationContext(),
		log: logrus.WithField("component", "train"),
	}, nil
}

// ResetRecirculationState clears the multi-stream recirculation cache (spec
// §4.5, §9's public API for restarting a simulation run).
func (t *Train) ResetRecirculationState() { t.ctx.Reset() }

func (t *Train) minSpeed() float64 {
	m := math.Inf(-1)
	for _, s := range t.cfg.Stages {
		if s.MinSpeed() > m {
			m = s.MinSpeed()
		}
	}
	return m
}

func (t *Train) maxSpeed() float64 {
	m := math.Inf(1)
	for _, s := range t.cfg.Stages {
		if s.MaxSpeed() < m {
			m = s.MaxSpeed()
		}
	}
	return m
}

func (t *Train) isSingleSpeed() bool {
	return t.minSpeed() == t.maxSpeed()
}

// evaluateAtSpeed runs every stage in order at the given speed, starting
// from inletStream, and returns the raw result (target status not yet
// classified; energy adjustment applied).
func (t *Train) evaluateAtSpeed(inletStream *fluid.Stream, massRateKgPerHour, speedRPM, asvRateFraction, asvAdditionalMassRateKgPerHour float64) (Result, error) {
	outlet := inletStream
	stageResults := make([]stage.Result, 0, len(t.cfg.Stages))
	for _, s := range t.cfg.Stages {
		r, err := s.Evaluate(outlet, speedRPM, massRateKgPerHour, asvRateFraction, asvAdditionalMassRateKgPerHour)
		if err != nil {
			return Result{}, err
		}
		stageResults = append(stageResults, r)
		outlet = r.OutletStream
	}

	valid := true
	var rawPower float64
	for _, r := range stageResults {
		if !r.PointIsValid {
			valid = false
		}
		rawPower += r.PowerMegawatt
	}

	reportedPower := t.cfg.EnergyAdjustmentFactor*rawPower + t.cfg.EnergyAdjustmentConstantMegawatt
	aboveMaxPower := t.cfg.MaximumPowerMegawatt != nil && reportedPower > *t.cfg.MaximumPowerMegawatt

	return Result{
		CorrelationID:         uuid.New(),
		InletStream:           inletStream,
		OutletStream:          outlet,
		StageResults:          stageResults,
		SpeedRPM:              speedRPM,
		TargetPressureStatus:  TargetPressuresMet,
		AboveMaximumPower:     aboveMaxPower,
		PowerRawMegawatt:      rawPower,
		PowerReportedMegawatt: reportedPower,
		Valid:                 valid && !aboveMaxPower,
	}, nil
}

// withinCapacityAtSpeed reports whether evaluating at speedRPM leaves every
// stage without a RateExceedsMaximum flag (an evaluation error counts as not
// within capacity) — the capacity test used to bisect an effective maximum
// speed (spec §4.4.1 step 2).
func (t *Train) withinCapacityAtSpeed(inletStream *fluid.Stream, massRateKgPerHour, speedRPM float64) bool {
	result, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, speedRPM, 0, 0)
	if err != nil {
		return false
	}
	for _, r := range result.StageResults {
		if r.Capacity.RateExceedsMaximum {
			return false
		}
	}
	return true
}

// EvaluateRatePsPd solves the train for a target discharge pressure given a
// fixed mass rate and suction-side inlet stream (spec §4.4.1, §4.4.2).
// inletStream must already be flashed at the train's suction conditions;
// each stage applies its own pressure drop and inter-stage cooling.
func (t *Train) EvaluateRatePsPd(inletStream *fluid.Stream, massRateKgPerHour, dischargePressureTargetBara float64) (Result, error) {
	if t.cfg.MaximumDischargePressureBara != nil && dischargePressureTargetBara > *t.cfg.MaximumDischargePressureBara {
		dischargePressureTargetBara = *t.cfg.MaximumDischargePressureBara
	}
	if t.isSingleSpeed() {
		return t.evaluateSingleSpeed(inletStream, massRateKgPerHour, dischargePressureTargetBara)
	}
	return t.evaluateVariableSpeed(inletStream, massRateKgPerHour, dischargePressureTargetBara)
}

func (t *Train) evaluateVariableSpeed(inletStream *fluid.Stream, massRateKgPerHour, target float64) (Result, error) {
	minSpeed, maxSpeed := t.minSpeed(), t.maxSpeed()

	resultAtMin, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, minSpeed, 0, 0)
	if err != nil {
		return Result{}, err
	}
	effectiveMaxSpeed := maxSpeed
	if !t.withinCapacityAtSpeed(inletStream, massRateKgPerHour, maxSpeed) {
		if !t.withinCapacityAtSpeed(inletStream, massRateKgPerHour, minSpeed) {
			resultAtMin.TargetPressureStatus = AboveMaximumFlowRateStatus
			resultAtMin.Valid = false
			return resultAtMin, nil
		}
		effectiveMaxSpeed, err = solve.MaximizeWhere(
			func(s float64) bool { return t.withinCapacityAtSpeed(inletStream, massRateKgPerHour, s) },
			minSpeed, maxSpeed, unit.RateCalculationTolerance,
		)
		if err != nil {
			return Result{}, err
		}
	}
	resultAtMax, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, effectiveMaxSpeed, 0, 0)
	if err != nil {
		return Result{}, err
	}

	pdMin := resultAtMin.OutletStream.Conditions().PressureBara
	pdMax := resultAtMax.OutletStream.Conditions().PressureBara

	switch {
	case target > pdMax:
		resultAtMax.TargetPressureStatus = TargetDischargePressureTooHigh
		resultAtMax.Valid = false
		return resultAtMax, nil
	case target < pdMin:
		if t.cfg.PressureControl != NoPressureControl {
			return t.applyPressureControl(inletStream, massRateKgPerHour, minSpeed, target)
		}
		resultAtMin.TargetPressureStatus = TargetDischargePressureTooLow
		resultAtMin.Valid = false
		return resultAtMin, nil
	default:
		speed, err := t.solveSpeedForDischarge(inletStream, massRateKgPerHour, minSpeed, effectiveMaxSpeed, target)
		if err != nil {
			return Result{}, err
		}
		result, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, speed, 0, 0)
		if err != nil {
			return Result{}, err
		}
		result.TargetPressureStatus = TargetPressuresMet
		return result, nil
	}
}

func (t *Train) solveSpeedForDischarge(inletStream *fluid.Stream, massRateKgPerHour, lo, hi, target float64) (float64, error) {
	f := func(speed float64) float64 {
		result, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, speed, 0, 0)
		if err != nil {
			return math.NaN()
		}
		return result.OutletStream.Conditions().PressureBara - target
	}
	r, err := solve.Brent(f, lo, hi, unit.PressureCalculationTolerance)
	if err != nil {
		return 0, err
	}
	return r.X, nil
}

func (t *Train) evaluateSingleSpeed(inletStream *fluid.Stream, massRateKgPerHour, target float64) (Result, error) {
	speed := t.minSpeed()
	result, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, speed, 0, 0)
	if err != nil {
		return Result{}, err
	}
	computed := result.OutletStream.Conditions().PressureBara
	if math.Abs(computed-target) <= unit.PressureCalculationTolerance {
		result.TargetPressureStatus = TargetPressuresMet
		return result, nil
	}
	if t.cfg.PressureControl == NoPressureControl {
		if computed > target {
			result.TargetPressureStatus = TargetDischargePressureTooLow
		} else {
			result.TargetPressureStatus = TargetDischargePressureTooHigh
		}
		result.Valid = false
		return result, nil
	}
	return t.applyPressureControl(inletStream, massRateKgPerHour, speed, target)
}
