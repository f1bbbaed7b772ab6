package train

import (
	"fmt"
	"math"

	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/solve"
	"github.com/processcore/compressor/unit"
)

// GetMaxStandardRate searches the largest standard-conditions rate for
// which the train evaluates to a valid point at the given discharge
// pressure target (spec §4.4.4). inletStream must already be flashed at the
// train's suction conditions (pressure, temperature); its standard density
// is used to convert between mass and standard rate.
func (t *Train) GetMaxStandardRate(inletStream *fluid.Stream, dischargePressureTargetBara float64) (float64, error) {
	maxSpeed := t.maxSpeed()
	firstChart := t.cfg.Stages[0].Chart()
	density := inletStream.DensityKgM3()
	if density <= 0 {
		return 0, fmt.Errorf("train: non-positive inlet density %g", density)
	}

	minMassRate := firstChart.MinimumRateAtSpeed(maxSpeed) * density
	maxMassRate := firstChart.MaximumRateAtSpeed(maxSpeed) * density
	if minMassRate < 0 {
		minMassRate = 0
	}

	isValidAt := func(massRate float64) bool {
		result, err := t.EvaluateRatePsPd(inletStream, massRate, dischargePressureTargetBara)
		if err != nil {
			return false
		}
		return result.Valid
	}

	// Step 2: if even the minimum bracket rate is infeasible (e.g. later
	// stages choke on it) and some form of ASV/choke relief is configured,
	// relax the lower bound towards zero so the search still has a valid
	// starting point.
	if !isValidAt(minMassRate) && t.cfg.PressureControl != NoPressureControl {
		minMassRate = unit.Epsilon
	}
	if !isValidAt(minMassRate) {
		return 0, fmt.Errorf("train: no valid operating point found at or above the minimum bracket rate")
	}

	dischargeAtMaxRateMaxSpeed, err := t.dischargePressureAt(inletStream, maxMassRate, maxSpeed)
	if err != nil {
		return 0, err
	}

	var solutionMassRate float64
	if dischargePressureTargetBara >= dischargeAtMaxRateMaxSpeed {
		// Solution 2: root-find mass rate on the max-speed curve.
		f := func(massRate float64) float64 {
			pd, err := t.dischargePressureAt(inletStream, massRate, maxSpeed)
			if err != nil {
				return math.NaN()
			}
			return pd - dischargePressureTargetBara
		}
		root, err := solve.Brent(f, minMassRate, maxMassRate, unit.RateCalculationTolerance)
		if err != nil {
			return 0, err
		}
		solutionMassRate = root.X
	} else if t.cfg.PressureControl != NoPressureControl && isValidAt(maxMassRate) {
		// Solution 3: the pressure-controlled point at max mass rate and
		// max speed is itself valid.
		solutionMassRate = maxMassRate
	} else {
		// Solution 4: walk the stonewall — for each candidate speed, the
		// maximum valid rate at that speed, root-found on speed to meet
		// the discharge target.
		solutionMassRate, err = t.solveAlongStonewall(inletStream, dischargePressureTargetBara, minMassRate, maxMassRate)
		if err != nil {
			return 0, err
		}
	}

	if t.cfg.MaximumPowerMegawatt != nil {
		solutionMassRate, err = t.limitRateByMaximumPower(inletStream, dischargePressureTargetBara, minMassRate, solutionMassRate)
		if err != nil {
			return 0, err
		}
	}

	solutionMassRate *= 1 - unit.RateTolerance
	return inletStream.MassRateToStandardRate(solutionMassRate)
}

func (t *Train) dischargePressureAt(inletStream *fluid.Stream, massRateKgPerHour, speedRPM float64) (float64, error) {
	result, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, speedRPM, 0, 0)
	if err != nil {
		return 0, err
	}
	return result.OutletStream.Conditions().PressureBara, nil
}

// solveAlongStonewall finds, for each candidate speed, the maximum mass
// rate still within the chart envelope, then root-finds on speed so the
// resulting discharge pressure matches target.
func (t *Train) solveAlongStonewall(inletStream *fluid.Stream, target, minMassRate, maxMassRate float64) (float64, error) {
	maxRateAtSpeed := func(speed float64) (float64, error) {
		condition := func(rate float64) bool { return t.withinCapacityAtSpeed(inletStream, rate, speed) }
		return solve.MaximizeWhere(condition, minMassRate, maxMassRate, unit.RateCalculationTolerance)
	}

	f := func(speed float64) float64 {
		rate, err := maxRateAtSpeed(speed)
		if err != nil {
			return math.NaN()
		}
		pd, err := t.dischargePressureAt(inletStream, rate, speed)
		if err != nil {
			return math.NaN()
		}
		return pd - target
	}
	root, err := solve.Brent(f, t.minSpeed(), t.maxSpeed(), unit.PressureCalculationTolerance)
	if err != nil {
		return 0, err
	}
	return maxRateAtSpeed(root.X)
}

// limitRateByMaximumPower root-finds the largest mass rate between
// minMassRate and the unconstrained solution whose reported power stays at
// or below the train's configured power ceiling.
func (t *Train) limitRateByMaximumPower(inletStream *fluid.Stream, target, minMassRate, solutionMassRate float64) (float64, error) {
	withinPower := func(massRate float64) bool {
		result, err := t.EvaluateRatePsPd(inletStream, massRate, target)
		if err != nil {
			return false
		}
		return !result.AboveMaximumPower
	}
	if withinPower(solutionMassRate) {
		return solutionMassRate, nil
	}
	return solve.MaximizeWhere(withinPower, minMassRate, solutionMassRate, unit.RateCalculationTolerance)
}
