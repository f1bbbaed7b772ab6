package stage

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/processcore/compressor/chart"
	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/unit"
)

// maxCampbellIterations bounds the head/enthalpy inner loop (spec §4.3, §9).
const maxCampbellIterations = 20

// campbellRelativeTolerance is the convergence tolerance on successive
// outlet-pressure estimates (spec §4.3).
const campbellRelativeTolerance = 1e-3

// Config describes one compressor wheel on a train (spec §3
// CompressorTrainStage).
type Config struct {
	Chart                        Chart
	PressureDropAheadOfStageBara float64
	InletTemperatureKelvin       float64
	RemoveLiquidAfterCooling    bool
}

// Stage evaluates one compressor wheel against a fixed Config.
type Stage struct {
	cfg Config
	log *logrus.Entry
}

// New validates cfg and constructs a Stage.
func New(cfg Config) (*Stage, error) {
	if cfg.Chart == nil {
		return nil, fmt.Errorf("stage: chart must not be nil")
	}
	if cfg.PressureDropAheadOfStageBara < 0 {
		return nil, fmt.Errorf("stage: pressure drop ahead of stage must be >= 0, got %g", cfg.PressureDropAheadOfStageBara)
	}
	if cfg.InletTemperatureKelvin <= 0 {
		return nil, fmt.Errorf("stage: inlet temperature must be > 0, got %g", cfg.InletTemperatureKelvin)
	}
	return &Stage{
		cfg: cfg,
		log: logrus.WithField("component", "stage"),
	}, nil
}

// speedProjectable is implemented by chart.VariableSpeedChart; used by
// ProjectToSpeed to build a fixed-speed equivalent of a stage for the
// single-speed-equivalent pressure control strategies (spec §4.4.3).
type speedProjectable interface {
	SingleSpeedEquivalent(speed float64) (*chart.Curve, error)
}

// Chart returns the stage's chart, for callers (the train solver) that need
// to inspect or project it directly.
func (s *Stage) Chart() Chart { return s.cfg.Chart }

// PressureDropAheadBara returns the configured pressure drop ahead of this
// stage, used by the train solver's upstream-choke pressure control to
// bound its root-find range.
func (s *Stage) PressureDropAheadBara() float64 { return s.cfg.PressureDropAheadOfStageBara }

// MinSpeed returns the stage chart's minimum shaft speed.
func (s *Stage) MinSpeed() float64 { return s.cfg.Chart.MinSpeed() }

// MaxSpeed returns the stage chart's maximum shaft speed.
func (s *Stage) MaxSpeed() float64 { return s.cfg.Chart.MaxSpeed() }

// ProjectToSpeed returns a copy of the stage whose chart is the fixed-speed
// equivalent of the original chart at speed, used to build a single-speed
// equivalent train for the INDIVIDUAL_ASV_PRESSURE and COMMON_ASV pressure
// control strategies (spec §4.4.3). Stages already backed by a fixed-speed
// chart are returned unchanged.
func (s *Stage) ProjectToSpeed(speedRPM float64) (*Stage, error) {
	projector, ok := s.cfg.Chart.(speedProjectable)
	if !ok {
		return s, nil
	}
	curve, err := projector.SingleSpeedEquivalent(speedRPM)
	if err != nil {
		return nil, err
	}
	newCfg := s.cfg
	newCfg.Chart = chart.NewSingleSpeedChart(curve)
	return New(newCfg)
}

// Evaluate runs one stage at the given shaft speed, mass rate and ASV
// settings, starting from the stream arriving at the stage junction (spec
// §4.3). Fluid computation failures (flash divergence) are returned as a
// *fluid.ComputationError; the train solver passes it on to its own caller
// as an error (spec §7).
func (s *Stage) Evaluate(inletStreamAtJunction *fluid.Stream, speedRPM, massRateKgPerHour, asvRateFraction, asvAdditionalMassRateKgPerHour float64) (Result, error) {
	if asvRateFraction < 0 || asvRateFraction > 1 {
		return Result{}, fmt.Errorf("stage: asv rate fraction must be in [0,1], got %g", asvRateFraction)
	}

	pressureAtInlet := inletStreamAtJunction.Conditions().PressureBara - s.cfg.PressureDropAheadOfStageBara
	inletConditions, err := fluid.NewProcessConditions(pressureAtInlet, s.cfg.InletTemperatureKelvin)
	if err != nil {
		return Result{}, fmt.Errorf("stage: %w", err)
	}
	inletStream, err := inletStreamAtJunction.FlashTo(inletConditions, s.cfg.RemoveLiquidAfterCooling)
	if err != nil {
		return Result{}, err
	}

	densityIn := inletStream.DensityKgM3()
	if densityIn <= 0 {
		return Result{}, fmt.Errorf("stage: non-positive inlet density %g after cooling flash", densityIn)
	}

	actualRateNoASV := massRateKgPerHour / densityIn
	minRateAtSpeed := s.cfg.Chart.MinimumRateAtSpeed(speedRPM)
	kASV := 1.0
	if actualRateNoASV > 0 {
		kASV = minRateAtSpeed / actualRateNoASV
	}
	effectiveMassRate := massRateKgPerHour*(1+asvRateFraction*(kASV-1)) + asvAdditionalMassRateKgPerHour
	inletStreamPostASV := inletStream.WithMassRate(effectiveMassRate)
	actualRate := effectiveMassRate / densityIn

	polytropicHead, err := s.cfg.Chart.HeadAt(actualRate, speedRPM)
	if err != nil {
		return Result{}, err
	}

	outletStream, polytropicEfficiency, deltaH, iterations, converged, err := s.solveEnthalpy(inletStreamPostASV, actualRate, polytropicHead)
	if err != nil {
		return Result{}, err
	}
	if !converged {
		s.log.WithFields(logrus.Fields{
			"speed_rpm":   speedRPM,
			"iterations":  iterations,
			"actual_rate": actualRate,
		}).Warn("stage enthalpy iteration did not converge")
	}

	capacity := s.cfg.Chart.EvaluateCapacity(actualRate, polytropicHead)
	massRateUsed := capacity.CorrectedRate * densityIn
	powerMegawatt := massRateUsed * deltaH / 3.6e9

	areaFlag := chartAreaFlag(speedRPM, s.cfg.Chart.MinSpeed(), s.cfg.Chart.MaxSpeed(), capacity)

	return Result{
		InletStreamPreASV:       inletStream,
		InletStreamPostASV:      inletStreamPostASV,
		OutletStream:            outletStream,
		ActualRateM3PerHour:     actualRate,
		PolytropicHeadJoulePerKg: polytropicHead,
		PolytropicEfficiency:    polytropicEfficiency,
		MassRateInputKgPerHour:  massRateKgPerHour,
		MassRateUsedKgPerHour:   massRateUsed,
		AsvRateFraction:         asvRateFraction,
		AsvAdditionalMassRate:   asvAdditionalMassRateKgPerHour,
		SpeedRPM:                speedRPM,
		Capacity:                capacity,
		AreaFlag:                areaFlag,
		DeltaEnthalpyJPerKg:     deltaH,
		PowerMegawatt:           powerMegawatt,
		Converged:               converged,
		Iterations:              iterations,
		PointIsValid:            !capacity.ExceedsCapacity(),
	}, nil
}

// solveEnthalpy implements the head/enthalpy inner iteration of spec §4.3:
// the chart-given polytropic head and the chart efficiency at that head are
// combined via the Campbell relation, inverted for the pressure ratio, and
// the outlet stream's Z and κ are refined until the outlet pressure stops
// moving.
func (s *Stage) solveEnthalpy(inlet *fluid.Stream, actualRate, polytropicHead float64) (outlet *fluid.Stream, efficiency, deltaH float64, iterations int, converged bool, err error) {
	zAvg := inlet.Z()
	kappaAvg := inlet.Kappa()
	molarMass := inlet.MolarMassKgPerMol()
	tIn := inlet.Conditions().TemperatureKelvin
	pIn := inlet.Conditions().PressureBara

	prevOutletPressure := math.Inf(1)
	outlet = inlet

	for iterations = 1; iterations <= maxCampbellIterations; iterations++ {
		efficiency = s.cfg.Chart.EfficiencyAt(actualRate, polytropicHead)
		if efficiency <= 0 {
			return nil, 0, 0, iterations, false, fmt.Errorf("stage: chart efficiency must be > 0, got %g", efficiency)
		}
		kappaExp := (kappaAvg - 1) / (kappaAvg * efficiency)
		if kappaExp == 0 {
			return nil, 0, 0, iterations, false, fmt.Errorf("stage: degenerate polytropic exponent")
		}

		base := 1 + polytropicHead*molarMass*kappaExp/(zAvg*unit.GasConstantJPerMolK*tIn)
		if base <= 0 {
			return nil, 0, 0, iterations, false, fmt.Errorf("stage: non-physical pressure ratio base %g", base)
		}
		pressureRatio := math.Pow(base, 1/kappaExp)
		outletPressure := pIn * pressureRatio

		deltaH = polytropicHead / efficiency
		outlet, err = inlet.WithEnthalpyChange(deltaH, outletPressure)
		if err != nil {
			return nil, 0, 0, iterations, false, err
		}

		zAvg = (inlet.Z() + outlet.Z()) / 2
		kappaAvg = (inlet.Kappa() + outlet.Kappa()) / 2

		relChange := math.Abs(outletPressure-prevOutletPressure) / math.Max(1, math.Abs(outletPressure))
		prevOutletPressure = outletPressure
		if relChange < campbellRelativeTolerance {
			return outlet, efficiency, deltaH, iterations, true, nil
		}
	}
	return outlet, efficiency, deltaH, maxCampbellIterations, false, nil
}
