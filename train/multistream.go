package train

import (
	"errors"
	"fmt"
	"math"

	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/internal/engineerr"
	"github.com/processcore/compressor/internal/numeric"
	"github.com/processcore/compressor/solve"
	"github.com/processcore/compressor/stage"
	"github.com/processcore/compressor/unit"
)

// StreamDirection says whether a StreamRef adds mass to the train (an
// ingoing stream) or removes it (an outgoing stream / side draw).
type StreamDirection int

const (
	StreamIn StreamDirection = iota
	StreamOut
)

// StreamRef describes a stream entering or leaving the train at a stage
// junction (spec §4.5, §3 StreamRef). StageIndex is the junction ahead of
// that stage: index 0 is the train's suction, index len(Stages) is the
// train's final discharge.
type StreamRef struct {
	StageIndex int
	Direction  StreamDirection
	Fluid      *fluid.Stream
}

// MultiStreamConfig extends Config with the stream topology and optional
// intermediate-pressure split point (spec §4.5).
type MultiStreamConfig struct {
	Config
	Streams                  []StreamRef
	InterstagePressureIndex  *int
	PressureControlFirstPart PressureControl
	PressureControlLastPart  PressureControl
}

// MultiStreamTrain evaluates a Config with side streams and an optional
// intermediate-pressure target (spec §4.5). It builds a single-stream Train
// at evaluation time, one for each half of an intermediate-pressure split.
type MultiStreamTrain struct {
	cfg MultiStreamConfig
	ctx *EvaluationContext
}

// NewMultiStream validates cfg and constructs a MultiStreamTrain.
func NewMultiStream(cfg MultiStreamConfig) (*MultiStreamTrain, error) {
	if len(cfg.Stages) == 0 {
		return nil, engineerr.New("train", fmt.Errorf("at least one stage is required"))
	}
	if cfg.InterstagePressureIndex != nil {
		k := *cfg.InterstagePressureIndex
		if k < 1 || k > len(cfg.Stages)-1 {
			return nil, engineerr.Newf("train", "interstage pressure index %d out of range [1,%d]", k, len(cfg.Stages)-1)
		}
	}
	return &MultiStreamTrain{cfg: cfg, ctx: NewEvaluationContext()}, nil
}

// ResetRecirculationState clears the recirculation cache (spec §4.5, §9).
func (m *MultiStreamTrain) ResetRecirculationState() { m.ctx.Reset() }

// junctionMassRates walks the streams in stage order and returns the net
// mass rate arriving at each stage's junction: Σ inlet − Σ outlet up to and
// including that junction, with outlet draws deducted before inlet
// additions at the same junction (spec §4.5).
func (m *MultiStreamTrain) junctionMassRates(streamRatesStdM3PerDay []float64) ([]float64, error) {
	if len(streamRatesStdM3PerDay) != len(m.cfg.Streams) {
		return nil, engineerr.Newf("train", "stream_rates length %d disagrees with stream count %d", len(streamRatesStdM3PerDay), len(m.cfg.Streams))
	}

	numJunctions := len(m.cfg.Stages) + 1
	inletDeltas := make([]float64, numJunctions)
	outletDeltas := make([]float64, numJunctions)

	for i, ref := range m.cfg.Streams {
		massRate, err := ref.Fluid.StandardRateToMassRate(streamRatesStdM3PerDay[i])
		if err != nil {
			return nil, err
		}
		if ref.Direction == StreamOut {
			outletDeltas[ref.StageIndex] += massRate
		} else {
			inletDeltas[ref.StageIndex] += massRate
		}
	}

	cumulativeIn := numeric.CumulativeSum(inletDeltas)
	cumulativeOut := numeric.CumulativeSum(outletDeltas)
	massRates := make([]float64, numJunctions)
	for j := 0; j < numJunctions; j++ {
		massRates[j] = cumulativeIn[j] - cumulativeOut[j]
	}

	for j := 0; j < numJunctions; j++ {
		if cumulativeOut[j] > cumulativeIn[j] {
			return nil, fmt.Errorf("train: mass-balance violated at junction %d: cumulative outlet %.6g exceeds cumulative inlet %.6g", j, cumulativeOut[j], cumulativeIn[j])
		}
	}
	return massRates, nil
}

// junctionInletStream builds the composition arriving at a stage's inlet
// junction by mole-weighted mixing of the running stream with every
// ingoing StreamRef at that junction (outgoing refs only subtract mass, not
// composition). stageIndex identifies the junction ahead of that stage.
func (m *MultiStreamTrain) junctionInletStream(running *fluid.Stream, runningMassRate float64, stageIndex int, conditions fluid.ProcessConditions) (*fluid.Stream, error) {
	mixed := running
	massRate := runningMassRate
	for _, ref := range m.cfg.Streams {
		if ref.StageIndex != stageIndex || ref.Direction != StreamIn {
			continue
		}
		var err error
		mixed, err = mixed.Mix(ref.Fluid, massRate, ref.Fluid.MassRateKgPerHour(), conditions)
		if err != nil {
			return nil, err
		}
		massRate += ref.Fluid.MassRateKgPerHour()
	}
	return mixed, nil
}

// stageInletStream resolves the fluid stream feeding stageIndex, handling
// recirculation mode when the junction's net mass rate computes to zero
// (spec §4.5, §9: "last non-zero inlet stream" cache).
func (m *MultiStreamTrain) stageInletStream(stageIndex int, netMassRate float64, fallback *fluid.Stream) (*fluid.Stream, error) {
	if netMassRate != 0 {
		m.ctx.remember(stageIndex, fallback)
		return fallback, nil
	}
	cached, ok := m.ctx.recall(stageIndex)
	if !ok {
		return nil, fmt.Errorf("train: stage %d has zero net mass rate and no recirculation history exists", stageIndex)
	}
	return cached, nil
}

// Evaluate solves the multi-stream train for one operating point: stream
// rates at every StreamRef, a suction pressure, a discharge pressure, and
// (if configured) an intermediate-pressure target (spec §4.5).
func (m *MultiStreamTrain) Evaluate(suctionInlet *fluid.Stream, streamRatesStdM3PerDay []float64, suctionPressureBara, dischargePressureBara float64, intermediatePressureBara *float64) (Result, error) {
	junctionRates, err := m.junctionMassRates(streamRatesStdM3PerDay)
	if err != nil {
		var invariant *engineerr.InvariantError
		if errors.As(err, &invariant) {
			return Result{}, err
		}
		result := Result{TargetPressureStatus: NotCalculatedStatus, Valid: false}
		return result, nil
	}

	if m.cfg.InterstagePressureIndex == nil || intermediatePressureBara == nil {
		return m.evaluateSingleSplit(suctionInlet, junctionRates, dischargePressureBara)
	}
	return m.evaluateWithIntermediateSplit(suctionInlet, junctionRates, *intermediatePressureBara, dischargePressureBara)
}

func (m *MultiStreamTrain) evaluateSingleSplit(suctionInlet *fluid.Stream, junctionRates []float64, dischargePressureBara float64) (Result, error) {
	t := &Train{cfg: m.cfg.Config, ctx: m.ctx}
	return m.evaluateSequential(t, suctionInlet, junctionRates, dischargePressureBara)
}

// evaluateSequential resolves the suction junction's inlet stream (index 0,
// falling back to the recirculation cache when its net mass rate is zero)
// and solves the whole train at that junction's net mass rate through the
// shared single-stream solver's root-finding over speed. Streams attached at
// later junctions are not mixed in and do not change the mass rate of the
// downstream stages.
func (m *MultiStreamTrain) evaluateSequential(t *Train, suctionInlet *fluid.Stream, junctionRates []float64, dischargePressureBara float64) (Result, error) {
	resolvedInlet, err := m.stageInletStream(0, junctionRates[0], suctionInlet)
	if err != nil {
		return Result{}, err
	}
	massRate := junctionRates[0]
	if massRate == 0 {
		massRate = resolvedInlet.MassRateKgPerHour()
	}
	return t.EvaluateRatePsPd(resolvedInlet, massRate, dischargePressureBara)
}

// pinSubTrainToSpeed re-evaluates a sub-train at a fixed shaft speed, using
// its configured PressureControl to reconcile the resulting discharge
// pressure back to target. With no pressure control configured there is no
// way to reconcile a speed mismatch, so the result is reported at the pinned
// speed with whichever TooHigh/TooLow status the mismatch produces.
func pinSubTrainToSpeed(t *Train, inletStream *fluid.Stream, massRateKgPerHour, speedRPM, target float64) (Result, error) {
	if t.cfg.PressureControl == NoPressureControl {
		result, err := t.evaluateAtSpeed(inletStream, massRateKgPerHour, speedRPM, 0, 0)
		if err != nil {
			return Result{}, err
		}
		computed := result.OutletStream.Conditions().PressureBara
		switch {
		case math.Abs(computed-target) <= unit.PressureCalculationTolerance:
			result.TargetPressureStatus = TargetPressuresMet
		case computed > target:
			result.TargetPressureStatus = TargetDischargePressureTooLow
			result.Valid = false
		default:
			result.TargetPressureStatus = TargetDischargePressureTooHigh
			result.Valid = false
		}
		return result, nil
	}
	return t.applyPressureControl(inletStream, massRateKgPerHour, speedRPM, target)
}

// evaluateWithIntermediateSplit implements the stage-k split of spec §4.5:
// sub-train A runs stages [0,k) to the intermediate target, sub-train B
// runs stages [k,N) from the intermediate pressure to the final discharge
// target, using sub-train A's final outlet composition as sub-train B's
// inlet. Both sub-trains share a physical shaft: whichever half naturally
// solves to the lower speed is re-pinned to the governing (larger) speed via
// its own PressureControlFirstPart/PressureControlLastPart, and the other
// half's inlet is rebuilt from the pinned result before it is re-evaluated.
func (m *MultiStreamTrain) evaluateWithIntermediateSplit(suctionInlet *fluid.Stream, junctionRates []float64, intermediatePressureBara, dischargePressureBara float64) (Result, error) {
	k := *m.cfg.InterstagePressureIndex

	inletA, err := m.stageInletStream(0, junctionRates[0], suctionInlet)
	if err != nil {
		return Result{}, err
	}
	massRateA := junctionRates[0]
	if massRateA == 0 {
		massRateA = inletA.MassRateKgPerHour()
	}

	trainA, err := New(Config{
		Stages:                           m.cfg.Stages[:k],
		PressureControl:                  m.cfg.PressureControlFirstPart,
		EnergyAdjustmentFactor:           1,
		EnergyAdjustmentConstantMegawatt: 0,
	})
	if err != nil {
		return Result{}, err
	}
	trainA.ctx = m.ctx
	resultA, err := trainA.EvaluateRatePsPd(inletA, massRateA, intermediatePressureBara)
	if err != nil {
		return Result{}, err
	}

	inletB, err := m.junctionInletStream(resultA.OutletStream, massRateA, k, resultA.OutletStream.Conditions())
	if err != nil {
		return Result{}, err
	}
	massRateB := junctionRates[k]
	if massRateB == 0 {
		massRateB = inletB.MassRateKgPerHour()
	}
	trainB, err := New(Config{
		Stages:                           m.cfg.Stages[k:],
		PressureControl:                  m.cfg.PressureControlLastPart,
		EnergyAdjustmentFactor:           1,
		EnergyAdjustmentConstantMegawatt: 0,
	})
	if err != nil {
		return Result{}, err
	}
	trainB.ctx = m.ctx
	resultB, err := trainB.EvaluateRatePsPd(inletB, massRateB, dischargePressureBara)
	if err != nil {
		return Result{}, err
	}

	governingSpeed := math.Max(resultA.SpeedRPM, resultB.SpeedRPM)

	if resultA.SpeedRPM < governingSpeed {
		resultA, err = pinSubTrainToSpeed(trainA, inletA, massRateA, governingSpeed, intermediatePressureBara)
		if err != nil {
			return Result{}, err
		}
		inletB, err = m.junctionInletStream(resultA.OutletStream, massRateA, k, resultA.OutletStream.Conditions())
		if err != nil {
			return Result{}, err
		}
		resultB, err = pinSubTrainToSpeed(trainB, inletB, massRateB, governingSpeed, dischargePressureBara)
		if err != nil {
			return Result{}, err
		}
	} else if resultB.SpeedRPM < governingSpeed {
		resultB, err = pinSubTrainToSpeed(trainB, inletB, massRateB, governingSpeed, dischargePressureBara)
		if err != nil {
			return Result{}, err
		}
	}

	combined := Result{
		CorrelationID:        resultB.CorrelationID,
		InletStream:          suctionInlet,
		OutletStream:         resultB.OutletStream,
		StageResults:         append(append([]stage.Result{}, resultA.StageResults...), resultB.StageResults...),
		SpeedRPM:             governingSpeed,
		TargetPressureStatus: TargetPressuresMet,
		PowerRawMegawatt:     resultA.PowerRawMegawatt + resultB.PowerRawMegawatt,
		Valid:                resultA.Valid && resultB.Valid,
	}
	combined.PowerReportedMegawatt = m.cfg.EnergyAdjustmentFactor*combined.PowerRawMegawatt + m.cfg.EnergyAdjustmentConstantMegawatt
	if m.cfg.MaximumPowerMegawatt != nil && combined.PowerReportedMegawatt > *m.cfg.MaximumPowerMegawatt {
		combined.AboveMaximumPower = true
		combined.Valid = false
	}
	if resultA.TargetPressureStatus.IsFailure() || resultB.TargetPressureStatus.IsFailure() {
		combined.TargetPressureStatus = TargetSuctionPressureNotMet
	}
	return combined, nil
}

// GetMaxRateForStream finds the largest standard-conditions rate for the
// stream at streamIndex such that the train remains valid, holding every
// other stream's rate fixed (spec §4.5 get_max_rate_for_stream):
// exponential-doubling to bracket a feasible/infeasible pair, then
// bisection on the boundary.
func (m *MultiStreamTrain) GetMaxRateForStream(suctionInlet *fluid.Stream, baseRates []float64, streamIndex int, suctionPressureBara, dischargePressureBara float64, intermediatePressureBara *float64) (float64, error) {
	if streamIndex < 0 || streamIndex >= len(baseRates) {
		return 0, fmt.Errorf("train: stream index %d out of range", streamIndex)
	}

	isValidAt := func(rate float64) bool {
		rates := append([]float64{}, baseRates...)
		rates[streamIndex] = rate
		result, err := m.Evaluate(suctionInlet, rates, suctionPressureBara, dischargePressureBara, intermediatePressureBara)
		if err != nil {
			return false
		}
		return result.Valid
	}

	lo := math.Max(baseRates[streamIndex], unit.Epsilon)
	if !isValidAt(lo) {
		return 0, fmt.Errorf("train: base rate for stream %d is already invalid", streamIndex)
	}
	hi := lo
	for isValidAt(hi) {
		hi *= 2
		if hi > 1e15 {
			return hi, nil
		}
	}

	maxRate, err := solve.MaximizeWhere(isValidAt, lo, hi, unit.RateCalculationTolerance)
	if err != nil {
		return 0, err
	}
	return maxRate, nil
}
