package train

import (
	"fmt"

	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/internal/engineerr"
)

// Evaluate builds the suction-side stream from the train's fluid model and
// converts the requested standard-conditions rate to a mass rate before
// solving for the discharge pressure target (spec §6 evaluate). Trains built
// through NewSingleSpeedTrain, NewVariableSpeedTrain or NewTrainWithFluidModel
// carry a fluid model (cmd/compressortrain uses the last); a Train built
// through the bare New(Config) has none, and Evaluate returns an error.
func (t *Train) Evaluate(rateSm3PerDay, suctionPressureBara, suctionTemperatureKelvin, dischargePressureTargetBara float64) (Result, error) {
	inletStream, massRateKgPerHour, err := t.buildInletStream(rateSm3PerDay, suctionPressureBara, suctionTemperatureKelvin)
	if err != nil {
		return Result{}, err
	}
	return t.EvaluateRatePsPd(inletStream, massRateKgPerHour, dischargePressureTargetBara)
}

func (t *Train) buildInletStream(rateSm3PerDay, suctionPressureBara, suctionTemperatureKelvin float64) (*fluid.Stream, float64, error) {
	if t.fluidModel == nil {
		return nil, 0, fmt.Errorf("train: no fluid model configured; build the train through NewSingleSpeedTrain or NewVariableSpeedTrain")
	}
	conditions, err := fluid.NewProcessConditions(suctionPressureBara, suctionTemperatureKelvin)
	if err != nil {
		return nil, 0, err
	}
	inletStream, err := t.fluidModel.StreamAt(conditions)
	if err != nil {
		return nil, 0, err
	}
	massRateKgPerHour, err := inletStream.StandardRateToMassRate(rateSm3PerDay)
	if err != nil {
		return nil, 0, err
	}
	return inletStream, massRateKgPerHour, nil
}

// EvaluateBatch evaluates the train at one operating point per index across
// the four parallel vectors (spec §6 evaluate_batch). A length mismatch
// between the vectors is a programming error (spec §7a), not a per-point
// failure, so it is returned rather than folded into a Result.
func (t *Train) EvaluateBatch(rateSm3PerDayVec, suctionPressureBaraVec, suctionTemperatureKelvinVec, dischargePressureBaraVec []float64) ([]Result, error) {
	n := len(rateSm3PerDayVec)
	if len(suctionPressureBaraVec) != n || len(suctionTemperatureKelvinVec) != n || len(dischargePressureBaraVec) != n {
		return nil, engineerr.Newf("train", "evaluate_batch vector lengths disagree: rate=%d ps=%d ts=%d pd=%d",
			n, len(suctionPressureBaraVec), len(suctionTemperatureKelvinVec), len(dischargePressureBaraVec))
	}

	results := make([]Result, n)
	for i := 0; i < n; i++ {
		result, err := t.Evaluate(rateSm3PerDayVec[i], suctionPressureBaraVec[i], suctionTemperatureKelvinVec[i], dischargePressureBaraVec[i])
		if err != nil {
			return nil, fmt.Errorf("evaluate_batch: point %d: %w", i, err)
		}
		results[i] = result
	}
	return results, nil
}

// GetMaxStandardRateBatch computes the maximum standard-conditions rate at
// each (suction pressure, discharge pressure) pair, holding suction
// temperature fixed across the batch (spec §6 get_max_standard_rate vector
// form: `get_max_standard_rate(ps_vec, pd_vec) → Vec<float>`).
func (t *Train) GetMaxStandardRateBatch(suctionPressureBaraVec, dischargePressureBaraVec []float64, suctionTemperatureKelvin float64) ([]float64, error) {
	if t.fluidModel == nil {
		return nil, fmt.Errorf("train: no fluid model configured; build the train through NewSingleSpeedTrain or NewVariableSpeedTrain")
	}
	if len(suctionPressureBaraVec) != len(dischargePressureBaraVec) {
		return nil, engineerr.Newf("train", "get_max_standard_rate vector lengths disagree: ps=%d pd=%d", len(suctionPressureBaraVec), len(dischargePressureBaraVec))
	}

	rates := make([]float64, len(suctionPressureBaraVec))
	for i := range suctionPressureBaraVec {
		conditions, err := fluid.NewProcessConditions(suctionPressureBaraVec[i], suctionTemperatureKelvin)
		if err != nil {
			return nil, err
		}
		inletStream, err := t.fluidModel.StreamAt(conditions)
		if err != nil {
			return nil, err
		}
		rate, err := t.GetMaxStandardRate(inletStream, dischargePressureBaraVec[i])
		if err != nil {
			return nil, fmt.Errorf("get_max_standard_rate: point %d: %w", i, err)
		}
		rates[i] = rate
	}
	return rates, nil
}
