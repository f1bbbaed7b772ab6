package stage

import (
	"github.com/processcore/compressor/chart"
	"github.com/processcore/compressor/fluid"
)

// Result is the outcome of evaluating one compressor stage at one operating
// point (spec §3 StageResult).
type Result struct {
	InletStreamPreASV  *fluid.Stream
	InletStreamPostASV *fluid.Stream
	OutletStream       *fluid.Stream

	ActualRateM3PerHour      float64
	PolytropicHeadJoulePerKg float64
	PolytropicEfficiency     float64

	MassRateInputKgPerHour float64
	MassRateUsedKgPerHour  float64
	AsvRateFraction        float64
	AsvAdditionalMassRate  float64

	SpeedRPM float64

	Capacity  chart.CapacityResult
	AreaFlag  chart.AreaFlag

	DeltaEnthalpyJPerKg float64
	PowerMegawatt       float64

	Converged  bool
	Iterations int

	PointIsValid bool
}
