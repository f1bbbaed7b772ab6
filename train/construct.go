package train

import (
	"fmt"

	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/internal/engineerr"
	"github.com/processcore/compressor/stage"
)

// NewSingleSpeedTrain constructs a Train over stages whose compressor
// charts are all pinned to one shaft speed, carrying fluidModel so the
// core Evaluate/EvaluateBatch entry points can build the suction-side
// stream internally (spec §6 new_single_speed_train).
func NewSingleSpeedTrain(stages []*stage.Stage, fluidModel fluid.FluidModel, pressureControl PressureControl, maximumPowerMegawatt, maximumDischargePressureBara *float64, energyAdjustmentConstantMegawatt, energyAdjustmentFactor float64) (*Train, error) {
	t, err := NewTrainWithFluidModel(stages, fluidModel, pressureControl, maximumPowerMegawatt, maximumDischargePressureBara, energyAdjustmentConstantMegawatt, energyAdjustmentFactor)
	if err != nil {
		return nil, err
	}
	if !t.isSingleSpeed() {
		return nil, engineerr.New("train", fmt.Errorf("new_single_speed_train requires every stage chart to share one shaft speed"))
	}
	return t, nil
}

// NewVariableSpeedTrain constructs a Train over stages whose compressor
// charts span a shaft-speed range (spec §6 new_variable_speed_train). It
// has the same parameter list as NewSingleSpeedTrain.
func NewVariableSpeedTrain(stages []*stage.Stage, fluidModel fluid.FluidModel, pressureControl PressureControl, maximumPowerMegawatt, maximumDischargePressureBara *float64, energyAdjustmentConstantMegawatt, energyAdjustmentFactor float64) (*Train, error) {
	t, err := NewTrainWithFluidModel(stages, fluidModel, pressureControl, maximumPowerMegawatt, maximumDischargePressureBara, energyAdjustmentConstantMegawatt, energyAdjustmentFactor)
	if err != nil {
		return nil, err
	}
	if t.isSingleSpeed() {
		return nil, engineerr.New("train", fmt.Errorf("new_variable_speed_train requires at least one stage chart to span a shaft-speed range"))
	}
	return t, nil
}

// NewTrainWithFluidModel constructs a Train carrying fluidModel without
// enforcing either train family's speed-range precondition, for callers
// (such as cmd/compressortrain) that build stages dynamically and don't
// know in advance whether the resulting chart is single- or variable-speed.
func NewTrainWithFluidModel(stages []*stage.Stage, fluidModel fluid.FluidModel, pressureControl PressureControl, maximumPowerMegawatt, maximumDischargePressureBara *float64, energyAdjustmentConstantMegawatt, energyAdjustmentFactor float64) (*Train, error) {
	t, err := New(Config{
		Stages:                           stages,
		PressureControl:                  pressureControl,
		MaximumPowerMegawatt:             maximumPowerMegawatt,
		MaximumDischargePressureBara:     maximumDischargePressureBara,
		EnergyAdjustmentFactor:           energyAdjustmentFactor,
		EnergyAdjustmentConstantMegawatt: energyAdjustmentConstantMegawatt,
	})
	if err != nil {
		return nil, err
	}
	t.fluidModel = &fluidModel
	return t, nil
}
