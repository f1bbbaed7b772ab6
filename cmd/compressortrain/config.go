package main

import (
	"fmt"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/processcore/compressor/fluid"
)

// stageSpec mirrors stage.Config in plain YAML-friendly fields.
type stageSpec struct {
	ChartCurves                 []curveSpec `yaml:"curves"`
	PressureDropAheadOfStageBar float64     `yaml:"pressure_drop_ahead_bar"`
	InletTemperatureKelvin      float64     `yaml:"inlet_temperature_kelvin"`
	RemoveLiquidAfterCooling    bool        `yaml:"remove_liquid_after_cooling"`
}

type curveSpec struct {
	SpeedRPM   float64   `yaml:"speed_rpm"`
	RateM3H    []float64 `yaml:"rate_actual_m3_per_hour"`
	HeadJPerKg []float64 `yaml:"polytropic_head_joule_per_kg"`
	Efficiency []float64 `yaml:"efficiency_fraction"`
}

// trainSpec is the top-level YAML shape read from a config file (spec
// §6's new_variable_speed_train inputs, bound with viper the way
// inmaputil binds its run config).
type trainSpec struct {
	Stages               []stageSpec        `yaml:"stages"`
	PressureControl      string             `yaml:"pressure_control"`
	MaximumPowerMegawatt *float64           `yaml:"maximum_power_megawatt"`
	EnergyAdjustmentFactor   float64        `yaml:"energy_adjustment_factor"`
	EnergyAdjustmentConstant float64        `yaml:"energy_adjustment_constant_megawatt"`
	FluidComposition     map[string]float64 `yaml:"fluid_composition"`
	EoS                  string             `yaml:"equation_of_state"`
}

// loadTrainSpec reads and unmarshals a train topology file. viper handles
// locating/reading the file (so CLI flags can override its path); the
// actual decode goes through yaml.v3 for the nested stage/curve structure.
func loadTrainSpec(v *viper.Viper) (*trainSpec, error) {
	raw, err := readConfigBytes(v)
	if err != nil {
		return nil, err
	}
	var spec trainSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("compressortrain: parsing train config: %w", err)
	}
	if len(spec.Stages) == 0 {
		return nil, fmt.Errorf("compressortrain: train config declares no stages")
	}
	return &spec, nil
}

func fluidCompositionFromSpec(spec *trainSpec) (fluid.FluidComposition, error) {
	return fluid.NewFluidComposition(spec.FluidComposition)
}
