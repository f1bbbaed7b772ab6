package fluid

import (
	"fmt"

	"github.com/processcore/compressor/unit"
)

// ProcessConditions is a (pressure, temperature) pair.
type ProcessConditions struct {
	PressureBara      float64
	TemperatureKelvin float64
}

// NewProcessConditions validates and constructs a ProcessConditions value.
func NewProcessConditions(pressureBara, temperatureKelvin float64) (ProcessConditions, error) {
	if pressureBara <= 0 {
		return ProcessConditions{}, fmt.Errorf("fluid: pressure must be > 0, got %g bara", pressureBara)
	}
	if temperatureKelvin <= 0 {
		return ProcessConditions{}, fmt.Errorf("fluid: temperature must be > 0, got %g K", temperatureKelvin)
	}
	return ProcessConditions{PressureBara: pressureBara, TemperatureKelvin: temperatureKelvin}, nil
}

// Standard is the designated standard-conditions value used for standard
// rate <-> mass rate conversions (spec: 1.01325 bara, 288.15 K).
var Standard = ProcessConditions{
	PressureBara:      unit.StandardPressureBara,
	TemperatureKelvin: unit.StandardTemperatureK,
}
