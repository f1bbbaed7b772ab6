// Package stage evaluates a single compressor wheel: pressure drop and
// inter-stage cooling ahead of the wheel, the Campbell polytropic-head
// relation, ASV recirculation, chart-capacity correction, and power (spec
// §4.3), grounded on the single-stage evaluation embedded in
// variable_speed_compressor_train_common_shaft.py.
package stage

import "github.com/processcore/compressor/chart"

// Chart is the subset of chart.VariableSpeedChart / chart.SingleSpeedChart
// the stage evaluator consults: a head lookup at the shaft's current speed,
// an efficiency lookup, capacity/envelope classification, the minimum rate
// at speed (used by the ASV k-factor), and the chart's speed range (used to
// classify the area flag).
type Chart interface {
	HeadAt(rate, speed float64) (float64, error)
	EfficiencyAt(rate, head float64) float64
	EvaluateCapacity(rate, head float64) chart.CapacityResult
	MinimumRateAtSpeed(speed float64) float64
	MaximumRateAtSpeed(speed float64) float64
	MinSpeed() float64
	MaxSpeed() float64
}
