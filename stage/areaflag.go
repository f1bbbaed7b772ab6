package stage

import "github.com/processcore/compressor/chart"

// chartAreaFlag classifies a stage's operating point against its chart's
// speed range and capacity result (spec §4.2 precedence order).
func chartAreaFlag(speedRPM, minSpeed, maxSpeed float64, capacity chart.CapacityResult) chart.AreaFlag {
	return chart.AreaFlagFromCapacity(speedRPM < minSpeed, speedRPM > maxSpeed, capacity)
}
