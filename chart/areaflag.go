package chart

// AreaFlag classifies a (rate, head, speed) operating point relative to a
// compressor chart's envelope (spec §3 ChartAreaFlag).
type AreaFlag int

const (
	NotCalculated AreaFlag = iota
	InternalPoint
	BelowMinimumFlowRate
	AboveMaximumFlowRate
	BelowMinimumSpeed
	AboveMaximumSpeed
	BelowMinimumSpeedAndBelowMinimumFlowRate
	BelowMinimumSpeedAndAboveMaximumFlowRate
	NoFlowRate
)

func (f AreaFlag) String() string {
	switch f {
	case InternalPoint:
		return "INTERNAL_POINT"
	case BelowMinimumFlowRate:
		return "BELOW_MINIMUM_FLOW_RATE"
	case AboveMaximumFlowRate:
		return "ABOVE_MAXIMUM_FLOW_RATE"
	case BelowMinimumSpeed:
		return "BELOW_MINIMUM_SPEED"
	case AboveMaximumSpeed:
		return "ABOVE_MAXIMUM_SPEED"
	case BelowMinimumSpeedAndBelowMinimumFlowRate:
		return "BELOW_MINIMUM_SPEED_AND_BELOW_MINIMUM_FLOW_RATE"
	case BelowMinimumSpeedAndAboveMaximumFlowRate:
		return "BELOW_MINIMUM_SPEED_AND_ABOVE_MAXIMUM_FLOW_RATE"
	case NoFlowRate:
		return "NO_FLOW_RATE"
	case NotCalculated:
		return "NOT_CALCULATED"
	default:
		return "UNKNOWN"
	}
}

// CapacityResult is the outcome of evaluating a (rate, head) point against
// a chart's envelope (spec §4.2).
type CapacityResult struct {
	Rate                 float64
	Head                 float64
	CorrectedRate        float64
	CorrectedHead        float64
	RateHasRecirculation bool
	RateExceedsMaximum   bool
	PressureIsChoked     bool
	HeadExceedsMaximum   bool
}

// ExceedsCapacity reports whether the point lies past the stonewall or
// above the maximum-speed head curve.
func (r CapacityResult) ExceedsCapacity() bool {
	return r.RateExceedsMaximum || r.HeadExceedsMaximum
}

// AreaFlagFromCapacity derives a chart area flag from the capacity booleans
// and an independent below/above-speed-range classification, using the
// precedence order given in spec §4.2.
func AreaFlagFromCapacity(belowMinSpeed, aboveMaxSpeed bool, capacity CapacityResult) AreaFlag {
	switch {
	case belowMinSpeed && capacity.RateHasRecirculation:
		return BelowMinimumSpeedAndBelowMinimumFlowRate
	case belowMinSpeed && capacity.RateExceedsMaximum:
		return BelowMinimumSpeedAndAboveMaximumFlowRate
	case capacity.RateHasRecirculation:
		return BelowMinimumFlowRate
	case capacity.RateExceedsMaximum:
		return AboveMaximumFlowRate
	case belowMinSpeed:
		return BelowMinimumSpeed
	case aboveMaxSpeed:
		return AboveMaximumSpeed
	default:
		return InternalPoint
	}
}
