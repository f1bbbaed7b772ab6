// Package train solves a compressor train (an ordered sequence of
// stage.Stage sharing one shaft) for a target discharge pressure, applying
// variable-speed root-finding, single-speed pressure control, and the
// multi-stream intermediate-pressure split described in spec §4.4–§4.5.
// Grounded on variable_speed_compressor_train_common_shaft.py's
// CompressorTrainModel subclasses.
package train

// PressureControl selects how a train reconciles its free-running operating
// point with a discharge pressure target it cannot reach by speed alone
// (spec §4.4.3). Modeled as a sum type dispatched in the solver rather than
// a class hierarchy (spec §9).
type PressureControl int

const (
	// NoPressureControl disables secondary control; a train that can't
	// reach its target by speed alone simply fails.
	NoPressureControl PressureControl = iota
	UpstreamChoke
	DownstreamChoke
	IndividualASVRate
	IndividualASVPressure
	CommonASV
)

func (p PressureControl) String() string {
	switch p {
	case UpstreamChoke:
		return "UPSTREAM_CHOKE"
	case DownstreamChoke:
		return "DOWNSTREAM_CHOKE"
	case IndividualASVRate:
		return "INDIVIDUAL_ASV_RATE"
	case IndividualASVPressure:
		return "INDIVIDUAL_ASV_PRESSURE"
	case CommonASV:
		return "COMMON_ASV"
	case NoPressureControl:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// TargetPressureStatus reports how an evaluated operating point relates to
// its requested suction/discharge targets (spec §4.4, §9 — kept as a
// distinct enum from the stage-level chart AreaFlag).
type TargetPressureStatus int

const (
	TargetPressuresMet TargetPressureStatus = iota
	TargetDischargePressureTooHigh
	TargetDischargePressureTooLow
	TargetSuctionPressureNotMet
	AboveMaximumFlowRateStatus
	BelowMinimumFlowRateStatus
	NotCalculatedStatus
)

func (t TargetPressureStatus) String() string {
	switch t {
	case TargetDischargePressureTooHigh:
		return "TARGET_DISCHARGE_PRESSURE_TOO_HIGH"
	case TargetDischargePressureTooLow:
		return "TARGET_DISCHARGE_PRESSURE_TOO_LOW"
	case TargetSuctionPressureNotMet:
		return "TARGET_SUCTION_PRESSURE_NOT_MET"
	case AboveMaximumFlowRateStatus:
		return "ABOVE_MAXIMUM_FLOW_RATE"
	case BelowMinimumFlowRateStatus:
		return "BELOW_MINIMUM_FLOW_RATE"
	case NotCalculatedStatus:
		return "NOT_CALCULATED"
	case TargetPressuresMet:
		return "TARGET_PRESSURES_MET"
	default:
		return "UNKNOWN"
	}
}

// IsFailure reports whether the status represents a failed operating point.
func (t TargetPressureStatus) IsFailure() bool {
	return t != TargetPressuresMet
}
