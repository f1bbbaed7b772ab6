package train

import (
	"github.com/google/uuid"

	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/stage"
)

// Result is the outcome of evaluating an entire train at one operating
// point (spec §3 TrainResult).
type Result struct {
	CorrelationID uuid.UUID

	InletStream  *fluid.Stream
	OutletStream *fluid.Stream

	// OutletStreamBeforeChoking holds the train's computed outlet stream
	// prior to a DOWNSTREAM_CHOKE adjustment, nil otherwise.
	OutletStreamBeforeChoking *fluid.Stream

	StageResults []stage.Result

	SpeedRPM float64

	TargetPressureStatus TargetPressureStatus
	AboveMaximumPower     bool

	PowerRawMegawatt      float64
	PowerReportedMegawatt float64

	Valid bool
}

// TotalRawPowerMegawatt sums the raw (pre energy-adjustment) power across
// every stage.
func (r Result) TotalRawPowerMegawatt() float64 {
	var total float64
	for _, sr := range r.StageResults {
		total += sr.PowerMegawatt
	}
	return total
}
