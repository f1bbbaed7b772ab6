package train_test

import (
	"testing"

	"github.com/processcore/compressor/stage"
	"github.com/processcore/compressor/train"
)

func TestDownstreamChokeMeetsLowTarget(t *testing.T) {
	tr, err := train.New(train.Config{
		Stages:          []*stage.Stage{testVariableSpeedStage(t)},
		PressureControl: train.DownstreamChoke,
	})
	if err != nil {
		t.Fatalf("train.New: %v", err)
	}
	inlet := testInletStream(t)
	massRate, err := inlet.StandardRateToMassRate(2_500_000)
	if err != nil {
		t.Fatalf("standard rate to mass rate: %v", err)
	}

	lowTarget := inlet.Conditions().PressureBara + 1

	result, err := tr.EvaluateRatePsPd(inlet, massRate, lowTarget)
	if err != nil {
		t.Fatalf("EvaluateRatePsPd: %v", err)
	}
	if result.OutletStream.Conditions().PressureBara-lowTarget > 0.1 {
		t.Fatalf("expected choked outlet pressure near target %g, got %g", lowTarget, result.OutletStream.Conditions().PressureBara)
	}
	if result.OutletStreamBeforeChoking == nil {
		t.Fatalf("expected OutletStreamBeforeChoking to be populated for DOWNSTREAM_CHOKE")
	}
}

func TestDownstreamChokeReportsTooHighWhenUnreachable(t *testing.T) {
	// A single-speed train has no speed to solve for, so a mismatched
	// target always routes through applyPressureControl regardless of
	// over/undershoot direction — the only path that exercises a downstream
	// choke's "target above what the train can produce" branch.
	tr, err := train.New(train.Config{
		Stages:          []*stage.Stage{testSingleSpeedStage(t)},
		PressureControl: train.DownstreamChoke,
	})
	if err != nil {
		t.Fatalf("train.New: %v", err)
	}
	inlet := testInletStream(t)
	massRate, err := inlet.StandardRateToMassRate(2_500_000)
	if err != nil {
		t.Fatalf("standard rate to mass rate: %v", err)
	}

	// A downstream choke can only lower discharge pressure, never raise it,
	// so a target above the train's free-running maximum stays unreachable.
	result, err := tr.EvaluateRatePsPd(inlet, massRate, 1000)
	if err != nil {
		t.Fatalf("EvaluateRatePsPd: %v", err)
	}
	if result.TargetPressureStatus != train.TargetDischargePressureTooHigh {
		t.Fatalf("expected an unreachable target to report target too high, got %s", result.TargetPressureStatus)
	}
	if result.Valid {
		t.Fatalf("expected an unreachable target to be invalid")
	}
}

func TestIndividualASVRateMeetsLowTarget(t *testing.T) {
	tr, err := train.New(train.Config{
		Stages:          []*stage.Stage{testSingleSpeedStage(t)},
		PressureControl: train.IndividualASVRate,
	})
	if err != nil {
		t.Fatalf("train.New: %v", err)
	}
	inlet := testInletStream(t)
	massRate, err := inlet.StandardRateToMassRate(2_500_000)
	if err != nil {
		t.Fatalf("standard rate to mass rate: %v", err)
	}

	unconstrained, err := tr.EvaluateRatePsPd(inlet, massRate, 0)
	if err != nil {
		t.Fatalf("EvaluateRatePsPd: %v", err)
	}
	lowTarget := inlet.Conditions().PressureBara + (unconstrained.OutletStream.Conditions().PressureBara-inlet.Conditions().PressureBara)*0.5

	result, err := tr.EvaluateRatePsPd(inlet, massRate, lowTarget)
	if err != nil {
		t.Fatalf("EvaluateRatePsPd: %v", err)
	}
	if result.TargetPressureStatus != train.TargetPressuresMet {
		t.Fatalf("expected ASV recirculation to meet a lower target, got %s", result.TargetPressureStatus)
	}
}
