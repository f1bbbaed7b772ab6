package train_test

import (
	"testing"

	"github.com/processcore/compressor/stage"
	"github.com/processcore/compressor/train"
)

func testMultiStreamStages(t *testing.T) []*stage.Stage {
	t.Helper()
	return []*stage.Stage{testVariableSpeedStage(t), testVariableSpeedStage(t)}
}

func TestEvaluateSingleSplitWithNoSideStreamsMatchesSingleStreamTrain(t *testing.T) {
	stages := testMultiStreamStages(t)
	inlet := testInletStream(t)
	massRate, err := inlet.StandardRateToMassRate(2_500_000)
	if err != nil {
		t.Fatalf("standard rate to mass rate: %v", err)
	}

	mt, err := train.NewMultiStream(train.MultiStreamConfig{
		Config: train.Config{Stages: stages},
		Streams: []train.StreamRef{
			{StageIndex: 0, Direction: train.StreamIn, Fluid: inlet},
		},
	})
	if err != nil {
		t.Fatalf("NewMultiStream: %v", err)
	}

	result, err := mt.Evaluate(inlet, []float64{2_500_000}, inlet.Conditions().PressureBara, 65, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.TargetPressureStatus != train.TargetPressuresMet {
		t.Fatalf("expected target pressures met, got %s", result.TargetPressureStatus)
	}
	if result.OutletStream.MassRateKgPerHour()-massRate > 1e-6 {
		t.Fatalf("expected outlet mass rate to match inlet mass rate absent side streams")
	}
}

func TestEvaluatePropagatesMismatchedStreamRateLengthAsError(t *testing.T) {
	stages := testMultiStreamStages(t)
	inlet := testInletStream(t)

	mt, err := train.NewMultiStream(train.MultiStreamConfig{
		Config: train.Config{Stages: stages},
		Streams: []train.StreamRef{
			{StageIndex: 0, Direction: train.StreamIn, Fluid: inlet},
		},
	})
	if err != nil {
		t.Fatalf("NewMultiStream: %v", err)
	}

	_, err = mt.Evaluate(inlet, []float64{1, 2}, inlet.Conditions().PressureBara, 65, nil)
	if err == nil {
		t.Fatalf("expected a stream-rate length mismatch to propagate as a programming error, not be swallowed into a result")
	}
}

func TestEvaluateDetectsMassBalanceViolation(t *testing.T) {
	stages := testMultiStreamStages(t)
	inlet := testInletStream(t)

	mt, err := train.NewMultiStream(train.MultiStreamConfig{
		Config: train.Config{Stages: stages},
		Streams: []train.StreamRef{
			{StageIndex: 0, Direction: train.StreamIn, Fluid: inlet},
			{StageIndex: 0, Direction: train.StreamOut, Fluid: inlet},
		},
	})
	if err != nil {
		t.Fatalf("NewMultiStream: %v", err)
	}

	result, err := mt.Evaluate(inlet, []float64{1_000_000, 2_000_000}, inlet.Conditions().PressureBara, 65, nil)
	if err != nil {
		t.Fatalf("Evaluate should report the mass-balance failure through the result, not an error: %v", err)
	}
	if result.TargetPressureStatus != train.NotCalculatedStatus {
		t.Fatalf("expected NotCalculatedStatus for an outlet draw exceeding the cumulative inlet, got %s", result.TargetPressureStatus)
	}
	if result.Valid {
		t.Fatalf("a mass-balance violation must not be reported as a valid operating point")
	}
}

func TestNewMultiStreamRejectsOutOfRangeInterstageIndex(t *testing.T) {
	stages := testMultiStreamStages(t)
	inlet := testInletStream(t)
	badIndex := len(stages)

	_, err := train.NewMultiStream(train.MultiStreamConfig{
		Config:                  train.Config{Stages: stages},
		Streams:                 []train.StreamRef{{StageIndex: 0, Direction: train.StreamIn, Fluid: inlet}},
		InterstagePressureIndex: &badIndex,
	})
	if err == nil {
		t.Fatalf("expected an error for an interstage pressure index at the train length")
	}
}

func TestNewMultiStreamRejectsZeroStages(t *testing.T) {
	_, err := train.NewMultiStream(train.MultiStreamConfig{})
	if err == nil {
		t.Fatalf("expected an error for a train with no stages")
	}
}

func TestEvaluateWithIntermediateSplitReachesBothTargets(t *testing.T) {
	stages := testMultiStreamStages(t)
	inlet := testInletStream(t)
	splitIndex := 1

	mt, err := train.NewMultiStream(train.MultiStreamConfig{
		Config: train.Config{Stages: stages},
		Streams: []train.StreamRef{
			{StageIndex: 0, Direction: train.StreamIn, Fluid: inlet},
		},
		InterstagePressureIndex: &splitIndex,
	})
	if err != nil {
		t.Fatalf("NewMultiStream: %v", err)
	}

	intermediate := 45.0
	result, err := mt.Evaluate(inlet, []float64{2_500_000}, inlet.Conditions().PressureBara, 65, &intermediate)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(result.StageResults) != len(stages) {
		t.Fatalf("expected one StageResult per stage across both sub-trains, got %d", len(result.StageResults))
	}
	if result.SpeedRPM <= 0 {
		t.Fatalf("expected a positive governing speed, got %g", result.SpeedRPM)
	}
}

func TestGetMaxRateForStreamReturnsAnIncreasedRate(t *testing.T) {
	stages := testMultiStreamStages(t)
	inlet := testInletStream(t)

	mt, err := train.NewMultiStream(train.MultiStreamConfig{
		Config: train.Config{Stages: stages},
		Streams: []train.StreamRef{
			{StageIndex: 0, Direction: train.StreamIn, Fluid: inlet},
		},
	})
	if err != nil {
		t.Fatalf("NewMultiStream: %v", err)
	}

	base := []float64{1_000_000}
	maxRate, err := mt.GetMaxRateForStream(inlet, base, 0, inlet.Conditions().PressureBara, 65, nil)
	if err != nil {
		t.Fatalf("GetMaxRateForStream: %v", err)
	}
	if maxRate <= base[0] {
		t.Fatalf("expected the maximum feasible rate to exceed the base rate, got %g vs base %g", maxRate, base[0])
	}
}

func TestGetMaxRateForStreamRejectsOutOfRangeIndex(t *testing.T) {
	stages := testMultiStreamStages(t)
	inlet := testInletStream(t)

	mt, err := train.NewMultiStream(train.MultiStreamConfig{
		Config:  train.Config{Stages: stages},
		Streams: []train.StreamRef{{StageIndex: 0, Direction: train.StreamIn, Fluid: inlet}},
	})
	if err != nil {
		t.Fatalf("NewMultiStream: %v", err)
	}

	_, err = mt.GetMaxRateForStream(inlet, []float64{1_000_000}, 3, inlet.Conditions().PressureBara, 65, nil)
	if err == nil {
		t.Fatalf("expected an error for a stream index outside the base-rates slice")
	}
}

func TestResetRecirculationStateOnMultiStreamTrainClearsCache(t *testing.T) {
	stages := testMultiStreamStages(t)
	inlet := testInletStream(t)

	mt, err := train.NewMultiStream(train.MultiStreamConfig{
		Config:  train.Config{Stages: stages},
		Streams: []train.StreamRef{{StageIndex: 0, Direction: train.StreamIn, Fluid: inlet}},
	})
	if err != nil {
		t.Fatalf("NewMultiStream: %v", err)
	}
	mt.ResetRecirculationState()
}
