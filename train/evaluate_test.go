package train_test

import (
	"testing"

	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/fluid/idealgas"
	"github.com/processcore/compressor/stage"
	"github.com/processcore/compressor/train"
)

func testFluidModel() fluid.FluidModel {
	composition, err := fluid.NewFluidComposition(map[string]float64{
		"methane":  0.85,
		"ethane":   0.08,
		"propane":  0.03,
		"co2":      0.02,
		"nitrogen": 0.02,
	})
	if err != nil {
		panic(err)
	}
	return fluid.NewFluidModel(idealgas.New(), composition, fluid.SRK)
}

func TestNewVariableSpeedTrainEvaluateBuildsStreamAndSolves(t *testing.T) {
	st := testVariableSpeedStage(t)
	tr, err := train.NewVariableSpeedTrain([]*stage.Stage{st}, testFluidModel(), train.NoPressureControl, nil, nil, 0, 1)
	if err != nil {
		t.Fatalf("NewVariableSpeedTrain: %v", err)
	}

	result, err := tr.Evaluate(2_500_000, 30, 303.15, 65)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.TargetPressureStatus != train.TargetPressuresMet {
		t.Fatalf("expected target pressures met, got %s", result.TargetPressureStatus)
	}
}

func TestNewSingleSpeedTrainRejectsVariableSpeedStages(t *testing.T) {
	st := testVariableSpeedStage(t)
	_, err := train.NewSingleSpeedTrain([]*stage.Stage{st}, testFluidModel(), train.NoPressureControl, nil, nil, 0, 1)
	if err == nil {
		t.Fatalf("expected new_single_speed_train to reject a stage spanning a shaft-speed range")
	}
}

func TestNewVariableSpeedTrainRejectsSingleSpeedStages(t *testing.T) {
	st := testSingleSpeedStage(t)
	_, err := train.NewVariableSpeedTrain([]*stage.Stage{st}, testFluidModel(), train.NoPressureControl, nil, nil, 0, 1)
	if err == nil {
		t.Fatalf("expected new_variable_speed_train to reject a single-speed-only stage")
	}
}

func TestNewSingleSpeedTrainAcceptsSingleSpeedStages(t *testing.T) {
	st := testSingleSpeedStage(t)
	tr, err := train.NewSingleSpeedTrain([]*stage.Stage{st}, testFluidModel(), train.NoPressureControl, nil, nil, 0, 1)
	if err != nil {
		t.Fatalf("NewSingleSpeedTrain: %v", err)
	}
	if tr == nil {
		t.Fatalf("expected a non-nil train")
	}
}

func TestEvaluateWithoutFluidModelFails(t *testing.T) {
	tr, err := train.New(train.Config{Stages: []*stage.Stage{testVariableSpeedStage(t)}})
	if err != nil {
		t.Fatalf("train.New: %v", err)
	}
	_, err = tr.Evaluate(2_500_000, 30, 303.15, 65)
	if err == nil {
		t.Fatalf("expected Evaluate to fail on a train with no fluid model")
	}
}

func TestEvaluateBatchRunsEveryPoint(t *testing.T) {
	st := testVariableSpeedStage(t)
	tr, err := train.NewVariableSpeedTrain([]*stage.Stage{st}, testFluidModel(), train.NoPressureControl, nil, nil, 0, 1)
	if err != nil {
		t.Fatalf("NewVariableSpeedTrain: %v", err)
	}

	results, err := tr.EvaluateBatch(
		[]float64{2_000_000, 2_500_000},
		[]float64{30, 30},
		[]float64{303.15, 303.15},
		[]float64{60, 65},
	)
	if err != nil {
		t.Fatalf("EvaluateBatch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.TargetPressureStatus != train.TargetPressuresMet {
			t.Fatalf("point %d: expected target pressures met, got %s", i, r.TargetPressureStatus)
		}
	}
}

func TestEvaluateBatchRejectsMismatchedVectorLengths(t *testing.T) {
	st := testVariableSpeedStage(t)
	tr, err := train.NewVariableSpeedTrain([]*stage.Stage{st}, testFluidModel(), train.NoPressureControl, nil, nil, 0, 1)
	if err != nil {
		t.Fatalf("NewVariableSpeedTrain: %v", err)
	}

	_, err = tr.EvaluateBatch([]float64{2_000_000}, []float64{30, 30}, []float64{303.15}, []float64{65})
	if err == nil {
		t.Fatalf("expected an error for mismatched evaluate_batch vector lengths")
	}
}

func TestGetMaxStandardRateBatchReturnsOnePointPerPair(t *testing.T) {
	st := testVariableSpeedStage(t)
	tr, err := train.NewVariableSpeedTrain([]*stage.Stage{st}, testFluidModel(), train.NoPressureControl, nil, nil, 0, 1)
	if err != nil {
		t.Fatalf("NewVariableSpeedTrain: %v", err)
	}

	rates, err := tr.GetMaxStandardRateBatch([]float64{30, 30}, []float64{60, 65}, 303.15)
	if err != nil {
		t.Fatalf("GetMaxStandardRateBatch: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(rates))
	}
	for i, r := range rates {
		if r <= 0 {
			t.Fatalf("point %d: expected a positive maximum rate, got %g", i, r)
		}
	}
}
