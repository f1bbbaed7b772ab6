package stage_test

import (
	"testing"

	"github.com/processcore/compressor/chart"
	"github.com/processcore/compressor/fluid"
	"github.com/processcore/compressor/fluid/idealgas"
	"github.com/processcore/compressor/stage"
)

func testChart(t *testing.T) *chart.VariableSpeedChart {
	t.Helper()
	low, err := chart.NewCurve(
		[]float64{2000, 4000, 6000},
		[]float64{7000, 6200, 4800},
		[]float64{0.72, 0.78, 0.73},
		7000,
	)
	if err != nil {
		t.Fatalf("low curve: %v", err)
	}
	high, err := chart.NewCurve(
		[]float64{3000, 6000, 9000},
		[]float64{13000, 11500, 9000},
		[]float64{0.70, 0.80, 0.71},
		12000,
	)
	if err != nil {
		t.Fatalf("high curve: %v", err)
	}
	vsc, err := chart.NewVariableSpeedChart([]*chart.Curve{low, high})
	if err != nil {
		t.Fatalf("NewVariableSpeedChart: %v", err)
	}
	return vsc
}

func testInletStream(t *testing.T) *fluid.Stream {
	t.Helper()
	thermo := idealgas.New()
	composition, err := fluid.NewFluidComposition(map[string]float64{
		"methane":  0.85,
		"ethane":   0.08,
		"propane":  0.03,
		"co2":      0.02,
		"nitrogen": 0.02,
	})
	if err != nil {
		t.Fatalf("composition: %v", err)
	}
	conditions, err := fluid.NewProcessConditions(30, 303.15)
	if err != nil {
		t.Fatalf("conditions: %v", err)
	}
	s, err := fluid.New(thermo, composition, fluid.SRK, conditions, 0)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	return s
}

func TestStageEvaluateProducesValidPoint(t *testing.T) {
	cfg := stage.Config{
		Chart:                  testChart(t),
		InletTemperatureKelvin: 303.15,
	}
	st, err := stage.New(cfg)
	if err != nil {
		t.Fatalf("stage.New: %v", err)
	}
	inlet := testInletStream(t)
	massRate, err := inlet.StandardRateToMassRate(3_000_000)
	if err != nil {
		t.Fatalf("standard rate to mass rate: %v", err)
	}
	result, err := st.Evaluate(inlet, 9500, massRate, 0, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if result.PolytropicHeadJoulePerKg <= 0 {
		t.Fatalf("expected positive polytropic head, got %v", result.PolytropicHeadJoulePerKg)
	}
	if result.PolytropicEfficiency <= 0 || result.PolytropicEfficiency > 1 {
		t.Fatalf("expected efficiency in (0,1], got %v", result.PolytropicEfficiency)
	}
	if result.PowerMegawatt <= 0 {
		t.Fatalf("expected positive power, got %v", result.PowerMegawatt)
	}
	if result.OutletStream.Conditions().PressureBara <= inlet.Conditions().PressureBara {
		t.Fatalf("expected outlet pressure to exceed inlet pressure")
	}
}

func TestStageEvaluateRejectsInvalidAsvFraction(t *testing.T) {
	cfg := stage.Config{
		Chart:                  testChart(t),
		InletTemperatureKelvin: 303.15,
	}
	st, err := stage.New(cfg)
	if err != nil {
		t.Fatalf("stage.New: %v", err)
	}
	inlet := testInletStream(t)
	_, err = st.Evaluate(inlet, 9500, 100000, 1.5, 0)
	if err == nil {
		t.Fatal("expected error for out-of-range asv fraction")
	}
}

func TestStageEvaluateFlagsRecirculationBelowMinimumRate(t *testing.T) {
	cfg := stage.Config{
		Chart:                  testChart(t),
		InletTemperatureKelvin: 303.15,
	}
	st, err := stage.New(cfg)
	if err != nil {
		t.Fatalf("stage.New: %v", err)
	}
	inlet := testInletStream(t)
	massRate, err := inlet.StandardRateToMassRate(100_000)
	if err != nil {
		t.Fatalf("standard rate to mass rate: %v", err)
	}
	result, err := st.Evaluate(inlet, 9500, massRate, 0, 0)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !result.Capacity.RateHasRecirculation {
		t.Fatalf("expected low-rate point to trigger recirculation flag")
	}
}
