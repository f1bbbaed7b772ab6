package sampled3d_test

import (
	"math"
	"testing"

	"github.com/processcore/compressor/sampled3d"
)

func gridSamples() []sampled3d.Sample {
	var samples []sampled3d.Sample
	for _, rate := range []float64{1000, 2000, 3000, 4000} {
		for _, ps := range []float64{10, 20, 30} {
			for _, pd := range []float64{40, 60, 80} {
				samples = append(samples, sampled3d.Sample{
					RateActualM3PerHour:   rate,
					SuctionPressureBara:   ps,
					DischargePressureBara: pd,
					Value:                 rate*0.01 + ps*0.1 + pd*0.2,
				})
			}
		}
	}
	return samples
}

func TestEvaluateInsideEnvelopeMatchesLinearFunction(t *testing.T) {
	m, err := sampled3d.New(gridSamples(), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := m.Evaluate(2500, 20, 60)
	want := 2500*0.01 + 20*0.1 + 60*0.2
	if math.Abs(got-want) > 1.0 {
		t.Errorf("Evaluate() = %g, want close to %g", got, want)
	}
}

func TestEvaluateOutsideEnvelopeProjectsRate(t *testing.T) {
	m, err := sampled3d.New(gridSamples(), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := m.Evaluate(100, 20, 60)
	if math.IsNaN(got) {
		t.Errorf("Evaluate() below the minimum rate should project, got NaN")
	}
}

func TestGetMaxRateReturnsFiniteValue(t *testing.T) {
	m, err := sampled3d.New(gridSamples(), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rate, err := m.GetMaxRate(20, 60)
	if err != nil {
		t.Fatalf("GetMaxRate: %v", err)
	}
	if rate <= 0 {
		t.Errorf("GetMaxRate() = %g, want > 0", rate)
	}
}

func TestNewRejectsTooFewSamples(t *testing.T) {
	_, err := sampled3d.New([]sampled3d.Sample{{RateActualM3PerHour: 1, SuctionPressureBara: 1, DischargePressureBara: 1, Value: 1}}, false)
	if err == nil {
		t.Fatal("expected error for too few samples")
	}
}

func TestNewRescalesRateAxis(t *testing.T) {
	m, err := sampled3d.New(gridSamples(), true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := m.Evaluate(2500, 20, 60)
	if math.IsNaN(got) {
		t.Errorf("Evaluate() with rescaling returned NaN for an in-envelope point")
	}
}
