package chart_test

import (
	"math"
	"testing"

	"github.com/processcore/compressor/chart"
)

func sampleCurve(t *testing.T) *chart.Curve {
	t.Helper()
	c, err := chart.NewCurve(
		[]float64{1000, 2000, 3000, 4000},
		[]float64{12000, 11000, 9500, 7000},
		[]float64{0.70, 0.78, 0.80, 0.74},
		10000,
	)
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}
	return c
}

func TestNewCurveRejectsNonMonotoneRate(t *testing.T) {
	_, err := chart.NewCurve([]float64{1000, 900}, []float64{1, 2}, []float64{0.5, 0.5}, 1000)
	if err == nil {
		t.Fatal("expected error for non-ascending rate")
	}
}

func TestNewCurveRejectsBadEfficiency(t *testing.T) {
	_, err := chart.NewCurve([]float64{1000, 2000}, []float64{1, 2}, []float64{0.5, 1.2}, 1000)
	if err == nil {
		t.Fatal("expected error for efficiency above 1")
	}
}

func TestHeadAtInterpolatesAndExtrapolatesFlat(t *testing.T) {
	c := sampleCurve(t)
	if got := c.HeadAt(2500); math.Abs(got-10250) > 1e-9 {
		t.Fatalf("expected midpoint head 10250, got %v", got)
	}
	if got := c.HeadAt(0); got != 12000 {
		t.Fatalf("expected flat extrapolation below range to return 12000, got %v", got)
	}
	if got := c.HeadAt(10000); got != 7000 {
		t.Fatalf("expected flat extrapolation above range to return 7000, got %v", got)
	}
}

func TestMinimumMaximumRate(t *testing.T) {
	c := sampleCurve(t)
	if c.MinimumRate() != 1000 || c.MaximumRate() != 4000 {
		t.Fatalf("unexpected min/max rate: %v %v", c.MinimumRate(), c.MaximumRate())
	}
}

func TestDistanceAndEfficiencyAtOnCurveIsZero(t *testing.T) {
	c := sampleCurve(t)
	d, eff := c.DistanceAndEfficiencyAt(2000, 11000)
	if math.Abs(d) > 1e-6 {
		t.Fatalf("expected ~0 distance for point on curve, got %v", d)
	}
	if math.Abs(eff-0.78) > 1e-6 {
		t.Fatalf("expected efficiency 0.78 at curve point, got %v", eff)
	}
}

func TestDistanceAndEfficiencyAtSignConvention(t *testing.T) {
	c := sampleCurve(t)
	below, _ := c.DistanceAndEfficiencyAt(2000, 5000)
	if below >= 0 {
		t.Fatalf("expected negative distance for point below curve, got %v", below)
	}
	above, _ := c.DistanceAndEfficiencyAt(2000, 20000)
	if above <= 0 {
		t.Fatalf("expected positive distance for point above curve, got %v", above)
	}
}

func TestAdjustForControlMarginTrimsAndRecomputes(t *testing.T) {
	c := sampleCurve(t)
	adjusted := c.AdjustForControlMargin(0.1)
	wantMin := 1000 + 0.1*(4000-1000)
	if math.Abs(adjusted.MinimumRate()-wantMin) > 1e-9 {
		t.Fatalf("expected new minimum rate %v, got %v", wantMin, adjusted.MinimumRate())
	}
	if adjusted.MaximumRate() != c.MaximumRate() {
		t.Fatalf("expected maximum rate unchanged, got %v", adjusted.MaximumRate())
	}
}

func TestAdjustForControlMarginZeroIsNoOp(t *testing.T) {
	c := sampleCurve(t)
	adjusted := c.AdjustForControlMargin(0)
	if adjusted.MinimumRate() != c.MinimumRate() || adjusted.MaximumRate() != c.MaximumRate() {
		t.Fatalf("expected zero margin to leave curve unchanged")
	}
}

func TestIsFullyEfficient(t *testing.T) {
	full, err := chart.NewCurve([]float64{1, 2}, []float64{1, 1}, []float64{1, 1}, 1000)
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}
	if !full.IsFullyEfficient() {
		t.Fatalf("expected fully efficient curve")
	}
	if sampleCurve(t).IsFullyEfficient() {
		t.Fatalf("expected sample curve to not be fully efficient")
	}
}
