package numeric_test

import (
	"math"
	"testing"

	"github.com/processcore/compressor/internal/numeric"
)

func TestMeanStdDevFallsBackOnConstantInput(t *testing.T) {
	mean, std := numeric.MeanStdDev([]float64{5, 5, 5})
	if mean != 5 {
		t.Fatalf("expected mean 5, got %v", mean)
	}
	if std != 1 {
		t.Fatalf("expected fallback stddev 1, got %v", std)
	}
}

func TestCumulativeSum(t *testing.T) {
	got := numeric.CumulativeSum([]float64{1, 2, 3})
	want := []float64{1, 3, 6}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("cumulative sum mismatch at %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestMaxAbs(t *testing.T) {
	if got := numeric.MaxAbs([]float64{-3, 1, 2}); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}
}
