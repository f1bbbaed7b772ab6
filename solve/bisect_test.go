package solve_test

import (
	"math"
	"testing"

	"github.com/processcore/compressor/solve"
)

func TestMaximizeWhereFindsThreshold(t *testing.T) {
	condition := func(x float64) bool { return x <= 4.25 }
	got, err := solve.MaximizeWhere(condition, 0, 10, 1e-6)
	if err != nil {
		t.Fatalf("MaximizeWhere: %v", err)
	}
	if math.Abs(got-4.25) > 1e-3 {
		t.Fatalf("expected threshold near 4.25, got %v", got)
	}
}

func TestMaximizeWhereReturnsHiWhenAlwaysTrue(t *testing.T) {
	condition := func(float64) bool { return true }
	got, err := solve.MaximizeWhere(condition, 0, 10, 1e-6)
	if err != nil {
		t.Fatalf("MaximizeWhere: %v", err)
	}
	if got != 10 {
		t.Fatalf("expected hi bound 10, got %v", got)
	}
}

func TestMaximizeWhereErrorsWhenNeverTrue(t *testing.T) {
	condition := func(float64) bool { return false }
	_, err := solve.MaximizeWhere(condition, 0, 10, 1e-6)
	if err == nil {
		t.Fatal("expected error when condition never holds")
	}
}
