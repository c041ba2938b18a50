package encoder

import (
	"math"
	"testing"
)

func TestMeanPoolIgnoresPadding(t *testing.T) {
	hidden := [][]float32{
		{2, 0},
		{4, 0},
		{99, 99},
	}
	mask := []int{1, 1, 0}

	got := MeanPool(hidden, mask)

	want := []float32{3, 0}
	if len(got) != len(want) {
		t.Fatalf("expected %d dims, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("dim %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestMeanPoolAllTokensReal(t *testing.T) {
	hidden := [][]float32{
		{1, 10},
		{3, 20},
	}
	mask := []int{1, 1}

	got := MeanPool(hidden, mask)

	if got[0] != 2 || got[1] != 15 {
		t.Errorf("expected [2 15], got %v", got)
	}
}

func TestMeanPoolAllMasked(t *testing.T) {
	// Fully masked input must not divide by zero; the floored denominator
	// keeps the output finite.
	hidden := [][]float32{
		{5, 5},
	}
	mask := []int{0}

	got := MeanPool(hidden, mask)

	if len(got) != 2 {
		t.Fatalf("expected 2 dims, got %d", len(got))
	}
	for i, v := range got {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Errorf("dim %d: expected finite value, got %f", i, v)
		}
	}
}

func TestMeanPoolShortMaskTreatedAsPadding(t *testing.T) {
	hidden := [][]float32{
		{2},
		{4},
		{100},
	}
	mask := []int{1, 1}

	got := MeanPool(hidden, mask)

	if got[0] != 3 {
		t.Errorf("expected 3, got %f", got[0])
	}
}

func TestMeanPoolEmpty(t *testing.T) {
	if got := MeanPool(nil, nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}
