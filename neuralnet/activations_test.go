package neuralnet

import (
	"math"
	"testing"
)

func TestSigmoidActivate(t *testing.T) {
	s := Sigmoid{}
	if got := s.Activate(0); !floatEquals(got, 0.5, 1e-9) {
		t.Errorf("Sigmoid.Activate(0) = %v; want 0.5", got)
	}
	if got := s.Activate(40); !floatEquals(got, 1, 1e-9) {
		t.Errorf("Sigmoid.Activate(40) = %v; want ~1", got)
	}
}

func TestSigmoidDerivativeUsesOutput(t *testing.T) {
	s := Sigmoid{}
	a := s.Activate(0.3)
	if got, want := s.Derivative(a), a*(1-a); got != want {
		t.Errorf("Sigmoid.Derivative(%v) = %v; want %v", a, got, want)
	}
}

func TestSoftmax(t *testing.T) {
	tests := []struct {
		name   string
		logits []float64
	}{
		{"zeros", []float64{0, 0, 0}},
		{"mixed", []float64{-2, 0.5, 3}},
		{"large", []float64{1000, 999, -1000}},
		{"single", []float64{42}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Softmax(tt.logits)
			var sum float64
			for i, p := range out {
				if math.IsNaN(p) || p < 0 || p > 1 {
					t.Fatalf("Softmax[%d] = %v; want a probability", i, p)
				}
				sum += p
			}
			if !floatEquals(sum, 1, 1e-9) {
				t.Errorf("sum(Softmax) = %v; want 1", sum)
			}
		})
	}
}

func TestSoftmaxOrdering(t *testing.T) {
	out := Softmax([]float64{1, 2, 3})
	if !(out[0] < out[1] && out[1] < out[2]) {
		t.Errorf("Softmax([1 2 3]) = %v; want increasing", out)
	}
}
