package neuralnet

import "github.com/pkg/errors"

// Sample is one labeled feature vector. Label is the one-vs-rest indicator
// (+1 target, -1 otherwise) used by the linear and RBF models; Target is the
// one-hot vector used by the MLP.
type Sample struct {
	Features []float64
	Label    float64
	Target   []float64
}

// Class returns the index of the hot entry of Target, or -1 if there is none.
func (s Sample) Class() int {
	for i, v := range s.Target {
		if v == 1 {
			return i
		}
	}
	return -1
}

// OneHot returns a vector of length n with a 1 at index class.
func OneHot(class, n int) []float64 {
	v := make([]float64, n)
	if class >= 0 && class < n {
		v[class] = 1
	}
	return v
}

// CheckDims verifies that every sample has dim features.
func CheckDims(samples []Sample, dim int) error {
	for i, s := range samples {
		if len(s.Features) != dim {
			return errors.Wrapf(ErrDimensionMismatch, "sample %d has %d features, want %d", i, len(s.Features), dim)
		}
	}
	return nil
}
