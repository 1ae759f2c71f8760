package neuralnet

import "math"

// DefaultEpsilon bounds probabilities away from 0 and 1 before taking logs.
const DefaultEpsilon = 1e-7

// LossFunction defines the interface for computing loss and its gradient.
type LossFunction interface {
	// Compute returns the loss value given the model output and target.
	Compute(output []float64, target []float64) float64
	// Gradient returns the gradient ∂L/∂output for each output neuron.
	Gradient(output []float64, target []float64) []float64
}

// CrossEntropy is the per-output binary cross-entropy summed over a one-hot
// target: -ln(o) for the true class and -ln(1-o) for every other one.
type CrossEntropy struct {
	Epsilon float64
}

func (ce *CrossEntropy) eps() float64 {
	if ce.Epsilon <= 0 {
		return DefaultEpsilon
	}
	return ce.Epsilon
}

// Compute returns the clamped cross-entropy loss. It is finite for every
// output in [0,1]. Only the common prefix of output and target is compared.
func (ce *CrossEntropy) Compute(output []float64, target []float64) float64 {
	eps := ce.eps()
	var loss float64
	for i := 0; i < min(len(output), len(target)); i++ {
		p := clamp(output[i], eps, 1-eps)
		if target[i] == 1 {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}
	return loss
}

// Gradient returns (output - target), the error signal fed back into the
// output layer with its sign flipped.
func (ce *CrossEntropy) Gradient(output []float64, target []float64) []float64 {
	grad := make([]float64, len(output))
	for i := 0; i < min(len(output), len(target)); i++ {
		grad[i] = output[i] - target[i]
	}
	return grad
}

// SquaredError is Σ (t-o)², the cost the linear and RBF models are monitored with.
type SquaredError struct{}

func (se SquaredError) Compute(output []float64, target []float64) float64 {
	var loss float64
	for i := 0; i < min(len(output), len(target)); i++ {
		d := target[i] - output[i]
		loss += d * d
	}
	return loss
}

func (se SquaredError) Gradient(output []float64, target []float64) []float64 {
	grad := make([]float64, len(output))
	for i := 0; i < min(len(output), len(target)); i++ {
		grad[i] = 2 * (output[i] - target[i])
	}
	return grad
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
