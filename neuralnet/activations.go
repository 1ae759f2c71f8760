package neuralnet

import "math"

// ActivationFunction maps a neuron's weighted sum to its output. Derivative
// takes the already activated output, which is what the backward pass caches.
type ActivationFunction interface {
	Activate(x float64) float64
	Derivative(a float64) float64
}

type Sigmoid struct{}

func (s Sigmoid) Activate(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Derivative returns a*(1-a) for an output a = Activate(x).
func (s Sigmoid) Derivative(a float64) float64 {
	return a * (1 - a)
}

// Softmax normalizes logits into a probability distribution. The maximum is
// subtracted before exponentiation so large logits do not overflow.
func Softmax(logits []float64) []float64 {
	out := make([]float64, len(logits))
	if len(logits) == 0 {
		return out
	}
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
