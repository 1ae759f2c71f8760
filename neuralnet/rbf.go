package neuralnet

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// CenterInit selects how RBF centers are set at construction.
type CenterInit int

const (
	// ZeroCenters leaves centers at the origin until training seeds them from data.
	ZeroCenters CenterInit = iota
	// RandomCenters draws each center coordinate uniformly from [0, 1].
	RandomCenters
)

// CenterMode selects whether training moves the centers.
type CenterMode int

const (
	// FixedCenters only trains the output weights.
	FixedCenters CenterMode = iota
	// DriftCenters also pulls every center toward a random training sample
	// once per epoch.
	DriftCenters
)

// RBFNetwork is a Gaussian radial-basis-function network with a single linear
// output. weights[0] is the bias; weights[i+1] belongs to centers[i].
type RBFNetwork struct {
	centers [][]float64
	weights []float64
	beta    float64
	mode    CenterMode
	seeded  bool
	metric  float64
	rng     Rand
}

// RBFOption configures an RBFNetwork.
type RBFOption func(*RBFNetwork)

// WithCenterMode selects between fixed and drifting centers.
func WithCenterMode(m CenterMode) RBFOption {
	return func(r *RBFNetwork) { r.mode = m }
}

// NewRBFNetwork builds a network with numCenters centers of width inputDim.
// Output weights start at zero.
func NewRBFNetwork(numCenters, inputDim int, beta float64, init CenterInit, rng Rand, opts ...RBFOption) (*RBFNetwork, error) {
	if !(beta > 0) {
		return nil, errors.Wrapf(ErrInvalidBeta, "beta %v", beta)
	}
	r := &RBFNetwork{
		centers: make([][]float64, numCenters),
		weights: make([]float64, numCenters+1),
		beta:    beta,
		rng:     rng,
	}
	for i := range r.centers {
		r.centers[i] = make([]float64, inputDim)
		if init == RandomCenters {
			for j := range r.centers[i] {
				r.centers[i][j] = rng.Float64()
			}
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *RBFNetwork) Kind() Kind { return RBF }

func (r *RBFNetwork) InputDim() int {
	if len(r.centers) == 0 {
		return 0
	}
	return len(r.centers[0])
}

func (r *RBFNetwork) Beta() float64 { return r.beta }

// Kernel returns exp(-beta * ||x - center||²).
func (r *RBFNetwork) Kernel(x, center []float64) float64 {
	d := floats.Distance(x, center, 2)
	return math.Exp(-r.beta * d * d)
}

// Score returns bias + Σ w[i+1] * Kernel(x, centers[i]).
func (r *RBFNetwork) Score(x []float64) (float64, error) {
	if len(r.centers) > 0 && len(x) != len(r.centers[0]) {
		return 0, errors.Wrapf(ErrDimensionMismatch, "got %d features, want %d", len(x), len(r.centers[0]))
	}
	out := r.weights[0]
	for i, c := range r.centers {
		out += r.weights[i+1] * r.Kernel(x, c)
	}
	return out, nil
}

// Predict thresholds the score at zero.
func (r *RBFNetwork) Predict(x []float64) (float64, error) {
	score, err := r.Score(x)
	if err != nil {
		return 0, err
	}
	if score >= 0 {
		return 1, nil
	}
	return -1, nil
}

// seedCenters replaces every center with a distinct training example.
func (r *RBFNetwork) seedCenters(samples []Sample) error {
	if len(samples) < len(r.centers) {
		return errors.Wrapf(ErrNotEnoughSamples, "%d samples for %d centers", len(samples), len(r.centers))
	}
	perm := r.rng.Perm(len(samples))
	for i := range r.centers {
		r.centers[i] = append([]float64(nil), samples[perm[i]].Features...)
	}
	r.seeded = true
	return nil
}

// TrainStep seeds the centers from the data on its first call, then runs
// epochs passes over samples in order, updating the output weights by the
// delta rule. In DriftCenters mode each center also moves toward a random
// sample after every epoch.
func (r *RBFNetwork) TrainStep(samples []Sample, epochs int, learningRate float64) error {
	if len(samples) == 0 {
		return errors.Wrap(ErrEmptyDataset, "rbf training")
	}
	if err := CheckDims(samples, len(samples[0].Features)); err != nil {
		return err
	}
	if !r.seeded {
		if err := r.seedCenters(samples); err != nil {
			return err
		}
	}
	if len(r.centers) > 0 {
		if err := CheckDims(samples, r.InputDim()); err != nil {
			return err
		}
	}
	phi := make([]float64, len(r.centers))
	backup := make([]float64, len(r.weights))
	for e := 0; e < epochs; e++ {
		for i, s := range samples {
			out := r.weights[0]
			for k, c := range r.centers {
				phi[k] = r.Kernel(s.Features, c)
				out += r.weights[k+1] * phi[k]
			}
			diff := s.Label - out
			copy(backup, r.weights)
			r.weights[0] += learningRate * diff
			floats.AddScaled(r.weights[1:], learningRate*diff, phi)
			if !allFinite(r.weights) {
				copy(r.weights, backup)
				return errors.Wrapf(ErrNumericInstability, "rbf epoch %d sample %d", e, i)
			}
		}
		if r.mode == DriftCenters {
			if err := r.drift(samples, learningRate); err != nil {
				return errors.Wrapf(err, "rbf epoch %d", e)
			}
		}
	}
	return nil
}

// drift pulls every center toward a random sample. A move that leaves a
// center non-finite is undone.
func (r *RBFNetwork) drift(samples []Sample, learningRate float64) error {
	backup := make([]float64, r.InputDim())
	for i, c := range r.centers {
		target := samples[r.rng.Intn(len(samples))].Features
		copy(backup, c)
		for j := range c {
			c[j] += learningRate * (target[j] - c[j])
		}
		if !allFinite(c) {
			copy(c, backup)
			return errors.Wrapf(ErrNumericInstability, "center %d", i)
		}
	}
	return nil
}

// Train implements Model; budget is the number of epochs.
func (r *RBFNetwork) Train(samples []Sample, budget int, learningRate float64) error {
	return r.TrainStep(samples, budget, learningRate)
}

func (r *RBFNetwork) Correct(s Sample) (bool, error) {
	pred, err := r.Predict(s.Features)
	if err != nil {
		return false, err
	}
	return pred == s.Label, nil
}

func (r *RBFNetwork) Cost(s Sample) (float64, error) {
	score, err := r.Score(s.Features)
	if err != nil {
		return 0, err
	}
	return SquaredError{}.Compute([]float64{score}, []float64{s.Label}), nil
}

// Accuracy returns the fraction of samples classified correctly.
func (r *RBFNetwork) Accuracy(samples []Sample) (float64, error) {
	return Accuracy(r, samples)
}

func (r *RBFNetwork) Parameters() *Parameters {
	return &Parameters{
		Kind:    RBF,
		Weights: append([]float64(nil), r.weights...),
		Centers: cloneMatrix(r.centers),
		Beta:    r.beta,
		Metric:  r.metric,
	}
}

// SetParameters replaces the network state. The next TrainStep reseeds the
// centers from its training data.
func (r *RBFNetwork) SetParameters(p *Parameters) error {
	if p.Kind != RBF {
		return errors.Wrapf(ErrUnknownKind, "cannot load %s parameters into an rbf model", p.Kind)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	r.weights = append([]float64(nil), p.Weights...)
	r.centers = cloneMatrix(p.Centers)
	r.beta = p.Beta
	r.metric = p.Metric
	r.seeded = false
	return nil
}
