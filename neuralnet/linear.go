package neuralnet

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Decision turns a raw linear score into a class indicator.
type Decision int

const (
	// SignDecision returns +1 for score >= 0 and -1 otherwise.
	SignDecision Decision = iota
	// BandDecision returns +1 above 0.5, -1 below -0.5 and 0 in between.
	BandDecision
)

func (d Decision) apply(score float64) float64 {
	if d == BandDecision {
		switch {
		case score > 0.5:
			return 1
		case score < -0.5:
			return -1
		default:
			return 0
		}
	}
	if score >= 0 {
		return 1
	}
	return -1
}

// LinearClassifier is a single-layer perceptron trained online on the sign
// error. weights[0] is the bias.
type LinearClassifier struct {
	weights  []float64
	decision Decision
	metric   float64
	rng      Rand
}

// LinearOption configures a LinearClassifier.
type LinearOption func(*LinearClassifier)

// WithDecision selects the decision rule used by Predict and training.
func WithDecision(d Decision) LinearOption {
	return func(lc *LinearClassifier) { lc.decision = d }
}

// NewLinearClassifier draws featureDim+1 weights uniformly from [-1, 1].
func NewLinearClassifier(featureDim int, rng Rand, opts ...LinearOption) *LinearClassifier {
	lc := &LinearClassifier{
		weights: make([]float64, featureDim+1),
		rng:     rng,
	}
	for i := range lc.weights {
		lc.weights[i] = uniform(rng, -1, 1)
	}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

func (lc *LinearClassifier) Kind() Kind    { return Linear }
func (lc *LinearClassifier) InputDim() int { return len(lc.weights) - 1 }

// Weights returns a copy of the weight vector, bias first.
func (lc *LinearClassifier) Weights() []float64 {
	return append([]float64(nil), lc.weights...)
}

// Score returns bias + Σ w[i+1]*x[i].
func (lc *LinearClassifier) Score(x []float64) (float64, error) {
	if len(x) != len(lc.weights)-1 {
		return 0, errors.Wrapf(ErrDimensionMismatch, "got %d features, want %d", len(x), len(lc.weights)-1)
	}
	return lc.weights[0] + floats.Dot(lc.weights[1:], x), nil
}

// Predict returns the class indicator for x under the configured decision.
func (lc *LinearClassifier) Predict(x []float64) (float64, error) {
	score, err := lc.Score(x)
	if err != nil {
		return 0, err
	}
	return lc.decision.apply(score), nil
}

// TrainStep runs iterations online updates, each on one sample drawn
// uniformly at random. A step that produces a non-finite weight is undone and
// reported as ErrNumericInstability.
func (lc *LinearClassifier) TrainStep(samples []Sample, iterations int, learningRate float64) error {
	if len(samples) == 0 {
		return errors.Wrap(ErrEmptyDataset, "linear training")
	}
	if err := CheckDims(samples, lc.InputDim()); err != nil {
		return err
	}
	backup := make([]float64, len(lc.weights))
	for it := 0; it < iterations; it++ {
		s := samples[lc.rng.Intn(len(samples))]
		pred, err := lc.Predict(s.Features)
		if err != nil {
			return err
		}
		diff := s.Label - pred
		if diff == 0 {
			continue
		}
		copy(backup, lc.weights)
		lc.weights[0] += learningRate * diff
		floats.AddScaled(lc.weights[1:], learningRate*diff, s.Features)
		for _, w := range lc.weights {
			if !finite(w) {
				copy(lc.weights, backup)
				return errors.Wrapf(ErrNumericInstability, "linear iteration %d", it)
			}
		}
	}
	return nil
}

// Train implements Model; budget is the number of iterations.
func (lc *LinearClassifier) Train(samples []Sample, budget int, learningRate float64) error {
	return lc.TrainStep(samples, budget, learningRate)
}

func (lc *LinearClassifier) Correct(s Sample) (bool, error) {
	pred, err := lc.Predict(s.Features)
	if err != nil {
		return false, err
	}
	return pred == s.Label, nil
}

// Cost is the squared distance between the label and the raw score.
func (lc *LinearClassifier) Cost(s Sample) (float64, error) {
	score, err := lc.Score(s.Features)
	if err != nil {
		return 0, err
	}
	return SquaredError{}.Compute([]float64{score}, []float64{s.Label}), nil
}

func (lc *LinearClassifier) Parameters() *Parameters {
	return &Parameters{
		Kind:    Linear,
		Weights: lc.Weights(),
		Metric:  lc.metric,
	}
}

func (lc *LinearClassifier) SetParameters(p *Parameters) error {
	if p.Kind != Linear {
		return errors.Wrapf(ErrUnknownKind, "cannot load %s parameters into a linear model", p.Kind)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	lc.weights = append([]float64(nil), p.Weights...)
	lc.metric = p.Metric
	return nil
}
