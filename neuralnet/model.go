package neuralnet

import (
	"github.com/pkg/errors"
)

// Kind identifies one of the trainable model families.
type Kind int

const (
	Linear Kind = iota
	RBF
	MLP
)

var kindNames = map[Kind]string{
	Linear: "linear_model",
	RBF:    "rbf_model",
	MLP:    "mlp_model",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown_model"
}

// OneVsRest reports whether the kind trains one binary model per category.
func (k Kind) OneVsRest() bool {
	return k == Linear || k == RBF
}

// ParseKind accepts the dispatch names (linear_model, rbf_model, mlp_model)
// and their short forms (linear, rbf, mlp).
func ParseKind(s string) (Kind, error) {
	switch s {
	case "linear_model", "linear":
		return Linear, nil
	case "rbf_model", "rbfn_model", "rbf":
		return RBF, nil
	case "mlp_model", "mlp":
		return MLP, nil
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", s)
}

// Model is the capability set shared by every trainable model.
type Model interface {
	Kind() Kind
	InputDim() int
	// Train runs one training budget: iterations for the linear model,
	// epochs for the RBF network and the MLP.
	Train(samples []Sample, budget int, learningRate float64) error
	// Score returns the raw decision value for x.
	Score(x []float64) (float64, error)
	Correct(s Sample) (bool, error)
	// Cost is the per-sample error the harness tracks.
	Cost(s Sample) (float64, error)
	Parameters() *Parameters
	SetParameters(p *Parameters) error
}

// Spec describes how to construct a fresh model.
type Spec struct {
	InputDim   int
	Classes    int
	Hidden     []int
	Centers    int
	Beta       float64
	CenterInit CenterInit
	CenterMode CenterMode
	Decision   Decision
}

// New constructs a freshly initialized model of the given kind.
func New(kind Kind, spec Spec, rng Rand) (Model, error) {
	if spec.InputDim <= 0 {
		return nil, errors.Wrapf(ErrDimensionMismatch, "input width %d", spec.InputDim)
	}
	switch kind {
	case Linear:
		return NewLinearClassifier(spec.InputDim, rng, WithDecision(spec.Decision)), nil
	case RBF:
		if spec.Centers <= 0 {
			return nil, errors.Wrapf(ErrInvalidTopology, "rbf needs at least one center, got %d", spec.Centers)
		}
		beta := spec.Beta
		if beta == 0 {
			beta = 1 / float64(spec.InputDim)
		}
		return NewRBFNetwork(spec.Centers, spec.InputDim, beta, spec.CenterInit, rng, WithCenterMode(spec.CenterMode))
	case MLP:
		topology := append([]int{spec.InputDim}, spec.Hidden...)
		topology = append(topology, spec.Classes)
		return NewMLP(topology, rng)
	}
	return nil, errors.Wrapf(ErrUnknownKind, "kind %d", int(kind))
}

// FromParameters builds a model holding a copy of p.
func FromParameters(p *Parameters, spec Spec, rng Rand) (Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	var m Model
	switch p.Kind {
	case Linear:
		m = &LinearClassifier{rng: rng, decision: spec.Decision}
	case RBF:
		m = &RBFNetwork{rng: rng, mode: spec.CenterMode}
	case MLP:
		m = &MultilayerPerceptron{}
	default:
		return nil, errors.Wrapf(ErrUnknownKind, "kind %d", int(p.Kind))
	}
	if err := m.SetParameters(p); err != nil {
		return nil, err
	}
	return m, nil
}

// Accuracy returns the fraction of samples m classifies correctly.
func Accuracy(m Model, samples []Sample) (float64, error) {
	if len(samples) == 0 {
		return 0, errors.Wrap(ErrEmptyDataset, "accuracy")
	}
	correct := 0
	for i, s := range samples {
		ok, err := m.Correct(s)
		if err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(len(samples)), nil
}

// MeanCost returns the average Cost of m over samples.
func MeanCost(m Model, samples []Sample) (float64, error) {
	if len(samples) == 0 {
		return 0, errors.Wrap(ErrEmptyDataset, "cost")
	}
	var total float64
	for i, s := range samples {
		c, err := m.Cost(s)
		if err != nil {
			return 0, errors.Wrapf(err, "sample %d", i)
		}
		total += c
	}
	return total / float64(len(samples)), nil
}
