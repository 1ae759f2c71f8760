package neuralnet

import "github.com/pkg/errors"

// Parameters is the serializable state of one model. Weights holds the bias at
// index 0 for the linear and RBF models. Layers holds one (inputs+1) x neurons
// matrix per MLP layer with the bias in row 0. Metric is the watermark the
// harness compares against before saving, the best held-out accuracy in percent.
type Parameters struct {
	Kind    Kind
	Weights []float64
	Centers [][]float64
	Beta    float64
	Layers  [][][]float64
	Metric  float64
}

// Validate checks the structural invariants of p for its kind.
func (p *Parameters) Validate() error {
	switch p.Kind {
	case Linear:
		if len(p.Weights) < 1 {
			return errors.Wrap(ErrDimensionMismatch, "linear model has no bias weight")
		}
	case RBF:
		if len(p.Weights) < 1 {
			return errors.Wrap(ErrDimensionMismatch, "rbf model has no bias weight")
		}
		if len(p.Centers) != len(p.Weights)-1 {
			return errors.Wrapf(ErrDimensionMismatch, "rbf model has %d centers for %d weights", len(p.Centers), len(p.Weights))
		}
		for i, c := range p.Centers {
			if len(c) != len(p.Centers[0]) {
				return errors.Wrapf(ErrDimensionMismatch, "center %d has width %d, want %d", i, len(c), len(p.Centers[0]))
			}
		}
		if !(p.Beta > 0) {
			return errors.Wrapf(ErrInvalidBeta, "beta %v", p.Beta)
		}
	case MLP:
		if len(p.Layers) == 0 {
			return errors.Wrap(ErrInvalidTopology, "mlp has no layers")
		}
		for l, layer := range p.Layers {
			if len(layer) < 2 {
				return errors.Wrapf(ErrInvalidTopology, "layer %d has %d rows, want at least 2", l, len(layer))
			}
			width := len(layer[0])
			if width == 0 {
				return errors.Wrapf(ErrInvalidTopology, "layer %d has no neurons", l)
			}
			for r, row := range layer {
				if len(row) != width {
					return errors.Wrapf(ErrInvalidTopology, "layer %d row %d has %d columns, want %d", l, r, len(row), width)
				}
			}
			if l > 0 && len(p.Layers[l-1][0]) != len(layer)-1 {
				return errors.Wrapf(ErrInvalidTopology, "layer %d takes %d inputs but layer %d has %d neurons", l, len(layer)-1, l-1, len(p.Layers[l-1][0]))
			}
		}
	default:
		return errors.Wrapf(ErrUnknownKind, "kind %d", int(p.Kind))
	}
	return nil
}

// InputDim returns the feature width the parameters expect.
func (p *Parameters) InputDim() int {
	switch p.Kind {
	case RBF:
		if len(p.Centers) > 0 {
			return len(p.Centers[0])
		}
		return 0
	case MLP:
		if len(p.Layers) > 0 {
			return len(p.Layers[0]) - 1
		}
		return 0
	default:
		if len(p.Weights) > 0 {
			return len(p.Weights) - 1
		}
		return 0
	}
}

// Clone returns a deep copy of p.
func (p *Parameters) Clone() *Parameters {
	c := &Parameters{
		Kind:   p.Kind,
		Beta:   p.Beta,
		Metric: p.Metric,
	}
	if p.Weights != nil {
		c.Weights = append([]float64(nil), p.Weights...)
	}
	if p.Centers != nil {
		c.Centers = cloneMatrix(p.Centers)
	}
	if p.Layers != nil {
		c.Layers = make([][][]float64, len(p.Layers))
		for i, layer := range p.Layers {
			c.Layers[i] = cloneMatrix(layer)
		}
	}
	return c
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
