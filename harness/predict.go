package harness

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	nn "github.com/LouisFoschiani/Machine-Learning-5JV/neuralnet"
)

// Predictor classifies feature vectors with persisted models.
type Predictor struct {
	categories []string
	// one model per category, or a single multiclass MLP
	models []nn.Model
}

// Predictor loads every persisted model needed to classify into the
// configured categories.
func (h *Harness) Predictor() (*Predictor, error) {
	if len(h.cfg.Categories) == 0 {
		return nil, errors.New("no categories configured")
	}
	p := &Predictor{categories: h.cfg.Categories}
	if !h.cfg.Kind.OneVsRest() {
		m, err := h.loadModel(AllCategories)
		if err != nil {
			return nil, err
		}
		p.models = []nn.Model{m}
		return p, nil
	}
	for _, category := range h.cfg.Categories {
		m, err := h.loadModel(category)
		if err != nil {
			return nil, errors.Wrapf(err, "loading %s model", category)
		}
		p.models = append(p.models, m)
	}
	return p, nil
}

// Predict returns the most likely category for features and its score. With
// one-vs-rest models the category whose model scores highest wins; the MLP
// returns its most probable class.
func (p *Predictor) Predict(features []float64) (string, float64, error) {
	if mlp, ok := p.models[0].(*nn.MultilayerPerceptron); ok && len(p.models) == 1 {
		out, err := mlp.ForwardPropagate(features)
		if err != nil {
			return "", 0, err
		}
		class := floats.MaxIdx(out)
		if class >= len(p.categories) {
			return "", 0, errors.Wrapf(nn.ErrDimensionMismatch, "model has %d classes for %d categories", len(out), len(p.categories))
		}
		return p.categories[class], out[class], nil
	}
	scores := make([]float64, len(p.models))
	for i, m := range p.models {
		s, err := m.Score(features)
		if err != nil {
			return "", 0, errors.Wrap(err, p.categories[i])
		}
		scores[i] = s
	}
	best := floats.MaxIdx(scores)
	return p.categories[best], scores[best], nil
}
