// Package harness trains models epoch by epoch against a dataset source and
// persists them whenever held-out accuracy improves.
package harness

import (
	stderrors "errors"
	"io"
	"log"
	"math"

	"github.com/pkg/errors"

	"github.com/LouisFoschiani/Machine-Learning-5JV/dataset"
	nn "github.com/LouisFoschiani/Machine-Learning-5JV/neuralnet"
)

// AllCategories is the storage name of the single multiclass MLP.
const AllCategories = "all"

// DefaultConvergenceTol is the mean squared error change below which the
// linear and RBF models stop training.
const DefaultConvergenceTol = 1e-5

// Config selects the model and its training schedule.
type Config struct {
	Kind       nn.Kind
	Categories []string
	Epochs     int
	// Budget is the per-epoch training budget: iterations for the linear
	// model, passes over the training split for the others.
	Budget         int
	LearningRate   float64
	Decay          float64
	Spec           nn.Spec
	ConvergenceTol float64
}

// ParameterStore persists model parameters per kind and category.
type ParameterStore interface {
	Save(p *nn.Parameters, category string) error
	Load(kind nn.Kind, category string) (*nn.Parameters, error)
	LoadOrInit(kind nn.Kind, category string) (*nn.Parameters, bool, error)
}

// History is the per-epoch error record of one training run. Train and Test
// hold 1-accuracy, Cost the mean training cost.
type History struct {
	Category string
	Train    []float64
	Test     []float64
	Cost     []float64
	// Best is the held-out accuracy in percent of the persisted parameters.
	Best float64
}

type Harness struct {
	cfg    Config
	source dataset.Source
	store  ParameterStore
	rng    nn.Rand
	log    *log.Logger
}

// New returns a harness. A nil logger discards output.
func New(cfg Config, source dataset.Source, store ParameterStore, rng nn.Rand, logger *log.Logger) *Harness {
	if cfg.ConvergenceTol == 0 {
		cfg.ConvergenceTol = DefaultConvergenceTol
	}
	if cfg.Spec.Classes == 0 {
		cfg.Spec.Classes = len(cfg.Categories)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Harness{cfg: cfg, source: source, store: store, rng: rng, log: logger}
}

// storageName is the category a model is persisted under.
func (h *Harness) storageName(category string) string {
	if h.cfg.Kind.OneVsRest() {
		return category
	}
	return AllCategories
}

// model loads the persisted parameters for category or builds a fresh model
// for inputDim features. The returned watermark is -Inf for a fresh model.
func (h *Harness) model(category string, inputDim int) (nn.Model, float64, error) {
	p, found, err := h.store.LoadOrInit(h.cfg.Kind, h.storageName(category))
	if err != nil {
		return nil, 0, err
	}
	spec := h.cfg.Spec
	spec.InputDim = inputDim
	if !found {
		h.log.Printf("%s %s: no saved parameters, starting fresh", h.cfg.Kind, category)
		m, err := nn.New(h.cfg.Kind, spec, h.rng)
		return m, math.Inf(-1), err
	}
	if p.InputDim() != inputDim {
		return nil, 0, errors.Wrapf(nn.ErrDimensionMismatch, "saved %s model takes %d features, data has %d", h.cfg.Kind, p.InputDim(), inputDim)
	}
	m, err := nn.FromParameters(p, spec, h.rng)
	if err != nil {
		return nil, 0, err
	}
	h.log.Printf("%s %s: resuming from saved parameters (%.2f%%)", h.cfg.Kind, category, p.Metric)
	return m, p.Metric, nil
}

func (h *Harness) loadSplit(split dataset.Split, category string) ([]nn.Sample, error) {
	samples, err := h.source.LoadSplit(split, category)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s split", split)
	}
	if len(samples) == 0 {
		return nil, errors.Wrapf(nn.ErrEmptyDataset, "%s split of %s", split, category)
	}
	return samples, nil
}

// Run trains the model for category for up to cfg.Epochs epochs. The
// parameters are saved every time the test accuracy strictly exceeds the
// best saved one. The linear and RBF models stop early once their training
// cost settles or rises.
func (h *Harness) Run(category string) (*History, error) {
	train, err := h.loadSplit(dataset.Training, category)
	if err != nil {
		return nil, err
	}
	test, err := h.loadSplit(dataset.Test, category)
	if err != nil {
		return nil, err
	}
	m, best, err := h.model(category, len(train[0].Features))
	if err != nil {
		return nil, err
	}

	hist := &History{Category: h.storageName(category), Best: best}
	opt := &nn.SGD{Lr: h.cfg.LearningRate, Decay: h.cfg.Decay}
	prevCost := math.NaN()
	for epoch := 1; epoch <= h.cfg.Epochs; epoch++ {
		if err := m.Train(train, h.cfg.Budget, opt.LearningRate()); err != nil {
			return hist, errors.Wrapf(err, "epoch %d", epoch)
		}
		trainAcc, err := nn.Accuracy(m, train)
		if err != nil {
			return hist, errors.Wrapf(err, "epoch %d training accuracy", epoch)
		}
		testAcc, err := nn.Accuracy(m, test)
		if err != nil {
			return hist, errors.Wrapf(err, "epoch %d test accuracy", epoch)
		}
		cost, err := nn.MeanCost(m, train)
		if err != nil {
			return hist, errors.Wrapf(err, "epoch %d cost", epoch)
		}
		hist.Train = append(hist.Train, 1-trainAcc)
		hist.Test = append(hist.Test, 1-testAcc)
		hist.Cost = append(hist.Cost, cost)
		h.log.Printf("%s %s epoch %d: train %.2f%% test %.2f%% cost %.6f",
			h.cfg.Kind, hist.Category, epoch, trainAcc*100, testAcc*100, cost)

		if percent := testAcc * 100; percent > hist.Best {
			p := m.Parameters()
			p.Metric = percent
			if err := h.store.Save(p, hist.Category); err != nil {
				return hist, errors.Wrapf(err, "epoch %d save", epoch)
			}
			h.log.Printf("%s %s: saved at %.2f%% (was %.2f%%)", h.cfg.Kind, hist.Category, percent, hist.Best)
			hist.Best = percent
		}

		if h.cfg.Kind.OneVsRest() && !math.IsNaN(prevCost) {
			if delta := cost - prevCost; math.Abs(delta) < h.cfg.ConvergenceTol || delta > 0 {
				h.log.Printf("%s %s: stopping after epoch %d, cost %.6f -> %.6f", h.cfg.Kind, hist.Category, epoch, prevCost, cost)
				break
			}
		}
		prevCost = cost
		if err := opt.Step(); err != nil {
			return hist, err
		}
	}
	return hist, nil
}

// RunAll trains every category in order, or the single multiclass model for
// the MLP. A failing category is logged and skipped; the returned error joins
// every failure.
func (h *Harness) RunAll() ([]*History, error) {
	categories := h.cfg.Categories
	if !h.cfg.Kind.OneVsRest() {
		categories = []string{AllCategories}
	}
	var (
		histories []*History
		errs      []error
	)
	for _, category := range categories {
		hist, err := h.Run(category)
		if hist != nil {
			histories = append(histories, hist)
		}
		if err != nil {
			h.log.Printf("%s %s: aborted: %v", h.cfg.Kind, category, err)
			errs = append(errs, errors.Wrap(err, category))
		}
	}
	return histories, stderrors.Join(errs...)
}

// loadModel builds a model from the persisted parameters for category. A
// missing file is an error.
func (h *Harness) loadModel(category string) (nn.Model, error) {
	p, err := h.store.Load(h.cfg.Kind, h.storageName(category))
	if err != nil {
		return nil, err
	}
	return nn.FromParameters(p, h.cfg.Spec, h.rng)
}

// Evaluate returns the accuracy of the persisted model for category on split.
func (h *Harness) Evaluate(category string, split dataset.Split) (float64, error) {
	m, err := h.loadModel(category)
	if err != nil {
		return 0, err
	}
	samples, err := h.source.LoadSplit(split, category)
	if err != nil {
		return 0, errors.Wrapf(err, "loading %s split", split)
	}
	acc, err := nn.Accuracy(m, samples)
	if err != nil {
		return 0, errors.Wrapf(err, "%s split of %s", split, category)
	}
	h.log.Printf("%s %s: %s accuracy %.2f%%", h.cfg.Kind, category, split, acc*100)
	return acc, nil
}
