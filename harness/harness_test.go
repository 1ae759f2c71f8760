package harness

import (
	"bytes"
	"log"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LouisFoschiani/Machine-Learning-5JV/dataset"
	nn "github.com/LouisFoschiani/Machine-Learning-5JV/neuralnet"
	"github.com/LouisFoschiani/Machine-Learning-5JV/persist"
)

func twoCategorySource() *dataset.Memory {
	a := [][]float64{{1, 0}, {1, 0}, {1, 0}}
	b := [][]float64{{0, 1}, {0, 1}, {0, 1}}
	return &dataset.Memory{
		Categories: []string{"a", "b"},
		Data: map[dataset.Split]map[string][][]float64{
			dataset.Training: {"a": a, "b": b},
			dataset.Test:     {"a": a[:1], "b": b[:1]},
		},
	}
}

type recordingStore struct {
	persist.Store
	saved []float64
}

func (s *recordingStore) Save(p *nn.Parameters, category string) error {
	s.saved = append(s.saved, p.Metric)
	return s.Store.Save(p, category)
}

func linearConfig(epochs int) Config {
	return Config{
		Kind:         nn.Linear,
		Categories:   []string{"a", "b"},
		Epochs:       epochs,
		Budget:       20,
		LearningRate: 0.01,
	}
}

func newTestHarness(t *testing.T, cfg Config, source dataset.Source) (*Harness, *recordingStore, *bytes.Buffer) {
	store := &recordingStore{Store: persist.Store{Dir: t.TempDir()}}
	var logs bytes.Buffer
	h := New(cfg, source, store, rand.New(rand.NewSource(1)), log.New(&logs, "", 0))
	return h, store, &logs
}

func TestRunSavesOnlyOnStrictImprovement(t *testing.T) {
	h, store, logs := newTestHarness(t, linearConfig(8), twoCategorySource())
	hist, err := h.Run("a")
	require.NoError(t, err)
	require.NotEmpty(t, store.saved, "a fresh model is saved after its first epoch")
	for i := 1; i < len(store.saved); i++ {
		assert.Greater(t, store.saved[i], store.saved[i-1])
	}
	assert.Equal(t, store.saved[len(store.saved)-1], hist.Best)
	assert.Len(t, hist.Test, len(hist.Train))
	assert.Len(t, hist.Cost, len(hist.Train))
	assert.Contains(t, logs.String(), "starting fresh")

	p, err := store.Load(nn.Linear, "a")
	require.NoError(t, err)
	assert.Equal(t, hist.Best, p.Metric)
}

func perfectLinear(metric float64) *nn.Parameters {
	return &nn.Parameters{Kind: nn.Linear, Weights: []float64{0, 1, -1}, Metric: metric}
}

func TestRunKeepsBetterSavedModel(t *testing.T) {
	h, store, _ := newTestHarness(t, linearConfig(3), twoCategorySource())
	require.NoError(t, store.Store.Save(perfectLinear(100), "a"))

	hist, err := h.Run("a")
	require.NoError(t, err)
	assert.Empty(t, store.saved)
	assert.Equal(t, 100.0, hist.Best)
}

func TestRunStopsWhenCostSettles(t *testing.T) {
	h, store, logs := newTestHarness(t, linearConfig(10), twoCategorySource())
	require.NoError(t, store.Store.Save(perfectLinear(50), "a"))

	hist, err := h.Run("a")
	require.NoError(t, err)
	// a perfect classifier is never updated, so the cost repeats
	assert.Len(t, hist.Train, 2)
	assert.Equal(t, []float64{0, 0}, hist.Test)
	assert.Equal(t, []float64{100}, store.saved)
	assert.Contains(t, logs.String(), "stopping after epoch 2")
}

func TestRunSavedDimensionMismatch(t *testing.T) {
	h, store, _ := newTestHarness(t, linearConfig(3), twoCategorySource())
	require.NoError(t, store.Store.Save(&nn.Parameters{Kind: nn.Linear, Weights: []float64{0, 1, 1, 1}}, "a"))
	_, err := h.Run("a")
	assert.Equal(t, nn.ErrDimensionMismatch, errors.Cause(err))
}

func TestRunEmptySplit(t *testing.T) {
	source := twoCategorySource()
	source.Data[dataset.Test] = map[string][][]float64{}
	h, _, _ := newTestHarness(t, linearConfig(3), source)
	_, err := h.Run("a")
	assert.Equal(t, nn.ErrEmptyDataset, errors.Cause(err))
}

type failingSource struct {
	dataset.Source
	fail string
}

var errUnreadable = errors.New("unreadable")

func (s failingSource) LoadSplit(split dataset.Split, category string) ([]nn.Sample, error) {
	if category == s.fail {
		return nil, errUnreadable
	}
	return s.Source.LoadSplit(split, category)
}

func TestRunAllContinuesAfterFailure(t *testing.T) {
	cfg := linearConfig(2)
	cfg.Categories = []string{"a", "b", "a"}
	h, _, logs := newTestHarness(t, cfg, failingSource{Source: twoCategorySource(), fail: "b"})
	histories, err := h.RunAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnreadable)
	assert.Len(t, histories, 2)
	assert.Contains(t, logs.String(), "b: aborted")
}

func TestRunAllMLP(t *testing.T) {
	cfg := Config{
		Kind:         nn.MLP,
		Categories:   []string{"a", "b"},
		Epochs:       3,
		Budget:       5,
		LearningRate: 0.1,
		Spec:         nn.Spec{Hidden: []int{3}},
	}
	h, store, _ := newTestHarness(t, cfg, twoCategorySource())
	histories, err := h.RunAll()
	require.NoError(t, err)
	require.Len(t, histories, 1)
	assert.Equal(t, AllCategories, histories[0].Category)
	assert.Len(t, histories[0].Train, 3, "the mlp does not stop early")

	p, err := store.Load(nn.MLP, AllCategories)
	require.NoError(t, err)
	assert.Equal(t, 2, p.InputDim())
	assert.Len(t, p.Layers[len(p.Layers)-1][0], 2)
}

func TestEvaluate(t *testing.T) {
	h, store, _ := newTestHarness(t, linearConfig(1), twoCategorySource())
	_, err := h.Evaluate("a", dataset.Test)
	assert.Equal(t, nn.ErrMissingParameterFile, errors.Cause(err))

	require.NoError(t, store.Store.Save(perfectLinear(100), "a"))
	acc, err := h.Evaluate("a", dataset.Test)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)
}

func TestPredictorOneVsRest(t *testing.T) {
	h, store, _ := newTestHarness(t, linearConfig(1), twoCategorySource())
	_, err := h.Predictor()
	assert.Equal(t, nn.ErrMissingParameterFile, errors.Cause(err))

	require.NoError(t, store.Store.Save(perfectLinear(100), "a"))
	require.NoError(t, store.Store.Save(&nn.Parameters{Kind: nn.Linear, Weights: []float64{0, -1, 1}}, "b"))
	p, err := h.Predictor()
	require.NoError(t, err)

	category, score, err := p.Predict([]float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, "a", category)
	assert.Equal(t, 1.0, score)

	category, _, err = p.Predict([]float64{0.2, 0.9})
	require.NoError(t, err)
	assert.Equal(t, "b", category)
}

func TestPredictorMLP(t *testing.T) {
	cfg := Config{Kind: nn.MLP, Categories: []string{"a", "b"}, Epochs: 1, Budget: 1, LearningRate: 0.1}
	h, store, _ := newTestHarness(t, cfg, twoCategorySource())
	require.NoError(t, store.Store.Save(&nn.Parameters{
		Kind:   nn.MLP,
		Layers: [][][]float64{{{0, 0}, {5, -5}, {-5, 5}}},
	}, AllCategories))

	p, err := h.Predictor()
	require.NoError(t, err)
	category, prob, err := p.Predict([]float64{0, 1})
	require.NoError(t, err)
	assert.Equal(t, "b", category)
	assert.Greater(t, prob, 0.99)
}

func TestRunAllMLPCategoryMismatch(t *testing.T) {
	cfg := Config{
		Kind:         nn.MLP,
		Categories:   []string{"a", "b", "c"},
		Epochs:       2,
		Budget:       1,
		LearningRate: 0.1,
		Spec:         nn.Spec{Hidden: []int{2}},
	}
	h, store, logs := newTestHarness(t, cfg, twoCategorySource())
	_, err := h.RunAll()
	assert.ErrorIs(t, err, nn.ErrDimensionMismatch)
	assert.Contains(t, logs.String(), "all: aborted")
	assert.Empty(t, store.saved)
}

func rbfConfig(epochs int) Config {
	return Config{
		Kind:         nn.RBF,
		Categories:   []string{"a", "b"},
		Epochs:       epochs,
		Budget:       5,
		LearningRate: 0.1,
		Spec:         nn.Spec{Centers: 2, Beta: 10},
	}
}

func TestRunRBF(t *testing.T) {
	h, store, logs := newTestHarness(t, rbfConfig(200), twoCategorySource())
	hist, err := h.Run("a")
	require.NoError(t, err)
	require.NotEmpty(t, store.saved)
	assert.Less(t, len(hist.Train), 200)
	assert.Contains(t, logs.String(), "stopping after epoch")

	p, err := store.Load(nn.RBF, "a")
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.Beta)
	require.Len(t, p.Centers, 2)
	for _, c := range p.Centers {
		// centers are seeded from training samples
		assert.Contains(t, [][]float64{{1, 0}, {0, 1}}, c)
	}
}

func TestRunRBFWarmStart(t *testing.T) {
	h, store, logs := newTestHarness(t, rbfConfig(3), twoCategorySource())
	saved := &nn.Parameters{
		Kind:    nn.RBF,
		Weights: []float64{0, 0.5, -0.5},
		Centers: [][]float64{{7, 7}, {8, 8}},
		Beta:    10,
		Metric:  100,
	}
	require.NoError(t, store.Store.Save(saved, "a"))

	hist, err := h.Run("a")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "resuming from saved parameters")
	assert.Empty(t, store.saved, "accuracy cannot exceed 100%")
	assert.Equal(t, 100.0, hist.Best)
	// loaded centers far from the data are replaced by training samples,
	// which is what lets the warm-started model fit the split
	assert.Equal(t, 0.0, hist.Train[len(hist.Train)-1])
}
