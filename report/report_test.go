package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LouisFoschiani/Machine-Learning-5JV/harness"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	h := &harness.History{Category: "Tomato", Train: []float64{0.5, 0.25}, Test: []float64{0.75, 0.5}}
	require.NoError(t, WriteCSV(&buf, h))
	assert.Equal(t, "epoch,train_error,test_error\n1,0.5,0.75\n2,0.25,0.5\n", buf.String())
}

func TestWriteCSVMismatch(t *testing.T) {
	h := &harness.History{Train: []float64{0.5}}
	assert.Error(t, WriteCSV(&bytes.Buffer{}, h))
}

func TestPlotErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.png")
	h := &harness.History{Category: "Banana", Train: []float64{0.5, 0.3, 0.2}, Test: []float64{0.6, 0.4, 0.35}}
	require.NoError(t, PlotErrors(h, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestPlotErrorsEmpty(t *testing.T) {
	assert.Error(t, PlotErrors(&harness.History{Category: "Avocado"}, filepath.Join(t.TempDir(), "e.png")))
}

func TestPlotAccuracies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accuracy.png")
	require.NoError(t, PlotAccuracies("rbf_model", []string{"Avocado", "Banana", "Tomato"}, []float64{0.9, 0.75, 0.5}, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestPlotAccuraciesMismatch(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, PlotAccuracies("x", []string{"a", "b"}, []float64{0.5}, filepath.Join(dir, "a.png")))
	assert.Error(t, PlotAccuracies("x", nil, nil, filepath.Join(dir, "b.png")))
}
