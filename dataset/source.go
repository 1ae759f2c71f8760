// Package dataset loads labeled feature vectors for the training harness.
package dataset

import (
	"github.com/pkg/errors"

	nn "github.com/LouisFoschiani/Machine-Learning-5JV/neuralnet"
)

// Split is one partition of a dataset.
type Split int

const (
	Training Split = iota
	Test
	Validation
	Check
)

var splitDirs = [...]string{"Training", "Test", "Validation", "CHECK"}

// String returns the directory name of the split.
func (s Split) String() string {
	if s < 0 || int(s) >= len(splitDirs) {
		return "unknown"
	}
	return splitDirs[s]
}

// Source loads the samples of one split. Samples are labeled one-vs-rest for
// category and carry a one-hot target over every category of the source. A
// category the source does not know labels every sample -1.
type Source interface {
	LoadSplit(split Split, category string) ([]nn.Sample, error)
}

// Memory is a Source over vectors already in memory, keyed by split and then
// by category.
type Memory struct {
	Categories []string
	Data       map[Split]map[string][][]float64
}

func (m *Memory) LoadSplit(split Split, category string) ([]nn.Sample, error) {
	byCategory, ok := m.Data[split]
	if !ok {
		return nil, errors.Errorf("no %s split", split)
	}
	var samples []nn.Sample
	for class, name := range m.Categories {
		for _, features := range byCategory[name] {
			samples = append(samples, labeled(features, class, name == category, len(m.Categories)))
		}
	}
	if err := checkWidth(samples); err != nil {
		return nil, errors.Wrapf(err, "%s split", split)
	}
	return samples, nil
}

func labeled(features []float64, class int, target bool, classes int) nn.Sample {
	label := -1.0
	if target {
		label = 1
	}
	return nn.Sample{
		Features: features,
		Label:    label,
		Target:   nn.OneHot(class, classes),
	}
}

// checkWidth verifies every sample of a split has the width of the first one.
func checkWidth(samples []nn.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	return nn.CheckDims(samples, len(samples[0].Features))
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
