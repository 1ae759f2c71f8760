package dataset

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	nn "github.com/LouisFoschiani/Machine-Learning-5JV/neuralnet"
)

const (
	cifarSide      = 32
	cifarImageSize = cifarSide * cifarSide * 3
	cifarLabelSize = 1
	cifarRow       = cifarLabelSize + cifarImageSize
)

// CIFAR is a Source over the CIFAR-10 binary batches in Dir. Categories are
// the label names of batches.meta.txt.
type CIFAR struct {
	Dir string
	// Batches maps a split to its batch files; nil uses the standard names.
	Batches map[Split][]string
	// Limit caps the samples read per split when positive.
	Limit int

	labels []string
}

var defaultBatches = map[Split][]string{
	Training: {"data_batch_1.bin", "data_batch_2.bin", "data_batch_3.bin", "data_batch_4.bin", "data_batch_5.bin"},
	Test:     {"test_batch.bin"},
}

// Labels returns the label names, reading batches.meta.txt on first use.
func (c *CIFAR) Labels() ([]string, error) {
	if c.labels != nil {
		return c.labels, nil
	}
	path := filepath.Join(c.Dir, "batches.meta.txt")
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	c.labels = words
	return words, nil
}

func (c *CIFAR) LoadSplit(split Split, category string) ([]nn.Sample, error) {
	labels, err := c.Labels()
	if err != nil {
		return nil, err
	}
	batches := c.Batches
	if batches == nil {
		batches = defaultBatches
	}
	files, ok := batches[split]
	if !ok {
		return nil, errors.Errorf("no cifar batches for the %s split", split)
	}
	target := indexOf(labels, category)
	var samples []nn.Sample
	for _, name := range files {
		images, classes, err := readBatch(filepath.Join(c.Dir, name), c.Limit-len(samples))
		if err != nil {
			return nil, err
		}
		for i, img := range images {
			if classes[i] >= len(labels) {
				return nil, errors.Errorf("%s: label %d out of range", name, classes[i])
			}
			features, err := Flatten(img)
			if err != nil {
				return nil, err
			}
			samples = append(samples, labeled(features, classes[i], classes[i] == target, len(labels)))
		}
		if c.Limit > 0 && len(samples) >= c.Limit {
			break
		}
	}
	return samples, nil
}

// readBatch reads up to limit records (all when limit <= 0) of a batch file as
// (3, 32, 32) tensors.
func readBatch(path string, limit int) ([]*tensor.Dense, []int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s", path)
	}
	defer file.Close()

	r := bufio.NewReaderSize(file, 64*cifarRow)
	var (
		images []*tensor.Dense
		labels []int
	)
	row := make([]byte, cifarRow)
	for limit <= 0 || len(images) < limit {
		if _, err := io.ReadFull(r, row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, errors.Wrapf(err, "%s record %d", path, len(images))
		}
		labels = append(labels, int(row[0]))
		norm := make([]float64, cifarImageSize)
		for i, v := range row[cifarLabelSize:] {
			norm[i] = float64(v) / 255
		}
		images = append(images, tensor.New(tensor.WithShape(3, cifarSide, cifarSide), tensor.WithBacking(norm)))
	}
	return images, labels, nil
}
