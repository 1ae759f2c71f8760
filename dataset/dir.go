package dataset

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	nn "github.com/LouisFoschiani/Machine-Learning-5JV/neuralnet"
)

// Dir is a Source over an image tree laid out as <Root>/<split>/<category>/*.
type Dir struct {
	Root       string
	Categories []string
	Image      ImageOptions
}

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true}

func (d *Dir) LoadSplit(split Split, category string) ([]nn.Sample, error) {
	var samples []nn.Sample
	for class, name := range d.Categories {
		dir := filepath.Join(d.Root, split.String(), name)
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, errors.Wrapf(err, "listing %s", dir)
		}
		for _, e := range entries {
			if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
				continue
			}
			features, err := Features(filepath.Join(dir, e.Name()), d.Image)
			if err != nil {
				return nil, err
			}
			samples = append(samples, labeled(features, class, name == category, len(d.Categories)))
		}
	}
	if err := checkWidth(samples); err != nil {
		return nil, errors.Wrapf(err, "%s split", split)
	}
	return samples, nil
}
