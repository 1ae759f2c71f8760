package persist

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	nn "github.com/LouisFoschiani/Machine-Learning-5JV/neuralnet"
)

// Store keeps one parameter file per model kind and category in Dir.
type Store struct {
	Dir string
}

// Path returns the file holding the parameters of kind for category.
func (s Store) Path(kind nn.Kind, category string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("%s_weights_%s.txt", kind, category))
}

// Save encodes p and atomically replaces the file for category.
func (s Store) Save(p *nn.Parameters, category string) error {
	codec, err := For(p.Kind)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := codec.Encode(&buf, p); err != nil {
		return errors.Wrapf(err, "encoding %s parameters for %s", p.Kind, category)
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return errors.Wrap(err, "creating model directory")
	}
	tmp, err := os.CreateTemp(s.Dir, ".weights-*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "writing %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	path := s.Path(p.Kind, category)
	return errors.Wrapf(os.Rename(tmp.Name(), path), "replacing %s", path)
}

// Load reads the parameters of kind for category. A missing file is
// ErrMissingParameterFile.
func (s Store) Load(kind nn.Kind, category string) (*nn.Parameters, error) {
	codec, err := For(kind)
	if err != nil {
		return nil, err
	}
	path := s.Path(kind, category)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(nn.ErrMissingParameterFile, path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()
	p, err := codec.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return p, nil
}

// LoadOrInit is Load for the training flow: a missing file is reported as
// found == false with a nil error.
func (s Store) LoadOrInit(kind nn.Kind, category string) (p *nn.Parameters, found bool, err error) {
	p, err = s.Load(kind, category)
	if errors.Is(err, nn.ErrMissingParameterFile) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}
