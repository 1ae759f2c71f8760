// Package persist reads and writes model parameters as line-oriented text
// files.
package persist

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	nn "github.com/LouisFoschiani/Machine-Learning-5JV/neuralnet"
)

const (
	efficiencyHeader = "-- Efficiency --"
	betaHeader       = "-- Beta --"
	centersHeader    = "-- Centers --"
	weightsHeader    = "-- Weights --"
	layersHeader     = "-- Layers --"
)

// Codec converts parameters to and from their file representation.
type Codec interface {
	Encode(w io.Writer, p *nn.Parameters) error
	Decode(r io.Reader) (*nn.Parameters, error)
}

// For returns the codec used for kind.
func For(kind nn.Kind) (Codec, error) {
	switch kind {
	case nn.Linear, nn.RBF:
		return TextCodec{Kind: kind}, nil
	case nn.MLP:
		return JSONCodec{}, nil
	}
	return nil, errors.Wrapf(nn.ErrUnknownKind, "kind %d", int(kind))
}

// TextCodec is the format of the linear and RBF models: an efficiency header,
// the RBF beta and centers, then one {weight} per line.
type TextCodec struct {
	Kind nn.Kind
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (c TextCodec) Encode(w io.Writer, p *nn.Parameters) error {
	if p.Kind != c.Kind {
		return errors.Wrapf(nn.ErrUnknownKind, "%s codec cannot encode %s parameters", c.Kind, p.Kind)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(efficiencyHeader + "\n")
	buf.WriteString(formatFloat(p.Metric) + "\n")
	if c.Kind == nn.RBF {
		buf.WriteString(betaHeader + "\n")
		buf.WriteString(formatFloat(p.Beta) + "\n")
		buf.WriteString(centersHeader + "\n")
		for _, center := range p.Centers {
			parts := make([]string, len(center))
			for i, v := range center {
				parts[i] = formatFloat(v)
			}
			buf.WriteString(strings.Join(parts, ",") + "\n")
		}
	}
	buf.WriteString(weightsHeader + "\n")
	for _, v := range p.Weights {
		buf.WriteString("{" + formatFloat(v) + "}\n")
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "writing parameters")
}

func corrupt(line int, format string, args ...interface{}) error {
	return errors.Wrapf(nn.ErrCorruptParameterFile, "line %d: "+format, append([]interface{}{line}, args...)...)
}

func (c TextCodec) Decode(r io.Reader) (*nn.Parameters, error) {
	p := &nn.Parameters{Kind: c.Kind}
	var (
		section             string
		sawWeights, sawBeta bool
		lineNo              int
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "--") {
			switch line {
			case efficiencyHeader, betaHeader, centersHeader:
			case weightsHeader:
				sawWeights = true
			default:
				return nil, corrupt(lineNo, "unknown section %q", line)
			}
			section = line
			continue
		}
		switch section {
		case efficiencyHeader:
			v, err := strconv.ParseFloat(line, 64)
			if err != nil {
				return nil, corrupt(lineNo, "metric %q", line)
			}
			p.Metric = v
		case betaHeader:
			v, err := strconv.ParseFloat(line, 64)
			if err != nil {
				return nil, corrupt(lineNo, "beta %q", line)
			}
			p.Beta = v
			sawBeta = true
		case centersHeader:
			fields := strings.Split(line, ",")
			center := make([]float64, len(fields))
			for i, f := range fields {
				v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
				if err != nil {
					return nil, corrupt(lineNo, "center value %q", f)
				}
				center[i] = v
			}
			p.Centers = append(p.Centers, center)
		case weightsHeader:
			if len(line) < 2 || line[0] != '{' || line[len(line)-1] != '}' {
				return nil, corrupt(lineNo, "weight %q is not wrapped in braces", line)
			}
			v, err := strconv.ParseFloat(line[1:len(line)-1], 64)
			if err != nil {
				return nil, corrupt(lineNo, "weight %q", line)
			}
			p.Weights = append(p.Weights, v)
		default:
			return nil, corrupt(lineNo, "value outside of any section")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading parameters")
	}
	if !sawWeights {
		return nil, errors.Wrap(nn.ErrCorruptParameterFile, "missing "+weightsHeader+" section")
	}
	if c.Kind == nn.RBF && !sawBeta {
		return nil, errors.Wrap(nn.ErrCorruptParameterFile, "missing "+betaHeader+" section")
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(nn.ErrCorruptParameterFile, err.Error())
	}
	return p, nil
}

// JSONCodec is the MLP format: the efficiency header followed by every layer
// matrix as a single JSON line.
type JSONCodec struct{}

func (JSONCodec) Encode(w io.Writer, p *nn.Parameters) error {
	if p.Kind != nn.MLP {
		return errors.Wrapf(nn.ErrUnknownKind, "mlp codec cannot encode %s parameters", p.Kind)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(efficiencyHeader + "\n")
	buf.WriteString(formatFloat(p.Metric) + "\n")
	buf.WriteString(layersHeader + "\n")
	// Encoder terminates the line
	if err := json.NewEncoder(&buf).Encode(p.Layers); err != nil {
		return errors.Wrap(err, "encoding layers")
	}
	_, err := w.Write(buf.Bytes())
	return errors.Wrap(err, "writing parameters")
}

func (JSONCodec) Decode(r io.Reader) (*nn.Parameters, error) {
	p := &nn.Parameters{Kind: nn.MLP}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 256*1024*1024)
	var section string
	sawLayers := false
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case line == efficiencyHeader || line == layersHeader:
			section = line
			continue
		case strings.HasPrefix(line, "--"):
			return nil, corrupt(lineNo, "unknown section %q", line)
		}
		switch section {
		case efficiencyHeader:
			v, err := strconv.ParseFloat(line, 64)
			if err != nil {
				return nil, corrupt(lineNo, "metric %q", line)
			}
			p.Metric = v
		case layersHeader:
			if err := json.Unmarshal([]byte(line), &p.Layers); err != nil {
				return nil, corrupt(lineNo, "layers: %v", err)
			}
			sawLayers = true
		default:
			return nil, corrupt(lineNo, "value outside of any section")
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading parameters")
	}
	if !sawLayers {
		return nil, errors.Wrap(nn.ErrCorruptParameterFile, "missing "+layersHeader+" section")
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(nn.ErrCorruptParameterFile, err.Error())
	}
	return p, nil
}
