package neuralnet

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

type mlpLayer struct {
	// (inputs+1) x neurons, row 0 holds the biases
	weights *mat.Dense
	// bias-prepended input seen by the last forward pass
	input  []float64
	output []float64
	deltas []float64
	// weights before the last update, restored when it fails
	backup []float64
}

const (
	stepReady = iota
	stepForwarded
	stepBackpropagated
)

// MultilayerPerceptron is a fully connected network with sigmoid hidden
// layers and a softmax output layer, trained online by backpropagation. One training step is
// ForwardPropagate, BackwardPropagateError, UpdateWeights, in that order; an
// MLP must not be shared between goroutines.
type MultilayerPerceptron struct {
	topology   []int
	layers     []*mlpLayer
	activation ActivationFunction
	loss       *CrossEntropy
	state      int
	metric     float64
}

// NewMLP builds a network for neuronsPerLayer, e.g. [inputs, hidden..., classes].
// Non-bias weights are drawn uniformly from [-1, 1]; biases start at zero.
func NewMLP(neuronsPerLayer []int, rng Rand) (*MultilayerPerceptron, error) {
	if len(neuronsPerLayer) < 2 {
		return nil, errors.Wrapf(ErrInvalidTopology, "need at least 2 layers, got %d", len(neuronsPerLayer))
	}
	for i, n := range neuronsPerLayer {
		if n <= 0 {
			return nil, errors.Wrapf(ErrInvalidTopology, "layer %d has width %d", i, n)
		}
	}
	m := newMLP(neuronsPerLayer)
	for l := range m.layers {
		rows, cols := neuronsPerLayer[l]+1, neuronsPerLayer[l+1]
		data := make([]float64, rows*cols)
		for i := cols; i < len(data); i++ {
			data[i] = uniform(rng, -1, 1)
		}
		m.layers[l].weights = mat.NewDense(rows, cols, data)
	}
	return m, nil
}

func newMLP(topology []int) *MultilayerPerceptron {
	m := &MultilayerPerceptron{
		topology:   append([]int(nil), topology...),
		layers:     make([]*mlpLayer, len(topology)-1),
		activation: Sigmoid{},
		loss:       &CrossEntropy{Epsilon: DefaultEpsilon},
	}
	for l := range m.layers {
		m.layers[l] = &mlpLayer{
			output: make([]float64, topology[l+1]),
			deltas: make([]float64, topology[l+1]),
		}
	}
	return m
}

func (m *MultilayerPerceptron) Kind() Kind    { return MLP }
func (m *MultilayerPerceptron) InputDim() int { return m.topology[0] }

// Topology returns the neuron count of every layer, input first.
func (m *MultilayerPerceptron) Topology() []int { return append([]int(nil), m.topology...) }

// ForwardPropagate computes the class distribution for input and caches the
// per-layer inputs and outputs for the backward pass.
func (m *MultilayerPerceptron) ForwardPropagate(input []float64) ([]float64, error) {
	if len(input) != m.topology[0] {
		return nil, errors.Wrapf(ErrDimensionMismatch, "got %d inputs, want %d", len(input), m.topology[0])
	}
	m.state = stepReady
	activations := input
	last := len(m.layers) - 1
	for l, layer := range m.layers {
		layer.input = append(append(layer.input[:0], 1), activations...)
		var z mat.VecDense
		z.MulVec(layer.weights.T(), mat.NewVecDense(len(layer.input), layer.input))
		logits := z.RawVector().Data
		if l == last {
			copy(layer.output, Softmax(logits))
		} else {
			for j, v := range logits {
				layer.output[j] = m.activation.Activate(v)
			}
		}
		for j, v := range layer.output {
			if !finite(v) {
				return nil, errors.Wrapf(ErrNumericInstability, "layer %d neuron %d output %v", l, j, v)
			}
		}
		activations = layer.output
	}
	m.state = stepForwarded
	return append([]float64(nil), activations...), nil
}

// CrossEntropyError returns the clamped cross-entropy between output and a
// one-hot expected vector of the same length.
func (m *MultilayerPerceptron) CrossEntropyError(output, expected []float64) (float64, error) {
	if len(output) != len(expected) {
		return 0, errors.Wrapf(ErrDimensionMismatch, "got %d targets for %d outputs", len(expected), len(output))
	}
	return m.loss.Compute(output, expected), nil
}

// checkTargets verifies every sample has one target per output neuron.
func (m *MultilayerPerceptron) checkTargets(samples []Sample) error {
	outSize := m.topology[len(m.topology)-1]
	for i, s := range samples {
		if len(s.Target) != outSize {
			return errors.Wrapf(ErrDimensionMismatch, "sample %d has %d targets, want %d", i, len(s.Target), outSize)
		}
	}
	return nil
}

// BackwardPropagateError computes every layer's deltas for expected. The
// sigmoid derivative a*(1-a) is applied to the cached outputs of every layer,
// the softmax output layer included.
func (m *MultilayerPerceptron) BackwardPropagateError(expected []float64) error {
	if m.state != stepForwarded {
		return errors.Wrap(ErrOutOfOrder, "backward pass without a forward pass")
	}
	outSize := m.topology[len(m.topology)-1]
	if len(expected) != outSize {
		return errors.Wrapf(ErrDimensionMismatch, "got %d targets, want %d", len(expected), outSize)
	}
	for l := len(m.layers) - 1; l >= 0; l-- {
		layer := m.layers[l]
		var errs []float64
		if l == len(m.layers)-1 {
			grad := m.loss.Gradient(layer.output, expected)
			errs = make([]float64, len(grad))
			floats.ScaleTo(errs, -1, grad)
		} else {
			next := m.layers[l+1]
			rows, cols := next.weights.Dims()
			// skip the bias row: neuron j feeds row j+1 of the next layer
			w := next.weights.Slice(1, rows, 0, cols)
			var e mat.VecDense
			e.MulVec(w, mat.NewVecDense(len(next.deltas), next.deltas))
			errs = e.RawVector().Data
		}
		for j, a := range layer.output {
			layer.deltas[j] = errs[j] * m.activation.Derivative(a)
		}
	}
	m.state = stepBackpropagated
	return nil
}

// UpdateWeights applies w[j][k] += learningRate * delta[k] * input[j] to every
// layer, using the bias-prepended inputs cached by the forward pass. An update
// that produces a non-finite weight is undone in every layer.
func (m *MultilayerPerceptron) UpdateWeights(learningRate float64) error {
	if m.state != stepBackpropagated {
		return errors.Wrap(ErrOutOfOrder, "weight update without a backward pass")
	}
	m.state = stepReady
	for _, layer := range m.layers {
		layer.backup = append(layer.backup[:0], layer.weights.RawMatrix().Data...)
	}
	for l, layer := range m.layers {
		in := mat.NewVecDense(len(layer.input), layer.input)
		delta := mat.NewVecDense(len(layer.deltas), layer.deltas)
		layer.weights.RankOne(layer.weights, learningRate, in, delta)
		for _, w := range layer.weights.RawMatrix().Data {
			if !finite(w) {
				for _, restored := range m.layers[:l+1] {
					copy(restored.weights.RawMatrix().Data, restored.backup)
				}
				return errors.Wrapf(ErrNumericInstability, "layer %d weight %v", l, w)
			}
		}
	}
	return nil
}

// TrainEpochs runs fully online training for epochs passes over samples and
// returns the mean cross-entropy of every epoch.
func (m *MultilayerPerceptron) TrainEpochs(samples []Sample, learningRate float64, epochs int) ([]float64, error) {
	if len(samples) == 0 {
		return nil, errors.Wrap(ErrEmptyDataset, "mlp training")
	}
	if err := CheckDims(samples, m.topology[0]); err != nil {
		return nil, err
	}
	if err := m.checkTargets(samples); err != nil {
		return nil, err
	}
	history := make([]float64, 0, epochs)
	for e := 0; e < epochs; e++ {
		var total float64
		for i, s := range samples {
			out, err := m.ForwardPropagate(s.Features)
			if err != nil {
				return history, errors.Wrapf(err, "epoch %d sample %d", e, i)
			}
			loss, err := m.CrossEntropyError(out, s.Target)
			if err != nil {
				return history, errors.Wrapf(err, "epoch %d sample %d", e, i)
			}
			total += loss
			if err := m.BackwardPropagateError(s.Target); err != nil {
				return history, errors.Wrapf(err, "epoch %d sample %d", e, i)
			}
			if err := m.UpdateWeights(learningRate); err != nil {
				return history, errors.Wrapf(err, "epoch %d sample %d", e, i)
			}
		}
		history = append(history, total/float64(len(samples)))
	}
	return history, nil
}

// Train implements Model; budget is the number of epochs.
func (m *MultilayerPerceptron) Train(samples []Sample, budget int, learningRate float64) error {
	_, err := m.TrainEpochs(samples, learningRate, budget)
	return err
}

// Predict returns the index of the most probable class, the first one on ties.
func (m *MultilayerPerceptron) Predict(input []float64) (int, error) {
	out, err := m.ForwardPropagate(input)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(out), nil
}

// Score returns the probability of the predicted class.
func (m *MultilayerPerceptron) Score(input []float64) (float64, error) {
	out, err := m.ForwardPropagate(input)
	if err != nil {
		return 0, err
	}
	return floats.Max(out), nil
}

func (m *MultilayerPerceptron) Correct(s Sample) (bool, error) {
	class, err := m.Predict(s.Features)
	if err != nil {
		return false, err
	}
	return class == s.Class(), nil
}

func (m *MultilayerPerceptron) Cost(s Sample) (float64, error) {
	out, err := m.ForwardPropagate(s.Features)
	if err != nil {
		return 0, err
	}
	return m.CrossEntropyError(out, s.Target)
}

func (m *MultilayerPerceptron) Parameters() *Parameters {
	layers := make([][][]float64, len(m.layers))
	for l, layer := range m.layers {
		rows, _ := layer.weights.Dims()
		layers[l] = make([][]float64, rows)
		for r := 0; r < rows; r++ {
			layers[l][r] = mat.Row(nil, r, layer.weights)
		}
	}
	return &Parameters{Kind: MLP, Layers: layers, Metric: m.metric}
}

// SetParameters replaces every layer matrix. The topology follows the loaded
// layers.
func (m *MultilayerPerceptron) SetParameters(p *Parameters) error {
	if p.Kind != MLP {
		return errors.Wrapf(ErrUnknownKind, "cannot load %s parameters into an mlp", p.Kind)
	}
	if err := p.Validate(); err != nil {
		return err
	}
	topology := make([]int, 0, len(p.Layers)+1)
	topology = append(topology, len(p.Layers[0])-1)
	for _, layer := range p.Layers {
		topology = append(topology, len(layer[0]))
	}
	loaded := newMLP(topology)
	for l, layer := range p.Layers {
		rows, cols := len(layer), len(layer[0])
		data := make([]float64, 0, rows*cols)
		for _, row := range layer {
			data = append(data, row...)
		}
		loaded.layers[l].weights = mat.NewDense(rows, cols, data)
	}
	m.topology = loaded.topology
	m.layers = loaded.layers
	m.metric = p.Metric
	m.state = stepReady
	return nil
}
