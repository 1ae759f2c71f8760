package neuralnet

import (
	"testing"

	"github.com/pkg/errors"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"linear_model", Linear},
		{"linear", Linear},
		{"rbf_model", RBF},
		{"rbfn_model", RBF},
		{"rbf", RBF},
		{"mlp_model", MLP},
		{"mlp", MLP},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Errorf("ParseKind(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseKind("svm_model"); errors.Cause(err) != ErrUnknownKind {
		t.Errorf("ParseKind(svm_model) err = %v; want ErrUnknownKind", err)
	}
	for _, k := range []Kind{Linear, RBF, MLP} {
		back, err := ParseKind(k.String())
		if err != nil || back != k {
			t.Errorf("ParseKind(%v.String()) = %v, %v", k, back, err)
		}
	}
}

func TestOneVsRest(t *testing.T) {
	if !Linear.OneVsRest() || !RBF.OneVsRest() || MLP.OneVsRest() {
		t.Error("only the linear and rbf models train one model per category")
	}
}

func TestNewEveryKind(t *testing.T) {
	spec := Spec{InputDim: 4, Classes: 3, Hidden: []int{5}, Centers: 2}
	for _, k := range []Kind{Linear, RBF, MLP} {
		m, err := New(k, spec, testRand(1))
		if err != nil {
			t.Fatalf("New(%v) err = %v", k, err)
		}
		if m.Kind() != k {
			t.Errorf("New(%v).Kind() = %v", k, m.Kind())
		}
		if m.InputDim() != 4 {
			t.Errorf("New(%v).InputDim() = %d; want 4", k, m.InputDim())
		}
		p := m.Parameters()
		if err := p.Validate(); err != nil {
			t.Errorf("New(%v).Parameters() invalid: %v", k, err)
		}
	}
}

func TestNewDefaultsBeta(t *testing.T) {
	m, err := New(RBF, Spec{InputDim: 4, Centers: 1}, testRand(1))
	if err != nil {
		t.Fatal(err)
	}
	if beta := m.Parameters().Beta; !floatEquals(beta, 0.25, 1e-12) {
		t.Errorf("default beta = %v; want 0.25", beta)
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		description string
		kind        Kind
		spec        Spec
		want        error
	}{
		{"no inputs", Linear, Spec{}, ErrDimensionMismatch},
		{"rbf without centers", RBF, Spec{InputDim: 2}, ErrInvalidTopology},
		{"rbf negative beta", RBF, Spec{InputDim: 2, Centers: 1, Beta: -1}, ErrInvalidBeta},
		{"mlp without classes", MLP, Spec{InputDim: 2}, ErrInvalidTopology},
		{"unknown kind", Kind(9), Spec{InputDim: 2}, ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if _, err := New(tt.kind, tt.spec, testRand(1)); errors.Cause(err) != tt.want {
				t.Errorf("err = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestFromParameters(t *testing.T) {
	spec := Spec{InputDim: 3, Classes: 2, Hidden: []int{2}, Centers: 2, Beta: 0.5}
	input := []float64{0.1, 0.5, 0.9}
	for _, k := range []Kind{Linear, RBF, MLP} {
		m, err := New(k, spec, testRand(3))
		if err != nil {
			t.Fatal(err)
		}
		want, err := m.Score(input)
		if err != nil {
			t.Fatal(err)
		}
		loaded, err := FromParameters(m.Parameters(), spec, testRand(4))
		if err != nil {
			t.Fatalf("FromParameters(%v) err = %v", k, err)
		}
		got, err := loaded.Score(input)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%v: loaded score = %v; want %v", k, got, want)
		}
	}
}

func TestParametersValidate(t *testing.T) {
	tests := []struct {
		description string
		params      Parameters
		want        error
	}{
		{"linear no bias", Parameters{Kind: Linear}, ErrDimensionMismatch},
		{"rbf center count", Parameters{Kind: RBF, Weights: []float64{0, 1}, Beta: 1}, ErrDimensionMismatch},
		{"rbf ragged centers", Parameters{Kind: RBF, Weights: []float64{0, 1, 1}, Centers: [][]float64{{1, 2}, {1}}, Beta: 1}, ErrDimensionMismatch},
		{"rbf zero beta", Parameters{Kind: RBF, Weights: []float64{0, 1}, Centers: [][]float64{{1}}}, ErrInvalidBeta},
		{"mlp no layers", Parameters{Kind: MLP}, ErrInvalidTopology},
		{"mlp bias only", Parameters{Kind: MLP, Layers: [][][]float64{{{0, 0}}}}, ErrInvalidTopology},
		{"mlp broken chain", Parameters{Kind: MLP, Layers: [][][]float64{
			{{0, 0}, {1, 1}},
			{{0}, {1}, {1}, {1}},
		}}, ErrInvalidTopology},
		{"unknown", Parameters{Kind: Kind(7)}, ErrUnknownKind},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			if err := tt.params.Validate(); errors.Cause(err) != tt.want {
				t.Errorf("Validate() = %v; want %v", err, tt.want)
			}
		})
	}
}

func TestParametersClone(t *testing.T) {
	p := &Parameters{Kind: RBF, Weights: []float64{0, 1}, Centers: [][]float64{{2, 3}}, Beta: 1, Metric: 40}
	c := p.Clone()
	c.Weights[1] = 9
	c.Centers[0][0] = 9
	if p.Weights[1] != 1 || p.Centers[0][0] != 2 {
		t.Errorf("Clone shares storage with the original: %+v", p)
	}
	if c.InputDim() != 2 {
		t.Errorf("InputDim() = %d; want 2", c.InputDim())
	}
}

func TestAccuracyEmpty(t *testing.T) {
	m := NewLinearClassifier(2, testRand(1))
	if _, err := Accuracy(m, nil); errors.Cause(err) != ErrEmptyDataset {
		t.Errorf("Accuracy(nil) err = %v; want ErrEmptyDataset", err)
	}
	if _, err := MeanCost(m, nil); errors.Cause(err) != ErrEmptyDataset {
		t.Errorf("MeanCost(nil) err = %v; want ErrEmptyDataset", err)
	}
}

func TestSampleClass(t *testing.T) {
	if c := (Sample{Target: OneHot(2, 4)}).Class(); c != 2 {
		t.Errorf("Class() = %d; want 2", c)
	}
	if c := (Sample{Target: []float64{0, 0}}).Class(); c != -1 {
		t.Errorf("Class() of empty target = %d; want -1", c)
	}
	if err := CheckDims([]Sample{{Features: []float64{1}}, {Features: []float64{1, 2}}}, 1); errors.Cause(err) != ErrDimensionMismatch {
		t.Errorf("CheckDims err = %v; want ErrDimensionMismatch", err)
	}
}
