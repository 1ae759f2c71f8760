package neuralnet

import "github.com/pkg/errors"

// Optimizer supplies the learning rate for the next training budget and
// adjusts it once the budget is spent.
type Optimizer interface {
	LearningRate() float64
	Step() error
}

// SGD keeps a plain learning rate that is multiplied by Decay after every
// step. A Decay of 0 or 1 keeps the rate constant.
type SGD struct {
	Lr    float64
	Decay float64
}

func (o *SGD) LearningRate() float64 {
	return o.Lr
}

// Step applies the decay.
func (o *SGD) Step() error {
	if !(o.Lr > 0) {
		return errors.Errorf("invalid learning rate %v", o.Lr)
	}
	if o.Decay > 0 {
		o.Lr *= o.Decay
	}
	return nil
}
