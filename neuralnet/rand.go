package neuralnet

import (
	"math/rand"
	"time"
)

// Rand is the source of randomness used for initialization and sampling.
// *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
	Perm(n int) []int
}

// NewRand returns a pseudo-random source. A zero seed seeds from the clock.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// uniform draws from [lo, hi).
func uniform(rng Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
