package neuralnet

import (
	"math"
	"math/rand"
)

// Helper function for comparing floats with a tolerance
func floatEquals(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

// splitMix is a small deterministic source so training outcomes do not
// depend on the math/rand stream of a particular Go release.
type splitMix struct {
	state uint64
}

func (s *splitMix) Seed(seed int64) { s.state = uint64(seed) }

func (s *splitMix) Uint64() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (s *splitMix) Int63() int64 { return int64(s.Uint64() >> 1) }

func testRand(seed int64) *rand.Rand {
	return rand.New(&splitMix{state: uint64(seed)})
}

func twoPointSamples(perClass int) []Sample {
	var samples []Sample
	for i := 0; i < perClass; i++ {
		samples = append(samples, Sample{Features: []float64{1, 0}, Label: 1, Target: []float64{1, 0}})
	}
	for i := 0; i < perClass; i++ {
		samples = append(samples, Sample{Features: []float64{0, 1}, Label: -1, Target: []float64{0, 1}})
	}
	return samples
}
