package match

import "math/rand/v2"

// RNG is the uniform random source consumed by the engine. *rand.Rand
// satisfies it.
type RNG interface {
	Float64() float64
}

// NewStream returns a PCG generator for one unit of work. The stream id is
// scrambled so that neighbouring ids do not start from related states.
func NewStream(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, splitmix64(stream))) //nolint:gosec // simulation randomness, not security
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
