package randutil

import (
	rand "math/rand/v2"
	"sync"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. Both PCG
// words are derived from the one seed so every call site reproduces the
// same sequence.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns seed when set, otherwise a time based seed.
func Seed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}

// Source hands out independent generators derived from one master seed.
// Each room shuffles with its own generator so rooms never share RNG state.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSource creates a Source for the given master seed.
func NewSource(seed int64) *Source {
	return &Source{rng: New(seed)}
}

// Next returns a fresh generator seeded from the master sequence.
func (s *Source) Next() *rand.Rand {
	s.mu.Lock()
	defer s.mu.Unlock()
	return New(s.rng.Int64())
}

// IntN returns a value in [0, n) from the master sequence.
func (s *Source) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
