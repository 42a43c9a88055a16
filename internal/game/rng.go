package game

import "math/rand/v2"

// RNG is the single run-scoped random stream. Every random draw in a run
// (draft sampling, reshuffles, opponent picks) goes through it in call order,
// so a fixed seed reproduces a run exactly.
type RNG struct {
	seed uint64
	r    *rand.Rand
}

// NewRNG creates a stream from seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{seed: seed, r: rand.New(rand.NewPCG(seed, 0))}
}

// Seed returns the seed the stream was created with.
func (g *RNG) Seed() uint64 {
	return g.seed
}

// IntN returns a uniform integer in [0, n). n must be > 0.
func (g *RNG) IntN(n int) int {
	return g.r.IntN(n)
}

// Between returns a uniform integer in [lo, hi]. If hi <= lo it returns lo
// without consuming randomness.
func (g *RNG) Between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.r.IntN(hi-lo+1)
}

// Shuffle randomizes the order of n elements.
func (g *RNG) Shuffle(n int, swap func(i, j int)) {
	g.r.Shuffle(n, swap)
}

// Perm returns a random permutation of [0, n).
func (g *RNG) Perm(n int) []int {
	return g.r.Perm(n)
}
