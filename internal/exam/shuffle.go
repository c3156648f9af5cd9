package exam

import "math/rand/v2"

// RandSource yields uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultRand is the process-wide source, safe for concurrent use.
var DefaultRand RandSource = globalSource{}

// NewSeededRand returns a deterministic source, for replays and tests.
func NewSeededRand(seed1, seed2 uint64) RandSource {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// Shuffle returns a Fisher-Yates permutation of items. The input is left untouched.
func Shuffle[T any](r RandSource, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
