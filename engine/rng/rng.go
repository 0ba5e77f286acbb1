// Package rng provides the deterministic random source shared by NPCs:
// reply selection among alternatives and weighted quest customer picks.
package rng

import (
	"math/rand"
	"sync"
)

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every call, enabling save/restore. It is safe for
// use by several NPCs at once.
type RNG struct {
	mu   sync.Mutex
	seed int64
	src  *rand.Rand
	pos  int64
}

// New creates a new deterministic RNG from a seed.
func New(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// Roll returns a random integer in [1, sides].
func (r *RNG) Roll(sides int) int {
	return r.Pick(sides) + 1
}

// Pick returns a random index in [0, n). n must be positive. Every call
// consumes exactly one value from the source so that Restore is exact.
func (r *RNG) Pick(n int) int {
	if n <= 0 {
		panic("rng: Pick with non-positive n")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos++
	return int(r.src.Int63() % int64(n))
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty with all positive values.
func (r *RNG) WeightedSelect(weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	roll := r.Pick(total)
	cumulative := 0
	for i, w := range weights {
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}

// Seed returns the seed the RNG was created from.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of RNG calls made since creation.
func (r *RNG) Position() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pos
}

// Restore creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func Restore(seed int64, position int64) *RNG {
	rng := New(seed)
	for i := int64(0); i < position; i++ {
		rng.src.Int63()
	}
	rng.pos = position
	return rng
}
