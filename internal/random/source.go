// Package random provides the explicit random source shared by the
// generation stages. A Source is seeded once per process and passed
// down; no stage touches the global generator.
package random

import (
	"math/rand/v2"
	"time"
)

// Source is the subset of *rand.Rand the generators draw from.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
}

// New returns a PCG-backed source seeded with seed.
func New(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewFromClock returns a source seeded from the wall clock, along with the
// seed used so a run can be reproduced.
func NewFromClock() (*rand.Rand, uint64) {
	seed := uint64(time.Now().UnixNano())
	return New(seed), seed
}
