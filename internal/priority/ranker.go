// ============================================================================
// Priority Ranker
// ============================================================================
//
// Package: internal/priority
// File: ranker.go
// Purpose: Turn raw per-task priority draws into a strict ranking 1..N
//
// Ranking rules:
//   - Every task receives a distinct rank; the ranks are exactly {1, ..., N}
//   - A lower draw always yields a lower rank
//   - Equal draws are resolved by original position: the earlier task wins
//     the lower rank
//
// Example:
//   draws [2, 0, 1] → ranks [3, 1, 2]
//   draws [1, 1, 0] → ranks [2, 3, 1]
//
// ============================================================================

// Package priority assigns unique priority ranks to the tasks of one run.
package priority

import (
	"fmt"
	"math"
	"slices"

	"github.com/ChuLiYu/taskgen/internal/random"
)

// slot pairs a draw with the position of the task that produced it.
type slot struct {
	draw  int
	index int
}

// Draw samples n raw priority draws, each uniform in [0, n).
func Draw(src random.Source, n int) []int {
	if n <= 0 {
		return nil
	}

	draws := make([]int, n)
	for i := range draws {
		d := int(math.Floor(src.Float64() * float64(n)))
		draws[i] = min(max(d, 0), n-1)
	}
	return draws
}

// Rank maps draws to unique ranks. ranks[k] is the rank of the task that
// produced draws[k].
func Rank(draws []int) ([]int, error) {
	n := len(draws)
	if n == 0 {
		return nil, fmt.Errorf("%w: no draws to rank", ErrInvalidInput)
	}

	slots := make([]slot, n)
	for i, d := range draws {
		if d < 0 || d >= n {
			return nil, fmt.Errorf("%w: draw %d at position %d outside [0, %d)", ErrInvalidInput, d, i, n)
		}
		slots[i] = slot{draw: d, index: i}
	}

	// Stable on index, so equal draws keep their original order.
	slices.SortStableFunc(slots, func(a, b slot) int {
		return a.draw - b.draw
	})

	ranks := make([]int, n)
	for pos, s := range slots {
		ranks[s.index] = pos + 1
	}
	return ranks, nil
}

// Assign draws n raw priorities from src and ranks them.
func Assign(src random.Source, n int) ([]int, error) {
	return Rank(Draw(src, n))
}
