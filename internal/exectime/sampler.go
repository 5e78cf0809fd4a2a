// Package exectime samples best- and worst-case execution times.
package exectime

import "github.com/ChuLiYu/taskgen/internal/random"

const (
	// BaseBCET is the smallest best-case execution time, in seconds.
	BaseBCET = 0.1

	// wcetSpread scales the shared draw into the WCET margin.
	wcetSpread = 0.5
)

// Times is one task's execution-time pair, in seconds.
type Times struct {
	BCET float64
	WCET float64
}

// Sample returns n (BCET, WCET) pairs. Each task uses a single uniform draw u:
// BCET = 0.1 + u and WCET = BCET + 0.5u, so WCET >= BCET >= 0.1.
func Sample(src random.Source, n int) []Times {
	if n <= 0 {
		return nil
	}

	out := make([]Times, n)
	for i := range out {
		u := src.Float64()
		bcet := BaseBCET + u
		out[i] = Times{
			BCET: bcet,
			WCET: bcet + wcetSpread*u,
		}
	}
	return out
}
