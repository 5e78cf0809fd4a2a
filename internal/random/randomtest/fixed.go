// Package randomtest provides deterministic random sources for tests.
package randomtest

// Fixed replays a fixed sequence of values, wrapping around at the end.
// It satisfies random.Source and is only meant for tests that need exact
// draws.
type Fixed struct {
	Values []float64
	next   int
}

// Float64 returns the next value of the sequence.
func (f *Fixed) Float64() float64 {
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}
