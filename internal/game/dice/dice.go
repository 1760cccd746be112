// Package dice provides the randomness abstraction behind every outcome-affecting
// draw in the combat core: critical hits, evasion, weapon spread, and AI rolls.
package dice

// Source is the randomness primitive consumed by a Roller.
//
// Implementations must be safe for use by a single simulation goroutine;
// the built-in sources are additionally safe for concurrent use.
type Source interface {
	// Intn returns a uniformly distributed int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a uniformly distributed float64 in [0, 1).
	Float64() float64
}

// Draw is the audit record for a single logged draw.
type Draw struct {
	Purpose string
	Value   float64
	// Threshold is the success probability for Chance draws, or -1.
	Threshold float64
	Success   bool
}
