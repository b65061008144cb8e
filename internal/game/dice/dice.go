// Package dice provides the randomness source shared by the tactical AI and
// the battle simulation, plus dice expressions for weapon damage.
package dice

// Source is the randomness provider.
//
// A seeded Source must yield the same sequence for the same seed so that a
// whole battle replays deterministically.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Between returns a value in [lo, hi).
//
// Precondition: hi > lo.
func Between(src Source, lo, hi int) int {
	return lo + src.Intn(hi-lo)
}

// Percent reports whether a roll succeeds against chance in [0,1].
//
// Postcondition: chance <= 0 never succeeds; chance >= 1 always does.
func Percent(src Source, chance float64) bool {
	if chance <= 0 {
		return false
	}
	if chance >= 1 {
		return true
	}
	return float64(src.Intn(10000)) < chance*10000
}
