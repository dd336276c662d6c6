// Package dice provides the randomness abstraction used by the combat core:
// critical hit rolls and the scatter of heavy-thrust trail particles.
package dice

// Source is the randomness provider for the combat core.
//
// Implementations used across goroutines MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// resolution is the number of discrete steps Float64 samples from.
const resolution = 1 << 24

// Float64 draws a uniformly distributed value in [0, 1) from src.
//
// Precondition: src must be non-nil.
// Postcondition: 0 <= result < 1.
func Float64(src Source) float64 {
	return float64(src.Intn(resolution)) / resolution
}

// Chance reports whether a roll against percent succeeds.
// percent <= 0 never succeeds; percent >= 100 always succeeds.
//
// Precondition: src must be non-nil.
func Chance(src Source, percent float64) bool {
	if percent <= 0 {
		return false
	}
	if percent >= 100 {
		return true
	}
	return Float64(src)*100 < percent
}
