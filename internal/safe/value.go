package safe

import (
	"math"
)

// Uint64ToInt64 safely converts an uint64 value to int64, clamping to math.MaxInt64 if overflow
// would occur.
// Returns the converted value and a boolean indicating whether clamping occurred.
func Uint64ToInt64(val uint64) (int64, bool) {
	if val > math.MaxInt64 {
		return math.MaxInt64, true
	}
	return int64(val), false
}

// CounterDelta returns the signed difference exit-entry between two monotonic counters.
// Operands are clamped before subtraction so the result never overflows, even when a
// counter wraps or resets and the delta comes out negative.
func CounterDelta(entry, exit uint64) int64 {
	e, _ := Uint64ToInt64(entry)
	x, _ := Uint64ToInt64(exit)
	return x - e
}
