package utils

import "math"

// IsFinite reports whether v is neither NaN nor an infinity
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsPositive reports whether v is a finite number above zero
func IsPositive(v float64) bool {
	return IsFinite(v) && v > 0
}
