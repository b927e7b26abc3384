package utils

import "math"

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FiniteOr returns v when finite, otherwise fallback.
func FiniteOr(v, fallback float64) float64 {
	if IsFinite(v) {
		return v
	}
	return fallback
}

// FinitePtr dereferences p when it points at a finite value.
func FinitePtr(p *float64) (float64, bool) {
	if p == nil || !IsFinite(*p) {
		return 0, false
	}
	return *p, true
}

// Round rounds val to the given number of decimal places (half away from zero).
func Round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
