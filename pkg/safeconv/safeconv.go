// Package safeconv provides clamping integer conversions for wire types.
package safeconv

import "math"

// Int64ToInt32 converts v, clamping to the int32 range.
func Int64ToInt32(v int64) int32 {
	switch {
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	default:
		return int32(v)
	}
}

// IntToInt32 converts v, clamping to the int32 range.
func IntToInt32(v int) int32 {
	return Int64ToInt32(int64(v))
}

// FloatToInt converts a JSON number to int, clamping and truncating.
// NaN yields zero.
func FloatToInt(f float64) int {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	default:
		return int(f)
	}
}

// FloatToInt64 converts a JSON number to int64, clamping to the range
// a float64 can represent exactly.
func FloatToInt64(f float64) int64 {
	const maxExact = 1 << 53
	switch {
	case math.IsNaN(f):
		return 0
	case f >= maxExact:
		return maxExact
	case f <= -maxExact:
		return -maxExact
	default:
		return int64(f)
	}
}
