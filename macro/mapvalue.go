package macro

import (
	"math"
	"strconv"
	"strings"
)

// parseCurve splits a curve spec into (kind, gamma). Recognized forms are
// "linear", "pow", "power" and "pow:<gamma>"; anything else is linear.
// A gamma that does not parse falls back to 1.0.
func parseCurve(curve string) (string, float64) {
	c := strings.ToLower(strings.TrimSpace(curve))
	if c == "" {
		return "linear", 1.0
	}
	if rest, ok := strings.CutPrefix(c, "pow:"); ok {
		gamma, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			gamma = 1.0
		}
		return "pow", gamma
	}
	if c == "pow" || c == "power" {
		return "pow", 1.0
	}
	return "linear", 1.0
}

// MapValue maps x from [inMin,inMax] to [outMin,outMax] through a response
// curve, returning the nearest integer (ties round away from zero, via
// math.Round).
//
// Normalization of a degenerate input range (inMin == inMax) yields t = 0.
// When clamp is set the *normalized* value is clamped to [0,1] before the
// curve; the output is never re-clamped, so with clamp=false the result
// extrapolates past the output range.
func MapValue(x, inMin, inMax, outMin, outMax float64, curve string, invert, clamp bool) int {
	var t float64
	if inMax != inMin {
		t = (x - inMin) / (inMax - inMin)
	}
	if clamp {
		t = math.Max(0, math.Min(1, t))
	}

	if kind, gamma := parseCurve(curve); kind == "pow" {
		// gamma > 1 biases toward the low end, gamma < 1 toward the high end
		t = math.Pow(math.Max(0, t), math.Max(1e-9, gamma))
	}

	if invert {
		t = 1 - t
	}

	return int(math.Round(outMin + t*(outMax-outMin)))
}
