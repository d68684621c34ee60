package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapValueLinear(t *testing.T) {
	assert.Equal(t, 64, MapValue(0.5, 0, 1, 0, 127, "", false, true))
	assert.Equal(t, 0, MapValue(0, 0, 1, 0, 127, "linear", false, true))
	assert.Equal(t, 127, MapValue(1, 0, 1, 0, 127, "linear", false, true))
	assert.Equal(t, 32, MapValue(0.25, 0, 1, 0, 127, "linear", false, true))
}

func TestMapValueDegenerateRange(t *testing.T) {
	// in_min == in_max forces t = 0 regardless of x
	assert.Equal(t, 10, MapValue(123, 5, 5, 10, 20, "linear", false, true))
	assert.Equal(t, 10, MapValue(-7, 5, 5, 10, 20, "linear", false, false))
}

func TestMapValueClamp(t *testing.T) {
	assert.Equal(t, 127, MapValue(2.5, 0, 1, 0, 127, "linear", false, true))
	assert.Equal(t, 0, MapValue(-1, 0, 1, 0, 127, "linear", false, true))
	// clamp only guards the input domain; disabled it extrapolates
	assert.Equal(t, 254, MapValue(2, 0, 1, 0, 127, "linear", false, false))
	assert.Equal(t, -127, MapValue(-1, 0, 1, 0, 127, "linear", false, false))
}

func TestMapValueCurves(t *testing.T) {
	// gamma 2 biases low: 0.5^2 = 0.25
	assert.Equal(t, 32, MapValue(0.5, 0, 1, 0, 127, "pow:2.0", false, true))
	// gamma 0.5 biases high: sqrt(0.25) = 0.5
	assert.Equal(t, 64, MapValue(0.25, 0, 1, 0, 127, "pow:0.5", false, true))
	// bare pow and power behave like gamma 1
	assert.Equal(t, 64, MapValue(0.5, 0, 1, 0, 127, "pow", false, true))
	assert.Equal(t, 64, MapValue(0.5, 0, 1, 0, 127, "power", false, true))
	// unparsable gamma falls back to 1.0
	assert.Equal(t, 64, MapValue(0.5, 0, 1, 0, 127, "pow:banana", false, true))
	// unrecognized curve is linear
	assert.Equal(t, 64, MapValue(0.5, 0, 1, 0, 127, "wiggly", false, true))
}

func TestMapValueInvert(t *testing.T) {
	assert.Equal(t, 127, MapValue(0, 0, 1, 0, 127, "linear", true, true))
	assert.Equal(t, 0, MapValue(1, 0, 1, 0, 127, "linear", true, true))
	// invert applies after the curve
	got := MapValue(0.425, 0, 1, 0, 127, "pow:2.0", true, true)
	assert.InDelta(t, 104, got, 1)
}

func TestMapValueCustomRanges(t *testing.T) {
	assert.Equal(t, 50, MapValue(5, 0, 10, 0, 100, "linear", false, true))
	assert.Equal(t, 75, MapValue(0.5, 0, 1, 50, 100, "linear", false, true))
	// inverted output ranges work too
	assert.Equal(t, 100, MapValue(0, 0, 1, 100, 0, "linear", false, true))
}
