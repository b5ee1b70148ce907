package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/njchilds90/mathcmd/symbolic"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{5, "5"},
		{-2, "-2"},
		{math.Copysign(0, -1), "0"},
		{3.5, "3.5"},
		{10.0 / 3, "3.3333"},
		{2.00001, "2.0"},
		{-1.23456, "-1.2346"},
		{1e-7, "0.0"},
		{1 << 60, "1152921504606846976"},
		{1e20, "100000000000000000000"},
		{-1e16, "-10000000000000000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in), "%v", tt.in)
	}
}

func TestFormatInput(t *testing.T) {
	assert.Equal(t, "100.0", formatInput(100))
	assert.Equal(t, "2.5", formatInput(2.5))
	assert.Equal(t, "-40.0", formatInput(-40))
	assert.Equal(t, "100000000000000000000.0", formatInput(1e20))
}

func TestFormatRoot(t *testing.T) {
	assert.Equal(t, "3/2", formatRoot(symbolic.F(3, 2), true))
	assert.Equal(t, "2", formatRoot(symbolic.N(2), false))
	assert.Equal(t, "1.4142", formatRoot(symbolic.NFloat(math.Sqrt2), false))
}

func TestGuard_RecoversPanics(t *testing.T) {
	boom := func(string) Result { panic("kaboom") }
	assert.Equal(t, NoMatch, guard(IntentCalculus, boom, "differentiate"))
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "5", Value("5").String())
	assert.Equal(t, "Error: Undefined result", Fail("Undefined result").String())
	assert.Equal(t, "", NoMatch.String())
	assert.False(t, NoMatch.Matched())
	assert.Equal(t, "error", KindError.String())
}
