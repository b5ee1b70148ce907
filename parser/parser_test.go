package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathcmd/parser"
	"github.com/njchilds90/mathcmd/symbolic"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"sum", "1 + 2", "3"},
		{"precedence", "2 + 3 * 4", "14"},
		{"power star", "2 ** 3", "8"},
		{"power caret", "2^3", "8"},
		{"right associative power", "2**3**2", "512"},
		{"unary minus binds looser than power", "-2**2", "-4"},
		{"negative exponent", "2**-1", "1/2"},
		{"decimal", "0.5 + 0.25", "3/4"},
		{"implicit number symbol", "2x", "2*x"},
		{"implicit paren", "x(x+1)", "x*(x + 1)"},
		{"implicit paren paren", "(x+1)(x+1)", "(x + 1)**2"},
		{"division then implicit", "1/2x", "x/2"},
		{"function call", "sin(x)", "sin(x)"},
		{"function without parens", "sin x", "sin(x)"},
		{"function binds power", "sin x**2", "sin(x**2)"},
		{"function product", "sin x cos x", "cos(x)*sin(x)"},
		{"log is natural", "log x", "ln(x)"},
		{"exp", "exp x", "exp(x)"},
		{"sqrt", "sqrt(16)", "4"},
		{"euler", "e**x", "exp(x)"},
		{"pi constant", "2pi", "2*pi"},
		{"spaces", "  x   **2 ", "x**2"},
		{"scientific", "2e3", "2000"},
		{"scientific negative exponent", "1.5e-2", "3/200"},
		{"scientific upper case", "4E+1 + 2", "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParse_EulerAfterNumber(t *testing.T) {
	tests := []struct{ src, same string }{
		{"2e", "2*e"},
		{"2 e3", "2*e*3"},
		{"2e-x", "2*e - x"},
		{"3ex", "3*e*x"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := parser.Parse(tt.src)
			require.NoError(t, err)
			want, err := parser.Parse(tt.same)
			require.NoError(t, err)
			assert.Equal(t, want.String(), got.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := parser.Parse("   ")
	assert.ErrorIs(t, err, parser.ErrEmpty)

	for _, src := range []string{"2 +", "(1 + 2", "1 + 2)", "sin", "3 $ 4", "[[1,2]]"} {
		t.Run(src, func(t *testing.T) {
			_, err := parser.Parse(src)
			assert.ErrorIs(t, err, parser.ErrSyntax)
		})
	}
}

func TestParse_LiteralFallback(t *testing.T) {
	got, err := parser.Parse("10 % 4")
	require.NoError(t, err)
	v, ok := symbolic.Evalf(got, nil)
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestParse_DivisionByZeroStaysUnevaluated(t *testing.T) {
	got, err := parser.Parse("1/0")
	require.NoError(t, err)
	_, ok := got.Eval()
	assert.False(t, ok)
}
