package symbolic

import (
	"math"
	"regexp"
	"strings"
)

// ============================================================
// Float evaluation
// ============================================================

var constants = map[string]float64{
	"pi": math.Pi,
}

// Evalf evaluates e in float64 arithmetic with the given symbol bindings.
// Division by zero and domain errors surface as ±Inf and NaN rather than
// failures; ok is false only when a symbol is unbound.
func Evalf(e Expr, env map[string]float64) (float64, bool) {
	switch v := e.(type) {
	case *Num:
		return v.Float64(), true
	case *Sym:
		if x, ok := env[v.name]; ok {
			return x, true
		}
		if c, ok := constants[v.name]; ok {
			return c, true
		}
		return 0, false
	case *Add:
		acc := 0.0
		for _, t := range v.terms {
			x, ok := Evalf(t, env)
			if !ok {
				return 0, false
			}
			acc += x
		}
		return acc, true
	case *Mul:
		acc := 1.0
		for _, f := range v.factors {
			x, ok := Evalf(f, env)
			if !ok {
				return 0, false
			}
			acc *= x
		}
		return acc, true
	case *Pow:
		b, ok := Evalf(v.base, env)
		if !ok {
			return 0, false
		}
		x, ok := Evalf(v.exp, env)
		if !ok {
			return 0, false
		}
		return math.Pow(b, x), true
	case *Func:
		a, ok := Evalf(v.arg, env)
		if !ok {
			return 0, false
		}
		return applyFloat(v.name, a)
	}
	return 0, false
}

func applyFloat(name string, a float64) (float64, bool) {
	switch name {
	case "sin":
		return math.Sin(a), true
	case "cos":
		return math.Cos(a), true
	case "tan":
		return math.Tan(a), true
	case "asin":
		return math.Asin(a), true
	case "acos":
		return math.Acos(a), true
	case "atan":
		return math.Atan(a), true
	case "sinh":
		return math.Sinh(a), true
	case "cosh":
		return math.Cosh(a), true
	case "tanh":
		return math.Tanh(a), true
	case "exp":
		return math.Exp(a), true
	case "ln":
		if a < 0 {
			return math.NaN(), true
		}
		return math.Log(a), true
	case "abs":
		return math.Abs(a), true
	}
	return 0, false
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// ============================================================
// Display form
// ============================================================

type displayRule struct {
	pattern *regexp.Regexp
	replace string
}

// Applied in order: the squared and cubed glyphs must claim their exponents
// before the generic ** rewrite.
var displayRules = []displayRule{
	{regexp.MustCompile(`\*\*2([^\d]|$)`), "²$1"},
	{regexp.MustCompile(`\*\*3([^\d]|$)`), "³$1"},
	{regexp.MustCompile(`\*\*`), "^"},
	{regexp.MustCompile(`\*`), "·"},
	{regexp.MustCompile(`sqrt`), "√"},
}

// Pretty renders e with conventional glyphs: x**2 → x², 2*x → 2·x, sqrt → √.
func Pretty(e Expr) string { return PrettyString(e.String()) }

// PrettyString applies the display rewrites to an already machine-formatted string.
func PrettyString(s string) string {
	for _, r := range displayRules {
		s = r.pattern.ReplaceAllString(s, r.replace)
	}
	return strings.TrimSpace(s)
}
