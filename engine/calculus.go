package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/njchilds90/mathcmd/normalize"
	"github.com/njchilds90/mathcmd/parser"
	"github.com/njchilds90/mathcmd/symbolic"
)

// Variable is the only unknown the engine differentiates, integrates and
// solves for.
const Variable = "x"

var (
	derivativeWords = regexp.MustCompile(`\b(?:differentiate|differentiation|derivative|derive)\b`)
	integralWords   = regexp.MustCompile(`\b(?:integrate|integral|integration)\b`)
	integralBounds  = regexp.MustCompile(`\bfrom\s+(-?[\w.]+)\s+to\s+(-?[\w.]+)`)
)

func isCalculus(folded string) bool {
	return derivativeWords.MatchString(folded) || integralWords.MatchString(folded)
}

// Calculus differentiates or integrates with respect to x. Derivative
// phrasing wins when both appear. "from a to b" turns an integral into a
// definite one. Any symbol other than x and pi left after normalization
// means the phrase was not understood and yields NoMatch.
func Calculus(text string) Result { return guard(IntentCalculus, calculus, text) }

func calculus(text string) Result {
	folded := normalize.Fold(text)
	derive := derivativeWords.MatchString(folded)
	if !derive && !integralWords.MatchString(folded) {
		return NoMatch
	}

	var bounds []string
	if !derive {
		if m := integralBounds.FindStringSubmatch(folded); m != nil {
			bounds = m[1:]
			folded = strings.Replace(folded, m[0], " ", 1)
		}
	}

	canon := normalize.Calculus(folded)
	expr, err := parser.Parse(canon)
	if err != nil {
		debugf(IntentCalculus, canon, err)
		return NoMatch
	}
	if !onlyVariable(expr) {
		debugf(IntentCalculus, canon, errStraySymbol)
		return NoMatch
	}

	if derive {
		return Value("Derivative = " + symbolic.Pretty(symbolic.Diff(expr, Variable)))
	}
	antiderivative, ok := symbolic.Integrate(expr, Variable)
	if !ok {
		return NoMatch
	}
	if bounds == nil {
		return Value("Integral = " + symbolic.Pretty(antiderivative) + " + C")
	}
	lo, errLo := parseBound(bounds[0])
	hi, errHi := parseBound(bounds[1])
	if err := errors.Join(errLo, errHi); err != nil {
		debugf(IntentCalculus, folded, err)
		return NoMatch
	}
	area := symbolic.AddOf(
		antiderivative.Sub(Variable, hi),
		symbolic.MulOf(symbolic.N(-1), antiderivative.Sub(Variable, lo)),
	)
	return Value("Integral = " + symbolic.Pretty(area))
}

var errStraySymbol = errors.New("unknown symbol")

// onlyVariable reports whether expr mentions no symbol besides x and pi.
func onlyVariable(expr symbolic.Expr) bool {
	for name := range symbolic.FreeSymbols(expr) {
		if name != Variable && name != "pi" {
			return false
		}
	}
	return true
}

// parseBound reads an integration limit, which must be constant.
func parseBound(text string) (symbolic.Expr, error) {
	e, err := parser.Parse(normalize.Arithmetic(text))
	if err != nil {
		return nil, err
	}
	for name := range symbolic.FreeSymbols(e) {
		if name != "pi" {
			return nil, fmt.Errorf("%w %q in limit", errStraySymbol, name)
		}
	}
	return e, nil
}
