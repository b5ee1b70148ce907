package engine

import (
	"errors"
	"regexp"
	"strings"

	"github.com/njchilds90/mathcmd/normalize"
	"github.com/njchilds90/mathcmd/parser"
	"github.com/njchilds90/mathcmd/symbolic"
)

const msgNoRealSolutions = "No real solutions found"

var equationWords = regexp.MustCompile(`\b(?:solve|find x|find the value)\b`)

func isEquation(folded string) bool { return equationWords.MatchString(folded) }

// Equation solves for x. Without an "=" the whole expression is set equal
// to zero.
func Equation(text string) Result { return guard(IntentEquation, equation, text) }

func equation(text string) Result {
	canon := normalize.Equation(text)
	lhsText, rhsText, hasEq := strings.Cut(canon, "=")
	if hasEq && strings.Contains(rhsText, "=") {
		return NoMatch
	}

	lhs, err := parser.Parse(lhsText)
	if err != nil {
		debugf(IntentEquation, canon, err)
		return NoMatch
	}
	residual := lhs
	if hasEq {
		rhs, err := parser.Parse(rhsText)
		if err != nil {
			debugf(IntentEquation, canon, err)
			return NoMatch
		}
		residual = symbolic.AddOf(lhs, symbolic.MulOf(symbolic.N(-1), rhs))
	}

	res, err := symbolic.Solve(residual, Variable)
	switch {
	case errors.Is(err, symbolic.ErrNoRealSolution):
		return Value(msgNoRealSolutions)
	case err != nil:
		debugf(IntentEquation, canon, err)
		return NoMatch
	}

	roots := make([]string, len(res.Solutions))
	for i, r := range res.Solutions {
		roots[i] = formatRoot(r, res.Exact(i))
	}
	return Value(Variable + " = " + strings.Join(roots, ", "))
}
