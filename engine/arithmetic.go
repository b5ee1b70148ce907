package engine

import (
	"math"
	"regexp"

	"github.com/njchilds90/mathcmd/normalize"
	"github.com/njchilds90/mathcmd/parser"
	"github.com/njchilds90/mathcmd/symbolic"
)

const (
	msgDivideByZero = "Cannot divide by zero"
	msgUndefined    = "Undefined result"
)

// A "/" followed by a literal zero (0, 00, 0.0, 0.) that is not the start
// of a larger number.
var divByZero = regexp.MustCompile(`/\s*0+(?:\.0*)?(?:$|[^\d.])`)

// Arithmetic evaluates a numeric command such as "divide 10 by 2" or
// "square root of 16".
func Arithmetic(text string) Result { return guard(IntentArithmetic, arithmetic, text) }

func arithmetic(text string) Result {
	canon := normalize.Arithmetic(text)
	if canon == "" {
		return NoMatch
	}
	if divByZero.MatchString(canon) {
		return Fail(msgDivideByZero)
	}
	expr, err := parser.Parse(canon)
	if err != nil {
		debugf(IntentArithmetic, canon, err)
		return NoMatch
	}
	v, ok := symbolic.Evalf(expr, nil)
	if !ok {
		return NoMatch
	}
	switch {
	case math.IsInf(v, 0):
		return Fail(msgDivideByZero)
	case math.IsNaN(v):
		return Fail(msgUndefined)
	}
	return Value(formatNumber(v))
}
