// Package parser turns canonical algebraic text into a symbolic expression
// tree. Adjacent factors multiply implicitly (2x, x(x+1), (x+1)(x-1)) and a
// function name may be applied without parentheses (sin x).
package parser

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/njchilds90/mathcmd/symbolic"
)

var (
	ErrEmpty  = errors.New("empty expression")
	ErrSyntax = errors.New("syntax error")
)

// Parse parses src. When the primary grammar rejects the text, a permissive
// literal evaluator gets a second try (it understands operators such as %
// that the grammar does not). Panics raised while building the tree are
// returned as ErrSyntax.
func Parse(src string) (expr symbolic.Expr, err error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmpty
	}
	expr, err = parseGrammar(src)
	if err == nil {
		return expr, nil
	}
	if lit, litErr := parseLiteral(src); litErr == nil {
		return lit, nil
	}
	return nil, err
}

func parseGrammar(src string) (expr symbolic.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			expr, err = nil, fmt.Errorf("%w: %v", ErrSyntax, r)
		}
	}()
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	expr, err = p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, p.unexpected()
	}
	return expr.Simplify(), nil
}

// ============================================================
// Recursive descent
// ============================================================
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary | unary)*      juxtaposition multiplies
//	unary   := ('+' | '-') unary | power
//	power   := primary (('**' | '^') unary)?           right associative
//	primary := number | constant | symbol | func '(' expr ')' | func unary | '(' expr ')'

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) unexpected() error {
	t := p.peek()
	return fmt.Errorf("%w: unexpected %s at %d", ErrSyntax, t.kind, t.pos)
}

func (p *parser) parseExpr() (symbolic.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokPlus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = symbolic.AddOf(left, right)
		case tokMinus:
			p.next()
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = symbolic.AddOf(left, symbolic.MulOf(symbolic.N(-1), right))
		default:
			return left, nil
		}
	}
}

func (p *parser) parseTerm() (symbolic.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokStar:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = symbolic.MulOf(left, right)
		case tokSlash:
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = symbolic.MulOf(left, symbolic.PowOf(right, symbolic.N(-1)))
		case tokNumber, tokIdent, tokLParen:
			right, err := p.parsePower()
			if err != nil {
				return nil, err
			}
			left = symbolic.MulOf(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (symbolic.Expr, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return symbolic.MulOf(symbolic.N(-1), operand), nil
	case tokPlus:
		p.next()
		return p.parseUnary()
	}
	return p.parsePower()
}

func (p *parser) parsePower() (symbolic.Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return symbolic.PowOf(base, exp), nil
}

func (p *parser) parsePrimary() (symbolic.Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, fmt.Errorf("%w: bad number %q at %d", ErrSyntax, t.text, t.pos)
		}
		return symbolic.NRat(r), nil
	case tokIdent:
		p.next()
		return p.parseIdent(t)
	case tokLParen:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.unexpected()
		}
		p.next()
		return inner, nil
	}
	return nil, p.unexpected()
}

func (p *parser) parseIdent(t token) (symbolic.Expr, error) {
	name := t.text
	switch name {
	case "e":
		return symbolic.E(), nil
	case "pi":
		return symbolic.S("pi"), nil
	}
	if !symbolic.IsFunction(name) {
		return symbolic.S(name), nil
	}

	var arg symbolic.Expr
	var err error
	if p.peek().kind == tokLParen {
		p.next()
		arg, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, p.unexpected()
		}
		p.next()
	} else {
		// sin x**2 reads as sin(x**2); sin x cos x as sin(x)*cos(x).
		arg, err = p.parseUnary()
		if err != nil {
			return nil, err
		}
	}
	fn, _ := symbolic.Apply(name, arg)
	return fn, nil
}

// ============================================================
// Literal fallback
// ============================================================

var literalFunctions = map[string]govaluate.ExpressionFunction{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"exp":  unary(math.Exp),
	"log":  unary(math.Log),
	"ln":   unary(math.Log),
	"sqrt": unary(math.Sqrt),
	"abs":  unary(math.Abs),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow takes 2 arguments, got %d", len(args))
		}
		return math.Pow(toFloat(args[0]), toFloat(args[1])), nil
	},
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return fn(toFloat(args[0])), nil
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	}
	return math.NaN()
}

// parseLiteral evaluates src as a closed numeric expression and wraps the
// result as a number. Expressions with free symbols are rejected.
func parseLiteral(src string) (symbolic.Expr, error) {
	ev, err := govaluate.NewEvaluableExpressionWithFunctions(src, literalFunctions)
	if err != nil {
		return nil, err
	}
	if len(ev.Vars()) > 0 {
		return nil, fmt.Errorf("%w: free variables %v", ErrSyntax, ev.Vars())
	}
	out, err := ev.Evaluate(nil)
	if err != nil {
		return nil, err
	}
	v, ok := out.(float64)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: non-numeric literal result %v", ErrSyntax, out)
	}
	return symbolic.NFloat(v), nil
}
