// Package symbolic is the expression kernel behind every evaluator: exact
// rational numbers, a single-variable expression tree, simplification,
// differentiation, rule-based integration, polynomial root finding and
// small exact matrices.
//
// Machine form (String) uses ** for powers and can be fed back to the parser.
// Display form (Pretty) uses ², ³, ^, · and √.
package symbolic

import (
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Expr
// ============================================================

// Expr is a node of the expression tree. Nodes are immutable; every
// operation returns a new tree.
type Expr interface {
	Simplify() Expr
	String() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
}

// ============================================================
// Num: exact rational
// ============================================================

type Num struct{ val *big.Rat }

func wrapRat(r *big.Rat) *Num { return &Num{val: r} }

func N(n int64) *Num { return wrapRat(big.NewRat(n, 1)) }

// F is the fraction p/q.
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return wrapRat(big.NewRat(p, q))
}

func NFloat(f float64) *Num { return wrapRat(new(big.Rat).SetFloat64(f)) }
func NRat(r *big.Rat) *Num  { return wrapRat(new(big.Rat).Set(r)) }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsOne() bool           { return n.isInt(1) }
func (n *Num) IsNegOne() bool        { return n.isInt(-1) }

func (n *Num) Float64() float64 {
	f, _ := n.val.Float64()
	return f
}

func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.val.Cmp(o.val) == 0
}

func (n *Num) String() string {
	if !n.val.IsInt() {
		return n.val.RatString()
	}
	return n.val.Num().String()
}

func (n *Num) isInt(v int64) bool {
	return n.val.IsInt() && n.val.Num().IsInt64() && n.val.Num().Int64() == v
}

// smallInt returns n as an int64 when it is an integer within [-limit, limit].
func (n *Num) smallInt(limit int64) (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	v := n.val.Num().Int64()
	return v, v >= -limit && v <= limit
}

func numAdd(a, b *Num) *Num { return wrapRat(new(big.Rat).Add(a.val, b.val)) }
func numSub(a, b *Num) *Num { return wrapRat(new(big.Rat).Sub(a.val, b.val)) }
func numMul(a, b *Num) *Num { return wrapRat(new(big.Rat).Mul(a.val, b.val)) }
func numNeg(a *Num) *Num    { return wrapRat(new(big.Rat).Neg(a.val)) }
func numAbs(a *Num) *Num    { return wrapRat(new(big.Rat).Abs(a.val)) }

func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }

func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return wrapRat(new(big.Rat).Inv(a.val))
}

// numPowInt raises a to an integer power by squaring. Callers guard a == 0
// with e < 0.
func numPowInt(a *Num, e int64) *Num {
	if e < 0 {
		return numRecip(numPowInt(a, -e))
	}
	acc, sq := N(1), a
	for ; e > 0; e >>= 1 {
		if e&1 == 1 {
			acc = numMul(acc, sq)
		}
		sq = numMul(sq, sq)
	}
	return acc
}

// numSqrt returns the exact square root of a non-negative rational whose
// numerator and denominator are both perfect squares.
func numSqrt(a *Num) (*Num, bool) {
	if a.IsNegative() {
		return nil, false
	}
	root := func(v *big.Int) (*big.Int, bool) {
		r := new(big.Int).Sqrt(v)
		return r, new(big.Int).Mul(r, r).Cmp(v) == 0
	}
	p, okP := root(a.val.Num())
	q, okQ := root(a.val.Denom())
	if !okP || !okQ {
		return nil, false
	}
	return wrapRat(new(big.Rat).SetFrac(p, q)), true
}

// ============================================================
// Sym: variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

func (s *Sym) Simplify() Expr     { return s }
func (s *Sym) String() string     { return s.name }
func (s *Sym) Eval() (*Num, bool) { return nil, false }

func (s *Sym) Equal(other Expr) bool {
	o, ok := other.(*Sym)
	return ok && o.name == s.name
}

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name != varName {
		return s
	}
	return value
}

func (s *Sym) Diff(varName string) Expr {
	if s.name != varName {
		return N(0)
	}
	return N(1)
}

// ============================================================
// Grouping helpers shared by Add and Mul
// ============================================================

// flatten simplifies xs and splices in the operands of any node that
// operands unwraps.
func flatten(xs []Expr, operands func(Expr) ([]Expr, bool)) []Expr {
	out := make([]Expr, 0, len(xs))
	for _, x := range xs {
		s := x.Simplify()
		if inner, ok := operands(s); ok {
			out = append(out, inner...)
			continue
		}
		out = append(out, s)
	}
	return out
}

func sumOperands(e Expr) ([]Expr, bool) {
	a, ok := e.(*Add)
	if !ok {
		return nil, false
	}
	return a.terms, true
}

func productOperands(e Expr) ([]Expr, bool) {
	m, ok := e.(*Mul)
	if !ok {
		return nil, false
	}
	return m.factors, true
}

// grouping collects parts per distinct expression in first-seen order.
// Add groups coefficients by term, Mul groups exponents by base.
type grouping struct {
	order []string
	keys  map[string]Expr
	parts map[string][]Expr
}

func newGrouping() *grouping {
	return &grouping{keys: map[string]Expr{}, parts: map[string][]Expr{}}
}

func (g *grouping) add(key, part Expr) {
	k := key.String()
	if _, seen := g.keys[k]; !seen {
		g.order = append(g.order, k)
		g.keys[k] = key
	}
	g.parts[k] = append(g.parts[k], part)
}

// each yields every key with the sum of its parts.
func (g *grouping) each(fn func(key, total Expr)) {
	for _, k := range g.order {
		fn(g.keys[k], AddOf(g.parts[k]...))
	}
}

// ============================================================
// Add
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numbers and collects like terms
// (terms that differ only by their numeric coefficient).
func (a *Add) Simplify() Expr {
	constant := N(0)
	like := newGrouping()
	for _, t := range flatten(a.terms, sumOperands) {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		c, rest := splitCoeff(t)
		like.add(rest, c)
	}
	var terms []Expr
	like.each(func(rest, coeff Expr) {
		if !isNumEqual(coeff, 0) {
			terms = append(terms, MulOf(coeff, rest))
		}
	})
	sortTerms(terms)
	if !constant.IsZero() {
		terms = append(terms, constant)
	}
	switch len(terms) {
	case 0:
		return N(0)
	case 1:
		return terms[0]
	}
	return &Add{terms: terms}
}

// splitCoeff separates the leading numeric factor of a term.
func splitCoeff(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) < 2 {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	if rest := m.factors[1:]; len(rest) > 1 {
		return c, &Mul{factors: rest}
	}
	return c, m.factors[1]
}

// sortTerms orders terms by descending degree, then by their text without
// the coefficient.
func sortTerms(terms []Expr) {
	key := func(e Expr) string {
		_, rest := splitCoeff(e)
		return rest.String()
	}
	sort.SliceStable(terms, func(i, j int) bool {
		di, dj := termDegree(terms[i]), termDegree(terms[j])
		if di != dj {
			return di > dj
		}
		return key(terms[i]) < key(terms[j])
	})
}

// termDegree is the total degree of a term over all symbols.
func termDegree(e Expr) int {
	if m, ok := e.(*Mul); ok {
		d := 0
		for _, f := range m.factors {
			d += termDegree(f)
		}
		return d
	}
	if sym, ok := symbolOf(e); ok {
		d, _ := varPower(e, sym)
		return d
	}
	return 0
}

func (a *Add) String() string {
	var sb strings.Builder
	for i, t := range a.terms {
		switch {
		case i == 0:
			sb.WriteString(t.String())
		case isNegativeTerm(t):
			sb.WriteString(" - " + neg(t).String())
		default:
			sb.WriteString(" + " + t.String())
		}
	}
	if sb.Len() == 0 {
		return "0"
	}
	return sb.String()
}

func isNegativeTerm(e Expr) bool {
	if m, ok := e.(*Mul); ok && len(m.factors) > 0 {
		e = m.factors[0]
	}
	n, ok := e.(*Num)
	return ok && n.IsNegative()
}

func (a *Add) Sub(varName string, value Expr) Expr {
	return AddOf(mapExprs(a.terms, func(t Expr) Expr { return t.Sub(varName, value) })...)
}

func (a *Add) Diff(varName string) Expr {
	return AddOf(mapExprs(a.terms, func(t Expr) Expr { return t.Diff(varName) })...)
}

func (a *Add) Eval() (*Num, bool) { return foldNums(a.terms, N(0), numAdd) }

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalExprs(a.terms, o.terms)
}

// ============================================================
// Mul
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func neg(e Expr) Expr { return MulOf(N(-1), e) }

// Simplify flattens nested products, folds the numeric coefficient and merges
// factors that share a base by adding their exponents.
func (m *Mul) Simplify() Expr {
	coeff := N(1)
	powers := newGrouping()
	for _, f := range flatten(m.factors, productOperands) {
		switch v := f.(type) {
		case *Num:
			coeff = numMul(coeff, v)
		case *Pow:
			powers.add(v.base, v.exp)
		default:
			powers.add(f, N(1))
		}
	}
	if coeff.IsZero() {
		return N(0)
	}

	var rest []Expr
	absorb := func(e Expr) {
		if n, ok := e.(*Num); ok {
			coeff = numMul(coeff, n)
			return
		}
		rest = append(rest, e)
	}
	powers.each(func(base, exp Expr) {
		// merged powers can fold to numbers or to coefficient-led products
		merged := PowOf(base, exp)
		if inner, ok := productOperands(merged); ok {
			for _, f := range inner {
				absorb(f)
			}
			return
		}
		absorb(merged)
	})
	if coeff.IsZero() {
		return N(0)
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].String() < rest[j].String() })

	switch {
	case len(rest) == 0:
		return coeff
	case !coeff.IsOne():
		return &Mul{factors: append([]Expr{coeff}, rest...)}
	case len(rest) == 1:
		return rest[0]
	}
	return &Mul{factors: rest}
}

// String renders factors with negative exponents below a single division bar,
// so x**-1 prints as 1/x and x**2/2 keeps its rational coefficient readable.
func (m *Mul) String() string {
	coeff := N(1)
	var numer, denom []string
	for _, f := range m.factors {
		if n, ok := f.(*Num); ok {
			coeff = numMul(coeff, n)
			continue
		}
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() {
				denom = append(denom, wrapFactor(PowOf(p.base, numNeg(en))))
				continue
			}
		}
		numer = append(numer, wrapFactor(f))
	}

	sign := ""
	if coeff.IsNegative() {
		sign, coeff = "-", numNeg(coeff)
	}
	if p := coeff.val.Num().String(); p != "1" || len(numer) == 0 {
		numer = append([]string{p}, numer...)
	}
	if q := coeff.val.Denom().String(); q != "1" {
		denom = append([]string{q}, denom...)
	}

	out := sign + strings.Join(numer, "*")
	if len(denom) == 0 {
		return out
	}
	if len(denom) == 1 {
		return out + "/" + denom[0]
	}
	return out + "/(" + strings.Join(denom, "*") + ")"
}

// wrapFactor parenthesizes sums, products and non-natural numbers.
func wrapFactor(e Expr) string {
	s := e.String()
	switch v := e.(type) {
	case *Add, *Mul:
		return "(" + s + ")"
	case *Num:
		if v.IsNegative() || !v.IsInteger() {
			return "(" + s + ")"
		}
	}
	return s
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	return MulOf(mapExprs(m.factors, func(f Expr) Expr { return f.Sub(varName, value) })...)
}

// Diff applies the product rule: one term per factor, that factor differentiated.
func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, 0, len(m.factors))
	for i := range m.factors {
		product := append([]Expr{m.factors[i].Diff(varName)}, without(m.factors, i)...)
		terms = append(terms, MulOf(product...))
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) { return foldNums(m.factors, N(1), numMul) }

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalExprs(m.factors, o.factors)
}

// ============================================================
// Pow
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base, exp := p.base.Simplify(), p.exp.Simplify()
	en, expIsNum := exp.(*Num)
	switch {
	case expIsNum && en.IsZero():
		return N(1)
	case expIsNum && en.IsOne():
		return base
	}

	if bn, ok := base.(*Num); ok {
		if folded, ok := foldNumPow(bn, en); ok {
			return folded
		}
		return &Pow{base: base, exp: exp}
	}

	switch b := base.(type) {
	case *Pow:
		return PowOf(b.base, MulOf(b.exp, exp))
	case *Func:
		if b.name == "exp" {
			return ExpOf(MulOf(b.arg, exp))
		}
	case *Mul:
		if expIsNum && en.IsInteger() {
			return MulOf(mapExprs(b.factors, func(f Expr) Expr { return PowOf(f, en) })...)
		}
	}
	return &Pow{base: base, exp: exp}
}

// foldNumPow evaluates b**e exactly for small integer and half-integer
// exponents. 0**0 and 0**negative stay unevaluated so float evaluation
// reports them. en is nil when the exponent is symbolic.
func foldNumPow(b, en *Num) (Expr, bool) {
	switch {
	case b.IsZero():
		if en != nil && !en.IsPositive() {
			return nil, false
		}
		return N(0), true
	case b.IsOne():
		return N(1), true
	case en == nil:
		return nil, false
	}
	if e, ok := en.smallInt(20); ok {
		return numPowInt(b, e), true
	}
	if en.val.Denom().Cmp(big.NewInt(2)) != 0 {
		return nil, false
	}
	e, ok := numMul(en, N(2)).smallInt(20)
	if !ok {
		return nil, false
	}
	root, ok := numSqrt(b)
	if !ok {
		return nil, false
	}
	return numPowInt(root, e), true
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok {
		if en.Equal(F(1, 2)) {
			return "sqrt(" + p.base.String() + ")"
		}
		if en.IsNegative() {
			return "1/" + wrapFactor(PowOf(p.base, numNeg(en)))
		}
	}
	base := p.base.String()
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		base = "(" + base + ")"
	case *Num:
		if b.IsNegative() || !b.IsInteger() {
			base = "(" + base + ")"
		}
	}
	exp := p.exp.String()
	switch e := p.exp.(type) {
	case *Sym, *Func:
	case *Num:
		if e.IsNegative() || !e.IsInteger() {
			exp = "(" + exp + ")"
		}
	default:
		exp = "(" + exp + ")"
	}
	return base + "**" + exp
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

// Diff uses the power rule for a numeric exponent, a**v*ln(a)*v' for a
// numeric base and the logarithmic form otherwise.
func (p *Pow) Diff(varName string) Expr {
	u, v := p.base, p.exp
	if _, ok := v.(*Num); ok {
		return MulOf(v, PowOf(u, AddOf(v, N(-1))), u.Diff(varName))
	}
	if _, ok := u.(*Num); ok {
		return MulOf(p, LnOf(u), v.Diff(varName))
	}
	return MulOf(p, AddOf(
		MulOf(v.Diff(varName), LnOf(u)),
		MulOf(v, u.Diff(varName), PowOf(u, N(-1))),
	))
}

// Eval is exact for integer exponents and falls back to float64 otherwise.
func (p *Pow) Eval() (*Num, bool) {
	n, ok := p.base.Eval()
	if !ok {
		return nil, false
	}
	e, ok := p.exp.Eval()
	if !ok {
		return nil, false
	}
	if k, small := e.smallInt(64); small {
		if n.IsZero() && k < 0 {
			return nil, false
		}
		return numPowInt(n, k), true
	}
	v, ok := Evalf(p, nil)
	if !ok || !isFinite(v) {
		return nil, false
	}
	return NFloat(v), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && equalExprs([]Expr{p.base, p.exp}, []Expr{o.base, o.exp})
}

// ============================================================
// Func: named function application
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func apply(name string, arg Expr) Expr { return (&Func{name: name, arg: arg}).Simplify() }

func SinOf(arg Expr) Expr  { return apply("sin", arg) }
func CosOf(arg Expr) Expr  { return apply("cos", arg) }
func TanOf(arg Expr) Expr  { return apply("tan", arg) }
func AsinOf(arg Expr) Expr { return apply("asin", arg) }
func AcosOf(arg Expr) Expr { return apply("acos", arg) }
func AtanOf(arg Expr) Expr { return apply("atan", arg) }
func SinhOf(arg Expr) Expr { return apply("sinh", arg) }
func CoshOf(arg Expr) Expr { return apply("cosh", arg) }
func TanhOf(arg Expr) Expr { return apply("tanh", arg) }
func ExpOf(arg Expr) Expr  { return apply("exp", arg) }
func LnOf(arg Expr) Expr   { return apply("ln", arg) }
func AbsOf(arg Expr) Expr  { return apply("abs", arg) }
func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

// E is Euler's number, kept symbolic as exp(1).
func E() Expr { return &Func{name: "exp", arg: N(1)} }

var funcBuilders = map[string]func(Expr) Expr{
	"sin": SinOf, "cos": CosOf, "tan": TanOf,
	"asin": AsinOf, "acos": AcosOf, "atan": AtanOf,
	"sinh": SinhOf, "cosh": CoshOf, "tanh": TanhOf,
	"exp": ExpOf, "ln": LnOf, "log": LnOf,
	"sqrt": SqrtOf, "abs": AbsOf,
}

// Apply builds the named function applied to arg. log is the natural logarithm.
func Apply(name string, arg Expr) (Expr, bool) {
	b, ok := funcBuilders[name]
	if !ok {
		return nil, false
	}
	return b(arg), true
}

// IsFunction reports whether name is a function Apply understands.
func IsFunction(name string) bool {
	_, ok := funcBuilders[name]
	return ok
}

// valueAtZero is f(0) for the functions that fold there.
var valueAtZero = map[string]int64{
	"sin": 0, "tan": 0, "asin": 0, "atan": 0, "sinh": 0, "tanh": 0,
	"cos": 1, "cosh": 1, "exp": 1,
}

// inverseOf pairs functions that cancel when nested.
var inverseOf = map[string]string{"exp": "ln", "ln": "exp"}

// derivatives maps a function name to f'(u).
var derivatives = map[string]func(u Expr) Expr{
	"sin":  func(u Expr) Expr { return CosOf(u) },
	"cos":  func(u Expr) Expr { return neg(SinOf(u)) },
	"tan":  func(u Expr) Expr { return AddOf(N(1), PowOf(TanOf(u), N(2))) },
	"exp":  func(u Expr) Expr { return ExpOf(u) },
	"ln":   func(u Expr) Expr { return PowOf(u, N(-1)) },
	"abs":  func(u Expr) Expr { return MulOf(u, PowOf(AbsOf(u), N(-1))) },
	"asin": func(u Expr) Expr { return PowOf(oneMinusSquare(u), F(-1, 2)) },
	"acos": func(u Expr) Expr { return neg(PowOf(oneMinusSquare(u), F(-1, 2))) },
	"atan": func(u Expr) Expr { return PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1)) },
	"sinh": func(u Expr) Expr { return CoshOf(u) },
	"cosh": func(u Expr) Expr { return SinhOf(u) },
	"tanh": func(u Expr) Expr { return oneMinusSquare(TanhOf(u)) },
}

func oneMinusSquare(u Expr) Expr { return AddOf(N(1), neg(PowOf(u, N(2)))) }

// Simplify applies exact identities only; numeric folding of transcendental
// values is left to Evalf so symbolic results stay exact.
func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if v, ok := valueAtZero[f.name]; ok && isNumEqual(arg, 0) {
		return N(v)
	}
	if f.name == "ln" && isNumEqual(arg, 1) {
		return N(0)
	}
	if inner, ok := arg.(*Func); ok && inverseOf[f.name] == inner.name {
		return inner.arg
	}
	if n, ok := arg.(*Num); ok && f.name == "abs" {
		return numAbs(n)
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string {
	if f.name == "exp" && isNumEqual(f.arg, 1) {
		return "E"
	}
	return f.name + "(" + f.arg.String() + ")"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return apply(f.name, f.arg.Sub(varName, value))
}

// Diff is the chain rule f'(u)*u'.
func (f *Func) Diff(varName string) Expr {
	rule, ok := derivatives[f.name]
	if !ok {
		panic("symbolic: no derivative rule for " + f.name)
	}
	return MulOf(rule(f.arg), f.arg.Diff(varName))
}

func (f *Func) Eval() (*Num, bool) {
	v, ok := Evalf(f, nil)
	if !ok || !isFinite(v) {
		return nil, false
	}
	return NFloat(v), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && o.name == f.name && f.arg.Equal(o.arg)
}

// ============================================================
// Slice helpers
// ============================================================

func mapExprs(xs []Expr, f func(Expr) Expr) []Expr {
	out := make([]Expr, len(xs))
	for i, x := range xs {
		out[i] = f(x)
	}
	return out
}

// without returns a copy of xs minus the element at skip.
func without(xs []Expr, skip int) []Expr {
	out := make([]Expr, 0, len(xs))
	out = append(out, xs[:skip]...)
	return append(out, xs[skip+1:]...)
}

func equalExprs(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// foldNums combines the exact values of xs with op, failing on the first
// operand that is not numeric.
func foldNums(xs []Expr, acc *Num, op func(a, b *Num) *Num) (*Num, bool) {
	for _, x := range xs {
		v, ok := x.Eval()
		if !ok {
			return nil, false
		}
		acc = op(acc, v)
	}
	return acc, true
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.isInt(v)
}

// children lists the direct operands of e.
func children(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return v.terms
	case *Mul:
		return v.factors
	case *Pow:
		return []Expr{v.base, v.exp}
	case *Func:
		return []Expr{v.arg}
	}
	return nil
}

// ============================================================
// Top-level helpers
// ============================================================

func Diff(expr Expr, varName string) Expr { return expr.Diff(varName).Simplify() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

// HasSymbol reports whether name occurs anywhere in e.
func HasSymbol(e Expr, name string) bool {
	if s, ok := e.(*Sym); ok {
		return s.name == name
	}
	for _, c := range children(e) {
		if HasSymbol(c, name) {
			return true
		}
	}
	return false
}

// FreeSymbols is the set of symbol names in e.
func FreeSymbols(e Expr) map[string]struct{} {
	out := map[string]struct{}{}
	var walk func(Expr)
	walk = func(e Expr) {
		if s, ok := e.(*Sym); ok {
			out[s.name] = struct{}{}
			return
		}
		for _, c := range children(e) {
			walk(c)
		}
	}
	walk(e)
	return out
}
