package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
)

// ============================================================
// Solvers
// ============================================================

var (
	// ErrNoRealSolution is returned when an equation has only complex roots,
	// no roots at all, or every value is a root.
	ErrNoRealSolution = errors.New("no real solutions")
	// ErrNotSolvable is returned when the equation is outside what the solvers handle.
	ErrNotSolvable = errors.New("equation not solvable")
)

type SolveResult struct {
	Solutions []Expr
	// ExactForm is set when every solution is exact.
	ExactForm bool
	Error     string

	exact []bool
}

// Exact reports whether solution i is an exact value rather than a float
// approximation.
func (r SolveResult) Exact(i int) bool {
	if i < len(r.exact) {
		return r.exact[i]
	}
	return r.ExactForm
}

// numericArgs evaluates every coefficient exactly.
func numericArgs(coeffs ...Expr) ([]*Num, bool) {
	out := make([]*Num, len(coeffs))
	for i, c := range coeffs {
		n, ok := c.Eval()
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// SolveLinear solves a*x + b = 0.
func SolveLinear(a, b Expr) SolveResult {
	n, ok := numericArgs(a, b)
	if !ok {
		return SolveResult{Solutions: []Expr{MulOf(N(-1), b, PowOf(a, N(-1)))}}
	}
	switch {
	case !n[0].IsZero():
		return SolveResult{Solutions: []Expr{numDiv(numNeg(n[1]), n[0])}, ExactForm: true}
	case n[1].IsZero():
		return SolveResult{Error: "identity (0 = 0): infinite solutions"}
	default:
		return SolveResult{Error: "no solution (inconsistent)"}
	}
}

// SolveQuadraticExact solves a*x**2 + b*x + c = 0, exactly when the
// discriminant is a rational square.
func SolveQuadraticExact(a, b, c Expr) SolveResult {
	n, ok := numericArgs(a, b, c)
	if !ok {
		return SolveResult{Error: "quadratic requires numeric coefficients"}
	}
	an, bn, cn := n[0], n[1], n[2]
	if an.IsZero() {
		return SolveLinear(b, c)
	}
	disc := numSub(numMul(bn, bn), numMul(N(4), numMul(an, cn)))
	af, bf := an.Float64(), bn.Float64()
	if disc.IsNegative() {
		return SolveResult{Error: fmt.Sprintf("complex roots: %g ± %gi", -bf/(2*af), math.Sqrt(-disc.Float64())/(2*af))}
	}
	twoA := numMul(N(2), an)
	if sq, ok := numSqrt(disc); ok {
		return SolveResult{Solutions: []Expr{
			numDiv(numAdd(numNeg(bn), sq), twoA),
			numDiv(numSub(numNeg(bn), sq), twoA),
		}, ExactForm: true}
	}
	sq := math.Sqrt(disc.Float64())
	return SolveResult{Solutions: []Expr{NFloat((-bf + sq) / (2 * af)), NFloat((-bf - sq) / (2 * af))}}
}

// SolveCubic solves a*x**3 + b*x**2 + c*x + d = 0 through the depressed cubic
// t**3 + p*t + q with x = t - b/(3a).
func SolveCubic(a, b, c, d Expr) SolveResult {
	n, ok := numericArgs(a, b, c, d)
	if !ok {
		return SolveResult{Error: "cubic requires numeric coefficients"}
	}
	if n[0].IsZero() {
		return SolveQuadraticExact(b, c, d)
	}
	af, bf, cf, df := n[0].Float64(), n[1].Float64(), n[2].Float64(), n[3].Float64()
	p := (3*af*cf - bf*bf) / (3 * af * af)
	q := (2*bf*bf*bf - 9*af*bf*cf + 27*af*af*df) / (27 * af * af * af)
	shift := bf / (3 * af)
	disc := -(4*p*p*p + 27*q*q)

	var ts []float64
	switch {
	case disc > 0:
		// three distinct real roots, trigonometric form
		m := 2 * math.Sqrt(-p/3)
		theta := math.Acos(3*q/(p*m)) / 3
		for k := 0.0; k < 3; k++ {
			ts = append(ts, m*math.Cos(theta-2*math.Pi*k/3))
		}
	case disc == 0 && q == 0:
		ts = []float64{0}
	case disc == 0:
		ts = []float64{3 * q / p, -3 * q / (2 * p)}
	default:
		u := math.Cbrt(-q/2 + math.Sqrt(q*q/4+p*p*p/27))
		v := 0.0
		if u != 0 {
			v = -p / (3 * u)
		}
		ts = []float64{u + v}
	}
	roots := make([]Expr, len(ts))
	for i, t := range ts {
		roots[i] = NFloat(t - shift)
	}
	return SolveResult{Solutions: roots}
}

// SolveNewton scans [-searchRange, searchRange] with Newton iterations from
// evenly spaced starting points and returns the distinct roots found, ascending.
func SolveNewton(expr Expr, varName string, searchRange, tol float64, maxIter int) SolveResult {
	if searchRange <= 0 {
		searchRange = 100
	}
	if tol <= 0 {
		tol = 1e-10
	}
	if maxIter <= 0 {
		maxIter = 100
	}
	f := floatFunc(expr, varName)
	df := floatFunc(Diff(expr, varName), varName)

	const starts = 200
	var roots []float64
	for i := 0; i <= starts; i++ {
		x0 := -searchRange + 2*searchRange*float64(i)/starts
		x, ok := newton(f, df, x0, tol, maxIter, searchRange*10)
		if !ok || math.Abs(x) > searchRange || containsNear(roots, x, 1e-6) {
			continue
		}
		roots = append(roots, x)
	}
	sort.Float64s(roots)
	solutions := make([]Expr, len(roots))
	for i, r := range roots {
		solutions[i] = NFloat(r)
	}
	return SolveResult{Solutions: solutions}
}

// floatFunc evaluates expr at varName = x, NaN where undefined.
func floatFunc(expr Expr, varName string) func(float64) float64 {
	return func(x float64) float64 {
		v, ok := Evalf(expr, map[string]float64{varName: x})
		if !ok {
			return math.NaN()
		}
		return v
	}
}

// newton iterates from x until |f(x)| < tol, giving up at undefined or flat
// points and once |x| passes bound.
func newton(f, df func(float64) float64, x, tol float64, maxIter int, bound float64) (float64, bool) {
	for iter := 0; iter < maxIter; iter++ {
		fx := f(x)
		if !isFinite(fx) {
			return 0, false
		}
		if math.Abs(fx) < tol {
			return x, true
		}
		slope := df(x)
		if math.IsNaN(slope) || math.Abs(slope) < 1e-15 {
			return 0, false
		}
		if x -= fx / slope; math.Abs(x) > bound {
			return 0, false
		}
	}
	return 0, false
}

func containsNear(xs []float64, x, eps float64) bool {
	for _, v := range xs {
		if math.Abs(v-x) < eps {
			return true
		}
	}
	return false
}

// Solve finds the real roots of expr = 0 in varName. Rational roots of
// polynomials are found exactly at any degree. What remains is solved
// exactly up to degree two, in closed form for cubics and by a Newton scan
// otherwise. Roots are distinct and ascending; float roots within 1e-9 of an
// integer are snapped to it.
func Solve(expr Expr, varName string) (SolveResult, error) {
	residual := Expand(expr)
	if !HasSymbol(residual, varName) {
		return SolveResult{}, ErrNoRealSolution
	}
	for name := range FreeSymbols(residual) {
		if name != varName {
			if _, isConst := constants[name]; !isConst {
				return SolveResult{}, fmt.Errorf("%w: unknown symbol %q", ErrNotSolvable, name)
			}
		}
	}

	var res SolveResult
	if coeffs, ok := ratCoeffs(residual, varName); ok {
		res = solvePolynomial(coeffs, varName)
	} else {
		res = SolveNewton(residual, varName, 10, 0, 0)
	}
	if len(res.Solutions) == 0 {
		return res, ErrNoRealSolution
	}
	return normalizeRoots(res), nil
}

// ratCoeffs lists the coefficients of a polynomial with numeric coefficients,
// index = power.
func ratCoeffs(e Expr, varName string) ([]*big.Rat, bool) {
	if !IsPolynomial(e, varName) {
		return nil, false
	}
	pc := PolyCoeffs(e, varName)
	out := make([]*big.Rat, Degree(e, varName)+1)
	for i := range out {
		n, ok := pc.coeff(i).Eval()
		if !ok {
			return nil, false
		}
		out[i] = n.Rat()
	}
	return out, true
}

func solvePolynomial(coeffs []*big.Rat, varName string) SolveResult {
	roots, rest := rationalRoots(coeffs)
	res := SolveResult{}
	for _, r := range roots {
		res.Solutions = append(res.Solutions, r)
		res.exact = append(res.exact, true)
	}

	c := make([]Expr, len(rest))
	for i, r := range rest {
		c[i] = NRat(r)
	}
	var tail SolveResult
	switch len(rest) - 1 {
	case 0:
	case 1:
		tail = SolveLinear(c[1], c[0])
	case 2:
		tail = SolveQuadraticExact(c[2], c[1], c[0])
	case 3:
		tail = SolveCubic(c[3], c[2], c[1], c[0])
	default:
		tail = SolveNewton(polyExpr(c, varName), varName, 100, 0, 0)
	}
	for _, s := range tail.Solutions {
		res.Solutions = append(res.Solutions, s)
		res.exact = append(res.exact, tail.ExactForm)
	}
	res.ExactForm = true
	for _, e := range res.exact {
		res.ExactForm = res.ExactForm && e
	}
	return res
}

func polyExpr(coeffs []Expr, varName string) Expr {
	terms := make([]Expr, len(coeffs))
	for i, c := range coeffs {
		terms[i] = MulOf(c, PowOf(S(varName), N(int64(i))))
	}
	return AddOf(terms...)
}

// maxRootCandidate bounds the constant and leading coefficients searched by
// rationalRoots.
const maxRootCandidate = 1_000_000

// rationalRoots applies the rational root theorem to the polynomial with the
// given coefficients (index = power). It returns the distinct rational roots
// and the quotient left after dividing them out.
func rationalRoots(coeffs []*big.Rat) ([]*Num, []*big.Rat) {
	poly := trimLeadingZeros(coeffs)
	var roots []*Num
	if len(poly) < 2 {
		return nil, poly
	}
	if poly[0].Sign() == 0 {
		roots = append(roots, N(0))
		for len(poly) > 1 && poly[0].Sign() == 0 {
			poly = poly[1:]
		}
	}

	ints := integerCoeffs(poly)
	a0, an := ints[0], ints[len(ints)-1]
	if !a0.IsInt64() || !an.IsInt64() {
		return roots, poly
	}
	ps, ok := divisors(a0.Int64())
	if !ok {
		return roots, poly
	}
	qs, ok := divisors(an.Int64())
	if !ok {
		return roots, poly
	}

	seen := map[string]bool{}
	for _, p := range ps {
		for _, q := range qs {
			for _, sign := range []int64{1, -1} {
				cand := big.NewRat(sign*p, q)
				if seen[cand.String()] {
					continue
				}
				seen[cand.String()] = true
				found := false
				for len(poly) > 1 && hornerRat(poly, cand).Sign() == 0 {
					poly = deflate(poly, cand)
					found = true
				}
				if found {
					roots = append(roots, NRat(cand))
				}
			}
		}
	}
	return roots, poly
}

func trimLeadingZeros(coeffs []*big.Rat) []*big.Rat {
	n := len(coeffs)
	for n > 1 && coeffs[n-1].Sign() == 0 {
		n--
	}
	return coeffs[:n]
}

// integerCoeffs scales the coefficients by the lcm of their denominators.
func integerCoeffs(coeffs []*big.Rat) []*big.Int {
	lcm := big.NewInt(1)
	for _, c := range coeffs {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		scaled := new(big.Rat).Mul(c, new(big.Rat).SetInt(lcm))
		out[i] = new(big.Int).Set(scaled.Num())
	}
	return out
}

// divisors lists the positive divisors of |n|, refusing n beyond
// maxRootCandidate.
func divisors(n int64) ([]int64, bool) {
	if n < 0 {
		n = -n
	}
	if n == 0 || n > maxRootCandidate {
		return nil, false
	}
	var out []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			out = append(out, d)
			if d*d != n {
				out = append(out, n/d)
			}
		}
	}
	return out, true
}

func hornerRat(coeffs []*big.Rat, x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, coeffs[i])
	}
	return acc
}

// deflate divides the polynomial by (x - r), r being a root.
func deflate(coeffs []*big.Rat, r *big.Rat) []*big.Rat {
	n := len(coeffs) - 1
	out := make([]*big.Rat, n)
	carry := new(big.Rat)
	for i := n; i >= 1; i-- {
		carry = new(big.Rat).Add(coeffs[i], new(big.Rat).Mul(carry, r))
		out[i-1] = carry
	}
	return out
}

func normalizeRoots(res SolveResult) SolveResult {
	type root struct {
		e     Expr
		v     float64
		exact bool
	}
	rs := make([]root, 0, len(res.Solutions))
	for i, r := range res.Solutions {
		v, ok := Evalf(r, nil)
		if !ok {
			continue
		}
		exact := res.Exact(i)
		if n, isNum := r.(*Num); isNum && !n.IsInteger() {
			if rounded := math.Round(v); math.Abs(v-rounded) < 1e-9 {
				r, v, exact = N(int64(rounded)), rounded, true
			}
		}
		rs = append(rs, root{e: r, v: v, exact: exact})
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].v < rs[j].v })

	out := SolveResult{ExactForm: true}
	for i, r := range rs {
		if i > 0 && math.Abs(r.v-rs[i-1].v) < 1e-9 {
			continue
		}
		out.Solutions = append(out.Solutions, r.e)
		out.exact = append(out.exact, r.exact)
		out.ExactForm = out.ExactForm && r.exact
	}
	return out
}
