package symbolic

// ============================================================
// Expansion
// ============================================================

func Expand(e Expr) Expr { return expandExpr(e.Simplify()).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Add:
		return AddOf(mapExprs(v.terms, expandExpr)...)
	case *Mul:
		factors := mapExprs(v.factors, expandExpr)
		for i, f := range factors {
			if sum, ok := f.(*Add); ok {
				return distribute(sum, MulOf(without(factors, i)...))
			}
		}
		return MulOf(factors...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok {
			if k, small := n.smallInt(10); small && k >= 2 {
				if _, isSum := base.(*Add); isSum {
					acc := Expr(N(1))
					for ; k > 0; k-- {
						acc = distribute(acc, base)
					}
					return acc
				}
			}
		}
		return PowOf(base, expandExpr(v.exp))
	}
	return e
}

// distribute multiplies two sums term by term. MulOf alone would fold
// (x+1)*(x+1) straight back into (x+1)**2.
func distribute(a, b Expr) Expr {
	products := []Expr{}
	for _, ta := range termsOf(a) {
		for _, tb := range termsOf(b) {
			products = append(products, expandExpr(MulOf(ta, tb)))
		}
	}
	return AddOf(products...)
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Polynomial utilities
// ============================================================

// varPower reports the exponent k when e is varName**k for an integer k
// (varName alone counts as k = 1).
func varPower(e Expr, varName string) (int, bool) {
	switch v := e.(type) {
	case *Sym:
		if v.name == varName {
			return 1, true
		}
	case *Pow:
		sym, isSym := v.base.(*Sym)
		n, isNum := v.exp.(*Num)
		if isSym && isNum && sym.name == varName && n.IsInteger() {
			return int(n.val.Num().Int64()), true
		}
	}
	return 0, false
}

// symbolOf names the symbol at the root of e, looking through one power.
func symbolOf(e Expr) (string, bool) {
	if p, ok := e.(*Pow); ok {
		e = p.base
	}
	if sym, ok := e.(*Sym); ok {
		return sym.name, true
	}
	return "", false
}

// IsPolynomial reports whether e is a polynomial in varName: every term is a
// product of factors free of varName and non-negative integer powers of it.
func IsPolynomial(e Expr, varName string) bool {
	switch v := e.Simplify().(type) {
	case *Add:
		return allExprs(v.terms, func(t Expr) bool { return IsPolynomial(t, varName) })
	case *Mul:
		return allExprs(v.factors, func(f Expr) bool { return IsPolynomial(f, varName) })
	case *Num, *Sym:
		return true
	default:
		if !HasSymbol(v, varName) {
			return true
		}
		d, ok := varPower(v, varName)
		return ok && d >= 0
	}
}

func allExprs(xs []Expr, pred func(Expr) bool) bool {
	for _, x := range xs {
		if !pred(x) {
			return false
		}
	}
	return true
}

// Degree is the highest power of varName in expr.
func Degree(expr Expr, varName string) int {
	switch v := expr.Simplify().(type) {
	case *Add:
		deg := 0
		for _, t := range v.terms {
			deg = max(deg, Degree(t, varName))
		}
		return deg
	case *Mul:
		deg := 0
		for _, f := range v.factors {
			deg += Degree(f, varName)
		}
		return deg
	default:
		d, _ := varPower(v, varName)
		return d
	}
}

type PolyCoeffsResult map[int]Expr

// PolyCoeffs maps each power of varName to its coefficient. The input should
// satisfy IsPolynomial after Expand.
func PolyCoeffs(expr Expr, varName string) PolyCoeffsResult {
	result := PolyCoeffsResult{}
	result.collect(expr.Simplify(), varName)
	return result
}

func (p PolyCoeffsResult) collect(e Expr, varName string) {
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			p.collect(t, varName)
		}
	case *Mul:
		deg, rest := 0, []Expr{}
		for _, f := range v.factors {
			if d := Degree(f, varName); d > 0 {
				deg += d
			} else {
				rest = append(rest, f)
			}
		}
		p.add(deg, MulOf(rest...))
	default:
		if d, ok := varPower(e, varName); ok {
			p.add(d, N(1))
			return
		}
		p.add(0, e)
	}
}

func (p PolyCoeffsResult) add(deg int, val Expr) {
	if existing, ok := p[deg]; ok {
		p[deg] = AddOf(existing, val)
		return
	}
	p[deg] = val.Simplify()
}

// coeff returns the coefficient of x**deg, or 0 when absent.
func (p PolyCoeffsResult) coeff(deg int) Expr {
	if c, ok := p[deg]; ok {
		return c
	}
	return N(0)
}
