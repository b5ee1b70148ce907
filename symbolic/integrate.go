package symbolic

// ============================================================
// Integration (rule-based)
// ============================================================

// Integrate returns an antiderivative of expr with respect to varName, without
// the constant of integration. ok is false when no rule applies.
func Integrate(expr Expr, varName string) (Expr, bool) {
	expr = expr.Simplify()
	x := S(varName)
	if !HasSymbol(expr, varName) {
		return MulOf(expr, x), true
	}
	switch v := expr.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(x, N(2))), true
	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			it, ok := Integrate(t, varName)
			if !ok {
				return nil, false
			}
			terms[i] = it
		}
		return AddOf(terms...), true
	case *Mul:
		consts := []Expr{}
		rest := []Expr{}
		for _, f := range v.factors {
			if HasSymbol(f, varName) {
				rest = append(rest, f)
			} else {
				consts = append(consts, f)
			}
		}
		if len(consts) == 0 {
			// x*(x + 1) and friends integrate term by term once multiplied out.
			if expanded := Expand(v); !expanded.Equal(v) {
				return Integrate(expanded, varName)
			}
			return nil, false
		}
		var inner Expr
		if len(rest) == 1 {
			inner = rest[0]
		} else {
			inner = &Mul{factors: rest}
		}
		it, ok := Integrate(inner, varName)
		if !ok {
			return nil, false
		}
		return MulOf(append(consts, it)...), true
	case *Pow:
		if a, b, ok := linearIn(v.base, varName); ok && !HasSymbol(v.exp, varName) {
			// ∫(a*x+b)**n dx
			if n, isNum := v.exp.(*Num); isNum && n.IsNegOne() {
				return MulOf(PowOf(a, N(-1)), LnOf(AbsOf(AddOf(MulOf(a, x), b)))), true
			}
			n1 := AddOf(v.exp, N(1))
			return MulOf(PowOf(MulOf(a, n1), N(-1)), PowOf(v.base, n1)), true
		}
		if !HasSymbol(v.base, varName) {
			// ∫c**(a*x+b) dx
			if a, _, ok := linearIn(v.exp, varName); ok {
				return MulOf(v, PowOf(MulOf(a, LnOf(v.base)), N(-1))), true
			}
		}
		if expanded := Expand(v); !expanded.Equal(v) {
			return Integrate(expanded, varName)
		}
		return nil, false
	case *Func:
		a, _, ok := linearIn(v.arg, varName)
		if !ok {
			return nil, false
		}
		inv := PowOf(a, N(-1))
		u := v.arg
		switch v.name {
		case "sin":
			return MulOf(N(-1), inv, CosOf(u)), true
		case "cos":
			return MulOf(inv, SinOf(u)), true
		case "tan":
			return MulOf(N(-1), inv, LnOf(AbsOf(CosOf(u)))), true
		case "exp":
			return MulOf(inv, ExpOf(u)), true
		case "sinh":
			return MulOf(inv, CoshOf(u)), true
		case "cosh":
			return MulOf(inv, SinhOf(u)), true
		case "ln":
			return MulOf(inv, AddOf(MulOf(u, LnOf(u)), MulOf(N(-1), u))), true
		case "atan":
			if isSym(u, varName) {
				return AddOf(
					MulOf(x, AtanOf(x)),
					MulOf(F(-1, 2), LnOf(AddOf(N(1), PowOf(x, N(2))))),
				), true
			}
		case "asin":
			if isSym(u, varName) {
				return AddOf(
					MulOf(x, AsinOf(x)),
					SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(x, N(2))))),
				), true
			}
		}
		return nil, false
	}
	return nil, false
}

// linearIn matches e against a*x + b with a, b free of x and a != 0.
func linearIn(e Expr, varName string) (a, b Expr, ok bool) {
	if !HasSymbol(e, varName) || !IsPolynomial(e, varName) {
		return nil, nil, false
	}
	e = Expand(e)
	if Degree(e, varName) != 1 {
		return nil, nil, false
	}
	c := PolyCoeffs(e, varName)
	return c.coeff(1), c.coeff(0), true
}

func isSym(e Expr, name string) bool {
	s, ok := e.(*Sym)
	return ok && s.name == name
}
