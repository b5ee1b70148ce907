package symbolic

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ============================================================
// Matrix of exact expressions
// ============================================================

var (
	ErrNotSquare = errors.New("matrix is not square")
	ErrSingular  = errors.New("matrix is singular")
	ErrRagged    = errors.New("matrix rows have different lengths")
	ErrTooLarge  = errors.New("symbolic matrix too large")
)

// MaxSymbolicDim bounds cofactor expansion, which is factorial in the
// dimension. Purely numeric matrices use elimination and have no bound.
const MaxSymbolicDim = 8

type Matrix struct {
	rows, cols int
	data       [][]Expr
}

func NewMatrix(rows, cols int) *Matrix {
	return generate(rows, cols, func(int, int) Expr { return N(0) })
}

// MatrixFromRows builds a matrix from row slices, which must be non-empty and
// of equal length.
func MatrixFromRows(rows [][]Expr) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrRagged)
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != m.cols {
			return nil, fmt.Errorf("%w: row %d has %d entries, want %d", ErrRagged, i, len(row), m.cols)
		}
		for j, e := range row {
			m.data[i][j] = e.Simplify()
		}
	}
	return m, nil
}

func (m *Matrix) Get(row, col int) Expr {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("symbolic: matrix index out of range [%d,%d] for %dx%d", row, col, m.rows, m.cols))
	}
	return m.data[row][col]
}

// String renders the matrix as a nested list literal: [[1, 2], [3, 4]].
func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.data[i][j].String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

// generate builds a rows x cols matrix from entry(i, j).
func generate(rows, cols int, entry func(i, j int) Expr) *Matrix {
	data := make([][]Expr, rows)
	for i := range data {
		data[i] = make([]Expr, cols)
		for j := range data[i] {
			data[i][j] = entry(i, j)
		}
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

func (m *Matrix) Scale(scalar Expr) *Matrix {
	return generate(m.rows, m.cols, func(i, j int) Expr { return MulOf(scalar, m.data[i][j]) })
}

func (m *Matrix) Transpose() *Matrix {
	return generate(m.cols, m.rows, func(i, j int) Expr { return m.data[j][i] })
}

func (m *Matrix) Det() (Expr, error) {
	if err := m.checkSquare(); err != nil {
		return nil, err
	}
	if a, ok := m.rats(); ok {
		return wrapRat(ratDet(a)), nil
	}
	return det(m.data), nil
}

// checkSquare also enforces MaxSymbolicDim when an entry is not a number.
func (m *Matrix) checkSquare() error {
	if m.rows != m.cols {
		return fmt.Errorf("%w: %dx%d", ErrNotSquare, m.rows, m.cols)
	}
	if _, ok := m.rats(); !ok && m.rows > MaxSymbolicDim {
		return fmt.Errorf("%w: %dx%d exceeds %dx%d", ErrTooLarge, m.rows, m.cols, MaxSymbolicDim, MaxSymbolicDim)
	}
	return nil
}

// rats copies the entries as rationals when every one is a *Num.
func (m *Matrix) rats() ([][]*big.Rat, bool) {
	out := make([][]*big.Rat, m.rows)
	for i, row := range m.data {
		out[i] = make([]*big.Rat, m.cols)
		for j, e := range row {
			n, ok := e.(*Num)
			if !ok {
				return nil, false
			}
			out[i][j] = n.Rat()
		}
	}
	return out, true
}

// pivotRow finds the first row at or below col with a non-zero entry in col.
func pivotRow(a [][]*big.Rat, col int) int {
	for r := col; r < len(a); r++ {
		if a[r][col].Sign() != 0 {
			return r
		}
	}
	return -1
}

// eliminate subtracts factor*src from dst, from column col onwards.
func eliminate(dst, src []*big.Rat, factor *big.Rat, col int) {
	t := new(big.Rat)
	for k := col; k < len(dst); k++ {
		dst[k].Sub(dst[k], t.Mul(factor, src[k]))
	}
}

// ratDet reduces a to upper triangular form in place and multiplies the
// pivots.
func ratDet(a [][]*big.Rat) *big.Rat {
	d := big.NewRat(1, 1)
	for col := range a {
		p := pivotRow(a, col)
		if p < 0 {
			return new(big.Rat)
		}
		if p != col {
			a[p], a[col] = a[col], a[p]
			d.Neg(d)
		}
		d.Mul(d, a[col][col])
		for r := col + 1; r < len(a); r++ {
			if a[r][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Quo(a[r][col], a[col][col])
			eliminate(a[r], a[col], factor, col)
		}
	}
	return d
}

// ratInverse runs Gauss-Jordan on [a | I]. It reports false when a is
// singular.
func ratInverse(a [][]*big.Rat) ([][]*big.Rat, bool) {
	n := len(a)
	aug := make([][]*big.Rat, n)
	for i := range a {
		aug[i] = make([]*big.Rat, 2*n)
		copy(aug[i], a[i])
		for j := n; j < 2*n; j++ {
			aug[i][j] = new(big.Rat)
		}
		aug[i][n+i].SetInt64(1)
	}
	for col := 0; col < n; col++ {
		p := pivotRow(aug, col)
		if p < 0 {
			return nil, false
		}
		aug[p], aug[col] = aug[col], aug[p]
		inv := new(big.Rat).Inv(aug[col][col])
		for k := col; k < 2*n; k++ {
			aug[col][k].Mul(aug[col][k], inv)
		}
		for r := 0; r < n; r++ {
			if r == col || aug[r][col].Sign() == 0 {
				continue
			}
			factor := new(big.Rat).Set(aug[r][col])
			eliminate(aug[r], aug[col], factor, col)
		}
	}
	out := make([][]*big.Rat, n)
	for i := range aug {
		out[i] = aug[i][n:]
	}
	return out, true
}

// det expands along the first row.
func det(data [][]Expr) Expr {
	switch len(data) {
	case 1:
		return data[0][0].Simplify()
	case 2:
		return AddOf(
			MulOf(data[0][0], data[1][1]),
			MulOf(N(-1), data[0][1], data[1][0]),
		)
	}
	terms := make([]Expr, len(data))
	for j := range data[0] {
		terms[j] = MulOf(cofactorSign(0, j), data[0][j], det(minor(data, 0, j)))
	}
	return AddOf(terms...)
}

func cofactorSign(i, j int) *Num {
	if (i+j)%2 == 1 {
		return N(-1)
	}
	return N(1)
}

// minor drops row r and column c.
func minor(data [][]Expr, r, c int) [][]Expr {
	out := make([][]Expr, 0, len(data)-1)
	for i, row := range data {
		if i != r {
			out = append(out, without(row, c))
		}
	}
	return out
}

// Inverse uses Gauss-Jordan for numeric matrices and the adjugate over the
// determinant otherwise. A determinant that evaluates to zero yields
// ErrSingular.
func (m *Matrix) Inverse() (*Matrix, error) {
	if err := m.checkSquare(); err != nil {
		return nil, err
	}
	if a, ok := m.rats(); ok {
		inv, ok := ratInverse(a)
		if !ok {
			return nil, ErrSingular
		}
		return generate(m.rows, m.cols, func(i, j int) Expr { return wrapRat(inv[i][j]) }), nil
	}
	d := det(m.data)
	if dn, ok := d.Eval(); ok && dn.IsZero() {
		return nil, ErrSingular
	}
	recip := PowOf(d, N(-1))
	if m.rows == 1 {
		return generate(1, 1, func(int, int) Expr { return recip }), nil
	}
	// adj(A)[i][j] is the (j, i) cofactor.
	adj := generate(m.rows, m.cols, func(i, j int) Expr {
		return MulOf(cofactorSign(j, i), det(minor(m.data, j, i)))
	})
	return adj.Scale(recip), nil
}
