package engine

import (
	"errors"
	"regexp"
	"strings"

	"github.com/njchilds90/mathcmd/normalize"
	"github.com/njchilds90/mathcmd/parser"
	"github.com/njchilds90/mathcmd/symbolic"
)

const msgNotInvertible = "Matrix is not invertible"

var (
	// Greedy: from the first "[[" to the last "]]".
	matrixLiteral = regexp.MustCompile(`\[\[.*\]\]`)
	rowSeparator  = regexp.MustCompile(`\]\s*,\s*\[`)
	matrixWords   = regexp.MustCompile(`\b(?:determinant|inverse|transpose)\b`)
)

func isMatrix(folded string) bool {
	return matrixWords.MatchString(folded) && matrixLiteral.MatchString(folded)
}

// Matrix computes the determinant, inverse or transpose of the first
// [[...]] literal in text. Determinant is checked first, then inverse.
func Matrix(text string) Result { return guard(IntentMatrix, matrix, text) }

func matrix(text string) Result {
	folded := normalize.Fold(text)
	m, err := parseMatrix(matrixLiteral.FindString(folded))
	if err != nil {
		debugf(IntentMatrix, folded, err)
		return NoMatch
	}

	switch {
	case strings.Contains(folded, "determinant"):
		det, err := m.Det()
		if err != nil {
			return NoMatch
		}
		return Value("Determinant = " + symbolic.Pretty(det))
	case strings.Contains(folded, "inverse"):
		inv, err := m.Inverse()
		switch {
		case errors.Is(err, symbolic.ErrSingular):
			return Value(msgNotInvertible)
		case err != nil:
			return NoMatch
		}
		return Value(inv.String())
	case strings.Contains(folded, "transpose"):
		return Value(m.Transpose().String())
	}
	return NoMatch
}

var errNoLiteral = errors.New("no matrix literal")

// parseMatrix reads "[[a, b], [c, d]]". Entries may be any expression the
// parser accepts.
func parseMatrix(lit string) (*symbolic.Matrix, error) {
	if lit == "" {
		return nil, errNoLiteral
	}
	body := strings.TrimSuffix(strings.TrimPrefix(lit, "[["), "]]")
	var rows [][]symbolic.Expr
	for _, rowText := range rowSeparator.Split(body, -1) {
		var row []symbolic.Expr
		for _, cell := range strings.Split(rowText, ",") {
			e, err := parser.Parse(cell)
			if err != nil {
				return nil, err
			}
			row = append(row, e)
		}
		rows = append(rows, row)
	}
	return symbolic.MatrixFromRows(rows)
}
