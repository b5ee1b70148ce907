package engine

import (
	"math"
	"strconv"

	"github.com/njchilds90/mathcmd/symbolic"
)

// formatNumber prints integer-valued floats without a decimal point and
// rounds everything else to four places.
func formatNumber(v float64) string {
	if isWhole(v) {
		if v == 0 {
			v = 0 // drop the sign of -0
		}
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	r := math.Round(v*1e4) / 1e4
	if r == math.Trunc(r) {
		return strconv.FormatFloat(r, 'f', 1, 64)
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// formatInput echoes a parsed input number with at least one decimal place
// (100 -> "100.0", 2.5 -> "2.5").
func formatInput(v float64) string {
	if isWhole(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// isWhole reports a finite integer value of any magnitude.
func isWhole(v float64) bool { return !math.IsInf(v, 0) && v == math.Trunc(v) }

// formatRoot prints exact roots as integers or p/q and inexact ones rounded.
func formatRoot(r symbolic.Expr, exact bool) string {
	if n, ok := r.(*symbolic.Num); ok && (exact || n.IsInteger()) {
		return n.String()
	}
	v, _ := symbolic.Evalf(r, nil)
	return formatNumber(v)
}
