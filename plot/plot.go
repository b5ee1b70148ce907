// Package plot is the reference plotting collaborator. It samples a canonical
// expression over an interval and returns the point series; rendering pixels
// is left to the client.
package plot

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/njchilds90/mathcmd/parser"
	"github.com/njchilds90/mathcmd/symbolic"
)

var ErrNotPlottable = errors.New("plot: expression is not plottable")

// Point is one sample. Y is nil where the function is undefined.
type Point struct {
	X float64  `json:"x"`
	Y *float64 `json:"y"`
}

type Figure struct {
	Title      string  `json:"title"`
	Expression string  `json:"expression"`
	Symbol     string  `json:"symbol"`
	XMin       float64 `json:"x_min"`
	XMax       float64 `json:"x_max"`
	Points     []Point `json:"points"`
}

// Sampler evaluates an expression in Symbol at Samples evenly spaced points
// of [Min, Max].
type Sampler struct {
	Min     float64
	Max     float64
	Samples int
	Symbol  string
}

func NewSampler(min, max float64, samples int) *Sampler {
	return &Sampler{Min: min, Max: max, Samples: samples, Symbol: "x"}
}

// DefaultSampler covers [-10, 10] with 400 samples.
func DefaultSampler() *Sampler { return NewSampler(-10, 10, 400) }

func (s *Sampler) Plot(ctx context.Context, expression, title string) (*Figure, error) {
	if s.Samples < 2 || !(s.Max > s.Min) {
		return nil, fmt.Errorf("%w: invalid range [%g, %g] with %d samples", ErrNotPlottable, s.Min, s.Max, s.Samples)
	}
	sym := s.Symbol
	if sym == "" {
		sym = "x"
	}

	expr, err := parser.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPlottable, err)
	}
	for name := range symbolic.FreeSymbols(expr) {
		if name != sym && name != "pi" {
			return nil, fmt.Errorf("%w: unknown symbol %q", ErrNotPlottable, name)
		}
	}

	fig := &Figure{
		Title:      title,
		Expression: expression,
		Symbol:     sym,
		XMin:       s.Min,
		XMax:       s.Max,
		Points:     make([]Point, 0, s.Samples),
	}
	step := (s.Max - s.Min) / float64(s.Samples-1)
	env := map[string]float64{}
	finite := 0
	for i := 0; i < s.Samples; i++ {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		x := s.Min + float64(i)*step
		env[sym] = x
		p := Point{X: x}
		if y, ok := symbolic.Evalf(expr, env); ok && !math.IsNaN(y) && !math.IsInf(y, 0) {
			p.Y = &y
			finite++
		}
		fig.Points = append(fig.Points, p)
	}
	if finite == 0 {
		return nil, fmt.Errorf("%w: no finite samples in [%g, %g]", ErrNotPlottable, s.Min, s.Max)
	}
	return fig, nil
}
