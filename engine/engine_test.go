package engine_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathcmd/engine"
	"github.com/njchilds90/mathcmd/plot"
	"github.com/njchilds90/mathcmd/ratelimit"
)

func render(text string) string {
	_, r := engine.Route(text)
	return r.String()
}

func TestRoute_EndToEnd(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"divide 10 by 2", "5"},
		{"differentiate x squared", "Derivative = 2·x"},
		{"integrate 2x", "Integral = x² + C"},
		{"solve x squared minus 4 equals 0", "x = -2, 2"},
		{"determinant of [[1,2],[3,4]]", "Determinant = -2"},
		{"convert 100 celsius to fahrenheit", "100.0 celsius = 212 fahrenheit"},
		{"10 divided by 0", "Error: Cannot divide by zero"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, render(tt.in))
		})
	}
}

func TestArithmetic_Phrases(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"oneplus 2", "3"},
		{"1 and 2", "3"},
		{"addition of 1 and 2", "3"},
		{"sum of 5 and 3", "8"},
		{"1 + 2", "3"},
		{"multiply 5 by 2", "10"},
		{"divide 10 by 2", "5"},
		{"5 minus 2", "3"},
		{"subtraction of 5 and 2", "3"},
		{"difference of 10 and 2", "8"},
		{"5 times 5", "25"},
		{"product of 4 and 5", "20"},
		{"10 divided by 2", "5"},
		{"division of 20 by 4", "5"},
		{"2 power 3", "8"},
		{"square root of 16", "4"},
		{"What is 7 over 2?", "3.5"},
		{"10 / 3", "3.3333"},
		{"0.1 + 0.2", "0.3"},
		{"2 ** 0.5", "1.4142"},
		{"2^10", "1024"},
		{"4 squared", "16"},
		{"3 into 4", "12"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			r := engine.Arithmetic(tt.in)
			require.Equal(t, engine.KindValue, r.Kind)
			assert.Equal(t, tt.want, r.Text)
		})
	}
}

func TestArithmetic_EdgeCases(t *testing.T) {
	tests := []struct {
		in   string
		want engine.Result
	}{
		{"10 / 0", engine.Fail("Cannot divide by zero")},
		{"10 / 0.0", engine.Fail("Cannot divide by zero")},
		{"10 / 00 + 1", engine.Fail("Cannot divide by zero")},
		{"1 / (2 - 2)", engine.Fail("Cannot divide by zero")},
		{"sqrt(-1)", engine.Fail("Undefined result")},
		{"10 / 0.5", engine.Value("20")},
		{"hello there", engine.NoMatch},
		{"x + 1", engine.NoMatch},
		{"", engine.NoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Arithmetic(tt.in))
		})
	}
}

func TestCalculus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"differentiate x squared", "Derivative = 2·x"},
		{"differentiate log x", "Derivative = 1/x"},
		{"differentiate e power x", "Derivative = exp(x)"},
		{"derivative of sin x", "Derivative = cos(x)"},
		{"differentiate x^3 with respect to x", "Derivative = 3·x²"},
		{"integrate 2x", "Integral = x² + C"},
		{"integral of x squared", "Integral = x³/3 + C"},
		{"integrate cosine x", "Integral = sin(x) + C"},
		{"integrate x squared from 0 to 1", "Integral = 1/3"},
		{"integrate 2x from -1 to 3", "Integral = 8"},
		{"integral of x from 0 to 2.5", "Integral = 25/8"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, engine.Value(tt.want), engine.Calculus(tt.in))
		})
	}
}

func TestCalculus_NoMatch(t *testing.T) {
	assert.Equal(t, engine.NoMatch, engine.Calculus("2 + 2"), "no trigger word")
	assert.Equal(t, engine.NoMatch, engine.Calculus("integrate x sin x"), "no integration rule")
	assert.Equal(t, engine.NoMatch, engine.Calculus("differentiate +*"), "unparseable")
	assert.Equal(t, engine.NoMatch, engine.Calculus("differentiate x squared please"), "stray word")
	assert.Equal(t, engine.NoMatch, engine.Calculus("integrate y squared"), "foreign variable")
	assert.Equal(t, engine.NoMatch, engine.Calculus("integrate x from a to 1"), "symbolic limit")
	assert.Equal(t, engine.NoMatch, engine.Calculus("differentiate x squared from 0 to 1"), "limits on a derivative")
}

func TestEquation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"solve x squared minus 4 equals 0", "x = -2, 2"},
		{"solve 2x + 3 = 7", "x = 2"},
		{"solve 2x = 3", "x = 3/2"},
		{"find x if 2x is equal to 10", "x = 5"},
		{"find the value of x where x plus 1 equals 3", "x = 2"},
		{"solve x^2 - 2 = 0", "x = -1.4142, 1.4142"},
		{"solve x cubed minus 6x squared plus 11x minus 6", "x = 1, 2, 3"},
		{"solve 2x cubed minus x squared minus 2x plus 1 equals 0", "x = -1, 1/2, 1"},
		{"solve x cubed minus 2x = 0", "x = -1.4142, 0, 1.4142"},
		{"solve x squared plus 1 equals 0", "No real solutions found"},
		{"solve x = x", "No real solutions found"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, engine.Value(tt.want), engine.Equation(tt.in))
		})
	}
}

func TestEquation_NoMatch(t *testing.T) {
	assert.Equal(t, engine.NoMatch, engine.Equation("solve x +* 1 = 2"))
	assert.Equal(t, engine.NoMatch, engine.Equation("solve x = 1 = 2"))
	assert.Equal(t, engine.NoMatch, engine.Equation("solve x + y = 2"))
}

func TestMatrix(t *testing.T) {
	tests := []struct {
		in   string
		want engine.Result
	}{
		{"determinant of [[1,2],[3,4]]", engine.Value("Determinant = -2")},
		{"determinant of [[2, 0], [0, 1/2]]", engine.Value("Determinant = 1")},
		{"inverse of [[1,2],[3,4]]", engine.Value("[[-2, 1], [3/2, -1/2]]")},
		{"inverse of [[1,2],[2,4]]", engine.Value("Matrix is not invertible")},
		{"transpose [[1,2],[3,4]]", engine.Value("[[1, 3], [2, 4]]")},
		{"transpose [[1,2,3]]", engine.Value("[[1], [2], [3]]")},
		{"determinant and inverse of [[1,2],[3,4]]", engine.Value("Determinant = -2")},
		{"determinant of [[1,2,3],[4,5,6]]", engine.NoMatch},
		{"determinant of [[1,2],[3]]", engine.NoMatch},
		{"determinant of nothing", engine.NoMatch},
		{"rank of [[1,2],[3,4]]", engine.NoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Matrix(tt.in))
		})
	}
}

func TestMatrix_LargeNumeric(t *testing.T) {
	const n = 12
	rows := make([]string, n)
	for i := range rows {
		cells := make([]string, n)
		for j := range cells {
			cells[j] = "0"
		}
		cells[i] = "2"
		rows[i] = "[" + strings.Join(cells, ",") + "]"
	}
	lit := "[" + strings.Join(rows, ",") + "]"
	assert.Equal(t, engine.Value("Determinant = 4096"), engine.Matrix("determinant of "+lit))

	symbolicLit := strings.Replace(lit, "2", "x", 1)
	assert.Equal(t, engine.NoMatch, engine.Matrix("determinant of "+symbolicLit))
}

func TestUnits(t *testing.T) {
	tests := []struct {
		in   string
		want engine.Result
	}{
		{"convert 100 celsius to fahrenheit", engine.Value("100.0 celsius = 212 fahrenheit")},
		{"5 km to miles", engine.Value("5.0 km = 3.1069 miles")},
		{"Convert 1 KG to LBS", engine.Value("1.0 kg = 2.2046 lbs")},
		{"2.5 m in cm", engine.Value("2.5 m = 250 cm")},
		{"convert 1 gb to mb?", engine.Value("1.0 gb = 1024 mb")},
		{"convert -40 fahrenheit to celsius", engine.Value("-40.0 fahrenheit = -40 celsius")},
		{"convert 36 kmh to m/s", engine.Value("36.0 kmh = 10 m/s")},
		{"convert 5 km to parsecs", engine.NoMatch},
		{"convert 5 celsius to km", engine.NoMatch},
		{"convert five km to miles", engine.NoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Units(tt.in))
		})
	}
}

func TestUnitCatalogue(t *testing.T) {
	cat := engine.UnitCatalogue()
	require.NotEmpty(t, cat)
	assert.Equal(t, "data", cat[0].Category)

	pairs := map[engine.UnitPair]bool{}
	for _, u := range cat {
		pairs[engine.UnitPair{From: u.From, To: u.To}] = true
	}
	for p := range pairs {
		assert.True(t, pairs[engine.UnitPair{From: p.To, To: p.From}], "missing inverse of %v", p)
	}
}

func TestRoute_Priority(t *testing.T) {
	tests := []struct {
		in   string
		want engine.Intent
	}{
		{"activate antigravity and solve x", engine.IntentAntigravity},
		{"Python fly", engine.IntentAntigravity},
		{"convert 5 km to miles", engine.IntentUnits},
		{"solve 2x = 4", engine.IntentEquation},
		{"determinant of [[1,2],[3,4]]", engine.IntentMatrix},
		{"plot x squared", engine.IntentGraph},
		{"graph x cube", engine.IntentGraph},
		{"differentiate x squared", engine.IntentCalculus},
		{"integrate 2x", engine.IntentCalculus},
		{"2 plus 2", engine.IntentArithmetic},
		{"hello there", engine.IntentNone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			intent, _ := engine.Route(tt.in)
			assert.Equal(t, tt.want, intent)
		})
	}
}

func TestRoute_Idempotent(t *testing.T) {
	for _, in := range []string{"divide 10 by 2", "solve 2x = 4", "integrate 2x", "hello"} {
		i1, r1 := engine.Route(in)
		i2, r2 := engine.Route(in)
		assert.Equal(t, i1, i2)
		assert.Equal(t, r1, r2)
	}
}

func newEngine(t *testing.T, max int, opts ...engine.Option) *engine.Engine {
	t.Helper()
	w, err := ratelimit.NewWindow(max, time.Hour)
	require.NoError(t, err)
	return engine.New(append([]engine.Option{engine.WithWindow(w)}, opts...)...)
}

func TestProcess_Envelope(t *testing.T) {
	e := newEngine(t, 100)
	ctx := context.Background()

	resp := e.Process(ctx, "divide 10 by 2")
	assert.Equal(t, engine.Response{Result: "5", Speech: "The result is 5", Intent: engine.IntentArithmetic}, resp)

	resp = e.Process(ctx, "10 divided by 0")
	assert.Equal(t, "Error: Cannot divide by zero", resp.Result)
	assert.Equal(t, "Cannot divide by zero", resp.Speech)

	resp = e.Process(ctx, "differentiate x squared")
	assert.Equal(t, "Derivative = 2·x", resp.Result)
	assert.Equal(t, "Derivative = 2·x", resp.Speech)

	resp = e.Process(ctx, "activate antigravity")
	assert.Equal(t, engine.Response{Speech: "You are now flying!", Action: "antigravity", Intent: engine.IntentAntigravity}, resp)

	resp = e.Process(ctx, "hello there")
	assert.Equal(t, engine.Response{Speech: "I didn't understand that."}, resp)
}

func TestProcess_Graph(t *testing.T) {
	e := newEngine(t, 100, engine.WithPlotter(plot.NewSampler(-1, 1, 5)))
	ctx := context.Background()

	resp := e.Process(ctx, "plot x square")
	assert.Equal(t, "Graph of x **2", resp.Result)
	assert.Equal(t, "Graphing x **2", resp.Speech)
	require.NotNil(t, resp.Graph)
	assert.Equal(t, "y = x **2", resp.Graph.Title)
	assert.Len(t, resp.Graph.Points, 5)

	resp = e.Process(ctx, "plot x + y")
	assert.True(t, strings.HasPrefix(resp.Result, "Graph Error: "), resp.Result)
	assert.Equal(t, "I could not plot that function.", resp.Speech)
	assert.Nil(t, resp.Graph)
}

type failingPlotter struct{}

func (failingPlotter) Plot(context.Context, string, string) (*plot.Figure, error) {
	return nil, errors.New("renderer offline")
}

func TestProcess_PlotterError(t *testing.T) {
	e := newEngine(t, 100, engine.WithPlotter(failingPlotter{}))
	resp := e.Process(context.Background(), "draw sine x")
	assert.Equal(t, "Graph Error: renderer offline", resp.Result)
	assert.Equal(t, engine.IntentGraph, resp.Intent)
}

func TestProcess_Throttled(t *testing.T) {
	stats := ratelimit.NewMemoryStats()
	e := newEngine(t, 2, engine.WithStats(stats))
	ctx := context.Background()

	assert.False(t, e.Process(ctx, "1 + 1").Throttled)
	assert.False(t, e.Process(ctx, "1 + 1").Throttled)

	resp := e.Process(ctx, "1 + 1")
	assert.Equal(t, engine.Response{Speech: "Too many requests. Please slow down.", Throttled: true}, resp)
	e.Flush()
	assert.Equal(t, ratelimit.Counters{Allowed: 2, Denied: 1}, stats.Total())
}

// blockingStats holds every Record until release is closed.
type blockingStats struct {
	*ratelimit.MemoryStats
	release chan struct{}
}

func (b blockingStats) Record(ctx context.Context, ev ratelimit.StatsEvent) error {
	<-b.release
	return b.MemoryStats.Record(ctx, ev)
}

func TestAllow_DoesNotWaitForStats(t *testing.T) {
	stats := blockingStats{MemoryStats: ratelimit.NewMemoryStats(), release: make(chan struct{})}
	e := newEngine(t, 5, engine.WithStats(stats))

	done := make(chan bool)
	go func() { done <- e.Allow(context.Background()) }()
	select {
	case ok := <-done:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Allow blocked on the statistics store")
	}
	assert.Equal(t, ratelimit.Counters{}, stats.Total())

	close(stats.release)
	e.Flush()
	assert.Equal(t, ratelimit.Counters{Allowed: 1}, stats.Total())
}

type failingStats struct{}

func (failingStats) Record(context.Context, ratelimit.StatsEvent) error {
	return errors.New("stats offline")
}

func TestAllow_StatsErrorStillAdmits(t *testing.T) {
	e := newEngine(t, 5, engine.WithStats(failingStats{}))
	assert.True(t, e.Allow(context.Background()))
	e.Flush()
}

func TestProcess_ConcurrentAdmission(t *testing.T) {
	e := newEngine(t, 10)
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		throttled int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if e.Process(context.Background(), "2 times 3").Throttled {
				mu.Lock()
				throttled++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 30, throttled)
}

func TestProcessImage(t *testing.T) {
	ctx := context.Background()

	e := newEngine(t, 100)
	resp, err := e.ProcessImage(ctx, []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "OCR Library not installed on server.", resp.Text)
	assert.Empty(t, resp.Result)

	e = newEngine(t, 100, engine.WithOCR(engine.OCRFunc(func(context.Context, []byte) (string, error) {
		return "12 plus 30", nil
	})))
	resp, err = e.ProcessImage(ctx, []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, engine.ImageResponse{
		Text:   "12 plus 30",
		Result: "42",
		Speech: "Found text: 12 plus 30. Result is 42",
	}, resp)

	e = newEngine(t, 100, engine.WithOCR(engine.OCRFunc(func(context.Context, []byte) (string, error) {
		return "", engine.ErrTesseractAbsent
	})))
	resp, err = e.ProcessImage(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Tesseract Binary not found on server.", resp.Text)

	boom := errors.New("decode failed")
	e = newEngine(t, 100, engine.WithOCR(engine.OCRFunc(func(context.Context, []byte) (string, error) {
		return "", boom
	})))
	_, err = e.ProcessImage(ctx, nil)
	assert.ErrorIs(t, err, boom)
}

func TestBatchRunner(t *testing.T) {
	e := newEngine(t, 100)
	runner := engine.NewBatchRunner(e, 3, 10)

	cmds := []string{"1 + 1", "divide 10 by 2", "integrate 2x", "hello there", "5 times 5"}
	out, err := runner.Run(context.Background(), cmds)
	require.NoError(t, err)
	require.Len(t, out, len(cmds))
	assert.Equal(t, "2", out[0].Result)
	assert.Equal(t, "5", out[1].Result)
	assert.Equal(t, "Integral = x² + C", out[2].Result)
	assert.Equal(t, "I didn't understand that.", out[3].Speech)
	assert.Equal(t, "25", out[4].Result)
}

func TestBatchRunner_Limits(t *testing.T) {
	runner := engine.NewBatchRunner(newEngine(t, 100), 2, 2)
	_, err := runner.Run(context.Background(), []string{"1", "2", "3"})
	assert.ErrorIs(t, err, engine.ErrTooManyCommands)

	out, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Run(ctx, []string{"1 + 1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchRunner_SharesWindow(t *testing.T) {
	runner := engine.NewBatchRunner(newEngine(t, 2), 4, 10)
	out, err := runner.Run(context.Background(), []string{"1", "2", "3", "4"})
	require.NoError(t, err)

	throttled := 0
	for _, r := range out {
		if r.Throttled {
			throttled++
		}
	}
	assert.Equal(t, 2, throttled)
}
