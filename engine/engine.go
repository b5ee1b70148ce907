// Package engine routes a natural-language math command to the evaluator
// that owns it and wraps the outcome in a response envelope.
//
// Routing order is fixed: antigravity, unit conversion, equation, matrix,
// graph, calculus, arithmetic. The first evaluator that does not return
// NoMatch wins.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/njchilds90/mathcmd/normalize"
	logx "github.com/njchilds90/mathcmd/pkg/logger"
	"github.com/njchilds90/mathcmd/plot"
	"github.com/njchilds90/mathcmd/ratelimit"
)

// Intent names the evaluator that claimed a command.
type Intent string

const (
	IntentNone        Intent = ""
	IntentAntigravity Intent = "antigravity"
	IntentUnits       Intent = "units"
	IntentEquation    Intent = "equation"
	IntentMatrix      Intent = "matrix"
	IntentGraph       Intent = "graph"
	IntentCalculus    Intent = "calculus"
	IntentArithmetic  Intent = "arithmetic"
)

type stage struct {
	intent Intent
	match  func(folded string) bool
	eval   func(text string) Result
}

func always(string) bool { return true }

var stages = []stage{
	{IntentAntigravity, isAntigravity, Antigravity},
	{IntentUnits, isConversion, Units},
	{IntentEquation, isEquation, Equation},
	{IntentMatrix, isMatrix, Matrix},
	{IntentGraph, isGraph, Graph},
	{IntentCalculus, isCalculus, Calculus},
	{IntentArithmetic, always, Arithmetic},
}

// Route runs the stages in order and returns the first match. It never
// panics.
func Route(text string) (Intent, Result) {
	folded := normalize.Fold(text)
	for _, s := range stages {
		if !s.match(folded) {
			continue
		}
		if r := s.eval(folded); r.Matched() {
			logx.Debug().Str("intent", string(s.intent)).Str("command", folded).Msg("command routed")
			return s.intent, r
		}
	}
	return IntentNone, NoMatch
}

func guard(intent Intent, eval func(string) Result, text string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			logx.Warn().Str("intent", string(intent)).Str("command", text).Interface("panic", r).Msg("evaluator recovered")
			res = NoMatch
		}
	}()
	return eval(text)
}

func debugf(intent Intent, canon string, err error) {
	logx.Debug().Str("intent", string(intent)).Str("canonical", canon).Err(err).Msg("no parse")
}

const (
	speechNotUnderstood = "I didn't understand that."
	speechThrottled     = "Too many requests. Please slow down."
	speechPlotFailed    = "I could not plot that function."
)

// Response is the envelope returned to front ends.
type Response struct {
	Result    string       `json:"result"`
	Speech    string       `json:"speech"`
	Action    string       `json:"action,omitempty"`
	Intent    Intent       `json:"intent,omitempty"`
	Graph     *plot.Figure `json:"graph,omitempty"`
	Throttled bool         `json:"throttled,omitempty"`
}

// ImageResponse is the envelope for the OCR path.
type ImageResponse struct {
	Text      string `json:"text"`
	Result    string `json:"result"`
	Speech    string `json:"speech"`
	Throttled bool   `json:"throttled,omitempty"`
}

// Engine owns the admission window and the collaborators. Safe for
// concurrent use.
type Engine struct {
	window  *ratelimit.Window
	stats   ratelimit.StatsStore
	plotter Plotter
	ocr     OCR

	recording sync.WaitGroup
}

type Option func(*Engine)

func WithWindow(w *ratelimit.Window) Option {
	return func(e *Engine) { e.window = w }
}

func WithStats(s ratelimit.StatsStore) Option {
	return func(e *Engine) { e.stats = s }
}

func WithPlotter(p Plotter) Option {
	return func(e *Engine) { e.plotter = p }
}

func WithOCR(o OCR) Option {
	return func(e *Engine) { e.ocr = o }
}

// New returns an engine admitting 30 commands a minute, with in-memory
// statistics, the default plot sampler and no OCR backend.
func New(opts ...Option) *Engine {
	e := &Engine{
		window:  ratelimit.DefaultWindow(),
		stats:   ratelimit.NewMemoryStats(),
		plotter: plot.DefaultSampler(),
		ocr:     UnavailableOCR{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

const statsRoute = "engine"

// Allow consults the window and records the decision in the background, so
// a slow statistics store never delays admission. Flush waits for pending
// records.
func (e *Engine) Allow(ctx context.Context) bool {
	ok := e.window.Allow()
	if e.stats != nil {
		ev := ratelimit.StatsEvent{Allowed: ok, Route: statsRoute, At: time.Now()}
		e.recording.Add(1)
		go func() {
			defer e.recording.Done()
			if err := e.stats.Record(context.WithoutCancel(ctx), ev); err != nil {
				logx.Warn().Err(err).Msg("record rate stats")
			}
		}()
	}
	if !ok {
		logx.Warn().
			Int("max", e.window.Max()).
			Dur("period", e.window.Period()).
			Dur("retry_after", e.window.RetryAfter()).
			Msg("command throttled")
	}
	return ok
}

// Flush blocks until every decision handed to the statistics store has been
// recorded.
func (e *Engine) Flush() { e.recording.Wait() }

// Process admits, routes and evaluates one command.
func (e *Engine) Process(ctx context.Context, text string) Response {
	if !e.Allow(ctx) {
		return Response{Speech: speechThrottled, Throttled: true}
	}

	intent, res := Route(text)
	resp := Response{Intent: intent}
	switch {
	case intent == IntentNone:
		resp.Speech = speechNotUnderstood
	case intent == IntentAntigravity:
		resp.Speech = res.Text
		resp.Action = string(IntentAntigravity)
	case intent == IntentGraph:
		e.plot(ctx, res.Text, &resp)
	case res.Kind == KindError:
		resp.Result = res.String()
		resp.Speech = res.Text
	case intent == IntentArithmetic:
		resp.Result = res.Text
		resp.Speech = "The result is " + res.Text
	default:
		resp.Result = res.Text
		resp.Speech = res.Text
	}
	return resp
}

func (e *Engine) plot(ctx context.Context, expr string, resp *Response) {
	fig, err := e.plotter.Plot(ctx, expr, "y = "+expr)
	if err != nil {
		logx.Debug().Err(err).Str("expression", expr).Msg("plot failed")
		resp.Result = "Graph Error: " + err.Error()
		resp.Speech = speechPlotFailed
		return
	}
	resp.Result = "Graph of " + expr
	resp.Speech = "Graphing " + expr
	resp.Graph = fig
}

// ProcessImage extracts text with the OCR collaborator and evaluates it as
// arithmetic. Backend-unavailable errors come back as the extracted text;
// any other OCR error is returned.
func (e *Engine) ProcessImage(ctx context.Context, image []byte) (ImageResponse, error) {
	if !e.Allow(ctx) {
		return ImageResponse{Speech: speechThrottled, Throttled: true}, nil
	}

	text, err := e.ocr.Extract(ctx, image)
	switch {
	case errors.Is(err, ErrOCRUnavailable), errors.Is(err, ErrTesseractAbsent):
		return ImageResponse{Text: err.Error(), Speech: "Found text: " + err.Error()}, nil
	case err != nil:
		return ImageResponse{}, fmt.Errorf("engine: extract text: %w", err)
	}

	resp := ImageResponse{Text: text, Speech: "Found text: " + text}
	if result := Arithmetic(text).String(); result != "" {
		resp.Result = result
		resp.Speech = fmt.Sprintf("Found text: %s. Result is %s", text, result)
	}
	return resp, nil
}
