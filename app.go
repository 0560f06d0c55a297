package main

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/chazu/proctex/pkg/config"
	"github.com/chazu/proctex/pkg/engine"
	"github.com/chazu/proctex/pkg/kernel/sdfx"
	"github.com/chazu/proctex/pkg/logger"
	"github.com/chazu/proctex/pkg/procedure"
	"github.com/chazu/proctex/pkg/render"
)

// App turns procedure sources into previews. It owns the DSL engine and
// the node registry shared by scripts and saved documents.
type App struct {
	ctx      context.Context
	cfg      config.Config
	registry *procedure.Registry
	engine   *engine.Engine
}

// EvalErrorData is a JSON-serializable diagnostic.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	NodeID  int    `json:"node"`
	Message string `json:"message"`
}

// OutputStats summarizes one output over the preview. Color outputs are
// summarized by brightness.
type OutputStats struct {
	Name string  `json:"name"`
	Type string  `json:"type"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// EvalResult is the full result of evaluating a source.
type EvalResult struct {
	Nodes       int             `json:"nodes"`
	Links       int             `json:"links"`
	Outputs     []OutputStats   `json:"outputs"`
	DepthErrors int             `json:"depthErrors"`
	Errors      []EvalErrorData `json:"errors"`
	Warnings    []EvalErrorData `json:"warnings"`

	Procedure *procedure.Procedure `json:"-"`
	Image     *render.Image        `json:"-"`
}

// NewApp creates an App with the sdfx kernel behind distance nodes.
func NewApp(cfg config.Config) *App {
	reg := procedure.DefaultRegistry(sdfx.New())
	return &App{
		ctx:      context.Background(),
		cfg:      cfg,
		registry: reg,
		engine:   engine.NewEngine(reg, engine.Options{AllowFeedback: cfg.Eval.AllowFeedback}),
	}
}

// startup replaces the context used to cancel previews.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

func newResult() EvalResult {
	return EvalResult{
		Outputs:  []OutputStats{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// Evaluate takes Lisp source and returns the procedure, its preview and
// any diagnostics.
func (a *App) Evaluate(source string) EvalResult {
	result := newResult()

	// Step 1: Evaluate the Lisp source into a procedure.
	p, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		logger.Log.Error("evaluate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{NodeID: int(procedure.NoNode), Message: err.Error()})
		return result
	}

	// Step 2: Convert eval errors to the result format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				NodeID:  int(procedure.NoNode),
				Message: e.Message,
			})
		}
		return result
	}

	return a.preview(p, result)
}

// EvaluateProcedure previews an already built procedure, such as one
// loaded from a saved document.
func (a *App) EvaluateProcedure(p *procedure.Procedure) EvalResult {
	return a.preview(p, newResult())
}

// preview validates p and renders it.
func (a *App) preview(p *procedure.Procedure, result EvalResult) EvalResult {
	snap := p.Snapshot()
	result.Procedure = p
	result.Nodes = len(snap.NodeIDs())
	result.Links = len(snap.Links())

	// Step 3: Validate. Procedures built through AddLink can only report
	// feedback loops as errors, and those are fine when feedback is allowed.
	for _, v := range procedure.Validate(snap) {
		d := EvalErrorData{NodeID: int(v.NodeID), Message: v.Message}
		if v.Severity == procedure.SeverityError && !a.cfg.Eval.AllowFeedback {
			result.Errors = append(result.Errors, d)
		} else {
			result.Warnings = append(result.Warnings, d)
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	// Step 4: Sample the outputs.
	rc := a.cfg.Render
	img, err := render.Render(a.ctx, snap, render.Options{
		Width:   rc.Width,
		Height:  rc.Height,
		Workers: rc.WorkerCount(),
		Blur:    rc.Blur,
		Eval: procedure.Options{
			MaxDepth:   a.cfg.Eval.MaxDepth,
			ErrorValue: a.cfg.Eval.ErrorValue,
			Memoize:    a.cfg.Eval.Memoize,
		},
	})
	if err != nil {
		logger.Log.Error("render failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{
			NodeID:  int(procedure.NoNode),
			Message: "preview failed: " + err.Error(),
		})
		return result
	}
	result.Image = img
	result.DepthErrors = img.DepthErrors
	if img.DepthErrors > 0 {
		result.Warnings = append(result.Warnings, EvalErrorData{
			NodeID:  int(procedure.NoNode),
			Message: "recursion limit reached; some samples use the error value",
		})
	}

	// Step 5: Summarize each output in procedure order.
	for _, id := range snap.Outputs() {
		out, ok := snap.Node(id).(*procedure.OutputNode)
		if !ok {
			continue
		}
		var samples []float64
		if cs, ok := img.Colors[out.Name()]; ok {
			samples = make([]float64, len(cs))
			for i, c := range cs {
				samples[i] = c.Brightness()
			}
		} else {
			samples = img.Values[out.Name()]
		}
		result.Outputs = append(result.Outputs, summarize(out.Name(), out.Type().String(), samples))
	}

	logger.Log.Info("preview ready",
		zap.Int("nodes", result.Nodes),
		zap.Int("links", result.Links),
		zap.Int("warnings", len(result.Warnings)))
	return result
}

func summarize(name, typ string, samples []float64) OutputStats {
	s := OutputStats{Name: name, Type: typ}
	if len(samples) == 0 {
		return s
	}
	s.Min, s.Max = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, v := range samples {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	s.Mean = sum / float64(len(samples))
	return s
}
