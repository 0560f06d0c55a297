package engine

import (
	"bytes"
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/proctex/pkg/color"
	"github.com/chazu/proctex/pkg/kernel/sdfx"
	"github.com/chazu/proctex/pkg/procedure"
)

// evalOK evaluates source and fails the test on any error.
func evalOK(t *testing.T, source string) *procedure.Procedure {
	t.Helper()
	p, evalErrs, err := newTestEngine().Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, p)
	return p
}

// evalFails evaluates source and expects a non-fatal script error.
func evalFails(t *testing.T, source string) []EvalError {
	t.Helper()
	p, evalErrs, err := newTestEngine().Evaluate(source)
	require.NoError(t, err)
	assert.Nil(t, p)
	require.NotEmpty(t, evalErrs)
	return evalErrs
}

func sampleAt(p *procedure.Procedure, pt procedure.PointInfo) *procedure.Evaluator {
	e := p.Snapshot().NewEvaluator(procedure.Options{})
	e.Init(pt)
	return e
}

// ---------------------------------------------------------------------------
// Node construction
// ---------------------------------------------------------------------------

func TestPositionalInputs(t *testing.T) {
	p := evalOK(t, `(output "Diffuse" (rgb 1 0.5 0))`)
	assert.Equal(t, outputCount+4, p.NodeCount(), "rgb plus three implicit numbers")
	assert.Len(t, p.Links(), 4)

	e := sampleAt(p, procedure.PointInfo{})
	assert.Equal(t, color.RGB{R: 1, G: 0.5, B: 0}, e.OutputColor(procedure.OutDiffuse, 0))
}

func TestKeywordInputs(t *testing.T) {
	p := evalOK(t, `(output "Diffuse" (rgb :green 0.25))`)
	e := sampleAt(p, procedure.PointInfo{})
	assert.Equal(t, color.RGB{R: 1, G: 0.25, B: 1}, e.OutputColor(procedure.OutDiffuse, 0),
		"unlinked inputs keep their defaults")
}

func TestKebabCaseBuiltins(t *testing.T) {
	p := evalOK(t, `
(output "Cloudiness" (number-equality :value-1 0.5 :value-2 0.5))
(output "Roughness" (port (rgb-to-hsv 1 0 0) :saturation))`)
	e := sampleAt(p, procedure.PointInfo{})
	assert.Equal(t, 1.0, e.OutputValue(procedure.OutCloudiness, 0))
	assert.Equal(t, 1.0, e.OutputValue(procedure.OutRoughness, 0))
}

func TestVariableReference(t *testing.T) {
	p := evalOK(t, `
(def c (coordinates))
(def y (port c :y))
(output "BumpHeight" (product y 2))
(output "Displacement" (port c 0))`)
	e := sampleAt(p, procedure.PointInfo{Pos: v3.Vec{X: 0.3, Y: 0.7}})
	assert.InDelta(t, 1.4, e.OutputValue(procedure.OutBumpHeight, 0), 1e-12)
	assert.InDelta(t, 0.3, e.OutputValue(procedure.OutDisplacement, 0), 1e-12)
}

func TestColorLiterals(t *testing.T) {
	p := evalOK(t, `
(output "Diffuse" (blend "red" "blue" 0.5))
(output "Specular" (color 0.1 0.2 0.3))
(output "Transparent" (color "black"))
(output "Emissive" (color-scale 0.25 2))`)
	e := sampleAt(p, procedure.PointInfo{})
	assert.Equal(t, color.RGB{R: 0.5, G: 0, B: 0.5}, e.OutputColor(procedure.OutDiffuse, 0))
	assert.Equal(t, color.RGB{R: 0.1, G: 0.2, B: 0.3}, e.OutputColor(procedure.OutSpecular, 0))
	assert.Equal(t, color.Black, e.OutputColor(procedure.OutTransparent, 0))
	assert.Equal(t, color.RGB{R: 0.5, G: 0.5, B: 0.5}, e.OutputColor(procedure.OutEmissive, 0),
		"a number feeding a color input is a gray")
}

func TestNumberAndParameter(t *testing.T) {
	p := evalOK(t, `
(output "Shininess" (number 3))
(output "Specularity" (parameter 0 :default 0.25))
(output "Transparency" (parameter 1))`)

	e := sampleAt(p, procedure.PointInfo{Params: []float64{0.75}})
	assert.Equal(t, 3.0, e.OutputValue(procedure.OutShininess, 0))
	assert.Equal(t, 0.75, e.OutputValue(procedure.OutSpecularity, 0))
	assert.Equal(t, 0.0, e.OutputValue(procedure.OutTransparency, 0))

	e = sampleAt(p, procedure.PointInfo{})
	assert.Equal(t, 0.25, e.OutputValue(procedure.OutSpecularity, 0))
}

func TestNoiseParams(t *testing.T) {
	p := evalOK(t, `(output "BumpHeight" (noise :octaves 2 :seed 4 :scale 3 :z 0.5))`)
	var noise procedure.Node
	for _, id := range p.NodeIDs() {
		if n := p.Node(id); n.Kind() == "noise" {
			noise = n
		}
	}
	require.NotNil(t, noise)
	params := noise.Params()
	assert.EqualValues(t, 2, params["octaves"])
	assert.EqualValues(t, 4, params["seed"])
	assert.EqualValues(t, 3, params["scale"])

	v := sampleAt(p, procedure.PointInfo{}).OutputValue(procedure.OutBumpHeight, 0)
	assert.False(t, math.IsNaN(v))
}

func TestDifferenceDispatch(t *testing.T) {
	p := evalOK(t, `
(output "BumpHeight" (difference 3 1))
(output "Displacement" (distance (difference (box 2 2 2) (sphere 0.5))))
(output "Roughness" (distance (translate (sphere 1) 0 0 2)))
(output "Shininess" (distance (union (sphere 1) (cylinder 1 0.5)) :x 5))`)
	e := sampleAt(p, procedure.PointInfo{})
	assert.Equal(t, 2.0, e.OutputValue(procedure.OutBumpHeight, 0))
	assert.Greater(t, e.OutputValue(procedure.OutDisplacement, 0), 0.0, "origin lies in the removed sphere")
	assert.InDelta(t, 1, e.OutputValue(procedure.OutRoughness, 0), 1e-9)
	assert.InDelta(t, 4, e.OutputValue(procedure.OutShininess, 0), 1e-9)
}

func TestInterpolationAndColorChoice(t *testing.T) {
	p := evalOK(t, `
(output "Roughness" (interp 2 6 0.25))
(output "Cloudiness" (port (distance (sphere 1)) :inside))
(output "Shininess" (blur :input (coordinates)))
(output "Diffuse" (color-darken "red" (color 0.5 0.5 0.5)))
(output "Specular" (color-lighten "red" (color 0.5 0.5 0.5)))
(output "Emissive" (color-difference "white" "red"))`)
	e := sampleAt(p, procedure.PointInfo{Pos: v3.Vec{X: 0.25}})
	assert.InDelta(t, 3, e.OutputValue(procedure.OutRoughness, 0), 1e-12)
	assert.Equal(t, 1.0, e.OutputValue(procedure.OutCloudiness, 0))
	assert.InDelta(t, 0.25, e.OutputValue(procedure.OutShininess, 0), 1e-12)
	assert.Equal(t, color.RGB{R: 0.5, G: 0.5, B: 0.5}, e.OutputColor(procedure.OutDiffuse, 0))
	assert.Equal(t, color.RGB{R: 1}, e.OutputColor(procedure.OutSpecular, 0))
	assert.Equal(t, color.RGB{G: 1, B: 1}, e.OutputColor(procedure.OutEmissive, 0))
}

func TestEvaluateDeterministic(t *testing.T) {
	src := `(output "Diffuse" (hsv :hue (noise :x 0.1) :saturation 0.5 :value 0.9))`
	var first []byte
	for i := 0; i < 5; i++ {
		var buf bytes.Buffer
		require.NoError(t, procedure.Encode(&buf, evalOK(t, src)))
		if i == 0 {
			first = buf.Bytes()
			continue
		}
		assert.Equal(t, string(first), buf.String(), "iteration %d", i)
	}
}

// ---------------------------------------------------------------------------
// Script errors
// ---------------------------------------------------------------------------

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"unknown output", `(output "Albedo" 1)`},
		{"type mismatch", `(output "Diffuse" (number 1))`},
		{"too many inputs", `(abs 1 2)`},
		{"unknown keyword", `(noise :octaves 2 :bogus 1)`},
		{"bad param", `(noise :octaves 0)`},
		{"unknown color", `(blend "mauve")`},
		{"bad port", `(port (coordinates) :w)`},
		{"port out of range", `(port (coordinates) 4)`},
		{"distance without shape", `(distance 1)`},
		{"bad shape", `(distance (translate (sphere 1) 1))`},
		{"number arity", `(number)`},
		{"color arity", `(color 1 2)`},
		{"parameter index", `(parameter)`},
		{"fractional parameter index", `(parameter 0.7)`},
		{"negative parameter index", `(parameter -1)`},
		{"fractional port index", `(port (coordinates) 0.5)`},
		{"unconvertible param", `(noise :scale (list 1))`},
		{"dangling keyword", `(noise :seed)`},
		{"repeated keyword", `(noise :seed 1 :seed 2)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.source)
		})
	}
}

func TestBuiltinErrorMessages(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`(noise :octaves 2 :seed)`, "keyword :seed has no value"},
		{`(noise :scale (list 1))`, "noise: :scale"},
		{`(parameter 0.7)`, "expected index"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			errs := evalFails(t, tt.source)
			assert.Contains(t, errs[0].Message, tt.want)
		})
	}
}

func TestFeedbackOption(t *testing.T) {
	eng := NewEngine(procedure.DefaultRegistry(sdfx.New()), Options{AllowFeedback: true})
	p, evalErrs, err := eng.Evaluate(`(output "BumpHeight" (abs 1))`)
	require.NoError(t, err)
	require.Empty(t, evalErrs)

	// Scripts only link into fresh nodes, so feedback has to be added later.
	var abs procedure.NodeID = procedure.NoNode
	for _, id := range p.NodeIDs() {
		if p.Node(id).Kind() == "abs" {
			abs = id
		}
	}
	require.NotEqual(t, procedure.NoNode, abs)
	assert.NoError(t, p.AddLink(procedure.Link{From: abs, To: abs}))
}
