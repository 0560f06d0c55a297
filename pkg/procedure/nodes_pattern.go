package procedure

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/proctex/pkg/kernel"
)

// pointInputs are the X, Y, Z inputs shared by pattern nodes. Unlinked,
// each reads the matching coordinate of the sample point.
func pointInputs() []Port {
	return []Port{
		NumberIn(Left, "X", "(X)"),
		NumberIn(Left, "Y", "(Y)"),
		NumberIn(Left, "Z", "(Z)"),
	}
}

func samplePoint(in Inputs, blur float64) v3.Vec {
	p := in.Point().Pos
	if in.Linked(0) {
		p.X = in.Value(0, blur)
	}
	if in.Linked(1) {
		p.Y = in.Value(1, blur)
	}
	if in.Linked(2) {
		p.Z = in.Value(2, blur)
	}
	return p
}

// NoiseConfig holds the settings of a noise node.
type NoiseConfig struct {
	Scale     float64 // spatial frequency
	Amplitude float64
	Octaves   int
	Alpha     float64 // weight falloff between octaves
	Beta      float64 // frequency step between octaves
	Seed      int64
}

// DefaultNoise is a single-scale three-octave noise.
var DefaultNoise = NoiseConfig{Scale: 1, Amplitude: 1, Octaves: 3, Alpha: 2, Beta: 2, Seed: 1}

// NoiseNode outputs Perlin noise at the sample point, remapped so that
// Amplitude 1 spans roughly [0,1].
type NoiseNode struct {
	Base
	cfg NoiseConfig
	gen *perlin.Perlin
}

// NewNoise returns a noise node. Octaves below 1 are rejected.
func NewNoise(cfg NoiseConfig) (*NoiseNode, error) {
	if cfg.Octaves < 1 {
		return nil, fmt.Errorf("noise: octaves must be >= 1, got %d", cfg.Octaves)
	}
	return &NoiseNode{
		Base: NewBase("Noise", pointInputs(), []Port{NumberOut("Noise")}),
		cfg:  cfg,
		gen:  perlin.NewPerlin(cfg.Alpha, cfg.Beta, int32(cfg.Octaves), cfg.Seed),
	}, nil
}

func (n *NoiseNode) Kind() string { return "noise" }

func (n *NoiseNode) Params() Params {
	return Params{
		"scale":     n.cfg.Scale,
		"amplitude": n.cfg.Amplitude,
		"octaves":   n.cfg.Octaves,
		"alpha":     n.cfg.Alpha,
		"beta":      n.cfg.Beta,
		"seed":      n.cfg.Seed,
	}
}

func (n *NoiseNode) Value(in Inputs, which int, blur float64) float64 {
	p := samplePoint(in, blur)
	s := n.cfg.Scale
	return n.cfg.Amplitude * (0.5 + 0.5*n.gen.Noise3D(p.X*s, p.Y*s, p.Z*s))
}

// DistanceNode outputs the signed distance from the sample point to a
// solid (negative inside, positive outside) and, on its second output, 1
// when the point is inside the solid.
type DistanceNode struct {
	Base
	shape kernel.Shape
	field kernel.Field
}

// NewDistance builds shape with k once; sampling never rebuilds it.
func NewDistance(k kernel.Kernel, shape kernel.Shape) (*DistanceNode, error) {
	f, err := shape.Build(k)
	if err != nil {
		return nil, fmt.Errorf("distance: %w", err)
	}
	return &DistanceNode{
		Base:  NewBase("Distance", pointInputs(), []Port{NumberOut("Distance"), NumberOut("Inside")}),
		shape: shape,
		field: f,
	}, nil
}

func (n *DistanceNode) Kind() string   { return "distance" }
func (n *DistanceNode) Params() Params { return Params{"shape": n.shape} }

func (n *DistanceNode) Value(in Inputs, which int, blur float64) float64 {
	p := samplePoint(in, blur)
	switch which {
	case 0:
		return n.field.Distance(p)
	case 1:
		if kernel.Inside(n.field, p) {
			return 1
		}
	}
	return 0
}
