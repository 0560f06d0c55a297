package procedure

import (
	"errors"
	"fmt"

	"github.com/chazu/proctex/pkg/color"
	"github.com/chazu/proctex/pkg/kernel"
)

// DefaultRegistry registers every built-in node kind. Solids used by
// distance nodes are built with k.
func DefaultRegistry(k kernel.Kernel) *Registry {
	r := NewRegistry()

	r.Register("number", func(p Params) (Node, error) {
		return NewNumber(p.Float("value", 0)), nil
	})
	r.Register("color", func(p Params) (Node, error) {
		return NewColor(p.Color("color", color.Black)), nil
	})
	r.Register("coordinates", func(Params) (Node, error) { return NewCoordinates(), nil })
	r.Register("parameter", func(p Params) (Node, error) {
		idx := p.Int("index", 0)
		if idx < 0 {
			return nil, fmt.Errorf("negative parameter index %d", idx)
		}
		return NewParameter(idx, p.Float("default", 0)), nil
	})

	r.Register("rgb-to-hsv", func(Params) (Node, error) { return NewRGBToHSV(), nil })
	r.Register("hsv", func(Params) (Node, error) { return NewHSV(), nil })
	r.Register("rgb", func(Params) (Node, error) { return NewRGB(), nil })
	r.Register("color-equality", func(Params) (Node, error) { return NewColorEquality(), nil })
	r.Register("color-sum", func(Params) (Node, error) { return NewColorSum(), nil })
	r.Register("color-product", func(Params) (Node, error) { return NewColorProduct(), nil })
	r.Register("color-scale", func(Params) (Node, error) { return NewColorScale(), nil })
	r.Register("blend", func(Params) (Node, error) { return NewBlend(), nil })
	r.Register("color-difference", func(Params) (Node, error) { return NewColorDifference(), nil })
	r.Register("color-darken", func(Params) (Node, error) { return NewColorDarken(), nil })
	r.Register("color-lighten", func(Params) (Node, error) { return NewColorLighten(), nil })

	r.Register("number-equality", func(Params) (Node, error) { return NewNumberEquality(), nil })
	r.Register("interp", func(Params) (Node, error) { return NewInterp(), nil })
	r.Register("blur", func(Params) (Node, error) { return NewBlur(), nil })
	for kind := range binaryOps {
		r.Register(kind, func(Params) (Node, error) { return NewBinary(kind) })
	}
	for kind := range unaryOps {
		r.Register(kind, func(Params) (Node, error) { return NewUnary(kind) })
	}

	r.Register("noise", func(p Params) (Node, error) {
		d := DefaultNoise
		return NewNoise(NoiseConfig{
			Scale:     p.Float("scale", d.Scale),
			Amplitude: p.Float("amplitude", d.Amplitude),
			Octaves:   p.Int("octaves", d.Octaves),
			Alpha:     p.Float("alpha", d.Alpha),
			Beta:      p.Float("beta", d.Beta),
			Seed:      int64(p.Float("seed", float64(d.Seed))),
		})
	})
	r.Register("distance", func(p Params) (Node, error) {
		var s kernel.Shape
		if v, ok := p["shape"].(kernel.Shape); ok {
			s = v
		} else if err := p.Decode("shape", &s); err != nil {
			return nil, err
		}
		return NewDistance(k, s)
	})

	r.Register("output", func(p Params) (Node, error) {
		name := p.String("name", "")
		if name == "" {
			return nil, errors.New("output without a name")
		}
		switch p.String("type", "number") {
		case "number":
			return NewNumberOutput(name, p.Float("default", 0)), nil
		case "color":
			return NewColorOutput(name, p.Color("default", color.Black)), nil
		default:
			return nil, fmt.Errorf("output %q: unknown type %q", name, p.String("type", ""))
		}
	})
	return r
}
