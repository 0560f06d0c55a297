package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/proctex/pkg/color"
	"github.com/chazu/proctex/pkg/kernel"
	"github.com/chazu/proctex/pkg/procedure"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef names one output port of a node in the procedure being built.
type sexpNodeRef struct {
	id   procedure.NodeID
	port int
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.port != 0 {
		return fmt.Sprintf("(noderef %q %d)", n.name, n.port)
	}
	return fmt.Sprintf("(noderef %q)", n.name)
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a solid description consumed by `distance`.
type sexpShape struct {
	shape kernel.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %s)", s.shape.Op)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument conversion helpers
// ---------------------------------------------------------------------------

func toShape(s zygo.Sexp) (kernel.Shape, error) {
	if v, ok := s.(*sexpShape); ok {
		return v.shape, nil
	}
	return kernel.Shape{}, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

func toFloats(args []zygo.Sexp) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := toNumber(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// toParam converts a literal keyword value to a node parameter.
func toParam(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpStr:
		return toName(v)
	case *zygo.SexpBool:
		return v.Val, nil
	case *sexpShape:
		return v.shape, nil
	}
	return nil, fmt.Errorf("unsupported parameter value %T (%s)", s, s.SexpString(nil))
}

// portKey converts a port name to its keyword form: "Value 1" -> "value-1".
func portKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

func findPort(ports []procedure.Port, key string) int {
	for i, p := range ports {
		if portKey(p.Name()) == key {
			return i
		}
	}
	return -1
}

// builtinName is the zygomys name for a registry kind.
func builtinName(kind string) string {
	return strings.ReplaceAll(kind, "-", "_")
}

// ---------------------------------------------------------------------------
// Procedure builder
// ---------------------------------------------------------------------------

// builder populates a procedure as builtins are called.
type builder struct {
	p   *procedure.Procedure
	reg *procedure.Registry
}

// source resolves an argument to the node output that should feed an
// input of type want. Literals become implicit constant nodes.
func (b *builder) source(arg zygo.Sexp, want procedure.ValueType) (procedure.NodeID, int, error) {
	switch v := arg.(type) {
	case *sexpNodeRef:
		return v.id, v.port, nil
	case *zygo.SexpInt, *zygo.SexpFloat:
		f, _ := toNumber(arg)
		if want == procedure.Color {
			return b.p.AddNode(procedure.NewColor(color.RGB{R: f, G: f, B: f})), 0, nil
		}
		return b.p.AddNode(procedure.NewNumber(f)), 0, nil
	case *zygo.SexpStr:
		if want != procedure.Color {
			break
		}
		name, _ := toName(v)
		c, ok := color.Named(name)
		if !ok {
			return 0, 0, fmt.Errorf("unknown color %q", name)
		}
		return b.p.AddNode(procedure.NewColor(c)), 0, nil
	}
	return 0, 0, fmt.Errorf("expected node or %s literal, got %T (%s)", want, arg, arg.SexpString(nil))
}

// link feeds arg into input port of node id.
func (b *builder) link(arg zygo.Sexp, id procedure.NodeID, port int) error {
	in := b.p.Node(id).Inputs()[port]
	from, fromPort, err := b.source(arg, in.Type)
	if err != nil {
		return fmt.Errorf("input %q: %w", in.Name(), err)
	}
	err = b.p.AddLink(procedure.Link{From: from, FromPort: fromPort, To: id, ToPort: port})
	if err != nil {
		return fmt.Errorf("input %q: %w", in.Name(), err)
	}
	return nil
}

// node constructs kind and links its inputs. Positional arguments feed the
// inputs in order; keywords naming an input feed that input and all other
// keywords become parameters.
func (b *builder) node(kind string, params procedure.Params, pa callArgs) (zygo.Sexp, error) {
	if params == nil {
		params = procedure.Params{}
	}
	keys := make([]string, 0, len(pa.named))
	for k := range pa.named {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Literal keyword values are offered as parameters. Conversion failures
	// only matter for keywords that turn out not to name an input.
	bad := make(map[string]error)
	for _, k := range keys {
		v := pa.named[k]
		if _, isRef := v.(*sexpNodeRef); isRef {
			continue
		}
		pv, err := toParam(v)
		if err != nil {
			bad[k] = err
			continue
		}
		params[k] = pv
	}
	n, err := b.reg.New(kind, params)
	if err != nil {
		return zygo.SexpNull, err
	}

	inputs := n.Inputs()
	if len(pa.positional) > len(inputs) {
		return zygo.SexpNull, fmt.Errorf("%s: %d arguments for %d inputs", kind, len(pa.positional), len(inputs))
	}
	known := n.Params()
	for _, k := range keys {
		if findPort(inputs, k) >= 0 {
			continue
		}
		if _, ok := known[k]; !ok {
			return zygo.SexpNull, fmt.Errorf("%s: unknown argument :%s", kind, k)
		}
		if err := bad[k]; err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: :%s: %w", kind, k, err)
		}
	}

	id := b.p.AddNode(n)
	for i, arg := range pa.positional {
		if err := b.link(arg, id, i); err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
		}
	}
	for _, k := range keys {
		if port := findPort(inputs, k); port >= 0 {
			if err := b.link(pa.named[k], id, port); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
			}
		}
	}
	return &sexpNodeRef{id: id, name: n.Name()}, nil
}

// output links src into the named output of the procedure.
func (b *builder) output(name string, src zygo.Sexp) (zygo.Sexp, error) {
	id, ok := b.p.OutputByName(name)
	if !ok {
		return zygo.SexpNull, fmt.Errorf("no output named %q", name)
	}
	if err := b.link(src, id, 0); err != nil {
		return zygo.SexpNull, fmt.Errorf("output %q: %w", name, err)
	}
	return &sexpNodeRef{id: id, name: name}, nil
}

// shape builds a solid from a shape form.
func shapeOf(op string, pa callArgs) (kernel.Shape, error) {
	switch op {
	case "box", "sphere", "cylinder":
		size, err := toFloats(pa.positional)
		if err != nil {
			return kernel.Shape{}, err
		}
		return kernel.Shape{Op: op, Size: size}, nil
	case "union", "difference", "intersection":
		var args []kernel.Shape
		for _, a := range pa.positional {
			s, err := toShape(a)
			if err != nil {
				return kernel.Shape{}, err
			}
			args = append(args, s)
		}
		return kernel.Shape{Op: op, Args: args}, nil
	case "translate":
		if len(pa.positional) != 4 {
			return kernel.Shape{}, errors.New("expected a shape and three offsets")
		}
		s, err := toShape(pa.positional[0])
		if err != nil {
			return kernel.Shape{}, err
		}
		d, err := toFloats(pa.positional[1:])
		if err != nil {
			return kernel.Shape{}, err
		}
		return kernel.Translate(s, d[0], d[1], d[2]), nil
	}
	return kernel.Shape{}, fmt.Errorf("%w: %q", kernel.ErrBadShape, op)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the procedure DSL into a zygomys environment.
// Every registry kind gets a builtin of the same name (kebab-case becomes
// underscore). A few kinds take literal arguments instead of inputs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {
	for _, kind := range b.reg.Kinds() {
		switch kind {
		case "number", "color", "parameter", "distance", "output", "difference":
			continue
		}
		env.AddFunction(builtinName(kind), func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa, err := parseArgs(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", kind, err)
			}
			return b.node(kind, nil, pa)
		})
	}

	// -----------------------------------------------------------------------
	// (number 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("number", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("number requires one value")
		}
		v, err := toNumber(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("number: %w", err)
		}
		return b.node("number", procedure.Params{"value": v}, callArgs{})
	})

	// -----------------------------------------------------------------------
	// (color 1 0.5 0) or (color "white")
	// -----------------------------------------------------------------------
	env.AddFunction("color", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var c color.RGB
		switch len(args) {
		case 1:
			n, err := toName(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("color: %w", err)
			}
			var ok bool
			if c, ok = color.Named(n); !ok {
				return zygo.SexpNull, fmt.Errorf("color: unknown color %q", n)
			}
		case 3:
			v, err := toFloats(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("color: %w", err)
			}
			c = color.RGB{R: v[0], G: v[1], B: v[2]}
		default:
			return zygo.SexpNull, fmt.Errorf("color requires a name or three components")
		}
		return b.node("color", procedure.Params{"color": c}, callArgs{})
	})

	// -----------------------------------------------------------------------
	// (parameter 0 :default 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("parameter", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("parameter: %w", err)
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("parameter requires an index")
		}
		idx, err := toIndex(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("parameter: %w", err)
		}
		pa.positional = nil
		return b.node("parameter", procedure.Params{"index": idx}, pa)
	})

	// -----------------------------------------------------------------------
	// (distance (box 1 1 1) :x ref :y ref :z ref)
	// -----------------------------------------------------------------------
	env.AddFunction("distance", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("distance: %w", err)
		}
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("distance requires a shape")
		}
		s, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("distance: %w", err)
		}
		pa.positional = pa.positional[1:]
		return b.node("distance", procedure.Params{"shape": s}, pa)
	})

	// -----------------------------------------------------------------------
	// (output "Diffuse" ref)
	// -----------------------------------------------------------------------
	env.AddFunction("output", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("output requires a name and a source")
		}
		out, err := toName(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("output: name: %w", err)
		}
		return b.output(out, args[1])
	})

	// -----------------------------------------------------------------------
	// (port ref :saturation) or (port ref 1)
	// -----------------------------------------------------------------------
	env.AddFunction("port", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("port requires a node and a port")
		}
		ref, ok := args[0].(*sexpNodeRef)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("port: expected node reference, got %T (%s)", args[0], args[0].SexpString(nil))
		}
		outs := b.p.Node(ref.id).Outputs()
		idx := -1
		if _, err := toNumber(args[1]); err == nil {
			if idx, err = toIndex(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("port: %w", err)
			}
		} else if key, err := toName(args[1]); err == nil {
			idx = findPort(outs, key)
		}
		if idx < 0 || idx >= len(outs) {
			return zygo.SexpNull, fmt.Errorf("port: %s has no output %s", ref.name, args[1].SexpString(nil))
		}
		return &sexpNodeRef{id: ref.id, port: idx, name: ref.name}, nil
	})

	// -----------------------------------------------------------------------
	// Shapes: (box x y z) (sphere r) (cylinder h r) (union s...)
	// (intersection s...) (translate s dx dy dz)
	// -----------------------------------------------------------------------
	for _, op := range []string{"box", "sphere", "cylinder", "union", "intersection", "translate"} {
		env.AddFunction(op, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa, err := parseArgs(args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			s, err := shapeOf(op, pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", op, err)
			}
			return &sexpShape{shape: s}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (difference a b) is the numeric node, (difference shape shape) the solid.
	// -----------------------------------------------------------------------
	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: %w", err)
		}
		if len(pa.positional) > 0 {
			if _, ok := pa.positional[0].(*sexpShape); ok {
				s, err := shapeOf("difference", pa)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("difference: %w", err)
				}
				return &sexpShape{shape: s}, nil
			}
		}
		return b.node("difference", nil, pa)
	})
}
