package procedure

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/proctex/pkg/color"
)

// ValueType is the kind of value carried by a port.
type ValueType int

const (
	Number ValueType = iota
	Color
)

func (t ValueType) String() string {
	switch t {
	case Number:
		return "number"
	case Color:
		return "color"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Direction says whether a port consumes or produces values.
type Direction int

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Side is where an editor draws the port on its node.
type Side int

const (
	Top Side = iota
	Bottom
	Left
	Right
)

func (s Side) String() string {
	switch s {
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Port is a typed attachment point on a node. The first label is the
// port name; any remaining labels form the default-value hint shown for
// unlinked inputs, e.g. {"Tolerance", "(1.0E-12D)"}.
type Port struct {
	Type      ValueType
	Direction Direction
	Side      Side
	Labels    []string
}

// NumberIn declares a numeric input port.
func NumberIn(side Side, labels ...string) Port {
	return Port{Type: Number, Direction: Input, Side: side, Labels: labels}
}

// ColorIn declares a color input port.
func ColorIn(side Side, labels ...string) Port {
	return Port{Type: Color, Direction: Input, Side: side, Labels: labels}
}

// NumberOut declares a numeric output port on the right side.
func NumberOut(labels ...string) Port {
	return Port{Type: Number, Direction: Output, Side: Right, Labels: labels}
}

// ColorOut declares a color output port on the right side.
func ColorOut(labels ...string) Port {
	return Port{Type: Color, Direction: Output, Side: Right, Labels: labels}
}

// Name returns the first label, or "" for an unlabeled port.
func (p Port) Name() string {
	if len(p.Labels) == 0 {
		return ""
	}
	return p.Labels[0]
}

// DefaultHint returns the labels after the name, joined by spaces.
func (p Port) DefaultHint() string {
	if len(p.Labels) < 2 {
		return ""
	}
	return strings.Join(p.Labels[1:], " ")
}

// DefaultNumber parses the default hint as a number. Hints may be wrapped
// in parentheses and carry a trailing D or F type suffix. Ports without a
// parsable hint default to 0.
func (p Port) DefaultNumber() float64 {
	s := unwrapHint(p.DefaultHint())
	if s == "" {
		return 0
	}
	if n := len(s); n > 1 && strings.ContainsRune("dDfF", rune(s[n-1])) {
		s = s[:n-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// DefaultColor resolves the default hint as a named color. Ports without a
// recognized hint default to black.
func (p Port) DefaultColor() color.RGB {
	if c, ok := color.Named(unwrapHint(p.DefaultHint())); ok {
		return c
	}
	return color.Black
}

func unwrapHint(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	return strings.TrimSpace(s)
}
