// Package color provides the RGB and HSV color math used by procedural
// texture nodes.
package color

import (
	"image/color"
	"math"
	"strings"
)

// RGB is an additive color. Channels are conventionally in [0,1] but are
// never clamped implicitly.
type RGB struct {
	R, G, B float64
}

// HSV is a hue/saturation/value triple. Hue is in degrees, [0, 360).
type HSV struct {
	Hue        float64
	Saturation float64
	Value      float64
}

var (
	White = RGB{1, 1, 1}
	Black = RGB{0, 0, 0}
)

// Named resolves a color name as it appears in port default hints
// ("white", "Black"). The second result is false for unknown names.
func Named(name string) (RGB, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "white":
		return White, true
	case "black":
		return Black, true
	case "red":
		return RGB{1, 0, 0}, true
	case "green":
		return RGB{0, 1, 0}, true
	case "blue":
		return RGB{0, 0, 1}, true
	}
	return RGB{}, false
}

// RGBToHSV converts an RGB triple to HSV. Achromatic inputs (all channels
// equal) yield hue 0, and pure black yields saturation 0.
func RGBToHSV(red, green, blue float64) HSV {
	lo := math.Min(red, math.Min(green, blue))
	hi := math.Max(red, math.Max(green, blue))
	delta := hi - lo

	var hue float64
	switch {
	case delta == 0:
		hue = 0
	case red == hi:
		hue = 60 * (green - blue) / delta
	case green == hi:
		hue = 60*(blue-red)/delta + 120
	default:
		hue = 60*(red-green)/delta + 240
	}
	if hue < 0 {
		hue += 360
	}

	saturation := 0.0
	if hi != 0 {
		saturation = delta / hi
	}
	return HSV{Hue: hue, Saturation: saturation, Value: hi}
}

// HSVComponent converts an RGB triple and returns one component:
// 0 is hue normalized to [0,1), 1 is saturation, 2 is value. Any other
// index returns 0.
func HSVComponent(red, green, blue float64, index int) float64 {
	hsv := RGBToHSV(red, green, blue)
	switch index {
	case 0:
		return hsv.Hue / 360
	case 1:
		return hsv.Saturation
	case 2:
		return hsv.Value
	default:
		return 0
	}
}

// HSVToRGB converts HSV to RGB. Hue is in degrees and wraps; saturation is
// clamped to [0,1].
func HSVToRGB(hue, saturation, value float64) RGB {
	saturation = clamp01(saturation)
	if saturation == 0 {
		return RGB{value, value, value}
	}
	hue = math.Mod(hue, 360)
	if hue < 0 {
		hue += 360
	}
	h := hue / 60
	sector := math.Floor(h)
	f := h - sector
	p := value * (1 - saturation)
	q := value * (1 - saturation*f)
	t := value * (1 - saturation*(1-f))
	switch int(sector) {
	case 0:
		return RGB{value, t, p}
	case 1:
		return RGB{q, value, p}
	case 2:
		return RGB{p, value, t}
	case 3:
		return RGB{p, q, value}
	case 4:
		return RGB{t, p, value}
	default:
		return RGB{value, p, q}
	}
}

// HSV returns the HSV form of c.
func (c RGB) HSV() HSV {
	return RGBToHSV(c.R, c.G, c.B)
}

// Add returns the channel-wise sum.
func (c RGB) Add(o RGB) RGB {
	return RGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Sub returns the channel-wise difference.
func (c RGB) Sub(o RGB) RGB {
	return RGB{c.R - o.R, c.G - o.G, c.B - o.B}
}

// Mul returns the channel-wise product.
func (c RGB) Mul(o RGB) RGB {
	return RGB{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Scale multiplies every channel by s.
func (c RGB) Scale(s float64) RGB {
	return RGB{c.R * s, c.G * s, c.B * s}
}

// Lerp blends from c (t=0) to o (t=1).
func (c RGB) Lerp(o RGB, t float64) RGB {
	return RGB{
		c.R + (o.R-c.R)*t,
		c.G + (o.G-c.G)*t,
		c.B + (o.B-c.B)*t,
	}
}

// Equal reports exact channel equality.
func (c RGB) Equal(o RGB) bool {
	return c.R == o.R && c.G == o.G && c.B == o.B
}

// Brightness is the largest channel.
func (c RGB) Brightness() float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

// Clamp limits every channel to [0,1].
func (c RGB) Clamp() RGB {
	return RGB{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// NRGBA converts to an 8-bit opaque color, clamping out-of-range channels.
func (c RGB) NRGBA() color.NRGBA {
	cl := c.Clamp()
	return color.NRGBA{
		R: uint8(math.Round(cl.R * 255)),
		G: uint8(math.Round(cl.G * 255)),
		B: uint8(math.Round(cl.B * 255)),
		A: 255,
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
