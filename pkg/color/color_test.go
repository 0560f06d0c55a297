package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBToHSVPrimaries(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		hue     float64 // normalized
		sat     float64
		val     float64
	}{
		{"white", 1, 1, 1, 0, 0, 1},
		{"red", 1, 0, 0, 0, 1, 1},
		{"green", 0, 1, 0, 0.3333333333333333, 1, 1},
		{"blue", 0, 0, 1, 0.6666666666666666, 1, 1},
		{"yellow", 1, 1, 0, 0.16666666666666666, 1, 1},
		{"magenta", 1, 0, 1, 0.8333333333333334, 1, 1},
		{"purple", 0.5, 0, 0.5, 0.8333333333333334, 1, 0.5},
		{"cyan", 0, 1, 1, 0.5, 1, 1},
		{"gray", 0.5, 0.5, 0.5, 0, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.hue, HSVComponent(tt.r, tt.g, tt.b, 0), 1e-12)
			assert.Equal(t, tt.sat, HSVComponent(tt.r, tt.g, tt.b, 1))
			assert.Equal(t, tt.val, HSVComponent(tt.r, tt.g, tt.b, 2))
		})
	}
}

func TestRGBToHSVWhiteTriple(t *testing.T) {
	assert.Equal(t, HSV{Hue: 0, Saturation: 0, Value: 1}, RGBToHSV(1, 1, 1))
}

func TestRGBToHSVAchromatic(t *testing.T) {
	for _, v := range []float64{0, 0.001, 0.25, 0.5, 1, 7.5, -2} {
		hsv := RGBToHSV(v, v, v)
		assert.Equal(t, 0.0, hsv.Hue, "hue for %v", v)
		assert.Equal(t, 0.0, hsv.Saturation, "saturation for %v", v)
		assert.Equal(t, v, hsv.Value)
	}
}

func TestRGBToHSVBlackHasNoSaturation(t *testing.T) {
	hsv := RGBToHSV(0, 0, 0)
	assert.Equal(t, 0.0, hsv.Saturation)
	assert.Equal(t, 0.0, hsv.Value)
}

func TestRGBToHSVNegativeHueWraps(t *testing.T) {
	// red max, blue > green puts the raw hue below zero
	hsv := RGBToHSV(1, 0, 0.5)
	assert.InDelta(t, 330.0, hsv.Hue, 1e-9)
}

func TestHSVComponentOutOfRange(t *testing.T) {
	assert.Equal(t, 0.0, HSVComponent(1, 0.5, 0.25, 3))
	assert.Equal(t, 0.0, HSVComponent(1, 0.5, 0.25, -1))
}

func TestHSVToRGBRoundTrip(t *testing.T) {
	for _, c := range []RGB{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {0.2, 0.4, 0.6}, {0.9, 0.1, 0.5}} {
		hsv := c.HSV()
		back := HSVToRGB(hsv.Hue, hsv.Saturation, hsv.Value)
		assert.InDelta(t, c.R, back.R, 1e-9)
		assert.InDelta(t, c.G, back.G, 1e-9)
		assert.InDelta(t, c.B, back.B, 1e-9)
	}
}

func TestHSVToRGBWrapsHue(t *testing.T) {
	assert.Equal(t, HSVToRGB(30, 1, 1), HSVToRGB(390, 1, 1))
	assert.Equal(t, HSVToRGB(300, 1, 1), HSVToRGB(-60, 1, 1))
}

func TestNamed(t *testing.T) {
	c, ok := Named(" White ")
	assert.True(t, ok)
	assert.Equal(t, White, c)
	_, ok = Named("chartreuse")
	assert.False(t, ok)
}

func TestNRGBAClamps(t *testing.T) {
	n := RGB{2, -1, 0.5}.NRGBA()
	assert.Equal(t, uint8(255), n.R)
	assert.Equal(t, uint8(0), n.G)
	assert.Equal(t, uint8(128), n.B)
	assert.Equal(t, uint8(255), n.A)
}
