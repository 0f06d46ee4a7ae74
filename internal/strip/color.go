package strip

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a packed 0x00RRGGBB value.
type Color uint32

// Off is the unlit pixel.
const Off Color = 0

const (
	redOffset   = 16
	greenOffset = 8
	blueOffset  = 0
)

// RGB packs three channels.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<redOffset | uint32(g)<<greenOffset | uint32(b)<<blueOffset)
}

func (c Color) R() uint8 { return uint8(c >> redOffset) }
func (c Color) G() uint8 { return uint8(c >> greenOffset) }
func (c Color) B() uint8 { return uint8(c >> blueOffset) }

// Channels unpacks the color.
func (c Color) Channels() (r, g, b uint8) {
	return c.R(), c.G(), c.B()
}

// HueRange is one full turn of the color wheel in HSV hue units.
const HueRange = 65536

// HSV converts a hue in [0, 65535] at full saturation and value.
func HSV(hue uint16) Color {
	deg := float64(hue) * 360 / HueRange
	return RGB(colorful.Hsv(deg, 1, 1).RGB255())
}

// GammaExp matches the curve commonly used for WS2812 perceptual correction.
const GammaExp = 2.6

var gammaTable [256]uint8

func init() {
	for i := range gammaTable {
		gammaTable[i] = uint8(math.Pow(float64(i)/255, GammaExp)*255 + 0.5)
	}
}

// Gamma applies the per-channel correction table.
func Gamma(c Color) Color {
	return RGB(gammaTable[c.R()], gammaTable[c.G()], gammaTable[c.B()])
}
