// Package brightness scales colors by a percentage level with an independent
// on/off override. Turning off keeps the stored level.
package brightness

import "github.com/yapiolibs/neopixelring/internal/strip"

const (
	MinLevel = 5
	MaxLevel = 100
	// MaxStep bounds a single Increment gesture.
	MaxStep = 20
)

type Controller struct {
	level int
	on    bool
}

func New() *Controller {
	return &Controller{level: MaxLevel, on: true}
}

func (c *Controller) Level() int { return c.level }
func (c *Controller) IsOn() bool { return c.on }
func (c *Controller) TurnOn()    { c.on = true }
func (c *Controller) TurnOff()   { c.on = false }
func (c *Controller) SetMax()    { c.level = MaxLevel }

// Toggle flips the override and reports whether the strip is now on.
func (c *Controller) Toggle() bool {
	c.on = !c.on
	return c.on
}

// Increment clamps delta to ±MaxStep, then the level to [MinLevel, MaxLevel].
func (c *Controller) Increment(delta int) int {
	c.level = clamp(c.level+clamp(delta, -MaxStep, MaxStep), MinLevel, MaxLevel)
	return c.level
}

// AdjustChannel scales v by the level, rounding down; zero while off.
func (c *Controller) AdjustChannel(v uint8) uint8 {
	override := 0
	if c.on {
		override = 1
	}
	return uint8(clamp(override*c.level*int(v)/100, 0, 255))
}

func (c *Controller) AdjustColor(col strip.Color) strip.Color {
	r, g, b := col.Channels()
	return strip.RGB(c.AdjustChannel(r), c.AdjustChannel(g), c.AdjustChannel(b))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
