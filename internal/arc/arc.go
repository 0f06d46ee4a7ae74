// Package arc maintains a contiguous, circularly ordered run of lit pixels
// on a strip and blanks everything outside it.
package arc

import (
	"github.com/yapiolibs/neopixelring/internal/capped"
	"github.com/yapiolibs/neopixelring/internal/strip"
)

// View is the arc [begin, end], inclusive, walking in increasing wrapped order.
// begin == end is the narrowest arc: one pixel.
type View struct {
	surface strip.Surface
	color   strip.Color
	begin   capped.Number
	end     capped.Number
	// toggle picks the boundary moved by the next one-pixel step:
	// false moves begin, true moves end.
	toggle bool
}

// New spans the whole strip.
func New(s strip.Surface) *View {
	v := &View{surface: s}
	v.SetFullWidth()
	return v
}

func (v *View) Begin() int         { return v.begin.Int() }
func (v *View) End() int           { return v.end.Int() }
func (v *View) Color() strip.Color { return v.color }

// Width is the number of lit pixels.
func (v *View) Width() int {
	return v.end.SubNumber(v.begin).Int() + 1
}

// Contains reports whether pixel i is inside the arc.
func (v *View) Contains(i int) bool {
	p := capped.New(v.surface.NumPixels(), i)
	return p.SubNumber(v.begin).Int() <= v.end.SubNumber(v.begin).Int()
}

// Render stores c and repaints.
func (v *View) Render(c strip.Color) error {
	v.color = c
	return v.Redraw()
}

// Redraw writes the arc color from begin through end and Off for the rest,
// touching every pixel once, then shows.
func (v *View) Redraw() error {
	c := v.color
	it := v.begin
	for {
		v.surface.SetPixelColor(it.Int(), c)
		if it.Equal(v.end) {
			c = strip.Off
		}
		it = it.Inc()
		if it.Equal(v.begin) {
			break
		}
	}
	return v.surface.Show()
}

// Rotate moves both boundaries by pixels, keeping width and color.
func (v *View) Rotate(pixels int) {
	v.begin = v.begin.Add(pixels)
	v.end = v.end.Add(pixels)
}

// GrowOrShrinkByOne moves one boundary by a pixel, alternating sides.
// Shrinking a one-pixel arc does nothing. Growing into begin == end would
// mean wrapping over the whole strip, so that step is reverted.
func (v *View) GrowOrShrinkByOne(grow bool) {
	if !grow && v.begin.Equal(v.end) {
		return
	}
	step := -1
	if grow {
		step = 1
	}
	prevBegin, prevEnd := v.begin, v.end

	if !v.toggle {
		v.begin = v.begin.Sub(step)
	} else {
		v.end = v.end.Add(step)
	}
	v.toggle = !v.toggle

	if grow && v.begin.Equal(v.end) {
		v.begin, v.end = prevBegin, prevEnd
	}
}

// IncrementArc applies |pixels| single steps, growing for positive values.
func (v *View) IncrementArc(pixels int) {
	for ; pixels < 0; pixels++ {
		v.GrowOrShrinkByOne(false)
	}
	for ; pixels > 0; pixels-- {
		v.GrowOrShrinkByOne(true)
	}
}

// SetFullWidth covers the entire strip: end sits just before begin.
func (v *View) SetFullWidth() {
	v.begin = capped.New(v.surface.NumPixels(), 0)
	v.end = v.begin.Dec()
}
