// Package selftest paints hardware check patterns directly onto the strip,
// bypassing the scene engine.
package selftest

import (
	"fmt"

	"github.com/yapiolibs/neopixelring/internal/arc"
	"github.com/yapiolibs/neopixelring/internal/strip"
)

type Kind string

const (
	None       Kind = ""
	IndexSweep Kind = "index_sweep"
	RGBTest    Kind = "rgb_channels"
	ArcTest    Kind = "arc_bounds"
)

var Kinds = []Kind{IndexSweep, RGBTest, ArcTest}

// Parse accepts one of Kinds.
func Parse(name string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, nil
		}
	}
	return None, fmt.Errorf("unknown test %q", name)
}

// Plan selects a test. Repeat is the number of passes and Hold the number of
// Step calls each pattern frame stays up; both are at least one.
type Plan struct {
	Kind   Kind
	Repeat int
	Hold   int
}

type Runner struct {
	plan Plan
	tick int
}

func NewRunner(plan Plan) *Runner {
	if plan.Repeat < 1 {
		plan.Repeat = 1
	}
	if plan.Hold < 1 {
		plan.Hold = 1
	}
	return &Runner{plan: plan}
}

func (r *Runner) Kind() Kind { return r.plan.Kind }

var (
	white = strip.RGB(255, 255, 255)
	red   = strip.RGB(255, 0, 0)
	green = strip.RGB(0, 255, 0)
	blue  = strip.RGB(0, 0, 255)
)

// Step paints one frame into s; returns false when complete, leaving s untouched.
func (r *Runner) Step(s strip.Surface, v *arc.View) bool {
	n := s.NumPixels()
	step := r.tick / r.plan.Hold

	switch r.plan.Kind {
	case IndexSweep:
		// one white pixel walks the ring
		if step >= n*r.plan.Repeat {
			return false
		}
		s.Clear()
		s.SetPixelColor(step%n, white)
	case RGBTest:
		if step >= 3*r.plan.Repeat {
			return false
		}
		c := [...]strip.Color{red, green, blue}[step%3]
		for i := 0; i < n; i++ {
			s.SetPixelColor(i, c)
		}
	case ArcTest:
		// blink begin green and end red, inside dimmed white
		if step >= 2*r.plan.Repeat {
			return false
		}
		s.Clear()
		if step%2 == 0 {
			for i := 0; i < n; i++ {
				if v.Contains(i) {
					s.SetPixelColor(i, strip.RGB(32, 32, 32))
				}
			}
			s.SetPixelColor(v.End(), red)
			s.SetPixelColor(v.Begin(), green)
		}
	default:
		return false
	}
	r.tick++
	return true
}
