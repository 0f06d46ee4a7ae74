package scene

import (
	"time"

	"github.com/yapiolibs/neopixelring/internal/arc"
	"github.com/yapiolibs/neopixelring/internal/brightness"
	"github.com/yapiolibs/neopixelring/internal/clock"
	"github.com/yapiolibs/neopixelring/internal/strip"
)

const (
	ChaseWait        = 50 * time.Millisecond
	RainbowWait      = 10 * time.Millisecond
	ChaseRainbowWait = 50 * time.Millisecond

	chaseStride = 3

	rainbowHueStep = 256
	rainbowHueMax  = 3 * strip.HueRange
	// one turn of the wheel over 90 frames
	chaseRainbowHueStep = strip.HueRange / 90
)

// chase is the stepping state of a theater chase: step is the lit pixel
// offset in [0, chaseStride), cycle counts completed strides.
type chase struct {
	step     int
	cycle    int
	cycleMax int
}

func (c *chase) advance() {
	c.step++
	if c.step >= chaseStride {
		c.cycle++
		c.step = 0
	}
	if c.cycle >= c.cycleMax {
		c.cycle = 0
	}
}

// Phases is a snapshot of the animation counters.
type Phases struct {
	ChaseStep         int    `json:"chase_step"`
	ChaseCycle        int    `json:"chase_cycle"`
	RainbowHue        uint32 `json:"rainbow_hue"`
	ChaseRainbowStep  int    `json:"chase_rainbow_step"`
	ChaseRainbowCycle int    `json:"chase_rainbow_cycle"`
	ChaseRainbowHue   uint16 `json:"chase_rainbow_hue"`
}

// Engine resolves the requested scene and draws one animation step per call.
// Counters live for the engine's lifetime; switching scenes does not reset them.
type Engine struct {
	surface strip.Surface
	arc     *arc.View
	light   *brightness.Controller
	timer   clock.Timer

	last Mode

	chase           chase
	rainbowHue      uint32
	chaseRainbow    chase
	chaseRainbowHue uint16
}

func NewEngine(s strip.Surface, v *arc.View, light *brightness.Controller, timer clock.Timer) *Engine {
	return &Engine{
		surface:      s,
		arc:          v,
		light:        light,
		timer:        timer,
		last:         Rainbow,
		chase:        chase{cycleMax: 10},
		chaseRainbow: chase{cycleMax: 30},
	}
}

// Scene is the mode that Process(None) redraws.
func (e *Engine) Scene() Mode { return e.last }

// SetScene stores m without drawing. None is ignored.
func (e *Engine) SetScene(m Mode) {
	if m != None {
		e.last = m
	}
}

// NextScene advances the stored mode through Visible.
func (e *Engine) NextScene() { e.last = Next(e.last) }

func (e *Engine) Phases() Phases {
	return Phases{
		ChaseStep:         e.chase.step,
		ChaseCycle:        e.chase.cycle,
		RainbowHue:        e.rainbowHue,
		ChaseRainbowStep:  e.chaseRainbow.step,
		ChaseRainbowCycle: e.chaseRainbow.cycle,
		ChaseRainbowHue:   e.chaseRainbowHue,
	}
}

// Process draws the requested mode, or the stored one for None.
// Gated modes return without side effects until their wait has elapsed.
func (e *Engine) Process(requested Mode) error {
	e.SetScene(requested)

	switch e.last {
	case Off:
		return e.wipe(strip.Off)
	case White:
		return e.arc.Render(e.light.AdjustColor(strip.RGB(255, 255, 255)))
	case Red:
		return e.arc.Render(e.light.AdjustColor(strip.RGB(255, 0, 0)))
	case Green:
		return e.arc.Render(e.light.AdjustColor(strip.RGB(0, 255, 0)))
	case Blue:
		return e.arc.Render(e.light.AdjustColor(strip.RGB(0, 0, 255)))
	case TheaterChaseWhite:
		return e.theaterChase(strip.RGB(127, 127, 127))
	case TheaterChaseRed:
		return e.theaterChase(strip.RGB(127, 0, 0))
	case TheaterChaseBlue:
		return e.theaterChase(strip.RGB(0, 0, 127))
	case Rainbow:
		return e.rainbow()
	case TheaterChaseRainbow:
		return e.theaterChaseRainbow()
	}
	return nil
}

// due checks the shared time gate and restarts it when it fires.
func (e *Engine) due(wait time.Duration) bool {
	if e.timer.Elapsed() < wait {
		return false
	}
	e.timer.Reset()
	return true
}

func (e *Engine) wipe(c strip.Color) error {
	for i := 0; i < e.surface.NumPixels(); i++ {
		e.surface.SetPixelColor(i, c)
	}
	return e.surface.Show()
}

func (e *Engine) theaterChase(base strip.Color) error {
	if !e.due(ChaseWait) {
		return nil
	}
	c := e.light.AdjustColor(base)
	e.surface.Clear()
	for i := e.chase.step; i < e.surface.NumPixels(); i += chaseStride {
		e.surface.SetPixelColor(i, c)
	}
	err := e.surface.Show()
	e.chase.advance()
	return err
}

// hueAt spreads one turn of the wheel across the strip.
func (e *Engine) hueAt(first uint32, i int) uint16 {
	return uint16(first + uint32(i*strip.HueRange/e.surface.NumPixels()))
}

func (e *Engine) wheel(hue uint16) strip.Color {
	return e.light.AdjustColor(strip.Gamma(strip.HSV(hue)))
}

func (e *Engine) rainbow() error {
	if !e.due(RainbowWait) {
		return nil
	}
	for i := 0; i < e.surface.NumPixels(); i++ {
		e.surface.SetPixelColor(i, e.wheel(e.hueAt(e.rainbowHue, i)))
	}
	err := e.surface.Show()
	e.rainbowHue += rainbowHueStep
	if e.rainbowHue > rainbowHueMax {
		e.rainbowHue = 0
	}
	return err
}

func (e *Engine) theaterChaseRainbow() error {
	if !e.due(ChaseRainbowWait) {
		return nil
	}
	e.surface.Clear()
	for i := e.chaseRainbow.step; i < e.surface.NumPixels(); i += chaseStride {
		e.surface.SetPixelColor(i, e.wheel(e.hueAt(uint32(e.chaseRainbowHue), i)))
	}
	err := e.surface.Show()
	e.chaseRainbowHue += chaseRainbowHueStep
	e.chaseRainbow.advance()
	return err
}
