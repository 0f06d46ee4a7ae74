// Package ring is the control object for a single addressable LED ring:
// it owns the strip buffer, the arc view, the brightness controller and the
// scene engine, and serializes every public operation.
package ring

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yapiolibs/neopixelring/internal/arc"
	"github.com/yapiolibs/neopixelring/internal/brightness"
	"github.com/yapiolibs/neopixelring/internal/clock"
	"github.com/yapiolibs/neopixelring/internal/led"
	"github.com/yapiolibs/neopixelring/internal/scene"
	"github.com/yapiolibs/neopixelring/internal/strip"
)

type Event string

const (
	EventSetup      Event = "SETUP"
	EventScene      Event = "SCENE"
	EventBrightness Event = "BRIGHTNESS"
	EventPower      Event = "POWER"
	EventWidth      Event = "WIDTH"
	EventShift      Event = "SHIFT"
)

// Publisher receives a state snapshot after every control change.
// Publish is called without the ring lock held.
type Publisher interface {
	Publish(event Event, s State)
}

type Ring struct {
	mu sync.Mutex

	strip  *strip.Strip
	arc    *arc.View
	light  *brightness.Controller
	engine *scene.Engine
	timer  clock.Timer

	log        zerolog.Logger
	publishers []Publisher
}

// New builds a ring of pixels driven by drv. A nil driver renders into the
// buffer only.
func New(drv led.Driver, pixels int, opts ...Opt) *Ring {
	r := &Ring{
		log:   log.With().Str("component", "ring").Logger(),
		timer: clock.NewStopwatch(),
		light: brightness.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.strip = strip.New(pixels, drv)
	r.arc = arc.New(r.strip)
	r.engine = scene.NewEngine(r.strip, r.arc, r.light, r.timer)
	return r
}

// Setup blanks the strip and pushes the empty frame.
func (r *Ring) Setup() error {
	r.mu.Lock()
	r.strip.Clear()
	err := r.strip.Show()
	st := r.stateLocked()
	r.mu.Unlock()

	r.log.Info().Int("pixels", st.Pixels).Msg("setup")
	if err != nil {
		return fmt.Errorf("ring setup: %w", err)
	}
	r.publish(EventSetup, st)
	return nil
}

// Process draws one tick of mode; scene.None repeats the last scene.
func (r *Ring) Process(mode scene.Mode) error {
	r.mu.Lock()
	before := r.engine.Scene()
	err := r.engine.Process(mode)
	after := r.engine.Scene()
	st := r.stateLocked()
	r.mu.Unlock()

	if before != after {
		r.log.Info().Stringer("scene", after).Msg("scene")
		r.publish(EventScene, st)
	}
	if err != nil {
		return fmt.Errorf("process %s: %w", after, err)
	}
	return nil
}

// IncrementBrightness moves the level by at most brightness.MaxStep.
func (r *Ring) IncrementBrightness(delta int) int {
	r.mu.Lock()
	lvl := r.light.Increment(delta)
	st := r.stateLocked()
	r.mu.Unlock()

	r.log.Debug().Int("delta", delta).Int("level", lvl).Msg("brightness")
	r.publish(EventBrightness, st)
	return lvl
}

func (r *Ring) SetMaxBrightness() {
	r.mu.Lock()
	r.light.SetMax()
	st := r.stateLocked()
	r.mu.Unlock()

	r.log.Debug().Int("level", st.Brightness).Msg("brightness max")
	r.publish(EventBrightness, st)
}

// ToggleOnOff flips the override and reports whether the ring is now on.
func (r *Ring) ToggleOnOff() bool {
	r.mu.Lock()
	on := r.light.Toggle()
	st := r.stateLocked()
	r.mu.Unlock()

	r.log.Info().Bool("on", on).Msg("toggle")
	r.publish(EventPower, st)
	return on
}

func (r *Ring) TurnOff() {
	r.setOn(false)
}

func (r *Ring) TurnOn() {
	r.setOn(true)
}

func (r *Ring) setOn(on bool) {
	r.mu.Lock()
	if on {
		r.light.TurnOn()
	} else {
		r.light.TurnOff()
	}
	st := r.stateLocked()
	r.mu.Unlock()

	r.log.Info().Bool("on", on).Msg("power")
	r.publish(EventPower, st)
}

// IncrementWidth grows (positive) or shrinks the arc, at most one full ring
// per call.
func (r *Ring) IncrementWidth(pixels int) {
	r.mu.Lock()
	n := r.strip.NumPixels()
	if pixels > n {
		pixels = n
	} else if pixels < -n {
		pixels = -n
	}
	r.arc.IncrementArc(pixels)
	st := r.stateLocked()
	r.mu.Unlock()

	r.log.Debug().Int("pixels", pixels).Int("width", st.Width).Msg("width")
	r.publish(EventWidth, st)
}

func (r *Ring) SetFullWidth() {
	r.mu.Lock()
	r.arc.SetFullWidth()
	st := r.stateLocked()
	r.mu.Unlock()

	r.publish(EventWidth, st)
}

// Shift rotates the arc by pixels.
func (r *Ring) Shift(pixels int) {
	r.mu.Lock()
	r.arc.Rotate(pixels)
	st := r.stateLocked()
	r.mu.Unlock()

	r.log.Debug().Int("pixels", pixels).Int("begin", st.Begin).Msg("shift")
	r.publish(EventShift, st)
}

// NextScene selects the next visible scene; it is drawn on the next Process.
func (r *Ring) NextScene() scene.Mode {
	r.mu.Lock()
	r.engine.NextScene()
	st := r.stateLocked()
	r.mu.Unlock()

	r.log.Info().Stringer("scene", st.Scene).Msg("next scene")
	r.publish(EventScene, st)
	return st.Scene
}

// SetScene stores m for the following Process(scene.None) calls.
func (r *Ring) SetScene(m scene.Mode) {
	r.mu.Lock()
	r.engine.SetScene(m)
	st := r.stateLocked()
	r.mu.Unlock()

	r.publish(EventScene, st)
}

// Pixels copies the current buffer.
func (r *Ring) Pixels() []strip.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strip.Pixels()
}

// Draw runs fn against the strip under the ring lock, then shows it.
// Self-tests use it to paint frames outside the scene engine.
func (r *Ring) Draw(fn func(s strip.Surface, v *arc.View)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.strip, r.arc)
	return r.strip.Show()
}

func (r *Ring) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.strip.Close()
}

func (r *Ring) publish(e Event, st State) {
	for _, p := range r.publishers {
		p.Publish(e, st)
	}
}
