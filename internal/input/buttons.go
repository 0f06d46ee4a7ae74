// Package input reads the physical controls of the ring: push buttons on
// GPIO pins and an optional brightness knob behind an ADS1x15 ADC.
package input

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stianeikeland/go-rpio/v4"

	"github.com/yapiolibs/neopixelring/internal/config"
	"github.com/yapiolibs/neopixelring/internal/ring"
	"github.com/yapiolibs/neopixelring/internal/scene"
)

// Controller is the subset of ring.Ring the controls drive.
type Controller interface {
	NextScene() scene.Mode
	ToggleOnOff() bool
	SetMaxBrightness()
	IncrementBrightness(delta int) int
	State() ring.State
}

// Pin reads a button level. rpio.Pin satisfies it.
type Pin interface {
	Read() rpio.State
}

type event string

const (
	EventPress event = "PRESS"
	EventHold  event = "HOLD"
)

// Actions run on a short press (fired on release) and once when the button
// has been down for the hold duration. A held button fires no press.
type Actions struct {
	Press func()
	Hold  func()
}

type button struct {
	name    string
	pin     Pin
	actions Actions

	down     bool
	accuracy int
	since    time.Time
	held     bool
}

type Buttons struct {
	buttons      []*button
	holdDuration time.Duration
	pollRate     time.Duration
	now          func() time.Time
	log          zerolog.Logger
	close        chan struct{}
	done         chan struct{}
	started      bool
}

// NewButtons opens the GPIO memory and wires the scene and power buttons:
// scene press selects the next scene, scene hold toggles the ring; power
// press toggles the ring, power hold sets full brightness. Buttons are
// active low with the internal pull-up.
func NewButtons(cfg config.Buttons, c Controller) (*Buttons, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("gpio open: %w", err)
	}
	pin := func(n int) rpio.Pin {
		p := rpio.Pin(n)
		p.Input()
		p.PullUp()
		return p
	}
	b := newButtons(time.Duration(cfg.HoldMs)*time.Millisecond, time.Duration(cfg.PollMs)*time.Millisecond)
	b.Add("scene", pin(cfg.ScenePin), Actions{
		Press: func() { c.NextScene() },
		Hold:  func() { c.ToggleOnOff() },
	})
	b.Add("power", pin(cfg.PowerPin), Actions{
		Press: func() { c.ToggleOnOff() },
		Hold:  c.SetMaxBrightness,
	})
	return b, nil
}

func newButtons(hold, poll time.Duration) *Buttons {
	if hold <= 0 {
		hold = 2 * time.Second
	}
	if poll <= 0 {
		poll = 30 * time.Millisecond
	}
	return &Buttons{
		holdDuration: hold,
		pollRate:     poll,
		now:          time.Now,
		log:          log.With().Str("component", "buttons").Logger(),
		close:        make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Add registers a button on pin.
func (b *Buttons) Add(name string, pin Pin, a Actions) {
	b.buttons = append(b.buttons, &button{name: name, pin: pin, actions: a})
}

func (b *Buttons) Start() {
	b.started = true
	ticker := time.NewTicker(b.pollRate)
	go func() {
		defer close(b.done)
		for {
			select {
			case <-ticker.C:
				b.poll()
			case <-b.close:
				ticker.Stop()
				return
			}
		}
	}()
}

// Shutdown stops polling and releases the GPIO memory.
func (b *Buttons) Shutdown() error {
	close(b.close)
	if b.started {
		<-b.done
	}
	return rpio.Close()
}

func (b *Buttons) poll() {
	now := b.now()
	for _, btn := range b.buttons {
		b.pollButton(btn, now)
	}
}

func (b *Buttons) pollButton(btn *button, now time.Time) {
	if btn.pin.Read() == rpio.Low {
		if !btn.down {
			btn.down = true
			btn.since = now
			btn.accuracy = 0
			btn.held = false
		}
		// two consecutive low reads debounce a press
		btn.accuracy++

		if btn.accuracy >= 2 && !btn.held && now.Sub(btn.since) >= b.holdDuration {
			btn.held = true
			b.fire(btn, EventHold, btn.actions.Hold)
		}
		return
	}

	if btn.down && btn.accuracy >= 2 && !btn.held {
		b.fire(btn, EventPress, btn.actions.Press)
	}
	btn.down = false
	btn.accuracy = 0
	btn.held = false
}

func (b *Buttons) fire(btn *button, e event, fn func()) {
	b.log.Debug().Str("button", btn.name).Str("event", string(e)).Msg("button")
	if fn != nil {
		fn()
	}
}
