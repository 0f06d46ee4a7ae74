package input

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/grant-carpenter/go-ads"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yapiolibs/neopixelring/internal/brightness"
	"github.com/yapiolibs/neopixelring/internal/config"
)

// KnobScale is the full-scale knob reading.
const KnobScale = 1000

// knobDeadband ignores ADC jitter smaller than this many brightness levels.
const knobDeadband = 2

// ADC returns a raw single-ended conversion. *ads.ADS satisfies it.
type ADC interface {
	ReadRetry(retries int) (uint16, error)
	Close() error
}

// Knob turns a potentiometer position into a brightness target and walks
// the ring toward it in bounded increments.
type Knob struct {
	sync.Mutex
	adc      ADC
	ctrl     Controller
	pollRate time.Duration
	log      zerolog.Logger

	target  int
	active  bool
	started bool

	stopSignal chan struct{}
	done       chan struct{}
}

func NewKnob(cfg config.Knob, c Controller) (*Knob, error) {
	if err := ads.HostInit(); err != nil {
		return nil, fmt.Errorf("ads host init: %w", err)
	}
	a, err := ads.NewADS(cfg.Bus, cfg.Address, "")
	if err != nil {
		return nil, fmt.Errorf("ads on %s: %w", cfg.Bus, err)
	}
	a.SetConfigGain(ads.ConfigGain2_3)
	return newKnob(a, c, time.Duration(cfg.PollMs)*time.Millisecond), nil
}

func newKnob(a ADC, c Controller, poll time.Duration) *Knob {
	if poll <= 0 {
		poll = 50 * time.Millisecond
	}
	return &Knob{
		adc:        a,
		ctrl:       c,
		pollRate:   poll,
		log:        log.With().Str("component", "knob").Logger(),
		target:     -1,
		stopSignal: make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// TargetLevel maps a reading in [0, KnobScale] linearly onto
// [brightness.MinLevel, brightness.MaxLevel].
func TargetLevel(reading float64) int {
	r := math.Max(0, math.Min(KnobScale, reading))
	span := float64(brightness.MaxLevel - brightness.MinLevel)
	return brightness.MinLevel + int(math.Round(r*span/KnobScale))
}

func (k *Knob) Start() {
	k.started = true
	ticker := time.NewTicker(k.pollRate)
	go func() {
		defer close(k.done)
		for {
			select {
			case <-ticker.C:
				if err := k.sample(); err != nil {
					k.log.Warn().Err(err).Msg("knob read")
				}
			case <-k.stopSignal:
				ticker.Stop()
				return
			}
		}
	}()
}

func (k *Knob) Stop() error {
	close(k.stopSignal)
	if k.started {
		<-k.done
	}
	return k.adc.Close()
}

func (k *Knob) sample() error {
	raw, err := k.adc.ReadRetry(5)
	if err != nil {
		return err
	}
	k.apply(math.Round(float64(raw) / 32767.0 * KnobScale))
	return nil
}

// apply follows the knob once it moved past the deadband, one bounded step
// per call, so buttons and the control socket can still change brightness
// while the knob rests.
func (k *Knob) apply(reading float64) {
	k.Lock()
	defer k.Unlock()

	target := TargetLevel(reading)
	if !k.active {
		if k.target >= 0 && abs(target-k.target) < knobDeadband {
			return
		}
		k.active = true
	}
	k.target = target

	cur := k.ctrl.State().Brightness
	if cur == target {
		k.active = false
		return
	}
	if next := k.ctrl.IncrementBrightness(target - cur); next == cur || next == target {
		k.active = false
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
