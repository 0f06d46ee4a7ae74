package ring

import (
	"github.com/rs/zerolog"

	"github.com/yapiolibs/neopixelring/internal/clock"
)

// Opt defines a ring option
type Opt func(*Ring)

// WithPublisher adds a publisher notified on every control change
func WithPublisher(p Publisher) Opt {
	return func(r *Ring) {
		if p != nil {
			r.publishers = append(r.publishers, p)
		}
	}
}

// WithTimer replaces the wall-clock stopwatch behind the scene time gate
func WithTimer(t clock.Timer) Opt {
	return func(r *Ring) {
		r.timer = t
	}
}

func WithLogger(l zerolog.Logger) Opt {
	return func(r *Ring) {
		r.log = l
	}
}
