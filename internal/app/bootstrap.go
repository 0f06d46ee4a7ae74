package app

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yapiolibs/neopixelring/internal/config"
	"github.com/yapiolibs/neopixelring/internal/led"
	"github.com/yapiolibs/neopixelring/internal/ring"
	"github.com/yapiolibs/neopixelring/internal/scene"
	"github.com/yapiolibs/neopixelring/internal/sequence"
)

// simThrottle keeps the console preview readable at high tick rates.
const simThrottle = 50 * time.Millisecond

// OpenDriver builds the hardware driver named by cfg.Driver. Any failure
// falls back to the console simulator on simOut; the returned name is the
// driver actually in use and the error, if any, is why the requested one
// was not.
func OpenDriver(cfg *config.Config, simOut io.Writer) (led.Driver, string, error) {
	sim := func() led.Driver { return led.NewSim(simOut, simThrottle) }

	switch cfg.Driver {
	case "sim", "":
		return sim(), "sim", nil
	case "spi":
		drv, err := led.NewSPI(cfg.SPI.Dev, cfg.Pixels)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "spi").
				Str("dev", cfg.SPI.Dev).
				Int("pixels", cfg.Pixels).
				Msg("SPI init failed; falling back to SIM")
			return sim(), "sim", err
		}
		return drv, "spi", nil
	case "stream":
		drv, err := led.NewStream(cfg.GPIO, cfg.Pixels)
		if err != nil {
			log.Warn().Err(err).
				Str("driver", "stream").
				Str("gpio", cfg.GPIO).
				Msg("GPIO stream init failed; falling back to SIM")
			return sim(), "sim", err
		}
		return drv, "stream", nil
	default:
		log.Warn().Str("driver", cfg.Driver).Msg("unknown driver; using SIM")
		return sim(), "sim", fmt.Errorf("unknown driver %q", cfg.Driver)
	}
}

// Core is a ring with its conductor, ready to run.
type Core struct {
	Ring      *ring.Ring
	Conductor *Conductor
}

// InitCore sets the ring up, applies the configured scene and brightness,
// and loads and starts the configured program, if any.
func InitCore(cfg *config.Config, drv led.Driver, opts ...ring.Opt) (*Core, error) {
	if cfg.Pixels <= 0 {
		return nil, fmt.Errorf("invalid pixel count %d", cfg.Pixels)
	}
	start, err := scene.Parse(cfg.Scene)
	if err != nil {
		return nil, fmt.Errorf("config scene: %w", err)
	}

	r := ring.New(drv, cfg.Pixels, opts...)
	if err := r.Setup(); err != nil {
		return nil, err
	}
	r.SetScene(start)
	SlewBrightness(r, cfg.Brightness)

	c := NewConductor(r)
	if cfg.Program != "" {
		prog, err := sequence.LoadFile(cfg.Program)
		if err != nil {
			return nil, err
		}
		c.Sequence(func(p *sequence.Player) {
			if err = p.Load(prog); err == nil {
				p.Start()
			}
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("program", cfg.Program).Int("clips", len(prog.Clips)).Msg("program started")
	}
	return &Core{Ring: r, Conductor: c}, nil
}

// SlewBrightness walks the level to target in bounded increments. Targets
// outside the level range stop at the nearest bound.
func SlewBrightness(r *ring.Ring, target int) {
	level := r.State().Brightness
	for level != target {
		next := r.IncrementBrightness(target - level)
		if next == level {
			return
		}
		level = next
	}
}
