package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yapiolibs/neopixelring/internal/app"
	"github.com/yapiolibs/neopixelring/internal/clock"
	"github.com/yapiolibs/neopixelring/internal/config"
	"github.com/yapiolibs/neopixelring/internal/led"
	"github.com/yapiolibs/neopixelring/internal/ring"
	"github.com/yapiolibs/neopixelring/internal/sequence"
)

// ringsim plays a scene or a program against the console simulator on a
// manual clock, so runs are reproducible and need no hardware.
func main() {
	cfg := config.Default()
	var (
		seconds  float64
		realtime bool
		every    int
	)
	flag.StringVar(&cfg.Program, "program", "", "path to a program (JSON or YAML)")
	flag.StringVar(&cfg.Scene, "scene", cfg.Scene, "scene to show without a program")
	flag.IntVar(&cfg.Pixels, "pixels", cfg.Pixels, "number of pixels")
	flag.IntVar(&cfg.FPS, "fps", cfg.FPS, "simulation ticks per second")
	flag.IntVar(&cfg.Brightness, "brightness", cfg.Brightness, "initial brightness level")
	flag.Float64Var(&seconds, "seconds", 10, "simulated duration, 0 runs until the program ends")
	flag.BoolVar(&realtime, "realtime", true, "sleep between ticks")
	flag.IntVar(&every, "every", 1, "print every n-th frame")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if cfg.FPS <= 0 || every <= 0 {
		log.Fatal().Int("fps", cfg.FPS).Int("every", every).Msg("fps and every must be positive")
	}

	tm := &clock.Manual{}
	sim := led.NewSim(os.Stdout, 0)
	core, err := app.InitCore(cfg, &sampled{drv: sim, every: every}, ring.WithTimer(tm))
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	defer core.Ring.Close()

	dt := time.Second / time.Duration(cfg.FPS)
	limit := time.Duration(seconds * float64(time.Second))
	var elapsed time.Duration
	for {
		tm.Advance(dt)
		elapsed += dt
		if err := core.Conductor.Step(dt); err != nil {
			log.Error().Err(err).Msg("step")
		}

		var state sequence.PlayerState
		core.Conductor.Sequence(func(p *sequence.Player) { state = p.State })
		if cfg.Program != "" && state == sequence.Idle {
			break
		}
		if limit > 0 && elapsed >= limit {
			break
		}
		if realtime {
			time.Sleep(dt)
		}
	}

	st := core.Ring.State()
	fmt.Fprintln(os.Stdout)
	log.Info().
		Dur("simulated", elapsed).
		Uint64("frames", st.Frames).
		Stringer("scene", st.Scene).
		Int("brightness", st.Brightness).
		Int("width", st.Width).
		Msg("done")
}

// sampled forwards every n-th frame to drv.
type sampled struct {
	drv   led.Driver
	every int
	n     int
}

func (s *sampled) Write(rgb []byte) error {
	s.n++
	if (s.n-1)%s.every != 0 {
		return nil
	}
	return s.drv.Write(rgb)
}

func (s *sampled) Close() error { return s.drv.Close() }
