package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yapiolibs/neopixelring/internal/app"
	"github.com/yapiolibs/neopixelring/internal/config"
	diag "github.com/yapiolibs/neopixelring/internal/diagnostics"
	"github.com/yapiolibs/neopixelring/internal/input"
	"github.com/yapiolibs/neopixelring/internal/led"
	"github.com/yapiolibs/neopixelring/internal/mqtt"
	"github.com/yapiolibs/neopixelring/internal/ring"
	"github.com/yapiolibs/neopixelring/internal/scene"
	"github.com/yapiolibs/neopixelring/internal/ws"
)

func main() {
	// ---- Flags (remain usable; config.yaml and PIXELRING_* override) ----
	var (
		pixels     = flag.Int("pixels", 24, "number of pixels on the ring")
		fps        = flag.Int("fps", 100, "control loop ticks per second")
		brightness = flag.Int("brightness", 100, "initial brightness level 5..100")
		sceneName  = flag.String("scene", "Rainbow", "initial scene")
		driver     = flag.String("driver", "sim", "driver: spi | stream | sim")
		spiDev     = flag.String("spi", "", "SPI port name, empty for the first one")
		gpio       = flag.String("gpio", "GPIO18", "data pin for the stream driver")
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		program    = flag.String("program", "", "scene program (JSON or YAML)")
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
		logLevel   = flag.String("log-level", "info", "zerolog level")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// ---- Effective config: flags, then config.yaml, then environment ----
	cfg := config.Default()
	cfg.Pixels, cfg.FPS, cfg.Brightness = *pixels, *fps, *brightness
	cfg.Scene, cfg.Driver, cfg.GPIO, cfg.Addr = *sceneName, *driver, *gpio, *addr
	cfg.SPI.Dev, cfg.Program = *spiDev, *program

	if err := config.Overlay(*configPath, cfg); err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := config.ApplyEnv(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("environment")
	}
	if *simOnly {
		cfg.Driver = "sim"
	}

	// ---- Driver selection with SIM fallback, mirrored to the browser ----
	hw, selected, drvErr := app.OpenDriver(cfg, os.Stdout)
	state := ws.NewState(cfg, selected)
	state.ConfigPath = *configPath
	if drvErr != nil {
		state.Pin(diag.Fallback(cfg.Driver, drvErr))
	}

	var opts []ring.Opt
	if cfg.MQTT.Broker != "" {
		pub, err := mqtt.New(cfg.MQTT)
		if err != nil {
			log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("MQTT unavailable; not publishing")
		} else {
			defer pub.Close()
			opts = append(opts, ring.WithPublisher(pub))
			log.Info().Str("topic", pub.Topic()).Msg("publishing state")
		}
	}

	core, err := app.InitCore(cfg, led.Multi(hw, state), opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("ring init")
	}
	state.Attach(core.Ring, core.Conductor)

	// ---- Physical controls ----
	if cfg.Buttons.Enabled {
		b, err := input.NewButtons(cfg.Buttons, core.Ring)
		if err != nil {
			log.Warn().Err(err).Msg("buttons disabled")
		} else {
			b.Start()
			defer b.Shutdown()
		}
	}
	if cfg.Knob.Enabled {
		k, err := input.NewKnob(cfg.Knob, core.Ring)
		if err != nil {
			log.Warn().Err(err).Msg("knob disabled")
		} else {
			k.Start()
			defer k.Stop()
		}
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", state.HandleFramesWS)
	mux.HandleFunc("/diag", state.HandleDiagWS)
	mux.HandleFunc("/control", state.HandleControlWS)
	mux.HandleFunc("/health", state.HandleHealth)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ---- Run control loop & server ----
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		core.Conductor.Run(ctx, cfg.FPS)
	}()
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("driver", selected).Int("pixels", cfg.Pixels).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()

	// ---- Graceful shutdown ----
	<-ctx.Done()
	log.Info().Msg("shutting down")

	_ = srv.Close()
	<-loopDone
	if err := core.Ring.Process(scene.Off); err != nil {
		log.Debug().Err(err).Msg("final frame")
	}
	if err := core.Ring.Close(); err != nil {
		log.Warn().Err(err).Msg("driver close")
	}
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
