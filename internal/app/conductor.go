package app

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/yapiolibs/neopixelring/internal/arc"
	diag "github.com/yapiolibs/neopixelring/internal/diagnostics"
	"github.com/yapiolibs/neopixelring/internal/ring"
	"github.com/yapiolibs/neopixelring/internal/scene"
	"github.com/yapiolibs/neopixelring/internal/selftest"
	"github.com/yapiolibs/neopixelring/internal/sequence"
	"github.com/yapiolibs/neopixelring/internal/strip"
)

// Conductor runs the control loop: the sequence timeline first, then either
// a pending self-test frame or one ring scene step.
type Conductor struct {
	Ring *ring.Ring
	Diag diag.Sink

	mu      sync.Mutex
	seq     *sequence.Player
	test    *selftest.Runner
	lastErr error
}

func NewConductor(r *ring.Ring) *Conductor {
	c := &Conductor{Ring: r}

	hooks := sequence.Hooks{
		SetScene: r.SetScene,
		SetParam: c.setParam,
	}
	c.seq = sequence.NewPlayer(hooks)
	return c
}

// setParam slews the ring toward v; brightness moves at most one bounded step
// per tick.
func (c *Conductor) setParam(name string, v float64) {
	target := int(math.Round(v))
	st := c.Ring.State()
	switch name {
	case sequence.ParamBrightness:
		if d := target - st.Brightness; d != 0 {
			c.Ring.IncrementBrightness(d)
		}
	case sequence.ParamWidth:
		if d := target - st.Width; d != 0 {
			c.Ring.IncrementWidth(d)
		}
	case sequence.ParamShift:
		if d := target - st.Begin; d != 0 {
			c.Ring.Shift(d)
		}
	default:
		log.Debug().Str("param", name).Msg("unknown sequence param")
	}
}

// Sequence runs fn with exclusive access to the player.
func (c *Conductor) Sequence(fn func(p *sequence.Player)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.seq)
}

// RunTest replaces any running self-test.
func (c *Conductor) RunTest(plan selftest.Plan) {
	c.mu.Lock()
	c.test = selftest.NewRunner(plan)
	c.mu.Unlock()
	c.Diag.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.TestRunning, Summary: "Running test", Detail: string(plan.Kind)})
}

// Testing reports the running self-test, selftest.None when idle.
func (c *Conductor) Testing() selftest.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.test == nil {
		return selftest.None
	}
	return c.test.Kind()
}

// Step advances the timeline by dt and draws one frame.
func (c *Conductor) Step(dt time.Duration) error {
	c.mu.Lock()
	wasRunning := c.seq.State == sequence.Running
	c.seq.Tick(dt.Seconds())
	finished := wasRunning && c.seq.State == sequence.Idle
	test := c.test
	c.mu.Unlock()

	if finished {
		c.Diag.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.ProgramDone, Summary: "Program finished"})
	}

	var err error
	if test != nil {
		done := false
		err = c.Ring.Draw(func(s strip.Surface, v *arc.View) {
			done = !test.Step(s, v)
		})
		if done {
			c.mu.Lock()
			if c.test == test {
				c.test = nil
			}
			c.mu.Unlock()
			c.Diag.Push(diag.Diagnostic{Severity: diag.Info, Code: diag.TestDone, Summary: "Test complete", Detail: string(test.Kind())})
		}
	} else {
		err = c.Ring.Process(scene.None)
	}
	c.report(err)
	return err
}

// report logs driver errors once per distinct failure.
func (c *Conductor) report(err error) {
	c.mu.Lock()
	prev := c.lastErr
	c.lastErr = err
	c.mu.Unlock()

	switch {
	case err != nil && (prev == nil || prev.Error() != err.Error()):
		log.Warn().Err(err).Msg("frame failed")
		c.Diag.Push(diag.WriteFailed(err))
	case err == nil && prev != nil:
		log.Info().Msg("frames recovered")
	}
}

// Run ticks at fps until ctx is done.
func (c *Conductor) Run(ctx context.Context, fps int) {
	if fps <= 0 {
		fps = 100
	}
	dt := time.Second / time.Duration(fps)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = c.Step(dt)
		}
	}
}
