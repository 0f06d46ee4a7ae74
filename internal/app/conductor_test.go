package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yapiolibs/neopixelring/internal/clock"
	"github.com/yapiolibs/neopixelring/internal/config"
	diag "github.com/yapiolibs/neopixelring/internal/diagnostics"
	"github.com/yapiolibs/neopixelring/internal/led"
	"github.com/yapiolibs/neopixelring/internal/ring"
	"github.com/yapiolibs/neopixelring/internal/scene"
	"github.com/yapiolibs/neopixelring/internal/selftest"
	"github.com/yapiolibs/neopixelring/internal/sequence"
	"github.com/yapiolibs/neopixelring/internal/strip"
)

type failing struct{ err error }

func (f *failing) Write([]byte) error { return f.err }
func (f *failing) Close() error       { return nil }

func newConductor(t *testing.T, drv led.Driver) (*Conductor, *clock.Manual, *[]diag.Diagnostic) {
	t.Helper()
	tm := &clock.Manual{}
	r := ring.New(drv, 12, ring.WithTimer(tm))
	require.NoError(t, r.Setup())
	c := NewConductor(r)
	var got []diag.Diagnostic
	c.Diag = func(d diag.Diagnostic) { got = append(got, d) }
	return c, tm, &got
}

func TestStepProcessesStoredScene(t *testing.T) {
	c, _, _ := newConductor(t, nil)
	c.Ring.SetScene(scene.Green)
	require.NoError(t, c.Step(10*time.Millisecond))
	for _, px := range c.Ring.Pixels() {
		assert.Equal(t, strip.RGB(0, 255, 0), px)
	}
}

func TestSequenceDrivesRing(t *testing.T) {
	c, _, got := newConductor(t, nil)
	prog := sequence.Program{Clips: []sequence.Clip{
		{Name: "dim", Scene: scene.Red, DurationS: 2, Params: map[string]sequence.Envelope{
			sequence.ParamBrightness: {Keys: []sequence.Keyframe{{T: 0, V: 10}}},
			sequence.ParamWidth:      {Keys: []sequence.Keyframe{{T: 0, V: 4}}},
		}},
	}}
	c.Sequence(func(p *sequence.Player) {
		require.NoError(t, p.Load(prog))
		p.Start()
	})
	assert.Equal(t, scene.Red, c.Ring.State().Scene)

	require.NoError(t, c.Step(250*time.Millisecond))
	st := c.Ring.State()
	assert.Equal(t, 80, st.Brightness, "one bounded step per tick")
	assert.Equal(t, 4, st.Width)

	for i := 0; i < 7; i++ {
		require.NoError(t, c.Step(250*time.Millisecond))
	}
	assert.Equal(t, 10, c.Ring.State().Brightness)
	require.NotEmpty(t, *got)
	assert.Equal(t, diag.ProgramDone, (*got)[len(*got)-1].Code)
}

func TestSelfTestTakesOverFrames(t *testing.T) {
	c, _, got := newConductor(t, nil)
	c.Ring.SetScene(scene.Blue)
	c.RunTest(selftest.Plan{Kind: selftest.IndexSweep})
	assert.Equal(t, selftest.IndexSweep, c.Testing())

	for i := 0; i < 12; i++ {
		require.NoError(t, c.Step(time.Millisecond))
		assert.Equal(t, strip.RGB(255, 255, 255), c.Ring.Pixels()[i])
	}
	require.NoError(t, c.Step(time.Millisecond))
	assert.Equal(t, selftest.None, c.Testing())

	require.NoError(t, c.Step(time.Millisecond))
	assert.Equal(t, strip.RGB(0, 0, 255), c.Ring.Pixels()[0])

	codes := []string{}
	for _, d := range *got {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{diag.TestRunning, diag.TestDone}, codes)
}

func TestDriverErrorReportedOnce(t *testing.T) {
	boom := errors.New("spi gone")
	drv := &failing{}
	c, _, got := newConductor(t, drv)
	drv.err = boom
	c.Ring.SetScene(scene.White)

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, c.Step(time.Millisecond), boom)
	}
	require.Len(t, *got, 1)
	assert.Equal(t, diag.DriverWrite, (*got)[0].Code)
	assert.Equal(t, diag.Err, (*got)[0].Severity)

	drv.err = nil
	require.NoError(t, c.Step(time.Millisecond))
	drv.err = boom
	assert.Error(t, c.Step(time.Millisecond))
	assert.Len(t, *got, 2)
}

func TestRunStopsOnCancel(t *testing.T) {
	c, _, _ := newConductor(t, nil)
	c.Ring.SetScene(scene.White)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx, 200)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Greater(t, c.Ring.State().Frames, uint64(1))
}

func TestInitCore(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "show.yaml")
	require.NoError(t, os.WriteFile(prog, []byte("clips:\n  - {name: a, scene: TheaterChaseBlue, durationS: 2}\n"), 0644))

	cfg := config.Default()
	cfg.Pixels = 8
	cfg.Brightness = 35
	cfg.Scene = "Red"
	core, err := InitCore(cfg, nil)
	require.NoError(t, err)
	st := core.Ring.State()
	assert.Equal(t, scene.Red, st.Scene)
	assert.Equal(t, 35, st.Brightness)
	assert.Equal(t, 8, st.Pixels)

	cfg.Program = prog
	core, err = InitCore(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, scene.TheaterChaseBlue, core.Ring.State().Scene)

	cfg.Scene = "Disco"
	_, err = InitCore(cfg, nil)
	assert.ErrorIs(t, err, scene.ErrUnknownMode)
}

func TestOpenDriverFallsBackToSim(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default()
	drv, name, err := OpenDriver(cfg, &out)
	assert.Equal(t, "sim", name)
	assert.NoError(t, err)
	require.IsType(t, &led.Sim{}, drv)

	cfg.Driver = "laser"
	drv, name, err = OpenDriver(cfg, &out)
	assert.Equal(t, "sim", name)
	assert.EqualError(t, err, `unknown driver "laser"`)
	require.IsType(t, &led.Sim{}, drv)
}

func TestSlewBrightnessClamps(t *testing.T) {
	r := ring.New(nil, 4)
	SlewBrightness(r, 1)
	assert.Equal(t, 5, r.State().Brightness)
	SlewBrightness(r, 250)
	assert.Equal(t, 100, r.State().Brightness)
}
