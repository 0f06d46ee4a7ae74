package ring

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yapiolibs/neopixelring/internal/arc"
	"github.com/yapiolibs/neopixelring/internal/clock"
	"github.com/yapiolibs/neopixelring/internal/scene"
	"github.com/yapiolibs/neopixelring/internal/strip"
)

type recorder struct {
	frames [][]byte
	err    error
	closed bool
}

func (r *recorder) Write(rgb []byte) error {
	r.frames = append(r.frames, append([]byte{}, rgb...))
	return r.err
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

type events struct {
	mu  sync.Mutex
	got []Event
	st  []State
}

func (e *events) Publish(ev Event, s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
	e.st = append(e.st, s)
}

func newTestRing(n int) (*Ring, *recorder, *clock.Manual, *events) {
	drv := &recorder{}
	tm := &clock.Manual{}
	ev := &events{}
	return New(drv, n, WithTimer(tm), WithPublisher(ev)), drv, tm, ev
}

func TestSetupShowsBlankFrame(t *testing.T) {
	r, drv, _, ev := newTestRing(24)
	require.NoError(t, r.Setup())
	require.Len(t, drv.frames, 1)
	assert.Equal(t, make([]byte, 24*3), drv.frames[0])
	assert.Equal(t, []Event{EventSetup}, ev.got)

	st := r.State()
	assert.Equal(t, scene.Rainbow, st.Scene)
	assert.Equal(t, 100, st.Brightness)
	assert.True(t, st.On)
	assert.Equal(t, 24, st.Width)
}

func TestProcessWritesDriver(t *testing.T) {
	r, drv, _, ev := newTestRing(4)
	require.NoError(t, r.Process(scene.Red))
	require.Len(t, drv.frames, 1)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 0, 0, 255, 0, 0}, drv.frames[0])
	assert.Equal(t, []Event{EventScene}, ev.got)

	require.NoError(t, r.Process(scene.None))
	assert.Len(t, ev.got, 1, "repeating a scene publishes nothing")
	assert.Equal(t, scene.Red, r.State().Scene)
}

func TestProcessWrapsDriverError(t *testing.T) {
	r, drv, _, _ := newTestRing(4)
	boom := errors.New("boom")
	drv.err = boom
	err := r.Process(scene.Blue)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "Blue")
}

func TestBrightnessOperations(t *testing.T) {
	r, _, _, ev := newTestRing(8)
	assert.Equal(t, 80, r.IncrementBrightness(-100))
	assert.Equal(t, 60, r.IncrementBrightness(-100))
	r.SetMaxBrightness()
	assert.Equal(t, 100, r.State().Brightness)

	assert.False(t, r.ToggleOnOff())
	require.NoError(t, r.Process(scene.White))
	for _, c := range r.Pixels() {
		assert.Equal(t, strip.Off, c)
	}
	assert.True(t, r.ToggleOnOff())

	r.TurnOff()
	assert.False(t, r.State().On)
	r.TurnOn()
	assert.True(t, r.State().On)

	assert.Equal(t, []Event{
		EventBrightness, EventBrightness, EventBrightness,
		EventPower, EventScene, EventPower, EventPower, EventPower,
	}, ev.got)
}

func TestIncrementWidthIsBounded(t *testing.T) {
	r, _, _, _ := newTestRing(24)
	r.IncrementWidth(-20)
	st := r.State()
	assert.Equal(t, 4, st.Width)
	assert.Equal(t, 10, st.Begin)
	assert.Equal(t, 13, st.End)

	r.IncrementWidth(-1000)
	assert.Equal(t, 1, r.State().Width)

	r.IncrementWidth(1000)
	assert.Equal(t, 24, r.State().Width)

	r.IncrementWidth(-5)
	r.SetFullWidth()
	st = r.State()
	assert.Equal(t, 0, st.Begin)
	assert.Equal(t, 23, st.End)
}

func TestShiftRotatesArc(t *testing.T) {
	r, _, _, ev := newTestRing(24)
	r.IncrementWidth(-20)
	r.Shift(15)
	st := r.State()
	assert.Equal(t, 1, st.Begin)
	assert.Equal(t, 4, st.End)
	assert.Equal(t, 4, st.Width)
	assert.Equal(t, EventShift, ev.got[len(ev.got)-1])

	require.NoError(t, r.Process(scene.Green))
	px := r.Pixels()
	for i, c := range px {
		if i >= 1 && i <= 4 {
			assert.Equal(t, strip.RGB(0, 255, 0), c, "pixel %d", i)
		} else {
			assert.Equal(t, strip.Off, c, "pixel %d", i)
		}
	}
}

func TestNextSceneCycles(t *testing.T) {
	r, _, tm, _ := newTestRing(24)
	assert.Equal(t, scene.White, r.NextScene())
	require.NoError(t, r.Process(scene.Off))
	assert.Equal(t, scene.White, r.NextScene())

	r.SetScene(scene.TheaterChaseWhite)
	tm.Advance(scene.ChaseWait)
	require.NoError(t, r.Process(scene.None))
	assert.Equal(t, 1, r.State().Phases.ChaseStep)
}

func TestDrawAndClose(t *testing.T) {
	r, drv, _, _ := newTestRing(3)
	require.NoError(t, r.Draw(func(s strip.Surface, v *arc.View) {
		s.SetPixelColor(v.Begin(), strip.RGB(1, 2, 3))
	}))
	require.Len(t, drv.frames, 1)
	assert.Equal(t, []byte{1, 2, 3, 0, 0, 0, 0, 0, 0}, drv.frames[0])

	require.NoError(t, r.Close())
	assert.True(t, drv.closed)
}

func TestConcurrentControl(t *testing.T) {
	r, _, tm, _ := newTestRing(24)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch (i + j) % 4 {
				case 0:
					r.IncrementBrightness(j%7 - 3)
				case 1:
					r.IncrementWidth(j%5 - 2)
				case 2:
					r.Shift(j)
				default:
					tm.Advance(scene.RainbowWait)
					_ = r.Process(scene.None)
				}
			}
		}(i)
	}
	wg.Wait()
	st := r.State()
	assert.GreaterOrEqual(t, st.Width, 1)
	assert.LessOrEqual(t, st.Width, 24)
}
