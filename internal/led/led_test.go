package led_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi/spitest"

	. "github.com/yapiolibs/neopixelring/internal/led"
)

func TestNRZLifecycle(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewSPIPort(spitest.NewRecordRaw(&buf), 24)
	require.NoError(t, err)
	assert.Equal(t, "nrzled{recordraw}", d.String())

	frame := bytes.Repeat([]byte{255, 0, 0}, 24)
	require.NoError(t, d.Write(frame))
	written := buf.Len()
	assert.GreaterOrEqual(t, written, 24*3*3, "three SPI bits per data bit")

	require.NoError(t, d.Close())
	assert.Greater(t, buf.Len(), written, "close blanks the strip")
	assert.ErrorIs(t, d.Write(frame), ErrClosed)
	assert.NoError(t, d.Close())
}

func TestNRZRejectsBadCount(t *testing.T) {
	buf := bytes.Buffer{}
	_, err := NewSPIPort(spitest.NewRecordRaw(&buf), 0)
	assert.Error(t, err)
}

// plainPin is a GPIO without bit streaming.
type plainPin struct{ gpio.PinIO }

func (plainPin) Name() string { return "GPIO4" }

func TestStreamNeedsStreamingPin(t *testing.T) {
	_, err := NewStreamPin(plainPin{}, 24)
	assert.EqualError(t, err, `gpio pin "GPIO4" cannot stream`)
}

func TestNRZRejectsBadLength(t *testing.T) {
	buf := bytes.Buffer{}
	d, err := NewSPIPort(spitest.NewRecordRaw(&buf), 4)
	require.NoError(t, err)
	assert.Error(t, d.Write(make([]byte, 9)))
}

func TestSimPrintsBlocks(t *testing.T) {
	var out strings.Builder
	s := NewSim(&out, 0)
	require.NoError(t, s.Write([]byte{255, 0, 0, 0, 0, 255}))
	assert.Contains(t, out.String(), "\x1b[48;2;255;0;0m")
	assert.Contains(t, out.String(), "\x1b[48;2;0;0;255m")
	assert.Equal(t, 1, s.Frames)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Write([]byte{0, 0, 0}), ErrClosed)
}

type recorder struct {
	frames [][]byte
	err    error
	closed bool
}

func (r *recorder) Write(rgb []byte) error {
	r.frames = append(r.frames, append([]byte{}, rgb...))
	return r.err
}

func (r *recorder) Close() error { r.closed = true; return nil }

func TestMultiFansOut(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{err: boom}
	b := &recorder{}
	m := Multi(a, nil, b)

	assert.ErrorIs(t, m.Write([]byte{1, 2, 3}), boom)
	assert.Len(t, a.frames, 1)
	assert.Len(t, b.frames, 1, "later drivers still get the frame")

	require.NoError(t, m.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}
