package strip

import "github.com/yapiolibs/neopixelring/internal/led"

// Surface is the pixel buffer the core draws into.
type Surface interface {
	NumPixels() int
	SetPixelColor(i int, c Color)
	Clear()
	// Show pushes the buffered pixels to hardware.
	Show() error
}

// Strip buffers a fixed number of pixels and writes them to a driver on Show.
// A nil driver makes Show a no-op apart from frame counting.
type Strip struct {
	pixels []Color
	rgb    []byte
	drv    led.Driver
	frames uint64
}

func New(count int, drv led.Driver) *Strip {
	if count < 1 {
		count = 1
	}
	return &Strip{
		pixels: make([]Color, count),
		rgb:    make([]byte, count*3),
		drv:    drv,
	}
}

func (s *Strip) NumPixels() int { return len(s.pixels) }

// SetPixelColor ignores indices outside the strip.
func (s *Strip) SetPixelColor(i int, c Color) {
	if i < 0 || i >= len(s.pixels) {
		return
	}
	s.pixels[i] = c
}

func (s *Strip) Clear() {
	for i := range s.pixels {
		s.pixels[i] = Off
	}
}

func (s *Strip) Show() error {
	s.frames++
	for i, c := range s.pixels {
		s.rgb[i*3+0], s.rgb[i*3+1], s.rgb[i*3+2] = c.Channels()
	}
	if s.drv == nil {
		return nil
	}
	return s.drv.Write(s.rgb)
}

// Pixels returns a copy of the buffer.
func (s *Strip) Pixels() []Color {
	return append([]Color(nil), s.pixels...)
}

// Pixel returns the buffered color at i, Off when out of range.
func (s *Strip) Pixel(i int) Color {
	if i < 0 || i >= len(s.pixels) {
		return Off
	}
	return s.pixels[i]
}

// Frames counts Show calls.
func (s *Strip) Frames() uint64 { return s.frames }

// Close releases the driver.
func (s *Strip) Close() error {
	if s.drv == nil {
		return nil
	}
	return s.drv.Close()
}
