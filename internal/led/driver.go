package led

import "errors"

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("led: driver closed")

// Driver abstracts an LED output sink.
type Driver interface {
	// Write pushes an RGB frame to hardware. len(rgb) must be 3*N.
	Write(rgb []byte) error
	// Close releases resources.
	Close() error
}

// Multi fans a frame out to every driver. The first error wins but every
// driver still receives the frame.
func Multi(drivers ...Driver) Driver {
	out := make(multi, 0, len(drivers))
	for _, d := range drivers {
		if d != nil {
			out = append(out, d)
		}
	}
	return out
}

type multi []Driver

func (m multi) Write(rgb []byte) error {
	var first error
	for _, d := range m {
		if err := d.Write(rgb); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m multi) Close() error {
	var first error
	for _, d := range m {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
