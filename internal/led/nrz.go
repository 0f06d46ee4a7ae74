package led

import (
	"fmt"
	"io"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiostream"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

const (
	// DataRate is the WS2812 bit rate, used when streaming from a GPIO pin.
	DataRate = 800 * physic.KiloHertz
	// SPIRate clocks three SPI bits per WS2812 bit; nrzled accepts nothing else.
	SPIRate = 2500 * physic.KiloHertz
)

// NRZ drives a WS2812-compatible strip through periph's nrzled encoder,
// either over an SPI port or a streaming GPIO pin.
type NRZ struct {
	mu    sync.Mutex
	dev   *nrzled.Dev
	port  io.Closer
	count int
}

func opts(count int, freq physic.Frequency) *nrzled.Opts {
	return &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      freq,
	}
}

// NewSPI opens an SPI port by name (e.g. "/dev/spidev0.0", "" for the first
// available) and prepares an nrzled encoder for count pixels.
func NewSPI(name string, count int) (*NRZ, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", name, err)
	}
	n, err := NewSPIPort(p, count)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	n.port = p
	return n, nil
}

// NewSPIPort wraps an already opened port. The caller keeps ownership of p.
func NewSPIPort(p spi.Port, count int) (*NRZ, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	d, err := nrzled.NewSPI(p, opts(count, SPIRate))
	if err != nil {
		return nil, fmt.Errorf("nrzled spi: %w", err)
	}
	return &NRZ{dev: d, count: count}, nil
}

// NewStream drives the strip from a single GPIO pin (e.g. "GPIO18") using
// bit streaming. Only hosts with a streaming-capable pin support this.
func NewStream(pin string, count int) (*NRZ, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p := gpioreg.ByName(pin)
	if p == nil {
		return nil, fmt.Errorf("gpio pin %q not found", pin)
	}
	return NewStreamPin(p, count)
}

// NewStreamPin drives the strip from p, which must support bit streaming.
func NewStreamPin(p gpio.PinIO, count int) (*NRZ, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	out, ok := p.(gpiostream.PinOut)
	if !ok {
		return nil, fmt.Errorf("gpio pin %q cannot stream", p.Name())
	}
	d, err := nrzled.NewStream(out, opts(count, DataRate))
	if err != nil {
		return nil, fmt.Errorf("nrzled stream on %s: %w", p.Name(), err)
	}
	return &NRZ{dev: d, count: count}, nil
}

func (n *NRZ) String() string {
	return n.dev.String()
}

// Write takes len(rgb)==3*count.
func (n *NRZ) Write(rgb []byte) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.dev == nil {
		return ErrClosed
	}
	if len(rgb) != n.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), n.count)
	}
	if _, err := n.dev.Write(rgb); err != nil {
		return fmt.Errorf("nrzled write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (n *NRZ) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.dev == nil {
		return nil
	}
	err := n.dev.Halt()
	n.dev = nil
	if n.port != nil {
		if cerr := n.port.Close(); err == nil {
			err = cerr
		}
		n.port = nil
	}
	return err
}
