package led

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"
)

// Sim prints each frame as a row of true-color blocks, useful without hardware.
type Sim struct {
	mu       sync.Mutex
	w        io.Writer
	throttle time.Duration
	lastEmit time.Time
	now      func() time.Time
	closed   bool
	Frames   int
}

// NewSim writes to w. A zero throttle prints every frame.
func NewSim(w io.Writer, throttle time.Duration) *Sim {
	return &Sim{w: w, throttle: throttle, now: time.Now}
}

func (s *Sim) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	now := s.now()
	if s.throttle > 0 && s.lastEmit.Add(s.throttle).After(now) {
		return nil
	}
	s.lastEmit = now
	s.Frames++

	var buf bytes.Buffer
	buf.WriteString("\r")
	for i := 0; i+2 < len(rgb); i += 3 {
		fmt.Fprintf(&buf, "\x1b[48;2;%d;%d;%dm  ", rgb[i], rgb[i+1], rgb[i+2])
	}
	buf.WriteString("\x1b[0m")
	_, err := s.w.Write(buf.Bytes())
	return err
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		_, _ = io.WriteString(s.w, "\n")
	}
	return nil
}
