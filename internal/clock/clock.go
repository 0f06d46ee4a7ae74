package clock

import (
	"sync"
	"time"
)

// Timer reports time elapsed since the last Reset.
type Timer interface {
	Elapsed() time.Duration
	Reset()
}

// Stopwatch is a Timer over the wall clock.
type Stopwatch struct {
	now   func() time.Time
	start time.Time
}

func NewStopwatch() *Stopwatch {
	s := &Stopwatch{now: time.Now}
	s.start = s.now()
	return s
}

func (s *Stopwatch) Elapsed() time.Duration { return s.now().Sub(s.start) }
func (s *Stopwatch) Reset()                 { s.start = s.now() }

// Manual is a Timer advanced by hand, for tests and offline simulation.
type Manual struct {
	mu      sync.Mutex
	elapsed time.Duration
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.elapsed += d
	m.mu.Unlock()
}

func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}

func (m *Manual) Reset() {
	m.mu.Lock()
	m.elapsed = 0
	m.mu.Unlock()
}
