package scene

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects what the ring shows.
type Mode uint8

const (
	White Mode = iota
	Red
	Green
	Blue
	TheaterChaseWhite
	TheaterChaseRed
	TheaterChaseBlue
	TheaterChaseRainbow
	Rainbow
	// Off blanks the whole strip, independent of the brightness override.
	Off
	// None keeps whatever was shown last.
	None
)

// Visible is the cycling order of NextScene.
var Visible = []Mode{
	White,
	Red,
	Green,
	Blue,
	TheaterChaseWhite,
	TheaterChaseRed,
	TheaterChaseBlue,
	TheaterChaseRainbow,
	Rainbow,
}

var names = [...]string{
	White:               "White",
	Red:                 "Red",
	Green:               "Green",
	Blue:                "Blue",
	TheaterChaseWhite:   "TheaterChaseWhite",
	TheaterChaseRed:     "TheaterChaseRed",
	TheaterChaseBlue:    "TheaterChaseBlue",
	TheaterChaseRainbow: "TheaterChaseRainbow",
	Rainbow:             "Rainbow",
	Off:                 "Off",
	None:                "None",
}

var ErrUnknownMode = errors.New("unknown scene")

func (m Mode) String() string {
	if int(m) < len(names) {
		return names[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Parse accepts a mode name, case-insensitively.
func Parse(name string) (Mode, error) {
	for m, n := range names {
		if strings.EqualFold(n, name) {
			return Mode(m), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Next returns the visible mode after m; anything not visible goes to White.
func Next(m Mode) Mode {
	for i, v := range Visible {
		if v == m {
			return Visible[(i+1)%len(Visible)]
		}
	}
	return White
}
