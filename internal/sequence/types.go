package sequence

import "github.com/yapiolibs/neopixelring/internal/scene"

// Parameter names understood by the ring conductor.
const (
	ParamBrightness = "brightness"
	ParamWidth      = "width"
	ParamShift      = "shift"
)

// Keyframe represents a value at time T (seconds) with an easing function
// that applies to the segment starting at this keyframe.
type Keyframe struct {
	T    float64 `json:"t" yaml:"t"`
	V    float64 `json:"v" yaml:"v"`
	Ease string  `json:"ease,omitempty" yaml:"ease,omitempty"` // "linear","smooth","cubic"
}

// Envelope is a sorted list of keyframes; Eval(t) interpolates a value.
// It is encoded as a plain list of keyframes.
type Envelope struct {
	Keys []Keyframe
}

// Clip is one segment of a show: selects a scene for a duration and
// automates ring parameters over the clip's local time.
type Clip struct {
	Name      string              `json:"name" yaml:"name"`
	Scene     scene.Mode          `json:"scene" yaml:"scene"`
	DurationS float64             `json:"durationS" yaml:"durationS"`
	Params    map[string]Envelope `json:"params,omitempty" yaml:"params,omitempty"`
}

// Program is a full sequence of clips.
type Program struct {
	Version string `json:"version" yaml:"version"` // e.g., "seq.v1"
	Loop    bool   `json:"loop,omitempty" yaml:"loop,omitempty"`
	Clips   []Clip `json:"clips" yaml:"clips"`
}

// PlayerState enumerates sequencer states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
	Paused  PlayerState = "paused"
)

// Hooks are dependency-injected callbacks into the ring.
type Hooks struct {
	// SetScene switches the ring scene when a clip starts.
	SetScene func(m scene.Mode)
	// SetParam receives every automated parameter once per tick.
	SetParam func(name string, v float64)
}

// Player owns the current Program timeline and uses Hooks to drive the ring.
type Player struct {
	State PlayerState

	prog Program
	nowS float64 // position within program
	idx  int     // current clip index

	// injection
	hooks Hooks
}
