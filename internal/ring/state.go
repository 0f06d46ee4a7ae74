package ring

import "github.com/yapiolibs/neopixelring/internal/scene"

// State is a snapshot of the ring used for health reports and publishing.
type State struct {
	Scene      scene.Mode   `json:"scene"`
	Brightness int          `json:"brightness"`
	On         bool         `json:"on"`
	Pixels     int          `json:"pixels"`
	Begin      int          `json:"begin"`
	End        int          `json:"end"`
	Width      int          `json:"width"`
	Frames     uint64       `json:"frames"`
	Phases     scene.Phases `json:"phases"`
}

func (r *Ring) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

func (r *Ring) stateLocked() State {
	return State{
		Scene:      r.engine.Scene(),
		Brightness: r.light.Level(),
		On:         r.light.IsOn(),
		Pixels:     r.strip.NumPixels(),
		Begin:      r.arc.Begin(),
		End:        r.arc.End(),
		Width:      r.arc.Width(),
		Frames:     r.strip.Frames(),
		Phases:     r.engine.Phases(),
	}
}
