package ws

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/yapiolibs/neopixelring/internal/app"
	"github.com/yapiolibs/neopixelring/internal/config"
	diag "github.com/yapiolibs/neopixelring/internal/diagnostics"
	"github.com/yapiolibs/neopixelring/internal/ring"
	"github.com/yapiolibs/neopixelring/internal/scene"
	"github.com/yapiolibs/neopixelring/internal/selftest"
	"github.com/yapiolibs/neopixelring/internal/sequence"
)

const writeWait = 200 * time.Millisecond

// State serves the browser preview and control sockets for one ring.
// It is also an led.Driver: every shown frame is broadcast to /ws clients.
type State struct {
	mu sync.RWMutex

	Config        *config.Config
	ConfigPath    string
	CurrentDriver string

	ring      *ring.Ring
	conductor *app.Conductor

	frameID     uint64
	startTime   time.Time
	clients     map[*websocket.Conn]bool
	diagClients map[*websocket.Conn]bool
	pinned      []diag.Diagnostic
}

func NewState(cfg *config.Config, driver string) *State {
	return &State{
		Config:        cfg,
		CurrentDriver: driver,
		startTime:     time.Now(),
		clients:       map[*websocket.Conn]bool{},
		diagClients:   map[*websocket.Conn]bool{},
	}
}

// Attach binds the ring and conductor the control socket drives, and routes
// conductor diagnostics to /diag clients.
func (s *State) Attach(r *ring.Ring, c *app.Conductor) {
	s.mu.Lock()
	s.ring = r
	s.conductor = c
	s.mu.Unlock()
	if c != nil {
		c.Diag = s.PushDiag
	}
}

// Write broadcasts a frame; it never fails so hardware output is unaffected.
func (s *State) Write(rgb []byte) error {
	s.mu.Lock()
	s.frameID++
	id := s.frameID
	s.mu.Unlock()
	s.broadcastFrame(id, rgb)
	return nil
}

// Close drops all socket clients.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.Close()
		delete(s.clients, c)
	}
	for c := range s.diagClients {
		c.Close()
		delete(s.diagClients, c)
	}
	return nil
}

func upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return up.Upgrade(w, r, nil)
}

// register tracks conn in set until the peer goes away.
func (s *State) register(set map[*websocket.Conn]bool, conn *websocket.Conn) {
	s.mu.Lock()
	set[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(set, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *State) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrade(w, r)
	if err != nil {
		return
	}
	s.sendState(conn)
	s.register(s.clients, conn)
}

func (s *State) HandleDiagWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrade(w, r)
	if err != nil {
		return
	}
	s.mu.RLock()
	pinned := append([]diag.Diagnostic(nil), s.pinned...)
	s.mu.RUnlock()
	for _, d := range pinned {
		b, _ := json.Marshal(d)
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, b)
	}
	s.register(s.diagClients, conn)
}

func (s *State) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrade(w, r)
	if err != nil {
		return
	}
	defer conn.Close()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			s.PushDiag(diag.Diagnostic{Severity: diag.Warn, Code: diag.ControlInvalid, Summary: "Control message is not JSON", Detail: err.Error()})
			continue
		}
		if err := s.applyControl(msg); err != nil {
			s.PushDiag(diag.Diagnostic{Severity: diag.Warn, Code: diag.ControlInvalid, Summary: "Control message rejected", Detail: err.Error()})
		}
		s.sendState(conn)
	}
}

type health struct {
	FrameID  uint64        `json:"frame_id"`
	UptimeS  float64       `json:"uptime_s"`
	FPS      int           `json:"fps"`
	Driver   string        `json:"driver"`
	Test     selftest.Kind `json:"test,omitempty"`
	Sequence string        `json:"sequence,omitempty"`
	Ring     *ring.State   `json:"ring,omitempty"`
}

func (s *State) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.health())
}

func (s *State) health() health {
	s.mu.RLock()
	h := health{
		FrameID: s.frameID,
		UptimeS: time.Since(s.startTime).Seconds(),
		FPS:     s.Config.FPS,
		Driver:  s.CurrentDriver,
	}
	rg, cd := s.ring, s.conductor
	s.mu.RUnlock()

	if rg != nil {
		st := rg.State()
		h.Ring = &st
	}
	if cd != nil {
		h.Test = cd.Testing()
		cd.Sequence(func(p *sequence.Player) { h.Sequence = string(p.State) })
	}
	return h
}

// applyControl maps a control message onto ring gestures. Numeric values
// are relative (brightness/width/shift deltas).
func (s *State) applyControl(msg map[string]any) error {
	s.mu.RLock()
	rg, cd := s.ring, s.conductor
	s.mu.RUnlock()
	if rg == nil {
		return fmt.Errorf("no ring attached")
	}

	// only scene and brightness are persisted
	persist := false
	if v, ok := msg["scene"].(string); ok {
		m, err := scene.Parse(v)
		if err != nil {
			return err
		}
		rg.SetScene(m)
		persist = true
	}
	if flag(msg, "next") {
		rg.NextScene()
		persist = true
	}
	if v, ok := msg["brightness"].(float64); ok {
		rg.IncrementBrightness(int(v))
		persist = true
	}
	if flag(msg, "max") {
		rg.SetMaxBrightness()
		persist = true
	}
	if flag(msg, "toggle") {
		rg.ToggleOnOff()
	}
	if flag(msg, "on") {
		rg.TurnOn()
	}
	if flag(msg, "off") {
		rg.TurnOff()
	}
	if v, ok := msg["width"].(float64); ok {
		rg.IncrementWidth(int(v))
	}
	if flag(msg, "full") {
		rg.SetFullWidth()
	}
	if v, ok := msg["shift"].(float64); ok {
		rg.Shift(int(v))
	}
	if v, ok := msg["runTest"].(string); ok && cd != nil {
		k, err := selftest.Parse(v)
		if err != nil {
			s.PushDiag(diag.Diagnostic{
				Severity: diag.Warn, Code: diag.TestUnknown, Summary: "Unknown test name",
				Evidence: map[string]any{"name": v},
			})
		} else {
			cd.RunTest(selftest.Plan{Kind: k, Hold: max(1, s.Config.FPS/10)})
		}
	}
	if v, ok := msg["sequence"].(string); ok && cd != nil {
		if err := sequenceControl(cd, v); err != nil {
			return err
		}
	}

	if persist {
		s.saveConfig(rg.State())
	}
	return nil
}

func flag(msg map[string]any, key string) bool {
	v, ok := msg[key].(bool)
	return ok && v
}

func sequenceControl(cd *app.Conductor, verb string) error {
	var err error
	cd.Sequence(func(p *sequence.Player) {
		switch verb {
		case "start":
			p.Start()
		case "pause":
			p.Pause()
		case "resume":
			p.Resume()
		case "stop":
			p.Stop()
		default:
			err = fmt.Errorf("unknown sequence command %q", verb)
		}
	})
	return err
}

// saveConfig stores the scene and brightness so a restart resumes them.
func (s *State) saveConfig(st ring.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ConfigPath == "" || s.Config == nil {
		return
	}
	if st.Scene != scene.Off {
		s.Config.Scene = st.Scene.String()
	}
	s.Config.Brightness = st.Brightness
	if err := config.Save(s.ConfigPath, s.Config); err != nil {
		log.Warn().Err(err).Str("path", s.ConfigPath).Msg("config save failed")
	}
}

func (s *State) sendState(conn *websocket.Conn) {
	s.mu.RLock()
	rg := s.ring
	driver := s.CurrentDriver
	s.mu.RUnlock()

	top := map[string]any{"driver": driver}
	if rg != nil {
		top["ring"] = rg.State()
	}
	b, _ := json.Marshal(top)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.TextMessage, b)
}

type frame struct {
	T       int64  `json:"t"`
	FrameID uint64 `json:"frame_id"`
	RGB     []byte `json:"rgb"`
}

func (s *State) broadcastFrame(id uint64, rgb []byte) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.clients) == 0 {
		return
	}
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: id, RGB: rgb})
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write frame")
		}
	}
}

// Pin pushes d and replays it to every /diag client that connects later.
// Startup conditions such as a driver fallback happen before any browser
// is listening.
func (s *State) Pin(d diag.Diagnostic) {
	s.mu.Lock()
	s.pinned = append(s.pinned, d)
	s.mu.Unlock()
	s.PushDiag(d)
}

// PushDiag sends d to every /diag client. Diagnostics arrive from several
// goroutines, so writes are exclusive.
func (s *State) PushDiag(d diag.Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, _ := json.Marshal(d)
	for c := range s.diagClients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.WriteMessage(websocket.TextMessage, b)
	}
}
