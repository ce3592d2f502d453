// Package stream serves a live session to browser renderers over
// WebSocket.
//
// The session and its loop stay single-threaded: every client intent is
// queued onto the goroutine running [Server.Run], and frames are fanned out
// from there whenever the loop publishes its status. A slow client drops
// frames rather than stalling the loop.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/san-kum/kinelab/internal/animation"
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/experiment"
	"github.com/san-kum/kinelab/internal/scenes"
	"github.com/san-kum/kinelab/internal/session"
)

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// ErrUnknownIntent is reported to a client that sends an unsupported type.
var ErrUnknownIntent = errors.New("stream: unknown intent")

// Message is what the server sends.
type Message struct {
	Type     string            `json:"type"`
	Status   *animation.Status `json:"status,omitempty"`
	Snapshot *dynamo.Snapshot  `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Intent is what a client sends. Type is one of play, pause, toggle,
// reset, seek (Time), speed (Value), param (Name, Value) or scene (Name).
type Intent struct {
	Type  string  `json:"type"`
	Time  float64 `json:"time,omitempty"`
	Name  string  `json:"name,omitempty"`
	Value float64 `json:"value,omitempty"`
}

// SceneInfo describes a scene for the /scenes endpoint.
type SceneInfo struct {
	Name     string             `json:"name"`
	Duration float64            `json:"duration"`
	Params   map[string]float64 `json:"params"`
	Sliders  []scenes.ParamSpec `json:"sliders,omitempty"`
}

type Config struct {
	FPS     int
	Options animation.Options
	Logger  *zap.Logger
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Server struct {
	reg      *experiment.Registry
	log      *zap.Logger
	fps      int
	upgrader websocket.Upgrader

	queue   *animation.FrameQueue
	sess    *session.Session
	latest  dynamo.Snapshot
	intents chan func()

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer binds scene to a realtime session. Nothing runs until Run.
func NewServer(reg *experiment.Registry, scene dynamo.Scene, cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.FPS <= 0 {
		cfg.FPS = experiment.DefaultFPS
	}
	s := &Server{
		reg:     reg,
		log:     log,
		fps:     cfg.FPS,
		queue:   animation.NewFrameQueue(),
		intents: make(chan func(), 64),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	cfg.Options.Logger = log
	s.sess = session.New(scene, s.queue, cfg.Options, func(snap dynamo.Snapshot) {
		s.latest = snap
	})
	s.sess.Loop().Subscribe(func(st animation.Status) {
		s.broadcast(s.frame(st))
	})
	return s
}

// Run drives the session from a wall-clock ticker until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("stream loop started", zap.Int("fps", s.fps), zap.String("scene", s.sess.Scene().Name()))
	err := animation.Realtime(ctx, s.queue, s.fps, s.intents, nil)
	s.closeAll()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Routes exposes /ws and /scenes.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.Handle)
	mux.HandleFunc("/scenes", s.handleScenes)
	return mux
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	var out []SceneInfo
	for _, name := range s.reg.ListScenes() {
		scene, err := s.reg.GetScene(name)
		if err != nil {
			continue
		}
		info := SceneInfo{Name: name, Duration: scene.Duration(), Params: scene.GetParams()}
		if d, ok := scene.(scenes.Describer); ok {
			info.Sliders = d.Specs()
		}
		out = append(out, info)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		s.log.Warn("write scene list", zap.Error(err))
	}
}

// Handle upgrades the request and serves one client until it disconnects.
func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.log.Debug("client connected", zap.String("remote", r.RemoteAddr))

	go s.writePump(c)

	// the first frame is built on the loop goroutine like every other
	s.submit(r.Context(), func() {
		s.deliver(c, s.frame(s.sess.Loop().Published()))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			s.drop(c)
			return
		}

		var in Intent
		if err := json.Unmarshal(payload, &in); err != nil {
			s.log.Debug("discarding malformed intent", zap.Error(err))
			s.deliver(c, encode(Message{Type: "error", Error: err.Error()}))
			continue
		}

		s.submit(r.Context(), func() {
			if err := s.Apply(in); err != nil {
				s.deliver(c, encode(Message{Type: "error", Error: err.Error()}))
			}
		})
	}
}

func (s *Server) submit(ctx context.Context, fn func()) {
	select {
	case s.intents <- fn:
	case <-ctx.Done():
	}
}

// Apply executes one intent. It must run on the loop goroutine.
func (s *Server) Apply(in Intent) error {
	switch in.Type {
	case "play":
		s.sess.Play()
	case "pause":
		s.sess.Pause()
	case "toggle":
		s.sess.Toggle()
	case "reset":
		s.sess.Reset()
	case "seek":
		s.sess.SkipTo(in.Time)
	case "speed":
		if in.Value <= 0 {
			return fmt.Errorf("%w: speed %g", dynamo.ErrParameterBounds, in.Value)
		}
		s.sess.SetSpeed(in.Value)
	case "param":
		return s.sess.SetParam(in.Name, in.Value)
	case "scene":
		scene, err := s.reg.GetScene(in.Name)
		if err != nil {
			return err
		}
		s.sess.SwitchScene(scene)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownIntent, in.Type)
	}
	s.log.Debug("intent applied", zap.String("type", in.Type))
	return nil
}

func (s *Server) frame(st animation.Status) []byte {
	snap := s.latest.Clone()
	return encode(Message{Type: "frame", Status: &st, Snapshot: &snap})
}

func encode(m Message) []byte {
	data, err := json.Marshal(m)
	if err != nil {
		data, _ = json.Marshal(Message{Type: "error", Error: err.Error()})
	}
	return data
}

func (s *Server) broadcast(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		s.deliverLocked(c, data)
	}
}

func (s *Server) deliver(c *client, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		s.deliverLocked(c, data)
	}
}

func (s *Server) deliverLocked(c *client, data []byte) {
	select {
	case c.send <- data:
	default:
		// slow reader; the next frame supersedes this one
	}
}

func (s *Server) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.log.Debug("write failed", zap.Error(err))
			s.drop(c)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	c.conn.Close()
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
}

// Clients is the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
