package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/kinelab/internal/animation"
	"github.com/san-kum/kinelab/internal/dynamo"
	"github.com/san-kum/kinelab/internal/experiment"
	"github.com/san-kum/kinelab/internal/scenes"
)

func startServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	reg := experiment.NewRegistry()
	srv := NewServer(reg, scenes.NewElevator(), Config{FPS: 120, Options: animation.DefaultOptions()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		ts.Close()
		cancel()
		if err := <-done; err != nil {
			t.Errorf("run: %v", err)
		}
	})
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads messages until match accepts one or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(Message) bool) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var m Message
		if err := json.Unmarshal(payload, &m); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if match(m) {
			return m
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, in Intent) {
	t.Helper()
	if err := conn.WriteJSON(in); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestInitialFrame(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)

	m := readUntil(t, conn, func(m Message) bool { return m.Type == "frame" })
	if m.Snapshot == nil || m.Snapshot.Scene != "elevator" {
		t.Fatalf("expected an elevator snapshot, got %+v", m)
	}
	if m.Status == nil || m.Status.Running {
		t.Errorf("a fresh session should be paused: %+v", m.Status)
	}
}

func TestSeekIntent(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, func(m Message) bool { return m.Type == "frame" })

	send(t, conn, Intent{Type: "seek", Time: 4})
	m := readUntil(t, conn, func(m Message) bool {
		return m.Type == "frame" && m.Status != nil && m.Status.Time == 4
	})
	if m.Snapshot.Phase != "cruising" {
		t.Errorf("expected cruising at t=4, got %s", m.Snapshot.Phase)
	}
}

func TestPlayAdvances(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, func(m Message) bool { return m.Type == "frame" })

	send(t, conn, Intent{Type: "play"})
	readUntil(t, conn, func(m Message) bool {
		return m.Type == "frame" && m.Status != nil && m.Status.Running && m.Status.Time > 0
	})
}

func TestBadIntents(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, func(m Message) bool { return m.Type == "frame" })

	for _, in := range []Intent{
		{Type: "warp"},
		{Type: "speed", Value: 0},
		{Type: "param", Name: "colour", Value: 1},
		{Type: "scene", Name: "trebuchet"},
	} {
		send(t, conn, in)
		m := readUntil(t, conn, func(m Message) bool { return m.Type == "error" })
		if m.Error == "" {
			t.Errorf("%s: expected an error message", in.Type)
		}
	}
}

func TestSwitchSceneIntent(t *testing.T) {
	_, ts := startServer(t)
	conn := dial(t, ts)
	readUntil(t, conn, func(m Message) bool { return m.Type == "frame" })

	send(t, conn, Intent{Type: "scene", Name: "bounce"})
	readUntil(t, conn, func(m Message) bool {
		return m.Type == "frame" && m.Snapshot != nil && m.Snapshot.Scene == "bounce"
	})
}

func TestApplyErrors(t *testing.T) {
	srv := NewServer(experiment.NewRegistry(), scenes.NewElevator(), Config{})
	if err := srv.Apply(Intent{Type: "warp"}); !errors.Is(err, ErrUnknownIntent) {
		t.Errorf("expected ErrUnknownIntent, got %v", err)
	}
	if err := srv.Apply(Intent{Type: "speed", Value: -1}); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if err := srv.Apply(Intent{Type: "scene", Name: "nope"}); !errors.Is(err, dynamo.ErrUnknownScene) {
		t.Errorf("expected ErrUnknownScene, got %v", err)
	}
	if err := srv.Apply(Intent{Type: "param", Name: "mass", Value: 90}); err != nil {
		t.Errorf("param: %v", err)
	}
}

func TestScenesEndpoint(t *testing.T) {
	_, ts := startServer(t)
	resp, err := http.Get(ts.URL + "/scenes")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var infos []SceneInfo
	if err := json.NewDecoder(resp.Body).Decode(&infos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(infos) != 7 {
		t.Fatalf("expected 7 scenes, got %d", len(infos))
	}
	for _, info := range infos {
		if len(info.Sliders) == 0 {
			t.Errorf("%s has no sliders", info.Name)
		}
	}
}
