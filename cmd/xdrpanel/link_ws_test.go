package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeBridge is a tuner bridge endpoint. Messages the daemon sends arrive on
// received; script runs once per connection after the auth message.
type fakeBridge struct {
	t        *testing.T
	received chan Event
	auth     chan string
	script   func(conn *websocket.Conn)
}

func (b *fakeBridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		b.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return
	}
	b.auth <- string(msg)

	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			ev, err := UnmarshalEvent(msg)
			if err != nil {
				b.t.Errorf("bridge got bad message %s: %v", msg, err)
				return
			}
			b.received <- ev
		}
	}()

	b.script(conn)
}

func startBridge(t *testing.T, script func(conn *websocket.Conn)) (*fakeBridge, string) {
	t.Helper()
	b := &fakeBridge{t: t, received: make(chan Event, 8), auth: make(chan string, 1), script: script}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSLink_ObservationsAndCommands(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	bridge, url := startBridge(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"freq","data":{"freq":94500}}`))
		<-release
	})

	link, err := newWSLink(wsLinkConfig{URL: url, Password: "secret", RetryDelay: 50 * time.Millisecond}, testLogger())
	if err != nil {
		t.Fatalf("newWSLink: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan Event, 16)
	go link.Run(ctx, events)

	select {
	case auth := <-bridge.auth:
		if !strings.Contains(auth, `"password":"secret"`) {
			t.Fatalf("auth message = %s", auth)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for auth")
	}

	nextEvent(t, events, func(ev Event) bool { return ev == (SessionStarted{}) }, "expected SessionStarted")
	nextEvent(t, events, func(ev Event) bool { return ev == (FreqObserved{Freq: 94500}) }, "expected FreqObserved")

	if err := link.Tune(98300, true); err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if err := link.SetControl(ControlAntenna, 2); err != nil {
		t.Fatalf("SetControl: %v", err)
	}

	for _, want := range []Event{
		TuneRequested{Freq: 98300, Force: true},
		ControlRequested{Control: ControlAntenna, Value: 2},
	} {
		select {
		case got := <-bridge.received:
			if got != want {
				t.Fatalf("bridge got %#v, want %#v", got, want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timeout waiting for %#v", want)
		}
	}
}

func TestWSLink_UnauthorizedStops(t *testing.T) {
	_, url := startBridge(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"unauthorized"}`))
		time.Sleep(100 * time.Millisecond)
	})

	link, err := newWSLink(wsLinkConfig{URL: url, Password: "wrong", RetryDelay: 50 * time.Millisecond}, testLogger())
	if err != nil {
		t.Fatalf("newWSLink: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan Event, 16)
	runErr := make(chan error, 1)
	go func() { runErr <- link.Run(ctx, events) }()

	nextEvent(t, events, func(ev Event) bool { return ev == (LinkUnauthorized{}) }, "expected LinkUnauthorized")

	select {
	case err := <-runErr:
		if err == nil || !strings.Contains(err.Error(), "password") {
			t.Fatalf("Run error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after unauthorized")
	}
}

func TestWSLink_NotConnected(t *testing.T) {
	link, err := newWSLink(wsLinkConfig{URL: "ws://127.0.0.1:1/tuner"}, testLogger())
	if err != nil {
		t.Fatalf("newWSLink: %v", err)
	}
	if err := link.Tune(94500, false); err == nil {
		t.Fatalf("expected an error while disconnected")
	}
}
