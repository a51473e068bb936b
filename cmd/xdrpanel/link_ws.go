package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsLink talks to a tuner bridge over WebSocket. Both directions use the
// event envelope {"type": ..., "data": ...}: the bridge sends observations
// ("freq", "signal", "ps", ...) and receives "tune" and "set_control".
type wsLink struct {
	url        string
	password   string
	writeWait  time.Duration
	retryDelay time.Duration
	logger     *slog.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

type wsLinkConfig struct {
	URL        string
	Password   string
	WriteWait  time.Duration
	RetryDelay time.Duration
}

type wsAuth struct {
	Password string `json:"password"`
}

func newWSLink(cfg wsLinkConfig, logger *slog.Logger) (*wsLink, error) {
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 2 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &wsLink{
		url:        cfg.URL,
		password:   cfg.Password,
		writeWait:  cfg.WriteWait,
		retryDelay: cfg.RetryDelay,
		logger:     logger,
	}, nil
}

func (l *wsLink) dial(ctx context.Context) (*websocket.Conn, error) {
	d := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := d.DialContext(ctx, l.url, nil)
	if err != nil {
		return nil, err
	}
	if l.password != "" {
		data, _ := json.Marshal(wsAuth{Password: l.password})
		msg, _ := json.Marshal(EventEnvelope{Type: "auth", Data: data})
		conn.SetWriteDeadline(time.Now().Add(l.writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("send auth: %w", err)
		}
	}
	return conn, nil
}

// Run connects, forwards observations and reconnects after a drop until ctx
// is canceled. An "unauthorized" message stops reconnecting.
func (l *wsLink) Run(ctx context.Context, events chan<- Event) error {
	for attempt := 1; ; attempt++ {
		conn, err := l.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Warn("tuner connection failed; retrying...", "url", l.url, "error", err, "attempt", attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(l.retryDelay):
			}
			continue
		}

		attempt = 0
		l.logger.Info("connected to tuner", "url", l.url)
		l.setConn(conn)
		if !sendEvent(ctx, events, SessionStarted{}) {
			conn.Close()
			return ctx.Err()
		}

		unauthorized, err := l.readLoop(ctx, conn, events)
		l.setConn(nil)
		conn.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if unauthorized {
			return errors.New("tuner rejected the password")
		}

		reason := "connection lost"
		if code, text, ok := closeStatus(err); ok {
			reason = fmt.Sprintf("closed (%d %s)", code, text)
		}
		l.logger.Warn("tuner disconnected", "reason", reason, "error", err)
		if !sendEvent(ctx, events, LinkDisconnected{Reason: reason}) {
			return ctx.Err()
		}
	}
}

func (l *wsLink) readLoop(ctx context.Context, conn *websocket.Conn, events chan<- Event) (bool, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return false, err
		}
		ev, err := UnmarshalEvent(msg)
		if err != nil {
			l.logger.Debug("ignoring tuner message", "error", err)
			continue
		}
		if !sendEvent(ctx, events, ev) {
			return false, ctx.Err()
		}
		if _, ok := ev.(LinkUnauthorized); ok {
			return true, nil
		}
	}
}

func (l *wsLink) setConn(conn *websocket.Conn) {
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()
}

func (l *wsLink) send(ev Event) error {
	payload, err := MarshalEvent(ev)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return errors.New("tuner not connected")
	}
	l.conn.SetWriteDeadline(time.Now().Add(l.writeWait))
	if err := l.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (l *wsLink) Tune(freq int, force bool) error {
	return l.send(TuneRequested{Freq: freq, Force: force})
}

func (l *wsLink) SetControl(c Control, v int) error {
	return l.send(ControlRequested{Control: c, Value: v})
}

func (l *wsLink) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
	return nil
}
