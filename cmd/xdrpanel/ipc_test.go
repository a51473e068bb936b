package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// answerSnapshots replies to snapshot requests with a fixed frequency until
// ctx ends. Other events are forwarded to other.
func answerSnapshots(ctx context.Context, events <-chan Event, other chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			if req, ok := ev.(RequestStateSnapshot); ok {
				req.Reply <- StateSnapshot{
					Fields: map[string]Update{"freq": FreqUpdate{Freq: 94500, Text: "94.500"}},
					Lines:  []string{"94.500"},
				}
				continue
			}
			other <- ev
		}
	}
}

// ipcReply mirrors IPCResponse with only the snapshot lines; Update values
// are interfaces and do not decode.
type ipcReply struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	State  *struct {
		Lines []string `json:"lines"`
	} `json:"state"`
}

func ipcRoundTrip(t *testing.T, conn net.Conn, r *bufio.Reader, line string) ipcReply {
	t.Helper()
	conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
		t.Fatalf("write: %v", err)
	}
	var resp ipcReply
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestIPC_EventsAndState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 4)
	forwarded := make(chan Event, 4)
	go answerSnapshots(ctx, events, forwarded)

	client, server := net.Pipe()
	defer client.Close()
	go handleIPCConnection(ctx, server, events, testLogger())
	r := bufio.NewReader(client)

	resp := ipcRoundTrip(t, client, r, `{"type":"tune","data":{"freq":94500}}`)
	if resp.Status != "ok" {
		t.Fatalf("tune response = %+v", resp)
	}
	select {
	case ev := <-forwarded:
		if ev != (TuneRequested{Freq: 94500}) {
			t.Fatalf("forwarded = %#v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("tune event not forwarded")
	}

	resp = ipcRoundTrip(t, client, r, `{"type":"nope"}`)
	if resp.Status != "error" || resp.Error == "" {
		t.Fatalf("bad event response = %+v", resp)
	}

	resp = ipcRoundTrip(t, client, r, `{"type":"get_state"}`)
	if resp.Status != "ok" || resp.State == nil || len(resp.State.Lines) != 1 || resp.State.Lines[0] != "94.500" {
		t.Fatalf("get_state response = %+v", resp)
	}
}

func TestStateHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan Event, 4)
	go answerSnapshots(ctx, events, make(chan Event, 4))

	h := stateHandler(events, testLogger())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Fields map[string]json.RawMessage `json:"fields"`
		Lines  []string                   `json:"lines"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body.Fields["freq"]; !ok || body.Lines[0] != "94.500" {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/api/state", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d", rec.Code)
	}
}
