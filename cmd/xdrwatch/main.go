package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
)

// xdrwatch connects to the xdrpanel state WebSocket and prints display
// updates as they arrive. It is a debugging aid for remote displays.

type message struct {
	Type string          `json:"type"`
	Ts   *time.Time      `json:"ts,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type segment struct {
	Text string `json:"text"`
}

func main() {
	var (
		wsURL   = flag.String("ws", "ws://127.0.0.1:7373/ws/state", "xdrpanel state websocket URL")
		raw     = flag.Bool("raw", false, "Print raw JSON messages")
		only    = flag.String("only", "", "Comma-separated update types to print (e.g. 'freq,ps,pi')")
		noColor = flag.Bool("no-color", false, "Disable colored output")
	)
	flag.Parse()

	if *noColor {
		color.NoColor = true
	}

	u, err := url.Parse(*wsURL)
	if err != nil {
		log.Fatalf("invalid websocket URL: %v", err)
	}

	filter := make(map[string]bool)
	for _, k := range strings.Split(*only, ",") {
		if k = strings.TrimSpace(k); k != "" {
			filter[k] = true
		}
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	d := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}

	log.Printf("connecting to %s...", u.String())
	conn, _, err := d.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer conn.Close()

	log.Printf("connected! (press Ctrl+C to exit)")

	var writeMu sync.Mutex

	// The server pings every 20s; answer pongs and keep the deadline moving.
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second))
	})

	p := newPrinter(filter, *raw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			messageType, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("websocket error: %v", err)
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(60 * time.Second))

			switch messageType {
			case websocket.TextMessage:
				p.handle(msg)
			case websocket.BinaryMessage:
				fmt.Printf("[BINARY] %d bytes\n", len(msg))
			}
		}
	}()

	select {
	case <-sigc:
		log.Printf("shutting down...")
		writeMu.Lock()
		err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		writeMu.Unlock()
		if err != nil {
			log.Printf("error closing connection: %v", err)
		}
	case <-done:
		log.Printf("connection closed")
	}
}

type printer struct {
	filter map[string]bool
	raw    bool
	last   map[string]string

	label *color.Color
	dim   *color.Color
}

func newPrinter(filter map[string]bool, raw bool) *printer {
	return &printer{
		filter: filter,
		raw:    raw,
		last:   make(map[string]string),
		label:  color.New(color.FgCyan, color.Bold),
		dim:    color.New(color.FgHiBlack),
	}
}

func (p *printer) handle(msg []byte) {
	var m message
	if err := json.Unmarshal(msg, &m); err != nil {
		fmt.Printf("[TEXT] %s\n", string(msg))
		return
	}

	if m.Type == "state_init" {
		p.handleInit(m)
		return
	}
	p.print(m.Type, m.Data)
}

func (p *printer) handleInit(m message) {
	var snap struct {
		Fields map[string]json.RawMessage `json:"fields"`
		Lines  []string                   `json:"lines"`
	}
	if err := json.Unmarshal(m.Data, &snap); err != nil {
		log.Printf("bad state_init: %v", err)
		return
	}

	fmt.Println(p.label.Sprint("[STATE]"))
	for _, l := range snap.Lines {
		fmt.Println("  " + l)
	}

	// Seed change detection so the first live update of an unchanged field
	// is not printed again.
	kinds := make([]string, 0, len(snap.Fields))
	for k := range snap.Fields {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		p.last[k] = summarize(k, snap.Fields[k])
	}
}

func (p *printer) print(kind string, data json.RawMessage) {
	if len(p.filter) > 0 && !p.filter[kind] {
		return
	}
	if p.raw {
		fmt.Printf("%s %s\n", p.label.Sprintf("[%s]", strings.ToUpper(kind)), string(data))
		return
	}

	text := summarize(kind, data)
	if prev, ok := p.last[kind]; ok && prev == text && kind != "af_added" {
		return
	}
	p.last[kind] = text
	fmt.Printf("%s %s %s\n", p.dim.Sprint(time.Now().Format("15:04:05.000")), p.label.Sprintf("[%s]", strings.ToUpper(kind)), text)
}

// summarize turns an update payload into one line of text.
func summarize(kind string, data json.RawMessage) string {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return string(data)
	}

	if segs, ok := fields["segments"]; ok {
		b, _ := json.Marshal(segs)
		var ss []segment
		if err := json.Unmarshal(b, &ss); err == nil {
			var out strings.Builder
			for _, s := range ss {
				out.WriteString(s.Text)
			}
			return strings.TrimRight(out.String(), " ")
		}
	}

	for _, key := range []string{"text", "label", "name", "mode", "country", "direction", "state", "message"} {
		if v, ok := fields[key].(string); ok {
			return v
		}
	}

	switch kind {
	case "cci", "aci":
		if unknown, _ := fields["unknown"].(bool); unknown {
			return "?"
		}
		return fmt.Sprintf("%v%%", fields["level"])
	case "scan":
		pts, _ := fields["points"].([]any)
		return fmt.Sprintf("%d points", len(pts))
	}
	if strings.HasPrefix(kind, "control_") {
		return fmt.Sprintf("%v", fields["value"])
	}

	b, _ := json.Marshal(fields)
	return string(b)
}
