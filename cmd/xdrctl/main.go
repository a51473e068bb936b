package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// xdrctl - Command-line IPC Client
// ============================================================================
// This tool drives a running xdrpanel daemon over its IPC socket: it can press
// keys, tune, move controls and print the current display state.
//
// Usage:
//   xdrctl tune 94.5
//   xdrctl key shift+f1
//   xdrctl control volume 70
//   xdrctl state
//
// Options:
//   -socket PATH    Unix domain socket path (default: /tmp/xdrpanel.sock)
// ============================================================================

// Event payloads (duplicated from the daemon for a standalone binary)
type keyData struct {
	Key   string `json:"key"`
	Rune  string `json:"rune,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Ctrl  bool   `json:"ctrl,omitempty"`
}

type tuneData struct {
	Freq  int  `json:"freq"`
	Force bool `json:"force,omitempty"`
}

type controlData struct {
	Control string `json:"control"`
	Value   int    `json:"value"`
}

// EventEnvelope wraps events for JSON
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// stateSnapshot is the part of the daemon's snapshot xdrctl prints.
type stateSnapshot struct {
	At     time.Time                  `json:"at"`
	Fields map[string]json.RawMessage `json:"fields"`
	Lines  []string                   `json:"lines"`
}

// IPCResponse represents the daemon's response
type IPCResponse struct {
	Status string         `json:"status"`
	Error  string         `json:"error,omitempty"`
	State  *stateSnapshot `json:"state,omitempty"`
}

const ioTimeout = 5 * time.Second

func main() {
	socketPath := "/tmp/xdrpanel.sock"

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if args[0] == "-socket" || args[0] == "--socket" {
		if len(args) < 2 {
			fmt.Fprintf(os.Stderr, "error: -socket requires an argument\n")
			os.Exit(1)
		}
		socketPath = args[1]
		args = args[2:]
	}

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	var envs []EventEnvelope
	var err error

	switch args[0] {
	case "tune":
		envs, err = tuneCommand(args[1:])

	case "key":
		if len(args) < 2 {
			fail("key requires a key name (e.g. f1, shift+f1, page_up, s)")
		}
		var env EventEnvelope
		env, err = keyEnvelope(args[1])
		envs = append(envs, env)

	case "preset", "store":
		if len(args) < 2 {
			fail(args[0] + " requires a preset number 1-12")
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil || n < 1 || n > 12 {
			fail("preset number must be 1-12")
		}
		name := fmt.Sprintf("f%d", n)
		if args[0] == "store" {
			name = "shift+" + name
		}
		var env EventEnvelope
		env, err = keyEnvelope(name)
		envs = append(envs, env)

	case "type":
		if len(args) < 2 {
			fail("type requires the text to enter (e.g. 94.5)")
		}
		envs, err = typeCommand(args[1])

	case "control", "set":
		if len(args) < 3 {
			fail("control requires a name and a value (e.g. control volume 70)")
		}
		v, convErr := strconv.Atoi(args[2])
		if convErr != nil {
			fail(fmt.Sprintf("invalid control value %q", args[2]))
		}
		var env EventEnvelope
		env, err = envelope("set_control", controlData{Control: args[1], Value: v})
		envs = append(envs, env)

	case "screenshot":
		var env EventEnvelope
		env, err = keyEnvelope("s")
		envs = append(envs, env)

	case "state":
		asJSON := len(args) > 1 && (args[1] == "-json" || args[1] == "--json")
		if err := printState(socketPath, asJSON); err != nil {
			fail(err.Error())
		}
		return

	case "help", "-h", "--help":
		printUsage()
		os.Exit(0)

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fail(err.Error())
	}

	if err := sendEvents(socketPath, envs); err != nil {
		fail(err.Error())
	}

	fmt.Println("ok")
}

func fail(msg string) {
	fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	os.Exit(1)
}

func envelope(typ string, payload any) (EventEnvelope, error) {
	env := EventEnvelope{Type: typ}
	if payload == nil {
		return env, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return env, fmt.Errorf("marshal %s: %w", typ, err)
	}
	env.Data = data
	return env, nil
}

// tuneCommand accepts MHz with a dot ("94.5") or kHz ("94500"), plus an
// optional "force".
func tuneCommand(args []string) ([]EventEnvelope, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("tune requires a frequency (e.g. 94.5 or 94500)")
	}
	freq, err := parseFreq(args[0])
	if err != nil {
		return nil, err
	}
	force := len(args) > 1 && args[1] == "force"
	env, err := envelope("tune", tuneData{Freq: freq, Force: force})
	if err != nil {
		return nil, err
	}
	return []EventEnvelope{env}, nil
}

func parseFreq(s string) (int, error) {
	if strings.Contains(s, ".") {
		mhz, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
		}
		return int(mhz*1000 + 0.5), nil
	}
	khz, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
	}
	return khz, nil
}

// keyEnvelope parses "shift+f1", "ctrl+x", "page_up" or a single character.
func keyEnvelope(arg string) (EventEnvelope, error) {
	var k keyData
	parts := strings.Split(arg, "+")
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(mod) {
		case "shift":
			k.Shift = true
		case "ctrl":
			k.Ctrl = true
		default:
			return EventEnvelope{}, fmt.Errorf("unknown modifier %q", mod)
		}
	}
	name := parts[len(parts)-1]
	if len([]rune(name)) == 1 {
		k.Key = "rune"
		k.Rune = name
	} else {
		k.Key = strings.ToLower(name)
	}
	return envelope("key", k)
}

// typeCommand types text into the frequency entry and commits it with Enter.
func typeCommand(text string) ([]EventEnvelope, error) {
	var envs []EventEnvelope
	for _, r := range text {
		env, err := envelope("key", keyData{Key: "rune", Rune: string(r)})
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	env, err := envelope("key", keyData{Key: "enter"})
	if err != nil {
		return nil, err
	}
	return append(envs, env), nil
}

func dial(socketPath string) (net.Conn, error) {
	conn, err := net.DialTimeout("unix", socketPath, ioTimeout)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	_ = conn.SetDeadline(time.Now().Add(ioTimeout))
	return conn, nil
}

// sendEvents writes each envelope on one connection and waits for its reply.
func sendEvents(socketPath string, envs []EventEnvelope) error {
	conn, err := dial(socketPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	decoder := json.NewDecoder(bufio.NewReader(conn))
	for _, env := range envs {
		data, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		if _, err := fmt.Fprintf(conn, "%s\n", data); err != nil {
			return fmt.Errorf("send event: %w", err)
		}

		var response IPCResponse
		if err := decoder.Decode(&response); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if response.Status == "error" {
			return fmt.Errorf("daemon error: %s", response.Error)
		}
	}
	return nil
}

func printState(socketPath string, asJSON bool) error {
	conn, err := dial(socketPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "%s\n", `{"type":"get_state"}`); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	var response IPCResponse
	if err := json.NewDecoder(conn).Decode(&response); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if response.Status == "error" {
		return fmt.Errorf("daemon error: %s", response.Error)
	}
	if response.State == nil {
		return fmt.Errorf("daemon returned no state")
	}

	if asJSON {
		pretty, err := json.MarshalIndent(response.State, "", "  ")
		if err != nil {
			return fmt.Errorf("format state: %w", err)
		}
		fmt.Println(string(pretty))
		return nil
	}

	for _, l := range response.State.Lines {
		fmt.Println(l)
	}
	return nil
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `xdrctl - Control the xdrpanel daemon via IPC

Usage:
  xdrctl [options] <command> [args]

Options:
  -socket PATH    Unix domain socket path (default: /tmp/xdrpanel.sock)

Commands:
  tune <freq> [force]      Tune to MHz ("94.5") or kHz ("94500")
  key <key>                Press a key: f1, shift+f1, page_up, left, enter, s, [
  preset <1-12>            Recall a preset (F-key)
  store <1-12>             Store the current frequency as a preset (Shift+F-key)
  type <text>              Type into the frequency entry and press Enter
  control, set <name> <v>  Move a control: agc, deemphasis, antenna, filter,
                           volume, squelch, gain, alignment, rotator
  screenshot               Save a screenshot of the panel
  state [-json]            Print the current display
  help, -h, --help         Show this help message

Examples:
  xdrctl tune 87.6
  xdrctl store 1
  xdrctl control filter 125000
  xdrctl -socket /run/xdrpanel.sock state -json
`)
}
