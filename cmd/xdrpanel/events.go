package main

import (
	"encoding/json"
	"fmt"
	"time"
)

// ============================================================================
// Events
// ============================================================================
//
// Everything the daemon reacts to arrives as an Event on a single channel:
// link observations, user input from any source, the service tick and
// snapshot requests from the state WebSocket.
//
// ============================================================================

type Event interface {
	eventMarker()
}

// Tick drives the periodic service pass.
type Tick struct {
	Now time.Time
}

func (Tick) eventMarker() {}

// ---------------------------------------------------------------------------
// User input
// ---------------------------------------------------------------------------

// KeyPressed is a key press from the terminal, an input device or IPC.
type KeyPressed struct {
	Key KeyEvent
}

func (KeyPressed) eventMarker() {}

// TuneRequested asks for a frequency directly.
type TuneRequested struct {
	Freq  int  `json:"freq"`
	Force bool `json:"force,omitempty"`
}

func (TuneRequested) eventMarker() {}

// ControlRequested moves a control as the user would.
type ControlRequested struct {
	Control Control
	Value   int
}

func (ControlRequested) eventMarker() {}

// ---------------------------------------------------------------------------
// Link observations
// ---------------------------------------------------------------------------

type SessionStarted struct{}

func (SessionStarted) eventMarker() {}

type LinkDisconnected struct {
	Reason string `json:"reason,omitempty"`
}

func (LinkDisconnected) eventMarker() {}

type LinkUnauthorized struct{}

func (LinkUnauthorized) eventMarker() {}

type FreqObserved struct {
	Freq int `json:"freq"`
}

func (FreqObserved) eventMarker() {}

type ModeObserved struct {
	Mode Mode
}

func (ModeObserved) eventMarker() {}

// SignalObserved is one signal sample with its flags. Signal is in dBf;
// noData marks a missing sample.
type SignalObserved struct {
	Signal     float64 `json:"signal"`
	Stereo     bool    `json:"stereo"`
	ForcedMono bool    `json:"forced_mono"`
	RDS        bool    `json:"rds"`
}

func (SignalObserved) eventMarker() {}

type InterferenceObserved struct {
	CCI int `json:"cci"`
	ACI int `json:"aci"`
}

func (InterferenceObserved) eventMarker() {}

type PIObserved struct {
	PI       int `json:"pi"`
	ErrLevel int `json:"err_level"`
}

func (PIObserved) eventMarker() {}

// RDSFlagsObserved carries group 0A/0B flags; -1 leaves a field absent.
type RDSFlagsObserved struct {
	TP  int `json:"tp"`
	TA  int `json:"ta"`
	MS  int `json:"ms"`
	PTY int `json:"pty"`
}

func (RDSFlagsObserved) eventMarker() {}

type ECCObserved struct {
	ECC int `json:"ecc"`
}

func (ECCObserved) eventMarker() {}

// PSObserved carries the whole PS buffer with per-character error counts.
type PSObserved struct {
	Text   string     `json:"text"`
	Errors [psLen]int `json:"errors"`
}

func (PSObserved) eventMarker() {}

type RTObserved struct {
	Slot int    `json:"slot"`
	Text string `json:"text"`
}

func (RTObserved) eventMarker() {}

// AFObserved reports one alternative frequency, either in kHz or as the raw
// RDS AF code when Freq is zero.
type AFObserved struct {
	Freq int `json:"freq,omitempty"`
	Code int `json:"code,omitempty"`
}

func (AFObserved) eventMarker() {}

type ControlObserved struct {
	Control Control
	Value   int
}

func (ControlObserved) eventMarker() {}

type RotatorObserved struct {
	Direction Rotator `json:"direction"`
	Waiting   bool    `json:"waiting"`
}

func (RotatorObserved) eventMarker() {}

type ScanObserved struct {
	Points []ScanPoint `json:"points"`
}

func (ScanObserved) eventMarker() {}

// CommandFailed reports a command the link could not execute.
type CommandFailed struct {
	Command Command
	Err     error
}

func (CommandFailed) eventMarker() {}

// RequestStateSnapshot asks the daemon for the current view model. The reply
// channel must be buffered.
type RequestStateSnapshot struct {
	Reply chan<- StateSnapshot
}

func (RequestStateSnapshot) eventMarker() {}

// ============================================================================
// JSON Encoding/Decoding Support
// ============================================================================

// EventEnvelope wraps an event with a type discriminator for JSON marshaling
type EventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type modeJSON struct {
	Mode string `json:"mode"`
}

type controlJSON struct {
	Control string `json:"control"`
	Value   int    `json:"value"`
}

// UnmarshalEvent deserializes a JSON event envelope into a concrete Event
func UnmarshalEvent(data []byte) (Event, error) {
	var env EventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Type {
	case "key":
		var j keyEventJSON
		if err := json.Unmarshal(env.Data, &j); err != nil {
			return nil, fmt.Errorf("unmarshal KeyPressed: %w", err)
		}
		k, err := j.toKeyEvent()
		if err != nil {
			return nil, fmt.Errorf("unmarshal KeyPressed: %w", err)
		}
		return KeyPressed{Key: k}, nil

	case "tune":
		var e TuneRequested
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal TuneRequested: %w", err)
		}
		return e, nil

	case "set_control":
		c, v, err := unmarshalControl(env.Data)
		if err != nil {
			return nil, fmt.Errorf("unmarshal ControlRequested: %w", err)
		}
		return ControlRequested{Control: c, Value: v}, nil

	case "session_started":
		return SessionStarted{}, nil

	case "disconnected":
		var e LinkDisconnected
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &e); err != nil {
				return nil, fmt.Errorf("unmarshal LinkDisconnected: %w", err)
			}
		}
		return e, nil

	case "unauthorized":
		return LinkUnauthorized{}, nil

	case "freq":
		var e FreqObserved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal FreqObserved: %w", err)
		}
		return e, nil

	case "mode":
		var j modeJSON
		if err := json.Unmarshal(env.Data, &j); err != nil {
			return nil, fmt.Errorf("unmarshal ModeObserved: %w", err)
		}
		m, err := parseMode(j.Mode)
		if err != nil {
			return nil, fmt.Errorf("unmarshal ModeObserved: %w", err)
		}
		return ModeObserved{Mode: m}, nil

	case "signal":
		var e SignalObserved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal SignalObserved: %w", err)
		}
		return e, nil

	case "interference":
		var e InterferenceObserved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal InterferenceObserved: %w", err)
		}
		return e, nil

	case "pi":
		var e PIObserved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal PIObserved: %w", err)
		}
		return e, nil

	case "rds_flags":
		e := RDSFlagsObserved{TP: noData, TA: noData, MS: noData, PTY: noData}
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal RDSFlagsObserved: %w", err)
		}
		return e, nil

	case "ecc":
		var e ECCObserved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal ECCObserved: %w", err)
		}
		return e, nil

	case "ps":
		var e PSObserved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal PSObserved: %w", err)
		}
		return e, nil

	case "rt":
		var e RTObserved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal RTObserved: %w", err)
		}
		return e, nil

	case "af":
		var e AFObserved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal AFObserved: %w", err)
		}
		return e, nil

	case "control":
		c, v, err := unmarshalControl(env.Data)
		if err != nil {
			return nil, fmt.Errorf("unmarshal ControlObserved: %w", err)
		}
		return ControlObserved{Control: c, Value: v}, nil

	case "rotator":
		var e RotatorObserved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal RotatorObserved: %w", err)
		}
		return e, nil

	case "scan":
		var e ScanObserved
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return nil, fmt.Errorf("unmarshal ScanObserved: %w", err)
		}
		return e, nil

	default:
		return nil, fmt.Errorf("unknown event type: %q", env.Type)
	}
}

func unmarshalControl(data json.RawMessage) (Control, int, error) {
	var j controlJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return 0, 0, err
	}
	c, err := parseControl(j.Control)
	if err != nil {
		return 0, 0, err
	}
	return c, j.Value, nil
}

// MarshalEvent serializes an Event into a JSON envelope with type discriminator
func MarshalEvent(e Event) ([]byte, error) {
	var (
		env     EventEnvelope
		payload any
	)

	switch e := e.(type) {
	case KeyPressed:
		env.Type = "key"
		payload = e.Key.toJSON()
	case TuneRequested:
		env.Type = "tune"
		payload = e
	case ControlRequested:
		env.Type = "set_control"
		payload = controlJSON{Control: e.Control.String(), Value: e.Value}
	case SessionStarted:
		env.Type = "session_started"
	case LinkDisconnected:
		env.Type = "disconnected"
		payload = e
	case LinkUnauthorized:
		env.Type = "unauthorized"
	case FreqObserved:
		env.Type = "freq"
		payload = e
	case ModeObserved:
		env.Type = "mode"
		payload = modeJSON{Mode: e.Mode.String()}
	case SignalObserved:
		env.Type = "signal"
		payload = e
	case InterferenceObserved:
		env.Type = "interference"
		payload = e
	case PIObserved:
		env.Type = "pi"
		payload = e
	case RDSFlagsObserved:
		env.Type = "rds_flags"
		payload = e
	case ECCObserved:
		env.Type = "ecc"
		payload = e
	case PSObserved:
		env.Type = "ps"
		payload = e
	case RTObserved:
		env.Type = "rt"
		payload = e
	case AFObserved:
		env.Type = "af"
		payload = e
	case ControlObserved:
		env.Type = "control"
		payload = controlJSON{Control: e.Control.String(), Value: e.Value}
	case RotatorObserved:
		env.Type = "rotator"
		payload = e
	case ScanObserved:
		env.Type = "scan"
		payload = e
	default:
		return nil, fmt.Errorf("unsupported event type: %T", e)
	}

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", env.Type, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}
