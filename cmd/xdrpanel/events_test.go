package main

import (
	"strings"
	"testing"
)

func TestEvents_KeyRoundTrip(t *testing.T) {
	cases := []KeyEvent{
		runeKey('s'),
		{Key: KeyF3, Mods: ModShift},
		{Key: KeyRune, Rune: 'a', Mods: ModCtrl},
		{Key: KeyKP7},
		{Key: KeyPageUp},
	}

	for _, k := range cases {
		data, err := MarshalEvent(KeyPressed{Key: k})
		if err != nil {
			t.Fatalf("marshal %s: %v", k, err)
		}
		ev, err := UnmarshalEvent(data)
		if err != nil {
			t.Fatalf("unmarshal %s: %v", data, err)
		}
		got, ok := ev.(KeyPressed)
		if !ok || got.Key != k {
			t.Fatalf("round trip %s = %#v", k, ev)
		}
	}
}

func TestEvents_KeyWithoutNameIsRune(t *testing.T) {
	ev, err := UnmarshalEvent([]byte(`{"type":"key","data":{"rune":"b"}}`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := ev.(KeyPressed).Key; got != runeKey('b') {
		t.Fatalf("key = %#v", got)
	}
}

func TestEvents_RDSFlagsDefaultAbsent(t *testing.T) {
	ev, err := UnmarshalEvent([]byte(`{"type":"rds_flags","data":{"tp":1}}`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := RDSFlagsObserved{TP: 1, TA: noData, MS: noData, PTY: noData}
	if ev.(RDSFlagsObserved) != want {
		t.Fatalf("flags = %#v, want %#v", ev, want)
	}
}

func TestEvents_ControlAndMode(t *testing.T) {
	ev, err := UnmarshalEvent([]byte(`{"type":"set_control","data":{"control":"volume","value":70}}`))
	if err != nil {
		t.Fatalf("unmarshal set_control: %v", err)
	}
	if ev != (ControlRequested{Control: ControlVolume, Value: 70}) {
		t.Fatalf("set_control = %#v", ev)
	}

	data, err := MarshalEvent(ModeObserved{Mode: ModeAM})
	if err != nil {
		t.Fatalf("marshal mode: %v", err)
	}
	ev, err = UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("unmarshal mode: %v", err)
	}
	if ev != (ModeObserved{Mode: ModeAM}) {
		t.Fatalf("mode = %#v", ev)
	}
}

func TestEvents_Errors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"type":"warp"}`, "unknown event type"},
		{`{"type":"set_control","data":{"control":"bass","value":1}}`, "ControlRequested"},
		{`{"type":"key","data":{"key":"rune","rune":"ab"}}`, "KeyPressed"},
		{`{"type":"mode","data":{"mode":"SSB"}}`, "ModeObserved"},
		{`not json`, "envelope"},
	}

	for _, tc := range cases {
		_, err := UnmarshalEvent([]byte(tc.in))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("UnmarshalEvent(%s) error = %v, want containing %q", tc.in, err, tc.want)
		}
	}
}

func TestEvents_MarshalRejectsInternalEvents(t *testing.T) {
	if _, err := MarshalEvent(RequestStateSnapshot{}); err == nil {
		t.Fatalf("expected an error for a snapshot request")
	}
}
