package main

import (
	"fmt"
	"strings"
)

// Key is a non-character key, or KeyRune for a printable character.
type Key int

const (
	KeyNone Key = iota
	KeyRune
	KeyPageUp
	KeyPageDown
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEnter
	KeyBackspace
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyKP0
	KeyKP1
	KeyKP2
	KeyKP3
	KeyKP4
	KeyKP5
	KeyKP6
	KeyKP7
	KeyKP8
	KeyKP9
)

var keyNames = map[Key]string{
	KeyRune:      "rune",
	KeyPageUp:    "page_up",
	KeyPageDown:  "page_down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyEnter:     "enter",
	KeyBackspace: "backspace",
}

func (k Key) String() string {
	switch {
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("f%d", int(k-KeyF1)+1)
	case k >= KeyKP0 && k <= KeyKP9:
		return fmt.Sprintf("kp_%d", int(k-KeyKP0))
	}
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "none"
}

func parseKey(s string) (Key, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range keyNames {
		if name == s {
			return k, nil
		}
	}
	var n int
	if _, err := fmt.Sscanf(s, "f%d", &n); err == nil && n >= 1 && n <= 12 {
		return KeyF1 + Key(n-1), nil
	}
	if _, err := fmt.Sscanf(s, "kp_%d", &n); err == nil && n >= 0 && n <= 9 {
		return KeyKP0 + Key(n), nil
	}
	return KeyNone, fmt.Errorf("unknown key %q", s)
}

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModCtrl
)

// KeyEvent is one key press as delivered by an input source.
type KeyEvent struct {
	Key  Key
	Rune rune
	Mods Modifier
}

func runeKey(r rune) KeyEvent { return KeyEvent{Key: KeyRune, Rune: r} }

func (e KeyEvent) Shift() bool { return e.Mods&ModShift != 0 }
func (e KeyEvent) Ctrl() bool  { return e.Mods&ModCtrl != 0 }

// isRune reports whether e is the character r, ignoring letter case.
func (e KeyEvent) isRune(r rune) bool {
	if e.Key != KeyRune {
		return false
	}
	return strings.EqualFold(string(e.Rune), string(r))
}

// functionKey returns the zero-based F-key index.
func (e KeyEvent) functionKey() (int, bool) {
	if e.Key >= KeyF1 && e.Key <= KeyF12 {
		return int(e.Key - KeyF1), true
	}
	return 0, false
}

// digit returns the digit carried by a number row or keypad key.
func (e KeyEvent) digit() (byte, bool) {
	switch {
	case e.Key >= KeyKP0 && e.Key <= KeyKP9:
		return byte('0' + e.Key - KeyKP0), true
	case e.Key == KeyRune && e.Rune >= '0' && e.Rune <= '9':
		return byte(e.Rune), true
	}
	return 0, false
}

func (e KeyEvent) keypad() bool { return e.Key >= KeyKP0 && e.Key <= KeyKP9 }

func (e KeyEvent) String() string {
	var b strings.Builder
	if e.Ctrl() {
		b.WriteString("ctrl+")
	}
	if e.Shift() {
		b.WriteString("shift+")
	}
	if e.Key == KeyRune {
		b.WriteRune(e.Rune)
	} else {
		b.WriteString(e.Key.String())
	}
	return b.String()
}

// keyEventJSON is the wire form used by IPC clients.
type keyEventJSON struct {
	Key   string `json:"key"`
	Rune  string `json:"rune,omitempty"`
	Shift bool   `json:"shift,omitempty"`
	Ctrl  bool   `json:"ctrl,omitempty"`
}

func (e KeyEvent) toJSON() keyEventJSON {
	j := keyEventJSON{Key: e.Key.String(), Shift: e.Shift(), Ctrl: e.Ctrl()}
	if e.Key == KeyRune {
		j.Rune = string(e.Rune)
	}
	return j
}

func (j keyEventJSON) toKeyEvent() (KeyEvent, error) {
	var ev KeyEvent
	if j.Key == "" && j.Rune != "" {
		j.Key = "rune"
	}
	k, err := parseKey(j.Key)
	if err != nil {
		return ev, err
	}
	ev.Key = k
	if k == KeyRune {
		r := []rune(j.Rune)
		if len(r) != 1 {
			return ev, fmt.Errorf("rune key needs exactly one character, got %q", j.Rune)
		}
		ev.Rune = r[0]
	}
	if j.Shift {
		ev.Mods |= ModShift
	}
	if j.Ctrl {
		ev.Mods |= ModCtrl
	}
	return ev, nil
}
