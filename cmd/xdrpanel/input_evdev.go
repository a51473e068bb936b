package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// inputEvent represents a Linux input event structure
// struct input_event { struct timeval time; __u16 type; __u16 code; __s32 value; };
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// Linux input event types and key codes (from <linux/input.h>)
const (
	EV_KEY = 0x01

	KEY_BACKSPACE  = 14
	KEY_LEFTBRACE  = 26
	KEY_RIGHTBRACE = 27
	KEY_ENTER      = 28
	KEY_LEFTCTRL   = 29
	KEY_LEFTSHIFT  = 42
	KEY_BACKSLASH  = 43
	KEY_DOT        = 52
	KEY_RIGHTSHIFT = 54
	KEY_F1         = 59
	KEY_F10        = 68
	KEY_KPDOT      = 83
	KEY_F11        = 87
	KEY_F12        = 88
	KEY_KPENTER    = 96
	KEY_RIGHTCTRL  = 97
	KEY_UP         = 103
	KEY_PAGEUP     = 104
	KEY_LEFT       = 105
	KEY_RIGHT      = 106
	KEY_DOWN       = 108
	KEY_PAGEDOWN   = 109
)

// Input event value constants
const (
	evValueRelease = 0
	evValuePress   = 1
	evValueRepeat  = 2
)

// evdevRunes maps printable key codes to their unshifted character.
var evdevRunes = map[uint16]rune{
	2: '1', 3: '2', 4: '3', 5: '4', 6: '5', 7: '6', 8: '7', 9: '8', 10: '9', 11: '0',
	16: 'q', 17: 'w', 18: 'e', 19: 'r', 20: 't', 21: 'y', 22: 'u', 23: 'i', 24: 'o', 25: 'p',
	30: 'a', 31: 's', 32: 'd', 33: 'f', 34: 'g', 35: 'h', 36: 'j', 37: 'k', 38: 'l',
	44: 'z', 45: 'x', 46: 'c', 47: 'v', 48: 'b', 49: 'n', 50: 'm',
	KEY_LEFTBRACE: '[', KEY_RIGHTBRACE: ']', KEY_BACKSLASH: '\\', KEY_DOT: '.', KEY_KPDOT: '.',
}

// evdevKeypad maps keypad key codes to keypad digits.
var evdevKeypad = map[uint16]Key{
	71: KeyKP7, 72: KeyKP8, 73: KeyKP9,
	75: KeyKP4, 76: KeyKP5, 77: KeyKP6,
	79: KeyKP1, 80: KeyKP2, 81: KeyKP3,
	82: KeyKP0,
}

var evdevKeys = map[uint16]Key{
	KEY_BACKSPACE: KeyBackspace,
	KEY_ENTER:     KeyEnter,
	KEY_KPENTER:   KeyEnter,
	KEY_UP:        KeyUp,
	KEY_DOWN:      KeyDown,
	KEY_LEFT:      KeyLeft,
	KEY_RIGHT:     KeyRight,
	KEY_PAGEUP:    KeyPageUp,
	KEY_PAGEDOWN:  KeyPageDown,
	KEY_F11:       KeyF11,
	KEY_F12:       KeyF12,
}

// evdevDecoder turns raw key events into KeyEvents, tracking held modifiers.
type evdevDecoder struct {
	shift int
	ctrl  int
}

// decode returns the key event for a press or auto-repeat. Releases and
// modifier keys only update the modifier state.
func (d *evdevDecoder) decode(ev inputEvent) (KeyEvent, bool) {
	if ev.Type != EV_KEY {
		return KeyEvent{}, false
	}

	switch ev.Code {
	case KEY_LEFTSHIFT, KEY_RIGHTSHIFT:
		d.shift = trackModifier(d.shift, ev.Value)
		return KeyEvent{}, false
	case KEY_LEFTCTRL, KEY_RIGHTCTRL:
		d.ctrl = trackModifier(d.ctrl, ev.Value)
		return KeyEvent{}, false
	}

	if ev.Value != evValuePress && ev.Value != evValueRepeat {
		return KeyEvent{}, false
	}

	var out KeyEvent
	switch {
	case ev.Code >= KEY_F1 && ev.Code <= KEY_F10:
		out.Key = KeyF1 + Key(ev.Code-KEY_F1)
	default:
		if k, ok := evdevKeys[ev.Code]; ok {
			out.Key = k
		} else if k, ok := evdevKeypad[ev.Code]; ok {
			out.Key = k
		} else if r, ok := evdevRunes[ev.Code]; ok {
			out = runeKey(r)
		} else {
			return KeyEvent{}, false
		}
	}

	if d.shift > 0 {
		out.Mods |= ModShift
	}
	if d.ctrl > 0 {
		out.Mods |= ModCtrl
	}
	return out, true
}

func trackModifier(held int, value int32) int {
	switch value {
	case evValuePress:
		return held + 1
	case evValueRelease:
		if held > 0 {
			return held - 1
		}
	}
	return held
}

// runEvdevInput reads keyboard devices and forwards key presses to the daemon.
// It returns when ctx is canceled or a device fails.
func runEvdevInput(ctx context.Context, paths []string, events chan<- Event, logger *slog.Logger) error {
	files := make([]*os.File, 0, len(paths))
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open input device %s: %w", p, err)
		}
		files = append(files, f)
	}

	raw := make(chan inputEvent, 64)
	readErr := make(chan error, 1)
	go readInputEventsEpoll(files, raw, readErr)

	logger.Info("evdev input started", "devices", paths)

	var dec evdevDecoder
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return fmt.Errorf("input reader stopped: %w", err)
		case ev := <-raw:
			key, ok := dec.decode(ev)
			if !ok {
				continue
			}
			logger.Debug("evdev key", "key", key.String())
			if !sendEvent(ctx, events, KeyPressed{Key: key}) {
				return nil
			}
		}
	}
}
