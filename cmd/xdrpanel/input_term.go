package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/eiannone/keyboard"
)

var termKeys = map[keyboard.Key]Key{
	keyboard.KeyArrowUp:    KeyUp,
	keyboard.KeyArrowDown:  KeyDown,
	keyboard.KeyArrowLeft:  KeyLeft,
	keyboard.KeyArrowRight: KeyRight,
	keyboard.KeyPgup:       KeyPageUp,
	keyboard.KeyPgdn:       KeyPageDown,
	keyboard.KeyEnter:      KeyEnter,
	keyboard.KeyBackspace:  KeyBackspace,
	keyboard.KeyBackspace2: KeyBackspace,
	keyboard.KeyF1:         KeyF1,
	keyboard.KeyF2:         KeyF2,
	keyboard.KeyF3:         KeyF3,
	keyboard.KeyF4:         KeyF4,
	keyboard.KeyF5:         KeyF5,
	keyboard.KeyF6:         KeyF6,
	keyboard.KeyF7:         KeyF7,
	keyboard.KeyF8:         KeyF8,
	keyboard.KeyF9:         KeyF9,
	keyboard.KeyF10:        KeyF10,
	keyboard.KeyF11:        KeyF11,
	keyboard.KeyF12:        KeyF12,
}

// translateTermKey maps a terminal key to a KeyEvent. Terminals do not report
// Shift on function keys or keypad digits, so those arrive unmodified.
func translateTermKey(char rune, key keyboard.Key) (KeyEvent, bool) {
	if char != 0 {
		return runeKey(char), true
	}
	if k, ok := termKeys[key]; ok {
		return KeyEvent{Key: k}, true
	}
	if key >= keyboard.KeyCtrlA && key <= keyboard.KeyCtrlZ {
		ev := runeKey(rune('a' + int(key-keyboard.KeyCtrlA)))
		ev.Mods |= ModCtrl
		return ev, true
	}
	return KeyEvent{}, false
}

// runTermInput reads keys from the controlling terminal. Ctrl+C and Esc call
// quit. It returns once the terminal is closed or ctx is canceled.
func runTermInput(ctx context.Context, events chan<- Event, quit func(), logger *slog.Logger) error {
	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("open terminal keyboard: %w", err)
	}

	closeOnce := &sync.Once{}
	closeKeyboard := func() {
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}
	defer closeKeyboard()

	go func() {
		<-ctx.Done()
		closeKeyboard()
	}()

	for {
		char, key, err := keyboard.GetKey()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read terminal key: %w", err)
		}

		if key == keyboard.KeyCtrlC || key == keyboard.KeyEsc {
			logger.Info("quit requested from terminal")
			quit()
			return nil
		}

		ev, ok := translateTermKey(char, key)
		if !ok {
			continue
		}
		if !sendEvent(ctx, events, KeyPressed{Key: ev}) {
			return nil
		}
	}
}
