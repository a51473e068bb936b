package main

import (
	"strconv"
	"strings"
)

// freqEntry is the frequency text-entry buffer. It has no cancel state: the
// text survives focus changes until Enter commits it.
type freqEntry struct {
	buf string
}

func (e *freqEntry) text() string { return e.buf }

// commit parses and clears the buffer. With a dot the fraction is padded or
// truncated to three digits (MHz to kHz); without one the value is taken as
// MHz and "000" is appended.
func (e *freqEntry) commit() (int, bool) {
	buf := e.buf
	e.buf = ""
	if buf == "" {
		return 0, false
	}

	var digits string
	if i := strings.IndexByte(buf, '.'); i >= 0 {
		frac := buf[i+1:] + "000"
		digits = buf[:i] + frac[:3]
	} else {
		digits = buf + "000"
	}
	freq, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return freq, true
}

// key applies a non-Enter, non-Ctrl key. Keys that are not digits, keypad
// digits, Backspace or '.' are dropped.
func (e *freqEntry) key(ev KeyEvent) {
	d, isDigit := ev.digit()
	isDot := ev.Key == KeyRune && ev.Rune == '.'
	isBackspace := ev.Key == KeyBackspace
	if !isDigit && !isDot && !isBackspace {
		return
	}

	hasDot := strings.IndexByte(e.buf, '.') >= 0
	if hasDot && isDot {
		return
	}

	// Typing a keypad digit after the integer part of a plausible MHz value
	// starts the fraction.
	if !hasDot && ev.keypad() {
		if n := e.integerPart(); n >= keypadFractionMin && n <= keypadFractionMax {
			e.append("." + string(d))
			return
		}
	}

	switch {
	case isBackspace:
		if len(e.buf) > 0 {
			e.buf = e.buf[:len(e.buf)-1]
		}
	case isDot:
		e.append(".")
	default:
		e.append(string(d))
	}
}

func (e *freqEntry) append(s string) {
	if len(e.buf)+len(s) > maxEntryLen {
		return
	}
	e.buf += s
}

// integerPart parses the leading digits like atoi; an empty buffer is 0.
func (e *freqEntry) integerPart() int {
	end := 0
	for end < len(e.buf) && e.buf[end] >= '0' && e.buf[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(e.buf[:end])
	if err != nil {
		return 0
	}
	return n
}
