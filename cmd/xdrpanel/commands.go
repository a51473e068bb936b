package main

import "fmt"

// ==============================
// Commands (side effects)
// ==============================

// Command is a request for the tuner link, executed by the daemon loop.
type Command interface {
	commandMarker()
	String() string
}

// CmdTune tunes to Freq (kHz). Force re-sends the frequency even when the
// tuner is already on it, which resets its demodulator state.
type CmdTune struct {
	Freq  int
	Force bool
}

func (CmdTune) commandMarker() {}
func (c CmdTune) String() string {
	return fmt.Sprintf("CmdTune(freq=%d, force=%v)", c.Freq, c.Force)
}

// CmdSetControl writes one control value.
type CmdSetControl struct {
	Control Control
	Value   int
}

func (CmdSetControl) commandMarker() {}
func (c CmdSetControl) String() string {
	return fmt.Sprintf("CmdSetControl(%s=%d)", c.Control, c.Value)
}
