package main

import (
	"fmt"
	"math"
	"time"
)

// ============================================================================
// Tuner State Store
// ============================================================================
//
// TunerState is the authoritative last-known view of the device. It is owned by
// the daemon goroutine: link observations write the device fields, the command
// path writes commandedAt, and the update functions only read.
//
// ============================================================================

// Mode is the demodulation mode of the tuner.
type Mode int

const (
	ModeFM Mode = iota
	ModeAM
)

func (m Mode) String() string {
	switch m {
	case ModeFM:
		return "FM"
	case ModeAM:
		return "AM"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func parseMode(s string) (Mode, error) {
	switch s {
	case "FM", "fm":
		return ModeFM, nil
	case "AM", "am":
		return ModeAM, nil
	default:
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// Rotator is the antenna rotator direction.
type Rotator int

const (
	RotatorIdle Rotator = iota
	RotatorCW
	RotatorCCW
)

func (r Rotator) String() string {
	switch r {
	case RotatorIdle:
		return "idle"
	case RotatorCW:
		return "cw"
	case RotatorCCW:
		return "ccw"
	default:
		return fmt.Sprintf("Rotator(%d)", int(r))
	}
}

// Control identifies a tuner parameter that can be commanded from the panel.
type Control int

const (
	ControlAGC Control = iota
	ControlDeemphasis
	ControlAntenna
	ControlFilter
	ControlVolume
	ControlSquelch
	ControlGain
	ControlAlignment
	ControlRotator
	controlCount
)

var controlNames = [controlCount]string{
	ControlAGC:        "agc",
	ControlDeemphasis: "deemphasis",
	ControlAntenna:    "antenna",
	ControlFilter:     "filter",
	ControlVolume:     "volume",
	ControlSquelch:    "squelch",
	ControlGain:       "gain",
	ControlAlignment:  "alignment",
	ControlRotator:    "rotator",
}

func (c Control) String() string {
	if c >= 0 && c < controlCount {
		return controlNames[c]
	}
	return fmt.Sprintf("Control(%d)", int(c))
}

func parseControl(s string) (Control, error) {
	for i, name := range controlNames {
		if name == s {
			return Control(i), nil
		}
	}
	return 0, fmt.Errorf("unknown control %q", s)
}

// Gain bits as carried by ControlGain values.
const (
	gainRF = 1 << 0
	gainIF = 1 << 1
)

// TunerState holds device parameters. Integer fields use -1 (noData) for
// "absent"; Signal uses noData as well.
type TunerState struct {
	Freq     int // kHz
	PrevFreq int
	Mode     Mode

	Signal    float64 // dBf
	SignalMax float64
	CCI       int
	ACI       int

	Stereo     bool
	ForcedMono bool
	RDS        bool

	PI         int
	PIErrLevel int // 0..3
	TP         int
	TA         int
	MS         int
	PTY        int
	ECC        int
	PS         [psLen]byte
	PSErr      [psLen]int
	PSAvail    bool
	RT         [2]string
	RTAvail    [2]bool

	// RDSResetAt is the time RDS data was last received.
	RDSResetAt time.Time

	AGC        int
	Deemphasis int
	Antenna    int
	Filter     int // bandwidth in Hz, -1 = adaptive
	Volume     int
	Squelch    int
	RFGain     bool
	IFGain     bool
	DAA        int

	Rotator        Rotator
	RotatorWaiting bool

	SessionActive bool

	commandedAt [controlCount]time.Time

	// Sample counters let the peak-hold displays tell a new sample from a
	// repeated update call.
	signalSeq       uint64
	interferenceSeq uint64
}

// NewTunerState returns a state with every RDS and metric field absent.
func NewTunerState() *TunerState {
	s := &TunerState{
		Filter: -1,
	}
	s.ClearSignal()
	s.ClearRDS()
	return s
}

// SetFreq records a new tuned frequency. A change clears signal and RDS data,
// since both belong to the previous station.
func (s *TunerState) SetFreq(freq int) {
	if freq == s.Freq {
		return
	}
	if s.Freq > 0 {
		s.PrevFreq = s.Freq
	}
	s.Freq = freq
	s.ClearSignal()
	s.ClearRDS()
}

// SetMode records a demodulation mode change.
func (s *TunerState) SetMode(m Mode) {
	if m == s.Mode {
		return
	}
	s.Mode = m
	s.ClearSignal()
	s.ClearRDS()
}

func (s *TunerState) ClearSignal() {
	s.signalSeq++
	s.interferenceSeq++
	s.Signal = noData
	s.SignalMax = noData
	s.CCI = noData
	s.ACI = noData
	s.Stereo = false
	s.ForcedMono = false
	s.RDS = false
}

func (s *TunerState) ClearRDS() {
	s.PI = noData
	s.PIErrLevel = 0
	s.TP = noData
	s.TA = noData
	s.MS = noData
	s.PTY = noData
	s.ECC = noData
	for i := range s.PS {
		s.PS[i] = ' '
		s.PSErr[i] = 0
	}
	s.PSAvail = false
	s.RT = [2]string{}
	s.RTAvail = [2]bool{}
	s.RDSResetAt = time.Time{}
}

// ObserveSignal stores a new signal sample and tracks the running maximum.
func (s *TunerState) ObserveSignal(v float64) {
	s.signalSeq++
	if math.IsNaN(v) || v == noData {
		s.Signal = noData
		return
	}
	s.Signal = v
	if s.SignalMax == noData || v > s.SignalMax {
		s.SignalMax = v
	}
}

// ObserveInterference stores a CCI/ACI sample pair (0..100, -1 unknown).
func (s *TunerState) ObserveInterference(cci, aci int) {
	s.interferenceSeq++
	s.CCI = cci
	s.ACI = aci
}

// ControlValue returns the authoritative value of c in its wire encoding.
func (s *TunerState) ControlValue(c Control) int {
	switch c {
	case ControlAGC:
		return s.AGC
	case ControlDeemphasis:
		return s.Deemphasis
	case ControlAntenna:
		return s.Antenna
	case ControlFilter:
		return s.Filter
	case ControlVolume:
		return s.Volume
	case ControlSquelch:
		return s.Squelch
	case ControlGain:
		v := 0
		if s.RFGain {
			v |= gainRF
		}
		if s.IFGain {
			v |= gainIF
		}
		return v
	case ControlAlignment:
		return s.DAA
	case ControlRotator:
		return int(s.Rotator)
	default:
		return 0
	}
}

// SetControlValue writes an observed control value. It is the ingestion path
// and never touches commandedAt.
func (s *TunerState) SetControlValue(c Control, v int) {
	switch c {
	case ControlAGC:
		s.AGC = v
	case ControlDeemphasis:
		s.Deemphasis = v
	case ControlAntenna:
		s.Antenna = v
	case ControlFilter:
		s.Filter = v
	case ControlVolume:
		s.Volume = v
	case ControlSquelch:
		s.Squelch = v
	case ControlGain:
		s.RFGain = v&gainRF != 0
		s.IFGain = v&gainIF != 0
	case ControlAlignment:
		s.DAA = v
	case ControlRotator:
		s.Rotator = Rotator(v)
	}
}

func (s *TunerState) CommandedAt(c Control) time.Time {
	if c < 0 || c >= controlCount {
		return time.Time{}
	}
	return s.commandedAt[c]
}

func (s *TunerState) markCommanded(c Control, at time.Time) {
	if c < 0 || c >= controlCount {
		return
	}
	s.commandedAt[c] = at
}

func (s *TunerState) resetCommanded() {
	s.commandedAt = [controlCount]time.Time{}
}

// PSString returns the program service name with non-printable bytes blanked.
func (s *TunerState) PSString() string {
	b := make([]byte, psLen)
	for i, c := range s.PS {
		if c < 0x20 || c > 0x7e {
			c = ' '
		}
		b[i] = c
	}
	return string(b)
}
