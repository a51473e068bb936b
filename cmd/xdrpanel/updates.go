package main

import (
	"fmt"
	"strings"
)

// ============================================================================
// Display updates
// ============================================================================
//
// The panel decides what to show (text, tiers, variants); a Surface decides
// how to paint it. Every Update is a value, so surfaces can forward, store or
// serialize them freely.
//
// ============================================================================

// Surface receives display updates. Render is called from the daemon
// goroutine and must not block.
type Surface interface {
	Render(u Update)
}

// Update is a single display change. Kind names the display field and is the
// "type" of the WebSocket message that carries it.
type Update interface {
	Kind() string
}

// Tier is the semantic emphasis of a text segment.
type Tier int

const (
	TierNormal Tier = iota
	// insensitive grey
	TierDim
	// light grey
	TierFaint
	TierStereo
	TierRDS
	// explicit grey level in Segment.Gray
	TierGray
)

var tierNames = []string{"normal", "dim", "faint", "stereo", "rds", "gray"}

func (t Tier) String() string {
	if int(t) >= 0 && int(t) < len(tierNames) {
		return tierNames[t]
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tier) UnmarshalText(b []byte) error {
	for i, name := range tierNames {
		if name == string(b) {
			*t = Tier(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tier %q", string(b))
}

// Segment is a run of text with one emphasis.
type Segment struct {
	Text string `json:"text"`
	Tier Tier   `json:"tier"`
	Gray uint8  `json:"gray,omitempty"`
}

func segmentsText(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

// FreqUpdate shows the tuned frequency. Freq <= 0 renders blank.
type FreqUpdate struct {
	Freq int    `json:"freq"`
	Text string `json:"text"`
}

func (FreqUpdate) Kind() string { return "freq" }

// ModeUpdate shows the demodulation mode.
type ModeUpdate struct {
	Mode                string   `json:"mode"`
	DeemphasisSensitive bool     `json:"deemphasis_sensitive"`
	Bandwidths          []string `json:"bandwidths"`
}

func (ModeUpdate) Kind() string { return "mode" }

// IndicatorUpdate shows a short flag (stereo, rds, tp, ta, ms).
type IndicatorUpdate struct {
	Name     string    `json:"-"`
	Segments []Segment `json:"segments"`
}

func (u IndicatorUpdate) Kind() string { return u.Name }

// PIVariant is the PI display style chosen from the error level.
type PIVariant int

const (
	PIClean    PIVariant = iota // level 0
	PILight                     // level 1: light "?"
	PIDim                       // level 2: dim "?"
	PIVeryDim                   // level 3: dim "⁇"
)

// PIUpdate shows the program identification code.
type PIUpdate struct {
	PI       int       `json:"pi"`
	Variant  PIVariant `json:"variant"`
	Segments []Segment `json:"segments"`
}

func (PIUpdate) Kind() string { return "pi" }

// PTYUpdate shows the program type name.
type PTYUpdate struct {
	PTY  int    `json:"pty"`
	Name string `json:"name"`
}

func (PTYUpdate) Kind() string { return "pty" }

// ECCUpdate shows the extended country code as an ISO country.
type ECCUpdate struct {
	ECC     int    `json:"ecc"`
	Country string `json:"country"`
}

func (ECCUpdate) Kind() string { return "ecc" }

// PSUpdate shows the program service name. Intensity is 0 for an error-free
// character, otherwise the grey level it is painted with.
type PSUpdate struct {
	Text      string       `json:"text"`
	Intensity [psLen]uint8 `json:"intensity"`
	Segments  []Segment    `json:"segments"`
}

func (PSUpdate) Kind() string { return "ps" }

// RTUpdate shows one of the two radiotext slots.
type RTUpdate struct {
	Slot      int    `json:"slot"`
	Text      string `json:"text"`
	Available bool   `json:"available"`
}

func (u RTUpdate) Kind() string {
	if u.Slot == 1 {
		return "rt_b"
	}
	return "rt_a"
}

// SignalUpdate shows the signal strength text and bar.
type SignalUpdate struct {
	Unknown  bool      `json:"unknown"`
	Max      int       `json:"max"`
	Current  int       `json:"current"`
	Unit     string    `json:"unit"`
	Fraction float64   `json:"fraction"`
	Segments []Segment `json:"segments"`
}

func (SignalUpdate) Kind() string { return "signal" }

// InterferenceUpdate shows a CCI or ACI level bar (0..100).
type InterferenceUpdate struct {
	Metric   string  `json:"-"`
	Unknown  bool    `json:"unknown"`
	Level    int     `json:"level"`
	Fraction float64 `json:"fraction"`
}

func (u InterferenceUpdate) Kind() string { return u.Metric }

// AFUpdate adds one alternative frequency to the AF list.
type AFUpdate struct {
	Freq  int    `json:"freq"`
	Label string `json:"label"`
}

func (AFUpdate) Kind() string { return "af_added" }

// AFClearedUpdate empties the AF list.
type AFClearedUpdate struct{}

func (AFClearedUpdate) Kind() string { return "af_cleared" }

// FilterUpdate shows the selected bandwidth.
type FilterUpdate struct {
	Bandwidth int    `json:"bandwidth"`
	Index     int    `json:"index"`
	Label     string `json:"label"`
}

func (FilterUpdate) Kind() string { return "filter" }

// RotatorUpdate shows the rotator direction and whether the device is waiting
// for it to start moving.
type RotatorUpdate struct {
	Direction string `json:"direction"`
	Waiting   bool   `json:"waiting"`
}

func (RotatorUpdate) Kind() string { return "rotator" }

// ScanPoint is one spectrum scan sample.
type ScanPoint struct {
	Freq   int     `json:"freq"`
	Signal float64 `json:"signal"`
}

// ScanUpdate shows a completed spectrum scan.
type ScanUpdate struct {
	Points []ScanPoint `json:"points"`
}

func (ScanUpdate) Kind() string { return "scan" }

// ControlUpdate reports a control widget position.
type ControlUpdate struct {
	Control   string `json:"control"`
	Value     int    `json:"value"`
	Sensitive bool   `json:"sensitive"`
}

func (u ControlUpdate) Kind() string { return "control_" + u.Control }

// EntryUpdate shows the frequency entry buffer.
type EntryUpdate struct {
	Text string `json:"text"`
}

func (EntryUpdate) Kind() string { return "entry" }

// StatusUpdate shows the status line (clock or a transient message).
type StatusUpdate struct {
	Text  string `json:"text"`
	Flash bool   `json:"flash"`
}

func (StatusUpdate) Kind() string { return "status" }

// DialogUpdate asks the surface to show a message to the user.
type DialogUpdate struct {
	Level   string `json:"level"` // "error" | "info"
	Message string `json:"message"`
}

func (DialogUpdate) Kind() string { return "dialog" }

// ConnectionUpdate reports a link session change.
type ConnectionUpdate struct {
	State  string `json:"state"` // "connected" | "disconnected" | "unauthorized"
	Detail string `json:"detail,omitempty"`
}

func (ConnectionUpdate) Kind() string { return "connection" }

// multiSurface fans an update out to several surfaces.
type multiSurface []Surface

func (m multiSurface) Render(u Update) {
	for _, s := range m {
		if s != nil {
			s.Render(u)
		}
	}
}
