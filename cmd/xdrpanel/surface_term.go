package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const termStatusRows = 4

var termEscape = struct {
	cursorUp  string
	eraseLine string
}{
	cursorUp:  fmt.Sprintf("%c[1A", 0x1b),
	eraseLine: fmt.Sprintf("%c[2K", 0x1b),
}

type termData struct {
	freq      string
	mode      string
	stereo    []Segment
	rds       []Segment
	pi        []Segment
	ps        []Segment
	tp        []Segment
	ta        []Segment
	ms        []Segment
	pty       string
	ecc       string
	rt        [2]string
	signal    []Segment
	sigFrac   float64
	cci       string
	aci       string
	filter    string
	rotator   string
	waiting   bool
	entry     string
	status    string
	conn      string
	message   string
	messageAt time.Time
	dirty     bool
}

// termSurface keeps the latest display fields and prints them as a few
// colored status lines on a ticker.
type termSurface struct {
	out      io.Writer
	interval time.Duration
	realtime bool

	mutex   sync.Mutex
	data    termData
	printed bool

	colors struct {
		dim     *color.Color
		faint   *color.Color
		stereo  *color.Color
		rds     *color.Color
		bar     *color.Color
		waiting *color.Color
		errMsg  *color.Color
	}
}

func newTermSurface(out *os.File, interval time.Duration, noColor bool) *termSurface {
	s := &termSurface{
		out:      out,
		interval: interval,
		realtime: isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()),
	}
	if !s.realtime && s.interval < time.Second {
		s.interval = time.Second
	}
	if noColor || !s.realtime {
		color.NoColor = true
	}

	s.colors.dim = color.New(color.FgHiBlack)
	s.colors.faint = color.New(color.FgWhite)
	s.colors.stereo = color.New(color.FgHiRed, color.Bold)
	s.colors.rds = color.New(color.FgHiCyan, color.Bold)
	s.colors.bar = color.New(color.FgHiGreen)
	s.colors.waiting = color.New(color.FgHiWhite)
	s.colors.waiting.Add(color.BgYellow)
	s.colors.errMsg = color.New(color.FgHiWhite)
	s.colors.errMsg.Add(color.BgRed)
	return s
}

func (s *termSurface) Render(u Update) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	d := &s.data
	switch u := u.(type) {
	case FreqUpdate:
		d.freq = u.Text
	case ModeUpdate:
		d.mode = u.Mode
	case IndicatorUpdate:
		switch u.Name {
		case "stereo":
			d.stereo = u.Segments
		case "rds":
			d.rds = u.Segments
		case "tp":
			d.tp = u.Segments
		case "ta":
			d.ta = u.Segments
		case "ms":
			d.ms = u.Segments
		}
	case PIUpdate:
		d.pi = u.Segments
	case PSUpdate:
		d.ps = u.Segments
	case PTYUpdate:
		d.pty = u.Name
	case ECCUpdate:
		d.ecc = u.Country
	case RTUpdate:
		if u.Slot == 0 || u.Slot == 1 {
			d.rt[u.Slot] = u.Text
		}
	case SignalUpdate:
		d.signal = u.Segments
		d.sigFrac = u.Fraction
	case InterferenceUpdate:
		text := "?"
		if !u.Unknown {
			text = fmt.Sprintf("%d%%", u.Level)
		}
		if u.Metric == "cci" {
			d.cci = text
		} else {
			d.aci = text
		}
	case FilterUpdate:
		d.filter = u.Label
	case RotatorUpdate:
		d.rotator = u.Direction
		d.waiting = u.Waiting
	case EntryUpdate:
		d.entry = u.Text
	case StatusUpdate:
		d.status = u.Text
	case ConnectionUpdate:
		d.conn = u.State
		if u.Detail != "" {
			d.conn += " (" + u.Detail + ")"
		}
	case DialogUpdate:
		d.message = u.Message
		if u.Level == "error" {
			d.message = s.colors.errMsg.Sprint(" " + u.Message + " ")
		}
		d.messageAt = time.Now()
	default:
		return
	}
	d.dirty = true
}

// paint renders segments with their tier colors.
func (s *termSurface) paint(segs []Segment) string {
	var b strings.Builder
	for _, seg := range segs {
		switch seg.Tier {
		case TierDim:
			b.WriteString(s.colors.dim.Sprint(seg.Text))
		case TierFaint:
			b.WriteString(s.colors.faint.Sprint(seg.Text))
		case TierStereo:
			b.WriteString(s.colors.stereo.Sprint(seg.Text))
		case TierRDS:
			b.WriteString(s.colors.rds.Sprint(seg.Text))
		case TierGray:
			b.WriteString(s.grayColor(seg.Gray).Sprint(seg.Text))
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// grayColor picks the closest 16-color grey for an RGB grey level.
func (s *termSurface) grayColor(level uint8) *color.Color {
	switch {
	case level >= 200:
		return s.colors.faint
	case level >= 150:
		return color.New(color.FgWhite, color.Faint)
	default:
		return s.colors.dim
	}
}

func (s *termSurface) bar(fraction float64, width int) string {
	n := int(fraction*float64(width) + 0.5)
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	return s.colors.bar.Sprint(strings.Repeat("█", n)) + s.colors.dim.Sprint(strings.Repeat("░", width-n))
}

func (s *termSurface) lines() []string {
	d := &s.data

	rotator := d.rotator
	if d.waiting {
		rotator = s.colors.waiting.Sprint(" " + rotator + " ")
	}
	line1 := fmt.Sprintf("%9s %-2s %s %s  %s %s", d.freq, d.mode, s.paint(d.stereo), s.paint(d.rds),
		s.bar(d.sigFrac, 20), s.paint(d.signal))
	line2 := fmt.Sprintf("PI %s  %s  %s %s %s  %-16s %s", s.paint(d.pi), s.paint(d.ps),
		s.paint(d.tp), s.paint(d.ta), s.paint(d.ms), d.pty, d.ecc)
	line3 := fmt.Sprintf("RT %s | %s", d.rt[0], d.rt[1])
	line4 := fmt.Sprintf("CCI %-4s ACI %-4s BW %-9s ROT %s  [%s] %s  %s", d.cci, d.aci, d.filter, rotator,
		d.entry, d.status, d.conn)

	if d.message != "" && time.Since(d.messageAt) < 5*time.Second {
		line4 += "  " + d.message
	}
	return []string{line1, line2, line3, line4}
}

func (s *termSurface) print() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.data.dirty && !s.realtime {
		return
	}
	s.data.dirty = false
	lines := s.lines()

	if s.realtime {
		if s.printed {
			fmt.Fprint(s.out, strings.Repeat(termEscape.cursorUp, termStatusRows))
		}
		for _, l := range lines {
			fmt.Fprint(s.out, termEscape.eraseLine, l, "\r\n")
		}
		s.printed = true
		return
	}

	t := time.Now().Format("2006-01-02T15:04:05 Z0700")
	for _, l := range lines {
		fmt.Fprintln(s.out, t, l)
	}
}

// loop prints the status lines until done is closed.
func (s *termSurface) loop(done <-chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.print()
		case <-done:
			s.print()
			return
		}
	}
}
