package main

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Change-gated update functions. Each one reads TunerState, compares the
// derived display value with its render cache entry and renders only on a
// difference, so calling any of them twice in a row renders at most once.

func (p *Panel) UpdateFreq() {
	f := p.state.Freq
	if !p.cache.freq.changed(f) {
		return
	}

	p.ClearAF()
	p.signalHold.Reset()
	p.cciHold.Reset()
	p.aciHold.Reset()

	text := " "
	if f > 0 {
		text = fmt.Sprintf("%.3f", float64(f)/1000)
	}
	p.surface.Render(FreqUpdate{Freq: f, Text: text})
}

func (p *Panel) UpdateMode() {
	m := p.state.Mode
	if !p.cache.mode.changed(m) {
		return
	}

	labels := bandwidthLabels(m)
	p.controls.filter.SetOptionsSilently(labels, bandwidthIndex(m, p.state.Filter))
	p.controls.deemphasis.SetSensitive(m == ModeFM)

	p.surface.Render(ModeUpdate{
		Mode:                m.String(),
		DeemphasisSensitive: m == ModeFM,
		Bandwidths:          labels,
	})
}

func (p *Panel) UpdateStereo() {
	s := p.state
	if !p.cache.stereo.changed(stereoRender{stereo: s.Stereo, forcedMono: s.ForcedMono}) {
		return
	}

	text := "ST"
	if s.ForcedMono {
		text = "MO"
	}
	var seg Segment
	switch {
	case s.Stereo:
		seg = Segment{Text: text, Tier: TierStereo}
	case p.opts.Accessibility:
		seg = Segment{Text: "  "}
	default:
		seg = Segment{Text: text, Tier: TierDim}
	}
	p.surface.Render(IndicatorUpdate{Name: "stereo", Segments: []Segment{seg}})
}

func (p *Panel) UpdateRDSFlag() {
	on := p.state.RDS
	if !p.cache.rdsFlag.changed(on) {
		return
	}

	var seg Segment
	switch {
	case on:
		seg = Segment{Text: "RDS", Tier: TierRDS}
	case p.opts.Accessibility:
		seg = Segment{Text: "   "}
	default:
		seg = Segment{Text: "RDS", Tier: TierDim}
	}
	p.surface.Render(IndicatorUpdate{Name: "rds", Segments: []Segment{seg}})
}

// piVariantFor maps an error level to its display variant.
func piVariantFor(level int) PIVariant {
	switch {
	case level >= 3:
		return PIVeryDim
	case level == 2:
		return PIDim
	case level == 1:
		return PILight
	default:
		return PIClean
	}
}

func (p *Panel) UpdatePI() {
	s := p.state
	if !p.cache.pi.changed(piRender{pi: s.PI, errLevel: s.PIErrLevel}) {
		return
	}

	if s.PI < 0 {
		p.surface.Render(PIUpdate{PI: noData, Segments: []Segment{{Text: " "}}})
		return
	}

	v := piVariantFor(s.PIErrLevel)
	segs := []Segment{{Text: fmt.Sprintf("%04X", s.PI)}}
	switch v {
	case PIVeryDim:
		segs = append(segs, Segment{Text: "⁇", Tier: TierDim})
	case PIDim:
		segs = append(segs, Segment{Text: "?", Tier: TierDim})
	case PILight:
		segs = append(segs, Segment{Text: "?", Tier: TierFaint})
	}
	p.surface.Render(PIUpdate{PI: s.PI, Variant: v, Segments: segs})
}

// flagSegments renders a tri-state RDS flag: 1 lit, 0 dimmed, absent blank.
func (p *Panel) flagSegments(text string, v int) []Segment {
	switch v {
	case 1:
		return []Segment{{Text: text}}
	case 0:
		if !p.opts.Accessibility {
			return []Segment{{Text: text, Tier: TierDim}}
		}
	}
	return []Segment{{Text: strings.Repeat(" ", len(text))}}
}

func (p *Panel) UpdateTP() {
	if !p.cache.tp.changed(p.state.TP) {
		return
	}
	p.surface.Render(IndicatorUpdate{Name: "tp", Segments: p.flagSegments("TP", p.state.TP)})
}

func (p *Panel) UpdateTA() {
	if !p.cache.ta.changed(p.state.TA) {
		return
	}
	p.surface.Render(IndicatorUpdate{Name: "ta", Segments: p.flagSegments("TA", p.state.TA)})
}

func (p *Panel) UpdateMS() {
	ms := p.state.MS
	if !p.cache.ms.changed(ms) {
		return
	}

	var segs []Segment
	switch {
	case ms == 0 && p.opts.Accessibility:
		segs = []Segment{{Text: "Speech"}}
	case ms == 0:
		segs = []Segment{{Text: "M", Tier: TierDim}, {Text: "S"}}
	case ms == 1 && p.opts.Accessibility:
		segs = []Segment{{Text: "Music "}}
	case ms == 1:
		segs = []Segment{{Text: "M"}, {Text: "S", Tier: TierDim}}
	case p.opts.Accessibility:
		segs = []Segment{{Text: "      "}}
	default:
		segs = []Segment{{Text: "  "}}
	}
	p.surface.Render(IndicatorUpdate{Name: "ms", Segments: segs})
}

func (p *Panel) UpdatePTY() {
	pty := p.state.PTY
	if !p.cache.pty.changed(pty) {
		return
	}
	name := ptyName(p.opts.PTYSet, pty)
	if name == "" {
		pty = noData
		name = " "
	}
	p.surface.Render(PTYUpdate{PTY: pty, Name: name})
}

func (p *Panel) UpdateECC() {
	country, ok := eccCountry(p.state.ECC, p.state.PI)
	if !p.cache.ecc.changed(country) {
		return
	}
	ecc := p.state.ECC
	if !ok {
		ecc = noData
	}
	p.surface.Render(ECCUpdate{ECC: ecc, Country: country})
}

// psIntensity is the grey level for a PS character with e errors; 0 means the
// character is painted with the normal foreground.
func psIntensity(e int) uint8 {
	if e <= 0 {
		return 0
	}
	v := psErrorBase + psErrorStep*e
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

func (p *Panel) UpdatePS() {
	s := p.state
	next := psRender{avail: s.PSAvail}
	if s.PSAvail {
		next.text = s.PS
		next.errs = s.PSErr
	}
	if !p.cache.ps.changed(next) {
		return
	}

	if !s.PSAvail {
		p.surface.Render(PSUpdate{Segments: []Segment{{Text: " "}}})
		return
	}

	open, closing := "[", "]"
	if p.opts.ProgressivePS {
		open, closing = "(", ")"
	}

	text := s.PSString()
	u := PSUpdate{Text: text}
	u.Segments = append(u.Segments, Segment{Text: open, Tier: TierDim})
	for i := 0; i < psLen; i++ {
		c := psIntensity(s.PSErr[i])
		u.Intensity[i] = c
		seg := Segment{Text: text[i : i+1]}
		if c != 0 {
			seg.Tier = TierGray
			seg.Gray = c
		}
		u.Segments = append(u.Segments, seg)
	}
	u.Segments = append(u.Segments, Segment{Text: closing, Tier: TierDim})
	p.surface.Render(u)
}

func (p *Panel) UpdateRT(slot int) {
	if slot < 0 || slot > 1 {
		return
	}
	s := p.state
	next := rtRender{avail: s.RTAvail[slot]}
	if next.avail {
		next.text = s.RT[slot]
	}
	if !p.cache.rt[slot].changed(next) {
		return
	}
	p.surface.Render(RTUpdate{Slot: slot, Text: next.text, Available: next.avail})
}

// UpdateAF appends freq (kHz) to the AF list unless it is already there.
func (p *Panel) UpdateAF(freq int) {
	if freq <= 0 {
		return
	}
	for _, f := range p.af {
		if f == freq {
			return
		}
	}
	p.af = append(p.af, freq)
	p.surface.Render(AFUpdate{Freq: freq, Label: fmt.Sprintf("%.1f", float64(freq)/1000)})
}

func (p *Panel) ClearAF() {
	if len(p.af) == 0 {
		return
	}
	p.af = p.af[:0]
	p.surface.Render(AFClearedUpdate{})
}

// AFList returns a copy of the AF list in insertion order.
func (p *Panel) AFList() []int {
	return append([]int(nil), p.af...)
}

func (p *Panel) UpdateSignal() {
	s := p.state
	if !p.cache.signalSeq.changed(s.signalSeq) {
		return
	}
	peak, refresh := p.signalHold.Push(s.Signal)
	if !refresh {
		return
	}

	if peak == noData {
		if p.cache.signal.changed(signalRender{unknown: true}) {
			p.surface.Render(SignalUpdate{Unknown: true, Unit: string(p.opts.Unit), Segments: []Segment{{Text: " "}}})
		}
		return
	}

	next := signalRender{
		max:      int(math.Round(signalLevel(s.SignalMax, p.opts.Unit, p.opts.SignalOffset))),
		curr:     int(math.Round(signalLevel(peak, p.opts.Unit, p.opts.SignalOffset))),
		fraction: signalFraction(s.Signal),
	}
	if !p.cache.signal.changed(next) {
		return
	}
	p.surface.Render(SignalUpdate{
		Max:      next.max,
		Current:  next.curr,
		Unit:     string(p.opts.Unit),
		Fraction: next.fraction,
		Segments: signalSegments(s.Mode, p.opts.Unit, p.opts.SignalOffset, next.max, next.curr),
	})
}

func (p *Panel) UpdateCCI() {
	if !p.cache.cciSeq.changed(p.state.interferenceSeq) {
		return
	}
	p.updateInterference("cci", p.state.CCI, &p.cciHold, &p.cache.cci)
}

func (p *Panel) UpdateACI() {
	if !p.cache.aciSeq.changed(p.state.interferenceSeq) {
		return
	}
	p.updateInterference("aci", p.state.ACI, &p.aciHold, &p.cache.aci)
}

// updateInterference shows the peak-held level. Like the signal meter, the
// text and bar only move at refresh points of the ring.
func (p *Panel) updateInterference(metric string, v int, hold *PeakHold, cache *cached[interferenceRender]) {
	peak, refresh := hold.Push(float64(v))
	if !refresh {
		return
	}

	next := interferenceRender{unknown: true}
	if peak != noData {
		next = interferenceRender{level: int(peak), fraction: float64(v) / 100}
	}
	if !cache.changed(next) {
		return
	}
	p.surface.Render(InterferenceUpdate{
		Metric:   metric,
		Unknown:  next.unknown,
		Level:    next.level,
		Fraction: next.fraction,
	})
}

func (p *Panel) UpdateFilter() {
	bw := p.state.Filter
	if !p.cache.filter.changed(bw) {
		return
	}
	p.surface.Render(FilterUpdate{
		Bandwidth: bw,
		Index:     bandwidthIndex(p.state.Mode, bw),
		Label:     bandwidthLabel(bw),
	})
}

func (p *Panel) UpdateRotator() {
	s := p.state
	if !p.cache.rotator.changed(rotatorRender{dir: s.Rotator, waiting: s.RotatorWaiting}) {
		return
	}
	p.surface.Render(RotatorUpdate{Direction: s.Rotator.String(), Waiting: s.RotatorWaiting})
}

// UpdateScan forwards a completed scan unless it repeats the last one shown.
func (p *Panel) UpdateScan(points []ScanPoint) {
	if len(points) == 0 || slices.Equal(points, p.cache.scan) {
		return
	}
	p.cache.scan = append(p.cache.scan[:0], points...)
	p.surface.Render(ScanUpdate{Points: append([]ScanPoint(nil), points...)})
}

func (p *Panel) renderStatus(text string, flash bool) {
	if !p.cache.status.changed(text) {
		return
	}
	p.surface.Render(StatusUpdate{Text: text, Flash: flash})
}

func (p *Panel) renderEntry() {
	if !p.cache.entry.changed(p.entry.text()) {
		return
	}
	p.surface.Render(EntryUpdate{Text: p.entry.text()})
}
