package main

import "time"

// Tick runs the periodic service pass: RDS expiry, status flash expiry and
// control reconciliation. Only the status clock runs without a session.
func (p *Panel) Tick(now time.Time) {
	p.expireStatus(now)
	if !p.state.SessionActive {
		return
	}
	p.expireRDS(now)
	p.Reconcile(now)
}

func (p *Panel) expireRDS(now time.Time) {
	s := p.state
	if !p.opts.RDSReset || s.RDSResetAt.IsZero() {
		return
	}
	if now.Sub(s.RDSResetAt) <= p.opts.RDSResetTimeout {
		return
	}
	s.ClearRDS()
	p.refreshRDS()
}

func (p *Panel) expireStatus(now time.Time) {
	if now.Before(p.statusUntil) {
		return
	}
	p.statusUntil = time.Time{}
	p.renderStatus(p.clockText(now), false)
}

func (p *Panel) clockText(now time.Time) string {
	if p.opts.UTC {
		return now.UTC().Format("15:04:05") + " UTC"
	}
	return now.Local().Format("15:04:05")
}

// quiet reports whether c has not been commanded within the quiet window.
func (p *Panel) quiet(c Control, now time.Time) bool {
	return now.Sub(p.state.CommandedAt(c)) > p.opts.QuietWindow
}

// Reconcile moves every control whose displayed position disagrees with the
// tuner back to the tuner's value, unless the user commanded that control
// recently. Writes are silent, so no command is echoed back to the tuner.
func (p *Panel) Reconcile(now time.Time) {
	s := p.state
	c := &p.controls

	reconcileWidget := func(ctl Control, w *Widget, want int) {
		if w.Value() != want && p.quiet(ctl, now) {
			w.SetSilently(want)
		}
	}

	reconcileWidget(ControlAGC, c.agc, s.AGC)
	reconcileWidget(ControlDeemphasis, c.deemphasis, s.Deemphasis)
	reconcileWidget(ControlAntenna, c.antenna, s.Antenna)
	reconcileWidget(ControlFilter, c.filter, bandwidthIndex(s.Mode, s.Filter))
	reconcileWidget(ControlVolume, c.volume, s.Volume)
	reconcileWidget(ControlSquelch, c.squelch, s.Squelch)

	if (c.rfGain.Value() != boolInt(s.RFGain) || c.ifGain.Value() != boolInt(s.IFGain)) && p.quiet(ControlGain, now) {
		c.rfGain.SetSilently(boolInt(s.RFGain))
		c.ifGain.SetSilently(boolInt(s.IFGain))
	}

	reconcileWidget(ControlAlignment, c.daa, s.DAA)

	if p.quiet(ControlRotator, now) {
		p.reconcileRotator()
	}
}

func (p *Panel) reconcileRotator() {
	c := &p.controls
	cw, ccw := c.cw.Value() != 0, c.ccw.Value() != 0
	switch {
	case !cw && !ccw && p.state.Rotator == RotatorIdle:
		return
	case cw && p.state.Rotator == RotatorCW:
		return
	case ccw && p.state.Rotator == RotatorCCW:
		return
	}
	c.cw.SetSilently(boolInt(p.state.Rotator == RotatorCW))
	c.ccw.SetSilently(boolInt(p.state.Rotator == RotatorCCW))
}
