package main

import (
	"log/slog"
	"time"
)

// ============================================================================
// Panel - display-side system context
// ============================================================================
//
// Panel owns everything the display side remembers: the render cache, the
// peak-hold rings, the AF list, the control widgets and the frequency entry
// buffer. All methods run on the daemon goroutine; nothing here locks.
//
// Output goes two ways:
//   - display changes are rendered to the Surface immediately
//   - tuner commands are queued and drained by the daemon via TakeCommands
//
// ============================================================================

// Snapshotter captures the current display into an image file.
type Snapshotter interface {
	Capture(path string) error
}

// PresetStore persists the preset table.
type PresetStore interface {
	SavePresets(presets [presetCount]int) error
}

// PanelOptions is the display configuration the panel reads.
type PanelOptions struct {
	Unit            SignalUnit
	SignalOffset    float64
	Accessibility   bool
	UTC             bool
	ProgressivePS   bool
	PTYSet          PTYSet
	RDSReset        bool
	RDSResetTimeout time.Duration
	QuietWindow     time.Duration
	ScreenshotDir   string
	Presets         [presetCount]int
}

func defaultPanelOptions() PanelOptions {
	return PanelOptions{
		Unit:            UnitDBf,
		PTYSet:          PTYSetRDS,
		RDSResetTimeout: defaultRDSResetTimeout,
		QuietWindow:     defaultQuietWindow,
		ScreenshotDir:   defaultScreenshotDir,
	}
}

type panelControls struct {
	agc        *Widget
	deemphasis *Widget
	antenna    *Widget
	filter     *Widget // value is a bandwidth list index
	volume     *Widget
	squelch    *Widget
	rfGain     *Widget
	ifGain     *Widget
	daa        *Widget
	cw         *Widget
	ccw        *Widget
}

func (c *panelControls) all() []*Widget {
	return []*Widget{c.agc, c.deemphasis, c.antenna, c.filter, c.volume, c.squelch, c.rfGain, c.ifGain, c.daa, c.cw, c.ccw}
}

type Panel struct {
	opts  PanelOptions
	state *TunerState
	cache renderCache

	signalHold PeakHold
	cciHold    PeakHold
	aciHold    PeakHold
	af         []int

	controls panelControls
	entry    freqEntry

	surface     Surface
	snapshotter Snapshotter
	presets     PresetStore

	statusUntil time.Time
	pending     []Command

	clock  func() time.Time
	logger *slog.Logger
}

// NewPanel wires a panel around state. snapshotter and presets may be nil;
// the corresponding keys then report an error or skip persistence.
func NewPanel(opts PanelOptions, state *TunerState, surface Surface, snapshotter Snapshotter, presets PresetStore, logger *slog.Logger) *Panel {
	if state == nil {
		state = NewTunerState()
	}
	if surface == nil {
		surface = multiSurface(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.QuietWindow <= 0 {
		opts.QuietWindow = defaultQuietWindow
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = defaultScreenshotDir
	}

	p := &Panel{
		opts:        opts,
		state:       state,
		cache:       newRenderCache(),
		signalHold:  newPeakHold(),
		cciHold:     newPeakHold(),
		aciHold:     newPeakHold(),
		surface:     surface,
		snapshotter: snapshotter,
		presets:     presets,
		clock:       time.Now,
		logger:      logger,
	}
	p.initControls()
	return p
}

func (p *Panel) State() *TunerState { return p.state }

func (p *Panel) now() time.Time { return p.clock() }

// TakeCommands drains the commands queued since the last call.
func (p *Panel) TakeCommands() []Command {
	cmds := p.pending
	p.pending = nil
	return cmds
}

func (p *Panel) emit(cmd Command) {
	p.pending = append(p.pending, cmd)
}

func (p *Panel) initControls() {
	s := p.state
	c := &p.controls
	c.agc = newWidget(ControlAGC.String(), s.AGC)
	c.deemphasis = newWidget(ControlDeemphasis.String(), s.Deemphasis)
	c.antenna = newWidget(ControlAntenna.String(), s.Antenna)
	c.filter = newWidget(ControlFilter.String(), bandwidthIndex(s.Mode, s.Filter))
	c.filter.options = bandwidthLabels(s.Mode)
	c.volume = newWidget(ControlVolume.String(), s.Volume)
	c.squelch = newWidget(ControlSquelch.String(), s.Squelch)
	c.rfGain = newWidget("rf_gain", boolInt(s.RFGain))
	c.ifGain = newWidget("if_gain", boolInt(s.IFGain))
	c.daa = newWidget(ControlAlignment.String(), s.DAA)
	c.cw = newWidget("rotator_cw", boolInt(s.Rotator == RotatorCW))
	c.ccw = newWidget("rotator_ccw", boolInt(s.Rotator == RotatorCCW))

	c.agc.onChange = func(v int) { p.commandControl(ControlAGC, v) }
	c.deemphasis.onChange = func(v int) { p.commandControl(ControlDeemphasis, v) }
	c.antenna.onChange = func(v int) { p.commandControl(ControlAntenna, v) }
	c.filter.onChange = func(i int) { p.commandControl(ControlFilter, bandwidthAt(p.state.Mode, i)) }
	c.volume.onChange = func(v int) { p.commandControl(ControlVolume, v) }
	c.squelch.onChange = func(v int) { p.commandControl(ControlSquelch, v) }
	c.daa.onChange = func(v int) { p.commandControl(ControlAlignment, v) }

	gain := func(int) {
		v := 0
		if c.rfGain.Value() != 0 {
			v |= gainRF
		}
		if c.ifGain.Value() != 0 {
			v |= gainIF
		}
		p.commandControl(ControlGain, v)
	}
	c.rfGain.onChange = gain
	c.ifGain.onChange = gain

	// The rotator buttons are mutually exclusive.
	c.cw.onChange = func(v int) {
		if v != 0 {
			c.ccw.SetSilently(0)
			p.commandControl(ControlRotator, int(RotatorCW))
			return
		}
		p.commandControl(ControlRotator, int(RotatorIdle))
	}
	c.ccw.onChange = func(v int) {
		if v != 0 {
			c.cw.SetSilently(0)
			p.commandControl(ControlRotator, int(RotatorCCW))
			return
		}
		p.commandControl(ControlRotator, int(RotatorIdle))
	}

	for _, w := range c.all() {
		w.onRender = p.renderControl
	}
}

func (p *Panel) renderControl(w *Widget) {
	p.surface.Render(ControlUpdate{Control: w.Name(), Value: w.Value(), Sensitive: w.Sensitive()})
}

// commandControl is the only writer of commandedAt: it stamps the control and
// queues the command for the link.
func (p *Panel) commandControl(c Control, v int) {
	p.state.markCommanded(c, p.now())
	p.emit(CmdSetControl{Control: c, Value: v})
}

// SetControl moves a control as the user would, e.g. from IPC. Gain takes the
// wire bit encoding; the rotator takes a Rotator value.
func (p *Panel) SetControl(c Control, v int) {
	ctl := &p.controls
	switch c {
	case ControlAGC:
		ctl.agc.Set(v)
	case ControlDeemphasis:
		ctl.deemphasis.Set(v)
	case ControlAntenna:
		ctl.antenna.Set(v)
	case ControlFilter:
		ctl.filter.Set(bandwidthIndex(p.state.Mode, v))
	case ControlVolume:
		ctl.volume.Set(v)
	case ControlSquelch:
		ctl.squelch.Set(v)
	case ControlGain:
		ctl.rfGain.Set(boolInt(v&gainRF != 0))
		ctl.ifGain.Set(boolInt(v&gainIF != 0))
	case ControlAlignment:
		ctl.daa.Set(v)
	case ControlRotator:
		switch Rotator(v) {
		case RotatorCW:
			ctl.cw.Set(1)
		case RotatorCCW:
			ctl.ccw.Set(1)
		default:
			if ctl.cw.Value() != 0 {
				ctl.cw.Set(0)
			} else {
				ctl.ccw.Set(0)
			}
		}
	}
}

// tune queues a tune request. force re-sends the frequency even when the
// tuner is already there. Non-positive targets are ignored.
func (p *Panel) tune(freq int, force bool) {
	if freq <= 0 {
		return
	}
	p.emit(CmdTune{Freq: freq, Force: force})
}

// StartSession is called once the link is up: commanded timestamps are reset
// and every display field is refreshed.
func (p *Panel) StartSession() {
	p.state.SessionActive = true
	p.state.resetCommanded()
	p.surface.Render(ConnectionUpdate{State: "connected"})
	p.refreshAll()
}

// Disconnected ends the session and blanks the tuner-derived display.
func (p *Panel) Disconnected(detail string) {
	wasActive := p.state.SessionActive
	p.state.SessionActive = false
	if wasActive || detail != "" {
		p.surface.Render(ConnectionUpdate{State: "disconnected", Detail: detail})
	}
	p.state.SetFreq(0)
	p.state.ClearSignal()
	p.state.ClearRDS()
	p.refreshAll()
}

// Unauthorized reports a rejected link password and ends the session.
func (p *Panel) Unauthorized() {
	p.state.SessionActive = false
	p.surface.Render(ConnectionUpdate{State: "unauthorized"})
	p.surface.Render(DialogUpdate{Level: "error", Message: "Authentication with the tuner failed."})
}

func (p *Panel) refreshAll() {
	p.UpdateFreq()
	p.UpdateMode()
	p.UpdateFilter()
	p.UpdateRotator()
	p.refreshSignal()
	p.refreshRDS()
}

func (p *Panel) refreshSignal() {
	p.UpdateStereo()
	p.UpdateRDSFlag()
	p.UpdateSignal()
	p.UpdateCCI()
	p.UpdateACI()
}

func (p *Panel) refreshRDS() {
	p.UpdatePI()
	p.UpdateECC()
	p.UpdatePS()
	p.UpdateRT(0)
	p.UpdateRT(1)
	p.UpdateTP()
	p.UpdateTA()
	p.UpdateMS()
	p.UpdatePTY()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
