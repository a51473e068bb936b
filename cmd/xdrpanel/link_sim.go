package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// ============================================================================
// Simulated tuner
// ============================================================================
//
// simLink behaves like a tuner on the other end of a slow link: commands take
// effect after a latency, the signal is noisy and stations carry RDS that
// arrives a few characters at a time. It exists so the panel can be run and
// tested without hardware.
//
// ============================================================================

type SimConfig struct {
	Latency        time.Duration
	SampleInterval time.Duration
	StartFreq      int
	Seed           int64
}

type simStation struct {
	Freq  int
	Level float64 // dBf
	PI    int
	ECC   int
	PTY   int
	TP    int
	PS    string
	RT    string
	AF    []int
}

var simStations = []simStation{
	{Freq: 87600, Level: 62, PI: 0x3201, ECC: 0xE2, PTY: 10, TP: 1, PS: "RADIO 1 ", RT: "Radio One - the best music all day", AF: []int{88300, 90100, 94500}},
	{Freq: 94500, Level: 48, PI: 0x3201, ECC: 0xE2, PTY: 10, TP: 1, PS: "RADIO 1 ", RT: "Radio One - the best music all day", AF: []int{87600, 88300}},
	{Freq: 98300, Level: 71, PI: 0xD318, ECC: 0xE0, PTY: 1, TP: 0, PS: "NEWS 24 ", RT: "News every hour, weather every 15 minutes", AF: []int{101200}},
	{Freq: 101200, Level: 35, PI: 0xD318, ECC: 0xE0, PTY: 1, TP: 0, PS: "NEWS 24 ", RT: "News every hour, weather every 15 minutes"},
	{Freq: 104800, Level: 26, PI: 0x5C02, ECC: 0xE1, PTY: 15, TP: 1, PS: "CLASSIC ", RT: "Symphony hour"},
	{Freq: 69260, Level: 40, PI: 0x7201, ECC: 0xE0, PTY: 3, TP: 0, PS: "OIRT FM ", RT: "Legacy band broadcast"},
}

func findSimStation(freq int) (simStation, bool) {
	for _, s := range simStations {
		if s.Freq == freq {
			return s, true
		}
	}
	return simStation{}, false
}

type simRequest struct {
	tune    bool
	freq    int
	force   bool
	control Control
	value   int
}

type simScheduled struct {
	due time.Time
	ev  Event
}

type simLink struct {
	cfg    SimConfig
	logger *slog.Logger

	requests  chan simRequest
	closed    chan struct{}
	closeOnce sync.Once

	// Owned by the Run goroutine.
	rng      *rand.Rand
	freq     int
	station  simStation
	onAir    bool
	psPos    int
	rdsCycle int
	afPos    int
	pending  []simScheduled
}

func newSimLink(cfg SimConfig, logger *slog.Logger) *simLink {
	if cfg.Latency <= 0 {
		cfg.Latency = 50 * time.Millisecond
	}
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 66 * time.Millisecond
	}
	if cfg.StartFreq <= 0 {
		cfg.StartFreq = 87600
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &simLink{
		cfg:      cfg,
		logger:   logger,
		requests: make(chan simRequest, 32),
		closed:   make(chan struct{}),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (l *simLink) submit(req simRequest) error {
	select {
	case <-l.closed:
		return errLinkClosed
	default:
	}
	select {
	case l.requests <- req:
		return nil
	default:
		return errors.New("simulated tuner busy")
	}
}

func (l *simLink) Tune(freq int, force bool) error {
	return l.submit(simRequest{tune: true, freq: freq, force: force})
}

func (l *simLink) SetControl(c Control, v int) error {
	return l.submit(simRequest{control: c, value: v})
}

func (l *simLink) Close() error {
	l.closeOnce.Do(func() { close(l.closed) })
	return nil
}

func (l *simLink) Run(ctx context.Context, events chan<- Event) error {
	if !sendEvent(ctx, events, SessionStarted{}) {
		return ctx.Err()
	}
	l.retune(l.cfg.StartFreq)
	if !sendEvent(ctx, events, FreqObserved{Freq: l.freq}) || !sendEvent(ctx, events, ModeObserved{Mode: simMode(l.freq)}) {
		return ctx.Err()
	}

	ticker := time.NewTicker(l.cfg.SampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-l.closed:
			sendEvent(ctx, events, LinkDisconnected{Reason: "closed"})
			return errLinkClosed

		case req := <-l.requests:
			l.schedule(req, time.Now())

		case now := <-ticker.C:
			if !l.deliverDue(ctx, events, now) {
				return ctx.Err()
			}
			for _, ev := range l.sample() {
				if !sendEvent(ctx, events, ev) {
					return ctx.Err()
				}
			}
		}
	}
}

func (l *simLink) schedule(req simRequest, now time.Time) {
	due := now.Add(l.cfg.Latency)
	if req.tune {
		if req.freq == l.freq && !req.force {
			return
		}
		l.pending = append(l.pending, simScheduled{due: due, ev: FreqObserved{Freq: req.freq}})
		return
	}
	if req.control == ControlRotator {
		dir := Rotator(req.value)
		l.pending = append(l.pending,
			simScheduled{due: due, ev: RotatorObserved{Direction: dir, Waiting: dir != RotatorIdle}},
			simScheduled{due: due.Add(time.Second), ev: RotatorObserved{Direction: dir}},
		)
		return
	}
	l.pending = append(l.pending, simScheduled{due: due, ev: ControlObserved{Control: req.control, Value: req.value}})
}

func (l *simLink) deliverDue(ctx context.Context, events chan<- Event, now time.Time) bool {
	kept := l.pending[:0]
	var due []Event
	for _, p := range l.pending {
		if now.Before(p.due) {
			kept = append(kept, p)
			continue
		}
		due = append(due, p.ev)
	}
	l.pending = kept

	for _, ev := range due {
		if f, ok := ev.(FreqObserved); ok {
			l.retune(f.Freq)
			if !sendEvent(ctx, events, ModeObserved{Mode: simMode(f.Freq)}) {
				return false
			}
		}
		if !sendEvent(ctx, events, ev) {
			return false
		}
	}
	return true
}

func simMode(freq int) Mode {
	if freq < 30000 {
		return ModeAM
	}
	return ModeFM
}

func (l *simLink) retune(freq int) {
	l.freq = freq
	l.station, l.onAir = findSimStation(freq)
	l.psPos = 0
	l.rdsCycle = 0
	l.afPos = 0
}

// sample produces one signal measurement and, on a station, the next RDS group.
func (l *simLink) sample() []Event {
	level := 8 + l.rng.NormFloat64()
	if l.onAir {
		level = l.station.Level + 1.5*l.rng.NormFloat64()
	}
	if level < 0 {
		level = 0
	}

	evs := []Event{
		SignalObserved{Signal: level, Stereo: l.onAir && level > 35, RDS: l.onAir},
		InterferenceObserved{CCI: l.rng.Intn(8), ACI: l.rng.Intn(15)},
	}
	if !l.onAir || simMode(l.freq) != ModeFM {
		return evs
	}
	return append(evs, l.rdsGroup()...)
}

func (l *simLink) rdsGroup() []Event {
	st := l.station
	l.rdsCycle++

	errLevel := 0
	if l.rng.Intn(10) == 0 {
		errLevel = 1 + l.rng.Intn(3)
	}
	evs := []Event{
		PIObserved{PI: st.PI, ErrLevel: errLevel},
		RDSFlagsObserved{TP: st.TP, TA: 0, MS: 1, PTY: st.PTY},
	}

	// PS arrives two characters per group; missing characters carry errors.
	if l.psPos < psLen {
		l.psPos += 2
	}
	var ps PSObserved
	text := []byte(fmt.Sprintf("%-8s", st.PS))[:psLen]
	for i := range text {
		if i >= l.psPos {
			text[i] = ' '
			ps.Errors[i] = 10
			continue
		}
		ps.Errors[i] = l.rng.Intn(2) * l.rng.Intn(3)
	}
	ps.Text = string(text)
	evs = append(evs, ps)

	if l.rdsCycle%4 == 0 {
		evs = append(evs, ECCObserved{ECC: st.ECC})
	}
	if l.rdsCycle%8 == 0 && st.RT != "" {
		evs = append(evs, RTObserved{Slot: 0, Text: st.RT})
	}
	if len(st.AF) > 0 && l.rdsCycle%3 == 0 {
		evs = append(evs, AFObserved{Freq: st.AF[l.afPos%len(st.AF)]})
		l.afPos++
	}
	return evs
}
