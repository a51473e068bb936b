package main

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

// recordingSurface keeps every update it is asked to render.
type recordingSurface struct {
	updates []Update
}

func (r *recordingSurface) Render(u Update) {
	r.updates = append(r.updates, u)
}

func (r *recordingSurface) reset() { r.updates = nil }

func (r *recordingSurface) count(kind string) int {
	n := 0
	for _, u := range r.updates {
		if u.Kind() == kind {
			n++
		}
	}
	return n
}

func (r *recordingSurface) last(kind string) (Update, bool) {
	for i := len(r.updates) - 1; i >= 0; i-- {
		if r.updates[i].Kind() == kind {
			return r.updates[i], true
		}
	}
	return nil, false
}

// fakeSnapshotter records capture paths and fails when err is set.
type fakeSnapshotter struct {
	paths []string
	err   error
}

func (f *fakeSnapshotter) Capture(path string) error {
	f.paths = append(f.paths, path)
	return f.err
}

// fakePresetStore records every saved preset table.
type fakePresetStore struct {
	saved [][presetCount]int
	err   error
}

func (f *fakePresetStore) SavePresets(p [presetCount]int) error {
	f.saved = append(f.saved, p)
	return f.err
}

var errTest = errors.New("test failure")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testPanel bundles a panel with its fakes and a settable clock.
type testPanel struct {
	*Panel
	surface *recordingSurface
	snaps   *fakeSnapshotter
	store   *fakePresetStore
	now     time.Time
}

func newTestPanel(t *testing.T, opts PanelOptions) *testPanel {
	t.Helper()
	tp := &testPanel{
		surface: &recordingSurface{},
		snaps:   &fakeSnapshotter{},
		store:   &fakePresetStore{},
		now:     time.Unix(1000, 0),
	}
	tp.Panel = NewPanel(opts, NewTunerState(), tp.surface, tp.snaps, tp.store, testLogger())
	tp.Panel.clock = func() time.Time { return tp.now }
	return tp
}

// newSessionPanel returns a panel with an active session tuned to freq.
func newSessionPanel(t *testing.T, opts PanelOptions, freq int) *testPanel {
	t.Helper()
	tp := newTestPanel(t, opts)
	tp.Apply(SessionStarted{})
	tp.Apply(FreqObserved{Freq: freq})
	tp.TakeCommands()
	tp.surface.reset()
	return tp
}

func (tp *testPanel) advance(d time.Duration) time.Time {
	tp.now = tp.now.Add(d)
	return tp.now
}

func (tp *testPanel) key(ev KeyEvent) bool {
	return tp.HandleKey(ev)
}

func (tp *testPanel) typeText(s string) {
	for _, r := range s {
		tp.HandleKey(runeKey(r))
	}
}

func tuneCommands(cmds []Command) []CmdTune {
	var out []CmdTune
	for _, c := range cmds {
		if t, ok := c.(CmdTune); ok {
			out = append(out, t)
		}
	}
	return out
}

func controlCommands(cmds []Command) []CmdSetControl {
	var out []CmdSetControl
	for _, c := range cmds {
		if s, ok := c.(CmdSetControl); ok {
			out = append(out, s)
		}
	}
	return out
}
