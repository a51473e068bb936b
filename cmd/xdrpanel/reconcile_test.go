package main

import (
	"testing"
	"time"
)

func TestReconcile_UserChangeSurvivesQuietWindow(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)

	tp.SetControl(ControlVolume, 50)
	cmds := controlCommands(tp.TakeCommands())
	if len(cmds) != 1 || cmds[0] != (CmdSetControl{Control: ControlVolume, Value: 50}) {
		t.Fatalf("commands after user change = %v", cmds)
	}

	tp.Tick(tp.advance(500 * time.Millisecond))
	if got := tp.controls.volume.Value(); got != 50 {
		t.Fatalf("volume reverted after 500ms: %d", got)
	}

	tp.Tick(tp.advance(2000 * time.Millisecond))
	if got := tp.controls.volume.Value(); got != 0 {
		t.Fatalf("volume not reconciled after 2500ms: %d", got)
	}
	if cmds := tp.TakeCommands(); len(cmds) != 0 {
		t.Fatalf("reconcile echoed commands: %v", cmds)
	}
}

func TestReconcile_SilentWriteRenders(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)
	tp.Apply(ControlObserved{Control: ControlAGC, Value: 2})

	tp.Tick(tp.advance(100 * time.Millisecond))

	if got := tp.controls.agc.Value(); got != 2 {
		t.Fatalf("agc = %d, want 2", got)
	}
	u, ok := tp.surface.last("control_agc")
	if !ok || u.(ControlUpdate).Value != 2 {
		t.Fatalf("expected control_agc update with value 2, got %#v", u)
	}
	if cmds := tp.TakeCommands(); len(cmds) != 0 {
		t.Fatalf("silent write produced commands: %v", cmds)
	}
}

func TestReconcile_FilterFollowsTuner(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)
	tp.Apply(ControlObserved{Control: ControlFilter, Value: 95000})

	tp.Tick(tp.advance(100 * time.Millisecond))

	if got, want := tp.controls.filter.Value(), bandwidthIndex(ModeFM, 95000); got != want {
		t.Fatalf("filter index = %d, want %d", got, want)
	}
	if cmds := tp.TakeCommands(); len(cmds) != 0 {
		t.Fatalf("reconcile echoed commands: %v", cmds)
	}
}

func TestReconcile_GainPair(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)
	tp.Apply(ControlObserved{Control: ControlGain, Value: gainRF | gainIF})

	tp.Tick(tp.advance(100 * time.Millisecond))

	if tp.controls.rfGain.Value() != 1 || tp.controls.ifGain.Value() != 1 {
		t.Fatalf("gain widgets = %d/%d, want 1/1", tp.controls.rfGain.Value(), tp.controls.ifGain.Value())
	}
	if cmds := tp.TakeCommands(); len(cmds) != 0 {
		t.Fatalf("gain reconcile produced commands: %v", cmds)
	}
}

func TestReconcile_Rotator(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)
	tp.Apply(RotatorObserved{Direction: RotatorCW})

	tp.Tick(tp.advance(100 * time.Millisecond))
	if tp.controls.cw.Value() != 1 || tp.controls.ccw.Value() != 0 {
		t.Fatalf("rotator widgets = cw:%d ccw:%d, want 1/0", tp.controls.cw.Value(), tp.controls.ccw.Value())
	}
	if cmds := tp.TakeCommands(); len(cmds) != 0 {
		t.Fatalf("rotator reconcile produced commands: %v", cmds)
	}

	// User switches direction: the buttons stay exclusive.
	tp.SetControl(ControlRotator, int(RotatorCCW))
	if tp.controls.cw.Value() != 0 || tp.controls.ccw.Value() != 1 {
		t.Fatalf("after CCW: cw:%d ccw:%d", tp.controls.cw.Value(), tp.controls.ccw.Value())
	}
	cmds := controlCommands(tp.TakeCommands())
	if len(cmds) != 1 || cmds[0].Value != int(RotatorCCW) {
		t.Fatalf("rotator commands = %v, want one CCW", cmds)
	}

	// Inside the quiet window the tuner's CW does not undo the user.
	tp.Tick(tp.advance(time.Second))
	if tp.controls.ccw.Value() != 1 {
		t.Fatalf("rotator reverted inside quiet window")
	}
}

func TestSetControl_GainCombinesBits(t *testing.T) {
	tp := newSessionPanel(t, defaultPanelOptions(), 94500)

	tp.SetControl(ControlGain, gainRF|gainIF)

	cmds := controlCommands(tp.TakeCommands())
	if len(cmds) == 0 {
		t.Fatalf("expected gain commands")
	}
	if last := cmds[len(cmds)-1]; last.Control != ControlGain || last.Value != gainRF|gainIF {
		t.Fatalf("last gain command = %v", last)
	}
}

func TestTick_InactiveSessionOnlyRunsClock(t *testing.T) {
	tp := newTestPanel(t, defaultPanelOptions())
	tp.State().AGC = 1

	tp.Tick(tp.advance(time.Second))

	if got := tp.controls.agc.Value(); got != 0 {
		t.Fatalf("agc reconciled without a session: %d", got)
	}
	for _, u := range tp.surface.updates {
		if u.Kind() != "status" {
			t.Fatalf("tick rendered %q without a session", u.Kind())
		}
	}
}

func TestTick_StatusFlashExpiresWhileDisconnected(t *testing.T) {
	opts := defaultPanelOptions()
	opts.UTC = true
	tp := newTestPanel(t, opts)
	tp.State().Freq = 94500

	tp.key(KeyEvent{Key: KeyF2, Mods: ModShift})
	u, _ := tp.surface.last("status")
	if !u.(StatusUpdate).Flash {
		t.Fatalf("status after store = %#v, want flash", u)
	}

	tp.Tick(tp.advance(2 * time.Second))
	u, _ = tp.surface.last("status")
	if st := u.(StatusUpdate); st.Flash || st.Text != "00:16:42 UTC" {
		t.Fatalf("status after flash = %#v, want clock", st)
	}
}

func TestTick_RDSResetTimeout(t *testing.T) {
	opts := defaultPanelOptions()
	opts.RDSReset = true
	opts.RDSResetTimeout = 10 * time.Second
	tp := newSessionPanel(t, opts, 94500)

	tp.Apply(PIObserved{PI: 0x3201})

	tp.Tick(tp.advance(5 * time.Second))
	if tp.State().PI != 0x3201 {
		t.Fatalf("PI cleared before the timeout")
	}

	tp.Tick(tp.advance(6 * time.Second))
	if tp.State().PI != noData {
		t.Fatalf("PI = %04X, want cleared after the timeout", tp.State().PI)
	}
	u, _ := tp.surface.last("pi")
	if segmentsText(u.(PIUpdate).Segments) != " " {
		t.Fatalf("PI display not blanked: %#v", u)
	}
}

func TestTick_StatusFlashExpires(t *testing.T) {
	opts := defaultPanelOptions()
	opts.UTC = true
	tp := newSessionPanel(t, opts, 94500)

	tp.key(KeyEvent{Key: KeyF1, Mods: ModShift})
	u, _ := tp.surface.last("status")
	if st := u.(StatusUpdate); !st.Flash || st.Text != "Preset F1 saved: 94500 kHz" {
		t.Fatalf("status after store = %#v", st)
	}

	tp.Tick(tp.advance(500 * time.Millisecond))
	u, _ = tp.surface.last("status")
	if !u.(StatusUpdate).Flash {
		t.Fatalf("flash replaced too early")
	}

	tp.Tick(tp.advance(1500 * time.Millisecond))
	u, _ = tp.surface.last("status")
	if st := u.(StatusUpdate); st.Flash || st.Text != "00:16:42 UTC" {
		t.Fatalf("status after flash = %#v, want clock", st)
	}
}
