package main

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// ============================================================================
// Keyboard command dispatcher
// ============================================================================
//
// HandleKey tries each rule group in order and stops at the first match:
//   1. tuning keys
//   2. screenshot
//   3. presets (F1-F12, Shift stores)
//   4. bandwidth stepping
//   5. frequency entry
//
// The return value tells the caller whether the key was consumed. Only a
// Ctrl-modified key that reaches the entry stage falls through.
//
// ============================================================================

func (p *Panel) HandleKey(ev KeyEvent) bool {
	if p.handleTuningKey(ev) {
		return true
	}
	if ev.isRune('s') {
		p.Screenshot()
		return true
	}
	if id, ok := ev.functionKey(); ok {
		p.handlePresetKey(id, ev.Shift())
		return true
	}
	if p.handleBandwidthKey(ev) {
		return true
	}
	return p.handleEntryKey(ev)
}

func (p *Panel) handleTuningKey(ev KeyEvent) bool {
	freq := p.state.Freq
	switch ev.Key {
	case KeyPageDown:
		p.tune(freq-stepCoarseKHz, true)
	case KeyPageUp:
		p.tune(freq+stepCoarseKHz, true)
	case KeyLeft:
		p.tune(stepLeft(freq))
	case KeyRight:
		p.tune(stepRight(freq))
	case KeyUp:
		p.tune(freq+stepFineKHz, false)
	case KeyDown:
		p.tune(freq-stepFineKHz, false)
	case KeyRune:
		switch {
		case ev.isRune('b'):
			p.tune(p.state.PrevFreq, false)
		case ev.isRune('r'):
			p.tune(freq, true)
		default:
			return false
		}
	default:
		return false
	}
	return true
}

// stepLeft returns the next lower channel. Inside the OIRT sub-band it snaps
// to the 30 kHz raster; elsewhere it snaps down to the 100 kHz grid and forces
// a re-tune.
func stepLeft(freq int) (int, bool) {
	if freq > oirtLowKHz && freq <= oirtHighKHz {
		off := freq - oirtLowKHz
		if off%oirtSpacingKHz == 0 {
			return freq - oirtSpacingKHz, false
		}
		return oirtLowKHz + off/oirtSpacingKHz*oirtSpacingKHz, false
	}
	if r := freq % stepGridKHz; r != 0 {
		return freq - r, true
	}
	return freq - stepGridKHz, true
}

// stepRight is the upward counterpart of stepLeft.
func stepRight(freq int) (int, bool) {
	if freq >= oirtLowKHz && freq < oirtHighKHz {
		off := freq - oirtLowKHz
		return oirtLowKHz + off/oirtSpacingKHz*oirtSpacingKHz + oirtSpacingKHz, false
	}
	return freq - freq%stepGridKHz + stepGridKHz, true
}

func (p *Panel) handlePresetKey(id int, store bool) {
	if id < 0 || id >= presetCount {
		return
	}
	if !store {
		p.tune(p.opts.Presets[id], false)
		return
	}

	freq := p.state.Freq
	p.opts.Presets[id] = freq
	if p.presets != nil {
		if err := p.presets.SavePresets(p.opts.Presets); err != nil {
			p.logger.Warn("failed to save presets", "preset", id+1, "error", err)
		}
	}
	p.flashStatus(fmt.Sprintf("Preset F%d saved: %d kHz", id+1, freq))
}

func (p *Panel) flashStatus(text string) {
	p.statusUntil = p.now().Add(statusFlashDuration)
	p.renderStatus(text, true)
}

func (p *Panel) handleBandwidthKey(ev KeyEvent) bool {
	if ev.Key != KeyRune {
		return false
	}
	w := p.controls.filter
	last := bandwidthCount(p.state.Mode) - 1
	switch ev.Rune {
	case '[':
		if w.Value() < last {
			w.Set(w.Value() + 1)
		}
	case ']':
		if w.Value() > 0 {
			w.Set(w.Value() - 1)
		}
	case '\\':
		w.Set(last)
	default:
		return false
	}
	return true
}

func (p *Panel) handleEntryKey(ev KeyEvent) bool {
	if ev.Key == KeyEnter {
		if freq, ok := p.entry.commit(); ok && freq >= minCommitKHz {
			p.tune(freq, false)
		}
		p.renderEntry()
		return true
	}
	if ev.Ctrl() {
		return false
	}
	p.entry.key(ev)
	p.renderEntry()
	return true
}

// Entry returns the current frequency entry buffer.
func (p *Panel) Entry() string { return p.entry.text() }

// Screenshot captures the display to the conventional file name. A failure is
// reported to the user and logged; it is never retried.
func (p *Panel) Screenshot() {
	name := screenshotPath(p.opts.ScreenshotDir, p.now(), p.opts.UTC, p.state.Freq, p.state.PI)
	if p.snapshotter == nil {
		p.surface.Render(DialogUpdate{Level: "error", Message: "Screenshots are not available."})
		return
	}
	if err := p.snapshotter.Capture(name); err != nil {
		p.logger.Error("screenshot failed", "path", name, "error", err)
		p.surface.Render(DialogUpdate{Level: "error", Message: fmt.Sprintf("Unable to save a screenshot to %s:\n%v", name, err)})
		return
	}
	p.logger.Info("screenshot saved", "path", name)
}

// screenshotPath builds "<dir>/YYYYMMDD-HHMMSS-<freq>[-<PI>].png".
func screenshotPath(dir string, t time.Time, utc bool, freq, pi int) string {
	if utc {
		t = t.UTC()
	} else {
		t = t.Local()
	}
	name := fmt.Sprintf("%s-%d", t.Format(screenshotTimeLayout), freq)
	if pi >= 0 {
		name += fmt.Sprintf("-%04X", pi)
	}
	name += ".png"

	dir = strings.TrimRight(dir, "/")
	if dir == "" {
		return name
	}
	if strings.HasPrefix(dir, "./") || dir == "." {
		return dir + "/" + name
	}
	return path.Join(dir, name)
}
