package main

import "math"

// PeakHold smooths a noisy metric: a new maximum shows immediately, a drop
// only after the ring has been refilled.
type PeakHold struct {
	samples [peakHoldSamples]float64
	pos     int
	shown   float64
}

func newPeakHold() PeakHold {
	var p PeakHold
	p.Reset()
	return p
}

// Reset clears the ring and forgets the shown value.
func (p *PeakHold) Reset() {
	p.clear()
	p.shown = noData
}

func (p *PeakHold) clear() {
	for i := range p.samples {
		p.samples[i] = noData
	}
	p.pos = 0
}

// Push records a sample. It returns the peak to display and whether this
// sample is a refresh point. A no-data sample resets the ring and is always a
// refresh point with peak noData.
func (p *PeakHold) Push(v float64) (peak float64, refresh bool) {
	if math.IsNaN(v) || v == noData {
		p.Reset()
		return noData, true
	}

	p.samples[p.pos] = v
	peak = p.max()

	// A peak above the displayed ceiling restarts the window at this sample.
	if p.shown != noData && peak > p.shown {
		p.clear()
		p.samples[0] = v
		peak = v
	}

	refresh = p.pos == 0
	p.pos = (p.pos + 1) % peakHoldSamples
	if refresh {
		p.shown = peak
	}
	return peak, refresh
}

// Shown returns the last displayed peak or noData.
func (p *PeakHold) Shown() float64 { return p.shown }

func (p *PeakHold) max() float64 {
	m := float64(noData)
	for _, s := range p.samples {
		if s > m {
			m = s
		}
	}
	return m
}
