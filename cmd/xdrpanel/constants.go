package main

import "time"

// Panel timing
const (
	defaultReconcileInterval = 100 * time.Millisecond // control reconciliation tick
	defaultQuietWindow       = 2000 * time.Millisecond
	statusFlashDuration      = 1000 * time.Millisecond
	defaultRDSResetTimeout   = 10 * time.Second
)

// Peak hold
const (
	peakHoldSamples = 4

	// noData marks an unknown signal/CCI/ACI sample. It is never a measured minimum.
	noData = -1
)

// Tuning steps (kHz)
const (
	stepCoarseKHz = 1000
	stepGridKHz   = 100
	stepFineKHz   = 5

	// OIRT sub-band with 30 kHz channel raster.
	oirtLowKHz     = 65750
	oirtHighKHz    = 74000
	oirtSpacingKHz = 30
)

// Frequency entry
const (
	minCommitKHz      = 100 // smaller commits are treated as typos
	keypadFractionMin = 20
	keypadFractionMax = 200
	maxEntryLen       = 9
)

const (
	presetCount = 12
	psLen       = 8

	signalBarFullScale = 80.0 // dBf at which the signal bar is full

	defaultScreenshotDir = "./screenshots"
	screenshotTimeLayout = "20060102-150405"
)

// PS error intensity tiers: 0 errors paints with the normal foreground,
// otherwise min(255, psErrorBase + psErrorStep*e).
const (
	psErrorBase = 110
	psErrorStep = 12
)
