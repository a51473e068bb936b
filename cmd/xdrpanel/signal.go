package main

import (
	"fmt"
	"math"
)

// SignalUnit selects how signal strength is displayed.
type SignalUnit string

const (
	UnitDBf  SignalUnit = "dBf"
	UnitDBm  SignalUnit = "dBm"
	UnitDBuV SignalUnit = "dBuV"
)

func (u SignalUnit) valid() bool {
	switch u {
	case UnitDBf, UnitDBm, UnitDBuV:
		return true
	}
	return false
}

// signalLevel converts a raw dBf reading to the display unit and applies the
// configured offset.
func signalLevel(raw float64, unit SignalUnit, offset float64) float64 {
	switch unit {
	case UnitDBm:
		return raw - 120 + offset
	case UnitDBuV:
		return raw - 11.25 + offset
	default:
		return raw + offset
	}
}

func signalFraction(raw float64) float64 {
	if raw >= signalBarFullScale {
		return 1
	}
	if raw <= 0 {
		return 0
	}
	return raw / signalBarFullScale
}

// signalSegments formats "max↑current unit". The arrow becomes ↥ when an
// offset is in effect, so readings are never mistaken for calibrated ones.
func signalSegments(mode Mode, unit SignalUnit, offset float64, max, curr int) []Segment {
	arrow := "↑"
	threshold := 0.1
	if mode == ModeFM && (unit == UnitDBm || unit == UnitDBuV) {
		threshold = 0.01
	}
	if math.Abs(offset) >= threshold {
		arrow = "↥"
	}

	if mode != ModeFM {
		return []Segment{
			{Text: fmt.Sprintf("%3d%s", max, arrow), Tier: TierDim},
			{Text: fmt.Sprintf(" %3d", curr)},
		}
	}

	switch unit {
	case UnitDBm:
		return []Segment{
			{Text: fmt.Sprintf("%4d%s", max, arrow), Tier: TierDim},
			{Text: fmt.Sprintf("%4ddBm", curr)},
		}
	case UnitDBuV:
		return []Segment{
			{Text: fmt.Sprintf("%3d%s", max, arrow), Tier: TierDim},
			{Text: fmt.Sprintf("%3d dBµV", curr)},
		}
	default:
		return []Segment{
			{Text: fmt.Sprintf("%3d%s", max, arrow), Tier: TierDim},
			{Text: fmt.Sprintf("%3d dBf", curr)},
		}
	}
}
