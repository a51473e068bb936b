package main

import "fmt"

// Filter bandwidths in Hz, narrowest first. The adaptive entry (-1) is always
// appended as the last index.
var (
	fmBandwidths = []int{
		55000, 63000, 73000, 83000, 95000, 108000, 125000, 142000, 159000,
		177000, 194000, 211000, 229000, 246000, 263000, 281000, 298000, 309000,
	}
	amBandwidths = []int{
		3000, 4000, 5000, 6000, 7000, 8000, 9000, 10000, 12000, 14000,
	}
)

const adaptiveBandwidth = -1

func bandwidthTable(m Mode) []int {
	if m == ModeAM {
		return amBandwidths
	}
	return fmBandwidths
}

// bandwidthCount is the number of selectable entries for m, adaptive included.
func bandwidthCount(m Mode) int {
	return len(bandwidthTable(m)) + 1
}

// bandwidthIndex returns the list index of bw. Adaptive and unknown values map
// to the last index.
func bandwidthIndex(m Mode, bw int) int {
	for i, v := range bandwidthTable(m) {
		if v == bw {
			return i
		}
	}
	return len(bandwidthTable(m))
}

// bandwidthAt returns the bandwidth for list index i.
func bandwidthAt(m Mode, i int) int {
	t := bandwidthTable(m)
	if i >= 0 && i < len(t) {
		return t[i]
	}
	return adaptiveBandwidth
}

func bandwidthLabel(bw int) string {
	if bw < 0 {
		return "Adaptive"
	}
	if bw%1000 == 0 {
		return fmt.Sprintf("%d kHz", bw/1000)
	}
	return fmt.Sprintf("%.1f kHz", float64(bw)/1000)
}

// bandwidthLabels lists the control options for m.
func bandwidthLabels(m Mode) []string {
	t := bandwidthTable(m)
	out := make([]string, 0, len(t)+1)
	for _, bw := range t {
		out = append(out, bandwidthLabel(bw))
	}
	return append(out, bandwidthLabel(adaptiveBandwidth))
}
