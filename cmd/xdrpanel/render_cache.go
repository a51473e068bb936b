package main

// cached remembers the last value rendered to one display field. The zero
// value is "unknown", so the first update always renders.
type cached[T comparable] struct {
	v  T
	ok bool
}

// changed stores v and reports whether it differs from the remembered value.
func (c *cached[T]) changed(v T) bool {
	if c.ok && c.v == v {
		return false
	}
	c.v = v
	c.ok = true
	return true
}

func (c *cached[T]) forget() { c.ok = false }

type stereoRender struct {
	stereo     bool
	forcedMono bool
}

type piRender struct {
	pi       int
	errLevel int
}

type psRender struct {
	avail bool
	text  [psLen]byte
	errs  [psLen]int
}

type rtRender struct {
	avail bool
	text  string
}

type signalRender struct {
	unknown  bool
	max      int
	curr     int
	fraction float64
}

type interferenceRender struct {
	unknown  bool
	level    int
	fraction float64
}

type rotatorRender struct {
	dir     Rotator
	waiting bool
}

// renderCache holds one entry per display field. Each entry is written only
// by the update function that owns the field.
type renderCache struct {
	freq    cached[int]
	mode    cached[Mode]
	stereo  cached[stereoRender]
	rdsFlag cached[bool]
	pi      cached[piRender]
	tp      cached[int]
	ta      cached[int]
	ms      cached[int]
	pty     cached[int]
	ecc     cached[string]
	ps      cached[psRender]
	rt      [2]cached[rtRender]
	signal  cached[signalRender]
	cci     cached[interferenceRender]
	aci     cached[interferenceRender]

	// last sample fed into each peak-hold ring
	signalSeq cached[uint64]
	cciSeq    cached[uint64]
	aciSeq    cached[uint64]

	filter  cached[int]
	rotator cached[rotatorRender]
	entry   cached[string]
	status  cached[string]

	scan []ScanPoint
}

func newRenderCache() renderCache { return renderCache{} }
