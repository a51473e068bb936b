package main

// Widget is the panel-side model of one interactive control. Set is the user
// path and fires onChange; SetSilently writes the position without it.
//
// The suppression counter is re-entrant: a silent write that triggers another
// silent write on the same widget still keeps the handler blocked.
type Widget struct {
	name      string
	value     int
	options   []string
	sensitive bool
	suppress  int

	onChange func(v int)
	onRender func(w *Widget)
}

func newWidget(name string, value int) *Widget {
	return &Widget{name: name, value: value, sensitive: true}
}

func (w *Widget) Name() string      { return w.name }
func (w *Widget) Value() int        { return w.value }
func (w *Widget) Options() []string { return w.options }
func (w *Widget) Sensitive() bool   { return w.sensitive }

// Set moves the widget as a user would. The change handler fires only when the
// value actually changed and no silent write is in progress.
func (w *Widget) Set(v int) {
	if !w.store(v) {
		return
	}
	if w.suppress > 0 || w.onChange == nil {
		return
	}
	w.onChange(w.value)
}

// SetSilently moves the widget without firing the change handler.
func (w *Widget) SetSilently(v int) {
	w.suppress++
	defer func() { w.suppress-- }()
	w.Set(v)
}

// SetOptionsSilently replaces the option list and selects v.
func (w *Widget) SetOptionsSilently(opts []string, v int) {
	w.suppress++
	defer func() { w.suppress-- }()
	w.options = opts
	w.value = v
	w.render()
}

func (w *Widget) SetSensitive(on bool) {
	if w.sensitive == on {
		return
	}
	w.sensitive = on
	w.render()
}

func (w *Widget) store(v int) bool {
	if v == w.value {
		return false
	}
	if len(w.options) > 0 && (v < 0 || v >= len(w.options)) {
		return false
	}
	w.value = v
	w.render()
	return true
}

func (w *Widget) render() {
	if w.onRender != nil {
		w.onRender(w)
	}
}
