package main

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// StateSnapshot is the latest update per display field, sent to WebSocket
// clients as "state_init".
type StateSnapshot struct {
	At     time.Time         `json:"at"`
	Fields map[string]Update `json:"fields"`
	AF     []AFUpdate        `json:"af"`
	Lines  []string          `json:"lines"`
}

// viewModel keeps the latest update for every field. It is itself a Surface
// and is only touched from the daemon goroutine.
type viewModel struct {
	fields map[string]Update
	af     []AFUpdate
}

func newViewModel() *viewModel {
	return &viewModel{fields: make(map[string]Update)}
}

func (v *viewModel) Render(u Update) {
	switch u := u.(type) {
	case AFUpdate:
		v.af = append(v.af, u)
		return
	case AFClearedUpdate:
		v.af = nil
		return
	case DialogUpdate, ScanUpdate:
		// transient
		return
	}
	v.fields[u.Kind()] = u
}

func (v *viewModel) Snapshot(now time.Time) StateSnapshot {
	fields := make(map[string]Update, len(v.fields))
	for k, u := range v.fields {
		fields[k] = u
	}
	return StateSnapshot{
		At:     now.UTC(),
		Fields: fields,
		AF:     append([]AFUpdate(nil), v.af...),
		Lines:  v.Lines(),
	}
}

// text returns the plain text of one field, or "" if it was never rendered.
func (v *viewModel) text(kind string) string {
	switch u := v.fields[kind].(type) {
	case FreqUpdate:
		return u.Text
	case ModeUpdate:
		return u.Mode
	case IndicatorUpdate:
		return segmentsText(u.Segments)
	case PIUpdate:
		return segmentsText(u.Segments)
	case PSUpdate:
		return segmentsText(u.Segments)
	case PTYUpdate:
		return u.Name
	case ECCUpdate:
		return u.Country
	case RTUpdate:
		return u.Text
	case SignalUpdate:
		return segmentsText(u.Segments)
	case InterferenceUpdate:
		if u.Unknown {
			return "?"
		}
		return fmt.Sprintf("%d%%", u.Level)
	case FilterUpdate:
		return u.Label
	case RotatorUpdate:
		return u.Direction
	case StatusUpdate:
		return u.Text
	case EntryUpdate:
		return u.Text
	case ConnectionUpdate:
		return u.State
	}
	return ""
}

// Lines renders the panel as plain text lines, used for screenshots.
func (v *viewModel) Lines() []string {
	lines := []string{
		fmt.Sprintf("%-9s %-2s %s %s %s", v.text("freq"), v.text("mode"), v.text("stereo"), v.text("rds"), v.text("signal")),
		fmt.Sprintf("PI %-6s %s  %s %s %s  %s", v.text("pi"), v.text("ps"), v.text("tp"), v.text("ta"), v.text("ms"), v.text("pty")),
		"RT " + v.text("rt_a"),
		"RT " + v.text("rt_b"),
		fmt.Sprintf("CCI %-5s ACI %-5s BW %s", v.text("cci"), v.text("aci"), v.text("filter")),
	}

	if len(v.af) > 0 {
		labels := make([]string, 0, len(v.af))
		for _, af := range v.af {
			labels = append(labels, af.Label)
		}
		lines = append(lines, "AF "+strings.Join(labels, " "))
	}

	var controls []string
	for k, u := range v.fields {
		if c, ok := u.(ControlUpdate); ok {
			controls = append(controls, fmt.Sprintf("%s=%d", strings.TrimPrefix(k, "control_"), c.Value))
		}
	}
	sort.Strings(controls)
	if len(controls) > 0 {
		lines = append(lines, strings.Join(controls, " "))
	}
	if s := v.text("status"); s != "" {
		lines = append(lines, s)
	}
	return lines
}
