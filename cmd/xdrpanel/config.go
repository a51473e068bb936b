package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration for the xdrpanel daemon.
//
// Defaults and validation live here so the rest of the code can assume a
// well-formed config. Layering order: DefaultConfig, file, flag overrides,
// Validate.
type Config struct {
	// Tuner link
	Link LinkConfig `yaml:"link"`

	// Display behavior
	Panel PanelConfig `yaml:"panel"`

	// Preset frequencies for F1..F12 in kHz (0 = empty)
	Presets []int `yaml:"presets"`

	// Keyboard sources
	Input InputConfig `yaml:"input"`

	// Terminal status display
	Display DisplayConfig `yaml:"display"`

	// Remote display WebSocket
	StateWS StateWSConfig `yaml:"state_ws"`

	// IPC socket for xdrctl
	IPC IPCConfig `yaml:"ipc"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

type LinkConfig struct {
	Kind         string        `yaml:"kind"` // "sim" or "ws"
	WsURL        string        `yaml:"ws_url,omitempty"`
	Password     string        `yaml:"password,omitempty"`
	RetryDelayMS int           `yaml:"retry_delay_ms"`
	Sim          SimFileConfig `yaml:"sim"`
}

type SimFileConfig struct {
	LatencyMS        int   `yaml:"latency_ms"`
	SampleIntervalMS int   `yaml:"sample_interval_ms"`
	StartFreq        int   `yaml:"start_freq"`
	Seed             int64 `yaml:"seed,omitempty"`
}

type PanelConfig struct {
	SignalUnit          string  `yaml:"signal_unit"` // dBf, dBm or dBuV
	SignalOffset        float64 `yaml:"signal_offset"`
	Accessibility       bool    `yaml:"accessibility"`
	UTC                 bool    `yaml:"utc"`
	ProgressivePS       bool    `yaml:"progressive_ps"`
	PTYSet              string  `yaml:"pty_set"` // rds or rbds
	RDSReset            bool    `yaml:"rds_reset"`
	RDSResetTimeoutMS   int     `yaml:"rds_reset_timeout_ms"`
	QuietWindowMS       int     `yaml:"quiet_window_ms"`
	ReconcileIntervalMS int     `yaml:"reconcile_interval_ms"`
	ScreenshotDir       string  `yaml:"screenshot_dir"`
}

type InputConfig struct {
	Terminal bool     `yaml:"terminal"`
	Devices  []string `yaml:"devices,omitempty"` // evdev keyboards
}

type DisplayConfig struct {
	Terminal   bool `yaml:"terminal"`
	IntervalMS int  `yaml:"interval_ms"`
	NoColor    bool `yaml:"no_color,omitempty"`
}

type StateWSConfig struct {
	Enabled      bool   `yaml:"enabled"`
	ListenAddr   string `yaml:"listen_addr"`
	Path         string `yaml:"path"`
	SendBuf      int    `yaml:"send_buf"`
	BroadcastBuf int    `yaml:"broadcast_buf"`
}

type IPCConfig struct {
	SocketPath string `yaml:"socket_path"` // empty disables IPC
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"` // default stderr
}

// DefaultConfig returns a fully-populated Config with defaults.
func DefaultConfig() Config {
	return Config{
		Link: LinkConfig{
			Kind:         "sim",
			RetryDelayMS: 2000,
			Sim: SimFileConfig{
				LatencyMS:        50,
				SampleIntervalMS: 66,
				StartFreq:        87600,
			},
		},
		Panel: PanelConfig{
			SignalUnit:          string(UnitDBf),
			PTYSet:              string(PTYSetRDS),
			ProgressivePS:       true,
			RDSResetTimeoutMS:   int(defaultRDSResetTimeout / time.Millisecond),
			QuietWindowMS:       int(defaultQuietWindow / time.Millisecond),
			ReconcileIntervalMS: int(defaultReconcileInterval / time.Millisecond),
			ScreenshotDir:       defaultScreenshotDir,
		},
		Presets: make([]int, presetCount),
		Input: InputConfig{
			Terminal: true,
		},
		Display: DisplayConfig{
			Terminal:   true,
			IntervalMS: 200,
		},
		StateWS: StateWSConfig{
			Enabled:      true,
			ListenAddr:   "127.0.0.1:7373",
			Path:         "/ws/state",
			SendBuf:      64,
			BroadcastBuf: 256,
		},
		IPC: IPCConfig{
			SocketPath: "/tmp/xdrpanel.sock",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfigFile reads and parses a YAML config file on top of the defaults.
// Unknown fields are rejected (helps catch typos) via KnownFields(true).
func LoadConfigFile(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	// Ensure there's no trailing garbage (only whitespace/comments are allowed after the document).
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// SaveConfigFile writes cfg as YAML, replacing the file atomically.
func SaveConfigFile(path string, cfg Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	path = ExpandPath(path)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encode config yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config yaml: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".xdrpanel-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	return nil
}

// FlagOverrides holds values from explicitly set flags. A nil pointer means
// the flag was not given; a non-nil pointer is applied even if it is a zero
// value.
type FlagOverrides struct {
	LinkKind  *string
	LinkWsURL *string
	StartFreq *int

	SignalUnit    *string
	Accessibility *bool
	UTC           *bool
	PTYSet        *string

	TerminalInput   *bool
	TerminalDisplay *bool
	NoColor         *bool
	InputDevices    *[]string

	StateWSAddr   *string
	IPCSocketPath *string

	LogLevel *string
	LogFile  *string
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.LinkKind != nil {
		cfg.Link.Kind = *o.LinkKind
	}
	if o.LinkWsURL != nil {
		cfg.Link.WsURL = *o.LinkWsURL
	}
	if o.StartFreq != nil {
		cfg.Link.Sim.StartFreq = *o.StartFreq
	}

	if o.SignalUnit != nil {
		cfg.Panel.SignalUnit = *o.SignalUnit
	}
	if o.Accessibility != nil {
		cfg.Panel.Accessibility = *o.Accessibility
	}
	if o.UTC != nil {
		cfg.Panel.UTC = *o.UTC
	}
	if o.PTYSet != nil {
		cfg.Panel.PTYSet = *o.PTYSet
	}

	if o.TerminalInput != nil {
		cfg.Input.Terminal = *o.TerminalInput
	}
	if o.TerminalDisplay != nil {
		cfg.Display.Terminal = *o.TerminalDisplay
	}
	if o.NoColor != nil {
		cfg.Display.NoColor = *o.NoColor
	}
	if o.InputDevices != nil {
		cfg.Input.Devices = append([]string(nil), (*o.InputDevices)...)
	}

	if o.StateWSAddr != nil {
		cfg.StateWS.ListenAddr = *o.StateWSAddr
		cfg.StateWS.Enabled = *o.StateWSAddr != ""
	}
	if o.IPCSocketPath != nil {
		cfg.IPC.SocketPath = *o.IPCSocketPath
	}

	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
	if o.LogFile != nil {
		cfg.Logging.File = *o.LogFile
	}
}

// Validate checks config invariants and returns a user-friendly error.
// A short presets list is padded with empty slots.
func (c *Config) Validate() error {
	// Link
	switch c.Link.Kind {
	case "sim":
		if c.Link.Sim.StartFreq <= 0 {
			return errors.New("link.sim.start_freq must be > 0")
		}
		if c.Link.Sim.LatencyMS < 0 {
			return errors.New("link.sim.latency_ms must be >= 0")
		}
		if c.Link.Sim.SampleIntervalMS <= 0 {
			return errors.New("link.sim.sample_interval_ms must be > 0")
		}
	case "ws":
		if c.Link.WsURL == "" {
			return errors.New("link.ws_url must not be empty when link.kind is \"ws\"")
		}
	default:
		return fmt.Errorf("link.kind must be %q or %q", "sim", "ws")
	}
	if c.Link.RetryDelayMS < 0 {
		return errors.New("link.retry_delay_ms must be >= 0")
	}

	// Panel
	if !SignalUnit(c.Panel.SignalUnit).valid() {
		return fmt.Errorf("panel.signal_unit must be one of %s, %s, %s", UnitDBf, UnitDBm, UnitDBuV)
	}
	if p := PTYSet(c.Panel.PTYSet); p != PTYSetRDS && p != PTYSetRBDS {
		return fmt.Errorf("panel.pty_set must be %q or %q", PTYSetRDS, PTYSetRBDS)
	}
	if c.Panel.RDSResetTimeoutMS <= 0 {
		return errors.New("panel.rds_reset_timeout_ms must be > 0")
	}
	if c.Panel.QuietWindowMS < 0 {
		return errors.New("panel.quiet_window_ms must be >= 0")
	}
	if c.Panel.ReconcileIntervalMS <= 0 || c.Panel.ReconcileIntervalMS > 10000 {
		return errors.New("panel.reconcile_interval_ms must be between 1 and 10000")
	}
	if c.Panel.ScreenshotDir == "" {
		return errors.New("panel.screenshot_dir must not be empty")
	}

	// Presets
	if len(c.Presets) > presetCount {
		return fmt.Errorf("presets must have at most %d entries", presetCount)
	}
	for i, f := range c.Presets {
		if f < 0 {
			return fmt.Errorf("presets[%d] must be >= 0", i)
		}
	}
	for len(c.Presets) < presetCount {
		c.Presets = append(c.Presets, 0)
	}

	// Input
	for i, dev := range c.Input.Devices {
		if dev == "" {
			return fmt.Errorf("input.devices[%d] is empty", i)
		}
	}

	// Display
	if c.Display.IntervalMS <= 0 {
		return errors.New("display.interval_ms must be > 0")
	}

	// State WS
	if c.StateWS.Enabled {
		if c.StateWS.ListenAddr == "" {
			return errors.New("state_ws.listen_addr must not be empty when state_ws is enabled")
		}
		if c.StateWS.Path == "" || c.StateWS.Path[0] != '/' {
			return errors.New("state_ws.path must start with /")
		}
	}

	// Logging
	if _, err := parseLogLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}

// ToPanelOptions converts the file config into the panel's options.
func (c *Config) ToPanelOptions() PanelOptions {
	opts := defaultPanelOptions()
	opts.Unit = SignalUnit(c.Panel.SignalUnit)
	opts.SignalOffset = c.Panel.SignalOffset
	opts.Accessibility = c.Panel.Accessibility
	opts.UTC = c.Panel.UTC
	opts.ProgressivePS = c.Panel.ProgressivePS
	opts.PTYSet = PTYSet(c.Panel.PTYSet)
	opts.RDSReset = c.Panel.RDSReset
	opts.RDSResetTimeout = time.Duration(c.Panel.RDSResetTimeoutMS) * time.Millisecond
	opts.QuietWindow = time.Duration(c.Panel.QuietWindowMS) * time.Millisecond
	opts.ScreenshotDir = c.Panel.ScreenshotDir
	copy(opts.Presets[:], c.Presets)
	return opts
}

// ToSimConfig converts the simulated link section.
func (c *Config) ToSimConfig() SimConfig {
	return SimConfig{
		Latency:        time.Duration(c.Link.Sim.LatencyMS) * time.Millisecond,
		SampleInterval: time.Duration(c.Link.Sim.SampleIntervalMS) * time.Millisecond,
		StartFreq:      c.Link.Sim.StartFreq,
		Seed:           c.Link.Sim.Seed,
	}
}

// ToWSLinkConfig converts the WebSocket link section.
func (c *Config) ToWSLinkConfig() wsLinkConfig {
	return wsLinkConfig{
		URL:        c.Link.WsURL,
		Password:   c.Link.Password,
		RetryDelay: time.Duration(c.Link.RetryDelayMS) * time.Millisecond,
	}
}

// configPresetStore writes preset changes back into the config file.
type configPresetStore struct {
	path string

	mu  sync.Mutex
	cfg Config
}

func newConfigPresetStore(path string, cfg Config) *configPresetStore {
	return &configPresetStore{path: path, cfg: cfg}
}

func (s *configPresetStore) SavePresets(presets [presetCount]int) error {
	if s.path == "" {
		return errors.New("no config file to save presets to (start with -config)")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Presets = append([]int(nil), presets[:]...)
	if err := SaveConfigFile(s.path, s.cfg); err != nil {
		return fmt.Errorf("save presets: %w", err)
	}
	return nil
}

// ExpandPath expands a leading "~" in a path using $HOME.
func ExpandPath(p string) string {
	if p == "" {
		return p
	}
	if p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	if p == "~" {
		return home
	}
	if len(p) >= 2 && (p[1] == '/' || p[1] == '\\') {
		return filepath.Join(home, p[2:])
	}
	return p
}
