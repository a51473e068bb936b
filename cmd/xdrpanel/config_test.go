package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xdrpanel.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfig_DefaultsValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	opts := cfg.ToPanelOptions()
	if opts.QuietWindow != defaultQuietWindow || opts.RDSResetTimeout != defaultRDSResetTimeout {
		t.Fatalf("panel options = %+v", opts)
	}
	if !opts.ProgressivePS {
		t.Fatalf("progressive PS should default on")
	}
}

func TestConfig_LoadFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
link:
  kind: ws
  ws_url: ws://tuner.local:7373
  password: secret
panel:
  signal_unit: dBm
  utc: true
presets: [87600, 94500]
`)

	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Link.Kind != "ws" || cfg.Link.WsURL != "ws://tuner.local:7373" {
		t.Fatalf("link = %+v", cfg.Link)
	}
	if cfg.Link.RetryDelayMS != 2000 {
		t.Fatalf("retry delay default lost: %d", cfg.Link.RetryDelayMS)
	}
	if len(cfg.Presets) != presetCount || cfg.Presets[1] != 94500 || cfg.Presets[11] != 0 {
		t.Fatalf("presets = %v", cfg.Presets)
	}

	ws := cfg.ToWSLinkConfig()
	if ws.Password != "secret" || ws.RetryDelay != 2*time.Second {
		t.Fatalf("ws link config = %+v", ws)
	}
	if opts := cfg.ToPanelOptions(); opts.Unit != UnitDBm || !opts.UTC || opts.Presets[0] != 87600 {
		t.Fatalf("panel options = %+v", opts)
	}
}

func TestConfig_RejectsUnknownField(t *testing.T) {
	path := writeConfig(t, "panel:\n  signal_units: dBm\n")
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatalf("expected an error for an unknown field")
	}
}

func TestConfig_RejectsTrailingDocument(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n---\nlogging:\n  level: info\n")
	if _, err := LoadConfigFile(path); err == nil || !strings.Contains(err.Error(), "trailing") {
		t.Fatalf("err = %v, want trailing document error", err)
	}
}

func TestConfig_ValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"ws without url", func(c *Config) { c.Link.Kind = "ws" }, "link.ws_url"},
		{"unknown link", func(c *Config) { c.Link.Kind = "serial" }, "link.kind"},
		{"bad unit", func(c *Config) { c.Panel.SignalUnit = "W" }, "panel.signal_unit"},
		{"bad pty set", func(c *Config) { c.Panel.PTYSet = "dab" }, "panel.pty_set"},
		{"too many presets", func(c *Config) { c.Presets = make([]int, presetCount+1) }, "presets"},
		{"negative preset", func(c *Config) { c.Presets[3] = -1 }, "presets[3]"},
		{"ws path", func(c *Config) { c.StateWS.Path = "ws" }, "state_ws.path"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want containing %q", tc.name, err, tc.want)
		}
	}
}

func TestConfig_FlagOverrides(t *testing.T) {
	cfg := DefaultConfig()
	kind := "ws"
	url := "ws://10.0.0.2:7373"
	addr := ""
	devices := []string{"/dev/input/event3"}

	FlagOverrides{
		LinkKind:     &kind,
		LinkWsURL:    &url,
		StateWSAddr:  &addr,
		InputDevices: &devices,
	}.Apply(&cfg)

	if cfg.Link.Kind != "ws" || cfg.Link.WsURL != url {
		t.Fatalf("link = %+v", cfg.Link)
	}
	if cfg.StateWS.Enabled {
		t.Fatalf("an empty state_ws address should disable the server")
	}
	if len(cfg.Input.Devices) != 1 || cfg.Input.Devices[0] != devices[0] {
		t.Fatalf("devices = %v", cfg.Input.Devices)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestConfigPresetStore_SaveAndReload(t *testing.T) {
	path := writeConfig(t, "logging:\n  level: debug\n")
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	store := newConfigPresetStore(path, cfg)
	var presets [presetCount]int
	presets[0] = 94500
	presets[11] = 101100
	if err := store.SavePresets(presets); err != nil {
		t.Fatalf("SavePresets: %v", err)
	}

	reloaded, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Presets[0] != 94500 || reloaded.Presets[11] != 101100 {
		t.Fatalf("reloaded presets = %v", reloaded.Presets)
	}
	if reloaded.Logging.Level != "debug" {
		t.Fatalf("saving presets lost logging.level: %q", reloaded.Logging.Level)
	}
}

func TestConfigPresetStore_NoPath(t *testing.T) {
	store := newConfigPresetStore("", DefaultConfig())
	if err := store.SavePresets([presetCount]int{}); err == nil {
		t.Fatalf("expected an error without a config path")
	}
}
