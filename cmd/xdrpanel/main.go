package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
)

const version = "0.3.0"

func printVersion() {
	fmt.Printf("xdrpanel v%s\n", version)
	fmt.Println("Control panel for XDR-style FM/AM DX tuners")
}

func printUsage() {
	printVersion()
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  xdrpanel [OPTIONS]")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Mirrors the tuner state (frequency, signal, RDS, controls) on a terminal")
	fmt.Println("  display and on a WebSocket for remote displays, and turns keyboard input")
	fmt.Println("  into tuning commands.")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML config file; presets are saved back into it")
	fmt.Println()
	fmt.Println("  -link string")
	fmt.Println("        Tuner link: sim|ws (default \"sim\")")
	fmt.Println()
	fmt.Println("  -tuner-url string")
	fmt.Println("        WebSocket URL of the tuner bridge (with -link ws)")
	fmt.Println()
	fmt.Println("  -start-freq int")
	fmt.Println("        Simulated tuner start frequency in kHz (default 87600)")
	fmt.Println()
	fmt.Println("  -unit string")
	fmt.Println("        Signal unit: dBf, dBm, dBuV (default \"dBf\")")
	fmt.Println()
	fmt.Println("  -pty-set string")
	fmt.Println("        Program type names: rds, rbds (default \"rds\")")
	fmt.Println()
	fmt.Println("  -accessibility")
	fmt.Println("        Render indicators as text instead of color")
	fmt.Println()
	fmt.Println("  -utc")
	fmt.Println("        Show the clock and name screenshots in UTC")
	fmt.Println()
	fmt.Println("  -terminal-input")
	fmt.Println("        Read keys from the terminal (default true)")
	fmt.Println()
	fmt.Println("  -terminal-display")
	fmt.Println("        Print the panel on stdout (default true)")
	fmt.Println()
	fmt.Println("  -no-color")
	fmt.Println("        Disable colors on the terminal display")
	fmt.Println()
	fmt.Println("  -input-devices string")
	fmt.Println("        Comma-separated evdev keyboards (e.g. /dev/input/event3)")
	fmt.Println()
	fmt.Println("  -state-ws-addr string")
	fmt.Println("        Listen address for the state WebSocket; empty disables (default \"127.0.0.1:7373\")")
	fmt.Println()
	fmt.Println("  -ipc-socket string")
	fmt.Println("        Unix domain socket path for IPC; empty disables (default \"/tmp/xdrpanel.sock\")")
	fmt.Println()
	fmt.Println("  -log-level string")
	fmt.Println("        Log level: error, warn, info, debug (default \"info\")")
	fmt.Println()
	fmt.Println("  -log-file string")
	fmt.Println("        Write logs to this file instead of stderr")
	fmt.Println()
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println()
	fmt.Println("  -help")
	fmt.Println("        Print this help message")
	fmt.Println()
	fmt.Println("KEYS:")
	fmt.Println("  PgUp/PgDn  +/-1 MHz            Left/Right  100 kHz grid (30 kHz in OIRT)")
	fmt.Println("  Up/Down    +/-5 kHz            b           previous frequency")
	fmt.Println("  r          re-tune             s           screenshot")
	fmt.Println("  F1..F12    recall preset       Shift+Fn    store preset")
	fmt.Println("  [ ] \\      wider/narrower/adaptive bandwidth")
	fmt.Println("  digits . Enter                 type a frequency in MHz")
	fmt.Println("  Esc, Ctrl+C                    quit")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Run against the built-in simulated tuner")
	fmt.Println("  xdrpanel")
	fmt.Println()
	fmt.Println("  # Connect to a tuner bridge and log to a file")
	fmt.Println("  xdrpanel -link ws -tuner-url ws://192.168.1.20:7374/tuner -log-file /tmp/xdrpanel.log")
	fmt.Println()
	fmt.Println("NOTES:")
	fmt.Println("  - Terminals cannot report Shift+Fn; store presets from an evdev keyboard or with xdrctl")
	fmt.Println("  - evdev input requires read access to the device ('input' group)")
	fmt.Println()
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" {
			printVersion()
			return
		}
		if arg == "-help" || arg == "--help" || arg == "-h" {
			printUsage()
			return
		}
	}

	var (
		configPath      = flag.String("config", "", "Path to YAML config file")
		linkKind        = flag.String("link", "sim", "Tuner link: sim|ws")
		tunerURL        = flag.String("tuner-url", "", "WebSocket URL of the tuner bridge")
		startFreq       = flag.Int("start-freq", 87600, "Simulated tuner start frequency in kHz")
		unit            = flag.String("unit", string(UnitDBf), "Signal unit: dBf, dBm, dBuV")
		ptySet          = flag.String("pty-set", string(PTYSetRDS), "Program type names: rds, rbds")
		accessibility   = flag.Bool("accessibility", false, "Render indicators as text instead of color")
		utc             = flag.Bool("utc", false, "Show the clock and name screenshots in UTC")
		terminalInput   = flag.Bool("terminal-input", true, "Read keys from the terminal")
		terminalDisplay = flag.Bool("terminal-display", true, "Print the panel on stdout")
		noColor         = flag.Bool("no-color", false, "Disable colors on the terminal display")
		inputDevices    = flag.String("input-devices", "", "Comma-separated evdev keyboards")
		stateWSAddr     = flag.String("state-ws-addr", "127.0.0.1:7373", "Listen address for the state WebSocket")
		ipcSocketPath   = flag.String("ipc-socket", "/tmp/xdrpanel.sock", "Unix domain socket path for IPC")
		logLevelStr     = flag.String("log-level", "info", "Log level: error, warn, info, debug")
		logFile         = flag.String("log-file", "", "Write logs to this file instead of stderr")
		showVersion     = flag.Bool("version", false, "Print version and exit")
		showHelp        = flag.Bool("help", false, "Print help message")
	)

	flag.Usage = printUsage
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}
	if *showVersion {
		printVersion()
		return
	}

	// Defaults, then file, then explicitly set flags.
	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfigFile(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var o FlagOverrides
	devices := splitList(*inputDevices)
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "link":
			o.LinkKind = linkKind
		case "tuner-url":
			o.LinkWsURL = tunerURL
		case "start-freq":
			o.StartFreq = startFreq
		case "unit":
			o.SignalUnit = unit
		case "pty-set":
			o.PTYSet = ptySet
		case "accessibility":
			o.Accessibility = accessibility
		case "utc":
			o.UTC = utc
		case "terminal-input":
			o.TerminalInput = terminalInput
		case "terminal-display":
			o.TerminalDisplay = terminalDisplay
		case "no-color":
			o.NoColor = noColor
		case "input-devices":
			o.InputDevices = &devices
		case "state-ws-addr":
			o.StateWSAddr = stateWSAddr
		case "ipc-socket":
			o.IPCSocketPath = ipcSocketPath
		case "log-level":
			o.LogLevel = logLevelStr
		case "log-file":
			o.LogFile = logFile
		}
	})
	o.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logLevel, err := parseLogLevel(cfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	logOut := os.Stderr
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(ExpandPath(cfg.Logging.File), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error: open log file:", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := setupLogger(logLevel, logOut)

	if err := run(cfg, *configPath, logger); err != nil {
		logger.Error("xdrpanel stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg Config, configPath string, logger *slog.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	events := make(chan Event, 256)

	var link TunerLink
	switch cfg.Link.Kind {
	case "ws":
		l, err := newWSLink(cfg.ToWSLinkConfig(), logger)
		if err != nil {
			return err
		}
		link = l
	default:
		link = newSimLink(cfg.ToSimConfig(), logger)
	}
	defer link.Close()

	// Surfaces: the view model first so snapshots see every update.
	view := newViewModel()
	surfaces := multiSurface{view}

	var wg sync.WaitGroup
	goRun := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil && ctx.Err() == nil {
				logger.Error(name+" stopped", "error", err)
			}
		}()
	}

	if cfg.Display.Terminal {
		term := newTermSurface(os.Stdout, time.Duration(cfg.Display.IntervalMS)*time.Millisecond, cfg.Display.NoColor)
		surfaces = append(surfaces, term)
		goRun("terminal display", func() error {
			term.loop(ctx.Done())
			return nil
		})
	}

	if cfg.StateWS.Enabled {
		server := NewServer(logger, events, ServerConfig{Hub: HubConfig{
			SendBuf:      cfg.StateWS.SendBuf,
			BroadcastBuf: cfg.StateWS.BroadcastBuf,
		}})
		hubOut := newHubSurface(cfg.StateWS.BroadcastBuf, logger)
		surfaces = append(surfaces, hubOut)

		mux := http.NewServeMux()
		server.Register(mux, cfg.StateWS.Path)
		mux.HandleFunc("/api/state", stateHandler(events, logger))

		goRun("ws hub", func() error {
			server.Hub().Run(ctx)
			return nil
		})
		goRun("ws broadcaster", func() error {
			RunBroadcaster(ctx, server.Hub(), hubOut.Updates(), logger)
			return nil
		})
		goRun("http server", func() error {
			return runHTTPServer(ctx, cfg.StateWS.ListenAddr, mux, logger)
		})
	}

	panel := NewPanel(
		cfg.ToPanelOptions(),
		NewTunerState(),
		surfaces,
		newPNGSnapshotter(view),
		newConfigPresetStore(configPath, cfg),
		logger,
	)

	if cfg.IPC.SocketPath != "" {
		goRun("ipc server", func() error {
			return runIPCServer(ctx, cfg.IPC.SocketPath, events, logger)
		})
	}

	if len(cfg.Input.Devices) > 0 {
		goRun("evdev input", func() error {
			return runEvdevInput(ctx, cfg.Input.Devices, events, logger)
		})
	}

	if cfg.Input.Terminal {
		// Not tracked by wg: GetKey may stay blocked until the process exits.
		go func() {
			if err := runTermInput(ctx, events, cancel, logger); err != nil && ctx.Err() == nil {
				logger.Warn("terminal input disabled", "error", err)
			}
		}()
	}

	goRun("tuner link", func() error {
		return link.Run(ctx, events)
	})

	logger.Info("xdrpanel starting",
		"version", version,
		"link", cfg.Link.Kind,
		"state_ws", cfg.StateWS.Enabled,
		"ipc", cfg.IPC.SocketPath,
		"input_devices", cfg.Input.Devices)
	logger.Debug("configuration",
		"signal_unit", cfg.Panel.SignalUnit,
		"pty_set", cfg.Panel.PTYSet,
		"accessibility", cfg.Panel.Accessibility,
		"utc", cfg.Panel.UTC,
		"rds_reset", cfg.Panel.RDSReset,
		"quiet_window_ms", cfg.Panel.QuietWindowMS,
		"reconcile_interval_ms", cfg.Panel.ReconcileIntervalMS)

	runDaemon(ctx, events, link, panel, view,
		time.Duration(cfg.Panel.ReconcileIntervalMS)*time.Millisecond, logger)

	cancel()
	_ = link.Close()
	wg.Wait()
	logger.Info("shutting down")
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
