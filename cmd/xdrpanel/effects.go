package main

import "log/slog"

// runEffect executes a single panel-emitted Command against the tuner link.
// Failures are reported back as CommandFailed events; nothing is retried.
func runEffect(
	link TunerLink,
	cmd Command,
	logger *slog.Logger,
	onEvent func(Event),
) {
	if onEvent == nil {
		return
	}

	if link == nil {
		onEvent(CommandFailed{Command: cmd, Err: errNoLink{}})
		return
	}

	switch c := cmd.(type) {
	case CmdTune:
		if err := link.Tune(c.Freq, c.Force); err != nil {
			logger.Error("tune failed", "error", err, "freq", c.Freq, "force", c.Force)
			onEvent(CommandFailed{Command: cmd, Err: err})
			return
		}
		logger.Debug("tune sent", "freq", c.Freq, "force", c.Force)

	case CmdSetControl:
		if err := link.SetControl(c.Control, c.Value); err != nil {
			logger.Error("set control failed", "error", err, "control", c.Control.String(), "value", c.Value)
			onEvent(CommandFailed{Command: cmd, Err: err})
			return
		}
		logger.Debug("control sent", "control", c.Control.String(), "value", c.Value)

	default:
		logger.Warn("unknown command type", "command", cmd.String())
		onEvent(CommandFailed{Command: cmd, Err: errUnknownCommand{cmd: cmd}})
	}
}

// errNoLink indicates the daemon was asked to execute a command without a tuner link.
type errNoLink struct{}

func (errNoLink) Error() string { return "no tuner link" }

type errUnknownCommand struct {
	cmd Command
}

func (e errUnknownCommand) Error() string { return "unknown command: " + e.cmd.String() }
