package main

import (
	"context"
	"log/slog"
	"time"
)

// ============================================================================
// Central Daemon Loop
// ============================================================================
//
// Design rules enforced here:
//   - The panel performs no I/O: it renders to surfaces and queues commands.
//   - The daemon loop is the only place that executes commands against the link.
//   - Link responses come back as Events and are applied like any other input.
//   - Explicit event and command queues, no re-entrant execution.
//
// ============================================================================

// runDaemon applies events to the panel, runs the service tick and executes
// the commands the panel queues.
//
// Shutdown semantics:
//   - Exits when ctx is canceled
//   - Exits cleanly when the events channel is closed
func runDaemon(
	ctx context.Context,
	events <-chan Event,
	link TunerLink,
	panel *Panel,
	view *viewModel,
	tickInterval time.Duration,
	logger *slog.Logger,
) {
	if panel == nil {
		logger.Error("panel is nil")
		return
	}
	if tickInterval <= 0 {
		tickInterval = defaultReconcileInterval
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var eventQueue []Event
	var cmdQueue []Command

	enqueueEvent := func(ev Event) {
		eventQueue = append(eventQueue, ev)
	}

	flushEvents := func() {
		for len(eventQueue) > 0 {
			ev := eventQueue[0]
			eventQueue = eventQueue[1:]

			if req, ok := ev.(RequestStateSnapshot); ok {
				replySnapshot(req, view, logger)
				continue
			}

			panel.Apply(ev)
			cmdQueue = append(cmdQueue, panel.TakeCommands()...)
		}
	}

	flushCommands := func() {
		for len(cmdQueue) > 0 {
			cmd := cmdQueue[0]
			cmdQueue = cmdQueue[1:]

			runEffect(link, cmd, logger, enqueueEvent)
			flushEvents()
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("daemon stopping (context canceled)")
			return

		case ev, ok := <-events:
			if !ok {
				logger.Info("daemon stopping (events channel closed)")
				return
			}
			enqueueEvent(ev)
			flushEvents()
			flushCommands()

		case now := <-ticker.C:
			enqueueEvent(Tick{Now: now})
			flushEvents()
			flushCommands()
		}
	}
}

func replySnapshot(req RequestStateSnapshot, view *viewModel, logger *slog.Logger) {
	if req.Reply == nil {
		logger.Warn("state snapshot requested with nil reply channel")
		return
	}
	var snap StateSnapshot
	if view != nil {
		snap = view.Snapshot(time.Now())
	}
	// Never block the daemon on a slow requester.
	select {
	case req.Reply <- snap:
	default:
		logger.Warn("state snapshot reply channel not ready; dropping snapshot")
	}
}
