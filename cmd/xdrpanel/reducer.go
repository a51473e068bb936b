package main

// Apply folds one event into the panel: observations are written to
// TunerState and followed by the update functions that display them; user
// input goes through the dispatcher or the control widgets. Commands produced
// along the way stay queued until TakeCommands.
//
// Snapshot requests are answered by the daemon and never reach Apply.
func (p *Panel) Apply(ev Event) {
	s := p.state

	switch e := ev.(type) {
	case Tick:
		p.Tick(e.Now)

	case KeyPressed:
		if !p.HandleKey(e.Key) {
			p.logger.Debug("key not handled", "key", e.Key.String())
		}

	case TuneRequested:
		p.tune(e.Freq, e.Force)

	case ControlRequested:
		p.SetControl(e.Control, e.Value)

	case SessionStarted:
		p.StartSession()

	case LinkDisconnected:
		p.Disconnected(e.Reason)

	case LinkUnauthorized:
		p.Unauthorized()

	case FreqObserved:
		s.SetFreq(e.Freq)
		p.UpdateFreq()
		p.refreshSignal()
		p.refreshRDS()

	case ModeObserved:
		s.SetMode(e.Mode)
		p.UpdateMode()
		p.UpdateFilter()
		p.refreshSignal()
		p.refreshRDS()

	case SignalObserved:
		s.ObserveSignal(e.Signal)
		s.Stereo = e.Stereo
		s.ForcedMono = e.ForcedMono
		s.RDS = e.RDS
		p.UpdateStereo()
		p.UpdateRDSFlag()
		p.UpdateSignal()

	case InterferenceObserved:
		s.ObserveInterference(e.CCI, e.ACI)
		p.UpdateCCI()
		p.UpdateACI()

	case PIObserved:
		s.PI = e.PI
		s.PIErrLevel = e.ErrLevel
		p.touchRDS()
		p.UpdatePI()
		p.UpdateECC()

	case RDSFlagsObserved:
		s.TP, s.TA, s.MS, s.PTY = e.TP, e.TA, e.MS, e.PTY
		p.touchRDS()
		p.UpdateTP()
		p.UpdateTA()
		p.UpdateMS()
		p.UpdatePTY()

	case ECCObserved:
		s.ECC = e.ECC
		p.touchRDS()
		p.UpdateECC()

	case PSObserved:
		for i := 0; i < psLen; i++ {
			c := byte(' ')
			if i < len(e.Text) {
				c = e.Text[i]
			}
			s.PS[i] = c
			s.PSErr[i] = e.Errors[i]
		}
		s.PSAvail = true
		p.touchRDS()
		p.UpdatePS()

	case RTObserved:
		if e.Slot < 0 || e.Slot > 1 {
			return
		}
		s.RT[e.Slot] = e.Text
		s.RTAvail[e.Slot] = true
		p.touchRDS()
		p.UpdateRT(e.Slot)

	case AFObserved:
		freq := e.Freq
		if freq == 0 && e.Code >= 1 && e.Code <= 204 {
			freq = afFrequency(e.Code)
		}
		p.UpdateAF(freq)

	case ControlObserved:
		s.SetControlValue(e.Control, e.Value)
		switch e.Control {
		case ControlFilter:
			p.UpdateFilter()
		case ControlRotator:
			p.UpdateRotator()
		}

	case RotatorObserved:
		s.Rotator = e.Direction
		s.RotatorWaiting = e.Waiting
		p.UpdateRotator()

	case ScanObserved:
		p.UpdateScan(e.Points)

	case CommandFailed:
		p.logger.Warn("tuner command failed", "command", e.Command.String(), "error", e.Err)
	}
}

func (p *Panel) touchRDS() {
	p.state.RDSResetAt = p.now()
}
