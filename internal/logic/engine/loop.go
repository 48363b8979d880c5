package engine

import (
	"context"
	"errors"
)

// Request is a deferred mutation queued by an external collaborator
// (wire protocol, web UI). The driver loop applies it between polls,
// so all engine state stays owned by one goroutine.
type Request func(*Engine)

// ErrRebootRequested is returned by Run when the soft-reboot input
// fires; the supervisor is expected to restart the process.
var ErrRebootRequested = errors.New("reboot requested")

// Run is the outer polling driver. Each pass ingests queued requests
// and button input, starts an idle axis whose current differs from its
// target (elevation outranks azimuth), then runs the pulse, timeout
// and reversal checks for whichever axis is active, followed by the
// debounced persistence pass and display upkeep.
//
// Run blocks until ctx is cancelled or a reboot is requested; in both
// cases any active motor is stopped and positions are persisted before
// returning.
func (e *Engine) Run(ctx context.Context, pad Buttons, requests <-chan Request) error {
	if pad == nil {
		pad = nopButtons{}
	}
	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return ctx.Err()
		default:
		}

	drain:
		for {
			select {
			case r := <-requests:
				if r != nil {
					r(e)
				}
			default:
				break drain
			}
		}

		if e.inputs.RebootRequested() {
			e.shutdown()
			return ErrRebootRequested
		}

		in := pad.Poll()
		e.manualOverride = in.ManualActive
		if in.CalibratePressed {
			e.calibratePending = true
		}
		if e.calibratePending && e.Motor.Active == AxisNone {
			e.Calibrate(pad)
		}
		if in.AzimuthDelta != 0 {
			e.NudgeTarget(AxisAzimuth, in.AzimuthDelta)
		}
		if in.ElevationDelta != 0 && e.cfg.ElevationEnabled {
			e.NudgeTarget(AxisElevation, in.ElevationDelta)
		}

		if e.Motor.Active == AxisNone {
			e.scheduleStart()
		} else {
			e.PollPulse()
			e.PollTimeout()
			e.PollReversal()
		}

		e.pollSave()
		e.refreshDisplay()
		e.clock.Sleep(e.cfg.LoopTick)
	}
}

// scheduleStart starts one idle axis that still has travel to do.
// Elevation is attempted first; the arbiter guarantees only one motor
// ever runs.
func (e *Engine) scheduleStart() {
	if e.cfg.ElevationEnabled && e.El.Current != e.El.Target {
		dir := DirDown
		if e.El.Target > e.El.Current {
			dir = DirUp
		}
		if e.TryStart(AxisElevation, dir) {
			return
		}
	}
	if e.Az.Current != e.Az.Target {
		dir := DirCCW
		if e.Az.Target > e.Az.Current {
			dir = DirCW
		}
		e.TryStart(AxisAzimuth, dir)
	}
}

// pollSave runs the debounced persistence write: only while no motor
// is moving, and only after an axis with unsaved travel has been quiet
// for the configured delay.
func (e *Engine) pollSave() {
	if e.Motor.Active != AxisNone {
		return
	}
	now := e.clock.Now()
	azDue := e.Az.PendingSave && now.Sub(e.Az.StoppedAt) > e.cfg.SaveDelay
	elDue := e.El.PendingSave && now.Sub(e.El.StoppedAt) > e.cfg.SaveDelay
	if azDue || elDue {
		e.persistNow()
	}
}

func (e *Engine) shutdown() {
	if e.Motor.Active != AxisNone {
		e.Stop(StopReboot)
	}
	e.persistNow()
}

type nopButtons struct{}

func (nopButtons) Poll() ButtonInput { return ButtonInput{} }
func (nopButtons) CWDown() bool      { return false }
func (nopButtons) CCWDown() bool     { return false }
func (nopButtons) CalDown() bool     { return false }
func (nopButtons) CalFitted() bool   { return false }
