package engine

import (
	"github.com/cjeanneret/RotGo/internal/debug"
)

// TryStart requests motor power for one axis. It fails with no side
// effect when any motor is already active or the rotator supply is
// absent. On success the relays are sequenced select → direction →
// settle → run, and the pulse timeout window is seeded as if a pulse
// had just occurred.
func (e *Engine) TryStart(axis AxisID, dir Direction) bool {
	if e.Motor.Active != AxisNone {
		return false
	}
	if !e.inputs.PowerPresent() {
		return false
	}

	now := e.clock.Now()
	e.Motor.Active = axis
	e.Motor.Dir = dir
	e.Motor.LastPulse = now

	a := e.axis(axis)
	a.PendingSave = true
	a.StoppedAt = now

	elevation := axis == AxisElevation
	if err := e.board.Select(elevation); err != nil {
		debug.Error(err)
	}
	if err := e.board.Direction(dir.forward()); err != nil {
		debug.Error(err)
	}
	// The relays need to settle before power hits them; the elevation
	// relay carries the heavier load and takes longer.
	e.clock.Sleep(e.settle(axis))
	if err := e.board.Run(true); err != nil {
		debug.Error(err)
	}

	debug.Motor(a.Name, "start "+dir.String())
	return true
}

// Stop removes motor power. A routine target-reached stop is
// suppressed while a manual button override is active, so the relays
// don't chatter under a held button. Any other reason always stops.
func (e *Engine) Stop(reason StopReason) {
	if e.Motor.Active == AxisNone {
		return
	}
	if e.manualOverride && reason.routine() {
		return
	}

	active := e.Motor.Active
	if err := e.board.Run(false); err != nil {
		debug.Error(err)
	}
	e.clock.Sleep(e.settle(active))
	if err := e.board.Release(); err != nil {
		debug.Error(err)
	}

	a := e.axis(active)
	a.StoppedAt = e.clock.Now()
	a.PendingSave = true

	e.Motor.Active = AxisNone
	e.Motor.Dir = DirNone
	e.Az.Calibrating = false
	e.El.Calibrating = false
	e.lastStop = reason

	debug.Motor(a.Name, "stop ("+reason.Label()+")")
	e.display.Refresh(e.Snapshot())
}

// LastStop returns the reason of the most recent stop, for diagnostics.
func (e *Engine) LastStop() StopReason {
	return e.lastStop
}
