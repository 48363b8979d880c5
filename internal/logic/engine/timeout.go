package engine

import (
	"github.com/cjeanneret/RotGo/internal/debug"
)

// PollTimeout declares and recovers a stall: no confirmed pulse within
// the stall bound while a motor is actuated. It reports whether a
// stall was handled, which the calibration loop uses as its exit
// condition.
//
// The two axes recover differently. Azimuth has no endstops, so any
// stall is an unexpected fault and the last confirmed reading is the
// best available truth. Elevation stalling downward is the expected
// way of finding the physical lower endstop; stalling upward is
// treated like an azimuth fault.
func (e *Engine) PollTimeout() bool {
	if e.Motor.Active == AxisNone {
		return false
	}
	if e.clock.Now().Sub(e.Motor.LastPulse) <= e.cfg.MotorTimeout {
		return false
	}

	dir := e.Motor.Dir
	if e.Motor.Active == AxisElevation {
		e.Stop(StopElevationTimeout)
		e.backOff(dir)

		a := &e.El
		if dir == DirUp {
			a.Current = a.LastGood
			a.Target = a.LastGood
		} else {
			a.Current = e.cfg.ElevationMin
			a.Target = e.cfg.ElevationMin
			a.LastGood = a.Current
		}
		e.recovered(a, "EL Timeout")
	} else {
		e.Stop(StopAzimuthTimeout)

		a := &e.Az
		a.Current = a.LastGood
		a.Target = a.LastGood
		e.recovered(a, "AZ Timeout")
	}
	return true
}

// backOff drives the elevation motor briefly away from the endstop it
// just hit, relieving the mechanical load on the mechanism.
func (e *Engine) backOff(stalled Direction) {
	if !e.TryStart(AxisElevation, stalled.opposite()) {
		return
	}
	e.clock.Sleep(e.cfg.Backup)
	e.Stop(StopElevationBackup)
}

func (e *Engine) recovered(a *Axis, msg string) {
	a.CurrentChanged = true
	a.TargetChanged = true
	e.persistNow()
	debug.Info("%s stall recovered at %d", a.Name, a.Current)
	e.display.Transient(msg)
	e.lamp.Fault()
}
