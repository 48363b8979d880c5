package engine

import (
	"github.com/cjeanneret/RotGo/internal/debug"
)

// The methods here are the mutation surface used by the wire protocol,
// the web UI and the button collaborator. They must only be invoked
// from the driver goroutine; external callers queue a Request instead.

// PowerPresent reports the rotator supply input.
func (e *Engine) PowerPresent() bool {
	return e.inputs.PowerPresent()
}

// ManualActive reports whether a direction button is currently held.
// Manual control out-ranks remote target changes.
func (e *Engine) ManualActive() bool {
	return e.manualOverride
}

// ElevationEnabled reports whether this build drives an elevation axis.
func (e *Engine) ElevationEnabled() bool {
	return e.cfg.ElevationEnabled
}

// AzimuthState returns the current and target azimuth.
func (e *Engine) AzimuthState() (current, target int) {
	return e.Az.Current, e.Az.Target
}

// ElevationState returns the current and target elevation.
func (e *Engine) ElevationState() (current, target int) {
	return e.El.Current, e.El.Target
}

// SetAzimuthTarget applies a remote azimuth target, clamped to the
// axis range. Rejected while a manual button is active.
func (e *Engine) SetAzimuthTarget(deg int) bool {
	if e.manualOverride {
		return false
	}
	e.Az.setTarget(deg)
	debug.Target(e.Az.Name, e.Az.Target, "remote")
	return true
}

// SetElevationTarget applies a remote elevation target, clamped.
// Rejected on azimuth-only builds and while a button is active.
func (e *Engine) SetElevationTarget(deg int) bool {
	if !e.cfg.ElevationEnabled || e.manualOverride {
		return false
	}
	e.El.setTarget(deg)
	debug.Target(e.El.Name, e.El.Target, "remote")
	return true
}

// SetTargets applies both targets at once (the W command).
func (e *Engine) SetTargets(az, el int) bool {
	if e.manualOverride {
		return false
	}
	e.Az.setTarget(az)
	debug.Target(e.Az.Name, e.Az.Target, "remote")
	if e.cfg.ElevationEnabled {
		e.El.setTarget(el)
		debug.Target(e.El.Name, e.El.Target, "remote")
	}
	return true
}

// Park sends each axis to its configured park position. Either park
// may be disabled in configuration, in which case that axis is left
// alone.
func (e *Engine) Park() {
	if e.cfg.AzimuthParkEnabled {
		e.Az.setTarget(e.cfg.AzimuthPark)
		debug.Target(e.Az.Name, e.Az.Target, "park")
	}
	if e.cfg.ElevationEnabled && e.cfg.ElevationParkEnabled {
		e.El.setTarget(e.cfg.ElevationPark)
		debug.Target(e.El.Name, e.El.Target, "park")
	}
}

// ForceSync overwrites current, target and last-good for both axes
// (the Z bench command) and persists immediately. Values are clamped
// to the axis ranges; calling it twice with the same values is a
// no-op the second time.
func (e *Engine) ForceSync(az, el int) {
	az = e.Az.clamp(az)
	e.Az.Current, e.Az.Target, e.Az.LastGood = az, az, az
	e.Az.CurrentChanged, e.Az.TargetChanged = true, true

	if e.cfg.ElevationEnabled {
		el = e.El.clamp(el)
		e.El.Current, e.El.Target, e.El.LastGood = el, el, el
		e.El.CurrentChanged, e.El.TargetChanged = true, true
	}
	e.persistNow()
	debug.Live("forced sync az=%d el=%d", e.Az.Current, e.El.Current)
}

// NudgeTarget adjusts an axis target by delta degrees, clamped. This
// is the button path; it shares the clamping rules with the protocol.
func (e *Engine) NudgeTarget(axis AxisID, delta int) {
	a := e.axis(axis)
	a.setTarget(a.Target + delta)
	debug.Target(a.Name, a.Target, "button")
}
