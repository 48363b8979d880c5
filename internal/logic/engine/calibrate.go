package engine

import (
	"github.com/cjeanneret/RotGo/internal/debug"
)

// Buttons is the push-button collaborator as seen by the driver loop.
// Poll runs the debounced/accelerated path; the raw level methods are
// for the calibration procedure, which reads the buttons directly.
// CalFitted reports whether a calibrate button is wired at all; a
// headless build has none, and waiting on it would never finish.
type Buttons interface {
	Poll() ButtonInput
	CWDown() bool
	CCWDown() bool
	CalDown() bool
	CalFitted() bool
}

// ButtonInput is the outcome of one button poll.
type ButtonInput struct {
	AzimuthDelta     int  // degrees to add to the azimuth target
	ElevationDelta   int  // degrees to add to the elevation target
	ManualActive     bool // any direction button currently held
	CalibratePressed bool // calibrate button press edge
}

// Calibrate establishes the absolute zero reference. It is only ever
// entered from the physical calibrate button (or first boot), never
// remotely.
//
// Phase 1 drives the elevation into its lower endstop: the target is
// forced far below the travel range so the motor keeps moving down
// until the stall recovery snaps the position to the minimum. Phase 2
// lets the operator walk the azimuth reading onto a known visual
// reference with the CW/CCW buttons.
func (e *Engine) Calibrate(pad Buttons) {
	debug.Info("calibration started")

	if e.cfg.ElevationEnabled {
		e.El.Calibrating = true
		// Intentionally outside [min,max]: guarantees sustained
		// downward travel past the real endstop.
		e.El.Target = -180
		e.El.TargetChanged = true
		if e.TryStart(AxisElevation, DirDown) {
			for {
				e.refreshDisplay()
				e.PollPulse()
				if e.PollTimeout() {
					break
				}
				e.clock.Sleep(e.cfg.LoopTick)
			}
			debug.Info("elevation calibrated to %d", e.El.Current)
		} else {
			// No drive (supply absent): abandon the excursion so the
			// out-of-range target never leaks into normal operation.
			e.El.Target = e.El.Current
			e.El.TargetChanged = true
			e.El.Calibrating = false
			debug.Info("elevation calibration skipped, motor start refused")
		}
		e.persistNow()
	}

	if pad.CalFitted() {
		e.Az.Calibrating = true
		e.display.Transient("CAL AZ")
		for !pad.CalDown() {
			delta := 0
			switch {
			case pad.CWDown():
				delta = 1
			case pad.CCWDown():
				delta = -1
			}
			if delta != 0 {
				v := e.Az.clamp(e.Az.Current + delta)
				e.Az.Current, e.Az.Target, e.Az.LastGood = v, v, v
				e.Az.CurrentChanged, e.Az.TargetChanged = true, true
			}
			e.refreshDisplay()
			e.clock.Sleep(e.cfg.ButtonRead)
		}
		// Hold here until the button is released, or the main loop
		// would re-enter calibration immediately.
		for pad.CalDown() {
			e.clock.Sleep(e.cfg.ButtonRead)
		}
	}

	e.Az.Calibrating = false
	e.El.Calibrating = false
	e.calibratePending = false
	e.persistNow()
	debug.Info("calibration finished az=%d el=%d", e.Az.Current, e.El.Current)
}
