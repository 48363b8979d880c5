package engine

import (
	"time"

	"github.com/cjeanneret/RotGo/internal/debug"
)

// PulseOutcome is the definite result of one pulse poll. The busy-wait
// always resolves to one of these; nothing is left implied.
type PulseOutcome int

const (
	PulseNone      PulseOutcome = iota // line idle-high, nothing happening
	PulseNoise                         // falling edge that bounced back inside the debounce window
	PulseConfirmed                     // full falling+rising pair, position advanced
	PulseLost                          // rising edge never came inside the stall bound
)

// risingEdgePoll is the re-sample interval while waiting out a pulse.
const risingEdgePoll = time.Millisecond

// PollPulse samples the index line of the active axis and integrates a
// confirmed pulse into the position estimate.
//
// The wait for the rising edge genuinely blocks the whole control loop
// for up to the stall bound. That is a deliberate property of the
// debounce strategy: PC-side latency expectations are tuned around it,
// and the stall bound comfortably exceeds the worst real pulse width.
func (e *Engine) PollPulse() PulseOutcome {
	if e.Motor.Active == AxisNone {
		return PulseNone
	}
	elevation := e.Motor.Active == AxisElevation

	// Idle-high is the overwhelmingly common case; keep it cheap.
	if e.inputs.IndexHigh(elevation) {
		return PulseNone
	}

	// Falling edge seen. Wait out contact bounce and look again.
	e.clock.Sleep(e.cfg.Debounce)
	if e.inputs.IndexHigh(elevation) {
		debug.Trace("discarded noise pulse on %s", e.Motor.Active)
		return PulseNoise
	}

	// A real pulse: hold until the line returns high, bounded by the
	// stall timeout. If the bound elapses the stall is declared by
	// TimeoutRecovery on the next check.
	for !e.inputs.IndexHigh(elevation) {
		if e.clock.Now().Sub(e.Motor.LastPulse) > e.cfg.MotorTimeout {
			return PulseLost
		}
		e.clock.Sleep(risingEdgePoll)
	}

	now := e.clock.Now()
	e.Motor.LastPulse = now

	a := e.axis(e.Motor.Active)
	// Re-stamping the stop time here keeps the debounced persistence
	// write from firing while the motor is actively pulsing.
	a.StoppedAt = now
	a.Current += e.Motor.Dir.sign()
	a.CurrentChanged = true
	a.LastGood = a.Current
	a.PendingSave = true
	debug.Pulse(a.Name, a.Current)

	if a.Current == a.Target {
		if elevation {
			e.Stop(StopElevationNormal)
		} else {
			e.Stop(StopAzimuthNormal)
		}
	}
	return PulseConfirmed
}
