package sense

import (
	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/hw/gpio"
)

// Pins holds the BCM pin numbers of the digital inputs.
type Pins struct {
	AzimuthIndex   int
	ElevationIndex int
	PowerSense     int
	Reboot         int // 0 = not fitted
}

// Panel reads the controller's digital inputs: the two index pulse
// lines (idle-high, one pulse per degree), the power-present sense and
// the soft-reboot button. It implements the motion engine's Inputs.
type Panel struct {
	gpio gpio.Driver
	pins Pins

	rebootWasDown bool
}

// New configures the input pins. Index lines and the reboot button get
// the internal pull-up so they idle high.
func New(g gpio.Driver, pins Pins) (*Panel, error) {
	for _, pin := range []int{pins.AzimuthIndex, pins.ElevationIndex} {
		if pin == 0 {
			continue
		}
		if err := g.SetupPin(pin, gpio.InputPullup); err != nil {
			return nil, err
		}
	}
	if err := g.SetupPin(pins.PowerSense, gpio.Input); err != nil {
		return nil, err
	}
	if pins.Reboot != 0 {
		if err := g.SetupPin(pins.Reboot, gpio.InputPullup); err != nil {
			return nil, err
		}
	}
	return &Panel{gpio: g, pins: pins}, nil
}

// IndexHigh reads the index pulse line of an axis (true = elevation).
// A read failure is reported as idle-high: a flaky read must never
// fabricate a pulse.
func (p *Panel) IndexHigh(elevation bool) bool {
	pin := p.pins.AzimuthIndex
	if elevation {
		pin = p.pins.ElevationIndex
	}
	lvl, err := p.gpio.ReadPin(pin)
	if err != nil {
		debug.Error(err)
		return true
	}
	return lvl == gpio.High
}

// PowerPresent reports whether the rotator supply is up (active-high
// sense input). A read failure reads as absent, which keeps the
// motors off rather than starting them blind.
func (p *Panel) PowerPresent() bool {
	lvl, err := p.gpio.ReadPin(p.pins.PowerSense)
	if err != nil {
		debug.Error(err)
		return false
	}
	return lvl == gpio.High
}

// RebootRequested reports a press edge on the soft-reboot input
// (active-low). Holding the button yields exactly one edge.
func (p *Panel) RebootRequested() bool {
	if p.pins.Reboot == 0 {
		return false
	}
	lvl, err := p.gpio.ReadPin(p.pins.Reboot)
	if err != nil {
		debug.Error(err)
		return false
	}
	down := lvl == gpio.Low
	edge := down && !p.rebootWasDown
	p.rebootWasDown = down
	return edge
}
