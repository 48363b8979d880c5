package relay

import (
	"github.com/cjeanneret/RotGo/internal/debug"
	"github.com/cjeanneret/RotGo/internal/hw/gpio"
)

// Pins holds the BCM pin numbers of the three relays.
type Pins struct {
	Run       int // shared motor power relay
	Select    int // axis select relay
	Direction int // direction relay
}

// Polarity maps the domain meaning of each relay onto electrical
// levels. Non-inverted: Run asserted = High, Select High = elevation,
// Direction High = CW / up. A board wired through inverting drivers
// flips the matching flag; no logic elsewhere changes.
type Polarity struct {
	RunInverted       bool
	SelectInverted    bool
	DirectionInverted bool
}

// Board drives the rotator relay bank. It only translates requests to
// pin levels; sequencing and settle delays belong to the motion
// engine's arbiter.
type Board struct {
	gpio gpio.Driver
	pins Pins
	pol  Polarity
}

// New configures the relay pins as outputs and leaves every relay
// dropped.
func New(g gpio.Driver, pins Pins, pol Polarity) (*Board, error) {
	b := &Board{gpio: g, pins: pins, pol: pol}
	for _, pin := range []int{pins.Run, pins.Select, pins.Direction} {
		if err := g.SetupPin(pin, gpio.Output); err != nil {
			return nil, err
		}
	}
	if err := b.Run(false); err != nil {
		return nil, err
	}
	if err := b.Release(); err != nil {
		return nil, err
	}
	return b, nil
}

// Select routes motor power to one axis (true = elevation).
func (b *Board) Select(elevation bool) error {
	debug.Trace("relay select elevation=%v", elevation)
	return b.gpio.WritePin(b.pins.Select, level(elevation, b.pol.SelectInverted))
}

// Direction sets the direction relay (true = CW for azimuth, up for
// elevation; which axis it applies to follows the select relay).
func (b *Board) Direction(forward bool) error {
	debug.Trace("relay direction forward=%v", forward)
	return b.gpio.WritePin(b.pins.Direction, level(forward, b.pol.DirectionInverted))
}

// Run asserts or drops the shared power relay.
func (b *Board) Run(on bool) error {
	debug.Trace("relay run on=%v", on)
	return b.gpio.WritePin(b.pins.Run, level(on, b.pol.RunInverted))
}

// Release de-asserts the select and direction relays. Only valid with
// the power relay dropped.
func (b *Board) Release() error {
	debug.Trace("relay release")
	if err := b.gpio.WritePin(b.pins.Select, level(false, b.pol.SelectInverted)); err != nil {
		return err
	}
	return b.gpio.WritePin(b.pins.Direction, level(false, b.pol.DirectionInverted))
}

func level(asserted, inverted bool) gpio.Level {
	if asserted != inverted {
		return gpio.High
	}
	return gpio.Low
}
